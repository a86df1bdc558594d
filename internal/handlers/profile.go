package handlers

//go:generate mockgen -source=profile.go -destination=mock_profile.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/jwt"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
)

// ProfileGetter resolves a token to its owner.
type ProfileGetter interface {
	Profile(ctx context.Context, token string) (*models.User, error)
}

// NewProfileHandler returns the owner of the bearer token. The token is put
// into the context by the auth middleware.
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} handlers.ErrorResponse "Invalid token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /profile/ [get]
func NewProfileHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context(), jwt.TokenFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeDetail(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			writeInternalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
