package handlers

//go:generate mockgen -source=logout.go -destination=mock_logout.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/services"
)

// Logouter defines the interface for revoking a user's tokens.
type Logouter interface {
	Logout(ctx context.Context, token string, userID int64) error
}

// SessionRequest is the body of logout and delete requests
// swagger:model SessionRequest
type SessionRequest struct {
	// Access token
	// required: true
	AccessToken string `json:"access_token"`

	// Owner of the token. Optional; when set it must match the token owner.
	// default: 1
	UserID int64 `json:"user_id"`
}

// NewLogoutHandler returns an HTTP handler revoking every token of the caller.
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param logoutRequest body handlers.SessionRequest true "Logout request"
// @Success 200 {object} handlers.MessageResponse "Logout successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid token / invalid request"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /logout [post]
func NewLogoutHandler(svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := required("access_token", req.AccessToken); msg != "" {
			writeDetail(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.Logout(r.Context(), req.AccessToken, req.UserID); err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				writeDetail(w, http.StatusBadRequest, "Invalid token")
				return
			}
			writeInternalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
	}
}
