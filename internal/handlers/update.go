package handlers

//go:generate mockgen -source=update.go -destination=mock_update.go -package=handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
)

// ProfileUpdater defines the interface for changing a user's profile.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID int64, token, name, email string) (*models.User, error)
}

// UpdateRequest represents the JSON body for a profile update
// swagger:model UpdateRequest
type UpdateRequest struct {
	// Access token of the user being updated
	// required: true
	AccessToken string `json:"access_token"`

	// New display name
	// required: true
	// default: Alicia
	Name string `json:"name"`

	// New email
	// required: true
	// default: alicia@example.com
	Email string `json:"email"`
}

// NewUpdateHandler returns an HTTP handler that overwrites name and email of a user.
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param updateRequest body handlers.UpdateRequest true "Update request"
// @Success 200 {object} models.User "Updated user"
// @Failure 400 {object} handlers.ErrorResponse "User not found / Invalid token / invalid request"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /users/{id} [put]
func NewUpdateHandler(svc ProfileUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || userID <= 0 {
			writeDetail(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var req UpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := required("access_token", req.AccessToken, "name", req.Name, "email", req.Email); msg != "" {
			writeDetail(w, http.StatusBadRequest, msg)
			return
		}
		if !validEmail(req.Email) {
			writeDetail(w, http.StatusBadRequest, "invalid email address")
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, req.AccessToken, req.Name, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotFound):
				writeDetail(w, http.StatusBadRequest, "User not found")
			case errors.Is(err, services.ErrInvalidToken):
				writeDetail(w, http.StatusBadRequest, "Invalid token")
			default:
				writeInternalError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
