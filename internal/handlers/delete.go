package handlers

//go:generate mockgen -source=delete.go -destination=mock_delete.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/services"
)

// AccountDeleter defines the interface for removing an account.
type AccountDeleter interface {
	Delete(ctx context.Context, token string, userID int64) error
}

// NewDeleteHandler returns an HTTP handler deleting the caller's account.
// @Summary Delete account
// @Tags users
// @Accept json
// @Produce json
// @Param deleteRequest body handlers.SessionRequest true "Delete request"
// @Success 200 {object} handlers.MessageResponse "Deleted successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid token / invalid request"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /delete [post]
func NewDeleteHandler(svc AccountDeleter) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), req.AccessToken, req.UserID); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidToken):
				writeDetail(w, http.StatusBadRequest, "Invalid token")
			case errors.Is(err, services.ErrNotFound):
				writeDetail(w, http.StatusNotFound, "User not found")
			default:
				writeInternalError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Deleted successfully"})
	}
}
