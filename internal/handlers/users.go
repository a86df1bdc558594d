package handlers

//go:generate mockgen -source=users.go -destination=mock_users.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/models"
)

// UserLister lists all users.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// NewUsersHandler returns an HTTP handler listing every user.
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /users/ [get]
func NewUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if users == nil {
			users = []models.User{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}
