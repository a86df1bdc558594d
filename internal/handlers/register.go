package handlers

//go:generate mockgen -source=register.go -destination=mock_register.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/models"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, name, email, password string) (*models.User, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: alice
	Username string `json:"username"`

	// Display name
	// required: true
	// default: Alice
	Name string `json:"name"`

	// Email
	// required: true
	// default: alice@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account. Usernames are unique. The password is hashed before storing.
// @Tags users
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 200 {object} models.User "Registered user"
// @Failure 400 {object} handlers.ErrorResponse "User is already registered / invalid request"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /users/ [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := required("username", req.Username, "name", req.Name, "email", req.Email, "password", req.Password); msg != "" {
			writeDetail(w, http.StatusBadRequest, msg)
			return
		}
		if !validEmail(req.Email) {
			writeDetail(w, http.StatusBadRequest, "invalid email address")
			return
		}
		if len(req.Password) > maxPasswordBytes {
			writeDetail(w, http.StatusBadRequest, "password must be at most 72 bytes")
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Name, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeDetail(w, http.StatusBadRequest, "User is already registered")
			case errors.Is(err, services.ErrPasswordTooLong):
				writeDetail(w, http.StatusBadRequest, err.Error())
			default:
				writeInternalError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
