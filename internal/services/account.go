package services

//go:generate mockgen -source=account.go -destination=mock_services.go -package=services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-accounts/internal/hasher"
	"github.com/sbilibin2017/gw-user-accounts/internal/logger"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
	"github.com/sbilibin2017/gw-user-accounts/internal/repositories"
	"github.com/segmentio/kafka-go"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("user is already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("user not found")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// UserStore defines persistence operations for users.
// Lookups return (nil, nil) when the user does not exist.
type UserStore interface {
	Create(ctx context.Context, username, name, email, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, name, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// TokenStore defines persistence operations for access tokens.
type TokenStore interface {
	Save(ctx context.Context, token string, userID int64, expiresAt time.Time) (*models.Token, error)
	GetByToken(ctx context.Context, token string) (*models.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, claims map[string]any, ttl time.Duration) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Transactor runs fn in a single database transaction.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Authorizer resolves a bearer token to its owner.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.User, error)
}

// EventWriter defines a Kafka writer abstraction.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// AccountService implements registration, login and the token-protected account operations.
type AccountService struct {
	users  UserStore
	tokens TokenStore
	issuer TokenIssuer
	hasher PasswordHasher
	tx     Transactor
	gate   Authorizer
	events EventWriter
}

// NewAccountService creates a new AccountService. events may be nil.
func NewAccountService(
	users UserStore,
	tokens TokenStore,
	issuer TokenIssuer,
	passwordHasher PasswordHasher,
	tx Transactor,
	gate Authorizer,
	events EventWriter,
) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		issuer: issuer,
		hasher: passwordHasher,
		tx:     tx,
		gate:   gate,
		events: events,
	}
}

// Register creates a new user with a hashed password.
func (svc *AccountService) Register(ctx context.Context, username, name, email, password string) (*models.User, error) {
	existing, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "username", username, "error", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Infow("user already exists", "username", username)
		return nil, ErrUserAlreadyExists
	}

	hash, err := svc.hasher.Hash(password)
	if errors.Is(err, hasher.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		return nil, err
	}

	user, err := svc.users.Create(ctx, username, name, email, hash)
	if err != nil {
		// lost a concurrent registration race; the unique index decided
		if errors.Is(err, repositories.ErrDuplicate) {
			logger.Log.Infow("user already exists", "username", username)
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "username", username, "error", err)
		return nil, err
	}

	svc.publishEvent(ctx, models.EventUserRegistered, user)
	return user, nil
}

// Login verifies credentials and replaces any previous token of the user with a new one.
func (svc *AccountService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "username", username, "error", err)
		return "", time.Time{}, err
	}
	if user == nil || !svc.hasher.Verify(password, user.PasswordHash) {
		logger.Log.Infow("invalid credentials", "username", username)
		return "", time.Time{}, ErrInvalidCredentials
	}

	var (
		token     string
		expiresAt time.Time
	)
	err = svc.tx.Do(ctx, func(ctx context.Context) error {
		// the row lock serializes concurrent logins of the same user
		locked, err := svc.users.GetByIDForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrInvalidCredentials
		}

		if err := svc.tokens.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}

		claims := map[string]any{"sub": user.Username, "uid": user.ID}
		t, exp, err := svc.issuer.Issue(ctx, claims, 0)
		if err != nil {
			return err
		}

		if _, err := svc.tokens.Save(ctx, t, user.ID, exp); err != nil {
			return err
		}
		token, expiresAt = t, exp
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.Log.Errorw("failed to issue token", "username", username, "error", err)
		}
		return "", time.Time{}, err
	}

	svc.publishEvent(ctx, models.EventUserLoggedIn, user)
	return token, expiresAt, nil
}

// UpdateProfile overwrites name and email of userID. The token must belong to userID.
func (svc *AccountService) UpdateProfile(ctx context.Context, userID int64, token, name, email string) (*models.User, error) {
	owner, err := svc.gate.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	if owner.ID != userID {
		target, err := svc.users.GetByID(ctx, userID)
		if err != nil {
			logger.Log.Errorw("failed to get user", "user_id", userID, "error", err)
			return nil, err
		}
		if target == nil {
			return nil, ErrNotFound
		}
		logger.Log.Infow("token does not belong to user", "user_id", userID, "owner_id", owner.ID)
		return nil, ErrInvalidToken
	}

	updated, err := svc.users.Update(ctx, userID, name, email)
	if err != nil {
		logger.Log.Errorw("failed to update user", "user_id", userID, "error", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	svc.publishEvent(ctx, models.EventUserUpdated, updated)
	return updated, nil
}

// Logout purges every token of the token's owner. A non-zero userID must match the owner.
func (svc *AccountService) Logout(ctx context.Context, token string, userID int64) error {
	owner, err := svc.authorizeOwner(ctx, token, userID)
	if err != nil {
		return err
	}

	if err := svc.tokens.DeleteByUserID(ctx, owner.ID); err != nil {
		logger.Log.Errorw("failed to delete user tokens", "user_id", owner.ID, "error", err)
		return err
	}

	svc.publishEvent(ctx, models.EventUserLoggedOut, owner)
	return nil
}

// Delete purges the owner's tokens and then removes the user row, in one transaction.
func (svc *AccountService) Delete(ctx context.Context, token string, userID int64) error {
	owner, err := svc.authorizeOwner(ctx, token, userID)
	if err != nil {
		return err
	}

	err = svc.tx.Do(ctx, func(ctx context.Context) error {
		if err := svc.tokens.DeleteByUserID(ctx, owner.ID); err != nil {
			return err
		}
		deleted, err := svc.users.Delete(ctx, owner.ID)
		if err != nil {
			return err
		}
		if deleted == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Log.Errorw("failed to delete user", "user_id", owner.ID, "error", err)
		}
		return err
	}

	svc.publishEvent(ctx, models.EventUserDeleted, owner)
	return nil
}

// ListUsers returns all users.
func (svc *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := svc.users.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// Profile returns the owner of token.
func (svc *AccountService) Profile(ctx context.Context, token string) (*models.User, error) {
	return svc.gate.Authorize(ctx, token)
}

func (svc *AccountService) authorizeOwner(ctx context.Context, token string, userID int64) (*models.User, error) {
	owner, err := svc.gate.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID != 0 && userID != owner.ID {
		logger.Log.Infow("token does not belong to user", "user_id", userID, "owner_id", owner.ID)
		return nil, ErrInvalidToken
	}
	return owner, nil
}

// publishEvent publishes an account event to Kafka. Failures are logged only.
func (svc *AccountService) publishEvent(ctx context.Context, eventType string, user *models.User) {
	if svc.events == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType)
		return
	}

	event := models.AccountEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal account event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(user.ID, 10)),
		Value: data,
	}

	if err := svc.events.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish account event", "event_id", event.EventID, "type", eventType, "error", err)
		return
	}
	logger.Log.Infow("account event published", "event_id", event.EventID, "type", eventType, "user_id", user.ID)
}
