package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSessionGate_Authorize(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	alice := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name      string
		token     string
		setup     func(tokens *services.MockTokenStore, users *services.MockUserStore)
		wantUser  *models.User
		wantErrIs error
		wantErr   string
	}{
		{
			name:      "empty token",
			token:     "",
			setup:     func(tokens *services.MockTokenStore, users *services.MockUserStore) {},
			wantErrIs: services.ErrInvalidToken,
		},
		{
			name:  "unknown token",
			token: "nope",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "nope").Return(nil, nil)
			},
			wantErrIs: services.ErrInvalidToken,
		},
		{
			name:  "expired one second ago",
			token: "old",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "old").
					Return(&models.Token{Token: "old", UserID: 1, ExpiresAt: now.Add(-time.Second)}, nil)
			},
			wantErrIs: services.ErrInvalidToken,
		},
		{
			name:  "expires in one second",
			token: "fresh",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "fresh").
					Return(&models.Token{Token: "fresh", UserID: 1, ExpiresAt: now.Add(time.Second)}, nil)
				users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(alice, nil)
			},
			wantUser: alice,
		},
		{
			name:  "expires exactly now",
			token: "edge",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "edge").
					Return(&models.Token{Token: "edge", UserID: 1, ExpiresAt: now}, nil)
				users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(alice, nil)
			},
			wantUser: alice,
		},
		{
			name:  "owner missing",
			token: "orphan",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "orphan").
					Return(&models.Token{Token: "orphan", UserID: 9, ExpiresAt: now.Add(time.Hour)}, nil)
				users.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, nil)
			},
			wantErrIs: services.ErrInvalidToken,
		},
		{
			name:  "token store error",
			token: "t",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "t").Return(nil, errors.New("db error"))
			},
			wantErr: "db error",
		},
		{
			name:  "user store error",
			token: "t",
			setup: func(tokens *services.MockTokenStore, users *services.MockUserStore) {
				tokens.EXPECT().GetByToken(gomock.Any(), "t").
					Return(&models.Token{Token: "t", UserID: 1, ExpiresAt: now.Add(time.Hour)}, nil)
				users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(nil, errors.New("db error"))
			},
			wantErr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			tokens := services.NewMockTokenStore(ctrl)
			users := services.NewMockUserStore(ctrl)
			tt.setup(tokens, users)

			gate := services.NewSessionGate(tokens, users, services.WithGateClock(func() time.Time { return now }))
			user, err := gate.Authorize(context.Background(), tt.token)

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, user)
			case tt.wantErr != "":
				assert.EqualError(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, services.ErrInvalidToken)
				assert.Nil(t, user)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUser, user)
			}
		})
	}
}
