package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-user-accounts/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLogoutHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLogouter(ctrl)

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody string
	}{
		{
			name:      "success",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Logout(gomock.Any(), "T1", int64(1)).Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Logout successful"}`,
		},
		{
			name:      "user id omitted",
			inputBody: `{"access_token":"T1"}`,
			mockSetup: func() {
				mockSvc.EXPECT().Logout(gomock.Any(), "T1", int64(0)).Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Logout successful"}`,
		},
		{
			name:         "missing token",
			inputBody:    `{"user_id":1}`,
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"detail":"access_token is required"}`,
		},
		{
			name:         "user id of wrong type",
			inputBody:    `{"access_token":"T1","user_id":"one"}`,
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"detail":"invalid request body"}`,
		},
		{
			name:      "invalid token",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Logout(gomock.Any(), "T1", int64(1)).Return(services.ErrInvalidToken)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"detail":"Invalid token"}`,
		},
		{
			name:      "internal error",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Logout(gomock.Any(), "T1", int64(1)).Return(errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"detail":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			w := serve(NewLogoutHandler(mockSvc), http.MethodPost, "/logout", tt.inputBody)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAccountDeleter(ctrl)

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody string
	}{
		{
			name:      "success",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Delete(gomock.Any(), "T1", int64(1)).Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Deleted successfully"}`,
		},
		{
			name:         "invalid JSON",
			inputBody:    "{",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"detail":"invalid request body"}`,
		},
		{
			name:      "invalid token",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Delete(gomock.Any(), "T1", int64(1)).Return(services.ErrInvalidToken)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"detail":"Invalid token"}`,
		},
		{
			name:      "already deleted",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Delete(gomock.Any(), "T1", int64(1)).Return(services.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"detail":"User not found"}`,
		},
		{
			name:      "internal error",
			inputBody: SessionRequest{AccessToken: "T1", UserID: 1},
			mockSetup: func() {
				mockSvc.EXPECT().Delete(gomock.Any(), "T1", int64(1)).Return(errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"detail":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			w := serve(NewDeleteHandler(mockSvc), http.MethodPost, "/delete", tt.inputBody)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
