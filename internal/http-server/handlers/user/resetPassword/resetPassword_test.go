package resetPassword

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventRegistry/internal/http-server/handlers/user/resetPassword/mocks"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/handlers/slogdiscard"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testToken = "a3f9c0d1e2b34c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5"

func TestResetPasswordHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.PasswordResetter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Success",
			requestBody: `{"password":"brand-new-pass"}`,
			mockSetup: func(m *mocks.PasswordResetter) {
				m.On("CompletePasswordReset", mock.Anything, testToken, "brand-new-pass").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","message":"Password has been reset"}`,
		},
		{
			name:        "Expired or used token",
			requestBody: `{"password":"brand-new-pass"}`,
			mockSetup: func(m *mocks.PasswordResetter) {
				m.On("CompletePasswordReset", mock.Anything, testToken, "brand-new-pass").
					Return(apperr.Auth("Password reset token is invalid or has expired"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"Password reset token is invalid or has expired"}`,
		},
		{
			name:        "Short password",
			requestBody: `{"password":"short"}`,
			mockSetup: func(m *mocks.PasswordResetter) {
				m.On("CompletePasswordReset", mock.Anything, testToken, "short").
					Return(apperr.Validation("Password must be at least 8 characters"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"Password must be at least 8 characters"}`,
		},
		{
			name:           "Missing password",
			requestBody:    `{}`,
			mockSetup:      func(m *mocks.PasswordResetter) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Password is a required field"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resetter := mocks.NewPasswordResetter(t)
			tc.mockSetup(resetter)

			router := chi.NewRouter()
			router.Post("/reset/{token}", New(logger, resetter))

			req := httptest.NewRequest(http.MethodPost, "/reset/"+testToken, bytes.NewBufferString(tc.requestBody))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
