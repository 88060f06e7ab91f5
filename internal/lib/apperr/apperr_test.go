package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		err            error
		expectedKind   Kind
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "Validation",
			err:            Validation("seats must be a positive number"),
			expectedKind:   KindValidation,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "seats must be a positive number",
		},
		{
			name:           "Conflict",
			err:            Conflict("email already exists"),
			expectedKind:   KindConflict,
			expectedStatus: http.StatusConflict,
			expectedMsg:    "email already exists",
		},
		{
			name:           "Auth wrapped",
			err:            fmt.Errorf("services.auth.Authenticate: %w", Auth("invalid credentials")),
			expectedKind:   KindAuth,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "invalid credentials",
		},
		{
			name:           "Not found",
			err:            NotFound("event not found"),
			expectedKind:   KindNotFound,
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "event not found",
		},
		{
			name:           "Capacity",
			err:            fmt.Errorf("op: %w", Capacity(4)),
			expectedKind:   KindCapacity,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Only 4 seats remaining",
		},
		{
			name:           "Send hides cause",
			err:            Send(errors.New("smtp: 535 bad credentials")),
			expectedKind:   KindSend,
			expectedStatus: http.StatusBadGateway,
			expectedMsg:    "failed to send email",
		},
		{
			name:           "Plain error is internal",
			err:            errors.New("pq: relation \"events\" does not exist"),
			expectedKind:   KindInternal,
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expectedKind, KindOf(tc.err))
			assert.Equal(t, tc.expectedStatus, HTTPStatus(tc.err))
			assert.Equal(t, tc.expectedMsg, Message(tc.err))
		})
	}
}

func TestFromStore(t *testing.T) {
	t.Parallel()

	assert.NoError(t, FromStore(nil))

	assert.True(t, IsTransient(FromStore(fmt.Errorf("query: %w", context.DeadlineExceeded))))
	assert.True(t, IsTransient(FromStore(driver.ErrBadConn)))
	assert.Equal(t, KindInternal, KindOf(FromStore(errors.New("syntax error"))))

	notFound := NotFound("user not found")
	assert.Same(t, notFound, FromStore(notFound))

	internal := FromStore(errors.New("secret dsn in message"))
	assert.NotContains(t, Message(internal), "secret")
}

func TestCapacityErrorAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", Capacity(0))

	var capErr *CapacityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, 0, capErr.Remaining)
}
