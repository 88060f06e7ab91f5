package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-with-at-least-32-bytes")

func TestNewTokenRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC)

	token, err := NewToken("user-1", testSecret, 5*24*time.Hour, now)
	require.NoError(t, err)

	userID, err := ParseToken(token, testSecret, now.Add(4*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParseTokenRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC)

	valid, err := NewToken("user-1", testSecret, time.Hour, now)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString(testSecret)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		token  string
		secret []byte
		at     time.Time
	}{
		{name: "Expired", token: valid, secret: testSecret, at: now.Add(2 * time.Hour)},
		{name: "Wrong secret", token: valid, secret: []byte("another-secret-key-with-32-bytes!!"), at: now},
		{name: "Garbage", token: "not.a.token", secret: testSecret, at: now},
		{name: "None algorithm", token: noneAlg, secret: testSecret, at: now},
		{name: "Missing expiry", token: noExpiry, secret: testSecret, at: now},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseToken(tc.token, tc.secret, tc.at)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
