package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), session.Cookies{MaxAge: time.Hour})

	for _, withCookie := range []bool{true, false} {
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		if withCookie {
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "jwt-token"})
		}
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"OK","message":"Logged out successfully"}`, rr.Body.String())

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.CookieName, cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Less(t, cookies[0].MaxAge, 0)
	}
}
