package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"eventRegistry/internal/http-server/middleware/mwratelimit"
	"eventRegistry/internal/http-server/router"
	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/lib/logger/handlers/slogdiscard"
	"eventRegistry/internal/mail/logmail"
	"eventRegistry/internal/services/auth"
	"eventRegistry/internal/services/ledger"
	"eventRegistry/internal/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	handler http.Handler
	outbox  *bytes.Buffer
}

func newTestApp(t *testing.T, opts router.Options) *testApp {
	t.Helper()

	log := slogdiscard.NewDiscardLogger()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	outbox := &bytes.Buffer{}

	authSvc, err := auth.New(log, st, logmail.New(log, outbox), []byte("router-test-secret-with-32-bytes-or-more"),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	require.NoError(t, err)

	opts.ResetURLBase = "https://events.example.com"
	h := router.New(log, authSvc, ledger.New(log, st), opts)

	return &testApp{handler: h, outbox: outbox}
}

func (a *testApp) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	return a.doFrom(t, "", method, path, body, token)
}

// doFrom sends the request with forwardedFor in X-Forwarded-For when it is set.
func (a *testApp) doFrom(t *testing.T, forwardedFor, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	return rr
}

func sessionToken(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	t.Fatalf("no session cookie in response")
	return ""
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestEventLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, router.Options{})

	rr := app.do(t, http.MethodPost, "/signup", `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	token := sessionToken(t, rr)

	rr = app.do(t, http.MethodGet, "/me", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ann@example.com", decode(t, rr)["user"].(map[string]any)["email"])

	newEvent := `{"place":"Pune","eventname":"Go Meetup","participationNumber":10,"duration":"3h","address":"FC Road","startTime":"18:00","endTime":"21:00"}`

	rr = app.do(t, http.MethodPost, "/events", newEvent, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(t, http.MethodPost, "/events", newEvent, "forged")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(t, http.MethodPost, "/events", newEvent, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	eventID := decode(t, rr)["event"].(map[string]any)["id"].(string)

	rr = app.do(t, http.MethodPost, "/register/"+eventID, `{"name":"Ann","mobile":"9000000001","seats":6}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = app.do(t, http.MethodPost, "/register/"+eventID, `{"name":"Bob","mobile":"9000000002","seats":5}`, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Only 4 seats remaining", body["error"])
	assert.EqualValues(t, 4, body["remaining"])

	rr = app.do(t, http.MethodGet, "/events/"+eventID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	event := decode(t, rr)["event"].(map[string]any)
	assert.EqualValues(t, 6, event["seatsTaken"])
	assert.Len(t, event["attendees"], 1)

	rr = app.do(t, http.MethodGet, "/events", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["events"], 1)

	rr = app.do(t, http.MethodDelete, "/events/"+eventID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(t, http.MethodDelete, "/events/"+eventID, "", token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(t, http.MethodGet, "/events/"+eventID, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(t, http.MethodPost, "/register/not-a-uuid", `{"name":"Ann","mobile":"1","seats":1}`, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

var resetLink = regexp.MustCompile(`https://events\.example\.com/reset/([0-9a-f]{64})`)

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, router.Options{})

	rr := app.do(t, http.MethodPost, "/signup", `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = app.do(t, http.MethodPost, "/signup", `{"name":"Ann","email":"ANN@example.com","password":"secret123"}`, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = app.do(t, http.MethodPost, "/request-reset", `{"email":"ghost@example.com"}`, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(t, http.MethodPost, "/request-reset", `{"email":"ann@example.com"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	m := resetLink.FindStringSubmatch(app.outbox.String())
	require.Len(t, m, 2, "reset link not mailed: %q", app.outbox.String())
	resetToken := m[1]

	rr = app.do(t, http.MethodPost, "/reset/"+resetToken, `{"password":"brand-new-pass"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = app.do(t, http.MethodPost, "/reset/"+resetToken, `{"password":"another-pass"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(t, http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.do(t, http.MethodPost, "/login", `{"email":"ann@example.com","password":"brand-new-pass"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ann", decode(t, rr)["name"])
	token := sessionToken(t, rr)

	rr = app.do(t, http.MethodPost, "/logout", "", token)
	assert.Equal(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			assert.Empty(t, c.Value)
		}
	}
}

func TestCredentialEndpointsAreRateLimited(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, router.Options{Limiter: mwratelimit.New(1, 2)})

	body := `{"email":"ghost@example.com","password":"whatever1"}`

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/login", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/login", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(t, http.MethodPost, "/login", body, "").Code)

	// reads are not throttled
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/events", "", "").Code)
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, router.Options{Limiter: mwratelimit.New(1, 1)})

	body := `{"email":"ghost@example.com","password":"whatever1"}`

	limited := 0
	for i := 0; i < 10; i++ {
		rr := app.doFrom(t, fmt.Sprintf("10.0.0.%d", i), http.MethodPost, "/login", body, "")
		if i == 0 {
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			continue
		}
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 9, limited)
}

func TestRateLimitKeysOnForwardedForBehindTrustedProxy(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, router.Options{Limiter: mwratelimit.New(1, 1), TrustProxy: true})

	body := `{"email":"ghost@example.com","password":"whatever1"}`

	assert.Equal(t, http.StatusUnauthorized, app.doFrom(t, "10.0.0.1", http.MethodPost, "/login", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.doFrom(t, "10.0.0.2", http.MethodPost, "/login", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, app.doFrom(t, "10.0.0.1", http.MethodPost, "/login", body, "").Code)
}
