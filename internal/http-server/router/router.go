// Package router mounts every endpoint of the registry on a chi router.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventRegistry/internal/http-server/handlers/event/createEvent"
	"eventRegistry/internal/http-server/handlers/event/deleteEvent"
	"eventRegistry/internal/http-server/handlers/event/getAllEvents"
	"eventRegistry/internal/http-server/handlers/event/getEventInfo"
	"eventRegistry/internal/http-server/handlers/event/registerAttendee"
	"eventRegistry/internal/http-server/handlers/user/login"
	"eventRegistry/internal/http-server/handlers/user/logout"
	"eventRegistry/internal/http-server/handlers/user/me"
	"eventRegistry/internal/http-server/handlers/user/requestReset"
	"eventRegistry/internal/http-server/handlers/user/resetPassword"
	"eventRegistry/internal/http-server/handlers/user/signup"
	"eventRegistry/internal/http-server/middleware/mwauth"
	"eventRegistry/internal/http-server/middleware/mwlogger"
	"eventRegistry/internal/http-server/middleware/mwratelimit"
	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/models"
	"eventRegistry/internal/services/ledger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Auth interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	VerifySessionToken(token string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email, linkBase string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	TokenTTL() time.Duration
}

type Ledger interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, in ledger.CreateEventInput) (*models.Event, error)
	RegisterAttendee(ctx context.Context, eventID, name, mobile string, seats int) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type Options struct {
	CookieSecure bool
	ResetURLBase string
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy   bool
	// Limiter guards the credential endpoints. Nil disables limiting.
	Limiter      *mwratelimit.Limiter
}

func New(log *slog.Logger, auth Auth, events Ledger, opts Options) http.Handler {
	cookies := session.Cookies{MaxAge: auth.TokenTTL(), Secure: opts.CookieSecure}
	requireAuth := mwauth.New(log, auth)

	throttle := func(next http.Handler) http.Handler { return next }
	if opts.Limiter != nil {
		throttle = opts.Limiter.Middleware(log)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	if opts.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.With(throttle).Post("/signup", signup.New(log, auth, cookies))
	router.With(throttle).Post("/login", login.New(log, auth, cookies))
	router.Post("/logout", logout.New(log, cookies))
	router.With(requireAuth).Get("/me", me.New(log, auth))
	router.With(throttle).Post("/request-reset", requestReset.New(log, auth, opts.ResetURLBase))
	router.With(throttle).Post("/reset/{token}", resetPassword.New(log, auth))

	router.Get("/events", getAllEvents.New(log, events))
	router.Get("/events/{id}", getEventInfo.New(log, events))
	router.With(requireAuth).Post("/events", createEvent.New(log, events))
	router.With(requireAuth).Delete("/events/{id}", deleteEvent.New(log, events))
	router.Post("/register/{eventId}", registerAttendee.New(log, events))

	return router
}
