// Package mwauth guards identity-scoped routes with the session cookie.
package mwauth

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TokenVerifier
type TokenVerifier interface {
	VerifySessionToken(token string) (string, error)
}

// New rejects requests without a session cookie with 401 and requests with an
// invalid or expired one with 400. Accepted requests carry the user id in
// their context.
func New(log *slog.Logger, verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/auth"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)

			userID, err := verifier.VerifySessionToken(token)
			if err != nil {
				log.Warn("request rejected",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)

				status := http.StatusUnauthorized
				if token != "" {
					status = http.StatusBadRequest
				}

				render.Status(r, status)
				render.JSON(w, r, response.Error(apperr.Message(err)))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// UserID returns the id of the user authenticated by New.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
