package me

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistry/internal/http-server/middleware/mwauth"
	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	User models.PublicUser `json:"user"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=CurrentUserGetter
type CurrentUserGetter interface {
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// New must be mounted behind mwauth.
func New(log *slog.Logger, users CurrentUserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := mwauth.UserID(r.Context())
		if !ok {
			log.Error("no authenticated user in context")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Access denied. No token provided."))
			return
		}

		user, err := users.CurrentUser(r.Context(), userID)
		if err != nil {
			log.Error("failed to load current user", slog.String("user_id", userID), sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		render.JSON(w, r, Response{
			Response: response.OK(),
			User:     user.Public(),
		})
	}
}
