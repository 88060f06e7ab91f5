package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Response struct {
	response.Response
	Message string `json:"message"`
	models.PublicUser
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Authenticator
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
}

func New(log *slog.Logger, auth Authenticator, cookies session.Cookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		user, token, err := auth.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			log.Warn("login failed", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		log.Info("user logged in", slog.String("user_id", user.ID))

		cookies.Set(w, token)

		render.JSON(w, r, Response{
			Response:   response.OK(),
			Message:    "Logged in successfully",
			PublicUser: user.Public(),
		})
	}
}
