package resetPassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Password string `json:"password" validate:"required"`
}

type Response struct {
	response.Response
	Message string `json:"message"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=PasswordResetter
type PasswordResetter interface {
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
}

func New(log *slog.Logger, resetter PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.resetPassword.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")

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

		if err = resetter.CompletePasswordReset(r.Context(), token, req.Password); err != nil {
			log.Warn("password reset rejected", sl.Err(err))

			status := apperr.HTTPStatus(err)
			if apperr.KindOf(err) == apperr.KindAuth {
				status = http.StatusBadRequest
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		log.Info("password reset completed")

		render.JSON(w, r, Response{
			Response: response.OK(),
			Message:  "Password has been reset",
		})
	}
}
