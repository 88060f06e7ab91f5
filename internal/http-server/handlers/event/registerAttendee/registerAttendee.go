package registerAttendee

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile" validate:"required"`
	Seats  int    `json:"seats"`
}

type Response struct {
	response.Response
	Message string        `json:"message"`
	Event   *models.Event `json:"event"`
}

// CapacityResponse tells the client how many seats are still free.
type CapacityResponse struct {
	response.Response
	Remaining int `json:"remaining"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AttendeeRegistrar
type AttendeeRegistrar interface {
	RegisterAttendee(ctx context.Context, eventID, name, mobile string, seats int) (*models.Event, error)
}

func New(log *slog.Logger, registrar AttendeeRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.registerAttendee.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		eventID := chi.URLParam(r, "eventId")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", eventID))

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

		event, err := registrar.RegisterAttendee(r.Context(), eventID, req.Name, req.Mobile, req.Seats)
		if err != nil {
			var capErr *apperr.CapacityError
			if errors.As(err, &capErr) {
				log.Info("registration rejected", slog.Int("seats", req.Seats), slog.Int("remaining", capErr.Remaining))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, CapacityResponse{
					Response:  response.Error(capErr.Error()),
					Remaining: capErr.Remaining,
				})
				return
			}

			log.Error("failed to register attendee", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		log.Info("attendee registered", slog.Int("seats", req.Seats))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Message:  "Registration successful",
			Event:    event,
		})
	}
}
