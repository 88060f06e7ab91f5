package createEvent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"
	"eventRegistry/internal/services/ledger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type EventRequest struct {
	Place               string `json:"place" validate:"required"`
	EventName           string `json:"eventname" validate:"required"`
	ParticipationNumber int    `json:"participationNumber"`
	Duration            string `json:"duration" validate:"required"`
	Address             string `json:"address" validate:"required"`
	Image               string `json:"image"`
	StartTime           string `json:"startTime" validate:"required"`
	EndTime             string `json:"endTime" validate:"required"`
}

type EventResponse struct {
	response.Response
	Message string        `json:"message"`
	Event   *models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, in ledger.CreateEventInput) (*models.Event, error)
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req EventRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		event, err := creator.CreateEvent(r.Context(), ledger.CreateEventInput{
			Place:     req.Place,
			Name:      req.EventName,
			Capacity:  req.ParticipationNumber,
			Duration:  req.Duration,
			Address:   req.Address,
			Image:     req.Image,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			log.Error("failed to add event", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))

			return
		}

		log.Info("event added", slog.String("id", event.ID))

		responseOK(w, r, event)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, event *models.Event) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		Message:  "Event Created Successfully",
		Event:    event,
	})
}
