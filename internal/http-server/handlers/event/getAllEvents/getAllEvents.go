package getAllEvents

import (
	"context"
	"log/slog"
	"net/http"

	"eventRegistry/internal/lib/api/response"
	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type EventsResponse struct {
	response.Response
	Events []models.Event `json:"events"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventsGetter
type EventsGetter interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

func New(log *slog.Logger, events EventsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getAllEvents.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		list, err := events.ListEvents(r.Context())
		if err != nil {
			log.Error("failed to get events", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		if list == nil {
			list = make([]models.Event, 0)
		}

		log.Info("events received", slog.Int("count", len(list)))

		responseOK(w, r, list)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, events []models.Event) {
	render.JSON(w, r, EventsResponse{
		Response: response.OK(),
		Events:   events,
	})
}
