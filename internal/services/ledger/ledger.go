// Package ledger owns events and their attendee lists and guarantees that
// reserved seats never exceed an event's capacity.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/models"
	"eventRegistry/internal/storage"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type EventStorage interface {
	SaveEvent(ctx context.Context, event *models.Event) error
	Event(ctx context.Context, id string) (*models.Event, error)
	Events(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, fn storage.EventMutator) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type Service struct {
	log          *slog.Logger
	events       EventStorage
	storeTimeout time.Duration
	readRetries  uint64
	now          func() time.Time
}

type Option func(*Service)

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// WithReadRetries sets how many times a read that failed transiently is
// retried.
func WithReadRetries(n uint64) Option {
	return func(s *Service) { s.readRetries = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(log *slog.Logger, events EventStorage, opts ...Option) *Service {
	s := &Service{
		log:          log,
		events:       events,
		storeTimeout: 3 * time.Second,
		readRetries:  3,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateEventInput struct {
	Place     string
	Name      string
	Capacity  int
	Duration  string
	Address   string
	Image     string
	StartTime string
	EndTime   string
}

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "services.ledger.ListEvents"

	var events []models.Event

	err := s.retryRead(ctx, func(ctx context.Context) error {
		var err error
		events, err = s.events.Events(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	const op = "services.ledger.GetEvent"

	if !validID(id) {
		return nil, apperr.NotFound("Event not found")
	}

	var event *models.Event

	err := s.retryRead(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.Event(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			return nil, apperr.NotFound("Event not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	const op = "services.ledger.CreateEvent"

	required := []string{in.Place, in.Name, in.Duration, in.Address, in.StartTime, in.EndTime}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return nil, apperr.Validation("All fields are required")
		}
	}

	if in.Capacity <= 0 {
		return nil, apperr.Validation("Participation number must be a positive number")
	}

	event := &models.Event{
		ID:         uuid.NewString(),
		Place:      in.Place,
		Name:       in.Name,
		Capacity:   in.Capacity,
		Duration:   in.Duration,
		Address:    in.Address,
		Image:      in.Image,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		SeatsTaken: 0,
		Attendees:  make([]models.Attendee, 0),
		CreatedAt:  s.now().UTC(),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.events.SaveEvent(storeCtx, event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	s.log.Info("event created", slog.String("op", op), slog.String("event_id", event.ID))

	return event, nil
}

// RegisterAttendee reserves seats on an event for one attendee. The capacity
// check and the append run under the store's per-event lock, so concurrent
// registrations cannot oversell.
func (s *Service) RegisterAttendee(ctx context.Context, eventID, name, mobile string, seats int) (*models.Event, error) {
	const op = "services.ledger.RegisterAttendee"

	if seats <= 0 {
		return nil, apperr.Validation("Seats must be a positive number")
	}

	if !validID(eventID) {
		return nil, apperr.NotFound("Event not found")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	event, err := s.events.UpdateEvent(storeCtx, eventID, func(event *models.Event) error {
		return reserve(event, models.Attendee{Name: name, Mobile: mobile, Seats: seats})
	})
	if err != nil {
		var capErr *apperr.CapacityError
		switch {
		case errors.As(err, &capErr):
			return nil, err
		case errors.Is(err, storage.ErrEventNotFound):
			return nil, apperr.NotFound("Event not found")
		default:
			return nil, fmt.Errorf("%s: %w", op, apperr.FromStore(err))
		}
	}

	s.log.Info("attendee registered",
		slog.String("op", op),
		slog.String("event_id", eventID),
		slog.Int("seats", seats),
		slog.Int("seats_taken", event.SeatsTaken),
	)

	return event, nil
}

// reserve appends attendee to event if the seats fit. The reserved total is
// recomputed from the attendee list rather than taken from SeatsTaken.
func reserve(event *models.Event, attendee models.Attendee) error {
	total := event.ReservedSeats()
	remaining := event.Capacity - total

	if remaining < attendee.Seats {
		return apperr.Capacity(max(remaining, 0))
	}

	event.Attendees = append(event.Attendees, attendee)
	event.SeatsTaken = total + attendee.Seats

	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	const op = "services.ledger.DeleteEvent"

	if !validID(id) {
		return apperr.NotFound("Event Not found")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.events.DeleteEvent(storeCtx, id); err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			return apperr.NotFound("Event Not found")
		}
		return fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	s.log.Info("event deleted", slog.String("op", op), slog.String("event_id", id))

	return nil
}

// retryRead runs an idempotent read with exponential backoff while it fails
// transiently. Store sentinel errors are returned unchanged.
func (s *Service) retryRead(ctx context.Context, read func(ctx context.Context) error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 50 * time.Millisecond

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, s.readRetries), ctx)

	return backoff.Retry(func() error {
		storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()

		err := read(storeCtx)
		if err == nil {
			return nil
		}

		if errors.Is(err, storage.ErrEventNotFound) {
			return backoff.Permanent(err)
		}

		err = apperr.FromStore(err)
		if !apperr.IsTransient(err) {
			return backoff.Permanent(err)
		}

		s.log.Warn("transient store failure, retrying", sl.Err(err))

		return err
	}, policy)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
