package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventRegistry/internal/models"
	"eventRegistry/internal/storage"
)

const (
	selectUser = `
		SELECT id, name, email, password_hash, reset_token, reset_expiration, created_at
		FROM users`

	selectEvent = `
		SELECT id, place, name, capacity, duration, address, image, start_time, end_time, seats_taken, created_at
		FROM events`
)

type scanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user       models.User
		resetToken sql.NullString
		resetExp   sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&resetToken,
		&resetExp,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExp.Valid {
		user.ResetExpiration = &resetExp.Time
	}

	return &user, nil
}

func scanEvent(row scanner) (*models.Event, error) {
	var event models.Event

	err := row.Scan(
		&event.ID,
		&event.Place,
		&event.Name,
		&event.Capacity,
		&event.Duration,
		&event.Address,
		&event.Image,
		&event.StartTime,
		&event.EndTime,
		&event.SeatsTaken,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Attendees = make([]models.Attendee, 0)

	return &event, nil
}

// loadEvent reads one event selected by query and its attendees in order.
func loadEvent(ctx context.Context, q queryer, query string, id string) (*models.Event, error) {
	event, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT name, mobile, seats
		FROM attendees
		WHERE event_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.Name, &a.Mobile, &a.Seats); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		event.Attendees = append(event.Attendees, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}

	return event, nil
}
