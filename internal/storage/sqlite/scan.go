package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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
		resetExp   sql.NullInt64
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
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExp.Valid {
		exp := time.UnixMilli(resetExp.Int64).UTC()
		user.ResetExpiration = &exp
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
		return nil, fmt.Errorf("scan event: %w", err)
	}

	event.Attendees = make([]models.Attendee, 0)

	return &event, nil
}

func loadEvent(ctx context.Context, q queryer, id string) (*models.Event, error) {
	event, err := scanEvent(q.QueryRowContext(ctx, selectEvent+` WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT name, mobile, seats
		FROM attendees
		WHERE event_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.Name, &a.Mobile, &a.Seats); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		event.Attendees = append(event.Attendees, a)
	}

	return event, rows.Err()
}
