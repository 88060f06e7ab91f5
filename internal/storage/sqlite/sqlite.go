package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"eventRegistry/internal/models"
	"eventRegistry/internal/storage"
	"eventRegistry/internal/storage/migrations"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Storage struct {
	DB *sql.DB
}

// New opens the database at storagePath and applies pending migrations. The
// pool is limited to one connection, so every transaction holds the only
// writer until it finishes.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	// Pragmas go in the DSN so they apply to every connection the pool opens.
	db, err := sql.Open("sqlite", storagePath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = migrations.Run(ctx, db, sub, migrations.SQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.sqlite.SaveUser"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt.UTC(),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.sqlite.UserByEmail"

	user, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.sqlite.UserByID"

	user, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	const op = "storage.sqlite.SetResetToken"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET reset_token = ?, reset_expiration = ?
		WHERE id = ?`,
		token, expiresAt.UnixMilli(), userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// ResetPassword replaces the password hash of the user holding token and
// clears the reset fields, provided the token expires strictly after now.
func (s *Storage) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error {
	const op = "storage.sqlite.ResetPassword"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, reset_token = NULL, reset_expiration = NULL
		WHERE reset_token = ? AND reset_expiration > ?`,
		passwordHash, token, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrResetTokenInvalid)
	}

	return nil
}

func (s *Storage) SaveEvent(ctx context.Context, event *models.Event) error {
	const op = "storage.sqlite.SaveEvent"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO events (id, place, name, capacity, duration, address, image, start_time, end_time, seats_taken, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Place,
		event.Name,
		event.Capacity,
		event.Duration,
		event.Address,
		event.Image,
		event.StartTime,
		event.EndTime,
		event.SeatsTaken,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Event(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.sqlite.Event"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	event, err := loadEvent(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return event, nil
}

// Events holds the only connection in a transaction across both reads so no
// registration lands between them.
func (s *Storage) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.sqlite.Events"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selectEvent+` ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]models.Event, 0)
	index := make(map[string]int)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		index[event.ID] = len(events)
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows.Close()

	attRows, err := tx.QueryContext(ctx, `
		SELECT event_id, name, mobile, seats
		FROM attendees
		ORDER BY event_id, position`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer attRows.Close()

	for attRows.Next() {
		var eventID string
		var a models.Attendee
		if err := attRows.Scan(&eventID, &a.Name, &a.Mobile, &a.Seats); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Attendees = append(events[i].Attendees, a)
		}
	}

	if err = attRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return events, nil
}

// UpdateEvent runs fn inside a transaction. With a single pool connection the
// transaction excludes every other reader and writer until it ends.
func (s *Storage) UpdateEvent(ctx context.Context, id string, fn storage.EventMutator) (*models.Event, error) {
	const op = "storage.sqlite.UpdateEvent"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	event, err := loadEvent(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	before := len(event.Attendees)

	if err = fn(event); err != nil {
		return nil, err
	}

	if len(event.Attendees) < before {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAttendeesRemoved)
	}

	for i := before; i < len(event.Attendees); i++ {
		a := event.Attendees[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attendees (event_id, position, name, mobile, seats)
			VALUES (?, ?, ?, ?, ?)`,
			event.ID, i, a.Name, a.Mobile, a.Seats,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: insert attendee: %w", op, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `UPDATE events SET seats_taken = ? WHERE id = ?`, event.SeatsTaken, event.ID); err != nil {
		return nil, fmt.Errorf("%s: update seats: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return event, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteEvent"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
	}

	return nil
}
