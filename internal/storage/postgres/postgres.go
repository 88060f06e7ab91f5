package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"eventRegistry/internal/config"
	"eventRegistry/internal/models"
	"eventRegistry/internal/storage"
	"eventRegistry/internal/storage/migrations"

	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	return Open(connStr)
}

// Open connects with a libpq connection string and applies pending migrations.
func Open(connStr string) (*Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	if err = migrations.Run(ctx, db, sub, migrations.Postgres); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.DB.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	user, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	user, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	const op = "storage.postgres.SetResetToken"

	query := `
		UPDATE users
		SET reset_token = $2, reset_expiration = $3
		WHERE id = $1`

	res, err := s.DB.ExecContext(ctx, query, userID, token, expiresAt)
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
	const op = "storage.postgres.ResetPassword"

	query := `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_expiration = NULL
		WHERE reset_token = $1 AND reset_expiration > $3`

	res, err := s.DB.ExecContext(ctx, query, token, passwordHash, now)
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
	const op = "storage.postgres.SaveEvent"

	query := `
		INSERT INTO events (id, place, name, capacity, duration, address, image, start_time, end_time, seats_taken, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.DB.ExecContext(ctx, query,
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
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Event(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.postgres.Event"

	tx, err := s.beginSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	event, err := loadEvent(ctx, tx, selectEvent+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return event, nil
}

// Events reads every event and all attendees from one snapshot, so each
// event's seats_taken matches the attendees returned with it.
func (s *Storage) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.Events"

	tx, err := s.beginSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selectEvent+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	index := make(map[string]int)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		index[event.ID] = len(events)
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating events: %w", op, err)
	}

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
			return nil, fmt.Errorf("%s: failed to scan attendee: %w", op, err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Attendees = append(events[i].Attendees, a)
		}
	}

	if err = attRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating attendees: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return events, nil
}

func (s *Storage) beginSnapshot(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	return tx, nil
}

// UpdateEvent locks the event row for the duration of a transaction, hands the
// event to fn and persists the attendees fn appended together with the new
// seats_taken. Concurrent updates of the same event are serialized by the row
// lock.
func (s *Storage) UpdateEvent(ctx context.Context, id string, fn storage.EventMutator) (*models.Event, error) {
	const op = "storage.postgres.UpdateEvent"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	event, err := loadEvent(ctx, tx, selectEvent+` WHERE id = $1 FOR UPDATE`, id)
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
			VALUES ($1, $2, $3, $4, $5)`,
			event.ID, i, a.Name, a.Mobile, a.Seats,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to insert attendee: %w", op, err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE events SET seats_taken = $2 WHERE id = $1`, event.ID, event.SeatsTaken)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update seats: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return event, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteEvent"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
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
