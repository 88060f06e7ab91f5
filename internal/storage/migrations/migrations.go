package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

// Dialect holds the statements that differ between drivers.
type Dialect struct {
	CreateTable  string
	RecordInsert string
}

var (
	Postgres = Dialect{
		CreateTable: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				filename TEXT PRIMARY KEY,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		RecordInsert: `INSERT INTO schema_migrations (filename) VALUES ($1)`,
	}
	SQLite = Dialect{
		CreateTable: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				filename TEXT PRIMARY KEY,
				applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		RecordInsert: `INSERT INTO schema_migrations (filename) VALUES (?)`,
	}
)

// Run applies every .sql file of fsys that is not yet recorded in
// schema_migrations, in lexical order, each in its own transaction.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, d Dialect) error {
	const op = "storage.migrations.Run"

	if _, err := db.ExecContext(ctx, d.CreateTable); err != nil {
		return fmt.Errorf("%s: create migrations table: %w", op, err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, filename := range files {
		if applied[filename] {
			continue
		}

		if err := apply(ctx, db, fsys, d, filename); err != nil {
			return fmt.Errorf("%s: apply %s: %w", op, filename, err)
		}

		slog.Debug("migration applied", slog.String("file", filename))
	}

	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}

func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	return files, nil
}

func apply(ctx context.Context, db *sql.DB, fsys fs.FS, d Dialect, filename string) error {
	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("execute sql: %w", err)
	}

	if _, err = tx.ExecContext(ctx, d.RecordInsert, filename); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
