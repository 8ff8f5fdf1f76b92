// Package history keeps the long-term command event archive in SQLite and
// imports existing shell history files into it. The archive is the fallback
// training corpus when the live context window is too thin.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/runger/cmdlearn/internal/event"
)

// Archive is an append-mostly log of command events.
type Archive struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the archive database at path. WAL mode
// keeps a recording writer from blocking readers.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// SQLite handles concurrency better with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS command_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			exit_code INTEGER NOT NULL DEFAULT 0,
			timestamp REAL NOT NULL,
			session_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_command_events_timestamp
			ON command_events(timestamp);
	`)
	return err
}

// Append stores one command event.
func (a *Archive) Append(ctx context.Context, ev event.CommandEvent) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO command_events (command, exit_code, timestamp, session_id)
		VALUES (?, ?, ?, ?)
	`, ev.Command, ev.ExitCode, ev.Timestamp, ev.SessionID)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// AppendBatch stores events in one transaction, for bulk imports.
func (a *Archive) AppendBatch(ctx context.Context, events []event.CommandEvent) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO command_events (command, exit_code, timestamp, session_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, ev.Command, ev.ExitCode, ev.Timestamp, ev.SessionID); err != nil {
			return fmt.Errorf("import event: %w", err)
		}
	}
	return tx.Commit()
}

// Commands returns the most recent archived command strings, oldest first,
// capped at limit (0 means all).
func (a *Archive) Commands(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT command FROM command_events ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var commands []string
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		commands = append(commands, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(commands)-1; i < j; i, j = i+1, j-1 {
		commands[i], commands[j] = commands[j], commands[i]
	}
	return commands, nil
}

// Count returns the number of archived events.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM command_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count archive: %w", err)
	}
	return n, nil
}

// Close closes the archive. Safe to call more than once.
func (a *Archive) Close() error {
	a.closeOnce.Do(func() {
		_, _ = a.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		a.closeErr = a.db.Close()
	})
	return a.closeErr
}
