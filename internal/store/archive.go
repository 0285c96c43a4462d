// Package store persists retrieved bankmail: one .eml file per message
// plus a sqlite index used to skip messages already on disk.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/retrieve-bankmail/internal/model"
)

// Archive is the sqlite index of messages that have been written out.
type Archive struct {
	db *sqlx.DB
}

// NewArchive opens (or creates) the index database at dbPath, enables
// WAL mode, and runs any pending schema migrations.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	a := &Archive{db: db}
	if err := a.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return a, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (a *Archive) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := a.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = a.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := a.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Has reports whether the message with the given ID has already been
// saved.
func (a *Archive) Has(ctx context.Context, id string) (bool, error) {
	var count int
	err := a.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM messages WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("checking message %s: %w", id, err)
	}
	return count > 0, nil
}

// Record indexes a saved message and the file path it was written to.
func (a *Archive) Record(ctx context.Context, msg model.Message, path string) error {
	const query = `
		INSERT OR REPLACE INTO messages (id, subject, sender, date, path)
		VALUES (?, ?, ?, ?, ?)`

	_, err := a.db.ExecContext(ctx, query, msg.ID, msg.Subject, msg.Sender, msg.Date, path)
	if err != nil {
		return fmt.Errorf("recording message %s: %w", msg.ID, err)
	}

	return nil
}

// Count returns how many messages the index holds.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var count int
	if err := a.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM messages"); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}
