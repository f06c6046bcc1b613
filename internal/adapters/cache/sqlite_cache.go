package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

// The snapshot table holds exactly one row. Storing a new contact list
// replaces the whole row so readers never see a half-written directory.
const snapshotKey = "contacts"

// SQLiteCache is a SQLite implementation of the ContactCache interface. The
// contact list survives process restarts.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteCache creates a new SQLite contact cache at the given path.
func NewSQLiteCache(dbPath string, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contact_snapshot (
			slot TEXT PRIMARY KEY,
			contacts TEXT NOT NULL,
			stored_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteCache{db: db, logger: logger}, nil
}

// Store replaces the cached contact list.
func (c *SQLiteCache) Store(ctx context.Context, contacts []core.Contact) error {
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contact_snapshot (slot, contacts, stored_at)
		VALUES (?, ?, ?)
	`, snapshotKey, string(payload), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store contact snapshot: %w", err)
	}

	c.logger.Debug("Stored contact snapshot", zap.Int("count", len(contacts)))
	return nil
}

// Load returns the cached contact list, or core.ErrNotCached when no
// snapshot has been stored yet.
func (c *SQLiteCache) Load(ctx context.Context) ([]core.Contact, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `
		SELECT contacts FROM contact_snapshot WHERE slot = ?
	`, snapshotKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query contact snapshot: %w", err)
	}

	var contacts []core.Contact
	if err := json.Unmarshal([]byte(payload), &contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact snapshot: %w", err)
	}
	return contacts, nil
}

// Stop closes the database connection.
func (c *SQLiteCache) Stop() {
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
