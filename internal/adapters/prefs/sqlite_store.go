package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the Store interface.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite preference store at the given path.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_prefs (
			user_id TEXT PRIMARY KEY,
			settings TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the stored settings for a user. A user with no stored
// settings gets an empty document, not an error.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (map[string]interface{}, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT settings FROM user_prefs WHERE user_id = ?
	`, userID).Scan(&payload)
	if err == sql.ErrNoRows {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return settings, nil
}

// Set replaces the stored settings for a user.
func (s *SQLiteStore) Set(ctx context.Context, userID string, settings map[string]interface{}) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_prefs (user_id, settings, updated_at)
		VALUES (?, ?, ?)
	`, userID, string(payload), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}

// Stop closes the database connection.
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
