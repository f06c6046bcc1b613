package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the Store interface for shared
// broker deployments.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL preference store using the given DSN.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_prefs (
			user_id VARCHAR(64) PRIMARY KEY,
			settings JSON NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Get returns the stored settings for a user. A user with no stored
// settings gets an empty document, not an error.
func (s *MySQLStore) Get(ctx context.Context, userID string) (map[string]interface{}, error) {
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
func (s *MySQLStore) Set(ctx context.Context, userID string, settings map[string]interface{}) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_prefs (user_id, settings)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE settings = VALUES(settings)
	`, userID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}

// Stop closes the database connection.
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
