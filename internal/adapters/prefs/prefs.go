// Package prefs persists per-user extension settings. Settings are an
// opaque JSON document keyed by the auth service user id.
package prefs

import "context"

// Store reads and writes per-user preference documents.
type Store interface {
	Get(ctx context.Context, userID string) (map[string]interface{}, error)
	Set(ctx context.Context, userID string, settings map[string]interface{}) error
	Stop()
}
