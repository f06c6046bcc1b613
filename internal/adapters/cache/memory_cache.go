package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

// MemoryCache is an in-memory implementation of the ContactCache interface.
// It holds a single snapshot of the contact list and replaces it wholesale.
type MemoryCache struct {
	mu       sync.RWMutex
	contacts []core.Contact
	loaded   bool
	logger   *zap.Logger
}

// NewMemoryCache creates a new in-memory contact cache.
func NewMemoryCache(logger *zap.Logger) *MemoryCache {
	return &MemoryCache{logger: logger}
}

// Store replaces the cached contact list with a copy of the given one.
func (c *MemoryCache) Store(ctx context.Context, contacts []core.Contact) error {
	snapshot := make([]core.Contact, len(contacts))
	copy(snapshot, contacts)

	c.mu.Lock()
	c.contacts = snapshot
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("Stored contact snapshot", zap.Int("count", len(snapshot)))
	return nil
}

// Load returns a copy of the cached contact list, or core.ErrNotCached when
// no snapshot has been stored yet.
func (c *MemoryCache) Load(ctx context.Context) ([]core.Contact, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, core.ErrNotCached
	}
	snapshot := make([]core.Contact, len(c.contacts))
	copy(snapshot, c.contacts)
	return snapshot, nil
}
