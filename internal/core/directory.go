package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// DirectoryService is the contact directory client: it fetches the full
// contact list from a ContactSource, keeps the last successful snapshot in a
// ContactCache and answers substring searches against that snapshot.
//
// The cache is only ever replaced wholesale after a fully successful fetch.
// A failed fetch leaves the previous snapshot untouched, so callers can fall
// back to GetCached. Staleness is accepted; only an explicit FetchAll
// refreshes the snapshot.
type DirectoryService struct {
	source ContactSource
	cache  ContactCache
	logger *zap.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(source ContactSource, cache ContactCache, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// FetchAll retrieves the complete contact list from the source and, on
// success, overwrites the cached snapshot. Errors propagate to the caller;
// the cache is not touched on failure.
func (d *DirectoryService) FetchAll(ctx context.Context) ([]Contact, error) {
	contacts, err := d.source.FetchAll(ctx)
	if err != nil {
		d.logger.Error("Contact fetch failed", zap.Error(err))
		return nil, err
	}

	if err := d.cache.Store(ctx, contacts); err != nil {
		// The fetch itself succeeded; serve the fresh list even if the
		// snapshot could not be written.
		d.logger.Error("Failed to store contact snapshot", zap.Error(err))
	} else {
		d.logger.Info("Contact snapshot updated", zap.Int("contacts", len(contacts)))
	}

	return contacts, nil
}

// GetCached returns the last successfully fetched contact list. It never
// fails: a cold or broken cache yields an empty slice.
func (d *DirectoryService) GetCached(ctx context.Context) []Contact {
	contacts, err := d.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotCached) {
			d.logger.Warn("Failed to load contact snapshot", zap.Error(err))
		}
		return []Contact{}
	}
	return contacts
}

// Search returns every contact whose name or organization contains query,
// case-insensitively. The cached snapshot is consulted first; a cold cache
// triggers one fetch so that a fresh install can resolve without an explicit
// FETCH_CONTACTS round first.
func (d *DirectoryService) Search(ctx context.Context, query string) ([]Contact, error) {
	contacts, err := d.contacts(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matched []Contact
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Organization), q) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// Contacts returns the full working snapshot, fetching once when cold.
func (d *DirectoryService) Contacts(ctx context.Context) ([]Contact, error) {
	return d.contacts(ctx)
}

func (d *DirectoryService) contacts(ctx context.Context) ([]Contact, error) {
	contacts, err := d.cache.Load(ctx)
	if err == nil {
		return contacts, nil
	}
	if !errors.Is(err, ErrNotCached) {
		d.logger.Warn("Failed to load contact snapshot", zap.Error(err))
	}
	return d.FetchAll(ctx)
}
