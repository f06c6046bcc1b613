package core_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

// fakeSource is a scriptable ContactSource.
type fakeSource struct {
	contacts []core.Contact
	err      error
	calls    int
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]core.Contact, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

// fakeCache is a minimal in-test ContactCache.
type fakeCache struct {
	contacts []core.Contact
	loaded   bool
	storeErr error
}

func (f *fakeCache) Store(ctx context.Context, contacts []core.Contact) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.contacts = append([]core.Contact(nil), contacts...)
	f.loaded = true
	return nil
}

func (f *fakeCache) Load(ctx context.Context) ([]core.Contact, error) {
	if !f.loaded {
		return nil, core.ErrNotCached
	}
	return append([]core.Contact(nil), f.contacts...), nil
}

func contact(name, org, email string, source core.ContactSourceTag) core.Contact {
	return core.Contact{
		Name:         name,
		Organization: org,
		Emails:       []core.EmailAddress{{Email: email, Primary: true}},
		Source:       source,
	}
}

func TestDirectoryFetchAllStoresSnapshot(t *testing.T) {
	t.Parallel()

	source := &fakeSource{contacts: []core.Contact{
		contact("Johnny Appleseed", "Google", "johnny@example.com", core.SourceRegular),
	}}
	cache := &fakeCache{}
	d := core.NewDirectoryService(source, cache, zap.NewNop())

	contacts, err := d.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("FetchAll() returned %d contacts, want 1", len(contacts))
	}

	cached := d.GetCached(context.Background())
	if len(cached) != 1 || cached[0].Name != "Johnny Appleseed" {
		t.Errorf("GetCached() = %+v, want the fetched snapshot", cached)
	}
}

func TestDirectoryFailedFetchKeepsSnapshot(t *testing.T) {
	t.Parallel()

	source := &fakeSource{contacts: []core.Contact{
		contact("Johnny Appleseed", "Google", "johnny@example.com", core.SourceRegular),
	}}
	cache := &fakeCache{}
	d := core.NewDirectoryService(source, cache, zap.NewNop())

	if _, err := d.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	source.err = errors.New("people api unavailable")
	if _, err := d.FetchAll(context.Background()); err == nil {
		t.Fatal("FetchAll() with failing source: error = nil, want non-nil")
	}

	cached := d.GetCached(context.Background())
	if len(cached) != 1 || cached[0].Name != "Johnny Appleseed" {
		t.Errorf("GetCached() after failed fetch = %+v, want previous snapshot", cached)
	}
}

func TestDirectoryGetCachedColdReturnsEmpty(t *testing.T) {
	t.Parallel()

	d := core.NewDirectoryService(&fakeSource{}, &fakeCache{}, zap.NewNop())

	cached := d.GetCached(context.Background())
	if cached == nil {
		t.Fatal("GetCached() on cold cache = nil, want empty slice")
	}
	if len(cached) != 0 {
		t.Errorf("GetCached() on cold cache returned %d contacts, want 0", len(cached))
	}
}

func TestDirectorySearch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{contacts: []core.Contact{
		contact("Johnny Appleseed", "Google", "johnny@example.com", core.SourceRegular),
		contact("Sarah Connor", "Cyberdyne", "sarah@example.com", core.SourceRegular),
		contact("Unknown", "Google Cloud", "noreply@example.com", core.SourceOther),
	}}
	d := core.NewDirectoryService(source, &fakeCache{}, zap.NewNop())

	tests := []struct {
		query string
		want  []string
	}{
		{"johnny", []string{"johnny@example.com"}},
		{"GOOGLE", []string{"johnny@example.com", "noreply@example.com"}},
		{"connor", []string{"sarah@example.com"}},
		{"nobody", nil},
	}

	for _, tt := range tests {
		matches, err := d.Search(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.query, err)
		}
		var got []string
		for _, c := range matches {
			got = append(got, c.PrimaryEmail())
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
				break
			}
		}
	}

	// The cold cache triggered exactly one fetch for all searches.
	if source.calls != 1 {
		t.Errorf("source fetched %d times, want 1", source.calls)
	}
}
