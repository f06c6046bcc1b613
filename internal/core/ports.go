package core

import (
	"context"
	"errors"
)

// ErrNotCached is returned by a ContactCache when the slot has never been
// written.
var ErrNotCached = errors.New("no contact snapshot cached")

// Normalizer corrects the grammar of a dictated transcript and extracts a
// structured recipient guess via an LLM completion service.
//
// Implementations never return a Go error: every failure is folded into the
// result with Err populated, FormattedText echoing the input and an empty
// Recipient.
type Normalizer interface {
	Normalize(ctx context.Context, transcript string) *NormalizeResult
}

// ContactSource fetches the complete contact list from an external
// directory. A returned error means the fetch as a whole failed and nothing
// from this attempt may be used.
type ContactSource interface {
	FetchAll(ctx context.Context) ([]Contact, error)
}

// ContactCache persists the last successfully fetched contact list under a
// single well-known slot. Store replaces the whole snapshot; Load returns
// ErrNotCached when the slot is empty.
type ContactCache interface {
	Store(ctx context.Context, contacts []Contact) error
	Load(ctx context.Context) ([]Contact, error)
}

// PhoneticMatcher reports whether a spoken name plausibly refers to a
// contact name despite transcription spelling drift.
type PhoneticMatcher interface {
	Matches(spoken, contactName string) bool
}
