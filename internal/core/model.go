package core

import (
	"time"
)

// Transcript is a single speech-recognition result. Interim transcripts
// (IsFinal == false) are display-only and are never normalized or resolved.
type Transcript struct {
	Text    string
	IsFinal bool
}

// RecipientCandidate is the extracted guess of who a dictated email is
// addressed to, before matching against real contacts. All fields are
// optional; empty strings mean "not extracted".
type RecipientCandidate struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Nickname     string `json:"nickname"`
	Title        string `json:"title"`
}

// IsEmpty reports whether no field was extracted at all. Empty candidates
// must not be handed to the resolver.
func (r RecipientCandidate) IsEmpty() bool {
	return r.Name == "" && r.Organization == "" && r.Nickname == "" && r.Title == ""
}

// ContactSourceTag identifies which directory endpoint a contact came from.
type ContactSourceTag string

const (
	// SourceRegular marks contacts from the user's own contact list.
	SourceRegular ContactSourceTag = "regular contacts"
	// SourceOther marks auto-collected "other contacts".
	SourceOther ContactSourceTag = "other contacts"
)

// EmailAddress is one address entry on a contact, preserving the provider's
// type label and primary flag.
type EmailAddress struct {
	Email   string `json:"email"`
	Type    string `json:"type"`
	Primary bool   `json:"primary"`
}

// Contact is one normalized directory entry.
type Contact struct {
	Name         string           `json:"name"`
	Organization string           `json:"organization,omitempty"`
	Emails       []EmailAddress   `json:"emails"`
	Source       ContactSourceTag `json:"source"`
	ResourceName string           `json:"resourceName"`
}

// PrimaryEmail returns the address the provider marked primary, falling back
// to the first address. Returns "" when the contact has no addresses.
func (c Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.Primary {
			return e.Email
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0].Email
	}
	return ""
}

// ScoredContact is a contact plus its relevance score for one resolution
// request. Scores are transient ranking artifacts and are never persisted.
type ScoredContact struct {
	Contact
	Score int `json:"score"`
}

// NormalizeResult is the outcome of one transcript normalization. The
// normalizer never fails outright: on any error FormattedText echoes the
// input, Recipient is empty and Err carries the failure message.
type NormalizeResult struct {
	FormattedText string             `json:"formattedText"`
	Recipient     RecipientCandidate `json:"recipient"`
	Err           string             `json:"error,omitempty"`
}

// ResolveResult is the outcome of one contact resolution. Failures are
// folded in: Success false, Err populated, Contacts empty.
type ResolveResult struct {
	Success  bool            `json:"success"`
	Err      string          `json:"error,omitempty"`
	Contacts []ScoredContact `json:"contacts"`
}

// PipelineResult is the outcome of processing one final transcript through
// normalization, extraction fallback and resolution.
type PipelineResult struct {
	OriginalText  string             `json:"originalText"`
	FormattedText string             `json:"formattedText"`
	Recipient     RecipientCandidate `json:"recipient"`
	Resolution    ResolveResult      `json:"resolution"`
	Err           string             `json:"error,omitempty"`
	ProcessedAt   time.Time          `json:"processedAt"`
}
