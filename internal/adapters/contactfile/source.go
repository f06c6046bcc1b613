// Package contactfile reads a contact directory from a local JSON file. It
// exists for the CLI, which has no Google credentials to page the People
// API with.
package contactfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

// Source is a core.ContactSource backed by a JSON file containing an array
// of contacts.
type Source struct {
	path   string
	logger *zap.Logger
}

// NewSource creates a file-backed contact source.
func NewSource(path string, logger *zap.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// FetchAll reads and decodes the contact file. Contacts without an email
// address are dropped, matching the behavior of the People API source.
func (s *Source) FetchAll(ctx context.Context) ([]core.Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contact file: %w", err)
	}

	var raw []core.Contact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse contact file: %w", err)
	}

	contacts := make([]core.Contact, 0, len(raw))
	for _, contact := range raw {
		if len(contact.Emails) == 0 {
			continue
		}
		if contact.Name == "" {
			contact.Name = "Unknown"
		}
		if contact.Source == "" {
			contact.Source = core.SourceRegular
		}
		contacts = append(contacts, contact)
	}

	s.logger.Debug("Loaded contacts from file",
		zap.String("path", s.path),
		zap.Int("count", len(contacts)))
	return contacts, nil
}
