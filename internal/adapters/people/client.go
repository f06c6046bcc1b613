// Package people fetches the signed-in user's contacts from the Google
// People API. It implements core.ContactSource; caching and search live in
// core.DirectoryService.
package people

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/vesper-voice/vesper/internal/core"
)

const (
	connectionPersonFields = "names,emailAddresses,organizations"
	otherContactsReadMask  = "names,emailAddresses"
)

// Client is a core.ContactSource backed by the Google People API. It reads
// both the regular connections list and the "other contacts" list.
type Client struct {
	svc      *people.Service
	ts       oauth2.TokenSource
	pageSize int64
	maxPages int
	logger   *zap.Logger
}

// NewClient creates a People API contact source. ts supplies OAuth
// credentials; pass nil only in tests together with option.WithHTTPClient,
// which conflicts with token source options.
func NewClient(
	ctx context.Context,
	ts oauth2.TokenSource,
	pageSize int64,
	maxPages int,
	logger *zap.Logger,
	opts ...option.ClientOption,
) (*Client, error) {
	if ts != nil {
		opts = append(opts, option.WithTokenSource(ts))
	}
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create people service: %w", err)
	}
	return &Client{
		svc:      svc,
		ts:       ts,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}, nil
}

// FetchAll retrieves regular contacts followed by other contacts. Records
// without an email address are dropped. Any page error aborts the whole
// fetch so a partial list never masquerades as the full directory.
func (c *Client) FetchAll(ctx context.Context) ([]core.Contact, error) {
	if c.ts != nil {
		if _, err := c.ts.Token(); err != nil {
			return nil, fmt.Errorf("failed to obtain access token: %w", err)
		}
	}

	regular, err := c.fetchConnections(ctx)
	if err != nil {
		return nil, err
	}
	other, err := c.fetchOtherContacts(ctx)
	if err != nil {
		return nil, err
	}

	contacts := make([]core.Contact, 0, len(regular)+len(other))
	contacts = append(contacts, regular...)
	contacts = append(contacts, other...)
	c.logger.Info("Fetched contacts from People API",
		zap.Int("regular", len(regular)),
		zap.Int("other", len(other)))
	return contacts, nil
}

func (c *Client) fetchConnections(ctx context.Context) ([]core.Contact, error) {
	var contacts []core.Contact
	pageToken := ""
	for page := 0; page < c.maxPages; page++ {
		call := c.svc.People.Connections.List("people/me").
			PersonFields(connectionPersonFields).
			PageSize(c.pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list connections: %w", err)
		}
		for _, person := range resp.Connections {
			if contact, ok := personToContact(person, core.SourceRegular); ok {
				contacts = append(contacts, contact)
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return contacts, nil
		}
	}
	// Page ceiling reached. Keep what we have rather than looping forever
	// on a runaway token.
	c.logger.Warn("Connection page limit reached", zap.Int("max_pages", c.maxPages))
	return contacts, nil
}

func (c *Client) fetchOtherContacts(ctx context.Context) ([]core.Contact, error) {
	var contacts []core.Contact
	pageToken := ""
	for page := 0; page < c.maxPages; page++ {
		call := c.svc.OtherContacts.List().
			ReadMask(otherContactsReadMask).
			PageSize(c.pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list other contacts: %w", err)
		}
		for _, person := range resp.OtherContacts {
			if contact, ok := personToContact(person, core.SourceOther); ok {
				contacts = append(contacts, contact)
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return contacts, nil
		}
	}
	c.logger.Warn("Other contact page limit reached", zap.Int("max_pages", c.maxPages))
	return contacts, nil
}

// personToContact flattens a People API person into a core.Contact. Persons
// with no email address are not useful as recipients and are skipped.
func personToContact(person *people.Person, source core.ContactSourceTag) (core.Contact, bool) {
	if person == nil || len(person.EmailAddresses) == 0 {
		return core.Contact{}, false
	}

	name := "Unknown"
	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		name = person.Names[0].DisplayName
	}

	organization := ""
	if len(person.Organizations) > 0 {
		organization = person.Organizations[0].Name
	}

	emails := make([]core.EmailAddress, 0, len(person.EmailAddresses))
	for _, addr := range person.EmailAddresses {
		if addr.Value == "" {
			continue
		}
		primary := addr.Metadata != nil && addr.Metadata.Primary
		emails = append(emails, core.EmailAddress{
			Email:   addr.Value,
			Type:    addr.Type,
			Primary: primary,
		})
	}
	if len(emails) == 0 {
		return core.Contact{}, false
	}

	return core.Contact{
		Name:         name,
		Organization: organization,
		Emails:       emails,
		Source:       source,
		ResourceName: person.ResourceName,
	}, true
}
