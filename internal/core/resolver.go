package core

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Score contributions per matching field. Totals are plain sums with no
// normalization.
const (
	scoreNameExact   = 10
	scoreNamePartial = 5
	scoreOrgExact    = 8
	scoreOrgPartial  = 4
)

// ContactResolver ranks directory contacts against an extracted recipient
// candidate. It never returns a Go error: directory failures are converted
// into a ResolveResult with Success false and an empty contact list.
type ContactResolver struct {
	directory *DirectoryService
	phonetic  PhoneticMatcher
	logger    *zap.Logger
}

// NewContactResolver creates a new resolver. phonetic may be nil, in which
// case the phonetic retrieval fallback is disabled.
func NewContactResolver(directory *DirectoryService, phonetic PhoneticMatcher, logger *zap.Logger) *ContactResolver {
	return &ContactResolver{
		directory: directory,
		phonetic:  phonetic,
		logger:    logger,
	}
}

// Resolve retrieves and ranks contacts matching the candidate.
//
// Retrieval runs a substring search for the candidate name, then one for the
// organization, unioning the results with the primary email address as the
// dedup key. When both searches come back empty for a present name, the
// phonetic matcher (if configured) pulls contacts whose name sounds like the
// candidate name.
//
// Ranking is by descending score; equal scores keep the directory's own
// ordering (regular contacts before other contacts, then fetch order).
func (r *ContactResolver) Resolve(ctx context.Context, candidate RecipientCandidate) ResolveResult {
	if candidate.IsEmpty() {
		return ResolveResult{Success: true, Contacts: []ScoredContact{}}
	}

	contacts, err := r.retrieve(ctx, candidate)
	if err != nil {
		r.logger.Error("Contact retrieval failed", zap.Error(err))
		return ResolveResult{Success: false, Err: err.Error(), Contacts: []ScoredContact{}}
	}

	scored := make([]ScoredContact, len(contacts))
	for i, c := range contacts {
		scored[i] = ScoredContact{Contact: c, Score: r.score(c, candidate)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	r.logger.Debug("Resolved candidate",
		zap.String("name", candidate.Name),
		zap.String("organization", candidate.Organization),
		zap.Int("contacts", len(scored)))

	return ResolveResult{Success: true, Contacts: scored}
}

// BestMatch returns the top-ranked contact for the candidate, or nil when
// resolution failed or produced no contacts.
func (r *ContactResolver) BestMatch(ctx context.Context, candidate RecipientCandidate) *ScoredContact {
	result := r.Resolve(ctx, candidate)
	if !result.Success || len(result.Contacts) == 0 {
		return nil
	}
	best := result.Contacts[0]
	return &best
}

// retrieve gathers the candidate contact set, preserving directory order
// within each search and deduplicating across searches.
func (r *ContactResolver) retrieve(ctx context.Context, candidate RecipientCandidate) ([]Contact, error) {
	var union []Contact
	seen := make(map[string]struct{})

	add := func(contacts []Contact) {
		for _, c := range contacts {
			key := strings.ToLower(c.PrimaryEmail())
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, c)
		}
	}

	if candidate.Name != "" {
		matches, err := r.directory.Search(ctx, candidate.Name)
		if err != nil {
			return nil, err
		}
		add(matches)
	}

	if candidate.Organization != "" {
		matches, err := r.directory.Search(ctx, candidate.Organization)
		if err != nil {
			return nil, err
		}
		add(matches)
	}

	if len(union) == 0 && candidate.Name != "" && r.phonetic != nil {
		all, err := r.directory.Contacts(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			if r.phonetic.Matches(candidate.Name, c.Name) {
				add([]Contact{c})
			}
		}
		if len(union) > 0 {
			r.logger.Debug("Phonetic fallback retrieval",
				zap.String("name", candidate.Name),
				zap.Int("contacts", len(union)))
		}
	}

	return union, nil
}

// score rates one contact against the candidate. Fields are scored
// independently: exact case-insensitive match beats substring containment in
// either direction, which beats no match.
func (r *ContactResolver) score(contact Contact, candidate RecipientCandidate) int {
	score := 0

	if candidate.Name != "" && contact.Name != "" {
		name := strings.ToLower(candidate.Name)
		contactName := strings.ToLower(contact.Name)
		switch {
		case name == contactName:
			score += scoreNameExact
		case strings.Contains(contactName, name) || strings.Contains(name, contactName):
			score += scoreNamePartial
		}
	}

	if candidate.Organization != "" && contact.Organization != "" {
		org := strings.ToLower(candidate.Organization)
		contactOrg := strings.ToLower(contact.Organization)
		switch {
		case org == contactOrg:
			score += scoreOrgExact
		case strings.Contains(contactOrg, org) || strings.Contains(org, contactOrg):
			score += scoreOrgPartial
		}
	}

	return score
}
