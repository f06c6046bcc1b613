// Package extract derives a recipient candidate from plain transcript text
// using ordered regular-expression patterns. It is the fallback path for
// when the LLM normalizer is unavailable or returned no usable recipient.
//
// Extraction is a pure function of its input: no I/O, no randomness, no
// external state. The same text always yields the same candidate.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vesper-voice/vesper/internal/core"
)

// Relation words that, when they precede a capitalized span, are treated as
// the recipient's nickname rather than part of the name.
var relationWords = []string{"friend", "colleague", "boss", "coworker", "teammate"}

var (
	// Name patterns, tried in order; the first match wins. The verb and
	// relation words match case-insensitively, the name span itself must be
	// capitalized so that filler words ("an", "my") can never be mistaken
	// for a name.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:(?i)send|write|email|message|to)\s+(?:(?i)my\s+)?((?:(?i)friend|colleague|boss|coworker|teammate)\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		regexp.MustCompile(`(?:(?i)to|for)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
	}

	// Organization patterns: a preposition followed by a capitalized phrase
	// with an optional legal-entity suffix, or a bare capitalized phrase
	// that carries the suffix.
	orgPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:(?i)at|from|with)\s+([A-Z][a-z]*(?:\s+[A-Z][a-z]*)?(?:\s+(?:Inc|LLC|Corp|Company|Co))?)`),
		regexp.MustCompile(`([A-Z][a-z]*(?:\s+[A-Z][a-z]*)?\s+(?:Inc|LLC|Corp|Company|Co))`),
	}

	nicknamePattern = regexp.MustCompile(`(?:(?i)my|the)\s+((?i)friend|colleague|boss|coworker|teammate|partner)`)
)

// Extractor implements core.Extractor with pure pattern matching.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractFromText derives a recipient candidate from text. The title field
// is never populated here; only the normalizer path can supply it.
func (e *Extractor) ExtractFromText(text string) core.RecipientCandidate {
	var recipient core.RecipientCandidate
	if text == "" {
		return recipient
	}

	// Transcripts can arrive with decomposed accents depending on the
	// recognition engine; match on the composed form.
	text = norm.NFC.String(text)

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if len(match) == 3 {
			// First group is the optional relation word, second the name.
			if rel := strings.TrimSpace(match[1]); rel != "" {
				recipient.Nickname = strings.ToLower(rel)
			}
			recipient.Name = match[2]
		} else {
			recipient.Name = match[1]
		}
		if recipient.Name != "" {
			break
		}
	}

	for _, pattern := range orgPatterns {
		match := pattern.FindStringSubmatch(text)
		if match != nil && match[1] != "" {
			recipient.Organization = strings.TrimSpace(match[1])
			break
		}
	}

	if recipient.Nickname == "" {
		if match := nicknamePattern.FindStringSubmatch(text); match != nil {
			recipient.Nickname = strings.ToLower(match[1])
		}
	}

	return recipient
}

// IsRelationWord reports whether w is one of the recognized relation terms.
func IsRelationWord(w string) bool {
	w = strings.ToLower(w)
	for _, r := range relationWords {
		if w == r {
			return true
		}
	}
	return false
}
