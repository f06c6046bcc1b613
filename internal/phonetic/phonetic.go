// Package phonetic implements the core.PhoneticMatcher port using Double
// Metaphone phonetic encoding combined with Jaro-Winkler string similarity.
//
// Speech recognition frequently misspells proper names ("Jonny" for
// "Johnny", "Micheal" for "Michael"); such misspellings defeat plain
// substring retrieval. A contact name matches when at least one of its
// words shares a Double Metaphone code with a word of the spoken name AND
// the Jaro-Winkler similarity of the full strings clears the configured
// threshold.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const defaultThreshold = 0.80

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum Jaro-Winkler similarity required for a
// phonetic candidate to be accepted. Default: 0.80.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// Matcher is a phonetic name matcher. It is read-only after construction
// and safe for concurrent use.
type Matcher struct {
	threshold float64
}

// New returns a Matcher configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{threshold: defaultThreshold}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Matches reports whether spoken plausibly refers to contactName.
func (m *Matcher) Matches(spoken, contactName string) bool {
	spokenTokens := strings.Fields(strings.ToLower(strings.TrimSpace(spoken)))
	contactTokens := strings.Fields(strings.ToLower(strings.TrimSpace(contactName)))
	if len(spokenTokens) == 0 || len(contactTokens) == 0 {
		return false
	}

	if !codesOverlap(codesForTokens(spokenTokens), codesForTokens(contactTokens)) {
		return false
	}

	return bestSimilarity(spokenTokens, contactTokens) >= m.threshold
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity is the highest Jaro-Winkler score across full-string and
// pairwise token comparisons, so "jonny" scores well against both "Jonny"
// and "Jonny Appleseed".
func bestSimilarity(spokenTokens, contactTokens []string) float64 {
	score := matchr.JaroWinkler(strings.Join(spokenTokens, " "), strings.Join(contactTokens, " "), false)
	for _, st := range spokenTokens {
		for _, ct := range contactTokens {
			if s := matchr.JaroWinkler(st, ct, false); s > score {
				score = s
			}
		}
	}
	return score
}
