package phonetic_test

import (
	"testing"

	"github.com/vesper-voice/vesper/internal/phonetic"
)

func TestMatcherMisspelledName(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	// "Jonny" and "Johnny" share a Double Metaphone code and sit well
	// above the default Jaro-Winkler threshold.
	if !m.Matches("Jonny", "Johnny") {
		t.Errorf("Matches(%q, %q) = false, want true", "Jonny", "Johnny")
	}
	if !m.Matches("Jonny", "Johnny Appleseed") {
		t.Errorf("Matches(%q, %q) = false, want true", "Jonny", "Johnny Appleseed")
	}
}

func TestMatcherRejectsUnrelatedNames(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	if m.Matches("Sarah", "Johnny Appleseed") {
		t.Errorf("Matches(%q, %q) = true, want false", "Sarah", "Johnny Appleseed")
	}
}

func TestMatcherEmptyInputs(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	if m.Matches("", "Johnny") {
		t.Error("Matches with empty spoken name = true, want false")
	}
	if m.Matches("Johnny", "") {
		t.Error("Matches with empty contact name = true, want false")
	}
	if m.Matches("   ", "Johnny") {
		t.Error("Matches with blank spoken name = true, want false")
	}
}

func TestMatcherThresholdOption(t *testing.T) {
	t.Parallel()

	// A near-impossible threshold turns phonetically similar but
	// non-identical names into misses.
	strict := phonetic.New(phonetic.WithThreshold(0.99))
	if strict.Matches("Jonny", "Johnny") {
		t.Errorf("Matches(%q, %q) with threshold 0.99 = true, want false", "Jonny", "Johnny")
	}
	if !strict.Matches("Johnny", "Johnny") {
		t.Errorf("Matches(%q, %q) with threshold 0.99 = false, want true", "Johnny", "Johnny")
	}
}
