package extract_test

import (
	"testing"

	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/extract"
)

func TestExtractFromText(t *testing.T) {
	t.Parallel()

	e := extract.New()

	tests := []struct {
		name string
		text string
		want core.RecipientCandidate
	}{
		{
			name: "relation word and organization",
			text: "Send an email to my friend Johnny from Google and tell him I'll be a bit late.",
			want: core.RecipientCandidate{Name: "Johnny", Organization: "Google", Nickname: "friend"},
		},
		{
			name: "two word name with suffixed organization",
			text: "Write to Sarah Connor at Cyberdyne Systems Inc",
			want: core.RecipientCandidate{Name: "Sarah Connor", Organization: "Cyberdyne Systems Inc"},
		},
		{
			name: "relation word without organization",
			text: "message my boss Helena about the meeting",
			want: core.RecipientCandidate{Name: "Helena", Nickname: "boss"},
		},
		{
			name: "bare organization with legal suffix",
			text: "Please ping Acme Corp for details",
			want: core.RecipientCandidate{Organization: "Acme Corp"},
		},
		{
			name: "no recipient at all",
			text: "hello world how are you",
			want: core.RecipientCandidate{},
		},
		{
			name: "empty text",
			text: "",
			want: core.RecipientCandidate{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.ExtractFromText(tt.text)
			if got != tt.want {
				t.Errorf("ExtractFromText(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractFromTextNeverSetsTitle(t *testing.T) {
	t.Parallel()

	e := extract.New()
	texts := []string{
		"Send an email to Doctor Smith",
		"Write to Professor Jones at the university",
		"email my colleague Marcus",
	}
	for _, text := range texts {
		if got := e.ExtractFromText(text); got.Title != "" {
			t.Errorf("ExtractFromText(%q).Title = %q, want empty", text, got.Title)
		}
	}
}

func TestExtractFromTextIsDeterministic(t *testing.T) {
	t.Parallel()

	e := extract.New()
	text := "Send an email to my friend Johnny from Google"
	first := e.ExtractFromText(text)
	for i := 0; i < 10; i++ {
		if got := e.ExtractFromText(text); got != first {
			t.Fatalf("ExtractFromText(%q) unstable: %+v != %+v", text, got, first)
		}
	}
}

func TestIsRelationWord(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"friend", "Colleague", "BOSS", "coworker", "teammate"} {
		if !extract.IsRelationWord(w) {
			t.Errorf("IsRelationWord(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"", "doctor", "mother"} {
		if extract.IsRelationWord(w) {
			t.Errorf("IsRelationWord(%q) = true, want false", w)
		}
	}
}
