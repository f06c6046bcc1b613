package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

func newResolver(t *testing.T, contacts []core.Contact, phonetic core.PhoneticMatcher) *core.ContactResolver {
	t.Helper()
	d := core.NewDirectoryService(&fakeSource{contacts: contacts}, &fakeCache{}, zap.NewNop())
	return core.NewContactResolver(d, phonetic, zap.NewNop())
}

func TestResolveScoring(t *testing.T) {
	t.Parallel()

	contacts := []core.Contact{
		contact("Johnny Appleseed", "Google LLC", "appleseed@example.com", core.SourceRegular),
		contact("Johnny", "Google", "johnny@example.com", core.SourceRegular),
		contact("Jon Snow", "Night Watch", "jon@example.com", core.SourceRegular),
	}
	r := newResolver(t, contacts, nil)

	result := r.Resolve(context.Background(), core.RecipientCandidate{Name: "Johnny", Organization: "Google"})
	if !result.Success {
		t.Fatalf("Resolve() failed: %s", result.Err)
	}
	if len(result.Contacts) != 2 {
		t.Fatalf("Resolve() returned %d contacts, want 2", len(result.Contacts))
	}

	// Exact name (+10) and exact org (+8) beat substring name (+5) and
	// substring org (+4).
	if got := result.Contacts[0]; got.PrimaryEmail() != "johnny@example.com" || got.Score != 18 {
		t.Errorf("top contact = %s score %d, want johnny@example.com score 18", got.PrimaryEmail(), got.Score)
	}
	if got := result.Contacts[1]; got.PrimaryEmail() != "appleseed@example.com" || got.Score != 9 {
		t.Errorf("second contact = %s score %d, want appleseed@example.com score 9", got.PrimaryEmail(), got.Score)
	}
}

func TestResolveEmptyCandidateShortCircuits(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("must not be called")}
	d := core.NewDirectoryService(source, &fakeCache{}, zap.NewNop())
	r := core.NewContactResolver(d, nil, zap.NewNop())

	result := r.Resolve(context.Background(), core.RecipientCandidate{})
	if !result.Success {
		t.Fatalf("Resolve(empty) failed: %s", result.Err)
	}
	if result.Contacts == nil || len(result.Contacts) != 0 {
		t.Errorf("Resolve(empty).Contacts = %+v, want empty slice", result.Contacts)
	}
	if source.calls != 0 {
		t.Errorf("directory touched %d times for empty candidate, want 0", source.calls)
	}
}

func TestResolveDirectoryFailureIsTypedResult(t *testing.T) {
	t.Parallel()

	d := core.NewDirectoryService(&fakeSource{err: errors.New("token expired")}, &fakeCache{}, zap.NewNop())
	r := core.NewContactResolver(d, nil, zap.NewNop())

	result := r.Resolve(context.Background(), core.RecipientCandidate{Name: "Johnny"})
	if result.Success {
		t.Fatal("Resolve() with failing directory: Success = true, want false")
	}
	if !strings.Contains(result.Err, "token expired") {
		t.Errorf("Resolve().Err = %q, want it to carry the directory error", result.Err)
	}
	if len(result.Contacts) != 0 {
		t.Errorf("Resolve().Contacts = %+v, want empty", result.Contacts)
	}
}

func TestResolveDeduplicatesByPrimaryEmail(t *testing.T) {
	t.Parallel()

	// One contact matched by both the name search and the org search.
	contacts := []core.Contact{
		contact("Johnny", "Google", "johnny@example.com", core.SourceRegular),
	}
	r := newResolver(t, contacts, nil)

	result := r.Resolve(context.Background(), core.RecipientCandidate{Name: "Johnny", Organization: "Google"})
	if !result.Success {
		t.Fatalf("Resolve() failed: %s", result.Err)
	}
	if len(result.Contacts) != 1 {
		t.Errorf("Resolve() returned %d contacts, want 1 after dedup", len(result.Contacts))
	}
}

func TestResolveTieBreakKeepsDirectoryOrder(t *testing.T) {
	t.Parallel()

	// Both contacts score +5 (name substring). The regular contact was
	// fetched first and must stay first.
	contacts := []core.Contact{
		contact("Jo Smith", "", "first@example.com", core.SourceRegular),
		contact("Jo Brown", "", "second@example.com", core.SourceOther),
	}
	r := newResolver(t, contacts, nil)

	result := r.Resolve(context.Background(), core.RecipientCandidate{Name: "Jo"})
	if !result.Success {
		t.Fatalf("Resolve() failed: %s", result.Err)
	}
	if len(result.Contacts) != 2 {
		t.Fatalf("Resolve() returned %d contacts, want 2", len(result.Contacts))
	}
	if result.Contacts[0].Score != result.Contacts[1].Score {
		t.Fatalf("scores differ (%d vs %d), test assumes a tie",
			result.Contacts[0].Score, result.Contacts[1].Score)
	}
	if result.Contacts[0].PrimaryEmail() != "first@example.com" {
		t.Errorf("tie broken against directory order: top = %s, want first@example.com",
			result.Contacts[0].PrimaryEmail())
	}
}

// phoneticStub matches any pair whose lowercased first letters agree.
type phoneticStub struct{}

func (phoneticStub) Matches(spoken, contactName string) bool {
	if spoken == "" || contactName == "" {
		return false
	}
	return strings.EqualFold(spoken[:1], contactName[:1])
}

func TestResolvePhoneticFallback(t *testing.T) {
	t.Parallel()

	contacts := []core.Contact{
		contact("Johnny Appleseed", "", "johnny@example.com", core.SourceRegular),
		contact("Sarah Connor", "", "sarah@example.com", core.SourceRegular),
	}

	// "Jonny" is not a substring match for anyone, so only the phonetic
	// path can retrieve Johnny.
	candidate := core.RecipientCandidate{Name: "Jonny"}

	r := newResolver(t, contacts, nil)
	result := r.Resolve(context.Background(), candidate)
	if !result.Success || len(result.Contacts) != 0 {
		t.Fatalf("Resolve() without phonetic matcher = %+v, want empty success", result)
	}

	r = newResolver(t, contacts, phoneticStub{})
	result = r.Resolve(context.Background(), candidate)
	if !result.Success {
		t.Fatalf("Resolve() failed: %s", result.Err)
	}
	if len(result.Contacts) != 1 || result.Contacts[0].PrimaryEmail() != "johnny@example.com" {
		t.Fatalf("Resolve() with phonetic matcher = %+v, want only Johnny", result.Contacts)
	}
	// Phonetic retrieval feeds the normal scoring rules; a non-substring
	// name scores zero.
	if result.Contacts[0].Score != 0 {
		t.Errorf("phonetic contact score = %d, want 0", result.Contacts[0].Score)
	}
}

func TestBestMatch(t *testing.T) {
	t.Parallel()

	contacts := []core.Contact{
		contact("Johnny", "Google", "johnny@example.com", core.SourceRegular),
		contact("Johnny Appleseed", "", "appleseed@example.com", core.SourceRegular),
	}
	r := newResolver(t, contacts, nil)

	best := r.BestMatch(context.Background(), core.RecipientCandidate{Name: "Johnny"})
	if best == nil {
		t.Fatal("BestMatch() = nil, want a contact")
	}
	if best.PrimaryEmail() != "johnny@example.com" {
		t.Errorf("BestMatch() = %s, want johnny@example.com", best.PrimaryEmail())
	}

	if got := r.BestMatch(context.Background(), core.RecipientCandidate{Name: "Zebediah"}); got != nil {
		t.Errorf("BestMatch(no match) = %+v, want nil", got)
	}
}
