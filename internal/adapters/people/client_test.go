package people_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vesper-voice/vesper/internal/adapters/people"
	"github.com/vesper-voice/vesper/internal/core"
)

type person struct {
	ResourceName   string                   `json:"resourceName,omitempty"`
	Names          []map[string]string      `json:"names,omitempty"`
	EmailAddresses []map[string]interface{} `json:"emailAddresses,omitempty"`
	Organizations  []map[string]string      `json:"organizations,omitempty"`
}

func email(addr string, primary bool) map[string]interface{} {
	return map[string]interface{}{
		"value":    addr,
		"type":     "work",
		"metadata": map[string]interface{}{"primary": primary},
	}
}

// directoryServer serves paged connection and other-contact lists keyed by
// the pageToken query parameter.
func directoryServer(t *testing.T, connections, others map[string]map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		var pages map[string]map[string]interface{}
		switch {
		case strings.HasSuffix(r.URL.Path, "/connections"):
			pages = connections
		case strings.HasSuffix(r.URL.Path, "/otherContacts"):
			pages = others
		default:
			http.NotFound(w, r)
			return
		}
		page, ok := pages[token]
		if !ok {
			http.Error(w, `{"error":{"code":500,"message":"no such page"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Errorf("failed to encode page: %v", err)
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server, maxPages int) *people.Client {
	t.Helper()
	client, err := people.NewClient(
		context.Background(),
		nil,
		1000,
		maxPages,
		zap.NewNop(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestFetchAllPaginatesAndOrders(t *testing.T) {
	t.Parallel()

	connections := map[string]map[string]interface{}{
		"": {
			"connections": []person{
				{ResourceName: "people/c1", Names: []map[string]string{{"displayName": "Johnny Appleseed"}},
					EmailAddresses: []map[string]interface{}{email("johnny@example.com", true)},
					Organizations:  []map[string]string{{"name": "Google"}}},
			},
			"nextPageToken": "c-page-2",
		},
		"c-page-2": {
			"connections": []person{
				{ResourceName: "people/c2", Names: []map[string]string{{"displayName": "Sarah Connor"}},
					EmailAddresses: []map[string]interface{}{email("sarah@example.com", false)}},
			},
		},
	}
	others := map[string]map[string]interface{}{
		"": {
			"otherContacts": []person{
				{ResourceName: "otherContacts/o1",
					EmailAddresses: []map[string]interface{}{email("stranger@example.com", false)}},
			},
		},
	}

	srv := directoryServer(t, connections, others)
	defer srv.Close()

	contacts, err := newTestClient(t, srv, 10).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(contacts) != 3 {
		t.Fatalf("FetchAll() returned %d contacts, want 3", len(contacts))
	}

	// Regular contacts precede other contacts, in fetch order.
	wantEmails := []string{"johnny@example.com", "sarah@example.com", "stranger@example.com"}
	for i, want := range wantEmails {
		if got := contacts[i].PrimaryEmail(); got != want {
			t.Errorf("contacts[%d] = %s, want %s", i, got, want)
		}
	}

	if contacts[0].Organization != "Google" {
		t.Errorf("contacts[0].Organization = %q, want Google", contacts[0].Organization)
	}
	if contacts[0].Source != core.SourceRegular || contacts[2].Source != core.SourceOther {
		t.Errorf("source tags wrong: %s / %s", contacts[0].Source, contacts[2].Source)
	}
	// A contact with no display name is kept under the placeholder name.
	if contacts[2].Name != "Unknown" {
		t.Errorf("contacts[2].Name = %q, want Unknown", contacts[2].Name)
	}
}

func TestFetchAllDropsContactsWithoutEmail(t *testing.T) {
	t.Parallel()

	connections := map[string]map[string]interface{}{
		"": {
			"connections": []person{
				{ResourceName: "people/c1", Names: []map[string]string{{"displayName": "No Mail"}}},
				{ResourceName: "people/c2", Names: []map[string]string{{"displayName": "Has Mail"}},
					EmailAddresses: []map[string]interface{}{email("mail@example.com", true)}},
			},
		},
	}
	others := map[string]map[string]interface{}{
		"": {"otherContacts": []person{}},
	}

	srv := directoryServer(t, connections, others)
	defer srv.Close()

	contacts, err := newTestClient(t, srv, 10).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Has Mail" {
		t.Errorf("FetchAll() = %+v, want only the contact with an address", contacts)
	}
}

func TestFetchAllPageErrorAborts(t *testing.T) {
	t.Parallel()

	// Page two is missing from the script, so the server answers it with
	// an error. The whole fetch must fail.
	connections := map[string]map[string]interface{}{
		"": {
			"connections": []person{
				{ResourceName: "people/c1", Names: []map[string]string{{"displayName": "Johnny"}},
					EmailAddresses: []map[string]interface{}{email("johnny@example.com", true)}},
			},
			"nextPageToken": "missing-page",
		},
	}
	others := map[string]map[string]interface{}{
		"": {"otherContacts": []person{}},
	}

	srv := directoryServer(t, connections, others)
	defer srv.Close()

	if _, err := newTestClient(t, srv, 10).FetchAll(context.Background()); err == nil {
		t.Fatal("FetchAll() error = nil, want page failure to propagate")
	}
}

func TestFetchAllPageCeilingKeepsPartial(t *testing.T) {
	t.Parallel()

	// Every connections page points to the next; the client must stop at
	// the ceiling and keep what it has.
	connections := map[string]map[string]interface{}{}
	tokens := []string{"", "p1", "p2", "p3"}
	for i, token := range tokens {
		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		} else {
			next = "beyond"
		}
		connections[token] = map[string]interface{}{
			"connections": []person{
				{ResourceName: "people/c", Names: []map[string]string{{"displayName": "Page Person"}},
					EmailAddresses: []map[string]interface{}{email("p@example.com", true)}},
			},
			"nextPageToken": next,
		}
	}
	others := map[string]map[string]interface{}{
		"": {"otherContacts": []person{}},
	}

	srv := directoryServer(t, connections, others)
	defer srv.Close()

	contacts, err := newTestClient(t, srv, 2).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v, want partial results at the ceiling", err)
	}
	if len(contacts) != 2 {
		t.Errorf("FetchAll() returned %d contacts, want 2 (one per page up to the ceiling)", len(contacts))
	}
}
