package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/authapi"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "service-key" {
			http.Error(w, `{"error":"missing api key"}`, http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/auth/v1/token":
			if r.URL.Query().Get("grant_type") != "authorization_code" {
				http.Error(w, `{"error":"bad grant"}`, http.StatusBadRequest)
				return
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["auth_code"] == "" {
				http.Error(w, `{"error":"missing code"}`, http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "token-123",
				"refresh_token": "refresh-456",
				"token_type":    "bearer",
				"expires_in":    3600,
				"user":          map[string]string{"id": "user-1", "email": "johnny@example.com"},
			})
		case "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer token-123" {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "johnny@example.com"})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestExchangeCode(t *testing.T) {
	t.Parallel()

	srv := authServer(t)
	defer srv.Close()

	c := authapi.NewClient(srv.URL, "service-key", 5*time.Second, zap.NewNop())

	session, err := c.ExchangeCode(context.Background(), "code-abc", "https://mail.example.com")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if session.AccessToken != "token-123" {
		t.Errorf("AccessToken = %q, want token-123", session.AccessToken)
	}
	if session.User == nil || session.User.ID != "user-1" {
		t.Errorf("User = %+v, want user-1", session.User)
	}
}

func TestExchangeCodeServiceError(t *testing.T) {
	t.Parallel()

	srv := authServer(t)
	defer srv.Close()

	c := authapi.NewClient(srv.URL, "wrong-key", 5*time.Second, zap.NewNop())
	if _, err := c.ExchangeCode(context.Background(), "code-abc", ""); err == nil {
		t.Fatal("ExchangeCode() with bad key error = nil, want non-nil")
	}
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	srv := authServer(t)
	defer srv.Close()

	c := authapi.NewClient(srv.URL, "service-key", 5*time.Second, zap.NewNop())

	user, err := c.GetUser(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.ID != "user-1" || user.Email != "johnny@example.com" {
		t.Errorf("GetUser() = %+v", user)
	}

	if _, err := c.GetUser(context.Background(), "bogus"); err == nil {
		t.Fatal("GetUser(bogus token) error = nil, want non-nil")
	}
}
