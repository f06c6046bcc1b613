// Package authapi talks to a GoTrue-compatible authentication service. The
// broker exchanges OAuth authorization codes for sessions and validates
// access tokens on behalf of the extension.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Session is the token bundle returned by a successful code exchange.
type Session struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int    `json:"expires_in"`
	ProviderToken string `json:"provider_token,omitempty"`
	User          *User  `json:"user,omitempty"`
}

// User is the authenticated account the auth service reports for a token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Client is an HTTP client for the authentication service.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an auth service client. serviceKey is sent as the
// apikey header on every request.
func NewClient(baseURL, serviceKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ExchangeCode trades an OAuth authorization code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURL string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{
		"auth_code":   code,
		"redirect_to": redirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exchange request: %w", err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=authorization_code"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)

	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("auth service returned no access token")
	}
	return &session, nil
}

// GetUser validates an access token and returns the account it belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("auth service returned no user")
	}
	return &user, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Auth service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", req.URL.Path))
		return fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode auth service response: %w", err)
	}
	return nil
}
