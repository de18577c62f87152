package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/common"
)

// envelope is the uniform response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the backend at baseURL. timeout bounds
// every round trip; zero disables the bound.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*models.AuthResult, error) {
	var result models.AuthResult
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/google-oauth", "", body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("exchange response missing token or user")
	}
	return &result, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, update *models.ProfileUpdate) (*models.User, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/profile", token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do performs one round trip: marshals body (if any), sets the bearer header
// (if token is non-empty), maps the failure families to sentinel errors, and
// decodes the envelope's data into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		// Attach the backend message when the envelope provides one.
		var env envelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr == nil && env.Message != "" {
			return fmt.Errorf("%w: %s", err, env.Message)
		}
		return err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// mapStatus translates an HTTP status into the sentinel error families.
func mapStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return common.ErrUnauthorized
	case status >= 500:
		return common.ErrUnavailable
	default:
		return &Error{Status: status}
	}
}
