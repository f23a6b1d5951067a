// Package nutrition is a client for the meal analysis REST backend.
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1/"
)

// APIError is a non-2xx reply; Detail comes from the FastAPI error body
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nutrition api: HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsUnauthorized reports a 401 reply
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// TokenStore holds the bearer token between calls
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// bearerTransport adds the stored token to every request
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *zap.Logger
}

// NewClient builds a client; empty baseURL and zero timeout take the defaults
func NewClient(baseURL string, timeout time.Duration, tokens TokenStore, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
		tokens: tokens,
		logger: logger.Named("nutrition"),
	}
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + apiPrefix + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("nutrition request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// errorDetail reads FastAPI's {"detail": ...}; validation errors carry a list
func errorDetail(body []byte) string {
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		switch {
		case detail.Type == gjson.String:
			return detail.Str
		case detail.IsArray():
			msgs := make([]string, 0)
			detail.ForEach(func(_, item gjson.Result) bool {
				msg := item.Get("msg").String()
				if loc := item.Get("loc"); loc.IsArray() {
					parts := make([]string, 0)
					for _, p := range loc.Array() {
						parts = append(parts, p.String())
					}
					msg = strings.Join(parts, ".") + ": " + msg
				}
				msgs = append(msgs, msg)
				return true
			})
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		case detail.Exists():
			return detail.Raw
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}
	return text
}
