// Package upstream talks to user-configured OpenAI-compatible backends.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"NanoVision/server/internal/interfaces"
	"NanoVision/server/internal/locator"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxErrorBody = 200

var (
	versionSuffix  = regexp.MustCompile(`/v\d+$`)
	routeSuffixes  = []string{"/chat/completions", "/images/generations", "/models"}
	ErrNoEndpoint  = errors.New("endpoint is required")
	ErrNoAPIKey    = errors.New("api key is required")
	ErrBadEndpoint = errors.New("endpoint must be an absolute http(s) URL")
)

// Client forwards requests to an OpenAI-compatible backend. It never retries.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client; a zero timeout means no overall timeout
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NormalizeEndpoint turns a user-entered endpoint into an API base URL
// ending in a version segment.
func NormalizeEndpoint(endpoint string) (string, error) {
	base := strings.TrimSpace(endpoint)
	if base == "" {
		return "", ErrNoEndpoint
	}
	base = strings.TrimRight(base, "/")
	for _, suffix := range routeSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	base = strings.TrimRight(base, "/")

	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrBadEndpoint
	}
	if !versionSuffix.MatchString(u.Path) {
		base += "/v1"
	}
	return base, nil
}

func routeFor(kind interfaces.RequestKind) (string, error) {
	switch kind {
	case interfaces.RequestChat:
		return "/chat/completions", nil
	case interfaces.RequestImages:
		return "/images/generations", nil
	default:
		return "", fmt.Errorf("unknown request type: %q", kind)
	}
}

// Forward posts payload to the route for kind and returns the reply verbatim,
// whatever its status.
func (c *Client) Forward(ctx context.Context, endpoint, apiKey string, kind interfaces.RequestKind, payload interface{}) (*interfaces.BackendResponse, error) {
	base, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	route, err := routeFor(kind)
	if err != nil {
		return nil, err
	}

	var reqBody []byte
	switch p := payload.(type) {
	case json.RawMessage:
		reqBody = p
	case []byte:
		reqBody = p
	default:
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+route, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", strings.TrimSpace(apiKey)))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("upstream request finished",
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &interfaces.BackendResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

func (c *Client) openAIClient(endpoint, apiKey string) (*openai.Client, error) {
	base, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	cfg.BaseURL = base
	cfg.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(cfg), nil
}

// ListModels returns the backend's model list
func (c *Client) ListModels(ctx context.Context, endpoint, apiKey string) ([]interfaces.ModelInfo, error) {
	client, err := c.openAIClient(endpoint, apiKey)
	if err != nil {
		return nil, err
	}
	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}
	models := make([]interfaces.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		object := m.Object
		if object == "" {
			object = "model"
		}
		models = append(models, interfaces.ModelInfo{ID: m.ID, Object: object, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

// Chat runs a non-streaming chat completion
func (c *Client) Chat(ctx context.Context, endpoint, apiKey string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	client, err := c.openAIClient(endpoint, apiKey)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, wrapOpenAIError(err)
	}
	return resp, nil
}

// StatusError is a non-2xx upstream reply reduced to a readable message
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := "request failed"
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return fmt.Errorf("failed to send request: %w", err)
}

// ErrorMessage extracts a human-readable message from an upstream error body
func ErrorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, path := range []string{"error.message", "error", "message", "detail"} {
			v := parsed.Get(path)
			if v.Exists() && v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
		if detail := parsed.Get("detail"); detail.Exists() && detail.Type != gjson.Null {
			return locator.Truncate(detail.Raw, maxErrorBody)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	return locator.Truncate(text, maxErrorBody)
}

// ResponseError converts a non-2xx reply into a StatusError
func ResponseError(resp *interfaces.BackendResponse) error {
	if resp.OK() {
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: ErrorMessage(resp.Body)}
}
