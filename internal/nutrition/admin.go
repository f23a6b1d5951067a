package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var out []Provider
	if err := c.doJSON(ctx, http.MethodGet, "admin/providers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProviderTemplates(ctx context.Context) ([]ProviderTemplate, error) {
	var out []ProviderTemplate
	if err := c.doJSON(ctx, http.MethodGet, "admin/providers/templates", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProvider(ctx context.Context, req ProviderCreate) (*Provider, error) {
	if req.ModelMap == nil {
		req.ModelMap = map[string]string{}
	}
	var out Provider
	if err := c.doJSON(ctx, http.MethodPost, "admin/providers", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProvider(ctx context.Context, id int64, req ProviderUpdate) (*Provider, error) {
	var out Provider
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("admin/providers/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestProvider asks the backend to health-check one provider
func (c *Client) TestProvider(ctx context.Context, id int64) (*ProviderHealthCheck, error) {
	var out ProviderHealthCheck
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("admin/providers/%d/test", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditLogs lists recent admin actions; limit <= 0 means the default of 50
func (c *Client) AuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []AuditLog
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.doJSON(ctx, http.MethodGet, "admin/audit-logs", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
