package nutrition

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// DailyReport summarises one day; a zero date means today on the backend
func (c *Client) DailyReport(ctx context.Context, day time.Time) (*DailyReport, error) {
	query := url.Values{}
	if !day.IsZero() {
		query.Set("target_date", day.Format(dateLayout))
	}
	var out DailyReport
	if err := c.doJSON(ctx, http.MethodGet, "report/daily", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeeklyReport covers the seven days ending on end
func (c *Client) WeeklyReport(ctx context.Context, end time.Time) (*WeeklyReport, error) {
	query := url.Values{}
	if !end.IsZero() {
		query.Set("end_date", end.Format(dateLayout))
	}
	var out WeeklyReport
	if err := c.doJSON(ctx, http.MethodGet, "report/weekly", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
