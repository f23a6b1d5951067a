package nutrition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

const MaxMealImages = 3

var ErrTooManyImages = fmt.Errorf("at most %d images per meal", MaxMealImages)

// MealImage is one uploaded photo
type MealImage struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type MealAnalyzeRequest struct {
	MoodText    string
	HungerLevel *int
	StressLevel *int
	Images      []MealImage
}

// AnalyzeMeal uploads the meal as multipart form data
func (c *Client) AnalyzeMeal(ctx context.Context, req MealAnalyzeRequest) (*MealAnalyzeResponse, error) {
	if len(req.Images) > MaxMealImages {
		return nil, ErrTooManyImages
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("mood_text", req.MoodText); err != nil {
		return nil, fmt.Errorf("failed to write mood_text: %w", err)
	}
	if req.HungerLevel != nil {
		if err := writer.WriteField("hunger_level", strconv.Itoa(*req.HungerLevel)); err != nil {
			return nil, fmt.Errorf("failed to write hunger_level: %w", err)
		}
	}
	if req.StressLevel != nil {
		if err := writer.WriteField("stress_level", strconv.Itoa(*req.StressLevel)); err != nil {
			return nil, fmt.Errorf("failed to write stress_level: %w", err)
		}
	}

	for i, img := range req.Images {
		if img.Data == nil {
			return nil, errors.New("image data is required")
		}
		filename := img.Filename
		if filename == "" {
			filename = fmt.Sprintf("meal-%d.jpg", i+1)
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, img.Data); err != nil {
			return nil, fmt.Errorf("failed to write image: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("meal/analyze", nil), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var out MealAnalyzeResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MealHistory lists recent meals; limit <= 0 means the default of 20
func (c *Client) MealHistory(ctx context.Context, limit int) (*MealHistoryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	var out MealHistoryResponse
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.doJSON(ctx, http.MethodGet, "meal/history", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
