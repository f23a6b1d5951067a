package generator

import (
	"errors"
	"fmt"
)

// ErrGenerationInProgress is returned while another generation is pending
var ErrGenerationInProgress = errors.New("a generation is already in progress")

// ConfigError is a local validation failure; nothing was sent upstream
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// UpstreamError is a transport failure or a non-2xx reply from the backend
type UpstreamError struct {
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream request failed: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NoImageError means the reply parsed but held no image
type NoImageError struct {
	Excerpt string // leading text the model returned, chat format only
}

func (e *NoImageError) Error() string {
	if e.Excerpt == "" {
		return "no image found in the API response"
	}
	return fmt.Sprintf("the API returned no image. Model replied: %s... Make sure the model is an image generation model, not a plain chat model", e.Excerpt)
}
