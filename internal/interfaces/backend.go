package interfaces

import "context"

// RequestKind selects the upstream route a payload is forwarded to
type RequestKind string

const (
	RequestChat   RequestKind = "chat"   // <base>/chat/completions
	RequestImages RequestKind = "images" // <base>/images/generations
)

// BackendResponse is an upstream reply passed through untouched
type BackendResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status
func (r *BackendResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ImageBackend reaches a user-configured OpenAI-compatible backend
type ImageBackend interface {
	// Forward posts payload to the route for kind and returns the raw reply
	Forward(ctx context.Context, endpoint, apiKey string, kind RequestKind, payload interface{}) (*BackendResponse, error)

	// ListModels returns the models the backend advertises
	ListModels(ctx context.Context, endpoint, apiKey string) ([]ModelInfo, error)
}

// ModelInfo is one entry of an OpenAI-style model list
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by,omitempty"`
}
