// Package optimizer is a chat assistant that rewrites image prompts.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"NanoVision/server/internal/appstate"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const DefaultModel = "gpt-3.5-turbo"

var (
	ErrBusy         = errors.New("optimizer is already waiting for a reply")
	ErrEmptyMessage = errors.New("message is empty")
)

// ChatBackend runs a chat completion against an OpenAI-compatible backend
type ChatBackend interface {
	Chat(ctx context.Context, endpoint, apiKey string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Message is one turn of the conversation. Assistant messages carry the
// parsed suggestion.
type Message struct {
	Role               string `json:"role"`
	Content            string `json:"content"`
	OptimizedPrompt    string `json:"optimizedPrompt,omitempty"`
	ChineseTranslation string `json:"chineseTranslation,omitempty"`
	Description        string `json:"description,omitempty"`
	Timestamp          int64  `json:"timestamp"`
}

// Session holds one conversation. The first message is never sent upstream.
type Session struct {
	state   *appstate.State
	backend ChatBackend
	logger  *zap.Logger
	now     func() time.Time

	busy *atomic.Bool

	mu       sync.RWMutex
	messages []Message
}

func NewSession(state *appstate.State, backend ChatBackend, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		state:   state,
		backend: backend,
		logger:  logger.Named("optimizer"),
		now:     time.Now,
		busy:    atomic.NewBool(false),
	}
	s.messages = []Message{{Role: openai.ChatMessageRoleAssistant, Content: greeting, Timestamp: s.now().UnixMilli()}}
	return s
}

func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Busy reports whether a reply is pending
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Clear drops the history and leaves a single notice
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []Message{s.assistantMessage(suggestionJSON(Suggestion{Description: clearedDescription}))}
}

// Send appends text as a user message and waits for the assistant reply.
// Backend failures become an assistant message rather than an error.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	history := make([]Message, len(s.messages)-1)
	copy(history, s.messages[1:])
	s.messages = append(s.messages, Message{Role: openai.ChatMessageRoleUser, Content: text, Timestamp: s.now().UnixMilli()})
	s.mu.Unlock()

	reply, err := s.complete(ctx, history, text)
	var msg Message
	if err != nil {
		s.logger.Warn("prompt optimization failed", zap.Error(err))
		msg = s.assistantMessage(suggestionJSON(Suggestion{
			Description: fmt.Sprintf("Error: %s\n\nPlease check the API settings.", err.Error()),
		}))
	} else {
		msg = s.assistantMessage(reply)
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg, nil
}

func (s *Session) complete(ctx context.Context, history []Message, text string) (string, error) {
	endpoint, apiKey, model := s.target()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})

	resp, err := s.backend.Chat(ctx, endpoint, apiKey, openai.ChatCompletionRequest{
		Model:    model,
		Stream:   false,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fallbackReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// target falls back to the image backend when the assistant is not configured
func (s *Session) target() (endpoint, apiKey, model string) {
	assistant := s.state.AssistantConfig()
	api := s.state.APIConfig()

	endpoint = assistant.Endpoint
	if endpoint == "" {
		endpoint = api.Endpoint
	}
	apiKey = assistant.APIKey
	if apiKey == "" {
		apiKey = api.APIKey
	}
	model = assistant.Model
	if model == "" {
		model = DefaultModel
	}
	return endpoint, apiKey, model
}

func (s *Session) assistantMessage(content string) Message {
	sug := ParseSuggestion(content)
	return Message{
		Role:               openai.ChatMessageRoleAssistant,
		Content:            content,
		OptimizedPrompt:    sug.OptimizedPrompt,
		ChineseTranslation: sug.ChineseTranslation,
		Description:        sug.Description,
		Timestamp:          s.now().UnixMilli(),
	}
}
