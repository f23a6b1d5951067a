package optimizer

import (
	"context"
	"errors"
	"testing"

	"NanoVision/server/internal/appstate"
	"NanoVision/server/internal/models"
	"NanoVision/server/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	endpoint string
	apiKey   string
	requests []openai.ChatCompletionRequest
	reply    string
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakeChat) Chat(ctx context.Context, endpoint, apiKey string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.endpoint = endpoint
	f.apiKey = apiKey
	f.requests = append(f.requests, req)
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: f.reply}}},
	}, nil
}

func newState(t *testing.T) *appstate.State {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	state := appstate.New(storage.NewRedisStoreFromClient(client), nil, nil)
	require.NoError(t, state.SaveAPIConfig(context.Background(), models.APIConfig{Endpoint: "https://img", APIKey: "img-key"}))
	return state
}

func TestSend_BuildsConversation(t *testing.T) {
	chat := &fakeChat{reply: `{"optimizedPrompt":"a fluffy cat","chineseTranslation":"一只毛茸茸的猫","description":"cozy"}`}
	s := NewSession(newState(t), chat, nil)

	msg, err := s.Send(context.Background(), "  a cat  ")
	require.NoError(t, err)
	assert.Equal(t, "a fluffy cat", msg.OptimizedPrompt)
	assert.Equal(t, "一只毛茸茸的猫", msg.ChineseTranslation)

	_, err = s.Send(context.Background(), "make it blue")
	require.NoError(t, err)

	require.Len(t, chat.requests, 2)
	first := chat.requests[0]
	assert.Equal(t, DefaultModel, first.Model)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, first.Messages[0].Role)
	assert.Equal(t, "a cat", first.Messages[1].Content)

	second := chat.requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, "a cat", second[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, second[2].Role)
	assert.Equal(t, "make it blue", second[3].Content)

	assert.Equal(t, "https://img", chat.endpoint)
	assert.Equal(t, "img-key", chat.apiKey)
	assert.Len(t, s.Messages(), 5)
}

func TestSend_UsesAssistantConfig(t *testing.T) {
	state := newState(t)
	require.NoError(t, state.SaveAssistantConfig(context.Background(), models.AssistantConfig{
		Endpoint: "https://chat", APIKey: "chat-key", Model: "gpt-4o-mini",
	}))
	chat := &fakeChat{reply: "plain text"}
	s := NewSession(state, chat, nil)

	msg, err := s.Send(context.Background(), "a dog")
	require.NoError(t, err)
	assert.Equal(t, "https://chat", chat.endpoint)
	assert.Equal(t, "gpt-4o-mini", chat.requests[0].Model)
	assert.Equal(t, "plain text", msg.OptimizedPrompt)
}

func TestSend_ErrorBecomesMessage(t *testing.T) {
	chat := &fakeChat{err: errors.New("HTTP 401: invalid key")}
	s := NewSession(newState(t), chat, nil)

	msg, err := s.Send(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msg.Role)
	assert.Empty(t, msg.OptimizedPrompt)
	assert.Contains(t, msg.Description, "invalid key")
}

func TestSend_EmptyAndBusy(t *testing.T) {
	chat := &fakeChat{reply: "{}", block: make(chan struct{}), entered: make(chan struct{})}
	s := NewSession(newState(t), chat, nil)

	_, err := s.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	done := make(chan struct{})
	go func() {
		s.Send(context.Background(), "first")
		close(done)
	}()
	<-chat.entered
	assert.True(t, s.Busy())

	_, err = s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(chat.block)
	<-done
	assert.False(t, s.Busy())
	assert.Len(t, s.Messages(), 3)
}

func TestClear(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	s := NewSession(newState(t), chat, nil)
	_, err := s.Send(context.Background(), "a cat")
	require.NoError(t, err)

	s.Clear()
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Description, "cleared")

	_, err = s.Send(context.Background(), "a dog")
	require.NoError(t, err)
	last := chat.requests[len(chat.requests)-1]
	require.Len(t, last.Messages, 2)
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Suggestion
	}{
		{
			name:    "bare json",
			content: `{"optimizedPrompt":"p","chineseTranslation":"c","description":"d"}`,
			want:    Suggestion{OptimizedPrompt: "p", ChineseTranslation: "c", Description: "d"},
		},
		{
			name:    "fenced json",
			content: "Here you go:\n```json\n{\"optimizedPrompt\":\"p\"}\n```",
			want:    Suggestion{OptimizedPrompt: "p"},
		},
		{
			name:    "json inside prose",
			content: `Sure! {"optimizedPrompt":"p","description":"d"} Enjoy.`,
			want:    Suggestion{OptimizedPrompt: "p", Description: "d"},
		},
		{
			name:    "plain text",
			content: "a majestic lion",
			want:    Suggestion{OptimizedPrompt: "a majestic lion"},
		},
		{
			name:    "empty object",
			content: "{}",
			want:    Suggestion{OptimizedPrompt: "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestion(tt.content))
		})
	}
}
