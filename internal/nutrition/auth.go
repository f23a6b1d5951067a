package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"NanoVision/server/internal/interfaces"
)

// TokenKey is the settings key the bearer token is persisted under
const TokenKey = "token"

// MemoryTokenStore keeps the token in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) SetToken(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) ClearToken(ctx context.Context) error {
	return m.SetToken(ctx, "")
}

// SettingsTokenStore persists the token in a SettingsStore
type SettingsTokenStore struct {
	store interfaces.SettingsStore
}

func NewSettingsTokenStore(store interfaces.SettingsStore) *SettingsTokenStore {
	return &SettingsTokenStore{store: store}
}

func (s *SettingsTokenStore) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.GetSetting(ctx, TokenKey)
	return token, err
}

func (s *SettingsTokenStore) SetToken(ctx context.Context, token string) error {
	return s.store.PutSetting(ctx, TokenKey, token)
}

func (s *SettingsTokenStore) ClearToken(ctx context.Context) error {
	return s.store.DeleteSetting(ctx, TokenKey)
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "auth/login", nil, LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserBrief, error) {
	var out UserBrief
	if err := c.doJSON(ctx, http.MethodPost, "auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProfile(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update HealthProfileUpdate) (*UserProfile, error) {
	if update.GoalType == "" {
		update.GoalType = "maintain"
	}
	var out UserProfile
	if err := c.doJSON(ctx, http.MethodPut, "profile", nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthSession tracks the signed-in user
type AuthSession struct {
	client *Client

	mu      sync.RWMutex
	profile *UserProfile
}

func NewAuthSession(client *Client) *AuthSession {
	return &AuthSession{client: client}
}

// Login stores the issued token, then loads the profile
func (a *AuthSession) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	tok, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.client.tokens.SetToken(ctx, tok.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return a.FetchProfile(ctx)
}

func (a *AuthSession) FetchProfile(ctx context.Context) (*UserProfile, error) {
	profile, err := a.client.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.profile = profile
	a.mu.Unlock()
	return profile, nil
}

// Logout forgets the token and the profile
func (a *AuthSession) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.profile = nil
	a.mu.Unlock()
	return a.client.tokens.ClearToken(ctx)
}

func (a *AuthSession) Token(ctx context.Context) (string, error) {
	return a.client.tokens.Token(ctx)
}

func (a *AuthSession) Profile() *UserProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile
}
