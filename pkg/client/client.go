// Package client is a Go client for the wellness portal API. It keeps the caller's
// token pair and transparently refreshes an expired access token, sharing a single
// refresh between concurrent requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when the refresh token was rejected. The stored
// session is cleared and the user has to log in again.
var ErrSessionExpired = errors.New("session expired")

// ErrNotAuthenticated is returned by authorized calls made before login
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is an error envelope returned by the server
type APIError struct {
	StatusCode  int
	MessageCode string
	Message     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.MessageCode, e.Message)
}

// Client talks to one portal server on behalf of one user
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens *domain.TokenPair

	refreshes singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3001"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the current token pair
func (c *Client) Tokens() (domain.TokenPair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.tokens == nil {
		return domain.TokenPair{}, false
	}
	return *c.tokens, true
}

// SetTokens restores a previously saved session
func (c *Client) SetTokens(pair domain.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = &pair
}

func (c *Client) clearTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = nil
}

// Register creates an account and starts a session
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	c.SetTokens(domain.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return &resp, nil
}

// Login starts a session
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	c.SetTokens(domain.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return &resp, nil
}

// Logout ends the current session on the server and forgets it locally. The request
// always names the refresh token held when it is sent, including after a refresh.
func (c *Client) Logout(ctx context.Context) error {
	if _, ok := c.Tokens(); !ok {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/auth/logout", func(pair domain.TokenPair) interface{} {
		return dto.LogoutRequest{RefreshToken: pair.RefreshToken}
	}, nil)
	c.clearTokens()
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	return err
}

// Me returns the logged-in user
func (c *Client) Me(ctx context.Context) (*domain.PublicUser, error) {
	var resp dto.UserResponse
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) PatientProfile(ctx context.Context) (*domain.Patient, error) {
	var resp dto.PatientResponse
	if err := c.Do(ctx, http.MethodGet, "/api/patients/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Patient, nil
}

func (c *Client) Goals(ctx context.Context) ([]domain.Goal, error) {
	var resp dto.GoalsResponse
	if err := c.Do(ctx, http.MethodGet, "/api/patients/goals", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Goals, nil
}

func (c *Client) SaveGoal(ctx context.Context, req dto.SaveGoalRequest) (*domain.Goal, error) {
	var resp dto.GoalResponse
	if err := c.Do(ctx, http.MethodPost, "/api/patients/goals", req, &resp); err != nil {
		return nil, err
	}
	return resp.Goal, nil
}

// Do performs an authorized request and decodes the envelope data into out.
// A 401 triggers one token refresh and one replay of the request.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.do(ctx, method, path, func(domain.TokenPair) interface{} { return body }, out)
}

// do builds the body from the pair each attempt is sent with
func (c *Client) do(ctx context.Context, method, path string, body func(domain.TokenPair) interface{}, out interface{}) error {
	pair, ok := c.Tokens()
	if !ok {
		return ErrNotAuthenticated
	}

	err := c.send(ctx, method, path, pair.AccessToken, body(pair), out)
	if !isUnauthorized(err) {
		return err
	}

	fresh, err := c.refresh(ctx, pair.AccessToken)
	if err != nil {
		return err
	}

	return c.send(ctx, method, path, fresh.AccessToken, body(fresh), out)
}

// refresh rotates the token pair unless another caller already replaced the
// stale access token. Concurrent callers share one in-flight refresh.
func (c *Client) refresh(ctx context.Context, stale string) (domain.TokenPair, error) {
	v, err, _ := c.refreshes.Do("refresh", func() (interface{}, error) {
		current, ok := c.Tokens()
		if !ok {
			return domain.TokenPair{}, ErrSessionExpired
		}
		if current.AccessToken != stale {
			return current, nil
		}

		var next domain.TokenPair
		req := dto.RefreshRequest{RefreshToken: current.RefreshToken}
		err := c.send(context.WithoutCancel(ctx), http.MethodPost, "/api/auth/refresh", "", req, &next)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
				c.clearTokens()
				return domain.TokenPair{}, ErrSessionExpired
			}
			return domain.TokenPair{}, err
		}

		c.SetTokens(next)
		return next, nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return v.(domain.TokenPair), nil
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type envelope struct {
	Status      string          `json:"status"`
	MessageCode string          `json:"messageCode"`
	Data        json.RawMessage `json:"data"`
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s %s response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if env.Status != dto.StatusSuccess {
		apiErr := &APIError{StatusCode: resp.StatusCode, MessageCode: env.MessageCode}
		var data dto.MessageData
		if json.Unmarshal(env.Data, &data) == nil {
			apiErr.Message = data.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
