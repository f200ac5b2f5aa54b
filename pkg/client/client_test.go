package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts exactly one access token at a time and rotates on refresh
type fakeServer struct {
	mu        sync.Mutex
	access    string
	refresh   string
	rotations int

	refreshCalls atomic.Int32
	refreshDelay time.Duration
	rejectAll    bool
}

func (s *fakeServer) write(w http.ResponseWriter, status int, code string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	state := dto.StatusSuccess
	if status >= 400 {
		state = dto.StatusError
	}
	_ = json.NewEncoder(w).Encode(dto.NewEnvelope(state, code, data))
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		var req dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			s.write(w, http.StatusUnauthorized, dto.CodeInvalidCredentials, dto.MessageData{Message: "Invalid credentials"})
			return
		}
		s.mu.Lock()
		s.access, s.refresh = "access-0", "refresh-0"
		resp := dto.AuthResponse{AccessToken: s.access, RefreshToken: s.refresh, User: dto.UserInfo{ID: "u1", Email: req.Email}}
		s.mu.Unlock()
		s.write(w, http.StatusOK, dto.CodeLoginSuccess, resp)

	case "/api/auth/refresh":
		s.refreshCalls.Add(1)
		time.Sleep(s.refreshDelay)
		var req dto.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.rejectAll || req.RefreshToken != s.refresh {
			s.write(w, http.StatusUnauthorized, dto.CodeInvalidRefreshToken, dto.MessageData{Message: "Invalid refresh token"})
			return
		}
		s.rotations++
		s.access = "access-" + strconv.Itoa(s.rotations)
		s.refresh = "refresh-" + strconv.Itoa(s.rotations)
		s.write(w, http.StatusOK, dto.CodeTokenRefreshed, domain.TokenPair{AccessToken: s.access, RefreshToken: s.refresh})

	case "/api/auth/me":
		s.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+s.access
		s.mu.Unlock()
		if !ok {
			s.write(w, http.StatusUnauthorized, dto.CodeInvalidToken, dto.MessageData{Message: "Invalid token"})
			return
		}
		s.write(w, http.StatusOK, dto.CodeUserProfileRetrieved, dto.UserResponse{User: domain.PublicUser{ID: "u1", Email: "a@b.c"}})

	case "/api/auth/logout":
		var req dto.LogoutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		defer s.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+s.access {
			s.write(w, http.StatusUnauthorized, dto.CodeInvalidToken, dto.MessageData{Message: "Invalid token"})
			return
		}
		if req.RefreshToken == s.refresh {
			s.refresh = ""
		}
		s.write(w, http.StatusOK, dto.CodeLogoutSuccess, dto.MessageData{Message: "Logged out"})

	default:
		http.NotFound(w, r)
	}
}

// expire invalidates the current access token without touching the refresh token
func (s *fakeServer) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = "expired"
}

func newTestClient(t *testing.T, fs *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestLoginStoresTokens(t *testing.T) {
	fs := &fakeServer{}
	c := newTestClient(t, fs)
	ctx := context.Background()

	_, ok := c.Tokens()
	assert.False(t, ok)

	resp, err := c.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	pair, ok := c.Tokens()
	require.True(t, ok)
	assert.Equal(t, "access-0", pair.AccessToken)

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestLoginFailureReturnsAPIError(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, dto.CodeInvalidCredentials, apiErr.MessageCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	_, ok := c.Tokens()
	assert.False(t, ok)
}

func TestDoRequiresLogin(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	fs := &fakeServer{}
	c := newTestClient(t, fs)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	fs.expire()

	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fs.refreshCalls.Load())

	pair, _ := c.Tokens()
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestConcurrentUnauthorizedCallsShareOneRefresh(t *testing.T) {
	fs := &fakeServer{refreshDelay: 50 * time.Millisecond}
	c := newTestClient(t, fs)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	fs.expire()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Me(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), fs.refreshCalls.Load())
}

func TestRejectedRefreshExpiresSession(t *testing.T) {
	fs := &fakeServer{}
	c := newTestClient(t, fs)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	fs.expire()
	fs.mu.Lock()
	fs.rejectAll = true
	fs.mu.Unlock()

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, ok := c.Tokens()
	assert.False(t, ok)

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRefreshSurvivesCallerCancellation(t *testing.T) {
	fs := &fakeServer{refreshDelay: 50 * time.Millisecond}
	c := newTestClient(t, fs)

	_, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	fs.expire()

	pair, _ := c.Tokens()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next, err := c.refresh(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access-1", next.AccessToken)
}

func TestLogoutAfterRefreshRevokesTheRotatedToken(t *testing.T) {
	fs := &fakeServer{}
	c := newTestClient(t, fs)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	fs.expire()

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, int32(1), fs.refreshCalls.Load())

	fs.mu.Lock()
	live := fs.refresh
	fs.mu.Unlock()
	assert.Empty(t, live, "the refresh token issued during logout must be revoked")

	_, ok := c.Tokens()
	assert.False(t, ok)
}

func TestAPIErrorFormat(t *testing.T) {
	err := &APIError{StatusCode: 404, MessageCode: "ROUTE_NOT_FOUND", Message: "Route not found"}
	assert.True(t, strings.HasPrefix(err.Error(), "404 ROUTE_NOT_FOUND"))
}
