package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fixture wires the real services over an in-memory store
type fixture struct {
	store    *docstore.MemoryStore
	repos    *repository.Repositories
	clock    *testClock
	jwt      *utils.JWTManager
	hasher   *utils.PasswordHasher
	sessions *SessionManager
	auth     AuthService
	patients PatientService
	provider ProviderService
	tips     HealthTipService
}

func newFixture() *fixture {
	store := docstore.NewMemoryStore()
	repos := repository.NewRepositories(store)
	clock := &testClock{t: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)}
	jwt := utils.NewJWTManager(testSecret, time.Hour, 7*24*time.Hour).WithClock(clock.Now)
	hasher := utils.NewPasswordHasher(utils.AlgorithmArgon2id, 0, utils.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1})
	sessions := NewSessionManager(repos.User, repos.Token, jwt)

	return &fixture{
		store:    store,
		repos:    repos,
		clock:    clock,
		jwt:      jwt,
		hasher:   hasher,
		sessions: sessions,
		auth:     NewAuthService(repos, sessions, jwt, hasher, nil, zap.NewNop()),
		patients: NewPatientService(repos, clock.Now),
		provider: NewProviderService(repos),
		tips:     NewHealthTipService(repos.HealthTip, clock.Now),
	}
}

func (f *fixture) deleteAllUsers() error {
	return f.store.Replace(context.Background(), repository.CollectionUsers, nil)
}
