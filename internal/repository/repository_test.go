package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(docstore.NewMemoryStore())
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", PasswordDigest: "digest", Name: "Ann", Role: domain.RolePatient}
	require.NoError(t, repos.User.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repos.User.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)

	_, err = repos.User.GetByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, ErrNotFound, "email matching is exact")
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.User.Create(ctx, &domain.User{Email: "a@x.com", Name: "Ann"}))
	err := repos.User.Create(ctx, &domain.User{Email: "a@x.com", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_ConcurrentRegistrationOfSameEmail(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	var created, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repos.User.Create(ctx, &domain.User{Email: "race@x.com", Name: fmt.Sprint(i)})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrDuplicateEmail):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(19), duplicates.Load())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", PasswordDigest: "old"}
	require.NoError(t, repos.User.Create(ctx, user))

	require.NoError(t, repos.User.UpdatePassword(ctx, user.ID, "new"))
	got, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordDigest)

	assert.ErrorIs(t, repos.User.UpdatePassword(ctx, "missing", "x"), ErrNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Name: "Ann"}
	require.NoError(t, repos.User.Create(ctx, user))
	require.NoError(t, repos.User.Delete(ctx, user.ID))

	_, err := repos.User.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repos.User.Delete(ctx, user.ID), ErrNotFound)
}

func TestTokenRepository_RotateIsSingleUse(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	old := &domain.RefreshToken{UserID: "u1", TokenHash: "h0", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repos.Token.Create(ctx, old))
	assert.Equal(t, domain.TokenTypeRefresh, old.Type)

	require.NoError(t, repos.Token.Rotate(ctx, "u1", "h0", &domain.RefreshToken{UserID: "u1", TokenHash: "h1"}))

	err := repos.Token.Rotate(ctx, "u1", "h0", &domain.RefreshToken{UserID: "u1", TokenHash: "h2"})
	assert.ErrorIs(t, err, ErrNotFound)

	tokens, err := repos.Token.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "h1", tokens[0].TokenHash)
}

func TestTokenRepository_RotateRequiresMatchingUser(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Token.Create(ctx, &domain.RefreshToken{UserID: "u1", TokenHash: "h0"}))

	err := repos.Token.Rotate(ctx, "u2", "h0", &domain.RefreshToken{UserID: "u2", TokenHash: "h1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepository_ConcurrentRotationsOfOneToken(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Token.Create(ctx, &domain.RefreshToken{UserID: "u1", TokenHash: "h0"}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := &domain.RefreshToken{UserID: "u1", TokenHash: fmt.Sprintf("n%d", i)}
			if err := repos.Token.Rotate(ctx, "u1", "h0", next); err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	tokens, err := repos.Token.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestTokenRepository_Deletes(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	now := time.Now()

	for _, rec := range []*domain.RefreshToken{
		{UserID: "u1", TokenHash: "a", ExpiresAt: now.Add(time.Hour)},
		{UserID: "u1", TokenHash: "b", ExpiresAt: now.Add(-time.Hour)},
		{UserID: "u1", TokenHash: "c", ExpiresAt: now.Add(time.Hour)},
		{UserID: "u2", TokenHash: "d", ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, repos.Token.Create(ctx, rec))
	}

	n, err := repos.Token.DeleteByTokenHash(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repos.Token.DeleteByTokenHash(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = repos.Token.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repos.Token.DeleteByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := repos.Token.GetByTokenHash(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "u2", rec.UserID)
}

func TestPatientRepository_Update(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &domain.User{ID: "p1", Email: "p@x.com", Name: "Pat"}
	require.NoError(t, repos.Patient.Create(ctx, domain.NewPatient(user, time.Now().UTC())))

	phone := "555-0100"
	updated, err := repos.Patient.Update(ctx, "p1", func(p *domain.Patient) {
		p.Phone = &phone
		p.ConsentGiven = true
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", *updated.Phone)
	assert.True(t, updated.ConsentGiven)

	_, err = repos.Patient.Update(ctx, "missing", func(*domain.Patient) {})
	assert.ErrorIs(t, err, ErrNotFound)

	byUser, err := repos.Patient.GetByUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Pat", byUser.Name)

	list, err := repos.Patient.GetByIDs(ctx, []string{"missing", "p1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
}

func TestPatientRepository_UpdateKeepsUnmodeledFields(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewPatientRepository(store)
	ctx := context.Background()

	untouched := json.RawMessage(`{"id":"p2","userId":"p2","name":"Mary","condition":"Asthma","age":41}`)
	require.NoError(t, store.Replace(ctx, CollectionPatients, []json.RawMessage{
		json.RawMessage(`{"id":"p1","userId":"p1","name":"John","condition":"Diabetes","age":58,"phone":"555-0000"}`),
		untouched,
	}))

	phone := "555-0100"
	_, err := repo.Update(ctx, "p1", func(p *domain.Patient) {
		p.Phone = &phone
	})
	require.NoError(t, err)

	raw, err := store.Read(ctx, CollectionPatients)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	var edited map[string]interface{}
	require.NoError(t, json.Unmarshal(raw[0], &edited))
	assert.Equal(t, "Diabetes", edited["condition"])
	assert.Equal(t, float64(58), edited["age"])
	assert.Equal(t, "555-0100", edited["phone"])
	assert.Equal(t, "John", edited["name"])
	assert.NotContains(t, edited, "createdAt")
	assert.Contains(t, edited, "updatedAt")

	assert.JSONEq(t, string(untouched), string(raw[1]))
}

func TestCollection_RemovedRecordsAreDropped(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewTokenRepository(store)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, CollectionTokens, []json.RawMessage{
		json.RawMessage(`{"id":"t1","userId":"u1","tokenHash":"a","device":"phone"}`),
		json.RawMessage(`{"id":"t2","userId":"u2","tokenHash":"b","device":"laptop"}`),
	}))

	deleted, err := repo.DeleteByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	raw, err := store.Read(ctx, CollectionTokens)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.JSONEq(t, `{"id":"t2","userId":"u2","tokenHash":"b","device":"laptop"}`, string(raw[0]))
}

func TestProviderRepository_AssignPatient(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	provider := &domain.Provider{UserID: "doc", Name: "Dr. Doc"}
	require.NoError(t, repos.Provider.Create(ctx, provider))

	require.NoError(t, repos.Provider.AssignPatient(ctx, provider.ID, "p1"))
	require.NoError(t, repos.Provider.AssignPatient(ctx, provider.ID, "p1"))

	got, err := repos.Provider.GetByUserID(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, got.AssignedPatients)

	assert.ErrorIs(t, repos.Provider.AssignPatient(ctx, "nope", "p1"), ErrNotFound)
}

func TestGoalRepository_UpsertByPatientTypeDate(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	key := GoalKey{PatientID: "p1", Type: "steps", Date: "2025-03-01"}

	first, err := repos.Goal.Upsert(ctx, key, func(g *domain.Goal, created bool) {
		assert.True(t, created)
		g.Target = 8000
		g.Unit = "steps"
	})
	require.NoError(t, err)
	assert.Nil(t, first.UpdatedAt)

	second, err := repos.Goal.Upsert(ctx, key, func(g *domain.Goal, created bool) {
		assert.False(t, created)
		g.Current = 9000
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotNil(t, second.UpdatedAt)
	assert.True(t, second.Met())

	_, err = repos.Goal.Upsert(ctx, GoalKey{PatientID: "p1", Type: "steps", Date: "2025-03-02"}, func(g *domain.Goal, _ bool) {
		g.Target = 1
	})
	require.NoError(t, err)

	goals, err := repos.Goal.ListByPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, goals, 2)

	none, err := repos.Goal.ListByPatient(ctx, "p2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAuditRepository_AppendBatch(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewAuditRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx))
	require.NoError(t, repo.Append(ctx,
		domain.AuditLogEntry{ID: "1", UserID: "u1", Action: "GET", Resource: "/api/auth/me"},
		domain.AuditLogEntry{ID: "2", UserID: "u1", Action: "POST", Resource: "/api/auth/logout"},
	))

	raw, err := store.Read(ctx, CollectionAuditLogs)
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestCollection_CorruptRecord(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, CollectionUsers, nil))
	require.NoError(t, store.Update(ctx, CollectionUsers, func(records []json.RawMessage) ([]json.RawMessage, error) {
		return append(records, json.RawMessage(`"not an object"`)), nil
	}))

	_, err := NewUserRepository(store).GetByEmail(ctx, "a@x.com")
	assert.Error(t, err)
}
