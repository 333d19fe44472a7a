package studyguard

import (
	"context"
	"testing"
	"time"

	"github.com/mednet-labs/studyguard/password"
	"github.com/mednet-labs/studyguard/submission"
)

const (
	testUserID     = "user-1"
	testIdentifier = "alice@example.com"
	testPassword   = "correct-password-123"
	testOrgID      = "org-1"
)

func lifecycleTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.AccessKey = []byte("test-access-key-0123456789abcdef")
	cfg.Token.RefreshKey = []byte("test-refresh-key-0123456789abcde")
	cfg.Token.AccessTTL = 5 * time.Minute
	cfg.Token.RefreshTTL = time.Hour
	// Minimal argon2 parameters keep the test suite fast.
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	cfg.Submission.Strictness = submission.StrictnessStrict
	return cfg
}

// memoryStore mirrors the in-process credstore adapter without the
// import cycle a credstore dependency would create in this package.
type memoryStore struct {
	users map[string]UserRecord
	orgs  map[string]OrgRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[string]UserRecord),
		orgs:  make(map[string]OrgRecord),
	}
}

func (s *memoryStore) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	user, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	user.RefreshTokens = append([]RefreshTokenRecord(nil), user.RefreshTokens...)
	return user, nil
}

func (s *memoryStore) GetUserByIdentifier(_ context.Context, identifier string) (UserRecord, error) {
	for _, user := range s.users {
		if user.Identifier == identifier {
			user.RefreshTokens = append([]RefreshTokenRecord(nil), user.RefreshTokens...)
			return user, nil
		}
	}
	return UserRecord{}, ErrUserNotFound
}

func (s *memoryStore) GetOrgByID(_ context.Context, id string) (OrgRecord, error) {
	org, ok := s.orgs[id]
	if !ok {
		return OrgRecord{}, ErrOrgNotFound
	}
	return org, nil
}

func (s *memoryStore) SaveRefreshTokens(_ context.Context, userID string, expected, next []RefreshTokenRecord) error {
	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if expected != nil && !tokenListsEqual(user.RefreshTokens, expected) {
		return ErrConcurrentModification
	}
	user.RefreshTokens = append([]RefreshTokenRecord(nil), next...)
	s.users[userID] = user
	return nil
}

func tokenListsEqual(a, b []RefreshTokenRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seedTestStore(t *testing.T, cfg Config) *memoryStore {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("argon2 init: %v", err)
	}
	seedHash, err := hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("argon2 hash: %v", err)
	}

	store := newMemoryStore()
	store.orgs[testOrgID] = OrgRecord{ID: testOrgID, IsActive: true, Status: OrgApproved}
	store.users[testUserID] = UserRecord{
		ID:           testUserID,
		Identifier:   testIdentifier,
		PasswordHash: seedHash,
		Role:         RoleResearcher,
		OrgID:        testOrgID,
		IsActive:     true,
	}
	return store
}

func newTestEngine(t *testing.T) (*Engine, *memoryStore) {
	t.Helper()

	cfg := lifecycleTestConfig()
	store := seedTestStore(t, cfg)

	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store
}
