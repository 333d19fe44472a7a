package credstore

import (
	"context"
	"reflect"
	"sync"

	"github.com/mednet-labs/studyguard"
)

// Memory is an in-process [studyguard.Store] with the same
// compare-and-swap semantics as the Redis adapter. Safe for concurrent
// use; intended for tests, examples, and single-node tooling.
type Memory struct {
	mu    sync.Mutex
	users map[string]studyguard.UserRecord
	orgs  map[string]studyguard.OrgRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]studyguard.UserRecord),
		orgs:  make(map[string]studyguard.OrgRecord),
	}
}

// PutUser inserts or replaces a user record.
func (m *Memory) PutUser(user studyguard.UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.RefreshTokens = cloneRecords(user.RefreshTokens)
	m.users[user.ID] = user
}

// PutOrg inserts or replaces an organization record.
func (m *Memory) PutOrg(org studyguard.OrgRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
}

func (m *Memory) GetUserByID(_ context.Context, id string) (studyguard.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return studyguard.UserRecord{}, studyguard.ErrUserNotFound
	}
	user.RefreshTokens = cloneRecords(user.RefreshTokens)
	return user, nil
}

func (m *Memory) GetUserByIdentifier(_ context.Context, identifier string) (studyguard.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Identifier == identifier {
			user.RefreshTokens = cloneRecords(user.RefreshTokens)
			return user, nil
		}
	}
	return studyguard.UserRecord{}, studyguard.ErrUserNotFound
}

func (m *Memory) GetOrgByID(_ context.Context, id string) (studyguard.OrgRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return studyguard.OrgRecord{}, studyguard.ErrOrgNotFound
	}
	return org, nil
}

// SaveRefreshTokens replaces the user's refresh-token list. With a
// non-nil expected slice the write succeeds only if the stored list is
// still deeply equal to it; otherwise the whole operation fails with
// [studyguard.ErrConcurrentModification].
func (m *Memory) SaveRefreshTokens(_ context.Context, userID string, expected, next []studyguard.RefreshTokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return studyguard.ErrUserNotFound
	}

	if expected != nil && !recordsEqual(user.RefreshTokens, expected) {
		return studyguard.ErrConcurrentModification
	}

	user.RefreshTokens = cloneRecords(next)
	m.users[userID] = user
	return nil
}

func cloneRecords(records []studyguard.RefreshTokenRecord) []studyguard.RefreshTokenRecord {
	if records == nil {
		return nil
	}
	out := make([]studyguard.RefreshTokenRecord, len(records))
	copy(out, records)
	return out
}

func recordsEqual(a, b []studyguard.RefreshTokenRecord) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
