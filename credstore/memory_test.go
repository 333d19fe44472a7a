package credstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mednet-labs/studyguard"
)

func seedMemory() *Memory {
	store := NewMemory()
	store.PutOrg(studyguard.OrgRecord{ID: "org-1", IsActive: true, Status: studyguard.OrgApproved})
	store.PutUser(studyguard.UserRecord{
		ID:         "user-1",
		Identifier: "alice@example.com",
		Role:       studyguard.RoleResearcher,
		OrgID:      "org-1",
		IsActive:   true,
	})
	return store
}

func record(id string) studyguard.RefreshTokenRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return studyguard.RefreshTokenRecord{
		TokenID:   id,
		TokenHash: "hash-" + id,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestMemoryLookups(t *testing.T) {
	store := seedMemory()
	ctx := context.Background()

	if _, err := store.GetUserByID(ctx, "user-1"); err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if _, err := store.GetUserByIdentifier(ctx, "alice@example.com"); err != nil {
		t.Fatalf("get by identifier: %v", err)
	}
	if _, err := store.GetOrgByID(ctx, "org-1"); err != nil {
		t.Fatalf("get org: %v", err)
	}

	if _, err := store.GetUserByID(ctx, "ghost"); !errors.Is(err, studyguard.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.GetUserByIdentifier(ctx, "ghost@example.com"); !errors.Is(err, studyguard.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.GetOrgByID(ctx, "ghost"); !errors.Is(err, studyguard.ErrOrgNotFound) {
		t.Fatalf("expected ErrOrgNotFound, got %v", err)
	}
}

func TestMemoryCompareAndSwap(t *testing.T) {
	store := seedMemory()
	ctx := context.Background()

	first := record("t1")
	// Unconditional write.
	if err := store.SaveRefreshTokens(ctx, "user-1", nil, []studyguard.RefreshTokenRecord{first}); err != nil {
		t.Fatalf("unconditional save: %v", err)
	}

	// Conditional write with the right expectation.
	second := record("t2")
	expected := []studyguard.RefreshTokenRecord{first}
	if err := store.SaveRefreshTokens(ctx, "user-1", expected, []studyguard.RefreshTokenRecord{first, second}); err != nil {
		t.Fatalf("matching cas: %v", err)
	}

	// The expectation is now stale.
	err := store.SaveRefreshTokens(ctx, "user-1", expected, []studyguard.RefreshTokenRecord{})
	if !errors.Is(err, studyguard.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	user, err := store.GetUserByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(user.RefreshTokens) != 2 {
		t.Fatalf("stale write must not apply, got %d records", len(user.RefreshTokens))
	}
}

func TestMemoryEmptyExpectation(t *testing.T) {
	store := seedMemory()
	ctx := context.Background()

	// A non-nil empty expectation means "no sessions yet" and must
	// match a user who has none.
	if err := store.SaveRefreshTokens(ctx, "user-1", []studyguard.RefreshTokenRecord{}, []studyguard.RefreshTokenRecord{record("t1")}); err != nil {
		t.Fatalf("empty expectation against empty list: %v", err)
	}

	err := store.SaveRefreshTokens(ctx, "user-1", []studyguard.RefreshTokenRecord{}, nil)
	if !errors.Is(err, studyguard.ErrConcurrentModification) {
		t.Fatalf("empty expectation against one record: expected conflict, got %v", err)
	}
}

func TestMemorySaveUnknownUser(t *testing.T) {
	store := seedMemory()
	err := store.SaveRefreshTokens(context.Background(), "ghost", nil, nil)
	if !errors.Is(err, studyguard.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryCloneIsolation(t *testing.T) {
	store := seedMemory()
	ctx := context.Background()

	if err := store.SaveRefreshTokens(ctx, "user-1", nil, []studyguard.RefreshTokenRecord{record("t1")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, err := store.GetUserByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	user.RefreshTokens[0].TokenHash = "mutated"

	again, err := store.GetUserByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("refetch user: %v", err)
	}
	if again.RefreshTokens[0].TokenHash == "mutated" {
		t.Fatal("callers must not be able to mutate stored records")
	}
}
