package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mednet-labs/studyguard"
	"github.com/mednet-labs/studyguard/credstore"
	"github.com/mednet-labs/studyguard/password"
)

func newGuardedEngine(t *testing.T) (*studyguard.Engine, studyguard.TokenPair) {
	t.Helper()

	cfg := studyguard.DefaultConfig()
	cfg.Token.AccessKey = []byte("test-access-key-0123456789abcdef")
	cfg.Token.RefreshKey = []byte("test-refresh-key-0123456789abcde")
	cfg.Token.AccessTTL = 5 * time.Minute
	cfg.Password = studyguard.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

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
	seedHash, err := hasher.Hash("correct-password-123")
	if err != nil {
		t.Fatalf("argon2 hash: %v", err)
	}

	store := credstore.NewMemory()
	store.PutOrg(studyguard.OrgRecord{ID: "org-1", IsActive: true, Status: studyguard.OrgApproved})
	store.PutUser(studyguard.UserRecord{
		ID:           "user-1",
		Identifier:   "alice@example.com",
		PasswordHash: seedHash,
		Role:         studyguard.RoleStaff,
		OrgID:        "org-1",
		IsActive:     true,
	})

	engine, err := studyguard.New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)

	pair, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	return engine, pair
}

func TestGuardInjectsPrincipal(t *testing.T) {
	engine, pair := newGuardedEngine(t)

	var seen *studyguard.Principal
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil {
		t.Fatal("principal missing from request context")
	}
	if seen.SubjectID != "user-1" || seen.Role != studyguard.RoleStaff {
		t.Fatalf("wrong principal: %+v", seen)
	}
}

func TestGuardRejectsMissingOrBadToken(t *testing.T) {
	engine, _ := newGuardedEngine(t)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	engine, pair := newGuardedEngine(t)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	asStaff := Guard(engine)(RequireRole(engine, studyguard.RoleStaff)(okHandler))
	asAdmin := Guard(engine)(RequireRole(engine, studyguard.RoleAdmin)(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	asStaff.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff route: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	asAdmin.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin route: expected 403, got %d", rec.Code)
	}
}
