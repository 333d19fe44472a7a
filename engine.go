package studyguard

import (
	"context"
	"errors"

	internalaudit "github.com/mednet-labs/studyguard/internal/audit"
	"github.com/mednet-labs/studyguard/password"
	"github.com/mednet-labs/studyguard/token"
)

// Engine is the security core shared by every protected route: it
// resolves principals, manages the paired access/refresh credential
// lifecycle, scopes data visibility, and validates submissions. Engine
// methods are safe to call from multiple goroutines after
// [Builder.Build].
type Engine struct {
	config       Config
	store        Store
	tokens       *token.Manager
	passwordHash *password.Argon2
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports events dropped by dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.TakeSnapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies an identifier/password pair and, on success, issues a
// fresh access/refresh token pair for the user.
func (e *Engine) Login(ctx context.Context, identifier, passphrase string) (TokenPair, error) {
	if e == nil || e.store == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	user, err := e.store.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailed, false, "", "", "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "unknown_identifier"}
			})
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	ok, err := e.passwordHash.Verify(passphrase, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, user.ID, user.OrgID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return TokenPair{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailed, false, user.ID, user.OrgID, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{"reason": "account_inactive"}
		})
		return TokenPair{}, ErrUnauthorized
	}

	access, err := e.SignAccess(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.IssueRefresh(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, user.ID, user.OrgID, "", nil, nil)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
