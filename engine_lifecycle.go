package studyguard

import (
	"context"
	"errors"
	"time"

	"github.com/mednet-labs/studyguard/token"
)

// saveAttempts bounds the refetch-and-retry loop for issuance and
// single revocation. Rotation never retries: a lost compare-and-swap
// there means the token was already consumed.
const saveAttempts = 3

// SignAccess encodes {subject, role, org} into a signed access token.
// Stateless; no side effects.
func (e *Engine) SignAccess(user UserRecord) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}
	return e.tokens.CreateAccess(user.ID, string(user.Role), user.OrgID)
}

// IssueRefresh mints a refresh token for a new device session: a fresh
// random tokenId, a signed token, and a stored one-way hash of the
// signed value. Expired records are pruned from the list before the
// append so the session list cannot grow without bound. The raw signed
// token is returned to the caller and never stored.
func (e *Engine) IssueRefresh(ctx context.Context, user UserRecord) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}

	current := user.RefreshTokens
	for attempt := 0; attempt < saveAttempts; attempt++ {
		tokenID := token.NewTokenID()
		signed, expires, err := e.tokens.CreateRefresh(user.ID, tokenID, string(user.Role), user.OrgID)
		if err != nil {
			return "", err
		}

		now := time.Now()
		next := pruneExpired(current, now)
		next = append(next, RefreshTokenRecord{
			TokenID:   tokenID,
			TokenHash: token.Hash(signed),
			CreatedAt: now,
			ExpiresAt: expires,
		})

		err = e.store.SaveRefreshTokens(ctx, user.ID, current, next)
		if err == nil {
			e.metricInc(MetricRefreshIssued)
			e.emitAudit(ctx, auditEventRefreshIssued, true, user.ID, user.OrgID, tokenID, nil, nil)
			return signed, nil
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return "", err
		}

		fresh, fetchErr := e.store.GetUserByID(ctx, user.ID)
		if fetchErr != nil {
			return "", fetchErr
		}
		current = fresh.RefreshTokens
	}

	return "", ErrConcurrentModification
}

// Rotate verifies a raw refresh token and replaces its record with a
// new one in a single compare-and-swap update, so two concurrent
// rotations of the same token cannot both succeed. The old token is
// dead on return; the caller keeps the returned pair.
//
// A structurally valid token whose record is gone is the reuse signal:
// it fails with [ErrTokenReused] and is flagged to the audit sink. A
// lost race surfaces as [ErrInvalidToken] and is not retried; the
// client must re-authenticate.
func (e *Engine) Rotate(ctx context.Context, rawRefreshToken string) (TokenPair, error) {
	if e == nil || e.store == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(rawRefreshToken)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, "", "", "", ErrInvalidToken, func() map[string]string {
			return map[string]string{"reason": "verification_failed"}
		})
		return TokenPair{}, ErrInvalidToken
	}

	user, err := e.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateInvalid, false, claims.Subject, claims.Org, claims.ID, ErrInvalidToken, func() map[string]string {
				return map[string]string{"reason": "user_gone"}
			})
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, user.ID, user.OrgID, claims.ID, ErrInvalidToken, func() map[string]string {
			return map[string]string{"reason": "account_inactive"}
		})
		return TokenPair{}, ErrInvalidToken
	}

	now := time.Now()
	idx := findRecord(user.RefreshTokens, claims.ID)
	if idx < 0 {
		// Signature and expiry checked out but the record is gone:
		// either already rotated or revoked. Treat as reuse.
		e.metricInc(MetricRotateReuseDetected)
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateReuse, false, user.ID, user.OrgID, claims.ID, ErrTokenReused, nil)
		return TokenPair{}, ErrTokenReused
	}

	record := user.RefreshTokens[idx]
	if now.After(record.ExpiresAt) {
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, user.ID, user.OrgID, claims.ID, ErrInvalidToken, func() map[string]string {
			return map[string]string{"reason": "record_expired"}
		})
		return TokenPair{}, ErrInvalidToken
	}
	if record.TokenHash != token.Hash(rawRefreshToken) {
		// A second line of defense: only reachable with a forged token
		// carrying a stolen signature but the wrong raw value.
		e.metricInc(MetricRotateFailure)
		e.emitAudit(ctx, auditEventRotateInvalid, false, user.ID, user.OrgID, claims.ID, ErrInvalidToken, func() map[string]string {
			return map[string]string{"reason": "hash_mismatch"}
		})
		return TokenPair{}, ErrInvalidToken
	}

	newTokenID := token.NewTokenID()
	signed, expires, err := e.tokens.CreateRefresh(user.ID, newTokenID, string(user.Role), user.OrgID)
	if err != nil {
		return TokenPair{}, err
	}

	// Delete-old plus append-new in one logical update.
	next := make([]RefreshTokenRecord, 0, len(user.RefreshTokens))
	for i, rec := range user.RefreshTokens {
		if i == idx || now.After(rec.ExpiresAt) {
			continue
		}
		next = append(next, rec)
	}
	next = append(next, RefreshTokenRecord{
		TokenID:   newTokenID,
		TokenHash: token.Hash(signed),
		CreatedAt: now,
		ExpiresAt: expires,
	})

	if err := e.store.SaveRefreshTokens(ctx, user.ID, user.RefreshTokens, next); err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			e.metricInc(MetricRotateConflict)
			e.metricInc(MetricRotateFailure)
			e.emitAudit(ctx, auditEventRotateConflict, false, user.ID, user.OrgID, claims.ID, ErrConcurrentModification, nil)
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}

	access, err := e.SignAccess(user)
	if err != nil {
		return TokenPair{}, err
	}

	e.metricInc(MetricRotateSuccess)
	e.emitAudit(ctx, auditEventRotate, true, user.ID, user.OrgID, newTokenID, nil, nil)
	return TokenPair{AccessToken: access, RefreshToken: signed}, nil
}

// RevokeOne removes a single refresh session (logout from one device).
// Revoking an absent tokenID is not an error.
func (e *Engine) RevokeOne(ctx context.Context, user UserRecord, tokenID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	current := user.RefreshTokens
	for attempt := 0; attempt < saveAttempts; attempt++ {
		idx := findRecord(current, tokenID)
		if idx < 0 {
			return nil
		}

		next := make([]RefreshTokenRecord, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)

		err := e.store.SaveRefreshTokens(ctx, user.ID, current, next)
		if err == nil {
			e.metricInc(MetricRevoke)
			e.emitAudit(ctx, auditEventRevoke, true, user.ID, user.OrgID, tokenID, nil, nil)
			return nil
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return err
		}

		fresh, fetchErr := e.store.GetUserByID(ctx, user.ID)
		if fetchErr != nil {
			return fetchErr
		}
		current = fresh.RefreshTokens
	}

	return ErrConcurrentModification
}

// RevokeAll clears every refresh session for the user, used on password
// change, deactivation, or account compromise. Last-writer-wins.
func (e *Engine) RevokeAll(ctx context.Context, user UserRecord) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.SaveRefreshTokens(ctx, user.ID, nil, []RefreshTokenRecord{}); err != nil {
		return err
	}
	e.metricInc(MetricRevokeAll)
	e.emitAudit(ctx, auditEventRevokeAll, true, user.ID, user.OrgID, "", nil, nil)
	return nil
}

func findRecord(records []RefreshTokenRecord, tokenID string) int {
	for i, rec := range records {
		if rec.TokenID == tokenID {
			return i
		}
	}
	return -1
}

func pruneExpired(records []RefreshTokenRecord, now time.Time) []RefreshTokenRecord {
	pruned := make([]RefreshTokenRecord, 0, len(records))
	for _, rec := range records {
		if now.After(rec.ExpiresAt) {
			continue
		}
		pruned = append(pruned, rec)
	}
	return pruned
}
