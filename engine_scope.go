package studyguard

import (
	"context"
	"errors"

	"github.com/mednet-labs/studyguard/scope"
)

// Authenticate verifies an access token and resolves it to a
// [Principal]. Beyond signature and expiry, the referenced user must
// still exist and be active. Non-superadmin principals additionally
// pass the organization gate: their org must exist, be active, and be
// approved. An organization dropping out of the approved state
// invalidates all of its users' sessions server-side without touching
// any issued token, a kill switch layered above raw token validity.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricAuthFailure)
		return nil, ErrUnauthorized
	}

	role, err := scope.ParseRole(claims.Role)
	if err != nil {
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthenticateFailed, false, claims.Subject, claims.Org, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{"reason": "unknown_role"}
		})
		return nil, ErrUnauthorized
	}

	user, err := e.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricAuthFailure)
			e.emitAudit(ctx, auditEventAuthenticateFailed, false, claims.Subject, claims.Org, "", ErrUnauthorized, func() map[string]string {
				return map[string]string{"reason": "user_gone"}
			})
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthenticateFailed, false, user.ID, user.OrgID, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{"reason": "account_inactive"}
		})
		return nil, ErrUnauthorized
	}

	if role != RoleSuperadmin {
		if err := e.checkOrgGate(ctx, claims.Subject, claims.Org); err != nil {
			return nil, err
		}
	}

	e.metricInc(MetricAuthSuccess)
	return &Principal{SubjectID: claims.Subject, Role: role, OrgID: claims.Org}, nil
}

func (e *Engine) checkOrgGate(ctx context.Context, userID, orgID string) error {
	deny := func(reason string) error {
		e.metricInc(MetricAuthFailure)
		e.metricInc(MetricOrgGateDenied)
		e.emitAudit(ctx, auditEventOrgGateDenied, false, userID, orgID, "", ErrForbidden, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return ErrForbidden
	}

	if orgID == "" {
		return deny("no_organization")
	}

	org, err := e.store.GetOrgByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, ErrOrgNotFound) {
			return deny("org_gone")
		}
		return err
	}
	if !org.IsActive {
		return deny("org_inactive")
	}
	if org.Status != OrgApproved {
		return deny("org_not_approved")
	}
	return nil
}

// ScopeQuery intersects the caller's base filter with the visibility
// restriction implied by the principal's role. The result is advisory:
// the persistence layer translates it into its own query language.
func (e *Engine) ScopeQuery(principal *Principal, base scope.Filter) (scope.Filter, error) {
	if principal == nil {
		return scope.Filter{}, ErrUnauthorized
	}
	return scope.Narrow(*principal, base)
}

// EnsureOrgAccess guards direct-object access where a query filter is
// impractical: a no-op when resourceOrgID is absent or the principal
// operates platform-wide, a Forbidden failure on any tenant mismatch.
func (e *Engine) EnsureOrgAccess(ctx context.Context, principal *Principal, resourceOrgID string) error {
	if principal == nil {
		return ErrUnauthorized
	}
	if resourceOrgID == "" {
		return nil
	}
	if principal.Role == RoleAdmin || principal.Role == RoleSuperadmin {
		return nil
	}
	if principal.OrgID != resourceOrgID {
		e.metricInc(MetricScopeDenied)
		e.emitAudit(ctx, auditEventScopeDenied, false, principal.SubjectID, principal.OrgID, "", ErrForbidden, func() map[string]string {
			return map[string]string{"resource_org": resourceOrgID}
		})
		return ErrForbidden
	}
	return nil
}

// RequireRole fails with Unauthorized when there is no principal and
// Forbidden when the principal's role is outside the allowed set.
func (e *Engine) RequireRole(ctx context.Context, principal *Principal, allowed ...Role) error {
	if principal == nil {
		return ErrUnauthorized
	}
	if !principal.Role.In(allowed...) {
		e.metricInc(MetricScopeDenied)
		e.emitAudit(ctx, auditEventScopeDenied, false, principal.SubjectID, principal.OrgID, "", ErrForbidden, func() map[string]string {
			return map[string]string{"role": string(principal.Role)}
		})
		return ErrForbidden
	}
	return nil
}
