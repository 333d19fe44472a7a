package studyguard

import (
	"context"
	"time"
)

const (
	auditEventLogin              = "login"
	auditEventLoginFailed        = "login_failed"
	auditEventAuthenticateFailed = "authenticate_failed"
	auditEventOrgGateDenied      = "org_gate_denied"
	auditEventRefreshIssued      = "refresh_issued"
	auditEventRotate             = "refresh_rotated"
	auditEventRotateInvalid      = "refresh_invalid"
	auditEventRotateReuse        = "refresh_reuse_detected"
	auditEventRotateConflict     = "refresh_rotation_conflict"
	auditEventRevoke             = "refresh_revoked"
	auditEventRevokeAll          = "refresh_revoked_all"
	auditEventScopeDenied        = "scope_denied"
	auditEventSubmissionRejected = "submission_rejected"
	auditEventIdentifierBlocked  = "identifier_blocked"
)

// emitAudit builds and dispatches an audit event. Metadata is supplied
// lazily so disabled audit costs no allocations on the hot path.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID, orgID, tokenID string,
	failure error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		OrgID:     orgID,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
