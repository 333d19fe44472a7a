package studyguard

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/mednet-labs/studyguard/internal/audit"
	internalmetrics "github.com/mednet-labs/studyguard/internal/metrics"
	"github.com/mednet-labs/studyguard/scope"
)

// Role is re-exported from [scope] so callers wiring the engine do not
// need a second import for the role constants.
type Role = scope.Role

const (
	// RoleAdmin manages a single organization.
	RoleAdmin = scope.RoleAdmin
	// RoleResearcher owns the studies they created or are assigned to.
	RoleResearcher = scope.RoleResearcher
	// RoleStaff only sees records they are assigned to.
	RoleStaff = scope.RoleStaff
	// RoleSuperadmin operates platform-wide.
	RoleSuperadmin = scope.RoleSuperadmin
)

// Principal is the identity resolved from a verified access token.
type Principal = scope.Principal

// OrgStatus is the review state of an organization's platform tenancy.
type OrgStatus string

const (
	// OrgPending awaits platform review.
	OrgPending OrgStatus = "pending"
	// OrgApproved may be accessed by its members.
	OrgApproved OrgStatus = "approved"
	// OrgRejected failed platform review.
	OrgRejected OrgStatus = "rejected"
)

// RefreshTokenRecord is one live refresh session on a user record. At
// most one live record exists per TokenID; a user may hold several
// records at once (one per device). A record is dead once rotated,
// revoked, or expired; no transition returns from dead.
type RefreshTokenRecord struct {
	TokenID   string    `json:"token_id"`
	TokenHash string    `json:"token_hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserRecord is the slice of a user the engine reads, plus the
// refresh-token list, which the engine owns exclusively for mutation.
type UserRecord struct {
	ID            string
	Identifier    string
	PasswordHash  string
	Role          Role
	OrgID         string
	IsActive      bool
	RefreshTokens []RefreshTokenRecord
}

// OrgRecord is the slice of an organization the engine reads to gate
// tenant-level access.
type OrgRecord struct {
	ID       string
	IsActive bool
	Status   OrgStatus
}

// Store is the credential store adapter: the engine's only persistence
// boundary. Lookups return [ErrUserNotFound] / [ErrOrgNotFound] when
// the record does not exist.
//
// SaveRefreshTokens is a compare-and-swap update of a user's
// refresh-token list: the write succeeds only if the stored list still
// equals expected, and fails with [ErrConcurrentModification] when a
// racing writer got there first. A nil expected slice bypasses the
// comparison (last-writer-wins), which is sufficient for revocation;
// rotation and issuance always compare.
type Store interface {
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetOrgByID(ctx context.Context, id string) (OrgRecord, error)
	SaveRefreshTokens(ctx context.Context, userID string, expected, next []RefreshTokenRecord) error
}

// TokenPair is an access token and its paired rotating refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful password logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected password logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricAuthSuccess counts successful access-token authentications.
	MetricAuthSuccess = internalmetrics.MetricAuthSuccess
	// MetricAuthFailure counts rejected access-token authentications.
	MetricAuthFailure = internalmetrics.MetricAuthFailure
	// MetricOrgGateDenied counts principals blocked by the org kill switch.
	MetricOrgGateDenied = internalmetrics.MetricOrgGateDenied
	// MetricRefreshIssued counts newly issued refresh tokens.
	MetricRefreshIssued = internalmetrics.MetricRefreshIssued
	// MetricRotateSuccess counts successful refresh rotations.
	MetricRotateSuccess = internalmetrics.MetricRotateSuccess
	// MetricRotateFailure counts rejected refresh rotations.
	MetricRotateFailure = internalmetrics.MetricRotateFailure
	// MetricRotateReuseDetected counts stale tokens presented post-rotation.
	MetricRotateReuseDetected = internalmetrics.MetricRotateReuseDetected
	// MetricRotateConflict counts rotations lost to a racing writer.
	MetricRotateConflict = internalmetrics.MetricRotateConflict
	// MetricRevoke counts single-session revocations.
	MetricRevoke = internalmetrics.MetricRevoke
	// MetricRevokeAll counts global revocations.
	MetricRevokeAll = internalmetrics.MetricRevokeAll
	// MetricScopeDenied counts org-access and role-check denials.
	MetricScopeDenied = internalmetrics.MetricScopeDenied
	// MetricSubmissionRejected counts schema-conformance rejections.
	MetricSubmissionRejected = internalmetrics.MetricSubmissionRejected
	// MetricIdentifierBlocked counts PII-guard rejections.
	MetricIdentifierBlocked = internalmetrics.MetricIdentifierBlocked
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
