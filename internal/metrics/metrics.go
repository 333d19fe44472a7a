// Package metrics holds the engine's in-process counters: fixed-size
// atomic slots, no labels, safe on every hot path.
package metrics

import "sync/atomic"

// MetricID indexes one counter slot.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricAuthSuccess
	MetricAuthFailure
	MetricOrgGateDenied
	MetricRefreshIssued
	MetricRotateSuccess
	MetricRotateFailure
	MetricRotateReuseDetected
	MetricRotateConflict
	MetricRevoke
	MetricRevokeAll
	MetricScopeDenied
	MetricSubmissionRejected
	MetricIdentifierBlocked

	MetricIDCount
)

// Def pairs a MetricID with its exposition name and help text.
type Def struct {
	ID   MetricID
	Name string
	Help string
}

// Defs is the stable exposition order for exporters.
var Defs = []Def{
	{MetricLoginSuccess, "studyguard_login_success_total", "Successful password logins."},
	{MetricLoginFailure, "studyguard_login_failure_total", "Rejected password logins."},
	{MetricAuthSuccess, "studyguard_auth_success_total", "Successful access-token authentications."},
	{MetricAuthFailure, "studyguard_auth_failure_total", "Rejected access-token authentications."},
	{MetricOrgGateDenied, "studyguard_org_gate_denied_total", "Principals blocked by the organization gate."},
	{MetricRefreshIssued, "studyguard_refresh_issued_total", "Refresh tokens issued."},
	{MetricRotateSuccess, "studyguard_rotate_success_total", "Successful refresh rotations."},
	{MetricRotateFailure, "studyguard_rotate_failure_total", "Rejected refresh rotations."},
	{MetricRotateReuseDetected, "studyguard_rotate_reuse_detected_total", "Stale refresh tokens presented after rotation."},
	{MetricRotateConflict, "studyguard_rotate_conflict_total", "Rotations lost to a concurrent writer."},
	{MetricRevoke, "studyguard_revoke_total", "Single-session revocations."},
	{MetricRevokeAll, "studyguard_revoke_all_total", "Global refresh revocations."},
	{MetricScopeDenied, "studyguard_scope_denied_total", "Org-access and role-check denials."},
	{MetricSubmissionRejected, "studyguard_submission_rejected_total", "Submissions rejected by schema conformance."},
	{MetricIdentifierBlocked, "studyguard_identifier_blocked_total", "Submissions rejected by the identifier guard."},
}

// Config toggles collection. A disabled Metrics is a no-op.
type Config struct {
	Enabled bool
}

// Metrics is a set of atomic counters.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
