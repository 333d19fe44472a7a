package studyguard

import (
	"errors"

	internalaudit "github.com/mednet-labs/studyguard/internal/audit"
	internalmetrics "github.com/mednet-labs/studyguard/internal/metrics"
	"github.com/mednet-labs/studyguard/password"
	"github.com/mednet-labs/studyguard/token"
)

// Builder assembles an [Engine]. Construction is allocation-only; no
// I/O happens before the first Engine method call.
type Builder struct {
	config    Config
	store     Store
	auditSink AuditSink
	built     bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the credential store adapter. Required.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the audit sink and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("credential store is required")
	}

	tokenCfg, err := b.config.tokenManagerConfig()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewManager(tokenCfg)
	if err != nil {
		return nil, err
	}

	passwordHash, err := password.NewArgon2(b.config.passwordConfig())
	if err != nil {
		return nil, err
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return &Engine{
		config:       b.config,
		store:        b.store,
		tokens:       tokens,
		passwordHash: passwordHash,
		audit:        dispatcher,
		metrics:      internalmetrics.New(internalmetrics.Config{Enabled: b.config.Metrics.Enabled}),
	}, nil
}
