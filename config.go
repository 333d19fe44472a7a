package studyguard

import (
	"errors"
	"time"

	"github.com/mednet-labs/studyguard/password"
	"github.com/mednet-labs/studyguard/submission"
	"github.com/mednet-labs/studyguard/token"
)

// Config is the engine's full configuration. Populate it once and pass
// it to [Builder.WithConfig]; it is treated as immutable after Build.
type Config struct {
	Token      TokenConfig
	Password   PasswordConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Submission SubmissionConfig
}

// TokenConfig configures the JWT manager. AccessKey and RefreshKey must
// differ: the two token classes are signed with separate secrets so a
// single leaked key cannot mint both.
type TokenConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	AccessKey     []byte
	RefreshKey    []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// PasswordConfig carries the argon2id parameters for login verification.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// SubmissionConfig tunes the identifier guard.
type SubmissionConfig struct {
	Strictness submission.Strictness
}

// DefaultConfig returns the baseline configuration. Callers still need
// to set Token.AccessKey and Token.RefreshKey before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: string(token.MethodHS256),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
			Issuer:        "studyguard",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Submission: SubmissionConfig{
			Strictness: submission.StrictnessStrict,
		},
	}
}

func (c Config) tokenManagerConfig() (token.Config, error) {
	method := token.SigningMethod(c.Token.SigningMethod)
	switch method {
	case token.MethodHS256, token.MethodEd25519:
	case "":
		method = token.MethodHS256
	default:
		return token.Config{}, errors.New("unsupported token signing method")
	}

	return token.Config{
		SigningMethod: method,
		AccessKey:     c.Token.AccessKey,
		RefreshKey:    c.Token.RefreshKey,
		AccessTTL:     c.Token.AccessTTL,
		RefreshTTL:    c.Token.RefreshTTL,
		Issuer:        c.Token.Issuer,
		Leeway:        c.Token.Leeway,
	}, nil
}

func (c Config) passwordConfig() password.Config {
	return password.Config{
		Memory:      c.Password.Memory,
		Time:        c.Password.Time,
		Parallelism: c.Password.Parallelism,
		SaltLength:  c.Password.SaltLength,
		KeyLength:   c.Password.KeyLength,
	}
}
