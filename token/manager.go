package token

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the JWT signature algorithm.
type SigningMethod string

const (
	// MethodHS256 signs with HMAC-SHA256 symmetric secrets.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with Ed25519 key pairs.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrSecretsNotSeparate is returned when the access and refresh
	// signing keys are identical. A single leaked key must never
	// compromise both token classes.
	ErrSecretsNotSeparate = errors.New("access and refresh signing keys must differ")
	// ErrTokenInvalid covers any signature, expiry, or claim failure.
	ErrTokenInvalid = errors.New("invalid token")
)

// Config carries both key sets. For HS256 the Access/Refresh keys are
// raw HMAC secrets; for Ed25519 they are private keys (raw seed-size or
// PEM), with verification derived from the private key.
type Config struct {
	SigningMethod SigningMethod
	AccessKey     []byte
	RefreshKey    []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// AccessClaims is the stable access-token payload: subject, role, org.
type AccessClaims struct {
	Role string `json:"role"`
	Org  string `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the stable refresh-token payload: subject, tokenId
// (the registered jti claim), role, org.
type RefreshClaims struct {
	Role string `json:"role"`
	Org  string `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the access/refresh token pair with two
// distinct keys. It is stateless and safe for concurrent use.
type Manager struct {
	config Config

	accessSign    any
	accessVerify  any
	refreshSign   any
	refreshVerify any
}

// NewManager validates the configuration and prepares both key sets.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.AccessKey) == 0 || len(cfg.RefreshKey) == 0 {
		return nil, errors.New("both access and refresh keys are required")
	}
	if string(cfg.AccessKey) == string(cfg.RefreshKey) {
		return nil, ErrSecretsNotSeparate
	}

	m := &Manager{config: cfg}
	switch cfg.SigningMethod {
	case MethodHS256:
		m.accessSign, m.accessVerify = cfg.AccessKey, cfg.AccessKey
		m.refreshSign, m.refreshVerify = cfg.RefreshKey, cfg.RefreshKey
	case MethodEd25519:
		accessPriv, err := parseEdPrivateKey(cfg.AccessKey)
		if err != nil {
			return nil, fmt.Errorf("access key: %w", err)
		}
		refreshPriv, err := parseEdPrivateKey(cfg.RefreshKey)
		if err != nil {
			return nil, fmt.Errorf("refresh key: %w", err)
		}
		m.accessSign = accessPriv
		m.accessVerify = accessPriv.Public()
		m.refreshSign = refreshPriv
		m.refreshVerify = refreshPriv.Public()
	default:
		return nil, errors.New("unsupported signing method")
	}

	return m, nil
}

// NewTokenID generates an opaque unique refresh token identifier.
func NewTokenID() string {
	return uuid.NewString()
}

// Hash is the one-way digest persisted for a signed refresh token.
// The raw signed value is never stored.
func Hash(signed string) string {
	sum := sha256.Sum256([]byte(signed))
	return hex.EncodeToString(sum[:])
}

// CreateAccess signs an access token for the given subject.
func (m *Manager) CreateAccess(subjectID string, role, org string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		Org:  org,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	return jwt.NewWithClaims(m.method(), claims).SignedString(m.accessSign)
}

// CreateRefresh signs a refresh token embedding the given tokenID as jti.
func (m *Manager) CreateRefresh(subjectID, tokenID string, role, org string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.config.RefreshTTL)
	claims := RefreshClaims{
		Role: role,
		Org:  org,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	signed, err := jwt.NewWithClaims(m.method(), claims).SignedString(m.refreshSign)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseAccess verifies an access token's signature and expiry.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.accessVerify); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token's signature and expiry.
func (m *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims, m.refreshVerify); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", ErrTokenInvalid)
	}
	return claims, nil
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims, verifyKey any) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return verifyKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	if len(key) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}
