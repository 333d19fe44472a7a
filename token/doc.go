// Package token signs and verifies the platform's paired JWT credential
// types: short-lived access tokens and rotating refresh tokens.
//
// The two classes are signed with distinct keys so that a single leaked
// key never compromises both; [NewManager] rejects configurations where
// the keys coincide. Payloads are a stable contract: access tokens
// carry {subject, role, org}, refresh tokens carry {subject, tokenId,
// role, org}. Changing their shape breaks already-issued tokens across
// versions.
package token
