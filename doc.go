// Package studyguard is the security core of a multi-tenant research
// data platform: credential/session lifecycle with paired access and
// rotating refresh tokens, an authorization-scoping engine that turns a
// role into a data-visibility predicate, and a submission validator
// that enforces form-schema conformance and blocks identifying
// information from free-text answers.
//
// The package is designed for request-parallel server workloads: Engine
// methods are safe to call from multiple goroutines after
// [Builder.Build]. Authentication, scoping, and validation are pure
// compute; the only shared mutable resource is a user's refresh-token
// list, updated through the [Store] adapter's compare-and-swap
// contract so that two concurrent rotations of the same token cannot
// both succeed.
//
// # Architecture boundaries
//
// studyguard is the public surface. HTTP routing, domain-record
// persistence, notification delivery, and rendering are external
// collaborators: route handlers resolve a [Principal] via
// [Engine.Authenticate], ask [Engine.ScopeQuery] for a predicate before
// querying storage, and run [Engine.ValidateSubmission] before writing
// an answer set. The engine never touches persistence except through
// the [Store] interface.
package studyguard
