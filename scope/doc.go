// Package scope turns an authenticated principal into a data-visibility
// predicate across organizational tenants.
//
// The package is pure composition logic: [Narrow] intersects a caller's
// base [Filter] with the restriction implied by the principal's role, and
// [Filter.Matches] evaluates the resulting predicate against a record
// summary. Translation of a Filter into an actual query is the
// persistence layer's job; nothing here touches storage.
package scope
