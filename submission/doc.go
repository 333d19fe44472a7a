// Package submission validates candidate answer sets before they are
// handed to persistence.
//
// Two independent gates protect a submission: [CheckSchemaConformance]
// enforces that every answer matches its form item's type and bounds,
// and [CheckNoIdentifiers] blocks personally identifying information
// from entering free-text research answers. Both must pass; their order
// does not affect the outcome. The identifier guard is a deliberate
// heuristic that prefers false positives over leaked identifiers.
package submission
