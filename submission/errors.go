package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField rejects an answer whose linkId is not in the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidSelection rejects a value outside an item's option list.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrOutOfRange rejects a scale value outside the item's bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnsupportedFieldType rejects an item type validation cannot handle.
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	// ErrDisallowedField rejects a field whose key signals PII intent.
	ErrDisallowedField = errors.New("disallowed field")
	// ErrPotentialIdentifier rejects a value matching an identifier pattern.
	ErrPotentialIdentifier = errors.New("potential identifier")
)

// ValidationError reports a rejected submission with enough detail for
// a client to correct its input: the offending field key and the reason.
// It never carries the value that triggered an identifier match.
type ValidationError struct {
	// Field is the answer key (linkId) that failed.
	Field string
	// Kind is one of the sentinel errors above.
	Kind error
	// Detail optionally names offending entries or the matched detector.
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("field %q: %v (%s)", e.Field, e.Kind, e.Detail)
	}
	return fmt.Sprintf("field %q: %v", e.Field, e.Kind)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func reject(field string, kind error, detail string) error {
	return &ValidationError{Field: field, Kind: kind, Detail: detail}
}
