package submission

import (
	"regexp"
	"sort"
	"strings"
)

// Detector tags the identifier pattern that matched a value.
type Detector string

const (
	// EmailPattern matches email addresses.
	EmailPattern Detector = "email"
	// PhonePattern matches 3-3-4 grouped phone numbers.
	PhonePattern Detector = "phone"
	// NumericIDPattern matches generic multi-group numeric identifiers.
	NumericIDPattern Detector = "numeric-id"
	// SsnLikePattern matches dashed 3-2-4 digit national identifiers.
	SsnLikePattern Detector = "ssn-like"
)

// Strictness tunes the generic numeric-identifier detector. The pattern
// is deliberately broad and will flag some legitimate grouped clinical
// measurements; loosening it trades recall for precision.
type Strictness int

const (
	// StrictnessStrict flags any value with two or more separated digit
	// groups totalling at least six digits. The default.
	StrictnessStrict Strictness = iota
	// StrictnessRelaxed requires three or more groups totalling at
	// least nine digits before flagging.
	StrictnessRelaxed
)

// keyDenylist rejects a field by its label alone: a key containing any
// of these substrings signals PII intent regardless of the value.
var keyDenylist = []string{"name", "email", "phone", "address"}

var (
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe   = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ssnLikeRe = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// Digit groups separated by dashes or spaces; group-count and
	// total-digit thresholds are applied per strictness.
	numericGroupsRe = regexp.MustCompile(`\b\d{2,}(?:[-\s]\d{2,})+\b`)
)

type patternCheck struct {
	detector Detector
	match    func(value string, strictness Strictness) bool
}

// patternChecks is the fixed, ordered detector set: first match wins.
var patternChecks = []patternCheck{
	{EmailPattern, func(v string, _ Strictness) bool { return emailRe.MatchString(v) }},
	{PhonePattern, func(v string, _ Strictness) bool { return phoneRe.MatchString(v) }},
	{NumericIDPattern, matchNumericID},
	{SsnLikePattern, func(v string, _ Strictness) bool { return ssnLikeRe.MatchString(v) }},
}

func matchNumericID(value string, strictness Strictness) bool {
	minGroups, minDigits := 2, 6
	if strictness == StrictnessRelaxed {
		minGroups, minDigits = 3, 9
	}

	for _, candidate := range numericGroupsRe.FindAllString(value, -1) {
		groups := strings.FieldsFunc(candidate, func(r rune) bool {
			return r == '-' || r == ' ' || r == '\t'
		})
		digits := 0
		for _, g := range groups {
			digits += len(g)
		}
		if len(groups) >= minGroups && digits >= minDigits {
			return true
		}
	}
	return false
}

// CheckNoIdentifiers rejects answers that look like they carry
// personally identifying information, using the default strictness.
func CheckNoIdentifiers(answers AnswerSet) error {
	return CheckNoIdentifiersStrictness(answers, StrictnessStrict)
}

// CheckNoIdentifiersStrictness inspects every scalar leaf of every
// field. Two independent guards apply, either sufficient to reject:
// the key denylist (case-insensitive substring on the field label) and
// the ordered pattern detectors (numeric values exempt). The rejected
// value is never echoed back.
func CheckNoIdentifiersStrictness(answers AnswerSet, strictness Strictness) error {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := checkField(key, answers[key], strictness); err != nil {
			return err
		}
	}
	return nil
}

func checkField(key string, value any, strictness Strictness) error {
	if denied, term := deniedKey(key); denied {
		return reject(key, ErrDisallowedField, "key contains "+term)
	}
	return checkLeaf(key, value, strictness)
}

func checkLeaf(field string, value any, strictness Strictness) error {
	switch v := value.(type) {
	case string:
		return checkString(field, v, strictness)
	case []string:
		for _, elem := range v {
			if err := checkString(field, elem, strictness); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, elem := range v {
			if err := checkLeaf(field, elem, strictness); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := checkField(key, v[key], strictness); err != nil {
				return err
			}
		}
		return nil
	default:
		// Numeric, boolean, and nil leaves are exempt from the pattern
		// guard: a bare number carries no grouping to match on.
		return nil
	}
}

func checkString(field, value string, strictness Strictness) error {
	for _, check := range patternChecks {
		if check.match(value, strictness) {
			return reject(field, ErrPotentialIdentifier, "matched "+string(check.detector)+" pattern")
		}
	}
	return nil
}

func deniedKey(key string) (bool, string) {
	lowered := strings.ToLower(key)
	for _, term := range keyDenylist {
		if strings.Contains(lowered, term) {
			return true, term
		}
	}
	return false, ""
}
