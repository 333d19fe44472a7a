package submission

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CheckSchemaConformance validates every answer against its schema item.
// The first violation rejects the whole submission; nothing is partially
// applied. Unknown keys are checked first (in sorted order, so failures
// are deterministic), then items are validated in schema order.
func CheckSchemaConformance(answers AnswerSet, schema Schema) error {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := schema.Item(key); !ok {
			return reject(key, ErrUnknownField, "")
		}
	}

	for _, item := range schema.Items {
		value, ok := answers[item.LinkID]
		if !ok {
			continue
		}
		if err := checkItem(item, value); err != nil {
			return err
		}
	}

	return nil
}

func checkItem(item Item, value any) error {
	switch item.Type {
	case TypeText:
		if _, ok := value.(string); !ok {
			return reject(item.LinkID, ErrInvalidSelection, "expected a string")
		}
		return nil

	case TypeDropdown:
		s, ok := value.(string)
		if !ok {
			return reject(item.LinkID, ErrInvalidSelection, "expected a string")
		}
		if len(item.Options) > 0 && !containsOption(item.Options, s) {
			return reject(item.LinkID, ErrInvalidSelection, "not an offered option")
		}
		return nil

	case TypeCheckboxes:
		selections, ok := stringSlice(value)
		if !ok {
			return reject(item.LinkID, ErrInvalidSelection, "expected a list of strings")
		}
		if len(item.Options) > 0 {
			var offending []string
			for _, s := range selections {
				if !containsOption(item.Options, s) {
					offending = append(offending, s)
				}
			}
			if len(offending) > 0 {
				return reject(item.LinkID, ErrInvalidSelection,
					"not offered options: "+strings.Join(offending, ", "))
			}
		}
		return nil

	case TypeScale:
		n, ok := numericValue(value)
		if !ok {
			return reject(item.LinkID, ErrInvalidSelection, "expected a number")
		}
		if item.Scale != nil && (n < item.Scale.Min || n > item.Scale.Max) {
			return reject(item.LinkID, ErrOutOfRange,
				fmt.Sprintf("allowed range [%g, %g]", item.Scale.Min, item.Scale.Max))
		}
		return nil

	default:
		return reject(item.LinkID, ErrUnsupportedFieldType, string(item.Type))
	}
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// stringSlice accepts both []string and the []any produced by JSON
// decoding, as long as every element is a string.
func stringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
