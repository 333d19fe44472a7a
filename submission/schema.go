package submission

// ItemType enumerates the supported form item kinds.
type ItemType string

const (
	// TypeText is a free-text answer.
	TypeText ItemType = "text"
	// TypeDropdown is a single selection from a fixed option list.
	TypeDropdown ItemType = "dropdown"
	// TypeCheckboxes is a multi-selection from a fixed option list.
	TypeCheckboxes ItemType = "checkboxes"
	// TypeScale is a numeric answer, optionally bounded.
	TypeScale ItemType = "scale"
)

// ScaleBounds is the inclusive numeric range for a scale item.
type ScaleBounds struct {
	Min float64
	Max float64
}

// Item is a single question in a form schema, keyed by LinkID.
type Item struct {
	LinkID  string
	Type    ItemType
	// Options constrains dropdown and checkbox answers when non-empty.
	Options []string
	// Scale bounds a scale answer when non-nil.
	Scale *ScaleBounds
}

// Schema is an ordered form definition. Item order is the author's
// presentation order; LinkIDs are unique within a schema.
type Schema struct {
	Items []Item
}

// Item returns the schema item with the given linkId, if present.
func (s Schema) Item(linkID string) (Item, bool) {
	for _, item := range s.Items {
		if item.LinkID == linkID {
			return item, true
		}
	}
	return Item{}, false
}

// AnswerSet maps a linkId to a candidate answer value. It is transient:
// validated here, persisted elsewhere.
type AnswerSet map[string]any
