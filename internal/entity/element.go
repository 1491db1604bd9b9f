package entity

// ElementType is the provenance class assigned to a clickable element.
// Classification is ordered most-specific to most-general: a command button
// beats a hyperlink beats an onclick handler beats a pointer cursor.
type ElementType string

const (
	// ElementTypeNone marks an element excluded from interaction.
	ElementTypeNone ElementType = ""
	// ElementTypeButton is a command button (<button> or input button).
	ElementTypeButton ElementType = "button"
	// ElementTypeLink is a hyperlink with an href.
	ElementTypeLink ElementType = "link"
	// ElementTypeOnclick carries a non-null click-handler attribute.
	ElementTypeOnclick ElementType = "onclick"
	// ElementTypePointer has computed cursor style "pointer".
	ElementTypePointer ElementType = "pointer"
)

// String returns the string representation of the ElementType.
func (t ElementType) String() string {
	if t == ElementTypeNone {
		return "none"
	}
	return string(t)
}

// IsValid returns true if this is a known clickable type.
func (t ElementType) IsValid() bool {
	switch t {
	case ElementTypeButton, ElementTypeLink, ElementTypeOnclick, ElementTypePointer:
		return true
	default:
		return false
	}
}

// Rect is an element's bounding box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClickableElement is one interaction candidate discovered on a page.
// The selector is structural and valid only against the DOM snapshot it was
// built from; it is not stable across navigation or reflow.
type ClickableElement struct {
	Selector string      `json:"selector"`
	Type     ElementType `json:"type"`
	Rect     Rect        `json:"rect"`
	Text     string      `json:"text"`
}
