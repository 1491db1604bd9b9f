package locator

import (
	"testing"

	"github.com/user/consent-crawler/internal/entity"
)

// pageFixture is a snapshot of a small page:
//
//	HTML > BODY > DIV#root > (BUTTON "One", A[href] "Two", SPAN "plain")
func pageFixture() []Node {
	return []Node{
		{Index: 0, Parent: -1, Tag: "HTML"},
		{Index: 1, Parent: 0, Tag: "BODY"},
		{Index: 2, Parent: 1, Tag: "DIV", ID: "root"},
		{Index: 3, Parent: 2, Tag: "BUTTON", Button: true, Text: "One"},
		{Index: 4, Parent: 2, Tag: "A", Href: true, Text: "Two"},
		{Index: 5, Parent: 2, Tag: "SPAN", Text: "plain"},
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node Node
		want entity.ElementType
	}{
		{"button", Node{Button: true}, entity.ElementTypeButton},
		{"link", Node{Href: true}, entity.ElementTypeLink},
		{"onclick", Node{OnClick: true}, entity.ElementTypeOnclick},
		{"pointer cursor", Node{Cursor: "pointer"}, entity.ElementTypePointer},
		{"plain element", Node{Cursor: "default"}, entity.ElementTypeNone},
		// First-match ordering: a linked button is a button.
		{"button beats link", Node{Button: true, Href: true}, entity.ElementTypeButton},
		{"link beats handler", Node{Href: true, OnClick: true, Cursor: "pointer"}, entity.ElementTypeLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.node); got != tt.want {
				t.Errorf("Classify(%+v) = %v, want %v", tt.node, got, tt.want)
			}
		})
	}
}

func TestBuildSelector(t *testing.T) {
	t.Parallel()

	nodes := pageFixture()

	tests := []struct {
		name  string
		index int
		want  string
	}{
		// Sibling elements resolve to distinct selectors.
		{"first child under anchor", 3, "#root > BUTTON:nth-child(1)"},
		{"second child under anchor", 4, "#root > A:nth-child(2)"},
		{"identified element is its own anchor", 2, "#root"},
		{"no anchor walks to the root", 1, "HTML:nth-child(1) > BODY:nth-child(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildSelector(nodes, tt.index); got != tt.want {
				t.Errorf("BuildSelector(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestBuildSelectorSiblingDivs(t *testing.T) {
	t.Parallel()

	// Same-tag siblings disambiguate by position.
	nodes := []Node{
		{Index: 0, Parent: -1, Tag: "HTML"},
		{Index: 1, Parent: 0, Tag: "BODY"},
		{Index: 2, Parent: 1, Tag: "DIV", ID: "root"},
		{Index: 3, Parent: 2, Tag: "DIV", Cursor: "pointer"},
		{Index: 4, Parent: 2, Tag: "DIV", Cursor: "pointer"},
	}

	if got := BuildSelector(nodes, 3); got != "#root > DIV:nth-child(1)" {
		t.Errorf("first sibling: got %q", got)
	}
	if got := BuildSelector(nodes, 4); got != "#root > DIV:nth-child(2)" {
		t.Errorf("second sibling: got %q", got)
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()

	elements := Locate(pageFixture())
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2: %+v", len(elements), elements)
	}
	if elements[0].Selector != "#root > BUTTON:nth-child(1)" || elements[0].Type != entity.ElementTypeButton {
		t.Errorf("unexpected first element: %+v", elements[0])
	}
	if elements[1].Selector != "#root > A:nth-child(2)" || elements[1].Type != entity.ElementTypeLink {
		t.Errorf("unexpected second element: %+v", elements[1])
	}
}

func TestLocateOutermost(t *testing.T) {
	t.Parallel()

	// A clickable card wrapping its own button: only the card registers.
	nodes := []Node{
		{Index: 0, Parent: -1, Tag: "HTML"},
		{Index: 1, Parent: 0, Tag: "BODY"},
		{Index: 2, Parent: 1, Tag: "DIV", ID: "card", Cursor: "pointer"},
		{Index: 3, Parent: 2, Tag: "BUTTON", Button: true, Text: "Buy"},
		{Index: 4, Parent: 1, Tag: "A", Href: true, Text: "Elsewhere"},
	}

	elements := LocateOutermost(nodes)
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2: %+v", len(elements), elements)
	}
	if elements[0].Selector != "#card" {
		t.Errorf("outer card should register, got %+v", elements[0])
	}
	for _, el := range elements {
		if el.Text == "Buy" {
			t.Errorf("nested button should be absorbed by its clickable ancestor: %+v", el)
		}
	}
}
