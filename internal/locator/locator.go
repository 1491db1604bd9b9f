package locator

import (
	"fmt"
	"strings"

	"github.com/user/consent-crawler/internal/entity"
)

// selectorSeparator joins selector path segments root-to-leaf.
const selectorSeparator = " > "

// Classify assigns a provenance type with an ordered first-match rule, most
// specific first: command button, hyperlink, click-handler attribute,
// pointer cursor. Anything else is excluded.
func Classify(n Node) entity.ElementType {
	switch {
	case n.Button:
		return entity.ElementTypeButton
	case n.Href:
		return entity.ElementTypeLink
	case n.OnClick:
		return entity.ElementTypeOnclick
	case n.Cursor == "pointer":
		return entity.ElementTypePointer
	default:
		return entity.ElementTypeNone
	}
}

// BuildSelector walks from the node toward the root. A unique identifier
// attribute anchors the path and stops the ascent; otherwise each segment is
// the tag name qualified by its 1-based position among sibling elements.
func BuildSelector(nodes []Node, index int) string {
	var segments []string
	for index >= 0 {
		n := nodes[index]
		if n.ID != "" {
			segments = append(segments, "#"+n.ID)
			break
		}
		segments = append(segments, fmt.Sprintf("%s:nth-child(%d)", n.Tag, siblingPosition(nodes, index)))
		index = n.Parent
	}

	// segments were collected leaf-to-root
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, selectorSeparator)
}

// siblingPosition returns the node's 1-based position among its parent's
// child elements. The root element is position 1.
func siblingPosition(nodes []Node, index int) int {
	parent := nodes[index].Parent
	if parent < 0 {
		return 1
	}
	pos := 0
	for _, n := range nodes {
		if n.Parent == parent {
			pos++
			if n.Index == index {
				return pos
			}
		}
	}
	return 1
}

// Locate classifies every node in a snapshot and returns the clickable
// ones, each with its structural selector.
func Locate(nodes []Node) []entity.ClickableElement {
	var elements []entity.ClickableElement
	for _, n := range nodes {
		t := Classify(n)
		if t == entity.ElementTypeNone {
			continue
		}
		elements = append(elements, entity.ClickableElement{
			Selector: BuildSelector(nodes, n.Index),
			Type:     t,
			Rect:     n.Rect,
			Text:     n.Text,
		})
	}
	return elements
}

// LocateOutermost is Locate restricted to elements with no matched clickable
// ancestor, so one logical control is not registered twice.
func LocateOutermost(nodes []Node) []entity.ClickableElement {
	matched := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if Classify(n) != entity.ElementTypeNone {
			matched[n.Index] = true
		}
	}

	var elements []entity.ClickableElement
	for _, n := range nodes {
		if !matched[n.Index] || hasMatchedAncestor(nodes, n.Index, matched) {
			continue
		}
		elements = append(elements, entity.ClickableElement{
			Selector: BuildSelector(nodes, n.Index),
			Type:     Classify(n),
			Rect:     n.Rect,
			Text:     n.Text,
		})
	}
	return elements
}

func hasMatchedAncestor(nodes []Node, index int, matched map[int]bool) bool {
	for p := nodes[index].Parent; p >= 0; p = nodes[p].Parent {
		if matched[p] {
			return true
		}
	}
	return false
}
