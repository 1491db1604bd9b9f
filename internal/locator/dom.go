// Package locator enumerates clickable elements from a DOM snapshot and
// builds structural selectors for them.
//
// The page side is a single script that serializes the element tree into a
// flat node list; everything else (clickability classification, selector
// construction, nesting filters) is pure Go over that payload and testable
// without a browser.
package locator

import (
	"context"
	"fmt"

	"github.com/user/consent-crawler/internal/entity"
)

// Node is one element from a DOM snapshot. Parent is the index of the
// parent element in the same snapshot, or -1 for the root.
type Node struct {
	Index   int         `json:"index"`
	Parent  int         `json:"parent"`
	Tag     string      `json:"tag"`
	ID      string      `json:"id"`
	Button  bool        `json:"button"`
	Href    bool        `json:"href"`
	OnClick bool        `json:"onclick"`
	Cursor  string      `json:"cursor"`
	Rect    entity.Rect `json:"rect"`
	Text    string      `json:"text"`
}

// snapshotScript flattens the element tree. Child order is document order,
// so sibling positions recomputed from the parent links match nth-child.
const snapshotScript = `(() => {
	const nodes = [];
	const walk = (el, parent) => {
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		const index = nodes.length;
		nodes.push({
			index: index,
			parent: parent,
			tag: el.tagName,
			id: el.id || "",
			button: el.tagName === "BUTTON" ||
				(el.tagName === "INPUT" && ["button", "submit", "reset"].includes(el.type)),
			href: el.tagName === "A" && el.hasAttribute("href"),
			onclick: el.getAttribute("onclick") !== null,
			cursor: style.cursor,
			rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
			text: (el.innerText || "").trim().slice(0, 200),
		});
		for (const child of el.children) {
			walk(child, index);
		}
	};
	walk(document.documentElement, -1);
	return nodes;
})()`

// Evaluator runs a script in a live page and unmarshals its result.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, out any) error
}

// Snapshot captures the page's element tree as a flat node list. The
// snapshot is a point-in-time view; selectors built from it are only valid
// while the DOM is unchanged.
func Snapshot(ctx context.Context, page Evaluator) ([]Node, error) {
	var nodes []Node
	if err := page.Evaluate(ctx, snapshotScript, &nodes); err != nil {
		return nil, fmt.Errorf("capturing DOM snapshot: %w", err)
	}
	return nodes, nil
}
