// internal/focus/classify.go
package focus

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/focuskit/internal/page"
	"golang.org/x/net/html"
)

// IsFocusable reports whether n can receive focus by any means, including
// programmatically. The decision is a pure function of the current tree
// state; results must not be cached across mutations.
//
// A node is focusable when it belongs to the known focusable set (links with
// an href, form controls, iframes, editable regions, anything carrying an
// explicit tabindex) and is not disabled, not aria-hidden, is rendered
// (display and visibility), and occupies a non-zero box. Style or geometry
// lookups that fail are treated as "not focusable", never propagated.
func IsFocusable(src StyleSource, n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if !isFocusCandidate(n) {
		return false
	}
	if isDisabled(n) || isAriaHidden(n) {
		return false
	}
	st, err := src.ComputedStyle(n)
	if err != nil || !st.Rendered() {
		return false
	}
	box, err := src.BoundingBox(n)
	if err != nil || box.Empty() {
		return false
	}
	return true
}

// IsTabbable reports whether n participates in sequential Tab navigation:
// focusable with a non-negative effective tabindex. Negative-tabindex nodes
// stay reachable programmatically but are excluded from Tab cycling.
func IsTabbable(src StyleSource, n *html.Node) bool {
	if !IsFocusable(src, n) {
		return false
	}
	return EffectiveTabIndex(n) >= 0
}

// TabIndex returns the element's explicit tabindex and whether one was
// declared. Unparseable values are treated as undeclared, as the HTML parser
// rules require.
func TabIndex(n *html.Node) (int, bool) {
	raw, ok := page.Attr(n, "tabindex")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// EffectiveTabIndex resolves the tabindex used for ordering: the explicit
// value when declared, otherwise 0 for intrinsically focusable elements.
func EffectiveTabIndex(n *html.Node) int {
	if v, ok := TabIndex(n); ok {
		return v
	}
	return 0
}

// isFocusCandidate covers the tag/role set eligible for focus before any
// state or visibility checks.
func isFocusCandidate(n *html.Node) bool {
	switch n.Data {
	case "a", "area":
		if page.HasAttr(n, "href") {
			return true
		}
	case "input":
		if !strings.EqualFold(attr(n, "type"), "hidden") {
			return true
		}
	case "select", "textarea", "button", "iframe", "object", "embed", "summary":
		return true
	case "audio", "video":
		if page.HasAttr(n, "controls") {
			return true
		}
	}
	if isContentEditable(n) {
		return true
	}
	_, ok := TabIndex(n)
	return ok
}

// isContentEditable treats contenteditable="" the same as "true".
func isContentEditable(n *html.Node) bool {
	raw, ok := page.Attr(n, "contenteditable")
	if !ok {
		return false
	}
	raw = strings.TrimSpace(strings.ToLower(raw))
	return raw == "" || raw == "true"
}

// isDisabled covers both the native disabled attribute and the ARIA variant.
func isDisabled(n *html.Node) bool {
	switch n.Data {
	case "input", "select", "textarea", "button", "fieldset", "option":
		if page.HasAttr(n, "disabled") {
			return true
		}
	}
	return strings.EqualFold(attr(n, "aria-disabled"), "true")
}

func isAriaHidden(n *html.Node) bool {
	return strings.EqualFold(attr(n, "aria-hidden"), "true")
}

func attr(n *html.Node, key string) string {
	v, _ := page.Attr(n, key)
	return v
}
