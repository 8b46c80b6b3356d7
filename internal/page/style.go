// internal/page/style.go
package page

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ErrStyleUnavailable is returned for nodes whose style cannot be resolved:
// detached nodes and nodes behind a cross-document boundary (iframe content).
// Callers are expected to treat such nodes as not rendered.
var ErrStyleUnavailable = errors.New("page: computed style unavailable")

// Style is the computed-style slice the focus engine consumes. Display and
// Visibility carry their CSS keyword values; Opacity is resolved to a number.
type Style struct {
	Display    string
	Visibility string
	Opacity    float64
}

// Rendered reports whether the element generates a visible box of its own.
func (s Style) Rendered() bool {
	return s.Display != "none" && s.Visibility != "hidden" && s.Visibility != "collapse"
}

// ComputedStyle resolves the style for n. Resolution is a deliberately small
// cascade: inline declarations win over per-tag defaults, and visibility
// inherits from the nearest ancestor that declares it. Display and opacity do
// not inherit.
func (d *Document) ComputedStyle(n *html.Node) (Style, error) {
	if n == nil || n.Type != html.ElementNode {
		return Style{}, ErrStyleUnavailable
	}
	if !d.Attached(n) || crossBoundary(n) {
		return Style{}, ErrStyleUnavailable
	}

	decl := parseInlineStyle(attrValue(n, "style"))

	st := Style{
		Display:    defaultDisplay(n),
		Visibility: inheritedVisibility(n),
		Opacity:    1.0,
	}
	if v, ok := decl["display"]; ok {
		st.Display = v
	}
	// The HTML hidden attribute maps to display:none in every UA sheet.
	if HasAttr(n, "hidden") {
		st.Display = "none"
	}
	if v, ok := decl["visibility"]; ok {
		st.Visibility = v
	}
	if v, ok := decl["opacity"]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			st.Opacity = f
		}
	}
	return st, nil
}

// crossBoundary reports whether n lives inside an iframe's content subtree.
// Style and geometry queries across that boundary are denied, standing in for
// the cross-origin SecurityError a real host throws.
func crossBoundary(n *html.Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.Data == "iframe" {
			return true
		}
	}
	return false
}

// inheritedVisibility resolves the nearest declared visibility above n,
// defaulting to visible.
func inheritedVisibility(n *html.Node) string {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if v, ok := parseInlineStyle(attrValue(cur, "style"))["visibility"]; ok {
			return v
		}
	}
	return "visible"
}

// parseInlineStyle splits a style attribute into property/value pairs.
// Malformed fragments are skipped rather than reported.
func parseInlineStyle(styleAttr string) map[string]string {
	if styleAttr == "" {
		return nil
	}
	decls := make(map[string]string)
	for _, part := range strings.Split(styleAttr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		// !important carries no weight in a single-origin cascade; strip it.
		val = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(val), "!important"))
		if prop != "" && val != "" {
			decls[prop] = val
		}
	}
	return decls
}

// defaultDisplay mirrors the user-agent defaults for the tags the engine
// meets in practice.
func defaultDisplay(n *html.Node) string {
	switch n.Data {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "form", "header", "footer", "section", "article",
		"nav", "main", "details", "summary", "dialog", "fieldset":
		return "block"
	case "input", "button", "textarea", "select", "img", "iframe", "object",
		"embed", "video", "audio":
		return "inline-block"
	case "template", "script", "style", "head", "meta", "link", "title":
		return "none"
	default:
		return "inline"
	}
}
