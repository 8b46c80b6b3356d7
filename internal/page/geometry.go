// internal/page/geometry.go
package page

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	baseFontSize = 16.0
	// Average glyph advance as a fraction of the font size; good enough for
	// "does this element occupy space" decisions.
	glyphWidthRatio = 0.6
)

// Rect is an element's border-box rectangle in CSS pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// BoundingBox resolves the rendered box for n. Detached and cross-boundary
// nodes yield ErrStyleUnavailable; elements removed from rendering (their own
// or an ancestor's display:none) yield a zero rect, not an error.
//
// Sizing is intentionally coarse: explicit width/height inline declarations
// win, otherwise form controls get their user-agent intrinsic sizes and text
// carriers are measured from their text content.
func (d *Document) BoundingBox(n *html.Node) (Rect, error) {
	if n == nil || n.Type != html.ElementNode {
		return Rect{}, ErrStyleUnavailable
	}
	if !d.Attached(n) || crossBoundary(n) {
		return Rect{}, ErrStyleUnavailable
	}
	if !d.renderedWithAncestors(n) {
		return Rect{}, nil
	}

	decl := parseInlineStyle(attrValue(n, "style"))
	w, hasW := parsePixels(decl["width"])
	h, hasH := parsePixels(decl["height"])
	iw, ih := intrinsicSize(n)
	if !hasW {
		w = iw
	}
	if !hasH {
		h = ih
	}
	return Rect{Width: w, Height: h}, nil
}

// renderedWithAncestors checks display:none on the node and every ancestor; a
// child of a display:none subtree generates no box no matter its own styles.
func (d *Document) renderedWithAncestors(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		st, err := d.ComputedStyle(cur)
		if err != nil {
			return false
		}
		if st.Display == "none" {
			return false
		}
	}
	return true
}

// intrinsicSize returns the user-agent default dimensions for an element.
func intrinsicSize(n *html.Node) (w, h float64) {
	switch n.Data {
	case "input":
		switch strings.ToLower(attrValue(n, "type")) {
		case "hidden":
			return 0, 0
		case "checkbox", "radio":
			return 13, 13
		default:
			return 170, 22
		}
	case "select":
		return 170, 22
	case "textarea":
		return 170, 60
	case "iframe", "object", "embed", "video", "audio":
		return 300, 150
	case "button", "summary", "option":
		tw, _ := measureText(n)
		return tw + 12, 22
	}
	// Everything else is sized by its text content.
	tw, th := measureText(n)
	return tw, th
}

// measureText estimates the rendered extent of the node's text content.
func measureText(n *html.Node) (w, h float64) {
	var length int
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			length += len(strings.TrimSpace(c.Data))
		}
		return true
	})
	if length == 0 {
		return 0, 0
	}
	return float64(length) * baseFontSize * glyphWidthRatio, baseFontSize
}

func parsePixels(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
