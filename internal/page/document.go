// internal/page/document.go
package page

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree together with the pieces of host state the
// focus engine consumes: computed style, geometry, the single active element,
// event listeners, and a one-shot frame scheduler.
//
// A Document is single-threaded by design. All dispatch and scheduling runs
// synchronously on the caller's goroutine; there is no background processing.
type Document struct {
	root   *html.Node
	body   *html.Node
	active *html.Node

	// revision increments on every structural mutation made through the
	// Document's helpers. Derived state (tabbable counts) keys off it.
	revision uint64

	keyListeners      listenerSet[*KeyboardEvent]
	pointerListeners  listenerSet[*PointerEvent]
	focusListeners    listenerSet[*FocusEvent]
	mutationListeners listenerSet[struct{}]

	frameQueue []func()
}

// Load parses an HTML document from r.
func Load(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("page: parsing document: %w", err)
	}
	return &Document{
		root: root,
		body: findElement(root, "body"),
	}, nil
}

// MustLoad is a test convenience; it panics on malformed input.
func MustLoad(src string) *Document {
	doc, err := Load(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return doc
}

// Root returns the document root node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the document body, or nil for a body-less fragment.
func (d *Document) Body() *html.Node { return d.body }

// Revision returns the current mutation revision counter.
func (d *Document) Revision() uint64 { return d.revision }

// ElementByID walks the tree for the first element with the given id.
func (d *Document) ElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attrValue(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// ActiveElement returns the node that currently holds focus, or nil.
func (d *Document) ActiveElement() *html.Node { return d.active }

// SetFocus attempts to move focus to n. It returns false when the node is nil
// or no longer attached to the document; it never panics on bad input. A
// successful move dispatches a focus-in event to all subscribers. Focusing the
// node that already holds focus succeeds without re-dispatching.
func (d *Document) SetFocus(n *html.Node, preventScroll bool) bool {
	if n == nil || !d.Attached(n) {
		return false
	}
	if d.active == n {
		return true
	}
	prev := d.active
	d.active = n
	d.focusListeners.dispatch(&FocusEvent{Target: n, Previous: prev, PreventScroll: preventScroll})
	return true
}

// ClearFocus drops focus entirely (the "focus moved to the body" case).
func (d *Document) ClearFocus() { d.active = nil }

// Attached reports whether n is still connected to the document root.
func (d *Document) Attached(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// Contains reports whether n is container or one of its descendants.
func Contains(container, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == container {
			return true
		}
	}
	return false
}

// -- Mutation helpers --

// AppendChild attaches child under parent and notifies mutation subscribers.
func (d *Document) AppendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.noteMutation()
}

// Remove detaches n from the tree. If the active element was inside the
// removed subtree, focus is dropped without a focus-in dispatch, matching the
// silent blur a browser performs on removal.
func (d *Document) Remove(n *html.Node) {
	if n.Parent == nil {
		return
	}
	if d.active != nil && Contains(n, d.active) {
		d.active = nil
	}
	n.Parent.RemoveChild(n)
	d.noteMutation()
}

// SetAttr sets (or replaces) an attribute on n and notifies subscribers.
func (d *Document) SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			d.noteMutation()
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	d.noteMutation()
}

// RemoveAttr deletes an attribute from n if present.
func (d *Document) RemoveAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.noteMutation()
			return
		}
	}
}

func (d *Document) noteMutation() {
	d.revision++
	d.mutationListeners.dispatch(struct{}{})
}

// -- Tree walking --

// walk visits n and its descendants in document order. The visitor returns
// false to stop the walk.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// WalkElements visits every element beneath (and including) root in document
// order.
func WalkElements(root *html.Node, visit func(*html.Node) bool) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		return visit(n)
	})
}

func findElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
			found = n
			return false
		}
		return true
	})
	return found
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the attribute is present at all, regardless of value.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return true
		}
	}
	return false
}

// Attr returns the attribute value and whether it was present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}
