// internal/page/events.go
package page

import "golang.org/x/net/html"

// Key names follow the DOM KeyboardEvent.key convention.
const (
	KeyTab    = "Tab"
	KeyEscape = "Escape"
	KeyEnter  = "Enter"
)

// KeyboardEvent models a keydown delivered to the document.
type KeyboardEvent struct {
	Key   string
	Shift bool

	prevented bool
}

// PreventDefault marks the event so the host's default action is suppressed.
func (e *KeyboardEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether any listener called PreventDefault.
func (e *KeyboardEvent) DefaultPrevented() bool { return e.prevented }

// PointerEvent models a pointerdown (or mousedown) on a target node.
type PointerEvent struct {
	Target *html.Node

	prevented bool
}

func (e *PointerEvent) PreventDefault()        { e.prevented = true }
func (e *PointerEvent) DefaultPrevented() bool { return e.prevented }

// FocusEvent is delivered after focus has moved to Target. Previous is the
// node that held focus before the move, or nil.
type FocusEvent struct {
	Target        *html.Node
	Previous      *html.Node
	PreventScroll bool
}

// listenerSet is an ordered registry of callbacks with stable removal.
// Dispatch snapshots the registry first so a listener may remove itself (or
// any other listener) mid-dispatch without corrupting the iteration.
type listenerSet[E any] struct {
	nextID    int
	listeners []registeredListener[E]
}

type registeredListener[E any] struct {
	id int
	fn func(E)
}

func (s *listenerSet[E]) add(fn func(E)) func() {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registeredListener[E]{id: id, fn: fn})
	return func() {
		for i := range s.listeners {
			if s.listeners[i].id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *listenerSet[E]) dispatch(ev E) {
	snapshot := make([]registeredListener[E], len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// OnKeyDown registers a keydown listener and returns its removal func.
func (d *Document) OnKeyDown(fn func(*KeyboardEvent)) func() {
	return d.keyListeners.add(fn)
}

// OnPointerDown registers a pointerdown listener and returns its removal func.
func (d *Document) OnPointerDown(fn func(*PointerEvent)) func() {
	return d.pointerListeners.add(fn)
}

// OnFocusIn registers a focus-in listener and returns its removal func.
func (d *Document) OnFocusIn(fn func(*FocusEvent)) func() {
	return d.focusListeners.add(fn)
}

// OnMutation registers a callback invoked after each structural mutation made
// through the Document's helpers.
func (d *Document) OnMutation(fn func()) func() {
	return d.mutationListeners.add(func(struct{}) { fn() })
}

// DispatchKeyDown delivers a keydown synchronously to all listeners and
// reports whether any of them suppressed the default action.
func (d *Document) DispatchKeyDown(ev *KeyboardEvent) bool {
	d.keyListeners.dispatch(ev)
	return ev.DefaultPrevented()
}

// DispatchPointerDown delivers a pointerdown on target. When no listener
// suppresses the default action the host applies it: focus moves to the
// nearest focus candidate at or above the target, mirroring what a browser
// does on mousedown.
func (d *Document) DispatchPointerDown(target *html.Node) bool {
	ev := &PointerEvent{Target: target}
	d.pointerListeners.dispatch(ev)
	if !ev.DefaultPrevented() {
		d.applyPointerFocus(target)
	}
	return ev.DefaultPrevented()
}

// applyPointerFocus walks up from the click target looking for something that
// can hold focus. Plain clicks on inert content drop focus, as in a browser.
func (d *Document) applyPointerFocus(target *html.Node) {
	for cur := target; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if isNativeFocusTarget(cur) {
			d.SetFocus(cur, false)
			return
		}
	}
	d.ClearFocus()
}

// isNativeFocusTarget covers the host's own mousedown-focus behavior; the
// richer focusability policy lives in the engine, not here.
func isNativeFocusTarget(n *html.Node) bool {
	switch n.Data {
	case "input", "select", "textarea", "button":
		return !HasAttr(n, "disabled")
	case "a", "area":
		return HasAttr(n, "href")
	}
	if _, ok := Attr(n, "tabindex"); ok {
		return true
	}
	return false
}
