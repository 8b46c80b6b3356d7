// internal/focus/types.go

// Package focus implements focus containment and keyboard navigation over a
// DOM-like host tree: focusability classification, ordered tabbable scanning,
// modal focus trapping, bounded focus history, and directional navigation.
//
// The engine never owns the host's active element exclusively; other code may
// move focus at any time. Each trap, navigator, and tracker is an independent
// instance with no global registry.
package focus

import (
	"github.com/xkilldash9x/focuskit/internal/page"
	"golang.org/x/net/html"
)

// Reason tags a focus transition with its cause.
type Reason string

const (
	// ReasonUser covers transitions the engine did not initiate.
	ReasonUser Reason = "user"
	// ReasonProgrammatic covers explicit caller-driven moves (navigator).
	ReasonProgrammatic Reason = "programmatic"
	// ReasonTrap covers moves made by a trap controller's containment logic.
	ReasonTrap Reason = "trap"
	// ReasonRestore covers the return move after a trap deactivates.
	ReasonRestore Reason = "restore"
)

// StyleSource is the read-only slice of the host the classifier needs.
// Implementations must report failures as errors rather than panic; the
// classifier treats any error as "not rendered".
type StyleSource interface {
	ComputedStyle(n *html.Node) (page.Style, error)
	BoundingBox(n *html.Node) (page.Rect, error)
}

// Environment is the full host surface the engine consumes. *page.Document
// satisfies it; tests may substitute fakes.
type Environment interface {
	StyleSource

	ActiveElement() *html.Node
	SetFocus(n *html.Node, preventScroll bool) bool
	Attached(n *html.Node) bool

	OnKeyDown(fn func(*page.KeyboardEvent)) func()
	OnPointerDown(fn func(*page.PointerEvent)) func()
	OnFocusIn(fn func(*page.FocusEvent)) func()

	// RequestFrame schedules a one-shot callback for the next frame tick.
	RequestFrame(fn func())
}

// mutationSource is an optional host capability; the navigator subscribes to
// it when available to keep its derived counters fresh.
type mutationSource interface {
	OnMutation(fn func()) func()
}
