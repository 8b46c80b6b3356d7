// internal/focus/trap.go
package focus

import (
	"github.com/google/uuid"
	"github.com/xkilldash9x/focuskit/internal/page"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// MarkerAttr is set on a trap's container while the trap is active. The value
// is the trap's ID; tooling can use it to discover nesting. It is advisory
// metadata only, never consulted by the engine itself.
const MarkerAttr = "data-focus-trap"

// TrapState is the lifecycle state of a trap controller.
type TrapState int

const (
	StateInactive TrapState = iota
	StateActive
	StatePaused
)

func (s TrapState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return "inactive"
	}
}

// TrapConfig is supplied once per trap instance and not mutated mid-lifecycle;
// changing configuration requires Reconfigure while inactive, or a new trap.
type TrapConfig struct {
	Enabled                 bool
	RestoreFocus            bool
	AutoFocus               bool
	PreventScroll           bool
	AllowOutsideClick       bool
	EscapeDeactivates       bool
	ClickOutsideDeactivates bool
	ReturnFocusOnDeactivate bool
}

// DefaultTrapConfig matches a conventional modal dialog: contained, escapable,
// restoring focus on exit.
func DefaultTrapConfig() TrapConfig {
	return TrapConfig{
		Enabled:                 true,
		RestoreFocus:            true,
		AutoFocus:               true,
		EscapeDeactivates:       true,
		ReturnFocusOnDeactivate: true,
	}
}

// TrapHooks are lifecycle callbacks. The Post hooks fire after the deferred
// focus move that follows the transition; nil hooks are skipped.
type TrapHooks struct {
	OnActivate       func()
	OnPostActivate   func()
	OnDeactivate     func()
	OnPostDeactivate func()
}

// Trap contains keyboard focus within a container subtree while active. It
// intercepts Tab and Escape, polices outside pointer-downs, and restores the
// previously focused element on deactivation.
//
// Multiple traps may exist concurrently; they are independent, and nesting
// arbitration is the caller's responsibility.
type Trap struct {
	id        string
	env       Environment
	container *html.Node
	cfg       TrapConfig
	hooks     TrapHooks
	act       *Actuator
	log       *zap.Logger

	// doc grants mutation-aware attribute access for the marker; optional.
	doc *page.Document

	state             TrapState
	previouslyFocused *html.Node
	pausedElement     *html.Node

	// generation bumps on every activate/deactivate so a stale deferred
	// callback can detect it no longer corresponds to the current lifecycle
	// and abort.
	generation uint64

	removeKey     func()
	removePointer func()
}

// NewTrap builds an inactive trap for the container. A nil actuator gets a
// private history-less one; a nil logger keeps the trap silent.
func NewTrap(env Environment, container *html.Node, cfg TrapConfig, act *Actuator, logger *zap.Logger) *Trap {
	if logger == nil {
		logger = zap.NewNop()
	}
	if act == nil {
		act = NewActuator(env, nil, nil)
	}
	t := &Trap{
		id:        uuid.NewString(),
		env:       env,
		container: container,
		cfg:       cfg,
		act:       act,
	}
	t.log = logger.With(zap.String("trap_id", t.id))
	if doc, ok := env.(*page.Document); ok {
		t.doc = doc
	}
	return t
}

// SetHooks installs lifecycle callbacks. Allowed only while inactive.
func (t *Trap) SetHooks(hooks TrapHooks) {
	if t.state == StateInactive {
		t.hooks = hooks
	}
}

// Reconfigure replaces the trap's configuration. It is a no-op unless the
// trap is inactive; mid-lifecycle reconfiguration is not supported.
func (t *Trap) Reconfigure(cfg TrapConfig) {
	if t.state == StateInactive {
		t.cfg = cfg
	}
}

// ID returns the trap's identifier, also used as the marker attribute value.
func (t *Trap) ID() string { return t.id }

// State returns the current lifecycle state.
func (t *Trap) State() TrapState { return t.state }

// IsActive reports whether the trap is active or paused.
func (t *Trap) IsActive() bool { return t.state != StateInactive }

// IsPaused reports whether the trap is paused.
func (t *Trap) IsPaused() bool { return t.state == StatePaused }

// Container returns the trapped subtree root.
func (t *Trap) Container() *html.Node { return t.container }

// Activate transitions Inactive -> Active. It is a silent no-op when already
// active, when the configuration disables the trap, or when no attached
// container is available. On success it captures the element to restore,
// binds the event interceptors, and (when configured) focuses the first
// tabbable element on the next frame tick.
func (t *Trap) Activate() {
	if t.state != StateInactive || !t.cfg.Enabled {
		return
	}
	if t.container == nil || !t.env.Attached(t.container) {
		t.log.Debug("activation skipped: no attached container")
		return
	}

	if t.cfg.RestoreFocus {
		t.previouslyFocused = t.env.ActiveElement()
	}
	if t.hooks.OnActivate != nil {
		t.hooks.OnActivate()
	}

	t.state = StateActive
	t.generation++
	t.setMarker()
	t.removeKey = t.env.OnKeyDown(t.onKeyDown)
	t.removePointer = t.env.OnPointerDown(t.onPointerDown)
	t.log.Debug("trap activated")

	if !t.cfg.AutoFocus {
		if t.hooks.OnPostActivate != nil {
			t.hooks.OnPostActivate()
		}
		return
	}

	// Deferred one frame so the container can finish mounting before focus
	// moves. The generation guard turns a stale callback into a no-op if the
	// trap was deactivated (or cycled) before the tick fired.
	gen := t.generation
	t.env.RequestFrame(func() {
		if t.state != StateActive || t.generation != gen {
			return
		}
		tabbable := Tabbable(t.env, t.container, DefaultScanOptions())
		if len(tabbable) > 0 {
			t.act.Focus(tabbable[0], t.cfg.PreventScroll, ReasonTrap)
		}
		// Zero tabbable elements is not an error; the trap stays active
		// with nothing focused.
		if t.hooks.OnPostActivate != nil {
			t.hooks.OnPostActivate()
		}
	})
}

// Deactivate transitions Active or Paused -> Inactive. It is a silent no-op
// when already inactive. When configured, focus returns to the previously
// focused element on the next frame tick, provided it is still attached.
func (t *Trap) Deactivate() {
	if t.state == StateInactive {
		return
	}
	if t.hooks.OnDeactivate != nil {
		t.hooks.OnDeactivate()
	}

	t.state = StateInactive
	t.pausedElement = nil
	t.generation++
	t.clearMarker()
	t.unbind()
	t.log.Debug("trap deactivated")

	prev := t.previouslyFocused
	if !t.cfg.ReturnFocusOnDeactivate || prev == nil {
		t.previouslyFocused = nil
		if t.hooks.OnPostDeactivate != nil {
			t.hooks.OnPostDeactivate()
		}
		return
	}

	gen := t.generation
	t.env.RequestFrame(func() {
		if t.state != StateInactive || t.generation != gen {
			return
		}
		if t.env.Attached(prev) {
			t.act.Focus(prev, t.cfg.PreventScroll, ReasonRestore)
		}
		t.previouslyFocused = nil
		if t.hooks.OnPostDeactivate != nil {
			t.hooks.OnPostDeactivate()
		}
	})
}

// Pause suspends interception without losing captured state. Only reachable
// from Active; while paused, keyboard and pointer events pass through to the
// underlying page.
func (t *Trap) Pause() {
	if t.state != StateActive {
		return
	}
	if active := t.env.ActiveElement(); active != nil && page.Contains(t.container, active) {
		t.pausedElement = active
	}
	t.state = StatePaused
	t.log.Debug("trap paused")
}

// Unpause resumes interception and restores the focus captured at pause time,
// when that element is still attached.
func (t *Trap) Unpause() {
	if t.state != StatePaused {
		return
	}
	t.state = StateActive
	if t.pausedElement != nil && t.env.Attached(t.pausedElement) {
		t.act.Focus(t.pausedElement, t.cfg.PreventScroll, ReasonTrap)
	}
	t.pausedElement = nil
	t.log.Debug("trap resumed")
}

// -- Event interception --

func (t *Trap) onKeyDown(ev *page.KeyboardEvent) {
	if t.state != StateActive {
		return
	}
	switch ev.Key {
	case page.KeyTab:
		ev.PreventDefault()
		t.cycle(ev.Shift)
	case page.KeyEscape:
		if t.cfg.EscapeDeactivates {
			ev.PreventDefault()
			t.Deactivate()
		}
	}
}

// cycle recomputes the tabbable set (the DOM may have mutated since the last
// keystroke) and moves focus one step with wraparound. An empty set leaves
// focus untouched; the keypress is still consumed.
func (t *Trap) cycle(backward bool) {
	tabbable := Tabbable(t.env, t.container, DefaultScanOptions())
	n := len(tabbable)
	if n == 0 {
		return
	}

	cur := IndexOf(tabbable, t.env.ActiveElement())
	var next int
	switch {
	case cur == -1 && backward:
		// Focus is outside the set ("before first"); stepping back lands on
		// the last element.
		next = n - 1
	case backward:
		next = (cur - 1 + n) % n
	default:
		next = (cur + 1) % n
	}
	t.act.Focus(tabbable[next], t.cfg.PreventScroll, ReasonTrap)
}

func (t *Trap) onPointerDown(ev *page.PointerEvent) {
	if t.state != StateActive {
		return
	}
	if ev.Target == nil || page.Contains(t.container, ev.Target) {
		return
	}
	switch {
	case t.cfg.ClickOutsideDeactivates:
		t.Deactivate()
	case !t.cfg.AllowOutsideClick:
		// Block the click and re-anchor on the first tabbable element.
		ev.PreventDefault()
		tabbable := Tabbable(t.env, t.container, DefaultScanOptions())
		if len(tabbable) > 0 {
			t.act.Focus(tabbable[0], t.cfg.PreventScroll, ReasonTrap)
		}
	}
}

func (t *Trap) unbind() {
	if t.removeKey != nil {
		t.removeKey()
		t.removeKey = nil
	}
	if t.removePointer != nil {
		t.removePointer()
		t.removePointer = nil
	}
}

func (t *Trap) setMarker() {
	if t.doc != nil {
		t.doc.SetAttr(t.container, MarkerAttr, t.id)
	}
}

func (t *Trap) clearMarker() {
	if t.doc != nil {
		t.doc.RemoveAttr(t.container, MarkerAttr)
	}
}
