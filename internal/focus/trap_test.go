package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/focuskit/internal/page"
)

const dialogHTML = `
<html><body>
	<button id="outside">Open</button>
	<div id="dialog">
		<button id="a">Alpha</button>
		<button id="b">Beta</button>
		<a id="c" href="/next">Gamma</a>
	</div>
	<button id="other">Other</button>
</body></html>`

// dialogFixture builds the standard three-element trap scenario with focus
// starting on the outside button.
func dialogFixture(t *testing.T, cfg TrapConfig) (*page.Document, *Trap) {
	t.Helper()
	doc := page.MustLoad(dialogHTML)
	require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))
	trap := NewTrap(doc, doc.ElementByID("dialog"), cfg, nil, nil)
	return doc, trap
}

func pressTab(doc *page.Document, shift bool) *page.KeyboardEvent {
	ev := &page.KeyboardEvent{Key: page.KeyTab, Shift: shift}
	doc.DispatchKeyDown(ev)
	return ev
}

func TestTrapLifecycle(t *testing.T) {
	t.Run("activate captures and autofocuses deferred", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())

		trap.Activate()
		assert.Equal(t, StateActive, trap.State())
		// Autofocus waits for the frame tick.
		assert.Same(t, doc.ElementByID("outside"), doc.ActiveElement())

		doc.FlushFrames()
		assert.Same(t, doc.ElementByID("a"), doc.ActiveElement())
	})

	t.Run("activate is a no-op when already active", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		var activations int
		trap.SetHooks(TrapHooks{OnActivate: func() { activations++ }})

		trap.Activate()
		trap.Activate()
		doc.FlushFrames()

		assert.Equal(t, 1, activations)
	})

	t.Run("disabled config refuses activation", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.Enabled = false
		_, trap := dialogFixture(t, cfg)

		trap.Activate()
		assert.Equal(t, StateInactive, trap.State())
	})

	t.Run("missing container refuses activation", func(t *testing.T) {
		doc := page.MustLoad(dialogHTML)
		trap := NewTrap(doc, nil, DefaultTrapConfig(), nil, nil)
		trap.Activate()
		assert.False(t, trap.IsActive())
	})

	t.Run("marker attribute tracks activation", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		dialog := doc.ElementByID("dialog")

		trap.Activate()
		marker, ok := page.Attr(dialog, MarkerAttr)
		require.True(t, ok)
		assert.Equal(t, trap.ID(), marker)

		trap.Deactivate()
		assert.False(t, page.HasAttr(dialog, MarkerAttr))
	})
}

func TestTrapTabCycling(t *testing.T) {
	doc, trap := dialogFixture(t, DefaultTrapConfig())
	trap.Activate()
	doc.FlushFrames()

	byID := func(id string) bool { return doc.ActiveElement() == doc.ElementByID(id) }
	require.True(t, byID("a"))

	t.Run("forward visits document order and wraps", func(t *testing.T) {
		pressTab(doc, false)
		assert.True(t, byID("b"))
		pressTab(doc, false)
		assert.True(t, byID("c"))
		pressTab(doc, false)
		assert.True(t, byID("a"), "wraps to the first element")
	})

	t.Run("backward wraps the other way", func(t *testing.T) {
		pressTab(doc, true)
		assert.True(t, byID("c"))
		pressTab(doc, true)
		assert.True(t, byID("b"))
	})

	t.Run("always prevents default", func(t *testing.T) {
		ev := pressTab(doc, false)
		assert.True(t, ev.DefaultPrevented())
	})

	t.Run("containment invariant", func(t *testing.T) {
		dialog := doc.ElementByID("dialog")
		for i := 0; i < 10; i++ {
			pressTab(doc, i%3 == 0)
			set := Tabbable(doc, dialog, DefaultScanOptions())
			assert.NotEqual(t, -1, IndexOf(set, doc.ActiveElement()),
				"focus must stay inside the tabbable set")
		}
	})

	t.Run("focus outside the set treats index as before-first", func(t *testing.T) {
		// Another actor moves focus outside the trap.
		require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))
		pressTab(doc, false)
		assert.True(t, byID("a"))

		require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))
		pressTab(doc, true)
		assert.True(t, byID("c"), "backward from before-first lands on the last element")
	})

	t.Run("set recomputed after mutation", func(t *testing.T) {
		require.True(t, doc.SetFocus(doc.ElementByID("a"), false))
		doc.Remove(doc.ElementByID("b"))
		pressTab(doc, false)
		assert.True(t, byID("c"), "removed element is skipped")
	})
}

func TestTrapRestoreOnDeactivate(t *testing.T) {
	doc, trap := dialogFixture(t, DefaultTrapConfig())
	outside := doc.ElementByID("outside")

	trap.Activate()
	doc.FlushFrames()
	require.Same(t, doc.ElementByID("a"), doc.ActiveElement())

	trap.Deactivate()
	assert.Equal(t, StateInactive, trap.State())
	// Restore waits for the frame tick.
	assert.Same(t, doc.ElementByID("a"), doc.ActiveElement())

	doc.FlushFrames()
	assert.Same(t, outside, doc.ActiveElement())

	t.Run("no restore when the anchor is gone", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		trap.Activate()
		doc.FlushFrames()

		doc.Remove(doc.ElementByID("outside"))
		trap.Deactivate()
		doc.FlushFrames()
		assert.Same(t, doc.ElementByID("a"), doc.ActiveElement(), "focus left in place")
	})

	t.Run("returnFocus disabled leaves focus alone", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.ReturnFocusOnDeactivate = false
		doc, trap := dialogFixture(t, cfg)
		trap.Activate()
		doc.FlushFrames()

		trap.Deactivate()
		assert.Equal(t, 0, doc.FlushFrames(), "no deferred restore scheduled")
		assert.Same(t, doc.ElementByID("a"), doc.ActiveElement())
	})
}

func TestTrapGenerationGuard(t *testing.T) {
	t.Run("deactivate before the tick cancels autofocus", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.ReturnFocusOnDeactivate = false
		doc, trap := dialogFixture(t, cfg)

		trap.Activate()
		trap.Deactivate()
		doc.FlushFrames()

		assert.Same(t, doc.ElementByID("outside"), doc.ActiveElement(),
			"stale autofocus callback must abort")
	})

	t.Run("deactivate-activate race keeps the new generation", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())

		trap.Activate()   // queues autofocus (gen 1)
		trap.Deactivate() // queues restore (gen 2)
		trap.Activate()   // queues autofocus (gen 3)
		doc.FlushFrames()

		assert.Equal(t, StateActive, trap.State())
		assert.Same(t, doc.ElementByID("a"), doc.ActiveElement(),
			"only the current generation's callback may move focus")
	})
}

func TestTrapPauseResume(t *testing.T) {
	doc, trap := dialogFixture(t, DefaultTrapConfig())
	trap.Activate()
	doc.FlushFrames()
	require.True(t, doc.SetFocus(doc.ElementByID("b"), false))

	t.Run("pause stops interception", func(t *testing.T) {
		trap.Pause()
		assert.Equal(t, StatePaused, trap.State())
		assert.True(t, trap.IsActive(), "paused still counts as activated")

		ev := pressTab(doc, false)
		assert.False(t, ev.DefaultPrevented(), "events pass through while paused")
		assert.Same(t, doc.ElementByID("b"), doc.ActiveElement())
	})

	t.Run("unpause restores the captured element", func(t *testing.T) {
		trap.Unpause()
		assert.Equal(t, StateActive, trap.State())
		assert.Same(t, doc.ElementByID("b"), doc.ActiveElement(),
			"pause/unpause with no intervening change is identity")
	})

	t.Run("pause outside Active is ignored", func(t *testing.T) {
		trap.Deactivate()
		doc.FlushFrames()
		trap.Pause()
		assert.Equal(t, StateInactive, trap.State())
		trap.Unpause()
		assert.Equal(t, StateInactive, trap.State())
	})

	t.Run("deactivation while paused is permitted", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		trap.Activate()
		doc.FlushFrames()
		trap.Pause()

		trap.Deactivate()
		assert.Equal(t, StateInactive, trap.State())
		doc.FlushFrames()
		assert.Same(t, doc.ElementByID("outside"), doc.ActiveElement())
	})
}

func TestTrapEscape(t *testing.T) {
	t.Run("escape deactivates exactly once", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		var deactivations int
		trap.SetHooks(TrapHooks{OnDeactivate: func() { deactivations++ }})
		trap.Activate()
		doc.FlushFrames()

		ev := &page.KeyboardEvent{Key: page.KeyEscape}
		doc.DispatchKeyDown(ev)
		assert.True(t, ev.DefaultPrevented())
		assert.Equal(t, StateInactive, trap.State())

		// Repeated synthetic events must not double-invoke.
		doc.DispatchKeyDown(&page.KeyboardEvent{Key: page.KeyEscape})
		assert.Equal(t, 1, deactivations)
	})

	t.Run("escape ignored when not configured", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.EscapeDeactivates = false
		doc, trap := dialogFixture(t, cfg)
		trap.Activate()
		doc.FlushFrames()

		ev := &page.KeyboardEvent{Key: page.KeyEscape}
		doc.DispatchKeyDown(ev)
		assert.False(t, ev.DefaultPrevented())
		assert.Equal(t, StateActive, trap.State())
	})
}

func TestTrapOutsideClick(t *testing.T) {
	t.Run("blocked click re-anchors on the first tabbable", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		trap.Activate()
		doc.FlushFrames()
		require.True(t, doc.SetFocus(doc.ElementByID("b"), false))

		prevented := doc.DispatchPointerDown(doc.ElementByID("other"))
		assert.True(t, prevented)
		assert.Same(t, doc.ElementByID("a"), doc.ActiveElement())
		assert.Equal(t, StateActive, trap.State())
	})

	t.Run("clickOutsideDeactivates lets the click through", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.ClickOutsideDeactivates = true
		doc, trap := dialogFixture(t, cfg)
		trap.Activate()
		doc.FlushFrames()

		prevented := doc.DispatchPointerDown(doc.ElementByID("other"))
		assert.False(t, prevented)
		assert.Equal(t, StateInactive, trap.State())
	})

	t.Run("allowOutsideClick passes through without refocusing", func(t *testing.T) {
		cfg := DefaultTrapConfig()
		cfg.AllowOutsideClick = true
		doc, trap := dialogFixture(t, cfg)
		trap.Activate()
		doc.FlushFrames()

		prevented := doc.DispatchPointerDown(doc.ElementByID("other"))
		assert.False(t, prevented)
		assert.Equal(t, StateActive, trap.State())
		assert.Same(t, doc.ElementByID("other"), doc.ActiveElement(),
			"the host's default mousedown focus applies")
	})

	t.Run("inside clicks are never policed", func(t *testing.T) {
		doc, trap := dialogFixture(t, DefaultTrapConfig())
		trap.Activate()
		doc.FlushFrames()

		prevented := doc.DispatchPointerDown(doc.ElementByID("b"))
		assert.False(t, prevented)
		assert.Same(t, doc.ElementByID("b"), doc.ActiveElement())
	})
}

func TestTrapSingleElementCycle(t *testing.T) {
	doc := page.MustLoad(`
	<html><body>
		<button id="outside">Open</button>
		<div id="dialog"><button id="only">Solo</button></div>
	</body></html>`)
	require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))

	tracker := NewHistoryTracker(doc, nil)
	defer tracker.Close()
	act := NewActuator(doc, tracker, nil)
	trap := NewTrap(doc, doc.ElementByID("dialog"), DefaultTrapConfig(), act, nil)
	trap.Activate()
	doc.FlushFrames()
	require.Same(t, doc.ElementByID("only"), doc.ActiveElement())

	ev := pressTab(doc, false)
	assert.True(t, ev.DefaultPrevented())
	assert.Same(t, doc.ElementByID("only"), doc.ActiveElement(), "cycles onto itself")

	// The self-cycle produced no transition; a later host-level move must
	// record as a user move, not inherit the cycle's cause.
	require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))
	entries := tracker.History()
	require.NotEmpty(t, entries)
	assert.Equal(t, ReasonUser, entries[len(entries)-1].Reason)
	assert.Same(t, doc.ElementByID("outside"), entries[len(entries)-1].Node)
}

func TestTrapEmptyContainer(t *testing.T) {
	doc := page.MustLoad(`
	<html><body>
		<button id="outside">Open</button>
		<div id="empty"><p>no controls here</p></div>
	</body></html>`)
	require.True(t, doc.SetFocus(doc.ElementByID("outside"), false))

	trap := NewTrap(doc, doc.ElementByID("empty"), DefaultTrapConfig(), nil, nil)
	trap.Activate()
	doc.FlushFrames()

	assert.True(t, trap.IsActive())
	assert.Same(t, doc.ElementByID("outside"), doc.ActiveElement(), "nothing to autofocus")

	ev := pressTab(doc, false)
	assert.True(t, ev.DefaultPrevented(), "Tab is still intercepted")
	assert.Same(t, doc.ElementByID("outside"), doc.ActiveElement(), "focus unchanged")
}

func TestTrapReconfigure(t *testing.T) {
	doc, trap := dialogFixture(t, DefaultTrapConfig())

	cfg := DefaultTrapConfig()
	cfg.EscapeDeactivates = false
	trap.Reconfigure(cfg)

	trap.Activate()
	doc.FlushFrames()
	doc.DispatchKeyDown(&page.KeyboardEvent{Key: page.KeyEscape})
	assert.Equal(t, StateActive, trap.State(), "reconfigured before activation")

	// Mid-lifecycle reconfiguration is refused.
	trap.Reconfigure(DefaultTrapConfig())
	doc.DispatchKeyDown(&page.KeyboardEvent{Key: page.KeyEscape})
	assert.Equal(t, StateActive, trap.State())
}

func TestTrapHookOrdering(t *testing.T) {
	doc, trap := dialogFixture(t, DefaultTrapConfig())
	var order []string
	trap.SetHooks(TrapHooks{
		OnActivate:       func() { order = append(order, "activate") },
		OnPostActivate:   func() { order = append(order, "post-activate") },
		OnDeactivate:     func() { order = append(order, "deactivate") },
		OnPostDeactivate: func() { order = append(order, "post-deactivate") },
	})

	trap.Activate()
	assert.Equal(t, []string{"activate"}, order, "post hook waits for the tick")
	doc.FlushFrames()
	assert.Equal(t, []string{"activate", "post-activate"}, order)

	trap.Deactivate()
	doc.FlushFrames()
	assert.Equal(t,
		[]string{"activate", "post-activate", "deactivate", "post-deactivate"},
		order)
}
