// internal/focus/history.go
package focus

import (
	"time"

	"github.com/xkilldash9x/focuskit/internal/page"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// HistoryLimit bounds the tracker's log to the most recent transitions.
const HistoryLimit = 10

// HistoryEntry records a single focus transition. Entries are appended and
// never mutated. At carries Go's monotonic clock reading.
type HistoryEntry struct {
	Node   *html.Node
	At     time.Time
	Reason Reason
}

// HistoryTracker observes every focus-in on the host, independent of any
// single trap, and keeps a bounded log of transitions with cause metadata.
//
// Transitions default to ReasonUser. Code that moves focus deliberately (the
// actuator, on behalf of traps and navigators) announces its reason through
// NoteReason before performing the move; the next focus-in consumes it.
type HistoryTracker struct {
	env Environment
	log *zap.Logger

	entries    []HistoryEntry
	pending    Reason
	hasPending bool

	unsubscribe func()
}

// NewHistoryTracker subscribes to the host's focus-in stream. Pass a nil
// logger to keep the tracker silent.
func NewHistoryTracker(env Environment, logger *zap.Logger) *HistoryTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &HistoryTracker{env: env, log: logger}
	t.unsubscribe = env.OnFocusIn(t.onFocusIn)
	return t
}

// Close detaches the tracker from the host's focus-in stream.
func (t *HistoryTracker) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}

// NoteReason sets the cause recorded for the next observed transition. It is
// the shared append hook used by deliberate focus movers.
func (t *HistoryTracker) NoteReason(r Reason) {
	t.pending = r
	t.hasPending = true
}

// ClearPendingReason drops an announced reason after a failed move so it
// cannot mislabel an unrelated later transition.
func (t *HistoryTracker) ClearPendingReason() {
	t.hasPending = false
}

func (t *HistoryTracker) onFocusIn(ev *page.FocusEvent) {
	// Dedupe first so a suppressed event cannot swallow an announced reason
	// meant for a real transition.
	if last := t.CurrentFocus(); last == ev.Target {
		return
	}
	reason := ReasonUser
	if t.hasPending {
		reason = t.pending
		t.hasPending = false
	}
	t.entries = append(t.entries, HistoryEntry{
		Node:   ev.Target,
		At:     time.Now(),
		Reason: reason,
	})
	if len(t.entries) > HistoryLimit {
		t.entries = t.entries[len(t.entries)-HistoryLimit:]
	}
	t.log.Debug("focus transition recorded",
		zap.String("reason", string(reason)),
		zap.Int("history_len", len(t.entries)))
}

// CurrentFocus returns the most recently recorded node, or nil.
func (t *HistoryTracker) CurrentFocus() *html.Node {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1].Node
}

// PreviousFocus returns the second-most-recent distinct node, or nil.
func (t *HistoryTracker) PreviousFocus() *html.Node {
	cur := t.CurrentFocus()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Node != cur {
			return t.entries[i].Node
		}
	}
	return nil
}

// History returns a copy of the log, oldest first.
func (t *HistoryTracker) History() []HistoryEntry {
	out := make([]HistoryEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ClearHistory empties the log.
func (t *HistoryTracker) ClearHistory() {
	t.entries = nil
}

// RestorePreviousFocus re-focuses the second-most-recent distinct node if it
// is still classified focusable. It reports whether focus actually moved.
func (t *HistoryTracker) RestorePreviousFocus() bool {
	prev := t.PreviousFocus()
	if prev == nil || !IsFocusable(t.env, prev) {
		return false
	}
	t.NoteReason(ReasonProgrammatic)
	ok := t.env.SetFocus(prev, false)
	if !ok {
		t.ClearPendingReason()
	}
	return ok && t.env.ActiveElement() == prev
}
