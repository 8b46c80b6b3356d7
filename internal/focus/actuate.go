// internal/focus/actuate.go
package focus

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Actuator performs actual focus changes on the host and reports success. It
// never retries; retry policy belongs to its callers.
type Actuator struct {
	env     Environment
	tracker *HistoryTracker
	log     *zap.Logger
}

// NewActuator builds an actuator. The tracker is optional; when present the
// actuator announces the transition cause to it before each move. A nil
// logger keeps the actuator silent.
func NewActuator(env Environment, tracker *HistoryTracker, logger *zap.Logger) *Actuator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actuator{env: env, tracker: tracker, log: logger}
}

// Focus attempts to move input focus to n, returning true only if the host's
// active element equals n after the attempt. Failures (nil target, detached
// node, host refusal) come back as false, never as a panic or error.
func (a *Actuator) Focus(n *html.Node, preventScroll bool, reason Reason) bool {
	if n == nil {
		return false
	}
	if a.env.ActiveElement() == n {
		// Already focused: the host dispatches no focus-in for this, so an
		// announced reason would go unconsumed and mislabel the next
		// unrelated transition.
		return a.env.SetFocus(n, preventScroll)
	}
	if a.tracker != nil {
		a.tracker.NoteReason(reason)
	}
	ok := a.env.SetFocus(n, preventScroll)
	if !ok || a.env.ActiveElement() != n {
		if a.tracker != nil {
			a.tracker.ClearPendingReason()
		}
		a.log.Debug("focus attempt failed", zap.String("reason", string(reason)))
		return false
	}
	return true
}
