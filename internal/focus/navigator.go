// internal/focus/navigator.go
package focus

import (
	"github.com/xkilldash9x/focuskit/internal/page"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// NavigatorConfig controls directional navigation within a container.
type NavigatorConfig struct {
	WrapAround      bool
	SkipHidden      bool
	SkipDisabled    bool
	CustomSelectors []string
}

// DefaultNavigatorConfig wraps and applies the full focusability policy.
func DefaultNavigatorConfig() NavigatorConfig {
	return NavigatorConfig{WrapAround: true, SkipHidden: true, SkipDisabled: true}
}

// Navigator moves focus directionally (next/prev/first/last) within a
// container, usable outside of any trap for menu and listbox navigation.
//
// Every focus-moving call rescans the tabbable set from the live tree. The
// cached index and count exist only for UI indicators ("item 3 of 9"); they
// refresh on focus-in and, debounced, on container mutation.
type Navigator struct {
	env       Environment
	container *html.Node
	cfg       NavigatorConfig
	act       *Actuator
	log       *zap.Logger

	currentIndex int
	totalItems   int

	// refreshLimiter debounces mutation-driven recounts on rapid DOM churn.
	// Advisory only: focus moves always rescan fresh.
	refreshLimiter *rate.Limiter

	unsubFocus    func()
	unsubMutation func()
}

// NewNavigator builds a navigator over container. A nil actuator gets a
// private history-less one; a nil logger keeps the navigator silent.
func NewNavigator(env Environment, container *html.Node, cfg NavigatorConfig, act *Actuator, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if act == nil {
		act = NewActuator(env, nil, nil)
	}
	nav := &Navigator{
		env:            env,
		container:      container,
		cfg:            cfg,
		act:            act,
		log:            logger,
		currentIndex:   -1,
		refreshLimiter: rate.NewLimiter(rate.Limit(30), 1),
	}
	nav.unsubFocus = env.OnFocusIn(func(*page.FocusEvent) { nav.recount() })
	if ms, ok := env.(mutationSource); ok {
		nav.unsubMutation = ms.OnMutation(nav.Refresh)
	}
	nav.recount()
	return nav
}

// Close detaches the navigator's host subscriptions.
func (nav *Navigator) Close() {
	if nav.unsubFocus != nil {
		nav.unsubFocus()
		nav.unsubFocus = nil
	}
	if nav.unsubMutation != nil {
		nav.unsubMutation()
		nav.unsubMutation = nil
	}
}

func (nav *Navigator) scanOptions() ScanOptions {
	return ScanOptions{
		SkipHidden:      nav.cfg.SkipHidden,
		SkipDisabled:    nav.cfg.SkipDisabled,
		CustomSelectors: nav.cfg.CustomSelectors,
	}
}

func (nav *Navigator) tabbable() []*html.Node {
	return Tabbable(nav.env, nav.container, nav.scanOptions())
}

// Refresh recomputes the derived index and count, rate-limited so rapid DOM
// churn does not thrash the scan.
func (nav *Navigator) Refresh() {
	if !nav.refreshLimiter.Allow() {
		return
	}
	nav.recount()
}

func (nav *Navigator) recount() {
	set := nav.tabbable()
	nav.totalItems = len(set)
	nav.currentIndex = IndexOf(set, nav.env.ActiveElement())
}

// CurrentIndex is the active element's position in the tabbable set, or -1.
func (nav *Navigator) CurrentIndex() int { return nav.currentIndex }

// TotalItems is the size of the tabbable set at the last refresh.
func (nav *Navigator) TotalItems() int { return nav.totalItems }

// FocusNext moves focus to the element after the current one. Without
// wraparound, focus stays put at the end of the set. Reports whether focus
// moved.
func (nav *Navigator) FocusNext() bool {
	set := nav.tabbable()
	n := len(set)
	if n == 0 {
		return false
	}
	cur := IndexOf(set, nav.env.ActiveElement())
	next := cur + 1
	if next >= n {
		if !nav.cfg.WrapAround {
			return false
		}
		next = 0
	}
	return nav.act.Focus(set[next], false, ReasonProgrammatic)
}

// FocusPrevious moves focus to the element before the current one. When focus
// is not in the set it lands on the last element.
func (nav *Navigator) FocusPrevious() bool {
	set := nav.tabbable()
	n := len(set)
	if n == 0 {
		return false
	}
	cur := IndexOf(set, nav.env.ActiveElement())
	var prev int
	switch {
	case cur == -1:
		prev = n - 1
	case cur == 0:
		if !nav.cfg.WrapAround {
			return false
		}
		prev = n - 1
	default:
		prev = cur - 1
	}
	return nav.act.Focus(set[prev], false, ReasonProgrammatic)
}

// FocusFirst moves focus to the first tabbable element.
func (nav *Navigator) FocusFirst() bool {
	set := nav.tabbable()
	if len(set) == 0 {
		return false
	}
	return nav.act.Focus(set[0], false, ReasonProgrammatic)
}

// FocusLast moves focus to the last tabbable element.
func (nav *Navigator) FocusLast() bool {
	set := nav.tabbable()
	if len(set) == 0 {
		return false
	}
	return nav.act.Focus(set[len(set)-1], false, ReasonProgrammatic)
}
