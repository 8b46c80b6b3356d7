// internal/focus/scan.go
package focus

import (
	"sort"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ScanOptions controls a tree scan. The zero value performs a raw candidate
// scan; DefaultScanOptions applies the full classifier.
type ScanOptions struct {
	// SkipHidden excludes nodes that are aria-hidden, unrendered, or have a
	// zero-sized box.
	SkipHidden bool
	// SkipDisabled excludes natively or ARIA-disabled nodes.
	SkipDisabled bool
	// CustomSelectors are XPath expressions evaluated against the container;
	// their matches extend the candidate set before filtering.
	CustomSelectors []string
}

// DefaultScanOptions is what the trap controller scans with: the complete
// focusability policy.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{SkipHidden: true, SkipDisabled: true}
}

// Focusable enumerates the focusable descendants of container in document
// order. The set is recomputed from the live tree on every call; it is never
// cached because the tree may mutate between events.
func Focusable(src StyleSource, container *html.Node, opts ScanOptions) []*html.Node {
	if container == nil {
		return nil
	}

	custom := matchCustomSelectors(container, opts.CustomSelectors)

	var out []*html.Node
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		collectFocusable(src, c, opts, custom, &out)
	}
	return out
}

func collectFocusable(src StyleSource, n *html.Node, opts ScanOptions, custom map[*html.Node]bool, out *[]*html.Node) {
	if n.Type == html.ElementNode && (isFocusCandidate(n) || custom[n]) {
		if admit(src, n, opts) {
			*out = append(*out, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFocusable(src, c, opts, custom, out)
	}
}

// admit applies the optional filters to a candidate. Hosts that deny style or
// geometry queries make the node unclassifiable; it is dropped outright.
func admit(src StyleSource, n *html.Node, opts ScanOptions) bool {
	st, err := src.ComputedStyle(n)
	if err != nil {
		return false
	}
	if opts.SkipDisabled && isDisabled(n) {
		return false
	}
	if opts.SkipHidden {
		if isAriaHidden(n) || !st.Rendered() {
			return false
		}
		box, err := src.BoundingBox(n)
		if err != nil || box.Empty() {
			return false
		}
	}
	return true
}

// Tabbable enumerates the tabbable descendants of container: the focusable
// set restricted to non-negative tabindex, ordered by ascending explicit
// tabindex with document order preserved among equal values.
func Tabbable(src StyleSource, container *html.Node, opts ScanOptions) []*html.Node {
	focusable := Focusable(src, container, opts)
	tabbable := make([]*html.Node, 0, len(focusable))
	for _, n := range focusable {
		if EffectiveTabIndex(n) >= 0 {
			tabbable = append(tabbable, n)
		}
	}
	// Stable: nodes with identical tabindex keep source-tree order.
	sort.SliceStable(tabbable, func(i, j int) bool {
		return EffectiveTabIndex(tabbable[i]) < EffectiveTabIndex(tabbable[j])
	})
	return tabbable
}

// matchCustomSelectors evaluates each XPath against the container, tolerating
// bad expressions by skipping them.
func matchCustomSelectors(container *html.Node, selectors []string) map[*html.Node]bool {
	if len(selectors) == 0 {
		return nil
	}
	matched := make(map[*html.Node]bool)
	for _, sel := range selectors {
		nodes, err := htmlquery.QueryAll(container, sel)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			if n != container && n.Type == html.ElementNode {
				matched[n] = true
			}
		}
	}
	return matched
}

// IndexOf returns the position of n within set, or -1.
func IndexOf(set []*html.Node, n *html.Node) int {
	for i, c := range set {
		if c == n {
			return i
		}
	}
	return -1
}
