package focus

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/focuskit/internal/page"
	"golang.org/x/net/html"
)

func ids(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i], _ = page.Attr(n, "id")
	}
	return out
}

func TestFocusableDocumentOrder(t *testing.T) {
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="one">1</button>
		<div>
			<a id="two" href="/x">2</a>
			<span><input id="three" type="text"></span>
		</div>
		<textarea id="four"></textarea>
	</div></body></html>`)
	root := doc.ElementByID("root")

	got := ids(Focusable(doc, root, DefaultScanOptions()))
	if diff := cmp.Diff([]string{"one", "two", "three", "four"}, got); diff != "" {
		t.Errorf("focusable order mismatch (-want +got):\n%s", diff)
	}
}

func TestScanOptionFilters(t *testing.T) {
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="ok">x</button>
		<button id="off" disabled>x</button>
		<button id="ghost" style="display: none">x</button>
	</div></body></html>`)
	root := doc.ElementByID("root")

	t.Run("raw candidates", func(t *testing.T) {
		got := ids(Focusable(doc, root, ScanOptions{}))
		assert.Equal(t, []string{"ok", "off", "ghost"}, got)
	})

	t.Run("skip disabled", func(t *testing.T) {
		got := ids(Focusable(doc, root, ScanOptions{SkipDisabled: true}))
		assert.Equal(t, []string{"ok", "ghost"}, got)
	})

	t.Run("skip hidden", func(t *testing.T) {
		got := ids(Focusable(doc, root, ScanOptions{SkipHidden: true}))
		assert.Equal(t, []string{"ok", "off"}, got)
	})

	t.Run("full policy", func(t *testing.T) {
		got := ids(Focusable(doc, root, DefaultScanOptions()))
		assert.Equal(t, []string{"ok"}, got)
	})
}

func TestTabbableExplicitOrdering(t *testing.T) {
	// Document order X(2), Y(1), Z(0) must yield Z, Y, X: ascending explicit
	// tabindex with document order preserved among equal values.
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="X" tabindex="2">x</button>
		<button id="Y" tabindex="1">y</button>
		<button id="Z" tabindex="0">z</button>
	</div></body></html>`)
	root := doc.ElementByID("root")

	got := ids(Tabbable(doc, root, DefaultScanOptions()))
	assert.Equal(t, []string{"Z", "Y", "X"}, got)
}

func TestTabbableStableWithinGroup(t *testing.T) {
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="a">a</button>
		<button id="b" tabindex="0">b</button>
		<a id="c" href="/x">c</a>
		<div id="d" tabindex="1">d</div>
		<div id="skipme" tabindex="-1">skip</div>
	</div></body></html>`)
	root := doc.ElementByID("root")

	got := ids(Tabbable(doc, root, DefaultScanOptions()))
	// tabindex 0 group keeps source order; the negative node is excluded.
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestCustomSelectorsExtendTheSet(t *testing.T) {
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="native">x</button>
		<div id="widget" role="option">widget</div>
		<div id="plain">plain</div>
	</div></body></html>`)
	root := doc.ElementByID("root")

	opts := DefaultScanOptions()
	opts.CustomSelectors = []string{`//*[@role='option']`}

	got := ids(Focusable(doc, root, opts))
	assert.Equal(t, []string{"native", "widget"}, got)

	t.Run("invalid selector is skipped", func(t *testing.T) {
		opts.CustomSelectors = []string{`//[bad`}
		got := ids(Focusable(doc, root, opts))
		assert.Equal(t, []string{"native"}, got)
	})
}

func TestScanNeverCaches(t *testing.T) {
	doc := page.MustLoad(`
	<html><body><div id="root">
		<button id="a">a</button>
	</div></body></html>`)
	root := doc.ElementByID("root")
	require.Len(t, Tabbable(doc, root, DefaultScanOptions()), 1)

	extra := &html.Node{
		Type: html.ElementNode,
		Data: "button",
		Attr: []html.Attribute{{Key: "id", Val: "b"}},
	}
	extra.AppendChild(&html.Node{Type: html.TextNode, Data: "b"})
	doc.AppendChild(root, extra)

	got := ids(Tabbable(doc, root, DefaultScanOptions()))
	assert.Equal(t, []string{"a", "b"}, got, "scan reflects the mutated tree")
}

func TestScanNilContainer(t *testing.T) {
	doc := page.MustLoad(`<html><body></body></html>`)
	assert.Nil(t, Focusable(doc, nil, DefaultScanOptions()))
	assert.Empty(t, Tabbable(doc, nil, DefaultScanOptions()))
}
