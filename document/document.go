// Package document holds the mutable tree model of an HTML body fragment.
// It exposes the text runs a matcher may scan, wraps accepted match spans in
// anchors, and serializes the result. Parsing is tolerant: input that cannot
// be parsed at all degrades to an opaque document that matches nothing and
// serializes back to the original bytes.
package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Containers whose text must never be linked. Anchor interiors are tracked
// separately because their eligibility depends on settings.
var opaqueElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"textarea": true,
	"code":     true,
	"pre":      true,
	"kbd":      true,
	"samp":     true,
}

// Run is one contiguous text node, annotated with the context the guard and
// chunker need.
type Run struct {
	// Text is the node's exact character data.
	Text string
	// InsideAnchor is set when the run sits inside an existing <a>.
	InsideAnchor bool
	// Heading is the level of the nearest enclosing h1-h6, or zero.
	Heading int
	// Block is the index of the top-level node containing the run; the
	// chunker splits between blocks.
	Block int

	node *html.Node
}

// Anchor describes the element wrapped around a matched span.
type Anchor struct {
	Href   string
	Rel    string
	Target string
}

// Span is a byte range of a run to wrap, with its anchor attributes.
type Span struct {
	Start  int
	End    int
	Anchor Anchor
}

// Document is the parsed body fragment. Not safe for concurrent use; each
// render owns its own Document.
type Document struct {
	roots  []*html.Node
	runs   []Run
	raw    string
	opaque bool
}

// Parse builds a Document from a body fragment. A parse failure yields an
// opaque document with no runs whose HTML method returns the input unchanged.
func Parse(raw string) *Document {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		return &Document{raw: raw, opaque: true}
	}
	d := &Document{roots: roots, raw: raw}
	for block, root := range roots {
		d.collectRuns(root, block, false, 0)
	}
	return d
}

// collectRuns walks the tree in document order gathering text nodes eligible
// for matching, annotating each with its anchor and heading context.
func (d *Document) collectRuns(n *html.Node, block int, inAnchor bool, heading int) {
	if n.Type == html.TextNode {
		if n.Data != "" {
			d.runs = append(d.runs, Run{
				Text:         n.Data,
				InsideAnchor: inAnchor,
				Heading:      heading,
				Block:        block,
				node:         n,
			})
		}
		return
	}
	if n.Type == html.ElementNode {
		if opaqueElements[n.Data] {
			return
		}
		if n.DataAtom == atom.A {
			inAnchor = true
		}
		if lvl := headingLevel(n); lvl > 0 {
			heading = lvl
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collectRuns(c, block, inAnchor, heading)
	}
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// Runs returns the document's text runs in document order.
func (d *Document) Runs() []Run {
	return d.runs
}

// Raw returns the unmodified input.
func (d *Document) Raw() string {
	return d.raw
}

// Opaque reports whether the input could not be parsed.
func (d *Document) Opaque() bool {
	return d.opaque
}

// Wrap replaces the given run's text node with an alternation of text nodes
// and anchors, one anchor per span. Spans must be sorted, non-overlapping,
// and within the run's bounds. Each run may be wrapped at most once; the
// caller injects in document order so earlier wraps never invalidate later
// spans.
func (d *Document) Wrap(runIndex int, spans []Span) error {
	if runIndex < 0 || runIndex >= len(d.runs) {
		return fmt.Errorf("run index %d out of range", runIndex)
	}
	if len(spans) == 0 {
		return nil
	}
	run := d.runs[runIndex]
	text := run.node.Data

	prev := 0
	for _, s := range spans {
		if s.Start < prev || s.End <= s.Start || s.End > len(text) {
			return fmt.Errorf("invalid span [%d,%d) in run of length %d", s.Start, s.End, len(text))
		}
		prev = s.End
	}

	var nodes []*html.Node
	cursor := 0
	for _, s := range spans {
		if s.Start > cursor {
			nodes = append(nodes, textNode(text[cursor:s.Start]))
		}
		nodes = append(nodes, anchorNode(s.Anchor, text[s.Start:s.End]))
		cursor = s.End
	}
	if cursor < len(text) {
		nodes = append(nodes, textNode(text[cursor:]))
	}

	d.replaceNode(run.node, nodes)
	return nil
}

// replaceNode swaps old for the given sequence, either within its parent or,
// for a top-level text node, in the root list.
func (d *Document) replaceNode(old *html.Node, nodes []*html.Node) {
	if parent := old.Parent; parent != nil {
		for _, n := range nodes {
			parent.InsertBefore(n, old)
		}
		parent.RemoveChild(old)
		return
	}
	for i, root := range d.roots {
		if root == old {
			replaced := make([]*html.Node, 0, len(d.roots)+len(nodes)-1)
			replaced = append(replaced, d.roots[:i]...)
			replaced = append(replaced, nodes...)
			replaced = append(replaced, d.roots[i+1:]...)
			d.roots = replaced
			return
		}
	}
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func anchorNode(a Anchor, text string) *html.Node {
	attrs := []html.Attribute{{Key: "href", Val: a.Href}}
	if a.Target != "" {
		attrs = append(attrs, html.Attribute{Key: "target", Val: a.Target})
	}
	if a.Rel != "" {
		attrs = append(attrs, html.Attribute{Key: "rel", Val: a.Rel})
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr:     attrs,
	}
	n.AppendChild(textNode(text))
	return n
}

// HTML serializes the fragment. Opaque documents return the raw input.
func (d *Document) HTML() string {
	if d.opaque {
		return d.raw
	}
	var b strings.Builder
	b.Grow(len(d.raw))
	for _, root := range d.roots {
		// Render only fails on unwritable writers; strings.Builder never is.
		html.Render(&b, root)
	}
	return b.String()
}
