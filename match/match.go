// Package match finds literal keyword occurrences in text runs. Matching is
// case-insensitive, optionally accent-insensitive, and optionally bounded by
// word boundaries; the reported spans always index the original text so
// replacement never alters what the reader sees.
package match

import (
	"sort"
	"strings"
)

// Options control matching semantics for one matcher.
type Options struct {
	// WordBoundaries requires non-word runes (or text edges) on both sides of
	// a match, so "cat" cannot match inside "category".
	WordBoundaries bool
	// FoldAccents compares keyword and text with combining marks stripped, so
	// "cafe" matches "café" and vice versa.
	FoldAccents bool
}

// Span is one keyword occurrence in the original text.
type Span struct {
	Start   int
	End     int
	Keyword string
}

type keyword struct {
	original string
	folded   string
}

// Matcher finds occurrences of a fixed keyword list in text runs. Safe for
// concurrent use once constructed.
type Matcher struct {
	keywords []keyword
	opts     Options
}

// New builds a matcher for the given keywords. Keywords are folded once up
// front and ordered longest-first so the longest keyword wins when several
// could match at the same position; insertion order breaks length ties.
// Keywords that fold to the empty string are dropped.
func New(keywords []string, opts Options) *Matcher {
	m := &Matcher{opts: opts}
	for _, kw := range keywords {
		f := fold(kw, opts.FoldAccents)
		if f.text == "" {
			continue
		}
		m.keywords = append(m.keywords, keyword{original: kw, folded: f.text})
	}
	sort.SliceStable(m.keywords, func(i, j int) bool {
		return len(m.keywords[i].folded) > len(m.keywords[j].folded)
	})
	return m
}

// Empty reports whether the matcher has no usable keywords.
func (m *Matcher) Empty() bool {
	return len(m.keywords) == 0
}

// Find returns all non-overlapping keyword occurrences in text, in text
// order. At a given position the longest keyword wins and scanning resumes
// after the matched span.
func (m *Matcher) Find(text string) []Span {
	if len(m.keywords) == 0 || text == "" {
		return nil
	}

	f := fold(text, m.opts.FoldAccents)

	type hit struct {
		start, end int
		kw         int
	}
	var hits []hit
	for ki, kw := range m.keywords {
		for from := 0; from <= len(f.text)-len(kw.folded); {
			i := strings.Index(f.text[from:], kw.folded)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(kw.folded)
			if !m.opts.WordBoundaries || f.boundaryAt(start, end) {
				hits = append(hits, hit{start: start, end: end, kw: ki})
			}
			from = start + 1
		}
	}
	if len(hits) == 0 {
		return nil
	}

	// Earliest wins; at equal start the longer keyword wins, and the keyword
	// list is already ordered longest-first so index order settles ties.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].kw < hits[j].kw
	})

	var spans []Span
	next := 0
	for _, h := range hits {
		if h.start < next {
			continue
		}
		origStart, origEnd := f.origRange(h.start, h.end)
		spans = append(spans, Span{
			Start:   origStart,
			End:     origEnd,
			Keyword: m.keywords[h.kw].original,
		})
		next = h.end
	}
	return spans
}
