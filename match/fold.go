package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// folded is a comparison form of a text together with a byte-offset map back
// to the original. Matching runs against the folded form; replacement always
// uses original bytes.
type folded struct {
	text string
	// offsets[i] is the byte offset in the original text of the rune that
	// produced folded byte i. It has one sentinel entry at the end equal to
	// len(original), so span ends map through the same table.
	offsets []int
}

// fold lowercases s and, when accents is set, strips combining marks after
// NFD decomposition. Every folded byte remembers which original rune produced
// it so match spans can be mapped back losslessly.
func fold(s string, accents bool) *folded {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)

	for i, r := range s {
		if accents {
			for _, d := range norm.NFD.String(string(r)) {
				if unicode.Is(unicode.Mn, d) {
					continue
				}
				appendRune(&b, &offsets, unicode.ToLower(d), i)
			}
		} else {
			appendRune(&b, &offsets, unicode.ToLower(r), i)
		}
	}

	offsets = append(offsets, len(s))
	return &folded{text: b.String(), offsets: offsets}
}

func appendRune(b *strings.Builder, offsets *[]int, r rune, origOffset int) {
	n := b.Len()
	b.WriteRune(r)
	for ; n < b.Len(); n++ {
		*offsets = append(*offsets, origOffset)
	}
}

// origRange maps a span in the folded text back to original byte offsets,
// extending the end through any trailing folded bytes that belong to the same
// original rune.
func (f *folded) origRange(start, end int) (int, int) {
	origStart := f.offsets[start]
	origEnd := f.offsets[end]
	if end > 0 && origEnd == f.offsets[end-1] {
		// The span ends mid-rune in the folded form (a single original rune
		// decomposed into several folded runes). Widen to the next rune.
		last := f.offsets[end-1]
		for i := end; i < len(f.offsets); i++ {
			if f.offsets[i] != last {
				origEnd = f.offsets[i]
				break
			}
		}
	}
	return origStart, origEnd
}

// boundaryAt reports whether the folded span [start, end) is delimited by
// non-word runes (or text edges) on both sides.
func (f *folded) boundaryAt(start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(f.text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(f.text) {
		r, _ := utf8.DecodeRuneInString(f.text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
