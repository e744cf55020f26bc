package match

import (
	"testing"
)

func TestMatcher_Find(t *testing.T) {
	t.Run("case insensitive by default", func(t *testing.T) {
		m := New([]string{"widget"}, Options{})
		spans := m.Find("A Widget and a WIDGET")
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		if got := "A Widget and a WIDGET"[spans[0].Start:spans[0].End]; got != "Widget" {
			t.Errorf("first span = %q, want %q", got, "Widget")
		}
		if got := "A Widget and a WIDGET"[spans[1].Start:spans[1].End]; got != "WIDGET" {
			t.Errorf("second span = %q, want %q", got, "WIDGET")
		}
	})

	t.Run("word boundaries reject substrings", func(t *testing.T) {
		m := New([]string{"cat"}, Options{WordBoundaries: true})
		text := "category and cat"
		spans := m.Find(text)
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Start != 13 || spans[0].End != 16 {
			t.Errorf("span = [%d,%d), want [13,16)", spans[0].Start, spans[0].End)
		}
	})

	t.Run("no word boundaries matches substrings", func(t *testing.T) {
		m := New([]string{"cat"}, Options{})
		spans := m.Find("category and cat")
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		if spans[0].Start != 0 {
			t.Errorf("first span start = %d, want 0", spans[0].Start)
		}
	})

	t.Run("longest keyword wins at a position", func(t *testing.T) {
		m := New([]string{"go", "golang"}, Options{WordBoundaries: true})
		text := "we write golang here"
		spans := m.Find(text)
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if got := text[spans[0].Start:spans[0].End]; got != "golang" {
			t.Errorf("matched %q, want %q", got, "golang")
		}
	})

	t.Run("matching resumes after a span", func(t *testing.T) {
		m := New([]string{"aa"}, Options{})
		spans := m.Find("aaaa")
		if len(spans) != 2 {
			t.Fatalf("expected 2 non-overlapping spans, got %d", len(spans))
		}
	})

	t.Run("accent folding matches both directions", func(t *testing.T) {
		m := New([]string{"cafe"}, Options{FoldAccents: true, WordBoundaries: true})
		text := "Visit our café today"
		spans := m.Find(text)
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if got := text[spans[0].Start:spans[0].End]; got != "café" {
			t.Errorf("span covers %q, want %q (original text preserved)", got, "café")
		}

		m = New([]string{"café"}, Options{FoldAccents: true, WordBoundaries: true})
		text = "plain cafe here"
		spans = m.Find(text)
		if len(spans) != 1 {
			t.Fatalf("expected 1 span for accented keyword, got %d", len(spans))
		}
		if got := text[spans[0].Start:spans[0].End]; got != "cafe" {
			t.Errorf("span covers %q, want %q", got, "cafe")
		}
	})

	t.Run("no accent folding keeps accents distinct", func(t *testing.T) {
		m := New([]string{"cafe"}, Options{WordBoundaries: true})
		if spans := m.Find("Visit our café today"); len(spans) != 0 {
			t.Fatalf("expected no spans without folding, got %d", len(spans))
		}
	})

	t.Run("empty keywords dropped", func(t *testing.T) {
		m := New([]string{"", "  "}, Options{})
		if !m.Empty() {
			t.Error("matcher with only blank keywords should be empty")
		}
		m = New(nil, Options{})
		if spans := m.Find("anything"); spans != nil {
			t.Errorf("expected nil spans, got %v", spans)
		}
	})

	t.Run("keyword reports original form", func(t *testing.T) {
		m := New([]string{"Café"}, Options{FoldAccents: true})
		spans := m.Find("the cafe")
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Keyword != "Café" {
			t.Errorf("keyword = %q, want original %q", spans[0].Keyword, "Café")
		}
	})
}

func TestFold(t *testing.T) {
	t.Run("maps folded offsets to original bytes", func(t *testing.T) {
		f := fold("café bar", true)
		if f.text != "cafe bar" {
			t.Fatalf("folded = %q, want %q", f.text, "cafe bar")
		}
		// "cafe" in the folded form spans the full "café" in the original,
		// including the two-byte é.
		start, end := f.origRange(0, 4)
		if start != 0 || end != 5 {
			t.Errorf("origRange(0,4) = [%d,%d), want [0,5)", start, end)
		}
	})

	t.Run("combining marks fold away", func(t *testing.T) {
		// Decomposed form: 'e' followed by U+0301.
		f := fold("café", true)
		if f.text != "cafe" {
			t.Fatalf("folded = %q, want %q", f.text, "cafe")
		}
		start, end := f.origRange(0, 4)
		if start != 0 || end != len("café") {
			t.Errorf("origRange = [%d,%d), want [0,%d)", start, end, len("café"))
		}
	})

	t.Run("boundary check", func(t *testing.T) {
		f := fold("cat category", false)
		if !f.boundaryAt(0, 3) {
			t.Error("standalone word should be boundary-valid")
		}
		if f.boundaryAt(4, 7) {
			t.Error("prefix of a longer word should not be boundary-valid")
		}
	})
}
