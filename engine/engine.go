// Package engine wires the document model, keyword matcher, context guard,
// cap enforcer, and UTM resolver into the single public entry point. A render
// is a pure transformation: (document, rule set, settings) in, (document,
// report) out. Nothing survives a call except the optional render cache
// entry.
package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/jhd3197/linkweaver/config"
	"github.com/jhd3197/linkweaver/document"
	"github.com/jhd3197/linkweaver/logger"
	"github.com/jhd3197/linkweaver/match"
	"github.com/jhd3197/linkweaver/rule"
	"github.com/jhd3197/linkweaver/utm"
)

// Engine renders documents against a rule set. Safe for concurrent use; each
// call owns its own document model and counters, and the cache tolerates
// same-key races.
type Engine struct {
	cache Cache
	log   logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables render memoization. The cache is only consulted when the
// settings snapshot has caching enabled.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: logger.Noop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// preparedRule is a rule compiled for one render: matcher built, destination
// resolved, anchor attributes precomputed.
type preparedRule struct {
	rule    *rule.Rule
	cat     *rule.Category
	matcher *match.Matcher
	anchor  document.Anchor

	rawMatches int
	capSkipped bool
	inserted   bool
	dead       bool
}

// candidate is one potential injection: a keyword occurrence of one rule in
// one run.
type candidate struct {
	start, end int
	prep       *preparedRule
}

// injection is the set of accepted spans for one run, applied after the whole
// scan so wrapping never invalidates pending byte ranges.
type injection struct {
	runIndex int
	spans    []document.Span
}

// Render scans raw HTML for the set's keywords and injects links subject to
// caps, heading policy, and anchor avoidance. It never fails: worst case the
// output equals the input with an empty report. When no link is inserted the
// input is returned byte for byte.
func (e *Engine) Render(ctx context.Context, raw string, set *rule.Set, settings config.Settings) (string, *Report) {
	useCache := settings.CacheRenderedContent && e.cache != nil
	var key string
	if useCache {
		key = CacheKey(raw, set.Revision, settings.Revision)
		if entry, err := e.cache.Get(ctx, key); err != nil {
			e.log.Debug("render cache get failed", "error", err)
		} else if entry != nil && entry.Report != nil {
			return entry.HTML, entry.Report
		}
	}

	report := NewReport()
	html := e.render(raw, set, settings, report)

	if useCache {
		if err := e.cache.Set(ctx, key, &CachedRender{HTML: html, Report: report}); err != nil {
			e.log.Debug("render cache set failed", "error", err)
		}
	}
	return html, report
}

func (e *Engine) render(raw string, set *rule.Set, settings config.Settings, report *Report) string {
	prepared := e.prepareRules(set, settings, report)
	if len(prepared) == 0 {
		return raw
	}

	doc := document.Parse(raw)
	runs := doc.Runs()
	if len(runs) == 0 {
		return raw
	}

	caps := newCapEnforcer(settings.EffectivePageCap())

	ranges := [][2]int{{0, len(runs)}}
	if settings.ChunkLongDocuments && len(raw) > settings.ChunkThreshold() {
		ranges = chunkRuns(runs, settings.ChunkThreshold())
	}

	// Chunks run strictly in document order against the shared enforcer, so
	// chunked and single-pass renders produce identical results.
	var injections []injection
	for _, rg := range ranges {
		injections = e.processRuns(runs, rg[0], rg[1], prepared, caps, settings, report, injections)
	}

	for _, p := range prepared {
		if !p.inserted && !p.capSkipped && p.rawMatches > 0 {
			report.addSkip(p.rule.ID, SkipNoEligibleMatches)
		}
	}

	if report.TotalLinks == 0 {
		return raw
	}
	for _, inj := range injections {
		if err := doc.Wrap(inj.runIndex, inj.spans); err != nil {
			e.log.Warn("span wrap failed", "run", inj.runIndex, "error", err)
		}
	}
	return doc.HTML()
}

// prepareRules compiles the set's active rules in order. Misconfigured rules
// are skipped with a reason; a panic while compiling one rule surfaces as an
// internal_error skip and never aborts the render.
func (e *Engine) prepareRules(set *rule.Set, settings config.Settings, report *Report) []*preparedRule {
	opts := match.Options{
		WordBoundaries: settings.PreferWordBoundaries,
		FoldAccents:    settings.NormalizeAccents,
	}

	var prepared []*preparedRule
	for i := range set.Rules {
		r := &set.Rules[i]
		if r.Status != rule.StatusActive {
			continue
		}
		p, reason := prepareRule(r, set, settings, opts)
		if reason != "" {
			e.log.Debug("rule skipped", "rule_id", r.ID, "reason", string(reason))
			report.addSkip(r.ID, reason)
			continue
		}
		prepared = append(prepared, p)
	}
	return prepared
}

func prepareRule(r *rule.Rule, set *rule.Set, settings config.Settings, opts match.Options) (p *preparedRule, reason SkipReason) {
	defer func() {
		if rec := recover(); rec != nil {
			p, reason = nil, SkipInternalError
		}
	}()

	keywords := r.CleanKeywords()
	if len(keywords) == 0 {
		return nil, SkipNoKeywords
	}

	href, err := utm.ResolveHref(r, set, settings.SiteURL)
	if err != nil {
		return nil, SkipDestinationUnresolved
	}

	m := match.New(keywords, opts)
	if m.Empty() {
		return nil, SkipNoKeywords
	}

	anchor := document.Anchor{Href: href}
	var rel []string
	if r.Attributes.Nofollow {
		rel = append(rel, "nofollow")
	}
	if r.Attributes.NewTab {
		anchor.Target = "_blank"
		rel = append(rel, "noopener")
	}
	anchor.Rel = strings.Join(rel, " ")

	return &preparedRule{rule: r, cat: set.Category(r.CategoryID), matcher: m, anchor: anchor}, ""
}

// processRuns scans runs [lo, hi) in document order. Per run, every rule's
// matches are gathered, merged by position with set order breaking ties, and
// admitted one by one through the cap enforcer. A claimed span blocks
// overlapping matches of later rules; a cap rejection leaves the span free
// for the next rule in order.
func (e *Engine) processRuns(runs []document.Run, lo, hi int, prepared []*preparedRule, caps *capEnforcer, settings config.Settings, report *Report, injections []injection) []injection {
	for ri := lo; ri < hi; ri++ {
		run := runs[ri]

		eligible := true
		if run.InsideAnchor && settings.AvoidExistingLinks {
			eligible = false
		}
		if !settings.HeadingAllowed(run.Heading) {
			eligible = false
		}

		var cands []candidate
		for _, p := range prepared {
			if p.dead {
				continue
			}
			spans, ok := safeFind(p.matcher, run.Text)
			if !ok {
				p.dead = true
				report.addSkip(p.rule.ID, SkipInternalError)
				e.log.Debug("rule skipped", "rule_id", p.rule.ID, "reason", string(SkipInternalError))
				continue
			}
			p.rawMatches += len(spans)
			if !eligible {
				continue
			}
			for _, s := range spans {
				cands = append(cands, candidate{start: s.Start, end: s.End, prep: p})
			}
		}
		if len(cands) == 0 {
			continue
		}

		// Document order first; at the same position the earlier rule in set
		// order wins (prepared preserves set order, so original index order
		// is priority order).
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].start < cands[j].start
		})

		var spans []document.Span
		next := 0
		for _, c := range cands {
			if c.start < next {
				continue
			}
			ok, reason := caps.admit(c.prep.rule, c.prep.cat)
			if !ok {
				c.prep.capSkipped = true
				report.addSkip(c.prep.rule.ID, reason)
				continue
			}
			c.prep.inserted = true
			report.recordLink(c.prep.rule.ID, c.prep.rule.CategoryID)
			spans = append(spans, document.Span{Start: c.start, End: c.end, Anchor: c.prep.anchor})
			next = c.end
		}
		if len(spans) > 0 {
			injections = append(injections, injection{runIndex: ri, spans: spans})
		}
	}
	return injections
}

// safeFind isolates a panic in one rule's matcher so a malformed rule cannot
// take down the whole render.
func safeFind(m *match.Matcher, text string) (spans []match.Span, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			spans, ok = nil, false
		}
	}()
	return m.Find(text), true
}
