package engine

import "github.com/jhd3197/linkweaver/rule"

// capEnforcer tracks how many links have been placed during one document
// pass. It is created fresh per render and, when chunking is active, shared
// across all chunks so page, rule, and category budgets stay globally
// correct. A zero cap at any scope means unbounded.
type capEnforcer struct {
	pageCap     int
	total       int
	perRule     map[int64]int
	perCategory map[int64]int
}

func newCapEnforcer(pageCap int) *capEnforcer {
	return &capEnforcer{
		pageCap:     pageCap,
		perRule:     make(map[int64]int),
		perCategory: make(map[int64]int),
	}
}

// admit decides whether the rule may place one more link, checking page,
// rule, and category budgets in that order. On acceptance all counters are
// incremented; on rejection the first exhausted scope is reported.
func (c *capEnforcer) admit(r *rule.Rule, cat *rule.Category) (bool, SkipReason) {
	if c.pageCap > 0 && c.total >= c.pageCap {
		return false, SkipPageCap
	}
	if r.Limits.MaxPerPage > 0 && c.perRule[r.ID] >= r.Limits.MaxPerPage {
		return false, SkipRuleCap
	}
	if cat != nil && cat.Cap > 0 && c.perCategory[cat.ID] >= cat.Cap {
		return false, SkipCategoryCap
	}

	c.total++
	c.perRule[r.ID]++
	if cat != nil {
		c.perCategory[cat.ID]++
	}
	return true, ""
}
