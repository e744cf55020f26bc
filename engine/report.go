package engine

// SkipReason explains why a rule (or one of its match candidates) did not
// produce a link.
type SkipReason string

const (
	// SkipNoKeywords marks a rule whose keyword list is empty after cleanup.
	SkipNoKeywords SkipReason = "no_keywords"
	// SkipDestinationUnresolved marks a rule whose destination has no URL.
	SkipDestinationUnresolved SkipReason = "destination_unresolved"
	// SkipRuleCap marks a candidate rejected by the rule's per-page budget.
	SkipRuleCap SkipReason = "rule_cap"
	// SkipCategoryCap marks a candidate rejected by the category's budget.
	SkipCategoryCap SkipReason = "category_cap"
	// SkipPageCap marks a candidate rejected by the page-wide budget.
	SkipPageCap SkipReason = "page_cap"
	// SkipNoEligibleMatches marks a rule that matched somewhere but every
	// occurrence was filtered by context (headings, existing anchors) or
	// claimed by an earlier rule.
	SkipNoEligibleMatches SkipReason = "no_eligible_matches"
	// SkipInternalError marks a rule whose processing panicked; the render
	// continues without it.
	SkipInternalError SkipReason = "internal_error"
)

// Skip is one skipped-rule entry in the report.
type Skip struct {
	RuleID int64      `json:"rule_id"`
	Reason SkipReason `json:"reason"`
}

// Report is the diagnostic summary of one render: how many links went in,
// where, and why the rest did not.
type Report struct {
	TotalLinks  int           `json:"total_links_inserted"`
	PerRule     map[int64]int `json:"per_rule"`
	PerCategory map[int64]int `json:"per_category"`
	Skipped     []Skip        `json:"skipped,omitempty"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		PerRule:     make(map[int64]int),
		PerCategory: make(map[int64]int),
	}
}

func (r *Report) addSkip(ruleID int64, reason SkipReason) {
	r.Skipped = append(r.Skipped, Skip{RuleID: ruleID, Reason: reason})
}

func (r *Report) recordLink(ruleID, categoryID int64) {
	r.TotalLinks++
	r.PerRule[ruleID]++
	if categoryID != 0 {
		r.PerCategory[categoryID]++
	}
}
