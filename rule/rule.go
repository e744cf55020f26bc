// Package rule defines the linking rule model consumed by the engine: rules,
// categories, UTM templates, and the versioned set that groups them. The types
// mirror the shapes persisted by the admin configuration store and arrive as
// immutable snapshots; the engine never mutates them.
package rule

import (
	"fmt"
	"strings"
)

// Status controls whether a rule participates in rendering.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// DestinationKind distinguishes rules that link to a site post from rules that
// link to an arbitrary URL.
type DestinationKind string

const (
	DestinationPost DestinationKind = "post"
	DestinationURL  DestinationKind = "url"
)

// Destination is where a rule's links point. For DestinationPost the caller
// resolves the post ID to a permalink before rendering and stores it in URL;
// an empty URL is the explicit unresolved marker and skips the rule.
type Destination struct {
	Kind   DestinationKind `json:"kind"`
	PostID int64           `json:"post_id,omitempty"`
	URL    string          `json:"url,omitempty"`
}

// UTMMode selects how a rule's tracking template is determined.
type UTMMode string

const (
	// UTMInherit falls through to the owning category's default template.
	UTMInherit UTMMode = "inherit"
	// UTMNone disables tracking parameters for the rule.
	UTMNone UTMMode = "none"
	// UTMTemplateRef pins the rule to a specific template.
	UTMTemplateRef UTMMode = "template"
)

// UTM is a rule's tracking-template selection.
type UTM struct {
	Mode       UTMMode `json:"mode"`
	TemplateID int64   `json:"template_id,omitempty"`
}

// Attributes are the anchor attributes applied to injected links.
type Attributes struct {
	Nofollow bool `json:"nofollow"`
	NewTab   bool `json:"new_tab"`
}

// Limits caps how often a single rule may link within one document.
type Limits struct {
	// MaxPerPage is the per-document link budget for the rule. Zero means
	// unbounded.
	MaxPerPage int `json:"max_per_page"`
}

// Rule maps an ordered keyword list to one destination with link attributes
// and a per-page budget.
type Rule struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	CategoryID  int64       `json:"category_id,omitempty"`
	Keywords    []string    `json:"keywords"`
	Destination Destination `json:"destination"`
	UTM         UTM         `json:"utm"`
	Attributes  Attributes  `json:"attributes"`
	Limits      Limits      `json:"limits"`
	Status      Status      `json:"status"`
}

// CleanKeywords returns the rule's keywords with surrounding whitespace
// trimmed and empty entries dropped, preserving order.
func (r *Rule) CleanKeywords() []string {
	cleaned := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return cleaned
}

// Validate checks the rule for configuration errors.
func (r *Rule) Validate() error {
	if len(r.CleanKeywords()) == 0 {
		return fmt.Errorf("rule %d: at least one keyword required", r.ID)
	}
	switch r.Destination.Kind {
	case DestinationPost, DestinationURL:
	default:
		return fmt.Errorf("rule %d: destination kind must be %q or %q", r.ID, DestinationPost, DestinationURL)
	}
	switch r.UTM.Mode {
	case UTMInherit, UTMNone, UTMTemplateRef, "":
	default:
		return fmt.Errorf("rule %d: utm mode must be %q, %q, or %q", r.ID, UTMInherit, UTMNone, UTMTemplateRef)
	}
	if r.UTM.Mode == UTMTemplateRef && r.UTM.TemplateID == 0 {
		return fmt.Errorf("rule %d: utm mode %q requires a template id", r.ID, UTMTemplateRef)
	}
	if r.Limits.MaxPerPage < 0 {
		return fmt.Errorf("rule %d: max_per_page must be >= 0", r.ID)
	}
	return nil
}

// Category groups rules sharing a default UTM template and an aggregate cap.
type Category struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	DefaultUTM int64  `json:"default_utm,omitempty"`
	// Cap is the aggregate per-document link budget for the whole category.
	// Zero means unbounded.
	Cap int `json:"category_cap"`
}

// ApplyTo restricts which destinations a template decorates, based on whether
// the destination host is the site's own host.
type ApplyTo string

const (
	ApplyInternal ApplyTo = "internal"
	ApplyExternal ApplyTo = "external"
	ApplyBoth     ApplyTo = "both"
)

// AppendMode controls how template parameters merge into a destination's
// existing query string.
type AppendMode string

const (
	AppendIfMissing AppendMode = "append_if_missing"
	AlwaysOverwrite AppendMode = "always_overwrite"
	NeverAppend     AppendMode = "never"
)

// UTMTemplate is a reusable set of tracking query parameters plus a merge
// policy.
type UTMTemplate struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Source   string     `json:"utm_source,omitempty"`
	Medium   string     `json:"utm_medium,omitempty"`
	Campaign string     `json:"utm_campaign,omitempty"`
	ApplyTo  ApplyTo    `json:"apply_to"`
	Append   AppendMode `json:"append_mode"`
}

// Validate checks the template for configuration errors.
func (t *UTMTemplate) Validate() error {
	switch t.ApplyTo {
	case ApplyInternal, ApplyExternal, ApplyBoth, "":
	default:
		return fmt.Errorf("template %d: apply_to must be %q, %q, or %q", t.ID, ApplyInternal, ApplyExternal, ApplyBoth)
	}
	switch t.Append {
	case AppendIfMissing, AlwaysOverwrite, NeverAppend, "":
	default:
		return fmt.Errorf("template %d: append_mode must be %q, %q, or %q", t.ID, AppendIfMissing, AlwaysOverwrite, NeverAppend)
	}
	return nil
}
