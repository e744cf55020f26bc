// Package utm resolves the effective tracking-parameter template for a rule
// and merges it into the destination URL. Template precedence is rule
// override, then category default, then none.
package utm

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jhd3197/linkweaver/rule"
)

// ErrUnresolved marks a destination with no usable URL (e.g. a post that no
// longer exists). The rule is skipped for the whole document.
var ErrUnresolved = fmt.Errorf("destination unresolved")

// EffectiveTemplate returns the template governing the rule's links, or nil
// when no template applies. An inherit with no category (or a category with
// no default) resolves to nil, as does a dangling template reference.
func EffectiveTemplate(r *rule.Rule, set *rule.Set) *rule.UTMTemplate {
	switch r.UTM.Mode {
	case rule.UTMNone:
		return nil
	case rule.UTMTemplateRef:
		return set.Template(r.UTM.TemplateID)
	default: // inherit, including the zero value
		cat := set.Category(r.CategoryID)
		if cat == nil {
			return nil
		}
		return set.Template(cat.DefaultUTM)
	}
}

// ResolveHref produces the final href for a rule: the destination URL with
// the effective template's parameters merged in. Returns ErrUnresolved when
// the destination has no URL.
func ResolveHref(r *rule.Rule, set *rule.Set, siteURL string) (string, error) {
	dest := strings.TrimSpace(r.Destination.URL)
	if dest == "" {
		return "", ErrUnresolved
	}
	return Apply(dest, EffectiveTemplate(r, set), siteURL)
}

// Apply merges the template's parameters into dest per its append mode. A nil
// template, a locality mismatch, or append mode "never" returns dest
// untouched, byte for byte.
func Apply(dest string, tmpl *rule.UTMTemplate, siteURL string) (string, error) {
	if tmpl == nil || tmpl.Append == rule.NeverAppend {
		return dest, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return "", fmt.Errorf("invalid destination url %q: %w", dest, err)
	}

	if !localityMatches(u, tmpl.ApplyTo, siteURL) {
		return dest, nil
	}

	params := [...]struct{ name, value string }{
		{"utm_source", tmpl.Source},
		{"utm_medium", tmpl.Medium},
		{"utm_campaign", tmpl.Campaign},
	}

	q := u.Query()
	changed := false
	for _, p := range params {
		if p.value == "" {
			continue
		}
		if tmpl.Append == rule.AppendIfMissing && q.Has(p.name) {
			continue
		}
		q.Set(p.name, p.value)
		changed = true
	}
	if !changed {
		return dest, nil
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// localityMatches reports whether the template's apply_to scope covers the
// destination. Relative URLs are internal; otherwise the destination host is
// compared to the site's own host.
func localityMatches(dest *url.URL, scope rule.ApplyTo, siteURL string) bool {
	switch scope {
	case rule.ApplyBoth, "":
		return true
	}
	internal := dest.Host == ""
	if !internal && siteURL != "" {
		if site, err := url.Parse(siteURL); err == nil && site.Host != "" {
			internal = strings.EqualFold(dest.Host, site.Host)
		}
	}
	if scope == rule.ApplyInternal {
		return internal
	}
	return !internal
}
