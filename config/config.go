// Package config holds the engine settings snapshot. Settings are owned by
// the external configuration store; the engine reads them per invocation and
// uses Revision as part of the render cache key.
package config

import (
	"fmt"
	"os"
	"slices"

	"go.yaml.in/yaml/v2"
)

// Heading behaviors: whether matches inside h1-h6 are eligible.
const (
	// HeadingNone excludes all headings.
	HeadingNone = "none"
	// HeadingSelected allows only the levels listed in HeadingLevels.
	HeadingSelected = "selected"
	// HeadingAll allows every heading level.
	HeadingAll = "all"
)

const defaultChunkThreshold = 64 << 10

// Settings are the engine-wide knobs for one render.
type Settings struct {
	// Revision increases monotonically on every settings edit and feeds the
	// render cache key.
	Revision int64 `yaml:"revision" json:"revision"`

	// SiteURL is the site's own base URL, used to classify destinations as
	// internal or external for UTM templates.
	SiteURL string `yaml:"site_url" json:"site_url"`

	// MaxLinksPerPage caps total injected links per document. Zero means
	// unbounded.
	MaxLinksPerPage int `yaml:"max_links_per_page" json:"max_links_per_page"`

	// PageCapOverride is a per-invocation page cap supplied by the caller
	// (e.g. per-post metadata). The effective cap is the smaller of the two
	// nonzero values.
	PageCapOverride int `yaml:"-" json:"page_cap_override,omitempty"`

	// HeadingBehavior is one of HeadingNone, HeadingSelected, HeadingAll.
	HeadingBehavior string `yaml:"heading_behavior" json:"heading_behavior"`

	// HeadingLevels lists the allowed levels when HeadingBehavior is
	// HeadingSelected.
	HeadingLevels []int `yaml:"heading_levels" json:"heading_levels,omitempty"`

	AvoidExistingLinks   bool `yaml:"avoid_existing_links" json:"avoid_existing_links"`
	PreferWordBoundaries bool `yaml:"prefer_word_boundaries" json:"prefer_word_boundaries"`
	NormalizeAccents     bool `yaml:"normalize_accents" json:"normalize_accents"`
	CacheRenderedContent bool `yaml:"cache_rendered_content" json:"cache_rendered_content"`
	ChunkLongDocuments   bool `yaml:"chunk_long_documents" json:"chunk_long_documents"`

	// ChunkThresholdBytes is the raw-HTML size above which the chunker
	// engages. Zero selects the default of 64 KiB.
	ChunkThresholdBytes int `yaml:"chunk_threshold_bytes" json:"chunk_threshold_bytes,omitempty"`
}

// Default returns the recommended settings.
func Default() Settings {
	return Settings{
		HeadingBehavior:      HeadingNone,
		AvoidExistingLinks:   true,
		PreferWordBoundaries: true,
		CacheRenderedContent: true,
		ChunkLongDocuments:   true,
		ChunkThresholdBytes:  defaultChunkThreshold,
	}
}

// Load reads settings from a YAML file. Absent keys keep their defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	switch s.HeadingBehavior {
	case HeadingNone, HeadingSelected, HeadingAll, "":
	default:
		return fmt.Errorf("heading_behavior must be %q, %q, or %q", HeadingNone, HeadingSelected, HeadingAll)
	}
	for _, lvl := range s.HeadingLevels {
		if lvl < 1 || lvl > 6 {
			return fmt.Errorf("heading_levels: level %d out of range 1-6", lvl)
		}
	}
	if s.MaxLinksPerPage < 0 {
		return fmt.Errorf("max_links_per_page must be >= 0")
	}
	if s.ChunkThresholdBytes < 0 {
		return fmt.Errorf("chunk_threshold_bytes must be >= 0")
	}
	return nil
}

// HeadingAllowed reports whether a match inside a heading of the given level
// is eligible. Level zero (plain text) is always allowed.
func (s *Settings) HeadingAllowed(level int) bool {
	if level == 0 {
		return true
	}
	switch s.HeadingBehavior {
	case HeadingAll:
		return true
	case HeadingSelected:
		return slices.Contains(s.HeadingLevels, level)
	default:
		return false
	}
}

// EffectivePageCap merges the settings-level cap with the per-invocation
// override. Zero means unbounded.
func (s *Settings) EffectivePageCap() int {
	switch {
	case s.MaxLinksPerPage == 0:
		return s.PageCapOverride
	case s.PageCapOverride == 0:
		return s.MaxLinksPerPage
	case s.PageCapOverride < s.MaxLinksPerPage:
		return s.PageCapOverride
	default:
		return s.MaxLinksPerPage
	}
}

// ChunkThreshold returns the chunking threshold with the default applied.
func (s *Settings) ChunkThreshold() int {
	if s.ChunkThresholdBytes > 0 {
		return s.ChunkThresholdBytes
	}
	return defaultChunkThreshold
}
