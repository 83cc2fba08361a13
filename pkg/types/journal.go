// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Limit bounds a word count. Zero means unbounded on that side.
type Limit struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// WordLimits holds a venue's declared word budgets.
type WordLimits struct {
	// Total bounds the whole manuscript.
	Total Limit `json:"total" yaml:"total"`

	// PerSection bounds individual sections by name.
	PerSection map[string]Limit `json:"per_section" yaml:"per_section"`
}

// JournalProfile is static reference data for one venue, loaded from the
// guideline catalog. The engine consumes profiles; producing them is out
// of scope.
type JournalProfile struct {
	// ID is the catalog key (e.g. "bioinformatics").
	ID string `json:"id" yaml:"id"`

	// Name is the venue's display name.
	Name string `json:"name" yaml:"name"`

	// RequiredSections lists sections the venue mandates, in order.
	RequiredSections []string `json:"required_sections" yaml:"required_sections"`

	// SectionOrder is the full assembly order, a superset of
	// RequiredSections.
	SectionOrder []string `json:"section_order" yaml:"section_order"`

	// WordLimits holds the venue's word budgets.
	WordLimits WordLimits `json:"word_limits" yaml:"word_limits"`

	// PositiveKeywords signal scope fit; NegativeKeywords signal misfit.
	PositiveKeywords []string `json:"positive_keywords" yaml:"positive_keywords"`
	NegativeKeywords []string `json:"negative_keywords" yaml:"negative_keywords"`

	// CatalogOrder is the profile's declared position in the source
	// catalog, used as the deterministic ranking tie-break.
	CatalogOrder int `json:"-" yaml:"-"`
}

// CompatibilityScore is the derived fit of an outline to a profile. It is
// reported, not persisted beyond the report.
type CompatibilityScore struct {
	JournalID   string `json:"journal"`
	JournalName string `json:"journal_name"`

	// KeywordScore, StructureScore, and Overall are each in [0,1].
	KeywordScore   float64 `json:"keyword_score"`
	StructureScore float64 `json:"structure_score"`
	Overall        float64 `json:"overall"`

	// Band is the reporting interpretation: excellent, good, moderate,
	// poor. It never drives control flow.
	Band string `json:"band"`

	// MatchedPositive and MatchedNegative list the keywords found.
	MatchedPositive []string `json:"matched_positive"`
	MatchedNegative []string `json:"matched_negative"`

	// UnmatchedPositive lists positive keywords absent from the outline.
	UnmatchedPositive []string `json:"unmatched_positive"`

	// MissingSections lists required sections absent from the outline.
	MissingSections []string `json:"missing_sections"`

	// Recommendations explain the score in prose.
	Recommendations []string `json:"recommendations,omitempty"`
}
