// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FindingLevel classifies an assembly validation finding.
type FindingLevel string

const (
	// FindingWarning marks a soft violation (below a minimum, missing
	// required section, orphaned citation).
	FindingWarning FindingLevel = "warning"

	// FindingError marks a hard violation (above a maximum). Findings
	// never block manifest generation either way.
	FindingError FindingLevel = "error"
)

// Finding is one assembly validation issue.
type Finding struct {
	Level   FindingLevel `json:"level"`
	Section string       `json:"section,omitempty"`
	Message string       `json:"message"`
}

// SectionEntry records one included section in the manifest.
type SectionEntry struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	WordCount int    `json:"word_count"`
}

// AssemblyManifest is the report of one assembly run. It is regenerated on
// every run; rerunning with unchanged inputs reproduces it exactly except
// for AssembledAt.
type AssemblyManifest struct {
	AssembledAt time.Time `json:"assembled_at"`

	TargetVenue string `json:"target_venue"`

	// SectionsIncluded lists found sections in assembly order.
	SectionsIncluded []SectionEntry `json:"sections_included"`

	// SectionsMissing lists ordered sections with no artifact.
	SectionsMissing []string `json:"sections_missing"`

	// TotalWordCount equals the sum of SectionWordCounts exactly.
	TotalWordCount int `json:"total_word_count"`

	// SectionWordCounts maps section name to its word count.
	SectionWordCounts map[string]int `json:"section_word_counts"`

	// ValidationWarnings collects limit violations, missing required
	// sections, and orphaned citations.
	ValidationWarnings []Finding `json:"validation_warnings"`
}
