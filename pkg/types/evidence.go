// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DOIStatus is the outcome of a DOI existence check.
type DOIStatus string

const (
	// DOIValid means the identifier resolved (2xx).
	DOIValid DOIStatus = "valid"

	// DOIInvalid means the resolver returned 404.
	DOIInvalid DOIStatus = "invalid"

	// DOIUnknown covers timeouts, network errors, and other status codes.
	// Unknown is never grounds for removal.
	DOIUnknown DOIStatus = "unknown"
)

// Freshness classifies a citation's age. Freshness is a review signal
// only; it never implies removal on its own.
type Freshness string

const (
	FreshnessFresh Freshness = "fresh" // under 5 years
	FreshnessStale Freshness = "stale" // 5-10 years
	FreshnessOld   Freshness = "old"   // over 10 years
)

// Action is the validator's recommendation for a record.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionReview Action = "review"
	ActionRemove Action = "remove"
)

// EvidenceRecord is one citation with its supporting quote and validation
// annotations. DOI may be empty for preprint-style identifiers; the
// citation key is then the record's identity.
type EvidenceRecord struct {
	// DOI is the persistent identifier, empty when absent.
	DOI string `json:"doi" yaml:"doi"`

	// CitationKey is the inline citation label, unique within a version.
	CitationKey string `json:"citation_key" yaml:"citation_key"`

	// Citation is the display citation text (e.g. "Vaswani et al. (2017)").
	Citation string `json:"citation" yaml:"citation"`

	// EvidenceQuote is the supporting quotation extracted from the source.
	EvidenceQuote string `json:"evidence_quote" yaml:"evidence_quote"`

	// DOIStatus, Freshness, Action, and Reason are set by validation.
	DOIStatus DOIStatus `json:"doi_status,omitempty" yaml:"doi_status,omitempty"`
	Freshness Freshness `json:"freshness,omitempty" yaml:"freshness,omitempty"`
	Action    Action    `json:"action,omitempty" yaml:"action,omitempty"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`

	// SourceVersion records the version directory the record came from.
	SourceVersion string `json:"source_version,omitempty" yaml:"source_version,omitempty"`
}

// ValidationSummary aggregates a validation run.
type ValidationSummary struct {
	Total       int `json:"total"`
	Kept        int `json:"kept"`
	NeedsReview int `json:"needs_review"`
	ToRemove    int `json:"to_remove"`

	// Unchecked counts records whose DOI check did not complete
	// (missing DOI, timeout, or batch deadline).
	Unchecked int `json:"unchecked"`

	// ValidatedAt is when the run finished.
	ValidatedAt time.Time `json:"validated_at"`
}

// MergeStats accounts for every record passing through a merge. KeptOld +
// KeptNew is the output size; DuplicatesRemoved covers every skip.
type MergeStats struct {
	KeptOld           int `json:"kept_from_old"`
	KeptNew           int `json:"kept_from_new"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}
