// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StageStatus tracks a workflow stage's progress.
type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Stage names the ordered phases of the manuscript pipeline.
type Stage string

const (
	StageAnalysis Stage = "analysis"
	StagePlan     Stage = "plan"
	StageAssess   Stage = "assess"
	StageResearch Stage = "research"
	StageDraft    Stage = "draft"
	StageAssembly Stage = "assembly"
	StageCritique Stage = "critique"
)

// StageOrder is the fixed pipeline order. A stage may only move to
// in_progress or completed once every non-optional predecessor is
// completed. Critique may be re-entered after assembly, cycling back
// to draft for revision.
var StageOrder = []Stage{
	StageAnalysis,
	StagePlan,
	StageAssess,
	StageResearch,
	StageDraft,
	StageAssembly,
	StageCritique,
}

// OptionalStages are skipped by the dependency gate when not completed.
var OptionalStages = map[Stage]bool{
	StageAssess: true,
}

// StageState holds one stage's status and bookkeeping.
type StageState struct {
	// Status is the stage's current progress.
	Status StageStatus `json:"status"`

	// Metadata holds stage-specific fields (papers found, scores, counts).
	Metadata map[string]any `json:"metadata,omitempty"`

	// FileRefs lists artifact paths produced by the stage.
	FileRefs []string `json:"file_refs,omitempty"`

	// StartedAt is set on the first transition to in_progress.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is set on transition to completed.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SectionState tracks one manuscript section under the draft stage.
type SectionState struct {
	// Status is the section's progress.
	Status StageStatus `json:"status"`

	// File is the section's artifact path, if drafted.
	File string `json:"file,omitempty"`

	// CompletedAt is set when the section completes.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CritiqueIteration records one critique pass. Critique is the only stage
// versioned independently: several iterations may follow one assembly.
type CritiqueIteration struct {
	// Type classifies the critique (e.g. "full", "statistical").
	Type string `json:"type"`

	// Version numbers iterations of the same type, starting at 1.
	Version int `json:"version"`

	// Recommendation is the critique outcome (e.g. "revise", "accept").
	Recommendation string `json:"recommendation,omitempty"`

	// MajorIssues counts blocking findings.
	MajorIssues int `json:"major_issues"`

	// MinorIssues counts non-blocking findings.
	MinorIssues int `json:"minor_issues"`

	// CreatedAt is when the iteration was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// WorkflowState is the persisted pipeline document, one per version
// directory. It lives for the life of the directory and is never deleted
// automatically.
type WorkflowState struct {
	// ProjectName identifies the project (used in {name}_vN directories).
	ProjectName string `json:"project_name"`

	// RepositoryPath is the research repository the manuscript describes.
	RepositoryPath string `json:"repository_path,omitempty"`

	// TargetVenue is the chosen journal id, mutable until assembly completes.
	TargetVenue string `json:"target_venue,omitempty"`

	// Stages maps stage name to its state.
	Stages map[Stage]*StageState `json:"stages"`

	// Sections maps section name to completion state, subordinate to draft.
	Sections map[string]*SectionState `json:"sections"`

	// CompletedSections and TotalSections roll up section progress.
	CompletedSections int `json:"completed_sections"`
	TotalSections     int `json:"total_sections"`

	// CritiqueIterations lists critique passes in recorded order.
	CritiqueIterations []CritiqueIteration `json:"critique_iterations"`

	// CreatedAt and UpdatedAt timestamp the document.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
