// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// StageLine is one row of a progress summary, in pipeline order.
type StageLine struct {
	Stage    types.Stage
	Status   types.StageStatus
	Optional bool
}

// Summary is a point-in-time snapshot of workflow progress.
type Summary struct {
	ProjectName  string
	TargetVenue  string
	CurrentStage types.Stage

	Stages []StageLine

	CompletedStages int
	TotalStages     int

	SectionsCompleted int
	SectionsTotal     int

	CritiqueIterations int
}

// Summarize builds a progress summary from a state document. The current
// stage is the first stage in pipeline order that is in progress or not
// started, skipping optional stages that were never entered.
func Summarize(st *types.WorkflowState) Summary {
	sum := Summary{
		ProjectName:        st.ProjectName,
		TargetVenue:        st.TargetVenue,
		SectionsCompleted:  st.CompletedSections,
		SectionsTotal:      st.TotalSections,
		CritiqueIterations: len(st.CritiqueIterations),
	}

	current := types.Stage("")
	for _, stage := range types.StageOrder {
		ss := st.Stages[stage]
		optional := types.OptionalStages[stage]
		sum.Stages = append(sum.Stages, StageLine{Stage: stage, Status: ss.Status, Optional: optional})

		if !optional {
			sum.TotalStages++
			if ss.Status == types.StageCompleted {
				sum.CompletedStages++
			}
		}
		if current == "" && !optional && ss.Status != types.StageCompleted {
			current = stage
		}
	}
	if current == "" {
		current = types.StageCritique
	}
	sum.CurrentStage = current
	return sum
}
