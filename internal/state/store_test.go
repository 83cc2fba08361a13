// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

var testSections = []string{"abstract", "introduction", "methods", "results", "discussion"}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), types.StateConfig{})
}

func initTestStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	_, err := s.Init("proj", "/repo", testSections, false)
	require.NoError(t, err)
	return s
}

// completeThrough marks stages completed in order, up to and including
// last. Optional stages are skipped.
func completeThrough(t *testing.T, s *Store, last types.Stage) {
	t.Helper()
	for _, stage := range types.StageOrder {
		if types.OptionalStages[stage] {
			continue
		}
		if stage == types.StageDraft {
			for _, sec := range testSections {
				_, err := s.AddSectionCompleted(sec, sec+".md")
				require.NoError(t, err)
			}
		} else {
			_, err := s.UpdateStage(stage, types.StageCompleted, nil)
			require.NoError(t, err)
		}
		if stage == last {
			return
		}
	}
}

func TestInit(t *testing.T) {
	s := newTestStore(t)

	st, err := s.Init("proj", "/repo", testSections, false)
	require.NoError(t, err)
	assert.Equal(t, "proj", st.ProjectName)
	assert.Len(t, st.Stages, len(types.StageOrder))
	assert.Equal(t, len(testSections), st.TotalSections)
	assert.Equal(t, 0, st.CompletedSections)

	// Second init without overwrite fails.
	_, err = s.Init("proj", "/repo", testSections, false)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	// Overwrite resets the document.
	st, err = s.Init("proj2", "/repo", testSections, true)
	require.NoError(t, err)
	assert.Equal(t, "proj2", st.ProjectName)
}

func TestUpdateStageDependencyGate(t *testing.T) {
	s := initTestStore(t)

	// draft before plan is rejected, naming the missing predecessor.
	_, err := s.UpdateStage(types.StageDraft, types.StageInProgress, nil)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, types.StageDraft, depErr.Stage)
	assert.Equal(t, types.StageAnalysis, depErr.Missing)

	_, err = s.UpdateStage(types.StageAnalysis, types.StageCompleted, nil)
	require.NoError(t, err)

	_, err = s.UpdateStage(types.StageDraft, types.StageInProgress, nil)
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, types.StagePlan, depErr.Missing)

	// The rejected transition left the document untouched.
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, types.StageNotStarted, st.Stages[types.StageDraft].Status)
}

func TestUpdateStageSkipsOptionalAssess(t *testing.T) {
	s := initTestStore(t)
	for _, stage := range []types.Stage{types.StageAnalysis, types.StagePlan} {
		_, err := s.UpdateStage(stage, types.StageCompleted, nil)
		require.NoError(t, err)
	}

	// research is reachable with assess never entered.
	st, err := s.UpdateStage(types.StageResearch, types.StageInProgress, map[string]any{"papers_found": 12})
	require.NoError(t, err)
	assert.Equal(t, types.StageInProgress, st.Stages[types.StageResearch].Status)
	assert.EqualValues(t, 12, st.Stages[types.StageResearch].Metadata["papers_found"])
}

func TestUpdateStageUnknown(t *testing.T) {
	s := initTestStore(t)
	_, err := s.UpdateStage("typesetting", types.StageInProgress, nil)
	var unknownErr *UnknownStageError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestAddSectionCompleted(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StageResearch)

	st, err := s.AddSectionCompleted("methods", "methods.md")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CompletedSections)
	assert.Equal(t, types.StageInProgress, st.Stages[types.StageDraft].Status)

	for _, sec := range []string{"abstract", "introduction", "results", "discussion"} {
		st, err = s.AddSectionCompleted(sec, sec+".md")
		require.NoError(t, err)
	}
	assert.Equal(t, st.TotalSections, st.CompletedSections)
	assert.Equal(t, types.StageCompleted, st.Stages[types.StageDraft].Status)
}

func TestAddSectionCompletedDynamicSection(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StageResearch)

	st, err := s.AddSectionCompleted("availability", "availability.md")
	require.NoError(t, err)
	assert.Equal(t, len(testSections)+1, st.TotalSections)
	assert.Equal(t, 1, st.CompletedSections)
}

func TestCritiqueVersioningAndRevisionCycle(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StageAssembly)

	n, err := s.NextCritiqueVersion("full")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.AddCritiqueIteration(types.CritiqueIteration{Type: "full", Recommendation: "revise", MajorIssues: 2})
	require.NoError(t, err)
	_, err = s.AddCritiqueIteration(types.CritiqueIteration{Type: "statistical", Recommendation: "accept"})
	require.NoError(t, err)
	st, err := s.AddCritiqueIteration(types.CritiqueIteration{Type: "full", Recommendation: "accept"})
	require.NoError(t, err)

	// Versions count per type.
	assert.Equal(t, 1, st.CritiqueIterations[0].Version)
	assert.Equal(t, 1, st.CritiqueIterations[1].Version)
	assert.Equal(t, 2, st.CritiqueIterations[2].Version)

	// Revision cycle: draft is re-enterable after critique.
	_, err = s.AddSectionCompleted("methods", "methods_r2.md")
	require.NoError(t, err)
	_, err = s.UpdateStage(types.StageDraft, types.StageInProgress, nil)
	require.NoError(t, err)
}

func TestCritiqueBeforeAssembly(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StageResearch)

	_, err := s.AddCritiqueIteration(types.CritiqueIteration{Type: "full"})
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, types.StageDraft, depErr.Missing)
}

func TestSetTargetVenueLocksAfterAssembly(t *testing.T) {
	s := initTestStore(t)

	st, err := s.SetTargetVenue("bioinformatics")
	require.NoError(t, err)
	assert.Equal(t, "bioinformatics", st.TargetVenue)

	completeThrough(t, s, types.StageAssembly)

	_, err = s.SetTargetVenue("gigascience")
	assert.ErrorIs(t, err, ErrVenueLocked)
}

func TestLoadCorruptState(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"project_name": "p",`},
		{"missing project name", `{"stages": {}, "sections": {}}`},
		{"missing stages", `{"project_name": "p", "sections": {}}`},
		{"incomplete stages", `{"project_name": "p", "stages": {"plan": {"status": "not_started"}}, "sections": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, stateDirName), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, stateDirName, stateFileName), []byte(tt.content), 0o644))

			_, err := NewStore(dir, types.StateConfig{}).Load()
			assert.ErrorIs(t, err, ErrStateCorrupt)
		})
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StagePlan)

	entries, err := os.ReadDir(filepath.Join(s.dir, stateDirName))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{stateFileName, lockFileName}, names)
}

func TestConcurrentSectionCompletions(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StageResearch)

	// Concurrent subagents each completing a section must serialize
	// through the lock without losing updates.
	var wg sync.WaitGroup
	errs := make([]error, len(testSections))
	for i, sec := range testSections {
		wg.Add(1)
		go func(i int, sec string) {
			defer wg.Done()
			_, errs[i] = s.AddSectionCompleted(sec, sec+".md")
		}(i, sec)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, len(testSections), st.CompletedSections)
	assert.Equal(t, types.StageCompleted, st.Stages[types.StageDraft].Status)
}

func TestSummarize(t *testing.T) {
	s := initTestStore(t)
	completeThrough(t, s, types.StagePlan)
	_, err := s.SetTargetVenue("bioinformatics")
	require.NoError(t, err)

	st, err := s.Load()
	require.NoError(t, err)
	sum := Summarize(st)

	assert.Equal(t, types.StageResearch, sum.CurrentStage)
	assert.Equal(t, 2, sum.CompletedStages)
	assert.Equal(t, len(types.StageOrder)-1, sum.TotalStages) // assess is optional
	assert.Equal(t, "bioinformatics", sum.TargetVenue)
	assert.Len(t, sum.Stages, len(types.StageOrder))
}

func TestLoadBeforeInit(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStateCorrupt))
	assert.Contains(t, err.Error(), "init")
}
