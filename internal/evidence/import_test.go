// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// writeVersionDir creates a sibling version directory with a state
// document whose research stage has the given status and paper count.
func writeVersionDir(t *testing.T, root, name string, researchDone bool, papers int, createdAt time.Time) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".mswrite"), 0o755))

	status := types.StageNotStarted
	if researchDone {
		status = types.StageCompleted
	}
	st := types.WorkflowState{
		ProjectName: "proj",
		Stages: map[types.Stage]*types.StageState{
			types.StageResearch: {
				Status:   status,
				Metadata: map[string]any{"papers_found": papers},
			},
		},
		Sections:  map[string]*types.SectionState{},
		CreatedAt: createdAt,
	}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mswrite", "state.json"), data, 0o644))
	return dir
}

func TestDetectPreviousVersion(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeVersionDir(t, root, "proj_v1", true, 10, base)
	v2 := writeVersionDir(t, root, "proj_v2", true, 14, base.AddDate(0, 2, 0))
	writeVersionDir(t, root, "proj_v3", false, 0, base.AddDate(0, 4, 0))         // research incomplete
	writeVersionDir(t, root, "proj_v4", true, 0, base.AddDate(0, 5, 0))          // no papers
	current := writeVersionDir(t, root, "proj_v5", true, 99, base.AddDate(0, 6, 0)) // current, skipped

	dir, st, err := DetectPreviousVersion(root, current)
	require.NoError(t, err)
	assert.Equal(t, v2, dir)
	require.NotNil(t, st)
	assert.Equal(t, types.StageCompleted, st.Stages[types.StageResearch].Status)
}

func TestDetectPreviousVersionNone(t *testing.T) {
	root := t.TempDir()
	current := writeVersionDir(t, root, "proj_v1", true, 5, time.Now())

	dir, st, err := DetectPreviousVersion(root, current)
	require.NoError(t, err)
	assert.Empty(t, dir)
	assert.Nil(t, st)
}

func writeSourceEvidence(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	records := []types.EvidenceRecord{
		rec("10.1/ok", "keep2025", "Keep et al. (2025)", "kept quote"),
		rec("10.1/gone", "gone2020", "Gone et al. (2020)", "doomed quote"),
		rec("10.1/ok", "old2008", "Old et al. (2008)", "aging quote"),
	}
	require.NoError(t, WriteTable(filepath.Join(dir, TableFile), records))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LiteratureFile), []byte("# Literature\n"), 0o644))
	bib := "@article{keep2025,\n  title = {K},\n}\n\n@article{gone2020,\n  title = {G},\n}\n\n@article{old2008,\n  title = {O},\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, BibFile), []byte(bib), 0o644))
}

func TestImport(t *testing.T) {
	v := newTestValidator(t, types.ValidationConfig{})
	root := t.TempDir()
	source := filepath.Join(root, "proj_v1")
	target := filepath.Join(root, "proj_v2")
	writeSourceEvidence(t, source)

	result, err := Import(context.Background(), v, source, target, io.Discard)
	require.NoError(t, err)

	// The invalid DOI is excluded; the review-flagged old paper is kept.
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Excluded)
	assert.Equal(t, 1, result.Summary.ToRemove)
	assert.Equal(t, 1, result.Summary.NeedsReview)

	imported, err := ReadTable(filepath.Join(target, TableFile))
	require.NoError(t, err)
	require.Len(t, imported, 2)
	for _, r := range imported {
		assert.Equal(t, "proj_v1", r.SourceVersion)
		assert.NotEqual(t, "gone2020", r.CitationKey)
	}

	// The full report keeps all three rows for auditing.
	report, err := ReadTable(filepath.Join(target, ReportFile))
	require.NoError(t, err)
	assert.Len(t, report, 3)

	// BibTeX is filtered to surviving keys.
	bib, err := os.ReadFile(filepath.Join(target, BibFile))
	require.NoError(t, err)
	assert.Contains(t, string(bib), "keep2025")
	assert.NotContains(t, string(bib), "gone2020")

	_, err = os.Stat(filepath.Join(target, LiteratureFile))
	assert.NoError(t, err)
}

func TestImportMissingArtifact(t *testing.T) {
	v := newTestValidator(t, types.ValidationConfig{})
	root := t.TempDir()
	source := filepath.Join(root, "proj_v1")
	require.NoError(t, os.MkdirAll(source, 0o755))
	// Only the table exists; the bib and literature files are missing.
	require.NoError(t, WriteTable(filepath.Join(source, TableFile), nil))

	_, err := Import(context.Background(), v, source, filepath.Join(root, "proj_v2"), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), BibFile)
	assert.Contains(t, err.Error(), "research")
}
