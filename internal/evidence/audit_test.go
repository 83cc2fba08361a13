// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

func TestLedgerRecordAndQuery(t *testing.T) {
	l, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	records := []types.EvidenceRecord{
		{DOI: "10.1/a", CitationKey: "a2020", DOIStatus: types.DOIValid, Freshness: types.FreshnessStale, Action: types.ActionReview, Reason: "published 6 years ago"},
		{CitationKey: "b2025", DOIStatus: types.DOIUnknown, Freshness: types.FreshnessFresh, Action: types.ActionKeep, Reason: "no DOI to check"},
	}
	summary := types.ValidationSummary{
		Total: 2, Kept: 1, NeedsReview: 1,
		Unchecked:   1,
		ValidatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	runID, err := l.RecordRun(ctx, summary, records)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	// A second run for the same key accumulates history.
	later := summary
	later.ValidatedAt = later.ValidatedAt.Add(time.Hour)
	records[0].Action = types.ActionKeep
	records[0].Reason = "reviewed and retained"
	_, err = l.RecordRun(ctx, later, records)
	require.NoError(t, err)

	runs, err := l.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].ValidatedAt.After(runs[1].ValidatedAt))
	assert.Equal(t, 2, runs[0].Total)

	history, err := l.History(ctx, "a2020")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, types.ActionKeep, history[0].Action)
	assert.Equal(t, types.ActionReview, history[1].Action)
}

func TestLedgerReopens(t *testing.T) {
	dir := t.TempDir()

	l, err := OpenLedger(dir)
	require.NoError(t, err)
	_, err = l.RecordRun(context.Background(), types.ValidationSummary{Total: 1, Kept: 1, ValidatedAt: time.Now()},
		[]types.EvidenceRecord{{CitationKey: "x2020", DOIStatus: types.DOIValid, Freshness: types.FreshnessFresh, Action: types.ActionKeep}})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l2, err := OpenLedger(dir)
	require.NoError(t, err)
	defer l2.Close()

	runs, err := l2.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
