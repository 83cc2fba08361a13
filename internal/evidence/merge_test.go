// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

func TestMergeIdentity(t *testing.T) {
	a := []types.EvidenceRecord{
		rec("10.1/a", "a2020", "A (2020)", "quote a"),
		rec("", "b2021", "B (2021)", "quote b"),
		rec("10.1/c", "c2022", "C (2022)", "quote c"),
	}

	out, stats := Merge(a, nil)
	assert.Equal(t, a, out)
	assert.Equal(t, types.MergeStats{KeptOld: 3}, stats)

	out, stats = Merge(nil, a)
	assert.Equal(t, a, out)
	assert.Equal(t, types.MergeStats{KeptNew: 3}, stats)
}

func TestMergeNewWinsWithNonEmptyQuote(t *testing.T) {
	oldSet := []types.EvidenceRecord{rec("10.1/a", "x2020", "X (2020)", "")}
	newSet := []types.EvidenceRecord{rec("10.1/a", "x2020b", "X (2020)", "new")}

	out, stats := Merge(oldSet, newSet)
	require.Len(t, out, 1)
	assert.Equal(t, "x2020b", out[0].CitationKey)
	assert.Equal(t, "new", out[0].EvidenceQuote)
	assert.Equal(t, types.MergeStats{KeptNew: 1, DuplicatesRemoved: 1}, stats)
}

func TestMergeOldSurvivesEmptyPlaceholder(t *testing.T) {
	oldSet := []types.EvidenceRecord{rec("10.1/a", "x2020", "X (2020)", "established quote")}
	newSet := []types.EvidenceRecord{rec("10.1/a", "x2020", "X (2020)", "")}

	out, stats := Merge(oldSet, newSet)
	require.Len(t, out, 1)
	assert.Equal(t, "established quote", out[0].EvidenceQuote)
	assert.Equal(t, types.MergeStats{KeptOld: 1, DuplicatesRemoved: 1}, stats)
}

func TestMergeOrderingIsDeterministic(t *testing.T) {
	oldSet := []types.EvidenceRecord{
		rec("10.1/a", "a2020", "A (2020)", "qa"),
		rec("10.1/b", "b2020", "B (2020)", "qb"),
		rec("10.1/c", "c2020", "C (2020)", "qc"),
	}
	newSet := []types.EvidenceRecord{
		rec("10.1/d", "d2024", "D (2024)", "qd"),
		rec("10.1/b", "b2024", "B (2024)", "qb fresh"),
		rec("10.1/e", "e2024", "E (2024)", "qe"),
	}

	out1, stats := Merge(oldSet, newSet)
	out2, _ := Merge(oldSet, newSet)
	assert.Equal(t, out1, out2)

	// Old order preserved with the winning new record in b's slot,
	// genuinely new records appended in their own order.
	var keys []string
	for _, r := range out1 {
		keys = append(keys, r.CitationKey)
	}
	assert.Equal(t, []string{"a2020", "b2024", "c2020", "d2024", "e2024"}, keys)
	assert.Equal(t, types.MergeStats{KeptOld: 2, KeptNew: 3, DuplicatesRemoved: 1}, stats)
}

func TestMergeDedupKeyFallsBackToCitationKey(t *testing.T) {
	// No DOI on either side: citation key is the identity.
	oldSet := []types.EvidenceRecord{rec("", "smith2019", "Smith (2019)", "old quote")}
	newSet := []types.EvidenceRecord{rec("", "Smith2019", "Smith (2019)", "new quote")}

	out, stats := Merge(oldSet, newSet)
	require.Len(t, out, 1)
	assert.Equal(t, "new quote", out[0].EvidenceQuote)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
}

func TestMergeDOINormalization(t *testing.T) {
	oldSet := []types.EvidenceRecord{rec("10.1/ABC", "a2020", "A (2020)", "q")}
	newSet := []types.EvidenceRecord{rec("https://doi.org/10.1/abc ", "a2024", "A (2024)", "q2")}

	out, _ := Merge(oldSet, newSet)
	require.Len(t, out, 1)
	assert.Equal(t, "a2024", out[0].CitationKey)
}

func TestMergeAccountsForEveryRecord(t *testing.T) {
	oldSet := []types.EvidenceRecord{
		rec("10.1/a", "a", "A (2020)", "q"),
		rec("10.1/a", "a-dup", "A (2020)", "q"), // internal duplicate
		rec("10.1/b", "b", "B (2020)", "q"),
	}
	newSet := []types.EvidenceRecord{
		rec("10.1/b", "b-new", "B (2024)", "q2"),
		rec("10.1/f", "f", "F (2024)", "q"),
	}

	out, stats := Merge(oldSet, newSet)
	assert.Equal(t, len(oldSet)+len(newSet), len(out)+stats.DuplicatesRemoved)
	assert.Equal(t, stats.KeptOld+stats.KeptNew, len(out))
}
