// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Merge combines a previously validated "old" set with a freshly
// discovered "new" set into one deduplicated, provenance-tagged set.
//
// Identity is the dedup key (DOI-primary, citation-key fallback). When
// both sides share a key, the new record wins if its evidence quote is
// non-empty, since a freshly verified quote supersedes the old one;
// otherwise the old record survives rather than losing content to an
// empty placeholder. A winning new record takes the old record's position, and
// genuinely new records follow in their own input order, so repeated
// merges of the same inputs produce byte-identical ordering.
//
// Merge never invents records and never drops one silently: the output
// size plus DuplicatesRemoved always equals the two input sizes combined.
func Merge(oldSet, newSet []types.EvidenceRecord) ([]types.EvidenceRecord, types.MergeStats) {
	var stats types.MergeStats

	// Deduplicate within each side first, keeping first occurrences.
	oldSet, dupOld := dedupeWithin(oldSet)
	newSet, dupNew := dedupeWithin(newSet)
	stats.DuplicatesRemoved = dupOld + dupNew

	newByKey := make(map[string]int, len(newSet))
	for i, r := range newSet {
		newByKey[DedupKey(r)] = i
	}

	var out []types.EvidenceRecord
	superseded := make(map[int]bool, len(newSet))

	for _, old := range oldSet {
		if i, ok := newByKey[DedupKey(old)]; ok {
			stats.DuplicatesRemoved++
			if newSet[i].EvidenceQuote != "" {
				// New record replaces the old one in place.
				out = append(out, newSet[i])
				superseded[i] = true
				stats.KeptNew++
				continue
			}
			// Empty placeholder on the new side: old survives.
			superseded[i] = true
		}
		out = append(out, old)
		stats.KeptOld++
	}

	for i, r := range newSet {
		if superseded[i] {
			continue
		}
		out = append(out, r)
		stats.KeptNew++
	}
	return out, stats
}

// dedupeWithin removes same-key duplicates inside one set, keeping the
// first occurrence, and reports how many were dropped.
func dedupeWithin(records []types.EvidenceRecord) ([]types.EvidenceRecord, int) {
	seen := make(map[string]bool, len(records))
	out := records[:0:0]
	dropped := 0
	for _, r := range records {
		key := DedupKey(r)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out, dropped
}
