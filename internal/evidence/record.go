// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence validates, merges, and persists citation evidence.
// Evidence travels between versions as a CSV table; validation annotates
// records without destroying them, and merging is deterministic so
// repeated runs over the same inputs produce identical output.
package evidence

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Base table columns. The validation report variant appends the
// annotation columns.
var (
	baseColumns       = []string{"doi", "citation_key", "citation", "evidence_quote", "source_version"}
	validationColumns = []string{"doi_status", "freshness", "action", "reason"}
)

// NormalizedDOI returns the record's DOI lowercased and trimmed, with any
// resolver URL prefix removed. Empty when the record has no DOI.
func NormalizedDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	return strings.ToLower(doi)
}

// DedupKey returns a record's deduplication identity: the normalized DOI
// when present, else the normalized citation key. The two namespaces are
// kept distinct so a citation key can never collide with a DOI.
func DedupKey(r types.EvidenceRecord) string {
	if d := NormalizedDOI(r.DOI); d != "" {
		return "doi:" + d
	}
	return "key:" + strings.ToLower(strings.TrimSpace(r.CitationKey))
}

// ReadTable reads an evidence CSV file. The base columns are required;
// annotation columns are read when present.
func ReadTable(path string) ([]types.EvidenceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening evidence table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading evidence header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"doi", "citation_key", "citation", "evidence_quote"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("evidence table %s missing required column %q", path, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.EvidenceRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading evidence row: %w", err)
		}
		records = append(records, types.EvidenceRecord{
			DOI:           field(row, "doi"),
			CitationKey:   field(row, "citation_key"),
			Citation:      field(row, "citation"),
			EvidenceQuote: field(row, "evidence_quote"),
			SourceVersion: field(row, "source_version"),
			DOIStatus:     types.DOIStatus(field(row, "doi_status")),
			Freshness:     types.Freshness(field(row, "freshness")),
			Action:        types.Action(field(row, "action")),
			Reason:        field(row, "reason"),
		})
	}
	return records, nil
}

// WriteTable writes the base evidence table.
func WriteTable(path string, records []types.EvidenceRecord) error {
	return writeCSV(path, baseColumns, records, func(r types.EvidenceRecord) []string {
		return []string{r.DOI, r.CitationKey, r.Citation, r.EvidenceQuote, r.SourceVersion}
	})
}

// WriteValidationReport writes the validation-report variant: base
// columns plus the annotation columns, one row per record.
func WriteValidationReport(path string, records []types.EvidenceRecord) error {
	header := append(append([]string{}, baseColumns...), validationColumns...)
	return writeCSV(path, header, records, func(r types.EvidenceRecord) []string {
		return []string{
			r.DOI, r.CitationKey, r.Citation, r.EvidenceQuote, r.SourceVersion,
			string(r.DOIStatus), string(r.Freshness), string(r.Action), r.Reason,
		}
	})
}

func writeCSV(path string, header []string, records []types.EvidenceRecord, row func(types.EvidenceRecord) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.CitationKey, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}
