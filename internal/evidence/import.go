// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Evidence artifact filenames within a version directory.
const (
	TableFile      = "literature_evidence.csv"
	ReportFile     = "literature_evidence_validation.csv"
	LiteratureFile = "literature.md"
	BibFile        = "literature_citations.bib"
)

// ImportResult summarizes an evidence import.
type ImportResult struct {
	SourceDir     string                  `json:"source_dir"`
	TargetDir     string                  `json:"target_dir"`
	Imported      int                     `json:"imported"`
	Excluded      int                     `json:"excluded"`
	Summary       types.ValidationSummary `json:"validation_summary"`
	FilesImported []string                `json:"files_imported"`
}

// DetectPreviousVersion finds the most recent sibling version directory
// whose research stage completed with papers found. It returns the
// directory and its state document, or empty when no candidate exists.
func DetectPreviousVersion(root, currentDir string) (string, *types.WorkflowState, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", root, err)
	}

	absCurrent, _ := filepath.Abs(currentDir)

	var bestDir string
	var best *types.WorkflowState
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if abs, _ := filepath.Abs(dir); abs == absCurrent {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, ".mswrite", "state.json"))
		if err != nil {
			continue
		}
		var st types.WorkflowState
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		research, ok := st.Stages[types.StageResearch]
		if !ok || research.Status != types.StageCompleted {
			continue
		}
		if papersFound(research) == 0 {
			continue
		}
		if best == nil || st.CreatedAt.After(best.CreatedAt) {
			bestDir, best = dir, &st
		}
	}
	return bestDir, best, nil
}

func papersFound(research *types.StageState) int {
	v, ok := research.Metadata["papers_found"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// Import validates the source version's evidence and carries the
// surviving records into the target directory as a starting set. Only
// records with action=remove (unresolvable DOIs) are excluded; everything
// else imports, review-flagged records included. The full validation
// report lands next to the imported table for auditing, and the BibTeX
// file is filtered to the surviving citation keys.
//
// A source directory missing a required artifact is a configuration
// error naming the missing file.
func Import(ctx context.Context, v *Validator, sourceDir, targetDir string, w io.Writer) (*ImportResult, error) {
	for _, name := range []string{TableFile, BibFile, LiteratureFile} {
		if _, err := os.Stat(filepath.Join(sourceDir, name)); err != nil {
			return nil, fmt.Errorf("source version %s is missing %s: complete the research stage there first", sourceDir, name)
		}
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	records, err := ReadTable(filepath.Join(sourceDir, TableFile))
	if err != nil {
		return nil, err
	}

	annotated, summary, err := v.Validate(ctx, records, w)
	if err != nil {
		return nil, err
	}

	sourceVersion := filepath.Base(sourceDir)
	var kept []types.EvidenceRecord
	for _, r := range annotated {
		if r.Action == types.ActionRemove {
			continue
		}
		if r.SourceVersion == "" {
			r.SourceVersion = sourceVersion
		}
		kept = append(kept, r)
	}

	if err := WriteTable(filepath.Join(targetDir, TableFile), kept); err != nil {
		return nil, err
	}
	if err := WriteValidationReport(filepath.Join(targetDir, ReportFile), annotated); err != nil {
		return nil, err
	}

	lit, err := os.ReadFile(filepath.Join(sourceDir, LiteratureFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", LiteratureFile, err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, LiteratureFile), lit, 0o644); err != nil {
		return nil, fmt.Errorf("copying %s: %w", LiteratureFile, err)
	}

	keys := make(map[string]bool, len(kept))
	for _, r := range kept {
		keys[r.CitationKey] = true
	}
	bib, err := os.ReadFile(filepath.Join(sourceDir, BibFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", BibFile, err)
	}
	filtered := FilterBibTeX(string(bib), keys)
	if err := os.WriteFile(filepath.Join(targetDir, BibFile), []byte(filtered), 0o644); err != nil {
		return nil, fmt.Errorf("writing filtered %s: %w", BibFile, err)
	}

	return &ImportResult{
		SourceDir:     sourceDir,
		TargetDir:     targetDir,
		Imported:      len(kept),
		Excluded:      len(annotated) - len(kept),
		Summary:       summary,
		FilesImported: []string{LiteratureFile, TableFile, BibFile},
	}, nil
}

// FilterBibTeX keeps only the entries whose citation key is in keys.
// Entries are recognized by their @type{key, opening line and a closing
// brace on its own line.
func FilterBibTeX(content string, keys map[string]bool) string {
	var out []string
	var entry []string
	inEntry := false

	flush := func() {
		if len(entry) == 0 {
			return
		}
		first := entry[0]
		if open := strings.Index(first, "{"); open >= 0 {
			key := strings.TrimSpace(strings.TrimSuffix(first[open+1:], ","))
			if comma := strings.Index(key, ","); comma >= 0 {
				key = strings.TrimSpace(key[:comma])
			}
			if keys[key] {
				out = append(out, strings.Join(entry, "\n"))
			}
		}
		entry = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "@") {
			flush()
			entry = []string{line}
			inEntry = true
			continue
		}
		if inEntry {
			entry = append(entry, line)
			if strings.TrimSpace(line) == "}" {
				flush()
				inEntry = false
			}
		}
	}
	flush()

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n\n") + "\n"
}
