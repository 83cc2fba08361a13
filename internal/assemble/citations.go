// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/manuscript-engine/internal/evidence"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// bibEntryPattern matches a BibTeX entry opener: @article{Key2020,
var bibEntryPattern = regexp.MustCompile(`^\s*@\w+\{([^,\s]+)\s*,`)

// CheckCitations scans the included section files for inline citation
// keys that the version's BibTeX file does not define. Each orphaned key
// becomes a warning finding; a manuscript with unresolvable citations
// still assembles.
func CheckCitations(dir string, included []types.SectionEntry) ([]types.Finding, error) {
	known, err := bibKeys(filepath.Join(dir, evidence.BibFile))
	if err != nil {
		return nil, err
	}

	orphanSections := make(map[string][]string)
	var orphans []string
	for _, entry := range included {
		data, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.File, err)
		}
		for _, key := range extractCitationKeys(string(data)) {
			if known[key] {
				continue
			}
			if len(orphanSections[key]) == 0 {
				orphans = append(orphans, key)
			}
			if !contains(orphanSections[key], entry.Name) {
				orphanSections[key] = append(orphanSections[key], entry.Name)
			}
		}
	}

	sort.Strings(orphans)
	findings := make([]types.Finding, 0, len(orphans))
	for _, key := range orphans {
		findings = append(findings, types.Finding{
			Level:   types.FindingWarning,
			Section: strings.Join(orphanSections[key], ", "),
			Message: fmt.Sprintf("citation %q has no bibliography entry", key),
		})
	}
	return findings, nil
}

// bibKeys parses the citation keys declared in a BibTeX file.
func bibKeys(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	keys := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if m := bibEntryPattern.FindStringSubmatch(line); m != nil {
			keys[m[1]] = true
		}
	}
	return keys, nil
}

// extractCitationKeys finds citation keys in section text, handling both
// single citations [Key] and multi-citations [Key1; Key2].
func extractCitationKeys(text string) []string {
	var keys []string
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], ";") {
			key := strings.TrimSpace(part)
			if key != "" && isCitationKey(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// isCitationKey reports whether a string looks like an AuthorYear citation
// key rather than a Markdown link or other bracket content. Keys are
// alphanumeric with optional hyphens or underscores and carry at least one
// letter and one digit.
func isCitationKey(s string) bool {
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
