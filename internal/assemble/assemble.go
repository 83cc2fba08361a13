// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble concatenates drafted section files into a manuscript in
// venue order, counts words, and validates the counts against the venue's
// declared limits. Validation never blocks assembly; violations are
// collected into the manifest for a human to act on.
package assemble

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// defaultSectionOrder covers assembly when the venue profile declares no
// section order of its own.
var defaultSectionOrder = []string{
	"abstract",
	"introduction",
	"methods",
	"results",
	"discussion",
	"conclusion",
	"data_availability",
	"code_availability",
	"acknowledgements",
	"funding",
	"references",
}

// sectionVariants maps a canonical section name to the file-name variants
// that may hold its content.
var sectionVariants = map[string][]string{
	"methods":           {"materials_and_methods", "experimental_procedures"},
	"data_availability": {"availability", "availability_and_requirements"},
	"code_availability": {"software_availability"},
	"acknowledgements":  {"acknowledgments"},
	"references":        {"bibliography"},
}

var (
	headerMarkup   = regexp.MustCompile(`#+\s+`)
	citationMarkup = regexp.MustCompile(`\[.*?\]`)
	inlineMarkup   = regexp.MustCompile(`\*\*|\*|__|_`)
)

// CountWords tokenizes section text on whitespace after stripping heading
// markers, bracketed citations, and inline emphasis markup. Structural
// markup never counts toward a venue's word budget.
func CountWords(text string) int {
	text = headerMarkup.ReplaceAllString(text, "")
	text = citationMarkup.ReplaceAllString(text, "")
	text = inlineMarkup.ReplaceAllString(text, "")
	return len(strings.Fields(text))
}

// Assembler builds a manuscript from the section files in one version
// directory.
type Assembler struct {
	dir string
	cfg types.AssemblyConfig
	now func() time.Time
}

// NewAssembler creates an assembler for a version directory.
func NewAssembler(dir string, cfg types.AssemblyConfig) *Assembler {
	def := types.DefaultEngineConfig().Assembly
	if cfg.OutputFile == "" {
		cfg.OutputFile = def.OutputFile
	}
	if cfg.ManifestFile == "" {
		cfg.ManifestFile = def.ManifestFile
	}
	return &Assembler{dir: dir, cfg: cfg, now: time.Now}
}

// Assemble walks the venue's section order, concatenates every section
// artifact it finds into the output manuscript, and writes the manifest.
// Missing sections and limit violations are recorded, not fatal. Progress
// goes to w.
func (a *Assembler) Assemble(profile types.JournalProfile, w io.Writer) (*types.AssemblyManifest, error) {
	order := sectionOrder(profile)

	manifest := &types.AssemblyManifest{
		AssembledAt:        a.now().UTC(),
		TargetVenue:        profile.ID,
		SectionsIncluded:   []types.SectionEntry{},
		SectionsMissing:    []string{},
		SectionWordCounts:  map[string]int{},
		ValidationWarnings: []types.Finding{},
	}

	required := make(map[string]bool, len(profile.RequiredSections))
	for _, s := range profile.RequiredSections {
		required[normalizeSection(s)] = true
	}

	var body strings.Builder
	for _, name := range order {
		path, ok := a.findSectionFile(name)
		if !ok {
			fmt.Fprintf(w, "Missing: %s\n", name)
			manifest.SectionsMissing = append(manifest.SectionsMissing, name)
			if required[name] {
				manifest.ValidationWarnings = append(manifest.ValidationWarnings, types.Finding{
					Level:   types.FindingWarning,
					Section: name,
					Message: "required section missing",
				})
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading section %s: %w", filepath.Base(path), err)
		}
		count := CountWords(string(data))
		fmt.Fprintf(w, "Found: %s (%s, %d words)\n", name, filepath.Base(path), count)

		body.WriteString(fmt.Sprintf("\n\n<!-- Section: %s -->\n\n", name))
		body.Write(data)

		manifest.SectionsIncluded = append(manifest.SectionsIncluded, types.SectionEntry{
			Name:      name,
			File:      filepath.Base(path),
			WordCount: count,
		})
		manifest.SectionWordCounts[name] = count
		manifest.TotalWordCount += count
	}

	a.validateLimits(profile, manifest)

	if findings, err := CheckCitations(a.dir, manifest.SectionsIncluded); err == nil {
		manifest.ValidationWarnings = append(manifest.ValidationWarnings, findings...)
	} else {
		fmt.Fprintf(w, "Citation check skipped: %v\n", err)
	}

	if err := a.writeManuscript(profile, manifest, body.String()); err != nil {
		return nil, err
	}
	if err := a.writeManifest(manifest); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Assembled %d sections, %d missing, %d words total\n",
		len(manifest.SectionsIncluded), len(manifest.SectionsMissing), manifest.TotalWordCount)
	return manifest, nil
}

// validateLimits checks the total and per-section counts against the
// venue's word budgets. Below a declared minimum is a warning; above a
// declared maximum is an error. Zero bounds are unbounded.
func (a *Assembler) validateLimits(profile types.JournalProfile, manifest *types.AssemblyManifest) {
	total := profile.WordLimits.Total
	if total.Min > 0 && manifest.TotalWordCount < total.Min {
		manifest.ValidationWarnings = append(manifest.ValidationWarnings, types.Finding{
			Level:   types.FindingWarning,
			Message: fmt.Sprintf("total word count %d below minimum %d", manifest.TotalWordCount, total.Min),
		})
	}
	if total.Max > 0 && manifest.TotalWordCount > total.Max {
		manifest.ValidationWarnings = append(manifest.ValidationWarnings, types.Finding{
			Level:   types.FindingError,
			Message: fmt.Sprintf("total word count %d exceeds maximum %d", manifest.TotalWordCount, total.Max),
		})
	}

	// Walk inclusion order, not the counts map, so findings come out in a
	// stable order.
	for _, entry := range manifest.SectionsIncluded {
		limit, ok := profile.WordLimits.PerSection[entry.Name]
		if !ok {
			continue
		}
		if limit.Min > 0 && entry.WordCount < limit.Min {
			manifest.ValidationWarnings = append(manifest.ValidationWarnings, types.Finding{
				Level:   types.FindingWarning,
				Section: entry.Name,
				Message: fmt.Sprintf("%d words below minimum %d", entry.WordCount, limit.Min),
			})
		}
		if limit.Max > 0 && entry.WordCount > limit.Max {
			manifest.ValidationWarnings = append(manifest.ValidationWarnings, types.Finding{
				Level:   types.FindingError,
				Section: entry.Name,
				Message: fmt.Sprintf("%d words exceeds maximum %d", entry.WordCount, limit.Max),
			})
		}
	}
}

// writeManuscript writes the header plus concatenated sections.
func (a *Assembler) writeManuscript(profile types.JournalProfile, manifest *types.AssemblyManifest, body string) error {
	venue := profile.Name
	if venue == "" {
		venue = "not specified"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "**Target Journal**: %s\n", venue)
	fmt.Fprintf(&out, "**Assembled**: %s\n", manifest.AssembledAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&out, "**Total Word Count**: %d words\n", manifest.TotalWordCount)
	out.WriteString("\n---\n")
	out.WriteString(body)

	path := filepath.Join(a.dir, a.cfg.OutputFile)
	if err := os.WriteFile(path, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("writing manuscript: %w", err)
	}
	return nil
}

func (a *Assembler) writeManifest(manifest *types.AssemblyManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(a.dir, a.cfg.ManifestFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// findSectionFile locates the artifact for a section, trying the canonical
// name and its known variants.
func (a *Assembler) findSectionFile(name string) (string, bool) {
	candidates := []string{
		name + ".md",
		strings.ReplaceAll(name, "_", "-") + ".md",
	}
	for _, variant := range sectionVariants[name] {
		candidates = append(candidates, variant+".md")
	}

	for _, c := range candidates {
		path := filepath.Join(a.dir, c)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// sectionOrder returns the venue's declared order normalized to file-name
// form, or the default order when the profile declares none.
func sectionOrder(profile types.JournalProfile) []string {
	if len(profile.SectionOrder) == 0 {
		return defaultSectionOrder
	}
	order := make([]string, len(profile.SectionOrder))
	for i, s := range profile.SectionOrder {
		order[i] = normalizeSection(s)
	}
	return order
}

func normalizeSection(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
