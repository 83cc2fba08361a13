// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate defines the port to the content engine that drafts
// manuscript sections. The engine itself is external; this package ships a
// deterministic stub for tests and dry runs.
package generate

import (
	"context"
	"fmt"
	"strings"
)

// SectionSpec describes one section to draft.
type SectionSpec struct {
	// Name is the canonical section name (e.g. "methods").
	Name string

	// Outline is the planned content of the section, one point per line.
	Outline []string

	// TargetWords is the venue's word budget for the section; zero means
	// no budget.
	TargetWords int
}

// Context carries the project-level inputs a generator may draw on.
type Context struct {
	ProjectName string
	TargetVenue string

	// EvidenceTable is the path to the version's evidence table, if any.
	EvidenceTable string
}

// Generator drafts one section. Implementations must be safe for
// sequential reuse across sections; they need not be safe for concurrent
// use.
type Generator interface {
	Generate(ctx context.Context, spec SectionSpec, pc Context) (string, error)
}

// StubGenerator produces a deterministic placeholder draft: a heading plus
// the outline points as prose stubs. Output depends only on the inputs.
type StubGenerator struct{}

// Generate renders the section skeleton. It never fails except on
// cancellation.
func (StubGenerator) Generate(ctx context.Context, spec SectionSpec, pc Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if spec.Name == "" {
		return "", fmt.Errorf("section name is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(spec.Name))
	if len(spec.Outline) == 0 {
		fmt.Fprintf(&b, "Draft pending for %s.\n", pc.ProjectName)
		return b.String(), nil
	}
	for _, point := range spec.Outline {
		fmt.Fprintf(&b, "%s.\n\n", strings.TrimRight(strings.TrimSpace(point), "."))
	}
	return b.String(), nil
}

// title converts a canonical section name to display form:
// "data_availability" becomes "Data Availability".
func title(name string) string {
	parts := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
