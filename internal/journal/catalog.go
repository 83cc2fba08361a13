// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal loads venue profiles and scores manuscript outlines
// against them.
package journal

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Catalog holds the venue profiles from a guideline store, preserving
// their declared order for deterministic ranking tie-breaks.
type Catalog struct {
	profiles []types.JournalProfile
	byID     map[string]int
}

// catalogDoc mirrors the guideline file's top level.
type catalogDoc struct {
	Journals yaml.Node `yaml:"journals"`
}

// LoadCatalog reads a journal guideline YAML file. The journals key maps
// venue id to profile; declaration order is captured as each profile's
// CatalogOrder.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading journal catalog: %w", err)
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing journal catalog: %w", err)
	}
	if doc.Journals.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("journal catalog %s has no journals mapping", path)
	}

	c := &Catalog{byID: make(map[string]int)}
	// Mapping node content alternates key, value.
	for i := 0; i+1 < len(doc.Journals.Content); i += 2 {
		id := doc.Journals.Content[i].Value

		var p types.JournalProfile
		if err := doc.Journals.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing journal %q: %w", id, err)
		}
		p.ID = id
		if p.Name == "" {
			p.Name = id
		}
		p.CatalogOrder = len(c.profiles)

		c.byID[id] = len(c.profiles)
		c.profiles = append(c.profiles, p)
	}
	if len(c.profiles) == 0 {
		return nil, fmt.Errorf("journal catalog %s declares no journals", path)
	}
	return c, nil
}

// Get returns the profile for a venue id. An unknown id lists the
// available venues.
func (c *Catalog) Get(id string) (types.JournalProfile, error) {
	i, ok := c.byID[id]
	if !ok {
		ids := make([]string, 0, len(c.profiles))
		for _, p := range c.profiles {
			ids = append(ids, p.ID)
		}
		sort.Strings(ids)
		return types.JournalProfile{}, fmt.Errorf("journal %q not found in catalog (available: %s)", id, strings.Join(ids, ", "))
	}
	return c.profiles[i], nil
}

// Profiles returns all profiles in declared order.
func (c *Catalog) Profiles() []types.JournalProfile {
	out := make([]types.JournalProfile, len(c.profiles))
	copy(out, c.profiles)
	return out
}
