// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Scorer computes outline/venue compatibility. Weights and bands come
// from configuration; they are catalog conventions, not derived values.
type Scorer struct {
	cfg types.ScoringConfig
}

// NewScorer builds a scorer. Zero config fields fall back to the
// documented defaults.
func NewScorer(cfg types.ScoringConfig) *Scorer {
	def := types.DefaultEngineConfig().Scoring
	if cfg.KeywordWeight <= 0 && cfg.StructureWeight <= 0 {
		cfg.KeywordWeight = def.KeywordWeight
		cfg.StructureWeight = def.StructureWeight
	}
	if cfg.NegativePenalty <= 0 {
		cfg.NegativePenalty = def.NegativePenalty
	}
	if cfg.ExcellentBand <= 0 {
		cfg.ExcellentBand = def.ExcellentBand
	}
	if cfg.GoodBand <= 0 {
		cfg.GoodBand = def.GoodBand
	}
	if cfg.ModerateBand <= 0 {
		cfg.ModerateBand = def.ModerateBand
	}
	return &Scorer{cfg: cfg}
}

// Score evaluates one outline against one profile. The keyword score is
// the fraction of positive keywords found in the outline (case-
// insensitive substring match) reduced by the found fraction of negative
// keywords scaled by the penalty coefficient, clamped to [0,1]. The
// structure score is the fraction of required sections present among the
// outline's headings. The overall score is the configured weighted sum.
func (s *Scorer) Score(outline string, p types.JournalProfile) types.CompatibilityScore {
	lower := strings.ToLower(outline)

	score := types.CompatibilityScore{
		JournalID:       p.ID,
		JournalName:     p.Name,
		MatchedPositive: []string{},
		MatchedNegative: []string{},
		MissingSections: []string{},
	}

	for _, kw := range p.PositiveKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score.MatchedPositive = append(score.MatchedPositive, kw)
		} else {
			score.UnmatchedPositive = append(score.UnmatchedPositive, kw)
		}
	}
	for _, kw := range p.NegativeKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score.MatchedNegative = append(score.MatchedNegative, kw)
		}
	}

	if len(p.PositiveKeywords) == 0 {
		// No declared scope keywords: neutral rather than zero.
		score.KeywordScore = 0.5
	} else {
		positive := float64(len(score.MatchedPositive)) / float64(len(p.PositiveKeywords))
		penalty := 0.0
		if len(p.NegativeKeywords) > 0 {
			penalty = s.cfg.NegativePenalty * float64(len(score.MatchedNegative)) / float64(len(p.NegativeKeywords))
		}
		score.KeywordScore = clamp01(positive - penalty)
	}

	if len(p.RequiredSections) == 0 {
		score.StructureScore = 1.0
	} else {
		present := 0
		for _, section := range p.RequiredSections {
			if sectionPresent(lower, section) {
				present++
			} else {
				score.MissingSections = append(score.MissingSections, section)
			}
		}
		score.StructureScore = float64(present) / float64(len(p.RequiredSections))
	}

	score.Overall = clamp01(s.cfg.KeywordWeight*score.KeywordScore + s.cfg.StructureWeight*score.StructureScore)
	score.Band = s.Band(score.Overall)
	score.Recommendations = s.recommend(score)
	return score
}

// Rank scores every profile and sorts descending by overall score, ties
// broken by the profile's declared catalog order. The result is
// deterministic for fixed inputs, never dependent on map iteration.
func (s *Scorer) Rank(outline string, profiles []types.JournalProfile) []types.CompatibilityScore {
	ordered := make([]types.JournalProfile, len(profiles))
	copy(ordered, profiles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CatalogOrder < ordered[j].CatalogOrder
	})

	scores := make([]types.CompatibilityScore, len(ordered))
	for i, p := range ordered {
		scores[i] = s.Score(outline, p)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Overall > scores[j].Overall
	})
	return scores
}

// Band maps an overall score to its reporting interpretation. Bands
// never drive control flow.
func (s *Scorer) Band(overall float64) string {
	switch {
	case overall >= s.cfg.ExcellentBand:
		return "excellent"
	case overall >= s.cfg.GoodBand:
		return "good"
	case overall >= s.cfg.ModerateBand:
		return "moderate"
	default:
		return "poor"
	}
}

// recommend turns a score breakdown into prose a human can act on.
func (s *Scorer) recommend(score types.CompatibilityScore) []string {
	var out []string

	switch score.Band {
	case "excellent", "good":
		out = append(out, fmt.Sprintf("%s match for %s (%.2f)", score.Band, score.JournalName, score.Overall))
		if len(score.MatchedPositive) > 0 {
			out = append(out, "aligns with scope: "+strings.Join(firstN(score.MatchedPositive, 5), ", "))
		}
	default:
		out = append(out, fmt.Sprintf("%s match for %s (%.2f): consider an alternative venue or adjust scope", score.Band, score.JournalName, score.Overall))
	}

	if len(score.MatchedNegative) > 0 {
		out = append(out, "contains discouraged topics: "+strings.Join(firstN(score.MatchedNegative, 3), ", "))
	}
	if len(score.MissingSections) > 0 {
		out = append(out, "missing required sections: "+strings.Join(score.MissingSections, ", "))
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// headingChars strips markdown heading and emphasis markers before
// matching section names.
var headingChars = regexp.MustCompile(`[#*_:]+`)

// sectionPresent reports whether a section name appears as an outline
// heading: a line consisting of the name after heading markup, or the
// name followed by a colon.
func sectionPresent(lowerOutline, section string) bool {
	want := strings.ToLower(strings.TrimSpace(section))
	for _, line := range strings.Split(lowerOutline, "\n") {
		cleaned := strings.TrimSpace(headingChars.ReplaceAllString(line, " "))
		cleaned = strings.Join(strings.Fields(cleaned), " ")
		if cleaned == want || strings.HasPrefix(cleaned, want+" ") {
			return true
		}
	}
	return false
}
