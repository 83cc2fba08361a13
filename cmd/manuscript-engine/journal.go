// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Score and rank venue compatibility for an outline",
}

var journalScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one venue's fit against a manuscript outline",
	RunE:  runJournalScore,
}

func runJournalScore(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	journalID, _ := cmd.Flags().GetString("journal")
	outlinePath, _ := cmd.Flags().GetString("outline")

	catalog, err := journal.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	profile, err := catalog.Get(journalID)
	if err != nil {
		return err
	}
	outline, err := os.ReadFile(outlinePath)
	if err != nil {
		return fmt.Errorf("reading outline: %w", err)
	}

	score := journal.NewScorer(engineConfig().Scoring).Score(string(outline), profile)

	fmt.Printf("%s: %.2f (%s)\n", score.JournalName, score.Overall, score.Band)
	fmt.Printf("  keywords:  %.2f (matched %d, missing %d, discouraged %d)\n",
		score.KeywordScore, len(score.MatchedPositive), len(score.UnmatchedPositive), len(score.MatchedNegative))
	fmt.Printf("  structure: %.2f", score.StructureScore)
	if len(score.MissingSections) > 0 {
		fmt.Printf(" (missing: %s)", strings.Join(score.MissingSections, ", "))
	}
	fmt.Println()
	for _, r := range score.Recommendations {
		fmt.Printf("  - %s\n", r)
	}
	return nil
}

var journalRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank every catalog venue against a manuscript outline",
	RunE:  runJournalRecommend,
}

func runJournalRecommend(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	outlinePath, _ := cmd.Flags().GetString("outline")
	top, _ := cmd.Flags().GetInt("top")

	catalog, err := journal.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	outline, err := os.ReadFile(outlinePath)
	if err != nil {
		return fmt.Errorf("reading outline: %w", err)
	}

	ranked := journal.NewScorer(engineConfig().Scoring).Rank(string(outline), catalog.Profiles())
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Venue", "Overall", "Keywords", "Structure", "Band"})
	for _, s := range ranked {
		t.AppendRow(table.Row{s.JournalName,
			fmt.Sprintf("%.2f", s.Overall),
			fmt.Sprintf("%.2f", s.KeywordScore),
			fmt.Sprintf("%.2f", s.StructureScore),
			s.Band})
	}
	t.Render()
	return nil
}

func init() {
	for _, c := range []*cobra.Command{journalScoreCmd, journalRecommendCmd} {
		c.Flags().String("catalog", "journal_guidelines.yaml", "venue guideline catalog")
		c.Flags().String("outline", "outline.md", "manuscript outline file")
	}
	journalScoreCmd.Flags().String("journal", "", "venue id from the catalog")
	_ = journalScoreCmd.MarkFlagRequired("journal")
	journalRecommendCmd.Flags().Int("top", 0, "show only the top N venues")

	journalCmd.AddCommand(journalScoreCmd)
	journalCmd.AddCommand(journalRecommendCmd)
	rootCmd.AddCommand(journalCmd)
}
