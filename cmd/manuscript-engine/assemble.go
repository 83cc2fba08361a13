// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/assemble"
	"github.com/pdiddy/manuscript-engine/internal/journal"
	"github.com/pdiddy/manuscript-engine/internal/state"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Concatenate drafted sections into a manuscript and validate it",
	Long: `Assemble walks the target venue's section order, concatenates the
version's drafted section files into the output manuscript, and writes a
manifest with word counts checked against the venue's limits. Missing
sections and limit violations are reported, never fatal. On success the
assembly stage is marked completed in the state document.`,
	RunE: runAssemble,
}

func runAssemble(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	catalogPath, _ := cmd.Flags().GetString("catalog")
	journalID, _ := cmd.Flags().GetString("journal")
	skipState, _ := cmd.Flags().GetBool("no-state")

	cfg := engineConfig()
	store := state.NewStore(dir, cfg.State)

	// Venue precedence: flag, then the state document's target venue.
	if journalID == "" && !skipState {
		st, err := store.Load()
		if err != nil {
			return err
		}
		journalID = st.TargetVenue
	}

	profile := types.JournalProfile{ID: journalID, Name: journalID}
	if journalID != "" {
		catalog, err := journal.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		profile, err = catalog.Get(journalID)
		if err != nil {
			return err
		}
	}

	manifest, err := assemble.NewAssembler(dir, cfg.Assembly).Assemble(profile, os.Stdout)
	if err != nil {
		return err
	}

	for _, f := range manifest.ValidationWarnings {
		if f.Section != "" {
			fmt.Printf("  [%s] %s: %s\n", f.Level, f.Section, f.Message)
		} else {
			fmt.Printf("  [%s] %s\n", f.Level, f.Message)
		}
	}

	if skipState {
		return nil
	}
	if _, err := store.UpdateStage(types.StageAssembly, types.StageCompleted, map[string]any{
		"total_word_count": manifest.TotalWordCount,
		"sections_missing": len(manifest.SectionsMissing),
	}, cfg.Assembly.OutputFile, cfg.Assembly.ManifestFile); err != nil {
		return err
	}
	return nil
}

func init() {
	assembleCmd.Flags().String("catalog", "journal_guidelines.yaml", "venue guideline catalog")
	assembleCmd.Flags().String("journal", "", "venue id (default: the state document's target venue)")
	assembleCmd.Flags().Bool("no-state", false, "assemble without reading or updating the state document")
	addDirFlag(assembleCmd)

	rootCmd.AddCommand(assembleCmd)
}
