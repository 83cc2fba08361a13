// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/evidence"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Validate, import, and merge citation evidence",
	Long: `Evidence manages the citation evidence table of a version directory:
validating DOIs against the resolver, importing a prior version's vetted
evidence, and merging evidence sets without duplicates. Every validation
run is recorded in the version's audit ledger.`,
}

// --- validate subcommand ---

var evidenceValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every evidence row's DOI and freshness, write a report",
	Long: `Validate resolves each record's DOI, bands its publication age, and
assigns a keep/review/remove action. Only records whose DOI positively
fails resolution are marked for removal; unreachable checks degrade to
unknown and are kept. The annotated report is written next to the
evidence table and the run is appended to the audit ledger.`,
	RunE: runEvidenceValidate,
}

func runEvidenceValidate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	records, err := evidence.ReadTable(filepath.Join(dir, evidence.TableFile))
	if err != nil {
		return err
	}

	cfg := engineConfig().Validation
	v := evidence.NewValidator(&http.Client{Timeout: cfg.Timeout}, cfg)
	annotated, summary, err := v.Validate(context.Background(), records, os.Stdout)
	if err != nil {
		return err
	}

	if err := evidence.WriteValidationReport(filepath.Join(dir, evidence.ReportFile), annotated); err != nil {
		return err
	}

	ledger, err := evidence.OpenLedger(dir)
	if err != nil {
		return err
	}
	defer ledger.Close()
	runID, err := ledger.RecordRun(context.Background(), summary, annotated)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Total", "Kept", "Review", "Remove", "Unchecked"})
	t.AppendRow(table.Row{summary.Total, summary.Kept, summary.NeedsReview, summary.ToRemove, summary.Unchecked})
	t.Render()

	fmt.Printf("Report: %s (audit run %s)\n", evidence.ReportFile, runID)
	return nil
}

// --- import subcommand ---

var evidenceImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a prior version's vetted evidence into this version",
	Long: `Import validates the source version's evidence, drops rows marked for
removal, stamps the rest with their source version, and copies the
literature artifacts over. With no --source, the newest sibling version
whose research stage completed with papers found is used.`,
	RunE: runEvidenceImport,
}

func runEvidenceImport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	source, _ := cmd.Flags().GetString("source")
	root, _ := cmd.Flags().GetString("root")

	if source == "" {
		detected, _, err := evidence.DetectPreviousVersion(root, dir)
		if err != nil {
			return err
		}
		if detected == "" {
			return fmt.Errorf("no completed prior version found under %s; pass --source explicitly", root)
		}
		source = detected
		fmt.Printf("Importing from detected prior version: %s\n", source)
	}

	cfg := engineConfig().Validation
	v := evidence.NewValidator(&http.Client{Timeout: cfg.Timeout}, cfg)
	result, err := evidence.Import(context.Background(), v, source, dir, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d records (%d excluded) from %s\n", result.Imported, result.Excluded, result.SourceDir)
	return nil
}

// --- merge subcommand ---

var evidenceMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge new evidence into the version's table without duplicates",
	Long: `Merge combines the version's existing evidence table with a new set.
Imported records win a collision only when they carry an evidence quote;
ordering is deterministic: existing rows keep their positions, genuinely
new rows append in input order.`,
	RunE: runEvidenceMerge,
}

func runEvidenceMerge(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	newFile, _ := cmd.Flags().GetString("new")

	oldSet, err := evidence.ReadTable(filepath.Join(dir, evidence.TableFile))
	if err != nil {
		return err
	}
	newSet, err := evidence.ReadTable(newFile)
	if err != nil {
		return err
	}

	merged, stats := evidence.Merge(oldSet, newSet)
	if err := evidence.WriteTable(filepath.Join(dir, evidence.TableFile), merged); err != nil {
		return err
	}

	fmt.Printf("Merged: %d kept, %d new, %d duplicates removed (%d total)\n",
		stats.KeptOld, stats.KeptNew, stats.DuplicatesRemoved, len(merged))
	return nil
}

// --- audit subcommand ---

var evidenceAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recorded validation runs for a version directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		ledger, err := evidence.OpenLedger(dir)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.Runs(context.Background())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No validation runs recorded")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Validated", "Total", "Kept", "Review", "Remove", "Unchecked"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.ID, r.ValidatedAt.Format("2006-01-02 15:04"), r.Total, r.Kept, r.NeedsReview, r.ToRemove, r.Unchecked})
		}
		t.Render()
		return nil
	},
}

func init() {
	evidenceImportCmd.Flags().String("source", "", "source version directory (default: auto-detect)")
	evidenceImportCmd.Flags().String("root", "manuscript", "root directory holding version directories")

	evidenceMergeCmd.Flags().String("new", "", "CSV file with new evidence records")
	_ = evidenceMergeCmd.MarkFlagRequired("new")

	addDirFlag(evidenceValidateCmd, evidenceImportCmd, evidenceMergeCmd, evidenceAuditCmd)

	evidenceCmd.AddCommand(evidenceValidateCmd)
	evidenceCmd.AddCommand(evidenceImportCmd)
	evidenceCmd.AddCommand(evidenceMergeCmd)
	evidenceCmd.AddCommand(evidenceAuditCmd)
	rootCmd.AddCommand(evidenceCmd)
}
