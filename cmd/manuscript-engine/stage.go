// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/state"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Record workflow stage transitions",
}

var stageUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set a stage's status in the state document",
	Long: `Update marks a stage in progress or completed. Transitions are gated by
the pipeline order: a stage cannot start until every stage before it has
completed (the assess stage is optional and may be skipped).`,
	RunE: runStageUpdate,
}

func runStageUpdate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	stage, _ := cmd.Flags().GetString("stage")
	status, _ := cmd.Flags().GetString("status")
	meta, _ := cmd.Flags().GetStringToString("meta")
	files, _ := cmd.Flags().GetStringSlice("file")

	var metadata map[string]any
	if len(meta) > 0 {
		metadata = make(map[string]any, len(meta))
		for k, v := range meta {
			metadata[k] = v
		}
	}

	store := state.NewStore(dir, engineConfig().State)
	st, err := store.UpdateStage(types.Stage(stage), types.StageStatus(status), metadata, files...)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s -> %s\n", st.ProjectName, stage, status)
	return nil
}

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Record drafted sections",
}

var sectionCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark one section drafted and roll up draft progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")

		store := state.NewStore(dir, engineConfig().State)
		st, err := store.AddSectionCompleted(name, file)
		if err != nil {
			return err
		}
		fmt.Printf("Section %s completed (%d/%d)\n", name, st.CompletedSections, st.TotalSections)
		return nil
	},
}

var critiqueCmd = &cobra.Command{
	Use:   "critique",
	Short: "Record critique iterations",
}

var critiqueAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record one critique iteration against the assembled manuscript",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		ctype, _ := cmd.Flags().GetString("type")
		recommendation, _ := cmd.Flags().GetString("recommendation")
		major, _ := cmd.Flags().GetInt("major")
		minor, _ := cmd.Flags().GetInt("minor")

		store := state.NewStore(dir, engineConfig().State)
		st, err := store.AddCritiqueIteration(types.CritiqueIteration{
			Type:           ctype,
			Recommendation: recommendation,
			MajorIssues:    major,
			MinorIssues:    minor,
		})
		if err != nil {
			return err
		}
		last := st.CritiqueIterations[len(st.CritiqueIterations)-1]
		fmt.Printf("Recorded %s critique v%d (%d total iterations)\n", ctype, last.Version, len(st.CritiqueIterations))
		return nil
	},
}

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Manage the target venue",
}

var venueSetCmd = &cobra.Command{
	Use:   "set [venue-id]",
	Short: "Set the target venue (locked once assembly completes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		store := state.NewStore(dir, engineConfig().State)
		st, err := store.SetTargetVenue(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Target venue: %s\n", st.TargetVenue)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workflow progress for a version directory",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	store := state.NewStore(dir, engineConfig().State)
	st, err := store.Load()
	if err != nil {
		return err
	}
	sum := state.Summarize(st)

	fmt.Printf("Project: %s\n", sum.ProjectName)
	if sum.TargetVenue != "" {
		fmt.Printf("Target venue: %s\n", sum.TargetVenue)
	}
	fmt.Printf("Current stage: %s\n\n", sum.CurrentStage)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Stage", "Status", ""})
	for _, line := range sum.Stages {
		note := ""
		if line.Optional {
			note = "optional"
		}
		t.AppendRow(table.Row{string(line.Stage), string(line.Status), note})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d completed", sum.CompletedStages, sum.TotalStages), ""})
	t.Render()

	if sum.SectionsTotal > 0 {
		fmt.Printf("\nSections drafted: %d/%d\n", sum.SectionsCompleted, sum.SectionsTotal)
	}
	if sum.CritiqueIterations > 0 {
		fmt.Printf("Critique iterations: %d\n", sum.CritiqueIterations)
	}
	return nil
}

// addDirFlag attaches the shared version-directory flag.
func addDirFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().String("dir", ".", "version directory")
	}
}

func init() {
	stageUpdateCmd.Flags().String("stage", "", "stage name (analysis, plan, assess, research, draft, assembly, critique)")
	stageUpdateCmd.Flags().String("status", "", "new status (in_progress, completed)")
	stageUpdateCmd.Flags().StringToString("meta", nil, "stage metadata as key=value pairs")
	stageUpdateCmd.Flags().StringSlice("file", nil, "file reference produced by the stage")
	_ = stageUpdateCmd.MarkFlagRequired("stage")
	_ = stageUpdateCmd.MarkFlagRequired("status")

	sectionCompleteCmd.Flags().String("name", "", "section name")
	sectionCompleteCmd.Flags().String("file", "", "drafted section file")
	_ = sectionCompleteCmd.MarkFlagRequired("name")

	critiqueAddCmd.Flags().String("type", "scientific", "critique type (scientific, editorial)")
	critiqueAddCmd.Flags().String("recommendation", "", "reviewer recommendation")
	critiqueAddCmd.Flags().Int("major", 0, "count of major issues")
	critiqueAddCmd.Flags().Int("minor", 0, "count of minor issues")

	addDirFlag(stageUpdateCmd, sectionCompleteCmd, critiqueAddCmd, venueSetCmd, statusCmd)

	stageCmd.AddCommand(stageUpdateCmd)
	sectionCmd.AddCommand(sectionCompleteCmd)
	critiqueCmd.AddCommand(critiqueAddCmd)
	venueCmd.AddCommand(venueSetCmd)

	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(sectionCmd)
	rootCmd.AddCommand(critiqueCmd)
	rootCmd.AddCommand(venueCmd)
	rootCmd.AddCommand(statusCmd)
}
