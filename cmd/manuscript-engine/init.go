// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manuscript-engine/internal/state"
	ver "github.com/pdiddy/manuscript-engine/internal/version"
)

// defaultSections seed a new project's section roster; drafting may add
// more later.
var defaultSections = []string{"abstract", "introduction", "methods", "results", "discussion"}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a versioned project directory with a fresh state document",
	Long: `Init resolves the next version number for a project, creates the version
directory under the manuscript root, and writes the initial workflow state
document. The project name is derived from the repository URL or path
unless --name overrides it.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	repo, _ := cmd.Flags().GetString("repo")
	name, _ := cmd.Flags().GetString("name")
	root, _ := cmd.Flags().GetString("root")
	spec, _ := cmd.Flags().GetString("version")
	sections, _ := cmd.Flags().GetStringSlice("sections")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	if name == "" {
		name = ver.NormalizeProjectName(repo)
	}

	n, warning, err := ver.Resolve(ver.DirLister{Root: root}, name, spec)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(os.Stderr, "Warning:", warning)
	}

	dir := filepath.Join(root, ver.DirName(name, n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating version directory: %w", err)
	}

	store := state.NewStore(dir, engineConfig().State)
	if _, err := store.Init(name, repo, sections, overwrite); err != nil {
		return err
	}

	fmt.Printf("Initialized %s (version %d)\n", dir, n)
	return nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve-version",
	Short: "Resolve a version spec to a concrete version number",
	Long: `Resolve-version reports which version directory a spec maps to without
creating anything. "auto" picks max existing + 1; an explicit "v3" or "3"
is honored, with a warning when the directory already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		name, _ := cmd.Flags().GetString("name")
		root, _ := cmd.Flags().GetString("root")
		spec, _ := cmd.Flags().GetString("version")

		if name == "" {
			name = ver.NormalizeProjectName(repo)
		}
		n, warning, err := ver.Resolve(ver.DirLister{Root: root}, name, spec)
		if err != nil {
			return err
		}
		if warning != "" {
			fmt.Fprintln(os.Stderr, "Warning:", warning)
		}
		fmt.Println(filepath.Join(root, ver.DirName(name, n)))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{initCmd, resolveCmd} {
		c.Flags().String("repo", "", "repository URL or path the manuscript describes")
		c.Flags().String("name", "", "project name (default: derived from --repo)")
		c.Flags().String("root", "manuscript", "root directory holding version directories")
		c.Flags().String("version", ver.Auto, `version spec: "auto", "3", or "v3"`)
	}
	initCmd.Flags().StringSlice("sections", defaultSections, "planned section names")
	initCmd.Flags().Bool("overwrite", false, "replace an existing state document")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(resolveCmd)
}
