package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterConfig = `site_name: My Documentation
site_description: ""

nav:
  - Home: index.md

theme:
  name: terrain
  palette:
    - media: "(prefers-color-scheme: light)"
      scheme: light
      primary: indigo
    - media: "(prefers-color-scheme: dark)"
      scheme: dark
      primary: slate
      accent: amber

plugins:
  - search

markdown_extensions:
  - admonition
  - footnotes
  - tables
  - tasklist
  - toc:
      permalink: true
`

const starterIndex = `# Welcome

This site was scaffolded by riemax-docs. Edit ` + "`docs/index.md`" + ` and run:

    riemax-docs serve
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new documentation project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		configPath := filepath.Join(dir, "docs.yml")
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}

		if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
			return err
		}

		indexPath := filepath.Join(dir, "docs", "index.md")
		if _, err := os.Stat(indexPath); os.IsNotExist(err) {
			if err := os.WriteFile(indexPath, []byte(starterIndex), 0o644); err != nil {
				return err
			}
		}

		if !cliParams.IsQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s and docs/index.md\n", configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
