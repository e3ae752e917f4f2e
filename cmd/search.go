package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/internal/docs/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Query the search index of a built site",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts, enabled, err := cfg.Plugins.SearchOptions()
		if err != nil {
			return err
		}
		if !enabled {
			return fmt.Errorf("the search plugin is not enabled in the configuration")
		}

		idx, err := search.Open(filepath.Join(cfg.SiteDir, search.IndexFileName), opts.MinLength)
		if err != nil {
			return fmt.Errorf("open search index (run %q first): %w", "build", err)
		}
		defer idx.Close()

		results, err := idx.Query(args, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no results")
			return nil
		}

		for _, r := range results {
			location := r.PagePath
			if r.Anchor != "" {
				location += "#" + r.Anchor
			}
			heading := r.Title
			if r.Section != "" {
				heading += " › " + r.Section
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n  %s\n", heading, location, r.Snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
