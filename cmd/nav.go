package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/riemax-project/riemax/internal/docs/explorer"
	"github.com/riemax-project/riemax/internal/docs/nav"
)

var navInteractive bool

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Show the navigation tree",
	Long: `Show the navigation tree derived from the configuration, or from the
docs directory layout when the configuration has no explicit nav.
With --interactive, browse the tree and print the selected page path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tree := cfg.NavTree()
		if len(tree.Items) == 0 {
			tree, err = nav.Implicit(os.DirFS(cfg.DocsDir))
			if err != nil {
				return err
			}
		}

		if !navInteractive {
			fmt.Fprint(cmd.OutOrStdout(), tree.String())
			return nil
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--interactive requires a terminal")
		}

		selected, err := explorer.Run(tree, cliParams.NoColor)
		if err != nil {
			return err
		}
		if selected != "" {
			fmt.Fprintln(cmd.OutOrStdout(), selected)
		}
		return nil
	},
}

func init() {
	navCmd.Flags().BoolVarP(&navInteractive, "interactive", "i", false, "browse the tree interactively")
	rootCmd.AddCommand(navCmd)
}
