package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/internal/docs/site"
	"github.com/riemax-project/riemax/pkg/logger"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into site_dir",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := runLogger(cmd)
		ctx, cancel := signalContext()
		defer cancel()
		ctx = logger.WithLogger(ctx, log)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report, err := site.New(cfg, *log).Build(ctx)
		if err != nil {
			return err
		}

		for _, w := range report.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s\n", w)
		}
		if !cliParams.IsQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "built %d page(s) into %s in %s\n",
				report.Pages, cfg.SiteDir, report.Duration.Round(1e6))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
