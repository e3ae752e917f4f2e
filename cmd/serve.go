package cmd

import (
	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/internal/docs/serve"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the site locally, rebuilding on changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := runLogger(cmd)
		ctx, cancel := signalContext()
		defer cancel()

		return serve.New(cliParams.ConfigPath, serveAddr, *log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", serve.DefaultAddr, "listen address")
	rootCmd.AddCommand(serveCmd)
}
