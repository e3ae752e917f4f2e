// Package cmd implements the riemax-docs command line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/internal/docs/config"
	"github.com/riemax-project/riemax/pkg/logger"
	"github.com/riemax-project/riemax/pkg/settings"
)

var cliParams = settings.NewCliParams()

// debugEnabled mirrors the --debug flag before the log level is resolved.
var debugEnabled bool

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Build and preview documentation sites",
	Long: settings.CliBinaryName + ` builds static documentation sites from a docs.yml
configuration: markdown pages, Jupyter notebooks, generated API reference
pages, themed output, and a search index.

Common usage:

  ` + settings.CliBinaryName + ` build            # render the site into site_dir
  ` + settings.CliBinaryName + ` check            # validate the configuration
  ` + settings.CliBinaryName + ` serve            # preview with rebuild-on-change
  ` + settings.CliBinaryName + ` search geodesic  # query the built search index`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case debugEnabled:
			cliParams.MinLogLevel = -1
		case cliParams.IsQuiet:
			cliParams.MinLogLevel = 2
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cliParams.ConfigPath, "config", "f", "", "path to the site configuration (default: docs.yml, docs.yaml, mkdocs.yml)")
	pf.BoolVar(&debugEnabled, "debug", false, "enable debug logging")
	pf.BoolVarP(&cliParams.IsQuiet, "quiet", "q", false, "only log errors")
	pf.BoolVar(&cliParams.NoColor, "no-color", false, "disable colored output")
	pf.BoolVar(&cliParams.Strict, "strict", false, "treat warnings as errors")
}

// runLogger returns the shared logger at the level selected by the flags,
// tagged with the running subcommand.
func runLogger(cmd *cobra.Command) *logr.Logger {
	return logger.WithValues(logger.Get(cliParams.MinLogLevel), logger.CommandKey, cmd.Name())
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig loads the site configuration and applies the --strict
// override on top of the file's own setting.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cliParams.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cliParams.Strict {
		strict := true
		cfg.Strict = &strict
	}
	return cfg, nil
}
