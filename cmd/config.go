package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/pkg/loader"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration: the user file merged over the
built-in defaults, as YAML or JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.EffectiveYAML()
		if err != nil {
			return err
		}

		switch configOutput {
		case "yaml":
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		case "json":
			// Round-trip through the loader so YAML maps become JSON-safe.
			root, err := loader.LoadRootBytes(out)
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		default:
			return fmt.Errorf("unknown output format %q (yaml, json)", configOutput)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(configCmd)
}
