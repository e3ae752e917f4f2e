package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/internal/docs/rules"
)

var checkRulesFile string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and run the rule set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		warnings, err := cfg.Validate()
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s\n", w)
		}

		ruleSet := rules.BuiltIn()
		projectRules, err := loadProjectRules()
		if err != nil {
			return err
		}
		ruleSet = append(ruleSet, projectRules...)

		doc, err := rules.ConfigDocument(cfg)
		if err != nil {
			return err
		}
		findings, err := rules.Check(ruleSet, doc)
		if err != nil {
			return err
		}

		failed := false
		for _, f := range findings {
			if f.Rule.Severity == rules.SeverityError {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %s: %s\n", f.Rule.Name, f.Message)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s: %s\n", f.Rule.Name, f.Message)
		}

		warningCount := len(warnings)
		for _, f := range findings {
			if f.Rule.Severity == rules.SeverityWarning {
				warningCount++
			}
		}

		if failed {
			return fmt.Errorf("configuration check failed")
		}
		if cfg.IsStrict() && warningCount > 0 {
			return fmt.Errorf("strict mode: %d warning(s)", warningCount)
		}
		if !cliParams.IsQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok (%d warning(s))\n", warningCount)
		}
		return nil
	},
}

// loadProjectRules reads the --rules file when given, otherwise rules.yml
// next to the config file when present.
func loadProjectRules() ([]rules.Rule, error) {
	if checkRulesFile != "" {
		return rules.LoadFile(checkRulesFile)
	}
	dir := "."
	if cliParams.ConfigPath != "" {
		dir = filepath.Dir(cliParams.ConfigPath)
	}
	path := filepath.Join(dir, rules.RulesFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	return rules.LoadFile(path)
}

func init() {
	checkCmd.Flags().StringVar(&checkRulesFile, "rules", "", "CEL rules file (default: rules.yml next to the config)")
	rootCmd.AddCommand(checkCmd)
}
