// Package rules checks the effective site configuration against CEL
// assertions. A built-in rule set covers mistakes validation alone cannot
// express across fields; projects add their own rules in a rules.yml next
// to the config file.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riemax-project/riemax/pkg/loader"
)

// Severity levels for rule findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule is one CEL assertion over the configuration document. The
// expression must evaluate to bool; false produces a finding.
type Rule struct {
	Name     string `yaml:"name"`
	Expr     string `yaml:"expr"`
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`
}

// Finding is a failed rule.
type Finding struct {
	Rule    Rule
	Message string
}

// RulesFileName is the conventional project rules file, looked up in the
// same directory as the site config.
const RulesFileName = "rules.yml"

// BuiltIn returns the default rule set applied to every configuration.
func BuiltIn() []Rule {
	return []Rule{
		{
			Name:     "site-name-set",
			Expr:     `has(_.site_name) && _.site_name != ""`,
			Message:  "site_name must not be empty",
			Severity: SeverityError,
		},
		{
			Name:     "repo-name-with-url",
			Expr:     `!has(_.repo_name) || has(_.repo_url)`,
			Message:  "repo_name is set but repo_url is missing",
			Severity: SeverityWarning,
		},
		{
			Name:     "search-enabled",
			Expr:     `has(_.plugins) && _.plugins.exists(p, p == "search" || (type(p) == map && "search" in p))`,
			Message:  "the search plugin is not enabled; built sites will have no search index",
			Severity: SeverityWarning,
		},
		{
			Name:     "math-assets-paired",
			Expr: `!has(_.markdown_extensions) ||
				!_.markdown_extensions.exists(e, e == "arithmatex" || (type(e) == map && "arithmatex" in e)) ||
				(has(_.extra_javascript) && _.extra_javascript.size() > 0)`,
			Message:  "arithmatex is enabled but extra_javascript lists no math renderer",
			Severity: SeverityWarning,
		},
	}
}

// LoadFile reads additional rules from a YAML file. The file holds a
// top-level "rules" list.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	for i, r := range doc.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has no name", path, i)
		}
		if r.Expr == "" {
			return nil, fmt.Errorf("rules file %s: rule %q has no expr", path, r.Name)
		}
		if r.Severity == "" {
			doc.Rules[i].Severity = SeverityWarning
		} else if r.Severity != SeverityError && r.Severity != SeverityWarning {
			return nil, fmt.Errorf("rules file %s: rule %q has unknown severity %q", path, r.Name, r.Severity)
		}
	}
	return doc.Rules, nil
}

// Check evaluates every rule against the configuration document and
// returns the findings for rules that failed. A rule that cannot be
// compiled or does not return bool is itself an error.
func Check(ruleSet []Rule, doc interface{}) ([]Finding, error) {
	ev, err := NewEvaluator()
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, r := range ruleSet {
		ok, err := ev.EvaluateBool(r.Expr, doc)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if ok {
			continue
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("rule %q failed", r.Name)
		}
		findings = append(findings, Finding{Rule: r, Message: msg})
	}
	return findings, nil
}

// ConfigDocument converts an arbitrary YAML-serializable value into the
// generic document form CEL evaluates against.
func ConfigDocument(cfg interface{}) (interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("serialize configuration: %w", err)
	}
	return loader.LoadRootBytes(data)
}
