// Package config owns the docs.yml site configuration: schema, embedded
// defaults, user-over-defaults merging, and the structural validation the
// rest of the toolchain relies on.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/riemax-project/riemax/internal/docs/nav"
	"github.com/riemax-project/riemax/pkg/loader"
)

//go:embed default.yml
var defaultConfigYAML []byte

// Config is the effective site configuration after merging user values over
// the embedded defaults. Optional toggles are pointer-typed so a merge can
// tell "unset" apart from "false".
type Config struct {
	SiteName        string `yaml:"site_name"`
	SiteDescription string `yaml:"site_description,omitempty"`
	SiteURL         string `yaml:"site_url,omitempty"`
	RepoURL         string `yaml:"repo_url,omitempty"`
	RepoName        string `yaml:"repo_name,omitempty"`
	Copyright       string `yaml:"copyright,omitempty"`

	DocsDir string `yaml:"docs_dir,omitempty"`
	SiteDir string `yaml:"site_dir,omitempty"`
	Strict  *bool  `yaml:"strict,omitempty"`

	Nav []nav.Item `yaml:"nav,omitempty"`

	Theme Theme `yaml:"theme,omitempty"`

	Plugins    PluginList    `yaml:"plugins,omitempty"`
	Extensions ExtensionList `yaml:"markdown_extensions,omitempty"`

	ExtraJavascript []string `yaml:"extra_javascript,omitempty"`
	ExtraCSS        []string `yaml:"extra_css,omitempty"`
}

// Theme holds the visual settings: named theme, light/dark palettes, fonts,
// and feature toggles.
type Theme struct {
	Name     string    `yaml:"name,omitempty"`
	Logo     string    `yaml:"logo,omitempty"`
	Favicon  string    `yaml:"favicon,omitempty"`
	Palettes []Palette `yaml:"palette,omitempty"`
	Font     Font      `yaml:"font,omitempty"`
	Features []string  `yaml:"features,omitempty"`
}

// Palette is one color scheme variant, keyed by light/dark media preference.
type Palette struct {
	Scheme  string `yaml:"scheme"`
	Media   string `yaml:"media,omitempty"`
	Primary string `yaml:"primary,omitempty"`
	Accent  string `yaml:"accent,omitempty"`
}

// Font selects the text and code font families.
type Font struct {
	Text string `yaml:"text,omitempty"`
	Code string `yaml:"code,omitempty"`
}

// NavTree returns the configured navigation as a nav.Tree.
func (c *Config) NavTree() nav.Tree { return nav.Tree{Items: c.Nav} }

// IsStrict reports whether warnings escalate to errors.
func (c *Config) IsStrict() bool { return c.Strict != nil && *c.Strict }

// Load reads, decodes, and merges a site configuration. When path is empty
// it looks for docs.yml, docs.yaml, then mkdocs.yml in the current
// directory. The file is parsed with format autodetection, then re-decoded
// into the typed schema, then merged over the embedded defaults.
func Load(path string) (*Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	root, err := loader.LoadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", resolved, err)
	}

	// Normalize through YAML so JSON/TOML inputs reach the same typed
	// decode path (and the nav custom unmarshaller).
	raw, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("normalize config: %w", err)
	}

	var user Config
	if err := yaml.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", resolved, err)
	}

	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	merged := merge(defaults, user)
	return &merged, nil
}

// resolvePath returns the explicit path, or the first existing candidate.
func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	for _, candidate := range []string{"docs.yml", "docs.yaml", "mkdocs.yml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found (looked for docs.yml, docs.yaml, mkdocs.yml)")
}

func loadDefaults() (Config, error) {
	var defaults Config
	if err := yaml.Unmarshal(defaultConfigYAML, &defaults); err != nil {
		return Config{}, fmt.Errorf("decode embedded default config: %w", err)
	}
	return defaults, nil
}

// merge layers user values over defaults. Scalars win when non-zero, lists
// replace wholesale, pointer toggles win when set.
func merge(base, user Config) Config {
	out := base

	if user.SiteName != "" {
		out.SiteName = user.SiteName
	}
	if user.SiteDescription != "" {
		out.SiteDescription = user.SiteDescription
	}
	if user.SiteURL != "" {
		out.SiteURL = user.SiteURL
	}
	if user.RepoURL != "" {
		out.RepoURL = user.RepoURL
	}
	if user.RepoName != "" {
		out.RepoName = user.RepoName
	}
	if user.Copyright != "" {
		out.Copyright = user.Copyright
	}
	if user.DocsDir != "" {
		out.DocsDir = user.DocsDir
	}
	if user.SiteDir != "" {
		out.SiteDir = user.SiteDir
	}
	if user.Strict != nil {
		out.Strict = user.Strict
	}
	if len(user.Nav) > 0 {
		out.Nav = user.Nav
	}
	out.Theme = mergeTheme(base.Theme, user.Theme)
	if len(user.Plugins) > 0 {
		out.Plugins = user.Plugins
	}
	if len(user.Extensions) > 0 {
		out.Extensions = user.Extensions
	}
	if len(user.ExtraJavascript) > 0 {
		out.ExtraJavascript = user.ExtraJavascript
	}
	if len(user.ExtraCSS) > 0 {
		out.ExtraCSS = user.ExtraCSS
	}
	return out
}

func mergeTheme(base, user Theme) Theme {
	out := base
	if user.Name != "" {
		out.Name = user.Name
	}
	if user.Logo != "" {
		out.Logo = user.Logo
	}
	if user.Favicon != "" {
		out.Favicon = user.Favicon
	}
	if len(user.Palettes) > 0 {
		out.Palettes = user.Palettes
	}
	if user.Font.Text != "" {
		out.Font.Text = user.Font.Text
	}
	if user.Font.Code != "" {
		out.Font.Code = user.Font.Code
	}
	if len(user.Features) > 0 {
		out.Features = user.Features
	}
	return out
}

// Validate runs the structural checks: required fields, palette schemes,
// plugin names and options, extension names, extra asset references, and
// the navigation tree against the docs directory. Hard schema faults come
// back as the error; soft faults (missing files, unknown extensions) come
// back as warnings for the caller to escalate under strict mode.
func (c *Config) Validate() (warnings []string, err error) {
	var faults []string

	if strings.TrimSpace(c.SiteName) == "" {
		faults = append(faults, "site_name is required")
	}
	if c.SiteURL != "" {
		if u, parseErr := url.Parse(c.SiteURL); parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			faults = append(faults, fmt.Sprintf("site_url %q is not an http(s) URL", c.SiteURL))
		}
	}

	faults = append(faults, c.validatePalettes()...)

	pluginFaults, pluginWarnings := c.Plugins.validate()
	faults = append(faults, pluginFaults...)
	warnings = append(warnings, pluginWarnings...)

	extWarnings := c.Extensions.validate()
	warnings = append(warnings, extWarnings...)

	assetFaults, assetWarnings := c.validateAssets()
	faults = append(faults, assetFaults...)
	warnings = append(warnings, assetWarnings...)

	if info, statErr := os.Stat(c.DocsDir); statErr != nil || !info.IsDir() {
		faults = append(faults, fmt.Sprintf("docs_dir %q is not a directory", c.DocsDir))
	} else if len(c.Nav) > 0 {
		navWarnings, navErr := c.NavTree().Validate(os.DirFS(c.DocsDir))
		warnings = append(warnings, navWarnings...)
		if navErr != nil {
			faults = append(faults, navErr.Error())
		}
	}

	if len(faults) > 0 {
		return warnings, fmt.Errorf("invalid configuration: %s", strings.Join(faults, "; "))
	}
	return warnings, nil
}

func (c *Config) validatePalettes() []string {
	var faults []string
	seen := make(map[string]bool)
	for _, p := range c.Theme.Palettes {
		if p.Scheme != "light" && p.Scheme != "dark" {
			faults = append(faults, fmt.Sprintf("palette scheme %q must be light or dark", p.Scheme))
			continue
		}
		if seen[p.Scheme] {
			faults = append(faults, fmt.Sprintf("more than one %s palette", p.Scheme))
		}
		seen[p.Scheme] = true
	}
	return faults
}

// validateAssets checks extra_javascript/extra_css entries: URLs must be
// http(s); local paths must exist under docs_dir.
func (c *Config) validateAssets() (faults, warnings []string) {
	check := func(kind string, entries []string) {
		for _, entry := range entries {
			if strings.Contains(entry, "://") {
				if u, err := url.Parse(entry); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
					faults = append(faults, fmt.Sprintf("%s entry %q is not an http(s) URL", kind, entry))
				}
				continue
			}
			local := filepath.Join(c.DocsDir, filepath.FromSlash(entry))
			if _, err := os.Stat(local); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s references missing file %q", kind, entry))
			}
		}
	}
	check("extra_javascript", c.ExtraJavascript)
	check("extra_css", c.ExtraCSS)
	return faults, warnings
}

// EffectiveYAML renders the merged configuration back to YAML, the output
// of `riemax-docs config`.
func (c *Config) EffectiveYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
