package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProject lays out a minimal docs project in a temp directory and
// returns the config path.
func writeProject(t *testing.T, configYAML string, docFiles ...string) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	for _, f := range docFiles {
		p := filepath.Join(dir, "docs", filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("# "+f+"\n"), 0o644))
	}

	cfgPath := filepath.Join(dir, "docs.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	// Validation resolves docs_dir relative to the working directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return cfgPath
}

func TestLoadMergesOverDefaults(t *testing.T) {
	cfgPath := writeProject(t, `
site_name: riemax
site_url: https://riemax.example.org
nav:
  - index.md
`, "index.md")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "riemax", cfg.SiteName)
	assert.Equal(t, "https://riemax.example.org", cfg.SiteURL)

	// Defaults fill in everything the user file omits.
	assert.Equal(t, "docs", cfg.DocsDir)
	assert.Equal(t, "site", cfg.SiteDir)
	assert.Equal(t, "terrain", cfg.Theme.Name)
	assert.True(t, cfg.Plugins.Has("search"))
	assert.True(t, cfg.Extensions.Enabled("admonition"))
	assert.False(t, cfg.IsStrict())
}

func TestLoadUserListsReplaceDefaults(t *testing.T) {
	cfgPath := writeProject(t, `
site_name: riemax
plugins:
  - search
  - notebooks
markdown_extensions:
  - footnotes
theme:
  palette:
    - scheme: dark
      primary: slate
`, "index.md")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.True(t, cfg.Plugins.Has("notebooks"))
	assert.True(t, cfg.Extensions.Enabled("footnotes"))
	assert.False(t, cfg.Extensions.Enabled("admonition"), "user extension list replaces the default list")

	require.Len(t, cfg.Theme.Palettes, 1)
	assert.Equal(t, "dark", cfg.Theme.Palettes[0].Scheme)
	// Scalars inside theme still merge.
	assert.Equal(t, "terrain", cfg.Theme.Name)
}

func TestLoadResolvesDefaultCandidates(t *testing.T) {
	writeProject(t, "site_name: from-docs-yml\n", "index.md")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-docs-yml", cfg.SiteName)
}

func TestLoadMissingConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfgPath := writeProject(t, `
site_name: riemax
nav:
  - index.md
  - Guide: guide.md
`, "index.md", "guide.md")

		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		warnings, err := cfg.Validate()
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("missing site_name", func(t *testing.T) {
		cfgPath := writeProject(t, "site_description: no name\n", "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)
		// Defaults carry no site_name either.
		cfg.SiteName = ""

		_, err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site_name")
	})

	t.Run("bad site_url", func(t *testing.T) {
		cfgPath := writeProject(t, "site_name: riemax\nsite_url: ftp://example.org\n", "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		_, err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site_url")
	})

	t.Run("duplicate palette scheme", func(t *testing.T) {
		cfgPath := writeProject(t, `
site_name: riemax
theme:
  palette:
    - scheme: dark
    - scheme: dark
`, "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		_, err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dark")
	})

	t.Run("unknown plugin is a fault", func(t *testing.T) {
		cfgPath := writeProject(t, "site_name: riemax\nplugins:\n  - frobnicate\n", "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		_, err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "frobnicate")
	})

	t.Run("unknown extension is a warning", func(t *testing.T) {
		cfgPath := writeProject(t, "site_name: riemax\nmarkdown_extensions:\n  - mermaid2\n", "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		warnings, err := cfg.Validate()
		require.NoError(t, err)
		require.NotEmpty(t, warnings)
		assert.Contains(t, warnings[0], "mermaid2")
	})

	t.Run("missing nav file is a warning", func(t *testing.T) {
		cfgPath := writeProject(t, "site_name: riemax\nnav:\n  - index.md\n  - gone.md\n", "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		warnings, err := cfg.Validate()
		require.NoError(t, err)
		require.NotEmpty(t, warnings)
		assert.Contains(t, warnings[0], "gone.md")
	})

	t.Run("remote assets must be http(s)", func(t *testing.T) {
		cfgPath := writeProject(t, `
site_name: riemax
extra_javascript:
  - gopher://example.org/math.js
`, "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		_, err = cfg.Validate()
		assert.Error(t, err)
	})

	t.Run("missing local asset is a warning", func(t *testing.T) {
		cfgPath := writeProject(t, `
site_name: riemax
extra_css:
  - styles/extra.css
`, "index.md")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)

		warnings, err := cfg.Validate()
		require.NoError(t, err)
		require.NotEmpty(t, warnings)
		assert.Contains(t, warnings[0], "styles/extra.css")
	})
}

func TestEffectiveYAMLRoundTrips(t *testing.T) {
	cfgPath := writeProject(t, `
site_name: riemax
nav:
  - index.md
  - Examples:
      - Geodesics: geodesics.md
`, "index.md", "geodesics.md")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	out, err := cfg.EffectiveYAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "site_name: riemax")
	assert.Contains(t, string(out), "geodesics.md")
}
