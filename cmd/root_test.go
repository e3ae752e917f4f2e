package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemax-project/riemax/pkg/settings"
)

func resetRootCmdState() {
	*cliParams = *settings.NewCliParams()
	debugEnabled = false
	navInteractive = false
	checkRulesFile = ""
	configOutput = "yaml"

	rootCmd.SetArgs(nil)
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetRootCmdState()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// chProject scaffolds a docs project in a temp dir and chdirs into it.
func chProject(t *testing.T, configYAML string, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, "docs", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs.yml"), []byte(configYAML), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "riemax-docs")
	assert.Contains(t, out, "go1.")
}

func TestInitScaffoldsProject(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	assert.FileExists(t, filepath.Join(dir, "docs.yml"))
	assert.FileExists(t, filepath.Join(dir, "docs", "index.md"))

	// Refuses to overwrite an existing project.
	_, _, err = runCLI(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitThenCheck(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "init", dir)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, _, err := runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration ok")
}

func TestCheckFailsOnEmptySiteName(t *testing.T) {
	chProject(t, `site_name: ""`, map[string]string{"index.md": "# Home\n"})

	_, _, err := runCLI(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site_name")
}

func TestCheckStrictEscalatesWarnings(t *testing.T) {
	chProject(t, `
site_name: riemax
plugins:
  - notebooks
nav:
  - index.md
`, map[string]string{"index.md": "# Home\n"})

	out, _, err := runCLI(t, "check")
	require.NoError(t, err, "warnings alone do not fail")
	assert.Contains(t, out, "warning(s)")

	_, _, err = runCLI(t, "check", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")
}

func TestCheckLoadsProjectRules(t *testing.T) {
	chProject(t, `
site_name: riemax
nav:
  - index.md
`, map[string]string{"index.md": "# Home\n"})

	require.NoError(t, os.WriteFile("rules.yml", []byte(`
rules:
  - name: copyright-set
    expr: has(_.copyright) && _.copyright != ""
    message: set a copyright line
    severity: error
`), 0o644))

	_, errOut, err := runCLI(t, "check")
	require.Error(t, err)
	assert.Contains(t, errOut, "copyright-set")
}

func TestBuildCommand(t *testing.T) {
	chProject(t, `
site_name: riemax
nav:
  - index.md
`, map[string]string{"index.md": "# Home\n"})

	out, _, err := runCLI(t, "build", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out, "quiet build prints nothing")

	assert.FileExists(t, filepath.Join("site", "index.html"))
}

func TestConfigCommandPrintsEffectiveYAML(t *testing.T) {
	chProject(t, "site_name: riemax\n", map[string]string{"index.md": "# Home\n"})

	out, _, err := runCLI(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "site_name: riemax")
	assert.Contains(t, out, "docs_dir:")
}

func TestConfigCommandJSONOutput(t *testing.T) {
	chProject(t, "site_name: riemax\n", map[string]string{"index.md": "# Home\n"})

	out, _, err := runCLI(t, "config", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"site_name": "riemax"`)

	_, _, err = runCLI(t, "config", "-o", "xml")
	require.Error(t, err)
}

func TestCheckRulesFlag(t *testing.T) {
	chProject(t, `
site_name: riemax
nav:
  - index.md
`, map[string]string{"index.md": "# Home\n"})

	rulesPath := filepath.Join(t.TempDir(), "extra-rules.yml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`
rules:
  - name: description-set
    expr: has(_.site_description) && _.site_description != ""
    message: set a site description
    severity: error
`), 0o644))

	_, errOut, err := runCLI(t, "check", "--rules", rulesPath)
	require.Error(t, err)
	assert.Contains(t, errOut, "description-set")

	// A missing rules file is an error when named explicitly.
	_, _, err = runCLI(t, "check", "--rules", filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestNavCommandPrintsTree(t *testing.T) {
	chProject(t, `
site_name: riemax
nav:
  - Home: index.md
  - Guide:
      - guide/intro.md
`, map[string]string{
		"index.md":       "# Home\n",
		"guide/intro.md": "# Intro\n",
	})

	out, _, err := runCLI(t, "nav")
	require.NoError(t, err)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Guide")
	assert.Contains(t, out, "guide/intro.md")
}

func TestUnknownCommandFails(t *testing.T) {
	_, _, err := runCLI(t, "frobnicate")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
}
