package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	doc := map[string]interface{}{
		"site_name": "riemax",
		"plugins":   []interface{}{"search", "notebooks"},
		"nav":       []interface{}{"index.md"},
	}

	tests := []struct {
		expr string
		want interface{}
	}{
		{`_.site_name`, "riemax"},
		{`_.site_name != ""`, true},
		{`_.plugins.size()`, int64(2)},
		{`_.plugins.exists(p, p == "search")`, true},
		{`has(_.repo_url)`, false},
		{`_.nav[0]`, "index.md"},
	}
	for _, tt := range tests {
		got, err := ev.Evaluate(tt.expr, doc)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, got, tt.expr)
	}
}

func TestEvaluateBoolRejectsNonBool(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	_, err = ev.EvaluateBool(`_.site_name`, map[string]interface{}{"site_name": "x"})
	assert.Error(t, err)
}

func TestEvaluateCompileError(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	_, err = ev.Evaluate(`_.((`, nil)
	assert.Error(t, err)
}

func TestCheckBuiltInRules(t *testing.T) {
	t.Run("clean config passes", func(t *testing.T) {
		doc := map[string]interface{}{
			"site_name": "riemax",
			"plugins":   []interface{}{"search"},
		}
		findings, err := Check(BuiltIn(), doc)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("empty site_name fails", func(t *testing.T) {
		doc := map[string]interface{}{
			"site_name": "",
			"plugins":   []interface{}{"search"},
		}
		findings, err := Check(BuiltIn(), doc)
		require.NoError(t, err)
		require.NotEmpty(t, findings)
		assert.Equal(t, "site-name-set", findings[0].Rule.Name)
		assert.Equal(t, SeverityError, findings[0].Rule.Severity)
	})

	t.Run("repo_name without repo_url warns", func(t *testing.T) {
		doc := map[string]interface{}{
			"site_name": "riemax",
			"repo_name": "riemax-project/riemax",
			"plugins":   []interface{}{"search"},
		}
		findings, err := Check(BuiltIn(), doc)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, "repo-name-with-url", findings[0].Rule.Name)
		assert.Equal(t, SeverityWarning, findings[0].Rule.Severity)
	})

	t.Run("missing search plugin warns", func(t *testing.T) {
		doc := map[string]interface{}{
			"site_name": "riemax",
			"plugins":   []interface{}{"notebooks"},
		}
		findings, err := Check(BuiltIn(), doc)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, "search-enabled", findings[0].Rule.Name)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RulesFileName)

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: copyright-set
    expr: has(_.copyright) && _.copyright != ""
    message: every site needs a copyright line
    severity: error
  - name: default-severity
    expr: "true"
`), 0o644))

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, SeverityError, loaded[0].Severity)
		assert.Equal(t, SeverityWarning, loaded[1].Severity, "severity defaults to warning")
	})

	t.Run("missing name", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - expr: \"true\"\n"), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("bad severity", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: x\n    expr: \"true\"\n    severity: fatal\n"), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestConfigDocument(t *testing.T) {
	doc, err := ConfigDocument(map[string]string{"site_name": "riemax"})
	require.NoError(t, err)

	ev, err := NewEvaluator()
	require.NoError(t, err)
	got, err := ev.Evaluate(`_.site_name`, doc)
	require.NoError(t, err)
	assert.Equal(t, "riemax", got)
}
