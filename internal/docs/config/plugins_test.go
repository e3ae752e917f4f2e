package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parsePlugins(t *testing.T, src string) PluginList {
	t.Helper()
	var pl PluginList
	require.NoError(t, yaml.Unmarshal([]byte(src), &pl))
	return pl
}

func TestPluginUnmarshalForms(t *testing.T) {
	pl := parsePlugins(t, `
- search
- notebooks:
    include_source: false
- apidoc:
`)
	require.Len(t, pl, 3)

	assert.Equal(t, "search", pl[0].Name)
	assert.Empty(t, pl[0].Options)

	assert.Equal(t, "notebooks", pl[1].Name)
	assert.Equal(t, false, pl[1].Options["include_source"])

	// Null-valued map entry: name with no options.
	assert.Equal(t, "apidoc", pl[2].Name)
	assert.Empty(t, pl[2].Options)
}

func TestPluginListValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "known plugins", src: "- search\n- notebooks\n- apidoc\n"},
		{name: "unknown plugin", src: "- mkdocstrings\n", wantErr: "unknown plugin"},
		{name: "unknown option", src: "- search:\n    fuzzy: true\n", wantErr: "unknown option"},
		{name: "duplicate plugin", src: "- search\n- search\n", wantErr: "more than once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := parsePlugins(t, tt.src)
			faults, _ := pl.validate()
			if tt.wantErr == "" {
				assert.Empty(t, faults)
				return
			}
			require.NotEmpty(t, faults)
			assert.Contains(t, faults[0], tt.wantErr)
		})
	}
}

func TestSearchOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		pl := parsePlugins(t, "- search\n")
		opts, enabled, err := pl.SearchOptions()
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, "en", opts.Lang)
		assert.Equal(t, 3, opts.MinLength)
	})

	t.Run("overrides", func(t *testing.T) {
		pl := parsePlugins(t, "- search:\n    lang: de\n    min_length: 2\n")
		opts, enabled, err := pl.SearchOptions()
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, "de", opts.Lang)
		assert.Equal(t, 2, opts.MinLength)
	})

	t.Run("disabled", func(t *testing.T) {
		_, enabled, err := PluginList{}.SearchOptions()
		require.NoError(t, err)
		assert.False(t, enabled)
	})
}

func TestNotebookOptions(t *testing.T) {
	pl := parsePlugins(t, "- notebooks:\n    include_source: false\n    kernel_name: julia\n")
	opts, enabled, err := pl.NotebookOptions()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.False(t, opts.IncludeSource)
	assert.Equal(t, "julia", opts.KernelName)
}

func TestAPIDocOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		pl := parsePlugins(t, "- apidoc:\n    packages: [numerical/curves]\n")
		opts, enabled, err := pl.APIDocOptions()
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, []string{"numerical/curves"}, opts.Packages)
		assert.Equal(t, 2, opts.HeadingLevel)
		assert.True(t, opts.ShowSource)
		assert.Equal(t, "table", opts.SectionStyle)
		assert.Equal(t, "source", opts.MembersOrder)
	})

	t.Run("invalid members_order", func(t *testing.T) {
		pl := parsePlugins(t, "- apidoc:\n    members_order: random\n")
		_, _, err := pl.APIDocOptions()
		assert.Error(t, err)
	})

	t.Run("invalid docstring_section_style", func(t *testing.T) {
		pl := parsePlugins(t, "- apidoc:\n    docstring_section_style: grid\n")
		_, _, err := pl.APIDocOptions()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docstring_section_style")
	})
}

func TestExtensionOptions(t *testing.T) {
	var el ExtensionList
	require.NoError(t, yaml.Unmarshal([]byte(`
- admonition
- toc:
    permalink: true
    toc_depth: 2
- tasklist:
    custom_checkbox: true
`), &el))

	assert.True(t, el.Enabled("admonition"))
	assert.False(t, el.Enabled("arithmatex"))
	assert.True(t, el.BoolOption("toc", "permalink", false))
	assert.Equal(t, 2, el.IntOption("toc", "toc_depth", 3))
	assert.True(t, el.BoolOption("tasklist", "custom_checkbox", false))

	// Defaults when the extension or key is absent.
	assert.Equal(t, 3, el.IntOption("highlight", "toc_depth", 3))
	assert.False(t, el.BoolOption("toc", "no_such_key", false))
}

func TestExtensionValidateWarnsUnknown(t *testing.T) {
	var el ExtensionList
	require.NoError(t, yaml.Unmarshal([]byte("- admonition\n- pymdownx.magiclink\n"), &el))

	warnings := el.validate()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "pymdownx.magiclink")
}
