package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riemax-project/riemax/internal/docs/config"
	"github.com/riemax-project/riemax/internal/docs/nav"
	"github.com/riemax-project/riemax/internal/docs/search"
)

// buildProject writes a docs project into a temp dir, chdirs there, and
// returns the loaded config.
func buildProject(t *testing.T, configYAML string, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	for name, content := range files {
		p := filepath.Join(dir, "docs", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	cfgPath := filepath.Join(dir, "docs.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	return cfg
}

func readSiteFile(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.SiteDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuild(t *testing.T) {
	cfg := buildProject(t, `
site_name: riemax
copyright: "© 2026 riemax"
nav:
  - index.md
  - Guide: guide.md
`, map[string]string{
		"index.md": "# Welcome\n\nHello *world*.\n",
		"guide.md": "# Guide\n\n## Usage\n\nRun it.\n",
	})

	report, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.BuildID, "default config enables search")

	index := readSiteFile(t, cfg, "index.html")
	assert.Contains(t, index, "<title>Welcome - riemax</title>")
	assert.Contains(t, index, "<em>world</em>")
	assert.Contains(t, index, "© 2026 riemax")
	// Sidebar links both pages.
	assert.Contains(t, index, `href="guide/"`)

	guide := readSiteFile(t, cfg, "guide/index.html")
	assert.Contains(t, guide, "Usage")
	// Prev link back to the first page, base-prefixed.
	assert.Contains(t, guide, `class="pager-prev"`)
	assert.Contains(t, guide, `href="../"`)

	// Generated assets.
	assert.Contains(t, readSiteFile(t, cfg, "assets/site.css"), "--rx-primary")
	assert.Contains(t, readSiteFile(t, cfg, "assets/chroma.css"), ".chroma")

	// Search index holds both pages.
	idx, err := search.Open(filepath.Join(cfg.SiteDir, search.IndexFileName), 3)
	require.NoError(t, err)
	defer idx.Close()
	results, err := idx.Query([]string{"usage"}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "guide/", results[0].PagePath)
}

func TestBuildImplicitNav(t *testing.T) {
	cfg := buildProject(t, "site_name: riemax\n", map[string]string{
		"index.md": "# Home\n",
		"extra.md": "# Extra\n",
	})

	report, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)

	assert.FileExists(t, filepath.Join(cfg.SiteDir, "extra", "index.html"))
}

func TestBuildFillsBarePathNavTitles(t *testing.T) {
	cfg := buildProject(t, `
site_name: riemax
nav:
  - index.md
  - guide.md
  - release-notes.md
`, map[string]string{
		"index.md":         "# Welcome\n",
		"guide.md":         "# User Guide\n\nBody.\n",
		"release-notes.md": "Notes without a heading.\n",
	})

	_, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)

	// Sidebar links carry the rendered page's H1, or a path-derived title
	// when the page has none.
	index := readSiteFile(t, cfg, "index.html")
	assert.Contains(t, index, `>User Guide</a>`)
	assert.Contains(t, index, `>Release Notes</a>`)
	assert.NotContains(t, index, `"></a>`, "no empty link text")

	// Pager links get the same titles.
	guide := readSiteFile(t, cfg, "guide/index.html")
	assert.Contains(t, guide, "&larr; Welcome")
	assert.Contains(t, guide, "Release Notes &rarr;")
}

func TestBuildStrictModeEscalatesWarnings(t *testing.T) {
	cfg := buildProject(t, `
site_name: riemax
strict: true
nav:
  - index.md
  - missing.md
`, map[string]string{
		"index.md": "# Home\n",
	})

	_, err := New(cfg, logr.Discard()).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")
}

func TestBuildNotebookPage(t *testing.T) {
	nb := `{"nbformat": 4, "metadata": {"kernelspec": {"name": "python3", "language": "python"}},
  "cells": [{"cell_type": "markdown", "metadata": {}, "source": "# Notebook Page"}]}`

	cfg := buildProject(t, `
site_name: riemax
plugins:
  - search
  - notebooks
nav:
  - index.md
  - Demo: demo.ipynb
`, map[string]string{
		"index.md":   "# Home\n",
		"demo.ipynb": nb,
	})

	report, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Contains(t, readSiteFile(t, cfg, "demo/index.html"), "Notebook Page")
}

func TestBuildNotebookWithoutPluginWarns(t *testing.T) {
	cfg := buildProject(t, `
site_name: riemax
nav:
  - index.md
  - Demo: demo.ipynb
`, map[string]string{
		"index.md":   "# Home\n",
		"demo.ipynb": `{"nbformat": 4, "metadata": {}, "cells": []}`,
	})

	report, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages, "notebook page skipped")
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "notebooks plugin")
}

func TestBuildCopiesLocalAssets(t *testing.T) {
	cfg := buildProject(t, `
site_name: riemax
extra_css:
  - styles/extra.css
extra_javascript:
  - https://cdn.example.org/math.js
nav:
  - index.md
`, map[string]string{
		"index.md":         "# Home\n",
		"styles/extra.css": "body { color: red; }\n",
		"img/plot.png":     "not really a png",
		"_drafts/wip.css":  "ignored",
	})

	_, err := New(cfg, logr.Discard()).Build(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.SiteDir, "styles", "extra.css"))
	assert.FileExists(t, filepath.Join(cfg.SiteDir, "img", "plot.png"), "non-page files are mirrored")
	assert.NoFileExists(t, filepath.Join(cfg.SiteDir, "_drafts", "wip.css"))

	index := readSiteFile(t, cfg, "index.html")
	assert.Contains(t, index, `href="styles/extra.css"`)
	assert.Contains(t, index, `src="https://cdn.example.org/math.js"`)
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		src  string
		url  string
		out  string
		base string
	}{
		{"index.md", "", "index.html", ""},
		{"guide.md", "guide/", "guide/index.html", "../"},
		{"a/b.md", "a/b/", "a/b/index.html", "../../"},
		{"a/index.md", "a/", "a/index.html", "../"},
		{"demo.ipynb", "demo/", "demo/index.html", "../"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.url, pageURL(tt.src), tt.src)
		assert.Equal(t, tt.out, outputPath(tt.src), tt.src)
		assert.Equal(t, tt.base, basePrefix(pageURL(tt.src)), tt.src)
	}
}

func TestNavHTMLMarksActiveTrail(t *testing.T) {
	tree := nav.Tree{Items: []nav.Item{
		{Title: "Home", Path: "index.md"},
		{Title: "Examples", Children: []nav.Item{
			{Title: "Geodesics", Path: "examples/geodesics.md"},
		}},
	}}

	out := string(navHTML(tree, "examples/geodesics.md", "../../"))
	assert.Contains(t, out, `class="nav-active"`)
	assert.Contains(t, out, `class="nav-section nav-active-trail"`)
	assert.Contains(t, out, `href="../../examples/geodesics/"`)
	assert.Contains(t, out, `href="../../"`, "root page link")
}

func TestRepoLabel(t *testing.T) {
	assert.Equal(t, "explicit", repoLabel("explicit", "https://github.com/a/b"))
	assert.Equal(t, "a/b", repoLabel("", "https://github.com/a/b"))
	assert.Equal(t, "", repoLabel("", ""))
}
