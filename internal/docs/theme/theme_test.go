package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riemax-project/riemax/internal/docs/config"
)

func TestResolveLightDarkPalettes(t *testing.T) {
	resolved := Resolve(config.Theme{
		Name: "terrain",
		Palettes: []config.Palette{
			{Scheme: "light", Media: "(prefers-color-scheme: light)", Primary: "indigo"},
			{Scheme: "dark", Media: "(prefers-color-scheme: dark)", Primary: "slate", Accent: "amber"},
		},
	})

	assert.Equal(t, "terrain", resolved.Name)
	assert.Contains(t, resolved.CSS, "@media (prefers-color-scheme: light)")
	assert.Contains(t, resolved.CSS, "@media (prefers-color-scheme: dark)")
	assert.Contains(t, resolved.CSS, "--rx-primary: #3f51b5")
	assert.Contains(t, resolved.CSS, "--rx-accent: #ffc107")
	assert.Contains(t, resolved.CSS, "--rx-scheme: dark")
}

func TestResolveSinglePaletteIsUnconditional(t *testing.T) {
	resolved := Resolve(config.Theme{
		Palettes: []config.Palette{{Scheme: "light", Primary: "teal"}},
	})

	assert.NotContains(t, resolved.CSS, "@media")
	assert.Contains(t, resolved.CSS, "--rx-primary: #009688")
}

func TestResolveMediaFallsBackToScheme(t *testing.T) {
	resolved := Resolve(config.Theme{
		Palettes: []config.Palette{
			{Scheme: "light"},
			{Scheme: "dark"},
		},
	})

	assert.Contains(t, resolved.CSS, "@media (prefers-color-scheme: light)")
	assert.Contains(t, resolved.CSS, "@media (prefers-color-scheme: dark)")
}

func TestColorValue(t *testing.T) {
	assert.Equal(t, "#3f51b5", ColorValue("indigo"))
	assert.Equal(t, "#3f51b5", ColorValue("Indigo"))
	assert.Equal(t, "#123abc", ColorValue("#123abc"), "concrete values pass through")
	assert.Equal(t, "rebeccapurple", ColorValue("rebeccapurple"))
}

func TestFontsHref(t *testing.T) {
	resolved := Resolve(config.Theme{
		Font: config.Font{Text: "Roboto", Code: "Roboto Mono"},
	})

	assert.True(t, strings.HasPrefix(resolved.FontsHref, "https://fonts.googleapis.com/css2?"))
	assert.Contains(t, resolved.FontsHref, "family=Roboto")
	assert.Contains(t, resolved.FontsHref, "family=Roboto+Mono")
	assert.Contains(t, resolved.FontsHref, "display=swap")
	assert.NotContains(t, resolved.FontsHref, "%2B")

	assert.Contains(t, resolved.FontCSS, `--rx-font-text: "Roboto", sans-serif;`)
	assert.Contains(t, resolved.FontCSS, `--rx-font-code: "Roboto Mono", monospace;`)
}

func TestFontsEmptyWhenUnset(t *testing.T) {
	resolved := Resolve(config.Theme{})
	assert.Empty(t, resolved.FontsHref)
	assert.Empty(t, resolved.FontCSS)
}

func TestFontsDeduplicated(t *testing.T) {
	resolved := Resolve(config.Theme{
		Font: config.Font{Text: "Inter", Code: "Inter"},
	})
	assert.Equal(t, 1, strings.Count(resolved.FontsHref, "family="))
}

func TestBodyClasses(t *testing.T) {
	resolved := Resolve(config.Theme{
		Features: []string{"navigation.instant", "content.code.copy", " "},
	})
	assert.Equal(t, "feature-navigation-instant feature-content-code-copy", resolved.BodyClasses)
}
