// Package theme resolves the theme section of the site config into the
// concrete artifacts the page template needs: per-scheme CSS custom
// properties gated by prefers-color-scheme, a font stylesheet link, and
// body classes for feature toggles.
package theme

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/riemax-project/riemax/internal/docs/config"
)

// Named colors understood in palette primary/accent slots. Anything not in
// this table is passed through verbatim, so raw CSS colors work too.
var namedColors = map[string]string{
	"red":    "#ef5350",
	"pink":   "#e91e63",
	"purple": "#ab47bc",
	"indigo": "#3f51b5",
	"blue":   "#2196f3",
	"cyan":   "#00bcd4",
	"teal":   "#009688",
	"green":  "#4caf50",
	"lime":   "#cddc39",
	"amber":  "#ffc107",
	"orange": "#ff9800",
	"brown":  "#795548",
	"slate":  "#37474f",
	"grey":   "#757575",
	"black":  "#212121",
	"white":  "#fafafa",
}

// Resolved is a theme ready for template injection.
type Resolved struct {
	Name        string
	CSS         string // palette custom properties, media-query gated
	FontsHref   string // Google Fonts stylesheet URL, empty when no fonts set
	FontCSS     string // font-family custom properties
	BodyClasses string // space-joined feature classes
	Logo        string
	Favicon     string
}

// Resolve turns the config theme into template-ready values. Palettes keyed
// light/dark become @media(prefers-color-scheme) blocks; a single palette
// applies unconditionally.
func Resolve(t config.Theme) Resolved {
	r := Resolved{
		Name:    t.Name,
		Logo:    t.Logo,
		Favicon: t.Favicon,
	}

	var css strings.Builder
	for _, p := range t.Palettes {
		block := paletteBlock(p)
		if len(t.Palettes) > 1 && p.Media != "" {
			fmt.Fprintf(&css, "@media %s {\n%s}\n", p.Media, block)
		} else if len(t.Palettes) > 1 {
			fmt.Fprintf(&css, "@media (prefers-color-scheme: %s) {\n%s}\n", p.Scheme, block)
		} else {
			css.WriteString(block)
		}
	}
	r.CSS = css.String()

	r.FontsHref = fontsHref(t.Font)
	r.FontCSS = fontCSS(t.Font)
	r.BodyClasses = featureClasses(t.Features)
	return r
}

func paletteBlock(p config.Palette) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  --rx-scheme: %s;\n", p.Scheme)
	if p.Primary != "" {
		fmt.Fprintf(&b, "  --rx-primary: %s;\n", ColorValue(p.Primary))
	}
	if p.Accent != "" {
		fmt.Fprintf(&b, "  --rx-accent: %s;\n", ColorValue(p.Accent))
	}
	if p.Scheme == "dark" {
		b.WriteString("  --rx-bg: #1e2129;\n  --rx-fg: #e8eaf0;\n")
	} else {
		b.WriteString("  --rx-bg: #ffffff;\n  --rx-fg: #1f2430;\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// ColorValue maps a named color to its hex value, passing through anything
// already concrete.
func ColorValue(name string) string {
	if hex, ok := namedColors[strings.ToLower(name)]; ok {
		return hex
	}
	return name
}

// fontsHref builds the Google Fonts stylesheet URL for the configured
// families. Families are deduplicated and sorted for a stable URL.
func fontsHref(f config.Font) string {
	families := make(map[string]bool)
	if f.Text != "" {
		families[f.Text] = true
	}
	if f.Code != "" {
		families[f.Code] = true
	}
	if len(families) == 0 {
		return ""
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	params := url.Values{}
	for _, name := range names {
		params.Add("family", strings.ReplaceAll(name, " ", "+"))
	}
	params.Set("display", "swap")
	// url.Values encodes '+' inside family names; Google Fonts expects the
	// literal plus, so undo that one escape.
	return "https://fonts.googleapis.com/css2?" + strings.ReplaceAll(params.Encode(), "%2B", "+")
}

func fontCSS(f config.Font) string {
	var b strings.Builder
	if f.Text == "" && f.Code == "" {
		return ""
	}
	b.WriteString(":root {\n")
	if f.Text != "" {
		fmt.Fprintf(&b, "  --rx-font-text: %q, sans-serif;\n", f.Text)
	}
	if f.Code != "" {
		fmt.Fprintf(&b, "  --rx-font-code: %q, monospace;\n", f.Code)
	}
	b.WriteString("}\n")
	return b.String()
}

// featureClasses converts feature toggles like "navigation.instant" into
// body classes like "feature-navigation-instant".
func featureClasses(features []string) string {
	classes := make([]string, 0, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		classes = append(classes, "feature-"+strings.ReplaceAll(f, ".", "-"))
	}
	return strings.Join(classes, " ")
}
