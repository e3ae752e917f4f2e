package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// maxNestDepth bounds recursive rendering of admonition and tab bodies.
const maxNestDepth = 3

var (
	admonitionRe = regexp.MustCompile(`^!!!\s+([a-zA-Z][\w-]*)(?:\s+"([^"]*)")?\s*$`)
	tabRe        = regexp.MustCompile(`^===\s+"([^"]*)"\s*$`)
)

// preprocess rewrites the admonition (`!!! note "Title"`) and tabbed
// (`=== "Tab"`) block syntaxes into raw HTML before parsing. Block bodies
// are themselves markdown; they are rendered recursively up to
// maxNestDepth and embedded as HTML.
func (r *Renderer) preprocess(src []byte, depth int) []byte {
	if depth >= maxNestDepth {
		return src
	}
	lines := strings.Split(string(src), "\n")
	var out []string

	for i := 0; i < len(lines); {
		line := lines[i]

		if r.exts.Enabled("admonition") {
			if m := admonitionRe.FindStringSubmatch(line); m != nil {
				body, next := collectIndented(lines, i+1)
				out = append(out, r.admonitionHTML(m[1], m[2], body, depth), "")
				i = next
				continue
			}
		}

		if r.exts.Enabled("tabbed") {
			if m := tabRe.FindStringSubmatch(line); m != nil {
				var titles []string
				var bodies []string
				j := i
				for j < len(lines) {
					tm := tabRe.FindStringSubmatch(lines[j])
					if tm == nil {
						break
					}
					body, next := collectIndented(lines, j+1)
					titles = append(titles, tm[1])
					bodies = append(bodies, body)
					j = next
					// Skip blank separator lines between tabs of one set.
					for j < len(lines) && strings.TrimSpace(lines[j]) == "" && j+1 < len(lines) && tabRe.MatchString(lines[j+1]) {
						j++
					}
				}
				out = append(out, r.tabbedHTML(titles, bodies, depth), "")
				i = j
				continue
			}
		}

		out = append(out, line)
		i++
	}

	return []byte(strings.Join(out, "\n"))
}

// collectIndented gathers the 4-space-indented body following a block
// marker, dedented, and returns it with the index of the first line after
// the block. Blank lines inside the body are kept.
func collectIndented(lines []string, start int) (body string, next int) {
	var collected []string
	i := start
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "    "):
			collected = append(collected, line[4:])
		case strings.HasPrefix(line, "\t"):
			collected = append(collected, line[1:])
		case strings.TrimSpace(line) == "":
			// A blank line only continues the block when indented content
			// follows it.
			if j := nextNonBlank(lines, i+1); j >= 0 && (strings.HasPrefix(lines[j], "    ") || strings.HasPrefix(lines[j], "\t")) {
				collected = append(collected, "")
			} else {
				return strings.Join(collected, "\n"), i
			}
		default:
			return strings.Join(collected, "\n"), i
		}
		i++
	}
	return strings.Join(collected, "\n"), i
}

func nextNonBlank(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// admonitionHTML renders one admonition block. The title defaults to the
// capitalized kind when the author omits it.
func (r *Renderer) admonitionHTML(kind, title, body string, depth int) string {
	if title == "" {
		title = strings.ToUpper(kind[:1]) + kind[1:]
	}
	inner := r.renderNested(body, depth)
	return fmt.Sprintf("<div class=\"admonition %s\">\n<p class=\"admonition-title\">%s</p>\n%s</div>",
		strings.ToLower(kind), escapeHTML(title), inner)
}

// tabbedHTML renders one group of consecutive tab blocks.
func (r *Renderer) tabbedHTML(titles, bodies []string, depth int) string {
	style := "classic"
	if r.alternateTabs {
		style = "alternate"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"tabbed-set\" data-tabs-style=\"%s\">\n", style)
	for i := range titles {
		fmt.Fprintf(&b, "<div class=\"tabbed-block\">\n<label class=\"tabbed-label\">%s</label>\n<div class=\"tabbed-content\">\n%s</div>\n</div>\n",
			escapeHTML(titles[i]), r.renderNested(bodies[i], depth))
	}
	b.WriteString("</div>")
	return b.String()
}

// renderNested renders a block body as markdown, bounded by maxNestDepth.
func (r *Renderer) renderNested(body string, depth int) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	nested := *r
	src := nested.preprocess([]byte(body), depth+1)

	p := parser.NewWithExtensions(nested.parserExtensions())
	doc := p.Parse(src)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags:          html.CommonFlags,
		RenderNodeHook: nested.renderHook,
	})
	return string(markdown.Render(doc, renderer)) + "\n"
}
