// Package markdown renders documentation pages to HTML. The pipeline is
// gomarkdown with an extension set assembled from the site config, a render
// hook for chroma code highlighting and math passthrough, and a
// preprocessing step for the admonition and tabbed-block syntaxes that
// plain markdown has no notion of.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/riemax-project/riemax/internal/docs/config"
)

// Heading is one entry of a page's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Section is a heading-delimited slice of page text, the unit the search
// index stores.
type Section struct {
	Heading string
	Anchor  string
	Text    string
}

// Page is the result of rendering one document.
type Page struct {
	Title    string // first H1, empty when the page has none
	HTML     []byte
	TOC      []Heading
	Sections []Section
}

// Renderer renders markdown documents according to one site's extension
// configuration. It is cheap to construct and safe to reuse; each Render
// call creates its own parser (gomarkdown parsers are single-use).
type Renderer struct {
	exts config.ExtensionList

	mathEnabled    bool
	tasklist       bool
	customCheckbox bool
	anchorLinenums bool
	tocDepth       int
	permalink      bool
	alternateTabs  bool
}

// New builds a Renderer from the configured markdown extensions.
func New(exts config.ExtensionList) *Renderer {
	return &Renderer{
		exts:           exts,
		mathEnabled:    exts.Enabled("arithmatex"),
		tasklist:       exts.Enabled("tasklist"),
		customCheckbox: exts.BoolOption("tasklist", "custom_checkbox", false),
		anchorLinenums: exts.BoolOption("highlight", "anchor_linenums", false),
		tocDepth:       exts.IntOption("toc", "toc_depth", 3),
		permalink:      exts.BoolOption("toc", "permalink", false),
		alternateTabs:  exts.BoolOption("tabbed", "alternate_style", true),
	}
}

// parserExtensions assembles the gomarkdown extension flags. AutoHeadingIDs
// is always on: the TOC and search anchors depend on it.
func (r *Renderer) parserExtensions() parser.Extensions {
	exts := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	if r.exts.Enabled("footnotes") {
		exts |= parser.Footnotes
	}
	if r.exts.Enabled("attr_list") {
		exts |= parser.Attributes
	}
	if r.exts.Enabled("def_list") {
		exts |= parser.DefinitionLists
	}
	if r.mathEnabled {
		exts |= parser.MathJax
	}
	if !r.exts.Enabled("tables") {
		exts &^= parser.Tables
	}
	return exts
}

// Render converts one markdown document to HTML and extracts the title,
// table of contents, and search sections.
func (r *Renderer) Render(src []byte) (*Page, error) {
	src = r.preprocess(src, 0)

	p := parser.NewWithExtensions(r.parserExtensions())
	doc := p.Parse(src)

	page := &Page{}
	collectOutline(doc, page, r.tocDepth)

	opts := html.RendererOptions{
		Flags:          html.CommonFlags | html.FootnoteReturnLinks,
		RenderNodeHook: r.renderHook,
	}
	renderer := html.NewRenderer(opts)
	out := markdown.Render(doc, renderer)

	if r.tasklist {
		out = renderTaskItems(out, r.customCheckbox)
	}
	page.HTML = out
	return page, nil
}

// renderHook handles the nodes the stock HTML renderer should not touch:
// fenced code blocks go through chroma, math nodes are wrapped for
// client-side typesetting, and headings optionally gain permalinks.
func (r *Renderer) renderHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.CodeBlock:
		lang := string(n.Info)
		if i := strings.IndexAny(lang, " \t"); i >= 0 {
			lang = lang[:i]
		}
		highlighted, err := Highlight(string(n.Literal), lang, r.anchorLinenums)
		if err != nil {
			// Fall back to the stock <pre> rendering on lexer failure.
			return ast.GoToNext, false
		}
		io.WriteString(w, highlighted)
		return ast.GoToNext, true

	case *ast.Math:
		if entering {
			fmt.Fprintf(w, `<span class="arithmatex">\(%s\)</span>`, escapeHTML(string(n.Literal)))
		}
		return ast.GoToNext, true

	case *ast.MathBlock:
		if entering {
			fmt.Fprintf(w, "<div class=\"arithmatex\">\\[%s\\]</div>\n", escapeHTML(string(n.Literal)))
		}
		return ast.GoToNext, true

	case *ast.Heading:
		if !entering && r.permalink && n.HeadingID != "" && n.Level > 1 {
			fmt.Fprintf(w, `<a class="headerlink" href="#%s" title="Permanent link">&para;</a>`, n.HeadingID)
		}
		return ast.GoToNext, false
	}
	return ast.GoToNext, false
}

// collectOutline walks the AST once, filling in the page title, table of
// contents, and heading-delimited text sections.
func collectOutline(doc ast.Node, page *Page, tocDepth int) {
	current := Section{Heading: "", Anchor: ""}
	var text strings.Builder

	flush := func() {
		current.Text = strings.TrimSpace(text.String())
		if current.Text != "" || current.Heading != "" {
			page.Sections = append(page.Sections, current)
		}
		text.Reset()
	}

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			headingText := nodeText(n)
			if n.Level == 1 && page.Title == "" {
				page.Title = headingText
			}
			if n.Level >= 2 && n.Level <= tocDepth {
				page.TOC = append(page.TOC, Heading{Level: n.Level, ID: n.HeadingID, Text: headingText})
			}
			flush()
			current = Section{Heading: headingText, Anchor: n.HeadingID}
			return ast.SkipChildren
		case *ast.Text:
			text.Write(n.Literal)
			text.WriteByte(' ')
		case *ast.Code:
			text.Write(n.Literal)
			text.WriteByte(' ')
		}
		return ast.GoToNext
	})
	flush()
}

// nodeText flattens all text content under a node.
func nodeText(node ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Literal)
		case *ast.Code:
			b.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(b.String())
}

// PlainText joins all section text, the body the search index stores for a
// page when section granularity is not needed.
func (p *Page) PlainText() string {
	parts := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		if s.Heading != "" {
			parts = append(parts, s.Heading)
		}
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// renderTaskItems post-processes rendered list items of the form
// <li>[ ] … / <li>[x] … into checkbox markup. gomarkdown has no native
// tasklist support, and the bracket forms survive rendering verbatim.
// Loose lists wrap item text in a paragraph, so both <li>[ ] and
// <li><p>[ ] are rewritten.
func renderTaskItems(out []byte, custom bool) []byte {
	class := ""
	if custom {
		class = ` class="task-list-item"`
	}
	replace := func(src []byte, marker string, checked bool) []byte {
		state := ""
		if checked {
			state = " checked"
		}
		input := fmt.Sprintf(`<input type="checkbox" disabled%s> `, state)
		src = bytes.ReplaceAll(src, []byte("<li>"+marker+" "), []byte("<li"+class+">"+input))
		return bytes.ReplaceAll(src, []byte("<li><p>"+marker+" "), []byte("<li"+class+"><p>"+input))
	}
	out = replace(out, "[ ]", false)
	out = replace(out, "[x]", true)
	out = replace(out, "[X]", true)
	return out
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
