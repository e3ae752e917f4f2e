// Package notebook renders Jupyter notebooks (nbformat 4) into the same
// page form as markdown documents: markdown cells go through the site's
// markdown renderer, code cells are syntax highlighted, and stored outputs
// (text, HTML, PNG) are embedded. Notebooks are never executed.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riemax-project/riemax/internal/docs/config"
	"github.com/riemax-project/riemax/internal/docs/markdown"
)

// Notebook is the subset of nbformat 4 the renderer consumes.
type Notebook struct {
	Cells    []Cell   `json:"cells"`
	Metadata Metadata `json:"metadata"`
	NBFormat int      `json:"nbformat"`
}

// Cell is a single notebook cell.
type Cell struct {
	CellType       string     `json:"cell_type"`
	Source         MultiLine  `json:"source"`
	Outputs        []Output   `json:"outputs,omitempty"`
	ExecutionCount *int       `json:"execution_count,omitempty"`
	Metadata       CellMeta   `json:"metadata"`
}

// CellMeta carries the per-cell tags used to hide inputs.
type CellMeta struct {
	Tags []string `json:"tags,omitempty"`
}

// Output is one stored cell output.
type Output struct {
	OutputType string               `json:"output_type"`
	Text       MultiLine            `json:"text,omitempty"`
	Data       map[string]MultiLine `json:"data,omitempty"`
	EName      string               `json:"ename,omitempty"`
	EValue     string               `json:"evalue,omitempty"`
	Traceback  []string             `json:"traceback,omitempty"`
}

// Metadata holds the notebook-level kernel information.
type Metadata struct {
	KernelSpec struct {
		Name     string `json:"name"`
		Language string `json:"language"`
	} `json:"kernelspec"`
	LanguageInfo struct {
		Name string `json:"name"`
	} `json:"language_info"`
}

// MultiLine decodes the nbformat convention of storing text as either a
// single string or a list of line strings.
type MultiLine string

func (m *MultiLine) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = MultiLine(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("notebook text must be a string or list of strings")
	}
	*m = MultiLine(strings.Join(lines, ""))
	return nil
}

// Parse decodes a notebook document.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}
	if nb.NBFormat != 0 && nb.NBFormat < 4 {
		return nil, fmt.Errorf("unsupported nbformat %d (want 4)", nb.NBFormat)
	}
	return &nb, nil
}

// Language returns the notebook's source language, preferring the explicit
// kernel override from the plugin options.
func (nb *Notebook) Language(opts config.NotebookOptions) string {
	if opts.KernelName != "" {
		return opts.KernelName
	}
	if nb.Metadata.LanguageInfo.Name != "" {
		return nb.Metadata.LanguageInfo.Name
	}
	if nb.Metadata.KernelSpec.Language != "" {
		return nb.Metadata.KernelSpec.Language
	}
	return "python"
}

// Render converts a notebook into a rendered page using the site's
// markdown renderer for markdown cells.
func Render(data []byte, md *markdown.Renderer, opts config.NotebookOptions) (*markdown.Page, error) {
	nb, err := Parse(data)
	if err != nil {
		return nil, err
	}

	lang := nb.Language(opts)
	page := &markdown.Page{}
	var html strings.Builder

	for i, cell := range nb.Cells {
		switch cell.CellType {
		case "markdown":
			cellPage, err := md.Render([]byte(cell.Source))
			if err != nil {
				return nil, fmt.Errorf("notebook cell %d: %w", i, err)
			}
			if page.Title == "" && cellPage.Title != "" {
				page.Title = cellPage.Title
			}
			page.TOC = append(page.TOC, cellPage.TOC...)
			page.Sections = append(page.Sections, cellPage.Sections...)
			html.Write(cellPage.HTML)

		case "code":
			if err := renderCodeCell(&html, cell, lang, opts); err != nil {
				return nil, fmt.Errorf("notebook cell %d: %w", i, err)
			}
			page.Sections = append(page.Sections, markdown.Section{Text: string(cell.Source)})

		case "raw":
			// Raw cells pass through untouched, matching nbconvert.
			html.WriteString(string(cell.Source))
		}
	}

	page.HTML = []byte(html.String())
	return page, nil
}

func renderCodeCell(html *strings.Builder, cell Cell, lang string, opts config.NotebookOptions) error {
	hidden := !opts.IncludeSource || hasTag(cell, "hide")

	html.WriteString(`<div class="nb-cell">` + "\n")
	if !hidden && strings.TrimSpace(string(cell.Source)) != "" {
		highlighted, err := markdown.Highlight(string(cell.Source), lang, false)
		if err != nil {
			return err
		}
		prompt := ""
		if cell.ExecutionCount != nil {
			prompt = fmt.Sprintf(`<span class="nb-prompt">In [%d]:</span>`, *cell.ExecutionCount)
		}
		fmt.Fprintf(html, "<div class=\"nb-input\">%s\n%s</div>\n", prompt, highlighted)
	}
	for _, out := range cell.Outputs {
		renderOutput(html, out)
	}
	html.WriteString("</div>\n")
	return nil
}

func renderOutput(html *strings.Builder, out Output) {
	switch out.OutputType {
	case "stream":
		fmt.Fprintf(html, "<pre class=\"nb-output nb-stream\">%s</pre>\n", escape(string(out.Text)))

	case "execute_result", "display_data":
		// Richest representation wins: HTML, then PNG, then plain text.
		if v, ok := out.Data["text/html"]; ok {
			fmt.Fprintf(html, "<div class=\"nb-output nb-html\">%s</div>\n", string(v))
			return
		}
		if v, ok := out.Data["image/png"]; ok {
			fmt.Fprintf(html, "<div class=\"nb-output\"><img src=\"data:image/png;base64,%s\" alt=\"notebook output\"></div>\n",
				strings.TrimSpace(string(v)))
			return
		}
		if v, ok := out.Data["text/plain"]; ok {
			fmt.Fprintf(html, "<pre class=\"nb-output\">%s</pre>\n", escape(string(v)))
		}

	case "error":
		fmt.Fprintf(html, "<pre class=\"nb-output nb-error\">%s: %s</pre>\n", escape(out.EName), escape(out.EValue))
	}
}

func hasTag(cell Cell, tag string) bool {
	for _, t := range cell.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
