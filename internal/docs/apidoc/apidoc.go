// Package apidoc generates API reference pages from Go doc comments: the
// docstring-extraction plugin of the site config, Go-native. Each
// configured package directory becomes one reference page. Extraction uses
// go/parser and go/doc; the output is markdown, so reference pages flow
// through the same rendering pipeline as authored pages.
package apidoc

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/printer"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/riemax-project/riemax/internal/docs/config"
)

// PackageDoc is the extracted documentation of one package.
type PackageDoc struct {
	Name       string // package name
	ImportPath string // as configured
	Markdown   []byte // generated reference page source
}

// Extract parses the package in dir and generates its reference page
// markdown according to the plugin options. dir is resolved relative to
// the repository root; the configured entry doubles as the displayed
// import path.
func Extract(dir string, opts config.APIDocOptions) (*PackageDoc, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, filepath.FromSlash(dir), nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse package %s: %w", dir, err)
	}

	pkg := pickPackage(pkgs)
	if pkg == nil {
		return nil, fmt.Errorf("no buildable package in %s", dir)
	}

	docPkg := doc.New(pkg, dir, 0)

	var b strings.Builder
	g := generator{fset: fset, opts: opts, out: &b}
	g.writePackage(docPkg, dir)

	return &PackageDoc{
		Name:       docPkg.Name,
		ImportPath: dir,
		Markdown:   []byte(b.String()),
	}, nil
}

// pickPackage selects the non-test package from a parsed directory.
func pickPackage(pkgs map[string]*ast.Package) *ast.Package {
	for name, pkg := range pkgs {
		if !strings.HasSuffix(name, "_test") {
			return pkg
		}
	}
	return nil
}

type generator struct {
	fset *token.FileSet
	opts config.APIDocOptions
	out  *strings.Builder
}

func (g *generator) heading(offset int, text string) {
	level := g.opts.HeadingLevel + offset
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(g.out, "%s %s\n\n", strings.Repeat("#", level), text)
}

func (g *generator) writePackage(p *doc.Package, importPath string) {
	g.heading(0, fmt.Sprintf("Package `%s`", p.Name))
	fmt.Fprintf(g.out, "`import \"%s\"`\n\n", importPath)
	if p.Doc != "" {
		g.out.WriteString(p.Doc + "\n\n")
	}
	g.writeMemberIndex(p)

	if len(p.Consts) > 0 {
		g.heading(1, "Constants")
		for _, c := range p.Consts {
			g.writeValue(c)
		}
	}
	if len(p.Vars) > 0 {
		g.heading(1, "Variables")
		for _, v := range p.Vars {
			g.writeValue(v)
		}
	}

	funcs := append([]*doc.Func(nil), p.Funcs...)
	g.orderFuncs(funcs)
	if len(funcs) > 0 {
		g.heading(1, "Functions")
		for _, f := range funcs {
			g.writeFunc(f, 2)
		}
	}

	types := append([]*doc.Type(nil), p.Types...)
	g.orderTypes(types)
	if len(types) > 0 {
		g.heading(1, "Types")
		for _, t := range types {
			g.writeType(t)
		}
	}
}

// writeMemberIndex summarizes the package's functions and types under the
// package heading, formatted per docstring_section_style: a table by
// default, a bullet list when the style is "list".
func (g *generator) writeMemberIndex(p *doc.Package) {
	type member struct {
		name    string
		summary string
	}
	var members []member

	funcs := append([]*doc.Func(nil), p.Funcs...)
	g.orderFuncs(funcs)
	for _, f := range funcs {
		members = append(members, member{f.Name, p.Synopsis(f.Doc)})
	}
	types := append([]*doc.Type(nil), p.Types...)
	g.orderTypes(types)
	for _, t := range types {
		members = append(members, member{t.Name, p.Synopsis(t.Doc)})
	}
	if len(members) == 0 {
		return
	}

	if g.opts.SectionStyle == "list" {
		for _, m := range members {
			if m.summary == "" {
				fmt.Fprintf(g.out, "- `%s`\n", m.name)
				continue
			}
			fmt.Fprintf(g.out, "- `%s`: %s\n", m.name, m.summary)
		}
		g.out.WriteString("\n")
		return
	}

	g.out.WriteString("| Member | Summary |\n| --- | --- |\n")
	for _, m := range members {
		fmt.Fprintf(g.out, "| `%s` | %s |\n", m.name, strings.ReplaceAll(m.summary, "|", "\\|"))
	}
	g.out.WriteString("\n")
}

func (g *generator) writeValue(v *doc.Value) {
	g.codeBlock(g.printNode(v.Decl))
	if v.Doc != "" {
		g.out.WriteString(v.Doc + "\n\n")
	}
}

func (g *generator) writeFunc(f *doc.Func, offset int) {
	name := f.Name
	if f.Recv != "" {
		name = fmt.Sprintf("(%s) %s", f.Recv, f.Name)
	}
	g.heading(offset, fmt.Sprintf("`%s`", name))
	g.codeBlock(g.signature(f))
	if f.Doc != "" {
		g.out.WriteString(f.Doc + "\n\n")
	}
	if g.opts.ShowSource {
		g.out.WriteString("Source:\n\n")
		g.codeBlock(g.printNode(f.Decl))
	}
}

func (g *generator) writeType(t *doc.Type) {
	g.heading(2, fmt.Sprintf("`type %s`", t.Name))
	g.codeBlock(g.printNode(t.Decl))
	if t.Doc != "" {
		g.out.WriteString(t.Doc + "\n\n")
	}

	for _, c := range t.Consts {
		g.writeValue(c)
	}
	for _, v := range t.Vars {
		g.writeValue(v)
	}

	funcs := append([]*doc.Func(nil), t.Funcs...)
	funcs = append(funcs, t.Methods...)
	g.orderFuncs(funcs)
	for _, f := range funcs {
		g.writeFunc(f, 3)
	}
}

// signature prints just the declaration line of a function, without body.
func (g *generator) signature(f *doc.Func) string {
	decl := *f.Decl
	decl.Body = nil
	decl.Doc = nil
	return g.printNode(&decl)
}

func (g *generator) printNode(node ast.Node) string {
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, g.fset, node); err != nil {
		return ""
	}
	return buf.String()
}

func (g *generator) codeBlock(code string) {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return
	}
	fmt.Fprintf(g.out, "```go\n%s\n```\n\n", code)
}

// orderFuncs applies the members_order option. go/doc returns members
// alphabetically; source order re-sorts by declaration position.
func (g *generator) orderFuncs(funcs []*doc.Func) {
	if g.opts.MembersOrder != "source" {
		sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
		return
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Decl.Pos() < funcs[j].Decl.Pos() })
}

func (g *generator) orderTypes(types []*doc.Type) {
	if g.opts.MembersOrder != "source" {
		sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
		return
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Decl.Pos() < types[j].Decl.Pos() })
}
