package site

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/riemax-project/riemax/internal/docs/markdown"
	"github.com/riemax-project/riemax/internal/docs/nav"
)

// pageTemplate is the single page shell every document renders into. The
// palette custom properties and font stylesheet come from the resolved
// theme; layout CSS ships as a static asset.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
{{- if .FontsHref}}
<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
<link rel="stylesheet" href="{{.FontsHref}}">
{{- end}}
<style>{{.ThemeCSS}}</style>
<link rel="stylesheet" href="{{.Base}}assets/site.css">
<link rel="stylesheet" href="{{.Base}}assets/chroma.css">
{{- range .ExtraCSS}}
<link rel="stylesheet" href="{{.}}">
{{- end}}
{{- if .Favicon}}
<link rel="icon" href="{{.Base}}{{.Favicon}}">
{{- end}}
</head>
<body{{if .BodyClasses}} class="{{.BodyClasses}}"{{end}}>
<header class="site-header">
{{- if .Logo}}
<img class="site-logo" src="{{.Base}}{{.Logo}}" alt="">
{{- end}}
<a class="site-title" href="{{.Base}}">{{.SiteName}}</a>
{{- if .RepoURL}}
<a class="site-repo" href="{{.RepoURL}}">{{.RepoName}}</a>
{{- end}}
</header>
<div class="layout">
<nav class="site-nav" aria-label="Navigation">
{{.NavHTML}}
</nav>
<main class="content">
{{.Content}}
{{- if or .Prev .Next}}
<nav class="pager">
{{- if .Prev}}
<a class="pager-prev" href="{{.Prev.Href}}">&larr; {{.Prev.Title}}</a>
{{- end}}
{{- if .Next}}
<a class="pager-next" href="{{.Next.Href}}">{{.Next.Title}} &rarr;</a>
{{- end}}
</nav>
{{- end}}
</main>
{{- if .TOC}}
<aside class="toc" aria-label="Contents">
<ul>
{{- range .TOC}}
<li class="toc-l{{.Level}}"><a href="#{{.ID}}">{{.Text}}</a></li>
{{- end}}
</ul>
</aside>
{{- end}}
</div>
{{- if .Copyright}}
<footer class="site-footer">{{.Copyright}}</footer>
{{- end}}
{{- range .ExtraJS}}
<script src="{{.}}"></script>
{{- end}}
</body>
</html>
`))

// pageLink is a prev/next pager entry.
type pageLink struct {
	Title string
	Href  string
}

// pageData is the template input for one rendered page.
type pageData struct {
	SiteName    string
	Description string
	Title       string
	Base        string // relative prefix back to the site root
	ThemeCSS    template.CSS
	FontsHref   string
	BodyClasses string
	Logo        string
	Favicon     string
	RepoURL     string
	RepoName    string
	Copyright   string
	NavHTML     template.HTML
	Content     template.HTML
	TOC         []markdown.Heading
	Prev        *pageLink
	Next        *pageLink
	ExtraCSS    []string
	ExtraJS     []string
}

// pageURL maps a source document path to its pretty URL path: foo.md
// becomes foo/, a/b.ipynb becomes a/b/, and any index document maps onto
// its directory.
func pageURL(srcPath string) string {
	p := strings.TrimSuffix(srcPath, ".md")
	p = strings.TrimSuffix(p, ".ipynb")
	if p == "index" {
		return ""
	}
	if strings.HasSuffix(p, "/index") {
		return strings.TrimSuffix(p, "index")
	}
	return p + "/"
}

// outputPath maps a source document path to the HTML file under site_dir.
func outputPath(srcPath string) string {
	url := pageURL(srcPath)
	return url + "index.html"
}

// basePrefix returns the ../ chain from a page URL back to the site root.
func basePrefix(url string) string {
	return strings.Repeat("../", strings.Count(url, "/"))
}

// navHTML renders the sidebar navigation as a nested list, marking the
// active page and its ancestor sections.
func navHTML(tree nav.Tree, activePath, base string) template.HTML {
	var b strings.Builder
	writeNavItems(&b, tree.Items, activePath, base)
	return template.HTML(b.String())
}

func writeNavItems(b *strings.Builder, items []nav.Item, activePath, base string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, it := range items {
		if it.IsSection() {
			class := ""
			if sectionContains(it, activePath) {
				class = ` class="nav-section nav-active-trail"`
			} else {
				class = ` class="nav-section"`
			}
			fmt.Fprintf(b, "<li%s><span>%s</span>\n", class, template.HTMLEscapeString(it.Title))
			writeNavItems(b, it.Children, activePath, base)
			b.WriteString("</li>\n")
			continue
		}

		class := ""
		if it.Path == activePath {
			class = ` class="nav-active"`
		}
		fmt.Fprintf(b, "<li%s><a href=\"%s%s\">%s</a></li>\n",
			class, base, pageURL(it.Path), template.HTMLEscapeString(it.Title))
	}
	b.WriteString("</ul>\n")
}

func sectionContains(section nav.Item, pagePath string) bool {
	for _, child := range section.Children {
		if child.Path == pagePath {
			return true
		}
		if child.IsSection() && sectionContains(child, pagePath) {
			return true
		}
	}
	return false
}
