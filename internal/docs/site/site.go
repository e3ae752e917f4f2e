// Package site turns a validated configuration plus a docs tree into a
// static HTML site: pages render through the markdown and notebook
// pipelines, API reference pages are generated from Go doc comments, and
// every write lands atomically so a half-finished build never replaces a
// good one.
package site

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/renameio/v2"

	"github.com/riemax-project/riemax/internal/docs/apidoc"
	"github.com/riemax-project/riemax/internal/docs/config"
	"github.com/riemax-project/riemax/internal/docs/markdown"
	"github.com/riemax-project/riemax/internal/docs/nav"
	"github.com/riemax-project/riemax/internal/docs/notebook"
	"github.com/riemax-project/riemax/internal/docs/search"
	"github.com/riemax-project/riemax/internal/docs/theme"
)

// Builder runs site builds for one configuration.
type Builder struct {
	cfg *config.Config
	log logr.Logger
}

// Report summarizes one completed build.
type Report struct {
	Pages    int
	Warnings []string
	BuildID  string // search index build id, empty when search is disabled
	Duration time.Duration
}

// New creates a Builder.
func New(cfg *config.Config, log logr.Logger) *Builder {
	return &Builder{cfg: cfg, log: log}
}

// document is one page ready for layout: its source path (which fixes its
// URL) and its rendered body.
type document struct {
	src  string
	page *markdown.Page
}

// Build renders the whole site into site_dir. Validation warnings are
// returned in the report; under strict mode they fail the build instead.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	started := time.Now()

	warnings, err := b.cfg.Validate()
	if err != nil {
		return nil, err
	}

	tree := b.cfg.NavTree()
	if len(tree.Items) == 0 {
		tree, err = nav.Implicit(os.DirFS(b.cfg.DocsDir))
		if err != nil {
			return nil, fmt.Errorf("derive navigation: %w", err)
		}
		b.log.V(1).Info("derived implicit navigation", "pages", len(tree.Pages()))
	}

	renderer := markdown.New(b.cfg.Extensions)

	docs, nbWarnings, err := b.renderPages(ctx, tree, renderer)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, nbWarnings...)

	refDocs, refItems, err := b.renderReference(renderer)
	if err != nil {
		return nil, err
	}
	if len(refItems) > 0 {
		tree.Items = append(tree.Items, nav.Item{Title: "Reference", Children: refItems})
		docs = append(docs, refDocs...)
	}

	// Bare-path and implicit nav entries have no title of their own; give
	// them the rendered page's so the sidebar and pager never link empty
	// text.
	titles := make(map[string]string, len(docs))
	for _, d := range docs {
		titles[d.src] = d.page.Title
	}
	tree = tree.FillTitles(func(p string) string { return titles[p] })

	if b.cfg.IsStrict() && len(warnings) > 0 {
		return nil, fmt.Errorf("strict mode: %d warning(s): %s", len(warnings), strings.Join(warnings, "; "))
	}

	resolved := theme.Resolve(b.cfg.Theme)
	if err := b.writeAssets(resolved); err != nil {
		return nil, err
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.writePage(d, tree, resolved); err != nil {
			return nil, err
		}
	}

	report := &Report{
		Pages:    len(docs),
		Warnings: warnings,
	}

	buildID, err := b.indexPages(docs)
	if err != nil {
		return nil, err
	}
	report.BuildID = buildID

	report.Duration = time.Since(started)
	b.log.Info("site build complete",
		"pages", report.Pages, "warnings", len(report.Warnings), "duration", report.Duration.String())
	return report, nil
}

// renderPages renders every navigation page from docs_dir.
func (b *Builder) renderPages(ctx context.Context, tree nav.Tree, renderer *markdown.Renderer) ([]document, []string, error) {
	nbOpts, nbEnabled, err := b.cfg.Plugins.NotebookOptions()
	if err != nil {
		return nil, nil, err
	}

	var docs []document
	var warnings []string
	for _, item := range tree.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		src := filepath.Join(b.cfg.DocsDir, filepath.FromSlash(item.Path))
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, nil, fmt.Errorf("read page %s: %w", item.Path, err)
		}

		var page *markdown.Page
		switch {
		case strings.HasSuffix(item.Path, ".ipynb"):
			if !nbEnabled {
				warnings = append(warnings, fmt.Sprintf("page %s skipped: notebooks plugin not enabled", item.Path))
				continue
			}
			page, err = notebook.Render(data, renderer, nbOpts)
		default:
			page, err = renderer.Render(data)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("render page %s: %w", item.Path, err)
		}

		if page.Title == "" {
			page.Title = item.Title
		}
		if page.Title == "" {
			page.Title = nav.TitleFromPath(item.Path)
		}
		docs = append(docs, document{src: item.Path, page: page})
	}
	return docs, warnings, nil
}

// renderReference generates API reference pages for the apidoc plugin's
// configured packages. Each package becomes one page under reference/.
func (b *Builder) renderReference(renderer *markdown.Renderer) ([]document, []nav.Item, error) {
	opts, enabled, err := b.cfg.Plugins.APIDocOptions()
	if err != nil {
		return nil, nil, err
	}
	if !enabled || len(opts.Packages) == 0 {
		return nil, nil, nil
	}

	var docs []document
	var items []nav.Item
	for _, pkgDir := range opts.Packages {
		pd, err := apidoc.Extract(pkgDir, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("apidoc %s: %w", pkgDir, err)
		}

		page, err := renderer.Render(pd.Markdown)
		if err != nil {
			return nil, nil, fmt.Errorf("render reference for %s: %w", pkgDir, err)
		}
		if page.Title == "" {
			page.Title = pd.Name
		}

		src := "reference/" + pd.Name + ".md"
		docs = append(docs, document{src: src, page: page})
		items = append(items, nav.Item{Title: pd.Name, Path: src})
		b.log.V(1).Info("generated reference page", "package", pkgDir)
	}
	return docs, items, nil
}

// writePage lays one rendered document into the page template and writes
// it atomically under site_dir.
func (b *Builder) writePage(d document, tree nav.Tree, resolved theme.Resolved) error {
	url := pageURL(d.src)
	base := basePrefix(url)

	data := pageData{
		SiteName:    b.cfg.SiteName,
		Description: b.cfg.SiteDescription,
		Title:       pageTitle(d.page.Title, b.cfg.SiteName),
		Base:        base,
		ThemeCSS:    template.CSS(resolved.CSS + resolved.FontCSS),
		FontsHref:   resolved.FontsHref,
		BodyClasses: resolved.BodyClasses,
		Logo:        resolved.Logo,
		Favicon:     resolved.Favicon,
		RepoURL:     b.cfg.RepoURL,
		RepoName:    repoLabel(b.cfg.RepoName, b.cfg.RepoURL),
		Copyright:   b.cfg.Copyright,
		NavHTML:     navHTML(tree, d.src, base),
		Content:     template.HTML(d.page.HTML),
		TOC:         d.page.TOC,
		ExtraCSS:    assetRefs(b.cfg.ExtraCSS, base),
		ExtraJS:     assetRefs(b.cfg.ExtraJavascript, base),
	}

	if prev, next := tree.PrevNext(d.src); prev != nil || next != nil {
		if prev != nil {
			data.Prev = &pageLink{Title: prev.Title, Href: base + pageURL(prev.Path)}
		}
		if next != nil {
			data.Next = &pageLink{Title: next.Title, Href: base + pageURL(next.Path)}
		}
	}

	var out strings.Builder
	if err := pageTemplate.Execute(&out, data); err != nil {
		return fmt.Errorf("render template for %s: %w", d.src, err)
	}

	dst := filepath.Join(b.cfg.SiteDir, filepath.FromSlash(outputPath(d.src)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create page dir for %s: %w", d.src, err)
	}
	if err := renameio.WriteFile(dst, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", d.src, err)
	}
	return nil
}

// indexPages rebuilds the search index when the search plugin is enabled.
func (b *Builder) indexPages(docs []document) (string, error) {
	opts, enabled, err := b.cfg.Plugins.SearchOptions()
	if err != nil {
		return "", err
	}
	if !enabled {
		return "", nil
	}

	var entries []search.Document
	for _, d := range docs {
		url := pageURL(d.src)
		if len(d.page.Sections) == 0 {
			entries = append(entries, search.Document{
				PagePath: url,
				Title:    d.page.Title,
				Body:     d.page.PlainText(),
			})
			continue
		}
		for _, s := range d.page.Sections {
			entries = append(entries, search.Document{
				PagePath: url,
				Title:    d.page.Title,
				Section:  s.Heading,
				Anchor:   s.Anchor,
				Body:     s.Text,
			})
		}
	}

	idx, err := search.Open(filepath.Join(b.cfg.SiteDir, search.IndexFileName), opts.MinLength)
	if err != nil {
		return "", err
	}
	defer idx.Close()

	buildID, err := idx.ReplaceAll(entries)
	if err != nil {
		return "", err
	}
	b.log.V(1).Info("rebuilt search index", "documents", len(entries), "build_id", buildID)
	return buildID, nil
}

func pageTitle(title, siteName string) string {
	if title == "" {
		return siteName
	}
	return title + " - " + siteName
}

// repoLabel derives a short repository label from the URL when repo_name
// is not set explicitly.
func repoLabel(name, url string) string {
	if name != "" || url == "" {
		return name
	}
	trimmed := strings.TrimSuffix(url, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return trimmed
}
