package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/riemax-project/riemax/internal/docs/markdown"
	"github.com/riemax-project/riemax/internal/docs/nav"
	"github.com/riemax-project/riemax/internal/docs/theme"
)

// siteCSS is the static layout stylesheet. Colors and fonts come from the
// theme's custom properties so palettes apply without touching layout.
const siteCSS = `*, *::before, *::after { box-sizing: border-box; }
body {
  margin: 0;
  font-family: var(--rx-font-text, system-ui, sans-serif);
  background: var(--rx-bg, #fff);
  color: var(--rx-fg, #212121);
  line-height: 1.6;
}
code, pre, kbd { font-family: var(--rx-font-code, ui-monospace, monospace); }
a { color: var(--rx-primary, #3f51b5); }
.site-header {
  display: flex;
  align-items: center;
  gap: 0.75rem;
  padding: 0.6rem 1.2rem;
  background: var(--rx-primary, #3f51b5);
}
.site-header a { color: #fff; text-decoration: none; }
.site-title { font-weight: 600; font-size: 1.1rem; }
.site-repo { margin-left: auto; font-size: 0.9rem; }
.site-logo { height: 1.6rem; }
.layout {
  display: grid;
  grid-template-columns: 14rem minmax(0, 1fr) 12rem;
  gap: 2rem;
  max-width: 72rem;
  margin: 0 auto;
  padding: 1.5rem 1.2rem;
}
.site-nav ul, .toc ul { list-style: none; padding-left: 0.8rem; margin: 0.2rem 0; }
.site-nav > ul { padding-left: 0; }
.site-nav a, .toc a { text-decoration: none; color: inherit; font-size: 0.92rem; }
.site-nav .nav-active > a { color: var(--rx-primary, #3f51b5); font-weight: 600; }
.site-nav .nav-section > span { font-weight: 600; font-size: 0.92rem; }
.toc-l3 { padding-left: 0.8rem; }
.pager { display: flex; justify-content: space-between; margin-top: 2.5rem; }
.site-footer { text-align: center; font-size: 0.85rem; padding: 1rem; opacity: 0.7; }
.admonition {
  border-left: 0.25rem solid var(--rx-accent, var(--rx-primary, #3f51b5));
  background: rgba(127, 127, 127, 0.08);
  padding: 0.6rem 1rem;
  margin: 1rem 0;
  border-radius: 0.2rem;
}
.admonition-title { font-weight: 600; margin: 0 0 0.4rem; }
.tabbed-set { margin: 1rem 0; }
.tabbed-label { font-weight: 600; cursor: pointer; }
.tabbed-content { padding: 0.4rem 0 0.4rem 1rem; }
.nb-cell { margin: 1rem 0; }
.nb-prompt { color: var(--rx-primary, #3f51b5); font-family: var(--rx-font-code, monospace); font-size: 0.85rem; }
.nb-output { background: rgba(127, 127, 127, 0.06); padding: 0.5rem 0.8rem; overflow-x: auto; }
.nb-error { color: #b71c1c; }
.headerlink { opacity: 0; text-decoration: none; margin-left: 0.3rem; }
h1:hover .headerlink, h2:hover .headerlink, h3:hover .headerlink,
h4:hover .headerlink, h5:hover .headerlink, h6:hover .headerlink { opacity: 0.6; }
@media (max-width: 60rem) {
  .layout { grid-template-columns: 1fr; }
  .site-nav, .toc { display: none; }
}
`

// writeAssets emits the generated stylesheets under site_dir/assets and
// copies every non-page file out of docs_dir, which covers images, local
// extra_javascript/extra_css entries, the logo, and the favicon.
func (b *Builder) writeAssets(resolved theme.Resolved) error {
	assetsDir := filepath.Join(b.cfg.SiteDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}

	if err := renameio.WriteFile(filepath.Join(assetsDir, "site.css"), []byte(siteCSS), 0o644); err != nil {
		return fmt.Errorf("write site.css: %w", err)
	}

	chromaCSS, err := markdown.HighlightCSS()
	if err != nil {
		return fmt.Errorf("generate highlight stylesheet: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(assetsDir, "chroma.css"), []byte(chromaCSS), 0o644); err != nil {
		return fmt.Errorf("write chroma.css: %w", err)
	}

	return b.copyStaticAssets()
}

// copyStaticAssets mirrors every non-page file under docs_dir into
// site_dir. Dot- and underscore-prefixed entries are skipped, matching the
// implicit nav walk.
func (b *Builder) copyStaticAssets() error {
	return filepath.WalkDir(b.cfg.DocsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != b.cfg.DocsDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || nav.IsPagePath(name) {
			return nil
		}
		rel, err := filepath.Rel(b.cfg.DocsDir, path)
		if err != nil {
			return err
		}
		return b.copyDocFile(filepath.ToSlash(rel))
	})
}

// copyDocFile copies one file from docs_dir into site_dir at the same
// relative path.
func (b *Builder) copyDocFile(rel string) error {
	src := filepath.Join(b.cfg.DocsDir, filepath.FromSlash(rel))
	dst := filepath.Join(b.cfg.SiteDir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create asset dir for %s: %w", rel, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy asset %s: %w", rel, err)
	}
	defer in.Close()

	out, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("copy asset %s: %w", rel, err)
	}
	defer out.Cleanup() //nolint:errcheck // no-op after CloseAtomicallyReplace

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy asset %s: %w", rel, err)
	}
	return out.CloseAtomicallyReplace()
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// assetRefs resolves the extra asset references for a page: remote URLs
// pass through, local paths are prefixed so they resolve from any depth.
func assetRefs(refs []string, base string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if isRemote(r) {
			out = append(out, r)
		} else {
			out = append(out, base+r)
		}
	}
	return out
}
