// Package nav models the documentation navigation tree: the ordered
// hierarchy of page titles and document paths shown in the site menu.
//
// The on-disk form is deliberately loose, matching what authors write:
//
//	nav:
//	  - index.md                    # bare path, title derived from the page
//	  - Getting Started: start.md   # titled page
//	  - Examples:                   # section with children
//	      - Geodesics: examples/geodesics.ipynb
//
// Item's custom YAML unmarshalling folds all three shapes into one type.
package nav

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported document extensions for navigation entries.
var pageExtensions = map[string]bool{
	".md":    true,
	".ipynb": true,
}

// IsPagePath reports whether p names a renderable document.
func IsPagePath(p string) bool {
	return pageExtensions[strings.ToLower(path.Ext(p))]
}

// Item is a single navigation entry: either a page (Path set) or a section
// (Children set). Title may be empty for bare-path entries; the build fills
// it in from the page's first heading.
type Item struct {
	Title    string
	Path     string
	Children []Item
}

// IsSection reports whether the item groups child entries.
func (it Item) IsSection() bool { return len(it.Children) > 0 }

// UnmarshalYAML decodes the loose navigation forms: a bare scalar path, a
// single-key map to a scalar path, or a single-key map to a nested list.
func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var p string
		if err := value.Decode(&p); err != nil {
			return err
		}
		it.Path = p
		return nil

	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("nav entry must have exactly one title key, got %d", len(value.Content)/2)
		}
		keyNode, valNode := value.Content[0], value.Content[1]
		if err := keyNode.Decode(&it.Title); err != nil {
			return fmt.Errorf("nav entry title: %w", err)
		}
		switch valNode.Kind {
		case yaml.ScalarNode:
			return valNode.Decode(&it.Path)
		case yaml.SequenceNode:
			return valNode.Decode(&it.Children)
		default:
			return fmt.Errorf("nav entry %q: value must be a path or a list", it.Title)
		}

	default:
		return fmt.Errorf("nav entry must be a string or a single-key map")
	}
}

// MarshalYAML emits the same loose form the unmarshaller accepts, so the
// effective config round-trips.
func (it Item) MarshalYAML() (interface{}, error) {
	if it.IsSection() {
		return map[string][]Item{it.Title: it.Children}, nil
	}
	if it.Title == "" {
		return it.Path, nil
	}
	return map[string]string{it.Title: it.Path}, nil
}

// Tree is an ordered navigation hierarchy.
type Tree struct {
	Items []Item
}

// Walk visits every item in document order. Section items are visited
// before their children. The visitor receives the nesting depth.
func (t Tree) Walk(fn func(item Item, depth int)) {
	var walk func(items []Item, depth int)
	walk = func(items []Item, depth int) {
		for _, it := range items {
			fn(it, depth)
			if it.IsSection() {
				walk(it.Children, depth+1)
			}
		}
	}
	walk(t.Items, 0)
}

// Pages returns every page entry in document order.
func (t Tree) Pages() []Item {
	var pages []Item
	t.Walk(func(it Item, _ int) {
		if !it.IsSection() && it.Path != "" {
			pages = append(pages, it)
		}
	})
	return pages
}

// PrevNext returns the pages immediately before and after the page at the
// given path, for footer navigation. Either may be nil at the ends.
func (t Tree) PrevNext(pagePath string) (prev, next *Item) {
	pages := t.Pages()
	for i := range pages {
		if pages[i].Path == pagePath {
			if i > 0 {
				prev = &pages[i-1]
			}
			if i < len(pages)-1 {
				next = &pages[i+1]
			}
			return prev, next
		}
	}
	return nil, nil
}

// Breadcrumbs returns the trail of titles from the root down to the page at
// the given path, ending with the page's own title. Returns nil when the
// path is not in the tree.
func (t Tree) Breadcrumbs(pagePath string) []string {
	var find func(items []Item, trail []string) []string
	find = func(items []Item, trail []string) []string {
		for _, it := range items {
			if it.IsSection() {
				if found := find(it.Children, append(trail, it.Title)); found != nil {
					return found
				}
				continue
			}
			if it.Path == pagePath {
				title := it.Title
				if title == "" {
					title = TitleFromPath(it.Path)
				}
				return append(trail, title)
			}
		}
		return nil
	}
	return find(t.Items, nil)
}

// FillTitles returns a copy of the tree with every untitled page entry
// given a display title: titleFor(path) when it yields one, otherwise
// TitleFromPath. A nil titleFor derives every missing title from the path.
func (t Tree) FillTitles(titleFor func(path string) string) Tree {
	var fill func(items []Item) []Item
	fill = func(items []Item) []Item {
		out := make([]Item, len(items))
		for i, it := range items {
			if it.IsSection() {
				it.Children = fill(it.Children)
			} else if it.Title == "" {
				if titleFor != nil {
					it.Title = titleFor(it.Path)
				}
				if it.Title == "" {
					it.Title = TitleFromPath(it.Path)
				}
			}
			out[i] = it
		}
		return out
	}
	return Tree{Items: fill(t.Items)}
}

// Validate checks every page entry against the docs directory:
// paths must be relative and stay inside the tree, use a supported
// extension, exist, and appear only once. Fatal faults are returned as an
// error; soft faults (missing files) come back as warnings so the caller
// can escalate them under strict mode.
func (t Tree) Validate(docsFS fs.FS) (warnings []string, err error) {
	seen := make(map[string]bool)
	var faults []string

	for _, page := range t.Pages() {
		p := page.Path
		if path.IsAbs(p) || !fs.ValidPath(path.Clean(p)) || strings.HasPrefix(path.Clean(p), "..") {
			faults = append(faults, fmt.Sprintf("nav path %q escapes the docs directory", p))
			continue
		}
		if !IsPagePath(p) {
			faults = append(faults, fmt.Sprintf("nav path %q has unsupported extension (want .md or .ipynb)", p))
			continue
		}
		if seen[p] {
			faults = append(faults, fmt.Sprintf("nav path %q appears more than once", p))
			continue
		}
		seen[p] = true

		if _, statErr := fs.Stat(docsFS, path.Clean(p)); statErr != nil {
			warnings = append(warnings, fmt.Sprintf("nav references missing file %q", p))
		}
	}

	if len(faults) > 0 {
		return warnings, fmt.Errorf("invalid navigation: %s", strings.Join(faults, "; "))
	}
	return warnings, nil
}

// Implicit derives a navigation tree from the docs directory when the
// config has no nav section: index.md first, remaining files alphabetical,
// subdirectories become sections titled from the directory name.
func Implicit(docsFS fs.FS) (Tree, error) {
	items, err := implicitDir(docsFS, ".")
	if err != nil {
		return Tree{}, err
	}
	return Tree{Items: items}, nil
}

func implicitDir(docsFS fs.FS, dir string) ([]Item, error) {
	entries, err := fs.ReadDir(docsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read docs directory %q: %w", dir, err)
	}

	var items []Item
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		rel := path.Join(dir, name)
		if entry.IsDir() {
			children, err := implicitDir(docsFS, rel)
			if err != nil {
				return nil, err
			}
			if len(children) > 0 {
				items = append(items, Item{Title: TitleFromPath(name), Children: children})
			}
			continue
		}
		if IsPagePath(name) {
			items = append(items, Item{Title: "", Path: rel})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		// index.md sorts first within its directory; sections sort after pages.
		ii, jj := items[i], items[j]
		if isIndex(ii.Path) != isIndex(jj.Path) {
			return isIndex(ii.Path)
		}
		if ii.IsSection() != jj.IsSection() {
			return !ii.IsSection()
		}
		return sortKey(ii) < sortKey(jj)
	})
	return items, nil
}

func isIndex(p string) bool {
	return path.Base(p) == "index.md"
}

func sortKey(it Item) string {
	if it.IsSection() {
		return it.Title
	}
	return it.Path
}

// TitleFromPath derives a display title from a file or directory name:
// strip the extension, replace separators with spaces, and capitalize each
// word.
func TitleFromPath(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// String renders the tree as indented text with unicode guides, the output
// of `riemax-docs nav`.
func (t Tree) String() string {
	var b strings.Builder
	var render func(items []Item, prefix string)
	render = func(items []Item, prefix string) {
		for i, it := range items {
			last := i == len(items)-1
			guide, childPrefix := "├── ", prefix+"│   "
			if last {
				guide, childPrefix = "└── ", prefix+"    "
			}
			title := it.Title
			if title == "" {
				title = TitleFromPath(it.Path)
			}
			if it.IsSection() {
				fmt.Fprintf(&b, "%s%s%s/\n", prefix, guide, title)
				render(it.Children, childPrefix)
			} else {
				fmt.Fprintf(&b, "%s%s%s (%s)\n", prefix, guide, title, it.Path)
			}
		}
	}
	render(t.Items, "")
	return b.String()
}
