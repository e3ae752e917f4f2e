// Package explorer is the interactive navigation-tree browser behind
// `riemax-docs nav --interactive`: sections expand and collapse, a filter
// narrows the tree to matching titles and paths, and the selected page's
// source path is printed on exit.
package explorer

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/riemax-project/riemax/internal/docs/nav"
)

// row is one visible line of the tree: either a section or a page.
type row struct {
	item  nav.Item
	depth int
	key   string // unique path of titles, used for expand state
}

// Model is the tree browser. It implements tea.Model.
type Model struct {
	tree nav.Tree

	rows     []row
	cursor   int
	expanded map[string]bool

	filtering bool
	filter    textinput.Model

	width   int
	height  int
	noColor bool

	// Selected is the chosen page path after the model quits with enter.
	Selected string

	styles styles
}

type styles struct {
	cursor  lipgloss.Style
	section lipgloss.Style
	page    lipgloss.Style
	path    lipgloss.Style
	help    lipgloss.Style
}

// NewModel creates a browser over a navigation tree.
func NewModel(tree nav.Tree, noColor bool) *Model {
	fi := textinput.New()
	fi.Placeholder = "filter"
	fi.CharLimit = 120
	fi.SetWidth(40)
	fi.Prompt = "/"

	m := &Model{
		tree:     tree.FillTitles(nil),
		expanded: make(map[string]bool),
		filter:   fi,
		width:    80,
		height:   24,
		noColor:  noColor,
	}
	m.styles = newStyles(noColor)

	// Top-level sections start expanded so the tree is not a wall of
	// collapsed headings.
	for _, it := range tree.Items {
		if it.IsSection() {
			m.expanded[it.Title] = true
		}
	}
	m.rebuild()
	return m
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{cursor: plain, section: plain, page: plain, path: plain, help: plain}
	}
	return styles{
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		section: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		page:    lipgloss.NewStyle(),
		path:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = len(m.rows) - 1

	case "enter", "right", "l":
		if len(m.rows) == 0 {
			break
		}
		r := m.rows[m.cursor]
		if r.item.IsSection() {
			m.expanded[r.key] = !m.expanded[r.key]
			m.rebuild()
			break
		}
		m.Selected = r.item.Path
		return m, tea.Quit

	case "left", "h":
		if len(m.rows) == 0 {
			break
		}
		r := m.rows[m.cursor]
		if r.item.IsSection() && m.expanded[r.key] {
			m.expanded[r.key] = false
			m.rebuild()
			break
		}
		// Jump to the enclosing section.
		for i := m.cursor - 1; i >= 0; i-- {
			if m.rows[i].depth < r.depth {
				m.cursor = i
				break
			}
		}

	case "/":
		m.filtering = true
		m.filter.SetValue("")
		m.filter.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.rebuild()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.rebuild()
	return m, cmd
}

// rebuild regenerates the visible rows from the tree, the expand state,
// and the active filter.
func (m *Model) rebuild() {
	m.rows = m.rows[:0]
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.appendRows(m.tree.Items, 0, "", query)

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) appendRows(items []nav.Item, depth int, prefix string, query string) {
	for _, it := range items {
		key := prefix + it.Title
		if it.IsSection() {
			if query != "" {
				// Filtering flattens: show sections only when a
				// descendant matches, always expanded.
				if !subtreeMatches(it, query) {
					continue
				}
				m.rows = append(m.rows, row{item: it, depth: depth, key: key})
				m.appendRows(it.Children, depth+1, key+"/", query)
				continue
			}
			m.rows = append(m.rows, row{item: it, depth: depth, key: key})
			if m.expanded[key] {
				m.appendRows(it.Children, depth+1, key+"/", query)
			}
			continue
		}

		if query != "" && !matches(it, query) {
			continue
		}
		m.rows = append(m.rows, row{item: it, depth: depth, key: key})
	}
}

func matches(it nav.Item, query string) bool {
	return strings.Contains(strings.ToLower(it.Title), query) ||
		strings.Contains(strings.ToLower(it.Path), query)
}

func subtreeMatches(section nav.Item, query string) bool {
	for _, child := range section.Children {
		if child.IsSection() {
			if subtreeMatches(child, query) {
				return true
			}
			continue
		}
		if matches(child, query) {
			return true
		}
	}
	return false
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	return tea.NewView(m.view())
}

func (m *Model) view() string {
	var b strings.Builder

	visible := m.height - 3 // header/filter line + help line
	if visible < 1 {
		visible = 1
	}
	top := 0
	if m.cursor >= visible {
		top = m.cursor - visible + 1
	}

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	} else {
		b.WriteString(m.styles.section.Render("Navigation") + "\n")
	}

	for i := top; i < len(m.rows) && i < top+visible; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(m.styles.help.Render("(no matches)") + "\n")
	}

	b.WriteString(m.styles.help.Render("enter select · / filter · q quit"))
	return b.String()
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	indent := strings.Repeat("  ", r.depth)

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}

	var label string
	switch {
	case r.item.IsSection() && m.expanded[r.key]:
		label = m.styles.section.Render("▾ " + r.item.Title)
	case r.item.IsSection():
		label = m.styles.section.Render("▸ " + r.item.Title)
	default:
		label = m.styles.page.Render(r.item.Title) + " " + m.styles.path.Render(r.item.Path)
	}

	line := marker + indent + label
	if i == m.cursor {
		line = m.styles.cursor.Render(marker) + indent + label
	}
	return runewidth.Truncate(line, m.width, "…")
}

// Run opens the browser and returns the selected page path, or "" when
// the user quit without selecting.
func Run(tree nav.Tree, noColor bool, opts ...tea.ProgramOption) (string, error) {
	m := NewModel(tree, noColor)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return "", fmt.Errorf("run navigation browser: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.Selected, nil
	}
	return "", nil
}
