package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNotInteractive is returned when a picker or prompt needs a terminal.
var ErrNotInteractive = errors.New("not an interactive terminal")

// Node is one row of the picker tree. Directory paths end in '/'.
type Node struct {
	Path     string
	Note     string
	Children []Node
}

// IsDir reports whether the node is a directory header.
func (n Node) IsDir() bool {
	return len(n.Children) > 0
}

// BuildTree nests paths under the directory paths that contain them.
// note supplies the grey annotation for leaves; directories with children
// are annotated with their leaf count.
func BuildTree(paths []string, note func(string) string) []Node {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var build func(prefix string, items []string) []Node
	build = func(prefix string, items []string) []Node {
		var nodes []Node
		for i := 0; i < len(items); {
			p := items[i]
			j := i + 1
			if strings.HasSuffix(p, "/") {
				for j < len(items) && strings.HasPrefix(items[j], p) {
					j++
				}
			}
			n := Node{Path: p, Children: build(p, items[i+1:j])}
			if n.IsDir() {
				n.Note = fmt.Sprintf("%d %s", countLeaves(n.Children), plural(countLeaves(n.Children), "file", "files"))
			} else if note != nil {
				n.Note = note(p)
			}
			nodes = append(nodes, n)
			i = j
		}
		return nodes
	}
	return build("", sorted)
}

func countLeaves(nodes []Node) int {
	n := 0
	for _, c := range nodes {
		if c.IsDir() {
			n += countLeaves(c.Children)
		} else {
			n++
		}
	}
	return n
}

// row in the flattened, currently visible tree.
type flatItem struct {
	node   Node
	depth  int
	parent string
}

func flatten(nodes []Node, expanded map[string]bool) []flatItem {
	var items []flatItem
	var walk func(nodes []Node, depth int, parent string)
	walk = func(nodes []Node, depth int, parent string) {
		for _, n := range nodes {
			items = append(items, flatItem{node: n, depth: depth, parent: parent})
			if n.IsDir() && expanded[n.Path] {
				walk(n.Children, depth+1, n.Path)
			}
		}
	}
	walk(nodes, 0, "")
	return items
}

// collectSelected returns selected paths in tree order. A selected
// directory stands for its whole subtree.
func collectSelected(nodes []Node, selected map[string]bool) []string {
	var out []string
	for _, n := range nodes {
		switch {
		case selected[n.Path]:
			out = append(out, n.Path)
		case n.IsDir():
			out = append(out, collectSelected(n.Children, selected)...)
		}
	}
	return out
}

type pickerKeys struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	All      key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Expand, k.Collapse, k.Confirm, k.Cancel}
}

func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.All}}
}

func defaultPickerKeys() pickerKeys {
	return pickerKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		All:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "expand")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}

// pickerModel is the bubbletea model for the tree multiselect.
type pickerModel struct {
	title    string
	nodes    []Node
	expanded map[string]bool
	selected map[string]bool
	cursor   int
	offset   int
	height   int
	keys     pickerKeys
	help     help.Model
	styles   Styles
	width    int // path column

	done     bool
	canceled bool
}

func newPickerModel(title string, nodes []Node, preselect []string, styles Styles) *pickerModel {
	m := &pickerModel{
		title:    title,
		nodes:    nodes,
		expanded: make(map[string]bool),
		selected: make(map[string]bool),
		height:   20,
		keys:     defaultPickerKeys(),
		help:     help.New(),
		styles:   styles,
		width:    pathWidth(nodes, 0),
	}
	for _, p := range preselect {
		m.selected[p] = true
	}
	return m
}

func pathWidth(nodes []Node, depth int) int {
	w := 0
	for _, n := range nodes {
		w = max(w, 2*depth+len(n.Path))
		if n.IsDir() {
			w = max(w, pathWidth(n.Children, depth+1))
		}
	}
	return w
}

// Init implements tea.Model.
func (m *pickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(3, msg.Height-4)
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *pickerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	items := flatten(m.nodes, m.expanded)
	if len(items) == 0 {
		m.done = true
		return tea.Quit
	}
	cur := items[min(m.cursor, len(items)-1)]

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.canceled = true
		return tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.done = true
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+1 < len(items) {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.selected[cur.node.Path] = !m.selected[cur.node.Path]
	case key.Matches(msg, m.keys.All):
		all := true
		for _, it := range items {
			all = all && m.selected[it.node.Path]
		}
		for _, it := range items {
			m.selected[it.node.Path] = !all
		}
	case key.Matches(msg, m.keys.Expand):
		if cur.node.IsDir() {
			m.expanded[cur.node.Path] = true
		}
	case key.Matches(msg, m.keys.Collapse):
		switch {
		case cur.node.IsDir() && m.expanded[cur.node.Path]:
			delete(m.expanded, cur.node.Path)
		case cur.parent != "":
			delete(m.expanded, cur.parent)
			for i, it := range flatten(m.nodes, m.expanded) {
				if it.node.Path == cur.parent {
					m.cursor = i
					break
				}
			}
		}
	}
	m.clamp()
	return nil
}

func (m *pickerModel) clamp() {
	n := len(flatten(m.nodes, m.expanded))
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor + 1 - m.height
	}
}

// View implements tea.Model.
func (m *pickerModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.styles.Header.Render(m.title))
		b.WriteString("\n")
	}

	items := flatten(m.nodes, m.expanded)
	end := min(len(items), m.offset+m.height)
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(items[i], i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *pickerModel) renderRow(it flatItem, active bool) string {
	check := m.styles.Unchecked.Render(MarkUnchecked)
	if m.selected[it.node.Path] {
		check = m.styles.Checked.Render(MarkChecked)
	}

	indent := strings.Repeat("  ", it.depth)
	arrow := "  "
	if it.node.IsDir() {
		arrow = "▸ "
		if m.expanded[it.node.Path] {
			arrow = "▾ "
		}
	}

	path := it.node.Path
	pad := strings.Repeat(" ", max(0, m.width-2*it.depth-len(path)))
	if active {
		path = m.styles.Active.Render(path)
	}

	line := fmt.Sprintf("%s%s%s %s", indent, arrow, check, path)
	if it.node.Note != "" {
		line += pad + "  " + m.styles.Note.Render("("+it.node.Note+")")
	}
	return line
}

// Selection returns the confirmed paths, or nil when canceled.
func (m *pickerModel) Selection() []string {
	if m.canceled {
		return nil
	}
	return collectSelected(m.nodes, m.selected)
}

// PickerOptions configures Pick.
type PickerOptions struct {
	Title     string
	Preselect []string
	In        io.Reader
	Out       io.Writer
	NoColor   bool
}

// Pick runs the tree picker and returns the selected paths. ok is false
// when the user canceled.
func Pick(ctx context.Context, nodes []Node, opts PickerOptions) (selected []string, ok bool, err error) {
	if len(nodes) == 0 {
		return nil, true, nil
	}
	if !Interactive(opts.In, opts.Out) {
		return nil, false, ErrNotInteractive
	}

	m := newPickerModel(opts.Title, nodes, opts.Preselect, GetStyles(opts.NoColor || DetectNoColor()))
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(opts.In),
		tea.WithOutput(opts.Out),
	)
	if _, err := p.Run(); err != nil {
		return nil, false, fmt.Errorf("picker: %w", err)
	}
	if m.canceled {
		return nil, false, nil
	}
	return m.Selection(), true, nil
}
