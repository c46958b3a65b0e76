package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lineage/pkg/family"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PeopleListModel - Interactive people browser
// =============================================================================

// PeopleListModel is the bubbletea model for browsing the family tree.
//
// Typing "/" starts a name filter; enter selects the person under the
// cursor and quits, and the caller prints the selection.
type PeopleListModel struct {
	Tree      family.Tree
	Visible   []family.Person
	Cursor    int
	Offset    int
	Height    int
	Filter    string
	Filtering bool
	Selected  *family.Person
}

// NewPeopleListModel creates a browser over every person in t.
func NewPeopleListModel(t family.Tree) PeopleListModel {
	m := PeopleListModel{Tree: t, Height: 15}
	m.applyFilter()
	return m
}

func (m *PeopleListModel) applyFilter() {
	m.Visible = m.Tree.Search(m.Filter)
	m.Cursor, m.Offset = 0, 0
}

func (m PeopleListModel) Init() tea.Cmd {
	return nil
}

func (m PeopleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			if len(m.Visible) == 0 {
				return m, nil
			}
			p := m.Visible[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PeopleListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.Filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.Filter); len(r) > 0 {
			m.Filter = string(r[:len(r)-1])
			m.applyFilter()
		}
	case tea.KeySpace:
		m.Filter += " "
		m.applyFilter()
	case tea.KeyRunes:
		m.Filter += string(msg.Runes)
		m.applyFilter()
	}
	return m, nil
}

func (m *PeopleListModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Visible) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PeopleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	if m.Filtering || m.Filter != "" {
		b.WriteString(listNormalStyle.Render("/" + m.Filter))
		if m.Filtering {
			b.WriteString(listSelectedStyle.Render("█"))
		}
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ show  q quit"))
	}
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  No matching people"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, p.FullName(), lifespan(p), m.relatives(p)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Life", "Family").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}

// relatives summarizes family links, e.g. "1 spouse · 2 children".
func (m PeopleListModel) relatives(p family.Person) string {
	var parts []string
	if n := len(m.Tree.Resolve(p.SpouseIDs)); n > 0 {
		parts = append(parts, plural(n, "spouse", "spouses"))
	}
	if n := len(m.Tree.Resolve(p.ChildrenIDs)); n > 0 {
		parts = append(parts, plural(n, "child", "children"))
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " · ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
