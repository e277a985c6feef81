package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-stellar/internal/search"
)

// maxResults is the number of search hits listed.
const maxResults = 5

// SearchChosenMsg reports the result picked in the search bar.
type SearchChosenMsg struct {
	Result search.Result
}

// SearchModel is the "/" search bar.
type SearchModel struct {
	active  bool
	query   []rune
	index   *search.Index
	results []search.Result
	cursor  int
}

// NewSearchModel creates an inactive search bar.
func NewSearchModel() SearchModel {
	return SearchModel{}
}

// SetIndex replaces the index queries run against.
func (m SearchModel) SetIndex(x *search.Index) SearchModel {
	m.index = x
	return m.refresh()
}

// Open activates the bar with an empty query.
func (m SearchModel) Open() SearchModel {
	m.active = true
	m.query = nil
	m.results = nil
	m.cursor = 0
	return m
}

// Active reports whether the bar has keyboard focus.
func (m SearchModel) Active() bool {
	return m.active
}

// Query returns the current query text.
func (m SearchModel) Query() string {
	return string(m.query)
}

// Results returns the current hits.
func (m SearchModel) Results() []search.Result {
	return m.results
}

// Update handles keys while the bar is active.
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.active {
		return m, nil
	}

	switch key.Type {
	case tea.KeyEsc:
		m.active = false
		return m, nil
	case tea.KeyEnter:
		m.active = false
		if m.cursor < len(m.results) {
			chosen := m.results[m.cursor]
			return m, func() tea.Msg { return SearchChosenMsg{Result: chosen} }
		}
		return m, nil
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyBackspace:
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
		}
	case tea.KeySpace:
		m.query = append(m.query, ' ')
	case tea.KeyRunes:
		m.query = append(m.query, key.Runes...)
	default:
		return m, nil
	}
	return m.refresh(), nil
}

func (m SearchModel) refresh() SearchModel {
	m.cursor = 0
	if m.index == nil || strings.TrimSpace(string(m.query)) == "" {
		m.results = nil
		return m
	}
	m.results = m.index.Search(string(m.query), maxResults)
	return m
}

// View renders the prompt and the hit list.
func (m SearchModel) View() string {
	if !m.active {
		return ""
	}
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)

	var b strings.Builder
	b.WriteString(promptStyle.Render("/ ") + string(m.query) + "█\n")
	if len(m.results) == 0 && len(m.query) > 0 {
		b.WriteString(dimStyle.Render("  no matches"))
		return b.String()
	}
	for i, r := range m.results {
		line := fmt.Sprintf("%s  %s", r.Star.Label(), dimStyle.Render(r.Rank.String()))
		if mag, ok := r.Star.Mag(); ok {
			line += dimStyle.Render(fmt.Sprintf("  V=%.2f", mag))
		}
		if i == m.cursor {
			b.WriteString(selStyle.Render("▶ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		if i < len(m.results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
