package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/search"
)

func typeQuery(m SearchModel, q string) SearchModel {
	for _, r := range q {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSearchModel(t *testing.T) {
	idx := search.NewIndex(astro.DefaultStarCatalog().Stars)
	m := NewSearchModel().SetIndex(idx)

	if m.View() != "" {
		t.Error("inactive bar should render nothing")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.Query() != "" {
		t.Error("inactive bar accepted input")
	}

	m = typeQuery(m.Open(), "sir")
	if m.Query() != "sir" || len(m.Results()) == 0 {
		t.Fatalf("query %q gave %d results", m.Query(), len(m.Results()))
	}
	if m.Results()[0].Star.Name != "Sirius" {
		t.Errorf("top hit = %s", m.Results()[0].Star.Label())
	}
	if !strings.Contains(m.View(), "Sirius") {
		t.Error("hit list missing Sirius")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Query() != "si" {
		t.Errorf("backspace left %q", m.Query())
	}

	m = typeQuery(m, "zzz")
	if len(m.Results()) != 0 || !strings.Contains(m.View(), "no matches") {
		t.Error("expected no matches")
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Active() {
		t.Error("enter with no results should just close")
	}
}

func TestSearchModelCursor(t *testing.T) {
	idx := search.NewIndex(astro.DefaultStarCatalog().Stars)
	m := typeQuery(NewSearchModel().SetIndex(idx).Open(), "a")
	if len(m.Results()) < 2 {
		t.Fatalf("need two hits, got %d", len(m.Results()))
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	want := m.Results()[1]

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	chosen, ok := cmd().(SearchChosenMsg)
	if !ok || chosen.Result.Star.Label() != want.Star.Label() {
		t.Errorf("chosen = %+v, want %s", chosen, want.Star.Label())
	}
	if m.Active() {
		t.Error("bar still active after enter")
	}
}
