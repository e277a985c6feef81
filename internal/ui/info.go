package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/starfield"
	"github.com/litescript/ls-stellar/internal/state"
)

// parsecToLY converts parsecs to light years.
const parsecToLY = 3.26156

// renderStarInfo describes a star in one or two lines.
func renderStarInfo(s astro.Star, title string) string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	field := func(label, value string) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(value)
	}

	var parts []string
	if hip, ok := s.ID(); ok {
		parts = append(parts, field("HIP", fmt.Sprintf("%d", hip)))
	}
	if s.SpType != "" {
		parts = append(parts, field("Type", s.SpType))
	}
	if mag, ok := s.Mag(); ok {
		parts = append(parts, field("V", fmt.Sprintf("%.2f", mag)))
	}
	if abs := s.AbsMag; abs != nil {
		parts = append(parts, field("M", fmt.Sprintf("%.2f", *abs)))
	}
	if d, ok := s.Distance(); ok {
		parts = append(parts, field("Dist", fmt.Sprintf("%.2f pc (%.1f ly)", d, d*parsecToLY)))
	}
	if t, ok := s.Temperature(); ok {
		parts = append(parts, field("Teff", fmt.Sprintf("%.0f K", t)))
	}
	if bv, ok := s.ColorIndex(); ok {
		parts = append(parts, field("B−V", fmt.Sprintf("%.2f", bv)))
	}
	c, src := starfield.BaseColor(s)
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
	parts = append(parts, swatch+labelStyle.Render(" "+src.String()))

	return headerStyle.Render(title+" "+s.Label()) + "  " + strings.Join(parts, "  ")
}

// renderFlight describes the animator state.
func renderFlight(a *camera.Animator) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	if a == nil || !a.Active() {
		return dimStyle.Render("camera idle")
	}
	pos, _, _ := a.Target()
	return accentStyle.Render(fmt.Sprintf("flying %3.0f%%", a.Progress()*100)) +
		dimStyle.Render(fmt.Sprintf(" → (%.0f, %.0f, %.0f)", pos.X, pos.Y, pos.Z))
}

// renderEvents lists the newest events, newest last.
func renderEvents(events []state.Event, n int) string {
	if len(events) == 0 {
		return ""
	}
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if len(events) > n {
		events = events[len(events)-n:]
	}
	var lines []string
	for _, e := range events {
		line := e.Timestamp.Format("15:04:05") + " " + string(e.Type)
		if e.Star != "" {
			line += " " + e.Star
		}
		if e.Detail != "" {
			line += " (" + e.Detail + ")"
		}
		lines = append(lines, dimStyle.Render("  "+line))
	}
	return strings.Join(lines, "\n")
}
