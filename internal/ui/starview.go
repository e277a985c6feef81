package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/starfield"
)

// LabelMode controls which star names are drawn.
type LabelMode int

const (
	LabelNone LabelMode = iota
	LabelHovered
	LabelNamed
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelHovered:
		return "hover"
	default:
		return "named"
	}
}

// hudLines is the height reserved under the canvas.
const hudLines = 2

// StarViewModel renders the projected star buffers through the camera.
type StarViewModel struct {
	width  int
	height int
	cam    *camera.PerspectiveCamera

	buffers    starfield.Buffers
	background []starfield.BackgroundStar

	hovered        int
	labelMode      LabelMode
	showBackground bool
}

// cell is the nearest star drawn at one grid position.
type cell struct {
	index int
	depth float64
}

// frame is one projection of the buffers onto the canvas grid.
type frame struct {
	w, h  int
	cells []cell
}

func (f frame) at(x, y int) cell {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return cell{index: -1}
	}
	return f.cells[y*f.w+x]
}

// NewStarViewModel creates a view drawing through cam.
func NewStarViewModel(cam *camera.PerspectiveCamera) StarViewModel {
	return StarViewModel{
		cam:            cam,
		hovered:        -1,
		labelMode:      LabelNamed,
		showBackground: true,
	}
}

// SetSize updates the viewport size.
func (m StarViewModel) SetSize(width, height int) StarViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData swaps in new buffers and the tier's background layer.
func (m StarViewModel) UpdateData(b starfield.Buffers, background []starfield.BackgroundStar) StarViewModel {
	m.buffers = b
	m.background = background
	m.hovered = -1
	return m
}

// SetHovered marks buffer index i as hovered; -1 clears it.
func (m StarViewModel) SetHovered(i int) StarViewModel {
	m.hovered = i
	return m
}

// CycleLabels advances the label mode.
func (m StarViewModel) CycleLabels() StarViewModel {
	m.labelMode = (m.labelMode + 1) % 3
	return m
}

// ToggleBackground shows or hides the background layer.
func (m StarViewModel) ToggleBackground() StarViewModel {
	m.showBackground = !m.showBackground
	return m
}

// canvasSize returns the drawable grid size.
func (m StarViewModel) canvasSize() (int, int) {
	h := m.height - hudLines
	if h < 1 {
		h = 1
	}
	return m.width, h
}

// project builds the depth-sorted cell grid for the current camera pose.
func (m StarViewModel) project() frame {
	w, h := m.canvasSize()
	f := frame{w: w, h: h, cells: make([]cell, w*h)}
	for i := range f.cells {
		f.cells[i] = cell{index: -1}
	}
	if m.cam == nil || w <= 0 {
		return f
	}

	for i := 0; i < m.buffers.Len(); i++ {
		x, y, depth, ok := m.cam.Project(m.buffers.Position(i), w, h)
		if !ok {
			continue
		}
		c := &f.cells[y*w+x]
		if c.index < 0 || depth < c.depth {
			*c = cell{index: i, depth: depth}
		}
	}
	return f
}

// PickAt returns the buffer index drawn at or next to canvas cell (x, y),
// preferring the exact cell, then the nearest star in the 3×3 block.
func (m StarViewModel) PickAt(x, y int) int {
	f := m.project()
	if c := f.at(x, y); c.index >= 0 {
		return c.index
	}
	best, bestDepth := -1, math.Inf(1)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if c := f.at(x+dx, y+dy); c.index >= 0 && c.depth < bestDepth {
				best, bestDepth = c.index, c.depth
			}
		}
	}
	return best
}

// ScreenPos returns the canvas cell where buffer index i is drawn.
func (m StarViewModel) ScreenPos(i int) (x, y int, ok bool) {
	if i < 0 || i >= m.buffers.Len() || m.cam == nil {
		return 0, 0, false
	}
	w, h := m.canvasSize()
	x, y, _, ok = m.cam.Project(m.buffers.Position(i), w, h)
	if !ok {
		return 0, 0, false
	}
	// Another star may hide it.
	if m.project().at(x, y).index != i {
		return 0, 0, false
	}
	return x, y, true
}

// Visible returns the indices of drawn stars, brightest first.
func (m StarViewModel) Visible() []int {
	f := m.project()
	var out []int
	for _, c := range f.cells {
		if c.index >= 0 {
			out = append(out, c.index)
		}
	}
	// Buffers are magnitude-sorted, so index order is brightness order.
	sort.Ints(out)
	return out
}

// View renders the star canvas and its HUD line.
func (m StarViewModel) View() string {
	if m.width < 20 || m.height < 6 {
		return "Terminal too small for star view"
	}
	f := m.project()

	grid := make([][]string, f.h)
	for y := range grid {
		grid[y] = make([]string, f.w)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	if m.showBackground {
		m.drawBackground(grid, f)
	}

	type label struct {
		x, y int
		text string
	}
	var labels []label

	hoverStyle := lipgloss.NewStyle().Reverse(true).Bold(true)
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			c := f.cells[y*f.w+x]
			if c.index < 0 {
				continue
			}
			s := m.buffers.Stars[c.index]
			glyph := starGlyph(float64(m.buffers.Sizes[c.index]), c.depth)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(cellColor(m.buffers.Color(c.index), c.depth)))
			if c.index == m.hovered {
				style = hoverStyle.Foreground(lipgloss.Color(cellColor(m.buffers.Color(c.index), c.depth)))
			}
			grid[y][x] = style.Render(string(glyph))

			switch {
			case c.index == m.hovered && m.labelMode != LabelNone:
				labels = append(labels, label{x + 2, y, "◄ " + s.Label()})
			case m.labelMode == LabelNamed && s.Named():
				labels = append(labels, label{x + 2, y, s.Name})
			}
		}
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	for _, l := range labels {
		for i, r := range []rune(l.text) {
			x := l.x + i
			if x >= f.w {
				break
			}
			if grid[l.y][x] == " " {
				grid[l.y][x] = labelStyle.Render(string(r))
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteRune('\n')
	}
	b.WriteString(m.renderHUD())
	return b.String()
}

func (m StarViewModel) drawBackground(grid [][]string, f frame) {
	for _, bg := range m.background {
		x, y, _, ok := m.cam.Project(bg.Position, f.w, f.h)
		if !ok || f.cells[y*f.w+x].index >= 0 || grid[y][x] != " " {
			continue
		}
		level := 232 + int(bg.Intensity*20)
		if level > 245 {
			level = 245
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("%d", level)))
		grid[y][x] = style.Render("·")
	}
}

func (m StarViewModel) renderHUD() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	var pos string
	if m.cam != nil {
		p := m.cam.Position
		pos = fmt.Sprintf("(%.0f, %.0f, %.0f) r=%.0f", p.X, p.Y, p.Z, p.Norm())
	}
	bg := "off"
	if m.showBackground {
		bg = "on"
	}

	return dimStyle.Render("Camera:") + valueStyle.Render(pos) + "  " +
		dimStyle.Render("Stars:") + valueStyle.Render(fmt.Sprintf("%d", m.buffers.Len())) + "  " +
		dimStyle.Render("Labels:") + valueStyle.Render(m.labelMode.String()) + "  " +
		dimStyle.Render("Background:") + valueStyle.Render(bg)
}

// starGlyph picks a glyph from the point size, enlarged for nearby stars.
func starGlyph(size, depth float64) rune {
	apparent := size * math.Max(0.5, math.Min(3, 200/math.Max(depth, 1)))
	switch {
	case apparent >= 8:
		return '✦'
	case apparent >= 4:
		return '*'
	case apparent >= 2:
		return '•'
	default:
		return '·'
	}
}

// cellColor converts a brightness-scaled color to a terminal hex color,
// fading distant stars toward black.
func cellColor(c colorful.Color, depth float64) string {
	fade := 1 / (1 + depth/2000)
	return colorful.Color{R: c.R * fade, G: c.G * fade, B: c.B * fade}.Clamped().Hex()
}
