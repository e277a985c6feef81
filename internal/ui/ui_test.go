package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/starfield"
	"github.com/litescript/ls-stellar/internal/state"
)

type pickCounter map[string]int

func (p pickCounter) RecordPick(kind string) { p[kind]++ }

func newTestModel(t *testing.T, opts ...Option) (Model, *camera.ManualClock) {
	t.Helper()
	mgr := state.NewManager(state.DefaultConfig(), nil)
	mgr.Update(astro.DefaultStarCatalog().Stars, "built-in", time.Millisecond, nil)

	clock := camera.NewManualClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	m := New(mgr, append([]Option{WithClock(clock)}, opts...)...)
	m = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	m = send(t, m, DataUpdateMsg{Snapshot: mgr.Snapshot()})
	return m, clock
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches. Only use it for commands
// that do not wait on a timer.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func finishFlight(t *testing.T, m Model, clock *camera.ManualClock) Model {
	t.Helper()
	clock.Advance(camera.MaxDuration)
	return send(t, m, AnimTickMsg(clock.Now()))
}

func TestModelView(t *testing.T) {
	mgr := state.NewManager(state.DefaultConfig(), nil)
	m := New(mgr)
	if m.View() != "Initializing..." {
		t.Errorf("View before size = %q", m.View())
	}

	m, _ = newTestModel(t)
	out := m.View()
	for _, want := range []string{"LS-STELLAR", "stars loaded", "built-in"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModelQualityCycle(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, key("q"))

	if m.snapshot.Tier != starfield.TierHigh {
		t.Errorf("tier = %s, want high", m.snapshot.Tier)
	}
	if m.state.Tier() != starfield.TierHigh {
		t.Error("quality change not applied to state")
	}
	if m.resolver.Buffers().Len() != m.snapshot.Buffers.Len() {
		t.Error("resolver not given the new buffers")
	}
}

func TestModelSearchFlies(t *testing.T) {
	m, clock := newTestModel(t)

	m = send(t, m, key("/"))
	if !m.search.Active() {
		t.Fatal("search not opened")
	}
	m = send(t, m, key("vega"))
	if len(m.search.Results()) == 0 {
		t.Fatal("no results for vega")
	}

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("enter produced %d messages", len(msgs))
	}
	m = send(t, m, msgs[0])

	pos, look, ok := m.animator.Target()
	if !ok {
		t.Fatal("no flight started")
	}
	vega, _ := m.snapshot.Index.Lookup("Vega")
	want, _ := m.state.Transform().StarPosition(vega)
	if look.Distance(want) > 1e-9 {
		t.Errorf("look-at = %v, want Vega at %v", look, want)
	}
	if m.snapshot.Selected == nil || m.snapshot.Selected.Name != "Vega" {
		t.Errorf("selection = %v", m.snapshot.Selected)
	}

	m = finishFlight(t, m, clock)
	if m.animator.Active() {
		t.Error("flight still active")
	}
	if m.cam.Position != pos {
		t.Errorf("camera at %v, want exact destination %v", m.cam.Position, pos)
	}
	last := m.snapshot.Events[len(m.snapshot.Events)-1]
	if last.Type != state.EventFlight || last.Detail != "completed" || last.Star != "Vega" {
		t.Errorf("last event = %+v", last)
	}
}

func TestModelSearchEscape(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, key("/"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.search.Active() {
		t.Error("esc should close search")
	}
	// Keys go back to the view.
	m = send(t, m, key("q"))
	if m.snapshot.Tier != starfield.TierHigh {
		t.Error("key after closing search not handled")
	}
}

func TestModelCancelAndReset(t *testing.T) {
	m, clock := newTestModel(t)

	m = send(t, m, key("r"))
	pos, _, ok := m.animator.Target()
	if !ok || pos != (astro.Vec3{Z: 150}) {
		t.Fatalf("reset target = %v, %v", pos, ok)
	}

	m = send(t, m, key("x"))
	if m.animator.Active() {
		t.Error("x should cancel the flight")
	}
	clock.Advance(frameInterval)
	m = send(t, m, AnimTickMsg(clock.Now()))
	last := m.snapshot.Events[len(m.snapshot.Events)-1]
	if last.Detail != "cancelled" {
		t.Errorf("last event = %+v, want cancelled", last)
	}
}

func TestModelArrowsCancelFlight(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, key("r"))
	before := m.cam.Position
	m = send(t, m, key("left"))

	if m.animator.Active() {
		t.Error("manual orbit should cancel the flight")
	}
	if m.cam.Position == before {
		t.Error("camera did not orbit")
	}
	if r := m.cam.Position.Norm(); r < 149.99 || r > 150.01 {
		t.Errorf("orbit changed radius to %v", r)
	}
}

func TestModelHoverCycle(t *testing.T) {
	m, _ := newTestModel(t)
	visible := m.stars.Visible()
	if len(visible) < 2 {
		t.Fatalf("only %d stars visible", len(visible))
	}

	m = send(t, m, key("j"))
	if _, i, _ := m.resolver.Hovered(); i != visible[0] {
		t.Errorf("first j hovered %d, want %d", i, visible[0])
	}
	m = send(t, m, key("j"))
	if _, i, _ := m.resolver.Hovered(); i != visible[1] {
		t.Errorf("second j hovered %d, want %d", i, visible[1])
	}
	m = send(t, m, key("k"))
	if _, i, _ := m.resolver.Hovered(); i != visible[0] {
		t.Errorf("k hovered %d, want %d", i, visible[0])
	}

	m = send(t, m, key("enter"))
	if _, _, ok := m.animator.Target(); !ok {
		t.Error("enter on a hovered star should fly")
	}
}

func TestModelMouse(t *testing.T) {
	picks := pickCounter{}
	m, _ := newTestModel(t, WithPickRecorder(picks))

	idx := m.stars.Visible()[0]
	x, y, ok := m.stars.ScreenPos(idx)
	if !ok {
		t.Fatal("visible star has no screen position")
	}

	m = send(t, m, tea.MouseMsg{X: x, Y: y + headerLines, Action: tea.MouseActionMotion})
	if _, i, ok := m.resolver.Hovered(); !ok || i != idx {
		t.Errorf("hovered %d, want %d", i, idx)
	}
	if picks["hover"] != 1 {
		t.Errorf("hover picks = %d", picks["hover"])
	}

	m = send(t, m, tea.MouseMsg{X: x, Y: y + headerLines, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.animator.Active() {
		t.Error("click should start a flight")
	}
	if picks["click"] != 1 || m.snapshot.Selected == nil {
		t.Errorf("click not recorded: picks=%v selected=%v", picks, m.snapshot.Selected)
	}

	// Find an empty cell far from any star.
	w, h := m.stars.canvasSize()
	for ey := 0; ey < h; ey++ {
		for ex := 0; ex < w; ex++ {
			if m.stars.PickAt(ex, ey) < 0 {
				m = send(t, m, tea.MouseMsg{X: ex, Y: ey + headerLines, Action: tea.MouseActionMotion})
				if _, _, ok := m.resolver.Hovered(); ok {
					t.Error("moving to empty space should clear hover")
				}
				return
			}
		}
	}
	t.Error("no empty cell found")
}

func TestModelTour(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, key("t"))
	if !m.touring {
		t.Fatal("tour not started")
	}
	if m.snapshot.Selected == nil || m.snapshot.Selected.Name != "Sirius" {
		t.Errorf("first stop = %v, want Sirius", m.snapshot.Selected)
	}

	gen := m.tourGen
	m = send(t, m, tourTickMsg{gen: gen})
	if m.snapshot.Selected.Name != "Rigil Kentaurus" {
		t.Errorf("second stop = %s", m.snapshot.Selected.Name)
	}

	m = send(t, m, key("t"))
	if m.touring {
		t.Fatal("tour not stopped")
	}
	m = send(t, m, tourTickMsg{gen: gen})
	if m.snapshot.Selected.Name != "Rigil Kentaurus" {
		t.Error("stale tour tick advanced the tour")
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.animator.FlyTo(&camera.FlyTarget{Position: astro.Vec3{Z: 10}}) {
		t.Error("animator should be closed after quit")
	}
}

func TestModelCloseWithoutQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, key("r"))

	m.Close()
	m.Close()
	if m.animator.Active() {
		t.Error("Close left a flight running")
	}
	if m.animator.FlyTo(&camera.FlyTarget{Position: astro.Vec3{Z: 10}}) {
		t.Error("animator accepted a flight after Close")
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 1); got != "#3B82F6" {
		t.Errorf("left edge = %s, want #3B82F6", got)
	}
	if got := clampByte(300); got != 255 {
		t.Errorf("clampByte(300) = %d", got)
	}
}
