package ui

import (
	"strings"
	"testing"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/starfield"
)

func testView(t *testing.T) StarViewModel {
	t.Helper()
	cam := camera.NewPerspectiveCamera(astro.Vec3{Z: 150}, 60)
	b := starfield.Project(astro.DefaultStarCatalog().Stars, starfield.TierMedium, starfield.DefaultConfig())
	return NewStarViewModel(cam).SetSize(120, 40).UpdateData(b, starfield.BackgroundStars(starfield.TierLow, 1))
}

func TestStarViewModelSetSize(t *testing.T) {
	m := NewStarViewModel(nil).SetSize(120, 40)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
	if w, h := m.canvasSize(); w != 120 || h != 40-hudLines {
		t.Errorf("canvas = %dx%d", w, h)
	}
}

func TestStarViewPickAt(t *testing.T) {
	m := testView(t)
	visible := m.Visible()
	if len(visible) == 0 {
		t.Fatal("nothing visible")
	}

	for _, i := range visible {
		x, y, ok := m.ScreenPos(i)
		if !ok {
			t.Fatalf("visible star %d has no screen position", i)
		}
		if got := m.PickAt(x, y); got != i {
			t.Errorf("PickAt(%d, %d) = %d, want %d", x, y, got, i)
		}
	}

	if got := m.PickAt(-50, -50); got != -1 {
		t.Errorf("off-canvas pick = %d", got)
	}
}

func TestStarViewNearestWins(t *testing.T) {
	near := astro.Star{RAdeg: 0, DecDeg: 90, DistPC: astro.Ptr(10.0), Vmag: astro.Ptr(1.0)}
	far := astro.Star{RAdeg: 0, DecDeg: 90, DistPC: astro.Ptr(20.0), Vmag: astro.Ptr(0.0)}
	b := starfield.Project([]astro.Star{near, far}, starfield.TierLow, starfield.DefaultConfig())

	// Both lie on +Y; looking up from below puts them in one cell.
	cam := camera.NewPerspectiveCamera(astro.Vec3{Y: -100}, 60)
	cam.LookAt(astro.Vec3{})
	m := NewStarViewModel(cam).SetSize(80, 30).UpdateData(b, nil)

	vis := m.Visible()
	if len(vis) != 1 {
		t.Fatalf("overlapping stars should share one cell, got %v", vis)
	}
	s := m.buffers.Stars[vis[0]]
	if d, _ := s.Distance(); d != 10 {
		t.Errorf("drawn star at %v pc, want the nearer one", d)
	}
}

func TestStarViewRender(t *testing.T) {
	m := testView(t)
	out := m.View()
	if !strings.Contains(out, "Labels:named") {
		t.Error("HUD missing label mode")
	}
	if !containsName(out, m) {
		t.Error("no star names drawn in named mode")
	}

	m = m.CycleLabels()
	if m.labelMode != LabelNone {
		t.Fatalf("label mode = %v", m.labelMode)
	}
	if containsName(m.View(), m) {
		t.Error("labels drawn with labels off")
	}

	if small := m.SetSize(10, 3).View(); small != "Terminal too small for star view" {
		t.Errorf("small view = %q", small)
	}
}

// containsName reports whether any named star's name appears in out.
// Styled output wraps each rune, so names are matched on the plain text.
func containsName(out string, m StarViewModel) bool {
	plain := stripANSI(out)
	for _, s := range m.buffers.Stars {
		if s.Named() && strings.Contains(plain, s.Name) {
			return true
		}
	}
	return false
}

func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				esc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestStarGlyph(t *testing.T) {
	tests := []struct {
		size, depth float64
		want        rune
	}{
		{8, 200, '✦'},
		{4, 200, '*'},
		{2, 200, '•'},
		{1, 200, '·'},
		{1, 20, '•'},   // close stars grow
		{8, 5000, '*'}, // distant stars shrink
	}
	for _, tt := range tests {
		if got := starGlyph(tt.size, tt.depth); got != tt.want {
			t.Errorf("starGlyph(%v, %v) = %c, want %c", tt.size, tt.depth, got, tt.want)
		}
	}
}
