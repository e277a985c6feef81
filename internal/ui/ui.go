// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/interact"
	"github.com/litescript/ls-stellar/internal/logging"
	"github.com/litescript/ls-stellar/internal/starfield"
	"github.com/litescript/ls-stellar/internal/state"
	"github.com/litescript/ls-stellar/internal/tour"
	"github.com/litescript/ls-stellar/internal/version"
)

const (
	// headerLines is the number of rows above the star canvas. Mouse
	// coordinates are shifted by it.
	headerLines = 2

	// frameInterval drives Animator.Tick at about 30 fps.
	frameInterval = 33 * time.Millisecond

	orbitStep = 0.08 // radians per arrow press
	zoomStep  = 1.25

	backgroundSeed = 42
)

// Msg types for Bubble Tea
type (
	// AnimTickMsg advances the camera animation by one frame.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new catalogue snapshot is available.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a load error.
	ErrorMsg struct {
		Error error
	}

	// tourTickMsg advances the tour. Stale generations are ignored.
	tourTickMsg struct {
		gen int
	}
)

// PickRecorder counts hover and click picks. *metrics.Collector
// implements it.
type PickRecorder interface {
	RecordPick(kind string)
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	logger   *logging.Logger
	cam      *camera.PerspectiveCamera
	orbit    *camera.Orbit
	animator *camera.Animator
	resolver *interact.Resolver
	tour     *tour.Sequencer
	home     astro.Vec3

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	touring   bool
	tourGen   int

	// Sub-models
	stars  StarViewModel
	search SearchModel

	snapshot state.Snapshot
}

type options struct {
	flight      camera.Config
	fov         float64
	startRadius float64
	clock       camera.Clock
	logger      *logging.Logger
	picks       PickRecorder
	observer    camera.Observer
	tour        *tour.Sequencer
}

// Option configures the root model.
type Option func(*options)

// WithFlightConfig sets the animator bounds and default duration.
func WithFlightConfig(cfg camera.Config) Option {
	return func(o *options) {
		o.flight = cfg
	}
}

// WithView sets the field of view (degrees) and the starting orbit radius.
func WithView(fov, startRadius float64) Option {
	return func(o *options) {
		if fov > 0 {
			o.fov = fov
		}
		if startRadius > 0 {
			o.startRadius = startRadius
		}
	}
}

// WithClock sets the animation clock.
func WithClock(c camera.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the UI logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPickRecorder counts picks.
func WithPickRecorder(p PickRecorder) Option {
	return func(o *options) {
		o.picks = p
	}
}

// WithFlightObserver observes animator events.
func WithFlightObserver(obs camera.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithTour sets the tour sequencer.
func WithTour(t *tour.Sequencer) Option {
	return func(o *options) {
		o.tour = t
	}
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, opts ...Option) Model {
	o := options{
		flight:      camera.DefaultConfig(),
		fov:         60,
		startRadius: 150,
		clock:       camera.SystemClock{},
		logger:      logging.Discard(),
		tour:        tour.New(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	home := astro.Vec3{Z: o.startRadius}
	cam := camera.NewPerspectiveCamera(home, o.fov)
	orbit := camera.NewOrbit(cam, astro.Vec3{}, o.flight.MinDistance, o.flight.MaxDistance)

	animOpts := []camera.AnimatorOption{
		camera.WithOrbit(orbit),
		camera.WithClock(o.clock),
		camera.WithLogger(o.logger.Named("camera")),
	}
	if o.observer != nil {
		animOpts = append(animOpts, camera.WithObserver(o.observer))
	}
	animator := camera.NewAnimator(cam, o.flight, animOpts...)

	listener := &pickListener{state: stateMgr, picks: o.picks, logger: o.logger}
	resolver := interact.NewResolver(stateMgr.Transform(), cam, animator,
		interact.WithListener(listener),
		interact.WithLogger(o.logger.Named("interact")),
	)

	return Model{
		state:    stateMgr,
		logger:   o.logger,
		cam:      cam,
		orbit:    orbit,
		animator: animator,
		resolver: resolver,
		tour:     o.tour,
		home:     home,
		stars:    NewStarViewModel(cam),
		search:   NewSearchModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return animTickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}
		if m.search.Active() {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			cmds = append(cmds, cmd)
			break
		}
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.stars = m.stars.SetSize(msg.Width, msg.Height-headerLines-footerLines)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.resolver.Settle()
		for _, e := range m.animator.Tick() {
			m.recordFlight(e)
		}

	case DataUpdateMsg:
		m.applySnapshot(msg.Snapshot)

	case SearchChosenMsg:
		m.flyToStar(msg.Result.Star)

	case tourTickMsg:
		if msg.gen == m.tourGen && m.touring {
			cmds = append(cmds, m.tourStep())
		}

	case ErrorMsg:
		m.statusMsg = "ERROR: " + msg.Error.Error()
	}

	if _, frame := msg.(AnimTickMsg); !frame {
		m.syncSelection()
	}
	return m, tea.Batch(cmds...)
}

// syncSelection pulls the selection and event log without touching the
// buffers, which only change through DataUpdateMsg.
func (m *Model) syncSelection() {
	snap := m.state.Snapshot()
	m.snapshot.Selected = snap.Selected
	m.snapshot.Events = snap.Events
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left":
		m.manual()
		m.orbit.Rotate(-orbitStep, 0)
	case "right":
		m.manual()
		m.orbit.Rotate(orbitStep, 0)
	case "up":
		m.manual()
		m.orbit.Rotate(0, orbitStep)
	case "down":
		m.manual()
		m.orbit.Rotate(0, -orbitStep)
	case "+", "=":
		m.manual()
		m.orbit.Zoom(1 / zoomStep)
	case "-":
		m.manual()
		m.orbit.Zoom(zoomStep)

	case "j", "k":
		m.cycleHover(msg.String() == "j")
	case "enter":
		if _, i, ok := m.resolver.Hovered(); ok {
			m.resolver.PointerDown(i)
		}

	case "/":
		m.search = m.search.SetIndex(m.snapshot.Index).Open()
	case "t":
		return m.toggleTour()
	case "x":
		m.stopTour()
		m.animator.Cancel()
	case "q":
		m.state.SetQuality(m.snapshot.Tier.Next())
		m.applySnapshot(m.state.Snapshot())
		m.statusMsg = "Quality: " + m.snapshot.Tier.Name
	case "r":
		m.stopTour()
		m.resolver.PointerOut()
		m.stars = m.stars.SetHovered(-1)
		if t, err := camera.NewFlyTarget(m.home, camera.WithLookAt(astro.Vec3{}), camera.WithLabel("home")); err == nil {
			m.animator.FlyTo(&t)
		}
	case "l":
		m.stars = m.stars.CycleLabels()
	case "b":
		m.stars = m.stars.ToggleBackground()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y-headerLines
	switch {
	case msg.Action == tea.MouseActionMotion:
		idx := m.stars.PickAt(x, y)
		if idx < 0 {
			m.resolver.PointerOut()
			m.stars = m.stars.SetHovered(-1)
			return
		}
		m.resolver.PointerMove(idx)
		m.stars = m.stars.SetHovered(idx)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if idx := m.stars.PickAt(x, y); idx >= 0 {
			m.stopTour()
			m.resolver.PointerDown(idx)
		}
	case msg.Button == tea.MouseButtonWheelUp:
		m.manual()
		m.orbit.Zoom(1 / zoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.manual()
		m.orbit.Zoom(zoomStep)
	}
}

// manual hands the camera back to the user, ending any flight.
func (m *Model) manual() {
	if m.animator.Active() {
		m.animator.Cancel()
	}
	m.stopTour()
}

// cycleHover moves the hover to the next or previous visible star.
func (m *Model) cycleHover(forward bool) {
	visible := m.stars.Visible()
	if len(visible) == 0 {
		return
	}
	_, cur, ok := m.resolver.Hovered()
	next := visible[0]
	if ok {
		pos := -1
		for i, v := range visible {
			if v == cur {
				pos = i
				break
			}
		}
		switch {
		case pos < 0:
		case forward:
			next = visible[(pos+1)%len(visible)]
		default:
			next = visible[(pos-1+len(visible))%len(visible)]
		}
	}
	m.resolver.PointerMove(next)
	m.stars = m.stars.SetHovered(next)
}

func (m *Model) flyToStar(s astro.Star) {
	t, ok := interact.TargetForStar(s, m.cam.Position, m.state.Transform())
	if !ok {
		m.statusMsg = s.Label() + " has no distance"
		return
	}
	m.state.Select(&s)
	m.animator.FlyTo(&t)
}

func (m *Model) toggleTour() tea.Cmd {
	if m.touring {
		m.stopTour()
		m.statusMsg = "Tour stopped"
		return nil
	}
	m.touring = true
	m.tourGen++
	m.tour.Reset()
	m.statusMsg = "Tour started"
	return m.tourStep()
}

func (m *Model) stopTour() {
	if m.touring {
		m.touring = false
		m.tourGen++
	}
}

// tourStep flies to the next tour star and schedules the one after.
func (m *Model) tourStep() tea.Cmd {
	idx := m.snapshot.Index
	if idx == nil {
		m.stopTour()
		return nil
	}
	t, s, ok := m.tour.Step(idx.Lookup, m.cam.Position, m.state.Transform())
	if !ok {
		m.stopTour()
		m.statusMsg = "Tour finished"
		return nil
	}
	m.state.Select(&s)
	m.animator.FlyTo(&t)
	return tourTickCmd(m.tour.Interval(), m.tourGen)
}

func (m *Model) recordFlight(e camera.Event) {
	detail := e.Kind.String()
	if e.Err != nil {
		detail += ": " + e.Err.Error()
		m.logger.Error("flight %s: %v", e.Label, e.Err)
	}
	m.state.Record(state.EventFlight, e.Label, detail)
	m.snapshot.Events = m.state.RecentEvents(eventLines)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	tierChanged := snap.Tier.Name != m.snapshot.Tier.Name || m.snapshot.Index == nil
	m.snapshot = snap
	m.resolver.SetBuffers(snap.Buffers)
	bg := m.stars.background
	if tierChanged {
		bg = starfield.BackgroundStars(snap.Tier, backgroundSeed)
	}
	m.stars = m.stars.UpdateData(snap.Buffers, bg)
	m.search = m.search.SetIndex(snap.Index)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	if m.search.Active() {
		content = m.search.View()
	}
	if content == "" {
		content = m.stars.View()
	} else {
		// Search replaces the top rows of the canvas.
		rows := strings.Split(m.stars.View(), "\n")
		n := strings.Count(content, "\n") + 1
		if n < len(rows) {
			content += "\n" + strings.Join(rows[n:], "\n")
		}
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := "✦ LS-STELLAR"
	var b strings.Builder
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s · %s · %s", version.Version, sourceName(m.snapshot), m.snapshot.Tier.Name)))
	if m.touring {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Render("  ▶ tour"))
	}
	b.WriteString("\n")
	b.WriteString("  " + renderFlight(m.animator))
	return b.String()
}

const (
	footerLines = 4
	eventLines  = 1
)

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var lines []string

	switch {
	case m.snapshot.Selected != nil:
		lines = append(lines, renderStarInfo(*m.snapshot.Selected, "◆"))
	default:
		if s, _, ok := m.resolver.Hovered(); ok {
			lines = append(lines, renderStarInfo(s, "◇"))
		} else {
			lines = append(lines, "")
		}
	}

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.StarCount > 0:
		status = dimStyle.Render(fmt.Sprintf("%d stars loaded", m.snapshot.StarCount))
		if m.snapshot.LoadDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.LoadDuration.Round(time.Millisecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Loading catalogue...")
	}
	help := dimStyle.Render("arrows: orbit | +/-: zoom | j/k: hover | enter: fly | /: search | t: tour | x: stop | q: quality | r: reset | l: labels")
	lines = append(lines, "  "+status+"  "+dimStyle.Render("|")+"  "+help)

	lines = append(lines, renderEvents(m.snapshot.Events, eventLines))
	lines = append(lines, "  "+dimStyle.Render(m.statusMsg))
	return strings.Join(lines, "\n")
}

func sourceName(s state.Snapshot) string {
	if s.Source == "" {
		return "no catalogue"
	}
	return s.Source
}

// gradientColor returns a hex color for a position in the title gradient.
// Blue -> purple -> magenta -> pink, fading toward the bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	brightnessFactor := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X",
		clampByte(r*brightnessFactor), clampByte(g*brightnessFactor), clampByte(b*brightnessFactor))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return int(v)
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

// Camera returns the scene camera.
func (m Model) Camera() *camera.PerspectiveCamera {
	return m.cam
}

// Close tears down the animator. It is safe to call more than once and
// must run however the program exits.
func (m Model) Close() {
	m.animator.Close()
}

// Animator returns the fly-to animator.
func (m Model) Animator() *camera.Animator {
	return m.animator
}

func animTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

func tourTickCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tourTickMsg{gen: gen}
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}

// pickListener forwards resolver notifications to state and metrics.
type pickListener struct {
	state  *state.Manager
	picks  PickRecorder
	logger *logging.Logger
}

func (l *pickListener) OnHover(s astro.Star, _ int) {
	l.logger.Debug("hover %s", s.Label())
	if l.picks != nil {
		l.picks.RecordPick("hover")
	}
}

func (l *pickListener) OnHoverEnd() {}

func (l *pickListener) OnClick(s astro.Star, _ int) {
	l.state.Select(&s)
	if l.picks != nil {
		l.picks.RecordPick("click")
	}
}
