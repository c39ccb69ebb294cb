// Package tui provides the BubbleTea-based toast host.
//
// The model renders the live toasts of a mounted provider at their anchors,
// owns each toast's auto-close timer and progress bar, and runs a toast's
// OnClose callback once the store has evicted it.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/layout"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/provider"
	"github.com/jmylchreest/toastui/internal/store"
	"github.com/jmylchreest/toastui/internal/toast"
)

// demoMessages are the messages raised by the demo keys.
var demoMessages = map[model.Type]string{
	model.TypeDefault: "Something happened",
	model.TypeSuccess: "Changes saved",
	model.TypeError:   "Upload failed",
	model.TypeWarning: "Disk almost full",
	model.TypeInfo:    "New version available",
}

// autoClose tracks the display timer of one visible toast.
type autoClose struct {
	total     time.Duration
	deadline  time.Time     // while running
	remaining time.Duration // while paused
	gen       int
}

// Model is the toast host model.
type Model struct {
	handle  *provider.Handle
	changes <-chan store.ChangeEvent
	logger  *slog.Logger
	now     func() time.Time

	display config.DisplayConfig
	keys    KeyMap
	help    help.Model

	toasts    []model.Record
	groups    layout.Groups
	timers    map[string]*autoClose
	exitingAt map[string]time.Time
	paused    bool
	ticking   bool
	demoPos   model.Position

	width    int
	height   int
	ready    bool
	showHelp bool

	statusMsg string
	statusErr bool
}

// Options configures a Model.
type Options struct {
	Display config.DisplayConfig
	Logger  *slog.Logger
	Now     func() time.Time // for tests; defaults to time.Now
}

// New creates the host model for the provider carried by ctx.
func New(ctx context.Context, opts Options) (Model, error) {
	h, err := provider.Use(ctx)
	if err != nil {
		return Model{}, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Display.Width == 0 {
		opts.Display = config.DefaultConfig().Display
	}

	demoPos := model.Position(opts.Display.DemoPosition)
	if !demoPos.Valid() {
		demoPos = model.DefaultPosition
	}

	return Model{
		handle:    h,
		changes:   h.Changes(),
		logger:    opts.Logger,
		now:       opts.Now,
		display:   opts.Display,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		timers:    make(map[string]*autoClose),
		exitingAt: make(map[string]time.Time),
		demoPos:   demoPos,
	}, nil
}

// Messages.
type (
	loadMsg      struct{}
	changeMsg    struct{ event store.ChangeEvent }
	storeDoneMsg struct{}
	frameMsg     time.Time

	// closeMsg fires when a toast's display duration has elapsed.
	closeMsg struct {
		id  string
		gen int
	}

	statusMsg struct {
		text  string
		isErr bool
	}
	clearStatusMsg struct{}

	// ConfigMsg carries a reloaded configuration into the running program.
	ConfigMsg struct{ Config *config.Config }
)

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return loadMsg{} },
		m.watchForChanges,
	)
}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	ev, ok := <-m.changes
	if !ok {
		return storeDoneMsg{}
	}
	return changeMsg{event: ev}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case loadMsg:
		return m, m.refresh(nil)

	case changeMsg:
		cmd := m.refresh(&msg.event)
		return m, tea.Batch(cmd, m.watchForChanges)

	case storeDoneMsg:
		m.logger.Debug("toast store closed, stopping host")
		return m, tea.Quit

	case closeMsg:
		t, ok := m.timers[msg.id]
		if !ok || t.gen != msg.gen || m.paused {
			return m, nil
		}
		delete(m.timers, msg.id)
		m.handle.Remove(msg.id)
		return m, nil

	case frameMsg:
		if len(m.toasts) == 0 {
			m.ticking = false
			return m, nil
		}
		return m, m.frameTick()

	case ConfigMsg:
		if msg.Config != nil {
			m.display = msg.Config.Display
			if pos := model.Position(m.display.DemoPosition); pos.Valid() {
				m.demoPos = pos
			}
		}
		return m, m.setStatus("configuration reloaded", false)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// refresh re-reads the store snapshot and reconciles timers with it. Events
// are only a wake-up signal: the snapshot is authoritative, so events dropped
// by a slow consumer lose nothing.
func (m *Model) refresh(ev *store.ChangeEvent) tea.Cmd {
	now := m.now()
	prev := m.toasts
	snap := m.handle.Snapshot()
	m.toasts, m.groups = snap.Toasts, snap.Groups

	live := make(map[string]bool, len(m.toasts))
	var cmds []tea.Cmd

	for _, rec := range m.toasts {
		live[rec.ID] = true

		if rec.Exiting {
			delete(m.timers, rec.ID)
			if _, ok := m.exitingAt[rec.ID]; !ok {
				m.exitingAt[rec.ID] = now
			}
			continue
		}

		if _, ok := m.timers[rec.ID]; ok {
			continue
		}
		total := rec.DurationTime()
		remaining := max(total-now.Sub(rec.CreatedAt), 0)
		t := &autoClose{total: total, gen: 1}
		m.timers[rec.ID] = t
		if m.paused {
			t.remaining = remaining
			continue
		}
		t.deadline = now.Add(remaining)
		cmds = append(cmds, closeAfter(rec.ID, t.gen, remaining))
	}

	// Toasts gone from the snapshot have been evicted: they are finally closed.
	for _, rec := range prev {
		if live[rec.ID] {
			continue
		}
		delete(m.timers, rec.ID)
		delete(m.exitingAt, rec.ID)
		if rec.OnClose != nil {
			rec.OnClose()
		}
	}

	if ev != nil && ev.Type == store.ChangeTypeAdd {
		m.logger.Debug("toast shown", "id", ev.ID, "type", ev.Record.Type, "position", ev.Record.Position)
	}

	if len(m.toasts) > 0 && !m.ticking {
		m.ticking = true
		cmds = append(cmds, m.frameTick())
	}
	return tea.Batch(cmds...)
}

func closeAfter(id string, gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return closeMsg{id: id, gen: gen}
	})
}

func (m Model) frameTick() tea.Cmd {
	interval := m.display.FrameInterval.Duration()
	if interval <= 0 {
		interval = config.DefaultFrameInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// setPaused stops or restarts every running auto-close timer. Stopped timers
// keep their remaining time; bumping the generation invalidates ticks already
// in flight.
func (m *Model) setPaused(paused bool) tea.Cmd {
	if m.paused == paused {
		return nil
	}
	m.paused = paused
	now := m.now()

	var cmds []tea.Cmd
	for id, t := range m.timers {
		t.gen++
		if paused {
			t.remaining = max(t.deadline.Sub(now), 0)
			continue
		}
		t.deadline = now.Add(t.remaining)
		cmds = append(cmds, closeAfter(id, t.gen, t.remaining))
	}
	return tea.Batch(cmds...)
}

// remainingFraction returns the share of a toast's display time still left.
func (m Model) remainingFraction(id string) float64 {
	t, ok := m.timers[id]
	if !ok || t.total <= 0 {
		return 0
	}
	left := t.remaining
	if !m.paused {
		left = t.deadline.Sub(m.now())
	}
	return min(max(float64(left)/float64(t.total), 0), 1)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Success):
		return m, m.demo(model.TypeSuccess)
	case key.Matches(msg, m.keys.Error):
		return m, m.demo(model.TypeError)
	case key.Matches(msg, m.keys.Warning):
		return m, m.demo(model.TypeWarning)
	case key.Matches(msg, m.keys.Info):
		return m, m.demo(model.TypeInfo)
	case key.Matches(msg, m.keys.Default):
		return m, m.demo(model.TypeDefault)

	case key.Matches(msg, m.keys.CyclePosition):
		m.demoPos = nextPosition(m.demoPos)
		return m, m.setStatus("demo anchor: "+string(m.demoPos), false)

	case key.Matches(msg, m.keys.DismissNewest):
		for i := len(m.toasts) - 1; i >= 0; i-- {
			if !m.toasts[i].Exiting {
				m.handle.Remove(m.toasts[i].ID)
				break
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.DismissAll):
		m.handle.RemoveAll()
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		cmd := m.setPaused(!m.paused)
		return m, cmd
	}

	return m, nil
}

// demo raises a demo toast through the global handle, the way code outside
// the interface would.
func (m Model) demo(t model.Type) tea.Cmd {
	_, err := toast.Notify(model.Request{
		Message:  demoMessages[t],
		Type:     t,
		Position: m.demoPos,
	})
	if err != nil {
		return m.setStatus("notify failed: "+err.Error(), true)
	}
	return nil
}

func (m Model) setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// nextPosition cycles through the anchors in canonical order.
func nextPosition(p model.Position) model.Position {
	positions := model.Positions()
	for i, pos := range positions {
		if pos == p {
			return positions[(i+1)%len(positions)]
		}
	}
	return positions[0]
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	bar := m.statusBar()
	if m.showHelp {
		bar = m.help.FullHelpView(m.keys.FullHelp()) + "\n" + bar
	}
	barHeight := lipgloss.Height(bar)

	s := screen{
		width:      m.width,
		height:     max(m.height-barHeight, 0),
		toastWidth: m.display.Width,
		gap:        m.display.Gap,
		offsetX:    m.display.OffsetX,
		offsetY:    m.display.OffsetY,
	}
	return compose(s, m.renderGroups(s)) + "\n" + bar
}

// renderGroups renders every toast, grouped by anchor.
func (m Model) renderGroups(s screen) map[model.Position][]renderedToast {
	now := m.now()
	widths := s.cellWidths()
	cells := make(map[model.Position][]renderedToast, len(m.groups))

	for _, pos := range m.groups.Anchors() {
		recs := m.groups[pos]
		limit := widths[columnOf(pos)] - s.offsetX
		containerWidth := layout.ContainerWidth(recs, s.toastWidth)

		for _, rec := range recs {
			width := ToastWidth(rec, s.toastWidth, min(containerWidth, limit))

			var frame Frame
			if rec.Exiting {
				frame = ExitFrame(rec.Animation, now.Sub(m.exitingAt[rec.ID]), store.ExitDelay, width)
			} else {
				frame = EntryFrame(rec.Animation, now.Sub(rec.CreatedAt), width)
			}
			// Never shift a toast past its cell.
			frame.Shift = min(frame.Shift, max(limit-width, 0))

			block := RenderToast(rec, width, frame, m.remainingFraction(rec.ID))
			block = shiftStyle(pos, frame, s.offsetX).Render(block)
			cells[pos] = append(cells[pos], renderedToast{block: block, frame: frame})
		}
	}
	return cells
}

func columnOf(pos model.Position) int {
	switch anchorAlign(pos) {
	case lipgloss.Left:
		return 0
	case lipgloss.Center:
		return 1
	default:
		return 2
	}
}

func (m Model) statusBar() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	if m.statusMsg != "" {
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		} else {
			style = style.Foreground(lipgloss.Color("7"))
		}
		return style.Render(m.statusMsg)
	}

	info := fmt.Sprintf("%d active · anchor %s", len(m.toasts), m.demoPos)
	if n := len(m.toasts); n > 0 {
		info += " · newest " + humanize.RelTime(m.toasts[n-1].CreatedAt, m.now(), "ago", "from now")
	}
	if m.paused {
		info += " · paused"
	}
	return style.Render(info) + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
}

// Toasts returns the snapshot the model last rendered.
func (m Model) Toasts() []model.Record {
	return m.toasts
}

// Paused reports whether auto-close is paused.
func (m Model) Paused() bool {
	return m.paused
}

// DemoPosition returns the anchor the demo keys raise toasts at.
func (m Model) DemoPosition() model.Position {
	return m.demoPos
}

// NewProgram creates the bubbletea program for m on the alternate screen.
func NewProgram(ctx context.Context, m Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	return tea.NewProgram(m, opts...)
}
