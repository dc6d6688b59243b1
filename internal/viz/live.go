package viz

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rpsim/internal/export"
	"github.com/san-kum/rpsim/internal/rps"
	"github.com/san-kum/rpsim/internal/sim"
	"github.com/san-kum/rpsim/internal/storage"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameCapacity   = 120
	maxStepsPerTick = 64
	tickRate        = time.Second / 30
	gifPixels       = 512
)

// Frame is one displayed lattice state.
type Frame struct {
	Step    int
	Grid    *rps.Grid
	Counts  rps.Counts
	Entropy float64
}

type TickMsg time.Time

// Model drives either a live simulator or a replay of stored snapshots.
type Model struct {
	sim    *sim.Simulator
	probs  rps.Probabilities
	title  string
	replay bool
	cursor int

	width, height int
	running       bool
	stepsPerTick  int
	focus         rps.Species

	frames   []Frame
	playHead int
	pops     [rps.NumStates][]float64
	entropy  []float64

	recording bool
	recorded  []*rps.Grid
	gifPath   string
	status    string
	showHelp  bool
}

// NewModel returns a live model stepping s.
func NewModel(s *sim.Simulator, title string) Model {
	m := Model{
		sim:          s,
		probs:        s.Config().Probabilities,
		title:        title,
		width:        width,
		height:       height,
		running:      true,
		stepsPerTick: 1,
		playHead:     -1,
		gifPath:      "rpsim.gif",
	}
	m.push(Frame{Step: s.StepIndex(), Grid: s.Grid(), Counts: s.Counts(), Entropy: s.Entropy()})
	return m
}

// NewReplayModel returns a model that plays back snaps. Entropy is
// recomputed with p for every frame.
func NewReplayModel(snaps []storage.Snapshot, p rps.Probabilities, title string) Model {
	m := Model{
		probs:        p,
		title:        title,
		replay:       true,
		width:        width,
		height:       height,
		running:      true,
		stepsPerTick: 1,
		playHead:     -1,
		gifPath:      "rpsim.gif",
	}
	m.frames = make([]Frame, 0, len(snaps))
	for _, s := range snaps {
		m.frames = append(m.frames, Frame{
			Step:    s.Step,
			Grid:    s.Grid,
			Counts:  s.Grid.Counts(),
			Entropy: rps.Entropy(s.Grid, p),
		})
	}
	if len(m.frames) > 0 {
		m.track(m.frames[0])
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "f":
			m.focus = (m.focus + 1) % rps.NumStates
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		if m.recording {
			m.recorded = append(m.recorded, m.current().Grid)
		}
		return m, tick()
	}
	return m, nil
}

// advance moves live mode forward by stepsPerTick steps, or replay mode by
// stepsPerTick frames. Scrubbed playback catches up to the newest frame
// before live stepping resumes.
func (m *Model) advance() {
	if m.playHead >= 0 {
		m.playHead += m.stepsPerTick
		if m.playHead >= len(m.frames)-1 {
			m.playHead = -1
		}
		return
	}
	if m.replay {
		if m.cursor >= len(m.frames)-1 {
			m.running = false
			m.status = "end of replay"
			return
		}
		m.cursor = min(m.cursor+m.stepsPerTick, len(m.frames)-1)
		m.track(m.frames[m.cursor])
		return
	}
	for i := 0; i < m.stepsPerTick; i++ {
		m.sim.Step()
	}
	m.push(Frame{Step: m.sim.StepIndex(), Grid: m.sim.Grid(), Counts: m.sim.Counts(), Entropy: m.sim.Entropy()})
}

// push appends a live frame to the time-travel ring and the series.
func (m *Model) push(f Frame) {
	m.frames = append(m.frames, f)
	if len(m.frames) > frameCapacity {
		m.frames = m.frames[1:]
	}
	m.track(f)
}

func (m *Model) track(f Frame) {
	n := float64(f.Counts.Total())
	for s := range m.pops {
		m.pops[s] = appendCapped(m.pops[s], float64(f.Counts[s])/n)
	}
	m.entropy = appendCapped(m.entropy, f.Entropy)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// scrub changes the playback position in the frame buffer.
func (m *Model) scrub(dir int) {
	if m.replay {
		m.cursor = max(0, min(m.cursor+dir, len(m.frames)-1))
		m.running = false
		return
	}
	if m.playHead == -1 {
		if len(m.frames) == 0 {
			return
		}
		m.playHead = len(m.frames) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.frames) {
		m.playHead = -1
	}
}

// reset reseeds the live simulator, or rewinds a replay.
func (m *Model) reset() {
	for s := range m.pops {
		m.pops[s] = m.pops[s][:0]
	}
	m.entropy = m.entropy[:0]
	m.playHead = -1
	m.status = ""

	if m.replay {
		m.cursor = 0
		if len(m.frames) > 0 {
			m.track(m.frames[0])
		}
		return
	}
	if err := m.sim.Seed(); err != nil {
		m.status = "reset failed: " + err.Error()
		return
	}
	m.frames = m.frames[:0]
	m.push(Frame{Step: 0, Grid: m.sim.Grid(), Counts: m.sim.Counts(), Entropy: m.sim.Entropy()})
}

// current returns the frame on screen.
func (m *Model) current() Frame {
	switch {
	case m.playHead >= 0 && m.playHead < len(m.frames):
		return m.frames[m.playHead]
	case m.replay && len(m.frames) > 0:
		return m.frames[m.cursor]
	case len(m.frames) > 0:
		return m.frames[len(m.frames)-1]
	}
	return Frame{}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.recorded = m.recorded[:0]
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", len(m.recorded), m.gifPath)
	}
	m.recorded = nil
}

func (m *Model) saveGIF() error {
	if len(m.recorded) == 0 {
		return export.ErrNoFrames
	}
	g := m.recorded[0]
	scale := max(1, gifPixels/max(g.Width(), g.Height()))

	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	if err := export.GridsToGIF(f, m.recorded, scale, 3); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m Model) statusLine() string {
	switch {
	case m.recording:
		return StatusRecording.Render("● REC")
	case m.playHead >= 0:
		back := m.frames[len(m.frames)-1].Step - m.frames[m.playHead].Step
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (-%d steps)", back))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (-%d steps)", back))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.replay:
		return StatusRunning.Render("PLAYBACK")
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	f := m.current()
	if f.Grid == nil {
		return "no frames\n"
	}

	cols := max(1, m.width-lipgloss.Width(statsStyle.Render(""))-4)
	rows := max(1, m.height-2)

	var lattice string
	if m.focus == rps.Empty {
		lattice = RenderGrid(f.Grid, cols, rows, CurrentTheme)
	} else {
		color := lipgloss.NewStyle().Foreground(CurrentTheme.Color(m.focus))
		lattice = color.Render(FocusCanvas(f.Grid, m.focus, cols, rows).String())
	}
	canvasView := canvasStyle.Render(lattice)

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	n := float64(f.Counts.Total())
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", f.Step)) + "\n")
	for _, sp := range rps.Occupants {
		frac := float64(f.Counts[sp]) / n
		s.WriteString(labelStyle.Render(sp.String()) +
			PopulationBar(frac, 20, CurrentTheme.Color(sp)) +
			valueStyle.Render(fmt.Sprintf(" %5.1f%%", 100*frac)) + "\n")
	}
	s.WriteString(labelStyle.Render("Empty") + valueStyle.Render(fmt.Sprintf("%5.1f%%", 100*float64(f.Counts[rps.Empty])/n)) + "\n")
	s.WriteString(labelStyle.Render("Entropy") + valueStyle.Render(fmt.Sprintf("%.4f", f.Entropy)) + "\n")
	s.WriteString(labelStyle.Render("") + Subtle.Render(Sparkline(m.entropy, 30)) + "\n")

	if len(m.pops[rps.Rock]) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.pops[rps.Rock], m.pops[rps.Paper], m.pops[rps.Scissors]},
			asciigraph.Height(6),
			asciigraph.Width(32),
			asciigraph.Precision(2),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
			asciigraph.Caption("Population"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	p := m.probs
	s.WriteString("\n" + labelStyle.Render("Settle") + valueStyle.Render(fmt.Sprintf("%.3f", p.Settle)) + "\n")
	s.WriteString(labelStyle.Render("Compete") + valueStyle.Render(fmt.Sprintf("%.3f", p.Competition)) + "\n")
	s.WriteString(labelStyle.Render("Mobility") + valueStyle.Render(fmt.Sprintf("%.3f", p.Mobility)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d/tick", m.stepsPerTick)) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(CurrentTheme.Name) + "\n")
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel +/-:Speed F:Focus"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reseed / rewind          ║
║  Q        - Quit                     ║
║  [        - Step back in time        ║
║  ]        - Step forward in time     ║
║  + / -    - Steps per frame          ║
║  F        - Focus on one species     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive opens the live view on s.
func RunLive(s *sim.Simulator, title string) error {
	_, err := tea.NewProgram(NewModel(s, title), tea.WithAltScreen()).Run()
	return err
}

// RunReplay opens the replay view on snaps.
func RunReplay(snaps []storage.Snapshot, p rps.Probabilities, title string) error {
	if len(snaps) == 0 {
		return export.ErrNoFrames
	}
	_, err := tea.NewProgram(NewReplayModel(snaps, p, title), tea.WithAltScreen()).Run()
	return err
}
