package viz

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rpsim/internal/config"
	"github.com/san-kum/rpsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var presetInfo = map[string]string{
	"default":    "512x512, reference rates",
	"balanced":   "equal rates",
	"small":      "64x64, quick look",
	"static":     "no mobility",
	"mobile":     "fast movers",
	"aggressive": "strong competition",
	"sparse":     "low initial density",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable numeric setting on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"width", func(c *config.Config) float64 { return float64(c.Width) }, func(c *config.Config, v float64) { c.Width = int(v) }, 16},
	{"height", func(c *config.Config) float64 { return float64(c.Height) }, func(c *config.Config, v float64) { c.Height = int(v) }, 16},
	{"density", func(c *config.Config) float64 { return c.Density }, func(c *config.Config, v float64) { c.Density = v }, 0.05},
	{"settle", func(c *config.Config) float64 { return c.Probabilities.Settle }, func(c *config.Config, v float64) { c.Probabilities.Settle = v }, 0.05},
	{"competition", func(c *config.Config) float64 { return c.Probabilities.Competition }, func(c *config.Config, v float64) { c.Probabilities.Competition = v }, 0.05},
	{"mobility", func(c *config.Config) float64 { return c.Probabilities.Mobility }, func(c *config.Config, v float64) { c.Probabilities.Mobility = v }, 0.05},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = int64(v) }, 1},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
}

// NewInteractiveApp returns the preset browser.
func NewInteractiveApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		width:   width,
		height:  height,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.liveModel.Update(msg)
	m.liveModel = next.(Model)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				f.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(f.get(m.cfg), 'f', -1, 64)
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-f.step)
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+f.step)
	case "s":
		return m.start()
	}
	return m, nil
}

// start validates the edited configuration and switches to the live view.
func (m model) start() (model, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	// the alt screen owns the terminal; simulator logs would corrupt it
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sim.New(m.cfg.Sim(), sim.WithLogger(quiet))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(s, m.selected)
	m.liveModel.width, m.liveModel.height = m.width, m.height
	m.state, m.err = stateSim, nil
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateConfig:
		return m.configView()
	case stateSim:
		return m.liveModel.View()
	}
	return m.menuView()
}

func (m model) menuView() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("RPSIM") + dim.Render("  spatial rock-paper-scissors") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-12s %s", name, dimmer.Render(presetInfo[name]))
		if i == m.cursor {
			b.WriteString(yellow.Render("▸ ") + white.Render(line) + "\n")
		} else {
			b.WriteString("  " + dim.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + dimmer.Render("↑↓ select   enter configure   q quit"))
	return b.String()
}

func (m model) configView() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render(strings.ToUpper(m.selected)) + "\n\n")
	for i, f := range fields {
		val := strconv.FormatFloat(f.get(m.cfg), 'f', -1, 64)
		if i == m.fieldCursor && m.editing {
			val = m.editBuf + "█"
		}
		line := fmt.Sprintf("%-12s %s", f.name, val)
		if i == m.fieldCursor {
			b.WriteString(yellow.Render("▸ ") + white.Render(line) + "\n")
		} else {
			b.WriteString("  " + dim.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimmer.Render("↑↓ field   ←→ adjust   enter edit   s start   esc back"))
	return b.String()
}

// RunInteractive opens the preset browser.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
