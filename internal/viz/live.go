package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/sim"
	"go.uber.org/zap"
)

const (
	sceneWidth      = 60
	sceneHeight     = 20
	historyCapacity = 600
	frameRate       = 60
)

type TickMsg time.Time

// ConfigMsg replaces the running configuration and restarts.
type ConfigMsg struct{ Config *config.Config }

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model runs an experiment in real time and draws it.
type Model struct {
	reg *experiment.Registry
	cfg config.Config
	log *zap.Logger

	exp     *experiment.Experiment
	metrics []sim.Metric
	err     error

	bar progress.Model

	t       float64
	speed   float64
	running bool
	plane   Plane
	lo, hi  mgl64.Vec3
	entry   sim.LogEntry

	tracked []mgl64.Vec3
	shown   []mgl64.Vec3
	lag     []float64
}

func NewModel(reg *experiment.Registry, cfg *config.Config, log *zap.Logger) (*Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		reg:     reg,
		cfg:     *cfg,
		log:     log,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(16)),
		speed:   1,
		running: true,
	}
	if err := m.restart(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) restart() error {
	exp, err := experiment.New(m.reg, &m.cfg, nil, m.log)
	if err != nil {
		return err
	}
	m.exp = exp
	m.metrics = m.reg.DefaultMetrics(m.cfg.Experiment)
	for _, mt := range m.metrics {
		mt.Reset()
	}
	m.t = 0
	m.entry = exp.Sample(0)
	m.tracked = m.tracked[:0]
	m.shown = m.shown[:0]
	m.lag = m.lag[:0]
	m.lo, m.hi = m.frame()
	return nil
}

// frame bounds every volume in the world plus the starting hands.
func (m *Model) frame() (mgl64.Vec3, mgl64.Vec3) {
	lo := m.entry.PrimaryTracked
	hi := lo
	grow := func(p mgl64.Vec3) {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	grow(m.entry.SecondaryTracked)
	grow(m.entry.EndEffector)
	w := m.exp.World()
	for _, id := range w.VolumeIDs() {
		if b, ok := w.Volume(id); ok {
			grow(b.Min())
			grow(b.Max())
		}
	}
	pad := mgl64.Vec3{0.1, 0.1, 0.1}
	return lo.Sub(pad), hi.Add(pad)
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.restart()
		case "c":
			m.cfg.Condition = string(m.exp.Condition().Next())
			m.err = m.restart()
		case "v":
			m.plane = 1 - m.plane
		case "+", "=":
			m.speed = min(m.speed*2, 16)
		case "-", "_":
			m.speed = max(m.speed/2, 0.125)
		case "t":
			NextTheme()
		}
	case ConfigMsg:
		m.cfg = *msg.Config
		m.err = m.restart()
		m.log.Info("config reloaded", zap.String("experiment", m.cfg.Experiment))
	case TickMsg:
		if m.running && m.err == nil {
			m.advance(m.speed / frameRate)
		}
		return m, tick()
	}
	return m, nil
}

// advance steps the experiment by about span seconds of simulated time.
func (m *Model) advance(span float64) {
	dt := m.cfg.Dt
	until := m.t + span
	for m.t+dt <= until+1e-9 && m.t < m.cfg.Duration && !m.exp.Done() {
		m.exp.Step(dt)
		m.t += dt
		m.entry = m.exp.Sample(m.t)
		for _, mt := range m.metrics {
			mt.Observe(m.entry)
		}
		m.record()
	}
}

func (m *Model) record() {
	push := func(s []mgl64.Vec3, v mgl64.Vec3) []mgl64.Vec3 {
		s = append(s, v)
		if len(s) > historyCapacity {
			s = s[1:]
		}
		return s
	}
	m.tracked = push(m.tracked, m.entry.PrimaryTracked)
	m.shown = push(m.shown, m.entry.EndEffector)
	m.lag = append(m.lag, m.entry.Lag())
	if len(m.lag) > historyCapacity {
		m.lag = m.lag[1:]
	}
}

func (m *Model) draw() *Scene {
	s := NewScene(sceneWidth, sceneHeight, m.plane, m.lo, m.hi)
	w := m.exp.World()
	for _, id := range w.VolumeIDs() {
		if b, ok := w.Volume(id); ok {
			s.Box(b)
		}
	}
	s.Path(m.tracked)
	s.Path(m.shown)
	s.Marker(m.entry.PrimaryVisible)
	s.Marker(m.entry.SecondaryVisible)
	s.Point(m.entry.PrimaryTracked)
	return s
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		return StatusAlert.Render("ERROR")
	case m.entry.Complete:
		return StatusRunning.Render("COMPLETE")
	case m.exp.Done():
		return StatusPaused.Render("SCRIPT DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m *Model) View() string {
	if m.err != nil {
		return StatusAlert.Render(m.err.Error()) + "\n" + KeyHint.Render("r:restart q:quit")
	}
	row := func(label, value string) string {
		return Label.Render(label) + Value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.exp.Layout().Name)) + "  " + m.status() + "\n\n")
	s.WriteString(row("Condition", fmt.Sprintf("%s (%s)", m.exp.Condition(), m.exp.Condition().Intensity())))
	s.WriteString(row("Time", fmt.Sprintf("%.2fs ×%g", m.t, m.speed)))
	s.WriteString(row("State", m.entry.State))
	s.WriteString(row("Action", m.exp.Participant().Current()))
	s.WriteString(row("Grabs", fmt.Sprintf("%d", m.entry.GrabCount)))
	if tr := m.exp.Tracker(); tr != nil {
		cleared := min(tr.Index()-1, tr.Len())
		frac := float64(cleared) / float64(max(tr.Len(), 1))
		s.WriteString(row("Targets", m.bar.ViewAs(frac)+fmt.Sprintf(" %d/%d", cleared, tr.Len())))
		s.WriteString(row("Collisions", fmt.Sprintf("%d", tr.Collisions())))
	}
	if lv := m.exp.Lever(); lv != nil {
		pile := lv.Loader().Pile()
		s.WriteString(row("Pile", m.bar.ViewAs(1-pile.Remaining()/pile.Initial())+fmt.Sprintf(" %.2f left", pile.Remaining())))
		s.WriteString(row("Blade", lv.Loader().State().String()))
		s.WriteString(row("Leverage", fmt.Sprintf("%.2f", lv.Leverage())))
	}
	s.WriteString(row("Lag", fmt.Sprintf("%.3fm", m.entry.Lag())))
	s.WriteString(Muted.Render(Sparkline(m.lag, 30)) + "\n\n")
	for _, mt := range m.metrics {
		s.WriteString(row(mt.Name(), fmt.Sprintf("%.3f", mt.Value())))
	}
	s.WriteString("\n" + KeyHint.Render("SP:pause R:restart C:condition\nV:view +/-:speed T:theme Q:quit"))

	scene := Panel.Render(Muted.Render(m.plane.String()+" view") + "\n" + m.draw().String())
	return lipgloss.JoinHorizontal(lipgloss.Top, scene, Panel.Render(s.String()))
}
