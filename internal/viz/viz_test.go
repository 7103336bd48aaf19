package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/experiment"
	"github.com/san-kum/heft/internal/host"
	"github.com/san-kum/heft/internal/sim"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	c.Set(100, 100)
	c.Set(-1, 0)

	c.Clear()
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("expected diagonal dot at %d", i)
		}
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("expected 2 rows, got %d", lines)
	}
}

func TestSceneProject(t *testing.T) {
	s := NewScene(10, 5, Side, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 1, 0})

	x0, y0 := s.Project(mgl64.Vec3{0, 1, 0})
	x1, y1 := s.Project(mgl64.Vec3{2, 0, 0})
	if x0 >= x1 {
		t.Errorf("x should grow to the right: %d, %d", x0, x1)
	}
	if y0 >= y1 {
		t.Errorf("y should grow up the screen: %d, %d", y0, y1)
	}

	top := NewScene(10, 5, Top, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 1})
	_, near := top.Project(mgl64.Vec3{1, 5, 0.1})
	_, far := top.Project(mgl64.Vec3{1, -5, 0.9})
	if far >= near {
		t.Errorf("top view should put far z higher: near %d far %d", near, far)
	}
}

func TestSceneBox(t *testing.T) {
	s := NewScene(20, 10, Side, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	s.Box(host.Box(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0.5, 0.5, 0.5}))
	x, y := s.Project(mgl64.Vec3{0.25, 0.75, 0})
	if !s.Canvas.IsSet(x, y) {
		t.Error("expected box corner to be drawn")
	}
	cx, cy := s.Project(mgl64.Vec3{0.5, 0.5, 0})
	if s.Canvas.IsSet(cx, cy) {
		t.Error("box should be an outline")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("expected ▁█, got %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4}, 2); len([]rune(got)) != 2 {
		t.Errorf("expected 2 runes, got %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("expected flat line, got %q", got)
	}
}

func TestThemeCycle(t *testing.T) {
	start := CurrentTheme.Name
	for range ThemeNames() {
		NextTheme()
	}
	if CurrentTheme.Name != start {
		t.Errorf("expected to cycle back to %s, got %s", start, CurrentTheme.Name)
	}
	SetTheme("nope")
	if CurrentTheme.Name != start {
		t.Error("unknown theme should be ignored")
	}
}

func TestPlotColumns(t *testing.T) {
	rows := []sim.LogEntry{
		{Time: 0, PrimaryTracked: mgl64.Vec3{0, 1, 0}},
		{Time: 0.1, PrimaryTracked: mgl64.Vec3{0, 1.1, 0}, PrimaryVisible: mgl64.Vec3{0, 1, 0}},
		{Time: 0.2, PrimaryTracked: mgl64.Vec3{0, 1.2, 0}, PrimaryVisible: mgl64.Vec3{0, 1.1, 0}},
	}
	out, err := PlotTrackedVsVisible(rows, "y", 30, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pt.y") {
		t.Errorf("expected legend in plot:\n%s", out)
	}

	if _, err := PlotColumns(rows, []string{"bogus"}, 30, 5); err == nil {
		t.Error("expected error for unknown column")
	}
	if _, err := PlotLag(rows[:1], 30, 5); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestModelRunsAndCyclesCondition(t *testing.T) {
	cfg := config.GetPreset("cube", "baseline")
	m, err := NewModel(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 30; i++ {
		m.Update(TickMsg{})
	}
	if m.t <= 0 {
		t.Error("expected time to advance")
	}
	if len(m.tracked) == 0 {
		t.Error("expected a trail")
	}
	if !strings.Contains(m.View(), "CUBE") {
		t.Error("expected the experiment name in the view")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if m.exp.Condition() != "C1" {
		t.Errorf("expected C1 after cycling, got %s", m.exp.Condition())
	}
	if m.t != 0 {
		t.Error("cycling should restart the run")
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m.Update(TickMsg{})
	if m.t != 0 {
		t.Error("paused model should not advance")
	}
}

func TestModelConfigReload(t *testing.T) {
	m, err := NewModel(experiment.NewRegistry(), config.GetPreset("cube", "baseline"), nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Update(ConfigMsg{Config: config.GetPreset("shovel", "baseline")})
	if m.err != nil {
		t.Fatal(m.err)
	}
	if m.exp.Layout().Name != "shovel" {
		t.Errorf("expected shovel after reload, got %s", m.exp.Layout().Name)
	}
	if !strings.Contains(m.View(), "Pile") {
		t.Error("expected pile progress in the view")
	}
}
