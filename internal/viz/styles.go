package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel         lipgloss.Style
	Title         lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Muted         lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusAlert   lipgloss.Style
	KeyHint       lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	Title = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	Label = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	Value = lipgloss.NewStyle().Foreground(t.Text)
	Muted = lipgloss.NewStyle().Foreground(t.Muted)
	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	StatusPaused = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	StatusAlert = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
