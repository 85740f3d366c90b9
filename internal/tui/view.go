package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/worktally/worktally/internal/progress"
	"github.com/worktally/worktally/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := m.operation
	if title == "" {
		title = "Progress"
	}
	b.WriteString(util.TruncateANSI(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	b.WriteString(m.bar.View())
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", clampFraction(m.rootFra)*100))

	for _, state := range m.tasks {
		b.WriteString(renderTaskLine(state.key, state.completed, state.total, state.fraction))
		b.WriteString("\n")
	}

	if eta := m.etaLine(); eta != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(eta))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(doneStyle.Render("Complete."))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// etaLine formats the estimated-time-remaining metadata, if set. Values are
// forwarded verbatim by the core, so the type assertion is the display
// layer's problem.
func (m Model) etaLine() string {
	v, ok := m.watcher.Tree().Metadata(progress.MetaEstimatedTimeRemaining)
	if !ok {
		return ""
	}
	d, isDuration := v.(time.Duration)
	if !isDuration {
		return ""
	}
	return fmt.Sprintf("ETA: ~%s remaining", d.Round(time.Second))
}

// renderTaskLine renders one child tracker line with a mini bar.
// Example: "███░░ copy 3/5"
func renderTaskLine(key string, completed, total int64, fraction float64) string {
	bar := renderMiniBar(fraction, 5)
	line := fmt.Sprintf("%s %s %d/%d", bar, util.TruncateString(key, 24), completed, total)
	if fraction >= 1.0 {
		return doneStyle.Render(line)
	}
	return line
}

// renderMiniBar renders a compact block bar for a clamped fraction.
func renderMiniBar(fraction float64, width int) string {
	if width <= 0 {
		width = 5
	}
	filled := int(clampFraction(fraction) * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// clampFraction bounds a raw fraction to [0, 1] for display. The core
// preserves overshoot and negative counts; only the view clamps.
func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
