package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"timesheet/internal/domain"
	"timesheet/internal/elapsed"
)

const visibleLogs = 12

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	timerIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	logSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func formatClock(d time.Duration) string {
	return elapsed.FromDuration(d).Clock()
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Timesheet"))
	sb.WriteString("\n\n")
	sb.WriteString(m.timerView())
	sb.WriteString("\n")
	sb.WriteString(m.logsView())
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(errorStyle.Render(m.status))
		sb.WriteString("\n")
	}
	if m.stale.ActiveTimer || m.stale.Logs {
		sb.WriteString(helpStyle.Render("Some data may be out of date. Press Ctrl+R to reload."))
		sb.WriteString("\n")
	}
	sb.WriteString(m.helpView())
	return sb.String()
}

func (m *Model) timerView() string {
	width := min(max(m.width-4, 40), 76)
	r, ok := m.running()
	if !ok {
		body := fmt.Sprintf("%s\n\nidle", timerIdleStyle.Render(formatClock(0)))
		return boxStyle.Width(width).Render(body)
	}

	earned := m.elapsed.Hours() * m.tracker.DefaultRate()
	body := fmt.Sprintf("%s  %s\n\nLabel: %s\nStarted %s",
		timerRunningStyle.Render(formatClock(m.elapsed)),
		m.money(earned),
		inputStyle.Render(r.Label+"█"),
		r.StartedAt.Local().Format(m.config.Display.TimeFormat))
	return boxStyle.Width(width).Render(body)
}

func (m *Model) logsView() string {
	if len(m.logs) == 0 {
		return helpStyle.Render("No log entries yet.") + "\n"
	}

	var sb strings.Builder
	first := max(m.selected-visibleLogs+1, 0)
	last := min(first+visibleLogs, len(m.logs))
	rate := m.tracker.DefaultRate()
	for i := first; i < last; i++ {
		e := m.logs[i]
		line := fmt.Sprintf("%s  %s  %-28s %9s/h %11s",
			e.StartedAt.Local().Format(m.config.Display.DateFormat),
			formatClock(e.Duration()),
			truncate(labelOrDash(e.Label), 28),
			m.money(e.EffectiveRate(rate)),
			m.money(e.Earnings(rate)))
		switch {
		case i == m.selected:
			line = logSelectedStyle.Render("> " + line)
		case e.Pending:
			line = pendingStyle.Render("  " + line + "  saving")
		default:
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(totalStyle.Render(m.totalLine()))
	sb.WriteString("\n")
	return sb.String()
}

func (m *Model) totalLine() string {
	s := m.summary
	line := fmt.Sprintf("  Total %s  %s", formatClock(s.Duration), m.money(s.Earnings))
	if s.Goal > 0 {
		line += fmt.Sprintf("  %.1f%% of %s", s.Progress(), m.money(s.Goal))
	}
	return line
}

func (m *Model) helpView() string {
	if domain.IsRunning(m.state) {
		return helpStyle.Render("Type: label | Enter/Ctrl+E: stop | Up/Down: select | Ctrl+D: delete | Ctrl+R: reload | Ctrl+C: quit")
	}
	return helpStyle.Render("Enter/s: start | Up/Down: select | d: delete | r: reload | q: quit")
}

func (m *Model) money(amount float64) string {
	return fmt.Sprintf("%s%.2f", m.config.Billing.Currency, amount)
}

func labelOrDash(label string) string {
	if label == "" {
		return "-"
	}
	return label
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
