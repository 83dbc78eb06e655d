package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ams/internal/logtail"
)

const logOverlayLines = 200

type logView struct {
	entries  []logtail.Entry
	err      error
	loaded   bool
	// activity is the counter summary taken when the overlay opened.
	activity string
}

type logLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

func loadLog(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Read(path, logOverlayLines)
		return logLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) openLog() (tea.Model, tea.Cmd) {
	if m.logFile == "" {
		cmd := m.addToast(Toast{Title: "No Log File", Message: "Logging is not configured.", Err: true})
		return m, cmd
	}
	lv := &logView{}
	if m.activity != nil {
		lv.activity = m.activity()
	}
	m.logView = lv
	return m, loadLog(m.logFile)
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.SuccessText
	}
}

// renderLog shows the newest records that fit the window, oldest first.
func (m Model) renderLog() string {
	styles := m.theme.Styles()
	width := m.width - 6
	if width < 20 {
		width = 20
	}
	height := m.height - 6
	if height < 3 {
		height = 3
	}

	var lines []string
	lines = append(lines, styles.Text.Bold(true).Render("Recent Log")+"  "+styles.FaintText.Render(truncate(m.logFile, width-14)))
	if m.logView.activity != "" {
		lines = append(lines, styles.MutedText.Render(truncate(m.logView.activity, width)))
		height--
	}
	switch lv := m.logView; {
	case !lv.loaded:
		lines = append(lines, styles.MutedText.Render("Reading..."))
	case lv.err != nil:
		lines = append(lines, styles.DangerText.Render(lv.err.Error()))
	case len(lv.entries) == 0:
		lines = append(lines, styles.MutedText.Render("No log records yet."))
	default:
		entries := lv.entries
		if room := height - 2; len(entries) > room {
			entries = entries[len(entries)-room:]
		}
		for _, e := range entries {
			level := e.Level
			e.Level = ""
			line := truncate(e.String(), width-7)
			lines = append(lines, m.levelStyle(level).Render(fit(level, 6))+" "+styles.Text.Render(line))
		}
	}
	lines = append(lines, styles.FaintText.Render("any key closes"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(0, 1).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
