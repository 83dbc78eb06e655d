package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ams/internal/confirm"
)

type confirmDoneMsg struct {
	err error
}

// confirmDialog renders a confirm.Gate. The gate owns the state; the dialog
// only translates keys into Start and Cancel.
type confirmDialog struct {
	ctx  context.Context
	gate *confirm.Gate
}

func (d *confirmDialog) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case confirmDoneMsg:
		// The dialog closes whatever the outcome; failures surface as toasts.
		return d, nil, true
	case tea.KeyMsg:
		if d.gate.Busy() {
			return d, nil, false
		}
		switch {
		case key.Matches(msg, keys.Escape), msg.String() == "n":
			d.gate.Cancel()
			return d, nil, true
		case key.Matches(msg, keys.Confirm), msg.String() == "y":
			run, err := d.gate.Start()
			if err != nil {
				return d, nil, true
			}
			ctx := d.ctx
			return d, func() tea.Msg { return confirmDoneMsg{err: run(ctx)} }, false
		}
	}
	return d, nil, false
}

func (d *confirmDialog) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	p := d.gate.Current()

	var b strings.Builder
	b.WriteString(styles.DangerText.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(44).Render(styles.Text.Render(p.Description)))
	b.WriteString("\n\n")
	if d.gate.Busy() {
		b.WriteString(styles.WarningText.Render(d.gate.ConfirmLabel()))
	} else {
		b.WriteString(styles.AccentText.Render("y/Enter"))
		b.WriteString(styles.MutedText.Render(": " + d.gate.ConfirmLabel() + "  •  "))
		b.WriteString(styles.AccentText.Render("n/Esc"))
		b.WriteString(styles.MutedText.Render(": " + p.CancelLabel))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
