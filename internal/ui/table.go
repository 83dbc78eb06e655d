package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/pages"
)

// renderMain renders the full screen: header, page bar, statistics, table,
// breakdowns, toasts and the command bar.
func (m Model) renderMain() string {
	v := m.view()

	top := []string{m.renderHeader(v), m.renderPageBar()}
	if stats := m.renderStats(v.Stats); stats != "" {
		top = append(top, stats)
	}
	bottom := []string{}
	if toasts := m.renderToasts(); toasts != "" {
		bottom = append(bottom, toasts)
	}
	bottom = append(bottom, m.renderCommandBar())

	used := lipgloss.Height(strings.Join(top, "\n")) + lipgloss.Height(strings.Join(bottom, "\n"))
	bodyHeight := max(m.height-used, 3)

	body := m.renderBody(v, bodyHeight)
	return strings.Join(append(append(top, body), bottom...), "\n")
}

func (m Model) renderStats(stats []entity.Stat) string {
	if len(stats) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	perRow := max(m.width/(StatCardWidth+2), 1)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(StatCardWidth)

	var rows []string
	var cards []string
	for i, s := range stats {
		content := styles.MutedText.Render(truncate(s.Title, StatCardWidth-2)) + "\n" +
			styles.Text.Bold(true).Render(truncate(s.Value, StatCardWidth-2))
		if m.width >= LayoutCompactWidth && s.Subtitle != "" {
			content += "\n" + styles.FaintText.Render(truncate(s.Subtitle, StatCardWidth-2))
		}
		cards = append(cards, card.Render(content))
		if len(cards) == perRow || i == len(stats)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
			cards = nil
		}
	}
	return strings.Join(rows, "\n")
}

// renderBody renders the table (scrolled to keep the selection visible) and
// any breakdown sections, within height lines.
func (m Model) renderBody(v pages.View, height int) string {
	styles := m.theme.Styles()
	var lines []string

	if len(v.Columns) > 0 {
		lines = append(lines, m.renderTable(v, height-m.sectionsHeight(v))...)
	}
	for _, s := range v.Sections {
		lines = append(lines, "", styles.AccentText.Bold(true).Render(s.Title))
		if s.Note != "" {
			lines = append(lines, styles.FaintText.Render(s.Note))
		}
		lines = append(lines, m.renderBuckets(s.Buckets)...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) sectionsHeight(v pages.View) int {
	n := 0
	for _, s := range v.Sections {
		n += 2 + len(s.Buckets)
		if s.Note != "" {
			n++
		}
	}
	return n
}

func (m Model) renderTable(v pages.View, height int) []string {
	styles := m.theme.Styles()
	height = max(height, 2)

	header := "   "
	for _, c := range v.Columns {
		header += fit(c.Title, c.Width) + " "
	}
	lines := []string{styles.MutedText.Bold(true).Render(truncate(header, m.width))}

	if len(v.Rows) == 0 {
		empty := "No records"
		switch {
		case v.Loading:
			empty = "Loading..."
		case m.query != "":
			empty = fmt.Sprintf("No records match %q", m.query)
		}
		return append(lines, styles.MutedText.Render("   "+empty))
	}

	visible := height - 1
	start := 0
	if m.selectedRow >= visible {
		start = m.selectedRow - visible + 1
	}
	end := min(start+visible, len(v.Rows))

	for i := start; i < end; i++ {
		row := v.Rows[i]
		mark := "  "
		switch {
		case m.marked[row.ID]:
			mark = "● "
		case row.ReadOnly:
			mark = "◌ "
		}
		var b strings.Builder
		for j, c := range v.Columns {
			cell := ""
			if j < len(row.Cells) {
				cell = row.Cells[j]
			}
			b.WriteString(fit(cell, c.Width))
			b.WriteString(" ")
		}
		text := truncate(mark+" "+b.String(), m.width)
		if i == m.selectedRow {
			lines = append(lines, styles.Selected.Width(m.width).Render(text))
			continue
		}
		lines = append(lines, m.colorStatus(text, v.Columns, row))
	}
	return lines
}

// colorStatus renders a row in the text color, or the status color when
// the row has a Status column.
func (m Model) colorStatus(text string, cols []pages.Column, row pages.Row) string {
	for j, c := range cols {
		if c.Title == "Status" && j < len(row.Cells) {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(row.Cells[j]))).Render(text)
		}
	}
	return m.theme.Styles().Text.Render(text)
}

func (m Model) renderBuckets(buckets []entity.Bucket) []string {
	styles := m.theme.Styles()
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	barWidth := max(m.width-36, 10)
	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		value := b.Display
		if value == "" {
			value = fmt.Sprint(b.Count)
		}
		lines = append(lines, styles.Text.Render(fit(b.Label, 22))+" "+
			styles.AccentText.Render(strings.Repeat("█", n))+" "+
			styles.MutedText.Render(value))
	}
	return lines
}
