package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/ams/internal/pages"
)

// renderHeader renders the title bar: page, live state and freshness.
func (m Model) renderHeader(v pages.View) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("AMS", styles.WarningText.Bold(true)),
		bg.Render(v.Title, styles.Text.Bold(true)),
	}

	live := m.flag == nil || m.flag.Enabled()
	if live {
		parts = append(parts, bg.Render("● live", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("○ paused", styles.MutedText))
	}

	switch {
	case v.Loading:
		parts = append(parts, bg.Render("loading...", styles.InfoText))
	case v.Err != nil:
		parts = append(parts, bg.Render("error: "+truncate(v.Err.Error(), 60), styles.DangerText))
	case !v.UpdatedAt.IsZero():
		parts = append(parts, bg.Render("updated "+v.UpdatedAt.Local().Format(time.TimeOnly), styles.MutedText))
	}
	if len(m.marked) > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d marked", len(m.marked)), styles.AccentText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

// renderPageBar lists the pages with their shortcut numbers.
func (m Model) renderPageBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	segments := make([]string, 0, len(m.pages))
	for i, p := range m.pages {
		label := p.Title()
		if i < 10 {
			label = fmt.Sprintf("%d %s", (i+1)%10, label)
		}
		if i == m.current {
			segments = append(segments, bg.Render(label, styles.AccentText.Bold(true)))
		} else {
			segments = append(segments, bg.Render(label, styles.MutedText))
		}
	}
	return bg.FillLine(strings.Join(segments, bg.Spaces(2)), m.width)
}

// renderCommandBar renders the key hints for the current page, or the
// search input while filtering.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return styles.Footer.Width(m.width).Render(m.search.View())
	}

	type cmd struct{ key, desc string }
	commands := []cmd{{"1-0/Tab", "Pages"}, {"j/k", "Navigate"}, {"/", "Filter"}, {"r", "Refresh"}}
	if p := m.page(); p != nil && p.Editable() {
		commands = append(commands, cmd{"n", "New"}, cmd{"e", "Edit"}, cmd{"d", "Delete"}, cmd{"Space", "Mark"}, cmd{"D", "Delete marked"})
	}
	liveLabel := "Pause"
	if m.flag != nil && !m.flag.Enabled() {
		liveLabel = "Go live"
	}
	commands = append(commands, cmd{"L", liveLabel}, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if m.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.query, 18), styles.AccentText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
