package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/mutate"
	"github.com/five82/ams/internal/pages"
)

type submitDoneMsg struct {
	err error
}

// formDialog edits one record. It stays open until a submit succeeds or the
// user cancels; failed submits mark the offending fields and focus the first.
type formDialog struct {
	ctx    context.Context
	page   pages.Page
	id     string
	form   pages.Form
	inputs []textinput.Model
	focus  int
	errs   map[string][]string
	banner string
	busy   bool
}

func newFormDialog(ctx context.Context, page pages.Page, id string, form pages.Form) *formDialog {
	d := &formDialog{ctx: ctx, page: page, id: id, form: form}
	d.inputs = make([]textinput.Model, len(form.Fields))
	for i, field := range form.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		in.Width = 36
		in.Placeholder = placeholderFor(field)
		in.SetValue(form.Values[field.Key])
		d.inputs[i] = in
	}
	d.setFocus(0)
	return d
}

func placeholderFor(f entity.Field) string {
	switch f.Kind {
	case entity.Date:
		return "YYYY-MM-DD"
	case entity.Number, entity.Ref:
		return "id"
	case entity.Decimal:
		return "0.00"
	case entity.Choice:
		return strings.Join(f.Choices, " / ")
	}
	return ""
}

func (d *formDialog) setFocus(i int) {
	if len(d.inputs) == 0 {
		return
	}
	d.inputs[d.focus].Blur()
	d.focus = (i + len(d.inputs)) % len(d.inputs)
	d.inputs[d.focus].Focus()
}

func (d *formDialog) values() map[string]string {
	out := make(map[string]string, len(d.inputs))
	for i, field := range d.form.Fields {
		out[field.Key] = d.inputs[i].Value()
	}
	return out
}

func (d *formDialog) submit() tea.Cmd {
	d.busy = true
	ctx, page, id, values := d.ctx, d.page, d.id, d.values()
	return func() tea.Msg {
		return submitDoneMsg{err: page.Submit(ctx, id, values)}
	}
}

func (d *formDialog) settle(err error) bool {
	d.busy = false
	if err == nil {
		return true
	}
	d.errs = pages.FieldErrors(err)
	if len(d.errs) == 0 {
		d.banner = err.Error()
		return false
	}
	d.banner = mutate.Summary(d.errs, d.form.Labels)
	first := mutate.FirstInvalid(d.errs, d.form.Priority)
	for i, field := range d.form.Fields {
		if field.Key == first {
			d.setFocus(i)
			break
		}
	}
	return false
}

func (d *formDialog) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		return d, nil, d.settle(msg.err)
	case tea.KeyMsg:
		if d.busy {
			return d, nil, false
		}
		switch {
		case key.Matches(msg, keys.Escape):
			return d, nil, true
		case key.Matches(msg, keys.Confirm):
			return d, d.submit(), false
		case key.Matches(msg, keys.NextField):
			d.setFocus(d.focus + 1)
			return d, nil, false
		case key.Matches(msg, keys.PrevField):
			d.setFocus(d.focus - 1)
			return d, nil, false
		}
		if len(d.inputs) == 0 {
			return d, nil, false
		}
		var cmd tea.Cmd
		d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
		return d, cmd, false
	}
	return d, nil, false
}

func (d *formDialog) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render(d.form.Title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 46)))
	b.WriteString("\n")
	if d.banner != "" {
		b.WriteString(lipgloss.NewStyle().Width(50).Render(styles.DangerText.Render(d.banner)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, field := range d.form.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		label = fit(label, 18)
		if i == d.focus {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(d.inputs[i].View())
		b.WriteString("\n")
		if msgs := d.errs[field.Key]; len(msgs) > 0 {
			b.WriteString(fit("", 18))
			b.WriteString(styles.DangerText.Render(strings.Join(msgs, " ")))
			b.WriteString("\n")
		} else if i == d.focus && field.Kind == entity.Ref {
			if hint := d.optionHint(field); hint != "" {
				b.WriteString(fit("", 18))
				b.WriteString(styles.FaintText.Render(hint))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if d.busy {
		b.WriteString(styles.WarningText.Render("Saving..."))
	} else {
		b.WriteString(styles.FaintText.Render("Enter: Save  •  Tab: Next field  •  Esc: Cancel"))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(60)

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

// optionHint lists known records for a reference field as "id=name".
func (d *formDialog) optionHint(field entity.Field) string {
	opts := d.form.Options[field.Key]
	items := make([]string, 0, len(opts))
	for _, o := range opts {
		items = append(items, o.ID+"="+o.Name)
	}
	return truncate(joinLimited(items, 5, ", "), 40)
}
