package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Toast is one notification.
type Toast struct {
	ID      int
	Title   string
	Message string
	Err     bool
}

// Toasts collects notifications from background work. It implements
// mutate.Notifier; sends never block, and a full queue drops the toast.
type Toasts struct {
	ch chan Toast
}

// NewToasts returns an empty notification queue.
func NewToasts() *Toasts {
	return &Toasts{ch: make(chan Toast, 32)}
}

func (t *Toasts) Success(title, message string) {
	t.push(Toast{Title: title, Message: message})
}

func (t *Toasts) Error(title, message string) {
	t.push(Toast{Title: title, Message: message, Err: true})
}

func (t *Toasts) push(toast Toast) {
	select {
	case t.ch <- toast:
	default:
	}
}

type toastMsg Toast

type toastExpiredMsg int

// wait delivers the next queued toast to the program.
func (t *Toasts) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case toast := <-t.ch:
			return toastMsg(toast)
		case <-ctx.Done():
			return nil
		}
	}
}

// addToast stacks toast and schedules its removal.
func (m *Model) addToast(toast Toast) tea.Cmd {
	m.toastSeq++
	toast.ID = m.toastSeq
	m.toastStack = append(m.toastStack, toast)
	if over := len(m.toastStack) - MaxToasts; over > 0 {
		m.toastStack = append([]Toast(nil), m.toastStack[over:]...)
	}
	id := toast.ID
	return tea.Tick(ToastTTL, func(time.Time) tea.Msg { return toastExpiredMsg(id) })
}

func (m *Model) expireToast(id int) {
	kept := m.toastStack[:0]
	for _, t := range m.toastStack {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.toastStack = kept
}

func (m Model) renderToasts() string {
	if len(m.toastStack) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.toastStack))
	for _, t := range m.toastStack {
		head := styles.SuccessText.Render("✓ " + t.Title)
		border := m.theme.Success
		if t.Err {
			head = styles.DangerText.Render("✗ " + t.Title)
			border = m.theme.Danger
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Padding(0, 1).
			Width(40)
		lines = append(lines, box.Render(head+"\n"+styles.Text.Render(truncate(t.Message, 76))))
	}
	return strings.Join(lines, "\n")
}
