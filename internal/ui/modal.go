package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is a dialog drawn over the whole window: the record form and the
// delete confirmation. At most one is open at a time.
//
// While a modal is open the Model routes every key to it (ctrl+c excepted)
// and renders only the modal, and the current page's subscriptions are
// paused so a poll cannot replace the row being edited or confirmed. Async
// completions the modal started (submitDoneMsg, confirmDoneMsg) are routed
// to it as well, even though they arrive as ordinary messages.
//
// Update returns the modal to keep, a command to run, and closed. A modal
// that returns closed=true is dropped; the page resumes polling and the
// returned command still runs, so a dialog can close and refresh in one
// step. A modal must not close while work it started is in flight; it waits
// for the completion message instead.
//
// View receives the full window size and is responsible for centering.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (next Modal, cmd tea.Cmd, closed bool)
	View(theme Theme, width, height int) string
}

// openModal shows d and pauses the current page until d closes.
func (m Model) openModal(d Modal) Model {
	m.modal = d
	if p := m.page(); p != nil {
		p.SetPaused(true)
	}
	return m
}

// updateModal forwards msg to the open modal and unpauses the page when it
// closes. Rows may have changed while paused, so the selection is clamped.
func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal == nil {
		return m, nil
	}
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if !closed {
		m.modal = next
		return m, cmd
	}
	m.modal = nil
	if p := m.page(); p != nil {
		p.SetPaused(false)
	}
	m.clampSelection()
	return m, cmd
}
