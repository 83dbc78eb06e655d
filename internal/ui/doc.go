// Package ui provides the Bubble Tea console for the asset-management API.
//
// # Overview
//
// The Model owns no data of its own. Each screen is a pages.Page that polls
// its collections in the background; the Model re-renders when a page
// reports a change and routes keystrokes to page operations.
//
// # Key bindings
//
//	1-9, 0, tab   switch page (shift+tab goes back)
//	j/k, g/G      move the selection
//	/             filter the table, esc clears
//	n, e          add or edit a record
//	d, D          delete the selected record or every marked record
//	space         mark a record for bulk delete
//	r             refresh now
//	L             toggle live updates (persisted)
//	T             cycle theme (persisted)
//	o             recent log records and activity counters
//	h/?           help
//	q, ctrl+c     quit
//
// # Components
//
//   - app.go: Model, Update and key dispatch
//   - router.go: mounts exactly one page at a time across rapid switches
//   - modal.go, form.go, confirm.go: dialogs drawn over the whole window
//   - table.go, header.go, layout.go: the main screen
//   - toast.go: the notification stack fed by mutations
//   - logview.go: the recent log overlay
//   - theme.go, style_helpers.go: colour themes and lipgloss styles
//
// # Layering
//
// At most one layer is drawn, checked in this order: help, log overlay,
// modal, main screen. Keys go to the topmost layer; ctrl+c always quits.
//
// While a form or confirmation dialog is open the current page's polling is
// paused, so the rows under the dialog cannot change mid-edit. Rows that
// exist only in the local cache are drawn with a ◌ marker and cannot be
// edited, deleted or marked.
//
// # Redraws
//
// Pages signal changes through a channel of capacity one. The Model waits
// on it with a command, re-renders, and waits again, so any number of
// changes between frames costs one redraw.
package ui
