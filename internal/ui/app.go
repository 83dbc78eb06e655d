package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ams/internal/confirm"
	"github.com/five82/ams/internal/live"
	"github.com/five82/ams/internal/pages"
	"github.com/five82/ams/internal/prefs"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Pages   []pages.Page
	// Updates receives a value whenever a page's view may have changed.
	Updates    <-chan struct{}
	Toasts     *Toasts
	Flag       *live.Flag
	Navigation *live.Navigation
	Visibility *live.Visibility
	Prefs      *prefs.File
	ThemeName  string
	Logger     *slog.Logger
	// LogFile is shown by the log overlay. Empty disables it.
	LogFile string
	// Activity summarizes poll and mutation counters for the log overlay.
	Activity func() string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	pages   []pages.Page
	router  *router
	updates <-chan struct{}
	toasts  *Toasts
	flag    *live.Flag
	nav     *live.Navigation
	vis     *live.Visibility
	prefs   *prefs.File
	gate    *confirm.Gate
	logger  *slog.Logger
	keys    keyMap

	// UI state
	theme   Theme
	width   int
	height  int
	ready   bool
	current int

	// Table state
	selectedRow int
	marked      map[string]bool
	search      textinput.Model
	searching   bool
	query       string

	modal      Modal
	showHelp   bool
	logFile    string
	logView    *logView
	activity   func() string
	toastStack []Toast
	toastSeq   int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	toasts := opts.Toasts
	if toasts == nil {
		toasts = NewToasts()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "filter rows"
	search.CharLimit = 80

	return Model{
		ctx:      ctx,
		pages:    opts.Pages,
		router:   newRouter(opts.Pages),
		updates:  opts.Updates,
		toasts:   toasts,
		flag:     opts.Flag,
		nav:      opts.Navigation,
		vis:      opts.Visibility,
		prefs:    opts.Prefs,
		gate:     confirm.New(),
		logger:   logger.With("component", "ui"),
		keys:     DefaultKeyMap(),
		theme:    GetTheme(opts.ThemeName),
		marked:   make(map[string]bool),
		search:   search,
		logFile:  opts.LogFile,
		activity: opts.Activity,
	}
}

type pageChangedMsg struct{}

func waitForUpdate(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ch:
			return pageChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForUpdate(m.ctx, m.updates),
		m.toasts.wait(m.ctx),
	}
	if len(m.pages) > 0 {
		if m.nav != nil {
			m.nav.Navigate(m.pages[0].Name())
		}
		m.router.show(0)
		cmds = append(cmds, m.router.sync(m.ctx))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.FocusMsg:
		if m.vis != nil {
			m.vis.Set(true)
		}
		return m, nil

	case tea.BlurMsg:
		if m.vis != nil {
			m.vis.Set(false)
		}
		return m, nil

	case pageChangedMsg:
		m.clampSelection()
		return m, waitForUpdate(m.ctx, m.updates)

	case mountedMsg:
		if msg.err != nil {
			m.logger.Warn("page mount failed", "page", m.pages[msg.page].Name(), "error", msg.err)
			cmd := m.addToast(Toast{Title: "Page Unavailable", Message: msg.err.Error(), Err: true})
			return m, cmd
		}
		return m, nil

	case toastMsg:
		cmd := m.addToast(Toast(msg))
		return m, tea.Batch(cmd, m.toasts.wait(m.ctx))

	case logLoadedMsg:
		if m.logView != nil {
			m.logView = &logView{entries: msg.entries, err: msg.err, loaded: true, activity: m.logView.activity}
		}
		return m, nil

	case toastExpiredMsg:
		m.expireToast(int(msg))
		return m, nil

	case submitDoneMsg, confirmDoneMsg:
		if _, ok := msg.(confirmDoneMsg); ok {
			m.marked = make(map[string]bool)
		}
		return m.updateModal(msg)
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.logView != nil {
		return m.renderLog()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) page() pages.Page {
	if len(m.pages) == 0 {
		return nil
	}
	return m.pages[m.current]
}

// view returns the current page's view with the search filter applied.
func (m Model) view() pages.View {
	p := m.page()
	if p == nil {
		return pages.View{}
	}
	return p.View().Filter(m.query)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.router.close()
		return m, tea.Quit
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.logView != nil {
		m.logView = nil
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.router.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()
	case key.Matches(msg, m.keys.ToggleLive):
		return m.toggleLive()
	case key.Matches(msg, m.keys.ShowLog):
		return m.openLog()
	case key.Matches(msg, m.keys.NextPage):
		return m.switchTo(wrap(m.current+1, len(m.pages)))
	case key.Matches(msg, m.keys.PrevPage):
		return m.switchTo(wrap(m.current-1, len(m.pages)))
	case key.Matches(msg, m.keys.Refresh):
		if p := m.page(); p != nil {
			p.Refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.query)
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		m.query = ""
		m.marked = make(map[string]bool)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = len(m.view().Rows) - 1
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		m.toggleMark()
		return m, nil
	case key.Matches(msg, m.keys.New):
		return m.openForm("")
	case key.Matches(msg, m.keys.Edit):
		if id := m.selectedID(); id != "" {
			return m.openForm(id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		return m.openDelete()
	case key.Matches(msg, m.keys.BulkDelete):
		return m.openBulkDelete()
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		i := int(s[0] - '1')
		if s == "0" {
			i = 9
		}
		return m.switchTo(i)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.query = m.search.Value()
		m.searching = false
		m.search.Blur()
		m.selectedRow = 0
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.selectedRow = 0
	return m, cmd
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i + n) % n
}

// switchTo shows page i. The previous page's subscriptions stop when the
// router syncs.
func (m Model) switchTo(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.pages) || i == m.current {
		return m, nil
	}
	m.current = i
	m.selectedRow = 0
	m.marked = make(map[string]bool)
	m.query = ""
	m.search.SetValue("")
	if m.nav != nil {
		m.nav.Navigate(m.pages[i].Name())
	}
	m.router.show(i)
	return m, m.router.sync(m.ctx)
}

func (m *Model) moveSelection(delta int) {
	m.selectedRow += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.view().Rows)
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) selectedID() string {
	row, _ := m.selected()
	return row.ID
}

func (m Model) selected() (pages.Row, bool) {
	rows := m.view().Rows
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return pages.Row{}, false
	}
	return rows[m.selectedRow], true
}

func (m *Model) toggleMark() {
	p := m.page()
	row, ok := m.selected()
	if p == nil || !p.Editable() || !ok || row.ReadOnly {
		return
	}
	id := row.ID
	if m.marked[id] {
		delete(m.marked, id)
	} else {
		m.marked[id] = true
	}
	m.moveSelection(1)
}

func (m Model) markedIDs() []string {
	ids := make([]string, 0, len(m.marked))
	for id := range m.marked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m Model) openForm(id string) (tea.Model, tea.Cmd) {
	p := m.page()
	if p == nil || !p.Editable() {
		return m, nil
	}
	form, err := p.Form(id)
	if err != nil {
		cmd := m.addToast(Toast{Title: "Cannot Edit", Message: err.Error(), Err: true})
		return m, cmd
	}
	return m.openModal(newFormDialog(m.ctx, p, id, form)), textinput.Blink
}

func (m Model) openDelete() (tea.Model, tea.Cmd) {
	p := m.page()
	row, ok := m.selected()
	if p == nil || !p.Editable() || !ok || row.ID == "" {
		return m, nil
	}
	if row.ReadOnly {
		cmd := m.addToast(Toast{Title: "Cannot Delete", Message: pages.ErrLocalOnly.Error(), Err: true})
		return m, cmd
	}
	id := row.ID
	prompt := confirm.Prompt{
		Title:       "Delete " + titleCase(p.Singular()) + "?",
		Description: fmt.Sprintf("%s will be permanently removed. This cannot be undone.", p.Describe(id)),
	}
	err := m.gate.Prompt(prompt, func(ctx context.Context, t confirm.Ticket) error {
		return p.Delete(ctx, t, id)
	})
	if err != nil {
		return m, nil
	}
	return m.openModal(&confirmDialog{ctx: m.ctx, gate: m.gate}), nil
}

func (m Model) openBulkDelete() (tea.Model, tea.Cmd) {
	p := m.page()
	ids := m.markedIDs()
	if p == nil || !p.Editable() {
		return m, nil
	}
	if len(ids) == 0 {
		cmd := m.addToast(Toast{Title: "Nothing Selected", Message: "Mark " + p.Plural() + " with space first", Err: true})
		return m, cmd
	}
	prompt := confirm.Prompt{
		Title:       fmt.Sprintf("Delete %d %s?", len(ids), p.Plural()),
		Description: fmt.Sprintf("The %d selected %s will be permanently removed.", len(ids), p.Plural()),
	}
	err := m.gate.Prompt(prompt, func(ctx context.Context, t confirm.Ticket) error {
		_, err := p.BulkDelete(ctx, t, ids)
		return err
	})
	if err != nil {
		return m, nil
	}
	return m.openModal(&confirmDialog{ctx: m.ctx, gate: m.gate}), nil
}

func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefs == nil {
		return m, nil
	}
	if err := m.prefs.SaveTheme(m.theme.Name); err != nil {
		m.logger.Warn("theme not saved", "error", err)
		cmd := m.addToast(Toast{Title: "Preference Not Saved", Message: err.Error(), Err: true})
		return m, cmd
	}
	return m, nil
}

func (m Model) toggleLive() (tea.Model, tea.Cmd) {
	if m.flag == nil {
		return m, nil
	}
	on, err := m.flag.Toggle()
	if err != nil {
		m.logger.Warn("live flag not saved", "live", on, "error", err)
		cmd := m.addToast(Toast{Title: "Preference Not Saved", Message: err.Error(), Err: true})
		return m, cmd
	}
	if on {
		cmd := m.addToast(Toast{Title: "Live Updates On", Message: "Pages refresh automatically"})
		return m, cmd
	}
	cmd := m.addToast(Toast{Title: "Live Updates Off", Message: "Press r to refresh manually"})
	return m, cmd
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(m.ctx))
	_, err := p.Run()
	m.router.close()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
