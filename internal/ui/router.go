package ui

import (
	"context"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ams/internal/pages"
)

// router keeps at most one page mounted: the one most recently shown. Page
// switches may overlap; whichever sync runs last mounts the latest target.
type router struct {
	pages  []pages.Page
	target atomic.Int64

	mu      sync.Mutex
	mounted int
}

func newRouter(list []pages.Page) *router {
	return &router{pages: list, mounted: -1}
}

type mountedMsg struct {
	page int
	err  error
}

func (r *router) show(i int) { r.target.Store(int64(i)) }

func (r *router) sync(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		r.mu.Lock()
		defer r.mu.Unlock()
		want := int(r.target.Load())
		if want == r.mounted {
			return nil
		}
		if r.mounted >= 0 {
			r.pages[r.mounted].Unmount()
			r.mounted = -1
		}
		if err := r.pages[want].Mount(ctx); err != nil {
			return mountedMsg{page: want, err: err}
		}
		r.mounted = want
		return mountedMsg{page: want}
	}
}

// close unmounts whatever is mounted.
func (r *router) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted >= 0 {
		r.pages[r.mounted].Unmount()
		r.mounted = -1
	}
}
