package pages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/poll"
	"github.com/five82/ams/internal/reconcile"
)

type snapshot = poll.State[[]api.Record]

// feed is one subscription owned by a page. It outlives the poller behind
// it: a remounted page shows the last snapshot until the new poller reports.
type feed struct {
	name     string
	url      string
	interval time.Duration
	onData   func(snapshot)
	// fetch overrides the list fetcher for endpoints that answer with an
	// object rather than a list.
	fetch    poll.Fetch[[]api.Record]

	mu     sync.Mutex
	state  snapshot
	seen   uint64
	poller *poll.Poller[[]api.Record]
}

func (f *feed) snapshot() snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// feeds manages a page's subscriptions as a unit.
type feeds struct {
	env *Env

	mu      sync.Mutex
	list    []*feed
	paused  bool
	mounted bool
}

func (fs *feeds) add(name, url string, interval time.Duration, onData func(snapshot)) *feed {
	f := &feed{name: name, url: url, interval: interval, onData: onData, state: snapshot{Loading: true}}
	fs.list = append(fs.list, f)
	return f
}

// fetchRecords GETs url and flattens whatever list shape the server returns.
func fetchRecords(c api.Fetcher) poll.Fetch[[]api.Record] {
	return func(ctx context.Context, url string) ([]api.Record, error) {
		var raw any
		if err := c.Get(ctx, url, &raw); err != nil {
			return nil, err
		}
		return reconcile.NormalizeList(raw), nil
	}
}

// fetchObject GETs url and wraps an object response as a single record. Any
// other shape reads as an empty report.
func fetchObject(c api.Fetcher) poll.Fetch[[]api.Record] {
	return func(ctx context.Context, url string) ([]api.Record, error) {
		var raw any
		if err := c.Get(ctx, url, &raw); err != nil {
			return nil, err
		}
		if obj, ok := raw.(map[string]any); ok {
			return []api.Record{obj}, nil
		}
		return []api.Record{}, nil
	}
}

func (fs *feeds) start(ctx context.Context) error {
	fs.mu.Lock()
	if fs.mounted {
		fs.mu.Unlock()
		return nil
	}
	fs.mounted = true
	paused := fs.paused
	fs.mu.Unlock()

	for _, f := range fs.list {
		fetch := f.fetch
		if fetch == nil {
			fetch = fetchRecords(fs.env.Client)
		}
		p, err := poll.New(poll.Config[[]api.Record]{
			Name:         f.name,
			URL:          f.url,
			Interval:     f.interval,
			InitialDelay: fs.env.Intervals.Initial,
			Fetch:        fetch,
			Gate:         fs.env.Gate,
			Clock:        fs.env.Clock,
			Disabled:     paused,
			Metrics:      fs.env.Metrics,
			Logger:       fs.env.Logger,
			OnChange:     func(s snapshot) { fs.deliver(f, s) },
		})
		if err != nil {
			fs.stop()
			return fmt.Errorf("subscribe %s: %w", f.name, err)
		}
		f.mu.Lock()
		f.poller = p
		f.seen = 0
		f.mu.Unlock()
		if err := p.Start(ctx); err != nil {
			fs.stop()
			return fmt.Errorf("start %s: %w", f.name, err)
		}
	}
	return nil
}

// deliver records s and hands fresh data to the page. Failed polls keep the
// previous snapshot and only update the error.
func (fs *feeds) deliver(f *feed, s snapshot) {
	f.mu.Lock()
	fresh := s.HasData && s.Err == nil && s.Seq != f.seen
	if fresh {
		f.seen = s.Seq
		f.state = s
	} else {
		f.state.Err = s.Err
		f.state.Loading = f.state.Loading && s.Loading
	}
	f.mu.Unlock()

	if fresh && f.onData != nil {
		f.onData(s)
	}
	fs.env.changed()
}

func (fs *feeds) stop() {
	fs.mu.Lock()
	fs.mounted = false
	fs.mu.Unlock()

	for _, f := range fs.list {
		f.mu.Lock()
		p := f.poller
		f.poller = nil
		f.mu.Unlock()
		if p != nil {
			p.Stop()
		}
	}
}

func (fs *feeds) setPaused(paused bool) {
	fs.mu.Lock()
	fs.paused = paused
	fs.mu.Unlock()
	fs.each(func(p *poll.Poller[[]api.Record]) { p.SetEnabled(!paused) })
}

func (fs *feeds) refresh() {
	fs.each(func(p *poll.Poller[[]api.Record]) { p.Refresh() })
}

func (fs *feeds) each(fn func(*poll.Poller[[]api.Record])) {
	for _, f := range fs.list {
		f.mu.Lock()
		p := f.poller
		f.mu.Unlock()
		if p != nil {
			fn(p)
		}
	}
}
