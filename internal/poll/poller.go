package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/sourcegraph/conc"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/telemetry"
)

const (
	// DefaultInitialDelay spaces out the first fetch of subscriptions that
	// mount together.
	DefaultInitialDelay = 80 * time.Millisecond
	// DefaultInterval is the list refresh cadence used by most pages.
	DefaultInterval = 15 * time.Second
)

// ErrStopped is returned by Start once the poller has been stopped.
var ErrStopped = errors.New("poller stopped")

// Fetch retrieves one snapshot from url.
type Fetch[T any] func(ctx context.Context, url string) (T, error)

// JSON returns a Fetch that GETs url through f and decodes the body into T.
func JSON[T any](f api.Fetcher) Fetch[T] {
	return func(ctx context.Context, url string) (T, error) {
		var out T
		err := f.Get(ctx, url, &out)
		return out, err
	}
}

// Gate exposes the process-wide polling conditions. live.Signals implements
// it.
type Gate interface {
	Live() bool
	Navigating() bool
	Visible() bool
}

// resumer is implemented by gates that announce when polling may resume.
type resumer interface {
	OnResume(fn func()) func()
}

type openGate struct{}

func (openGate) Live() bool       { return true }
func (openGate) Navigating() bool { return false }
func (openGate) Visible() bool    { return true }

// State is what a subscription exposes to its page.
type State[T any] struct {
	Data    T
	HasData bool
	// Loading is true until the first response (success or failure) arrives.
	Loading bool
	Err     error
	// Seq is the sequence number of the request whose result is in Data.
	Seq         uint64
	RequestedAt time.Time
	UpdatedAt   time.Time
}

// Config configures a Poller.
type Config[T any] struct {
	// Name labels the subscription in logs and metrics.
	Name         string
	URL          string
	Interval     time.Duration
	InitialDelay time.Duration
	Fetch        Fetch[T]
	Gate         Gate
	Clock        clock.Clock
	// Disabled starts the poller with its enabled predicate false.
	Disabled bool
	// OnChange is called after every state change, outside the poller's lock.
	OnChange func(State[T])
	// OnSkip is called with the reason whenever a tick is suppressed.
	OnSkip  func(reason string)
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Poller keeps one endpoint's snapshot fresh. It performs a deferred first
// fetch and then ticks at a fixed interval, skipping ticks while any gate is
// closed or while the previous request is still unresolved.
type Poller[T any] struct {
	name         string
	interval     time.Duration
	initialDelay time.Duration
	fetch        Fetch[T]
	gate         Gate
	clock        clock.Clock
	onChange     func(State[T])
	onSkip       func(string)
	metrics      *telemetry.Metrics
	logger       *slog.Logger

	mu       sync.Mutex
	url      string
	gen      uint64
	enabled  bool
	started  bool
	stopped  bool
	state    State[T]
	seq      uint64
	applied  uint64
	inflight uint64
	cancel   context.CancelFunc

	rearm    chan struct{}
	refresh  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	unsub    func()
	loop     conc.WaitGroup
	requests conc.WaitGroup
}

// New builds a Poller from cfg. The poller does nothing until Start.
func New[T any](cfg Config[T]) (*Poller[T], error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("poller %q: fetch function required", cfg.Name)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}
	gate := cfg.Gate
	if gate == nil {
		gate = openGate{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = cfg.URL
	}
	return &Poller[T]{
		name:         name,
		interval:     interval,
		initialDelay: delay,
		fetch:        cfg.Fetch,
		gate:         gate,
		clock:        clk,
		onChange:     cfg.OnChange,
		onSkip:       cfg.OnSkip,
		metrics:      cfg.Metrics,
		logger:       logger.With("component", "poll", "subscription", name),
		url:          cfg.URL,
		enabled:      !cfg.Disabled,
		state:        State[T]{Loading: true},
		rearm:        make(chan struct{}, 1),
		refresh:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}, nil
}

// Start launches the polling loop. It returns immediately.
func (p *Poller[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrStopped
	}
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	if r, ok := p.gate.(resumer); ok {
		p.unsub = r.OnResume(p.Rearm)
	}
	p.loop.Go(func() { p.run(ctx) })
	p.mu.Unlock()
	return nil
}

// Stop cancels any in-flight request, stops the timer and waits for the
// poller's goroutines to exit. No state changes are published afterwards.
func (p *Poller[T]) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.abortLocked()
		unsub := p.unsub
		p.unsub = nil
		p.mu.Unlock()
		if unsub != nil {
			unsub()
		}
		close(p.done)
	})
	p.loop.Wait()
	p.requests.Wait()
}

// State returns a copy of the current state.
func (p *Poller[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// URL returns the current target.
func (p *Poller[T]) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// SetURL retargets the poller. A request still in flight for the previous URL
// is cancelled and its result discarded; the first fetch for the new URL
// happens after the initial delay.
func (p *Poller[T]) SetURL(url string) {
	p.mu.Lock()
	if url == p.url {
		p.mu.Unlock()
		return
	}
	p.url = url
	p.gen++
	p.abortLocked()
	p.mu.Unlock()
	p.Rearm()
}

// SetEnabled updates the page-level enabled predicate. Turning it back on
// re-arms the timer with the initial delay.
func (p *Poller[T]) SetEnabled(on bool) {
	p.mu.Lock()
	was := p.enabled
	p.enabled = on
	p.mu.Unlock()
	if on && !was {
		p.Rearm()
	}
}

// Enabled reports the page-level enabled predicate.
func (p *Poller[T]) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Rearm schedules the next tick after the initial delay instead of waiting out
// the rest of the current interval.
func (p *Poller[T]) Rearm() {
	select {
	case p.rearm <- struct{}{}:
	default:
	}
}

// Refresh requests an immediate fetch. It honours the enabled predicate and
// the in-flight limit but not the process-wide gates.
func (p *Poller[T]) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller[T]) run(ctx context.Context) {
	timer := p.clock.NewTimer(p.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.abortLocked()
			p.mu.Unlock()
			return
		case <-p.done:
			return
		case <-timer.Chan():
			// Fixed cadence: the next tick is due one interval after this one
			// fired, regardless of how long the request takes.
			timer.Reset(p.interval)
			p.tick(ctx, false)
		case <-p.rearm:
			if !timer.Stop() {
				select {
				case <-timer.Chan():
				default:
				}
			}
			timer.Reset(p.initialDelay)
		case <-p.refresh:
			p.tick(ctx, true)
		}
	}
}

func (p *Poller[T]) tick(ctx context.Context, manual bool) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	if reason := p.skipReasonLocked(manual); reason != "" {
		p.mu.Unlock()
		p.metrics.PollSkipped(ctx, p.name, reason)
		p.logger.Debug("poll tick skipped", "reason", reason)
		if p.onSkip != nil {
			p.onSkip(reason)
		}
		return
	}
	p.seq++
	seq := p.seq
	gen := p.gen
	url := p.url
	reqCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.inflight = seq
	requestedAt := p.clock.Now()
	p.mu.Unlock()

	p.metrics.PollIssued(ctx, p.name)
	p.requests.Go(func() {
		defer cancel()
		data, err := p.fetch(reqCtx, url)
		p.finish(ctx, gen, seq, url, requestedAt, data, err)
	})
}

// skipReasonLocked evaluates the gates in order: enabled, live, not
// navigating, visible; then the in-flight limit.
func (p *Poller[T]) skipReasonLocked(manual bool) string {
	switch {
	case !p.enabled:
		return telemetry.SkipDisabled
	case !manual && !p.gate.Live():
		return telemetry.SkipPaused
	case !manual && p.gate.Navigating():
		return telemetry.SkipNavigating
	case !manual && !p.gate.Visible():
		return telemetry.SkipHidden
	case p.inflight != 0:
		return telemetry.SkipBusy
	}
	return ""
}

func (p *Poller[T]) finish(ctx context.Context, gen, seq uint64, url string, requestedAt time.Time, data T, err error) {
	p.mu.Lock()
	if p.inflight == seq {
		p.inflight = 0
		p.cancel = nil
	}
	// Results for a previous URL, results arriving after Stop, and results
	// older than what is already shown are discarded.
	if p.stopped || gen != p.gen || seq <= p.applied {
		p.mu.Unlock()
		return
	}
	if err != nil && ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	now := p.clock.Now()
	p.applied = seq
	p.state.Loading = false
	if err != nil {
		// Keep stale data visible; only the error changes.
		p.state.Err = err
	} else {
		p.state.Data = data
		p.state.HasData = true
		p.state.Err = nil
		p.state.Seq = seq
		p.state.RequestedAt = requestedAt
		p.state.UpdatedAt = now
	}
	snapshot := p.state
	onChange := p.onChange
	p.mu.Unlock()

	p.metrics.PollSettled(ctx, p.name, now.Sub(requestedAt), err)
	if err != nil {
		p.logger.Warn("poll failed", "url", url, "error", err)
	}
	if onChange != nil {
		onChange(snapshot)
	}
}

func (p *Poller[T]) abortLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.inflight = 0
}
