package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"go.uber.org/goleak"

	"github.com/five82/ams/internal/live"
	"github.com/five82/ams/internal/telemetry"
)

const (
	testInterval = 15 * time.Second
	testDelay    = 80 * time.Millisecond
	waitTimeout  = 2 * time.Second
)

type row = map[string]any

type fakeGate struct {
	live, navigating, visible bool
}

func (g fakeGate) Live() bool       { return g.live }
func (g fakeGate) Navigating() bool { return g.navigating }
func (g fakeGate) Visible() bool    { return g.visible }

// scriptedFetch returns the i-th response on the i-th call and records urls.
type scriptedFetch struct {
	mu        sync.Mutex
	responses []func(ctx context.Context) ([]row, error)
	urls      []string
	calls     chan string
}

func newScriptedFetch(responses ...func(ctx context.Context) ([]row, error)) *scriptedFetch {
	return &scriptedFetch{responses: responses, calls: make(chan string, 16)}
}

func (s *scriptedFetch) fetch(ctx context.Context, url string) ([]row, error) {
	s.mu.Lock()
	i := len(s.urls)
	s.urls = append(s.urls, url)
	s.mu.Unlock()
	s.calls <- url
	if i >= len(s.responses) {
		return nil, fmt.Errorf("unexpected call %d", i+1)
	}
	return s.responses[i](ctx)
}

func (s *scriptedFetch) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

func respond(rows ...row) func(context.Context) ([]row, error) {
	return func(context.Context) ([]row, error) { return rows, nil }
}

func fail(msg string) func(context.Context) ([]row, error) {
	return func(context.Context) ([]row, error) { return nil, errors.New(msg) }
}

// blockUntil waits for release (ignoring cancellation when ignoreCtx is set)
// and then returns rows.
func blockUntil(release <-chan struct{}, ignoreCtx bool, rows ...row) func(context.Context) ([]row, error) {
	return func(ctx context.Context) ([]row, error) {
		if ignoreCtx {
			<-release
			return rows, nil
		}
		select {
		case <-release:
			return rows, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type harness struct {
	clock   *testclock.Clock
	poller  *Poller[[]row]
	changes chan State[[]row]
	skips   chan string
}

func newHarness(t *testing.T, fetch Fetch[[]row], gate Gate, disabled bool) *harness {
	t.Helper()
	h := &harness{
		clock:   testclock.NewClock(time.Unix(0, 0)),
		changes: make(chan State[[]row], 16),
		skips:   make(chan string, 16),
	}
	p, err := New(Config[[]row]{
		Name:         "assets",
		URL:          "/api/assets/",
		Interval:     testInterval,
		InitialDelay: testDelay,
		Fetch:        fetch,
		Gate:         gate,
		Clock:        h.clock,
		Disabled:     disabled,
		OnChange:     func(s State[[]row]) { h.changes <- s },
		OnSkip:       func(reason string) { h.skips <- reason },
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	h.poller = p
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.poller.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	t.Cleanup(h.poller.Stop)
	h.waitAlarm(t) // initial timer
}

// waitAlarm blocks until the poller has (re)armed its timer.
func (h *harness) waitAlarm(t *testing.T) {
	t.Helper()
	select {
	case <-h.clock.Alarms():
	case <-time.After(waitTimeout):
		t.Fatalf("timer was never armed")
	}
}

// advance moves the clock and waits for the loop to re-arm after the tick.
func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	h.clock.Advance(d)
	h.waitAlarm(t)
}

func (h *harness) nextChange(t *testing.T) State[[]row] {
	t.Helper()
	select {
	case s := <-h.changes:
		return s
	case <-time.After(waitTimeout):
		t.Fatalf("no state change published")
	}
	return State[[]row]{}
}

func (h *harness) nextSkip(t *testing.T) string {
	t.Helper()
	select {
	case r := <-h.skips:
		return r
	case <-time.After(waitTimeout):
		t.Fatalf("no skipped tick reported")
	}
	return ""
}

func waitCall(t *testing.T, f *scriptedFetch) string {
	t.Helper()
	select {
	case url := <-f.calls:
		return url
	case <-time.After(waitTimeout):
		t.Fatalf("fetch was not called")
	}
	return ""
}

var allOpen = fakeGate{live: true, visible: true}

func TestNew_RequiresFetch(t *testing.T) {
	if _, err := New(Config[[]row]{Name: "x"}); err == nil {
		t.Fatalf("New without fetch returned nil error")
	}
}

func TestPoller_SnapshotsReplaceWholesaleOnSchedule(t *testing.T) {
	defer goleak.VerifyNone(t)

	first := []row{{"id": 1, "name": "A"}}
	second := []row{{"id": 1, "name": "A"}, {"id": 2, "name": "B"}}
	f := newScriptedFetch(respond(first...), respond(second...))
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)

	st := h.poller.State()
	if st.HasData || !st.Loading {
		t.Fatalf("before first tick: HasData=%v Loading=%v, want false/true", st.HasData, st.Loading)
	}

	h.clock.Advance(testDelay - time.Millisecond)
	if f.count() != 0 {
		t.Fatalf("fetch called before initial delay elapsed")
	}

	h.advance(t, time.Millisecond)
	st = h.nextChange(t)
	if !st.HasData || st.Loading || len(st.Data) != 1 || st.Data[0]["name"] != "A" {
		t.Fatalf("after first tick: %+v", st)
	}
	if st.RequestedAt != time.Unix(0, 0).Add(testDelay) {
		t.Fatalf("RequestedAt = %v, want t+80ms", st.RequestedAt)
	}

	// The next fetch happens one full interval after the first tick fired.
	h.clock.Advance(testInterval - time.Millisecond)
	if f.count() != 1 {
		t.Fatalf("fetch count = %d before interval elapsed, want 1", f.count())
	}
	h.advance(t, time.Millisecond)
	st = h.nextChange(t)
	if len(st.Data) != 2 || st.Data[1]["name"] != "B" {
		t.Fatalf("after second tick: Data = %v, want two rows", st.Data)
	}
	if st.Seq != 2 {
		t.Fatalf("Seq = %d, want 2", st.Seq)
	}
	h.poller.Stop()
}

func TestPoller_GatingRequiresAllConditions(t *testing.T) {
	defer goleak.VerifyNone(t)

	for mask := 0; mask < 16; mask++ {
		enabled := mask&1 != 0
		gate := fakeGate{
			live:       mask&2 != 0,
			navigating: mask&4 == 0,
			visible:    mask&8 != 0,
		}
		wantReason := ""
		switch {
		case !enabled:
			wantReason = "disabled"
		case !gate.live:
			wantReason = "paused"
		case gate.navigating:
			wantReason = "navigating"
		case !gate.visible:
			wantReason = "hidden"
		}

		name := fmt.Sprintf("enabled=%v/live=%v/navigating=%v/visible=%v", enabled, gate.live, gate.navigating, gate.visible)
		t.Run(name, func(t *testing.T) {
			f := newScriptedFetch(respond(row{"id": 1}))
			h := newHarness(t, f.fetch, gate, !enabled)
			h.start(t)
			h.advance(t, testDelay)

			if wantReason == "" {
				waitCall(t, f)
				h.nextChange(t)
				return
			}
			if got := h.nextSkip(t); got != wantReason {
				t.Fatalf("skip reason = %q, want %q", got, wantReason)
			}
			h.poller.Stop()
			if f.count() != 0 {
				t.Fatalf("fetch called %d times with a closed gate", f.count())
			}
		})
	}
}

func TestPoller_FailureKeepsStaleData(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newScriptedFetch(
		respond(row{"id": 1}),
		fail("connection refused"),
		respond(row{"id": 1}, row{"id": 2}),
	)
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)

	h.advance(t, testDelay)
	h.nextChange(t)

	h.advance(t, testInterval)
	st := h.nextChange(t)
	if st.Err == nil {
		t.Fatalf("Err = nil after failed poll")
	}
	if len(st.Data) != 1 || !st.HasData {
		t.Fatalf("Data = %v after failure, want previous snapshot kept", st.Data)
	}

	h.advance(t, testInterval)
	st = h.nextChange(t)
	if st.Err != nil || len(st.Data) != 2 {
		t.Fatalf("after recovery: Err=%v Data=%v", st.Err, st.Data)
	}
	h.poller.Stop()
}

func TestPoller_FirstResponseFailureEndsLoading(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newScriptedFetch(fail("boom"))
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)
	h.advance(t, testDelay)
	st := h.nextChange(t)
	if st.Loading || st.HasData || st.Err == nil {
		t.Fatalf("state = %+v, want Loading=false HasData=false with error", st)
	}
	h.poller.Stop()
}

func TestPoller_LiveToggledOffSkipsNextTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	flag := live.NewFlag(true, nil)
	signals := live.NewSignals(flag, nil, nil)
	defer signals.Close()

	f := newScriptedFetch(respond(row{"id": 1}))
	h := newHarness(t, f.fetch, signals, false)
	h.start(t)
	h.advance(t, testDelay)
	before := h.nextChange(t)

	h.clock.Advance(testInterval / 2)
	flag.Sync(false)

	h.advance(t, testInterval/2)
	if got := h.nextSkip(t); got != "paused" {
		t.Fatalf("skip reason = %q, want paused", got)
	}
	if f.count() != 1 {
		t.Fatalf("fetch count = %d, want 1", f.count())
	}
	if got := h.poller.State(); got.Seq != before.Seq || len(got.Data) != 1 {
		t.Fatalf("state changed while paused: %+v", got)
	}
	h.poller.Stop()
}

func TestPoller_ResumeRearmsWithInitialDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	flag := live.NewFlag(false, nil)
	signals := live.NewSignals(flag, nil, nil)
	defer signals.Close()

	f := newScriptedFetch(respond(row{"id": 1}))
	h := newHarness(t, f.fetch, signals, false)
	h.start(t)
	h.advance(t, testDelay)
	if got := h.nextSkip(t); got != "paused" {
		t.Fatalf("skip reason = %q, want paused", got)
	}

	flag.Sync(true)
	h.waitAlarm(t) // re-armed with the short delay
	h.advance(t, testDelay)
	waitCall(t, f)
	if st := h.nextChange(t); len(st.Data) != 1 {
		t.Fatalf("Data = %v after resume", st.Data)
	}
	h.poller.Stop()
}

func TestPoller_StopDiscardsInFlightAndHaltsPolling(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	f := newScriptedFetch(blockUntil(release, false, row{"id": 1}))
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)
	h.advance(t, testDelay)
	waitCall(t, f)

	h.poller.Stop()
	close(release)

	select {
	case s := <-h.changes:
		t.Fatalf("state change after Stop: %+v", s)
	default:
	}
	h.clock.Advance(10 * testInterval)
	if f.count() != 1 {
		t.Fatalf("fetch count = %d after Stop, want 1", f.count())
	}
	if err := h.poller.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Start after Stop = %v, want ErrStopped", err)
	}
}

func TestPoller_TickWhileInFlightIsSkipped(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	f := newScriptedFetch(
		blockUntil(release, false, row{"id": 1}),
		respond(row{"id": 1}, row{"id": 2}),
	)
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)
	h.advance(t, testDelay)
	waitCall(t, f)

	h.advance(t, testInterval)
	if got := h.nextSkip(t); got != "busy" {
		t.Fatalf("skip reason = %q, want busy", got)
	}

	close(release)
	if st := h.nextChange(t); len(st.Data) != 1 {
		t.Fatalf("Data = %v, want first response", st.Data)
	}

	h.advance(t, testInterval)
	if st := h.nextChange(t); len(st.Data) != 2 {
		t.Fatalf("Data = %v, want second response", st.Data)
	}
	h.poller.Stop()
}

func TestPoller_URLChangeDiscardsPreviousResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	f := newScriptedFetch(
		blockUntil(release, true, row{"id": "old"}),
		respond(row{"id": "new"}),
	)
	h := newHarness(t, f.fetch, allOpen, false)
	h.start(t)
	h.advance(t, testDelay)
	if url := waitCall(t, f); url != "/api/assets/" {
		t.Fatalf("first url = %q", url)
	}

	h.poller.SetURL("/api/assets/?status=active")
	h.waitAlarm(t)
	h.advance(t, testDelay)
	if url := waitCall(t, f); url != "/api/assets/?status=active" {
		t.Fatalf("second url = %q", url)
	}
	if st := h.nextChange(t); st.Data[0]["id"] != "new" {
		t.Fatalf("Data = %v, want new url's response", st.Data)
	}

	close(release)
	h.poller.Stop()
	if st := h.poller.State(); st.Data[0]["id"] != "new" {
		t.Fatalf("stale response overwrote data: %v", st.Data)
	}
	select {
	case s := <-h.changes:
		t.Fatalf("unexpected change from stale response: %+v", s)
	default:
	}
}

func TestPoller_RefreshBypassesProcessGates(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newScriptedFetch(respond(row{"id": 1}))
	h := newHarness(t, f.fetch, fakeGate{live: false, visible: true}, false)
	h.start(t)

	h.poller.Refresh()
	waitCall(t, f)
	if st := h.nextChange(t); !st.HasData {
		t.Fatalf("Refresh did not publish data")
	}
	h.poller.Stop()
}

func TestPoller_SetEnabledRearms(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newScriptedFetch(respond(row{"id": 1}))
	h := newHarness(t, f.fetch, allOpen, true)
	h.start(t)
	h.advance(t, testDelay)
	if got := h.nextSkip(t); got != "disabled" {
		t.Fatalf("skip reason = %q, want disabled", got)
	}

	h.poller.SetEnabled(true)
	h.waitAlarm(t)
	h.advance(t, testDelay)
	waitCall(t, f)
	h.nextChange(t)
	h.poller.Stop()
}

func TestJSON_UsesFetcher(t *testing.T) {
	var gotPath string
	fetch := JSON[[]row](fetcherFunc(func(_ context.Context, path string, dest any) error {
		gotPath = path
		out := dest.(*[]row)
		*out = []row{{"id": 7}}
		return nil
	}))
	rows, err := fetch(context.Background(), "/api/users/")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if gotPath != "/api/users/" || len(rows) != 1 {
		t.Fatalf("path=%q rows=%v", gotPath, rows)
	}
}

type fetcherFunc func(ctx context.Context, path string, dest any) error

func (f fetcherFunc) Get(ctx context.Context, path string, dest any) error { return f(ctx, path, dest) }

func TestPoller_RecordsIssuedAndFailedPolls(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := telemetry.NewRecorder()
	defer func() { _ = rec.Shutdown(context.Background()) }()

	f := newScriptedFetch(respond(row{"id": 1}), fail("connection refused"))
	h := newHarness(t, f.fetch, allOpen, false)
	h.poller.metrics = rec.Metrics
	h.start(t)

	h.advance(t, testDelay)
	h.nextChange(t)
	h.advance(t, testInterval)
	h.nextChange(t)
	h.poller.Stop()

	c, err := rec.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if c.PollsIssued != 2 || c.PollsFailed != 1 || c.PollsSkipped != 0 {
		t.Fatalf("Counts = %+v, want 2 issued, 1 failed, 0 skipped", c)
	}
}

func TestPoller_RecordsSkippedTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := telemetry.NewRecorder()
	defer func() { _ = rec.Shutdown(context.Background()) }()

	f := newScriptedFetch()
	h := newHarness(t, f.fetch, fakeGate{visible: true}, false)
	h.poller.metrics = rec.Metrics
	h.start(t)

	h.advance(t, testDelay)
	if got := h.nextSkip(t); got != telemetry.SkipPaused {
		t.Fatalf("skip reason = %q, want %q", got, telemetry.SkipPaused)
	}
	h.poller.Stop()

	c, err := rec.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if c.PollsSkipped != 1 || c.PollsIssued != 0 {
		t.Fatalf("Counts = %+v, want 1 skipped and nothing issued", c)
	}
}
