package live

import "sync"

// Signals bundles the process-wide gates every poller consults. It is built
// once by the composition root and injected into pollers, so tests can pass
// their own instance instead of touching globals.
type Signals struct {
	Flag       *Flag
	Navigation *Navigation
	Visibility *Visibility

	mu     sync.Mutex
	open   bool
	resume listeners[struct{}]
	cancel []func()
}

// NewSignals wires the three components together. Nil components are
// replaced by always-favourable defaults.
func NewSignals(flag *Flag, nav *Navigation, vis *Visibility) *Signals {
	if flag == nil {
		flag = NewFlag(true, nil)
	}
	if nav == nil {
		nav = NewNavigation(nil, 0)
	}
	if vis == nil {
		vis = NewVisibility()
	}
	s := &Signals{Flag: flag, Navigation: nav, Visibility: vis}
	s.open = s.gateOpen()
	s.cancel = []func(){
		flag.Subscribe(func(bool) { s.recompute() }),
		nav.Subscribe(func(bool) { s.recompute() }),
		vis.Subscribe(func(bool) { s.recompute() }),
	}
	return s
}

// Live reports the Live Flag.
func (s *Signals) Live() bool { return s.Flag.Enabled() }

// Navigating reports whether the Navigation Window is open.
func (s *Signals) Navigating() bool { return s.Navigation.Active() }

// Visible reports terminal visibility.
func (s *Signals) Visible() bool { return s.Visibility.Visible() }

// Open reports whether all three process-wide gates currently favour polling.
func (s *Signals) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// OnResume registers fn to run whenever the combined gate goes from closed to
// open (navigation settled, live switched back on, terminal refocused).
func (s *Signals) OnResume(fn func()) func() {
	return s.resume.add(func(struct{}) { fn() })
}

// Close detaches Signals from its components.
func (s *Signals) Close() {
	s.mu.Lock()
	cancels := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	for _, c := range cancels {
		c()
	}
	s.Navigation.Stop()
}

func (s *Signals) gateOpen() bool {
	return s.Flag.Enabled() && !s.Navigation.Active() && s.Visibility.Visible()
}

func (s *Signals) recompute() {
	s.mu.Lock()
	now := s.gateOpen()
	resumed := now && !s.open
	s.open = now
	s.mu.Unlock()
	if resumed {
		s.resume.notify(struct{}{})
	}
}
