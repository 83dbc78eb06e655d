package live

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// DefaultNavigationWindow is how long polling stays suppressed after a route
// change.
const DefaultNavigationWindow = 600 * time.Millisecond

// Navigation tracks the Navigation Window: true from the instant the active
// route changes until the window elapses with no further route change.
type Navigation struct {
	clock  clock.Clock
	window time.Duration

	mu      sync.Mutex
	route   string
	mounted bool
	active  bool
	gen     uint64
	timer   clock.Timer

	subs listeners[bool]
}

// NewNavigation returns a Navigation driven by clk. A non-positive window
// uses DefaultNavigationWindow.
func NewNavigation(clk clock.Clock, window time.Duration) *Navigation {
	if clk == nil {
		clk = clock.WallClock
	}
	if window <= 0 {
		window = DefaultNavigationWindow
	}
	return &Navigation{clock: clk, window: window}
}

// Navigate records the active route. The first route seen is the initial
// mount and does not open the window; later changes open it (or restart the
// timer when it is already open). Navigating to the current route is a no-op.
func (n *Navigation) Navigate(route string) {
	n.mu.Lock()
	if !n.mounted {
		n.mounted = true
		n.route = route
		n.mu.Unlock()
		return
	}
	if route == n.route {
		n.mu.Unlock()
		return
	}
	n.route = route
	wasActive := n.active
	n.active = true
	n.gen++
	gen := n.gen
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = n.clock.AfterFunc(n.window, func() { n.expire(gen) })
	n.mu.Unlock()

	if !wasActive {
		n.subs.notify(true)
	}
}

// Active reports whether the Navigation Window is open.
func (n *Navigation) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// Route returns the current route.
func (n *Navigation) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

// Subscribe registers fn for window open/close transitions.
func (n *Navigation) Subscribe(fn func(active bool)) func() {
	return n.subs.add(fn)
}

// Stop cancels a pending expiry and closes the window.
func (n *Navigation) Stop() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.active = false
	n.mu.Unlock()
}

func (n *Navigation) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || !n.active {
		n.mu.Unlock()
		return
	}
	n.active = false
	n.timer = nil
	n.mu.Unlock()
	n.subs.notify(false)
}
