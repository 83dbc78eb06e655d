package live

import "sync"

// Visibility mirrors whether the console currently has the user's attention.
// The UI feeds it terminal focus and blur reports; it starts visible because
// not every terminal reports focus.
type Visibility struct {
	mu      sync.Mutex
	visible bool
	subs    listeners[bool]
}

// NewVisibility returns a Visibility that starts visible.
func NewVisibility() *Visibility {
	return &Visibility{visible: true}
}

// Visible reports the current value.
func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Set updates visibility and notifies listeners on change.
func (v *Visibility) Set(visible bool) {
	v.mu.Lock()
	changed := v.visible != visible
	v.visible = visible
	v.mu.Unlock()
	if changed {
		v.subs.notify(visible)
	}
}

// Subscribe registers fn for visibility changes.
func (v *Visibility) Subscribe(fn func(visible bool)) func() {
	return v.subs.add(fn)
}
