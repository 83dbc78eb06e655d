package live

import (
	"fmt"
	"sync"
)

// Store persists the Live Flag. prefs.File satisfies it.
type Store interface {
	SaveLive(on bool) error
}

// Flag is the user-controlled on/off switch for all polling.
type Flag struct {
	mu    sync.Mutex
	on    bool
	store Store
	subs  listeners[bool]
}

// NewFlag returns a Flag with the given initial value. store may be nil, in
// which case toggles are not persisted.
func NewFlag(initial bool, store Store) *Flag {
	return &Flag{on: initial, store: store}
}

// Enabled reports the current value.
func (f *Flag) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Set changes the flag and persists it immediately. Listeners are notified
// only when the value actually changes. The in-memory value is updated even
// when persisting fails.
func (f *Flag) Set(on bool) error {
	f.mu.Lock()
	changed := f.on != on
	f.on = on
	err := f.persistLocked(on)
	f.mu.Unlock()

	if changed {
		f.subs.notify(on)
	}
	return err
}

// Toggle flips the flag and returns the new value. The flip and the write
// to the store happen under one lock, so concurrent toggles never collapse
// and the stored value matches the last flip.
func (f *Flag) Toggle() (bool, error) {
	f.mu.Lock()
	next := !f.on
	f.on = next
	err := f.persistLocked(next)
	f.mu.Unlock()

	f.subs.notify(next)
	return next, err
}

func (f *Flag) persistLocked(on bool) error {
	if f.store == nil {
		return nil
	}
	if err := f.store.SaveLive(on); err != nil {
		return fmt.Errorf("persist live flag: %w", err)
	}
	return nil
}

// Sync adopts a value read back from storage (for example after another
// session rewrote the preferences file) without persisting it again.
func (f *Flag) Sync(on bool) {
	if f.swap(on) {
		f.subs.notify(on)
	}
}

// Subscribe registers fn for value changes and returns its cancel function.
func (f *Flag) Subscribe(fn func(on bool)) func() {
	return f.subs.add(fn)
}

func (f *Flag) swap(on bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.on != on
	f.on = on
	return changed
}

// listeners is a small registry of callbacks keyed by registration order.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}
