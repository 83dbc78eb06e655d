// Package confirm implements the confirmation gate that every destructive
// action passes through.
//
// The gate is a three-state machine: Idle, Prompting and Executing. Only the
// transition into Executing mints a Ticket, and the mutation layer refuses
// destructive calls without one, so a delete cannot run unless the user
// confirmed it first.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the gate's position in Idle -> Prompting -> Executing -> Idle.
type State int

const (
	Idle State = iota
	Prompting
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prompting:
		return "prompting"
	case Executing:
		return "executing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotConfirmed is returned by destructive operations called without a
	// ticket from a gate.
	ErrNotConfirmed = errors.New("destructive action not confirmed")
	// ErrBusy is returned when a prompt is requested while another is open.
	ErrBusy = errors.New("confirmation already in progress")
	// ErrNoPrompt is returned by Start when nothing is awaiting confirmation.
	ErrNoPrompt = errors.New("nothing to confirm")
)

// Ticket proves that a gate entered Executing. The zero Ticket is invalid.
type Ticket struct {
	serial uint64
}

// Valid reports whether t was minted by a gate.
func (t Ticket) Valid() bool { return t.serial != 0 }

// Require returns ErrNotConfirmed for an invalid ticket.
func Require(t Ticket) error {
	if !t.Valid() {
		return ErrNotConfirmed
	}
	return nil
}

// Action is the destructive work guarded by the gate.
type Action func(ctx context.Context, t Ticket) error

// Prompt is what the dialog shows.
type Prompt struct {
	Title        string
	Description  string
	ConfirmLabel string
	BusyLabel    string
	CancelLabel  string
}

func (p Prompt) withDefaults() Prompt {
	if p.ConfirmLabel == "" {
		p.ConfirmLabel = "Delete"
	}
	if p.BusyLabel == "" {
		p.BusyLabel = "Deleting..."
	}
	if p.CancelLabel == "" {
		p.CancelLabel = "Cancel"
	}
	return p
}

// Gate is safe for concurrent use.
type Gate struct {
	mu     sync.Mutex
	state  State
	prompt Prompt
	action Action
	serial uint64
}

// New returns an idle Gate.
func New() *Gate {
	return &Gate{}
}

// Prompt opens the dialog for action. It fails with ErrBusy unless the gate
// is idle.
func (g *Gate) Prompt(p Prompt, action Action) error {
	if action == nil {
		return fmt.Errorf("confirm: nil action")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Idle {
		return ErrBusy
	}
	g.state = Prompting
	g.prompt = p.withDefaults()
	g.action = action
	return nil
}

// Cancel closes an open prompt without running the action. It has no effect
// while executing.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Prompting {
		return
	}
	g.reset()
}

// Start moves a prompting gate to Executing and returns the function that
// runs the action. The returned function returns the gate to Idle when the
// action settles, whatever its outcome.
func (g *Gate) Start() (func(ctx context.Context) error, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Prompting {
		return nil, ErrNoPrompt
	}
	g.state = Executing
	g.serial++
	ticket := Ticket{serial: g.serial}
	action := g.action
	return func(ctx context.Context) error {
		defer g.settle()
		return action(ctx, ticket)
	}, nil
}

// Confirm runs the pending action synchronously.
func (g *Gate) Confirm(ctx context.Context) error {
	run, err := g.Start()
	if err != nil {
		return err
	}
	return run(ctx)
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Open reports whether the dialog is visible (prompting or executing).
func (g *Gate) Open() bool {
	return g.State() != Idle
}

// Busy reports whether the action is running; the confirm control is
// disabled meanwhile.
func (g *Gate) Busy() bool {
	return g.State() == Executing
}

// Current returns the prompt being shown.
func (g *Gate) Current() Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

// ConfirmLabel is the confirm control's text: the busy label while executing.
func (g *Gate) ConfirmLabel() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Executing {
		return g.prompt.BusyLabel
	}
	return g.prompt.ConfirmLabel
}

func (g *Gate) settle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

func (g *Gate) reset() {
	g.state = Idle
	g.prompt = Prompt{}
	g.action = nil
}
