package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/confirm"
	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/localcache"
	"github.com/five82/ams/internal/mutate"
	"github.com/five82/ams/internal/reconcile"
)

// Definition describes a CRUD page over one resource.
type Definition[T entity.Row] struct {
	Kind entity.Kind
	Spec reconcile.Spec
	// Interval overrides the primary poll cadence.
	Interval time.Duration
	// Refs are polled at the lookup cadence for names and statistics.
	Refs    []string
	Columns []Column
	Cells   func(row T, refs Refs) []string
	Stats   func(rows []T, refs Refs, now time.Time) []entity.Stat
	// Seed provides rows to show before the first poll lands.
	Seed func() []api.Record
	// Saved receives every fresh primary snapshot.
	Saved func([]api.Record)
}

// Resource is a Page built from a Definition.
type Resource[T entity.Row] struct {
	def   Definition[T]
	env   *Env
	rows  *mutate.Collection[T]
	coord *mutate.Coordinator[T]
	feeds *feeds
	main  *feed

	mu     sync.Mutex
	refs   Refs
	cancel context.CancelFunc
	seeded bool
}

// NewResource wires def to env.
func NewResource[T entity.Row](env *Env, def Definition[T]) (*Resource[T], error) {
	r := &Resource[T]{
		def:   def,
		env:   env,
		rows:  mutate.NewCollection(func(row T) string { return row.Key() }, env.Clock),
		feeds: &feeds{env: env},
	}

	interval := def.Interval
	if interval <= 0 {
		interval = env.Intervals.Poll
	}
	r.main = r.feeds.add(def.Kind.Resource, api.CollectionPath(def.Kind.Resource), interval, r.applySnapshot)
	for _, ref := range def.Refs {
		r.feeds.add(ref, api.CollectionPath(ref), env.Intervals.Lookup, func(s snapshot) {
			r.mu.Lock()
			r.refs = r.refs.with(ref, s.Data)
			r.mu.Unlock()
		})
	}

	coord, err := mutate.NewCoordinator(mutate.Options[T]{
		Resource: def.Kind.Resource,
		Singular: def.Kind.Singular,
		Plural:   def.Kind.Plural,
		Client:   env.Client,
		Rows:     r.rows,
		Project:  r.project,
		Describe: func(row T) string { return row.Label() },
		Labels:   def.Kind.Labels(),
		Notify:   env.Notify,
		Metrics:  env.Metrics,
		Logger:   env.Logger,
		Workers:  env.Workers,
		Refresh:  r.Refresh,
	})
	if err != nil {
		return nil, err
	}
	r.coord = coord
	return r, nil
}

func (r *Resource[T]) project(rec api.Record) (T, error) {
	row, err := reconcile.Decode[T](rec, r.def.Spec)
	if err != nil {
		return row, err
	}
	if row.Key() == "" {
		return row, fmt.Errorf("%s response has no id", r.def.Kind.Singular)
	}
	return row, nil
}

func (r *Resource[T]) applySnapshot(s snapshot) {
	r.rows.Apply(reconcile.DecodeAll[T](s.Data, r.def.Spec), s.RequestedAt)
	if r.def.Saved != nil {
		r.def.Saved(s.Data)
	}
}

func (r *Resource[T]) Name() string     { return r.def.Kind.Resource }
func (r *Resource[T]) Title() string    { return r.def.Kind.Title }
func (r *Resource[T]) Singular() string { return r.def.Kind.Singular }
func (r *Resource[T]) Plural() string   { return r.def.Kind.Plural }
func (r *Resource[T]) Editable() bool   { return true }

// Rows exposes the page's collection.
func (r *Resource[T]) Rows() *mutate.Collection[T] { return r.rows }

func (r *Resource[T]) Mount(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	seed := !r.seeded && r.def.Seed != nil
	r.seeded = true
	r.mu.Unlock()

	if seed && !r.rows.Loaded() {
		if recs := r.def.Seed(); len(recs) > 0 {
			r.rows.Apply(reconcile.DecodeAll[T](recs, r.def.Spec), time.Time{})
		}
	}
	if err := r.feeds.start(ctx); err != nil {
		r.Unmount()
		return err
	}
	return nil
}

func (r *Resource[T]) Unmount() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	r.feeds.stop()
	cancel()
}

func (r *Resource[T]) SetPaused(paused bool) { r.feeds.setPaused(paused) }
func (r *Resource[T]) Refresh()              { r.feeds.refresh() }

func (r *Resource[T]) View() View {
	r.mu.Lock()
	refs := r.refs
	r.mu.Unlock()

	rows := r.rows.Rows()
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, Row{ID: row.Key(), Cells: r.def.Cells(row, refs), ReadOnly: r.localOnly(row.Key())})
	}
	st := r.main.snapshot()
	v := View{
		Title:     r.def.Kind.Title,
		Columns:   r.def.Columns,
		Rows:      out,
		Loading:   st.Loading && !r.rows.Loaded(),
		Err:       st.Err,
		UpdatedAt: st.UpdatedAt,
		Editable:  true,
	}
	if r.def.Stats != nil {
		v.Stats = r.def.Stats(rows, refs, r.env.now())
	}
	return v
}

func (r *Resource[T]) Form(id string) (Form, error) {
	kind := r.def.Kind
	f := Form{
		Title:    "Add " + titleCase(kind.Singular),
		Fields:   kind.Fields,
		Values:   make(map[string]string, len(kind.Fields)),
		Priority: kind.Priority,
		Labels:   kind.Labels(),
		Options:  make(map[string][]Option),
	}
	for _, field := range kind.Fields {
		f.Values[field.Key] = field.Default
	}
	if r.localOnly(id) {
		return Form{}, fmt.Errorf("edit %s %s: %w", kind.Singular, id, ErrLocalOnly)
	}
	if id != "" {
		row, ok := r.rows.Find(id)
		if !ok {
			return Form{}, fmt.Errorf("%s %s not found", kind.Singular, id)
		}
		f.Title = "Edit " + titleCase(kind.Singular)
		for k, v := range row.Values() {
			f.Values[k] = v
		}
	}

	r.mu.Lock()
	refs := r.refs
	r.mu.Unlock()
	for _, field := range kind.Fields {
		if field.Kind == entity.Ref {
			f.Options[field.Key] = refs.Options(field.Ref)
		}
	}
	return f, nil
}

// Submit creates a record when id is empty and updates it otherwise.
func (r *Resource[T]) Submit(ctx context.Context, id string, values map[string]string) error {
	if r.localOnly(id) {
		return fmt.Errorf("update %s %s: %w", r.def.Kind.Singular, id, ErrLocalOnly)
	}
	payload, invalid := entity.Payload(r.def.Kind, values)
	if invalid != nil {
		return &InvalidInput{Fields: invalid}
	}
	var err error
	if id == "" {
		_, err = r.coord.Create(ctx, payload)
	} else {
		_, err = r.coord.Update(ctx, id, payload)
	}
	return err
}

func (r *Resource[T]) Delete(ctx context.Context, t confirm.Ticket, id string) error {
	if r.localOnly(id) {
		return fmt.Errorf("delete %s %s: %w", r.def.Kind.Singular, id, ErrLocalOnly)
	}
	return r.coord.Delete(ctx, t, id)
}

// BulkDelete deletes the server-backed ids. Local-only ids are reported as
// failed with ErrLocalOnly and never sent.
func (r *Resource[T]) BulkDelete(ctx context.Context, t confirm.Ticket, ids []string) (mutate.BulkResult, error) {
	remote := make([]string, 0, len(ids))
	var local []string
	for _, id := range ids {
		if r.localOnly(id) {
			local = append(local, id)
			continue
		}
		remote = append(remote, id)
	}
	res, err := r.coord.BulkDelete(ctx, t, remote)
	if err != nil {
		return res, err
	}
	for _, id := range local {
		res.Failed[id] = ErrLocalOnly
	}
	return res, nil
}

// localOnly reports whether id belongs to a cached record without a server id.
func (r *Resource[T]) localOnly(id string) bool {
	return r.def.Seed != nil && localcache.IsLocalID(id)
}

func (r *Resource[T]) Describe(id string) string {
	if row, ok := r.rows.Find(id); ok {
		if label := strings.TrimSpace(row.Label()); label != "" {
			return label
		}
	}
	return r.def.Kind.Singular + " " + id
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
