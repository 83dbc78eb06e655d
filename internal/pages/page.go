package pages

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/confirm"
	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/localcache"
	"github.com/five82/ams/internal/mutate"
	"github.com/five82/ams/internal/poll"
	"github.com/five82/ams/internal/telemetry"
)

// ErrReadOnly is returned by mutations on pages without a form.
var ErrReadOnly = errors.New("page is read-only")

// ErrLocalOnly is returned when editing or deleting a cached record the
// server has not assigned an id to yet.
var ErrLocalOnly = errors.New("record is not saved to the server yet")

// Client is the API surface pages need.
type Client interface {
	api.Fetcher
	api.Mutator
}

// Intervals sets the polling cadence per kind of subscription.
type Intervals struct {
	// Poll is the cadence of a page's primary collection.
	Poll time.Duration
	// Lookup is the cadence of reference collections used for names.
	Lookup time.Duration
	// Stats is the cadence of report endpoints.
	Stats time.Duration
	// Initial is the delay before a subscription's first fetch.
	Initial time.Duration
}

// Env is shared by every page.
type Env struct {
	Client    Client
	Gate      poll.Gate
	Clock     clock.Clock
	Intervals Intervals
	Workers   int
	Notify    mutate.Notifier
	Metrics   *telemetry.Metrics
	Logger    *slog.Logger
	// Cache seeds the maintenance page. Optional.
	Cache *localcache.Cache
	// Changed is called whenever a page's view may have changed. It must not
	// block.
	Changed func()
}

func (e *Env) changed() {
	if e.Changed != nil {
		e.Changed()
	}
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Column is a table header.
type Column struct {
	Title string
	Width int
}

// Row is one rendered table row.
type Row struct {
	ID       string
	Cells    []string
	// ReadOnly rows exist only in the local cache and cannot be edited,
	// deleted or marked.
	ReadOnly bool
}

// Section is a labelled breakdown rendered below the table.
type Section struct {
	Title   string
	Buckets []entity.Bucket
	// Note explains where the figures came from when a report is unavailable.
	Note string
}

// View is everything the console needs to draw a page.
type View struct {
	Title    string
	Stats    []entity.Stat
	Columns  []Column
	Rows     []Row
	Sections []Section
	// Loading is true until the primary subscription's first response.
	Loading   bool
	Err       error
	UpdatedAt time.Time
	Editable  bool
}

// Filter keeps the rows containing q in any cell, ignoring case.
func (v View) Filter(q string) View {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return v
	}
	kept := make([]Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		if strings.Contains(strings.ToLower(strings.Join(r.Cells, " ")), q) {
			kept = append(kept, r)
		}
	}
	v.Rows = kept
	return v
}

// Option is a selectable value for a reference field.
type Option struct {
	ID   string
	Name string
}

// Form describes the dialog for creating or editing one record.
type Form struct {
	Title    string
	Fields   []entity.Field
	Values   map[string]string
	Priority []string
	Labels   map[string]string
	// Options lists known records for each reference field.
	Options map[string][]Option
}

// InvalidInput reports form values rejected before any request was sent.
type InvalidInput struct {
	Fields map[string][]string
}

func (e *InvalidInput) Error() string {
	return "invalid input: " + mutate.Summary(e.Fields, nil)
}

// FieldErrors returns the per-field messages carried by err, whether they
// came from the server or from local validation.
func FieldErrors(err error) map[string][]string {
	var invalid *InvalidInput
	if errors.As(err, &invalid) {
		return invalid.Fields
	}
	return api.FieldErrors(err)
}

// Page is one screen of the console. Mount starts its subscriptions and
// Unmount stops them; the page keeps its last rows in between.
type Page interface {
	Name() string
	Title() string
	Mount(ctx context.Context) error
	Unmount()
	// SetPaused disables the page's subscriptions while a dialog is open.
	SetPaused(paused bool)
	Refresh()
	View() View
	Editable() bool
	Form(id string) (Form, error)
	Submit(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, t confirm.Ticket, id string) error
	BulkDelete(ctx context.Context, t confirm.Ticket, ids []string) (mutate.BulkResult, error)
	// Describe names a record in confirmation prompts.
	Describe(id string) string
	Singular() string
	Plural() string
}
