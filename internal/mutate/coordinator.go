package mutate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/confirm"
	"github.com/five82/ams/internal/telemetry"
)

// DefaultWorkers bounds concurrent requests in a bulk delete.
const DefaultWorkers = 8

// Notifier surfaces mutation outcomes to the user.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// Options configures a Coordinator.
type Options[T any] struct {
	// Resource is the collection segment, e.g. "maintenance-staff".
	Resource string
	// Singular and Plural name the entity in notifications ("supplier",
	// "suppliers").
	Singular string
	Plural   string

	Client api.Mutator
	Rows   *Collection[T]
	// Project turns a server record into a row. A failure leaves the local
	// rows untouched and asks for a refresh instead.
	Project func(api.Record) (T, error)
	// Describe names a row in success messages.
	Describe func(T) string
	// Labels overrides DefaultLabels for error summaries.
	Labels map[string]string

	Notify  Notifier
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
	Workers int
	// Refresh requests an immediate poll.
	Refresh func()
}

// Coordinator performs create, update and delete for one page and keeps the
// page's rows consistent without waiting for the next poll.
type Coordinator[T any] struct {
	opts   Options[T]
	logger *slog.Logger
}

// BulkResult reports the outcome of a bulk delete.
type BulkResult struct {
	Deleted []string
	Failed  map[string]error
}

// NewCoordinator validates opts.
func NewCoordinator[T any](opts Options[T]) (*Coordinator[T], error) {
	if opts.Resource == "" {
		return nil, fmt.Errorf("mutate: resource required")
	}
	if opts.Client == nil || opts.Rows == nil || opts.Project == nil {
		return nil, fmt.Errorf("mutate %s: client, rows and project are required", opts.Resource)
	}
	if opts.Singular == "" {
		opts.Singular = strings.TrimSuffix(opts.Resource, "s")
	}
	if opts.Plural == "" {
		opts.Plural = opts.Singular + "s"
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Notify == nil {
		opts.Notify = discard{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator[T]{
		opts:   opts,
		logger: logger.With("component", "mutate", "resource", opts.Resource),
	}, nil
}

// Rows returns the collection the coordinator maintains.
func (c *Coordinator[T]) Rows() *Collection[T] { return c.opts.Rows }

// Create posts payload and appends the created row locally. On failure the
// user is notified and the error is returned so a form can show field errors.
func (c *Coordinator[T]) Create(ctx context.Context, payload any) (T, error) {
	rec, err := c.opts.Client.Create(ctx, c.opts.Resource, payload)
	c.opts.Metrics.Mutation(ctx, c.opts.Resource, "create", err)
	if err != nil {
		c.fail("Create Failed", "Unable to save "+c.opts.Singular+" to server", err)
		var zero T
		return zero, fmt.Errorf("create %s: %w", c.opts.Singular, err)
	}
	row, ok := c.project(rec)
	if ok {
		c.opts.Rows.Upsert(row)
		c.opts.Notify.Success(title(c.opts.Singular, "Added"), c.describe(row)+" added successfully")
	} else {
		c.opts.Notify.Success(title(c.opts.Singular, "Added"), title(c.opts.Singular, "added successfully"))
	}
	return row, nil
}

// Update puts payload to id and replaces the matching row locally.
func (c *Coordinator[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	rec, err := c.opts.Client.Update(ctx, c.opts.Resource, id, payload)
	c.opts.Metrics.Mutation(ctx, c.opts.Resource, "update", err)
	if err != nil {
		c.fail("Update Failed", "Unable to update "+c.opts.Singular+" on server", err)
		var zero T
		return zero, fmt.Errorf("update %s %s: %w", c.opts.Singular, id, err)
	}
	row, ok := c.project(rec)
	if ok {
		c.opts.Rows.Upsert(row)
		c.opts.Notify.Success(title(c.opts.Singular, "Updated"), c.describe(row)+" updated")
	} else {
		c.opts.Notify.Success(title(c.opts.Singular, "Updated"), title(c.opts.Singular, "updated"))
	}
	return row, nil
}

// Delete removes id. It refuses to run without a confirmation ticket.
func (c *Coordinator[T]) Delete(ctx context.Context, ticket confirm.Ticket, id string) error {
	if err := confirm.Require(ticket); err != nil {
		return err
	}
	name := id
	if row, ok := c.opts.Rows.Find(id); ok {
		name = c.describe(row)
	}
	err := c.opts.Client.Delete(ctx, c.opts.Resource, id)
	c.opts.Metrics.Mutation(ctx, c.opts.Resource, "delete", err)
	if err != nil {
		c.fail("Delete Failed", "Unable to delete "+c.opts.Singular+" from server", err)
		return fmt.Errorf("delete %s %s: %w", c.opts.Singular, id, err)
	}
	c.opts.Rows.Remove(id)
	c.opts.Notify.Success(title(c.opts.Singular, "Deleted"), name+" removed")
	return nil
}

// BulkDelete issues one delete per id concurrently and waits for all of them.
// Ids that were deleted are removed locally whatever happened to the others;
// nothing is rolled back. Individual failures are reported in the result and
// through one notification, never as an error: the only error is a missing
// ticket.
func (c *Coordinator[T]) BulkDelete(ctx context.Context, ticket confirm.Ticket, ids []string) (BulkResult, error) {
	if err := confirm.Require(ticket); err != nil {
		return BulkResult{}, err
	}
	res := BulkResult{Failed: make(map[string]error)}
	if len(ids) == 0 {
		return res, nil
	}

	type outcome struct {
		id  string
		err error
	}
	workers := c.opts.Workers
	if workers > len(ids) {
		workers = len(ids)
	}
	p := pool.NewWithResults[outcome]().WithMaxGoroutines(workers)
	for _, id := range ids {
		p.Go(func() outcome {
			err := c.opts.Client.Delete(ctx, c.opts.Resource, id)
			c.opts.Metrics.Mutation(ctx, c.opts.Resource, "delete", err)
			return outcome{id: id, err: err}
		})
	}
	for _, o := range p.Wait() {
		if o.err != nil {
			res.Failed[o.id] = o.err
			continue
		}
		res.Deleted = append(res.Deleted, o.id)
	}

	c.opts.Rows.Remove(res.Deleted...)
	if len(res.Failed) > 0 {
		c.logger.Warn("bulk delete partially failed",
			"deleted", len(res.Deleted),
			"failed", len(res.Failed),
		)
		c.opts.Notify.Error("Bulk Delete Failed", "Unable to delete some "+c.opts.Plural)
		return res, nil
	}
	c.opts.Notify.Success(title(c.opts.Plural, "Deleted"), fmt.Sprintf("%d %s removed", len(res.Deleted), c.opts.Plural))
	return res, nil
}

func (c *Coordinator[T]) project(rec api.Record) (T, bool) {
	row, err := c.opts.Project(rec)
	if err == nil && len(rec) > 0 {
		return row, true
	}
	c.logger.Warn("mutation response not usable, refreshing", "error", err)
	if c.opts.Refresh != nil {
		c.opts.Refresh()
	}
	var zero T
	return zero, false
}

func (c *Coordinator[T]) describe(row T) string {
	if c.opts.Describe != nil {
		if s := strings.TrimSpace(c.opts.Describe(row)); s != "" {
			return s
		}
	}
	return title(c.opts.Singular, "")
}

// fail notifies the user. Validation errors get the field summary; other
// failures get the generic message.
func (c *Coordinator[T]) fail(heading, generic string, err error) {
	c.logger.Warn("mutation failed", "error", err)
	if fields := api.FieldErrors(err); len(fields) > 0 {
		c.opts.Notify.Error(heading, Summary(fields, c.opts.Labels))
		return
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if detail := httpErr.Detail(); detail != "" {
			c.opts.Notify.Error(heading, generic+": "+detail)
			return
		}
	}
	c.opts.Notify.Error(heading, generic)
}

// title capitalises noun and appends suffix: title("supplier", "Added") is
// "Supplier Added".
func title(noun, suffix string) string {
	words := strings.Fields(strings.ReplaceAll(noun, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	out := strings.Join(words, " ")
	if suffix != "" {
		out += " " + suffix
	}
	return out
}

type discard struct{}

func (discard) Success(string, string) {}
func (discard) Error(string, string)   {}
