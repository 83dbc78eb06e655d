package mutate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/confirm"
)

type supplier struct {
	ID   string
	Name string
}

func supplierID(s supplier) string { return s.ID }

func projectSupplier(rec api.Record) (supplier, error) {
	id, ok := rec["supplier_id"]
	if !ok {
		return supplier{}, errors.New("missing supplier_id")
	}
	name, _ := rec["name"].(string)
	return supplier{ID: fmt.Sprint(id), Name: name}, nil
}

type fakeMutator struct {
	mu        sync.Mutex
	createRec api.Record
	createErr error
	updateRec api.Record
	updateErr error
	deleteErr map[string]error
	deleted   []string
}

func (f *fakeMutator) Create(_ context.Context, _ string, _ any) (api.Record, error) {
	return f.createRec, f.createErr
}

func (f *fakeMutator) Update(_ context.Context, _, _ string, _ any) (api.Record, error) {
	return f.updateRec, f.updateErr
}

func (f *fakeMutator) Delete(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr[id]
}

type note struct {
	ok          bool
	title, body string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recordingNotifier) Success(title, msg string) { r.add(note{true, title, msg}) }
func (r *recordingNotifier) Error(title, msg string)   { r.add(note{false, title, msg}) }

func (r *recordingNotifier) add(n note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, m *fakeMutator) (*Coordinator[supplier], *recordingNotifier, *testclock.Clock) {
	t.Helper()
	clk := testclock.NewClock(epoch)
	rows := NewCollection(supplierID, clk)
	rows.Apply([]supplier{{"1", "Acme"}, {"2", "Globex"}, {"3", "Initech"}}, epoch.Add(-time.Minute))
	n := &recordingNotifier{}
	c, err := NewCoordinator(Options[supplier]{
		Resource: "suppliers",
		Singular: "supplier",
		Client:   m,
		Rows:     rows,
		Project:  projectSupplier,
		Describe: func(s supplier) string { return s.Name },
		Notify:   n,
	})
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}
	return c, n, clk
}

func ticket(t *testing.T) confirm.Ticket {
	t.Helper()
	g := confirm.New()
	var tk confirm.Ticket
	_ = g.Prompt(confirm.Prompt{}, func(_ context.Context, got confirm.Ticket) error {
		tk = got
		return nil
	})
	if err := g.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	return tk
}

func TestCreate_AppendsProjectedRowWithoutPoll(t *testing.T) {
	m := &fakeMutator{createRec: api.Record{"supplier_id": float64(4), "name": "Umbrella"}}
	c, n, _ := newFixture(t, m)
	before := c.Rows().Len()

	got, err := c.Create(context.Background(), map[string]any{"name": "Umbrella"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.Rows().Len() != before+1 {
		t.Fatalf("Len = %d, want %d", c.Rows().Len(), before+1)
	}
	row, ok := c.Rows().Find("4")
	if !ok || row != got || row.Name != "Umbrella" {
		t.Fatalf("Find(4) = %+v, %v, want projected row %+v", row, ok, got)
	}
	if last := n.last(); !last.ok || last.title != "Supplier Added" || last.body != "Umbrella added successfully" {
		t.Fatalf("notification = %+v", last)
	}
}

func TestCreate_ValidationErrorIsReturnedAndSummarised(t *testing.T) {
	httpErr := &api.HTTPError{Method: "POST", Path: "/api/suppliers/", Status: 400, Fields: map[string][]string{
		"name":  {"This field is required."},
		"email": {"Enter a valid email address."},
	}}
	c, n, _ := newFixture(t, &fakeMutator{createErr: httpErr})

	_, err := c.Create(context.Background(), map[string]any{})
	if err == nil {
		t.Fatalf("Create returned nil error")
	}
	fields := api.FieldErrors(err)
	if len(fields["name"]) != 1 {
		t.Fatalf("FieldErrors = %v, want name error preserved through wrapping", fields)
	}
	want := "Email: Enter a valid email address. | Name: This field is required."
	if last := n.last(); last.ok || last.title != "Create Failed" || last.body != want {
		t.Fatalf("notification = %+v, want error with %q", last, want)
	}
	if c.Rows().Len() != 3 {
		t.Fatalf("Len = %d after failed create, want 3", c.Rows().Len())
	}
}

func TestCreate_RawBodyFallback(t *testing.T) {
	httpErr := &api.HTTPError{Status: 500, Body: "Server Error"}
	c, n, _ := newFixture(t, &fakeMutator{createErr: httpErr})
	if _, err := c.Create(context.Background(), nil); !api.IsStatus(err, 500) {
		t.Fatalf("Create error = %v, want status 500", err)
	}
	if last := n.last(); !strings.HasSuffix(last.body, "Server Error") {
		t.Fatalf("notification body = %q, want raw body", last.body)
	}
}

func TestCreate_UnusableResponseRefreshes(t *testing.T) {
	refreshed := 0
	m := &fakeMutator{createRec: api.Record{}}
	clk := testclock.NewClock(epoch)
	c, err := NewCoordinator(Options[supplier]{
		Resource: "suppliers",
		Client:   m,
		Rows:     NewCollection(supplierID, clk),
		Project:  projectSupplier,
		Refresh:  func() { refreshed++ },
	})
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}
	if _, err := c.Create(context.Background(), nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.Rows().Len() != 0 || refreshed != 1 {
		t.Fatalf("Len = %d refreshed = %d, want 0 and 1", c.Rows().Len(), refreshed)
	}
}

func TestUpdate_ReplacesRowByID(t *testing.T) {
	m := &fakeMutator{updateRec: api.Record{"supplier_id": "2", "name": "Globex Corp"}}
	c, _, _ := newFixture(t, m)
	if _, err := c.Update(context.Background(), "2", nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	row, _ := c.Rows().Find("2")
	if row.Name != "Globex Corp" || c.Rows().Len() != 3 {
		t.Fatalf("row = %+v len = %d, want renamed row and unchanged length", row, c.Rows().Len())
	}
}

func TestDelete_RequiresTicket(t *testing.T) {
	m := &fakeMutator{}
	c, _, _ := newFixture(t, m)
	if err := c.Delete(context.Background(), confirm.Ticket{}, "1"); !errors.Is(err, confirm.ErrNotConfirmed) {
		t.Fatalf("Delete without ticket = %v, want ErrNotConfirmed", err)
	}
	if _, err := c.BulkDelete(context.Background(), confirm.Ticket{}, []string{"1"}); !errors.Is(err, confirm.ErrNotConfirmed) {
		t.Fatalf("BulkDelete without ticket = %v, want ErrNotConfirmed", err)
	}
	if len(m.deleted) != 0 {
		t.Fatalf("delete requests issued without confirmation: %v", m.deleted)
	}
}

func TestDelete_RemovesRowAndNotifies(t *testing.T) {
	c, n, _ := newFixture(t, &fakeMutator{})
	if err := c.Delete(context.Background(), ticket(t), "1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := c.Rows().Find("1"); ok {
		t.Fatalf("row 1 still present after delete")
	}
	if last := n.last(); last.title != "Supplier Deleted" || last.body != "Acme removed" {
		t.Fatalf("notification = %+v", last)
	}
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	m := &fakeMutator{deleteErr: map[string]error{"1": &api.HTTPError{Status: 409}}}
	c, n, _ := newFixture(t, m)
	if err := c.Delete(context.Background(), ticket(t), "1"); !api.IsStatus(err, 409) {
		t.Fatalf("Delete = %v, want status 409", err)
	}
	if _, ok := c.Rows().Find("1"); !ok {
		t.Fatalf("row 1 removed despite failure")
	}
	if last := n.last(); last.ok || last.title != "Delete Failed" {
		t.Fatalf("notification = %+v", last)
	}
}

func TestBulkDelete_PartialFailure(t *testing.T) {
	m := &fakeMutator{deleteErr: map[string]error{"2": errors.New("connection reset")}}
	c, n, _ := newFixture(t, m)

	res, err := c.BulkDelete(context.Background(), ticket(t), []string{"1", "2", "3"})
	if err != nil {
		t.Fatalf("BulkDelete returned error: %v", err)
	}
	if len(res.Deleted) != 2 || len(res.Failed) != 1 || res.Failed["2"] == nil {
		t.Fatalf("BulkDelete = %+v, want 2 deleted and 1 failed", res)
	}
	rows := c.Rows().Rows()
	if len(rows) != 1 || rows[0].ID != "2" {
		t.Fatalf("rows = %+v, want only the failed id left", rows)
	}
	if last := n.last(); last.ok || last.title != "Bulk Delete Failed" || last.body != "Unable to delete some suppliers" {
		t.Fatalf("notification = %+v", last)
	}
	if len(m.deleted) != 3 {
		t.Fatalf("delete requests = %d, want 3", len(m.deleted))
	}
}

func TestCollection_ApplyReplaysOnlyNewerOptimisticEdits(t *testing.T) {
	clk := testclock.NewClock(epoch)
	rows := NewCollection(supplierID, clk)
	rows.Apply([]supplier{{"1", "Acme"}}, epoch)

	clk.Advance(time.Second)
	rows.Upsert(supplier{"2", "Globex"})
	rows.Remove("1")

	// A snapshot requested before the edits settled could not include them.
	rows.Apply([]supplier{{"1", "Acme"}}, epoch.Add(500*time.Millisecond))
	got := rows.Rows()
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("rows = %+v, want optimistic edits replayed", got)
	}
	if rows.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", rows.Pending())
	}

	// A snapshot requested afterwards is authoritative.
	rows.Apply([]supplier{{"1", "Acme"}}, epoch.Add(2*time.Second))
	got = rows.Rows()
	if len(got) != 1 || got[0].ID != "1" || rows.Pending() != 0 {
		t.Fatalf("rows = %+v pending = %d, want snapshot verbatim", got, rows.Pending())
	}
}

func TestCollection_PendingEditsStayBounded(t *testing.T) {
	clk := testclock.NewClock(epoch)
	rows := NewCollection(supplierID, clk)

	// Repeated edits of one row keep a single pending entry.
	for i := range 10 {
		rows.Upsert(supplier{"1", fmt.Sprintf("Acme %d", i)})
	}
	if rows.Pending() != 1 {
		t.Fatalf("Pending = %d after editing one row, want 1", rows.Pending())
	}

	// Without snapshots the count is capped.
	for i := range maxPending + 50 {
		rows.Upsert(supplier{fmt.Sprint(i + 100), "Row"})
	}
	if rows.Pending() != maxPending {
		t.Fatalf("Pending = %d, want cap %d", rows.Pending(), maxPending)
	}
	if rows.Len() != maxPending+51 {
		t.Fatalf("Len = %d, want every optimistic row still shown", rows.Len())
	}

	// Old edits expire once a newer one settles.
	clk.Advance(maxPendingAge + time.Second)
	rows.Remove("1")
	if rows.Pending() != 1 {
		t.Fatalf("Pending = %d after expiry, want only the newest edit", rows.Pending())
	}
}

func TestSummaryAndFirstInvalid(t *testing.T) {
	errs := map[string][]string{
		"return_date": {"Date must be after assigned date."},
		"user":        {"Invalid pk \"9\" - object does not exist."},
		"cost_centre": {"Unknown."},
	}
	got := Summary(errs, nil)
	want := "Cost Centre: Unknown. | Return Date: Date must be after assigned date. | User: Invalid pk \"9\" - object does not exist."
	if got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
	if f := FirstInvalid(errs, []string{"asset", "user", "return_date"}); f != "user" {
		t.Fatalf("FirstInvalid = %q, want user", f)
	}
	if f := FirstInvalid(errs, nil); f != "cost_centre" {
		t.Fatalf("FirstInvalid without priority = %q, want cost_centre", f)
	}
	if f := FirstInvalid(nil, []string{"name"}); f != "" {
		t.Fatalf("FirstInvalid(nil) = %q, want empty", f)
	}
	if l := Label("name", map[string]string{"name": "Supplier Name"}); l != "Supplier Name" {
		t.Fatalf("Label override = %q", l)
	}
}
