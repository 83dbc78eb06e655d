package pages

import (
	"sort"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/reconcile"
)

// currentAssignment reduces an assignment history to one record per asset.
var currentAssignment = reconcile.CurrentSpec{
	Foreign:  []string{"asset", "asset_id", "assetId"},
	Status:   []string{"status"},
	Date:     []string{"assigned_date"},
	Terminal: []string{"returned", "returned_on", "completed"},
}

// Refs is an immutable view of a page's reference snapshots.
type Refs struct {
	records map[string][]api.Record
	lookups map[string]reconcile.Lookup
	current map[string]api.Record
}

// with returns a copy of r with resource replaced by recs.
func (r Refs) with(resource string, recs []api.Record) Refs {
	next := Refs{
		records: make(map[string][]api.Record, len(r.records)+1),
		lookups: make(map[string]reconcile.Lookup, len(r.lookups)+1),
		current: r.current,
	}
	for k, v := range r.records {
		next.records[k] = v
	}
	for k, v := range r.lookups {
		next.lookups[k] = v
	}
	next.records[resource] = recs
	if spec, ok := entity.NameLookups[resource]; ok {
		next.lookups[resource] = reconcile.NewLookup(recs, spec)
	}
	if resource == "assignments" {
		next.current = reconcile.CurrentBy(recs, currentAssignment)
	}
	return next
}

// Name resolves id against resource. Unknown ids get a placeholder naming
// the id; an empty id is "-".
func (r Refs) Name(resource, id string) string {
	if l, ok := r.lookups[resource]; ok {
		return l.Name(id)
	}
	if id == "" {
		return "-"
	}
	return reconcile.NewLookup(nil, entity.NameLookups[resource]).Name(id)
}

// Records returns the last snapshot of resource, or nil before it arrives.
func (r Refs) Records(resource string) []api.Record {
	return r.records[resource]
}

// Loaded reports whether resource has reported at least once.
func (r Refs) Loaded(resource string) bool {
	_, ok := r.records[resource]
	return ok
}

// Assignee names the user currently holding asset, or "-".
func (r Refs) Assignee(assetID string) string {
	rec, ok := r.current[assetID]
	if !ok || !entity.IsOpenAssignment(reconcile.String(rec, "status")) {
		return "-"
	}
	return r.Name("users", reconcile.String(rec, "user", "user_id", "userId"))
}

// Options lists resource's records as id/name pairs sorted by name.
func (r Refs) Options(resource string) []Option {
	spec, ok := entity.NameLookups[resource]
	if !ok {
		return nil
	}
	recs := r.records[resource]
	out := make([]Option, 0, len(recs))
	for _, rec := range recs {
		id := reconcile.String(rec, spec.Key...)
		if id == "" {
			continue
		}
		out = append(out, Option{ID: id, Name: r.Name(resource, id)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func decodeRefs[T any](r Refs, resource string, spec reconcile.Spec) []T {
	recs := r.records[resource]
	if recs == nil {
		return nil
	}
	return reconcile.DecodeAll[T](recs, spec)
}

// Lookup returns the name index of resource; it is empty before the first
// snapshot.
func (r Refs) Lookup(resource string) reconcile.Lookup {
	if l, ok := r.lookups[resource]; ok {
		return l
	}
	return reconcile.NewLookup(nil, entity.NameLookups[resource])
}
