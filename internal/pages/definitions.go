package pages

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/entity"
)

// slowInterval is the cadence of collections that change rarely.
const slowInterval = 30 * time.Second

var idColumn = Column{Title: "ID", Width: 6}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func money(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return entity.Money(d)
}

func assetsFrom(refs Refs) []entity.Asset {
	return decodeRefs[entity.Asset](refs, "assets", entity.AssetSpec)
}

func assetsDef() Definition[entity.Asset] {
	return Definition[entity.Asset]{
		Kind: entity.AssetKind,
		Spec: entity.AssetSpec,
		Refs: []string{"categories", "locations", "suppliers", "users", "assignments"},
		Columns: []Column{
			idColumn, {"Name", 24}, {"Category", 16}, {"Status", 12},
			{"Location", 16}, {"Assigned To", 18}, {"Cost", 16},
		},
		Cells: func(a entity.Asset, refs Refs) []string {
			return []string{
				a.ID, a.Name, refs.Name("categories", a.CategoryID), orDash(a.Status),
				refs.Name("locations", a.LocationID), refs.Assignee(a.ID),
				money(a.PurchaseCost),
			}
		},
		Stats: func(rows []entity.Asset, refs Refs, _ time.Time) []entity.Stat {
			return entity.AssetStats(rows, decodeRefs[entity.Assignment](refs, "assignments", entity.AssignmentSpec))
		},
	}
}

func usersDef() Definition[entity.User] {
	return Definition[entity.User]{
		Kind: entity.UserKind,
		Spec: entity.UserSpec,
		Columns: []Column{
			idColumn, {"Name", 22}, {"Email", 26}, {"Phone", 16},
			{"Department", 16}, {"Position", 16}, {"Status", 10},
		},
		Cells: func(u entity.User, _ Refs) []string {
			return []string{u.ID, u.Name, orDash(u.Email), orDash(u.Phone), orDash(u.Department), orDash(u.Occupation), orDash(u.Status)}
		},
		Stats: func(rows []entity.User, _ Refs, _ time.Time) []entity.Stat {
			return entity.UserStats(rows)
		},
	}
}

func assignmentsDef() Definition[entity.Assignment] {
	return Definition[entity.Assignment]{
		Kind: entity.AssignmentKind,
		Spec: entity.AssignmentSpec,
		Refs: []string{"assets", "users"},
		Columns: []Column{
			idColumn, {"Asset", 22}, {"User", 20}, {"Assigned", 12},
			{"Return", 12}, {"Status", 10}, {"Approved By", 16},
		},
		Cells: func(a entity.Assignment, refs Refs) []string {
			return []string{
				a.ID, refs.Name("assets", a.AssetID), refs.Name("users", a.UserID),
				orDash(entity.Day(a.AssignedDate)), orDash(entity.Day(a.ReturnDate)),
				orDash(a.Status), orDash(a.ApprovedBy),
			}
		},
		Stats: func(rows []entity.Assignment, _ Refs, now time.Time) []entity.Stat {
			return entity.AssignmentStats(rows, now)
		},
	}
}

func maintenanceDef(env *Env) Definition[entity.Maintenance] {
	def := Definition[entity.Maintenance]{
		Kind: entity.MaintenanceKind,
		Spec: entity.MaintenanceSpec,
		Refs: []string{"assets", "maintenance-staff"},
		Columns: []Column{
			idColumn, {"Asset", 22}, {"Date", 12}, {"Description", 28},
			{"Cost", 14}, {"Staff", 18}, {"Performed By", 16},
		},
		Cells: func(m entity.Maintenance, refs Refs) []string {
			return []string{
				m.ID, refs.Name("assets", m.AssetID), orDash(entity.Day(m.Date)), orDash(m.Description),
				money(m.Cost), refs.Name("maintenance-staff", m.StaffID), orDash(m.PerformedBy),
			}
		},
		Stats: func(rows []entity.Maintenance, _ Refs, now time.Time) []entity.Stat {
			return entity.MaintenanceStats(rows, now)
		},
	}
	if cache := env.Cache; cache != nil {
		log := env.logger().With("component", "localcache")
		def.Seed = func() []api.Record {
			recs, err := cache.Load()
			if err != nil {
				log.Warn("maintenance cache unreadable", "path", cache.Path(), "error", err)
			}
			return recs
		}
		def.Saved = func(recs []api.Record) {
			if err := cache.Save(recs); err != nil {
				log.Warn("maintenance cache not saved", "path", cache.Path(), "error", err)
			}
		}
	}
	return def
}

func staffDef() Definition[entity.Staff] {
	return Definition[entity.Staff]{
		Kind: entity.StaffKind,
		Spec: entity.StaffSpec,
		Refs: []string{"maintenance"},
		Columns: []Column{
			idColumn, {"Name", 22}, {"Phone", 16}, {"Email", 26}, {"Specialization", 20},
		},
		Cells: func(s entity.Staff, _ Refs) []string {
			return []string{s.ID, s.Name, orDash(s.Phone), orDash(s.Email), orDash(s.Specialization)}
		},
		Stats: func(rows []entity.Staff, refs Refs, now time.Time) []entity.Stat {
			return entity.StaffStats(rows, decodeRefs[entity.Maintenance](refs, "maintenance", entity.MaintenanceSpec), now)
		},
	}
}

func disposalsDef() Definition[entity.Disposal] {
	return Definition[entity.Disposal]{
		Kind: entity.DisposalKind,
		Spec: entity.DisposalSpec,
		Refs: []string{"assets", "buyers"},
		Columns: []Column{
			idColumn, {"Asset", 22}, {"Date", 12}, {"Value", 14}, {"Buyer", 18}, {"Reason", 28},
		},
		Cells: func(d entity.Disposal, refs Refs) []string {
			return []string{
				d.ID, refs.Name("assets", d.AssetID), orDash(entity.Day(d.Date)),
				money(d.Value), refs.Name("buyers", d.BuyerID), orDash(d.Reason),
			}
		},
		Stats: func(rows []entity.Disposal, _ Refs, _ time.Time) []entity.Stat {
			return entity.DisposalStats(rows)
		},
	}
}

func valuationsDef() Definition[entity.Valuation] {
	return Definition[entity.Valuation]{
		Kind:     entity.ValuationKind,
		Spec:     entity.ValuationSpec,
		Interval: slowInterval,
		Refs:     []string{"assets"},
		Columns: []Column{
			idColumn, {"Asset", 22}, {"Date", 12}, {"Method", 18}, {"Initial", 16}, {"Current", 16},
		},
		Cells: func(v entity.Valuation, refs Refs) []string {
			return []string{
				v.ID, refs.Name("assets", v.AssetID), orDash(entity.Day(v.Date)), orDash(v.Method),
				money(v.InitialValue), money(v.CurrentValue),
			}
		},
		Stats: func(rows []entity.Valuation, _ Refs, now time.Time) []entity.Stat {
			return entity.ValuationStats(rows, now)
		},
	}
}

func suppliersDef() Definition[entity.Supplier] {
	return Definition[entity.Supplier]{
		Kind:     entity.SupplierKind,
		Spec:     entity.SupplierSpec,
		Interval: slowInterval,
		Refs:     []string{"assets"},
		Columns: []Column{
			idColumn, {"Name", 24}, {"Phone", 16}, {"Email", 26}, {"Address", 28},
		},
		Cells: func(s entity.Supplier, _ Refs) []string {
			return []string{s.ID, s.Name, orDash(s.Phone), orDash(s.Email), orDash(s.Address)}
		},
		Stats: func(rows []entity.Supplier, refs Refs, now time.Time) []entity.Stat {
			return entity.SupplierStats(rows, assetsFrom(refs), now)
		},
	}
}

func locationsDef() Definition[entity.Location] {
	return Definition[entity.Location]{
		Kind: entity.LocationKind,
		Spec: entity.LocationSpec,
		Refs: []string{"assets"},
		Columns: []Column{
			idColumn, {"Name", 24}, {"Postal Address", 24}, {"Geographical Location", 26},
		},
		Cells: func(l entity.Location, _ Refs) []string {
			return []string{l.ID, l.Label(), orDash(l.PostalAddress), orDash(l.GeographicalLocation)}
		},
		Stats: func(rows []entity.Location, refs Refs, now time.Time) []entity.Stat {
			return entity.LocationStats(rows, assetsFrom(refs), now)
		},
	}
}

func categoriesDef() Definition[entity.Category] {
	return Definition[entity.Category]{
		Kind: entity.CategoryKind,
		Spec: entity.CategorySpec,
		Refs: []string{"assets"},
		Columns: []Column{
			idColumn, {"Name", 24}, {"Description", 40},
		},
		Cells: func(c entity.Category, _ Refs) []string {
			return []string{c.ID, c.Name, orDash(c.Description)}
		},
		Stats: func(rows []entity.Category, refs Refs, now time.Time) []entity.Stat {
			return entity.CategoryStats(rows, assetsFrom(refs), now)
		},
	}
}

func buyersDef() Definition[entity.Buyer] {
	return Definition[entity.Buyer]{
		Kind: entity.BuyerKind,
		Spec: entity.BuyerSpec,
		Columns: []Column{
			idColumn, {"Name", 24}, {"Phone", 16}, {"Email", 26}, {"TIN", 14},
		},
		Cells: func(b entity.Buyer, _ Refs) []string {
			return []string{b.ID, b.Name, orDash(b.Phone), orDash(b.Email), orDash(b.TIN)}
		},
		Stats: func(rows []entity.Buyer, _ Refs, _ time.Time) []entity.Stat {
			return entity.BuyerStats(rows)
		},
	}
}

func resource[T entity.Row](env *Env, def Definition[T]) (Page, error) {
	r, err := NewResource(env, def)
	if err != nil {
		return nil, fmt.Errorf("build %s page: %w", def.Kind.Resource, err)
	}
	return r, nil
}

// All builds every page in navigation order.
func All(env *Env) ([]Page, error) {
	builders := []func() (Page, error){
		func() (Page, error) { return resource(env, assetsDef()) },
		func() (Page, error) { return resource(env, usersDef()) },
		func() (Page, error) { return resource(env, assignmentsDef()) },
		func() (Page, error) { return resource(env, maintenanceDef(env)) },
		func() (Page, error) { return resource(env, staffDef()) },
		func() (Page, error) { return resource(env, disposalsDef()) },
		func() (Page, error) { return resource(env, valuationsDef()) },
		func() (Page, error) { return resource(env, suppliersDef()) },
		func() (Page, error) { return resource(env, locationsDef()) },
		func() (Page, error) { return resource(env, categoriesDef()) },
		func() (Page, error) { return resource(env, buyersDef()) },
	}
	out := []Page{NewDashboard(env)}
	for _, build := range builders {
		p, err := build()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return append(out, NewStatistics(env)), nil
}
