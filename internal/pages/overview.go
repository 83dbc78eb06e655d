package pages

import (
	"context"
	"sync"
	"time"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/confirm"
	"github.com/five82/ams/internal/entity"
	"github.com/five82/ams/internal/mutate"
)

const (
	categoryReport  = "reports/assets-by-category"
	histogramReport = "reports/valuation-histogram"
	salesReport     = "reports/sales"
)

// overview is a read-only page aggregating several collections.
type overview struct {
	name  string
	title string
	env   *Env
	feeds *feeds
	// primary decides Loading and Err for the whole page.
	primary *feed
	render  func(refs Refs, now time.Time) View

	mu     sync.Mutex
	refs   Refs
	cancel context.CancelFunc
}

func newOverview(env *Env, name, title string) *overview {
	return &overview{name: name, title: title, env: env, feeds: &feeds{env: env}}
}

func (o *overview) watch(resource, url string, interval time.Duration) *feed {
	return o.feeds.add(resource, url, interval, func(s snapshot) {
		o.mu.Lock()
		o.refs = o.refs.with(resource, s.Data)
		o.mu.Unlock()
	})
}

func (o *overview) Name() string     { return o.name }
func (o *overview) Title() string    { return o.title }
func (o *overview) Singular() string { return o.name }
func (o *overview) Plural() string   { return o.name }
func (o *overview) Editable() bool   { return false }

func (o *overview) Mount(ctx context.Context) error {
	o.mu.Lock()
	if o.cancel != nil {
		o.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	if err := o.feeds.start(ctx); err != nil {
		o.Unmount()
		return err
	}
	return nil
}

func (o *overview) Unmount() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()
	if cancel == nil {
		return
	}
	o.feeds.stop()
	cancel()
}

func (o *overview) SetPaused(paused bool) { o.feeds.setPaused(paused) }
func (o *overview) Refresh()              { o.feeds.refresh() }

func (o *overview) View() View {
	o.mu.Lock()
	refs := o.refs
	o.mu.Unlock()

	v := o.render(refs, o.env.now())
	v.Title = o.title
	st := o.primary.snapshot()
	v.Loading = st.Loading && !refs.Loaded(o.primary.name)
	v.Err = st.Err
	v.UpdatedAt = st.UpdatedAt
	return v
}

func (o *overview) Form(string) (Form, error) { return Form{}, ErrReadOnly }

func (o *overview) Submit(context.Context, string, map[string]string) error { return ErrReadOnly }

func (o *overview) Delete(context.Context, confirm.Ticket, string) error { return ErrReadOnly }

func (o *overview) BulkDelete(context.Context, confirm.Ticket, []string) (mutate.BulkResult, error) {
	return mutate.BulkResult{}, ErrReadOnly
}

func (o *overview) Describe(id string) string { return id }

func figures(refs Refs) entity.Figures {
	return entity.Figures{
		Assets:      assetsFrom(refs),
		Users:       decodeRefs[entity.User](refs, "users", entity.UserSpec),
		Assignments: decodeRefs[entity.Assignment](refs, "assignments", entity.AssignmentSpec),
		Maintenance: decodeRefs[entity.Maintenance](refs, "maintenance", entity.MaintenanceSpec),
		Valuations:  decodeRefs[entity.Valuation](refs, "valuations", entity.ValuationSpec),
	}
}

// NewDashboard returns the landing page: headline counts and the most
// recently added assets.
func NewDashboard(env *Env) Page {
	o := newOverview(env, "dashboard", "Dashboard")
	o.primary = o.watch("assets", api.CollectionPath("assets"), env.Intervals.Poll)
	for _, res := range []string{"users", "assignments", "maintenance", "categories"} {
		o.watch(res, api.CollectionPath(res), env.Intervals.Poll)
	}
	o.render = func(refs Refs, _ time.Time) View {
		f := figures(refs)
		recent := entity.RecentAssets(f.Assets, 3)
		rows := make([]Row, 0, len(recent))
		for _, a := range recent {
			rows = append(rows, Row{ID: a.ID, Cells: []string{
				a.Name, refs.Name("categories", a.CategoryID), orDash(a.Status), orDash(entity.Day(a.PurchaseDate)),
			}})
		}
		return View{
			Stats:   entity.DashboardStats(f),
			Columns: []Column{{"Name", 26}, {"Category", 18}, {"Status", 12}, {"Purchase Date", 14}},
			Rows:    rows,
		}
	}
	return o
}

// NewStatistics returns the reports page. Category counts come from the
// server report when it answers and are computed from assets otherwise.
func NewStatistics(env *Env) Page {
	o := newOverview(env, "statistics", "Statistics")
	o.primary = o.watch("assets", api.CollectionPath("assets"), env.Intervals.Poll)
	o.watch("assignments", api.CollectionPath("assignments"), env.Intervals.Poll)
	o.watch("maintenance", api.CollectionPath("maintenance"), env.Intervals.Poll)
	o.watch("valuations", api.CollectionPath("valuations"), slowInterval)
	o.watch("categories", api.CollectionPath("categories"), env.Intervals.Lookup)
	o.watch(categoryReport, api.CollectionPath(categoryReport), env.Intervals.Stats)
	o.watch(histogramReport, api.CollectionPath(histogramReport), env.Intervals.Stats)
	o.watch(salesReport, api.CollectionPath(salesReport), env.Intervals.Stats).fetch = fetchObject(env.Client)

	o.render = func(refs Refs, now time.Time) View {
		f := figures(refs)
		byCategory := Section{Title: "Assets by Category"}
		if refs.Loaded(categoryReport) {
			byCategory.Buckets = entity.ReportBuckets(refs.Records(categoryReport))
		} else if f.Assets != nil {
			byCategory.Buckets = entity.CategoryBuckets(f.Assets, refs.Lookup("categories"))
			byCategory.Note = "Computed from asset list"
		}
		histogram := Section{Title: "Valuation Histogram"}
		if refs.Loaded(histogramReport) {
			histogram.Buckets = entity.ReportBuckets(refs.Records(histogramReport))
		} else {
			histogram.Note = "Report unavailable"
		}
		byYear, byQuarter := salesSections(refs)
		return View{
			Stats:    entity.StatisticsStats(f, now),
			Sections: []Section{byCategory, histogram, byYear, byQuarter},
		}
	}
	return o
}

// salesSections renders the disposal sales report as yearly and quarterly
// breakdowns, with the grand total on the yearly one.
func salesSections(refs Refs) (Section, Section) {
	byYear := Section{Title: "Sales by Year"}
	byQuarter := Section{Title: "Sales by Quarter"}
	if !refs.Loaded(salesReport) {
		byYear.Note = "Report unavailable"
		byQuarter.Note = "Report unavailable"
		return byYear, byQuarter
	}
	var sales entity.Sales
	if recs := refs.Records(salesReport); len(recs) > 0 {
		sales = entity.DecodeSales(recs[0])
	}
	byYear.Buckets = sales.YearBuckets()
	byQuarter.Buckets = sales.QuarterBuckets()
	if len(sales.Yearly) == 0 {
		byYear.Note = "No sales recorded"
	} else {
		byYear.Note = "Total sales: " + entity.Money(sales.Total())
	}
	if len(sales.Quarterly) == 0 {
		byQuarter.Note = "No sales recorded"
	}
	return byYear, byQuarter
}
