package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/reconcile"
)

// Stat is one aggregate card.
type Stat struct {
	Title    string
	Value    string
	Subtitle string
}

func stat(title string, n int, subtitle string) Stat {
	return Stat{Title: title, Value: strconv.Itoa(n), Subtitle: subtitle}
}

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
)

// IsActive reports a status of "active" in any case.
func IsActive(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "active")
}

// IsOpenAssignment reports whether an assignment still holds its asset.
func IsOpenAssignment(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "returned", "returned_on", "completed":
		return false
	}
	return true
}

// IsOverdue reports a return date in the past on an assignment that has not
// been returned.
func IsOverdue(a Assignment, now time.Time) bool {
	due := reconcile.ParseDate(a.ReturnDate)
	return !due.IsZero() && due.Before(now) && !strings.EqualFold(a.Status, "returned")
}

func within(date string, from, to time.Time) bool {
	t := reconcile.ParseDate(date)
	return !t.IsZero() && !t.Before(from) && !t.After(to)
}

func AssetStats(assets []Asset, assignments []Assignment) []Stat {
	active := 0
	cost := decimal.Zero
	for _, a := range assets {
		if IsActive(a.Status) {
			active++
		}
		cost = cost.Add(a.PurchaseCost)
	}
	held := make(map[string]struct{})
	for _, a := range assignments {
		if IsOpenAssignment(a.Status) && a.AssetID != "" {
			held[a.AssetID] = struct{}{}
		}
	}
	assigned := 0
	for _, a := range assets {
		if _, ok := held[a.ID]; ok {
			assigned++
		}
	}
	return []Stat{
		stat("Total Assets", len(assets), "All assets"),
		stat("Active", active, "Active assets"),
		stat("Inactive", len(assets)-active, "Inactive assets"),
		{Title: "Total Cost", Value: Money(cost), Subtitle: "All assets"},
		stat("Assigned", assigned, "Assets currently assigned"),
	}
}

func UserStats(users []User) []Stat {
	active, inactive := 0, 0
	departments := make(map[string]struct{})
	for _, u := range users {
		switch strings.ToLower(strings.TrimSpace(u.Status)) {
		case "active":
			active++
		case "inactive":
			inactive++
		}
		if d := strings.TrimSpace(u.Department); d != "" {
			departments[strings.ToLower(d)] = struct{}{}
		}
	}
	return []Stat{
		stat("Total Users", len(users), "All users"),
		stat("Active", active, "Active users"),
		stat("Inactive", inactive, "Inactive users"),
		stat("Departments", len(departments), "Unique departments"),
	}
}

func AssignmentStats(items []Assignment, now time.Time) []Stat {
	active, overdue, upcoming := 0, 0, 0
	for _, a := range items {
		if IsActive(a.Status) {
			active++
		}
		if IsOverdue(a, now) {
			overdue++
		}
		if within(a.ReturnDate, now, now.Add(week)) {
			upcoming++
		}
	}
	return []Stat{
		stat("Total Assignments", len(items), "All assignments"),
		stat("Active", active, "Currently assigned"),
		stat("Overdue", overdue, "Past return date"),
		stat("Upcoming Returns", upcoming, "Next 7 days"),
	}
}

func MaintenanceStats(items []Maintenance, now time.Time) []Stat {
	cost := decimal.Zero
	thisMonth := 0
	for _, m := range items {
		cost = cost.Add(m.Cost)
		t := reconcile.ParseDate(m.Date)
		if !t.IsZero() && t.Year() == now.Year() && t.Month() == now.Month() {
			thisMonth++
		}
	}
	return []Stat{
		stat("Total Records", len(items), "All maintenance"),
		{Title: "Total Cost", Value: Money(cost), Subtitle: "All maintenance"},
		stat("This Month", thisMonth, now.Format("January 2006")),
	}
}

func StaffStats(staff []Staff, maintenance []Maintenance, now time.Time) []Stat {
	skills := make(map[string]struct{})
	for _, s := range staff {
		if sp := strings.TrimSpace(s.Specialization); sp != "" {
			skills[strings.ToLower(sp)] = struct{}{}
		}
	}
	upcoming, assigned := 0, 0
	for _, m := range maintenance {
		if m.StaffID == "" {
			continue
		}
		assigned++
		if within(m.Date, now, now.Add(week)) && !strings.EqualFold(m.Status, "completed") {
			upcoming++
		}
	}
	return []Stat{
		stat("Total Staff", len(staff), "All technicians"),
		stat("Specializations", len(skills), "Unique skills"),
		stat("Upcoming Tasks", upcoming, "Assigned soon"),
		stat("Assigned Maint.", assigned, "Total assigned"),
	}
}

func DisposalStats(items []Disposal) []Stat {
	value := decimal.Zero
	buyers := make(map[string]struct{})
	for _, d := range items {
		value = value.Add(d.Value)
		if d.BuyerID != "" {
			buyers[d.BuyerID] = struct{}{}
		}
	}
	return []Stat{
		stat("Total Disposals", len(items), "All disposals"),
		{Title: "Total Value", Value: Money(value), Subtitle: "Disposal proceeds"},
		stat("Buyers", len(buyers), "Distinct buyers"),
	}
}

func ValuationStats(items []Valuation, now time.Time) []Stat {
	total := decimal.Zero
	assets := make(map[string]struct{})
	recent := 0
	for _, v := range items {
		total = total.Add(v.CurrentValue)
		assets[v.AssetID] = struct{}{}
		if within(v.Date, now.Add(-month), now) {
			recent++
		}
	}
	return []Stat{
		stat("Total Valuations", len(items), "All valuations"),
		stat("Assets Valued", len(assets), "Unique assets"),
		stat("Recent (30d)", recent, "Last 30 days"),
		{Title: "Total Current Value", Value: Money(total), Subtitle: "Sum current value"},
	}
}

// referenced counts the distinct ids in keys that appear in refs.
func referenced(keys []string, refs map[string]struct{}) int {
	n := 0
	for _, k := range keys {
		if _, ok := refs[k]; ok {
			n++
		}
	}
	return n
}

func assetRefs(assets []Asset, ref func(Asset) string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, a := range assets {
		if id := ref(a); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func recentCount(dates []string, now time.Time) int {
	n := 0
	for _, d := range dates {
		if within(d, now.Add(-month), now) {
			n++
		}
	}
	return n
}

func SupplierStats(items []Supplier, assets []Asset, now time.Time) []Stat {
	ids := make([]string, len(items))
	dates := make([]string, len(items))
	withEmail := 0
	for i, s := range items {
		ids[i], dates[i] = s.ID, s.CreatedAt
		if strings.TrimSpace(s.Email) != "" {
			withEmail++
		}
	}
	refs := assetRefs(assets, func(a Asset) string { return a.SupplierID })
	return []Stat{
		stat("Total Suppliers", len(items), "All suppliers"),
		stat("With Email", withEmail, "Suppliers with contact email"),
		stat("With Assets", referenced(ids, refs), "Suppliers referenced by assets"),
		stat("Recent (30d)", recentCount(dates, now), "Added last 30 days"),
	}
}

func LocationStats(items []Location, assets []Asset, now time.Time) []Stat {
	ids := make([]string, len(items))
	dates := make([]string, len(items))
	for i, l := range items {
		ids[i], dates[i] = l.ID, l.CreatedAt
	}
	with := referenced(ids, assetRefs(assets, func(a Asset) string { return a.LocationID }))
	return []Stat{
		stat("Total Locations", len(items), "All locations"),
		stat("With Assets", with, "Locations with assets"),
		stat("Empty", len(items)-with, "No assets"),
		stat("Recent (30d)", recentCount(dates, now), "Added last 30 days"),
	}
}

func CategoryStats(items []Category, assets []Asset, now time.Time) []Stat {
	ids := make([]string, len(items))
	dates := make([]string, len(items))
	for i, c := range items {
		ids[i], dates[i] = c.ID, c.CreatedAt
	}
	with := referenced(ids, assetRefs(assets, func(a Asset) string { return a.CategoryID }))
	return []Stat{
		stat("Total Categories", len(items), "All categories"),
		stat("With Assets", with, "Referenced by assets"),
		stat("Empty", len(items)-with, "No assets"),
		stat("Recent (30d)", recentCount(dates, now), "Added last 30 days"),
	}
}

func BuyerStats(items []Buyer) []Stat {
	withEmail := 0
	for _, b := range items {
		if strings.TrimSpace(b.Email) != "" {
			withEmail++
		}
	}
	return []Stat{
		stat("Total Buyers", len(items), "All buyers"),
		stat("With Email", withEmail, "Buyers with contact email"),
	}
}

// Unknown renders a figure whose source has not loaded yet.
const Unknown = "-"

// Figures holds the snapshots the dashboard and statistics pages aggregate.
// A nil slice means the snapshot has not arrived; its figures show Unknown.
type Figures struct {
	Assets      []Asset
	Users       []User
	Assignments []Assignment
	Maintenance []Maintenance
	Valuations  []Valuation
}

func count[T any](rows []T, keep func(T) bool) string {
	if rows == nil {
		return Unknown
	}
	n := 0
	for _, r := range rows {
		if keep == nil || keep(r) {
			n++
		}
	}
	return strconv.Itoa(n)
}

func DashboardStats(f Figures) []Stat {
	return []Stat{
		{Title: "Total Assets", Value: count(f.Assets, nil), Subtitle: "All registered assets"},
		{Title: "Active Users", Value: count(f.Users, func(u User) bool { return IsActive(u.Status) }), Subtitle: "Available for assignment"},
		{Title: "Open Assignments", Value: count(f.Assignments, func(a Assignment) bool { return IsOpenAssignment(a.Status) }), Subtitle: "Assets currently assigned"},
		{Title: "Open Maintenance", Value: count(f.Maintenance, nil), Subtitle: "Service tickets"},
	}
}

// RecentAssets returns the last n assets, newest first.
func RecentAssets(assets []Asset, n int) []Asset {
	if n > len(assets) {
		n = len(assets)
	}
	out := make([]Asset, 0, n)
	for i := len(assets) - 1; i >= len(assets)-n; i-- {
		out = append(out, assets[i])
	}
	return out
}

func StatisticsStats(f Figures, now time.Time) []Stat {
	open := count(f.Assignments, func(a Assignment) bool {
		s := strings.ToLower(strings.TrimSpace(a.Status))
		return s != "returned" && s != "completed"
	})
	byStatus := count(f.Assignments, func(a Assignment) bool { return strings.EqualFold(a.Status, "overdue") })
	byDate := count(f.Assignments, func(a Assignment) bool { return IsOverdue(a, now) })

	avg := Unknown
	if len(f.Valuations) > 0 {
		sum := decimal.Zero
		for _, v := range f.Valuations {
			sum = sum.Add(v.CurrentValue)
		}
		avg = Money(sum.Div(decimal.NewFromInt(int64(len(f.Valuations)))))
	}

	return []Stat{
		{Title: "Total Assets", Value: count(f.Assets, nil), Subtitle: "All registered assets"},
		{Title: "Active Assets", Value: count(f.Assets, func(a Asset) bool { return IsActive(a.Status) }), Subtitle: "Available for use"},
		{Title: "Inactive Assets", Value: count(f.Assets, func(a Asset) bool { return !IsActive(a.Status) }), Subtitle: "Not in service"},
		{Title: "Open Assignments", Value: open, Subtitle: fmt.Sprintf("%s overdue (date-overdue: %s)", byStatus, byDate)},
		{Title: "Open Maintenance", Value: count(f.Maintenance, nil), Subtitle: "Service tickets"},
		{Title: "Avg Valuation", Value: avg, Subtitle: "Mean current value"},
	}
}

// Bucket is one bar of a breakdown. Count sizes the bar; Display, when set,
// replaces the number printed beside it.
type Bucket struct {
	Label   string
	Count   int
	Display string
}

// ReportBuckets reads a report endpoint's rows. Rows carry a label under
// "category", "category_name", "bucket", "range", "label" or "name" and a
// count under "count", "value" or "total".
func ReportBuckets(rows []api.Record) []Bucket {
	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		label := reconcile.String(r, "category", "category_name", "bucket", "range", "label", "name")
		if label == "" {
			continue
		}
		n, err := strconv.ParseFloat(reconcile.String(r, "count", "value", "total"), 64)
		if err != nil {
			n = 0
		}
		out = append(out, Bucket{Label: label, Count: int(n)})
	}
	return out
}

// CategoryBuckets counts assets per category name, largest first. Assets
// without a category are counted under "Uncategorized".
func CategoryBuckets(assets []Asset, categories reconcile.Lookup) []Bucket {
	counts := make(map[string]int)
	for _, a := range assets {
		label := "Uncategorized"
		if a.CategoryID != "" {
			label = categories.Name(a.CategoryID)
		}
		counts[label]++
	}
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
