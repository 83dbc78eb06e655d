package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/reconcile"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDecode_AssetAliases(t *testing.T) {
	rec := api.Record{
		"asset_id":      float64(5),
		"asset_name":    "Dell Latitude",
		"category":      float64(2),
		"purchase_cost": "1500000.00",
		"location_id":   nil,
		"status":        "Active",
	}
	a, err := reconcile.Decode[Asset](rec, AssetSpec)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if a.ID != "5" || a.CategoryID != "2" || a.LocationID != "" || a.Name != "Dell Latitude" {
		t.Fatalf("Decode = %+v", a)
	}
	if got := a.Values()["purchase_cost"]; got != "1500000" {
		t.Fatalf("purchase_cost prefill = %q, want 1500000", got)
	}
}

func TestDecode_LegacyMaintenanceSpelling(t *testing.T) {
	rec := api.Record{"id": "m-1", "assetId": float64(3), "scheduledDate": "2024-06-02", "staffId": float64(4), "notes": "fan"}
	m, err := reconcile.Decode[Maintenance](rec, MaintenanceSpec)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if m.AssetID != "3" || m.Date != "2024-06-02" || m.StaffID != "4" || m.Description != "fan" {
		t.Fatalf("Decode = %+v", m)
	}
}

func TestLocation_Label(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{ID: "1", Building: "HQ"}, "HQ"},
		{Location{ID: "2", GeographicalLocation: "Kampala"}, "Kampala"},
		{Location{ID: "3"}, "Loc 3"},
	}
	for _, tt := range tests {
		if got := tt.loc.Label(); got != tt.want {
			t.Fatalf("Label() = %q, want %q", got, tt.want)
		}
	}
	l := reconcile.NewLookup([]api.Record{{"location_id": float64(3)}}, NameLookups["locations"])
	if got := l.Name("3"); got != "Loc 3" {
		t.Fatalf("lookup Name(3) = %q, want Loc 3", got)
	}
}

func TestPayload(t *testing.T) {
	body, errs := Payload(AssignmentKind, map[string]string{
		"asset":         " 7 ",
		"user":          "3",
		"assigned_date": "2024-06-01T08:00:00",
		"status":        "returned",
	})
	if errs != nil {
		t.Fatalf("Payload errors = %v", errs)
	}
	if body["asset"] != 7 || body["user"] != 3 {
		t.Fatalf("refs = %v %v, want ints", body["asset"], body["user"])
	}
	if body["assigned_date"] != "2024-06-01" || body["status"] != "Returned" {
		t.Fatalf("date/status = %v %v", body["assigned_date"], body["status"])
	}
	if v, ok := body["return_date"]; !ok || v != nil {
		t.Fatalf("empty optional = %v, %v, want explicit null", v, ok)
	}
}

func TestPayload_FieldErrors(t *testing.T) {
	body, errs := Payload(AssetKind, map[string]string{
		"category_id":   "abc",
		"purchase_cost": "1,250.5",
		"purchase_date": "yesterday",
		"status":        "Lost",
	})
	if body != nil {
		t.Fatalf("payload = %v, want nil on error", body)
	}
	for _, key := range []string{"asset_name", "category_id", "purchase_date", "status"} {
		if len(errs[key]) != 1 {
			t.Fatalf("errs[%s] = %v, want one message", key, errs[key])
		}
	}
	if _, ok := errs["purchase_cost"]; ok {
		t.Fatalf("grouped decimal rejected: %v", errs["purchase_cost"])
	}
	if errs["asset_name"][0] != msgRequired {
		t.Fatalf("asset_name error = %q", errs["asset_name"][0])
	}

	ok, _ := Payload(AssetKind, map[string]string{"asset_name": "X", "purchase_cost": "1,250.5"})
	if ok["purchase_cost"] != "1250.50" {
		t.Fatalf("purchase_cost = %v, want 1250.50", ok["purchase_cost"])
	}
}

func TestAssignmentStats(t *testing.T) {
	items := []Assignment{
		{ID: "1", Status: "Active", ReturnDate: "2024-06-10"},   // overdue
		{ID: "2", Status: "Active", ReturnDate: "2024-06-18"},   // upcoming
		{ID: "3", Status: "Returned", ReturnDate: "2024-06-01"}, // returned
		{ID: "4", Status: "Pending", ReturnDate: "2024-08-01"},
	}
	got := AssignmentStats(items, now)
	want := []string{"4", "2", "1", "1"}
	for i, w := range want {
		if got[i].Value != w {
			t.Fatalf("%s = %s, want %s", got[i].Title, got[i].Value, w)
		}
	}
}

func TestAssetStats(t *testing.T) {
	assets := []Asset{
		{ID: "1", Status: "active", PurchaseCost: decimal.RequireFromString("1000000")},
		{ID: "2", Status: "Disposed", PurchaseCost: decimal.RequireFromString("250000.40")},
		{ID: "3", Status: "Active"},
	}
	assignments := []Assignment{
		{AssetID: "1", Status: "Active"},
		{AssetID: "2", Status: "Returned"},
		{AssetID: "9", Status: "Active"},
	}
	got := AssetStats(assets, assignments)
	if got[1].Value != "2" || got[2].Value != "1" {
		t.Fatalf("active/inactive = %s/%s, want 2/1", got[1].Value, got[2].Value)
	}
	if got[3].Value != "UGX 1,250,000" {
		t.Fatalf("Total Cost = %q, want UGX 1,250,000", got[3].Value)
	}
	if got[4].Value != "1" {
		t.Fatalf("Assigned = %s, want 1", got[4].Value)
	}
}

func TestDashboardStats_UnknownUntilLoaded(t *testing.T) {
	got := DashboardStats(Figures{
		Assets:      []Asset{{ID: "1"}, {ID: "2"}},
		Assignments: []Assignment{{Status: "returned_on"}, {Status: "Active"}, {Status: "COMPLETED"}},
	})
	if got[0].Value != "2" || got[1].Value != Unknown || got[2].Value != "1" || got[3].Value != Unknown {
		t.Fatalf("DashboardStats = %+v", got)
	}
}

func TestStatisticsStats(t *testing.T) {
	got := StatisticsStats(Figures{
		Assignments: []Assignment{
			{Status: "Overdue", ReturnDate: "2024-06-01"},
			{Status: "Active", ReturnDate: "2024-05-01"},
			{Status: "returned", ReturnDate: "2024-05-01"},
		},
		Valuations: []Valuation{
			{CurrentValue: decimal.NewFromInt(100)},
			{CurrentValue: decimal.NewFromInt(201)},
		},
	}, now)
	if got[3].Value != "2" || got[3].Subtitle != "1 overdue (date-overdue: 2)" {
		t.Fatalf("Open Assignments = %+v", got[3])
	}
	if got[5].Value != "UGX 151" {
		t.Fatalf("Avg Valuation = %q, want UGX 151", got[5].Value)
	}
}

func TestRecentAssets(t *testing.T) {
	assets := []Asset{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	got := RecentAssets(assets, 3)
	if len(got) != 3 || got[0].ID != "4" || got[2].ID != "2" {
		t.Fatalf("RecentAssets = %+v", got)
	}
	if len(RecentAssets(assets[:1], 3)) != 1 {
		t.Fatalf("RecentAssets on short list")
	}
}

func TestBuckets(t *testing.T) {
	report := ReportBuckets([]api.Record{
		{"category": "Laptops", "count": float64(4)},
		{"bucket": "0-1000", "value": "2"},
		{"count": float64(1)},
	})
	if len(report) != 2 || report[0].Count != 4 || report[1].Label != "0-1000" {
		t.Fatalf("ReportBuckets = %+v", report)
	}

	cats := reconcile.NewLookup([]api.Record{{"category_id": float64(1), "category_name": "Laptops"}}, NameLookups["categories"])
	got := CategoryBuckets([]Asset{{CategoryID: "1"}, {CategoryID: "1"}, {}, {CategoryID: "7"}}, cats)
	if len(got) != 3 || got[0] != (Bucket{Label: "Laptops", Count: 2}) {
		t.Fatalf("CategoryBuckets = %+v", got)
	}
}

func TestGroup(t *testing.T) {
	for in, want := range map[string]string{"0": "0", "999": "999", "1000": "1,000", "-1234567": "-1,234,567"} {
		if got := Group(in); got != want {
			t.Fatalf("Group(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeSales(t *testing.T) {
	rec := api.Record{
		"yearly": []any{
			map[string]any{"year": float64(2024), "total": "2000.50"},
			map[string]any{"year": "2023", "total": float64(1000)},
			map[string]any{"total": "99"},
		},
		"quarterly": []any{
			map[string]any{"year": float64(2024), "quarter": float64(3), "total": "2000.50"},
			map[string]any{"year": float64(2023), "quarter": float64(1), "total": "bad"},
			map[string]any{"year": float64(2023), "quarter": float64(5), "total": "1"},
		},
	}
	s := DecodeSales(rec)
	if len(s.Yearly) != 2 || s.Yearly[0].Year != 2023 || s.Yearly[1].Year != 2024 {
		t.Fatalf("Yearly = %+v, want 2023 then 2024", s.Yearly)
	}
	if got := s.Total(); !got.Equal(decimal.RequireFromString("3000.50")) {
		t.Fatalf("Total = %s, want 3000.50", got)
	}
	years := s.YearBuckets()
	if years[0].Label != "2023" || years[0].Count != 1000 || years[0].Display != "UGX 1,000" {
		t.Fatalf("YearBuckets[0] = %+v", years[0])
	}
	quarters := s.QuarterBuckets()
	if len(quarters) != 2 {
		t.Fatalf("QuarterBuckets = %+v, want 2 buckets", quarters)
	}
	if quarters[0].Label != "2023 Q1" || quarters[0].Count != 0 {
		t.Fatalf("QuarterBuckets[0] = %+v, want 2023 Q1 with zero total", quarters[0])
	}
	if quarters[1].Label != "2024 Q3" || quarters[1].Count != 2000 {
		t.Fatalf("QuarterBuckets[1] = %+v, want 2024 Q3 at 2000", quarters[1])
	}
}

func TestDecodeSales_Empty(t *testing.T) {
	s := DecodeSales(api.Record{})
	if len(s.YearBuckets()) != 0 || len(s.QuarterBuckets()) != 0 {
		t.Fatalf("empty report produced buckets: %+v", s)
	}
	if !s.Total().IsZero() {
		t.Fatalf("Total = %s, want 0", s.Total())
	}
}
