package reconcile

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
)

func TestPick_SkipsMissingNullAndBlank(t *testing.T) {
	rec := api.Record{"asset": nil, "asset_id": "  ", "assetId": float64(7)}
	v, ok := Pick(rec, "asset", "asset_id", "assetId")
	if !ok || v != float64(7) {
		t.Fatalf("Pick = %v, %v, want 7, true", v, ok)
	}
	if _, ok := Pick(rec, "missing"); ok {
		t.Fatalf("Pick(missing) reported present")
	}
}

func TestText_RendersIDsWithoutFraction(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{float64(7), "7"},
		{float64(7.5), "7.5"},
		{"  x ", "x"},
		{nil, ""},
		{true, "true"},
		{map[string]any{"user_id": float64(3), "name": "Ada"}, "3"},
		{map[string]any{"id": float64(9), "asset_id": float64(2)}, "9"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Fatalf("Text(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookup_ResolvesWithFallbacks(t *testing.T) {
	users := []api.Record{
		{"user_id": float64(1), "name": "Ada"},
		{"user_id": float64(2), "name": "", "email": "lin@example.com"},
		{"user_id": float64(3)},
		{"name": "no id"},
	}
	l := NewLookup(users, LookupSpec{
		Key:         []string{"user_id", "id"},
		Name:        []string{"name", "email"},
		Placeholder: Placeholder("User"),
	})

	if got := l.Name("1"); got != "Ada" {
		t.Fatalf("Name(1) = %q, want Ada", got)
	}
	if got := l.Name("2"); got != "lin@example.com" {
		t.Fatalf("Name(2) = %q, want fallback alias", got)
	}
	if got := l.Name("3"); got != "User 3" {
		t.Fatalf("Name(3) = %q, want placeholder for nameless record", got)
	}
	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
}

func TestLookup_UnknownIDNeverEmpty(t *testing.T) {
	l := NewLookup(nil, LookupSpec{Key: []string{"user_id"}, Name: []string{"name"}, Placeholder: Placeholder("User")})
	for _, id := range []string{"42", "x-9", "0"} {
		got := l.Name(id)
		if got == "" || !strings.Contains(got, id) {
			t.Fatalf("Name(%q) = %q, want placeholder containing id", id, got)
		}
	}
	if got := l.Name(""); got != "-" {
		t.Fatalf("Name(\"\") = %q, want -", got)
	}
	var zero Lookup
	if got := zero.Name("5"); got != "#5" {
		t.Fatalf("zero Lookup Name = %q, want #5", got)
	}
}

func TestCurrentBy_PrefersNonTerminalThenLatest(t *testing.T) {
	assignments := []api.Record{
		{"assignment_id": 1, "asset": float64(10), "user": float64(1), "status": "Returned", "assigned_date": "2024-05-01"},
		{"assignment_id": 2, "asset": float64(10), "user": float64(2), "status": "Active", "assigned_date": "2024-01-01"},
		{"assignment_id": 3, "asset": float64(10), "user": float64(3), "status": "Active", "assigned_date": "2024-03-01"},
		{"assignment_id": 4, "asset_id": float64(11), "user": float64(4), "status": "returned", "assigned_date": "2023-01-01"},
		{"assignment_id": 5, "asset_id": float64(11), "user": float64(5), "status": "Returned", "assigned_date": "2023-06-01"},
		{"assignment_id": 6, "user": float64(6), "status": "Active"},
	}
	current := CurrentBy(assignments, CurrentSpec{
		Foreign:  []string{"asset", "asset_id"},
		Status:   []string{"status"},
		Date:     []string{"assigned_date"},
		Terminal: []string{"returned", "completed"},
	})

	if len(current) != 2 {
		t.Fatalf("len(current) = %d, want 2", len(current))
	}
	if got := String(current["10"], "user"); got != "3" {
		t.Fatalf("asset 10 current user = %q, want 3 (latest active)", got)
	}
	if got := String(current["11"], "user"); got != "5" {
		t.Fatalf("asset 11 current user = %q, want 5 (latest overall)", got)
	}
}

func TestParseDate(t *testing.T) {
	if ParseDate("2024-02-03").Day() != 3 {
		t.Fatalf("date-only layout not parsed")
	}
	if ParseDate("2024-02-03T10:00:00Z").Hour() != 10 {
		t.Fatalf("RFC3339 layout not parsed")
	}
	if !ParseDate("soon").IsZero() {
		t.Fatalf("garbage should parse to zero time")
	}
}

func TestNormalizeList_Shapes(t *testing.T) {
	a := map[string]any{"id": "a"}
	b := map[string]any{"id": "b"}
	c := map[string]any{"id": "c"}

	tests := []struct {
		name string
		in   any
		want int
	}{
		{"array", []any{a, b, "skip"}, 2},
		{"value wrapper", map[string]any{"value": []any{a, b, c}}, 3},
		{"object of arrays", map[string]any{"x": []any{a}, "y": []any{b, c}}, 3},
		{"object of records", map[string]any{"x": a, "y": b}, 2},
		{"scalar", "nope", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeList(tt.in); len(got) != tt.want {
				t.Fatalf("NormalizeList = %d records, want %d", len(got), tt.want)
			}
		})
	}
}

type assetRow struct {
	ID           string          `mapstructure:"id"`
	Name         string          `mapstructure:"name"`
	CategoryID   string          `mapstructure:"category_id"`
	PurchaseCost decimal.Decimal `mapstructure:"purchase_cost"`
	Status       string          `mapstructure:"status"`
}

var assetSpec = Spec{
	"id":            {"asset_id", "id"},
	"name":          {"asset_name", "name"},
	"category_id":   {"category", "category_id"},
	"purchase_cost": {"purchase_cost"},
	"status":        {"status"},
}

func TestDecode_AliasesAndWeakTypes(t *testing.T) {
	rec := api.Record{
		"asset_id":      float64(12),
		"asset_name":    "Laptop",
		"category_id":   float64(3),
		"purchase_cost": "1250.50",
		"status":        nil,
	}
	got, err := Decode[assetRow](rec, assetSpec)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got.ID != "12" || got.Name != "Laptop" || got.CategoryID != "3" || got.Status != "" {
		t.Fatalf("Decode = %+v", got)
	}
	if !got.PurchaseCost.Equal(decimal.RequireFromString("1250.5")) {
		t.Fatalf("PurchaseCost = %s, want 1250.5", got.PurchaseCost)
	}

	numeric, err := Decode[assetRow](api.Record{"asset_id": float64(1), "purchase_cost": float64(99.5)}, assetSpec)
	if err != nil {
		t.Fatalf("Decode numeric cost returned error: %v", err)
	}
	if numeric.PurchaseCost.String() != "99.5" {
		t.Fatalf("PurchaseCost = %s, want 99.5", numeric.PurchaseCost)
	}
}

func TestDecodeAll_SkipsBadRows(t *testing.T) {
	rows := DecodeAll[assetRow]([]api.Record{
		{"asset_id": float64(1), "purchase_cost": "10"},
		{"asset_id": float64(2), "purchase_cost": "ten"},
	}, assetSpec)
	if len(rows) != 1 || rows[0].ID != "1" {
		t.Fatalf("DecodeAll = %+v, want only the first row", rows)
	}
}
