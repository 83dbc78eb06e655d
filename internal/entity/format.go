package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/reconcile"
)

// Currency prefixes money in stat cards and tables.
const Currency = "UGX"

// NameLookups indexes each reference resource for id-to-name resolution.
// Unknown ids resolve to "<Placeholder> <id>".
var NameLookups = map[string]reconcile.LookupSpec{
	"assets": {
		Key: []string{"asset_id", "id"}, Name: []string{"asset_name", "name"},
		Placeholder: reconcile.Placeholder("Asset"),
	},
	"users": {
		Key: []string{"user_id", "id"}, Name: []string{"name", "email"},
		Placeholder: reconcile.Placeholder("User"),
	},
	"categories": {
		Key: []string{"category_id", "id"}, Name: []string{"category_name", "name"},
		Placeholder: reconcile.Placeholder("Category"),
	},
	"locations": {
		Key: []string{"location_id", "id"}, Name: []string{"building", "geographical_location"},
		Placeholder: reconcile.Placeholder("Loc"),
	},
	"suppliers": {
		Key: []string{"supplier_id", "id"}, Name: []string{"name"},
		Placeholder: reconcile.Placeholder("Supplier"),
	},
	"buyers": {
		Key: []string{"buyer_id", "id"}, Name: []string{"name"},
		Placeholder: reconcile.Placeholder("Buyer"),
	},
	"maintenance-staff": {
		Key: []string{"m_staff_id", "staff_id", "id"}, Name: []string{"name"},
		Placeholder: reconcile.Placeholder("Staff"),
	},
}

// Day trims a date or datetime to its YYYY-MM-DD prefix.
func Day(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Money renders d rounded to whole units with thousands separators, prefixed
// by Currency.
func Money(d decimal.Decimal) string {
	return Currency + " " + Group(d.Round(0).String())
}

// Group inserts thousands separators into an integer string.
func Group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
