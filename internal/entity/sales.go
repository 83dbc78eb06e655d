package entity

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/reconcile"
)

// SalesYear is one row of the sales report's yearly list.
type SalesYear struct {
	Year  int
	Total decimal.Decimal
}

// SalesQuarter is one row of the sales report's quarterly list.
type SalesQuarter struct {
	Year    int
	Quarter int
	Total   decimal.Decimal
}

// Sales is the disposal sales report:
//
//	{"yearly": [{"year", "total"}], "quarterly": [{"year", "quarter", "total"}]}
type Sales struct {
	Yearly    []SalesYear
	Quarterly []SalesQuarter
}

// DecodeSales reads the report object. Missing lists, rows without a year
// and quarters outside 1-4 are dropped; unparseable totals count as zero.
// Both lists come back sorted by period.
func DecodeSales(rec api.Record) Sales {
	var s Sales
	for _, r := range salesRows(rec["yearly"]) {
		year, ok := salesInt(r, "year")
		if !ok {
			continue
		}
		s.Yearly = append(s.Yearly, SalesYear{Year: year, Total: salesTotal(r)})
	}
	for _, r := range salesRows(rec["quarterly"]) {
		year, ok := salesInt(r, "year")
		if !ok {
			continue
		}
		q, ok := salesInt(r, "quarter")
		if !ok || q < 1 || q > 4 {
			continue
		}
		s.Quarterly = append(s.Quarterly, SalesQuarter{Year: year, Quarter: q, Total: salesTotal(r)})
	}
	sort.SliceStable(s.Yearly, func(i, j int) bool { return s.Yearly[i].Year < s.Yearly[j].Year })
	sort.SliceStable(s.Quarterly, func(i, j int) bool {
		a, b := s.Quarterly[i], s.Quarterly[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Quarter < b.Quarter
	})
	return s
}

// Total sums the yearly totals.
func (s Sales) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, y := range s.Yearly {
		sum = sum.Add(y.Total)
	}
	return sum
}

// YearBuckets renders one bar per year.
func (s Sales) YearBuckets() []Bucket {
	out := make([]Bucket, 0, len(s.Yearly))
	for _, y := range s.Yearly {
		out = append(out, moneyBucket(strconv.Itoa(y.Year), y.Total))
	}
	return out
}

// QuarterBuckets renders one bar per reported quarter, labelled "2024 Q1".
func (s Sales) QuarterBuckets() []Bucket {
	out := make([]Bucket, 0, len(s.Quarterly))
	for _, q := range s.Quarterly {
		out = append(out, moneyBucket(fmt.Sprintf("%d Q%d", q.Year, q.Quarter), q.Total))
	}
	return out
}

func moneyBucket(label string, total decimal.Decimal) Bucket {
	return Bucket{Label: label, Count: int(total.IntPart()), Display: Money(total)}
}

func salesRows(v any) []api.Record {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]api.Record, 0, len(items))
	for _, item := range items {
		if r, ok := item.(map[string]any); ok {
			out = append(out, r)
		}
	}
	return out
}

func salesInt(r api.Record, key string) (int, bool) {
	n, err := strconv.Atoi(reconcile.String(r, key))
	return n, err == nil
}

func salesTotal(r api.Record) decimal.Decimal {
	d, err := decimal.NewFromString(reconcile.String(r, "total"))
	if err != nil {
		return decimal.Zero
	}
	return d
}
