package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/reconcile"
)

// Validation messages use the API's wording so client and server errors read
// the same in the form.
const (
	msgRequired = "This field is required."
	msgInteger  = "A valid integer is required."
	msgNumber   = "A valid number is required."
	msgDate     = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

// Payload converts form input into a request body for kind. Empty optional
// inputs become null. Input that cannot be parsed is reported per field in
// the same shape as server validation errors, and the payload is nil.
func Payload(kind Kind, values map[string]string) (map[string]any, map[string][]string) {
	out := make(map[string]any, len(kind.Fields))
	errs := make(map[string][]string)
	for _, f := range kind.Fields {
		raw := strings.TrimSpace(values[f.Key])
		if raw == "" {
			if f.Required {
				errs[f.Key] = []string{msgRequired}
				continue
			}
			out[f.Key] = nil
			continue
		}
		v, msg := parseField(f, raw)
		if msg != "" {
			errs[f.Key] = []string{msg}
			continue
		}
		out[f.Key] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func parseField(f Field, raw string) (any, string) {
	switch f.Kind {
	case Number, Ref:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, msgInteger
		}
		return n, ""
	case Decimal:
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return nil, msgNumber
		}
		return d.StringFixed(2), ""
	case Date:
		t := reconcile.ParseDate(raw)
		if t.IsZero() {
			return nil, msgDate
		}
		return t.Format("2006-01-02"), ""
	case Choice:
		for _, c := range f.Choices {
			if strings.EqualFold(c, raw) {
				return c, ""
			}
		}
		return nil, fmt.Sprintf("%q is not a valid choice.", raw)
	default:
		return raw, ""
	}
}
