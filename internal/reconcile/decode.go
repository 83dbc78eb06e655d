package reconcile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/api"
)

// Spec maps each canonical field (the mapstructure tag on the target struct)
// to the aliases the server may use for it, in preference order.
type Spec map[string][]string

// Canonical projects rec onto the canonical field names of spec. Fields with
// no present alias are omitted.
func Canonical(rec api.Record, spec Spec) map[string]any {
	out := make(map[string]any, len(spec))
	for field, aliases := range spec {
		if len(aliases) == 0 {
			aliases = []string{field}
		}
		if v, ok := Pick(rec, aliases...); ok {
			out[field] = v
		}
	}
	return out
}

// Decode projects rec through spec and decodes the result into T with weak
// typing, so ids arriving as numbers land in string fields and decimals
// arriving as strings land in decimal.Decimal fields.
func Decode[T any](rec api.Record, spec Spec) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(decimalHook, textHook),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(Canonical(rec, spec)); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// DecodeAll decodes every record, skipping the ones that fail so that one
// malformed row never hides the rest.
func DecodeAll[T any](recs []api.Record, spec Spec) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := Decode[T](rec, spec)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parse decimal %q: %w", v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case bool:
		if v {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	}
	return data, nil
}

// textHook renders scalars into string fields with Text so whole-number ids
// never pick up a fractional part.
func textHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() == reflect.String {
		return data, nil
	}
	switch data.(type) {
	case float64, float32, int, int64, bool, map[string]any:
		return Text(data), nil
	}
	return data, nil
}
