package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/five82/ams/internal/api"
)

// Pick returns the first alias whose value is present, not null and not an
// empty string.
func Pick(rec api.Record, aliases ...string) (any, bool) {
	for _, alias := range aliases {
		v, ok := rec[alias]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns the first present alias rendered as text. Whole numbers are
// rendered without a fractional part so that JSON ids compare as "7", not
// "7.0".
func String(rec api.Record, aliases ...string) string {
	v, ok := Pick(rec, aliases...)
	if !ok {
		return ""
	}
	return Text(v)
}

// Text renders a decoded JSON scalar.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return Text(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		// Nested objects (expanded foreign keys) resolve to their id.
		if id, ok := t["id"]; ok {
			return Text(id)
		}
		keys := make([]string, 0, len(t))
		for key := range t {
			if strings.HasSuffix(key, "_id") {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return ""
		}
		sort.Strings(keys)
		return Text(t[keys[0]])
	default:
		return fmt.Sprint(t)
	}
}

// NormalizeList turns the shapes the API and the legacy cache produce into a
// flat record list: a JSON array, an object wrapping an array under "value",
// or an object whose values are records or arrays of records. Anything else
// yields an empty list.
func NormalizeList(raw any) []api.Record {
	switch v := raw.(type) {
	case []api.Record:
		return v
	case []any:
		return records(v)
	case map[string]any:
		if inner, ok := v["value"].([]any); ok {
			return records(inner)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []api.Record
		for _, k := range keys {
			switch item := v[k].(type) {
			case map[string]any:
				out = append(out, item)
			case []any:
				out = append(out, records(item)...)
			}
		}
		return out
	}
	return nil
}

func records(items []any) []api.Record {
	out := make([]api.Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}
