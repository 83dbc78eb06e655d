package reconcile

import (
	"strings"
	"time"

	"github.com/five82/ams/internal/api"
)

// LookupSpec describes how to index a reference snapshot.
type LookupSpec struct {
	// Key lists the id aliases, e.g. "user_id", "id".
	Key []string
	// Name lists display-name aliases in preference order; later entries are
	// fallbacks.
	Name []string
	// Placeholder formats a name for ids with no match. It receives the id.
	Placeholder func(id string) string
}

// Lookup maps foreign ids to display names.
type Lookup struct {
	names       map[string]string
	placeholder func(string) string
}

// NewLookup indexes records by spec.Key. Records without an id are skipped;
// records without any name alias get the placeholder for their id.
func NewLookup(records []api.Record, spec LookupSpec) Lookup {
	placeholder := spec.Placeholder
	if placeholder == nil {
		placeholder = func(id string) string { return "#" + id }
	}
	names := make(map[string]string, len(records))
	for _, rec := range records {
		id := String(rec, spec.Key...)
		if id == "" {
			continue
		}
		name := String(rec, spec.Name...)
		if name == "" {
			name = placeholder(id)
		}
		names[id] = name
	}
	return Lookup{names: names, placeholder: placeholder}
}

// Placeholder returns a LookupSpec placeholder of the form "<prefix> <id>".
func Placeholder(prefix string) func(string) string {
	return func(id string) string { return prefix + " " + id }
}

// Name resolves id. An unknown id yields the placeholder containing it; an
// empty id yields "-". The result is never empty.
func (l Lookup) Name(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "-"
	}
	if name, ok := l.names[id]; ok {
		return name
	}
	if l.placeholder == nil {
		return "#" + id
	}
	return l.placeholder(id)
}

// Has reports whether id is present in the reference snapshot.
func (l Lookup) Has(id string) bool {
	_, ok := l.names[strings.TrimSpace(id)]
	return ok
}

// Len returns the number of indexed ids.
func (l Lookup) Len() int { return len(l.names) }

// CurrentSpec describes a one-to-many history reduced to the current record
// per foreign entity (for example the current assignment of each asset).
type CurrentSpec struct {
	Foreign  []string
	Status   []string
	Date     []string
	Terminal []string
}

// CurrentBy returns, per foreign id, the latest record not in a terminal
// status, or the latest record overall when every candidate is terminal.
// Records sharing the latest date resolve to whichever was seen first;
// callers must not rely on that order.
func CurrentBy(records []api.Record, spec CurrentSpec) map[string]api.Record {
	terminal := make(map[string]struct{}, len(spec.Terminal))
	for _, s := range spec.Terminal {
		terminal[strings.ToLower(s)] = struct{}{}
	}

	type best struct {
		rec  api.Record
		at   time.Time
		live bool
	}
	picked := make(map[string]best)
	for _, rec := range records {
		fk := String(rec, spec.Foreign...)
		if fk == "" {
			continue
		}
		_, isTerminal := terminal[strings.ToLower(String(rec, spec.Status...))]
		cand := best{rec: rec, at: ParseDate(String(rec, spec.Date...)), live: !isTerminal}
		cur, ok := picked[fk]
		switch {
		case !ok:
			picked[fk] = cand
		case cand.live && !cur.live:
			picked[fk] = cand
		case cand.live == cur.live && cand.at.After(cur.at):
			picked[fk] = cand
		}
	}

	out := make(map[string]api.Record, len(picked))
	for fk, b := range picked {
		out[fk] = b.rec
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date and datetime formats the API emits. Unparseable
// or empty input yields the zero time, which sorts before every real date.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
