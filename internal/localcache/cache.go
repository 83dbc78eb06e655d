// Package localcache keeps the maintenance records cached on disk so the
// maintenance page has rows to show before its first poll lands.
//
// Older clients wrote the cache either as a JSON array or as an object keyed
// by record id, with field spellings that predate the API and a "priority"
// attribute that no longer exists. Load accepts all of those shapes and
// rewrites the file in the canonical form the first time it sees them.
package localcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/reconcile"
)

// localIDPrefix marks ids minted for cached records that never had one.
const localIDPrefix = "m_"

// IsLocalID reports whether id was minted by the cache rather than assigned
// by the server. Such records cannot be edited or deleted remotely.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// legacyKeys are dropped from every cached record.
var legacyKeys = []string{"priority", "Priority", "priorityLevel"}

// Cache is a JSON file of maintenance records.
type Cache struct {
	path string
	mu   sync.Mutex
}

// New returns a cache stored at path. The file is not touched until Load or
// Save.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Load reads and normalises the cached records. A missing file yields no
// records and no error. When normalisation changed anything the cleaned
// records are written back.
func (c *Cache) Load() ([]api.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	_, canonical := raw.([]any)

	records := reconcile.NormalizeList(raw)
	out := make([]api.Record, 0, len(records))
	for _, rec := range records {
		cleaned, changed := normalize(rec)
		if changed {
			canonical = false
		}
		out = append(out, cleaned)
	}

	if !canonical {
		if err := c.writeLocked(out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Save replaces the cache with records.
func (c *Cache) Save(records []api.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cleaned := make([]api.Record, 0, len(records))
	for _, rec := range records {
		r, _ := normalize(rec)
		cleaned = append(cleaned, r)
	}
	return c.writeLocked(cleaned)
}

func (c *Cache) writeLocked(records []api.Record) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// normalize returns a copy of rec without legacy keys and with an id. It
// reports whether anything had to change.
func normalize(rec api.Record) (api.Record, bool) {
	out := make(api.Record, len(rec)+1)
	changed := false
	for k, v := range rec {
		out[k] = v
	}
	for _, k := range legacyKeys {
		if _, ok := out[k]; ok {
			delete(out, k)
			changed = true
		}
	}
	if reconcile.String(out, "maintenance_id", "id") == "" {
		out["id"] = localIDPrefix + uuid.NewString()
		changed = true
	}
	return out, changed
}
