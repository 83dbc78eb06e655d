package localcache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/five82/ams/internal/api"
)

func TestLoad_MissingFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "maintenance.json"))
	recs, err := c.Load()
	if err != nil || recs != nil {
		t.Fatalf("Load = %v, %v, want nil, nil", recs, err)
	}
}

func TestLoad_ObjectMapIsNormalisedAndRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maintenance.json")
	legacy := `{
		"a": {"id": "m_1", "assetId": 4, "scheduledDate": "2024-01-02", "priority": "High"},
		"b": {"assetId": 5, "notes": "battery", "priorityLevel": 2, "Priority": "Low"}
	}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	recs, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		for _, k := range legacyKeys {
			if _, ok := rec[k]; ok {
				t.Fatalf("record still carries %q: %v", k, rec)
			}
		}
	}
	if recs[0]["id"] != "m_1" {
		t.Fatalf("existing id changed: %v", recs[0]["id"])
	}
	if id, _ := recs[1]["id"].(string); !IsLocalID(id) {
		t.Fatalf("generated id = %q, want a local id", id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var rewritten []api.Record
	if err := json.Unmarshal(data, &rewritten); err != nil {
		t.Fatalf("cache not rewritten as an array: %v", err)
	}
	if len(rewritten) != 2 || strings.Contains(string(data), "priority") {
		t.Fatalf("rewritten cache = %s", data)
	}

	again, err := New(path).Load()
	if err != nil || len(again) != 2 || again[1]["id"] != recs[1]["id"] {
		t.Fatalf("second Load = %v, %v, want stable ids", again, err)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maintenance.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := New(path).Load(); err == nil {
		t.Fatalf("Load returned nil error for corrupt cache")
	}
}

func TestSave_StripsLegacyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "maintenance.json")
	c := New(path)
	if err := c.Save([]api.Record{{"maintenance_id": float64(1), "priority": "High", "cost": "10.00"}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	recs, err := c.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(recs) != 1 || recs[0]["cost"] != "10.00" {
		t.Fatalf("Load = %v", recs)
	}
	if _, ok := recs[0]["priority"]; ok {
		t.Fatalf("priority survived Save")
	}
	if _, ok := recs[0]["id"]; ok {
		t.Fatalf("record with maintenance_id was given a synthetic id")
	}
}

func TestIsLocalID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"m_4b1c", true},
		{"12", false},
		{"", false},
		{"maintenance-3", false},
	}
	for _, tt := range tests {
		if got := IsLocalID(tt.id); got != tt.want {
			t.Fatalf("IsLocalID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
