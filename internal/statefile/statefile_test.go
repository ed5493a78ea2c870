package statefile

import (
	"path/filepath"
	"testing"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/stats"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	doc := &Document{
		Config: config.Defaults(),
		Scans: []ScanRecord{
			{ID: "scan-1", URL: "http://target/", Kind: "directory", Status: "running"},
			{ID: "scan-2", URL: "http://target/old/", Kind: "directory", Status: "complete"},
		},
		Statistics: stats.Snapshot{Requests: 42, Successes: 10},
	}
	if err := Save(path, doc); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Statistics.Requests != 42 {
		t.Fatalf("requests = %d", loaded.Statistics.Requests)
	}

	resumable := loaded.ResumableScans()
	if len(resumable) != 1 || resumable[0].ID != "scan-1" {
		t.Fatalf("expected only scan-1 resumable, got %v", resumable)
	}
}
