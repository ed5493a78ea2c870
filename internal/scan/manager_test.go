package scan

import (
	"context"
	"testing"

	"github.com/0x6d61/burrow/internal/httpresponse"
)

func TestAddDirectoryScanDedupesByNormalizedURL(t *testing.T) {
	m := NewManager(0, 4, false, Denylist{})
	inserted, s1, err := m.AddDirectoryScan("http://target/admin")
	if err != nil || !inserted {
		t.Fatalf("expected first insertion to succeed, err=%v", err)
	}
	inserted, s2, err := m.AddDirectoryScan("http://target/admin/")
	if err != nil || inserted {
		t.Fatalf("expected second call to dedupe against normalized url")
	}
	if s1 != s2 {
		t.Fatal("expected same scan returned for equivalent urls")
	}
}

func TestGetBaseScanByURLPicksLongestPrefix(t *testing.T) {
	m := NewManager(0, 4, false, Denylist{})
	m.AddDirectoryScan("http://target/")
	_, deep, _ := m.AddDirectoryScan("http://target/a/b/")

	base, ok := m.GetBaseScanByURL("http://target/a/b/c.txt")
	if !ok || base != deep {
		t.Fatalf("expected longest-prefix match to be %q, got %v", deep.URL, base)
	}
}

func TestTryRecursionRespectsDepthCap(t *testing.T) {
	m := NewManager(0, 1, false, Denylist{})
	spawned := 0
	resp := httpresponse.New("http://target/a/b/", "http://target/a/b/", "GET", 200, "", nil, 0)
	m.TryRecursion(context.Background(), resp, func(context.Context, *FeroxScan) { spawned++ })
	m.JoinAll()
	if spawned != 0 {
		t.Fatalf("expected depth cap to block recursion, spawned=%d", spawned)
	}
}

func TestTryRecursionRespectsDenylist(t *testing.T) {
	m := NewManager(0, 4, false, Denylist{Exact: []string{"http://target/secret/"}})
	spawned := 0
	resp := httpresponse.New("http://target/secret/", "http://target/secret/", "GET", 200, "", nil, 0)
	m.TryRecursion(context.Background(), resp, func(context.Context, *FeroxScan) { spawned++ })
	m.JoinAll()
	if spawned != 0 {
		t.Fatalf("expected denylist to block recursion, spawned=%d", spawned)
	}
}

func TestFeroxScanStateMachineIsMonotone(t *testing.T) {
	f := New("s1", "http://target/", KindDirectory)
	f.SetStatus(StatusRunning)
	f.SetStatus(StatusComplete)
	f.SetStatus(StatusRunning) // illegal, should be ignored
	if f.Status() != StatusComplete {
		t.Fatalf("expected terminal status to stick, got %v", f.Status())
	}
}
