package requester

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/events"
	"github.com/0x6d61/burrow/internal/filters"
	"github.com/0x6d61/burrow/internal/output"
	"github.com/0x6d61/burrow/internal/policy"
	"github.com/0x6d61/burrow/internal/scan"
	"github.com/0x6d61/burrow/internal/stats"
)

func newTestRequester(t *testing.T, srv *httptest.Server, cfg *config.Config) (*Requester, *stats.Stats) {
	t.Helper()
	st := stats.New()
	bus := events.New(events.StatsHandler{Stats: st}, nil)
	go bus.Run(context.Background())

	mgr := scan.NewManager(0, cfg.Depth, cfg.NoRecursion, scan.Denylist{})
	_, target, err := mgr.AddDirectoryScan(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}

	handles := Handles{
		ScanManager: mgr,
		StatsBus:    bus.Sender(),
		Filters:     filters.New(),
		Output:      output.New(config.OutputSilent, discardWriter{}, nil),
	}

	req := New(handles, cfg, target, policy.New(config.PolicyDefault))
	return req, st
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRunDispatchesOneRequestPerWordPerMethod(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.NoRecursion = true
	cfg.Threads = 2
	req, st := newTestRequester(t, srv, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := req.Run(ctx, []string{"admin", "login"}); err != nil {
		t.Fatal(err)
	}

	if hits != 2 {
		t.Fatalf("expected 2 requests (one per word, no extensions), got %d", hits)
	}
	if st.Requests.Load() != 2 {
		t.Fatalf("stats requests = %d", st.Requests.Load())
	}
}

func TestDenylistSkipsMatchingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.NoRecursion = true
	cfg.URLDenylist = []string{srv.URL + "/admin"}
	req, _ := newTestRequester(t, srv, cfg)

	if req.denylistAllows(srv.URL + "/admin") {
		t.Fatal("expected exact denylist entry to block the url")
	}
	if !req.denylistAllows(srv.URL + "/other") {
		t.Fatal("expected non-listed url to pass")
	}
}

func TestExpandAppendsExtensionsAndEmptyVariant(t *testing.T) {
	cfg := config.Defaults()
	cfg.Extensions = []string{"php", "bak"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	req, _ := newTestRequester(t, srv, cfg)

	urls := req.expand("admin")
	if len(urls) != 3 {
		t.Fatalf("expected 3 expanded urls (2 extensions + bare word), got %v", urls)
	}
}
