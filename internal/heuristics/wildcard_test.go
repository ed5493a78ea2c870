package heuristics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/filters"
)

func TestProbeStaticWildcard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 128)))
	}))
	defer srv.Close()

	p := NewProber(srv.Client())
	f, _, err := p.Probe(context.Background(), srv.URL, config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	wc, ok := f.(filters.Wildcard)
	if !ok {
		t.Fatalf("expected filters.Wildcard, got %T", f)
	}
	if wc.Size != 128 {
		t.Fatalf("expected static size 128, got %d", wc.Size)
	}
}

func TestProbeShortCircuitsOnDisallowedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// 404 isn't in config.Defaults()'s status-code allow-list, so the
	// first probe response would never be reported anyway — the probe
	// should short-circuit without a second request.
	p := NewProber(srv.Client())
	f, calls, err := p.Probe(context.Background(), srv.URL, config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected single probe when status is outside the allow-list, got %d calls", calls)
	}
	if _, ok := f.(filters.Wildcard); !ok {
		t.Fatalf("expected filters.Wildcard, got %T", f)
	}
}

func TestProbeProceedsOnAllowedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// 200 is in the allow-list and the body is empty both times, so the
	// probe should run to completion and install a static-size filter.
	p := NewProber(srv.Client())
	f, calls, err := p.Probe(context.Background(), srv.URL, config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("expected a full two-request probe for an allowed status, got %d calls", calls)
	}
	wc, ok := f.(filters.Wildcard)
	if !ok {
		t.Fatalf("expected filters.Wildcard, got %T", f)
	}
	if wc.Size != 0 {
		t.Fatalf("expected static size 0, got %d", wc.Size)
	}
}

func TestProbeSkippedWhenDontFilter(t *testing.T) {
	p := &Prober{DontFilter: true}
	f, calls, err := p.Probe(context.Background(), "http://example.invalid/", config.Defaults())
	if err != nil || f != nil || calls != 0 {
		t.Fatalf("expected no-op probe, got f=%v calls=%d err=%v", f, calls, err)
	}
}
