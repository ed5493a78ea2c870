// Package stats tracks thread-safe request/error/status counters and the
// expected-request budget. Only the events.StatsHandler goroutine
// mutates a Stats value; every other component sends a Command instead.
package stats

import (
	"sync"
	"sync/atomic"
)

// ErrorKind is the taxonomy used by the requester and policy controller.
type ErrorKind string

const (
	ErrorTimeout    ErrorKind = "timeout"
	ErrorConnection ErrorKind = "connection"
	ErrorRedirect   ErrorKind = "redirection"
	ErrorRequest    ErrorKind = "request"
	ErrorURLFormat  ErrorKind = "url_format"
	ErrorOther      ErrorKind = "other"
)

// Field names recognized by AddToUsizeField / SubtractFromUsizeField.
type Field string

const (
	FieldTotalExpected     Field = "total_expected"
	FieldWildcardsFiltered Field = "wildcards_filtered"
	FieldLinksExtracted    Field = "links_extracted"
	FieldDirScans          Field = "directory_scans"
	FieldFileScans         Field = "file_scans"
)

// Stats is a flat record of atomic counters plus two mutex-guarded
// vectors, mirroring the ownership model in spec.md §3.
type Stats struct {
	Requests      atomic.Uint64
	Successes     atomic.Uint64 // 2xx
	Redirects     atomic.Uint64 // 3xx
	ClientErrors  atomic.Uint64 // 4xx
	ServerErrors  atomic.Uint64 // 5xx
	Errors        atomic.Uint64 // recovered network errors
	Status403     atomic.Uint64
	Status429     atomic.Uint64
	errorsByKind  sync.Map // ErrorKind -> *atomic.Uint64
	usizeFields   sync.Map // Field -> *atomic.Int64
	mu            sync.Mutex
	ScanDurations []float64
	TotalRuntime  []float64
}

// New returns a zeroed Stats.
func New() *Stats { return &Stats{} }

// AddRequest increments the total request counter.
func (s *Stats) AddRequest() { s.Requests.Add(1) }

// AddStatus tallies a response by status-code bucket.
func (s *Stats) AddStatus(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Successes.Add(1)
	case code >= 300 && code < 400:
		s.Redirects.Add(1)
	case code == 403:
		s.ClientErrors.Add(1)
		s.Status403.Add(1)
	case code == 429:
		s.ClientErrors.Add(1)
		s.Status429.Add(1)
	case code >= 400 && code < 500:
		s.ClientErrors.Add(1)
	case code >= 500:
		s.ServerErrors.Add(1)
	}
}

// AddError tallies a recovered network error by kind.
func (s *Stats) AddError(kind ErrorKind) {
	s.Errors.Add(1)
	counter, _ := s.errorsByKind.LoadOrStore(kind, new(atomic.Uint64))
	counter.(*atomic.Uint64).Add(1)
}

// ErrorCount returns the tally for one error kind.
func (s *Stats) ErrorCount(kind ErrorKind) uint64 {
	v, ok := s.errorsByKind.Load(kind)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

// AddToUsizeField adds n (n may be negative) to a named auxiliary field.
func (s *Stats) AddToUsizeField(field Field, n int64) {
	counter, _ := s.usizeFields.LoadOrStore(field, new(atomic.Int64))
	counter.(*atomic.Int64).Add(n)
}

// SubtractFromUsizeField subtracts n from a named auxiliary field.
func (s *Stats) SubtractFromUsizeField(field Field, n int64) {
	s.AddToUsizeField(field, -n)
}

// UsizeField returns the current value of a named auxiliary field.
func (s *Stats) UsizeField(field Field) int64 {
	v, ok := s.usizeFields.Load(field)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// AddScanDuration records one completed scan's wall-clock duration.
func (s *Stats) AddScanDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScanDurations = append(s.ScanDurations, seconds)
}

// RequestsIssuedConsistent reports the weak invariant from spec.md §8:
// requests >= successes + redirects + client_errors + server_errors.
func (s *Stats) RequestsIssuedConsistent() bool {
	sum := s.Successes.Load() + s.Redirects.Load() + s.ClientErrors.Load() + s.ServerErrors.Load()
	return s.Requests.Load() >= sum
}

// Snapshot is a point-in-time, JSON-friendly copy of Stats used by the
// state file and the JSON output format.
type Snapshot struct {
	Requests     uint64 `json:"requests"`
	Successes    uint64 `json:"successes"`
	Redirects    uint64 `json:"redirects"`
	ClientErrors uint64 `json:"client_errors"`
	ServerErrors uint64 `json:"server_errors"`
	Errors       uint64 `json:"errors"`
	Status403    uint64 `json:"status_403s"`
	Status429    uint64 `json:"status_429s"`
}

// Snapshot captures the current scalar counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Requests:     s.Requests.Load(),
		Successes:    s.Successes.Load(),
		Redirects:    s.Redirects.Load(),
		ClientErrors: s.ClientErrors.Load(),
		ServerErrors: s.ServerErrors.Load(),
		Errors:       s.Errors.Load(),
		Status403:    s.Status403.Load(),
		Status429:    s.Status429.Load(),
	}
}

// MergeFrom adds snap's counters into s, used when resuming from a state
// file (spec.md §8's round-trip property).
func (s *Stats) MergeFrom(snap Snapshot) {
	s.Requests.Add(snap.Requests)
	s.Successes.Add(snap.Successes)
	s.Redirects.Add(snap.Redirects)
	s.ClientErrors.Add(snap.ClientErrors)
	s.ServerErrors.Add(snap.ServerErrors)
	s.Errors.Add(snap.Errors)
	s.Status403.Add(snap.Status403)
	s.Status429.Add(snap.Status429)
}
