// Package scan implements the per-target FeroxScan state machine and the
// process-wide ScanManager registry, adapted from the agent package's
// SubTask/TaskManager lifecycle model.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/0x6d61/burrow/internal/stats"
)

// Kind distinguishes a directory scan (gets a progress bar, recurses)
// from a file scan (single request, no recursion).
type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// Status is a FeroxScan's position in its state machine. Terminal states
// are Complete and Cancelled; once one is reached, further status
// changes are ignored. The request and error counters keep accepting
// updates from requests still in flight.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

// FeroxScan tracks one target's scan lifecycle: its status, its
// cancellation handle, its error tallies by kind, and its progress
// position. Fine-grained locking per field, per spec.md §3's ownership
// note — a single RWMutex is enough here since fields are small and
// read/written together.
type FeroxScan struct {
	ID     string
	URL    string
	Kind   Kind
	Order  int // for File scans

	mu        sync.RWMutex
	status    Status
	cancel    context.CancelFunc
	task      func()
	hasTask   bool
	startedAt time.Time

	errorCounts map[stats.ErrorKind]int64
	errors403   int64
	errors429   int64
	requests    int64
	barLength   int64

	done chan struct{}
}

// New returns a NotStarted FeroxScan for url.
func New(id, url string, kind Kind) *FeroxScan {
	return &FeroxScan{
		ID:          id,
		URL:         url,
		Kind:        kind,
		status:      StatusNotStarted,
		errorCounts: make(map[stats.ErrorKind]int64),
		done:        make(chan struct{}),
	}
}

// SetStatus moves the scan forward, refusing to move backward (monotone)
// and refusing any change once in a terminal state.
func (f *FeroxScan) SetStatus(next Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.terminalLocked() {
		return
	}
	if !validTransition(f.status, next) {
		return
	}
	f.status = next
	if next == StatusComplete || next == StatusCancelled {
		close(f.done)
	}
}

func validTransition(from, to Status) bool {
	switch from {
	case StatusNotStarted:
		return to == StatusRunning || to == StatusCancelled
	case StatusRunning:
		return to == StatusComplete || to == StatusCancelled
	default:
		return false
	}
}

func (f *FeroxScan) terminalLocked() bool {
	return f.status == StatusComplete || f.status == StatusCancelled
}

// Status returns the current status.
func (f *FeroxScan) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// SetTask installs the root cancel func exactly once; later calls are
// ignored, matching the "set_task (once)" contract.
func (f *FeroxScan) SetTask(cancel context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasTask {
		return
	}
	f.cancel = cancel
	f.hasTask = true
	f.startedAt = time.Now()
}

// HasTask reports whether SetTask has installed a root cancel func.
func (f *FeroxScan) HasTask() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hasTask
}

// Abort cancels the scan's task and sets it Cancelled.
func (f *FeroxScan) Abort() {
	f.mu.Lock()
	cancel := f.cancel
	terminal := f.terminalLocked()
	if !terminal {
		f.status = StatusCancelled
		close(f.done)
	}
	f.mu.Unlock()

	if !terminal && cancel != nil {
		cancel()
	}
}

// Finish marks the scan Complete (normal termination of its request
// stream), a no-op if already terminal.
func (f *FeroxScan) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.terminalLocked() {
		return
	}
	f.status = StatusComplete
	close(f.done)
}

// Done reports when the scan has reached a terminal state.
func (f *FeroxScan) Done() <-chan struct{} { return f.done }

// AddError tallies one recovered error by kind.
func (f *FeroxScan) AddError(kind stats.ErrorKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorCounts[kind]++
}

// NumErrors returns the tally for one error kind.
func (f *FeroxScan) NumErrors(kind stats.ErrorKind) int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errorCounts[kind]
}

// Add403 / Add429 tally status-specific counters the policy controller
// reads directly (kept separate from the generic error taxonomy, which
// only covers network-level failures).
func (f *FeroxScan) Add403() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors403++
}

func (f *FeroxScan) Add429() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors429++
}

func (f *FeroxScan) Counts403429() (e403, e429 int64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errors403, f.errors429
}

// TotalErrors sums every error-kind tally, the scan-local count the
// policy controller's too_many_errors trigger consumes.
func (f *FeroxScan) TotalErrors() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var total int64
	for _, n := range f.errorCounts {
		total += n
	}
	return total
}

// Requests returns the scan's request counter, used as the progress
// bar's position.
func (f *FeroxScan) Requests() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.requests
}

// AddRequests advances the scan's request counter by delta.
func (f *FeroxScan) AddRequests(delta int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests += delta
}

// SetBarLength sets the progress bar's expected length (total ticks).
func (f *FeroxScan) SetBarLength(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barLength = n
}

// RemainingTicks returns bar length minus current position, the value
// AutoBail subtracts from the overall TotalExpected budget.
func (f *FeroxScan) RemainingTicks() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	remaining := f.barLength - f.requests
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RequestsPerSecond computes the scan's own rate since it started.
func (f *FeroxScan) RequestsPerSecond() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.startedAt.IsZero() {
		return 0
	}
	elapsed := time.Since(f.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(f.requests) / elapsed
}
