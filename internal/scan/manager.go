package scan

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/0x6d61/burrow/internal/httpresponse"
	"github.com/0x6d61/burrow/internal/semaphore"
	"github.com/0x6d61/burrow/internal/urlutil"
)

// Denylist guards try_recursion's admission check: exact URL matches or
// regex pattern matches are both refused.
type Denylist struct {
	Exact []string
	Regex []*regexp.Regexp
}

// Allows reports whether url is NOT blocked by the denylist.
func (d Denylist) Allows(url string) bool {
	for _, exact := range d.Exact {
		if url == exact {
			return false
		}
	}
	for _, re := range d.Regex {
		if re.MatchString(url) {
			return false
		}
	}
	return true
}

// Manager is the process-wide scan registry: it dedupes targets by
// normalised URL, enforces the scan-limit via a dynamic semaphore, and
// tracks every spawned scan for join_all/display_scans/cancel.
type Manager struct {
	mu    sync.RWMutex
	byURL map[string]*FeroxScan
	order []*FeroxScan
	nextID atomic.Int64

	sem *semaphore.Dynamic

	NoRecursion bool
	DepthCap    int
	Denylist    Denylist

	wg sync.WaitGroup
}

// NewManager builds a Manager with the given scan-limit (0 = unlimited).
func NewManager(scanLimit int, depthCap int, noRecursion bool, denylist Denylist) *Manager {
	return &Manager{
		byURL:       make(map[string]*FeroxScan),
		sem:         semaphore.NewDynamic(scanLimit),
		NoRecursion: noRecursion,
		DepthCap:    depthCap,
		Denylist:    denylist,
	}
}

// AddDirectoryScan normalises url and registers a Directory FeroxScan for
// it unless one already exists, reporting whether this call inserted it.
func (m *Manager) AddDirectoryScan(url string) (inserted bool, s *FeroxScan, err error) {
	return m.add(url, KindDirectory, 0)
}

// AddFileScan registers a File FeroxScan (no progress bar, ordered).
func (m *Manager) AddFileScan(url string, order int) (inserted bool, s *FeroxScan, err error) {
	return m.add(url, KindFile, order)
}

func (m *Manager) add(rawURL string, kind Kind, order int) (bool, *FeroxScan, error) {
	normalized, err := urlutil.Normalize(rawURL)
	if err != nil {
		return false, nil, fmt.Errorf("scan: normalize %q: %w", rawURL, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byURL[normalized]; ok {
		return false, existing, nil
	}

	id := fmt.Sprintf("scan-%d", m.nextID.Add(1))
	s := New(id, normalized, kind)
	s.Order = order
	m.byURL[normalized] = s
	m.order = append(m.order, s)
	return true, s, nil
}

// GetScanByURL returns the scan registered for the exact normalised URL.
func (m *Manager) GetScanByURL(rawURL string) (*FeroxScan, bool) {
	normalized, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byURL[normalized]
	return s, ok
}

// GetBaseScanByURL finds the Directory scan whose URL is the longest
// registered prefix of url — the "owning" scan for an extracted file.
func (m *Manager) GetBaseScanByURL(url string) (*FeroxScan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *FeroxScan
	for _, s := range m.order {
		if s.Kind != KindDirectory {
			continue
		}
		if len(s.URL) > len(url) || url[:len(s.URL)] != s.URL {
			continue
		}
		if best == nil || len(s.URL) > len(best.URL) {
			best = s
		}
	}
	return best, best != nil
}

// TryRecursion admits response.URL as a new Directory scan when
// recursion is enabled, the response looks like a directory, depth is
// within cap, and the denylist allows it. spawn is invoked on the newly
// admitted scan (in its own goroutine) when insertion succeeds.
func (m *Manager) TryRecursion(ctx context.Context, response *httpresponse.Response, spawn func(context.Context, *FeroxScan)) {
	if m.NoRecursion {
		return
	}
	if !response.IsDirectory() {
		return
	}
	if m.DepthCap > 0 && urlutil.Depth(response.URL) > m.DepthCap {
		return
	}
	if !m.Denylist.Allows(response.URL) {
		return
	}

	inserted, s, err := m.AddDirectoryScan(response.URL)
	if err != nil || !inserted {
		return
	}

	m.wg.Add(1)
	scanCtx, cancel := context.WithCancel(ctx)
	s.SetTask(cancel)
	s.SetStatus(StatusRunning)
	go func() {
		defer m.wg.Done()
		spawn(scanCtx, s)
	}()
}

// Cancel aborts the scans at the given indices (as seen by DisplayScans).
func (m *Manager) Cancel(indices []int) {
	scans := m.DisplayScans()
	for _, i := range indices {
		if i < 0 || i >= len(scans) {
			continue
		}
		scans[i].Abort()
	}
}

// JoinAll waits for every spawned scan goroutine to finish.
func (m *Manager) JoinAll() {
	m.wg.Wait()
}

// DisplayScans returns Directory scans that have a task handle, in
// insertion order, for the interactive menu.
func (m *Manager) DisplayScans() []*FeroxScan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*FeroxScan, 0, len(m.order))
	for _, s := range m.order {
		if s.Kind == KindDirectory && s.HasTask() {
			out = append(out, s)
		}
	}
	return out
}

// Acquire blocks until the manager's scan-limit semaphore admits one
// more concurrent scan (a no-op if scan-limit is 0/unlimited).
func (m *Manager) Acquire() { m.sem.Acquire() }

// Release returns a scan-limit permit.
func (m *Manager) Release() { m.sem.Release() }

// SetScanLimit adjusts the concurrency cap at runtime (e.g. from the
// interactive menu).
func (m *Manager) SetScanLimit(limit int) { m.sem.SetCapacity(limit) }
