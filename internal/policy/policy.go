// Package policy implements the per-scan adaptive controller that
// watches request/error counters at each response boundary and reacts
// according to the configured RequesterPolicy (Default, AutoTune,
// AutoBail).
package policy

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/0x6d61/burrow/internal/config"
)

const (
	highErrorRatio = 0.90
	highRateRatio  = highErrorRatio / 3 // 429 ratio trigger

	autoTuneCooldown    = 7 * time.Second
	autoTuneTicksToHeal = 10
)

// Snapshot is the read-only view of a scan's counters the controller
// evaluates against its triggers.
type Snapshot struct {
	Threads   int
	Requests  uint64
	Errors    uint64
	Status403 uint64
	Status429 uint64
}

// Action is what the caller (the requester's worker loop) should do after
// Evaluate runs.
type Action int

const (
	ActionNone Action = iota
	ActionAbort
	ActionRetune
)

// Controller evaluates triggers and holds the AutoTune step/cooldown
// state. One Controller is owned per scan.
type Controller struct {
	policy config.RequesterPolicy

	mu          sync.Mutex // single-writer discipline for AutoTune adjustments
	coolingDown atomic.Bool
	tuning      bool
	originalRPS int
	currentRPS  int
	healthyTick int
}

// New returns a Controller for the given policy.
func New(p config.RequesterPolicy) *Controller {
	return &Controller{policy: p}
}

// Evaluate runs the trigger computation from spec.md §4.5 against snap
// and returns what the caller should do.
//
// too_many_errors: scan-local errors >= max(threads/2, 25).
// too_many_403s:   403s/requests >= 0.90.
// too_many_429s:   429s/requests >= 0.30.
// Guard: no action until max(threads, 50) requests issued, or while
// cooling down.
func (c *Controller) Evaluate(snap Snapshot) Action {
	minRequests := snap.Threads
	if minRequests < 50 {
		minRequests = 50
	}
	if snap.Requests < uint64(minRequests) {
		return ActionNone
	}
	if c.coolingDown.Load() {
		return ActionNone
	}

	errorFloor := snap.Threads / 2
	if errorFloor < 25 {
		errorFloor = 25
	}

	tooManyErrors := snap.Errors >= uint64(errorFloor)
	tooMany403s := snap.Requests > 0 && float64(snap.Status403)/float64(snap.Requests) >= highErrorRatio
	tooMany429s := snap.Requests > 0 && float64(snap.Status429)/float64(snap.Requests) >= highRateRatio

	if !tooManyErrors && !tooMany403s && !tooMany429s {
		return ActionNone
	}

	switch c.policy {
	case config.PolicyAutoBail:
		return ActionAbort
	case config.PolicyAutoTune:
		return ActionRetune
	default:
		return ActionNone
	}
}

// TuneStep computes the next rate limit to install given the current rps
// (0 means unlimited, treated as "no cap yet seen"). Returns the new rps
// and whether the cap should be removed entirely (current >= original).
// Only one worker should call TuneStep per tick — callers must hold the
// controller's lock via TryLock first.
func (c *Controller) TuneStep(currentRPS int) (next int, removeCap bool) {
	if !c.tuning {
		c.tuning = true
		c.originalRPS = currentRPS
		if c.originalRPS <= 0 {
			c.originalRPS = 1000 // treat "unlimited" as a high baseline to step down from
		}
		c.currentRPS = c.originalRPS
	}

	half := c.currentRPS / 2
	if half < 1 {
		half = 1
	}
	c.currentRPS = half
	c.healthyTick = 0
	c.coolingDown.Store(true)

	go c.releaseCooldownAfter(autoTuneCooldown)

	return c.currentRPS, false
}

// Heal is called on every clean tick (no new trigger) while tuning is
// active; after autoTuneTicksToHeal consecutive healthy ticks, it steps
// the rate limit back up, removing the cap once current >= original.
// Like TuneStep, callers must hold the controller's lock via TryLock.
func (c *Controller) Heal() (next int, removeCap bool, adjusted bool) {
	if !c.tuning {
		return 0, false, false
	}

	c.healthyTick++
	if c.healthyTick < autoTuneTicksToHeal {
		return 0, false, false
	}
	c.healthyTick = 0

	c.currentRPS *= 2
	if c.currentRPS >= c.originalRPS {
		c.tuning = false
		return 0, true, true
	}
	return c.currentRPS, false, true
}

// TryLock attempts to acquire the controller's adjustment lock without
// blocking, implementing the single-writer-per-tick discipline.
func (c *Controller) TryLock() bool {
	return c.mu.TryLock()
}

// Unlock releases a lock acquired via TryLock.
func (c *Controller) Unlock() {
	c.mu.Unlock()
}

func (c *Controller) releaseCooldownAfter(d time.Duration) {
	time.Sleep(d)
	c.coolingDown.Store(false)
}

// CoolingDown reports whether further triggers are currently suppressed.
func (c *Controller) CoolingDown() bool {
	return c.coolingDown.Load()
}
