package policy

import (
	"testing"

	"github.com/0x6d61/burrow/internal/config"
)

func TestEvaluateGuardsBelowMinRequests(t *testing.T) {
	c := New(config.PolicyAutoBail)
	snap := Snapshot{Threads: 50, Requests: 10, Errors: 100}
	if got := c.Evaluate(snap); got != ActionNone {
		t.Fatalf("expected guard to suppress trigger below min requests, got %v", got)
	}
}

func TestEvaluateTooManyErrorsTriggersAbortUnderAutoBail(t *testing.T) {
	c := New(config.PolicyAutoBail)
	snap := Snapshot{Threads: 50, Requests: 100, Errors: 30}
	if got := c.Evaluate(snap); got != ActionAbort {
		t.Fatalf("expected ActionAbort, got %v", got)
	}
}

func TestEvaluateDefaultPolicyNeverActs(t *testing.T) {
	c := New(config.PolicyDefault)
	snap := Snapshot{Threads: 50, Requests: 100, Errors: 100}
	if got := c.Evaluate(snap); got != ActionNone {
		t.Fatalf("expected ActionNone under default policy, got %v", got)
	}
}

func TestEvaluate403RatioTriggersRetuneUnderAutoTune(t *testing.T) {
	c := New(config.PolicyAutoTune)
	snap := Snapshot{Threads: 50, Requests: 100, Status403: 95}
	if got := c.Evaluate(snap); got != ActionRetune {
		t.Fatalf("expected ActionRetune, got %v", got)
	}
}

func TestTuneStepHalvesThenHealsBackUp(t *testing.T) {
	c := New(config.PolicyAutoTune)
	next, removeCap := c.TuneStep(100)
	if next != 50 || removeCap {
		t.Fatalf("expected first step to halve to 50, got next=%d removeCap=%v", next, removeCap)
	}

	var last int
	var removed bool
	for i := 0; i < autoTuneTicksToHeal; i++ {
		n, rc, adjusted := c.Heal()
		if adjusted {
			last = n
			removed = rc
		}
	}
	if last != 0 || !removed {
		t.Fatalf("expected heal back to the original 100 to remove the cap, got last=%d removed=%v", last, removed)
	}
}
