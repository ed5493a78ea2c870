package requester

import "testing"

func TestUnlimitedLimiterNeverBlocks(t *testing.T) {
	lim := NewRateLimiter(0)
	if !lim.Unlimited() {
		t.Fatal("expected rps<=0 to be unlimited")
	}
	for i := 0; i < 1000; i++ {
		lim.AcquireOne()
	}
}

func TestInitialTokensAndCapacity(t *testing.T) {
	lim := NewRateLimiter(10)
	if lim.max != 10 {
		t.Fatalf("max = %v", lim.max)
	}
	if lim.tokens != 5 {
		t.Fatalf("initial tokens = %v, want max(rps/2,1)=5", lim.tokens)
	}
	if lim.refill != 1 {
		t.Fatalf("refill = %v, want max(rps/10,1)=1", lim.refill)
	}
}

func TestRPSOneUsesOneSecondInterval(t *testing.T) {
	lim := NewRateLimiter(1)
	if lim.tokens != 1 {
		t.Fatalf("initial tokens = %v, want 1", lim.tokens)
	}
	if lim.refill != 1 {
		t.Fatalf("refill = %v, want 1", lim.refill)
	}
}

func TestHolderReplace(t *testing.T) {
	h := NewHolder(NewRateLimiter(5))
	if h.Current().RPS() != 5 {
		t.Fatalf("rps = %d", h.Current().RPS())
	}
	h.Replace(NewRateLimiter(2))
	if h.Current().RPS() != 2 {
		t.Fatalf("rps after replace = %d", h.Current().RPS())
	}
}
