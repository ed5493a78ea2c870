package stats

import "testing"

func TestAddStatusBuckets(t *testing.T) {
	s := New()
	s.AddRequest()
	s.AddStatus(200)
	s.AddRequest()
	s.AddStatus(403)
	s.AddRequest()
	s.AddStatus(429)
	s.AddRequest()
	s.AddStatus(500)

	if s.Successes.Load() != 1 {
		t.Errorf("successes = %d", s.Successes.Load())
	}
	if s.Status403.Load() != 1 {
		t.Errorf("403s = %d", s.Status403.Load())
	}
	if s.Status429.Load() != 1 {
		t.Errorf("429s = %d", s.Status429.Load())
	}
	if s.ServerErrors.Load() != 1 {
		t.Errorf("server errors = %d", s.ServerErrors.Load())
	}
	if !s.RequestsIssuedConsistent() {
		t.Error("expected weak invariant to hold")
	}
}

func TestUsizeFieldAddSubtract(t *testing.T) {
	s := New()
	s.AddToUsizeField(FieldTotalExpected, 100)
	s.SubtractFromUsizeField(FieldTotalExpected, 30)
	if got := s.UsizeField(FieldTotalExpected); got != 70 {
		t.Errorf("got %d", got)
	}
}

func TestMergeFromRoundTrip(t *testing.T) {
	s := New()
	s.AddRequest()
	s.AddStatus(200)
	s.AddError(ErrorTimeout)
	snap := s.Snapshot()

	fresh := New()
	fresh.MergeFrom(snap)
	if fresh.Snapshot() != snap {
		t.Errorf("merge round-trip mismatch: %+v vs %+v", fresh.Snapshot(), snap)
	}
}

func TestErrorCountByKind(t *testing.T) {
	s := New()
	s.AddError(ErrorTimeout)
	s.AddError(ErrorTimeout)
	s.AddError(ErrorConnection)
	if s.ErrorCount(ErrorTimeout) != 2 {
		t.Errorf("timeout count = %d", s.ErrorCount(ErrorTimeout))
	}
	if s.ErrorCount(ErrorConnection) != 1 {
		t.Errorf("connection count = %d", s.ErrorCount(ErrorConnection))
	}
	if s.Errors.Load() != 3 {
		t.Errorf("total errors = %d", s.Errors.Load())
	}
}
