package wordlist

import "testing"

func TestNewDedupesAndDropsEmpty(t *testing.T) {
	w := New([]string{"admin", "", "api", "admin"})
	if w.Len() != 2 {
		t.Fatalf("len = %d, words = %v", w.Len(), w.Words())
	}
}

func TestExtensionSetAddIsIdempotent(t *testing.T) {
	e := NewExtensionSet()
	if !e.Add("php") {
		t.Error("expected first add to report true")
	}
	if e.Add("php") {
		t.Error("expected second add to report false")
	}
	if len(e.List()) != 1 {
		t.Errorf("list = %v", e.List())
	}
}
