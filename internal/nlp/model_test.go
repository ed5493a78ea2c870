package nlp

import "testing"

func TestAddDocumentAccumulatesTerms(t *testing.T) {
	m := NewModel()
	m.AddDocument(NewDocument("the quick brown fox jumps over the lazy dog"))
	m.AddDocument(NewDocument("the quick brown fox"))

	if m.NumDocuments() != 2 {
		t.Fatalf("numDocuments = %d", m.NumDocuments())
	}

	words := m.AllWords()
	if len(words) == 0 {
		t.Fatal("expected at least one scored word")
	}
}

func TestRareWordScoresHigherThanCommonWord(t *testing.T) {
	m := NewModel()
	for i := 0; i < 5; i++ {
		m.AddDocument(NewDocument("common word appears everywhere"))
	}
	m.AddDocument(NewDocument("common word appears everywhere plus unique"))

	// Past the warm-up documents scores are recomputed only in batches;
	// force a recompute so they reflect all six documents.
	m.mu.Lock()
	m.recalculateLocked()
	m.mu.Unlock()

	var commonScore, uniqueScore float64
	for term, meta := range m.terms {
		if term == "common" {
			commonScore = meta.score
		}
		if term == "unique" {
			uniqueScore = meta.score
		}
	}

	if uniqueScore <= commonScore {
		t.Errorf("expected unique term to score higher: unique=%f common=%f", uniqueScore, commonScore)
	}
}
