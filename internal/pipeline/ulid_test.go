package pipeline

import (
	"strings"
	"testing"
)

func TestNewID_Format(t *testing.T) {
	id := NewID()
	if len(id) != 26 {
		t.Fatalf("length = %d, want 26", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune(crockford, r) {
			t.Errorf("unexpected character %q in %q", r, id)
		}
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewID_SortsByTime(t *testing.T) {
	// The timestamp prefix makes ids from the same generator non-decreasing.
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		if id < prev {
			t.Fatalf("id %q sorts before earlier id %q", id, prev)
		}
		prev = id
	}
}
