package uuid

import (
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	id := New()

	if !IsValid(id) {
		t.Fatalf("generated id %q is not a valid UUID", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id[14])
	}

	if _, err := Parse(id); err != nil {
		t.Errorf("generated id should round-trip through Parse: %v", err)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	first := New()
	time.Sleep(2 * time.Millisecond)
	second := New()

	// The leading 48 bits encode the millisecond timestamp, so ids sort
	// lexicographically by creation time.
	if strings.Compare(first, second) >= 0 {
		t.Errorf("expected %s < %s", first, second)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected parse error for garbage input")
	}
	if IsValid("") {
		t.Error("empty string is not a valid UUID")
	}
}
