package core

import (
	"testing"
)

func TestNewIDGeneratesUniqueValues(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("generated ID should not be empty")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewTableID(t *testing.T) {
	id := NewTableID()
	if id.String() == "" {
		t.Fatal("table ID should not be empty")
	}
}

func TestParseVariableKey(t *testing.T) {
	key, err := ParseVariableKey("age")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if key.String() != "age" {
		t.Fatalf("expected key \"age\", got %q", key)
	}

	if _, err := ParseVariableKey("   "); err == nil {
		t.Fatal("expected error for blank variable key")
	}
}
