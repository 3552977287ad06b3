package testkit

import (
	"reflect"
	"testing"
)

func TestGenerateFrameDeterministic(t *testing.T) {
	cfg := DefaultTrialConfig()
	first, err := NewTrialDataGenerator(cfg).GenerateFrame()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := NewTrialDataGenerator(cfg).GenerateFrame()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed should produce identical frames")
	}
}

func TestGenerateFrameShape(t *testing.T) {
	cfg := DefaultTrialConfig()
	cfg.SubjectCount = 50
	f, err := NewTrialDataGenerator(cfg).GenerateFrame()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if f.Len() != 50 {
		t.Fatalf("expected 50 rows, got %d", f.Len())
	}
	for _, name := range []string{"arm", "age", "marker", "response", "grade", "site"} {
		if !f.HasColumn(name) {
			t.Fatalf("missing column %q", name)
		}
	}

	arm, _ := f.Column("arm")
	if levels := arm.Levels(); len(levels) != 2 {
		t.Fatalf("expected 2 arms, got %v", levels)
	}
}

func TestGenerateFrameSeedChangesData(t *testing.T) {
	cfg := DefaultTrialConfig()
	first, _ := NewTrialDataGenerator(cfg).GenerateFrame()
	cfg.Seed = 7
	second, _ := NewTrialDataGenerator(cfg).GenerateFrame()
	if reflect.DeepEqual(first, second) {
		t.Fatal("different seeds should produce different frames")
	}
}
