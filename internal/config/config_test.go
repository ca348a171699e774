package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	if err := os.WriteFile(path, []byte(`{"threads": 4}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg.Threads != 4 {
		t.Errorf("Threads = %d, want 4", *cfg.Threads)
	}
	if cfg.Features.Algorithm != "euclid" {
		t.Errorf("Algorithm = %q, want default euclid", cfg.Features.Algorithm)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for non-.json file")
	}
}

func TestFeatureParametersEqual(t *testing.T) {
	a := FeatureParameters{DataSource: "signal", Algorithm: "dtw", WindowSize: 10, TimeLag: 5}
	b := a
	if !a.Equal(b) {
		t.Error("expected equal parameters to compare equal")
	}
	b.TimeLag = 6
	if a.Equal(b) {
		t.Error("expected differing TimeLag to compare unequal")
	}
	if a.FeatureDimension() != 11 {
		t.Errorf("FeatureDimension() = %d, want 11", a.FeatureDimension())
	}
}
