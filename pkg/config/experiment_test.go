package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadExperimentDefaults(t *testing.T) {
	t.Parallel()

	exp, err := LoadExperiment("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exp.NumClickstreams != 10 {
		t.Errorf("NumClickstreams = %d, want 10", exp.NumClickstreams)
	}
	if exp.ClickstreamLength != 5 {
		t.Errorf("ClickstreamLength = %d, want 5", exp.ClickstreamLength)
	}
	if exp.ShingleBlockSize != 40 {
		t.Errorf("ShingleBlockSize = %d, want 40", exp.ShingleBlockSize)
	}
	if exp.SettleDelay() != 5*time.Second {
		t.Errorf("SettleDelay = %v, want 5s", exp.SettleDelay())
	}
	if !exp.NoiseControlEnabled() {
		t.Error("noise control should default to on")
	}
	if exp.RejectMode != "reject-tracking" {
		t.Errorf("RejectMode = %q, want reject-tracking", exp.RejectMode)
	}
}

func TestLoadExperimentOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "experiment.yaml")
	body := `
num_clickstreams: 3
clickstream_length: 2
noise_control: false
tracking_keywords: ["marketing"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	exp, err := LoadExperiment(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exp.NumClickstreams != 3 {
		t.Errorf("NumClickstreams = %d, want 3", exp.NumClickstreams)
	}
	if exp.ClickstreamLength != 2 {
		t.Errorf("ClickstreamLength = %d, want 2", exp.ClickstreamLength)
	}
	if exp.NoiseControlEnabled() {
		t.Error("noise control should be off")
	}
	if len(exp.TrackingKeywords) != 1 || exp.TrackingKeywords[0] != "marketing" {
		t.Errorf("TrackingKeywords = %v", exp.TrackingKeywords)
	}

	// Unset fields keep their defaults.
	if exp.ShingleBlockSize != 40 {
		t.Errorf("ShingleBlockSize = %d, want default 40", exp.ShingleBlockSize)
	}
	if len(exp.TrackingExactWords) != 2 {
		t.Errorf("TrackingExactWords = %v, want defaults", exp.TrackingExactWords)
	}
}

func TestLoadExperimentMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadExperiment(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadExperimentMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("num_clickstreams: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadExperiment(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
