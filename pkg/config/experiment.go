package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Experiment holds the tunable parameters of one classification crawl.
// The tracking vocabulary is deliberately configurable: the stock corpus is
// a heuristic and unseen label vocabularies may need different terms.
type Experiment struct {
	NumClickstreams    int      `yaml:"num_clickstreams"`
	ClickstreamLength  int      `yaml:"clickstream_length"`
	ShingleBlockSize   int      `yaml:"shingle_block_size"`
	SettleDelaySeconds int      `yaml:"settle_delay_seconds"`
	NoiseControl       *bool    `yaml:"noise_control"`
	RejectMode         string   `yaml:"reject_mode"` // "reject-tracking" or "reject-all"
	TrackingKeywords   []string `yaml:"tracking_keywords"`
	TrackingExactWords []string `yaml:"tracking_exact_words"`
}

// DefaultExperiment returns the stock experiment parameters.
func DefaultExperiment() *Experiment {
	noise := true
	return &Experiment{
		NumClickstreams:    10,
		ClickstreamLength:  5,
		ShingleBlockSize:   40,
		SettleDelaySeconds: 5,
		NoiseControl:       &noise,
		RejectMode:         "reject-tracking",
		TrackingKeywords:   []string{"track", "target", "advert"},
		TrackingExactWords: []string{"ad", "ads"},
	}
}

// LoadExperiment reads an experiment YAML file, filling unset fields with
// defaults. An empty path returns the defaults.
func LoadExperiment(path string) (*Experiment, error) {
	exp := DefaultExperiment()
	if path == "" {
		return exp, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment config: %w", err)
	}

	var loaded Experiment
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing experiment config: %w", err)
	}

	if loaded.NumClickstreams > 0 {
		exp.NumClickstreams = loaded.NumClickstreams
	}
	if loaded.ClickstreamLength > 0 {
		exp.ClickstreamLength = loaded.ClickstreamLength
	}
	if loaded.ShingleBlockSize > 0 {
		exp.ShingleBlockSize = loaded.ShingleBlockSize
	}
	if loaded.SettleDelaySeconds > 0 {
		exp.SettleDelaySeconds = loaded.SettleDelaySeconds
	}
	if loaded.NoiseControl != nil {
		exp.NoiseControl = loaded.NoiseControl
	}
	if loaded.RejectMode != "" {
		exp.RejectMode = loaded.RejectMode
	}
	if len(loaded.TrackingKeywords) > 0 {
		exp.TrackingKeywords = loaded.TrackingKeywords
	}
	if len(loaded.TrackingExactWords) > 0 {
		exp.TrackingExactWords = loaded.TrackingExactWords
	}
	return exp, nil
}

// SettleDelay returns the settle delay as a duration.
func (e *Experiment) SettleDelay() time.Duration {
	return time.Duration(e.SettleDelaySeconds) * time.Second
}

// NoiseControlEnabled reports whether baseline noise masking is on.
func (e *Experiment) NoiseControlEnabled() bool {
	return e.NoiseControl == nil || *e.NoiseControl
}
