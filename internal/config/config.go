// Package config loads the pipeline's run configuration: a JSON
// document of optional pointer fields merged onto defaults, validated
// for file extension and size before parsing.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/comove/tracepair/internal/errs"
)

// DefaultConfigPath is the canonical location of a run's tuning file,
// relative to the CLI's working directory.
const DefaultConfigPath = "config/run.defaults.json"

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB, same ceiling as the teacher's tuning loader.

// FeatureParameters mirrors spec.md §3's FeatureParameters: the
// parameters baked into any similarity computation and the classifier
// trained against it. A mismatch between an artifact's parameters and
// a driver's configured parameters is a fatal ParameterMismatch.
type FeatureParameters struct {
	DataSource string `json:"data_source"` // "signal" or "location"
	Algorithm  string `json:"algorithm"`   // "euclid", "dtw", or "multi-dtw"
	WindowSize int    `json:"window_size"`
	TimeLag    int    `json:"time_lag"`
}

// FeatureDimension returns 2*TimeLag + 1.
func (p FeatureParameters) FeatureDimension() int { return 2*p.TimeLag + 1 }

// Equal reports whether two FeatureParameters describe the same
// computation. Used by every downstream stage to reject mismatched
// artifacts (spec.md §3, "a mismatch is a fatal error").
func (p FeatureParameters) Equal(o FeatureParameters) bool {
	return p.DataSource == o.DataSource &&
		p.Algorithm == o.Algorithm &&
		p.WindowSize == o.WindowSize &&
		p.TimeLag == o.TimeLag
}

// RunConfig is the root configuration for a single pipeline run. Every
// field is optional; fields omitted from a loaded JSON document keep
// their default value, so partial override files are safe.
type RunConfig struct {
	Features *FeatureParameters `json:"features,omitempty"`

	Threads               *int     `json:"threads,omitempty"`
	DefaultSignalStrength *int     `json:"default_signal_strength,omitempty"`
	BadAPThreshold        *float64 `json:"bad_ap_threshold,omitempty"`
	SmoothingWindow       *int     `json:"smoothing_window,omitempty"`
}

func ptrInt(v int) *int { return &v }

func ptrFloat64(v float64) *float64 { return &v }

// Defaults returns the pipeline's built-in default configuration,
// matching the constants assumed throughout spec.md §4.1/§4.2.
func Defaults() *RunConfig {
	return &RunConfig{
		Features: &FeatureParameters{
			DataSource: "signal",
			Algorithm:  "euclid",
			WindowSize: 10,
			TimeLag:    5,
		},
		Threads:               ptrInt(1),
		DefaultSignalStrength: ptrInt(-100),
		BadAPThreshold:        ptrFloat64(-90),
		SmoothingWindow:       ptrInt(1),
	}
}

// Load reads a RunConfig from path, validating it has a .json
// extension and is under maxConfigFileSize, and merges it onto
// Defaults(). Fields present in the file override the default; fields
// absent keep the default value.
func Load(path string) (*RunConfig, error) {
	const op = "config.Load"

	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, errs.Newf(errs.MalformedInput, op, "config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, errs.Newf(errs.MalformedInput, op, "config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	raw, err := os.ReadFile(clean)
	if err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}

	var override RunConfig
	if err := json.Unmarshal(raw, &override); err != nil {
		return nil, errs.New(errs.MalformedInput, op, fmt.Errorf("decoding %s: %w", path, err))
	}

	cfg := Defaults()
	if override.Features != nil {
		cfg.Features = override.Features
	}
	if override.Threads != nil {
		cfg.Threads = override.Threads
	}
	if override.DefaultSignalStrength != nil {
		cfg.DefaultSignalStrength = override.DefaultSignalStrength
	}
	if override.BadAPThreshold != nil {
		cfg.BadAPThreshold = override.BadAPThreshold
	}
	if override.SmoothingWindow != nil {
		cfg.SmoothingWindow = override.SmoothingWindow
	}
	return cfg, nil
}
