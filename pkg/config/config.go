package config

import (
	"runtime"
	"strings"

	"github.com/yth/sorer/pkg/compression"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/schema"
)

// WholeInput is the Input.Len value that selects everything from Input.From
// to the end of the file.
const WholeInput = -1

// DefaultMinChunkBytes is the smallest range that is split across workers
const DefaultMinChunkBytes = 1 << 20

// Config is the configuration of one sorer run
type Config struct {
	Input         InputConfig         `yaml:"input" json:"input" mapstructure:"input"`
	Inference     InferenceConfig     `yaml:"inference" json:"inference" mapstructure:"inference"`
	Build         BuildConfig         `yaml:"build" json:"build" mapstructure:"build"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// InputConfig selects the data to read
type InputConfig struct {
	// Path of the .sor file, optionally compressed
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// From is the byte offset where the window starts
	From int `yaml:"from" json:"from" mapstructure:"from"`
	// Len is the window length in bytes, or WholeInput
	Len int `yaml:"len" json:"len" mapstructure:"len"`
	// Compression overrides detection: auto, none, gzip, zstd, lz4, snappy, s2, deflate
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
}

// InferenceConfig controls schema inference
type InferenceConfig struct {
	SampleRows int `yaml:"sample_rows" json:"sample_rows" mapstructure:"sample_rows"`
}

// BuildConfig controls columnar materialization
type BuildConfig struct {
	// Workers is the number of concurrent chunk builders; 0 means NumCPU
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`
	// MinChunkBytes keeps small ranges on a single worker
	MinChunkBytes int `yaml:"min_chunk_bytes" json:"min_chunk_bytes" mapstructure:"min_chunk_bytes"`
	// FailOnMalformed aborts the build on the first unterminated field
	FailOnMalformed bool `yaml:"fail_on_malformed" json:"fail_on_malformed" mapstructure:"fail_on_malformed"`
}

// ObservabilityConfig contains logging, metrics and tracing settings
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is json or console
	LogEncoding   string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	EnableMetrics bool   `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
}

// Default returns a Config with the standard sorer behaviour: whole file,
// 500-row sample, lenient malformed handling, warnings only.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Len:         WholeInput,
			Compression: "auto",
		},
		Inference: InferenceConfig{
			SampleRows: schema.DefaultSampleRows,
		},
		Build: BuildConfig{
			Workers:       runtime.NumCPU(),
			MinChunkBytes: DefaultMinChunkBytes,
		},
		Observability: ObservabilityConfig{
			LogLevel:          "warn",
			LogEncoding:       "console",
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks that values are within acceptable ranges
func (c *Config) Validate() error {
	if c.Input.From < 0 {
		return invalid("input.from", "must not be negative")
	}
	if c.Input.Len < WholeInput {
		return invalid("input.len", "must be -1 or a byte count")
	}
	if _, err := c.Input.Algorithm(); err != nil {
		return err
	}
	if c.Inference.SampleRows <= 0 {
		return invalid("inference.sample_rows", "must be positive")
	}
	if c.Build.Workers < 0 {
		return invalid("build.workers", "cannot be negative")
	}
	if c.Build.MinChunkBytes < 0 {
		return invalid("build.min_chunk_bytes", "cannot be negative")
	}
	switch c.Observability.LogEncoding {
	case "", "json", "console":
	default:
		return invalid("observability.log_encoding", "must be json or console")
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return invalid("observability.tracing_sample_rate", "must be between 0 and 1")
	}
	return nil
}

// Algorithm resolves the Compression override. It returns "" for auto, in
// which case the caller detects the algorithm from the file.
func (i *InputConfig) Algorithm() (alg compression.Algorithm, err error) {
	name := strings.ToLower(strings.TrimSpace(i.Compression))
	if name == "" || name == "auto" {
		return "", nil
	}
	alg, err = compression.ParseAlgorithm(name)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeConfig, "invalid input.compression").
			WithDetail("value", i.Compression)
	}
	return alg, nil
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (b *BuildConfig) GetWorkers() int {
	if b.Workers <= 0 {
		return runtime.NumCPU()
	}
	return b.Workers
}

func invalid(field, msg string) error {
	return errors.Newf(errors.ErrorTypeConfig, "%s %s", field, msg).WithDetail("field", field)
}
