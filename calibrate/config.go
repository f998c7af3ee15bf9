package calibrate

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/agent"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMaxSteps caps the agent step budget per trial.
	DefaultMaxSteps = 6
	// DefaultTrialTimeout bounds the wall clock of a single trial.
	DefaultTrialTimeout = 60 * time.Second
	// DefaultAttemptDelay is the pause between trials, backpressure
	// against the calibrated backend.
	DefaultAttemptDelay = time.Second
)

// Config holds engine knobs, applied through Options.
type Config struct {
	MaxSteps     int
	Samples      int
	TrialTimeout time.Duration
	AttemptDelay time.Duration
	OutputDir    string
	Force        bool
}

// Option mutates the engine Config.
type Option func(*Config)

// NewConfig applies options over defaults.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		MaxSteps:     DefaultMaxSteps,
		Samples:      1,
		TrialTimeout: DefaultTrialTimeout,
		AttemptDelay: DefaultAttemptDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Samples < 1 {
		cfg.Samples = 1
	}
	return cfg
}

// WithMaxSteps overrides the per-trial step budget.
func WithMaxSteps(n int) Option {
	return func(c *Config) { c.MaxSteps = n }
}

// WithSamples sets how many trials are taken per (tool, strategy).
// The default of 1 trades statistical rigor for sweep speed.
func WithSamples(n int) Option {
	return func(c *Config) { c.Samples = n }
}

// WithTrialTimeout overrides the per-trial wall-clock bound.
func WithTrialTimeout(d time.Duration) Option {
	return func(c *Config) { c.TrialTimeout = d }
}

// WithAttemptDelay overrides the inter-trial delay.
func WithAttemptDelay(d time.Duration) Option {
	return func(c *Config) { c.AttemptDelay = d }
}

// WithOutputDir enables report files under dir.
func WithOutputDir(dir string) Option {
	return func(c *Config) { c.OutputDir = dir }
}

// WithForce recalibrates tools whose schema fingerprint is unchanged.
func WithForce(force bool) Option {
	return func(c *Config) { c.Force = force }
}

// FileConfig is the on-disk configuration consumed by the CLI.
type FileConfig struct {
	// Catalog is the tool catalog document.
	Catalog string `json:"catalog" yaml:"catalog" validate:"required"`
	// Mapping is the persisted strategy mapping file.
	Mapping string `json:"mapping" yaml:"mapping" validate:"required"`
	// OutputDir receives per-server report files.
	OutputDir string `json:"output_dir" yaml:"output_dir" validate:"required"`
	// Agent configures the execution backend.
	Agent agent.Config `json:"agent" yaml:"agent"`

	MaxSteps        int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	Samples         int `json:"samples,omitempty" yaml:"samples,omitempty"`
	TrialTimeoutSec int `json:"trial_timeout_sec,omitempty" yaml:"trial_timeout_sec,omitempty"`
	AttemptDelayMs  int `json:"attempt_delay_ms,omitempty" yaml:"attempt_delay_ms,omitempty"`
}

// LoadConfig reads and validates the CLI configuration file.
func LoadConfig(file string) (*FileConfig, error) {
	cfg := new(FileConfig)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load config %q", file)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	return cfg, nil
}

// Options converts the file configuration into engine options.
func (c *FileConfig) Options(force bool) []Option {
	opts := []Option{
		WithOutputDir(c.OutputDir),
		WithForce(force),
	}
	if c.MaxSteps > 0 {
		opts = append(opts, WithMaxSteps(c.MaxSteps))
	}
	if c.Samples > 0 {
		opts = append(opts, WithSamples(c.Samples))
	}
	if c.TrialTimeoutSec > 0 {
		opts = append(opts, WithTrialTimeout(time.Duration(c.TrialTimeoutSec)*time.Second))
	}
	if c.AttemptDelayMs > 0 {
		opts = append(opts, WithAttemptDelay(time.Duration(c.AttemptDelayMs)*time.Millisecond))
	}
	return opts
}
