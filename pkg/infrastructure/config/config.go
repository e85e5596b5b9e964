// Package config loads run settings from defaults, a YAML file and the environment
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvLogLevel        = "MINT_LOG_LEVEL"
	EnvLogFormat       = "MINT_LOG_FORMAT"
	EnvOutputFormat    = "MINT_OUTPUT_FORMAT"
	EnvSolverTimeLimit = "MINT_SOLVER_TIME_LIMIT"
	EnvSolverTolerance = "MINT_SOLVER_TOLERANCE"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config is the complete run configuration
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SolverConfig tunes model construction and the simplex
type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	// TimeLimit bounds a single solve; 0 means no limit
	TimeLimit         time.Duration `yaml:"time_limit"`
	RestrictLaneModes bool          `yaml:"restrict_lane_modes"`
}

// OutputConfig selects how reports are rendered
type OutputConfig struct {
	Format string `yaml:"format"`
	// Dir receives the CSV report files when Format is csv
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the zerolog logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Tolerance: 1e-10,
		},
		Output: OutputConfig{
			Format: FormatText,
			Dir:    "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvOutputFormat); ok && v != "" {
		c.Output.Format = v
	}
	if v, ok := lookup(EnvSolverTimeLimit); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q", EnvSolverTimeLimit, v)
		}
		c.Solver.TimeLimit = d
	}
	if v, ok := lookup(EnvSolverTolerance); ok && v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvSolverTolerance, v)
		}
		c.Solver.Tolerance = tol
	}
	return nil
}

// Validate checks the settings for consistency
func (c *Config) Validate() error {
	var errs []error
	if c.Solver.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("solver.tolerance must be >= 0, got %v", c.Solver.Tolerance))
	}
	if c.Solver.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("solver.time_limit must be >= 0, got %v", c.Solver.TimeLimit))
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatCSV:
	default:
		errs = append(errs, fmt.Errorf("output.format must be one of text, json, csv, got %q", c.Output.Format))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
