// Package config holds the service configuration.
//
// Values come from a YAML file, then environment variables override them.
// Durations are written as strings ("1h", "2m").
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go.ngs.io/panchanga-api/internal/adapter/ephemeris/analytic"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	Boundary  BoundaryConfig  `yaml:"boundary"`
	Rules     RulesConfig     `yaml:"rules"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins,omitempty"` // empty allows all origins
	RequestTimeout     string   `yaml:"request_timeout"`
}

// Ephemeris sources.
const (
	SourceAnalytic = "analytic"
	SourceNetCDF   = "netcdf"
	SourceCSV      = "csv"
)

// EphemerisConfig selects the position source.
type EphemerisConfig struct {
	Source    string `yaml:"source"` // analytic, netcdf, csv
	Path      string `yaml:"path"`   // table file for netcdf and csv
	Ayanamsa  string `yaml:"ayanamsa"`
	NodeMode  string `yaml:"node_mode"`
	SpeedStep string `yaml:"speed_step"`
}

// BoundaryConfig tunes transition searches.
type BoundaryConfig struct {
	Step          string `yaml:"step"`
	Precision     string `yaml:"precision"`
	MaxIterations int    `yaml:"max_iterations"`
}

// RulesConfig locates the yoga rule table. An empty path uses the built-in table.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout, otlp
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			RequestTimeout: "30s",
		},
		Ephemeris: EphemerisConfig{
			Source:    SourceAnalytic,
			Ayanamsa:  string(analytic.Lahiri),
			NodeMode:  string(analytic.TrueNode),
			SpeedStep: "1h",
		},
		Boundary: BoundaryConfig{
			Step:          "1h",
			Precision:     "2m",
			MaxIterations: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			Endpoint:    "localhost:4317",
			ServiceName: "panchanga-api",
			SampleRatio: 1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		//nolint:gosec // G304: path comes from the command line.
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	//nolint:gosec // G306: configuration is not secret.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		c.Server.RequestTimeout = v
	}
	if v := os.Getenv("EPHEMERIS_SOURCE"); v != "" {
		c.Ephemeris.Source = v
	}
	if v := os.Getenv("EPHEMERIS_PATH"); v != "" {
		c.Ephemeris.Path = v
	}
	if v := os.Getenv("AYANAMSA"); v != "" {
		c.Ephemeris.Ayanamsa = v
	}
	if v := os.Getenv("NODE_MODE"); v != "" {
		c.Ephemeris.NodeMode = v
	}
	if v := os.Getenv("YOGA_RULES_PATH"); v != "" {
		c.Rules.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRACING_ENABLED %q: %w", v, err)
		}
		c.Tracing.Enabled = b
	}
	if v := os.Getenv("TRACING_EXPORTER"); v != "" {
		c.Tracing.Exporter = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
	if v := os.Getenv("TRACING_SAMPLE_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACING_SAMPLE_RATIO %q: %w", v, err)
		}
		c.Tracing.SampleRatio = f
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := positiveDuration("server.request_timeout", c.Server.RequestTimeout); err != nil {
		return err
	}

	switch c.Ephemeris.Source {
	case SourceAnalytic:
	case SourceNetCDF, SourceCSV:
		if c.Ephemeris.Path == "" {
			return fmt.Errorf("ephemeris.path is required for source %q", c.Ephemeris.Source)
		}
	default:
		return fmt.Errorf("ephemeris.source must be one of analytic, netcdf, csv, got %q", c.Ephemeris.Source)
	}
	if _, err := analytic.ParseAyanamsa(c.Ephemeris.Ayanamsa); err != nil {
		return fmt.Errorf("ephemeris.ayanamsa: %w", err)
	}
	if _, err := analytic.ParseNodeMode(c.Ephemeris.NodeMode); err != nil {
		return fmt.Errorf("ephemeris.node_mode: %w", err)
	}
	if _, err := positiveDuration("ephemeris.speed_step", c.Ephemeris.SpeedStep); err != nil {
		return err
	}

	if _, err := positiveDuration("boundary.step", c.Boundary.Step); err != nil {
		return err
	}
	if _, err := positiveDuration("boundary.precision", c.Boundary.Precision); err != nil {
		return err
	}
	if c.Boundary.MaxIterations <= 0 {
		return fmt.Errorf("boundary.max_iterations must be positive, got %d", c.Boundary.MaxIterations)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be stdout or otlp, got %q", c.Tracing.Exporter)
		}
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}
	return nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// RequestTimeout returns the parsed server.request_timeout.
func (c *Config) RequestTimeout() time.Duration {
	return c.Server.Timeout()
}

// Timeout returns the parsed request timeout, or zero when unset.
func (s ServerConfig) Timeout() time.Duration {
	d, _ := time.ParseDuration(s.RequestTimeout)
	return d
}

// SpeedStep returns the parsed ephemeris.speed_step.
func (c *Config) SpeedStep() time.Duration {
	d, _ := time.ParseDuration(c.Ephemeris.SpeedStep)
	return d
}

// BoundaryStep returns the parsed boundary.step.
func (c *Config) BoundaryStep() time.Duration {
	d, _ := time.ParseDuration(c.Boundary.Step)
	return d
}

// BoundaryPrecision returns the parsed boundary.precision.
func (c *Config) BoundaryPrecision() time.Duration {
	d, _ := time.ParseDuration(c.Boundary.Precision)
	return d
}
