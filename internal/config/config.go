// Package config loads and validates nmapconv configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
)

const (
	defaultFileMode = 0o644
	maxFileMode     = 0o777
	configDirPerm   = 0o755
	configFilePerm  = 0o644
)

// Config represents the complete converter configuration
type Config struct {
	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// JSON output configuration
	Output OutputConfig `yaml:"output" json:"output"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output" validate:"required"`
}

// OutputConfig holds settings for the written JSON document
type OutputConfig struct {
	// Pretty selects indented output with sorted keys when --pretty is not given
	Pretty bool `yaml:"pretty" json:"pretty"`

	// Indent is the per-level indentation used in pretty mode
	Indent string `yaml:"indent" json:"indent" validate:"required,max=8"`

	// FileMode is the permission used when creating the JSON file
	FileMode uint32 `yaml:"file_mode" json:"file_mode" validate:"required,max=511"`
}

// MetricsConfig holds Prometheus textfile settings
type MetricsConfig struct {
	// Enable metrics collection
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Textfile is where the registry is dumped after each conversion
	Textfile string `yaml:"textfile" json:"textfile" validate:"required_if=Enabled true"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  string(logging.LevelWarn),
			Format: string(logging.FormatText),
			Output: "stderr",
		},
		Output: OutputConfig{
			Pretty:   false,
			Indent:   "  ",
			FileMode: defaultFileMode,
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Textfile: "",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to parse YAML config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration, reporting the first offending field.
func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.ErrConfigInvalid(fe.Namespace(), fe.Value())
	}
	return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
}

// LogConfig converts the logging section into a logging.Config.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == string(logging.LevelDebug),
	}
}

// OutputFileMode returns the configured file mode for JSON output.
func (c *Config) OutputFileMode() os.FileMode {
	return os.FileMode(c.Output.FileMode & maxFileMode)
}
