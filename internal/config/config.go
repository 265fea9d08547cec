// Package config provides unified configuration loading for simfactory.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmrisim/simfactory/internal/constants"
	"gopkg.in/yaml.v3"
)

// FactoryConfig contains all simfactory configuration settings.
type FactoryConfig struct {
	// Logging contains settings for operational and generation logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Output contains settings for generated file naming and placement.
	Output OutputConfig `json:"output" yaml:"output"`

	// Catalog contains settings for the run catalog.
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Sampler contains settings for the gradient direction optimizer.
	Sampler SamplerConfig `json:"sampler" yaml:"sampler"`

	// Simulation contains settings for the simulation factory.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// LoggingConfig configures simfactory's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables generation logging to <output>/generation.jsonl.
	// "trace" additionally logs every written fragment.
	Level string `json:"level" yaml:"level"`
}

// OutputConfig configures output naming.
type OutputConfig struct {
	// Naming is the file prefix used when neither the scene nor --name sets one.
	Naming string `json:"naming" yaml:"naming"`

	// TempPrefix names the temporary directory created when --out is omitted.
	TempPrefix string `json:"temp_prefix" yaml:"temp_prefix"`
}

// CatalogConfig configures the SQLite run catalog.
type CatalogConfig struct {
	// Enabled records every generation run in the catalog.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the database file. Supports ${VAR} syntax and a leading ~.
	// Empty means ~/.simfactory/catalog.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SamplerConfig configures the multishell direction sampler.
type SamplerConfig struct {
	// MaxIter is the default optimizer iteration cap.
	MaxIter int `json:"max_iter" yaml:"max_iter"`
}

// SimulationConfig configures the simulation factory.
type SimulationConfig struct {
	// AllowExperimentalArtifacts lets artifact models without a settled
	// parameterization (distortions) through.
	AllowExperimentalArtifacts bool `json:"allow_experimental_artifacts" yaml:"allow_experimental_artifacts"`
}

// Default returns a FactoryConfig with sensible defaults.
func Default() *FactoryConfig {
	return &FactoryConfig{
		Logging: LoggingConfig{
			Level: constants.DefaultLogLevel,
		},
		Output: OutputConfig{
			Naming:     constants.DefaultOutputNaming,
			TempPrefix: constants.DefaultTempPrefix,
		},
		Catalog: CatalogConfig{
			Enabled: false,
		},
		Sampler: SamplerConfig{
			MaxIter: constants.DefaultMaxIter,
		},
		Simulation: SimulationConfig{
			AllowExperimentalArtifacts: false,
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.simfactory/config.yaml -> environment variables
func Load() (*FactoryConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.ConfigDirName, constants.ConfigFileName)
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads path when it is set, otherwise the default locations.
// Environment variables are applied last in both cases.
func LoadPath(path string) (*FactoryConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*FactoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Catalog.Path = expandEnvVars(config.Catalog.Path)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *FactoryConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Sampler.MaxIter < 1 || c.Sampler.MaxIter > constants.MaxSamplerIter {
		return fmt.Errorf("max_iter must be between 1 and %d, got %d", constants.MaxSamplerIter, c.Sampler.MaxIter)
	}

	if c.Output.Naming == "" {
		return fmt.Errorf("output naming must not be empty")
	}
	if strings.ContainsAny(c.Output.Naming, `/\`) {
		return fmt.Errorf("output naming must not contain path separators: %s", c.Output.Naming)
	}

	return nil
}

// CatalogPath returns the catalog database path with ~ expanded, falling
// back to ~/.simfactory/catalog.db.
func (c *FactoryConfig) CatalogPath() (string, error) {
	p := c.Catalog.Path
	if p != "" && !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	if p == "" {
		return filepath.Join(home, constants.ConfigDirName, constants.CatalogFileName), nil
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *FactoryConfig) {
	if v := os.Getenv("SIMFACTORY_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("SIMFACTORY_OUTPUT_NAMING"); v != "" {
		config.Output.Naming = v
	}

	// A path enables the catalog; "off" disables it.
	if v := os.Getenv("SIMFACTORY_CATALOG"); v != "" {
		switch v {
		case "off", "false", "0":
			config.Catalog.Enabled = false
		default:
			config.Catalog.Enabled = true
			config.Catalog.Path = expandEnvVars(v)
		}
	}

	if v := os.Getenv("SIMFACTORY_SAMPLER_MAX_ITER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampler.MaxIter = n
		}
	}

	if v := os.Getenv("SIMFACTORY_ALLOW_EXPERIMENTAL"); v != "" {
		config.Simulation.AllowExperimentalArtifacts = v == "true" || v == "1"
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
