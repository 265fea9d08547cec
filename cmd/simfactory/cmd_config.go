package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmrisim/simfactory/internal/config"
	"github.com/dmrisim/simfactory/internal/constants"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage simfactory configuration",
		Long: `View and modify simfactory configuration settings.

Configuration is stored in ~/.simfactory/config.yaml unless --config
names another file.

Examples:
  simfactory config list                          # Show all settings
  simfactory config get sampler.max_iter          # Get a specific setting
  simfactory config set catalog.enabled true      # Set a setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			cfg := env.cfg
			w := cmd.OutOrStdout()

			if env.jsonOut {
				return printJSON(w, cfg)
			}

			catalogPath, err := cfg.CatalogPath()
			if err != nil {
				catalogPath = "(unresolved)"
			}
			fmt.Fprintln(w, "Logging Settings:")
			fmt.Fprintf(w, "  logging.level:                           %s\n", cfg.Logging.Level)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Output Settings:")
			fmt.Fprintf(w, "  output.naming:                           %s\n", cfg.Output.Naming)
			fmt.Fprintf(w, "  output.temp_prefix:                      %s\n", cfg.Output.TempPrefix)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Catalog Settings:")
			fmt.Fprintf(w, "  catalog.enabled:                         %v\n", cfg.Catalog.Enabled)
			fmt.Fprintf(w, "  catalog.path:                            %s\n", catalogPath)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Sampler Settings:")
			fmt.Fprintf(w, "  sampler.max_iter:                        %d\n", cfg.Sampler.MaxIter)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Simulation Settings:")
			fmt.Fprintf(w, "  simulation.allow_experimental_artifacts: %v\n", cfg.Simulation.AllowExperimentalArtifacts)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			key := args[0]

			value, found := getConfigValue(env.cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if env.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			configPath, _ := cmd.Flags().GetString("config")
			key, value := args[0], args[1]

			path, err := configFilePath(configPath)
			if err != nil {
				return err
			}

			// Start from the file alone so env overrides are not persisted.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err = config.LoadFromFile(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := saveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.FactoryConfig, key string) (interface{}, bool) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, true
	case "output.naming":
		return cfg.Output.Naming, true
	case "output.temp_prefix":
		return cfg.Output.TempPrefix, true
	case "catalog.enabled":
		return cfg.Catalog.Enabled, true
	case "catalog.path":
		return cfg.Catalog.Path, true
	case "sampler.max_iter":
		return cfg.Sampler.MaxIter, true
	case "simulation.allow_experimental_artifacts":
		return cfg.Simulation.AllowExperimentalArtifacts, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.FactoryConfig, key, value string) error {
	switch key {
	case "logging.level":
		cfg.Logging.Level = value
	case "output.naming":
		cfg.Output.Naming = value
	case "output.temp_prefix":
		cfg.Output.TempPrefix = value
	case "catalog.enabled":
		cfg.Catalog.Enabled = value == "true" || value == "1"
	case "catalog.path":
		cfg.Catalog.Path = value
	case "sampler.max_iter":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_iter: %s (must be an integer)", value)
		}
		cfg.Sampler.MaxIter = n
	case "simulation.allow_experimental_artifacts":
		cfg.Simulation.AllowExperimentalArtifacts = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// configFilePath returns explicit, or ~/.simfactory/config.yaml.
func configFilePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, constants.ConfigFileName), nil
}

// saveConfig writes cfg as YAML to path.
func saveConfig(cfg *config.FactoryConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
