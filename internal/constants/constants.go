// Package constants provides named constants used throughout the simfactory codebase.
// This centralizes defaults so the CLI, config and factories agree on them.
package constants

// Output constants
const (
	// DefaultOutputNaming prefixes every generated file when no scene name
	// or --name is given.
	DefaultOutputNaming = "simfactory"

	// DefaultTempPrefix names the temporary directory created when no
	// output directory is given.
	DefaultTempPrefix = "simfactory_"
)

// Location constants
const (
	// ConfigDirName is the per-user directory under $HOME.
	ConfigDirName = ".simfactory"

	// ConfigFileName is the YAML config file inside ConfigDirName.
	ConfigFileName = "config.yaml"

	// CatalogFileName is the default run catalog database inside ConfigDirName.
	CatalogFileName = "catalog.db"
)

// Sampler constants
const (
	// DefaultMaxIter bounds the gradient direction optimizer.
	DefaultMaxIter = 1000

	// MaxSamplerIter caps configured iteration counts.
	MaxSamplerIter = 1_000_000
)

// DefaultLogLevel is the log level when neither config nor flags set one.
const DefaultLogLevel = "info"
