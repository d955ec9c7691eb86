package bytelayout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the bytelayout configuration
type Config struct {
	Endianness  string            `yaml:"endianness"`
	LayoutDirs  []string          `yaml:"layout_dirs"`
	Output      OutputConfig      `yaml:"output"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
}

// OutputConfig represents CLI output settings
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  *bool  `yaml:"color"` // Pointer to distinguish between unset and false
}

// InterpreterConfig represents layout interpreter settings
type InterpreterConfig struct {
	Echo     *bool `yaml:"echo"`
	MaxDepth int   `yaml:"max_depth"`
}

// ColorEnabled returns true unless color output is explicitly disabled
func (o OutputConfig) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}

// EchoEnabled returns true unless echo diagnostics are explicitly disabled
func (i InterpreterConfig) EchoEnabled() bool {
	return i.Echo == nil || *i.Echo
}

// DefaultMaxDepth is the struct nesting limit used when none is configured.
const DefaultMaxDepth = 64

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses configuration YAML, validates it and applies defaults
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	// Parse YAML with strict mode to detect unknown fields
	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Endianness != "" {
		validEndianness := map[string]bool{
			"little": true,
			"big":    true,
		}
		if !validEndianness[config.Endianness] {
			return fmt.Errorf("%w: invalid endianness '%s': must be one of little, big", ErrConfigValidation, config.Endianness)
		}
	}

	if config.Output.Format != "" {
		validFormats := map[string]bool{
			"table":    true,
			"json":     true,
			"yaml":     true,
			"csv":      true,
			"markdown": true,
		}
		if !validFormats[config.Output.Format] {
			return fmt.Errorf("%w: output.format '%s' is invalid: must be one of table, json, yaml, csv, markdown", ErrConfigValidation, config.Output.Format)
		}
	}

	if config.Interpreter.MaxDepth < 0 {
		return fmt.Errorf("%w: interpreter.max_depth must be non-negative, got %d", ErrConfigValidation, config.Interpreter.MaxDepth)
	}

	for _, dir := range config.LayoutDirs {
		if dir == "" {
			return fmt.Errorf("%w: layout_dirs must not contain empty entries", ErrConfigValidation)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.Endianness == "" {
		config.Endianness = "little"
	}

	if len(config.LayoutDirs) == 0 {
		config.LayoutDirs = []string{"./layouts"}
	}

	if config.Output.Format == "" {
		config.Output.Format = "table"
	}

	if config.Interpreter.MaxDepth == 0 {
		config.Interpreter.MaxDepth = DefaultMaxDepth
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path settings
func expandConfigEnvVars(config *Config) {
	for i, dir := range config.LayoutDirs {
		config.LayoutDirs[i] = expandEnvVars(dir)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ResolveLayoutPath finds a layout file. Absolute paths and paths that exist
// relative to the working directory are returned as is; otherwise each of the
// configured layout directories is tried in order.
func (c *Config) ResolveLayoutPath(name string) (string, error) {
	if filepath.IsAbs(name) || fileExists(name) {
		return name, nil
	}

	for _, dir := range c.LayoutDirs {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: layout '%s'", ErrConfigFileNotFound, name)
}
