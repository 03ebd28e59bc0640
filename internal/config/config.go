// Package config loads service configuration for the CLI: pool sizing,
// browser launch, logging, and conversion defaults. Layering is defaults,
// then an optional YAML file, then MDPRESS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Config holds all CLI configuration.
type Config struct {
	Pool     PoolConfig     `yaml:"pool"`
	Browser  BrowserConfig  `yaml:"browser"`
	Log      LogConfig      `yaml:"log"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Output   OutputConfig   `yaml:"output"`
}

// PoolConfig sizes the render pool.
type PoolConfig struct {
	Workers           int `yaml:"workers"`           // 0 = derive from CPU count
	SurfacesPerWorker int `yaml:"surfacesPerWorker"` // 0 = library default
}

// BrowserConfig controls worker browser launch.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // empty = managed Chromium download
	NoSandbox bool   `yaml:"noSandbox"` // required in most containers
}

// LogConfig controls logging output. When File is set, output rotates
// via lumberjack with the limits below.
type LogConfig struct {
	Level      string `yaml:"level"` // trace, debug, info, warn, error
	File       string `yaml:"file"`  // empty = stderr
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// DefaultsConfig sets per-conversion fallbacks.
type DefaultsConfig struct {
	Theme     string `yaml:"theme"`
	CodeTheme string `yaml:"codeTheme"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // empty = alongside each source file
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Validate checks numeric bounds. Zero values mean "use defaults" and are
// always valid.
func (c *Config) Validate() error {
	if c.Pool.Workers < 0 {
		return fmt.Errorf("%w: pool.workers must not be negative, got %d", ErrInvalidValue, c.Pool.Workers)
	}
	if c.Pool.SurfacesPerWorker < 0 {
		return fmt.Errorf("%w: pool.surfacesPerWorker must not be negative, got %d", ErrInvalidValue, c.Pool.SurfacesPerWorker)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidValue)
	}
	return nil
}

// Load returns the configuration: defaults, overlaid by the YAML file at
// nameOrPath when non-empty, overlaid by MDPRESS_* environment variables.
// A name without path separators is searched in the current directory and
// the user config directory.
func Load(nameOrPath string) (*Config, error) {
	cfg := DefaultConfig()

	if nameOrPath != "" {
		path := nameOrPath
		if !isFilePath(nameOrPath) {
			resolved, err := resolveConfigPath(nameOrPath)
			if err != nil {
				return nil, err
			}
			path = resolved
		}

		data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Strict decoding rejects unknown fields, catching typos early.
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from MDPRESS_* environment variables.
func (c *Config) applyEnv() {
	c.Pool.Workers = getEnvInt("MDPRESS_WORKERS", c.Pool.Workers)
	c.Pool.SurfacesPerWorker = getEnvInt("MDPRESS_SURFACES_PER_WORKER", c.Pool.SurfacesPerWorker)
	c.Browser.Bin = getEnv("MDPRESS_BROWSER_BIN", c.Browser.Bin)
	c.Browser.NoSandbox = getEnvBool("MDPRESS_NO_SANDBOX", c.Browser.NoSandbox)
	c.Log.Level = getEnv("MDPRESS_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("MDPRESS_LOG_FILE", c.Log.File)
	c.Defaults.Theme = getEnv("MDPRESS_THEME", c.Defaults.Theme)
	c.Defaults.CodeTheme = getEnv("MDPRESS_CODE_THEME", c.Defaults.CodeTheme)
	c.Output.Dir = getEnv("MDPRESS_OUTPUT_DIR", c.Output.Dir)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/mdpress/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "mdpress", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
