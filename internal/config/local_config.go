// Package config loads the per-project .mirepoix/config.yaml file.
//
// The viper singleton in cmd/mpx handles flag and environment binding; this
// package reads the file directly for the cases where viper is not (yet)
// initialized or the working directory has changed since it was.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project configuration directory, discovered by walking
// up from the working directory.
const DirName = ".mirepoix"

// LocalConfig is the parsed contents of .mirepoix/config.yaml.
type LocalConfig struct {
	// Database is the SQLite file path, relative to the config directory
	// unless absolute.
	Database string `yaml:"database"`
	// RecipePrefix is prepended to generated recipe IDs (default "r").
	RecipePrefix string `yaml:"recipe-prefix"`
	// Author is recorded as the actor on audit events.
	Author string `yaml:"author"`
	// NoColor disables ANSI styling regardless of terminal detection.
	NoColor bool `yaml:"no-color"`
}

// FindConfigDir walks up from the working directory looking for a .mirepoix
// directory, so mpx works from any subdirectory of a project.
func FindConfigDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no %s directory found in current directory or parents", DirName)
}

// LoadLocalConfig reads and parses config.yaml from the given .mirepoix
// directory. Returns an empty LocalConfig (not nil) if the file does not
// exist or cannot be parsed.
func LoadLocalConfig(configDir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(configDir, "config.yaml")) // #nosec G304 - config file path from configDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment variable
// overrides. Environment variables take precedence over file values.
//
// Supported environment variables:
//   - MIREPOIX_DB: overrides database
//   - MIREPOIX_AUTHOR: overrides author
//   - MIREPOIX_RECIPE_PREFIX: overrides recipe-prefix
func LoadLocalConfigWithEnv(configDir string) *LocalConfig {
	cfg := LoadLocalConfig(configDir)

	if db := os.Getenv("MIREPOIX_DB"); db != "" {
		cfg.Database = db
	}
	if author := os.Getenv("MIREPOIX_AUTHOR"); author != "" {
		cfg.Author = author
	}
	if prefix := os.Getenv("MIREPOIX_RECIPE_PREFIX"); prefix != "" {
		cfg.RecipePrefix = prefix
	}

	return cfg
}

// DatabasePath resolves the configured database path against the config
// directory, falling back to recipes.db inside it.
func (c *LocalConfig) DatabasePath(configDir string) string {
	db := c.Database
	if db == "" {
		db = "recipes.db"
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(configDir, db)
}

// WriteLocalConfig creates the config directory if needed and writes
// config.yaml. Used by mpx init.
func WriteLocalConfig(configDir string, cfg *LocalConfig) error {
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}
	return nil
}
