// Package config handles importer configuration loading and management.
package config

import (
	"fmt"
	"strings"
)

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds parse and assembly options.
type ImportConfig struct {
	ForceComputeNormals bool   `yaml:"force_compute_normals"` // discard source normals
	PreferFlatNormals   bool   `yaml:"prefer_flat_normals"`   // flat instead of smooth when computing
	SingleIndex         bool   `yaml:"single_index"`          // false = one index stream per attribute
	Triangulate         bool   `yaml:"triangulate"`
	IgnorePoints        bool   `yaml:"ignore_points"`
	IgnoreLines         bool   `yaml:"ignore_lines"`
	Split               string `yaml:"split"`            // none, material, object
	MissingMaterial     string `yaml:"missing_material"` // fail, default
	LoadTextures        bool   `yaml:"load_textures"`    // read and decode referenced images
	MaxConcurrency      int    `yaml:"max_concurrency"`  // parallel library/texture fetches
}

// DataConfig holds asset search paths.
type DataConfig struct {
	Roots []string `yaml:"roots"` // searched last to first
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // console, json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			SingleIndex:     true,
			Triangulate:     true,
			IgnorePoints:    true,
			IgnoreLines:     true,
			Split:           "object",
			MissingMaterial: "fail",
			LoadTextures:    true,
			MaxConcurrency:  8,
		},
		Data: DataConfig{
			Roots: []string{"."},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks enumerated settings and limits.
func (c *Config) Validate() error {
	if !oneOf(c.Import.Split, "none", "material", "object") {
		return fmt.Errorf("import.split: unknown mode %q", c.Import.Split)
	}
	if !oneOf(c.Import.MissingMaterial, "fail", "default") {
		return fmt.Errorf("import.missing_material: unknown policy %q", c.Import.MissingMaterial)
	}
	if c.Import.MaxConcurrency < 1 {
		return fmt.Errorf("import.max_concurrency: must be at least 1, got %d", c.Import.MaxConcurrency)
	}
	if !oneOf(c.Logging.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if !oneOf(c.Logging.Format, "console", "json") {
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
