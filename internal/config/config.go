// Package config loads and validates lore.yml, the repository-level
// configuration file that marks the root of a content tree.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/lore/internal/lesson"
)

// FileName is the configuration file that marks a content repository root.
const FileName = "lore.yml"

// Default values applied when lore.yml omits a section.
const (
	DefaultServeAddr   = ":8420"
	DefaultLabNetwork  = "lore-labs"
	DefaultPortRangeLo = 15400
	DefaultPortRangeHi = 15499
)

// Config represents the top-level lore.yml configuration
type Config struct {
	Version string      `yaml:"version"`
	Levels  []string    `yaml:"levels,omitempty"` // Subset/reorder of the canonical levels; defaults to all four
	Lint    LintConfig  `yaml:"lint,omitempty"`
	Serve   ServeConfig `yaml:"serve,omitempty"`
	Lab     LabConfig   `yaml:"lab,omitempty"`

	// Root is the directory containing lore.yml. Set by Load, not serialized.
	Root string `yaml:"-"`
}

// LintConfig controls which findings lint reports
type LintConfig struct {
	Ignore []string `yaml:"ignore,omitempty"` // Glob patterns of paths to skip, relative to the root
	Strict bool     `yaml:"strict,omitempty"` // Treat warnings as errors
}

// ServeConfig controls the built-in web server
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"` // Listen address, default :8420
}

// LabConfig controls how lab containers are provisioned
type LabConfig struct {
	Network   string `yaml:"network,omitempty"`    // Docker network name shared by lab containers
	PortRange [2]int `yaml:"port_range,omitempty"` // Inclusive host port range for published services
}

// Validate performs strict validation on the configuration and applies defaults
func (c *Config) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported version: %s (expected: 1)", c.Version)
	}

	// Levels default to the canonical four; overrides may only subset/reorder them
	if len(c.Levels) == 0 {
		for _, l := range lesson.Levels() {
			c.Levels = append(c.Levels, string(l))
		}
	} else {
		seen := make(map[string]bool)
		for _, name := range c.Levels {
			if _, err := lesson.ParseLevel(name); err != nil {
				return fmt.Errorf("invalid level '%s' in levels: %w", name, err)
			}
			if seen[name] {
				return fmt.Errorf("duplicate level '%s' in levels", name)
			}
			seen[name] = true
		}
	}

	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}

	if c.Lab.Network == "" {
		c.Lab.Network = DefaultLabNetwork
	}

	if c.Lab.PortRange == [2]int{} {
		c.Lab.PortRange = [2]int{DefaultPortRangeLo, DefaultPortRangeHi}
	}
	if c.Lab.PortRange[0] < 1024 || c.Lab.PortRange[1] > 65535 || c.Lab.PortRange[0] > c.Lab.PortRange[1] {
		return fmt.Errorf("invalid lab.port_range [%d, %d]: must be an ascending range within 1024-65535",
			c.Lab.PortRange[0], c.Lab.PortRange[1])
	}

	return nil
}

// LevelDirs returns the configured levels as typed values, in configured order.
func (c *Config) LevelDirs() []lesson.Level {
	levels := make([]lesson.Level, 0, len(c.Levels))
	for _, name := range c.Levels {
		levels = append(levels, lesson.Level(name))
	}
	return levels
}

// Load reads and validates lore.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	config.Root = abs

	return &config, nil
}

// Locate walks up from startDir looking for lore.yml and loads the first one
// found. This lets lore commands run from anywhere inside a content repository.
func Locate(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no %s found in %s or any parent directory", FileName, startDir)
		}
		dir = parent
	}
}
