// Package config handles library configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/keywords"
	"github.com/papersurf/papersurf/internal/query"
)

const (
	// PapersurfDir is the library marker directory.
	PapersurfDir = ".papersurf"
	// ConfigFile is the config file name inside PapersurfDir.
	ConfigFile = "config.yml"
	// DBFile is the graph database file name inside PapersurfDir.
	DBFile = "papers.db"
)

// Config represents library configuration stored in .papersurf/config.yml.
// Zero values fall back to defaults at load time, so a hand-edited partial
// file keeps working.
type Config struct {
	Ollama struct {
		URL   string `yaml:"url,omitempty"`
		Model string `yaml:"model,omitempty"`
		// Dimensions of the model's embedding space; must match the
		// model named above.
		Dimensions int `yaml:"dimensions,omitempty"`
	} `yaml:"ollama"`

	Keywords struct {
		Max int `yaml:"max,omitempty"`
	} `yaml:"keywords"`

	Search struct {
		Limit     int     `yaml:"limit,omitempty"`
		Threshold float64 `yaml:"threshold,omitempty"`
	} `yaml:"search"`
}

// Default returns a config populated with every default value.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Ollama.URL == "" {
		c.Ollama.URL = embedding.DefaultOllamaURL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = embedding.DefaultModel
		c.Ollama.Dimensions = embedding.DefaultDimensions
	}
	if c.Keywords.Max <= 0 {
		c.Keywords.Max = keywords.DefaultMaxKeywords
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = query.DefaultLimit
	}
	if c.Search.Threshold == 0 {
		c.Search.Threshold = query.DefaultThreshold
	}
}

// LibraryPath returns the path to the .papersurf directory from a root path.
func LibraryPath(root string) string {
	return filepath.Join(root, PapersurfDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, PapersurfDir, ConfigFile)
}

// DBPath returns the path to the graph database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, PapersurfDir, DBFile)
}

// IsLibrary checks if the given path contains a papersurf library.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from the given path to find a papersurf library.
// Returns the library root path or an error if not found.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a papersurf library (no .papersurf directory found)")
		}
		abs = parent
	}
}

// Init creates the .papersurf directory and a default config at root.
// Fails if the library already exists.
func Init(root string) (*Config, error) {
	dir := LibraryPath(root)
	if IsLibrary(root) {
		return nil, fmt.Errorf("library already initialized at %s", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	cfg := Default()
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from the library at the given root, filling
// in defaults for anything unset. A missing config file yields defaults.
func Load(root string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes configuration to the library at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
