package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-project configuration file.
const ConfigFile = "dimod.yaml"

// Config holds dimod configuration, merged from dimod.yaml and go.mod
// conventions.
type Config struct {
	Module string `yaml:"-"` // from go.mod

	// Scan lists package path patterns relative to the module root.
	Scan    []string `yaml:"scan"`
	Exclude []string `yaml:"exclude"`

	// Marker is the fully qualified name of the contributes marker type.
	// Implicit inclusion runs only when it resolves in the scanned packages.
	Marker string `yaml:"marker"`

	// CacheSize bounds the descriptor memoization cache.
	CacheSize int `yaml:"cache_size"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// BuildConfig builds a Config from go.mod conventions, overlaid with
// dimod.yaml when present.
func BuildConfig(moduleRoot string) (*Config, error) {
	module, err := parseModulePath(moduleRoot)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Module:    module,
		Scan:      []string{"..."},
		Marker:    DefaultContributesMarkerType,
		CacheSize: 256,
		Log:       LogConfig{Level: "info"},
	}

	path := filepath.Join(moduleRoot, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Scan) == 0 {
		return fmt.Errorf("scan must list at least one package pattern")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	switch c.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func parseModulePath(root string) (string, error) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("open go.mod: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), nil
		}
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}
