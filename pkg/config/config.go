package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Embedded default configuration
//
//go:embed default_config.toml
var embeddedConfigData []byte

// Config holds the application configuration.
type Config struct {
	Filters   FilterConfig    `toml:"filters"`
	Demangler DemanglerConfig `toml:"demangler"`
	Output    OutputConfig    `toml:"output"`
}

// FilterConfig holds the symbol rejection lists. Both lists are
// project-specific policy: the prefixes name engine/runtime/SDK
// namespaces, the markers name compiler-generated artifacts.
type FilterConfig struct {
	NamespacePrefixes []string `toml:"namespace_prefixes"`
	SubstringMarkers  []string `toml:"substring_markers"`
}

// DemanglerConfig selects the demangling convention for the run.
type DemanglerConfig struct {
	ABI string `toml:"abi"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns the default configuration with optional local overrides.
// It always starts with the embedded config, then looks for a local config.toml.
func DefaultConfig() (*Config, error) {
	// Start with embedded default configuration
	var config Config
	if err := toml.Unmarshal(embeddedConfigData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}

	// Look for local config.toml to override defaults
	localConfigPaths := []string{
		"config.toml",       // Current directory (project root when running binary)
		"../config.toml",    // Parent directory (for tests in subdirs)
		"../../config.toml", // Two levels up (for tests in pkg/*/test)
	}

	for _, path := range localConfigPaths {
		if _, err := os.Stat(path); err == nil {
			// Found a local config file - it fully replaces the embedded defaults
			localConfig, err := LoadFromFile(path)
			if err != nil {
				// Log warning but continue with embedded config
				fmt.Fprintf(os.Stderr, "Warning: failed to load local config %s: %v\n", path, err)
				break
			}
			return localConfig, nil
		}
	}

	// Return embedded config if no local override found
	return &config, nil
}

// LoadFromFile loads configuration from a TOML file.
func LoadFromFile(filepath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", filepath, err)
	}
	return &config, nil
}

// OutputPath returns the configured output path, defaulting to
// xref_data.json when unset.
func (c *Config) OutputPath() string {
	if strings.TrimSpace(c.Output.Path) == "" {
		return "xref_data.json"
	}
	return c.Output.Path
}

// DemanglerABI returns the configured demangling convention, defaulting
// to "auto" when unset.
func (c *Config) DemanglerABI() string {
	if strings.TrimSpace(c.Demangler.ABI) == "" {
		return "auto"
	}
	return c.Demangler.ABI
}

// AddNamespacePrefixes appends extra prefixes to the rejection list.
func (c *Config) AddNamespacePrefixes(prefixes []string) {
	c.Filters.NamespacePrefixes = append(c.Filters.NamespacePrefixes, prefixes...)
}

// AddSubstringMarkers appends extra markers to the rejection list.
func (c *Config) AddSubstringMarkers(markers []string) {
	c.Filters.SubstringMarkers = append(c.Filters.SubstringMarkers, markers...)
}
