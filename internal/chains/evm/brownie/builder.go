// Package brownie provides the Brownie builder for EVM contracts.
package brownie

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/remapping"
	"github.com/pendergraft/ethlift/internal/validation"
)

// ErrConfigKeyMissing is returned when compiler.solc.remappings is absent.
var ErrConfigKeyMissing = errors.New("config key compiler.solc.remappings not found")

// Builder implements chains.Builder for Brownie projects
type Builder struct{}

// New creates a new Brownie builder
func New() *Builder {
	return &Builder{}
}

// Name returns the builder identifier
func (b *Builder) Name() string {
	return "brownie"
}

// DisplayName returns a human-readable name
func (b *Builder) DisplayName() string {
	return "Brownie"
}

// ConfigFile returns the config file name
func (b *Builder) ConfigFile() string {
	return "brownie-config.yml"
}

// Detect checks if a directory is a Brownie project
func (b *Builder) Detect(dir string) (bool, error) {
	configPath := filepath.Join(dir, b.ConfigFile())
	_, err := os.Stat(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Config is the part of brownie-config.yml this builder reads
type Config struct {
	Compiler struct {
		Solc struct {
			Remappings yaml.Node `yaml:"remappings"`
		} `yaml:"solc"`
	} `yaml:"compiler"`
}

// Remappings reads compiler.solc.remappings from the config and translates
// every entry into the package cache under opts.Home.
func (b *Builder) Remappings(configPath string, opts chains.ResolveOptions) ([]remapping.Entry, error) {
	specs, err := ReadRemappings(configPath)
	if err != nil {
		return nil, err
	}

	entries, err := remapping.Translate(specs, opts.Home)
	if err != nil {
		return nil, err
	}

	logger := opts.Log()
	for _, spec := range specs {
		// Translate already succeeded, so every spec parses.
		l, _ := remapping.ParseLegacy(spec)
		_, version, _ := strings.Cut(l.LibraryPath, "@")
		if err := validation.ValidateVersion(version); err != nil {
			logger.Warn("package version is not semver", "remapping", spec, "error", err)
		}
	}
	for _, e := range entries {
		if _, err := os.Stat(e.Path); err != nil {
			logger.Warn("brownie package not installed", "alias", e.Alias, "path", e.Path)
		}
	}

	return entries, nil
}

// ReadRemappings returns the raw legacy remapping strings from a Brownie config.
func ReadRemappings(configPath string) ([]string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	node := &cfg.Compiler.Solc.Remappings
	if node.Kind == 0 || node.ShortTag() == "!!null" {
		return nil, fmt.Errorf("%w in %s", ErrConfigKeyMissing, configPath)
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w in %s: value must be a list of strings", ErrConfigKeyMissing, configPath)
	}

	specs := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("%w in %s: line %d is not a string", ErrConfigKeyMissing, configPath, item.Line)
		}
		specs = append(specs, item.Value)
	}
	return specs, nil
}
