// Package foundry provides the Foundry builder for EVM contracts.
package foundry

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/remapping"
)

// DefaultProfile is the profile used when none is selected.
const DefaultProfile = "default"

// RemappingsFile is the plain-text remappings file read from the project root.
const RemappingsFile = "remappings.txt"

// Builder implements chains.Builder for Foundry projects
type Builder struct{}

// New creates a new Foundry builder
func New() *Builder {
	return &Builder{}
}

// Name returns the builder identifier
func (b *Builder) Name() string {
	return "foundry"
}

// DisplayName returns a human-readable name
func (b *Builder) DisplayName() string {
	return "Foundry"
}

// ConfigFile returns the config file name
func (b *Builder) ConfigFile() string {
	return "foundry.toml"
}

// Detect checks if a directory is a Foundry project
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

// Config is the subset of foundry.toml this builder understands
type Config struct {
	Profile map[string]Profile `toml:"profile"`
	// Default is the pre-profile layout where settings lived under [default].
	Default *Profile `toml:"default"`
}

// Profile contains the settings of one foundry.toml profile
type Profile struct {
	Src        string   `toml:"src,omitempty"`
	Libs       []string `toml:"libs,omitempty"`
	Remappings []string `toml:"remappings,omitempty"`
}

// LoadConfig reads foundry.toml. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	return &cfg, nil
}

// Resolve returns the named profile with unset fields inherited from the
// default profile, then from Foundry's built-in defaults.
func (c *Config) Resolve(name string) Profile {
	if name == "" {
		name = DefaultProfile
	}

	var base Profile
	if c.Default != nil {
		base = *c.Default
	}
	if p, ok := c.Profile[DefaultProfile]; ok {
		base = merge(p, base)
	}

	resolved := base
	if name != DefaultProfile {
		if p, ok := c.Profile[name]; ok {
			resolved = merge(p, base)
		}
	}

	return merge(resolved, Profile{Src: "src", Libs: []string{"lib"}})
}

func merge(p, fallback Profile) Profile {
	if p.Src == "" {
		p.Src = fallback.Src
	}
	if len(p.Libs) == 0 {
		p.Libs = fallback.Libs
	}
	if len(p.Remappings) == 0 {
		p.Remappings = fallback.Remappings
	}
	return p
}

// Remappings resolves the project's remappings the way forge does: entries
// from the profile first, then remappings.txt, then one entry per library
// found under the lib directories. The first entry for an alias wins.
func (b *Builder) Remappings(configPath string, opts chains.ResolveOptions) ([]remapping.Entry, error) {
	if configPath == "" {
		configPath = filepath.Join(opts.Root, b.ConfigFile())
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(opts.Root, configPath)
	}
	projectDir := filepath.Dir(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", configPath, err)
	}
	profile := cfg.Resolve(opts.Profile)

	var raw []string
	raw = append(raw, profile.Remappings...)

	fromFile, err := readRemappingsFile(filepath.Join(projectDir, RemappingsFile))
	if err != nil {
		return nil, err
	}
	raw = append(raw, fromFile...)

	var entries []remapping.Entry
	seen := make(map[string]bool)
	add := func(e remapping.Entry) {
		key := e.Context + ":" + e.Alias
		if seen[key] {
			return
		}
		seen[key] = true
		e.Path = absolute(projectDir, e.Path)
		entries = append(entries, e)
	}

	for _, s := range raw {
		e, err := remapping.Parse(s)
		if err != nil {
			return nil, err
		}
		add(e)
	}

	for _, lib := range profile.Libs {
		detected, err := detectLibraries(projectDir, lib)
		if err != nil {
			return nil, err
		}
		for _, e := range detected {
			add(e)
		}
	}

	opts.Log().Debug("resolved foundry remappings",
		"config", configPath,
		"profile", opts.Profile,
		"count", len(entries),
	)
	return entries, nil
}

// readRemappingsFile reads one remapping per line, skipping blanks and comments.
func readRemappingsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// detectLibraries derives "<name>/" remappings for each directory under libDir.
// A library's src/ or contracts/ directory is preferred over its root.
func detectLibraries(projectDir, libDir string) ([]remapping.Entry, error) {
	root := absolute(projectDir, libDir)
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			names = append(names, d.Name())
		}
	}
	sort.Strings(names)

	entries := make([]remapping.Entry, 0, len(names))
	for _, name := range names {
		target := filepath.Join(root, name)
		for _, sub := range []string{"src", "contracts"} {
			if info, err := os.Stat(filepath.Join(target, sub)); err == nil && info.IsDir() {
				target = filepath.Join(target, sub)
				break
			}
		}
		entries = append(entries, remapping.Entry{
			Alias: name + "/",
			Path:  target + string(filepath.Separator),
		})
	}
	return entries, nil
}

// absolute anchors a relative path at dir, keeping a trailing separator.
func absolute(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	joined := filepath.Join(dir, filepath.FromSlash(path))
	if strings.HasSuffix(path, "/") {
		joined += string(filepath.Separator)
	}
	return joined
}
