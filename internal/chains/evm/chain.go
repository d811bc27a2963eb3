// Package evm provides the EVM chain module for Ethereum and compatible chains.
package evm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pendergraft/ethlift/internal/chains"
)

// legacyConfigFragment marks a config path as belonging to a Brownie project.
const legacyConfigFragment = "brownie-config"

// Chain holds the EVM project builders
type Chain struct {
	foundry chains.Builder
	brownie chains.Builder
}

// NewChain creates a new EVM chain module
func NewChain() *Chain {
	return &Chain{
		foundry: NewFoundryBuilder(),
		brownie: NewBrownieBuilder(),
	}
}

// Builders returns all available builders, legacy first
func (c *Chain) Builders() []chains.Builder {
	return []chains.Builder{c.brownie, c.foundry}
}

// BuilderFor picks the remapping convention for a config path. Paths naming
// a Brownie config use the legacy builder; everything else is Foundry.
func (c *Chain) BuilderFor(configPath string) chains.Builder {
	if strings.Contains(configPath, legacyConfigFragment) {
		return c.brownie
	}
	return c.foundry
}

// BuilderByName returns the builder with the given name.
func (c *Chain) BuilderByName(name string) (chains.Builder, error) {
	for _, b := range c.Builders() {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unknown config kind %q (want brownie or foundry)", name)
}

// DetectBuilder detects which builder is used in the given directory
func (c *Chain) DetectBuilder(dir string) (chains.Builder, error) {
	for _, b := range c.Builders() {
		detected, err := b.Detect(dir)
		if err != nil {
			continue
		}
		if detected {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no EVM builder detected in %s", dir)
}

// DetectConfigPath returns the config file for a project rooted at dir: the
// Brownie config when present, otherwise foundry.toml whether it exists or not.
func (c *Chain) DetectConfigPath(dir string) string {
	legacy := filepath.Join(dir, c.brownie.ConfigFile())
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return filepath.Join(dir, c.foundry.ConfigFile())
}
