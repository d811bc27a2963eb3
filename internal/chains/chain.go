// Package chains provides the chain module interfaces: builders that know a
// project layout convention, and the registry of networks an explorer serves.
package chains

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pendergraft/ethlift/internal/remapping"
)

// ErrInvalidChainID is returned when a chain id does not map to a known network.
var ErrInvalidChainID = errors.New("invalid chain ID")

// Builder resolves import remappings for one project convention
type Builder interface {
	// Metadata
	Name() string        // "foundry", "brownie"
	DisplayName() string // "Foundry", "Brownie"

	// Detection
	Detect(dir string) (bool, error)
	ConfigFile() string // "foundry.toml", "brownie-config.yml"

	// Remappings returns the fully resolved remapping set for the project
	// described by configPath.
	Remappings(configPath string, opts ResolveOptions) ([]remapping.Entry, error)
}

// ResolveOptions carries the environment a builder resolves against. Nothing
// is read from the process environment directly.
type ResolveOptions struct {
	// Root is the project root; relative remapping targets are anchored here.
	Root string
	// Home is the user's home directory.
	Home string
	// Profile selects a Foundry profile (empty = "default").
	Profile string
	Logger  *slog.Logger
}

// Log returns the configured logger or a discarding one.
func (o ResolveOptions) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Network is an EVM network served by the explorer
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Registry holds the known networks keyed by chain id
type Registry struct {
	networks map[uint64]Network
}

// NewRegistry creates a registry holding the given networks
func NewRegistry(networks ...Network) *Registry {
	r := &Registry{
		networks: make(map[uint64]Network, len(networks)),
	}
	for _, n := range networks {
		r.Register(n)
	}
	return r
}

// Register adds a network to the registry
func (r *Registry) Register(n Network) {
	r.networks[n.ChainID] = n
}

// Get retrieves a network by chain id
func (r *Registry) Get(chainID uint64) (Network, bool) {
	n, ok := r.networks[chainID]
	return n, ok
}

// Lookup is Get with an ErrInvalidChainID error for unknown ids.
func (r *Registry) Lookup(chainID uint64) (Network, error) {
	n, ok := r.networks[chainID]
	if !ok {
		return Network{}, fmt.Errorf("%w: %d is not a supported network", ErrInvalidChainID, chainID)
	}
	return n, nil
}

// List returns all registered networks ordered by chain id
func (r *Registry) List() []Network {
	networks := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool {
		return networks[i].ChainID < networks[j].ChainID
	})
	return networks
}
