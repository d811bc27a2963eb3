// Package project assembles the configuration the flattener runs against.
package project

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/chains/evm"
	"github.com/pendergraft/ethlift/internal/remapping"
)

// Config describes a local project. It is built once per run and not
// modified afterwards.
type Config struct {
	// Sources is the absolute source root directory.
	Sources string
	// Root is the absolute project root.
	Root string
	// Remappings is the resolved remapping table, in priority order.
	Remappings []remapping.Entry
	// ConfigPath and Builder record where the remappings came from.
	ConfigPath string
	Builder    string
}

// Options are the inputs to Load. Root and Home replace any lookup of the
// process working directory or home directory.
type Options struct {
	Sources    string // empty = Root
	ConfigPath string // empty = detect in Root; relative = under Root
	ConfigKind string // empty = infer from ConfigPath
	Root       string
	Home       string
	Profile    string
	Logger     *slog.Logger
}

// Load selects the remapping convention and resolves the project config.
func Load(chain *evm.Chain, opts Options) (*Config, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("project root is required")
	}
	sources := opts.Sources
	if sources == "" {
		sources = opts.Root
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = chain.DetectConfigPath(opts.Root)
	} else {
		configPath = anchor(opts.Root, configPath)
	}

	builder, err := selectBuilder(chain, configPath, opts.ConfigKind)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("selected remapping convention", "builder", builder.Name(), "config", configPath)

	entries, err := builder.Remappings(configPath, chains.ResolveOptions{
		Root:    opts.Root,
		Home:    opts.Home,
		Profile: opts.Profile,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving %s remappings: %w", builder.DisplayName(), err)
	}

	return &Config{
		Sources:    anchor(opts.Root, sources),
		Root:       opts.Root,
		Remappings: entries,
		ConfigPath: configPath,
		Builder:    builder.Name(),
	}, nil
}

func selectBuilder(chain *evm.Chain, configPath, kind string) (chains.Builder, error) {
	if kind != "" {
		return chain.BuilderByName(kind)
	}
	return chain.BuilderFor(configPath), nil
}

func anchor(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
