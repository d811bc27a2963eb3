package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pendergraft/ethlift/internal/project"
)

type remappingsOptions struct {
	configPath string
	configKind string
	profile    string
	jsonOutput bool
}

func (a *app) newRemappingsCmd() *cobra.Command {
	var opts remappingsOptions

	cmd := &cobra.Command{
		Use:   "remappings",
		Short: "Print the resolved remapping table",
		Long: `Print the remappings the diff command would flatten with, one
alias=path per line, in priority order.

EXAMPLES:
  # Remappings of the project in the current directory
  ethlift remappings

  # Remappings from a Brownie config
  ethlift remappings -c brownie-config.yml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRemappings(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "project config file (default: brownie-config.yml if present, else foundry.toml)")
	cmd.Flags().StringVar(&opts.configKind, "config-kind", "", "remapping convention: brownie or foundry")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Foundry profile (default $FOUNDRY_PROFILE or default)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")

	return cmd
}

func (a *app) runRemappings(opts remappingsOptions) error {
	root, err := a.getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	home, err := a.homeDir()
	if err != nil {
		home = ""
	}

	profile := opts.profile
	if profile == "" {
		profile = a.cfg.Foundry.Profile
	}

	cfg, err := project.Load(a.chain, project.Options{
		ConfigPath: opts.configPath,
		ConfigKind: opts.configKind,
		Root:       root,
		Home:       home,
		Profile:    profile,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		type entry struct {
			Context string `json:"context,omitempty"`
			Alias   string `json:"alias"`
			Path    string `json:"path"`
		}
		out := struct {
			Builder    string  `json:"builder"`
			Config     string  `json:"config"`
			Remappings []entry `json:"remappings"`
		}{Builder: cfg.Builder, Config: cfg.ConfigPath, Remappings: []entry{}}
		for _, e := range cfg.Remappings {
			out.Remappings = append(out.Remappings, entry{Context: e.Context, Alias: e.Alias, Path: e.Path})
		}

		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, e := range cfg.Remappings {
		fmt.Fprintln(a.stdout, e)
	}
	return nil
}
