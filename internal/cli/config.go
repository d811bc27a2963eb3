package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration ethlift runs with after reading the
environment. Command line flags override these values per run.

EXAMPLES:
  ethlift config show
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow()
		},
	})

	return cmd
}

func (a *app) runConfigShow() error {
	cfg := a.cfg
	w := a.stdout

	key := "(not set)"
	if cfg.Explorer.APIKey != "" {
		key = maskAPIKey(cfg.Explorer.APIKey)
	}

	fmt.Fprintln(w, "Explorer:")
	fmt.Fprintf(w, "  ETHERSCAN_API_KEY=%s\n", key)
	fmt.Fprintf(w, "  ETHLIFT_EXPLORER_URL=%s\n", cfg.Explorer.URL)
	fmt.Fprintf(w, "  ETHLIFT_EXPLORER_TIMEOUT=%s\n", cfg.Explorer.Timeout)
	fmt.Fprintf(w, "  ETHLIFT_EXPLORER_RPS=%g\n", cfg.Explorer.RequestsPerSecond)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintf(w, "  ETHLIFT_LOG_LEVEL=%s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  ETHLIFT_LOG_FORMAT=%s\n", cfg.Logging.Format)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Project:")
	fmt.Fprintf(w, "  FOUNDRY_PROFILE=%s\n", cfg.Foundry.Profile)
	fmt.Fprintf(w, "  NO_COLOR=%t\n", cfg.Color.Disabled)

	if root, err := a.getwd(); err == nil {
		if b, err := a.chain.DetectBuilder(root); err == nil {
			fmt.Fprintf(w, "  detected: %s (%s)\n", b.DisplayName(), b.ConfigFile())
		} else {
			fmt.Fprintln(w, "  detected: (none)")
		}
	}

	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
