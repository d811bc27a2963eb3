package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/ethlift/internal/chains/evm"
)

func (a *app) newNetworksCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List the chains the explorer client supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			networks := evm.DefaultRegistry().List()

			if jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(networks)
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN ID\tNAME\tNETWORK")
			for _, n := range networks {
				fmt.Fprintf(w, "%d\t%s\t%s\n", n.ChainID, n.Name, n.DisplayName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
