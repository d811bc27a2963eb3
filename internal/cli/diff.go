package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pendergraft/ethlift/internal/chains"
	"github.com/pendergraft/ethlift/internal/diff"
	"github.com/pendergraft/ethlift/internal/flatten"
	"github.com/pendergraft/ethlift/internal/observability/metrics"
	"github.com/pendergraft/ethlift/internal/project"
	"github.com/pendergraft/ethlift/internal/validation"
	"github.com/pendergraft/ethlift/pkg/explorer"
)

type diffOptions struct {
	token       string
	sourcePath  string
	address     string
	file        string
	chainID     uint64
	configPath  string
	configKind  string
	profile     string
	color       string
	exitCode    bool
	metricsFile string
	timeout     time.Duration
}

func (a *app) newDiffCmd() *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff a local contract against its verified source",
		Long: `Flatten a local contract and diff it against the source verified on the
block explorer for the given address.

The project's remappings come from brownie-config.yml when the config path
contains "brownie-config", otherwise from foundry.toml, remappings.txt and
lib/. Use --config-kind to choose explicitly.

The diff is written to stdout; logs go to stderr.

EXAMPLES:
  # Compare a Brownie strategy with mainnet
  ethlift diff -e $ETHERSCAN_API_KEY -s contracts -f contracts/Strategy.sol \
    -a 0x5f18C75AbDAe578b483E5F43f12a39cF75b973a9 -c brownie-config.yml

  # Compare a Foundry contract on Polygon, failing CI on drift
  ethlift diff -s src -f src/Vault.sol -a 0x... -n 137 --exit-code
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.token, "etherscan-token", "e", "", "explorer API key (default $ETHERSCAN_API_KEY)")
	flags.StringVarP(&opts.sourcePath, "source-path", "s", "", "directory holding the contract sources")
	flags.StringVarP(&opts.address, "address", "a", "", "address of the deployed contract")
	flags.StringVarP(&opts.file, "file", "f", "", "entry source file, relative to the working directory")
	flags.Uint64VarP(&opts.chainID, "chain-id", "n", 1, "chain id of the deployment")
	flags.StringVarP(&opts.configPath, "config", "c", "", "project config file (default: brownie-config.yml if present, else foundry.toml)")
	flags.StringVar(&opts.configKind, "config-kind", "", "remapping convention: brownie or foundry (default: from the config file name)")
	flags.StringVar(&opts.profile, "profile", "", "Foundry profile (default $FOUNDRY_PROFILE or default)")
	flags.StringVar(&opts.color, "color", colorAuto, "colorize the diff: auto, always or never")
	flags.BoolVar(&opts.exitCode, "exit-code", false, "exit with status 1 when the sources differ")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.DurationVar(&opts.timeout, "timeout", 0, "abort the run after this long (0 disables)")

	_ = cmd.MarkFlagRequired("source-path")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) runDiff(ctx context.Context, opts diffOptions) (err error) {
	metrics.Init(opts.metricsFile != "")
	defer func() {
		result := "clean"
		switch {
		case errors.Is(err, ErrDriftDetected):
			result = "drift"
		case err != nil:
			result = "error"
		}
		metrics.RunFinished(result, time.Now())
		if werr := metrics.WriteTextfile(opts.metricsFile); werr != nil {
			a.logger.Error("failed to write metrics", "path", opts.metricsFile, "error", werr)
		}
	}()

	if err := validation.ValidateChainID(opts.chainID); err != nil {
		return fmt.Errorf("%w: %v", chains.ErrInvalidChainID, err)
	}

	token := opts.token
	if token == "" {
		token = a.cfg.Explorer.APIKey
	}
	if token == "" {
		return fmt.Errorf("explorer API key required: pass --etherscan-token or set ETHERSCAN_API_KEY")
	}

	color, err := a.useColor(opts.color)
	if err != nil {
		return err
	}

	root, err := a.getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	home, err := a.homeDir()
	if err != nil {
		// Only the Brownie convention needs a home directory; it reports
		// its own error when it gets none.
		a.logger.Debug("home directory unavailable", "error", err)
		home = ""
	}

	profile := opts.profile
	if profile == "" {
		profile = a.cfg.Foundry.Profile
	}

	cfg, err := project.Load(a.chain, project.Options{
		Sources:    opts.sourcePath,
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
	metrics.RemappingsResolved(cfg.Builder, len(cfg.Remappings))
	a.logger.Info("resolved remappings", "builder", cfg.Builder, "config", cfg.ConfigPath, "count", len(cfg.Remappings))

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	id := explorer.ContractIdentity{ChainID: opts.chainID, Address: opts.address}
	client := a.newExplorerClient(token)

	var flattened *flatten.Result
	var verified *explorer.SourceCode

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flattened, err = flatten.New(cfg, flatten.WithLogger(a.logger)).Flatten(opts.file)
		return err
	})
	g.Go(func() error {
		var err error
		verified, err = client.ContractSourceCode(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	metrics.FilesFlattened(len(flattened.Files))
	a.logger.Info("flattened local source", "file", opts.file, "files", len(flattened.Files))
	a.logger.Info("fetched verified source", "contract", verified.ContractName, "compiler", verified.CompilerVersion, "files", len(verified.Files))

	result := diff.NewEngine().Compute(
		opts.file,
		fmt.Sprintf("explorer/%d/%s", opts.chainID, opts.address),
		flattened.Source,
		verified.Source(),
	)

	added, removed := result.Stats()
	metrics.DiffComputed(len(result.Hunks), added, removed)

	if err := diff.Render(a.diffOutput(color), result, diff.RenderOptions{Color: color}); err != nil {
		return fmt.Errorf("writing diff: %w", err)
	}

	if !result.HasChanges() {
		a.logger.Info("no differences", "address", opts.address)
		return nil
	}
	a.logger.Info("sources differ", "hunks", len(result.Hunks), "added", added, "removed", removed)
	if opts.exitCode {
		return ErrDriftDetected
	}
	return nil
}

func (a *app) newExplorerClient(token string) *explorer.Client {
	ec := a.cfg.Explorer

	var limiter *rate.Limiter
	if ec.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ec.RequestsPerSecond), 1)
	}

	return explorer.New(token,
		explorer.WithBaseURL(ec.URL),
		explorer.WithHTTPClient(&http.Client{
			Timeout:   ec.Timeout,
			Transport: metrics.Transport(http.DefaultTransport),
		}),
		explorer.WithRateLimiter(limiter),
		explorer.WithLogger(a.logger),
	)
}
