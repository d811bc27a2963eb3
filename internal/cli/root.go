package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pendergraft/ethlift/internal/chains/evm"
	"github.com/pendergraft/ethlift/internal/config"
	"github.com/pendergraft/ethlift/internal/remapping"
)

// ErrDriftDetected is returned by diff --exit-code when the sources differ.
// It carries no message worth printing.
var ErrDriftDetected = errors.New("local source differs from verified source")

// app holds everything a command reads from its surroundings, so tests can
// run commands without touching the process environment.
type app struct {
	version string
	stdout  io.Writer
	stderr  io.Writer

	getwd   func() (string, error)
	homeDir func() (string, error)
	// isTerminal reports whether w is an interactive terminal.
	isTerminal func(w io.Writer) bool

	chain  *evm.Chain
	cfg    *config.Config
	logger *slog.Logger

	logLevel  string
	logFormat string
}

func newApp(version string, stdout, stderr io.Writer) *app {
	return &app{
		version:    version,
		stdout:     stdout,
		stderr:     stderr,
		getwd:      os.Getwd,
		homeDir:    remapping.HomeDir,
		isTerminal: isTerminal,
		chain:      evm.NewChain(),
		logger:     slog.New(slog.DiscardHandler),
	}
}

// Execute runs the CLI
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newApp(version, os.Stdout, os.Stderr).rootCmd().ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ethlift",
		Short: "Compare local Solidity sources with verified explorer sources",
		Long: `ethlift flattens a local Solidity contract using the project's import
remappings (Brownie or Foundry) and diffs it against the verified source
published on an Etherscan-compatible block explorer.`,
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (default $ETHLIFT_LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (default $ETHLIFT_LOG_FORMAT or text)")

	// Add subcommands
	rootCmd.AddCommand(a.newDiffCmd())
	rootCmd.AddCommand(a.newRemappingsCmd())
	rootCmd.AddCommand(a.newNetworksCmd())
	rootCmd.AddCommand(a.newConfigCmd())

	return rootCmd
}

// setup loads the environment config and applies the global flags over it.
func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	a.cfg = cfg
	a.logger = setupLogger(a.stderr, cfg.Logging).With("run_id", uuid.NewString())
	return nil
}

// setupLogger writes to w, never stdout, so the diff stays machine readable.
func setupLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
