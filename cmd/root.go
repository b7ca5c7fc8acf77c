package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Mohsinsiddi/atmcli/internal/config"
	"github.com/Mohsinsiddi/atmcli/internal/logging"
	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/Mohsinsiddi/atmcli/internal/ui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/atmcli/cmd.Version=0.2.1" .
var Version = "0.2.0"

var (
	cfgDir     string
	cfg        *config.Config
	verbose    bool
	walletFlag string
	logger     = logging.Discard()
	logGate    *logging.Gate
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "atm",
	Short: "Terminal client for the Assessment ATM contract",
	Long: `atm talks to a deployed ATM contract: check the balance held for your
account, deposit, withdraw, and hand the contract to a new owner.

Wallets live in the config directory with their private keys in the OS
keychain. The contract address, RPC endpoint and ABI artifact come from
the config, overridden per project by an atm.toml in the working directory.

Run 'atm ui' for the interactive screen.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if wd, err := os.Getwd(); err == nil {
			if _, err := cfg.ApplyProjectFile(filepath.Join(wd, config.ProjectFile)); err != nil {
				return err
			}
		}

		level := cfg.LogLevel
		if verbose {
			level = log.DebugLevel.String()
		}
		logGate = logging.NewGate(cmd.ErrOrStderr())
		logger = logging.New(logGate, level)
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command context so
// pending confirmations stop waiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(report(os.Stderr, err))
}

// report prints err for the user and returns the exit code. Rejections were
// already shown as alerts, so only their exit code is reported.
func report(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrCancelled), errors.Is(err, context.Canceled):
		fmt.Fprintln(w, ui.Meta("Cancelled."))
		return 130
	case errors.Is(err, session.ErrRejected):
		return 1
	default:
		fmt.Fprintln(w, ui.Err(err.Error()))
		return 1
	}
}

func init() {
	// ATM_CONFIG_DIR env var sets the default for --config.
	if envDir := os.Getenv("ATM_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.atm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet to act as for this command")

	// Register all sub-commands.
	rootCmd.AddCommand(
		statusCmd,
		connectCmd,
		balanceCmd,
		depositCmd,
		withdrawCmd,
		withdrawAllCmd,
		transferOwnershipCmd,
		ownerCmd,
		uiCmd,
		walletCmd,
		configCmd,
	)
}
