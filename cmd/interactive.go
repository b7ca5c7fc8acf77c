package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/Mohsinsiddi/atmcli/internal/ui"
	"github.com/Mohsinsiddi/atmcli/internal/wallet"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive ATM screen",
	Long: `Open the ATM screen. Connect with enter, then deposit (d), withdraw (w),
withdraw everything (a), transfer ownership (t) or show the owner (o).
Switching wallets (s) rebinds the contract to the new account.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		env, err := openSession(ctx, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.ctrl.DetectWallet(ctx); err != nil {
			return err
		}
		if env.provider != nil {
			go func() {
				if err := env.ctrl.WatchAccounts(ctx); err != nil {
					logger.Error("watching accounts", "err", err)
				}
			}()
		}

		status := ""
		for {
			// The account watcher logs from its own goroutine; keep it off
			// the alt screen.
			logGate.Hold()
			action, err := ui.RunATM(ui.NewATMModel(env.ctrl.Snapshot, env.address.Hex(), status))
			logGate.Release() //nolint:errcheck
			if err != nil {
				return err
			}
			if action == ui.ActionNone {
				return nil
			}
			status, err = screenAction(ctx, env, action)
			if err != nil {
				return err
			}
		}
	},
}

// screenAction runs one action picked on the screen and returns the status
// line to show next. Only an interrupt ends the loop with an error.
func screenAction(ctx context.Context, env *atmEnv, action ui.Action) (string, error) {
	var (
		out  *session.Outcome
		what string
		err  error
	)

	switch action {
	case ui.ActionConnect:
		err = withProgress(env, "Connecting…", func() error {
			if err := env.ctrl.Connect(ctx); err != nil {
				return err
			}
			return env.ctrl.RefreshBalance(ctx)
		})
	case ui.ActionRefresh:
		err = withProgress(env, "Refreshing…", func() error { return env.ctrl.RefreshBalance(ctx) })
	case ui.ActionDeposit:
		what = "Deposit"
		out, err = runAction(env, "Depositing…", func() (*session.Outcome, error) { return env.ctrl.Deposit(ctx, "") })
	case ui.ActionWithdraw:
		what = "Withdrawal"
		out, err = runAction(env, "Withdrawing…", func() (*session.Outcome, error) { return env.ctrl.Withdraw(ctx, "") })
	case ui.ActionWithdrawAll:
		what = "Withdrawal"
		out, err = runAction(env, "Withdrawing everything…", func() (*session.Outcome, error) { return env.ctrl.WithdrawAll(ctx) })
	case ui.ActionTransferOwnership:
		what = "Ownership transfer"
		out, err = runAction(env, "Transferring ownership…", func() (*session.Outcome, error) {
			return env.ctrl.TransferOwnership(ctx, "")
		})
	case ui.ActionOwner:
		err = withProgress(env, "Reading owner…", func() error {
			_, err := env.ctrl.DisplayOwner(ctx)
			return err
		})
	case ui.ActionSwitchAccount:
		err = switchAccount(env)
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return statusLine(what, out, err, env.progress.takeAlert()), nil
}

// statusLine summarises an action for the screen.
func statusLine(what string, out *session.Outcome, err error, alert string) string {
	switch {
	case errors.Is(err, session.ErrCancelled):
		return ui.Meta("Cancelled.")
	case alert != "" && err == nil:
		return ui.Info(alert)
	case alert != "" && errors.Is(err, session.ErrRejected):
		return ui.Warn(alert)
	case err != nil && out != nil:
		return ui.Err(fmt.Sprintf("%s %s not confirmed: %v", what, ui.TruncateAddr(out.TxHash.Hex()), err))
	case err != nil:
		return ui.Err(err.Error())
	case out != nil:
		return ui.Success(fmt.Sprintf("%s confirmed in block %d (tx %s)", what, out.Block, ui.TruncateAddr(out.TxHash.Hex())))
	}
	return ""
}

func withProgress(env *atmEnv, msg string, fn func() error) error {
	env.progress.begin(msg)
	defer env.progress.done()
	return fn()
}

// switchAccount lets the user pick another signing wallet. The provider
// announces the change and the controller rebinds on its own.
func switchAccount(env *atmEnv) error {
	if env.provider == nil {
		return wallet.ErrNoAccounts
	}
	var items []ui.PickerItem
	for _, w := range env.mgr.List() {
		if w.Type != wallet.TypeSigning {
			continue
		}
		sub := ui.TruncateAddr(w.Address)
		if w.IsDefault {
			sub += "  " + ui.Meta("[active]")
		}
		items = append(items, ui.PickerItem{Label: w.Name, SubLabel: sub, Value: w.Name})
	}

	picked, err := ui.PickItem("Switch account", items)
	if err != nil {
		return err
	}
	if picked == "" {
		return session.ErrCancelled
	}
	return env.provider.Use(picked)
}
