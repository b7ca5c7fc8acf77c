package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/Mohsinsiddi/atmcli/internal/ui"
	"github.com/spf13/cobra"
)

// runSession opens a session, detects the wallet and, when connect is set,
// connects it before calling fn.
func runSession(cmd *cobra.Command, connect bool, fn func(ctx context.Context, env *atmEnv) error) error {
	ctx := cmd.Context()
	env, err := openSession(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.ctrl.DetectWallet(ctx); err != nil {
		return err
	}
	if connect {
		env.progress.begin("Connecting…")
		err := env.ctrl.Connect(ctx)
		env.progress.done()
		if err != nil {
			return err
		}
	}
	return fn(ctx, env)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the node, contract and wallet without connecting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, false, func(ctx context.Context, env *atmEnv) error {
			pairs := [][2]string{
				{"RPC", cfg.RPCURL},
				{"Contract", env.address.Hex()},
				{"ABI", env.source},
			}

			if latency, block, err := env.client.Ping(ctx); err != nil {
				pairs = append(pairs, [2]string{"Node", ui.Err(err.Error())})
			} else {
				pairs = append(pairs, [2]string{"Node", fmt.Sprintf("block %d (%s)", block, latency.Round(time.Millisecond))})
			}

			s := env.ctrl.Snapshot()
			switch {
			case !s.WalletPresent:
				pairs = append(pairs, [2]string{"Wallet", ui.Warn("none")})
			case s.Account != nil:
				pairs = append(pairs, [2]string{"Account", s.Account.Hex()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("ATM Status", pairs))
			return nil
		})
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Unlock the wallet and show the account's ATM balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			if err := env.ctrl.RefreshBalance(ctx); err != nil {
				return err
			}
			printAccount(cmd.OutOrStdout(), env.ctrl.Snapshot())
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the balance the contract holds for the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			if err := env.ctrl.RefreshBalance(ctx); err != nil {
				return err
			}
			s := env.ctrl.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Meta("Your Balance:"), ui.Val(balanceText(s)))
			return nil
		})
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit [amount]",
	Short: "Deposit into the ATM (prompts when no amount is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			out, err := runAction(env, "Depositing…", func() (*session.Outcome, error) {
				return env.ctrl.Deposit(ctx, firstArg(args))
			})
			return finish(cmd.OutOrStdout(), "Deposit", out, err)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw [amount]",
	Short: "Withdraw from the ATM (prompts when no amount is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			out, err := runAction(env, "Withdrawing…", func() (*session.Outcome, error) {
				return env.ctrl.Withdraw(ctx, firstArg(args))
			})
			return finish(cmd.OutOrStdout(), "Withdrawal", out, err)
		})
	},
}

var withdrawAllCmd = &cobra.Command{
	Use:   "withdraw-all",
	Short: "Withdraw the whole balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			out, err := runAction(env, "Withdrawing everything…", func() (*session.Outcome, error) {
				return env.ctrl.WithdrawAll(ctx)
			})
			return finish(cmd.OutOrStdout(), "Withdrawal", out, err)
		})
	},
}

var transferOwnershipCmd = &cobra.Command{
	Use:   "transfer-ownership [address]",
	Short: "Hand the contract to a new owner (prompts when no address is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			out, err := runAction(env, "Transferring ownership…", func() (*session.Outcome, error) {
				return env.ctrl.TransferOwnership(ctx, firstArg(args))
			})
			return finish(cmd.OutOrStdout(), "Ownership transfer", out, err)
		})
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the current contract owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, true, func(ctx context.Context, env *atmEnv) error {
			env.progress.begin("Reading owner…")
			_, err := env.ctrl.DisplayOwner(ctx)
			env.progress.done()
			return err
		})
	},
}

// runAction runs fn with the spinner showing msg.
func runAction(env *atmEnv, msg string, fn func() (*session.Outcome, error)) (*session.Outcome, error) {
	env.progress.begin(msg)
	defer env.progress.done()
	return fn()
}

// finish prints the outcome of a transaction. A hash is printed even when
// the confirmation failed so the user can look the transaction up.
func finish(w io.Writer, what string, out *session.Outcome, err error) error {
	if out == nil {
		return err
	}
	if err != nil {
		fmt.Fprintln(w, ui.Warn(fmt.Sprintf("%s sent as %s but not confirmed", what, out.TxHash.Hex())))
		return err
	}
	fmt.Fprintln(w, ui.Success(what+" confirmed"))
	fmt.Fprintln(w, ui.KeyValueBlock("Transaction", outcomePairs(out)))
	return nil
}

func outcomePairs(out *session.Outcome) [][2]string {
	pairs := [][2]string{
		{"Tx", out.TxHash.Hex()},
		{"Block", fmt.Sprintf("%d", out.Block)},
		{"Gas Used", fmt.Sprintf("%d", out.GasUsed)},
	}
	if out.Balance != nil {
		pairs = append(pairs, [2]string{"Your Balance", out.Balance.String()})
	}
	return pairs
}

func printAccount(w io.Writer, s session.Session) {
	pairs := [][2]string{{"Your Balance", balanceText(s)}}
	if s.Account != nil {
		pairs = append([][2]string{{"Your Account", s.Account.Hex()}}, pairs...)
	}
	fmt.Fprintln(w, ui.KeyValueBlock("Your ATM", pairs))
}

func balanceText(s session.Session) string {
	if s.Balance == nil {
		return "…"
	}
	return s.Balance.String()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
