package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Mohsinsiddi/atmcli/internal/config"
	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/Mohsinsiddi/atmcli/internal/ui"
	"github.com/Mohsinsiddi/atmcli/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag   string
	walletForceFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallets the ATM can act as",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet with --key (the key goes to the OS keychain) or a
watch-only wallet by address. Only signing wallets can connect to the ATM.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		out := cmd.OutOrStdout()

		if walletKeyFlag != "" {
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint("Connect with: atm connect --wallet "+name))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: atm wallet add <name> <address>\n  Or for signing: atm wallet add <name> --key <private-key>")
		}
		if err := mgr.Add(name, &wallet.Wallet{
			Name:    name,
			Address: args[1],
			Type:    wallet.TypeWatchOnly,
		}); err != nil {
			return err
		}
		w, _ := mgr.Get(name)
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		fmt.Fprintln(out, ui.Hint("Watch-only wallets cannot sign; add --key to use it with the ATM."))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a new keypair and store the private key in the OS keychain.

The private key is displayed ONCE. Fund the address on your node before
depositing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		w, hexKey, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.KeyValueBlock("New Wallet", [][2]string{
			{"Wallet", w.Name},
			{"Address", w.Address},
			{"Private Key", hexKey},
		}))
		fmt.Fprintln(out, ui.Warn("Save the private key now. It is shown only once."))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		out := cmd.OutOrStdout()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: atm wallet add <name> --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for i, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
				t.Marked = i
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet (pick from a list when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		name := firstArg(args)
		if name == "" {
			var items []ui.PickerItem
			for _, w := range mgr.List() {
				items = append(items, ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address) + "  " + walletTypeLabel(w.Type),
					Value:    w.Name,
				})
			}
			picked, err := ui.PickItem("Default wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				return session.ErrCancelled
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		if err := storeDefaultWallet(func(string) string { return name }); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if _, err := mgr.Get(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}

		if !walletForceFlag {
			ok, err := ui.NewConsole(cmd.OutOrStdout()).Confirm(cmd.Context(), fmt.Sprintf("Remove wallet %q and its key?", name))
			if err != nil {
				return err
			}
			if !ok {
				return session.ErrCancelled
			}
		}

		if err := mgr.Remove(name); err != nil {
			return err
		}
		err := storeDefaultWallet(func(current string) string {
			if current == name {
				return ""
			}
			return current
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletRemoveCmd.Flags().BoolVarP(&walletForceFlag, "yes", "y", false, "do not ask for confirmation")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t
	}
}

// storeDefaultWallet rewrites default_wallet in the user config. The stored
// config is reloaded so values from atm.toml are not written back.
func storeDefaultWallet(update func(current string) string) error {
	stored, err := config.Load(cfg.Dir())
	if err != nil {
		return err
	}
	next := update(stored.DefaultWallet)
	cfg.DefaultWallet = update(cfg.DefaultWallet)
	if next == stored.DefaultWallet {
		return nil
	}
	stored.DefaultWallet = next
	return stored.Save()
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() *wallet.Manager {
	store := wallet.NewJSONStore(filepath.Join(cfg.Dir(), "wallets.json"))
	return wallet.NewManager(wallet.WithStore(store), wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())))
}

