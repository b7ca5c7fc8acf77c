package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/atmcli/internal/logging"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// Deps are the collaborators of a Controller.
type Deps struct {
	Detector WalletDetector
	Bind     Binder
	Prompter Prompter
	Notifier Notifier
	Logger   *log.Logger
}

// Controller holds one Session and runs user actions against it. Actions may
// be called from several goroutines; concurrent actions are not coordinated
// and each submits its own transaction.
type Controller struct {
	detector WalletDetector
	bind     Binder
	prompt   Prompter
	notify   Notifier
	log      *log.Logger

	mu       sync.Mutex
	wallet   Wallet
	account  *common.Address
	contract Contract
	balance  *big.Int
	owner    *common.Address
}

// New creates a Controller with an empty session.
func New(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	return &Controller{
		detector: d.Detector,
		bind:     d.Bind,
		prompt:   d.Prompter,
		notify:   d.Notifier,
		log:      d.Logger,
	}
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Session{
		WalletPresent: c.wallet != nil,
		Connected:     c.contract != nil,
	}
	if c.account != nil {
		a := *c.account
		s.Account = &a
	}
	if c.balance != nil {
		s.Balance = new(big.Int).Set(c.balance)
	}
	if c.owner != nil {
		o := *c.owner
		s.Owner = &o
	}
	return s
}

// DetectWallet looks for a wallet. Without one the user is told how to get
// one and the session is left untouched. With one, already authorised
// accounts are picked up without prompting.
func (c *Controller) DetectWallet(ctx context.Context) error {
	w, ok := c.detector.Detect(ctx)
	if !ok {
		c.log.Debug("no wallet detected")
		c.notify.Notice(MsgInstallWallet)
		return nil
	}

	c.mu.Lock()
	c.wallet = w
	c.mu.Unlock()

	accounts, err := w.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("reading accounts: %w", err)
	}
	c.HandleAccounts(ctx, accounts)
	return nil
}

// Connect requests account access, makes the first account active and binds
// the contract to it.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	w := c.wallet
	c.mu.Unlock()
	if w == nil {
		c.notify.Alert(MsgWalletRequired)
		return ErrNoWallet
	}

	accounts, err := w.RequestAccounts(ctx)
	if err != nil {
		return fmt.Errorf("requesting accounts: %w", err)
	}
	if len(accounts) == 0 {
		return ErrNoAccounts
	}
	account := accounts[0]

	c.mu.Lock()
	c.account = &account
	c.mu.Unlock()
	c.log.Info("Account connected", "account", account.Hex())

	contract, err := c.bind(ctx, account)
	if err != nil {
		return fmt.Errorf("binding contract: %w", err)
	}

	c.mu.Lock()
	c.contract = contract
	c.mu.Unlock()
	return nil
}

// RefreshBalance re-reads the contract balance. It does nothing before
// Connect.
func (c *Controller) RefreshBalance(ctx context.Context) error {
	contract := c.binding()
	if contract == nil {
		return nil
	}
	bal, err := contract.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}

	c.mu.Lock()
	c.balance = bal
	c.mu.Unlock()
	c.log.Debug("balance refreshed", "balance", bal)
	return nil
}

// Deposit deposits raw, prompting for the amount when raw is empty.
func (c *Controller) Deposit(ctx context.Context, raw string) (*Outcome, error) {
	contract := c.binding()
	if contract == nil {
		return nil, ErrNotConnected
	}
	amount, err := c.readAmount(ctx, raw, MsgDepositPrompt)
	if err != nil {
		return nil, err
	}

	pending, err := contract.Deposit(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	return c.confirm(ctx, "deposit", pending, true)
}

// Withdraw withdraws raw, prompting for the amount when raw is empty. The
// amount may not exceed the cached balance, which is read first if it never
// was.
func (c *Controller) Withdraw(ctx context.Context, raw string) (*Outcome, error) {
	contract := c.binding()
	if contract == nil {
		return nil, ErrNotConnected
	}
	amount, err := c.readAmount(ctx, raw, MsgWithdrawPrompt)
	if err != nil {
		return nil, err
	}

	bal, err := c.knownBalance(ctx)
	if err != nil {
		return nil, err
	}
	if amount.Cmp(bal) > 0 {
		c.notify.Alert(MsgExceedsBalance)
		return nil, ErrExceedsBalance
	}

	return c.withdraw(ctx, contract, amount)
}

// WithdrawAll re-reads the balance and withdraws all of it.
func (c *Controller) WithdrawAll(ctx context.Context) (*Outcome, error) {
	contract := c.binding()
	if contract == nil {
		return nil, ErrNotConnected
	}
	if err := c.RefreshBalance(ctx); err != nil {
		return nil, err
	}

	bal, err := c.knownBalance(ctx)
	if err != nil {
		return nil, err
	}
	if bal.Sign() <= 0 {
		c.notify.Alert(MsgNothingToWithdraw)
		return nil, ErrNothingToWithdraw
	}

	return c.withdraw(ctx, contract, bal)
}

func (c *Controller) withdraw(ctx context.Context, contract Contract, amount *big.Int) (*Outcome, error) {
	pending, err := contract.Withdraw(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	return c.confirm(ctx, "withdraw", pending, true)
}

// TransferOwnership hands the contract to raw, prompting for the address
// when raw is empty.
func (c *Controller) TransferOwnership(ctx context.Context, raw string) (*Outcome, error) {
	contract := c.binding()
	if contract == nil {
		return nil, ErrNotConnected
	}
	raw, err := c.input(ctx, raw, MsgNewOwnerPrompt)
	if err != nil {
		return nil, err
	}
	newOwner, ok := ParseAddress(raw)
	if !ok {
		c.notify.Alert(MsgInvalidAddress)
		return nil, ErrInvalidAddress
	}

	pending, err := contract.TransferOwnership(ctx, newOwner)
	if err != nil {
		return nil, fmt.Errorf("transfer ownership: %w", err)
	}
	out, err := c.confirm(ctx, "transferOwnership", pending, false)
	if err != nil {
		return out, err
	}

	c.mu.Lock()
	c.owner = nil
	c.mu.Unlock()
	c.notify.Alert(MsgOwnershipTransferred)
	return out, nil
}

// DisplayOwner reads the owner, caches it and shows it.
func (c *Controller) DisplayOwner(ctx context.Context) (common.Address, error) {
	contract := c.binding()
	if contract == nil {
		return common.Address{}, ErrNotConnected
	}
	owner, err := contract.Owner(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading owner: %w", err)
	}

	c.mu.Lock()
	c.owner = &owner
	c.mu.Unlock()
	c.notify.Alert(fmt.Sprintf(MsgCurrentOwner, owner.Hex()))
	return owner, nil
}

// HandleAccounts applies an account change. The first account becomes
// active and an existing binding is rebuilt for it. An empty list
// disconnects.
func (c *Controller) HandleAccounts(ctx context.Context, accounts []common.Address) {
	if len(accounts) == 0 {
		c.log.Warn("No account found")
		c.mu.Lock()
		c.account = nil
		c.contract = nil
		c.mu.Unlock()
		return
	}

	next := accounts[0]
	c.mu.Lock()
	prev := c.account
	rebind := c.contract != nil && (prev == nil || *prev != next)
	c.account = &next
	c.mu.Unlock()

	c.log.Info("Account connected", "account", next.Hex())
	if !rebind {
		return
	}

	contract, err := c.bind(ctx, next)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account == nil || *c.account != next {
		// A newer change won.
		return
	}
	if err != nil {
		c.log.Error("rebinding contract", "account", next.Hex(), "err", err)
		c.contract = nil
		return
	}
	c.contract = contract
}

// WatchAccounts applies account changes from the wallet until ctx is done or
// the subscription fails.
func (c *Controller) WatchAccounts(ctx context.Context) error {
	c.mu.Lock()
	w := c.wallet
	c.mu.Unlock()
	if w == nil {
		return ErrNoWallet
	}

	ch := make(chan []common.Address, 4)
	sub := w.SubscribeAccounts(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case accounts := <-ch:
			c.HandleAccounts(ctx, accounts)
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

// --- internal ---

func (c *Controller) binding() Contract {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contract
}

// knownBalance returns the cached balance, reading it first if needed.
func (c *Controller) knownBalance(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	bal := c.balance
	c.mu.Unlock()
	if bal != nil {
		return new(big.Int).Set(bal), nil
	}
	if err := c.RefreshBalance(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance == nil {
		return nil, ErrNotConnected
	}
	return new(big.Int).Set(c.balance), nil
}

func (c *Controller) input(ctx context.Context, raw, message string) (string, error) {
	if raw != "" {
		return raw, nil
	}
	v, err := c.prompt.Prompt(ctx, message)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	return v, nil
}

func (c *Controller) readAmount(ctx context.Context, raw, message string) (*big.Int, error) {
	raw, err := c.input(ctx, raw, message)
	if err != nil {
		return nil, err
	}
	amount, ok := ParseAmount(raw)
	if !ok {
		c.notify.Alert(MsgInvalidAmount)
		return nil, ErrInvalidAmount
	}
	return amount, nil
}

// confirm waits for pending and, when refresh is set, re-reads the balance
// once. The outcome carries the hash even when waiting fails.
func (c *Controller) confirm(ctx context.Context, action string, pending Pending, refresh bool) (*Outcome, error) {
	out := &Outcome{TxHash: pending.Hash()}
	c.log.Info("transaction submitted", "action", action, "tx", out.TxHash.Hex())

	receipt, err := pending.Wait(ctx)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", action, out.TxHash.Hex(), err)
	}
	if receipt != nil {
		out.GasUsed = receipt.GasUsed
		if receipt.BlockNumber != nil {
			out.Block = receipt.BlockNumber.Uint64()
		}
	}
	c.log.Info("transaction confirmed", "action", action, "tx", out.TxHash.Hex(), "block", out.Block)

	if !refresh {
		return out, nil
	}
	if err := c.RefreshBalance(ctx); err != nil {
		return out, err
	}
	c.mu.Lock()
	if c.balance != nil {
		out.Balance = new(big.Int).Set(c.balance)
	}
	c.mu.Unlock()
	return out, nil
}
