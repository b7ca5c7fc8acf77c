// Package session drives an ATM contract on behalf of one user: it tracks
// the wallet, the active account and the contract binding, and runs each
// user action through validation, submission, confirmation and a balance
// refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Messages shown to the user.
const (
	MsgInstallWallet        = "Please add a signing wallet in order to use this ATM."
	MsgWalletRequired       = "A signing wallet is required to connect"
	MsgDepositPrompt        = "Enter the amount you wish to deposit:"
	MsgWithdrawPrompt       = "Enter the amount you wish to withdraw:"
	MsgNewOwnerPrompt       = "Enter the new owner's address:"
	MsgInvalidAmount        = "Please enter a valid positive number."
	MsgExceedsBalance       = "You cannot withdraw an amount larger than your current balance."
	MsgNothingToWithdraw    = "There is nothing to withdraw."
	MsgInvalidAddress       = "Please enter a valid Ethereum address."
	MsgOwnershipTransferred = "Ownership transferred successfully!"
	MsgCurrentOwner         = "Current Owner: %s"
)

// ErrRejected is wrapped by every error that stops an action before anything
// is sent. The user has already been told why, except for ErrCancelled.
var ErrRejected = errors.New("action rejected")

var (
	ErrNoWallet          = fmt.Errorf("%w: no signing wallet", ErrRejected)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrRejected)
	ErrExceedsBalance    = fmt.Errorf("%w: amount exceeds balance", ErrRejected)
	ErrNothingToWithdraw = fmt.Errorf("%w: balance is zero", ErrRejected)
	ErrInvalidAddress    = fmt.Errorf("%w: invalid address", ErrRejected)
	ErrCancelled         = fmt.Errorf("%w: cancelled", ErrRejected)
)

var (
	// ErrNotConnected is returned by contract actions before Connect succeeded.
	ErrNotConnected = errors.New("not connected: run connect first")
	// ErrNoAccounts is returned by Connect when the wallet offers no account.
	ErrNoAccounts = errors.New("wallet returned no accounts")
)

// Wallet is the handle to a wallet provider.
type Wallet interface {
	// Accounts lists already authorised accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts asks for account access and may prompt or unlock.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// SubscribeAccounts delivers the account list whenever it changes.
	SubscribeAccounts(ch chan<- []common.Address) event.Subscription
}

// WalletDetector looks for a wallet provider.
type WalletDetector interface {
	Detect(ctx context.Context) (Wallet, bool)
}

// DetectorFunc adapts a function to WalletDetector.
type DetectorFunc func(ctx context.Context) (Wallet, bool)

// Detect calls f(ctx).
func (f DetectorFunc) Detect(ctx context.Context) (Wallet, bool) { return f(ctx) }

// Binder builds a contract binding that signs as account.
type Binder func(ctx context.Context, account common.Address) (Contract, error)

// Contract is the ATM contract as seen by one account.
type Contract interface {
	GetBalance(ctx context.Context) (*big.Int, error)
	Owner(ctx context.Context) (common.Address, error)
	Deposit(ctx context.Context, amount *big.Int) (Pending, error)
	Withdraw(ctx context.Context, amount *big.Int) (Pending, error)
	TransferOwnership(ctx context.Context, newOwner common.Address) (Pending, error)
}

// Pending is a submitted transaction.
type Pending interface {
	Hash() common.Hash
	// Wait blocks until the transaction has one confirmation.
	Wait(ctx context.Context) (*types.Receipt, error)
}

// Prompter asks the user for one line of input. Implementations return an
// error wrapping ErrCancelled when the user dismisses the prompt.
type Prompter interface {
	Prompt(ctx context.Context, message string) (string, error)
}

// Notifier shows messages to the user. Alert must have been seen by the time
// it returns; Notice is informational.
type Notifier interface {
	Alert(message string)
	Notice(message string)
}

// Session is a copy of the controller state for rendering.
type Session struct {
	WalletPresent bool
	Account       *common.Address
	Connected     bool
	Balance       *big.Int
	Owner         *common.Address
}

// Outcome describes a confirmed transaction.
type Outcome struct {
	TxHash  common.Hash
	Block   uint64
	GasUsed uint64
	// Balance after the post-confirmation refresh, nil if not refreshed.
	Balance *big.Int
}
