package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrMissingMethod is returned when an ABI lacks a method the ATM needs.
	ErrMissingMethod = errors.New("ABI is missing required methods")
	// ErrNoContract is returned when a call returns no data, which means
	// there is no contract code at the address.
	ErrNoContract = errors.New("no contract code at address")
)

// ATM is a binding to a deployed ATM contract. Reads are sent from and
// writes are signed by the signer's account.
type ATM struct {
	address common.Address
	abi     abi.ABI
	backend Backend
	tx      *Transactor
}

// NewATM binds the contract at address. parsed must declare every method the
// ATM calls.
func NewATM(backend Backend, address common.Address, parsed abi.ABI, signer TxSigner, chainID *big.Int, opts ...Option) (*ATM, error) {
	if err := RequireMethods(parsed, atmMethods...); err != nil {
		return nil, err
	}
	return &ATM{
		address: address,
		abi:     parsed,
		backend: backend,
		tx:      NewTransactor(backend, address, parsed, signer, chainID, opts...),
	}, nil
}

// Address returns the contract address.
func (a *ATM) Address() common.Address { return a.address }

// Account returns the account the binding acts for.
func (a *ATM) Account() common.Address { return a.tx.From() }

// GetBalance reads the contract's balance.
func (a *ATM) GetBalance(ctx context.Context) (*big.Int, error) {
	out, err := a.call(ctx, "getBalance")
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getBalance: unexpected result type %T", out[0])
	}
	return bal, nil
}

// Owner reads the contract owner.
func (a *ATM) Owner(ctx context.Context) (common.Address, error) {
	out, err := a.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("owner: unexpected result type %T", out[0])
	}
	return owner, nil
}

// Deposit submits deposit(amount).
func (a *ATM) Deposit(ctx context.Context, amount *big.Int) (*PendingTx, error) {
	return a.tx.Transact(ctx, "deposit", amount)
}

// Withdraw submits withdraw(amount).
func (a *ATM) Withdraw(ctx context.Context, amount *big.Int) (*PendingTx, error) {
	return a.tx.Transact(ctx, "withdraw", amount)
}

// TransferOwnership submits transferOwnership(newOwner).
func (a *ATM) TransferOwnership(ctx context.Context, newOwner common.Address) (*PendingTx, error) {
	return a.tx.Transact(ctx, "transferOwnership", newOwner)
}

func (a *ATM) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := a.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	msg := ethereum.CallMsg{From: a.tx.From(), To: &a.address, Data: input}
	raw, err := a.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, DecodeRevert(a.abi, err))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("calling %s: %w %s", method, ErrNoContract, a.address.Hex())
	}
	out, err := a.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decoding %s: empty result", method)
	}
	return out, nil
}
