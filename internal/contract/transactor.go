package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/atmcli/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	defaultGasLimit     = uint64(200_000)
	defaultPollInterval = 2 * time.Second
)

// Backend is the node access a binding needs. *chain.Client satisfies it.
type Backend interface {
	chain.ReceiptReader
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// TxSigner signs transactions for one account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Option configures a Transactor.
type Option func(*Transactor)

// WithGasLimit sets the gas limit used when estimation fails for a reason
// other than a revert.
func WithGasLimit(limit uint64) Option {
	return func(t *Transactor) { t.gasLimit = limit }
}

// WithPollInterval sets how often receipts are polled.
func WithPollInterval(d time.Duration) Option {
	return func(t *Transactor) {
		if d > 0 {
			t.poll = d
		}
	}
}

// WithConfirmTimeout bounds PendingTx.Wait. Zero waits until the caller's
// context is done.
func WithConfirmTimeout(d time.Duration) Option {
	return func(t *Transactor) { t.timeout = d }
}

// Transactor builds, signs and broadcasts calls to one contract.
type Transactor struct {
	backend  Backend
	abi      abi.ABI
	address  common.Address
	signer   TxSigner
	chainID  *big.Int
	gasLimit uint64
	poll     time.Duration
	timeout  time.Duration
}

// NewTransactor creates a Transactor for the contract at address.
func NewTransactor(backend Backend, address common.Address, parsed abi.ABI, signer TxSigner, chainID *big.Int, opts ...Option) *Transactor {
	t := &Transactor{
		backend:  backend,
		abi:      parsed,
		address:  address,
		signer:   signer,
		chainID:  chainID,
		gasLimit: defaultGasLimit,
		poll:     defaultPollInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// From returns the signing account.
func (t *Transactor) From() common.Address {
	return t.signer.Address()
}

// Transact packs method(args...), signs it and broadcasts it. A call the node
// predicts will revert is never sent.
func (t *Transactor) Transact(ctx context.Context, method string, args ...interface{}) (*PendingTx, error) {
	input, err := t.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	from := t.signer.Address()

	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &t.address, Data: input})
	if err != nil {
		if rev := DecodeRevert(t.abi, err); errors.Is(rev, chain.ErrReverted) {
			return nil, fmt.Errorf("%s: %w", method, rev)
		}
		gas = t.gasLimit
	}

	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := t.backend.SuggestGasTipCap(ctx)
	if err != nil {
		tip = gasPrice
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(gasPrice, big.NewInt(2)), tip)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &t.address,
		Value:     big.NewInt(0),
		Data:      input,
	})

	signed, err := t.signer.SignTx(tx, t.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", DecodeRevert(t.abi, err))
	}

	return &PendingTx{tx: signed, reader: t.backend, poll: t.poll, timeout: t.timeout}, nil
}

// PendingTx is a broadcast transaction awaiting confirmation.
type PendingTx struct {
	tx      *types.Transaction
	reader  chain.ReceiptReader
	poll    time.Duration
	timeout time.Duration
}

// Hash returns the transaction hash.
func (p *PendingTx) Hash() common.Hash { return p.tx.Hash() }

// Wait blocks until the transaction is mined. A transaction that failed on
// chain returns its receipt and an error wrapping chain.ErrReverted.
func (p *PendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return chain.WaitForReceipt(ctx, p.reader, p.Hash(), p.poll)
}
