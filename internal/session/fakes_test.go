package session_test

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	accountA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	accountB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	ownerX   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

// --- wallet ---

type fakeWallet struct {
	authorised []common.Address
	requested  []common.Address
	requestErr error
	feed       event.Feed
}

func (w *fakeWallet) Accounts(context.Context) ([]common.Address, error) {
	return w.authorised, nil
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	return w.requested, w.requestErr
}

func (w *fakeWallet) SubscribeAccounts(ch chan<- []common.Address) event.Subscription {
	return w.feed.Subscribe(ch)
}

func detectorFor(w *fakeWallet) session.WalletDetector {
	return session.DetectorFunc(func(context.Context) (session.Wallet, bool) {
		if w == nil {
			return nil, false
		}
		return w, true
	})
}

// --- contract ---

type fakePending struct {
	hash    common.Hash
	waitErr error
	waited  bool
}

func (p *fakePending) Hash() common.Hash { return p.hash }

func (p *fakePending) Wait(context.Context) (*types.Receipt, error) {
	p.waited = true
	if p.waitErr != nil {
		return nil, p.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(9), GasUsed: 46_097}, nil
}

type fakeContract struct {
	mu sync.Mutex

	account    common.Address
	balance    *big.Int
	owner      common.Address
	balanceErr error
	submitErr  error
	waitErr    error

	balanceReads int
	deposits     []*big.Int
	withdrawals  []*big.Int
	transfers    []common.Address
	pending      []*fakePending
}

func (f *fakeContract) GetBalance(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceReads++
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeContract) Owner(context.Context) (common.Address, error) {
	return f.owner, nil
}

func (f *fakeContract) submit() (session.Pending, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	p := &fakePending{hash: common.BigToHash(big.NewInt(int64(len(f.pending) + 1))), waitErr: f.waitErr}
	f.pending = append(f.pending, p)
	return p, nil
}

func (f *fakeContract) Deposit(_ context.Context, amount *big.Int) (session.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, amount)
	if f.submitErr == nil {
		f.balance = new(big.Int).Add(f.balance, amount)
	}
	return f.submit()
}

func (f *fakeContract) Withdraw(_ context.Context, amount *big.Int) (session.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawals = append(f.withdrawals, amount)
	if f.submitErr == nil {
		f.balance = new(big.Int).Sub(f.balance, amount)
	}
	return f.submit()
}

func (f *fakeContract) TransferOwnership(_ context.Context, newOwner common.Address) (session.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, newOwner)
	return f.submit()
}

func (f *fakeContract) txCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deposits) + len(f.withdrawals) + len(f.transfers)
}

// binder records every binding it builds.
type binder struct {
	mu       sync.Mutex
	balance  int64
	err      error
	bindings []*fakeContract
}

func (b *binder) bind(_ context.Context, account common.Address) (session.Contract, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	c := &fakeContract{account: account, balance: big.NewInt(b.balance), owner: accountA}
	b.bindings = append(b.bindings, c)
	return c, nil
}

func (b *binder) last() *fakeContract {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bindings) == 0 {
		return nil
	}
	return b.bindings[len(b.bindings)-1]
}

// --- user ---

type fakeUser struct {
	mu      sync.Mutex
	answers []string
	cancel  bool
	prompts []string
	alerts  []string
	notices []string
}

func (u *fakeUser) Prompt(_ context.Context, message string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prompts = append(u.prompts, message)
	if u.cancel {
		return "", session.ErrCancelled
	}
	if len(u.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	a := u.answers[0]
	u.answers = u.answers[1:]
	return a, nil
}

func (u *fakeUser) Alert(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.alerts = append(u.alerts, message)
}

func (u *fakeUser) Notice(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notices = append(u.notices, message)
}
