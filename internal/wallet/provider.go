package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// ErrNoAccounts is returned when the provider has no signing wallet to offer.
var ErrNoAccounts = errors.New("no signing wallet available")

// Provider exposes the signing wallets of a Manager as accounts. The default
// wallet is always the first account.
type Provider struct {
	mgr  *Manager
	feed event.Feed
}

// Detect returns a provider when mgr holds at least one signing wallet.
func Detect(mgr *Manager) (*Provider, bool) {
	for _, w := range mgr.List() {
		if w.Type == TypeSigning {
			return &Provider{mgr: mgr}, true
		}
	}
	return nil, false
}

// Accounts lists signing wallet addresses without touching the keystore.
func (p *Provider) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.accounts(), nil
}

// RequestAccounts lists signing wallet addresses after checking that the key
// of the first one can be unlocked. The OS keychain may prompt here.
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accounts := p.accounts()
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	w, err := p.mgr.FindByAddress(accounts[0])
	if err != nil {
		return nil, err
	}
	if _, err := p.mgr.Keystore().Retrieve(w.KeyRef); err != nil {
		return nil, fmt.Errorf("unlocking wallet %q: %w", w.Name, err)
	}
	return accounts, nil
}

// SubscribeAccounts delivers the new account list every time the default
// wallet changes. Sends block until every subscriber has received, so ch
// must be drained.
func (p *Provider) SubscribeAccounts(ch chan<- []common.Address) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Use makes name the default wallet and notifies subscribers.
func (p *Provider) Use(name string) error {
	w, err := p.mgr.Get(name)
	if err != nil {
		return err
	}
	if w.Type != TypeSigning {
		return fmt.Errorf("wallet %q is watch-only and cannot be used as an account", name)
	}
	if err := p.mgr.SetDefault(name); err != nil {
		return err
	}
	p.feed.Send(p.accounts())
	return nil
}

// SignerFor returns a transaction signer for one of the provider's accounts.
func (p *Provider) SignerFor(addr common.Address) (*Signer, error) {
	w, err := p.mgr.FindByAddress(addr)
	if err != nil {
		return nil, err
	}
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}
	return NewSigner(w, p.mgr.Keystore()), nil
}

func (p *Provider) accounts() []common.Address {
	var out []common.Address
	def := p.mgr.Default()
	if def != nil && def.Type == TypeSigning {
		out = append(out, common.HexToAddress(def.Address))
	}
	for _, w := range p.mgr.List() {
		if w.Type != TypeSigning || (def != nil && w.Name == def.Name) {
			continue
		}
		out = append(out, common.HexToAddress(w.Address))
	}
	return out
}
