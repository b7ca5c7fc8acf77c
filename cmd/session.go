package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"sync"

	"github.com/Mohsinsiddi/atmcli/internal/chain"
	"github.com/Mohsinsiddi/atmcli/internal/config"
	"github.com/Mohsinsiddi/atmcli/internal/contract"
	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/Mohsinsiddi/atmcli/internal/ui"
	"github.com/Mohsinsiddi/atmcli/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// atmEnv is everything one command needs to drive the controller.
type atmEnv struct {
	client   *chain.Client
	mgr      *wallet.Manager
	provider *wallet.Provider
	abi      abi.ABI
	address  common.Address
	source   string
	chainID  *big.Int
	progress *progress
	ctrl     *session.Controller
}

// openSession dials the node, loads the ABI and wires a controller whose
// prompts and alerts go to out.
func openSession(ctx context.Context, out io.Writer) (*atmEnv, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("contract_address %q is not a valid address\n  Set it with: atm config set contract_address <address>", cfg.ContractAddress)
	}
	parsed, source, err := contract.LoadABI(cfg.ArtifactPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("ABI loaded", "source", source)

	mgr, err := sessionWalletManager()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.RPCDialTimeout)
	defer cancel()
	client, err := chain.Dial(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}

	env := &atmEnv{
		client:   client,
		mgr:      mgr,
		abi:      parsed,
		address:  common.HexToAddress(cfg.ContractAddress),
		source:   source,
		progress: newProgress(out),
	}
	env.ctrl = session.New(session.Deps{
		Detector: session.DetectorFunc(env.detect),
		Bind:     env.bind,
		Prompter: env.progress,
		Notifier: env.progress,
		Logger:   logger,
	})
	return env, nil
}

// Close stops any spinner and releases the RPC connection.
func (e *atmEnv) Close() {
	e.progress.done()
	e.client.Close()
}

func (e *atmEnv) detect(ctx context.Context) (session.Wallet, bool) {
	p, ok := wallet.Detect(e.mgr)
	if !ok {
		return nil, false
	}
	e.provider = p
	return p, true
}

func (e *atmEnv) bind(ctx context.Context, account common.Address) (session.Contract, error) {
	if e.provider == nil {
		return nil, wallet.ErrNoAccounts
	}
	if e.chainID == nil {
		id, err := e.client.ResolveChainID(ctx, cfg.ChainID)
		if err != nil {
			return nil, err
		}
		e.chainID = id
	}
	signer, err := e.provider.SignerFor(account)
	if err != nil {
		return nil, err
	}
	atm, err := contract.NewATM(e.client, e.address, e.abi, signer, e.chainID,
		contract.WithGasLimit(config.GasLimitContractCall),
		contract.WithPollInterval(cfg.PollInterval()),
		contract.WithConfirmTimeout(cfg.ConfirmWait()),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.source, err)
	}
	logger.Debug("contract bound", "contract", atm.Address().Hex(), "account", atm.Account().Hex(), "chain", e.chainID)
	return contract.SessionBinding{ATM: atm}, nil
}

// sessionWalletManager loads the wallets and applies --wallet (or the
// configured default wallet). Selections made during a session are not
// saved.
func sessionWalletManager() (*wallet.Manager, error) {
	store := volatileStore{wallet.NewJSONStore(filepath.Join(cfg.Dir(), "wallets.json"))}
	mgr := wallet.NewManager(wallet.WithStore(store), wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())))

	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		return mgr, nil
	}
	if def := mgr.Default(); def != nil && def.Name == name {
		return mgr, nil
	}
	if err := mgr.SetDefault(name); err != nil {
		return nil, fmt.Errorf("wallet %q: %w\n  List wallets with: atm wallet list", name, err)
	}
	return mgr, nil
}

// volatileStore reads wallets from disk but never writes them back.
type volatileStore struct {
	wallet.Store
}

func (volatileStore) Save([]*wallet.Wallet) error { return nil }

// progress shows a spinner while an action runs. Prompts and alerts pause
// it so they are never drawn over.
type progress struct {
	console *ui.Console
	out     io.Writer

	mu    sync.Mutex
	msg   string
	spin  *ui.Spinner
	alert string
}

func newProgress(out io.Writer) *progress {
	return &progress{console: ui.NewConsole(out), out: out}
}

// begin starts the spinner with msg. It restarts after each prompt until
// done is called.
func (p *progress) begin(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msg = msg
	p.startLocked()
}

func (p *progress) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msg = ""
	p.stopLocked()
}

func (p *progress) startLocked() {
	if p.spin != nil || p.msg == "" {
		return
	}
	p.spin = ui.NewSpinnerTo(p.out, p.msg)
	p.spin.Start()
}

func (p *progress) stopLocked() {
	if p.spin == nil {
		return
	}
	p.spin.Stop()
	p.spin = nil
}

func (p *progress) Prompt(ctx context.Context, message string) (string, error) {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()

	v, err := p.console.Prompt(ctx, message)

	p.mu.Lock()
	p.startLocked()
	p.mu.Unlock()
	return v, err
}

func (p *progress) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.alert = message
	p.console.Alert(message)
}

// takeAlert returns the last alert shown and forgets it.
func (p *progress) takeAlert() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	a := p.alert
	p.alert = ""
	return a
}

func (p *progress) Notice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.console.Notice(message)
}
