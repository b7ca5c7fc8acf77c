package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what the user picked on the ATM screen.
type Action string

// Actions offered by the ATM screen.
const (
	ActionNone              Action = ""
	ActionConnect           Action = "connect"
	ActionDeposit           Action = "deposit"
	ActionWithdraw          Action = "withdraw"
	ActionWithdrawAll       Action = "withdraw-all"
	ActionTransferOwnership Action = "transfer-ownership"
	ActionOwner             Action = "owner"
	ActionRefresh           Action = "refresh"
	ActionSwitchAccount     Action = "switch-account"
)

const snapshotInterval = time.Second

type atmKeys struct {
	Connect     key.Binding
	Deposit     key.Binding
	Withdraw    key.Binding
	WithdrawAll key.Binding
	Transfer    key.Binding
	Owner       key.Binding
	Refresh     key.Binding
	Switch      key.Binding
	Copy        key.Binding
	Quit        key.Binding
}

func newATMKeys() atmKeys {
	return atmKeys{
		Connect:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect wallet")),
		Deposit:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deposit")),
		Withdraw:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "withdraw")),
		WithdrawAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "withdraw all")),
		Transfer:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer ownership")),
		Owner:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "current owner")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Switch:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "switch account")),
		Copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy account")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// setMode enables the bindings that make sense for the session state.
func (k *atmKeys) setMode(s session.Session) {
	k.Connect.SetEnabled(s.WalletPresent && !s.Connected)
	for _, b := range []*key.Binding{&k.Deposit, &k.Withdraw, &k.WithdrawAll, &k.Transfer, &k.Owner, &k.Refresh} {
		b.SetEnabled(s.Connected)
	}
	k.Switch.SetEnabled(s.WalletPresent)
	k.Copy.SetEnabled(s.Account != nil)
}

func (k atmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Deposit, k.Withdraw, k.WithdrawAll, k.Transfer, k.Owner, k.Copy, k.Quit}
}

func (k atmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Connect, k.Deposit, k.Withdraw, k.WithdrawAll},
		{k.Transfer, k.Owner, k.Refresh, k.Switch, k.Copy, k.Quit},
	}
}

type snapshotMsg session.Session

type copiedMsg struct{ err error }

// ATMModel is the Bubble Tea model of the ATM screen. It quits as soon as
// an action is picked; the caller runs it and shows the screen again.
type ATMModel struct {
	state    session.Session
	contract string
	status   string
	snapshot func() session.Session
	copy     func(string) error

	keys   atmKeys
	help   help.Model
	chosen Action
	copied string
}

// NewATMModel builds the screen. snapshot is polled so that account changes
// made elsewhere show up; status is a line from the last action.
func NewATMModel(snapshot func() session.Session, contract, status string) ATMModel {
	m := ATMModel{
		state:    snapshot(),
		contract: contract,
		status:   status,
		snapshot: snapshot,
		copy:     clipboard.WriteAll,
		keys:     newATMKeys(),
		help:     help.New(),
	}
	m.keys.setMode(m.state)
	return m
}

// Chosen returns the picked action, ActionNone if the user quit.
func (m ATMModel) Chosen() Action { return m.chosen }

func (m ATMModel) Init() tea.Cmd { return m.poll() }

func (m ATMModel) poll() tea.Cmd {
	return tea.Tick(snapshotInterval, func(time.Time) tea.Msg {
		return snapshotMsg(m.snapshot())
	})
}

func (m ATMModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.state = session.Session(msg)
		m.keys.setMode(m.state)
		return m, m.poll()

	case copiedMsg:
		if msg.err != nil {
			m.copied = Err("copy failed: " + msg.err.Error())
		} else {
			m.copied = Success("account copied")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ATMModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Copy) && m.state.Account != nil {
		account, write := m.state.Account.Hex(), m.copy
		return m, func() tea.Msg { return copiedMsg{err: write(account)} }
	}

	picks := []struct {
		binding key.Binding
		action  Action
	}{
		{m.keys.Connect, ActionConnect},
		{m.keys.Deposit, ActionDeposit},
		{m.keys.Withdraw, ActionWithdraw},
		{m.keys.WithdrawAll, ActionWithdrawAll},
		{m.keys.Transfer, ActionTransferOwnership},
		{m.keys.Owner, ActionOwner},
		{m.keys.Refresh, ActionRefresh},
		{m.keys.Switch, ActionSwitchAccount},
	}
	for _, p := range picks {
		if key.Matches(msg, p.binding) {
			m.chosen = p.action
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ATMModel) View() string {
	var sb strings.Builder
	sb.WriteString(Banner() + "\n")

	switch {
	case !m.state.WalletPresent:
		sb.WriteString(Warn(session.MsgInstallWallet) + "\n")
		sb.WriteString(Hint("atm wallet add <name> --key <hex>  or  atm wallet generate <name>") + "\n")

	case !m.state.Connected:
		if m.state.Account != nil {
			sb.WriteString(Meta("Account: "+m.state.Account.Hex()) + "\n\n")
		}
		sb.WriteString(StyleButton.Render("Please connect your wallet") + "  " + Meta("press enter") + "\n")

	default:
		sb.WriteString(KeyValueBlock("Your ATM", m.pairs()) + "\n")
	}

	if m.status != "" {
		sb.WriteString("\n" + m.status + "\n")
	}
	if m.copied != "" {
		sb.WriteString(m.copied + "\n")
	}
	sb.WriteString("\n" + m.help.View(m.keys) + "\n")
	return sb.String()
}

func (m ATMModel) pairs() [][2]string {
	balance := "…"
	if m.state.Balance != nil {
		balance = m.state.Balance.String()
	}
	account := ""
	if m.state.Account != nil {
		account = m.state.Account.Hex()
	}
	pairs := [][2]string{
		{"Your Account", account},
		{"Your Balance", balance},
	}
	if m.state.Owner != nil {
		pairs = append(pairs, [2]string{"Current Owner", m.state.Owner.Hex()})
	}
	if m.contract != "" {
		pairs = append(pairs, [2]string{"Contract", m.contract})
	}
	return pairs
}

// RunATM shows the screen until the user picks an action or quits.
func RunATM(m ATMModel) (Action, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return ActionNone, fmt.Errorf("atm screen: %w", err)
	}
	return final.(ATMModel).Chosen(), nil
}
