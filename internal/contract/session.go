package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/ethereum/go-ethereum/common"
)

// SessionBinding exposes an ATM binding as a session.Contract.
type SessionBinding struct {
	ATM *ATM
}

var _ session.Contract = SessionBinding{}

func (b SessionBinding) GetBalance(ctx context.Context) (*big.Int, error) {
	return b.ATM.GetBalance(ctx)
}

func (b SessionBinding) Owner(ctx context.Context) (common.Address, error) {
	return b.ATM.Owner(ctx)
}

func (b SessionBinding) Deposit(ctx context.Context, amount *big.Int) (session.Pending, error) {
	return pending(b.ATM.Deposit(ctx, amount))
}

func (b SessionBinding) Withdraw(ctx context.Context, amount *big.Int) (session.Pending, error) {
	return pending(b.ATM.Withdraw(ctx, amount))
}

func (b SessionBinding) TransferOwnership(ctx context.Context, newOwner common.Address) (session.Pending, error) {
	return pending(b.ATM.TransferOwnership(ctx, newOwner))
}

// pending keeps a nil *PendingTx from becoming a non-nil interface.
func pending(tx *PendingTx, err error) (session.Pending, error) {
	if err != nil {
		return nil, err
	}
	return tx, nil
}
