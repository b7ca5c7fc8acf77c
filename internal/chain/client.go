package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrReverted is returned by WaitForReceipt when the transaction was mined
// but its execution failed.
var ErrReverted = errors.New("transaction reverted")

// Client wraps a go-ethereum JSON-RPC client.
type Client struct {
	*ethclient.Client
	URL string
}

// Dial connects to the JSON-RPC endpoint at url. HTTP endpoints do not open a
// connection until the first call, so use Ping to check reachability.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Client{Client: c, URL: url}, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, fmt.Errorf("pinging %s: %w", c.URL, err)
	}
	return latency, blockNum, nil
}

// ResolveChainID returns configured when non-zero, otherwise asks the node.
func (c *Client) ResolveChainID(ctx context.Context, configured int64) (*big.Int, error) {
	if configured != 0 {
		return big.NewInt(configured), nil
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	return id, nil
}

// ReceiptReader is the subset of a client needed to poll for receipts.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. Returns the receipt together with ErrReverted if the transaction
// failed on chain.
func WaitForReceipt(ctx context.Context, r ReceiptReader, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := r.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}

		// Still pending.
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
