package integration_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const chainID = 31337

// jsonRPCError is a JSON-RPC error object. Data carries revert data.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *jsonRPCError) Error() string { return e.Message }

// atmNode is an in-memory node running a single ATM contract: one balance
// that only the owner may move.
type atmNode struct {
	t   *testing.T
	abi abi.ABI

	mu       sync.Mutex
	owner    common.Address
	balance  *big.Int
	nonces   map[common.Address]uint64
	receipts map[common.Hash]map[string]interface{}
	block    uint64
	sent     int
}

func newATMNode(t *testing.T, parsed abi.ABI, owner common.Address, initial int64) *atmNode {
	return &atmNode{
		t:        t,
		abi:      parsed,
		owner:    owner,
		balance:  big.NewInt(initial),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]map[string]interface{}),
	}
}

// serve starts the JSON-RPC endpoint.
func (n *atmNode) serve() *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     json.RawMessage   `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, err := n.handle(req.Method, req.Params)
		var rpcErr *jsonRPCError
		switch {
		case errors.As(err, &rpcErr):
			resp["error"] = rpcErr
		case err != nil:
			resp["error"] = &jsonRPCError{Code: -32000, Message: err.Error()}
		default:
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	n.t.Cleanup(srv.Close)
	return srv
}

// txCount returns how many transactions were broadcast.
func (n *atmNode) txCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

func (n *atmNode) currentOwner() common.Address {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.owner
}

func (n *atmNode) handle(method string, params []json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch method {
	case "eth_chainId":
		return hexutil.EncodeUint64(chainID), nil
	case "eth_blockNumber":
		return hexutil.EncodeUint64(n.block), nil
	case "eth_gasPrice", "eth_maxPriorityFeePerGas":
		return "0x3b9aca00", nil

	case "eth_getTransactionCount":
		var addr common.Address
		require.NoError(n.t, json.Unmarshal(params[0], &addr))
		return hexutil.EncodeUint64(n.nonces[addr]), nil

	case "eth_call":
		from, input := n.callArgs(params)
		return n.read(from, input)

	case "eth_estimateGas":
		from, input := n.callArgs(params)
		if _, err := n.exec(from, input, true); err != nil {
			return nil, err
		}
		return "0xb411", nil

	case "eth_sendRawTransaction":
		var raw string
		require.NoError(n.t, json.Unmarshal(params[0], &raw))
		tx := new(types.Transaction)
		require.NoError(n.t, tx.UnmarshalBinary(hexutil.MustDecode(raw)))
		from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(chainID)), tx)
		require.NoError(n.t, err)

		n.sent++
		n.nonces[from]++
		n.block++
		status := "0x1"
		if _, err := n.exec(from, tx.Data(), false); err != nil {
			status = "0x0"
		}
		n.receipts[tx.Hash()] = receipt(tx.Hash(), status, n.block)
		return tx.Hash().Hex(), nil

	case "eth_getTransactionReceipt":
		var hash common.Hash
		require.NoError(n.t, json.Unmarshal(params[0], &hash))
		if r, ok := n.receipts[hash]; ok {
			return r, nil
		}
		return nil, nil
	}
	return nil, &jsonRPCError{Code: -32601, Message: "method not found: " + method}
}

func (n *atmNode) callArgs(params []json.RawMessage) (common.Address, []byte) {
	var call struct {
		From  common.Address `json:"from"`
		Input hexutil.Bytes  `json:"input"`
		Data  hexutil.Bytes  `json:"data"`
	}
	require.NoError(n.t, json.Unmarshal(params[0], &call))
	if len(call.Input) > 0 {
		return call.From, call.Input
	}
	return call.From, call.Data
}

func (n *atmNode) read(from common.Address, input []byte) (interface{}, error) {
	m, err := n.abi.MethodById(input)
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "getBalance":
		return common.BigToHash(n.balance).Hex(), nil
	case "owner":
		return common.BytesToHash(n.owner.Bytes()).Hex(), nil
	}
	// Calling a write method returns nothing, like a real node would.
	if _, err := n.exec(from, input, true); err != nil {
		return nil, err
	}
	return "0x", nil
}

// exec runs a write method. With dryRun the state is left untouched.
func (n *atmNode) exec(from common.Address, input []byte, dryRun bool) (interface{}, error) {
	m, err := n.abi.MethodById(input)
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}
	if from != n.owner {
		return nil, n.revertReason("You are not the owner of this account")
	}

	switch m.Name {
	case "deposit":
		amount := args[0].(*big.Int)
		if !dryRun {
			n.balance = new(big.Int).Add(n.balance, amount)
		}
	case "withdraw":
		amount := args[0].(*big.Int)
		if n.balance.Cmp(amount) < 0 {
			return nil, n.revertCustom("InsufficientBalance", n.balance, amount)
		}
		if !dryRun {
			n.balance = new(big.Int).Sub(n.balance, amount)
		}
	case "transferOwnership":
		if !dryRun {
			n.owner = args[0].(common.Address)
		}
	default:
		return nil, fmt.Errorf("not a write method: %s", m.Name)
	}
	return nil, nil
}

func (n *atmNode) revertReason(reason string) error {
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(n.t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(n.t, err)
	data := append(hexutil.MustDecode("0x08c379a0"), packed...)
	return &jsonRPCError{Code: 3, Message: "execution reverted: " + reason, Data: hexutil.Encode(data)}
}

func (n *atmNode) revertCustom(name string, args ...interface{}) error {
	e, ok := n.abi.Errors[name]
	require.True(n.t, ok, "unknown error %s", name)
	packed, err := e.Inputs.Pack(args...)
	require.NoError(n.t, err)
	data := append(append([]byte{}, e.ID[:4]...), packed...)
	return &jsonRPCError{Code: 3, Message: "execution reverted", Data: hexutil.Encode(data)}
}

func receipt(hash common.Hash, status string, block uint64) map[string]interface{} {
	return map[string]interface{}{
		"type":              "0x2",
		"status":            status,
		"cumulativeGasUsed": "0xb411",
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"logs":              []interface{}{},
		"transactionHash":   hash.Hex(),
		"gasUsed":           "0xb411",
		"blockNumber":       hexutil.EncodeUint64(block),
		"blockHash":         common.BigToHash(new(big.Int).SetUint64(block)).Hex(),
		"transactionIndex":  "0x0",
		"effectiveGasPrice": "0x3b9aca00",
	}
}
