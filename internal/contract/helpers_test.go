package contract

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/atmcli/internal/chain"
	"github.com/Mohsinsiddi/atmcli/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr       = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testContract   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// rpcErr makes the mock answer with a JSON-RPC error instead of a result.
type rpcErr struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type handler func(params json.RawMessage) interface{}

// rpcMock creates a test JSON-RPC server. Methods not in the map return
// "method not found".
func rpcMock(t *testing.T, handlers map[string]handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		h, ok := handlers[req.Method]
		if !ok {
			resp["error"] = rpcErr{Code: -32601, Message: "method not found"}
		} else if res := h(req.Params); isRPCErr(res) {
			resp["error"] = res
		} else {
			resp["result"] = res
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func isRPCErr(v interface{}) bool {
	_, ok := v.(rpcErr)
	return ok
}

func static(v interface{}) handler { return func(json.RawMessage) interface{} { return v } }

// callInput returns the calldata of an eth_call/eth_estimateGas request.
func callInput(t *testing.T, params json.RawMessage) string {
	t.Helper()
	var args []map[string]interface{}
	require.NoError(t, json.Unmarshal(params, &args))
	require.NotEmpty(t, args)
	for _, k := range []string{"input", "data"} {
		if s, ok := args[0][k].(string); ok {
			return s
		}
	}
	return ""
}

func word(n int64) string {
	return common.BigToHash(big.NewInt(n)).Hex()
}

func testSigner(t *testing.T) *wallet.Signer {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	ref, err := ks.Store("alice", testPrivKeyHex)
	require.NoError(t, err)
	return wallet.NewSigner(&wallet.Wallet{
		Name: "alice", Address: testAddr, Type: wallet.TypeSigning, KeyRef: ref,
	}, ks)
}

func assessment(t *testing.T) abi.ABI {
	t.Helper()
	parsed, _, err := LoadABI(BuiltinPrefix + BuiltinAssessment)
	require.NoError(t, err)
	return parsed
}

func newTestATM(t *testing.T, url string, opts ...Option) *ATM {
	t.Helper()
	c, err := chain.Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	atm, err := NewATM(c, common.HexToAddress(testContract), assessment(t), testSigner(t), big.NewInt(31337), opts...)
	require.NoError(t, err)
	return atm
}

func receiptJSON(hash common.Hash, status string) map[string]interface{} {
	return map[string]interface{}{
		"type":              "0x2",
		"status":            status,
		"cumulativeGasUsed": "0xb411",
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"logs":              []interface{}{},
		"transactionHash":   hash.Hex(),
		"gasUsed":           "0xb411",
		"blockNumber":       "0x7",
		"blockHash":         common.HexToHash("0xb7").Hex(),
		"transactionIndex":  "0x0",
		"effectiveGasPrice": "0x3b9aca00",
	}
}
