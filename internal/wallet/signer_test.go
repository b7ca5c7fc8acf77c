package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	otherPrivKey   = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

func testTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Nonce:     0,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       50_000,
		To:        &to,
		Value:     big.NewInt(0),
	})
}

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, nullKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxSuccess(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("alice", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "alice", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	chainID := big.NewInt(31337)

	signed, err := NewSigner(w, ks).SignTx(testTx(), chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), sender)
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, nullKeystore()).SignTx(testTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxKeystoreNotAvailable(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "atm.w"}
	_, err := NewSigner(w, nullKeystore()).SignTx(testTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("alice", otherPrivKey)

	w := &Wallet{Name: "alice", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	_, err := NewSigner(w, ks).SignTx(testTx(), big.NewInt(31337))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to")
}

func TestSignTxCorruptKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("alice", "zz")

	w := &Wallet{Name: "alice", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	_, err := NewSigner(w, ks).SignTx(testTx(), big.NewInt(31337))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing private key")
}
