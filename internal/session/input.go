package session

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	one        = big.NewFloat(1)
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// ParseAmount parses a positive whole amount of contract units. Decimal and
// exponent notation are accepted as long as the value is an integer, so
// "50", "50.0" and "5e1" are all 50.
func ParseAmount(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	f, _, err := new(big.Float).SetPrec(512).Parse(s, 10)
	if err != nil || f.IsInf() || f.Cmp(one) < 0 {
		return nil, false
	}
	if f.MantExp(nil) > 256 {
		return nil, false
	}
	// f is rounded to its precision and only bounds the value. Whether the
	// literal is whole is decided exactly.
	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() {
		return nil, false
	}
	n := r.Num()
	if n.Cmp(maxUint256) > 0 {
		return nil, false
	}
	return n, true
}

// ParseAddress accepts a 20-byte hex address with or without a lower-case
// 0x prefix. Mixed-case input must carry a valid EIP-55 checksum.
func ParseAddress(s string) (common.Address, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0X") || !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(s)
	body := strings.TrimPrefix(s, "0x")
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if addr.Hex()[2:] != body {
			return common.Address{}, false
		}
	}
	return addr, true
}
