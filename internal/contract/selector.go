package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// atmMethods are the signatures the ATM binding calls.
var atmMethods = []string{
	"getBalance()",
	"deposit(uint256)",
	"withdraw(uint256)",
	"owner()",
	"transferOwnership(address)",
}

// Selector computes the 4-byte function selector of a canonical signature
// such as "withdraw(uint256)".
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// RequireMethods checks that parsed declares every signature.
func RequireMethods(parsed abi.ABI, signatures ...string) error {
	var missing []string
	for _, sig := range signatures {
		if _, err := parsed.MethodById(Selector(sig)); err != nil {
			missing = append(missing, sig)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingMethod, strings.Join(missing, ", "))
	}
	return nil
}
