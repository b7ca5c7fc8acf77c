package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinPrefix selects an embedded ABI instead of a file, e.g.
// "builtin:assessment".
const BuiltinPrefix = "builtin:"

// LoadArtifact loads an ABI from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":"0x...",...}
//
// Both formats are detected automatically.
func LoadArtifact(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("cannot read ABI file: %w", err)
	}
	raw, err := extractABI(data, path)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI in %s: %w", path, err)
	}
	return parsed, nil
}

// LoadABI resolves the ABI for the ATM contract. path may name an artifact
// file or a built-in ("builtin:<id>"). An empty or missing path falls back to
// the Assessment built-in. source describes where the ABI came from.
func LoadABI(path string) (parsed abi.ABI, source string, err error) {
	if id, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		return loadBuiltin(id)
	}
	if path != "" {
		parsed, err = LoadArtifact(path)
		if err == nil {
			return parsed, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return abi.ABI{}, "", err
		}
	}
	return loadBuiltin(BuiltinAssessment)
}

func loadBuiltin(id string) (abi.ABI, string, error) {
	b, ok := GetBuiltin(id)
	if !ok {
		ids := make([]string, 0)
		for _, k := range AllBuiltins() {
			ids = append(ids, fmt.Sprintf("%s (%s)", k.ID, k.Name))
		}
		return abi.ABI{}, "", fmt.Errorf("unknown built-in ABI %q (available: %s)", id, strings.Join(ids, ", "))
	}
	parsed, err := b.Parse()
	if err != nil {
		return abi.ABI{}, "", err
	}
	return parsed, BuiltinPrefix + b.ID, nil
}

// extractABI returns the raw ABI array, unwrapping an artifact object when
// needed.
func extractABI(data []byte, path string) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("ABI file is empty: %s", path)
	}

	if data[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("invalid artifact JSON in %s: %w", path, err)
		}
		if len(artifact.ABI) < 2 || artifact.ABI[0] != '[' {
			return nil, fmt.Errorf("file is a JSON object, not an ABI array; a Hardhat/Foundry artifact must have an \"abi\" key: %s", path)
		}
		data = artifact.ABI
	}

	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: expected an array of function/event definitions: %w", err)
	}
	if err := validateABI(entries, path); err != nil {
		return nil, err
	}
	return data, nil
}

// validateABI checks that the parsed ABI has at least one function or event.
func validateABI(entries []ABIEntry, path string) error {
	if len(entries) == 0 {
		return fmt.Errorf("ABI is empty (no functions or events found): %s", path)
	}
	for _, e := range entries {
		if e.Type == "function" || e.Type == "event" || e.Type == "constructor" {
			return nil
		}
	}
	return fmt.Errorf("ABI has %d entries but none are functions or events; check the file format: %s", len(entries), path)
}
