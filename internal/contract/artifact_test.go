package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, v interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var data []byte
	switch x := v.(type) {
	case string:
		data = []byte(x)
	default:
		var err error
		data, err = json.Marshal(x)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadArtifactHardhat(t *testing.T) {
	path := writeFile(t, "Assessment.json", map[string]interface{}{
		"_format":      "hh-sol-artifact-1",
		"contractName": "Assessment",
		"abi":          assessmentABI,
		"bytecode":     "0x6080604052",
	})

	parsed, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "deposit")
	assert.Contains(t, parsed.Methods, "withdraw")
	assert.Contains(t, parsed.Errors, "InsufficientBalance")
	assert.Contains(t, parsed.Events, "OwnershipTransferred")
}

func TestLoadArtifactFoundry(t *testing.T) {
	path := writeFile(t, "Assessment.json", map[string]interface{}{
		"abi":      assessmentABI,
		"bytecode": map[string]string{"object": "0x6080604052"},
	})

	parsed, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "owner")
}

func TestLoadArtifactRawArray(t *testing.T) {
	path := writeFile(t, "abi.json", assessmentABI)

	parsed, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "getBalance")
}

func TestLoadArtifactErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty file", "", "empty"},
		{"whitespace only", "  \n ", "empty"},
		{"object without abi", `{"bytecode":"0x00"}`, `"abi" key`},
		{"abi not an array", `{"abi":"nope"}`, `"abi" key`},
		{"empty array", `[]`, "ABI is empty"},
		{"no functions", `[{"type":"fallback"}]`, "none are functions"},
		{"garbage", `not json`, "invalid ABI JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArtifact(writeFile(t, "x.json", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read ABI file")
}

func TestLoadABIFallsBackToBuiltin(t *testing.T) {
	parsed, source, err := LoadABI(filepath.Join(t.TempDir(), "artifacts", "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "builtin:assessment", source)
	assert.NoError(t, RequireMethods(parsed, atmMethods...))
}

func TestLoadABIEmptyPath(t *testing.T) {
	_, source, err := LoadABI("")
	require.NoError(t, err)
	assert.Equal(t, "builtin:assessment", source)
}

func TestLoadABIFromFile(t *testing.T) {
	path := writeFile(t, "Assessment.json", map[string]interface{}{"abi": assessmentABI})

	_, source, err := LoadABI(path)
	require.NoError(t, err)
	assert.Equal(t, path, source)
}

func TestLoadABIBrokenFileDoesNotFallBack(t *testing.T) {
	_, _, err := LoadABI(writeFile(t, "Assessment.json", "{"))
	assert.Error(t, err)
}

func TestLoadABIUnknownBuiltin(t *testing.T) {
	_, _, err := LoadABI("builtin:erc721")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown built-in ABI "erc721"`)
	assert.Contains(t, err.Error(), "assessment (Assessment (ATM))")
}

func TestBuiltinRegistry(t *testing.T) {
	b, ok := GetBuiltin(BuiltinAssessment)
	require.True(t, ok)
	assert.Equal(t, "Assessment (ATM)", b.Name)

	_, ok = GetBuiltin("nope")
	assert.False(t, ok)

	ids := []string{}
	for _, k := range AllBuiltins() {
		ids = append(ids, k.ID)
	}
	assert.Contains(t, ids, BuiltinAssessment)
}
