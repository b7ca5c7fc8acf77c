package contract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/atmcli/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertError is a call that the contract rejected, with its decoded reason
// when the revert data matched a known error.
type RevertError struct {
	Name   string   // custom error name, "Error" for require messages, empty if unknown
	Params []string // "name=value" pairs of a custom error
	Reason string   // require/revert message
	Data   []byte   // raw revert data
}

func (e *RevertError) Error() string {
	switch {
	case e.Reason != "":
		return "execution reverted: " + e.Reason
	case e.Name != "":
		return fmt.Sprintf("execution reverted: %s(%s)", e.Name, strings.Join(e.Params, ", "))
	case len(e.Data) > 0:
		return "execution reverted: " + hexutil.Encode(e.Data)
	}
	return "execution reverted"
}

// Unwrap lets callers test for chain.ErrReverted.
func (e *RevertError) Unwrap() error { return chain.ErrReverted }

// DecodeRevert turns a node error carrying revert data into a *RevertError.
// Errors that are not reverts are returned unchanged.
func DecodeRevert(parsed abi.ABI, err error) error {
	if err == nil {
		return nil
	}

	var de rpc.DataError
	if !errors.As(err, &de) {
		if strings.Contains(err.Error(), "execution reverted") {
			return &RevertError{}
		}
		return err
	}

	s, ok := de.ErrorData().(string)
	if !ok {
		if strings.Contains(err.Error(), "execution reverted") {
			return &RevertError{}
		}
		return err
	}
	data, decErr := hexutil.Decode(s)
	if decErr != nil {
		return err
	}
	return decodeRevertData(parsed, data)
}

func decodeRevertData(parsed abi.ABI, data []byte) *RevertError {
	rev := &RevertError{Data: data}
	if len(data) < 4 {
		return rev
	}

	if reason, err := abi.UnpackRevert(data); err == nil {
		rev.Name = "Error"
		rev.Reason = reason
		return rev
	}

	for name, e := range parsed.Errors {
		if !bytes.Equal(e.ID[:4], data[:4]) {
			continue
		}
		rev.Name = name
		values, err := e.Unpack(data)
		if err != nil {
			return rev
		}
		args, _ := values.([]interface{})
		for i, v := range args {
			if i < len(e.Inputs) {
				rev.Params = append(rev.Params, fmt.Sprintf("%s=%v", e.Inputs[i].Name, v))
			}
		}
		return rev
	}
	return rev
}
