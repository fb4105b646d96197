package ethereum

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/defistate/listing-verifier-go/protocol"
)

// errorSelector is the 4-byte selector of Error(string).
const errorSelector = "08c379a0"

// reasonPattern matches the reason string hardhat and anvil embed in their
// revert error messages.
var reasonPattern = regexp.MustCompile(`reverted with reason string '([^']*)'|execution reverted: (.+)$`)

// wrapRevert converts a node-level revert error into a protocol.RevertError
// carrying the protocol's reason code. Non-revert errors pass through
// unchanged.
func wrapRevert(op string, err error) error {
	if reason, ok := revertReason(err); ok {
		return &protocol.RevertError{Op: op, Code: reason, Reason: reason}
	}
	return err
}

// revertReason extracts the Error(string) payload from an RPC error, first
// from structured error data, then from the message text.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if raw, ok := dataErr.ErrorData().(string); ok {
			if reason, ok := decodeErrorString(raw); ok {
				return reason, true
			}
		}
	}
	if m := reasonPattern.FindStringSubmatch(err.Error()); m != nil {
		if m[1] != "" {
			return m[1], true
		}
		return strings.TrimSpace(m[2]), true
	}
	return "", false
}

// decodeErrorString ABI-decodes a 0x-prefixed Error(string) return buffer.
func decodeErrorString(raw string) (string, bool) {
	raw = strings.TrimPrefix(raw, "0x")
	if !strings.HasPrefix(raw, errorSelector) {
		return "", false
	}
	payload, err := hex.DecodeString(raw[len(errorSelector):])
	if err != nil {
		return "", false
	}
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		return "", false
	}
	values, err := abi.Arguments{{Type: stringType}}.Unpack(payload)
	if err != nil || len(values) != 1 {
		return "", false
	}
	reason, ok := values[0].(string)
	return reason, ok
}
