package ethereum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/listing-verifier-go/protocol"
)

// dataError mimics the structured revert payload geth-style nodes attach to
// eth_call and eth_estimateGas failures.
type dataError struct {
	msg  string
	data any
}

func (e *dataError) Error() string  { return e.msg }
func (e *dataError) ErrorData() any { return e.data }

// encodeErrorString builds a 0x-prefixed Error(string) return buffer.
func encodeErrorString(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	payload, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return "0x" + errorSelector + hex.EncodeToString(payload)
}

func TestRevertReason(t *testing.T) {
	t.Run("should decode structured Error(string) data", func(t *testing.T) {
		err := &dataError{msg: "execution reverted", data: encodeErrorString(t, "12")}

		reason, ok := revertReason(err)

		require.True(t, ok)
		assert.Equal(t, "12", reason)
	})

	t.Run("should fall back to the hardhat message format", func(t *testing.T) {
		err := errors.New("Error: VM Exception while processing transaction: reverted with reason string '12'")

		reason, ok := revertReason(err)

		require.True(t, ok)
		assert.Equal(t, "12", reason)
	})

	t.Run("should fall back to the anvil message format", func(t *testing.T) {
		err := errors.New("execution reverted: 12")

		reason, ok := revertReason(err)

		require.True(t, ok)
		assert.Equal(t, "12", reason)
	})

	t.Run("should ignore non-revert errors", func(t *testing.T) {
		_, ok := revertReason(errors.New("connection refused"))

		assert.False(t, ok)
	})

	t.Run("should prefer structured data over the message text", func(t *testing.T) {
		err := &dataError{
			msg:  "execution reverted: something vague",
			data: encodeErrorString(t, "5"),
		}

		reason, ok := revertReason(err)

		require.True(t, ok)
		assert.Equal(t, "5", reason)
	})
}

func TestWrapRevert(t *testing.T) {
	t.Run("should wrap a revert into a protocol error", func(t *testing.T) {
		err := wrapRevert("borrow", &dataError{msg: "execution reverted", data: encodeErrorString(t, "12")})

		code, ok := protocol.RevertCode(err)
		require.True(t, ok)
		assert.Equal(t, "12", code)
	})

	t.Run("should pass non-reverts through unchanged", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp: connection refused")

		err := wrapRevert("borrow", cause)

		assert.Same(t, cause, err)
		_, ok := protocol.RevertCode(err)
		assert.False(t, ok)
	})
}

func TestDecodeErrorString(t *testing.T) {
	t.Run("should reject buffers with a foreign selector", func(t *testing.T) {
		_, ok := decodeErrorString("0xdeadbeef")

		assert.False(t, ok)
	})

	t.Run("should reject truncated payloads", func(t *testing.T) {
		_, ok := decodeErrorString("0x" + errorSelector + "00ff")

		assert.False(t, ok)
	})
}
