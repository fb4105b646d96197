package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevertCode(t *testing.T) {
	t.Run("should extract the code from a direct revert", func(t *testing.T) {
		err := &RevertError{Op: "borrow", Code: "12", Reason: "stable borrowing is not enabled"}

		code, ok := RevertCode(err)

		require.True(t, ok)
		assert.Equal(t, "12", code)
	})

	t.Run("should unwrap nested errors", func(t *testing.T) {
		err := fmt.Errorf("running action: %w", &RevertError{Op: "borrow", Code: "2"})

		code, ok := RevertCode(err)

		require.True(t, ok)
		assert.Equal(t, "2", code)
	})

	t.Run("should report non-reverts", func(t *testing.T) {
		_, ok := RevertCode(errors.New("connection refused"))

		assert.False(t, ok)
	})
}

func TestRateModeString(t *testing.T) {
	assert.Equal(t, "stable", RateModeStable.String())
	assert.Equal(t, "variable", RateModeVariable.String())
	assert.Equal(t, "unknown", RateMode(0).String())
}
