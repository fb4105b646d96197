package memorypool

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/listing-verifier-go/protocol"
	"github.com/defistate/listing-verifier-go/reserve"
)

var (
	testAsset   = common.HexToAddress("0xA0")
	testAToken  = common.HexToAddress("0xA1")
	testSDToken = common.HexToAddress("0xA2")
	testVDToken = common.HexToAddress("0xA3")
	testActor   = common.HexToAddress("0xE1")
)

func big1() *big.Int {
	return big.NewInt(1)
}

func newListedPool() *Pool {
	p := New()
	p.AddReserve(ReserveState{
		Descriptor: reserve.TokenDescriptor{Symbol: "LINK", Address: testAsset},
		Config: protocol.ConfigurationData{
			Decimals:         18,
			BorrowingEnabled: true,
			IsActive:         true,
		},
		Tokens: protocol.TokenAddresses{
			AToken:            testAToken,
			StableDebtToken:   testSDToken,
			VariableDebtToken: testVDToken,
		},
	})
	return p
}

func TestImpersonate(t *testing.T) {
	ctx := context.Background()

	t.Run("should allow only one session at a time", func(t *testing.T) {
		p := newListedPool()

		sess, err := p.Impersonate(ctx, testActor)
		require.NoError(t, err)

		_, err = p.Impersonate(ctx, testActor)
		assert.Error(t, err, "a second session must be rejected while the first is open")

		require.NoError(t, sess.Close())
		_, err = p.Impersonate(ctx, testActor)
		assert.NoError(t, err, "closing the session must release the slot")
	})

	t.Run("should reject operations on a closed session", func(t *testing.T) {
		p := newListedPool()
		sess, err := p.Impersonate(ctx, testActor)
		require.NoError(t, err)
		require.NoError(t, sess.Close())

		err = sess.ApprovePool(ctx, testAsset, big1())
		assert.Error(t, err)
	})

	t.Run("should report the impersonated actor", func(t *testing.T) {
		p := newListedPool()
		sess, err := p.Impersonate(ctx, testActor)
		require.NoError(t, err)
		defer sess.Close()

		assert.Equal(t, testActor, sess.Actor())
	})
}

func TestBorrowRevertCodes(t *testing.T) {
	ctx := context.Background()

	borrowStable := func(t *testing.T, p *Pool) error {
		t.Helper()
		sess, err := p.Impersonate(ctx, testActor)
		require.NoError(t, err)
		defer sess.Close()
		return sess.Borrow(ctx, testAsset, big1(), protocol.RateModeStable, testActor)
	}

	t.Run("should revert with code 12 when stable borrowing is disabled", func(t *testing.T) {
		p := newListedPool()

		err := borrowStable(t, p)

		code, ok := protocol.RevertCode(err)
		require.True(t, ok)
		assert.Equal(t, protocol.ErrCodeStableBorrowingNotEnabled, code)
	})

	t.Run("should revert with code 2 on an inactive reserve", func(t *testing.T) {
		p := newListedPool()
		require.NoError(t, p.SetReserveConfig(testAsset, protocol.ConfigurationData{Decimals: 18}))

		err := borrowStable(t, p)

		code, ok := protocol.RevertCode(err)
		require.True(t, ok)
		assert.Equal(t, "2", code)
	})

	t.Run("should revert with code 3 on a frozen reserve", func(t *testing.T) {
		p := newListedPool()
		require.NoError(t, p.SetReserveConfig(testAsset, protocol.ConfigurationData{
			Decimals: 18, IsActive: true, IsFrozen: true,
		}))

		err := borrowStable(t, p)

		code, ok := protocol.RevertCode(err)
		require.True(t, ok)
		assert.Equal(t, "3", code)
	})

	t.Run("should revert with code 5 when borrowing is disabled", func(t *testing.T) {
		p := newListedPool()
		require.NoError(t, p.SetReserveConfig(testAsset, protocol.ConfigurationData{
			Decimals: 18, IsActive: true,
		}))

		err := borrowStable(t, p)

		code, ok := protocol.RevertCode(err)
		require.True(t, ok)
		assert.Equal(t, "5", code)
	})
}

func TestFailNextRead(t *testing.T) {
	ctx := context.Background()

	t.Run("should fail the armed read exactly once", func(t *testing.T) {
		p := newListedPool()
		boom := errors.New("node unavailable")
		p.FailNextRead("reserveList", boom)

		_, err := p.ReserveList(ctx)
		assert.ErrorIs(t, err, boom)

		_, err = p.ReserveList(ctx)
		assert.NoError(t, err, "the armed error is one-shot")
	})

	t.Run("should scope the error to the named operation", func(t *testing.T) {
		p := newListedPool()
		p.FailNextRead("reserveConfiguration", errors.New("boom"))

		_, err := p.ReserveList(ctx)
		assert.NoError(t, err)

		_, err = p.ReserveConfiguration(ctx, testAsset)
		assert.Error(t, err)
	})
}

func TestBalanceIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("should return copies that callers cannot mutate", func(t *testing.T) {
		p := newListedPool()
		p.Fund(testAsset, testActor, big1())

		bal, err := p.BalanceOf(ctx, testAsset, testActor)
		require.NoError(t, err)
		bal.SetInt64(999)

		again, err := p.BalanceOf(ctx, testAsset, testActor)
		require.NoError(t, err)
		assert.Zero(t, again.Cmp(big1()))
	})
}
