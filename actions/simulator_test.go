package actions

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/listing-verifier-go/protocol"
	"github.com/defistate/listing-verifier-go/protocol/memorypool"
	"github.com/defistate/listing-verifier-go/raymath"
	"github.com/defistate/listing-verifier-go/reserve"
)

var (
	asset    = common.HexToAddress("0xA0")
	aToken   = common.HexToAddress("0xA1")
	sdToken  = common.HexToAddress("0xA2")
	vdToken  = common.HexToAddress("0xA3")
	strategy = common.HexToAddress("0xA4")
	whale    = common.HexToAddress("0xE1")
)

func newTestPool(stableEnabled bool) *memorypool.Pool {
	pool := memorypool.New()
	pool.AddReserve(memorypool.ReserveState{
		Descriptor: reserve.TokenDescriptor{Symbol: "LINK", Address: asset},
		Config: protocol.ConfigurationData{
			Decimals:             18,
			LoanToValue:          5000,
			LiquidationThreshold: 6000,
			LiquidationBonus:     10800,
			ReserveFactor:        2000,
			UsageAsCollateral:    true,
			BorrowingEnabled:     true,
			StableBorrowEnabled:  stableEnabled,
			IsActive:             true,
		},
		Tokens: protocol.TokenAddresses{
			AToken:            aToken,
			StableDebtToken:   sdToken,
			VariableDebtToken: vdToken,
		},
		Strategy: strategy,
	})
	pool.Fund(asset, whale, raymath.WholeUnits(1_000_000, 18))
	return pool
}

func newTestSimulator(t *testing.T, pool *memorypool.Pool) *Simulator {
	t.Helper()
	sim, err := NewSimulator(&SimulatorConfig{
		Client:   pool,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return sim
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	amount := raymath.WholeUnits(666, 18)

	deposit := func(sim *Simulator) error {
		return sim.Deposit(ctx, DepositParams{
			Depositor:   whale,
			Beneficiary: whale,
			Asset:       asset,
			Amount:      amount,
			AToken:      aToken,
			Approve:     true,
		})
	}

	t.Run("should verify an exact aToken credit", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)

		require.NoError(t, deposit(sim))

		bal, err := pool.BalanceOf(ctx, aToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Cmp(amount))
	})

	t.Run("should tolerate one unit of minting noise", func(t *testing.T) {
		pool := newTestPool(false)
		pool.SetMintNoise(1)
		sim := newTestSimulator(t, pool)

		assert.NoError(t, deposit(sim))
	})

	t.Run("should reject two units of minting noise", func(t *testing.T) {
		pool := newTestPool(false)
		pool.SetMintNoise(2)
		sim := newTestSimulator(t, pool)

		err := deposit(sim)

		var afe *ActionFailedError
		require.ErrorAs(t, err, &afe)
		assert.Equal(t, "deposit", afe.Op)
	})

	t.Run("should fail without an approval", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)

		err := sim.Deposit(ctx, DepositParams{
			Depositor:   whale,
			Beneficiary: whale,
			Asset:       asset,
			Amount:      amount,
			AToken:      aToken,
		})

		var afe *ActionFailedError
		assert.ErrorAs(t, err, &afe)
	})
}

func TestBorrow(t *testing.T) {
	ctx := context.Background()
	amount := raymath.WholeUnits(100, 18)

	t.Run("should verify a variable-rate debt credit", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)

		err := sim.Borrow(ctx, BorrowParams{
			Borrower:    whale,
			Beneficiary: whale,
			Asset:       asset,
			Amount:      amount,
			Mode:        protocol.RateModeVariable,
			DebtToken:   vdToken,
		})

		require.NoError(t, err)
		bal, err := pool.BalanceOf(ctx, vdToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Cmp(amount))
	})

	t.Run("should pass when a disabled stable borrow reverts with the right code", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)

		err := sim.Borrow(ctx, BorrowParams{
			Borrower:         whale,
			Beneficiary:      whale,
			Asset:            asset,
			Amount:           amount,
			Mode:             protocol.RateModeStable,
			DebtToken:        sdToken,
			ExpectRevertCode: protocol.ErrCodeStableBorrowingNotEnabled,
		})

		assert.NoError(t, err)
	})

	t.Run("should fail when the expected revert never happens", func(t *testing.T) {
		pool := newTestPool(true) // stable borrowing enabled, the borrow goes through
		sim := newTestSimulator(t, pool)

		err := sim.Borrow(ctx, BorrowParams{
			Borrower:         whale,
			Beneficiary:      whale,
			Asset:            asset,
			Amount:           amount,
			Mode:             protocol.RateModeStable,
			DebtToken:        sdToken,
			ExpectRevertCode: protocol.ErrCodeStableBorrowingNotEnabled,
		})

		var use *UnexpectedSuccessError
		require.ErrorAs(t, err, &use)
		assert.Equal(t, protocol.ErrCodeStableBorrowingNotEnabled, use.ExpectedCode)
	})

	t.Run("should fail when the revert carries the wrong code", func(t *testing.T) {
		pool := newTestPool(false)
		frozen := protocol.ConfigurationData{
			Decimals: 18, IsActive: true, IsFrozen: true,
			BorrowingEnabled: true,
		}
		require.NoError(t, pool.SetReserveConfig(asset, frozen))
		sim := newTestSimulator(t, pool)

		err := sim.Borrow(ctx, BorrowParams{
			Borrower:         whale,
			Beneficiary:      whale,
			Asset:            asset,
			Amount:           amount,
			Mode:             protocol.RateModeStable,
			DebtToken:        sdToken,
			ExpectRevertCode: protocol.ErrCodeStableBorrowingNotEnabled,
		})

		var afe *ActionFailedError
		assert.ErrorAs(t, err, &afe, "a frozen-reserve revert is not the expected rejection")
	})
}

func TestRepay(t *testing.T) {
	ctx := context.Background()
	debt := raymath.WholeUnits(100, 18)

	borrow := func(t *testing.T, sim *Simulator) {
		t.Helper()
		require.NoError(t, sim.Borrow(ctx, BorrowParams{
			Borrower:    whale,
			Beneficiary: whale,
			Asset:       asset,
			Amount:      debt,
			Mode:        protocol.RateModeVariable,
			DebtToken:   vdToken,
		}))
	}

	t.Run("should verify an exact partial repayment", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)
		borrow(t, sim)
		part := raymath.WholeUnits(40, 18)

		err := sim.Repay(ctx, RepayParams{
			Payer:     whale,
			Debtor:    whale,
			Asset:     asset,
			Amount:    part,
			Mode:      protocol.RateModeVariable,
			DebtToken: vdToken,
			Approve:   true,
		})

		require.NoError(t, err)
		bal, err := pool.BalanceOf(ctx, vdToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Cmp(raymath.WholeUnits(60, 18)))
	})

	t.Run("should floor at zero when overpaying", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)
		borrow(t, sim)

		err := sim.Repay(ctx, RepayParams{
			Payer:     whale,
			Debtor:    whale,
			Asset:     asset,
			Amount:    raymath.WholeUnits(150, 18),
			Mode:      protocol.RateModeVariable,
			DebtToken: vdToken,
			Approve:   true,
		})

		require.NoError(t, err)
		bal, err := pool.BalanceOf(ctx, vdToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Sign(), "the debt balance must floor at zero")
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	deposited := raymath.WholeUnits(666, 18)

	deposit := func(t *testing.T, sim *Simulator) {
		t.Helper()
		require.NoError(t, sim.Deposit(ctx, DepositParams{
			Depositor:   whale,
			Beneficiary: whale,
			Asset:       asset,
			Amount:      deposited,
			AToken:      aToken,
			Approve:     true,
		}))
	}

	t.Run("should verify an exact partial withdrawal", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)
		deposit(t, sim)
		part := raymath.WholeUnits(111, 18)

		err := sim.Withdraw(ctx, WithdrawParams{
			Withdrawer: whale,
			Recipient:  whale,
			Asset:      asset,
			Amount:     part,
			AToken:     aToken,
		})

		require.NoError(t, err)
		bal, err := pool.BalanceOf(ctx, aToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Cmp(raymath.WholeUnits(555, 18)))
	})

	t.Run("should drain the whole position with the sentinel amount", func(t *testing.T) {
		pool := newTestPool(false)
		sim := newTestSimulator(t, pool)
		deposit(t, sim)

		err := sim.Withdraw(ctx, WithdrawParams{
			Withdrawer: whale,
			Recipient:  whale,
			Asset:      asset,
			Amount:     MaxWithdraw,
			AToken:     aToken,
		})

		require.NoError(t, err)
		bal, err := pool.BalanceOf(ctx, aToken, whale)
		require.NoError(t, err)
		assert.Zero(t, bal.Sign())
	})
}

func TestAlmostEqual(t *testing.T) {
	t.Run("should accept deltas up to one unit in either direction", func(t *testing.T) {
		assert.True(t, almostEqual(big.NewInt(100), big.NewInt(100)))
		assert.True(t, almostEqual(big.NewInt(100), big.NewInt(101)))
		assert.True(t, almostEqual(big.NewInt(101), big.NewInt(100)))
		assert.True(t, almostEqual(big.NewInt(0), big.NewInt(0)))
	})

	t.Run("should reject deltas of two units", func(t *testing.T) {
		assert.False(t, almostEqual(big.NewInt(100), big.NewInt(102)))
		assert.False(t, almostEqual(big.NewInt(102), big.NewInt(100)))
	})
}

func TestFloorSub(t *testing.T) {
	t.Run("should subtract when the result stays positive", func(t *testing.T) {
		assert.Zero(t, floorSub(big.NewInt(10), big.NewInt(4)).Cmp(big.NewInt(6)))
	})

	t.Run("should floor at zero", func(t *testing.T) {
		assert.Zero(t, floorSub(big.NewInt(4), big.NewInt(10)).Sign())
		assert.Zero(t, floorSub(big.NewInt(4), big.NewInt(4)).Sign())
	})
}
