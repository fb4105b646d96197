package actions

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/protocol"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MaxWithdraw is the pool's sentinel amount meaning "withdraw the entire
// balance".
var MaxWithdraw = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// SimulatorConfig holds the simulator's dependencies.
type SimulatorConfig struct {
	Client   protocol.Client
	Logger   Logger
	Registry prometheus.Registerer
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *SimulatorConfig) validate() error {
	if c.Client == nil {
		return errors.New("config: Client cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	return nil
}

// Simulator exercises the pool's money-movement operations against a listed
// reserve and asserts the resulting balance deltas. Each procedure is
// stateless and runs inside its own impersonation session, released on every
// exit path.
type Simulator struct {
	client  protocol.Client
	logger  Logger
	metrics *metrics
}

// NewSimulator constructs a Simulator from a configuration, returning an
// error if the config is invalid.
func NewSimulator(cfg *SimulatorConfig) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		client:  cfg.Client,
		logger:  cfg.Logger,
		metrics: newMetrics(cfg.Registry),
	}, nil
}

// DepositParams parameterizes a supply action.
type DepositParams struct {
	Depositor   common.Address
	Beneficiary common.Address
	Asset       common.Address
	Amount      *big.Int
	AToken      common.Address
	Approve     bool
}

// Deposit supplies Amount of Asset as Depositor and asserts the
// Beneficiary's aToken balance grew by Amount, within one unit of rounding
// noise from interest-bearing minting.
func (s *Simulator) Deposit(ctx context.Context, p DepositParams) error {
	timer := prometheus.NewTimer(s.metrics.actionDuration.WithLabelValues("deposit"))
	defer timer.ObserveDuration()

	before, err := s.client.BalanceOf(ctx, p.AToken, p.Beneficiary)
	if err != nil {
		return s.failed("deposit", fmt.Sprintf("reading aToken balance: %v", err), err)
	}

	sess, err := s.client.Impersonate(ctx, p.Depositor)
	if err != nil {
		return s.failed("deposit", fmt.Sprintf("impersonating %s: %v", p.Depositor.Hex(), err), err)
	}
	defer sess.Close()

	if p.Approve {
		if err := sess.ApprovePool(ctx, p.Asset, p.Amount); err != nil {
			return s.failed("deposit", fmt.Sprintf("approving pool: %v", err), err)
		}
	}
	if err := sess.Deposit(ctx, p.Asset, p.Amount, p.Beneficiary); err != nil {
		return s.failed("deposit", err.Error(), err)
	}

	after, err := s.client.BalanceOf(ctx, p.AToken, p.Beneficiary)
	if err != nil {
		return s.failed("deposit", fmt.Sprintf("re-reading aToken balance: %v", err), err)
	}

	want := new(big.Int).Add(before, p.Amount)
	if !almostEqual(after, want) {
		return s.failed("deposit", fmt.Sprintf("aToken balance expected %s (±1), got %s", want, after), nil)
	}

	s.logger.Info("deposit verified", "asset", p.Asset.Hex(), "amount", p.Amount.String(), "beneficiary", p.Beneficiary.Hex())
	return nil
}

// BorrowParams parameterizes a borrow action. When ExpectRevertCode is set
// the assertion inverts: the borrow must revert with exactly that protocol
// error code, and a successful borrow is itself a failure.
type BorrowParams struct {
	Borrower         common.Address
	Beneficiary      common.Address
	Asset            common.Address
	Amount           *big.Int
	Mode             protocol.RateMode
	DebtToken        common.Address
	ExpectRevertCode string
}

// Borrow draws Amount of Asset as Borrower and asserts the Beneficiary's
// debt-token balance grew by Amount within one unit, or that the pool
// rejected the borrow with the expected reason code.
func (s *Simulator) Borrow(ctx context.Context, p BorrowParams) error {
	timer := prometheus.NewTimer(s.metrics.actionDuration.WithLabelValues("borrow"))
	defer timer.ObserveDuration()

	before, err := s.client.BalanceOf(ctx, p.DebtToken, p.Beneficiary)
	if err != nil {
		return s.failed("borrow", fmt.Sprintf("reading debt token balance: %v", err), err)
	}

	sess, err := s.client.Impersonate(ctx, p.Borrower)
	if err != nil {
		return s.failed("borrow", fmt.Sprintf("impersonating %s: %v", p.Borrower.Hex(), err), err)
	}
	defer sess.Close()

	borrowErr := sess.Borrow(ctx, p.Asset, p.Amount, p.Mode, p.Beneficiary)

	if p.ExpectRevertCode != "" {
		// The one place where failure is the pass condition.
		if borrowErr == nil {
			return &UnexpectedSuccessError{Op: "borrow", ExpectedCode: p.ExpectRevertCode}
		}
		code, ok := protocol.RevertCode(borrowErr)
		if !ok || code != p.ExpectRevertCode {
			return s.failed("borrow", fmt.Sprintf("expected revert code %q, got %v", p.ExpectRevertCode, borrowErr), borrowErr)
		}
		s.logger.Info("borrow rejected as expected", "mode", p.Mode.String(), "code", code)
		return nil
	}

	if borrowErr != nil {
		return s.failed("borrow", borrowErr.Error(), borrowErr)
	}

	after, err := s.client.BalanceOf(ctx, p.DebtToken, p.Beneficiary)
	if err != nil {
		return s.failed("borrow", fmt.Sprintf("re-reading debt token balance: %v", err), err)
	}

	want := new(big.Int).Add(before, p.Amount)
	if !almostEqual(after, want) {
		return s.failed("borrow", fmt.Sprintf("debt token balance expected %s (±1), got %s", want, after), nil)
	}

	s.logger.Info("borrow verified", "asset", p.Asset.Hex(), "amount", p.Amount.String(), "mode", p.Mode.String())
	return nil
}

// RepayParams parameterizes a repay action.
type RepayParams struct {
	Payer     common.Address
	Debtor    common.Address
	Asset     common.Address
	Amount    *big.Int
	Mode      protocol.RateMode
	DebtToken common.Address
	Approve   bool
}

// Repay pays down Amount of the Debtor's debt as Payer and asserts the debt
// token balance is exactly max(before - Amount, 0): repayment uses floor
// semantics at the protocol layer, so no tolerance applies.
func (s *Simulator) Repay(ctx context.Context, p RepayParams) error {
	timer := prometheus.NewTimer(s.metrics.actionDuration.WithLabelValues("repay"))
	defer timer.ObserveDuration()

	before, err := s.client.BalanceOf(ctx, p.DebtToken, p.Debtor)
	if err != nil {
		return s.failed("repay", fmt.Sprintf("reading debt token balance: %v", err), err)
	}

	sess, err := s.client.Impersonate(ctx, p.Payer)
	if err != nil {
		return s.failed("repay", fmt.Sprintf("impersonating %s: %v", p.Payer.Hex(), err), err)
	}
	defer sess.Close()

	if p.Approve {
		if err := sess.ApprovePool(ctx, p.Asset, p.Amount); err != nil {
			return s.failed("repay", fmt.Sprintf("approving pool: %v", err), err)
		}
	}
	if err := sess.Repay(ctx, p.Asset, p.Amount, p.Mode, p.Debtor); err != nil {
		return s.failed("repay", err.Error(), err)
	}

	after, err := s.client.BalanceOf(ctx, p.DebtToken, p.Debtor)
	if err != nil {
		return s.failed("repay", fmt.Sprintf("re-reading debt token balance: %v", err), err)
	}

	want := floorSub(before, p.Amount)
	if after.Cmp(want) != 0 {
		return s.failed("repay", fmt.Sprintf("debt token balance expected exactly %s, got %s", want, after), nil)
	}

	s.logger.Info("repay verified", "asset", p.Asset.Hex(), "amount", p.Amount.String(), "mode", p.Mode.String())
	return nil
}

// WithdrawParams parameterizes a withdraw action. Amount may be MaxWithdraw
// to drain the entire position.
type WithdrawParams struct {
	Withdrawer common.Address
	Recipient  common.Address
	Asset      common.Address
	Amount     *big.Int
	AToken     common.Address
}

// Withdraw redeems Amount of Asset as Withdrawer and asserts the aToken
// balance is exactly max(before - Amount, 0), same floor semantics as Repay.
func (s *Simulator) Withdraw(ctx context.Context, p WithdrawParams) error {
	timer := prometheus.NewTimer(s.metrics.actionDuration.WithLabelValues("withdraw"))
	defer timer.ObserveDuration()

	before, err := s.client.BalanceOf(ctx, p.AToken, p.Withdrawer)
	if err != nil {
		return s.failed("withdraw", fmt.Sprintf("reading aToken balance: %v", err), err)
	}

	sess, err := s.client.Impersonate(ctx, p.Withdrawer)
	if err != nil {
		return s.failed("withdraw", fmt.Sprintf("impersonating %s: %v", p.Withdrawer.Hex(), err), err)
	}
	defer sess.Close()

	if err := sess.Withdraw(ctx, p.Asset, p.Amount, p.Recipient); err != nil {
		return s.failed("withdraw", err.Error(), err)
	}

	after, err := s.client.BalanceOf(ctx, p.AToken, p.Withdrawer)
	if err != nil {
		return s.failed("withdraw", fmt.Sprintf("re-reading aToken balance: %v", err), err)
	}

	want := floorSub(before, p.Amount)
	if after.Cmp(want) != 0 {
		return s.failed("withdraw", fmt.Sprintf("aToken balance expected exactly %s, got %s", want, after), nil)
	}

	s.logger.Info("withdraw verified", "asset", p.Asset.Hex(), "amount", p.Amount.String())
	return nil
}

func (s *Simulator) failed(op, reason string, cause error) error {
	s.metrics.failures.WithLabelValues(op).Inc()
	return &ActionFailedError{Op: op, Reason: reason, Err: cause}
}

// almostEqual tolerates one unit of rounding noise in interest-bearing token
// balances.
func almostEqual(a, b *big.Int) bool {
	return new(big.Int).Sub(a, b).CmpAbs(big.NewInt(1)) <= 0
}

// floorSub returns max(a - b, 0).
func floorSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
