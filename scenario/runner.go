package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/actions"
	"github.com/defistate/listing-verifier-go/checks"
	"github.com/defistate/listing-verifier-go/differ"
	"github.com/defistate/listing-verifier-go/protocol"
	"github.com/defistate/listing-verifier-go/reserve"
	"github.com/defistate/listing-verifier-go/snapshot"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Applier enacts the governance change under test. Apply blocks until the
// change has fully taken effect; the runner observes it only through the
// before/after snapshots.
type Applier interface {
	Apply(ctx context.Context) error
}

// ApplierFunc adapts a plain function to the Applier interface.
type ApplierFunc func(ctx context.Context) error

func (f ApplierFunc) Apply(ctx context.Context) error {
	return f(ctx)
}

// Plan is the fully resolved expectation for one listing scenario.
type Plan struct {
	// NewListings is the number of reserves the governance change adds.
	NewListings int

	// Reserve is the expected configuration of the newly listed asset.
	// Zero-valued addresses are unconstrained.
	Reserve reserve.Reserve

	// Strategy is the expected strategy deployment and its curve.
	Strategy common.Address
	Curve    reserve.StrategySpec

	// Impls are the expected token implementations; zero addresses skip that
	// token.
	Impls reserve.TokenImpls

	// OracleSource, when set, is the expected price feed for the new asset.
	OracleSource common.Address

	// Whale is a pre-funded holder of the new asset used to drive actions.
	Whale common.Address

	// DepositAmount and BorrowAmount are raw token units. A zero or nil
	// DepositAmount skips the action phase.
	DepositAmount *big.Int
	BorrowAmount  *big.Int

	// LogReserves enables the reader's diagnostic logging path.
	LogReserves bool
}

func (p *Plan) validate() error {
	if p.NewListings <= 0 {
		return errors.New("plan: NewListings must be positive")
	}
	if p.Reserve.Symbol == "" {
		return errors.New("plan: Reserve.Symbol is required")
	}
	return nil
}

// RunnerConfig holds the runner's dependencies.
type RunnerConfig struct {
	Client   protocol.Client
	Applier  Applier
	Logger   Logger
	Registry prometheus.Registerer
}

func (c *RunnerConfig) validate() error {
	if c.Client == nil {
		return errors.New("config: Client cannot be nil")
	}
	if c.Applier == nil {
		return errors.New("config: Applier cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	return nil
}

// Runner drives the fixed linear scenario script: snapshot, apply the
// governance change, snapshot again, run every validator, then exercise the
// pool actions against the new listing. Execution is strictly sequential and
// the first violated invariant aborts the run.
type Runner struct {
	client  protocol.Client
	applier Applier
	reader  *snapshot.Reader
	differ  *differ.ReserveDiffer
	checker *checks.Checker
	sim     *actions.Simulator
	logger  Logger
}

// NewRunner constructs a Runner and its sub-components from a configuration,
// returning an error if the config is invalid.
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	reader, err := snapshot.NewReader(&snapshot.ReaderConfig{
		Client:   cfg.Client,
		Logger:   cfg.Logger,
		Registry: cfg.Registry,
	})
	if err != nil {
		return nil, fmt.Errorf("creating snapshot reader: %w", err)
	}
	rd, err := differ.NewReserveDiffer(&differ.ReserveDifferConfig{
		Registry: cfg.Registry,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reserve differ: %w", err)
	}
	checker, err := checks.NewChecker(&checks.CheckerConfig{
		Client:   cfg.Client,
		Logger:   cfg.Logger,
		Registry: cfg.Registry,
	})
	if err != nil {
		return nil, fmt.Errorf("creating checker: %w", err)
	}
	sim, err := actions.NewSimulator(&actions.SimulatorConfig{
		Client:   cfg.Client,
		Logger:   cfg.Logger,
		Registry: cfg.Registry,
	})
	if err != nil {
		return nil, fmt.Errorf("creating action simulator: %w", err)
	}

	return &Runner{
		client:  cfg.Client,
		applier: cfg.Applier,
		reader:  reader,
		differ:  rd,
		checker: checker,
		sim:     sim,
		logger:  cfg.Logger,
	}, nil
}

// Run executes the scenario. The returned error is the first violated
// invariant in script order, carrying the literal expected/actual values.
func (r *Runner) Run(ctx context.Context, plan Plan) error {
	if err := plan.validate(); err != nil {
		return err
	}

	r.logger.Info("scenario start", "symbol", plan.Reserve.Symbol, "newListings", plan.NewListings)

	before, err := r.reader.ReadAll(ctx, plan.LogReserves)
	if err != nil {
		return err
	}
	r.logger.Info("pre-change snapshot taken", "reserves", len(before))

	if err := r.applier.Apply(ctx); err != nil {
		return fmt.Errorf("applying governance change: %w", err)
	}
	r.logger.Info("governance change applied")

	after, err := r.reader.ReadAll(ctx, plan.LogReserves)
	if err != nil {
		return err
	}
	r.logger.Info("post-change snapshot taken", "reserves", len(after))

	if err := r.differ.ValidateListingCount(plan.NewListings, before, after); err != nil {
		return err
	}
	if err := r.differ.ValidateNoDrift(before, after); err != nil {
		return err
	}
	if err := r.checker.ValidateReserveSpec(plan.Reserve, after); err != nil {
		return err
	}

	// The listed record resolves the addresses assigned at listing time.
	listed, ok := after.BySymbol(plan.Reserve.Symbol)
	if !ok {
		return &checks.ReserveNotFoundError{Symbol: plan.Reserve.Symbol}
	}

	expectedStrategy := plan.Strategy
	if expectedStrategy == (common.Address{}) {
		expectedStrategy = listed.InterestRateStrategy
	}
	if err := r.checker.ValidateRateCurve(ctx, listed.Underlying, expectedStrategy, plan.Curve); err != nil {
		return err
	}
	if err := r.checker.ValidateTokenImpls(ctx, listed, plan.Impls); err != nil {
		return err
	}
	if plan.OracleSource != (common.Address{}) {
		if err := r.checker.ValidateOracleSource(ctx, listed.Underlying, plan.OracleSource); err != nil {
			return err
		}
	}

	if plan.DepositAmount == nil || plan.DepositAmount.Sign() == 0 {
		r.logger.Info("scenario passed", "symbol", plan.Reserve.Symbol, "actions", false)
		return nil
	}
	if err := r.runActions(ctx, listed, plan); err != nil {
		return err
	}

	r.logger.Info("scenario passed", "symbol", plan.Reserve.Symbol, "actions", true)
	return nil
}

// runActions exercises deposit, borrow (variable, plus the expected stable
// rejection when stable borrowing is disabled), repay, and a full withdraw.
func (r *Runner) runActions(ctx context.Context, listed reserve.Reserve, plan Plan) error {
	if err := r.sim.Deposit(ctx, actions.DepositParams{
		Depositor:   plan.Whale,
		Beneficiary: plan.Whale,
		Asset:       listed.Underlying,
		Amount:      plan.DepositAmount,
		AToken:      listed.AToken,
		Approve:     true,
	}); err != nil {
		return err
	}

	borrowAmount := plan.BorrowAmount
	if borrowAmount == nil || borrowAmount.Sign() == 0 {
		borrowAmount = new(big.Int).Div(plan.DepositAmount, big.NewInt(4))
	}

	if listed.BorrowingEnabled {
		if err := r.sim.Borrow(ctx, actions.BorrowParams{
			Borrower:    plan.Whale,
			Beneficiary: plan.Whale,
			Asset:       listed.Underlying,
			Amount:      borrowAmount,
			Mode:        protocol.RateModeVariable,
			DebtToken:   listed.VariableDebtToken,
		}); err != nil {
			return err
		}
	}

	if !listed.StableBorrowEnabled {
		// Disabled stable borrowing must be provably rejected by the pool.
		if err := r.sim.Borrow(ctx, actions.BorrowParams{
			Borrower:         plan.Whale,
			Beneficiary:      plan.Whale,
			Asset:            listed.Underlying,
			Amount:           borrowAmount,
			Mode:             protocol.RateModeStable,
			DebtToken:        listed.StableDebtToken,
			ExpectRevertCode: protocol.ErrCodeStableBorrowingNotEnabled,
		}); err != nil {
			return err
		}
	}

	if listed.BorrowingEnabled {
		if err := r.sim.Repay(ctx, actions.RepayParams{
			Payer:     plan.Whale,
			Debtor:    plan.Whale,
			Asset:     listed.Underlying,
			Amount:    borrowAmount,
			Mode:      protocol.RateModeVariable,
			DebtToken: listed.VariableDebtToken,
			Approve:   true,
		}); err != nil {
			return err
		}
	}

	return r.sim.Withdraw(ctx, actions.WithdrawParams{
		Withdrawer: plan.Whale,
		Recipient:  plan.Whale,
		Asset:      listed.Underlying,
		Amount:     actions.MaxWithdraw,
		AToken:     listed.AToken,
	})
}
