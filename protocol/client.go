package protocol

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/listing-verifier-go/reserve"
)

// RateMode selects the interest model for a borrow position. Values match
// the pool's on-chain encoding.
type RateMode uint8

const (
	RateModeStable   RateMode = 1
	RateModeVariable RateMode = 2
)

func (m RateMode) String() string {
	switch m {
	case RateModeStable:
		return "stable"
	case RateModeVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// ErrCodeStableBorrowingNotEnabled is the pool's revert reason code when a
// stable-mode borrow is attempted against a reserve with stable borrowing
// disabled.
const ErrCodeStableBorrowingNotEnabled = "12"

// ConfigurationData mirrors the protocol data provider's per-asset
// configuration query: the ten scalar/boolean risk fields, without token
// addresses.
type ConfigurationData struct {
	Decimals             uint8
	LoanToValue          uint64
	LiquidationThreshold uint64
	LiquidationBonus     uint64
	ReserveFactor        uint64
	UsageAsCollateral    bool
	BorrowingEnabled     bool
	StableBorrowEnabled  bool
	IsActive             bool
	IsFrozen             bool
}

// TokenAddresses mirrors the data provider's per-asset token-address query.
type TokenAddresses struct {
	AToken            common.Address
	StableDebtToken   common.Address
	VariableDebtToken common.Address
}

// Session scopes pool actions to a single impersonated actor. Only one
// session may be active at a time; callers must Close on every exit path,
// typically via defer immediately after Impersonate.
type Session interface {
	Actor() common.Address

	// ApprovePool grants the lending pool a spending allowance on token.
	ApprovePool(ctx context.Context, token common.Address, amount *big.Int) error

	Deposit(ctx context.Context, asset common.Address, amount *big.Int, onBehalfOf common.Address) error
	Borrow(ctx context.Context, asset common.Address, amount *big.Int, mode RateMode, onBehalfOf common.Address) error
	Repay(ctx context.Context, asset common.Address, amount *big.Int, mode RateMode, onBehalfOf common.Address) error
	Withdraw(ctx context.Context, asset common.Address, amount *big.Int, to common.Address) error

	Close() error
}

// Client is the harness's sole view of the external lending protocol. Every
// validator and the action simulator receive one by injection, so the same
// scenario can run against a live fork or a programmable in-memory fake.
type Client interface {
	// ReserveList returns the registry's (symbol, address) pairs in the
	// registry's own order.
	ReserveList(ctx context.Context) ([]reserve.TokenDescriptor, error)

	ReserveConfiguration(ctx context.Context, asset common.Address) (ConfigurationData, error)
	ReserveTokens(ctx context.Context, asset common.Address) (TokenAddresses, error)

	// ReserveStrategy returns the interest-rate strategy contract currently
	// attached to asset.
	ReserveStrategy(ctx context.Context, asset common.Address) (common.Address, error)

	// StrategyCurve reads the seven curve coefficients from a strategy
	// contract; StrategyMaxVariableRate reads its derived ceiling rate.
	StrategyCurve(ctx context.Context, strategy common.Address) (reserve.StrategySpec, error)
	StrategyMaxVariableRate(ctx context.Context, strategy common.Address) (*big.Int, error)

	// OracleSource resolves the price-feed contract the protocol's oracle has
	// registered for asset.
	OracleSource(ctx context.Context, asset common.Address) (common.Address, error)

	// ProxyImplementation reads the implementation address currently behind
	// an upgradeable proxy. Implementations may need elevated calling
	// context; any authority acquired is held only for the duration of the
	// read.
	ProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error)

	BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error)

	// Impersonate opens an action session acting as actor.
	Impersonate(ctx context.Context, actor common.Address) (Session, error)
}
