package snapshot

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/protocol"
	"github.com/defistate/listing-verifier-go/reserve"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ReaderConfig holds the reader's dependencies.
type ReaderConfig struct {
	Client   protocol.Client
	Logger   Logger
	Registry prometheus.Registerer
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *ReaderConfig) validate() error {
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

// Reader assembles full reserve snapshots from the protocol's registry and
// per-asset queries.
type Reader struct {
	client  protocol.Client
	logger  Logger
	metrics *metrics
}

// NewReader constructs a Reader from a configuration, returning an error if
// the config is invalid.
func NewReader(cfg *ReaderConfig) (*Reader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Reader{
		client:  cfg.Client,
		logger:  cfg.Logger,
		metrics: newMetrics(cfg.Registry),
	}, nil
}

// ReadAll queries every asset the registry reports and merges configuration,
// token addresses, and the attached strategy into one record per asset,
// preserving registry order. Any failed per-asset query is forwarded as an
// AssetQueryError; nothing is swallowed. When logReserves is set each record
// is logged as it is read; the flag has no effect on the returned data.
func (r *Reader) ReadAll(ctx context.Context, logReserves bool) (reserve.Snapshot, error) {
	timer := prometheus.NewTimer(r.metrics.readDuration)
	defer timer.ObserveDuration()

	tokens, err := r.client.ReserveList(ctx)
	if err != nil {
		r.metrics.readErrors.Inc()
		return nil, &AssetQueryError{Op: "reserveList", Err: err}
	}

	snap := make(reserve.Snapshot, 0, len(tokens))
	for _, token := range tokens {
		cfg, err := r.client.ReserveConfiguration(ctx, token.Address)
		if err != nil {
			r.metrics.readErrors.Inc()
			return nil, &AssetQueryError{Symbol: token.Symbol, Op: "reserveConfiguration", Err: err}
		}
		addrs, err := r.client.ReserveTokens(ctx, token.Address)
		if err != nil {
			r.metrics.readErrors.Inc()
			return nil, &AssetQueryError{Symbol: token.Symbol, Op: "reserveTokens", Err: err}
		}
		strategy, err := r.client.ReserveStrategy(ctx, token.Address)
		if err != nil {
			r.metrics.readErrors.Inc()
			return nil, &AssetQueryError{Symbol: token.Symbol, Op: "reserveStrategy", Err: err}
		}

		rec := reserve.Reserve{
			Symbol:               token.Symbol,
			Underlying:           token.Address,
			AToken:               addrs.AToken,
			StableDebtToken:      addrs.StableDebtToken,
			VariableDebtToken:    addrs.VariableDebtToken,
			Decimals:             cfg.Decimals,
			LoanToValue:          cfg.LoanToValue,
			LiquidationThreshold: cfg.LiquidationThreshold,
			LiquidationBonus:     cfg.LiquidationBonus,
			ReserveFactor:        cfg.ReserveFactor,
			UsageAsCollateral:    cfg.UsageAsCollateral,
			BorrowingEnabled:     cfg.BorrowingEnabled,
			StableBorrowEnabled:  cfg.StableBorrowEnabled,
			InterestRateStrategy: strategy,
			IsActive:             cfg.IsActive,
			IsFrozen:             cfg.IsFrozen,
		}

		if logReserves {
			r.logger.Info("read reserve",
				"symbol", rec.Symbol,
				"underlying", rec.Underlying.Hex(),
				"ltv", rec.LoanToValue,
				"liquidationThreshold", rec.LiquidationThreshold,
				"borrowingEnabled", rec.BorrowingEnabled,
				"stableBorrowEnabled", rec.StableBorrowEnabled,
			)
		}

		snap = append(snap, rec)
	}

	r.logger.Debug("snapshot complete", "reserves", len(snap))
	return snap, nil
}
