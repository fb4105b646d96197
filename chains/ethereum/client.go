// Package ethereum implements protocol.Client against a live mainnet fork
// node (hardhat or anvil). Impersonation and governance execution use the
// node's admin RPC namespace, so the harness never needs signing keys.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
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

// Config holds the connection parameters and protocol addresses.
type Config struct {
	URL               string
	LendingPool       common.Address
	DataProvider      common.Address
	AddressesProvider common.Address
	Logger            Logger
	Registry          prometheus.Registerer
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	var zero common.Address
	if c.LendingPool == zero {
		return errors.New("config: LendingPool is required")
	}
	if c.DataProvider == zero {
		return errors.New("config: DataProvider is required")
	}
	if c.AddressesProvider == zero {
		return errors.New("config: AddressesProvider is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	if c.Registry == nil {
		return errors.New("config: Registry is required")
	}
	return nil
}

// Client talks to the fork node over JSON-RPC.
type Client struct {
	cfg     Config
	rpc     *rpc.Client
	eth     *ethclient.Client
	abis    *contractABIs
	metrics *metrics
}

// Dial connects to the fork node and parses the contract interfaces.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial fork node: %w", err)
	}
	abis, err := parseABIs()
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	c := &Client{
		cfg:     cfg,
		rpc:     rpcClient,
		eth:     ethclient.NewClient(rpcClient),
		abis:    abis,
		metrics: newMetrics(cfg.Registry),
	}
	cfg.Logger.Info("fork client connected", "url", cfg.URL, "pool", cfg.LendingPool.Hex())
	return c, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// call performs an eth_call against target and unpacks the result into out.
func (c *Client) call(ctx context.Context, target common.Address, contract *abi.ABI, method string, out any, args ...any) error {
	timer := prometheus.NewTimer(c.metrics.callDuration.WithLabelValues(method))
	defer timer.ObserveDuration()

	data, err := contract.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("packing %s: %w", method, err)
	}
	ret, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("calling %s on %s: %w", method, target.Hex(), err)
	}
	if err := contract.UnpackIntoInterface(out, method, ret); err != nil {
		return fmt.Errorf("unpacking %s result: %w", method, err)
	}
	return nil
}

func (c *Client) ReserveList(ctx context.Context) ([]reserve.TokenDescriptor, error) {
	var raw []struct {
		Symbol       string
		TokenAddress common.Address
	}
	if err := c.call(ctx, c.cfg.DataProvider, &c.abis.dataProvider, "getAllReservesTokens", &raw); err != nil {
		return nil, err
	}
	out := make([]reserve.TokenDescriptor, len(raw))
	for i, t := range raw {
		out[i] = reserve.TokenDescriptor{Symbol: t.Symbol, Address: t.TokenAddress}
	}
	return out, nil
}

func (c *Client) ReserveConfiguration(ctx context.Context, asset common.Address) (protocol.ConfigurationData, error) {
	var raw struct {
		Decimals                 *big.Int
		Ltv                      *big.Int
		LiquidationThreshold     *big.Int
		LiquidationBonus         *big.Int
		ReserveFactor            *big.Int
		UsageAsCollateralEnabled bool
		BorrowingEnabled         bool
		StableBorrowRateEnabled  bool
		IsActive                 bool
		IsFrozen                 bool
	}
	if err := c.call(ctx, c.cfg.DataProvider, &c.abis.dataProvider, "getReserveConfigurationData", &raw, asset); err != nil {
		return protocol.ConfigurationData{}, err
	}
	return protocol.ConfigurationData{
		Decimals:             uint8(raw.Decimals.Uint64()),
		LoanToValue:          raw.Ltv.Uint64(),
		LiquidationThreshold: raw.LiquidationThreshold.Uint64(),
		LiquidationBonus:     raw.LiquidationBonus.Uint64(),
		ReserveFactor:        raw.ReserveFactor.Uint64(),
		UsageAsCollateral:    raw.UsageAsCollateralEnabled,
		BorrowingEnabled:     raw.BorrowingEnabled,
		StableBorrowEnabled:  raw.StableBorrowRateEnabled,
		IsActive:             raw.IsActive,
		IsFrozen:             raw.IsFrozen,
	}, nil
}

func (c *Client) ReserveTokens(ctx context.Context, asset common.Address) (protocol.TokenAddresses, error) {
	var raw struct {
		ATokenAddress            common.Address
		StableDebtTokenAddress   common.Address
		VariableDebtTokenAddress common.Address
	}
	if err := c.call(ctx, c.cfg.DataProvider, &c.abis.dataProvider, "getReserveTokensAddresses", &raw, asset); err != nil {
		return protocol.TokenAddresses{}, err
	}
	return protocol.TokenAddresses{
		AToken:            raw.ATokenAddress,
		StableDebtToken:   raw.StableDebtTokenAddress,
		VariableDebtToken: raw.VariableDebtTokenAddress,
	}, nil
}

func (c *Client) ReserveStrategy(ctx context.Context, asset common.Address) (common.Address, error) {
	var raw struct {
		Configuration               *big.Int
		LiquidityIndex              *big.Int
		VariableBorrowIndex         *big.Int
		CurrentLiquidityRate        *big.Int
		CurrentVariableBorrowRate   *big.Int
		CurrentStableBorrowRate     *big.Int
		LastUpdateTimestamp         *big.Int
		ATokenAddress               common.Address
		StableDebtTokenAddress      common.Address
		VariableDebtTokenAddress    common.Address
		InterestRateStrategyAddress common.Address
		Id                          uint8
	}
	if err := c.call(ctx, c.cfg.LendingPool, &c.abis.lendingPool, "getReserveData", &raw, asset); err != nil {
		return common.Address{}, err
	}
	return raw.InterestRateStrategyAddress, nil
}

func (c *Client) StrategyCurve(ctx context.Context, strategy common.Address) (reserve.StrategySpec, error) {
	var spec reserve.StrategySpec
	for _, getter := range []struct {
		method string
		dst    **big.Int
	}{
		{"OPTIMAL_UTILIZATION_RATE", &spec.OptimalUtilization},
		{"EXCESS_UTILIZATION_RATE", &spec.ExcessUtilization},
		{"baseVariableBorrowRate", &spec.BaseVariableBorrowRate},
		{"variableRateSlope1", &spec.VariableRateSlope1},
		{"variableRateSlope2", &spec.VariableRateSlope2},
		{"stableRateSlope1", &spec.StableRateSlope1},
		{"stableRateSlope2", &spec.StableRateSlope2},
	} {
		var v *big.Int
		if err := c.call(ctx, strategy, &c.abis.strategy, getter.method, &v); err != nil {
			return reserve.StrategySpec{}, err
		}
		*getter.dst = v
	}
	return spec, nil
}

func (c *Client) StrategyMaxVariableRate(ctx context.Context, strategy common.Address) (*big.Int, error) {
	var v *big.Int
	if err := c.call(ctx, strategy, &c.abis.strategy, "getMaxVariableBorrowRate", &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) OracleSource(ctx context.Context, asset common.Address) (common.Address, error) {
	var oracle common.Address
	if err := c.call(ctx, c.cfg.AddressesProvider, &c.abis.addressesProvider, "getPriceOracle", &oracle); err != nil {
		return common.Address{}, err
	}
	var source common.Address
	if err := c.call(ctx, oracle, &c.abis.oracle, "getSourceOfAsset", &source, asset); err != nil {
		return common.Address{}, err
	}
	return source, nil
}

func (c *Client) BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	var v *big.Int
	if err := c.call(ctx, token, &c.abis.erc20, "balanceOf", &v, holder); err != nil {
		return nil, err
	}
	return v, nil
}
