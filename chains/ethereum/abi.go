package ethereum

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract surfaces the harness touches, declared inline the way the
// protocol's own interfaces expose them. The reserve-data tuple is flattened
// to base types; static tuple members encode identically.

const dataProviderABI = `[
  {"inputs": [], "name": "getAllReservesTokens",
   "outputs": [{"components": [
      {"name": "symbol", "type": "string"},
      {"name": "tokenAddress", "type": "address"}
    ], "name": "", "type": "tuple[]"}],
   "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "asset", "type": "address"}], "name": "getReserveConfigurationData",
   "outputs": [
      {"name": "decimals", "type": "uint256"},
      {"name": "ltv", "type": "uint256"},
      {"name": "liquidationThreshold", "type": "uint256"},
      {"name": "liquidationBonus", "type": "uint256"},
      {"name": "reserveFactor", "type": "uint256"},
      {"name": "usageAsCollateralEnabled", "type": "bool"},
      {"name": "borrowingEnabled", "type": "bool"},
      {"name": "stableBorrowRateEnabled", "type": "bool"},
      {"name": "isActive", "type": "bool"},
      {"name": "isFrozen", "type": "bool"}
   ],
   "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "asset", "type": "address"}], "name": "getReserveTokensAddresses",
   "outputs": [
      {"name": "aTokenAddress", "type": "address"},
      {"name": "stableDebtTokenAddress", "type": "address"},
      {"name": "variableDebtTokenAddress", "type": "address"}
   ],
   "stateMutability": "view", "type": "function"}
]`

const lendingPoolABI = `[
  {"inputs": [{"name": "asset", "type": "address"}], "name": "getReserveData",
   "outputs": [
      {"name": "configuration", "type": "uint256"},
      {"name": "liquidityIndex", "type": "uint128"},
      {"name": "variableBorrowIndex", "type": "uint128"},
      {"name": "currentLiquidityRate", "type": "uint128"},
      {"name": "currentVariableBorrowRate", "type": "uint128"},
      {"name": "currentStableBorrowRate", "type": "uint128"},
      {"name": "lastUpdateTimestamp", "type": "uint40"},
      {"name": "aTokenAddress", "type": "address"},
      {"name": "stableDebtTokenAddress", "type": "address"},
      {"name": "variableDebtTokenAddress", "type": "address"},
      {"name": "interestRateStrategyAddress", "type": "address"},
      {"name": "id", "type": "uint8"}
   ],
   "stateMutability": "view", "type": "function"},
  {"inputs": [
      {"name": "asset", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "onBehalfOf", "type": "address"},
      {"name": "referralCode", "type": "uint16"}
   ], "name": "deposit", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [
      {"name": "asset", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "interestRateMode", "type": "uint256"},
      {"name": "referralCode", "type": "uint16"},
      {"name": "onBehalfOf", "type": "address"}
   ], "name": "borrow", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [
      {"name": "asset", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "rateMode", "type": "uint256"},
      {"name": "onBehalfOf", "type": "address"}
   ], "name": "repay", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [
      {"name": "asset", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "to", "type": "address"}
   ], "name": "withdraw", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "nonpayable", "type": "function"}
]`

const strategyABI = `[
  {"inputs": [], "name": "OPTIMAL_UTILIZATION_RATE", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "EXCESS_UTILIZATION_RATE", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "baseVariableBorrowRate", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "variableRateSlope1", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "variableRateSlope2", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "stableRateSlope1", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "stableRateSlope2", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getMaxVariableBorrowRate", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const addressesProviderABI = `[
  {"inputs": [], "name": "getPriceOracle", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const oracleABI = `[
  {"inputs": [{"name": "asset", "type": "address"}], "name": "getSourceOfAsset", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABI = `[
  {"inputs": [{"name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [
      {"name": "spender", "type": "address"},
      {"name": "amount", "type": "uint256"}
   ], "name": "approve", "outputs": [{"name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

const proxyABI = `[
  {"inputs": [], "name": "implementation", "outputs": [{"name": "", "type": "address"}], "stateMutability": "nonpayable", "type": "function"}
]`

type contractABIs struct {
	dataProvider      abi.ABI
	lendingPool       abi.ABI
	strategy          abi.ABI
	addressesProvider abi.ABI
	oracle            abi.ABI
	erc20             abi.ABI
	proxy             abi.ABI
}

func parseABIs() (*contractABIs, error) {
	out := &contractABIs{}
	for _, entry := range []struct {
		name string
		raw  string
		dst  *abi.ABI
	}{
		{"data provider", dataProviderABI, &out.dataProvider},
		{"lending pool", lendingPoolABI, &out.lendingPool},
		{"strategy", strategyABI, &out.strategy},
		{"addresses provider", addressesProviderABI, &out.addressesProvider},
		{"oracle", oracleABI, &out.oracle},
		{"erc20", erc20ABI, &out.erc20},
		{"proxy", proxyABI, &out.proxy},
	} {
		parsed, err := abi.JSON(strings.NewReader(entry.raw))
		if err != nil {
			return nil, fmt.Errorf("parsing %s ABI: %w", entry.name, err)
		}
		*entry.dst = parsed
	}
	return out, nil
}
