// Package memorypool is a deterministic, programmable in-memory lending pool
// implementing protocol.Client. It backs unit tests and the runnable example,
// standing in for a live fork node.
package memorypool

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/listing-verifier-go/protocol"
	"github.com/defistate/listing-verifier-go/reserve"
)

// PoolAddress is the fake pool's own address, the spender of all approvals.
var PoolAddress = common.HexToAddress("0x0000000000000000000000000000000000001001")

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ReserveState is the full programmable state of one listed asset.
type ReserveState struct {
	Descriptor reserve.TokenDescriptor
	Config     protocol.ConfigurationData
	Tokens     protocol.TokenAddresses
	Strategy   common.Address
}

// StrategyState is the programmable state of one strategy contract.
type StrategyState struct {
	Curve   reserve.StrategySpec
	MaxRate *big.Int
}

// Pool is the fake protocol. Mutation methods double as the "governance
// change" of a scenario: tests list a reserve mid-run and observe the
// before/after snapshots, exactly as a live harness observes an executed
// proposal.
type Pool struct {
	mu sync.Mutex

	reserves   []ReserveState
	strategies map[common.Address]StrategyState
	sources    map[common.Address]common.Address
	impls      map[common.Address]common.Address
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int

	readErrs map[string]error

	// mintNoise units are shaved off every aToken/debt-token mint to emulate
	// interest-bearing rounding. At most 1 keeps the pool within the
	// simulator's tolerance.
	mintNoise int64

	sessionActive bool
}

func New() *Pool {
	return &Pool{
		strategies: make(map[common.Address]StrategyState),
		sources:    make(map[common.Address]common.Address),
		impls:      make(map[common.Address]common.Address),
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		readErrs:   make(map[string]error),
	}
}

// --- Programming surface ---

// AddReserve lists a new asset, appending to the registry order.
func (p *Pool) AddReserve(st ReserveState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserves = append(p.reserves, st)
}

// SetReserveConfig replaces the configuration of an already listed asset.
// Used by tests to inject drift on pre-existing reserves.
func (p *Pool) SetReserveConfig(asset common.Address, cfg protocol.ConfigurationData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.reserves {
		if p.reserves[i].Descriptor.Address == asset {
			p.reserves[i].Config = cfg
			return nil
		}
	}
	return fmt.Errorf("memorypool: unknown asset %s", asset.Hex())
}

func (p *Pool) SetStrategy(addr common.Address, st StrategyState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategies[addr] = st
}

func (p *Pool) SetOracleSource(asset, source common.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[asset] = source
}

func (p *Pool) SetImplementation(proxy, impl common.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.impls[proxy] = impl
}

// Fund seeds a holder's token balance, the fake equivalent of picking a
// pre-funded whale.
func (p *Pool) Fund(token, holder common.Address, amount *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credit(token, holder, amount)
}

// SetMintNoise configures the rounding noise shaved off receipt/debt mints.
func (p *Pool) SetMintNoise(units int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mintNoise = units
}

// FailNextRead arms a one-shot error for the named read operation
// (reserveList, reserveConfiguration, reserveTokens, reserveStrategy).
func (p *Pool) FailNextRead(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErrs[op] = err
}

func (p *Pool) takeReadErr(op string) error {
	if err, ok := p.readErrs[op]; ok {
		delete(p.readErrs, op)
		return err
	}
	return nil
}

// --- protocol.Client reads ---

func (p *Pool) ReserveList(ctx context.Context) ([]reserve.TokenDescriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeReadErr("reserveList"); err != nil {
		return nil, err
	}
	out := make([]reserve.TokenDescriptor, len(p.reserves))
	for i, st := range p.reserves {
		out[i] = st.Descriptor
	}
	return out, nil
}

func (p *Pool) ReserveConfiguration(ctx context.Context, asset common.Address) (protocol.ConfigurationData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeReadErr("reserveConfiguration"); err != nil {
		return protocol.ConfigurationData{}, err
	}
	st, err := p.findReserve(asset)
	if err != nil {
		return protocol.ConfigurationData{}, err
	}
	return st.Config, nil
}

func (p *Pool) ReserveTokens(ctx context.Context, asset common.Address) (protocol.TokenAddresses, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeReadErr("reserveTokens"); err != nil {
		return protocol.TokenAddresses{}, err
	}
	st, err := p.findReserve(asset)
	if err != nil {
		return protocol.TokenAddresses{}, err
	}
	return st.Tokens, nil
}

func (p *Pool) ReserveStrategy(ctx context.Context, asset common.Address) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeReadErr("reserveStrategy"); err != nil {
		return common.Address{}, err
	}
	st, err := p.findReserve(asset)
	if err != nil {
		return common.Address{}, err
	}
	return st.Strategy, nil
}

func (p *Pool) StrategyCurve(ctx context.Context, strategy common.Address) (reserve.StrategySpec, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.strategies[strategy]
	if !ok {
		return reserve.StrategySpec{}, fmt.Errorf("memorypool: unknown strategy %s", strategy.Hex())
	}
	return st.Curve, nil
}

func (p *Pool) StrategyMaxVariableRate(ctx context.Context, strategy common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("memorypool: unknown strategy %s", strategy.Hex())
	}
	return new(big.Int).Set(st.MaxRate), nil
}

func (p *Pool) OracleSource(ctx context.Context, asset common.Address) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	source, ok := p.sources[asset]
	if !ok {
		return common.Address{}, fmt.Errorf("memorypool: no oracle source for asset %s", asset.Hex())
	}
	return source, nil
}

func (p *Pool) ProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	impl, ok := p.impls[proxy]
	if !ok {
		return common.Address{}, fmt.Errorf("memorypool: no implementation behind proxy %s", proxy.Hex())
	}
	return impl, nil
}

func (p *Pool) BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.balance(token, holder)), nil
}

// --- internals ---

// findReserve assumes p.mu is held.
func (p *Pool) findReserve(asset common.Address) (*ReserveState, error) {
	for i := range p.reserves {
		if p.reserves[i].Descriptor.Address == asset {
			return &p.reserves[i], nil
		}
	}
	return nil, fmt.Errorf("memorypool: unknown asset %s", asset.Hex())
}

func (p *Pool) balance(token, holder common.Address) *big.Int {
	holders, ok := p.balances[token]
	if !ok {
		return new(big.Int)
	}
	bal, ok := holders[holder]
	if !ok {
		return new(big.Int)
	}
	return bal
}

func (p *Pool) credit(token, holder common.Address, amount *big.Int) {
	holders, ok := p.balances[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		p.balances[token] = holders
	}
	cur, ok := holders[holder]
	if !ok {
		cur = new(big.Int)
	}
	holders[holder] = new(big.Int).Add(cur, amount)
}

// debit subtracts amount, flooring at zero, and returns the amount actually
// removed.
func (p *Pool) debit(token, holder common.Address, amount *big.Int) *big.Int {
	cur := p.balance(token, holder)
	removed := amount
	if cur.Cmp(amount) < 0 {
		removed = cur
	}
	removed = new(big.Int).Set(removed)
	p.balances[token][holder] = new(big.Int).Sub(cur, removed)
	return removed
}

func (p *Pool) allowance(token, owner common.Address) *big.Int {
	owners, ok := p.allowances[token]
	if !ok {
		return new(big.Int)
	}
	a, ok := owners[owner]
	if !ok {
		return new(big.Int)
	}
	return a
}

func (p *Pool) setAllowance(token, owner common.Address, amount *big.Int) {
	owners, ok := p.allowances[token]
	if !ok {
		owners = make(map[common.Address]*big.Int)
		p.allowances[token] = owners
	}
	owners[owner] = new(big.Int).Set(amount)
}

func (p *Pool) spendAllowance(token, owner common.Address, amount *big.Int) error {
	a := p.allowance(token, owner)
	if a.Cmp(amount) < 0 {
		return fmt.Errorf("memorypool: allowance of %s on %s is %s, need %s",
			owner.Hex(), token.Hex(), a, amount)
	}
	p.allowances[token][owner] = new(big.Int).Sub(a, amount)
	return nil
}

// mint credits holder with amount minus the configured rounding noise.
func (p *Pool) mint(token, holder common.Address, amount *big.Int) {
	minted := new(big.Int).Sub(amount, big.NewInt(p.mintNoise))
	if minted.Sign() < 0 {
		minted = new(big.Int)
	}
	p.credit(token, holder, minted)
}
