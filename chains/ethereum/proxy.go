package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EIP-1967 storage slots: keccak256("eip1967.proxy.implementation") - 1 and
// keccak256("eip1967.proxy.admin") - 1.
var (
	implementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	adminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
)

// ProxyImplementation reads the implementation address behind an upgradeable
// proxy. The EIP-1967 slot is tried first; admin-gated proxies that predate
// it fall back to calling implementation() as the proxy admin, with the
// impersonation held only for the duration of the read.
func (c *Client) ProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error) {
	raw, err := c.eth.StorageAt(ctx, proxy, implementationSlot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading implementation slot of %s: %w", proxy.Hex(), err)
	}
	if impl := common.BytesToAddress(raw); impl != (common.Address{}) {
		return impl, nil
	}
	return c.implementationAsAdmin(ctx, proxy)
}

// implementationAsAdmin calls implementation() from the proxy's admin
// address. Admin-gated proxies route every other caller to the fallback, so
// the read needs the elevated identity.
func (c *Client) implementationAsAdmin(ctx context.Context, proxy common.Address) (common.Address, error) {
	rawAdmin, err := c.eth.StorageAt(ctx, proxy, adminSlot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading admin slot of %s: %w", proxy.Hex(), err)
	}
	admin := common.BytesToAddress(rawAdmin)
	if admin == (common.Address{}) {
		return common.Address{}, fmt.Errorf("proxy %s has no EIP-1967 implementation or admin", proxy.Hex())
	}

	if err := c.impersonate(ctx, admin); err != nil {
		return common.Address{}, err
	}
	defer c.stopImpersonating(context.WithoutCancel(ctx), admin)

	calldata, err := c.abis.proxy.Pack("implementation")
	if err != nil {
		return common.Address{}, fmt.Errorf("packing implementation(): %w", err)
	}
	args := map[string]any{
		"from": admin,
		"to":   proxy,
		"data": hexutil.Bytes(calldata),
	}
	var out hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &out, "eth_call", args, "latest"); err != nil {
		return common.Address{}, fmt.Errorf("calling implementation() on %s as admin: %w", proxy.Hex(), err)
	}
	if len(out) < common.AddressLength {
		return common.Address{}, fmt.Errorf("implementation() on %s returned %d bytes", proxy.Hex(), len(out))
	}
	return common.BytesToAddress(out), nil
}
