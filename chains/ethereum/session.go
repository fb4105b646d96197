package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/protocol"
)

const receiptPollInterval = 50 * time.Millisecond

// Impersonate asks the fork node to act as actor and returns a session bound
// to that identity. Close stops the impersonation; callers must Close on
// every exit path.
func (c *Client) Impersonate(ctx context.Context, actor common.Address) (protocol.Session, error) {
	if err := c.impersonate(ctx, actor); err != nil {
		return nil, err
	}
	c.cfg.Logger.Debug("impersonation started", "actor", actor.Hex())
	return &session{client: c, actor: actor}, nil
}

// impersonate tries the hardhat namespace first, then anvil.
func (c *Client) impersonate(ctx context.Context, actor common.Address) error {
	if err := c.rpc.CallContext(ctx, nil, "hardhat_impersonateAccount", actor); err == nil {
		return nil
	}
	if err := c.rpc.CallContext(ctx, nil, "anvil_impersonateAccount", actor); err != nil {
		return fmt.Errorf("fork node refused impersonation of %s: %w", actor.Hex(), err)
	}
	return nil
}

func (c *Client) stopImpersonating(ctx context.Context, actor common.Address) error {
	if err := c.rpc.CallContext(ctx, nil, "hardhat_stopImpersonatingAccount", actor); err == nil {
		return nil
	}
	return c.rpc.CallContext(ctx, nil, "anvil_stopImpersonatingAccount", actor)
}

// Execute runs a prepared call as from, waiting for it to be mined. Used to
// enact an already-built governance execution transaction.
func (c *Client) Execute(ctx context.Context, from, to common.Address, calldata []byte) error {
	if err := c.impersonate(ctx, from); err != nil {
		return err
	}
	defer c.stopImpersonating(context.WithoutCancel(ctx), from)
	return c.sendTransaction(ctx, "execute", from, to, calldata)
}

// sendTransaction submits an unsigned transaction from an impersonated
// account and waits for its receipt. A failed receipt is re-executed as a
// call to recover the protocol's revert reason.
func (c *Client) sendTransaction(ctx context.Context, op string, from, to common.Address, calldata []byte) error {
	timer := prometheus.NewTimer(c.metrics.txDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	args := map[string]any{
		"from": from,
		"to":   to,
		"data": hexutil.Bytes(calldata),
	}
	var txHash common.Hash
	if err := c.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", args); err != nil {
		// Gas estimation surfaces reverts before anything is mined.
		return wrapRevert(op, err)
	}

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == 0 {
				return c.recoverRevert(ctx, op, from, to, calldata)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// recoverRevert replays a failed transaction as an eth_call to extract the
// revert reason the receipt does not carry.
func (c *Client) recoverRevert(ctx context.Context, op string, from, to common.Address, calldata []byte) error {
	args := map[string]any{
		"from": from,
		"to":   to,
		"data": hexutil.Bytes(calldata),
	}
	var out hexutil.Bytes
	err := c.rpc.CallContext(ctx, &out, "eth_call", args, "latest")
	if err == nil {
		return &protocol.RevertError{Op: op, Reason: "transaction failed but call replay succeeded"}
	}
	return wrapRevert(op, err)
}

type session struct {
	client *Client
	actor  common.Address
	closed bool
}

func (s *session) Actor() common.Address {
	return s.actor
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.client.stopImpersonating(context.Background(), s.actor)
	if err != nil {
		s.client.cfg.Logger.Warn("failed to stop impersonation", "actor", s.actor.Hex(), "err", err)
		return err
	}
	s.client.cfg.Logger.Debug("impersonation stopped", "actor", s.actor.Hex())
	return nil
}

func (s *session) send(ctx context.Context, op string, to common.Address, contract *abi.ABI, method string, args ...any) error {
	if s.closed {
		return fmt.Errorf("session for %s is closed", s.actor.Hex())
	}
	calldata, err := contract.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("packing %s: %w", method, err)
	}
	return s.client.sendTransaction(ctx, op, s.actor, to, calldata)
}

func (s *session) ApprovePool(ctx context.Context, token common.Address, amount *big.Int) error {
	return s.send(ctx, "approve", token, &s.client.abis.erc20, "approve", s.client.cfg.LendingPool, amount)
}

func (s *session) Deposit(ctx context.Context, asset common.Address, amount *big.Int, onBehalfOf common.Address) error {
	return s.send(ctx, "deposit", s.client.cfg.LendingPool, &s.client.abis.lendingPool, "deposit",
		asset, amount, onBehalfOf, uint16(0))
}

func (s *session) Borrow(ctx context.Context, asset common.Address, amount *big.Int, mode protocol.RateMode, onBehalfOf common.Address) error {
	return s.send(ctx, "borrow", s.client.cfg.LendingPool, &s.client.abis.lendingPool, "borrow",
		asset, amount, big.NewInt(int64(mode)), uint16(0), onBehalfOf)
}

func (s *session) Repay(ctx context.Context, asset common.Address, amount *big.Int, mode protocol.RateMode, onBehalfOf common.Address) error {
	return s.send(ctx, "repay", s.client.cfg.LendingPool, &s.client.abis.lendingPool, "repay",
		asset, amount, big.NewInt(int64(mode)), onBehalfOf)
}

func (s *session) Withdraw(ctx context.Context, asset common.Address, amount *big.Int, to common.Address) error {
	return s.send(ctx, "withdraw", s.client.cfg.LendingPool, &s.client.abis.lendingPool, "withdraw",
		asset, amount, to)
}
