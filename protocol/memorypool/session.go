package memorypool

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/listing-verifier-go/protocol"
)

// Pool validation reason codes, matching the protocol's error literal
// convention.
const (
	codeNoActiveReserve          = "2"
	codeReserveFrozen            = "3"
	codeBorrowingNotEnabled      = "5"
	codeStableBorrowRateDisabled = protocol.ErrCodeStableBorrowingNotEnabled
)

// Impersonate opens an action session acting as actor. Sessions are
// non-reentrant: a second Impersonate before Close fails.
func (p *Pool) Impersonate(ctx context.Context, actor common.Address) (protocol.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionActive {
		return nil, errors.New("memorypool: an impersonation session is already active")
	}
	p.sessionActive = true
	return &session{pool: p, actor: actor}, nil
}

type session struct {
	pool   *Pool
	actor  common.Address
	closed bool
}

func (s *session) Actor() common.Address {
	return s.actor
}

func (s *session) Close() error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.pool.sessionActive = false
	return nil
}

func (s *session) guard() error {
	if s.closed {
		return errors.New("memorypool: session is closed")
	}
	return nil
}

func (s *session) ApprovePool(ctx context.Context, token common.Address, amount *big.Int) error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.pool.setAllowance(token, s.actor, amount)
	return nil
}

func (s *session) Deposit(ctx context.Context, asset common.Address, amount *big.Int, onBehalfOf common.Address) error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	st, err := s.pool.findReserve(asset)
	if err != nil {
		return err
	}
	if err := checkUsable(st, "deposit"); err != nil {
		return err
	}
	if err := s.pool.spendAllowance(asset, s.actor, amount); err != nil {
		return &protocol.RevertError{Op: "deposit", Code: "", Reason: err.Error()}
	}
	if s.pool.balance(asset, s.actor).Cmp(amount) < 0 {
		return &protocol.RevertError{Op: "deposit", Code: "", Reason: "transfer amount exceeds balance"}
	}
	s.pool.debit(asset, s.actor, amount)
	s.pool.mint(st.Tokens.AToken, onBehalfOf, amount)
	return nil
}

func (s *session) Borrow(ctx context.Context, asset common.Address, amount *big.Int, mode protocol.RateMode, onBehalfOf common.Address) error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	st, err := s.pool.findReserve(asset)
	if err != nil {
		return err
	}
	if err := checkUsable(st, "borrow"); err != nil {
		return err
	}
	if !st.Config.BorrowingEnabled {
		return &protocol.RevertError{Op: "borrow", Code: codeBorrowingNotEnabled, Reason: "borrowing is not enabled"}
	}

	var debtToken common.Address
	switch mode {
	case protocol.RateModeStable:
		if !st.Config.StableBorrowEnabled {
			return &protocol.RevertError{Op: "borrow", Code: codeStableBorrowRateDisabled, Reason: "stable borrowing is not enabled"}
		}
		debtToken = st.Tokens.StableDebtToken
	case protocol.RateModeVariable:
		debtToken = st.Tokens.VariableDebtToken
	default:
		return fmt.Errorf("memorypool: invalid rate mode %d", mode)
	}

	s.pool.mint(debtToken, onBehalfOf, amount)
	s.pool.credit(asset, s.actor, amount)
	return nil
}

func (s *session) Repay(ctx context.Context, asset common.Address, amount *big.Int, mode protocol.RateMode, onBehalfOf common.Address) error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	st, err := s.pool.findReserve(asset)
	if err != nil {
		return err
	}

	var debtToken common.Address
	switch mode {
	case protocol.RateModeStable:
		debtToken = st.Tokens.StableDebtToken
	case protocol.RateModeVariable:
		debtToken = st.Tokens.VariableDebtToken
	default:
		return fmt.Errorf("memorypool: invalid rate mode %d", mode)
	}

	// Repayment settles min(amount, outstanding debt): the debt balance
	// floors at zero.
	debt := s.pool.balance(debtToken, onBehalfOf)
	settled := amount
	if debt.Cmp(amount) < 0 {
		settled = debt
	}
	if err := s.pool.spendAllowance(asset, s.actor, settled); err != nil {
		return &protocol.RevertError{Op: "repay", Code: "", Reason: err.Error()}
	}
	if s.pool.balance(asset, s.actor).Cmp(settled) < 0 {
		return &protocol.RevertError{Op: "repay", Code: "", Reason: "transfer amount exceeds balance"}
	}
	s.pool.debit(asset, s.actor, settled)
	s.pool.debit(debtToken, onBehalfOf, settled)
	return nil
}

func (s *session) Withdraw(ctx context.Context, asset common.Address, amount *big.Int, to common.Address) error {
	s.pool.mu.Lock()
	defer s.pool.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	st, err := s.pool.findReserve(asset)
	if err != nil {
		return err
	}

	// The max-uint sentinel drains the whole position; any oversized amount
	// floors at zero either way.
	requested := amount
	if amount.Cmp(maxUint256) == 0 {
		requested = s.pool.balance(st.Tokens.AToken, s.actor)
	}
	redeemed := s.pool.debit(st.Tokens.AToken, s.actor, requested)
	s.pool.credit(asset, to, redeemed)
	return nil
}

func checkUsable(st *ReserveState, op string) error {
	if !st.Config.IsActive {
		return &protocol.RevertError{Op: op, Code: codeNoActiveReserve, Reason: "reserve is not active"}
	}
	if st.Config.IsFrozen {
		return &protocol.RevertError{Op: op, Code: codeReserveFrozen, Reason: "reserve is frozen"}
	}
	return nil
}
