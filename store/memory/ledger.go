// Package memory provides in-memory implementations of store interfaces.
// The Ledger implementation keeps balances and allowances in maps guarded by
// a sync.RWMutex. It is suitable for examples, testing, and simulations
// without persistent storage requirements.
package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// Ledger is an in-memory implementation of stellartoken.Ledger.
// Total supply always equals the sum of all balances: Mint and Burn adjust
// both under the same lock, and no other path changes either.
type Ledger struct {
	supply     *uint256.Int
	balances   map[stellartoken.Account]*uint256.Int
	allowances map[stellartoken.Account]map[stellartoken.Account]*uint256.Int
	paused     bool
	mu         sync.RWMutex
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		supply:     uint256.NewInt(0),
		balances:   make(map[stellartoken.Account]*uint256.Int),
		allowances: make(map[stellartoken.Account]map[stellartoken.Account]*uint256.Int),
	}
}

// TotalSupply returns the current aggregate supply.
func (l *Ledger) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(uint256.Int).Set(l.supply), nil
}

// BalanceOf returns the balance of an account, zero for unknown accounts.
func (l *Ledger) BalanceOf(ctx context.Context, account stellartoken.Account) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if bal, ok := l.balances[account]; ok {
		return new(uint256.Int).Set(bal), nil
	}
	return uint256.NewInt(0), nil
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(ctx context.Context, owner, spender stellartoken.Account) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if spenders, ok := l.allowances[owner]; ok {
		if allowed, ok := spenders[spender]; ok {
			return new(uint256.Int).Set(allowed), nil
		}
	}
	return uint256.NewInt(0), nil
}

// Mint credits amount to account and grows total supply by the same amount.
// Returns SUPPLY_OVERFLOW if the new supply would not fit in 256 bits.
func (l *Ledger) Mint(ctx context.Context, account stellartoken.Account, amount *uint256.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	newSupply, overflow := new(uint256.Int).AddOverflow(l.supply, amount)
	if overflow {
		return errors.NewLedgerError(errors.SUPPLY_OVERFLOW, "mint would overflow total supply", nil)
	}

	bal := l.balanceLocked(account)
	// Balance overflow is implied impossible once supply fits, since the
	// supply bounds every balance.
	l.supply = newSupply
	l.balances[account] = new(uint256.Int).Add(bal, amount)
	return nil
}

// Burn debits amount from account and shrinks total supply by the same
// amount. Returns INSUFFICIENT_BALANCE if the account holds less than amount.
func (l *Ledger) Burn(ctx context.Context, account stellartoken.Account, amount *uint256.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balanceLocked(account)
	if bal.Lt(amount) {
		return errors.NewLedgerError(errors.INSUFFICIENT_BALANCE, "burn amount exceeds balance", nil)
	}

	l.supply = new(uint256.Int).Sub(l.supply, amount)
	l.balances[account] = new(uint256.Int).Sub(bal, amount)
	return nil
}

// Transfer moves amount between accounts. Rejected while paused.
func (l *Ledger) Transfer(ctx context.Context, from, to stellartoken.Account, amount *uint256.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.transferLocked(from, to, amount)
}

// Approve sets the allowance of spender over owner's balance, replacing any
// previous allowance.
func (l *Ledger) Approve(ctx context.Context, owner, spender stellartoken.Account, amount *uint256.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[stellartoken.Account]*uint256.Int)
		l.allowances[owner] = spenders
	}
	spenders[spender] = new(uint256.Int).Set(amount)
	return nil
}

// TransferFrom moves amount from from to to, spending spender's allowance.
// Rejected while paused or when the allowance is insufficient.
func (l *Ledger) TransferFrom(ctx context.Context, spender, from, to stellartoken.Account, amount *uint256.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := uint256.NewInt(0)
	spenders, hasSpenders := l.allowances[from]
	if hasSpenders {
		if a, ok := spenders[spender]; ok {
			allowed = a
		}
	}
	if allowed.Lt(amount) {
		return errors.NewLedgerError(errors.INSUFFICIENT_ALLOWANCE, "transfer amount exceeds allowance", nil)
	}

	if err := l.transferLocked(from, to, amount); err != nil {
		return err
	}

	// A zero-amount spend can pass the allowance check without any recorded
	// allowance; there is nothing to decrement then.
	if hasSpenders {
		spenders[spender] = new(uint256.Int).Sub(allowed, amount)
	}
	return nil
}

// Paused reports the pause switch consulted by the transfer path.
func (l *Ledger) Paused(ctx context.Context) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.paused, nil
}

// SetPaused flips the pause switch.
func (l *Ledger) SetPaused(ctx context.Context, paused bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.paused = paused
	return nil
}

// transferLocked performs the shared transfer mechanics. Callers hold l.mu.
func (l *Ledger) transferLocked(from, to stellartoken.Account, amount *uint256.Int) error {
	if l.paused {
		return errors.NewLedgerError(errors.TRANSFERS_PAUSED, "transfers are paused", nil)
	}

	fromBal := l.balanceLocked(from)
	if fromBal.Lt(amount) {
		return errors.NewLedgerError(errors.INSUFFICIENT_BALANCE, "transfer amount exceeds balance", nil)
	}

	// A self-transfer is a no-op; the stored balance values alias, so the
	// debit and credit must not be applied separately.
	if from == to {
		return nil
	}

	toBal := l.balanceLocked(to)
	l.balances[from] = new(uint256.Int).Sub(fromBal, amount)
	l.balances[to] = new(uint256.Int).Add(toBal, amount)
	return nil
}

// balanceLocked returns the stored balance without copying. Callers hold l.mu.
func (l *Ledger) balanceLocked(account stellartoken.Account) *uint256.Int {
	if bal, ok := l.balances[account]; ok {
		return bal
	}
	return uint256.NewInt(0)
}

func validAmount(amount *uint256.Int) error {
	if amount == nil {
		return errors.NewLedgerError(errors.INVALID_AMOUNT, "amount is nil", nil)
	}
	return nil
}

// Verify that Ledger implements stellartoken.Ledger
var _ stellartoken.Ledger = (*Ledger)(nil)
