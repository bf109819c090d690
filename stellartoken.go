// Package stellartoken provides a Go SDK for operating a feature-gated
// fungible token. It implements the accounting core (supply and balance
// bookkeeping rules, owner-gated minting and pausing, holder burning, and a
// time-boxed public sale) while delegating persistence, payment rails, and
// key management to the developer.
package stellartoken

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// Account identifies a token holder. Values are Stellar addresses (G...);
// the zero value means "no account".
type Account string

// Metadata holds the descriptive token fields. They are fixed at
// construction and never re-derived.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// FeatureFlags selects which optional behaviors are active. The flags are
// fixed at construction; there is no way to enable a feature later.
type FeatureFlags struct {
	// Pausable allows the owner to toggle the ledger's pause switch.
	Pausable bool

	// Mintable allows the owner to mint new supply to any account.
	Mintable bool

	// Burnable allows any holder to burn from their own balance.
	Burnable bool

	// Sale enables the public purchase operation once sale options are set.
	Sale bool
}

// OwnerGated reports whether any flag requires an owner account. The owner
// is recorded at construction iff this is true. The sale counts: both sale
// configuration and proceeds forwarding need an owner.
func (f FeatureFlags) OwnerGated() bool {
	return f.Mintable || f.Pausable || f.Sale
}

// SaleOptions is the sale configuration record. It is replaced as a whole by
// SetSaleOptions; a nil *SaleOptions means the sale was never configured.
type SaleOptions struct {
	// Price is the payment owed per purchased unit.
	Price *uint256.Int

	// MaxSupply bounds the cumulative total supply across the entire
	// ledger, not just sale-minted amounts.
	MaxSupply *uint256.Int

	// StartsAt and EndsAt bound the sale window, inclusive on both ends.
	StartsAt time.Time
	EndsAt   time.Time
}

// Clone returns a deep copy so callers cannot mutate stored options.
// Nil receivers and nil amount fields are carried through unchanged.
func (o *SaleOptions) Clone() *SaleOptions {
	if o == nil {
		return nil
	}
	return &SaleOptions{
		Price:     cloneAmount(o.Price),
		MaxSupply: cloneAmount(o.MaxSupply),
		StartsAt:  o.StartsAt,
		EndsAt:    o.EndsAt,
	}
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return new(uint256.Int).Set(v)
}

// Ledger is the persistence interface for balance, allowance, and supply
// bookkeeping. The SDK calls these methods during state transitions; the
// developer implements this interface against their own storage. A reference
// in-memory implementation lives in store/memory.
//
// Implementations must maintain: total supply equals the sum of all balances
// at all times; Mint increases both; Burn decreases both; Transfer and
// TransferFrom are rejected while the ledger is paused.
type Ledger interface {
	// TotalSupply returns the current aggregate supply.
	TotalSupply(ctx context.Context) (*uint256.Int, error)

	// BalanceOf returns the balance of an account (zero if unknown).
	BalanceOf(ctx context.Context, account Account) (*uint256.Int, error)

	// Allowance returns the amount a spender may move on behalf of owner.
	Allowance(ctx context.Context, owner, spender Account) (*uint256.Int, error)

	// Mint credits amount to account and grows total supply.
	Mint(ctx context.Context, account Account, amount *uint256.Int) error

	// Burn debits amount from account and shrinks total supply.
	// Fails if the account balance is insufficient.
	Burn(ctx context.Context, account Account, amount *uint256.Int) error

	// Transfer moves amount between accounts. Rejected while paused.
	Transfer(ctx context.Context, from, to Account, amount *uint256.Int) error

	// Approve sets the allowance of spender over owner's balance.
	Approve(ctx context.Context, owner, spender Account, amount *uint256.Int) error

	// TransferFrom moves amount from from to to, spending spender's
	// allowance. Rejected while paused.
	TransferFrom(ctx context.Context, spender, from, to Account, amount *uint256.Int) error

	// Paused reports the pause switch consulted by the transfer path.
	Paused(ctx context.Context) (bool, error)

	// SetPaused flips the pause switch.
	SetPaused(ctx context.Context, paused bool) error
}

// Host supplies the runtime collaborators the token core cannot provide for
// itself: wall-clock time and native currency settlement. Caller identity
// and attached payments are per-call inputs carried on operation requests.
//
// A deterministic implementation for tests lives in host/memory; a
// Horizon-backed implementation lives in host/stellar.
type Host interface {
	// Now returns the current time used for sale window checks.
	Now() time.Time

	// ForwardPayment settles native currency to the given account. The
	// memo carries the purchase event ID so payments can be matched to
	// purchases off-process.
	ForwardPayment(ctx context.Context, to Account, amount *uint256.Int, memo string) error
}

// Signer signs Stellar transaction envelopes for the proceeds-forwarding
// host. Implementations live in the signers package.
type Signer interface {
	// PublicKey returns the Stellar address (G...) of the signing key.
	PublicKey() string

	// SignTransaction signs a base64 transaction envelope XDR for the
	// given network and returns the signed envelope as base64 XDR.
	SignTransaction(ctx context.Context, xdr string, networkPassphrase string) (string, error)
}

// EventType names a token lifecycle event.
type EventType string

const (
	// EventSaleOptionsSet is emitted when the owner replaces the sale
	// configuration. The event carries the new options.
	EventSaleOptionsSet EventType = "sale:options_set"

	// EventTokenBought is emitted after a successful purchase, carrying
	// the buyer and the purchased amount.
	EventTokenBought EventType = "sale:token_bought"

	// EventMinted is emitted after an owner-initiated mint.
	EventMinted EventType = "token:minted"

	// EventBurned is emitted after a holder burns their own balance.
	EventBurned EventType = "token:burned"

	// EventPauseChanged is emitted after the owner toggles the pause
	// switch. Paused carries the new state.
	EventPauseChanged EventType = "token:pause_changed"
)

// Event is the canonical lifecycle event record passed to hooks. Fields
// beyond ID, Type, and At are populated per event type.
type Event struct {
	ID   string
	Type EventType
	At   time.Time

	// Account is the buyer, mint recipient, or burner.
	Account Account

	// Amount is the token amount bought, minted, or burned.
	Amount *uint256.Int

	// Payment is the full attached payment forwarded to the owner on a
	// purchase (which may exceed the price owed).
	Payment *uint256.Int

	// Options is the new sale configuration for EventSaleOptionsSet.
	Options *SaleOptions

	// Paused is the new pause state for EventPauseChanged.
	Paused bool
}
