package token

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/core/account"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// Config carries the construction-time inputs. Everything here is fixed for
// the lifetime of the token; only sale options remain mutable afterwards.
type Config struct {
	Metadata stellartoken.Metadata
	Features stellartoken.FeatureFlags

	// InitialSupply is minted to the deployer unconditionally, regardless
	// of the Mintable flag. A nil value means zero.
	InitialSupply *uint256.Int

	// Deployer receives the initial supply and becomes the owner when any
	// owner-gated feature is enabled.
	Deployer stellartoken.Account
}

// Token is the feature-gated token engine. It owns the governance rules and
// the sale state machine, and delegates bookkeeping to the Ledger and
// settlement to the Host.
type Token struct {
	ledger stellartoken.Ledger
	host   stellartoken.Host
	hooks  *HookRegistry

	metadata stellartoken.Metadata
	features stellartoken.FeatureFlags
	owner    stellartoken.Account // empty when no owner-gated feature is enabled

	saleMu sync.RWMutex
	sale   *stellartoken.SaleOptions // nil until SetSaleOptions is called
}

// New constructs a token: mints the initial supply to the deployer, fixes
// metadata and feature flags, and records the deployer as owner iff an
// owner-gated feature (pause, mint, sale) is enabled.
//
// A failed initial mint aborts construction; there is no recoverable path at
// construction time.
func New(ctx context.Context, ledger stellartoken.Ledger, host stellartoken.Host, cfg Config, hooks *HookRegistry) (*Token, error) {
	if ledger == nil {
		return nil, errors.NewTokenError(errors.CONSTRUCTION_FAILED, "ledger is required", nil)
	}
	if host == nil {
		return nil, errors.NewTokenError(errors.CONSTRUCTION_FAILED, "host is required", nil)
	}
	if err := account.Validate(cfg.Deployer); err != nil {
		return nil, err
	}
	if hooks == nil {
		hooks = NewHookRegistry()
	}

	initial := cfg.InitialSupply
	if initial == nil {
		initial = uint256.NewInt(0)
	}

	if err := ledger.Mint(ctx, cfg.Deployer, initial); err != nil {
		return nil, errors.NewTokenError(errors.CONSTRUCTION_FAILED, "initial mint failed", err)
	}

	t := &Token{
		ledger:   ledger,
		host:     host,
		hooks:    hooks,
		metadata: cfg.Metadata,
		features: cfg.Features,
	}
	if cfg.Features.OwnerGated() {
		t.owner = cfg.Deployer
	}
	return t, nil
}

// Hooks returns the lifecycle hook registry.
func (t *Token) Hooks() *HookRegistry { return t.hooks }

// Metadata returns the descriptive token fields fixed at construction.
func (t *Token) Metadata() stellartoken.Metadata { return t.metadata }

// IsSale reports whether the public sale feature was enabled at construction.
func (t *Token) IsSale() bool { return t.features.Sale }

// IsPausable reports whether the pause feature was enabled at construction.
func (t *Token) IsPausable() bool { return t.features.Pausable }

// IsMintable reports whether the mint feature was enabled at construction.
func (t *Token) IsMintable() bool { return t.features.Mintable }

// IsBurnable reports whether the burn feature was enabled at construction.
func (t *Token) IsBurnable() bool { return t.features.Burnable }

// Owner returns the owner account and whether one was recorded.
func (t *Token) Owner() (stellartoken.Account, bool) {
	return t.owner, t.owner != ""
}

// ChangeState toggles the ledger pause switch. Requires the Pausable feature
// and the owner as caller. Calling it twice returns to the original state.
func (t *Token) ChangeState(ctx context.Context, caller stellartoken.Account) error {
	if !t.features.Pausable {
		return errors.NewTokenError(errors.FEATURE_DISABLED, "pause feature not enabled", nil)
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	paused, err := t.ledger.Paused(ctx)
	if err != nil {
		return err
	}
	if err := t.ledger.SetPaused(ctx, !paused); err != nil {
		return err
	}

	evt := t.newEvent(stellartoken.EventPauseChanged)
	evt.Paused = !paused
	t.hooks.Trigger(stellartoken.EventPauseChanged, evt)
	return nil
}

// MintTo mints amount to the given account. Requires the Mintable feature
// and the owner as caller. The sale's max supply does not apply here; only
// the ledger's own overflow checks bound owner-initiated minting.
func (t *Token) MintTo(ctx context.Context, caller, to stellartoken.Account, amount *uint256.Int) error {
	if !t.features.Mintable {
		return errors.NewTokenError(errors.FEATURE_DISABLED, "mint feature not enabled", nil)
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := account.Validate(to); err != nil {
		return err
	}

	// Ledger failures (overflow) propagate unchanged.
	if err := t.ledger.Mint(ctx, to, amount); err != nil {
		return err
	}

	evt := t.newEvent(stellartoken.EventMinted)
	evt.Account = to
	evt.Amount = new(uint256.Int).Set(amount)
	t.hooks.Trigger(stellartoken.EventMinted, evt)
	return nil
}

// Burn destroys amount from the caller's own balance. Requires only the
// Burnable feature; there is no owner gate, any holder may burn what they
// hold. Insufficient balance is a ledger-level error and propagates
// unchanged.
func (t *Token) Burn(ctx context.Context, caller stellartoken.Account, amount *uint256.Int) error {
	if !t.features.Burnable {
		return errors.NewTokenError(errors.FEATURE_DISABLED, "burn feature not enabled", nil)
	}

	if err := t.ledger.Burn(ctx, caller, amount); err != nil {
		return err
	}

	evt := t.newEvent(stellartoken.EventBurned)
	evt.Account = caller
	evt.Amount = new(uint256.Int).Set(amount)
	t.hooks.Trigger(stellartoken.EventBurned, evt)
	return nil
}

// SalePrice returns the configured price per unit, or SALE_NOT_CONFIGURED if
// sale options were never set.
func (t *Token) SalePrice() (*uint256.Int, error) {
	opts, err := t.saleOptions()
	if err != nil {
		return nil, err
	}
	return opts.Price, nil
}

// MaxSupply returns the configured supply cap, or SALE_NOT_CONFIGURED if
// sale options were never set.
func (t *Token) MaxSupply() (*uint256.Int, error) {
	opts, err := t.saleOptions()
	if err != nil {
		return nil, err
	}
	return opts.MaxSupply, nil
}

// StartsAt returns the sale window opening time, or SALE_NOT_CONFIGURED if
// sale options were never set.
func (t *Token) StartsAt() (time.Time, error) {
	opts, err := t.saleOptions()
	if err != nil {
		return time.Time{}, err
	}
	return opts.StartsAt, nil
}

// EndsAt returns the sale window closing time, or SALE_NOT_CONFIGURED if
// sale options were never set.
func (t *Token) EndsAt() (time.Time, error) {
	opts, err := t.saleOptions()
	if err != nil {
		return time.Time{}, err
	}
	return opts.EndsAt, nil
}

// SaleOptions returns a copy of the full sale configuration, or
// SALE_NOT_CONFIGURED if it was never set.
func (t *Token) SaleOptions() (*stellartoken.SaleOptions, error) {
	return t.saleOptions()
}

// requireOwner is the single authorization predicate shared by every
// owner-gated operation: value equality between the caller and the owner
// recorded at construction.
func (t *Token) requireOwner(caller stellartoken.Account) error {
	if t.owner == "" {
		return errors.NewTokenError(errors.OWNER_UNSET, "no owner was recorded at construction", nil)
	}
	if caller != t.owner {
		return errors.NewTokenError(errors.NOT_OWNER, "caller is not the owner", nil)
	}
	return nil
}

func (t *Token) saleOptions() (*stellartoken.SaleOptions, error) {
	t.saleMu.RLock()
	defer t.saleMu.RUnlock()

	if t.sale == nil {
		return nil, errors.NewTokenError(errors.SALE_NOT_CONFIGURED, "sale options were never set", nil)
	}
	return t.sale.Clone(), nil
}

func (t *Token) newEvent(typ stellartoken.EventType) *stellartoken.Event {
	return &stellartoken.Event{
		ID:   uuid.New().String(),
		Type: typ,
		At:   t.host.Now(),
	}
}
