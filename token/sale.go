package token

import (
	"context"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/core/account"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// BuyRequest is a public purchase attempt: the buyer, the number of units
// requested, and the native payment attached to the call.
type BuyRequest struct {
	Buyer stellartoken.Account

	// Amount is the number of units to purchase.
	Amount *uint256.Int

	// Payment is the attached native payment. The entire payment is
	// forwarded to the owner on success, even when it exceeds the price
	// owed; no overpayment refund is computed.
	Payment *uint256.Int
}

// SetSaleOptions atomically replaces the whole sale configuration and emits
// a SaleOptionsSet event. Only the owner may call it.
//
// The Sale feature flag is deliberately not checked here: the owner may
// stage sale parameters on a token whose sale is disabled. Buy is the only
// gate that consults the flag.
func (t *Token) SetSaleOptions(ctx context.Context, caller stellartoken.Account, opts stellartoken.SaleOptions) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if opts.Price == nil || opts.MaxSupply == nil {
		return errors.NewTokenError(errors.INVALID_AMOUNT, "price and max supply are required", nil)
	}

	stored := opts.Clone()
	t.saleMu.Lock()
	t.sale = stored
	t.saleMu.Unlock()

	evt := t.newEvent(stellartoken.EventSaleOptionsSet)
	evt.Options = stored.Clone()
	t.hooks.Trigger(stellartoken.EventSaleOptionsSet, evt)
	return nil
}

// Buy validates a purchase against the sale configuration and the ledger,
// mints the purchased amount to the buyer, forwards the full attached
// payment to the owner, and emits a TokenBought event. It returns the
// purchased amount.
//
// The gates run strictly before any mutation, each with a distinct failure
// reason:
//
//  1. Sale feature enabled and options configured, else FEATURE_DISABLED.
//  2. Host time inside [StartsAt, EndsAt], inclusive, else NOT_ON_SALE.
//  3. Payment covers price times amount, else INSUFFICIENT_FUNDS.
//  4. New total supply within max supply, else INSUFFICIENT_SUPPLY.
//
// A failed mint forwards nothing; a failed forward burns the mint back, so
// a rejected purchase never changes supply or balances.
func (t *Token) Buy(ctx context.Context, req BuyRequest) (*uint256.Int, error) {
	ps := newPurchaseState()

	opts := t.currentSale()
	if !t.features.Sale || opts == nil || opts.Price == nil {
		return nil, t.fail(ps, errors.NewTokenError(errors.FEATURE_DISABLED, "sale feature not enabled", nil))
	}
	if err := account.Validate(req.Buyer); err != nil {
		return nil, t.fail(ps, err)
	}
	if req.Amount == nil {
		return nil, t.fail(ps, errors.NewTokenError(errors.INVALID_AMOUNT, "purchase amount is required", nil))
	}

	now := t.host.Now()
	if now.Before(opts.StartsAt) || now.After(opts.EndsAt) {
		return nil, t.fail(ps, errors.NewTokenError(errors.NOT_ON_SALE, "current time is outside the sale window", nil))
	}

	payment := req.Payment
	if payment == nil {
		payment = uint256.NewInt(0)
	}
	owed, overflow := new(uint256.Int).MulOverflow(opts.Price, req.Amount)
	if overflow || payment.Lt(owed) {
		return nil, t.fail(ps, errors.NewTokenError(errors.INSUFFICIENT_FUNDS, "attached payment does not cover the price", nil))
	}

	supply, err := t.ledger.TotalSupply(ctx)
	if err != nil {
		return nil, t.fail(ps, err)
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, req.Amount)
	if overflow || newSupply.Gt(opts.MaxSupply) {
		return nil, t.fail(ps, errors.NewTokenError(errors.INSUFFICIENT_SUPPLY, "purchase would exceed max supply", nil))
	}

	if err := ps.advance(PhaseChecksPassed); err != nil {
		return nil, err
	}

	// The event ID doubles as the settlement memo so the forwarded payment
	// can be matched to this purchase off-process.
	eventID := uuid.New().String()

	if err := t.ledger.Mint(ctx, req.Buyer, req.Amount); err != nil {
		return nil, t.fail(ps, err)
	}
	if err := ps.advance(PhaseMinted); err != nil {
		return nil, err
	}

	if err := t.host.ForwardPayment(ctx, t.owner, payment, eventID); err != nil {
		// Undo the mint so the failed purchase leaves no partial state.
		if burnErr := t.ledger.Burn(ctx, req.Buyer, req.Amount); burnErr != nil {
			return nil, t.fail(ps, errors.NewTokenError(errors.PAYMENT_FORWARD_FAILED, "payment forward failed and mint rollback failed", burnErr))
		}
		return nil, t.fail(ps, errors.NewTokenError(errors.PAYMENT_FORWARD_FAILED, "failed to forward payment to owner", err))
	}
	if err := ps.advance(PhasePaymentForwarded); err != nil {
		return nil, err
	}

	evt := &stellartoken.Event{
		ID:      eventID,
		Type:    stellartoken.EventTokenBought,
		At:      now,
		Account: req.Buyer,
		Amount:  new(uint256.Int).Set(req.Amount),
		Payment: new(uint256.Int).Set(payment),
	}
	t.hooks.Trigger(stellartoken.EventTokenBought, evt)
	if err := ps.advance(PhaseEventEmitted); err != nil {
		return nil, err
	}

	return new(uint256.Int).Set(req.Amount), nil
}

// fail collapses the purchase to its error terminal and returns err.
func (t *Token) fail(ps *purchaseState, err error) error {
	ps.phase = PhaseFailed
	return err
}

// currentSale snapshots the sale configuration without the not-configured
// error of saleOptions.
func (t *Token) currentSale() *stellartoken.SaleOptions {
	t.saleMu.RLock()
	defer t.saleMu.RUnlock()

	return t.sale.Clone()
}
