// Package token implements the feature-gated token engine: construction,
// owner-gated pause and mint, holder burn, and the time-boxed public sale.
//
// The purchase finite state machine (FSM) below enforces the ordering of a
// purchase: all gate checks complete before any mutation, the mint precedes
// the payment forward, and the event is emitted last. The whole sequence is
// one atomic unit from the caller's perspective; no intermediate phase is
// ever persisted.
package token

import (
	"fmt"

	"github.com/stellar-connect/token-sdk-go/errors"
)

// PurchasePhase names a step in the purchase pipeline.
type PurchasePhase string

const (
	PhaseIdle             PurchasePhase = "idle"
	PhaseChecksPassed     PurchasePhase = "checks_passed"
	PhaseMinted           PurchasePhase = "minted"
	PhasePaymentForwarded PurchasePhase = "payment_forwarded"
	PhaseEventEmitted     PurchasePhase = "event_emitted"
	PhaseFailed           PurchasePhase = "failed"
)

// legalTransitions defines the allowed phase transitions for a purchase.
// Each key is a "from" phase, and the value is a set of valid "to" phases.
//
// Terminal phases (event_emitted, failed) have no outgoing transitions.
// Every non-terminal phase may collapse to failed at its first failed step.
var legalTransitions = map[PurchasePhase]map[PurchasePhase]bool{
	PhaseIdle: {
		PhaseChecksPassed: true,
		PhaseFailed:       true,
	},
	PhaseChecksPassed: {
		PhaseMinted: true,
		PhaseFailed: true,
	},
	PhaseMinted: {
		PhasePaymentForwarded: true,
		PhaseFailed:           true,
	},
	PhasePaymentForwarded: {
		PhaseEventEmitted: true,
	},
	// Terminal phases have no outgoing transitions
	PhaseEventEmitted: {},
	PhaseFailed:       {},
}

// ValidateTransition checks if a phase transition from "from" to "to" is
// legal for the purchase pipeline.
//
// Returns nil if the transition is valid, or an error with code
// TRANSITION_INVALID if the transition is not allowed.
func ValidateTransition(from, to PurchasePhase) error {
	validToPhases, exists := legalTransitions[from]
	if !exists {
		return errors.NewTokenError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("unknown source phase: %s", from),
			nil,
		)
	}

	if !validToPhases[to] {
		return errors.NewTokenError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("illegal transition from %s to %s", from, to),
			nil,
		)
	}

	return nil
}

// purchaseState tracks the phase of one in-flight purchase. It exists only
// for the duration of a Buy call.
type purchaseState struct {
	phase PurchasePhase
}

func newPurchaseState() *purchaseState {
	return &purchaseState{phase: PhaseIdle}
}

// advance moves to the next phase after validating the transition.
func (p *purchaseState) advance(next PurchasePhase) error {
	if err := ValidateTransition(p.phase, next); err != nil {
		return err
	}
	p.phase = next
	return nil
}

func isTerminal(phase PurchasePhase) bool {
	switch phase {
	case PhaseEventEmitted, PhaseFailed:
		return true
	default:
		return false
	}
}
