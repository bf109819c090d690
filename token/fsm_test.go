package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar-connect/token-sdk-go/errors"
)

func TestValidateTransition_HappyPath(t *testing.T) {
	path := []PurchasePhase{
		PhaseIdle,
		PhaseChecksPassed,
		PhaseMinted,
		PhasePaymentForwarded,
		PhaseEventEmitted,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, ValidateTransition(path[i], path[i+1]))
	}
}

func TestValidateTransition_CollapseToFailed(t *testing.T) {
	// Every phase before the payment forward may fail
	for _, from := range []PurchasePhase{PhaseIdle, PhaseChecksPassed, PhaseMinted} {
		assert.NoError(t, ValidateTransition(from, PhaseFailed))
	}

	// Once the payment is forwarded the purchase can no longer fail
	err := ValidateTransition(PhasePaymentForwarded, PhaseFailed)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.TRANSITION_INVALID))
}

func TestValidateTransition_RejectsSkipsAndReversals(t *testing.T) {
	cases := []struct{ from, to PurchasePhase }{
		{PhaseIdle, PhaseMinted},
		{PhaseIdle, PhaseEventEmitted},
		{PhaseChecksPassed, PhasePaymentForwarded},
		{PhaseMinted, PhaseChecksPassed},
		{PhaseEventEmitted, PhaseIdle},
		{PhaseFailed, PhaseChecksPassed},
	}

	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.True(t, errors.HasCode(err, errors.TRANSITION_INVALID))
	}
}

func TestValidateTransition_UnknownPhase(t *testing.T) {
	err := ValidateTransition(PurchasePhase("limbo"), PhaseMinted)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.TRANSITION_INVALID))
}

func TestPurchaseState_AdvanceEnforcesOrder(t *testing.T) {
	ps := newPurchaseState()
	assert.Equal(t, PhaseIdle, ps.phase)

	require.NoError(t, ps.advance(PhaseChecksPassed))
	require.Error(t, ps.advance(PhaseEventEmitted))
	assert.Equal(t, PhaseChecksPassed, ps.phase)

	require.NoError(t, ps.advance(PhaseMinted))
	require.NoError(t, ps.advance(PhasePaymentForwarded))
	require.NoError(t, ps.advance(PhaseEventEmitted))
	assert.True(t, isTerminal(ps.phase))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, isTerminal(PhaseEventEmitted))
	assert.True(t, isTerminal(PhaseFailed))
	assert.False(t, isTerminal(PhaseIdle))
	assert.False(t, isTerminal(PhaseMinted))
}
