package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_FormatIncludesLayerCodeAndCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewConfigError(CONFIG_READ_FAILED, "failed to read token.toml", cause)

	msg := err.Error()
	assert.Contains(t, msg, "config")
	assert.Contains(t, msg, "CONFIG_READ_FAILED")
	assert.Contains(t, msg, "failed to read token.toml")
	assert.Contains(t, msg, "disk full")
}

func TestConstructors_AssignLayers(t *testing.T) {
	cases := []struct {
		err   *TokenError
		layer string
	}{
		{NewLedgerError(INSUFFICIENT_BALANCE, "", nil), "ledger"},
		{NewTokenError(NOT_OWNER, "", nil), "token"},
		{NewHostError(SUBMISSION_FAILED, "", nil), "host"},
		{NewObserverError(STREAM_ERROR, "", nil), "observer"},
		{NewConfigError(CONFIG_INVALID, "", nil), "config"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.layer, tc.err.Layer)
	}
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewTokenError(PAYMENT_FORWARD_FAILED, "forward failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIs_MatchesByCode(t *testing.T) {
	a := NewTokenError(NOT_OWNER, "caller is not the owner", nil)
	b := NewTokenError(NOT_OWNER, "different message", nil)
	c := NewTokenError(OWNER_UNSET, "no owner", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestAs_ExtractsTokenError(t *testing.T) {
	err := NewLedgerError(SUPPLY_OVERFLOW, "mint would overflow", nil)

	var te *TokenError
	require.True(t, As(err, &te))
	assert.Equal(t, SUPPLY_OVERFLOW, te.Code)

	te = nil
	assert.False(t, As(stderrors.New("plain"), &te))
	assert.Nil(t, te)
}

func TestHasCode_WalksWrappedCauses(t *testing.T) {
	inner := NewLedgerError(INSUFFICIENT_BALANCE, "burn amount exceeds balance", nil)
	outer := NewTokenError(CONSTRUCTION_FAILED, "initial mint failed", inner)
	wrapped := fmt.Errorf("deploy: %w", outer)

	assert.True(t, HasCode(wrapped, CONSTRUCTION_FAILED))
	assert.True(t, HasCode(wrapped, INSUFFICIENT_BALANCE))
	assert.False(t, HasCode(wrapped, NOT_OWNER))
	assert.False(t, HasCode(nil, NOT_OWNER))
}
