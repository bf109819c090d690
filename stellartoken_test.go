package stellartoken

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleOptions_CloneIsDeep(t *testing.T) {
	orig := &SaleOptions{
		Price:     uint256.NewInt(5),
		MaxSupply: uint256.NewInt(2000),
		StartsAt:  time.Unix(100, 0),
		EndsAt:    time.Unix(200, 0),
	}

	c := orig.Clone()
	require.NotNil(t, c)
	assert.Equal(t, orig, c)

	// Mutating the clone must not reach the original
	c.Price.SetUint64(999)
	assert.Equal(t, uint256.NewInt(5), orig.Price)
}

func TestSaleOptions_CloneNilReceiver(t *testing.T) {
	var o *SaleOptions
	assert.Nil(t, o.Clone())
}

func TestSaleOptions_CloneCarriesNilAmounts(t *testing.T) {
	// Partially built options must clone without panicking
	c := (&SaleOptions{StartsAt: time.Unix(100, 0)}).Clone()
	require.NotNil(t, c)
	assert.Nil(t, c.Price)
	assert.Nil(t, c.MaxSupply)
	assert.Equal(t, time.Unix(100, 0), c.StartsAt)
}

func TestFeatureFlags_OwnerGated(t *testing.T) {
	assert.False(t, FeatureFlags{}.OwnerGated())
	assert.False(t, FeatureFlags{Burnable: true}.OwnerGated())
	assert.True(t, FeatureFlags{Mintable: true}.OwnerGated())
	assert.True(t, FeatureFlags{Pausable: true}.OwnerGated())
	assert.True(t, FeatureFlags{Sale: true}.OwnerGated())
}
