package token

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/errors"
	hostmem "github.com/stellar-connect/token-sdk-go/host/memory"
	storemem "github.com/stellar-connect/token-sdk-go/store/memory"
)

type fixture struct {
	token    *Token
	ledger   *storemem.Ledger
	host     *hostmem.Host
	deployer stellartoken.Account
}

func newFixture(t *testing.T, features stellartoken.FeatureFlags, initialSupply uint64) *fixture {
	t.Helper()

	ledger := storemem.NewLedger()
	host := hostmem.NewHost(time.Unix(0, 0))
	deployer := stellartoken.Account(keypair.MustRandom().Address())

	tok, err := New(context.Background(), ledger, host, Config{
		Metadata: stellartoken.Metadata{
			Name:     "Test Token",
			Symbol:   "TST",
			Decimals: 7,
		},
		Features:      features,
		InitialSupply: uint256.NewInt(initialSupply),
		Deployer:      deployer,
	}, nil)
	require.NoError(t, err)

	return &fixture{token: tok, ledger: ledger, host: host, deployer: deployer}
}

func randomAccount() stellartoken.Account {
	return stellartoken.Account(keypair.MustRandom().Address())
}

func TestNew_MintsInitialSupplyToDeployer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stellartoken.FeatureFlags{}, 1000)

	supply, err := f.ledger.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), supply)

	bal, err := f.ledger.BalanceOf(ctx, f.deployer)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), bal)
}

func TestNew_OwnerRecordedOnlyForGatedFeatures(t *testing.T) {
	cases := []struct {
		name     string
		features stellartoken.FeatureFlags
		want     bool
	}{
		{"no features", stellartoken.FeatureFlags{}, false},
		{"burnable only", stellartoken.FeatureFlags{Burnable: true}, false},
		{"mintable", stellartoken.FeatureFlags{Mintable: true}, true},
		{"pausable", stellartoken.FeatureFlags{Pausable: true}, true},
		{"sale", stellartoken.FeatureFlags{Sale: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.features, 0)

			owner, ok := f.token.Owner()
			assert.Equal(t, tc.want, ok)
			if tc.want {
				assert.Equal(t, f.deployer, owner)
			} else {
				assert.Empty(t, owner)
			}
		})
	}
}

func TestNew_RejectsMissingCollaborators(t *testing.T) {
	ctx := context.Background()
	ledger := storemem.NewLedger()
	host := hostmem.NewHost(time.Unix(0, 0))
	cfg := Config{Deployer: randomAccount()}

	_, err := New(ctx, nil, host, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CONSTRUCTION_FAILED))

	_, err = New(ctx, ledger, nil, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CONSTRUCTION_FAILED))
}

func TestNew_RejectsInvalidDeployer(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, storemem.NewLedger(), hostmem.NewHost(time.Unix(0, 0)), Config{
		Deployer: "not-an-address",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.INVALID_ACCOUNT))
}

func TestNew_InitialSupplyMintedRegardlessOfMintableFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stellartoken.FeatureFlags{Burnable: true}, 500)

	assert.False(t, f.token.IsMintable())

	supply, err := f.ledger.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), supply)
}

func TestFeatureGetters(t *testing.T) {
	f := newFixture(t, stellartoken.FeatureFlags{Pausable: true, Burnable: true}, 0)

	assert.True(t, f.token.IsPausable())
	assert.True(t, f.token.IsBurnable())
	assert.False(t, f.token.IsMintable())
	assert.False(t, f.token.IsSale())

	md := f.token.Metadata()
	assert.Equal(t, "Test Token", md.Name)
	assert.Equal(t, "TST", md.Symbol)
	assert.Equal(t, uint8(7), md.Decimals)
}

func TestChangeState_TogglesPause(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stellartoken.FeatureFlags{Pausable: true}, 100)

	var events []*stellartoken.Event
	f.token.Hooks().On(stellartoken.EventPauseChanged, func(evt *stellartoken.Event) {
		events = append(events, evt)
	})

	require.NoError(t, f.token.ChangeState(ctx, f.deployer))
	paused, err := f.ledger.Paused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	// Toggling twice restores the original state
	require.NoError(t, f.token.ChangeState(ctx, f.deployer))
	paused, err = f.ledger.Paused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	require.Len(t, events, 2)
	assert.True(t, events[0].Paused)
	assert.False(t, events[1].Paused)
}

func TestChangeState_RequiresFeatureAndOwner(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, stellartoken.FeatureFlags{Mintable: true}, 0)
	err := f.token.ChangeState(ctx, f.deployer)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.FEATURE_DISABLED))

	f = newFixture(t, stellartoken.FeatureFlags{Pausable: true}, 0)
	err = f.token.ChangeState(ctx, randomAccount())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.NOT_OWNER))
}

func TestMintTo_OwnerMintsToAnyAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stellartoken.FeatureFlags{Mintable: true}, 1000)
	recipient := randomAccount()

	var minted *stellartoken.Event
	f.token.Hooks().On(stellartoken.EventMinted, func(evt *stellartoken.Event) {
		minted = evt
	})

	require.NoError(t, f.token.MintTo(ctx, f.deployer, recipient, uint256.NewInt(250)))

	bal, err := f.ledger.BalanceOf(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(250), bal)

	supply, err := f.ledger.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1250), supply)

	require.NotNil(t, minted)
	assert.Equal(t, recipient, minted.Account)
	assert.Equal(t, uint256.NewInt(250), minted.Amount)
	assert.NotEmpty(t, minted.ID)
}

func TestMintTo_Gates(t *testing.T) {
	ctx := context.Background()
	amount := uint256.NewInt(1)

	f := newFixture(t, stellartoken.FeatureFlags{Pausable: true}, 0)
	err := f.token.MintTo(ctx, f.deployer, randomAccount(), amount)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.FEATURE_DISABLED))

	f = newFixture(t, stellartoken.FeatureFlags{Mintable: true}, 0)
	err = f.token.MintTo(ctx, randomAccount(), randomAccount(), amount)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.NOT_OWNER))

	err = f.token.MintTo(ctx, f.deployer, "bogus", amount)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.INVALID_ACCOUNT))
}

func TestBurn_AnyHolderBurnsOwnBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stellartoken.FeatureFlags{Burnable: true}, 1000)
	holder := randomAccount()
	require.NoError(t, f.ledger.Transfer(ctx, f.deployer, holder, uint256.NewInt(100)))

	var burned *stellartoken.Event
	f.token.Hooks().On(stellartoken.EventBurned, func(evt *stellartoken.Event) {
		burned = evt
	})

	// No owner gate: holder is not the deployer
	require.NoError(t, f.token.Burn(ctx, holder, uint256.NewInt(60)))

	bal, err := f.ledger.BalanceOf(ctx, holder)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(40), bal)

	supply, err := f.ledger.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(940), supply)

	require.NotNil(t, burned)
	assert.Equal(t, holder, burned.Account)
	assert.Equal(t, uint256.NewInt(60), burned.Amount)
}

func TestBurn_Gates(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, stellartoken.FeatureFlags{Mintable: true}, 100)
	err := f.token.Burn(ctx, f.deployer, uint256.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.FEATURE_DISABLED))

	f = newFixture(t, stellartoken.FeatureFlags{Burnable: true}, 100)
	err = f.token.Burn(ctx, f.deployer, uint256.NewInt(101))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.INSUFFICIENT_BALANCE))
}

func TestSaleGetters_FailBeforeConfiguration(t *testing.T) {
	f := newFixture(t, stellartoken.FeatureFlags{Sale: true}, 0)

	_, err := f.token.SalePrice()
	assert.True(t, errors.HasCode(err, errors.SALE_NOT_CONFIGURED))

	_, err = f.token.MaxSupply()
	assert.True(t, errors.HasCode(err, errors.SALE_NOT_CONFIGURED))

	_, err = f.token.StartsAt()
	assert.True(t, errors.HasCode(err, errors.SALE_NOT_CONFIGURED))

	_, err = f.token.EndsAt()
	assert.True(t, errors.HasCode(err, errors.SALE_NOT_CONFIGURED))

	_, err = f.token.SaleOptions()
	assert.True(t, errors.HasCode(err, errors.SALE_NOT_CONFIGURED))
}
