// Package config loads token deployment configuration from TOML files: the
// token's metadata and feature flags, optional sale defaults, and the Stellar
// settlement endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/pelletier/go-toml"
	"github.com/stellar/go/keypair"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// TokenConfig describes the token itself: metadata, deployment inputs, and
// which optional features are enabled.
type TokenConfig struct {
	Name     string `toml:"name"`
	Symbol   string `toml:"symbol"`
	Decimals uint8  `toml:"decimals"`

	// InitialSupply is a decimal string minted to the deployer at
	// construction. Empty means zero.
	InitialSupply string `toml:"initial_supply"`

	// Deployer is the Stellar address (G...) that receives the initial
	// supply and becomes the owner when any gated feature is enabled.
	Deployer string `toml:"deployer"`

	Pausable bool `toml:"pausable"`
	Mintable bool `toml:"mintable"`
	Burnable bool `toml:"burnable"`
	Sale     bool `toml:"sale"`
}

// SaleConfig holds optional sale defaults applied at deployment. The owner
// can still replace them later.
type SaleConfig struct {
	// Price is the payment owed per unit, as a decimal string.
	Price string `toml:"price"`

	// MaxSupply caps the cumulative total supply, as a decimal string.
	MaxSupply string `toml:"max_supply"`

	StartsAt time.Time `toml:"starts_at"`
	EndsAt   time.Time `toml:"ends_at"`
}

// StellarConfig points at the network used to settle sale proceeds.
type StellarConfig struct {
	HorizonURL        string `toml:"horizon_url"`
	NetworkPassphrase string `toml:"network_passphrase"`
}

// Config is the root of a deployment configuration file.
type Config struct {
	Token   TokenConfig   `toml:"token"`
	Sale    *SaleConfig   `toml:"sale"`
	Stellar StellarConfig `toml:"stellar"`
}

// Load reads and validates a deployment configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.CONFIG_READ_FAILED, fmt.Sprintf("failed to read %s", path), err)
	}
	return Parse(data)
}

// Parse decodes and validates a deployment configuration from TOML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(errors.CONFIG_INVALID, "failed to decode TOML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Token.Name == "" {
		return errors.NewConfigError(errors.CONFIG_INVALID, "token.name is required", nil)
	}
	if c.Token.Symbol == "" {
		return errors.NewConfigError(errors.CONFIG_INVALID, "token.symbol is required", nil)
	}
	if c.Token.Deployer == "" {
		return errors.NewConfigError(errors.CONFIG_INVALID, "token.deployer is required", nil)
	}
	if _, err := keypair.ParseAddress(c.Token.Deployer); err != nil {
		return errors.NewConfigError(errors.CONFIG_INVALID, fmt.Sprintf("token.deployer %q is not a Stellar address", c.Token.Deployer), err)
	}
	if c.Token.InitialSupply != "" {
		if _, err := uint256.FromDecimal(c.Token.InitialSupply); err != nil {
			return errors.NewConfigError(errors.CONFIG_INVALID, fmt.Sprintf("token.initial_supply %q is not a decimal amount", c.Token.InitialSupply), err)
		}
	}
	if c.Sale != nil {
		if _, err := uint256.FromDecimal(c.Sale.Price); err != nil {
			return errors.NewConfigError(errors.CONFIG_INVALID, fmt.Sprintf("sale.price %q is not a decimal amount", c.Sale.Price), err)
		}
		if _, err := uint256.FromDecimal(c.Sale.MaxSupply); err != nil {
			return errors.NewConfigError(errors.CONFIG_INVALID, fmt.Sprintf("sale.max_supply %q is not a decimal amount", c.Sale.MaxSupply), err)
		}
	}
	return nil
}

// Metadata returns the token metadata block.
func (c *Config) Metadata() stellartoken.Metadata {
	return stellartoken.Metadata{
		Name:     c.Token.Name,
		Symbol:   c.Token.Symbol,
		Decimals: c.Token.Decimals,
	}
}

// FeatureFlags returns the enabled feature set.
func (c *Config) FeatureFlags() stellartoken.FeatureFlags {
	return stellartoken.FeatureFlags{
		Pausable: c.Token.Pausable,
		Mintable: c.Token.Mintable,
		Burnable: c.Token.Burnable,
		Sale:     c.Token.Sale,
	}
}

// InitialSupply returns the initial supply as an amount. Validate must have
// accepted the configuration first.
func (c *Config) InitialSupply() *uint256.Int {
	if c.Token.InitialSupply == "" {
		return uint256.NewInt(0)
	}
	v, err := uint256.FromDecimal(c.Token.InitialSupply)
	if err != nil {
		return uint256.NewInt(0)
	}
	return v
}

// SaleOptions returns the configured sale defaults, or nil when the file has
// no [sale] block. Validate must have accepted the configuration first.
func (c *Config) SaleOptions() *stellartoken.SaleOptions {
	if c.Sale == nil {
		return nil
	}
	price, err := uint256.FromDecimal(c.Sale.Price)
	if err != nil {
		return nil
	}
	maxSupply, err := uint256.FromDecimal(c.Sale.MaxSupply)
	if err != nil {
		return nil
	}
	return &stellartoken.SaleOptions{
		Price:     price,
		MaxSupply: maxSupply,
		StartsAt:  c.Sale.StartsAt,
		EndsAt:    c.Sale.EndsAt,
	}
}
