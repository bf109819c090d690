// Package account validates Stellar account addresses used as token
// Account values.
package account

import (
	"fmt"

	"github.com/stellar/go/keypair"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// Validate checks that the value is a well-formed Stellar account address
// (G...). Returns an INVALID_ACCOUNT error otherwise.
func Validate(a stellartoken.Account) error {
	if a == "" {
		return errors.NewTokenError(errors.INVALID_ACCOUNT, "account is empty", nil)
	}
	if _, err := keypair.ParseAddress(string(a)); err != nil {
		return errors.NewTokenError(errors.INVALID_ACCOUNT, fmt.Sprintf("invalid account address: %s", a), err)
	}
	return nil
}
