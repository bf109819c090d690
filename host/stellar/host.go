// Package stellar provides a Host that settles sale proceeds on the Stellar
// network. It builds a native-asset payment to the owner, signs it with the
// configured Signer, and submits it through Horizon.
package stellar

import (
	"context"
	"math"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/txnbuild"

	stellartoken "github.com/stellar-connect/token-sdk-go"
	"github.com/stellar-connect/token-sdk-go/errors"
)

// memoTextLimit is the Stellar MEMO_TEXT byte cap. Purchase event IDs longer
// than this are truncated; the remaining prefix is still unique enough to
// match a purchase off-process.
const memoTextLimit = 28

// Host implements stellartoken.Host against a Horizon server. Amounts are
// interpreted as stroops of the native asset.
type Host struct {
	client            *horizonclient.Client
	signer            stellartoken.Signer
	networkPassphrase string
	log               *logrus.Entry
}

var _ stellartoken.Host = (*Host)(nil)

// NewHost creates a Host that submits proceeds payments to the given Horizon
// URL, signed by signer on the network identified by networkPassphrase.
func NewHost(horizonURL, networkPassphrase string, signer stellartoken.Signer, log *logrus.Logger) *Host {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Host{
		client:            &horizonclient.Client{HorizonURL: horizonURL},
		signer:            signer,
		networkPassphrase: networkPassphrase,
		log:               log.WithField("component", "stellar_host"),
	}
}

// Now returns the wall-clock time.
func (h *Host) Now() time.Time {
	return time.Now()
}

// ForwardPayment pays amount stroops of the native asset from the signer's
// account to the destination, carrying memo (truncated to the MEMO_TEXT cap)
// so the payment can be matched back to its purchase.
func (h *Host) ForwardPayment(ctx context.Context, to stellartoken.Account, value *uint256.Int, memo string) error {
	if !value.IsUint64() || value.Uint64() > math.MaxInt64 {
		return errors.NewHostError(errors.SUBMISSION_FAILED, "payment amount exceeds the stroop range", nil)
	}
	stroops := int64(value.Uint64())

	source, err := h.client.AccountDetail(horizonclient.AccountRequest{
		AccountID: h.signer.PublicKey(),
	})
	if err != nil {
		return errors.NewHostError(errors.SUBMISSION_FAILED, "failed to load source account", err)
	}

	if len(memo) > memoTextLimit {
		memo = memo[:memoTextLimit]
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: h.signer.PublicKey(),
			Sequence:  source.Sequence,
		},
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Memo:                 txnbuild.MemoText(memo),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(300),
		},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: string(to),
				Amount:      amount.StringFromInt64(stroops),
				Asset:       txnbuild.NativeAsset{},
			},
		},
	})
	if err != nil {
		return errors.NewHostError(errors.SUBMISSION_FAILED, "failed to build payment transaction", err)
	}

	unsigned, err := tx.Base64()
	if err != nil {
		return errors.NewHostError(errors.SUBMISSION_FAILED, "failed to encode payment transaction", err)
	}

	signed, err := h.signer.SignTransaction(ctx, unsigned, h.networkPassphrase)
	if err != nil {
		return errors.NewHostError(errors.SIGNER_ERROR, "failed to sign payment transaction", err)
	}

	resp, err := h.client.SubmitTransactionXDR(signed)
	if err != nil {
		return errors.NewHostError(errors.SUBMISSION_FAILED, "failed to submit payment transaction", err)
	}

	h.log.WithFields(logrus.Fields{
		"tx_hash": resp.Hash,
		"to":      string(to),
		"stroops": stroops,
		"memo":    memo,
	}).Info("forwarded sale proceeds")

	return nil
}
