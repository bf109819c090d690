package observer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/stellar-connect/token-sdk-go/errors"
)

// ProceedsConfirmFunc is called once for each on-chain payment that settles
// sale proceeds to the owner account. purchaseID is the memo carried by the
// payment, which the forwarding host sets to the purchase event ID (possibly
// truncated to Stellar's memo text cap).
type ProceedsConfirmFunc func(ctx context.Context, purchaseID string, payment PaymentEvent) error

// AutoConfirmProceeds confirms forwarded sale proceeds by watching payments
// to the owner account and extracting the purchase event ID from each
// payment's memo.
//
// The flow it closes the loop on:
//  1. A buyer purchases tokens; the sale engine mints and forwards the
//     attached payment to the owner with the purchase event ID as memo.
//  2. Horizon streams the settled payment.
//  3. AutoConfirmProceeds extracts the memo and calls confirm, so the caller
//     can mark the purchase as settled.
//
// Payments to the owner without a memo are skipped with a log line; confirm
// errors are logged and do not stop the stream.
//
// The observer must already be configured with a cursor before calling
// AutoConfirmProceeds. Call obs.Start(ctx) afterwards to begin streaming.
func AutoConfirmProceeds(obs Observer, ownerAccount string, confirm ProceedsConfirmFunc, log *logrus.Logger) error {
	if obs == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "observer is nil", nil)
	}
	if ownerAccount == "" {
		return errors.NewObserverError(errors.STREAM_ERROR, "owner account is empty", nil)
	}
	if confirm == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "confirm callback is nil", nil)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "proceeds")

	obs.OnPayment(
		func(evt PaymentEvent) error {
			purchaseID := evt.Memo
			if purchaseID == "" {
				entry.WithField("operation_id", evt.ID).
					Debug("payment to owner without memo, skipping")
				return nil
			}

			ctx := context.Background()
			if err := confirm(ctx, purchaseID, evt); err != nil {
				entry.WithError(err).WithFields(logrus.Fields{
					"operation_id": evt.ID,
					"purchase_id":  purchaseID,
				}).Warn("failed to confirm proceeds")
				return nil
			}

			entry.WithFields(logrus.Fields{
				"operation_id": evt.ID,
				"purchase_id":  purchaseID,
				"amount":       evt.Amount,
				"asset":        evt.Asset,
			}).Info("confirmed sale proceeds")
			return nil
		},
		WithDestination(ownerAccount),
	)

	return nil
}
