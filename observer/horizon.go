package observer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	"github.com/stellar/go-stellar-sdk/protocols/horizon/base"
	"github.com/stellar/go-stellar-sdk/protocols/horizon/operations"

	"github.com/stellar-connect/token-sdk-go/errors"
)

// HorizonObserver implements Observer by streaming payment operations from Horizon.
// It provides cursor management for resumability, reconnection with exponential backoff,
// and filtering capabilities.
type HorizonObserver struct {
	horizonURL  string
	client      *horizonclient.Client
	handlers    []handlerEntry
	cursor      string
	cursorSaver func(string) error
	log         *logrus.Entry

	// Reconnection backoff settings
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// Synchronization
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// ObserverOption is a function that configures a HorizonObserver.
type ObserverOption func(*HorizonObserver)

// WithCursor sets the starting cursor for streaming.
// Use "now" to start from the current ledger (skip historical payments).
// Use a specific paging_token to resume from a previous position.
func WithCursor(cursor string) ObserverOption {
	return func(h *HorizonObserver) {
		h.cursor = cursor
	}
}

// WithCursorSaver sets a callback that's called after each payment is processed.
// This allows the caller to persist the cursor for resumability across restarts.
// The callback receives the paging_token of the last successfully processed payment.
func WithCursorSaver(saver func(string) error) ObserverOption {
	return func(h *HorizonObserver) {
		h.cursorSaver = saver
	}
}

// WithReconnectBackoff sets the initial and maximum backoff durations for reconnection.
// Default is 1s initial, 60s max with exponential growth.
func WithReconnectBackoff(initial, max time.Duration) ObserverOption {
	return func(h *HorizonObserver) {
		h.initialBackoff = initial
		h.maxBackoff = max
	}
}

// WithLogger sets the logger used for stream and handler errors.
func WithLogger(log *logrus.Logger) ObserverOption {
	return func(h *HorizonObserver) {
		h.log = log.WithField("component", "observer")
	}
}

// NewHorizonObserver creates a new HorizonObserver that streams from the given Horizon URL.
// The default cursor is "now" (skip historical payments), but can be overridden with WithCursor.
func NewHorizonObserver(horizonURL string, opts ...ObserverOption) *HorizonObserver {
	obs := &HorizonObserver{
		horizonURL:     horizonURL,
		client:         &horizonclient.Client{HorizonURL: horizonURL},
		handlers:       make([]handlerEntry, 0),
		cursor:         "now",
		log:            logrus.StandardLogger().WithField("component", "observer"),
		initialBackoff: 1 * time.Second,
		maxBackoff:     60 * time.Second,
		stopChan:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(obs)
	}

	return obs
}

// OnPayment registers a handler for payment events with optional filters.
// Multiple handlers can be registered. Filters are ANDed together.
// Handlers are called sequentially for each matching payment.
func (h *HorizonObserver) OnPayment(handler PaymentHandler, filters ...PaymentFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers = append(h.handlers, handlerEntry{
		handler: handler,
		filters: filters,
	})
}

// Start begins streaming payment operations from Horizon.
// This method blocks until the context is cancelled or Stop() is called.
// It automatically reconnects with exponential backoff on stream failures.
func (h *HorizonObserver) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return errors.NewObserverError(errors.STREAM_ERROR, "observer already running", nil)
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	// Exponential backoff state
	backoff := h.initialBackoff
	attempt := 0

	for {
		// Check if stopped or context cancelled
		select {
		case <-h.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get current cursor
		h.mu.RLock()
		currentCursor := h.cursor
		h.mu.RUnlock()

		// Create operation request for streaming payments
		// Join transactions so the memo is available for matching
		opRequest := horizonclient.OperationRequest{
			Cursor: currentCursor,
			Order:  horizonclient.OrderAsc,
			Join:   "transactions",
		}

		// Start streaming
		err := h.client.StreamPayments(ctx, opRequest, func(op operations.Operation) {
			// Reset backoff on successful stream
			backoff = h.initialBackoff
			attempt = 0

			// Convert operation to PaymentEvent
			evt := h.convertToPaymentEvent(op)
			if evt == nil {
				// Not a payment type we recognize, skip
				return
			}

			// Process the event through handlers
			h.processEvent(*evt)

			// Update cursor
			h.mu.Lock()
			h.cursor = evt.Cursor
			h.mu.Unlock()

			// Save cursor if callback provided
			if h.cursorSaver != nil {
				if err := h.cursorSaver(evt.Cursor); err != nil {
					// Saving is best-effort, streaming continues
					h.log.WithError(err).Warn("failed to save cursor")
				}
			}
		})

		// If stream ended, check reason
		if err == nil {
			// Normal shutdown
			return nil
		}

		// Check if we should stop
		select {
		case <-h.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Stream error - reconnect with backoff
		h.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff,
		}).Warn("stream disconnected, reconnecting")

		// Wait for backoff period or until stopped
		select {
		case <-time.After(backoff):
			// Continue to retry
		case <-h.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

		// Increase backoff exponentially: 1s, 2s, 4s, 8s, ..., max 60s
		attempt++
		backoff = backoff * 2
		if backoff > h.maxBackoff {
			backoff = h.maxBackoff
		}
	}
}

// Stop gracefully stops streaming. It's safe to call Stop multiple times.
func (h *HorizonObserver) Stop() error {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	return nil
}

// convertToPaymentEvent converts a Horizon operation to a PaymentEvent.
// Returns nil if the operation is not a payment type.
func (h *HorizonObserver) convertToPaymentEvent(op operations.Operation) *PaymentEvent {
	opBase := op.GetBase()

	evt := &PaymentEvent{
		ID:              opBase.ID,
		Cursor:          opBase.PT, // PT is the paging_token field
		TransactionHash: opBase.TransactionHash,
	}
	if opBase.Transaction != nil {
		evt.Memo = opBase.Transaction.Memo
	}

	switch op.GetType() {
	case "payment":
		payment, ok := op.(operations.Payment)
		if !ok {
			return nil
		}
		evt.From = payment.From
		evt.To = payment.To
		evt.Amount = payment.Amount
		evt.Asset = h.formatAsset(payment.Asset)

	case "create_account":
		// CreateAccount is also a payment (funds the new account)
		create, ok := op.(operations.CreateAccount)
		if !ok {
			return nil
		}
		evt.From = create.Funder
		evt.To = create.Account
		evt.Amount = create.StartingBalance
		evt.Asset = "native"

	default:
		// Proceeds are forwarded as plain payments; everything else
		// (path payments, merges) is out of scope here.
		return nil
	}

	return evt
}

// formatAsset formats an asset for display.
// Native XLM returns "native", issued assets return "CODE:ISSUER".
func (h *HorizonObserver) formatAsset(asset base.Asset) string {
	if asset.Type == "native" {
		return "native"
	}
	return fmt.Sprintf("%s:%s", asset.Code, asset.Issuer)
}

// processEvent runs all registered handlers for the given event if it passes their filters.
func (h *HorizonObserver) processEvent(evt PaymentEvent) {
	h.mu.RLock()
	handlers := h.handlers
	h.mu.RUnlock()

	for _, entry := range handlers {
		// Check all filters (AND logic)
		passesFilters := true
		for _, filter := range entry.filters {
			if !filter(evt) {
				passesFilters = false
				break
			}
		}

		if !passesFilters {
			continue
		}

		if err := entry.handler(evt); err != nil {
			// Handler errors never stop the stream
			h.log.WithError(err).WithField("operation_id", evt.ID).Warn("handler error")
		}
	}
}

// Compile-time interface check
var _ Observer = (*HorizonObserver)(nil)
