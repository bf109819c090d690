// Package memory provides a deterministic in-memory Host for tests and
// local development. The clock is settable and forwarded payments are
// recorded instead of being settled anywhere.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"

	stellartoken "github.com/stellar-connect/token-sdk-go"
)

// ForwardedPayment records one ForwardPayment call.
type ForwardedPayment struct {
	To     stellartoken.Account
	Amount *uint256.Int
	Memo   string
}

// Host is a deterministic in-memory implementation of stellartoken.Host.
// Safe for concurrent use.
type Host struct {
	mu       sync.RWMutex
	now      time.Time
	payments []ForwardedPayment

	// ForwardErr, when set, is returned by every ForwardPayment call.
	// Used to exercise settlement-failure paths.
	ForwardErr error
}

var _ stellartoken.Host = (*Host)(nil)

// NewHost creates a Host whose clock starts at the given time.
func NewHost(now time.Time) *Host {
	return &Host{now: now}
}

// Now returns the host's current clock value.
func (h *Host) Now() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.now
}

// SetNow moves the clock to an absolute time.
func (h *Host) SetNow(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// Advance moves the clock forward by d.
func (h *Host) Advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

// ForwardPayment records the payment. It returns ForwardErr when set.
func (h *Host) ForwardPayment(ctx context.Context, to stellartoken.Account, amount *uint256.Int, memo string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ForwardErr != nil {
		return h.ForwardErr
	}
	h.payments = append(h.payments, ForwardedPayment{
		To:     to,
		Amount: new(uint256.Int).Set(amount),
		Memo:   memo,
	})
	return nil
}

// Payments returns a copy of every recorded payment in call order.
func (h *Host) Payments() []ForwardedPayment {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ForwardedPayment, len(h.payments))
	copy(out, h.payments)
	return out
}
