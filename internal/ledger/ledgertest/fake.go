// Package ledgertest provides an in-memory ledger.Client for tests.
package ledgertest

import (
	"context"
	"sync"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// Client records every call and delegates to the optional funcs. Without a
// func, balance reads return NotFound and mutations return zero.
type Client struct {
	BalanceFunc func(ctx context.Context, displayID string) (ledger.BalanceResult, error)
	PaymentFunc func(ctx context.Context, p ledger.Payment) (money.Cents, error)
	BookFunc    func(ctx context.Context, b ledger.Booking) (money.Cents, error)

	mu       sync.Mutex
	lookups  []string
	payments []ledger.Payment
	bookings []ledger.Booking
}

var _ ledger.Client = (*Client)(nil)

func (c *Client) BalanceByDisplayID(ctx context.Context, displayID string) (ledger.BalanceResult, error) {
	c.mu.Lock()
	c.lookups = append(c.lookups, displayID)
	fn := c.BalanceFunc
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx, displayID)
	}
	return ledger.NotFound(), nil
}

func (c *Client) AddPaymentByDisplayID(ctx context.Context, p ledger.Payment) (money.Cents, error) {
	c.mu.Lock()
	c.payments = append(c.payments, p)
	fn := c.PaymentFunc
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx, p)
	}
	return 0, nil
}

func (c *Client) Book(ctx context.Context, b ledger.Booking) (money.Cents, error) {
	c.mu.Lock()
	c.bookings = append(c.bookings, b)
	fn := c.BookFunc
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx, b)
	}
	return 0, nil
}

// Lookups returns the display codes passed to BalanceByDisplayID so far.
func (c *Client) Lookups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lookups...)
}

// Payments returns the payments submitted so far.
func (c *Client) Payments() []ledger.Payment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ledger.Payment(nil), c.payments...)
}

// Bookings returns the bookings submitted so far.
func (c *Client) Bookings() []ledger.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ledger.Booking(nil), c.bookings...)
}
