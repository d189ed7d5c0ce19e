// Package ledger describes the remote ledger the kiosk talks to. Balances
// live only behind the ledger's procedures; this package prepares validated
// requests for them and interprets their results.
package ledger

import (
	"context"

	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// BalanceResult is the outcome of a balance read: either a balance was
// found for the display code or no account matched.
type BalanceResult struct {
	Found   bool
	Balance money.Cents
}

// Found returns a result carrying balance.
func Found(balance money.Cents) BalanceResult {
	return BalanceResult{Found: true, Balance: balance}
}

// NotFound returns the result for an unknown display code.
func NotFound() BalanceResult {
	return BalanceResult{}
}

// Payment is a credit onto a member balance recorded by staff.
type Payment struct {
	DisplayID string
	Amount    money.Cents
	Method    string
	ActorID   uint64
}

// Booking is a purchase debited from a member balance.
type Booking struct {
	DisplayID string
	ItemID    string
	Quantity  int
}

// Client is the set of remote procedures the core consumes. Every method
// is a single remote call; implementations must not retry.
type Client interface {
	// BalanceByDisplayID reads the committed balance for a display code.
	BalanceByDisplayID(ctx context.Context, displayID string) (BalanceResult, error)
	// AddPaymentByDisplayID credits a payment and returns the new balance.
	AddPaymentByDisplayID(ctx context.Context, p Payment) (money.Cents, error)
	// Book debits a purchase and returns the new balance.
	Book(ctx context.Context, b Booking) (money.Cents, error)
}
