package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// Gate holds balance reads until the test answers them, so tests choose the
// order in which responses arrive.
type Gate struct {
	calls chan *PendingLookup
}

// PendingLookup is a balance read waiting for its answer.
type PendingLookup struct {
	DisplayID string
	reply     chan gateReply
}

type gateReply struct {
	res ledger.BalanceResult
	err error
}

// NewGate returns a gate with room for a few queued calls.
func NewGate() *Gate {
	return &Gate{calls: make(chan *PendingLookup, 16)}
}

// BalanceFunc is meant for Client.BalanceFunc.
func (g *Gate) BalanceFunc(ctx context.Context, displayID string) (ledger.BalanceResult, error) {
	p := &PendingLookup{DisplayID: displayID, reply: make(chan gateReply, 1)}
	g.calls <- p
	select {
	case r := <-p.reply:
		return r.res, r.err
	case <-ctx.Done():
		return ledger.BalanceResult{}, ctx.Err()
	}
}

// Next waits for the next held call.
func (g *Gate) Next(t testing.TB) *PendingLookup {
	t.Helper()
	select {
	case p := <-g.calls:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no balance lookup was issued")
		return nil
	}
}

// AssertIdle fails if a call is queued.
func (g *Gate) AssertIdle(t testing.TB) {
	t.Helper()
	select {
	case p := <-g.calls:
		t.Fatalf("unexpected balance lookup for %q", p.DisplayID)
	default:
	}
}

// Found answers the call with a balance.
func (p *PendingLookup) Found(balance money.Cents) { p.reply <- gateReply{res: ledger.Found(balance)} }

// NotFound answers the call with no matching account.
func (p *PendingLookup) NotFound() { p.reply <- gateReply{res: ledger.NotFound()} }

// Fail answers the call with err.
func (p *PendingLookup) Fail(err error) { p.reply <- gateReply{err: err} }
