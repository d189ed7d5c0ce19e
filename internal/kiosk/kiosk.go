// Package kiosk holds the two transaction forms of the kiosk, booking
// (debit) and payment (credit), and the registry of open form sessions.
//
// A form owns its identifier field, which drives a lookup.Controller, and
// the inputs of one transaction. Every form serialises its own state; a
// second submit while one is in flight is refused with ErrBusy.
package kiosk

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
	"github.com/iliyamo/prepaid-kiosk/internal/metrics"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
	"github.com/iliyamo/prepaid-kiosk/internal/queue"
)

var (
	ErrBusy               = errors.New("a submission is already in progress")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrUnknownQuickAmount = errors.New("unknown quick amount")
)

// Default payment choices of the staff desk.
var (
	DefaultMethods      = []string{"Bar", "Überweisung"}
	DefaultQuickAmounts = []int64{20, 50, 100}
)

const publishTimeout = 5 * time.Second

// EventPublisher receives an event for every recorded transaction.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, ev queue.TransactionRecordedEvent) error
}

// Deps is what forms share. Ledger is required.
type Deps struct {
	Ledger    ledger.Client
	Publisher EventPublisher

	LookupDelay   time.Duration
	LookupTimeout time.Duration
	Scheduler     lookup.Scheduler

	Methods      []string
	QuickAmounts []int64
}

func (d Deps) newLookup() *lookup.Controller {
	return lookup.NewController(d.Ledger, lookup.Options{
		Delay:     d.LookupDelay,
		Timeout:   d.LookupTimeout,
		Scheduler: d.Scheduler,
		OnOutcome: func(o lookup.Outcome) {
			metrics.BalanceLookups.WithLabelValues(string(o)).Inc()
		},
	})
}

func (d Deps) methods() []string {
	if len(d.Methods) == 0 {
		return DefaultMethods
	}
	return d.Methods
}

func (d Deps) quickAmounts() []int64 {
	if len(d.QuickAmounts) == 0 {
		return DefaultQuickAmounts
	}
	return d.QuickAmounts
}

// publish hands ev to the publisher in the background. Failures are only
// logged; the transaction is already recorded.
func (d Deps) publish(ev queue.TransactionRecordedEvent) {
	if d.Publisher == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := d.Publisher.PublishTransactionRecorded(ctx, ev); err != nil {
			log.Printf("kiosk: publish %s event for %s failed: %v", ev.Kind, ev.DisplayID, err)
		}
	}()
}

// submit runs one ledger call detached from the caller's cancellation: a
// client that goes away must not leave a committed transaction unreported.
// The ledger client bounds the call with its own timeout.
func submit(ctx context.Context, client ledger.Client, req ledger.TransactionRequest) (money.Cents, error) {
	balance, err := ledger.NewSubmitter(client).Submit(context.WithoutCancel(ctx), req)
	metrics.Transactions.WithLabelValues(string(req.Kind), result(err)).Inc()
	return balance, err
}

func submitRejectedLocally(kind ledger.Kind, err error) {
	metrics.Transactions.WithLabelValues(string(kind), result(err)).Inc()
}

// errorMessage is the text a form shows for a failed submit.
func errorMessage(err error) string {
	var (
		verr *ledger.ValidationError
		serr *ledger.SubmissionError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &serr):
		return serr.Message
	}
	return err.Error()
}

func result(err error) string {
	var (
		verr *ledger.ValidationError
		serr *ledger.SubmissionError
	)
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &verr):
		return metrics.ResultInvalid
	case errors.As(err, &serr) && serr.Rejected:
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}

// balanceText formats a known balance for display, "" otherwise.
func balanceText(s lookup.Snapshot) string {
	if !s.Known() {
		return ""
	}
	return money.Format(s.Balance)
}
