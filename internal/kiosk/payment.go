package kiosk

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
	"github.com/iliyamo/prepaid-kiosk/internal/queue"
)

const msgPaymentRecorded = "payment recorded"

// PaymentSnapshot is the rendered state of a payment form.
type PaymentSnapshot struct {
	Lookup       lookup.Snapshot `json:"lookup"`
	BalanceText  string          `json:"balance_text"`
	Amount       string          `json:"amount"`
	Method       string          `json:"method"`
	Methods      []string        `json:"methods"`
	QuickAmounts []int64         `json:"quick_amounts"`
	Busy         bool            `json:"busy"`
	CanSubmit    bool            `json:"can_submit"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// PaymentForm is the staff desk's credit form.
type PaymentForm struct {
	deps    Deps
	lookup  *lookup.Controller
	actorID uint64

	mu      sync.Mutex
	amount  string
	method  string
	busy    bool
	message string
	errMsg  string
}

// NewPaymentForm returns an empty form whose credits are attributed to
// actorID.
func NewPaymentForm(deps Deps, actorID uint64) *PaymentForm {
	return &PaymentForm{
		deps:    deps,
		lookup:  deps.newLookup(),
		actorID: actorID,
		method:  deps.methods()[0],
	}
}

// ActorID is the staff user the form belongs to.
func (f *PaymentForm) ActorID() uint64 { return f.actorID }

func (f *PaymentForm) SetIdentifier(text string) {
	f.lookup.SetIdentifier(text)
	f.clearStatus()
}

// RetryLookup re-issues the balance lookup for the current identifier.
func (f *PaymentForm) RetryLookup() { f.lookup.Refresh() }

// SetAmountText stores the amount as typed. It is parsed on submit.
func (f *PaymentForm) SetAmountText(text string) {
	f.mu.Lock()
	f.amount = text
	f.message, f.errMsg = "", ""
	f.mu.Unlock()
}

// ApplyQuickAmount replaces the amount with a configured whole amount.
func (f *PaymentForm) ApplyQuickAmount(units int64) error {
	if !slices.Contains(f.deps.quickAmounts(), units) {
		return ErrUnknownQuickAmount
	}
	f.SetAmountText(money.Format(money.FromUnits(units)))
	return nil
}

func (f *PaymentForm) SetMethod(method string) error {
	if !slices.Contains(f.deps.methods(), method) {
		return ErrUnknownMethod
	}
	f.mu.Lock()
	f.method = method
	f.mu.Unlock()
	return nil
}

// CanSubmit reports whether the submit action is enabled.
func (f *PaymentForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.busy && f.lookup.Identifier() != ""
}

// Submit credits the parsed amount to the identifier's account. On success
// the server balance is shown and the amount cleared; identifier and method
// stay. On failure only the error message changes.
func (f *PaymentForm) Submit(ctx context.Context) (PaymentSnapshot, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return f.Snapshot(), ErrBusy
	}
	req, err := f.requestLocked()
	if err != nil {
		f.message, f.errMsg = "", errorMessage(err)
		f.mu.Unlock()
		submitRejectedLocally(req.Kind, err)
		return f.Snapshot(), err
	}
	f.busy = true
	f.message, f.errMsg = "", ""
	f.mu.Unlock()

	balance, err := submit(ctx, f.deps.Ledger, req)

	f.mu.Lock()
	f.busy = false
	if err != nil {
		f.errMsg = errorMessage(err)
		f.mu.Unlock()
		return f.Snapshot(), err
	}
	f.amount = ""
	f.message = msgPaymentRecorded
	f.mu.Unlock()

	f.lookup.Accept(req.DisplayID, balance)
	f.deps.publish(queue.TransactionRecordedEvent{
		Kind:         string(ledger.Credit),
		DisplayID:    req.DisplayID,
		AmountCents:  int64(req.Amount),
		BalanceCents: int64(balance),
		Method:       req.Method,
		ActorID:      req.ActorID,
	})
	return f.Snapshot(), nil
}

func (f *PaymentForm) requestLocked() (ledger.TransactionRequest, error) {
	req := ledger.TransactionRequest{
		Kind:      ledger.Credit,
		DisplayID: f.lookup.Identifier(),
		Method:    f.method,
		ActorID:   f.actorID,
	}
	amount, perr := money.Parse(f.amount)
	if perr == nil {
		req.Amount = amount
	}
	if err := req.Validate(); err != nil {
		var verr *ledger.ValidationError
		if perr != nil && errors.As(err, &verr) && verr.Field == "amount" {
			verr.Message = "enter a valid amount"
		}
		return req, err
	}
	return req, nil
}

func (f *PaymentForm) Snapshot() PaymentSnapshot {
	ls := f.lookup.Snapshot()
	f.mu.Lock()
	defer f.mu.Unlock()
	return PaymentSnapshot{
		Lookup:       ls,
		BalanceText:  balanceText(ls),
		Amount:       f.amount,
		Method:       f.method,
		Methods:      f.deps.methods(),
		QuickAmounts: f.deps.quickAmounts(),
		Busy:         f.busy,
		CanSubmit:    !f.busy && ls.Identifier != "",
		Message:      f.message,
		Error:        f.errMsg,
	}
}

// Close stops the form's lookup; pending responses are dropped.
func (f *PaymentForm) Close() { f.lookup.Close() }

func (f *PaymentForm) clearStatus() {
	f.mu.Lock()
	f.message, f.errMsg = "", ""
	f.mu.Unlock()
}
