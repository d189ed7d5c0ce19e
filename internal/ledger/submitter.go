package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// Kind tells credits from debits.
type Kind string

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

// TransactionRequest is one user-initiated credit or debit. Credits carry a
// payment method, debits an item and quantity.
type TransactionRequest struct {
	Kind      Kind
	DisplayID string
	Amount    money.Cents
	Method    string
	ItemID    string
	Quantity  int
	ActorID   uint64
}

// Validate checks the request without touching the ledger.
func (r TransactionRequest) Validate() error {
	if strings.TrimSpace(r.DisplayID) == "" {
		return &ValidationError{Field: "display_id", Message: "display id is required"}
	}
	switch r.Kind {
	case Credit:
		if strings.TrimSpace(r.Method) == "" {
			return &ValidationError{Field: "method", Message: "payment method is required"}
		}
	case Debit:
		if r.ItemID == "" {
			return &ValidationError{Field: "item_id", Message: "select an item"}
		}
		if r.Quantity < 1 {
			return &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
		}
	default:
		return &ValidationError{Field: "kind", Message: "unknown transaction kind"}
	}
	if r.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	return nil
}

// Submitter validates transaction requests and issues exactly one ledger
// call for each valid one.
type Submitter struct {
	client Client
}

// NewSubmitter wraps client.
func NewSubmitter(client Client) *Submitter {
	return &Submitter{client: client}
}

// Submit returns the balance reported by the ledger after the transaction.
// Local rejections are *ValidationError, remote ones *SubmissionError.
func (s *Submitter) Submit(ctx context.Context, req TransactionRequest) (money.Cents, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	displayID := strings.TrimSpace(req.DisplayID)

	var (
		balance money.Cents
		err     error
	)
	if req.Kind == Credit {
		balance, err = s.client.AddPaymentByDisplayID(ctx, Payment{
			DisplayID: displayID,
			Amount:    req.Amount,
			Method:    req.Method,
			ActorID:   req.ActorID,
		})
	} else {
		balance, err = s.client.Book(ctx, Booking{
			DisplayID: displayID,
			ItemID:    req.ItemID,
			Quantity:  req.Quantity,
		})
	}
	if err != nil {
		return 0, toSubmissionError(err)
	}
	return balance, nil
}

func toSubmissionError(err error) *SubmissionError {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return &SubmissionError{Message: remote.Message, Rejected: true, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SubmissionError{Message: "ledger did not respond in time", Err: err}
	}
	return &SubmissionError{Message: "ledger unavailable", Err: err}
}
