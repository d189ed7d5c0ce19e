package kiosk

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/prepaid-kiosk/internal/catalog"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
	"github.com/iliyamo/prepaid-kiosk/internal/queue"
)

const msgBookingRecorded = "booking recorded"

// BookingSnapshot is the rendered state of a booking form.
type BookingSnapshot struct {
	Lookup      lookup.Snapshot `json:"lookup"`
	BalanceText string          `json:"balance_text"`
	Items       []model.Item    `json:"items"`
	ItemID      string          `json:"item_id,omitempty"`
	Quantity    int             `json:"quantity"`
	TotalCents  money.Cents     `json:"total_cents"`
	TotalText   string          `json:"total_text"`
	Busy        bool            `json:"busy"`
	CanSubmit   bool            `json:"can_submit"`
	Message     string          `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// BookingForm is the member-facing debit form.
type BookingForm struct {
	deps   Deps
	lookup *lookup.Controller

	mu      sync.Mutex
	sel     *catalog.Selection
	busy    bool
	message string
	errMsg  string
}

// NewBookingForm offers the active items. A non-empty displayID (from a
// scanned QR link) fills the identifier and looks it up at once.
func NewBookingForm(deps Deps, items []model.Item, displayID string) *BookingForm {
	f := &BookingForm{
		deps:   deps,
		lookup: deps.newLookup(),
		sel:    catalog.NewSelection(items),
	}
	if strings.TrimSpace(displayID) != "" {
		f.lookup.SetIdentifier(displayID)
		f.lookup.Refresh()
	}
	return f
}

func (f *BookingForm) SetIdentifier(text string) {
	f.lookup.SetIdentifier(text)
	f.mu.Lock()
	f.message, f.errMsg = "", ""
	f.mu.Unlock()
}

func (f *BookingForm) RetryLookup() { f.lookup.Refresh() }

// Select chooses an item; an empty id clears the choice.
func (f *BookingForm) Select(itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message, f.errMsg = "", ""
	return f.sel.Select(itemID)
}

func (f *BookingForm) SetQuantityText(text string) {
	f.mu.Lock()
	f.sel.SetQuantityText(text)
	f.mu.Unlock()
}

func (f *BookingForm) Increment() {
	f.mu.Lock()
	f.sel.Increment()
	f.mu.Unlock()
}

func (f *BookingForm) Decrement() {
	f.mu.Lock()
	f.sel.Decrement()
	f.mu.Unlock()
}

// ReplaceItems reloads the catalog, dropping a selection that went away.
func (f *BookingForm) ReplaceItems(items []model.Item) {
	f.mu.Lock()
	f.sel.Replace(items)
	f.mu.Unlock()
}

func (f *BookingForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, selected := f.sel.Selected()
	return !f.busy && selected && f.lookup.Identifier() != ""
}

// Submit debits price times quantity of the selected item. On success the
// server balance is shown and the selection reset; the identifier stays so
// the member can book again.
func (f *BookingForm) Submit(ctx context.Context) (BookingSnapshot, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return f.Snapshot(), ErrBusy
	}
	item, _ := f.sel.Selected()
	req := ledger.TransactionRequest{
		Kind:      ledger.Debit,
		DisplayID: f.lookup.Identifier(),
		Amount:    f.sel.Total(),
		ItemID:    item.ID,
		Quantity:  f.sel.Quantity(),
	}
	if err := req.Validate(); err != nil {
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
	f.sel.Reset()
	f.message = msgBookingRecorded
	f.mu.Unlock()

	f.lookup.Accept(req.DisplayID, balance)
	f.deps.publish(queue.TransactionRecordedEvent{
		Kind:         string(ledger.Debit),
		DisplayID:    req.DisplayID,
		AmountCents:  int64(req.Amount),
		BalanceCents: int64(balance),
		ItemID:       item.ID,
		ItemName:     item.Name,
		Quantity:     req.Quantity,
	})
	return f.Snapshot(), nil
}

func (f *BookingForm) Snapshot() BookingSnapshot {
	ls := f.lookup.Snapshot()
	f.mu.Lock()
	defer f.mu.Unlock()
	item, selected := f.sel.Selected()
	total := f.sel.Total()
	return BookingSnapshot{
		Lookup:      ls,
		BalanceText: balanceText(ls),
		Items:       f.sel.Items(),
		ItemID:      item.ID,
		Quantity:    f.sel.Quantity(),
		TotalCents:  total,
		TotalText:   money.Format(total),
		Busy:        f.busy,
		CanSubmit:   !f.busy && selected && ls.Identifier != "",
		Message:     f.message,
		Error:       f.errMsg,
	}
}

func (f *BookingForm) Close() { f.lookup.Close() }
