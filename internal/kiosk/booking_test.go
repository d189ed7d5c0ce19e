package kiosk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/prepaid-kiosk/internal/catalog"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger/ledgertest"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup/lookuptest"
	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

func catalogItems() []model.Item {
	return []model.Item{
		{ID: "c", Name: "Cola", PriceCents: 150, IsActive: true},
		{ID: "w", Name: "Water", PriceCents: 100, IsActive: true},
		{ID: "x", Name: "Old", PriceCents: 90, IsActive: false},
	}
}

func TestBookingForm_QRPrefillLooksUpAtOnce(t *testing.T) {
	gate := ledgertest.NewGate()
	client := &ledgertest.Client{BalanceFunc: gate.BalanceFunc}
	sched := &lookuptest.Scheduler{}

	f := NewBookingForm(testDeps(client, sched, nil), catalogItems(), " TEAM1 ")
	defer f.Close()

	call := gate.Next(t)
	assert.Equal(t, "TEAM1", call.DisplayID)
	assert.Equal(t, 0, sched.Pending())
	call.Found(1200)

	require.Eventually(t, func() bool {
		return f.Snapshot().BalanceText == "12.00"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestBookingForm_DebitResetsSelectionKeepsIdentifier(t *testing.T) {
	client := &ledgertest.Client{
		BookFunc: func(ctx context.Context, b ledger.Booking) (money.Cents, error) {
			return 550, nil
		},
	}
	pub := newRecordingPublisher()
	f := NewBookingForm(testDeps(client, &lookuptest.Scheduler{}, pub), catalogItems(), "")
	defer f.Close()

	f.SetIdentifier("TEAM1")
	require.NoError(t, f.Select("c"))
	f.SetQuantityText("3")
	assert.Equal(t, money.Cents(450), f.Snapshot().TotalCents)
	assert.True(t, f.CanSubmit())

	snap, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []ledger.Booking{{DisplayID: "TEAM1", ItemID: "c", Quantity: 3}}, client.Bookings())
	assert.Equal(t, "5.50", snap.BalanceText)
	assert.Equal(t, lookup.StatusFound, snap.Lookup.Status)
	assert.Equal(t, "TEAM1", snap.Lookup.Identifier)
	assert.Empty(t, snap.ItemID)
	assert.Equal(t, 1, snap.Quantity)
	assert.Equal(t, msgBookingRecorded, snap.Message)

	ev := pub.next(t)
	assert.Equal(t, "debit", ev.Kind)
	assert.Equal(t, "Cola", ev.ItemName)
	assert.Equal(t, int64(450), ev.AmountCents)
	assert.Equal(t, 3, ev.Quantity)
}

func TestBookingForm_RequiresSelection(t *testing.T) {
	client := &ledgertest.Client{}
	f := NewBookingForm(testDeps(client, &lookuptest.Scheduler{}, nil), catalogItems(), "")
	defer f.Close()

	f.SetIdentifier("TEAM1")
	assert.False(t, f.CanSubmit())

	snap, err := f.Submit(context.Background())
	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "item_id", verr.Field)
	assert.Equal(t, "select an item", snap.Error)
	assert.Empty(t, client.Bookings())
}

func TestBookingForm_InactiveItemCannotBeSelected(t *testing.T) {
	f := NewBookingForm(testDeps(&ledgertest.Client{}, &lookuptest.Scheduler{}, nil), catalogItems(), "")
	defer f.Close()

	assert.ErrorIs(t, f.Select("x"), catalog.ErrItemUnavailable)
	assert.Len(t, f.Snapshot().Items, 2)
}

func TestBookingForm_RefusalKeepsSelection(t *testing.T) {
	client := &ledgertest.Client{
		BalanceFunc: func(ctx context.Context, id string) (ledger.BalanceResult, error) {
			return ledger.Found(100), nil
		},
		BookFunc: func(ctx context.Context, b ledger.Booking) (money.Cents, error) {
			return 0, &ledger.RemoteError{Procedure: "book_transaction", Message: "insufficient funds"}
		},
	}
	sched := &lookuptest.Scheduler{}
	f := NewBookingForm(testDeps(client, sched, nil), catalogItems(), "")
	defer f.Close()

	f.SetIdentifier("TEAM1")
	sched.FireAll()
	require.Eventually(t, func() bool {
		return f.Snapshot().Lookup.Status == lookup.StatusFound
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.Select("w"))
	f.Increment()
	snap, err := f.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, "insufficient funds", snap.Error)
	assert.Equal(t, "1.00", snap.BalanceText)
	assert.Equal(t, "w", snap.ItemID)
	assert.Equal(t, 2, snap.Quantity)
}

func TestBookingForm_QuantityControls(t *testing.T) {
	f := NewBookingForm(testDeps(&ledgertest.Client{}, &lookuptest.Scheduler{}, nil), catalogItems(), "")
	defer f.Close()
	require.NoError(t, f.Select("w"))

	f.Decrement()
	assert.Equal(t, 1, f.Snapshot().Quantity)
	f.SetQuantityText("nope")
	assert.Equal(t, 1, f.Snapshot().Quantity)
	f.SetQuantityText("4")
	f.Increment()
	snap := f.Snapshot()
	assert.Equal(t, 5, snap.Quantity)
	assert.Equal(t, "5.00", snap.TotalText)
}
