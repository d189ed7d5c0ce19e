package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger/ledgertest"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

func TestSubmit_ValidationNeverCallsLedger(t *testing.T) {
	tests := []struct {
		name  string
		req   ledger.TransactionRequest
		field string
	}{
		{"empty display id", ledger.TransactionRequest{Kind: ledger.Credit, DisplayID: "  ", Amount: 100, Method: "Bar"}, "display_id"},
		{"zero amount", ledger.TransactionRequest{Kind: ledger.Credit, DisplayID: "MAX23", Amount: 0, Method: "Bar"}, "amount"},
		{"negative amount", ledger.TransactionRequest{Kind: ledger.Debit, DisplayID: "MAX23", Amount: -5, ItemID: "i1", Quantity: 1}, "amount"},
		{"credit without method", ledger.TransactionRequest{Kind: ledger.Credit, DisplayID: "MAX23", Amount: 100}, "method"},
		{"debit without item", ledger.TransactionRequest{Kind: ledger.Debit, DisplayID: "MAX23", Amount: 100, Quantity: 1}, "item_id"},
		{"debit with zero quantity", ledger.TransactionRequest{Kind: ledger.Debit, DisplayID: "MAX23", Amount: 100, ItemID: "i1"}, "quantity"},
		{"unknown kind", ledger.TransactionRequest{DisplayID: "MAX23", Amount: 100}, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &ledgertest.Client{}
			_, err := ledger.NewSubmitter(client).Submit(context.Background(), tt.req)

			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, client.Payments())
			assert.Empty(t, client.Bookings())
		})
	}
}

func TestSubmit_CreditReturnsServerBalance(t *testing.T) {
	client := &ledgertest.Client{
		PaymentFunc: func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
			return 1000, nil
		},
	}
	got, err := ledger.NewSubmitter(client).Submit(context.Background(), ledger.TransactionRequest{
		Kind: ledger.Credit, DisplayID: " MAX23 ", Amount: 500, Method: "Bar", ActorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1000), got)
	require.Len(t, client.Payments(), 1)
	assert.Equal(t, ledger.Payment{DisplayID: "MAX23", Amount: 500, Method: "Bar", ActorID: 7}, client.Payments()[0])
}

func TestSubmit_DebitCallsBookOnce(t *testing.T) {
	client := &ledgertest.Client{
		BookFunc: func(ctx context.Context, b ledger.Booking) (money.Cents, error) {
			return 250, nil
		},
	}
	got, err := ledger.NewSubmitter(client).Submit(context.Background(), ledger.TransactionRequest{
		Kind: ledger.Debit, DisplayID: "TEAM1", Amount: 300, ItemID: "cola", Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(250), got)
	assert.Equal(t, []ledger.Booking{{DisplayID: "TEAM1", ItemID: "cola", Quantity: 2}}, client.Bookings())
}

func TestSubmit_RemoteRefusalKeepsMessage(t *testing.T) {
	client := &ledgertest.Client{
		BookFunc: func(ctx context.Context, b ledger.Booking) (money.Cents, error) {
			return 0, &ledger.RemoteError{Procedure: "book_transaction", Message: "insufficient funds"}
		},
	}
	_, err := ledger.NewSubmitter(client).Submit(context.Background(), ledger.TransactionRequest{
		Kind: ledger.Debit, DisplayID: "TEAM1", Amount: 300, ItemID: "cola", Quantity: 1,
	})
	var serr *ledger.SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Rejected)
	assert.Equal(t, "insufficient funds", serr.Message)
	assert.Len(t, client.Bookings(), 1)
}

func TestSubmit_TransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	client := &ledgertest.Client{
		PaymentFunc: func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
			return 0, boom
		},
	}
	_, err := ledger.NewSubmitter(client).Submit(context.Background(), ledger.TransactionRequest{
		Kind: ledger.Credit, DisplayID: "MAX23", Amount: 100, Method: "Bar",
	})
	var serr *ledger.SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.False(t, serr.Rejected)
	assert.ErrorIs(t, err, boom)
}

func TestNewMySQLClient_ProcedureName(t *testing.T) {
	c, err := ledger.NewMySQLClient(nil, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = ledger.NewMySQLClient(nil, "book_kiosk_v2", 0)
	assert.NoError(t, err)

	_, err = ledger.NewMySQLClient(nil, "book; DROP TABLE accounts", 0)
	assert.Error(t, err)
}

func TestMapProcedureError(t *testing.T) {
	err := ledger.MapProcedureError("book_transaction", &mysql.MySQLError{Number: 1644, Message: "unknown display id"})
	var remote *ledger.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "unknown display id", remote.Message)

	plain := ledger.MapProcedureError("book_transaction", &mysql.MySQLError{Number: 1305, Message: "PROCEDURE does not exist"})
	assert.False(t, errors.As(plain, &remote))
}
