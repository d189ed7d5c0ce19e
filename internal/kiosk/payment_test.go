package kiosk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger/ledgertest"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup/lookuptest"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

type PaymentFormSuite struct {
	suite.Suite
	client *ledgertest.Client
	gate   *ledgertest.Gate
	sched  *lookuptest.Scheduler
	pub    *recordingPublisher
	form   *PaymentForm
}

func (s *PaymentFormSuite) SetupTest() {
	s.gate = ledgertest.NewGate()
	s.client = &ledgertest.Client{BalanceFunc: s.gate.BalanceFunc}
	s.sched = &lookuptest.Scheduler{}
	s.pub = newRecordingPublisher()
	s.form = NewPaymentForm(testDeps(s.client, s.sched, s.pub), 7)
}

func (s *PaymentFormSuite) TearDownTest() {
	s.form.Close()
}

// showBalance types id and answers its lookup with balance.
func (s *PaymentFormSuite) showBalance(id string, balance money.Cents) {
	s.form.SetIdentifier(id)
	s.sched.FireAll()
	s.gate.Next(s.T()).Found(balance)
	s.Require().Eventually(func() bool {
		return s.form.Snapshot().Lookup.Status == lookup.StatusFound
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *PaymentFormSuite) TestCreditShowsServerBalance() {
	s.client.PaymentFunc = func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
		return 1000, nil
	}
	s.showBalance("MAX23", 500)
	s.Equal("5.00", s.form.Snapshot().BalanceText)

	s.form.SetAmountText("5,00")
	snap, err := s.form.Submit(context.Background())
	s.Require().NoError(err)

	s.Equal("10.00", snap.BalanceText)
	s.Equal(money.Cents(1000), snap.Lookup.Balance)
	s.Equal("", snap.Amount)
	s.Equal("MAX23", snap.Lookup.Identifier)
	s.Equal("Bar", snap.Method)
	s.Equal(msgPaymentRecorded, snap.Message)
	s.Equal([]ledger.Payment{{DisplayID: "MAX23", Amount: 500, Method: "Bar", ActorID: 7}}, s.client.Payments())

	ev := s.pub.next(s.T())
	s.Equal("credit", ev.Kind)
	s.Equal(int64(500), ev.AmountCents)
	s.Equal(int64(1000), ev.BalanceCents)
	s.NotEmpty(ev.EventID)
}

func (s *PaymentFormSuite) TestRemoteRefusalKeepsBalanceAndInputs() {
	s.client.PaymentFunc = func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
		return 0, &ledger.RemoteError{Procedure: "admin_add_payment_by_display_id", Message: "account inactive"}
	}
	s.showBalance("MAX23", 500)

	s.form.SetAmountText("5,00")
	snap, err := s.form.Submit(context.Background())

	var serr *ledger.SubmissionError
	s.Require().ErrorAs(err, &serr)
	s.True(serr.Rejected)
	s.Equal("account inactive", snap.Error)
	s.Equal("5.00", snap.BalanceText)
	s.Equal("5,00", snap.Amount)
	s.True(snap.CanSubmit)
}

func (s *PaymentFormSuite) TestTransportFailureIsReported() {
	s.client.PaymentFunc = func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
		return 0, errors.New("connection refused")
	}
	s.showBalance("MAX23", 500)
	s.form.SetAmountText("1")

	snap, err := s.form.Submit(context.Background())
	s.Require().Error(err)
	s.Equal("ledger unavailable", snap.Error)
	s.Equal("5.00", snap.BalanceText)
}

func (s *PaymentFormSuite) TestEmptyIdentifierNeverCallsLedger() {
	snap := s.form.Snapshot()
	s.Equal(lookup.StatusUnknown, snap.Lookup.Status)
	s.False(snap.CanSubmit)
	s.False(s.form.CanSubmit())
	s.Equal(0, s.sched.Pending())

	s.form.SetAmountText("5")
	_, err := s.form.Submit(context.Background())

	var verr *ledger.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("display_id", verr.Field)
	s.Empty(s.client.Payments())
	s.Empty(s.client.Lookups())
	s.gate.AssertIdle(s.T())
}

func (s *PaymentFormSuite) TestInvalidAmountNeverCallsLedger() {
	s.form.SetIdentifier("MAX23")
	for _, text := range []string{"", "abc", "0", "-2", "0,004"} {
		s.form.SetAmountText(text)
		snap, err := s.form.Submit(context.Background())

		var verr *ledger.ValidationError
		s.Require().ErrorAs(err, &verr, "amount %q", text)
		s.Equal("amount", verr.Field)
		s.Equal("enter a valid amount", snap.Error)
	}
	s.Empty(s.client.Payments())
}

func (s *PaymentFormSuite) TestSecondSubmitWhileBusy() {
	release := make(chan struct{})
	s.client.PaymentFunc = func(ctx context.Context, p ledger.Payment) (money.Cents, error) {
		<-release
		return 700, nil
	}
	s.form.SetIdentifier("MAX23")
	s.form.SetAmountText("7")

	done := make(chan error, 1)
	go func() {
		_, err := s.form.Submit(context.Background())
		done <- err
	}()
	s.Require().Eventually(func() bool { return s.form.Snapshot().Busy }, 2*time.Second, 5*time.Millisecond)
	s.False(s.form.CanSubmit())

	_, err := s.form.Submit(context.Background())
	s.ErrorIs(err, ErrBusy)

	close(release)
	s.Require().NoError(<-done)
	s.Len(s.client.Payments(), 1)
	s.Equal("7.00", s.form.Snapshot().BalanceText)
}

func (s *PaymentFormSuite) TestQuickAmountAndMethod() {
	s.Require().NoError(s.form.ApplyQuickAmount(50))
	s.Equal("50.00", s.form.Snapshot().Amount)
	s.ErrorIs(s.form.ApplyQuickAmount(30), ErrUnknownQuickAmount)
	s.Equal("50.00", s.form.Snapshot().Amount)

	s.Require().NoError(s.form.SetMethod("Überweisung"))
	s.ErrorIs(s.form.SetMethod("Card"), ErrUnknownMethod)
	s.Equal("Überweisung", s.form.Snapshot().Method)
}

func TestPaymentFormSuite(t *testing.T) {
	suite.Run(t, new(PaymentFormSuite))
}

func TestPaymentForm_ConfiguredChoices(t *testing.T) {
	deps := Deps{
		Ledger:       &ledgertest.Client{},
		Scheduler:    &lookuptest.Scheduler{},
		Methods:      []string{"Card"},
		QuickAmounts: []int64{5},
	}
	f := NewPaymentForm(deps, 1)
	defer f.Close()

	snap := f.Snapshot()
	require.Equal(t, "Card", snap.Method)
	require.Equal(t, []int64{5}, snap.QuickAmounts)
	require.NoError(t, f.ApplyQuickAmount(5))
	require.ErrorIs(t, f.ApplyQuickAmount(20), ErrUnknownQuickAmount)
}
