package kiosk

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger/ledgertest"
	"github.com/iliyamo/prepaid-kiosk/internal/lookup/lookuptest"
	"github.com/iliyamo/prepaid-kiosk/internal/queue"
)

type recordingPublisher struct {
	events chan queue.TransactionRecordedEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.TransactionRecordedEvent, 8)}
}

func (p *recordingPublisher) PublishTransactionRecorded(ctx context.Context, ev queue.TransactionRecordedEvent) error {
	p.events <- ev
	return nil
}

func (p *recordingPublisher) next(t *testing.T) queue.TransactionRecordedEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.TransactionRecordedEvent{}
	}
}

func testDeps(client *ledgertest.Client, sched *lookuptest.Scheduler, pub EventPublisher) Deps {
	return Deps{Ledger: client, Scheduler: sched, Publisher: pub}
}
