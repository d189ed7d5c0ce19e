// Package queue defines the messages exchanged over RabbitMQ together with
// the publisher and the audit log consumer.
package queue

// TransactionRecordedEvent is published after the ledger accepted a credit
// or debit. It carries what the audit log needs without another database
// round trip.
type TransactionRecordedEvent struct {
	EventID      string `json:"event_id"`
	Kind         string `json:"kind"`
	DisplayID    string `json:"display_id"`
	AmountCents  int64  `json:"amount_cents"`
	BalanceCents int64  `json:"balance_cents"`
	Method       string `json:"method,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	ItemName     string `json:"item_name,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
	ActorID      uint64 `json:"actor_id,omitempty"`
	RecordedAt   string `json:"recorded_at"`
}
