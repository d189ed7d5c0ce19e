package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	credit := TransactionRecordedEvent{
		EventID: "e1", Kind: "credit", DisplayID: "MAX23",
		AmountCents: 500, BalanceCents: 1000, Method: "Bar", ActorID: 7,
		RecordedAt: "2026-01-02T03:04:05Z",
	}
	assert.Equal(t,
		"[2026-01-02T03:04:05Z] credit recorded | event_id=e1 | display_id=MAX23 | amount=500 cents | balance=1000 cents | method=\"Bar\" | actor_id=7\n",
		FormatLine(credit))

	debit := TransactionRecordedEvent{
		EventID: "e2", Kind: "debit", DisplayID: "MAX23",
		AmountCents: 300, BalanceCents: 700, ItemID: "i1", ItemName: "Cola", Quantity: 2,
		RecordedAt: "2026-01-02T03:04:05Z",
	}
	assert.Contains(t, FormatLine(debit), `item_id=i1 | item="Cola" | qty=2`)
}

func TestAppendEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "transactions.log")
	body, err := json.Marshal(TransactionRecordedEvent{EventID: "e1", Kind: "credit", DisplayID: "A1"})
	require.NoError(t, err)

	require.NoError(t, appendEvent(path, body))
	require.NoError(t, appendEvent(path, body))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(string(data)))
}

func TestAppendEvent_BadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.log")
	assert.Error(t, appendEvent(path, []byte("{not json")))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
