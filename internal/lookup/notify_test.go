package lookup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

func TestNotify_SkipsSnapshotOvertakenByNewerOne(t *testing.T) {
	var got []Status
	c := NewController(nil, Options{OnChange: func(s Snapshot) { got = append(got, s.Status) }})

	c.mu.Lock()
	c.state = Debouncing
	loading, v1 := c.changedLocked()
	c.state = Resolved
	c.found, c.balance = true, 500
	found, v2 := c.changedLocked()
	c.mu.Unlock()

	// the resolved snapshot wins the race to the subscriber
	c.notify(found, v2)
	c.notify(loading, v1)

	assert.Equal(t, []Status{StatusFound}, got)
}

func TestNotify_ConcurrentChangesArriveInOrder(t *testing.T) {
	var seen []money.Cents
	c := NewController(nil, Options{OnChange: func(s Snapshot) { seen = append(seen, s.Balance) }})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.mu.Lock()
			c.state = Resolved
			c.found = true
			c.balance = money.Cents(c.changes + 1)
			snap, v := c.changedLocked()
			c.mu.Unlock()
			c.notify(snap, v)
		}()
	}
	wg.Wait()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i-1], seen[i])
	}
	assert.Equal(t, money.Cents(64), seen[len(seen)-1])
}
