// Package lookup keeps the balance shown next to an identifier field in
// step with what the user is typing. Lookups are debounced and stamped with
// increasing tokens; only the response to the latest token is shown.
package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// DefaultDelay is how long the identifier must stay unchanged before a
// lookup is issued.
const DefaultDelay = 300 * time.Millisecond

// State is the position of a field in the lookup state machine.
type State int

const (
	Idle State = iota
	Debouncing
	InFlight
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case InFlight:
		return "in_flight"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Status is what the display shows for the field.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusLoading  Status = "loading"
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Outcome classifies how a lookup ended.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
	OutcomeStale    Outcome = "stale"
)

// Snapshot is a point-in-time copy of a field's lookup state. Balance is
// meaningful only when Status is StatusFound.
type Snapshot struct {
	State      State       `json:"-"`
	Identifier string      `json:"identifier"`
	Status     Status      `json:"status"`
	Balance    money.Cents `json:"balance_cents"`
	Error      string      `json:"error,omitempty"`
}

// Known reports whether the snapshot carries a ledger balance.
func (s Snapshot) Known() bool { return s.Status == StatusFound }

// BalanceReader is the part of the ledger a controller needs.
type BalanceReader interface {
	BalanceByDisplayID(ctx context.Context, displayID string) (ledger.BalanceResult, error)
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	Delay     time.Duration
	Timeout   time.Duration
	Scheduler Scheduler
	// OnChange receives new snapshots, outside the controller's lock, in
	// the order the changes happened. A snapshot overtaken by a newer one
	// before delivery is skipped. OnChange must not call back into the
	// controller's mutating methods.
	OnChange func(Snapshot)
	// OnOutcome is told how each issued lookup ended.
	OnOutcome func(Outcome)
}

// Controller drives one identifier field.
type Controller struct {
	client    BalanceReader
	sched     Scheduler
	delay     time.Duration
	timeout   time.Duration
	onChange  func(Snapshot)
	onOutcome func(Outcome)

	mu          sync.Mutex
	state       State
	ident       string
	found       bool
	balance     money.Cents
	errMsg      string
	timer       Timer
	debounceGen uint64
	seq         uint64
	latest      uint64 // token whose response will be shown; 0 for none
	closed      bool
	changes     uint64

	notifyMu  sync.Mutex
	delivered uint64
}

// NewController returns an idle controller reading balances from client.
func NewController(client BalanceReader, opts Options) *Controller {
	c := &Controller{
		client:    client,
		sched:     opts.Scheduler,
		delay:     opts.Delay,
		timeout:   opts.Timeout,
		onChange:  opts.OnChange,
		onOutcome: opts.OnOutcome,
	}
	if c.sched == nil {
		c.sched = RealScheduler
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	return c
}

// SetIdentifier records new field text. It cancels the pending debounce
// and discards every outstanding lookup. Empty text moves the field to Idle
// at once; anything else starts a new debounce.
func (c *Controller) SetIdentifier(text string) {
	id := strings.TrimSpace(text)

	c.mu.Lock()
	if c.closed || id == c.ident {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.latest = 0
	c.ident = id
	c.found, c.balance, c.errMsg = false, 0, ""
	if id == "" {
		c.state = Idle
	} else {
		c.state = Debouncing
		gen := c.debounceGen
		c.timer = c.sched.AfterFunc(c.delay, func() { c.fire(gen) })
	}
	snap, v := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap, v)
}

// Refresh issues a lookup for the current identifier right away, skipping
// the debounce. Earlier lookups still in flight become stale. It is the
// retry action of the Failed state.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.closed || c.ident == "" {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	token, id := c.issueLocked()
	snap, v := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap, v)
	go c.run(token, id)
}

// Accept shows a balance confirmed by a ledger mutation for displayID. It
// is ignored when the field no longer holds displayID. Lookups issued
// before the mutation can no longer overwrite it.
func (c *Controller) Accept(displayID string, balance money.Cents) bool {
	c.mu.Lock()
	if c.closed || strings.TrimSpace(displayID) != c.ident || c.ident == "" {
		c.mu.Unlock()
		return false
	}
	c.stopTimerLocked()
	c.latest = 0
	c.state = Resolved
	c.found, c.balance, c.errMsg = true, balance, ""
	snap, v := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap, v)
	return true
}

// Close stops the timer and drops every outstanding lookup. The controller
// ignores all later input.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
	c.latest = 0
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Identifier returns the trimmed identifier the field currently holds.
func (c *Controller) Identifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ident
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.debounceGen || c.state != Debouncing {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	token, id := c.issueLocked()
	snap, v := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap, v)
	go c.run(token, id)
}

func (c *Controller) issueLocked() (uint64, string) {
	c.seq++
	c.latest = c.seq
	c.state = InFlight
	c.found, c.balance, c.errMsg = false, 0, ""
	return c.seq, c.ident
}

func (c *Controller) run(token uint64, id string) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.client.BalanceByDisplayID(ctx, id)
	c.complete(token, res, err)
}

func (c *Controller) complete(token uint64, res ledger.BalanceResult, err error) {
	c.mu.Lock()
	if c.closed || token != c.latest {
		c.mu.Unlock()
		c.outcome(OutcomeStale)
		return
	}
	c.latest = 0
	var out Outcome
	switch {
	case err != nil:
		c.state = Failed
		c.found, c.balance = false, 0
		c.errMsg = "balance lookup failed"
		out = OutcomeError
	case res.Found:
		c.state = Resolved
		c.found, c.balance = true, res.Balance
		out = OutcomeFound
	default:
		c.state = Resolved
		c.found, c.balance = false, 0
		out = OutcomeNotFound
	}
	snap, v := c.changedLocked()
	c.mu.Unlock()

	c.outcome(out)
	c.notify(snap, v)
}

func (c *Controller) stopTimerLocked() {
	c.debounceGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{State: c.state, Identifier: c.ident, Error: c.errMsg}
	switch c.state {
	case Idle:
		s.Status = StatusUnknown
	case Debouncing, InFlight:
		s.Status = StatusLoading
	case Resolved:
		if c.found {
			s.Status = StatusFound
			s.Balance = c.balance
		} else {
			s.Status = StatusNotFound
		}
	case Failed:
		s.Status = StatusError
	}
	return s
}

// changedLocked numbers a state change and returns its snapshot.
func (c *Controller) changedLocked() (Snapshot, uint64) {
	c.changes++
	return c.snapshotLocked(), c.changes
}

// notify delivers snapshot v unless a later one already went out.
func (c *Controller) notify(s Snapshot, v uint64) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if v <= c.delivered {
		return
	}
	c.delivered = v
	c.onChange(s)
}

func (c *Controller) outcome(o Outcome) {
	if c.onOutcome != nil {
		c.onOutcome(o)
	}
}
