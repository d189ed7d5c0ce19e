package kiosk

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/prepaid-kiosk/internal/metrics"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

const (
	kindBooking = "booking"
	kindPayment = "payment"
)

type session struct {
	kind     string
	booking  *BookingForm
	payment  *PaymentForm
	lastSeen time.Time
}

func (s *session) close() {
	if s.booking != nil {
		s.booking.Close()
	}
	if s.payment != nil {
		s.payment.Close()
	}
}

// Sessions keeps the open forms by id. Sessions idle for longer than the
// TTL are closed by Sweep and are no longer returned.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*session
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{ttl: ttl, now: time.Now, items: make(map[string]*session)}
}

// AddBooking registers f and returns its session id.
func (s *Sessions) AddBooking(f *BookingForm) string {
	return s.add(&session{kind: kindBooking, booking: f})
}

// AddPayment registers f and returns its session id.
func (s *Sessions) AddPayment(f *PaymentForm) string {
	return s.add(&session{kind: kindPayment, payment: f})
}

func (s *Sessions) add(sess *session) string {
	id := uuid.NewString()
	s.mu.Lock()
	sess.lastSeen = s.now()
	s.items[id] = sess
	s.mu.Unlock()
	metrics.Sessions.WithLabelValues(sess.kind).Inc()
	return id
}

// Booking returns the booking form of session id and marks it used.
func (s *Sessions) Booking(id string) (*BookingForm, error) {
	sess, err := s.touch(id, kindBooking)
	if err != nil {
		return nil, err
	}
	return sess.booking, nil
}

// Payment returns the payment form of session id and marks it used.
func (s *Sessions) Payment(id string) (*PaymentForm, error) {
	sess, err := s.touch(id, kindPayment)
	if err != nil {
		return nil, err
	}
	return sess.payment, nil
}

func (s *Sessions) touch(id, kind string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok || sess.kind != kind {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// RemoveBooking closes and forgets booking session id.
func (s *Sessions) RemoveBooking(id string) error { return s.remove(id, kindBooking) }

// RemovePayment closes and forgets payment session id.
func (s *Sessions) RemovePayment(id string) error { return s.remove(id, kindPayment) }

func (s *Sessions) remove(id, kind string) error {
	s.mu.Lock()
	sess, ok := s.items[id]
	if !ok || sess.kind != kind {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.items, id)
	s.mu.Unlock()

	sess.close()
	metrics.Sessions.WithLabelValues(sess.kind).Dec()
	return nil
}

// Sweep closes every expired session and returns how many it removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	var expired []*session
	s.mu.Lock()
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
		metrics.Sessions.WithLabelValues(sess.kind).Dec()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// CloseAll closes and forgets every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()
	for _, sess := range all {
		sess.close()
		metrics.Sessions.WithLabelValues(sess.kind).Dec()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
