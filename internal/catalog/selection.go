// Package catalog turns a chosen item and quantity into the amount a
// booking debits.
package catalog

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/prepaid-kiosk/internal/model"
	"github.com/iliyamo/prepaid-kiosk/internal/money"
)

// MaxQuantity caps a single booking line.
const MaxQuantity = 999

// MaxPriceCents is the highest unit price whose MaxQuantity total still
// fits in Cents.
const MaxPriceCents = math.MaxInt64 / MaxQuantity

// ErrItemUnavailable is returned when selecting an id that is not an
// active catalog item.
var ErrItemUnavailable = errors.New("item unavailable")

// Selection is the catalog as offered at a kiosk plus the current choice.
// It is not safe for concurrent use; the owning form serialises access.
type Selection struct {
	items    []model.Item
	selected string
	qty      int
}

// NewSelection keeps the active items, ordered by name.
func NewSelection(items []model.Item) *Selection {
	s := &Selection{qty: 1}
	s.Replace(items)
	return s
}

// Replace reloads the catalog. A selected item that is gone or inactive
// is deselected.
func (s *Selection) Replace(items []model.Item) {
	active := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.IsActive {
			active = append(active, it)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Name < active[j].Name })
	s.items = active
	if _, ok := s.find(s.selected); !ok {
		s.selected = ""
	}
}

// Items returns the selectable items.
func (s *Selection) Items() []model.Item {
	return append([]model.Item(nil), s.items...)
}

// Select chooses an item by id. An empty id clears the choice.
func (s *Selection) Select(id string) error {
	if id == "" {
		s.selected = ""
		return nil
	}
	if _, ok := s.find(id); !ok {
		return ErrItemUnavailable
	}
	s.selected = id
	return nil
}

// Selected returns the chosen item.
func (s *Selection) Selected() (model.Item, bool) {
	return s.find(s.selected)
}

// Quantity returns the current quantity, always at least 1.
func (s *Selection) Quantity() int { return s.qty }

// SetQuantity clamps n into [1, MaxQuantity].
func (s *Selection) SetQuantity(n int) {
	switch {
	case n < 1:
		n = 1
	case n > MaxQuantity:
		n = MaxQuantity
	}
	s.qty = n
}

// SetQuantityText coerces typed text to a quantity. Anything that is not a
// positive whole number becomes 1.
func (s *Selection) SetQuantityText(text string) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		n = 1
	}
	s.SetQuantity(n)
}

// Increment adds one.
func (s *Selection) Increment() { s.SetQuantity(s.qty + 1) }

// Decrement removes one, stopping at 1.
func (s *Selection) Decrement() { s.SetQuantity(s.qty - 1) }

// Total is unit price times quantity, or 0 with nothing selected. A
// product that would overflow is also 0, which a booking refuses.
func (s *Selection) Total() money.Cents {
	it, ok := s.Selected()
	if !ok || it.PriceCents <= 0 || it.PriceCents > math.MaxInt64/int64(s.qty) {
		return 0
	}
	return money.Cents(it.PriceCents * int64(s.qty))
}

// Reset clears the choice and sets the quantity back to 1.
func (s *Selection) Reset() {
	s.selected = ""
	s.qty = 1
}

func (s *Selection) find(id string) (model.Item, bool) {
	if id == "" {
		return model.Item{}, false
	}
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}
