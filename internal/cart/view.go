package cart

import (
	"github.com/emberlane/storefront-backend/pkg/money"
)

// View is the read model handed to UI consumers. Every field derives from
// the single stored snapshot; nothing here is separately mutable.
type View struct {
	ID                   string        `json:"id,omitempty"`
	Lines                []Line        `json:"lines"`
	TotalQuantity        int           `json:"total_quantity"`
	Subtotal             money.Amount  `json:"subtotal"`
	Shipping             *money.Amount `json:"shipping,omitempty"`
	Total                money.Amount  `json:"total"`
	IsFreeShipping       bool          `json:"is_free_shipping"`
	AmountToFreeShipping money.Amount  `json:"amount_to_free_shipping"`
	IsLoading            bool          `json:"is_loading"`
	IsOpen               bool          `json:"is_open"`
}

// Snapshot derives the current view. Line list and total quantity reflect
// optimistic edits; the money figures stay on the last remote-confirmed
// values until the next snapshot arrives.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() View {
	v := View{
		Lines:     []Line{},
		IsLoading: s.loading,
		IsOpen:    s.open,
	}

	if s.view != nil {
		v.ID = s.view.ID
		v.Lines = make([]Line, len(s.view.Lines))
		copy(v.Lines, s.view.Lines)
		v.TotalQuantity = s.view.TotalQuantity
	}

	if s.cart != nil {
		v.Subtotal = s.cart.Cost.Subtotal
		v.Total = s.cart.Cost.Total
		if s.cart.Cost.Shipping != nil {
			shipping := *s.cart.Cost.Shipping
			v.Shipping = &shipping
		}
	}

	status := money.ComputeShippingStatus(v.Subtotal, s.cfg.FreeShippingThreshold)
	v.IsFreeShipping = status.IsFreeShipping
	v.AmountToFreeShipping = status.AmountRemaining
	return v
}

// Subscribe registers an observer. The channel carries the latest view and
// is conflated: a slow consumer sees the newest state, not every
// intermediate one. The returned cancel must be called to release the slot.
func (s *Store) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// notify pushes the current view to all subscribers, replacing any unread
// value so nobody blocks the store.
func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	v := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
