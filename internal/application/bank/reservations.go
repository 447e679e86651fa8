package bank

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// Reservation is a short-lived exclusive hold on bank stock, preventing two
// characters from racing on the same withdraw.
type Reservation struct {
	ID        string
	Code      string
	Quantity  int
	Holder    string
	ExpiresAt time.Time
}

// Expired reports whether the reservation's TTL has elapsed
func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Reserve atomically places a hold on qty units of code for the holder.
// Succeeds only when the bank stock not reserved by others covers qty.
// Returns the reservation id, or "" and false on insufficient stock.
func (m *Mirror) Reserve(code string, qty int, holder string, ttl time.Duration) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserveLocked(code, qty, holder, ttl)
}

func (m *Mirror) reserveLocked(code string, qty int, holder string, ttl time.Duration) (string, bool) {
	if qty <= 0 {
		return "", false
	}
	if m.availableLocked(code, holder) < qty {
		return "", false
	}
	r := &Reservation{
		ID:        uuid.NewString(),
		Code:      code,
		Quantity:  qty,
		Holder:    holder,
		ExpiresAt: m.clock.Now().Add(ttl),
	}
	m.reservations[r.ID] = r
	return r.ID, true
}

// ReserveMany places holds on every item or none: on the first failure all
// holds created so far are rolled back inside the same critical section.
func (m *Mirror) ReserveMany(items []game.ItemQuantity, holder string, ttl time.Duration) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(items))
	for _, it := range items {
		id, ok := m.reserveLocked(it.Code, it.Quantity, holder, ttl)
		if !ok {
			for _, created := range ids {
				delete(m.reservations, created)
			}
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// Release removes a reservation by id. Releasing an unknown id is a no-op.
func (m *Mirror) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, id)
}

// ReleaseAllForChar drops every reservation the holder still has
func (m *Mirror) ReleaseAllForChar(holder string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.reservations {
		if r.Holder == holder {
			delete(m.reservations, id)
		}
	}
}

// CleanupExpiredReservations harvests reservations whose TTL elapsed.
// Expired holds are also skipped lazily by every availability read, so this
// only reclaims memory.
func (m *Mirror) CleanupExpiredReservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	removed := 0
	for id, r := range m.reservations {
		if r.Expired(now) {
			delete(m.reservations, id)
			removed++
		}
	}
	return removed
}

// ActiveReservations counts live holds, for metrics
func (m *Mirror) ActiveReservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	count := 0
	for _, r := range m.reservations {
		if !r.Expired(now) {
			count++
		}
	}
	return count
}
