package bank

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// Direction of a bank delta
type Direction string

const (
	Deposit  Direction = "deposit"
	Withdraw Direction = "withdraw"
)

// Fetcher loads the full bank content from the game API
type Fetcher interface {
	FetchBankItems(ctx context.Context) ([]game.ItemQuantity, error)
}

// Mirror is the process-wide, mutex-serialized account inventory service: the
// bank map (single source of truth for "what's in the bank" inside the
// process), per-character inventory and equipment maps, and short-lived
// reservations that give one character an exclusive hold on bank stock.
//
// The bank revision counter increments on every bank mutation so downstream
// caches (notably the gear state planner) can recompute only when something
// actually changed.
type Mirror struct {
	mu sync.Mutex

	bank     map[string]int
	revision uint64
	valid    bool

	characters map[string]*charHolding

	reservations map[string]*Reservation

	// Shared in-flight fetch: concurrent forced refreshes wait on the same call
	inflight *inflightFetch

	fetcher Fetcher
	clock   shared.Clock
	log     *zap.SugaredLogger
}

type charHolding struct {
	inventory map[string]int
	equipped  map[string]int
}

type inflightFetch struct {
	done chan struct{}
	err  error
}

// NewMirror creates an empty mirror. Call Refresh (or SetBank) before use.
func NewMirror(fetcher Fetcher, clock shared.Clock, log *zap.SugaredLogger) *Mirror {
	return &Mirror{
		bank:         make(map[string]int),
		characters:   make(map[string]*charHolding),
		reservations: make(map[string]*Reservation),
		fetcher:      fetcher,
		clock:        clock,
		log:          log,
	}
}

// UpdateCharacter fully replaces the character's inventory and equipment
// maps from a fresh snapshot. Full replacement, never a partial merge, so
// stale per-character counts cannot leak.
func (m *Mirror) UpdateCharacter(snapshot *character.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	holding := &charHolding{
		inventory: make(map[string]int),
		equipped:  make(map[string]int),
	}
	for _, slot := range snapshot.Inventory {
		if slot.Code != "" && slot.Quantity > 0 {
			holding.inventory[slot.Code] += slot.Quantity
		}
	}
	for slot, code := range snapshot.Equipment {
		if code == "" {
			continue
		}
		if qty, ok := snapshot.UtilityQuantities[slot]; ok && qty > 0 {
			holding.equipped[code] += qty
		} else {
			holding.equipped[code]++
		}
	}
	m.characters[snapshot.Name] = holding
}

// SetBank replaces the full bank content and marks the cache valid
func (m *Mirror) SetBank(items []game.ItemQuantity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bank = make(map[string]int, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			m.bank[it.Code] = it.Quantity
		}
	}
	m.valid = true
	m.revision++
}

// ApplyBankDelta applies a confirmed deposit or withdraw. Withdraws clamp at
// zero. Bumps the bank revision.
func (m *Mirror) ApplyBankDelta(items []game.ItemQuantity, direction Direction, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range items {
		switch direction {
		case Deposit:
			m.bank[it.Code] += it.Quantity
		case Withdraw:
			next := m.bank[it.Code] - it.Quantity
			if next < 0 {
				m.log.Warnw("bank delta clamped at zero",
					"code", it.Code, "have", m.bank[it.Code], "withdraw", it.Quantity, "reason", reason)
				next = 0
			}
			if next == 0 {
				delete(m.bank, it.Code)
			} else {
				m.bank[it.Code] = next
			}
		}
	}
	m.revision++
}

// InvalidateBank drops the cached bank so the next Refresh re-fetches
func (m *Mirror) InvalidateBank(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.log.Debugw("bank cache invalidated", "reason", reason)
}

// Refresh re-fetches the bank from the API when the cache is invalid or
// force is set. Concurrent callers share a single in-flight fetch.
func (m *Mirror) Refresh(ctx context.Context, force bool) error {
	m.mu.Lock()
	if m.valid && !force {
		m.mu.Unlock()
		return nil
	}
	if m.inflight != nil {
		call := m.inflight
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &inflightFetch{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	items, err := m.fetcher.FetchBankItems(ctx)

	m.mu.Lock()
	m.inflight = nil
	if err == nil {
		m.bank = make(map[string]int, len(items))
		for _, it := range items {
			if it.Quantity > 0 {
				m.bank[it.Code] = it.Quantity
			}
		}
		m.valid = true
		m.revision++
	}
	m.mu.Unlock()

	call.err = err
	close(call.done)
	return err
}

// BankRevision returns the monotonic bank mutation counter
func (m *Mirror) BankRevision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// BankCount returns the bank stock for a code, reservations ignored
func (m *Mirror) BankCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank[code]
}

// AvailableBankCount returns bank stock minus all non-expired reservations
// held by anyone other than excludeHolder. Never negative.
func (m *Mirror) AvailableBankCount(code, excludeHolder string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableLocked(code, excludeHolder)
}

func (m *Mirror) availableLocked(code, excludeHolder string) int {
	available := m.bank[code]
	now := m.clock.Now()
	for _, r := range m.reservations {
		if r.Code != code || r.Holder == excludeHolder || r.Expired(now) {
			continue
		}
		available -= r.Quantity
	}
	if available < 0 {
		return 0
	}
	return available
}

// InventoryCount returns how many units of code a character carries
func (m *Mirror) InventoryCount(name, code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.characters[name]; ok {
		return h.inventory[code]
	}
	return 0
}

// EquippedCount returns how many copies of code a character has equipped
func (m *Mirror) EquippedCount(name, code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.characters[name]; ok {
		return h.equipped[code]
	}
	return 0
}

// GlobalCount returns bank + all inventories + all equipped copies of a code.
// A self-consistent snapshot read under the mirror's lock.
func (m *Mirror) GlobalCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.bank[code]
	for _, h := range m.characters {
		total += h.inventory[code] + h.equipped[code]
	}
	return total
}

// GlobalView returns global counts for every known code, one consistent snapshot
func (m *Mirror) GlobalView() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.bank))
	for code, qty := range m.bank {
		out[code] += qty
	}
	for _, h := range m.characters {
		for code, qty := range h.inventory {
			out[code] += qty
		}
		for code, qty := range h.equipped {
			out[code] += qty
		}
	}
	return out
}

// AvailableBankView returns the withdrawable view of the bank for a holder:
// stock minus other holders' live reservations.
func (m *Mirror) AvailableBankView(holder string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.bank))
	for code := range m.bank {
		if available := m.availableLocked(code, holder); available > 0 {
			out[code] = available
		}
	}
	return out
}

// CharacterNames returns the tracked character names
func (m *Mirror) CharacterNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.characters))
	for name := range m.characters {
		names = append(names, name)
	}
	return names
}
