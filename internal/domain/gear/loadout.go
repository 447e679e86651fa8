package gear

import (
	"github.com/adelacruz/artifacts-go/internal/domain/character"
)

// Loadout maps an equipment slot to an item code. An empty string means the
// slot is deliberately left empty.
type Loadout map[string]string

// Counts returns how many copies of each code the loadout needs. Two ring
// slots with the same code count as two.
func (l Loadout) Counts() map[string]int {
	counts := make(map[string]int)
	for _, code := range l {
		if code != "" {
			counts[code]++
		}
	}
	return counts
}

// Get returns the code for a slot ("" when unset or empty)
func (l Loadout) Get(slot string) string {
	return l[slot]
}

// Clone returns an independent copy
func (l Loadout) Clone() Loadout {
	out := make(Loadout, len(l))
	for slot, code := range l {
		out[slot] = code
	}
	return out
}

// FromEquipment captures the currently equipped optimized slots of a snapshot
func FromEquipment(s *character.Snapshot) Loadout {
	out := make(Loadout, len(character.OptimizedSlots))
	for _, slot := range character.OptimizedSlots {
		out[slot] = s.EquipmentCode(slot)
	}
	return out
}

// Diff returns the slots where want differs from have
func (l Loadout) Diff(have Loadout) []string {
	var slots []string
	for _, slot := range character.OptimizedSlots {
		if l[slot] != have[slot] {
			slots = append(slots, slot)
		}
	}
	return slots
}
