package executors

import "github.com/adelacruz/artifacts-go/internal/domain/character"

// Reserve policy: a slice of inventory capacity stays free for other
// routines (potions, task coins, pickups) while the crafting executor loops.
const (
	reservePct      = 10
	reserveMinSlots = 8
	reserveMaxSlots = 20
)

// ReserveSlots returns how much inventory capacity to keep free: 10% of
// capacity, bounded to [8, 20], never the whole inventory.
func ReserveSlots(snap *character.Snapshot) int {
	capacity := snap.InventoryMaxItems
	reserve := capacity * reservePct / 100
	if reserve < reserveMinSlots {
		reserve = reserveMinSlots
	}
	if reserve > reserveMaxSlots {
		reserve = reserveMaxSlots
	}
	if reserve >= capacity {
		reserve = capacity - 1
	}
	if reserve < 0 {
		reserve = 0
	}
	return reserve
}

// UnderReservePressure reports whether continuing to fill the inventory
// would eat into the reserve
func UnderReservePressure(snap *character.Snapshot) bool {
	return snap.InventoryFree() <= ReserveSlots(snap)
}
