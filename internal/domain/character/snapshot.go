package character

import (
	"time"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// Task types
const (
	TaskTypeMonsters = "monsters"
	TaskTypeItems    = "items"
)

// InventorySlot is one ordered inventory entry
type InventorySlot struct {
	Slot     int
	Code     string
	Quantity int
}

// Snapshot is the mutable record of one character, refreshed after every
// action. It is owned exclusively by that character's control loop; other
// components only see copies through the snapshot accessor.
type Snapshot struct {
	Name string

	X int
	Y int

	Level int
	XP    int
	MaxXP int
	Gold  int

	HP    int
	MaxHP int

	Haste          int
	CriticalStrike int

	// Per-element combat stats as reported by the API (equipment included)
	AttackFire  int
	AttackEarth int
	AttackWater int
	AttackAir   int
	DmgFire     int
	DmgEarth    int
	DmgWater    int
	DmgAir      int
	Dmg         int
	ResFire     int
	ResEarth    int
	ResWater    int
	ResAir      int

	SkillLevels map[string]int

	// Equipped item code per slot; empty string means the slot is empty
	Equipment map[string]string
	// Potion stacks in the utility slots
	UtilityQuantities map[string]int

	Inventory         []InventorySlot
	InventoryMaxItems int

	Task         string
	TaskType     string
	TaskProgress int
	TaskTotal    int

	Cooldown shared.Cooldown
}

// SkillLevel returns the character's level in the given skill (0 if unknown)
func (s *Snapshot) SkillLevel(skill string) int {
	return s.SkillLevels[skill]
}

// HPPercent returns current HP as a 0..100 percentage of max
func (s *Snapshot) HPPercent() int {
	if s.MaxHP <= 0 {
		return 0
	}
	return s.HP * 100 / s.MaxHP
}

// ItemCount returns how many units of the code are in the inventory
func (s *Snapshot) ItemCount(code string) int {
	total := 0
	for _, slot := range s.Inventory {
		if slot.Code == code {
			total += slot.Quantity
		}
	}
	return total
}

// HasItem reports whether the inventory holds at least qty units of code
func (s *Snapshot) HasItem(code string, qty int) bool {
	return s.ItemCount(code) >= qty
}

// InventoryTotal returns the total units across all inventory slots
func (s *Snapshot) InventoryTotal() int {
	total := 0
	for _, slot := range s.Inventory {
		total += slot.Quantity
	}
	return total
}

// InventoryFree returns the remaining carry capacity in units
func (s *Snapshot) InventoryFree() int {
	free := s.InventoryMaxItems - s.InventoryTotal()
	if free < 0 {
		return 0
	}
	return free
}

// InventoryFull reports whether no more units fit
func (s *Snapshot) InventoryFull() bool {
	return s.InventoryFree() == 0
}

// InventoryItems returns the inventory as (code, qty) pairs, skipping empties
func (s *Snapshot) InventoryItems() []game.ItemQuantity {
	var out []game.ItemQuantity
	for _, slot := range s.Inventory {
		if slot.Code == "" || slot.Quantity <= 0 {
			continue
		}
		out = append(out, game.ItemQuantity{Code: slot.Code, Quantity: slot.Quantity})
	}
	return out
}

// EquippedCount returns how many copies of the code are currently equipped.
// Rings can contribute two; utility slots contribute their stack quantity.
func (s *Snapshot) EquippedCount(code string) int {
	if code == "" {
		return 0
	}
	total := 0
	for slot, equipped := range s.Equipment {
		if equipped != code {
			continue
		}
		if qty, ok := s.UtilityQuantities[slot]; ok && qty > 0 {
			total += qty
		} else {
			total++
		}
	}
	return total
}

// EquipmentCode returns the item code equipped in the slot ("" when empty)
func (s *Snapshot) EquipmentCode(slot string) string {
	return s.Equipment[slot]
}

// HasTask reports whether the character currently holds a task
func (s *Snapshot) HasTask() bool {
	return s.Task != ""
}

// TaskComplete reports whether the current task has reached its total
func (s *Snapshot) TaskComplete() bool {
	return s.HasTask() && s.TaskProgress >= s.TaskTotal
}

// OnCooldown reports whether the character cannot act yet
func (s *Snapshot) OnCooldown(now time.Time) bool {
	return s.Cooldown.Active(now)
}

// At reports whether the character stands on the given coordinates
func (s *Snapshot) At(x, y int) bool {
	return s.X == x && s.Y == y
}

// Clone returns a deep copy safe to hand to other goroutines
func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.SkillLevels = make(map[string]int, len(s.SkillLevels))
	for k, v := range s.SkillLevels {
		clone.SkillLevels[k] = v
	}
	clone.Equipment = make(map[string]string, len(s.Equipment))
	for k, v := range s.Equipment {
		clone.Equipment[k] = v
	}
	clone.UtilityQuantities = make(map[string]int, len(s.UtilityQuantities))
	for k, v := range s.UtilityQuantities {
		clone.UtilityQuantities[k] = v
	}
	clone.Inventory = make([]InventorySlot, len(s.Inventory))
	copy(clone.Inventory, s.Inventory)
	return &clone
}
