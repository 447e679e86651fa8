package character

import (
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// Action outcomes are tagged variants rather than untyped result maps: each
// action endpoint produces exactly one of these, with the fields the
// executors actually read.

// FightOutcome is the result of a fight action
type FightOutcome struct {
	Win     bool
	Turns   int
	XP      int
	Gold    int
	Drops   []game.ItemQuantity
	FinalHP int
}

// GatherOutcome is the result of a gather action
type GatherOutcome struct {
	XP    int
	Items []game.ItemQuantity
}

// CraftOutcome is the result of a craft action
type CraftOutcome struct {
	XP    int
	Items []game.ItemQuantity
}

// EquipOutcome is the result of an equip or unequip action
type EquipOutcome struct {
	Slot string
	Code string
}

// BankOutcome is the result of a bank deposit or withdraw.
// Items is the moved set; Gold the moved gold amount.
type BankOutcome struct {
	Items []game.ItemQuantity
	Gold  int
}

// TaskOutcome is the result of task accept/complete/exchange/trade actions.
// Rewards holds coins or exchanged items when the action grants any.
type TaskOutcome struct {
	Code     string
	Type     string
	Total    int
	Rewards  []game.ItemQuantity
	Gold     int
}

// UseOutcome is the result of consuming an item
type UseOutcome struct {
	Code     string
	Quantity int
}

// RecycleOutcome is the result of recycling an item at a workshop
type RecycleOutcome struct {
	Items []game.ItemQuantity
}

// ActionResult wraps any action response: the refreshed character snapshot,
// the authoritative cooldown, and at most one outcome variant.
type ActionResult struct {
	Character *Snapshot
	Cooldown  shared.Cooldown

	Fight   *FightOutcome
	Gather  *GatherOutcome
	Craft   *CraftOutcome
	Equip   *EquipOutcome
	Bank    *BankOutcome
	Task    *TaskOutcome
	Use     *UseOutcome
	Recycle *RecycleOutcome
}
