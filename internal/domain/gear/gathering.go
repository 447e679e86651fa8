package gear

import (
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// OptimizeForGathering picks the loadout for harvesting with a skill: the
// best obtainable tool in the weapon slot, the highest prospecting item in
// every other slot (keeping the current item on zero improvement), and the
// biggest bag.
func (o *Optimizer) OptimizeForGathering(req Request, skill string) Loadout {
	loadout := FromEquipment(req.Snapshot)

	// Weapon: highest-level obtainable tool whose effect matches the skill
	var bestTool *game.Item
	for _, item := range o.itemsByType[game.ItemTypeWeapon] {
		if !item.IsTool() || item.Level > req.Snapshot.Level {
			continue
		}
		if item.EffectValue(skill) == 0 {
			continue
		}
		if o.availableCopies(req, item) <= 0 {
			continue
		}
		if bestTool == nil || betterItem(item, bestTool) {
			bestTool = item
		}
	}
	if bestTool != nil {
		loadout[character.SlotWeapon] = bestTool.Code
	}

	// Non-weapon slots: maximize prospecting, preferring the current item
	// when nothing improves on it.
	for _, slot := range character.OptimizedSlots {
		if slot == character.SlotWeapon || slot == character.SlotBag {
			continue
		}
		current := loadout[slot]
		currentValue := 0
		if current != "" {
			if item, ok := o.catalog.Item(current); ok {
				currentValue = item.EffectValue(game.EffectProspecting)
			}
		}
		bestCode := current
		bestValue := currentValue
		for _, candidate := range o.candidatesForSlot(req, slot) {
			value := candidate.EffectValue(game.EffectProspecting)
			if value > bestValue {
				bestCode = candidate.Code
				bestValue = value
			}
		}
		loadout[slot] = bestCode
	}

	// Bag: same rule as combat optimization
	var bestBag *game.Item
	for _, candidate := range o.candidatesForSlot(req, character.SlotBag) {
		if bestBag == nil ||
			candidate.EffectValue(game.EffectInventorySpace) > bestBag.EffectValue(game.EffectInventorySpace) ||
			(candidate.EffectValue(game.EffectInventorySpace) == bestBag.EffectValue(game.EffectInventorySpace) && betterItem(candidate, bestBag)) {
			bestBag = candidate
		}
	}
	if bestBag != nil {
		loadout[character.SlotBag] = bestBag.Code
	}

	return loadout
}
