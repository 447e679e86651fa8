package character

import "github.com/adelacruz/artifacts-go/internal/domain/game"

// Equipment slot names as used by the API and the optimizer
const (
	SlotWeapon    = "weapon"
	SlotShield    = "shield"
	SlotHelmet    = "helmet"
	SlotBodyArmor = "body_armor"
	SlotLegArmor  = "leg_armor"
	SlotBoots     = "boots"
	SlotRing1     = "ring1"
	SlotRing2     = "ring2"
	SlotAmulet    = "amulet"
	SlotBag       = "bag"
	SlotUtility1  = "utility1"
	SlotUtility2  = "utility2"
	SlotRune      = "rune"
	SlotArtifact1 = "artifact1"
	SlotArtifact2 = "artifact2"
	SlotArtifact3 = "artifact3"
)

// AllSlots is every equipment slot, in API order
var AllSlots = []string{
	SlotWeapon, SlotShield, SlotHelmet, SlotBodyArmor, SlotLegArmor, SlotBoots,
	SlotRing1, SlotRing2, SlotAmulet, SlotBag,
	SlotUtility1, SlotUtility2, SlotRune,
	SlotArtifact1, SlotArtifact2, SlotArtifact3,
}

// OptimizedSlots are the slots the gear optimizer fills, in phase order:
// weapon first, defensive slots, accessories, then bag.
var OptimizedSlots = []string{
	SlotWeapon, SlotShield, SlotHelmet, SlotBodyArmor, SlotLegArmor, SlotBoots,
	SlotAmulet, SlotRing1, SlotRing2, SlotBag,
}

// DefensiveSlots are filled by simulated-outcome comparison, in order
var DefensiveSlots = []string{SlotShield, SlotHelmet, SlotBodyArmor, SlotLegArmor, SlotBoots}

// AccessorySlots are filled after the defensive slots, in order
var AccessorySlots = []string{SlotAmulet, SlotRing1, SlotRing2}

// CarryTrimPriority orders slots by how important their item is to keep when
// the carry budget overflows. Earlier slots survive trimming longer.
var CarryTrimPriority = []string{
	SlotWeapon, SlotShield, SlotHelmet, SlotBodyArmor, SlotLegArmor, SlotBoots,
	SlotBag, SlotAmulet, SlotRing1, SlotRing2,
}

// SlotForItemType maps an item type to the primary slot it occupies.
// Rings map to ring1; callers that care about both ring slots handle the
// multiplicity themselves. Returns "" for non-equipment types.
func SlotForItemType(itemType string) string {
	switch itemType {
	case game.ItemTypeWeapon:
		return SlotWeapon
	case game.ItemTypeShield:
		return SlotShield
	case game.ItemTypeHelmet:
		return SlotHelmet
	case game.ItemTypeBodyArmor:
		return SlotBodyArmor
	case game.ItemTypeLegArmor:
		return SlotLegArmor
	case game.ItemTypeBoots:
		return SlotBoots
	case game.ItemTypeRing:
		return SlotRing1
	case game.ItemTypeAmulet:
		return SlotAmulet
	case game.ItemTypeBag:
		return SlotBag
	}
	return ""
}

// ItemTypeForSlot is the inverse of SlotForItemType for the optimized slots
func ItemTypeForSlot(slot string) string {
	switch slot {
	case SlotWeapon:
		return game.ItemTypeWeapon
	case SlotShield:
		return game.ItemTypeShield
	case SlotHelmet:
		return game.ItemTypeHelmet
	case SlotBodyArmor:
		return game.ItemTypeBodyArmor
	case SlotLegArmor:
		return game.ItemTypeLegArmor
	case SlotBoots:
		return game.ItemTypeBoots
	case SlotRing1, SlotRing2:
		return game.ItemTypeRing
	case SlotAmulet:
		return game.ItemTypeAmulet
	case SlotBag:
		return game.ItemTypeBag
	}
	return ""
}
