package game

// ItemType values as reported by the game API. Equipment types map onto
// character slots; the rest are materials, consumables and currencies.
const (
	ItemTypeWeapon     = "weapon"
	ItemTypeShield     = "shield"
	ItemTypeHelmet     = "helmet"
	ItemTypeBodyArmor  = "body_armor"
	ItemTypeLegArmor   = "leg_armor"
	ItemTypeBoots      = "boots"
	ItemTypeRing       = "ring"
	ItemTypeAmulet     = "amulet"
	ItemTypeBag        = "bag"
	ItemTypeArtifact   = "artifact"
	ItemTypeRune       = "rune"
	ItemTypeUtility    = "utility"
	ItemTypeConsumable = "consumable"
	ItemTypeResource   = "resource"
	ItemTypeCurrency   = "currency"

	// SubtypeTool marks weapons that are gathering tools, not combat weapons
	SubtypeTool = "tool"
)

// ItemQuantity is a (code, quantity) pair used throughout inventories,
// recipes, drops and bank operations.
type ItemQuantity struct {
	Code     string
	Quantity int
}

// Craft describes how an item is produced: which crafting skill at which
// level, how many units one craft yields, and the required materials.
type Craft struct {
	Skill    string
	Level    int
	Quantity int
	Items    []ItemQuantity
}

// Item is an immutable catalog entry.
type Item struct {
	Code    string
	Name    string
	Type    string
	Subtype string
	Level   int
	Effects []Effect
	Craft   *Craft
}

// EffectValue returns the summed value of the given effect on this item
func (i *Item) EffectValue(code string) int {
	return EffectValue(i.Effects, code)
}

// IsTool reports whether the item is a gathering tool (weapon with tool subtype)
func (i *Item) IsTool() bool {
	return i.Type == ItemTypeWeapon && i.Subtype == SubtypeTool
}

// IsCraftable reports whether the item has a craft recipe
func (i *Item) IsCraftable() bool {
	return i.Craft != nil && i.Craft.Skill != ""
}

// equipmentTypes are the item types that occupy a gear slot the optimizer
// cares about. Utilities, runes and artifacts are handled separately.
var equipmentTypes = map[string]bool{
	ItemTypeWeapon:    true,
	ItemTypeShield:    true,
	ItemTypeHelmet:    true,
	ItemTypeBodyArmor: true,
	ItemTypeLegArmor:  true,
	ItemTypeBoots:     true,
	ItemTypeRing:      true,
	ItemTypeAmulet:    true,
	ItemTypeBag:       true,
}

// IsEquipment reports whether the item occupies one of the optimizable slots
func (i *Item) IsEquipment() bool {
	return equipmentTypes[i.Type]
}
