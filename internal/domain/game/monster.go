package game

// MonsterType distinguishes potion policy tiers
const (
	MonsterTypeNormal = "normal"
	MonsterTypeElite  = "elite"
	MonsterTypeBoss   = "boss"
)

// Drop describes a possible loot entry: a 1-in-Rate chance per kill/gather of
// MinQuantity..MaxQuantity units.
type Drop struct {
	Code        string
	Rate        int
	MinQuantity int
	MaxQuantity int
}

// Monster is an immutable catalog entry carrying the full combat stat block.
type Monster struct {
	Code       string
	Name       string
	Type       string
	Level      int
	HP         int
	Initiative int
	CritChance int

	AttackFire  int
	AttackEarth int
	AttackWater int
	AttackAir   int

	ResFire  int
	ResEarth int
	ResWater int
	ResAir   int

	// Status effects applied during combat, e.g. poison
	Effects []Effect

	Drops []Drop
}

// Attack returns the monster's attack value for an element
func (m *Monster) Attack(element string) int {
	switch element {
	case "fire":
		return m.AttackFire
	case "earth":
		return m.AttackEarth
	case "water":
		return m.AttackWater
	case "air":
		return m.AttackAir
	}
	return 0
}

// Resistance returns the monster's resistance value for an element
func (m *Monster) Resistance(element string) int {
	switch element {
	case "fire":
		return m.ResFire
	case "earth":
		return m.ResEarth
	case "water":
		return m.ResWater
	case "air":
		return m.ResAir
	}
	return 0
}

// DropsItem reports whether the monster can drop the given item code
func (m *Monster) DropsItem(code string) bool {
	for _, d := range m.Drops {
		if d.Code == code {
			return true
		}
	}
	return false
}
