package game

// Effect is a single named numeric modifier carried by an item or a monster
// status. Effect codes are game-defined strings ("attack_fire", "restore",
// "inventory_space", ...).
type Effect struct {
	Code  string
	Value int
}

// Elements of the combat system. Attack, damage bonus and resistance effects
// exist per element.
var Elements = []string{"fire", "earth", "water", "air"}

// Well-known effect codes used by the decision engine.
const (
	EffectHP             = "hp"
	EffectHaste          = "haste"
	EffectCriticalStrike = "critical_strike"
	EffectRestore        = "restore"
	EffectSplashRestore  = "splash_restore"
	EffectInventorySpace = "inventory_space"
	EffectProspecting    = "prospecting"
	EffectDamage         = "dmg" // flat damage bonus across all elements
)

// AttackEffect returns the attack effect code for an element ("attack_fire")
func AttackEffect(element string) string { return "attack_" + element }

// DamageEffect returns the damage bonus effect code for an element ("dmg_fire")
func DamageEffect(element string) string { return "dmg_" + element }

// ResistanceEffect returns the resistance effect code for an element ("res_fire")
func ResistanceEffect(element string) string { return "res_" + element }

// EffectValue sums the values of the given effect code in a list
func EffectValue(effects []Effect, code string) int {
	total := 0
	for _, e := range effects {
		if e.Code == code {
			total += e.Value
		}
	}
	return total
}
