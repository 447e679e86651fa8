package combat

import (
	"math"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// MaxTurns caps a simulated fight. The server aborts fights at 100 turns and
// scores them as a loss; the simulator mirrors that.
const MaxTurns = 100

// Stats is a combatant stat block, the same shape for characters and
// monsters. All percentages are whole numbers (res 15 means 15 %).
type Stats struct {
	HP         int
	MaxHP      int
	Initiative int
	CritChance int

	Attack map[string]int // per element
	Dmg    map[string]int // per-element damage bonus %
	DmgAll int            // flat damage bonus % across all elements
	Res    map[string]int // per-element resistance %

	// Poison deals unresistable flat damage every turn the poisoned side acts
	Poison int
}

// StatsFromCharacter builds a stat block from a character snapshot.
// The snapshot's stats already include every equipped item.
func StatsFromCharacter(s *character.Snapshot) Stats {
	return Stats{
		HP:         s.HP,
		MaxHP:      s.MaxHP,
		Initiative: s.Haste,
		CritChance: s.CriticalStrike,
		Attack: map[string]int{
			"fire": s.AttackFire, "earth": s.AttackEarth,
			"water": s.AttackWater, "air": s.AttackAir,
		},
		Dmg: map[string]int{
			"fire": s.DmgFire, "earth": s.DmgEarth,
			"water": s.DmgWater, "air": s.DmgAir,
		},
		DmgAll: s.Dmg,
		Res: map[string]int{
			"fire": s.ResFire, "earth": s.ResEarth,
			"water": s.ResWater, "air": s.ResAir,
		},
	}
}

// StatsFromMonster builds a stat block from a monster catalog entry
func StatsFromMonster(m *game.Monster) Stats {
	return Stats{
		HP:         m.HP,
		MaxHP:      m.HP,
		Initiative: m.Initiative,
		CritChance: m.CritChance,
		Attack: map[string]int{
			"fire": m.AttackFire, "earth": m.AttackEarth,
			"water": m.AttackWater, "air": m.AttackAir,
		},
		Dmg:    map[string]int{},
		Res: map[string]int{
			"fire": m.ResFire, "earth": m.ResEarth,
			"water": m.ResWater, "air": m.ResAir,
		},
		Poison: game.EffectValue(m.Effects, "poison"),
	}
}

// Clone deep-copies a stat block so simulations never share maps
func (s Stats) Clone() Stats {
	clone := s
	clone.Attack = copyMap(s.Attack)
	clone.Dmg = copyMap(s.Dmg)
	clone.Res = copyMap(s.Res)
	return clone
}

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ApplyEffects folds an item's effect list into the stat block. Utilities and
// runes go through here before damage is computed; restore effects count as
// extra starting HP since the simulator is expected-value.
func (s *Stats) ApplyEffects(effects []game.Effect) {
	for _, e := range effects {
		switch e.Code {
		case game.EffectHP, "boost_hp":
			s.HP += e.Value
			s.MaxHP += e.Value
		case game.EffectRestore, game.EffectSplashRestore:
			s.HP += e.Value
			s.MaxHP += e.Value
		case game.EffectHaste:
			s.Initiative += e.Value
		case game.EffectCriticalStrike:
			s.CritChance += e.Value
		case game.EffectDamage:
			s.DmgAll += e.Value
		default:
			for _, el := range game.Elements {
				switch e.Code {
				case game.AttackEffect(el):
					s.Attack[el] += e.Value
				case game.DamageEffect(el):
					s.Dmg[el] += e.Value
				case game.ResistanceEffect(el):
					s.Res[el] += e.Value
				}
			}
		}
	}
}

// TurnDamage computes the expected damage one combatant deals the other in a
// single turn: per element round(attack × (1 + dmg_e/100 + dmg/100) ×
// (1 − res_e/100)), with the crit roll folded in as its expected value
// (+50 % at CritChance %), plus any unresistable poison.
func TurnDamage(attacker, defender Stats) int {
	total := 0
	critFactor := 1.0 + 0.5*float64(attacker.CritChance)/100.0
	for _, el := range game.Elements {
		attack := float64(attacker.Attack[el])
		if attack <= 0 {
			continue
		}
		raw := attack * (1.0 + float64(attacker.Dmg[el])/100.0 + float64(attacker.DmgAll)/100.0)
		raw *= 1.0 - float64(defender.Res[el])/100.0
		raw *= critFactor
		if raw < 0 {
			raw = 0
		}
		total += int(math.Round(raw))
	}
	return total + attacker.Poison
}

// Result is a simulated fight outcome
type Result struct {
	Win           bool
	Turns         int
	HPLostPercent int
	RemainingHP   int
}

// Simulate runs a deterministic fight between a character and a monster stat
// block. Optional utilities (up to two) and a rune are folded into the
// character's stats before any damage is computed. Initiative decides who
// strikes first; a round where both would die goes to the first striker.
func Simulate(charStats, monsterStats Stats, utilities []*game.Item, runeItem *game.Item) *Result {
	c := charStats.Clone()
	m := monsterStats.Clone()

	for _, u := range utilities {
		if u != nil {
			c.ApplyEffects(u.Effects)
		}
	}
	if runeItem != nil {
		c.ApplyEffects(runeItem.Effects)
	}

	charDamage := TurnDamage(c, m)
	monsterDamage := TurnDamage(m, c)
	charFirst := c.Initiative >= m.Initiative

	startHP := c.HP
	charHP := c.HP
	monsterHP := m.HP

	for turn := 1; turn <= MaxTurns; turn++ {
		if charFirst {
			monsterHP -= charDamage
			if monsterHP <= 0 {
				return finishResult(true, turn, startHP, charHP)
			}
			charHP -= monsterDamage
			if charHP <= 0 {
				return finishResult(false, turn, startHP, 0)
			}
		} else {
			charHP -= monsterDamage
			if charHP <= 0 {
				return finishResult(false, turn, startHP, 0)
			}
			monsterHP -= charDamage
			if monsterHP <= 0 {
				return finishResult(true, turn, startHP, charHP)
			}
		}
	}

	// Turn cap reached: the server scores this as a loss
	return finishResult(false, MaxTurns, startHP, charHP)
}

func finishResult(win bool, turns, startHP, remainingHP int) *Result {
	if remainingHP < 0 {
		remainingHP = 0
	}
	lost := 0
	if startHP > 0 {
		lost = (startHP - remainingHP) * 100 / startHP
	}
	return &Result{
		Win:           win,
		Turns:         turns,
		HPLostPercent: lost,
		RemainingHP:   remainingHP,
	}
}

// HPNeededForFight returns the minimum starting HP that still wins against
// the monster with the given character stats, and false when the fight is
// unwinnable regardless of HP (zero damage output or turn-capped).
func HPNeededForFight(charStats, monsterStats Stats, utilities []*game.Item, runeItem *game.Item) (int, bool) {
	c := charStats.Clone()
	m := monsterStats.Clone()
	for _, u := range utilities {
		if u != nil {
			c.ApplyEffects(u.Effects)
		}
	}
	if runeItem != nil {
		c.ApplyEffects(runeItem.Effects)
	}

	charDamage := TurnDamage(c, m)
	if charDamage <= 0 {
		return 0, false
	}
	turnsToKill := (m.HP + charDamage - 1) / charDamage
	if turnsToKill > MaxTurns {
		return 0, false
	}

	monsterDamage := TurnDamage(m, c)
	hitsTaken := turnsToKill
	if c.Initiative >= m.Initiative {
		// Striking first means the killing blow lands before the monster's
		// final hit.
		hitsTaken = turnsToKill - 1
	}
	needed := monsterDamage*hitsTaken + 1
	if needed < 1 {
		needed = 1
	}
	return needed, true
}
