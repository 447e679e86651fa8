package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

func fighterStats(hp, attack int) Stats {
	return Stats{
		HP:     hp,
		MaxHP:  hp,
		Attack: map[string]int{"fire": attack},
		Dmg:    map[string]int{},
		Res:    map[string]int{},
	}
}

func TestTurnDamage(t *testing.T) {
	t.Run("element bonus and resistance", func(t *testing.T) {
		attacker := Stats{
			Attack: map[string]int{"fire": 40},
			Dmg:    map[string]int{"fire": 25},
			DmgAll: 10,
			Res:    map[string]int{},
		}
		defender := Stats{Res: map[string]int{"fire": 20}}

		// 40 * 1.35 * 0.8 = 43.2 -> 43
		assert.Equal(t, 43, TurnDamage(attacker, defender))
	})

	t.Run("crit folds in as expected value", func(t *testing.T) {
		attacker := Stats{
			Attack:     map[string]int{"water": 100},
			Dmg:        map[string]int{},
			Res:        map[string]int{},
			CritChance: 30,
		}
		defender := Stats{Res: map[string]int{}}

		// 100 * (1 + 0.5*0.30) = 115
		assert.Equal(t, 115, TurnDamage(attacker, defender))
	})

	t.Run("over-resistance cannot heal the defender", func(t *testing.T) {
		attacker := Stats{
			Attack: map[string]int{"air": 10},
			Dmg:    map[string]int{},
			Res:    map[string]int{},
		}
		defender := Stats{Res: map[string]int{"air": 150}}

		assert.Equal(t, 0, TurnDamage(attacker, defender))
	})

	t.Run("poison bypasses resistance", func(t *testing.T) {
		attacker := Stats{
			Attack: map[string]int{},
			Dmg:    map[string]int{},
			Res:    map[string]int{},
			Poison: 12,
		}
		defender := Stats{Res: map[string]int{"fire": 100}}

		assert.Equal(t, 12, TurnDamage(attacker, defender))
	})
}

func TestSimulate(t *testing.T) {
	t.Run("stronger character wins", func(t *testing.T) {
		char := fighterStats(100, 30)
		monster := fighterStats(60, 10)

		result := Simulate(char, monster, nil, nil)

		require.True(t, result.Win)
		assert.Equal(t, 2, result.Turns)
		assert.Equal(t, 90, result.RemainingHP)
		assert.Equal(t, 10, result.HPLostPercent)
	})

	t.Run("initiative decides a mutual-kill round", func(t *testing.T) {
		// Both one-shot the other; the first striker wins.
		char := fighterStats(10, 50)
		monster := fighterStats(10, 50)
		char.Initiative = 5

		result := Simulate(char, monster, nil, nil)
		require.True(t, result.Win)
		assert.Equal(t, 1, result.Turns)

		monster.Initiative = 20
		result = Simulate(char, monster, nil, nil)
		require.False(t, result.Win)
		assert.Equal(t, 0, result.RemainingHP)
		assert.Equal(t, 100, result.HPLostPercent)
	})

	t.Run("turn cap scores as a loss", func(t *testing.T) {
		// 1 damage per turn against 200 HP cannot finish inside the cap.
		char := fighterStats(1000, 1)
		monster := fighterStats(200, 1)

		result := Simulate(char, monster, nil, nil)

		assert.False(t, result.Win)
		assert.Equal(t, MaxTurns, result.Turns)
		assert.Positive(t, result.RemainingHP)
	})

	t.Run("utilities shift the outcome", func(t *testing.T) {
		char := fighterStats(50, 10)
		monster := fighterStats(100, 11)

		bare := Simulate(char, monster, nil, nil)
		require.False(t, bare.Win)

		potion := &game.Item{
			Code: "small_health_potion",
			Type: game.ItemTypeUtility,
			Effects: []game.Effect{
				{Code: game.EffectRestore, Value: 80},
			},
		}
		boosted := Simulate(char, monster, []*game.Item{potion}, nil)
		assert.True(t, boosted.Win)
	})

	t.Run("rune effects apply before damage", func(t *testing.T) {
		char := fighterStats(100, 20)
		monster := fighterStats(200, 5)
		monster.Res = map[string]int{"fire": 50}

		runeItem := &game.Item{
			Code: "burning_rune",
			Type: game.ItemTypeRune,
			Effects: []game.Effect{
				{Code: game.DamageEffect("fire"), Value: 100},
			},
		}

		bare := Simulate(char, monster, nil, nil)
		boosted := Simulate(char, monster, nil, runeItem)
		assert.Less(t, boosted.Turns, bare.Turns)
	})

	t.Run("more attack never worsens the outcome", func(t *testing.T) {
		monster := fighterStats(150, 14)
		prev := Simulate(fighterStats(120, 5), monster, nil, nil)
		for attack := 6; attack <= 60; attack++ {
			next := Simulate(fighterStats(120, attack), monster, nil, nil)
			if prev.Win {
				require.True(t, next.Win, "attack %d lost after a weaker build won", attack)
			}
			if next.Win && prev.Win {
				require.LessOrEqual(t, next.Turns, prev.Turns)
				require.GreaterOrEqual(t, next.RemainingHP, prev.RemainingHP)
			}
			prev = next
		}
	})

	t.Run("more max hp never turns a win into a loss", func(t *testing.T) {
		monster := fighterStats(150, 14)
		prev := Simulate(fighterStats(20, 12), monster, nil, nil)
		for hp := 25; hp <= 400; hp += 5 {
			next := Simulate(fighterStats(hp, 12), monster, nil, nil)
			if prev.Win {
				require.True(t, next.Win, "hp %d lost after a frailer build won", hp)
			}
			if next.Win {
				// Kill speed does not depend on the character's HP.
				require.Equal(t, 13, next.Turns)
			}
			prev = next
		}
	})

	t.Run("more resistance never shortens the fight", func(t *testing.T) {
		char := fighterStats(500, 20)
		prev := Simulate(char, fighterStats(150, 5), nil, nil)
		for res := 5; res <= 90; res += 5 {
			monster := fighterStats(150, 5)
			monster.Res["fire"] = res
			next := Simulate(char, monster, nil, nil)
			require.GreaterOrEqual(t, next.Turns, prev.Turns, "res %d", res)
			if prev.Win {
				require.LessOrEqual(t, next.RemainingHP, prev.RemainingHP)
			} else {
				// Once resistance turn-caps the fight, it stays lost.
				require.False(t, next.Win, "res %d won after a squishier monster survived", res)
			}
			prev = next
		}
	})

	t.Run("turn damage matches the first simulated round", func(t *testing.T) {
		char := fighterStats(300, 27)
		char.Dmg["fire"] = 15
		char.CritChance = 20
		monster := fighterStats(1, 9)
		monster.Res["fire"] = 30

		perTurn := TurnDamage(char, monster)
		require.Positive(t, perTurn)

		// A monster with exactly one round of HP dies on turn one; one more
		// hit point survives into round two.
		monster.HP = perTurn
		monster.MaxHP = perTurn
		result := Simulate(char, monster, nil, nil)
		require.True(t, result.Win)
		assert.Equal(t, 1, result.Turns)
		assert.Equal(t, 300, result.RemainingHP)

		monster.HP = perTurn + 1
		monster.MaxHP = perTurn + 1
		result = Simulate(char, monster, nil, nil)
		require.True(t, result.Win)
		assert.Equal(t, 2, result.Turns)
		assert.Equal(t, 300-TurnDamage(monster, char), result.RemainingHP)
	})
}

func TestHPNeededForFight(t *testing.T) {
	t.Run("returns minimal winning HP", func(t *testing.T) {
		char := fighterStats(1, 30)
		monster := fighterStats(90, 10)

		needed, winnable := HPNeededForFight(char, monster, nil, nil)

		require.True(t, winnable)
		// 3 turns to kill, character strikes first, so 2 hits taken.
		assert.Equal(t, 21, needed)

		char.HP = needed
		result := Simulate(char, monster, nil, nil)
		assert.True(t, result.Win)

		char.HP = needed - 1
		result = Simulate(char, monster, nil, nil)
		assert.False(t, result.Win)
	})

	t.Run("monster initiative costs one extra hit", func(t *testing.T) {
		char := fighterStats(1, 30)
		monster := fighterStats(90, 10)
		monster.Initiative = 50

		needed, winnable := HPNeededForFight(char, monster, nil, nil)
		require.True(t, winnable)
		assert.Equal(t, 31, needed)
	})

	t.Run("zero damage output is unwinnable", func(t *testing.T) {
		char := fighterStats(1000, 0)
		monster := fighterStats(10, 1)

		_, winnable := HPNeededForFight(char, monster, nil, nil)
		assert.False(t, winnable)
	})

	t.Run("turn-capped kill is unwinnable", func(t *testing.T) {
		char := fighterStats(1000, 1)
		monster := fighterStats(200, 1)

		_, winnable := HPNeededForFight(char, monster, nil, nil)
		assert.False(t, winnable)
	})
}

func TestApplyEffects(t *testing.T) {
	s := Stats{
		Attack: map[string]int{},
		Dmg:    map[string]int{},
		Res:    map[string]int{},
	}
	s.ApplyEffects([]game.Effect{
		{Code: game.EffectHP, Value: 40},
		{Code: game.EffectHaste, Value: 5},
		{Code: game.EffectCriticalStrike, Value: 10},
		{Code: game.EffectDamage, Value: 8},
		{Code: game.AttackEffect("earth"), Value: 12},
		{Code: game.ResistanceEffect("water"), Value: 15},
	})

	assert.Equal(t, 40, s.HP)
	assert.Equal(t, 40, s.MaxHP)
	assert.Equal(t, 5, s.Initiative)
	assert.Equal(t, 10, s.CritChance)
	assert.Equal(t, 8, s.DmgAll)
	assert.Equal(t, 12, s.Attack["earth"])
	assert.Equal(t, 15, s.Res["water"])
}
