package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/combat"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

func optimizerCatalog() *game.Catalog {
	attack := func(v int) []game.Effect {
		return []game.Effect{{Code: game.AttackEffect("fire"), Value: v}}
	}
	items := []game.Item{
		{Code: "copper_sword", Type: game.ItemTypeWeapon, Level: 3, Effects: attack(20)},
		{Code: "iron_sword", Type: game.ItemTypeWeapon, Level: 10, Effects: attack(40)},
		{Code: "steel_sword", Type: game.ItemTypeWeapon, Level: 20, Effects: attack(100)},
		{Code: "ruby_sword", Type: game.ItemTypeWeapon, Level: 10, Effects: attack(80), Craft: &game.Craft{
			Skill: "weaponcrafting", Level: 10, Quantity: 1,
			Items: []game.ItemQuantity{{Code: "ruby", Quantity: 1}},
		}},
		{Code: "iron_pickaxe", Type: game.ItemTypeWeapon, Subtype: game.SubtypeTool, Level: 10,
			Effects: []game.Effect{{Code: "mining", Value: -10}}},
		{Code: "copper_pickaxe", Type: game.ItemTypeWeapon, Subtype: game.SubtypeTool, Level: 1,
			Effects: []game.Effect{{Code: "mining", Value: -5}}},
		{Code: "wooden_shield", Type: game.ItemTypeShield, Level: 2,
			Effects: []game.Effect{{Code: game.ResistanceEffect("fire"), Value: 20}}},
		{Code: "copper_ring", Type: game.ItemTypeRing, Level: 5, Effects: attack(5)},
		{Code: "lucky_amulet", Type: game.ItemTypeAmulet, Level: 5,
			Effects: []game.Effect{{Code: game.EffectProspecting, Value: 20}}},
		{Code: "big_bag", Type: game.ItemTypeBag, Level: 5,
			Effects: []game.Effect{{Code: game.EffectInventorySpace, Value: 30}}},
	}
	monsters := []game.Monster{
		{Code: "chicken", Level: 1, HP: 60, AttackFire: 5},
		{Code: "wolf", Level: 8, HP: 150, AttackFire: 30},
		{Code: "demon", Level: 10, HP: 10000, AttackFire: 500},
	}
	return game.NewCatalog(items, monsters, nil, nil, nil)
}

func optimizerSnapshot() *character.Snapshot {
	return &character.Snapshot{
		Name:        "alice",
		Level:       10,
		HP:          200,
		MaxHP:       200,
		AttackFire:  10,
		SkillLevels: map[string]int{"weaponcrafting": 10},
		Equipment:   map[string]string{},
	}
}

func fullBank() map[string]int {
	return map[string]int{
		"copper_sword":   1,
		"iron_sword":     1,
		"steel_sword":    1,
		"iron_pickaxe":   1,
		"copper_pickaxe": 1,
		"wooden_shield":  1,
		"copper_ring":    2,
		"lucky_amulet":   1,
		"big_bag":        1,
	}
}

func TestOptimizeForMonster(t *testing.T) {
	o := NewOptimizer(optimizerCatalog())
	catalog := optimizerCatalog()

	t.Run("picks the hardest-hitting obtainable weapon", func(t *testing.T) {
		req := Request{Snapshot: optimizerSnapshot(), Bank: fullBank()}
		wolf, _ := catalog.Monster("wolf")

		loadout, result := o.OptimizeForMonster(req, wolf)

		require.NotNil(t, result)
		assert.True(t, result.Win)
		// steel_sword is above the character's level and the pickaxes are
		// tools, so iron_sword wins.
		assert.Equal(t, "iron_sword", loadout.Get(character.SlotWeapon))
		assert.Equal(t, "wooden_shield", loadout.Get(character.SlotShield))
		assert.Equal(t, "big_bag", loadout.Get(character.SlotBag))
	})

	t.Run("second ring slot needs a second copy", func(t *testing.T) {
		bank := fullBank()
		bank["copper_ring"] = 1
		req := Request{Snapshot: optimizerSnapshot(), Bank: bank}
		wolf, _ := catalog.Monster("wolf")

		loadout, _ := o.OptimizeForMonster(req, wolf)
		assert.Equal(t, "copper_ring", loadout.Get(character.SlotRing1))
		assert.Empty(t, loadout.Get(character.SlotRing2))

		bank["copper_ring"] = 2
		loadout, _ = o.OptimizeForMonster(req, wolf)
		assert.Equal(t, "copper_ring", loadout.Get(character.SlotRing1))
		assert.Equal(t, "copper_ring", loadout.Get(character.SlotRing2))
	})

	t.Run("planning mode admits craftable gear", func(t *testing.T) {
		bank := fullBank()
		wolf, _ := catalog.Monster("wolf")

		owned, _ := o.OptimizeForMonster(Request{Snapshot: optimizerSnapshot(), Bank: bank}, wolf)
		assert.Equal(t, "iron_sword", owned.Get(character.SlotWeapon))

		planned, _ := o.OptimizeForMonster(Request{Snapshot: optimizerSnapshot(), Bank: bank, Planning: true}, wolf)
		assert.Equal(t, "ruby_sword", planned.Get(character.SlotWeapon))
	})

	t.Run("planning respects the craft skill requirement", func(t *testing.T) {
		snap := optimizerSnapshot()
		snap.SkillLevels["weaponcrafting"] = 5
		wolf, _ := catalog.Monster("wolf")

		loadout, _ := o.OptimizeForMonster(Request{Snapshot: snap, Bank: fullBank(), Planning: true}, wolf)
		assert.Equal(t, "iron_sword", loadout.Get(character.SlotWeapon))
	})

	t.Run("nil monster yields nil result", func(t *testing.T) {
		loadout, result := o.OptimizeForMonster(Request{Snapshot: optimizerSnapshot()}, nil)
		assert.Nil(t, loadout)
		assert.Nil(t, result)
	})
}

func TestFindBestCombatTarget(t *testing.T) {
	o := NewOptimizer(optimizerCatalog())

	t.Run("strongest viable monster wins", func(t *testing.T) {
		req := Request{Snapshot: optimizerSnapshot(), Bank: fullBank()}

		target := o.FindBestCombatTarget(req)

		require.NotNil(t, target)
		// The demon is unbeatable, so the level-8 wolf beats the chicken.
		assert.Equal(t, "wolf", target.Monster.Code)
		assert.True(t, target.Viable())
	})

	t.Run("nothing beatable returns nil", func(t *testing.T) {
		snap := optimizerSnapshot()
		snap.Level = 10
		snap.HP = 1
		snap.MaxHP = 1
		snap.AttackFire = 0
		req := Request{Snapshot: snap} // empty bank, no weapon

		assert.Nil(t, o.FindBestCombatTarget(req))
	})
}

func TestCandidateTargets(t *testing.T) {
	o := NewOptimizer(optimizerCatalog())
	req := Request{Snapshot: optimizerSnapshot(), Bank: fullBank()}

	targets := o.CandidateTargets(req)

	require.Len(t, targets, 2)
	assert.Equal(t, "wolf", targets[0].Monster.Code)
	assert.Equal(t, "chicken", targets[1].Monster.Code)
	for _, target := range targets {
		assert.True(t, target.Viable())
	}
}

func TestTargetViable(t *testing.T) {
	base := &Target{
		Monster: &game.Monster{Code: "wolf"},
		Result:  &combat.Result{Win: true, HPLostPercent: ViabilityHPLostPercent},
	}
	assert.True(t, base.Viable())

	tooCostly := &Target{
		Monster: base.Monster,
		Result:  &combat.Result{Win: true, HPLostPercent: ViabilityHPLostPercent + 1},
	}
	assert.False(t, tooCostly.Viable())

	loss := &Target{Monster: base.Monster, Result: &combat.Result{Win: false}}
	assert.False(t, loss.Viable())

	var nilTarget *Target
	assert.False(t, nilTarget.Viable())
}

func TestOptimizeForGathering(t *testing.T) {
	o := NewOptimizer(optimizerCatalog())
	req := Request{Snapshot: optimizerSnapshot(), Bank: fullBank()}

	loadout := o.OptimizeForGathering(req, "mining")

	// Highest-level matching tool wins the weapon slot even though combat
	// weapons hit harder.
	assert.Equal(t, "iron_pickaxe", loadout.Get(character.SlotWeapon))
	assert.Equal(t, "lucky_amulet", loadout.Get(character.SlotAmulet))
	assert.Equal(t, "big_bag", loadout.Get(character.SlotBag))

	// No woodcutting tool exists, so the weapon slot keeps its current item.
	woodcutting := o.OptimizeForGathering(req, "woodcutting")
	assert.Empty(t, woodcutting.Get(character.SlotWeapon))
}

func TestLoadout(t *testing.T) {
	l := Loadout{
		character.SlotWeapon: "iron_sword",
		character.SlotRing1:  "copper_ring",
		character.SlotRing2:  "copper_ring",
		character.SlotShield: "",
	}

	counts := l.Counts()
	assert.Equal(t, map[string]int{"iron_sword": 1, "copper_ring": 2}, counts)

	clone := l.Clone()
	clone[character.SlotWeapon] = "ruby_sword"
	assert.Equal(t, "iron_sword", l.Get(character.SlotWeapon))

	diff := clone.Diff(l)
	assert.Equal(t, []string{character.SlotWeapon}, diff)
}
