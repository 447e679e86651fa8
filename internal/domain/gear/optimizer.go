package gear

import (
	"sort"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/combat"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// ViabilityHPLostPercent is the uniform threshold for "this fight is worth
// taking": a predicted win losing more than this much HP is not viable.
const ViabilityHPLostPercent = 90

// Optimizer searches equipment sets for a character against a monster.
// Candidates come from currently equipped gear, the inventory, the bank and,
// in planning mode, craftable-but-not-owned items the character could make.
type Optimizer struct {
	catalog     *game.Catalog
	itemsByType map[string][]*game.Item
}

// NewOptimizer builds an optimizer over the given catalog
func NewOptimizer(catalog *game.Catalog) *Optimizer {
	byType := make(map[string][]*game.Item)
	for _, item := range catalog.Items() {
		byType[item.Type] = append(byType[item.Type], item)
	}
	// Deterministic candidate order: level descending, then code ascending
	for _, items := range byType {
		sort.Slice(items, func(i, j int) bool {
			if items[i].Level != items[j].Level {
				return items[i].Level > items[j].Level
			}
			return items[i].Code < items[j].Code
		})
	}
	return &Optimizer{catalog: catalog, itemsByType: byType}
}

// Request bundles one optimization run's inputs. Bank is a point-in-time view
// of withdrawable bank stock (reservations already excluded by the caller).
// Planning additionally admits craftable items the character does not own.
type Request struct {
	Snapshot *character.Snapshot
	Bank     map[string]int
	Planning bool
}

// availableCopies counts how many copies of an item the character could end
// up holding: equipped + inventory + bank, plus one assumed craftable copy in
// planning mode.
func (o *Optimizer) availableCopies(req Request, item *game.Item) int {
	count := req.Snapshot.EquippedCount(item.Code) +
		req.Snapshot.ItemCount(item.Code) +
		req.Bank[item.Code]
	if req.Planning && o.canCraft(req.Snapshot, item) {
		count++
	}
	return count
}

func (o *Optimizer) canCraft(s *character.Snapshot, item *game.Item) bool {
	return item.IsCraftable() && s.SkillLevel(item.Craft.Skill) >= item.Craft.Level
}

// candidatesForSlot enumerates the obtainable items that can fill a slot.
// Weapons of subtype tool are combat candidates never.
func (o *Optimizer) candidatesForSlot(req Request, slot string) []*game.Item {
	itemType := character.ItemTypeForSlot(slot)
	var out []*game.Item
	for _, item := range o.itemsByType[itemType] {
		if item.Level > req.Snapshot.Level {
			continue
		}
		if slot == character.SlotWeapon && item.IsTool() {
			continue
		}
		if o.availableCopies(req, item) <= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

// baseStats derives the character's "naked" stat block by subtracting every
// equipped optimized-slot item's effects from the API-reported stats.
// Utilities, rune and artifacts stay folded in: they are held constant
// during optimization.
func (o *Optimizer) baseStats(s *character.Snapshot) combat.Stats {
	stats := combat.StatsFromCharacter(s)
	for _, slot := range character.OptimizedSlots {
		code := s.EquipmentCode(slot)
		if code == "" {
			continue
		}
		item, ok := o.catalog.Item(code)
		if !ok {
			continue
		}
		stats.ApplyEffects(negate(item.Effects))
	}
	return stats
}

func negate(effects []game.Effect) []game.Effect {
	out := make([]game.Effect, len(effects))
	for i, e := range effects {
		out[i] = game.Effect{Code: e.Code, Value: -e.Value}
	}
	return out
}

// statsWith folds a loadout's item effects onto the naked baseline
func (o *Optimizer) statsWith(base combat.Stats, loadout Loadout) combat.Stats {
	stats := base.Clone()
	for _, code := range loadout {
		if code == "" {
			continue
		}
		item, ok := o.catalog.Item(code)
		if !ok {
			continue
		}
		stats.ApplyEffects(item.Effects)
	}
	return stats
}

// betterOutcome compares two simulated outcomes: a win beats a loss; then
// higher remaining HP; then fewer turns on wins and more turns on losses.
func betterOutcome(a, b *combat.Result) bool {
	if a.Win != b.Win {
		return a.Win
	}
	if a.RemainingHP != b.RemainingHP {
		return a.RemainingHP > b.RemainingHP
	}
	if a.Win {
		return a.Turns < b.Turns
	}
	return a.Turns > b.Turns
}

// betterItem breaks candidate ties: higher item level first, then code
// ascending. A nil item (empty slot) loses every tie.
func betterItem(a, b *game.Item) bool {
	if b == nil {
		return a != nil
	}
	if a == nil {
		return false
	}
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	return a.Code < b.Code
}

// OptimizeForMonster produces the best equipment set against the monster
// together with its simulated outcome. The search is a four-phase greedy:
// weapon by first-turn damage, defensive slots and accessories by simulated
// outcome, bag by inventory space. Returns a nil result for an unknown or
// zero-stat monster rather than failing.
func (o *Optimizer) OptimizeForMonster(req Request, monster *game.Monster) (Loadout, *combat.Result) {
	if monster == nil {
		return nil, nil
	}
	base := o.baseStats(req.Snapshot)
	monsterStats := combat.StatsFromMonster(monster)

	loadout := make(Loadout, len(character.OptimizedSlots))
	for _, slot := range character.OptimizedSlots {
		loadout[slot] = ""
	}

	// Phase 1: weapon by first-turn damage
	var bestWeapon *game.Item
	bestDamage := -1
	for _, candidate := range o.candidatesForSlot(req, character.SlotWeapon) {
		trial := loadout.Clone()
		trial[character.SlotWeapon] = candidate.Code
		damage := combat.TurnDamage(o.statsWith(base, trial), monsterStats)
		if damage > bestDamage || (damage == bestDamage && betterItem(candidate, bestWeapon)) {
			bestWeapon = candidate
			bestDamage = damage
		}
	}
	if bestWeapon != nil {
		loadout[character.SlotWeapon] = bestWeapon.Code
	}

	// Phases 2 and 3: defensive slots then accessories, each by simulated
	// outcome with the empty option always in the running.
	outcomeSlots := append(append([]string{}, character.DefensiveSlots...), character.AccessorySlots...)
	for _, slot := range outcomeSlots {
		bestCode := ""
		var bestItem *game.Item
		bestResult := combat.Simulate(o.statsWith(base, loadout), monsterStats, nil, nil)

		for _, candidate := range o.candidatesForSlot(req, slot) {
			if slot == character.SlotRing2 && candidate.Code == loadout[character.SlotRing1] {
				if o.availableCopies(req, candidate) < 2 {
					continue
				}
			}
			trial := loadout.Clone()
			trial[slot] = candidate.Code
			result := combat.Simulate(o.statsWith(base, trial), monsterStats, nil, nil)
			if betterOutcome(result, bestResult) ||
				(!betterOutcome(bestResult, result) && betterItem(candidate, bestItem)) {
				bestCode = candidate.Code
				bestItem = candidate
				bestResult = result
			}
		}
		loadout[slot] = bestCode
	}

	// Phase 4: bag purely by inventory space
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

	final := combat.Simulate(o.statsWith(base, loadout), monsterStats, nil, nil)
	return loadout, final
}
