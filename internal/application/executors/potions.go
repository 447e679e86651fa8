package executors

import (
	"context"
	"sort"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/combat"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// PrepareCombatPotions fills the utility slots before a fight when the
// monster's tier has potions enabled. Slot one prefers a plain restore
// potion, then splash restore, then whatever simulates best; slot two takes
// the next-best code. Stacks refill from the bank to the configured target.
func PrepareCombatPotions(ctx context.Context, c *CharacterContext, monster *game.Monster) error {
	policy, ok := c.Cfg.Potions[monster.Type]
	if !ok || !policy.Enabled || policy.TargetQuantity <= 0 {
		return nil
	}

	candidates := c.usablePotions(monster)
	if len(candidates) == 0 {
		return nil
	}

	first := candidates[0]
	if err := c.fillUtilitySlot(ctx, character.SlotUtility1, first, policy.TargetQuantity); err != nil {
		return err
	}
	for _, candidate := range candidates[1:] {
		if candidate.Code == first.Code {
			continue
		}
		return c.fillUtilitySlot(ctx, character.SlotUtility2, candidate, policy.TargetQuantity)
	}
	return nil
}

// usablePotions ranks the potions this character can get its hands on:
// restore first, splash restore second, the rest by simulated fight outcome.
func (c *CharacterContext) usablePotions(monster *game.Monster) []*game.Item {
	snap := c.Snapshot()
	var restore, splash []*game.Item
	var others []*game.Item
	for _, item := range c.Catalog.Items() {
		if item.Type != game.ItemTypeUtility || item.Level > snap.Level {
			continue
		}
		held := snap.ItemCount(item.Code) + snap.EquippedCount(item.Code)
		if held == 0 && c.Mirror.AvailableBankCount(item.Code, c.Name) == 0 {
			continue
		}
		switch {
		case item.EffectValue(game.EffectRestore) > 0:
			restore = append(restore, item)
		case item.EffectValue(game.EffectSplashRestore) > 0:
			splash = append(splash, item)
		default:
			others = append(others, item)
		}
	}

	rankBySim := func(items []*game.Item) []*game.Item {
		if len(items) < 2 {
			return items
		}
		charStats := combat.StatsFromCharacter(snap)
		monsterStats := combat.StatsFromMonster(monster)
		type scored struct {
			item   *game.Item
			result *combat.Result
		}
		ranked := make([]scored, 0, len(items))
		for _, item := range items {
			result := combat.Simulate(charStats, monsterStats, []*game.Item{item}, nil)
			ranked = append(ranked, scored{item: item, result: result})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i].result, ranked[j].result
			if a.Win != b.Win {
				return a.Win
			}
			if a.RemainingHP != b.RemainingHP {
				return a.RemainingHP > b.RemainingHP
			}
			return a.Turns < b.Turns
		})
		out := make([]*game.Item, len(ranked))
		for i, s := range ranked {
			out[i] = s.item
		}
		return out
	}

	// Within a tier, higher level potions come first
	byLevel := func(items []*game.Item) []*game.Item {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Level > items[j].Level })
		return items
	}

	ordered := append(byLevel(restore), byLevel(splash)...)
	return append(ordered, rankBySim(others)...)
}

// fillUtilitySlot tops the slot up to target with the given potion,
// withdrawing from the bank as needed. A different potion already in the
// slot gets swapped out.
func (c *CharacterContext) fillUtilitySlot(ctx context.Context, slot string, potion *game.Item, target int) error {
	snap := c.Snapshot()
	current := snap.EquipmentCode(slot)
	equipped := 0
	if current == potion.Code {
		equipped = snap.UtilityQuantities[slot]
	}
	if equipped >= target {
		return nil
	}

	need := target - equipped
	inInventory := snap.ItemCount(potion.Code)
	if inInventory < need {
		wanted := []game.ItemQuantity{{Code: potion.Code, Quantity: need - inInventory}}
		if _, err := WithdrawReserved(ctx, c, wanted); err != nil {
			return err
		}
	}

	toEquip := min(c.Snapshot().ItemCount(potion.Code), need)
	if toEquip <= 0 {
		return nil
	}

	if current != "" && current != potion.Code {
		qty := snap.UtilityQuantities[slot]
		if qty <= 0 {
			qty = 1
		}
		if _, err := c.Do(ctx, "unequip", func(ctx context.Context) (*character.ActionResult, error) {
			return c.API.Unequip(ctx, c.Name, slot, qty)
		}); err != nil {
			return err
		}
	}

	_, err := c.Do(ctx, "equip", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Equip(ctx, c.Name, potion.Code, slot, toEquip)
	})
	return err
}
