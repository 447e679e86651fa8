package executors

import (
	"context"
	"errors"
	"sort"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/combat"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// RestBeforeFight brings HP up to what the simulator says the fight needs.
// Healing food from the inventory goes first (highest restore per use), then
// the rest action. Returns false when no HP level wins the fight.
func RestBeforeFight(ctx context.Context, c *CharacterContext, monster *game.Monster) (bool, error) {
	snap := c.Snapshot()
	charStats := combat.StatsFromCharacter(snap)
	monsterStats := combat.StatsFromMonster(monster)
	needed, winnable := combat.HPNeededForFight(charStats, monsterStats, c.equippedUtilities(), c.equippedRune())
	if !winnable {
		return false, nil
	}
	if needed > snap.MaxHP {
		return false, nil
	}

	for c.Snapshot().HP < needed {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if ate, err := c.eatHealingFood(ctx); err != nil {
			return false, err
		} else if ate {
			continue
		}
		if _, err := c.Do(ctx, "rest", func(ctx context.Context) (*character.ActionResult, error) {
			return c.API.Rest(ctx, c.Name)
		}); err != nil {
			return false, err
		}
	}
	return true, nil
}

// eatHealingFood consumes one stack-unit of the strongest healing food in
// the inventory. Returns false when there is nothing edible.
func (c *CharacterContext) eatHealingFood(ctx context.Context) (bool, error) {
	snap := c.Snapshot()
	type food struct {
		item *game.Item
		heal int
	}
	var foods []food
	for _, slot := range snap.InventoryItems() {
		item, ok := c.Catalog.Item(slot.Code)
		if !ok || item.Type != game.ItemTypeConsumable || item.Level > snap.Level {
			continue
		}
		heal := item.EffectValue(game.EffectHP) + item.EffectValue(game.EffectRestore)
		if heal > 0 {
			foods = append(foods, food{item: item, heal: heal})
		}
	}
	if len(foods) == 0 {
		return false, nil
	}
	sort.SliceStable(foods, func(i, j int) bool { return foods[i].heal > foods[j].heal })

	code := foods[0].item.Code
	_, err := c.Do(ctx, "use", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.UseItem(ctx, c.Name, code, 1)
	})
	if err != nil {
		var notConsumable *shared.NotConsumableError
		if errors.As(err, &notConsumable) {
			c.Log.Debugw("item refused as food", "character", c.Name, "item", code)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// equippedUtilities resolves the utility slot items for the simulator
func (c *CharacterContext) equippedUtilities() []*game.Item {
	snap := c.Snapshot()
	var out []*game.Item
	for _, slot := range []string{character.SlotUtility1, character.SlotUtility2} {
		code := snap.EquipmentCode(slot)
		if code == "" {
			continue
		}
		if item, ok := c.Catalog.Item(code); ok {
			out = append(out, item)
		}
	}
	return out
}

// equippedRune resolves the rune slot item for the simulator
func (c *CharacterContext) equippedRune() *game.Item {
	code := c.Snapshot().EquipmentCode(character.SlotRune)
	if code == "" {
		return nil
	}
	if item, ok := c.Catalog.Item(code); ok {
		return item
	}
	return nil
}
