package executors

import (
	"context"
	"fmt"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
)

// equipCacheKey identifies one optimizer answer: the same character at the
// same level against the same monster keeps the same loadout.
func equipCacheKey(name, monsterCode string, level int) string {
	return fmt.Sprintf("%s:%s:%d", name, monsterCode, level)
}

// EquipForCombat puts on the best obtainable loadout against the monster.
// The loadout comes from a per-(character, monster, level) cache or a fresh
// optimizer run; missing pieces are withdrawn from the bank under
// reservations. Returns ready=false when a wanted piece could not be
// obtained or a swap failed, in which case the caller must defer the fight.
func EquipForCombat(ctx context.Context, c *CharacterContext, monster *game.Monster) (bool, error) {
	snap := c.Snapshot()
	key := equipCacheKey(c.Name, monster.Code, snap.Level)

	loadout, ok := c.equipCache.Get(key)
	if !ok {
		req := gear.Request{
			Snapshot: snap,
			Bank:     c.Mirror.AvailableBankView(c.Name),
		}
		optimized, simResult := c.Optimizer.OptimizeForMonster(req, monster)
		if simResult == nil {
			return false, nil
		}
		loadout = optimized
		c.equipCache.Add(key, loadout)
	}

	return applyLoadout(ctx, c, loadout)
}

// EquipForGathering puts on the best gathering loadout for the skill
func EquipForGathering(ctx context.Context, c *CharacterContext, skill string) (bool, error) {
	req := gear.Request{
		Snapshot: c.Snapshot(),
		Bank:     c.Mirror.AvailableBankView(c.Name),
	}
	loadout := c.Optimizer.OptimizeForGathering(req, skill)
	return applyLoadout(ctx, c, loadout)
}

// applyLoadout performs the withdraws and swaps that turn the current
// equipment into the wanted loadout
func applyLoadout(ctx context.Context, c *CharacterContext, want gear.Loadout) (bool, error) {
	snap := c.Snapshot()
	slots := want.Diff(gear.FromEquipment(snap))
	if len(slots) == 0 {
		return true, nil
	}

	// Figure out which wanted codes are not already on the character
	var missing []game.ItemQuantity
	for _, slot := range slots {
		code := want.Get(slot)
		if code == "" {
			continue
		}
		if snap.ItemCount(code) == 0 {
			missing = append(missing, game.ItemQuantity{Code: code, Quantity: 1})
		}
	}
	if len(missing) > 0 {
		got, err := WithdrawReserved(ctx, c, missing)
		if err != nil {
			return false, err
		}
		gotByCode := make(map[string]int, len(got))
		for _, item := range got {
			gotByCode[item.Code] += item.Quantity
		}
		for _, item := range missing {
			if gotByCode[item.Code] < item.Quantity {
				c.Log.Debugw("loadout piece unavailable", "character", c.Name, "item", item.Code)
				return false, nil
			}
		}
	}

	for _, slot := range slots {
		code := want.Get(slot)
		current := c.Snapshot().EquipmentCode(slot)
		if current == code {
			continue
		}
		if current != "" {
			if _, err := c.Do(ctx, "unequip", func(ctx context.Context) (*character.ActionResult, error) {
				return c.API.Unequip(ctx, c.Name, slot, 1)
			}); err != nil {
				return false, err
			}
		}
		if code == "" {
			continue
		}
		if c.Snapshot().ItemCount(code) == 0 {
			return false, nil
		}
		if _, err := c.Do(ctx, "equip", func(ctx context.Context) (*character.ActionResult, error) {
			return c.API.Equip(ctx, c.Name, code, slot, 1)
		}); err != nil {
			return false, err
		}
	}
	return true, nil
}
