package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// fightOnce runs the shared pre-fight flow and one fight against the
// monster. Returns the fight outcome, or nil when the fight had to be
// deferred (gear not obtainable, not winnable at any HP).
func fightOnce(ctx context.Context, c *CharacterContext, monster *game.Monster) (*character.FightOutcome, error) {
	ready, err := EquipForCombat(ctx, c, monster)
	if err != nil || !ready {
		return nil, err
	}
	if err := PrepareCombatPotions(ctx, c, monster); err != nil {
		return nil, err
	}
	winnable, err := RestBeforeFight(ctx, c, monster)
	if err != nil || !winnable {
		return nil, err
	}
	if err := MoveToContent(ctx, c, game.ContentTypeMonster, monster.Code); err != nil {
		return nil, err
	}
	result, err := c.Do(ctx, "fight", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Fight(ctx, c.Name)
	})
	if err != nil {
		return nil, err
	}
	return result.Fight, nil
}

// ExecuteCombat advances the combat rotation by one fight. A claimed fight
// order takes precedence over the rotation's own target; order kills deposit
// their drops and count toward the order, not the goal. The second return
// asks the caller to force-rotate.
func ExecuteCombat(ctx context.Context, c *CharacterContext) (cont bool, rotate bool, err error) {
	if order := EnsureOrderClaim(ctx, c, orders.SourceFight, ""); order != nil {
		return executeFightOrder(ctx, c, order)
	}

	target := c.Rotation.CombatTarget()
	if target == nil {
		return false, true, nil
	}

	outcome, err := fightOnce(ctx, c, target.Monster)
	if err != nil {
		return false, false, err
	}
	if outcome == nil {
		// Could not line the fight up right now
		return false, true, nil
	}
	if c.RecordFightResult(target.Monster.Code, outcome.Win) {
		c.Log.Warnw("loss streak exceeded", "character", c.Name, "monster", target.Monster.Code)
		return false, true, nil
	}
	if outcome.Win {
		c.Rotation.RecordProgress(1)
	}
	return !c.Rotation.GoalDone(), false, nil
}

// executeFightOrder serves one claimed fight order: kill, count the ordered
// item's drops, deposit and apply progress.
func executeFightOrder(ctx context.Context, c *CharacterContext, order *orders.Order) (cont bool, rotate bool, err error) {
	monster, ok := c.Catalog.Monster(order.SourceCode)
	if !ok {
		BlockOrderClaim(c, "unknown monster "+order.SourceCode)
		return false, false, nil
	}

	outcome, err := fightOnce(ctx, c, monster)
	if err != nil {
		return false, false, err
	}
	if outcome == nil {
		BlockOrderClaim(c, "fight not winnable right now")
		return false, true, nil
	}
	if c.RecordFightResult(monster.Code, outcome.Win) {
		BlockOrderClaim(c, "loss streak against "+monster.Code)
		return false, true, nil
	}
	if !outcome.Win {
		return true, false, nil
	}

	produced := 0
	for _, drop := range outcome.Drops {
		if drop.Code == order.ItemCode {
			produced += drop.Quantity
		}
	}
	if produced == 0 {
		// Keep hunting until the drop lands or the inventory fills up
		if UnderReservePressure(c.Snapshot()) {
			_, err := DepositInventory(ctx, c)
			return err == nil, false, err
		}
		return true, false, nil
	}

	stillHeld, err := ApplyOrderProgress(ctx, c, produced)
	if err != nil {
		return false, false, err
	}
	return stillHeld, !stillHeld, nil
}
