package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// ExecuteAchievement advances the selected achievement by one action. The
// objective type decides which primitive runs; anything unactionable
// rotates away.
func ExecuteAchievement(ctx context.Context, c *CharacterContext) (cont bool, rotate bool, err error) {
	achievement := c.Rotation.SelectedAchievement()
	if achievement == nil {
		return false, true, nil
	}

	switch achievement.Type {
	case game.AchievementCombatKill:
		monster, ok := c.Catalog.Monster(achievement.ObjectiveCode)
		if !ok {
			return false, true, nil
		}
		return c.achievementFight(ctx, monster)

	case game.AchievementCombatDrop:
		monster, ok := c.Catalog.MonsterForDrop(achievement.ObjectiveCode)
		if !ok {
			return false, true, nil
		}
		return c.achievementFight(ctx, monster)

	case game.AchievementGathering:
		resource, ok := c.Catalog.ResourceForDrop(achievement.ObjectiveCode)
		if !ok {
			return false, true, nil
		}
		if UnderReservePressure(c.Snapshot()) {
			_, err := DepositInventory(ctx, c)
			return err == nil, false, err
		}
		outcome, err := gatherOnce(ctx, c, resource)
		if err != nil {
			return false, false, err
		}
		gained := 0
		if outcome != nil {
			for _, item := range outcome.Items {
				if item.Code == achievement.ObjectiveCode {
					gained += item.Quantity
				}
			}
		}
		c.Rotation.RecordProgress(gained)
		return !c.Rotation.GoalDone(), false, nil

	case game.AchievementCrafting:
		recipe, ok := c.Catalog.Item(achievement.ObjectiveCode)
		if !ok || !recipe.IsCraftable() {
			return false, true, nil
		}
		return c.achievementCraft(ctx, recipe)

	case game.AchievementTask:
		return ExecuteNpcTask(ctx, c)

	default:
		return false, true, nil
	}
}

func (c *CharacterContext) achievementFight(ctx context.Context, monster *game.Monster) (cont bool, rotate bool, err error) {
	outcome, err := fightOnce(ctx, c, monster)
	if err != nil {
		return false, false, err
	}
	if outcome == nil {
		return false, true, nil
	}
	if c.RecordFightResult(monster.Code, outcome.Win) {
		return false, true, nil
	}
	if outcome.Win {
		c.Rotation.RecordProgress(1)
	}
	return !c.Rotation.GoalDone(), false, nil
}

func (c *CharacterContext) achievementCraft(ctx context.Context, recipe *game.Item) (cont bool, rotate bool, err error) {
	plan, planErr := rotation.ResolvePlan(c.Catalog, recipe, 1)
	if planErr != nil {
		return false, true, nil
	}
	crafted := c.Snapshot().ItemCount(recipe.Code)
	for _, step := range plan.Steps {
		acted, blocked, err := c.advancePlanStep(ctx, plan, step)
		if err != nil {
			return false, false, err
		}
		if blocked {
			return false, true, nil
		}
		if acted {
			if c.Snapshot().ItemCount(recipe.Code) > crafted {
				c.Rotation.RecordProgress(1)
				return !c.Rotation.GoalDone(), false, nil
			}
			return true, false, nil
		}
	}
	return false, true, nil
}
