package executors

import (
	"context"
	"errors"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

const defaultTaskBatchSize = 15

// shouldTradeItemTaskNow decides whether to walk to the tasks master with
// what we hold: trade when we have any of the item and either cannot produce
// more right now, the inventory is full, or the batch is sized.
func shouldTradeItemTaskNow(c *CharacterContext, canProduce bool) bool {
	snap := c.Snapshot()
	held := snap.ItemCount(snap.Task)
	if held == 0 {
		return false
	}
	batch := c.Cfg.TaskBatchSize
	if batch <= 0 {
		batch = defaultTaskBatchSize
	}
	remaining := snap.TaskTotal - snap.TaskProgress
	if held >= remaining {
		return true
	}
	return !canProduce || snap.InventoryFull() || held >= batch
}

// ExecuteItemTask advances a trade task by one step: withdraw, gather or
// craft the task item, and trade it in batches.
func ExecuteItemTask(ctx context.Context, c *CharacterContext) (cont bool, rotate bool, err error) {
	snap := c.Snapshot()

	if !snap.HasTask() {
		if err := AcceptTask(ctx, c, character.TaskTypeItems); err != nil {
			return false, false, err
		}
		return true, false, nil
	}

	if snap.TaskComplete() {
		if err := CompleteTask(ctx, c); err != nil {
			return false, false, err
		}
		c.Rotation.RecordProgress(1)
		return false, true, nil
	}

	if snap.TaskType != character.TaskTypeItems {
		return false, true, nil
	}

	taskItem := snap.Task
	remaining := snap.TaskTotal - snap.TaskProgress

	// Work out how this character could produce more of the item
	var resource *game.Resource
	if r, ok := c.Catalog.ResourceForDrop(taskItem); ok && snap.SkillLevel(r.Skill) >= r.Level &&
		!c.Blacklist.Unreachable(game.ContentTypeResource, r.Code) {
		resource = r
	}
	var recipe *game.Item
	if item, ok := c.Catalog.Item(taskItem); ok && item.IsCraftable() &&
		snap.SkillLevel(item.Craft.Skill) >= item.Craft.Level {
		recipe = item
	}
	canProduce := resource != nil || recipe != nil

	if shouldTradeItemTaskNow(c, canProduce) {
		return c.tradeTaskItems(ctx, taskItem, remaining)
	}

	// Bank first
	if c.Mirror.AvailableBankCount(taskItem, c.Name) > 0 {
		need := remaining - snap.ItemCount(taskItem)
		got, err := WithdrawReserved(ctx, c, []game.ItemQuantity{{Code: taskItem, Quantity: need}})
		if err != nil {
			return false, false, err
		}
		if len(got) > 0 {
			return true, false, nil
		}
	}

	if resource != nil {
		if UnderReservePressure(snap) {
			return c.tradeTaskItems(ctx, taskItem, remaining)
		}
		if _, err := gatherOnce(ctx, c, resource); err != nil {
			return false, false, err
		}
		return true, false, nil
	}

	if recipe != nil {
		need := remaining - snap.ItemCount(taskItem)
		plan, planErr := rotation.ResolvePlan(c.Catalog, recipe, need)
		if planErr == nil {
			for _, step := range plan.Steps {
				acted, blocked, err := c.advancePlanStep(ctx, plan, step)
				if err != nil {
					return false, false, err
				}
				if blocked {
					plan = nil
					break
				}
				if acted {
					return true, false, nil
				}
			}
			if plan != nil {
				return true, false, nil
			}
		}
	}

	// Nothing this character can do: hand the deficit to the board and
	// take the coin
	if c.Cfg.OrderBoard.Enabled && c.Cfg.OrderBoard.CreateOrders {
		if r, ok := c.Catalog.ResourceForDrop(taskItem); ok {
			c.Board.CreateOrMergeOrder(orders.Payload{
				RequesterName: c.Name,
				ItemCode:      taskItem,
				SourceType:    orders.SourceGather,
				SourceCode:    r.Code,
				GatherSkill:   r.Skill,
				SourceLevel:   r.Level,
				Quantity:      remaining,
			})
		}
	}
	if err := CancelTask(ctx, c); err != nil {
		return false, false, err
	}
	return false, true, nil
}

// tradeTaskItems hands held task items to the tasks master
func (c *CharacterContext) tradeTaskItems(ctx context.Context, taskItem string, remaining int) (cont bool, rotate bool, err error) {
	quantity := min(c.Snapshot().ItemCount(taskItem), remaining)
	if quantity <= 0 {
		return true, false, nil
	}
	if err := moveToTasksMaster(ctx, c); err != nil {
		return false, false, err
	}
	_, err = c.Do(ctx, "task_trade", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.TaskTrade(ctx, c.Name, taskItem, quantity)
	})
	if err != nil {
		var missing *shared.MissingTradeItemsError
		if errors.As(err, &missing) {
			c.Log.Warnw("trade refused, item count drifted", "character", c.Name, "item", taskItem)
			return true, false, nil
		}
		return false, false, err
	}
	return true, false, nil
}
