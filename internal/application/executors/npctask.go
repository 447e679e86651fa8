package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// AcceptTask takes a new task from the tasks master of the given flavor
func AcceptTask(ctx context.Context, c *CharacterContext, taskType string) error {
	if err := MoveToContent(ctx, c, game.ContentTypeTasksMaster, taskType); err != nil {
		return err
	}
	result, err := c.Do(ctx, "accept_task", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.AcceptTask(ctx, c.Name)
	})
	if err != nil {
		return err
	}
	if result.Task != nil {
		c.Log.Infow("task accepted", "character", c.Name, "task", result.Task.Code, "total", result.Task.Total)
	}
	return nil
}

// CompleteTask turns the finished task in and runs a proactive exchange on
// the fresh coins.
func CompleteTask(ctx context.Context, c *CharacterContext) error {
	if err := moveToTasksMaster(ctx, c); err != nil {
		return err
	}
	if _, err := c.Do(ctx, "complete_task", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.CompleteTask(ctx, c.Name)
	}); err != nil {
		return err
	}
	_, err := c.Exchange.Run(ctx, c, true)
	return err
}

// CancelTask abandons the current task for one task coin
func CancelTask(ctx context.Context, c *CharacterContext) error {
	if err := moveToTasksMaster(ctx, c); err != nil {
		return err
	}
	_, err := c.Do(ctx, "cancel_task", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.CancelTask(ctx, c.Name)
	})
	return err
}

// ExecuteNpcTask advances a monster kill task by one step
func ExecuteNpcTask(ctx context.Context, c *CharacterContext) (cont bool, rotate bool, err error) {
	snap := c.Snapshot()

	if !snap.HasTask() {
		if err := AcceptTask(ctx, c, character.TaskTypeMonsters); err != nil {
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

	if snap.TaskType != character.TaskTypeMonsters {
		// An item task in the slot; the item task rotation owns it
		return false, true, nil
	}

	monster, ok := c.Catalog.Monster(snap.Task)
	if !ok {
		if err := CancelTask(ctx, c); err != nil {
			return false, false, err
		}
		return false, true, nil
	}

	outcome, err := fightOnce(ctx, c, monster)
	if err != nil {
		return false, false, err
	}
	if outcome == nil {
		// Not winnable with anything we can obtain; a coin back beats a
		// stuck slot
		if err := CancelTask(ctx, c); err != nil {
			return false, false, err
		}
		return false, true, nil
	}
	if c.RecordFightResult(monster.Code, outcome.Win) {
		return false, true, nil
	}
	return true, false, nil
}
