package scheduler

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/executors"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// Standard routine priorities. Source order matters only for readability;
// the scheduler sorts by priority.
const (
	priorityRest            = 100
	priorityCompleteNpcTask = 60
	priorityDepositBank     = 50
	priorityAutoEquip       = 45
	priorityAcceptNpcTask   = 15
	priorityGatherMaterials = 11
	priorityTargets         = 10
	prioritySkillRotation   = 5
)

// StandardRoutines builds the default routine set for one character
func StandardRoutines() []*Routine {
	return []*Routine{
		restRoutine(),
		completeNpcTaskRoutine(),
		depositBankRoutine(),
		autoEquipRoutine(),
		acceptNpcTaskRoutine(),
		gatherMaterialsRoutine(),
		targetsRoutine(),
		skillRotationRoutine(),
	}
}

// restRoutine tops HP back up whenever it dips dangerously low, whatever
// else is going on.
func restRoutine() *Routine {
	return &Routine{
		Name:     "rest",
		Priority: priorityRest,
		Loop:     true,
		CanRun: func(c *executors.CharacterContext) bool {
			return executors.NeedsRecovery(c)
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			return executors.RecoverHP(ctx, c)
		},
	}
}

func completeNpcTaskRoutine() *Routine {
	return &Routine{
		Name:     "complete_npc_task",
		Priority: priorityCompleteNpcTask,
		CanRun: func(c *executors.CharacterContext) bool {
			return c.Snapshot().TaskComplete()
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			return false, executors.CompleteTask(ctx, c)
		},
	}
}

func depositBankRoutine() *Routine {
	return &Routine{
		Name:     "deposit_bank",
		Priority: priorityDepositBank,
		CanRun: func(c *executors.CharacterContext) bool {
			snap := c.Snapshot()
			return snap.InventoryFull() || snap.InventoryFree() <= 2
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			_, err := executors.DepositInventory(ctx, c)
			return false, err
		},
	}
}

// autoEquipRoutine pulls planned gear out of the bank as soon as it appears
func autoEquipRoutine() *Routine {
	return &Routine{
		Name:     "auto_equip",
		Priority: priorityAutoEquip,
		CanRun: func(c *executors.CharacterContext) bool {
			return executors.HasGearDeficit(c)
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			_, err := executors.WithdrawGearDeficits(ctx, c)
			return false, err
		},
	}
}

func acceptNpcTaskRoutine() *Routine {
	return &Routine{
		Name:     "accept_npc_task",
		Priority: priorityAcceptNpcTask,
		CanRun: func(c *executors.CharacterContext) bool {
			return c.Cfg.AcceptTasks && !c.Snapshot().HasTask()
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			return false, executors.AcceptTask(ctx, c, character.TaskTypeMonsters)
		},
	}
}

// gatherMaterialsRoutine serves the board's gather orders ahead of the
// character's own rotation
func gatherMaterialsRoutine() *Routine {
	return &Routine{
		Name:     "gather_materials",
		Priority: priorityGatherMaterials,
		Loop:     true,
		CanRun: func(c *executors.CharacterContext) bool {
			return c.ClaimedOrderID() != "" || executors.HasOpenOrders(c, orders.SourceGather)
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			return executors.FulfillGatherOrder(ctx, c)
		},
	}
}

// targetsRoutine serves fight orders: drops other characters need for their
// gear targets
func targetsRoutine() *Routine {
	return &Routine{
		Name:     "targets",
		Priority: priorityTargets,
		Loop:     true,
		CanRun: func(c *executors.CharacterContext) bool {
			return executors.HasOpenOrders(c, orders.SourceFight)
		},
		Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
			return executors.FulfillFightOrder(ctx, c)
		},
	}
}

// skillRotationRoutine is the fallback that always has something to do
func skillRotationRoutine() *Routine {
	return &Routine{
		Name:     "skill_rotation",
		Priority: prioritySkillRotation,
		Loop:     true,
		Execute:  executeRotation,
	}
}

// executeRotation picks a skill when needed and advances it by one action
func executeRotation(ctx context.Context, c *executors.CharacterContext) (bool, error) {
	snap := c.Snapshot()
	current := c.Rotation.Current()
	if current == "" || c.Rotation.GoalDone() {
		skill, err := c.Rotation.PickNext(ctx, snap)
		if err != nil {
			return false, err
		}
		current = skill
	}

	cont, rotate, err := dispatchSkill(ctx, c, current)
	if err != nil {
		return false, err
	}
	if rotate {
		if _, err := c.Rotation.ForceRotate(ctx, c.Snapshot()); err != nil {
			return false, err
		}
		return true, nil
	}
	return cont, nil
}

func dispatchSkill(ctx context.Context, c *executors.CharacterContext, skill string) (cont bool, rotate bool, err error) {
	switch skill {
	case rotation.SkillCombat:
		return executors.ExecuteCombat(ctx, c)
	case rotation.SkillNpcTask:
		return executors.ExecuteNpcTask(ctx, c)
	case rotation.SkillItemTask:
		return executors.ExecuteItemTask(ctx, c)
	case rotation.SkillAchievement:
		return executors.ExecuteAchievement(ctx, c)
	case game.SkillMining, game.SkillWoodcutting, game.SkillFishing:
		return executors.ExecuteGathering(ctx, c)
	default:
		// Everything else is a crafting skill
		return executors.ExecuteCrafting(ctx, c, skill)
	}
}
