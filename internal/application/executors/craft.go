package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// ExecuteCrafting advances the crafting rotation by one action: the walker
// finds the first unsatisfied plan step and performs one trip toward it.
// Claimed craft orders (validated as bank-coverable at claim time) take
// precedence over the rotation's own plan.
func ExecuteCrafting(ctx context.Context, c *CharacterContext, skill string) (cont bool, rotate bool, err error) {
	if order := EnsureOrderClaim(ctx, c, orders.SourceCraft, skill); order != nil {
		return executeCraftOrder(ctx, c, order)
	}

	plan := c.Rotation.CraftPlan()
	if plan == nil {
		return false, true, nil
	}

	final := plan.FinalStep()
	if done := c.Snapshot().ItemCount(final.ItemCode) >= final.Quantity; done {
		c.Rotation.RecordProgress(final.Quantity)
		if _, err := DepositInventory(ctx, c); err != nil {
			return false, false, err
		}
		return false, true, nil
	}

	for _, step := range plan.Steps {
		acted, blocked, err := c.advancePlanStep(ctx, plan, step)
		if err != nil {
			return false, false, err
		}
		if blocked {
			c.Rotation.BlockRecipe(skill, plan.Recipe.Code)
			return false, true, nil
		}
		if acted {
			return true, false, nil
		}
	}
	// Every step satisfied but the final product is missing; should not
	// happen, rotate rather than spin
	return false, true, nil
}

// advancePlanStep performs at most one trip toward satisfying the step.
// acted=false means the step is already satisfied; blocked=true means the
// plan cannot proceed and the recipe should be time-boxed.
func (c *CharacterContext) advancePlanStep(ctx context.Context, plan *rotation.Plan, step rotation.Step) (acted bool, blocked bool, err error) {
	snap := c.Snapshot()

	if step.Type == rotation.StepCraft {
		held := snap.ItemCount(step.ItemCode)
		if held >= step.Quantity {
			return false, false, nil
		}
		return c.craftStep(ctx, step, step.Quantity-held)
	}

	held := snap.ItemCount(step.ItemCode)
	if held >= step.Quantity {
		return false, false, nil
	}
	need := step.Quantity - held

	// Bank stock first, whatever the step type
	if c.Mirror.AvailableBankCount(step.ItemCode, c.Name) > 0 {
		got, err := WithdrawReserved(ctx, c, []game.ItemQuantity{{Code: step.ItemCode, Quantity: need}})
		if err != nil {
			return false, false, err
		}
		if len(got) > 0 {
			return true, false, nil
		}
	}

	switch step.Type {
	case rotation.StepGather:
		if UnderReservePressure(snap) {
			_, err := DepositInventory(ctx, c)
			return true, false, err
		}
		resource, ok := c.Catalog.Resource(step.ResourceCode)
		if !ok || snap.SkillLevel(step.GatherSkill) < resource.Level {
			return false, true, nil
		}
		if _, err := gatherOnce(ctx, c, resource); err != nil {
			return false, true, nil
		}
		return true, false, nil

	case rotation.StepFight:
		monster, ok := c.Catalog.Monster(step.MonsterCode)
		if !ok {
			return false, true, nil
		}
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
		return true, false, nil

	case rotation.StepBank:
		// Validated against bank stock at plan time; empty now means
		// someone drained it
		return false, true, nil
	}
	return false, true, nil
}

// craftStep moves to the right workshop and crafts the remaining quantity in
// one action
func (c *CharacterContext) craftStep(ctx context.Context, step rotation.Step, quantity int) (acted bool, blocked bool, err error) {
	// Verify materials on hand; a partial walk means an earlier step is
	// still pending
	recipe, ok := c.Catalog.Item(step.RecipeCode)
	if !ok || recipe.Craft == nil {
		return false, true, nil
	}
	yield := recipe.Craft.Quantity
	if yield <= 0 {
		yield = 1
	}
	crafts := (quantity + yield - 1) / yield
	snap := c.Snapshot()
	for _, material := range recipe.Craft.Items {
		if snap.ItemCount(material.Code) < material.Quantity*crafts {
			return false, false, nil
		}
	}

	if err := MoveToContent(ctx, c, game.ContentTypeWorkshop, step.CraftSkill); err != nil {
		return false, true, nil
	}
	if _, err := c.Do(ctx, "craft", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Craft(ctx, c.Name, step.RecipeCode, crafts)
	}); err != nil {
		return false, false, err
	}
	return true, false, nil
}

// executeCraftOrder serves one claimed craft order: pull materials from the
// bank, craft a batch, deposit it and apply progress.
func executeCraftOrder(ctx context.Context, c *CharacterContext, order *orders.Order) (cont bool, rotate bool, err error) {
	recipe, ok := c.Catalog.Item(order.ItemCode)
	if !ok || !recipe.IsCraftable() {
		BlockOrderClaim(c, "item not craftable: "+order.ItemCode)
		return false, false, nil
	}

	batch := min(order.RemainingQty, c.orderBatchSize(recipe))
	plan, err := rotation.ResolvePlan(c.Catalog, recipe, batch)
	if err != nil {
		BlockOrderClaim(c, "plan failed: "+err.Error())
		return false, false, nil
	}

	produced := c.Snapshot().ItemCount(order.ItemCode)
	if produced >= batch {
		stillHeld, err := ApplyOrderProgress(ctx, c, produced)
		if err != nil {
			return false, false, err
		}
		return stillHeld, !stillHeld, nil
	}

	for _, step := range plan.Steps {
		acted, blocked, err := c.advancePlanStep(ctx, plan, step)
		if err != nil {
			return false, false, err
		}
		if blocked {
			BlockOrderClaim(c, "materials no longer coverable")
			return false, true, nil
		}
		if acted {
			return true, false, nil
		}
	}
	return true, false, nil
}
