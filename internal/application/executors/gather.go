package executors

import (
	"context"
	"time"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// toolRecheckTTL throttles re-checking for a gathering tool that the bank
// did not have last time
const toolRecheckTTL = 30 * time.Second

// prepareGathering equips the best tool for the skill. A missing tool is not
// fatal; bare-handed gathering works, so the check just backs off for a
// while before looking at the bank again.
func prepareGathering(ctx context.Context, c *CharacterContext, skill string) error {
	now := c.Clock.Now()
	if now.Before(c.toolRecheckAt) {
		return nil
	}
	ready, err := EquipForGathering(ctx, c, skill)
	if err != nil {
		return err
	}
	if !ready {
		c.toolRecheckAt = now.Add(toolRecheckTTL)
	}
	return nil
}

// gatherOnce moves to the resource and harvests it once
func gatherOnce(ctx context.Context, c *CharacterContext, resource *game.Resource) (*character.GatherOutcome, error) {
	if err := prepareGathering(ctx, c, resource.Skill); err != nil {
		return nil, err
	}
	if err := MoveToContent(ctx, c, game.ContentTypeResource, resource.Code); err != nil {
		return nil, err
	}
	result, err := c.Do(ctx, "gather", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Gather(ctx, c.Name)
	})
	if err != nil {
		return nil, err
	}
	return result.Gather, nil
}

// ExecuteGathering advances the gathering rotation by one harvest. Claimed
// gather orders take precedence; their yield goes to the bank and the order.
func ExecuteGathering(ctx context.Context, c *CharacterContext) (cont bool, rotate bool, err error) {
	if order := EnsureOrderClaim(ctx, c, orders.SourceGather, ""); order != nil {
		return executeGatherOrder(ctx, c, order)
	}

	resource, _ := c.Rotation.GatherTarget()
	if resource == nil {
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
			gained += item.Quantity
		}
	}
	c.Rotation.RecordProgress(gained)
	return !c.Rotation.GoalDone(), false, nil
}

// executeGatherOrder serves one claimed gather order
func executeGatherOrder(ctx context.Context, c *CharacterContext, order *orders.Order) (cont bool, rotate bool, err error) {
	resource, ok := c.Catalog.Resource(order.SourceCode)
	if !ok {
		BlockOrderClaim(c, "unknown resource "+order.SourceCode)
		return false, false, nil
	}

	if _, err := gatherOnce(ctx, c, resource); err != nil {
		BlockOrderClaim(c, "resource unreachable: "+err.Error())
		return false, true, nil
	}

	held := c.Snapshot().ItemCount(order.ItemCode)
	batchDone := held >= order.RemainingQty || UnderReservePressure(c.Snapshot())
	if !batchDone {
		return true, false, nil
	}

	stillHeld, err := ApplyOrderProgress(ctx, c, held)
	if err != nil {
		return false, false, err
	}
	return stillHeld, !stillHeld, nil
}
