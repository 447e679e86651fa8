package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
)

// restTargetHPPercent is where the standing rest routine stops topping up
const restTargetHPPercent = 80

// NeedsRecovery reports whether HP is low enough to interrupt other work
func NeedsRecovery(c *CharacterContext) bool {
	return c.Snapshot().HPPercent() < 35
}

// RecoverHP performs one recovery action, food before rest. Returns true
// while more recovery is needed.
func RecoverHP(ctx context.Context, c *CharacterContext) (bool, error) {
	if ate, err := c.eatHealingFood(ctx); err != nil {
		return false, err
	} else if !ate {
		if _, err := c.Do(ctx, "rest", func(ctx context.Context) (*character.ActionResult, error) {
			return c.API.Rest(ctx, c.Name)
		}); err != nil {
			return false, err
		}
	}
	return c.Snapshot().HPPercent() < restTargetHPPercent, nil
}

// WithdrawGearDeficits pulls the gear the plan says this character should
// hold but does not. Returns how many units arrived.
func WithdrawGearDeficits(ctx context.Context, c *CharacterContext) (int, error) {
	requests := c.Gear.DeficitRequests(c.Snapshot())
	if len(requests) == 0 {
		return 0, nil
	}
	got, err := WithdrawReserved(ctx, c, requests)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range got {
		total += item.Quantity
	}
	return total, nil
}

// HasGearDeficit reports whether the bank can cover any missing gear
func HasGearDeficit(c *CharacterContext) bool {
	for _, request := range c.Gear.DeficitRequests(c.Snapshot()) {
		if c.Mirror.AvailableBankCount(request.Code, c.Name) > 0 {
			return true
		}
	}
	return false
}

// FulfillGatherOrder claims and advances one open gather order. Returns
// false when the board has none this character can serve.
func FulfillGatherOrder(ctx context.Context, c *CharacterContext) (bool, error) {
	order := EnsureOrderClaim(ctx, c, orders.SourceGather, "")
	if order == nil {
		return false, nil
	}
	cont, _, err := executeGatherOrder(ctx, c, order)
	return cont, err
}

// FulfillFightOrder claims and advances one open fight order
func FulfillFightOrder(ctx context.Context, c *CharacterContext) (bool, error) {
	order := EnsureOrderClaim(ctx, c, orders.SourceFight, "")
	if order == nil {
		return false, nil
	}
	cont, _, err := executeFightOrder(ctx, c, order)
	return cont, err
}

// HasOpenOrders reports whether the board holds an open order of the type
// that did not come from this character
func HasOpenOrders(c *CharacterContext, sourceType orders.SourceType) bool {
	if !c.Cfg.OrderBoard.Enabled || !c.Cfg.OrderBoard.FulfillOrders {
		return false
	}
	for _, order := range c.Board.OpenOrders() {
		if order.SourceType == sourceType && order.RequesterName != c.Name {
			return true
		}
	}
	return false
}
