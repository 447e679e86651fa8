package executors

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
)

// EnsureOrderClaim scans the open orders of the given source type in claim
// priority and claims the first one this character can actually serve.
// Returns the claimed order, or nil when the board has nothing for us. A
// claim already held (with a live lease) is returned as-is.
func EnsureOrderClaim(ctx context.Context, c *CharacterContext, sourceType orders.SourceType, craftSkill string) *orders.Order {
	if !c.Cfg.OrderBoard.Enabled || !c.Cfg.OrderBoard.FulfillOrders {
		return nil
	}

	now := c.Clock.Now()
	if c.claimedOrderID != "" {
		if order, ok := c.Board.Get(c.claimedOrderID); ok && order.ClaimedBy(c.Name, now) {
			if order.SourceType == sourceType {
				return order
			}
			// Holding a claim of the wrong kind; give it back
			c.Board.ReleaseClaim(c.claimedOrderID)
		}
		c.claimedOrderID = ""
	}

	lease := c.Cfg.OrderBoard.Lease
	open := c.Board.SortForClaim(c.Board.OpenOrders())
	for _, order := range open {
		if order.SourceType != sourceType {
			continue
		}
		if order.RequesterName == c.Name {
			continue
		}
		if !c.canServeOrder(order, craftSkill) {
			continue
		}
		if c.Board.ClaimOrder(order.ID, c.Name, lease) {
			c.claimedOrderID = order.ID
			c.Log.Infow("order claimed", "character", c.Name, "order", order.ID, "item", order.ItemCode, "source", string(order.SourceType))
			return order
		}
	}
	return nil
}

// canServeOrder validates an order against this character's skills, the map,
// and (for craft orders) the current bank.
func (c *CharacterContext) canServeOrder(order *orders.Order, craftSkill string) bool {
	snap := c.Snapshot()
	switch order.SourceType {
	case orders.SourceGather:
		if c.Blacklist.Unreachable(game.ContentTypeResource, order.SourceCode) {
			return false
		}
		if order.GatherSkill != "" && snap.SkillLevel(order.GatherSkill) < order.SourceLevel {
			return false
		}
		_, ok := c.Catalog.Location(game.ContentTypeResource, order.SourceCode, snap.X, snap.Y)
		return ok

	case orders.SourceFight:
		if c.Blacklist.Unreachable(game.ContentTypeMonster, order.SourceCode) {
			return false
		}
		monster, ok := c.Catalog.Monster(order.SourceCode)
		if !ok {
			return false
		}
		if _, ok := c.Catalog.Location(game.ContentTypeMonster, order.SourceCode, snap.X, snap.Y); !ok {
			return false
		}
		req := gear.Request{Snapshot: snap, Bank: c.Mirror.AvailableBankView(c.Name)}
		_, result := c.Optimizer.OptimizeForMonster(req, monster)
		return result != nil && result.Win && result.HPLostPercent <= gear.ViabilityHPLostPercent

	case orders.SourceCraft:
		if craftSkill != "" && order.CraftSkill != craftSkill {
			return false
		}
		if order.CraftSkill != "" && snap.SkillLevel(order.CraftSkill) < order.SourceLevel {
			return false
		}
		recipe, ok := c.Catalog.Item(order.ItemCode)
		if !ok || !recipe.IsCraftable() {
			return false
		}
		plan, err := rotation.ResolvePlan(c.Catalog, recipe, min(order.RemainingQty, c.orderBatchSize(recipe)))
		if err != nil {
			return false
		}
		// Every pre-craft step must be coverable by current stock; claimed
		// craft work never spawns its own field trips
		for _, step := range plan.Steps {
			if step.Type == rotation.StepCraft {
				continue
			}
			have := snap.ItemCount(step.ItemCode) + c.Mirror.AvailableBankCount(step.ItemCode, c.Name)
			if have < step.Quantity {
				return false
			}
		}
		return true
	}
	return false
}

// orderBatchSize bounds one fulfillment trip by the carry budget
func (c *CharacterContext) orderBatchSize(recipe *game.Item) int {
	snap := c.Snapshot()
	budget := snap.InventoryMaxItems - ReserveSlots(snap)
	perUnit := 1
	if recipe.Craft != nil {
		for _, m := range recipe.Craft.Items {
			perUnit += m.Quantity
		}
	}
	size := budget / perUnit
	if size < 1 {
		size = 1
	}
	return size
}

// ReleaseOrderClaim gives the current claim back to the board
func ReleaseOrderClaim(c *CharacterContext) {
	if c.claimedOrderID == "" {
		return
	}
	c.Board.ReleaseClaim(c.claimedOrderID)
	c.claimedOrderID = ""
}

// BlockOrderClaim releases the claim and blocks the order for the configured
// retry window, recording why.
func BlockOrderClaim(c *CharacterContext, reason string) {
	if c.claimedOrderID == "" {
		return
	}
	c.Board.BlockClaim(c.claimedOrderID, reason, c.Cfg.OrderBoard.BlockedRetry)
	c.claimedOrderID = ""
}

// ApplyOrderProgress deposits the produced units to the bank first, then
// applies progress to the claimed order. A no-op progress result means the
// lease was lost; the caller should rotate.
func ApplyOrderProgress(ctx context.Context, c *CharacterContext, produced int) (stillHeld bool, err error) {
	if c.claimedOrderID == "" || produced <= 0 {
		return false, nil
	}
	if _, err := DepositInventory(ctx, c); err != nil {
		return false, err
	}
	remaining, applied := c.Board.ApplyProgress(c.claimedOrderID, c.Name, produced)
	if !applied {
		c.Log.Infow("order lease lost", "character", c.Name, "order", c.claimedOrderID)
		c.claimedOrderID = ""
		return false, nil
	}
	if remaining <= 0 {
		c.claimedOrderID = ""
		return false, nil
	}
	return true, nil
}
