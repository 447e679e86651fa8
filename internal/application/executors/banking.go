package executors

import (
	"context"
	"time"

	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// bankContentCode is the map content code of the bank
const bankContentCode = "bank"

// reservationTTL bounds how long a withdraw reservation can sit unused
const reservationTTL = 2 * time.Minute

// MoveToBank walks the character to the nearest bank
func MoveToBank(ctx context.Context, c *CharacterContext) error {
	return MoveToContent(ctx, c, game.ContentTypeBank, bankContentCode)
}

// DepositPlan returns what the character should hand to the bank right now:
// the inventory minus the gear-state keep map.
func DepositPlan(c *CharacterContext) []game.ItemQuantity {
	snap := c.Snapshot()
	keep := c.Gear.KeepByCodeForInventory(snap)
	var out []game.ItemQuantity
	for _, slot := range snap.InventoryItems() {
		qty := slot.Quantity - keep[slot.Code]
		if qty > 0 {
			out = append(out, game.ItemQuantity{Code: slot.Code, Quantity: qty})
		}
	}
	return out
}

// DepositInventory moves to the bank and deposits everything the keep map
// does not protect. Returns the number of units deposited.
func DepositInventory(ctx context.Context, c *CharacterContext) (int, error) {
	items := DepositPlan(c)
	if len(items) == 0 {
		return 0, nil
	}
	if err := MoveToBank(ctx, c); err != nil {
		return 0, err
	}
	// Recompute after the move; the keep map may have shifted with the
	// gear state
	items = DepositPlan(c)
	if len(items) == 0 {
		return 0, nil
	}
	_, err := c.Do(ctx, "bank_deposit", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.DepositBank(ctx, c.Name, items)
	})
	if err != nil {
		return 0, err
	}
	c.Mirror.ApplyBankDelta(items, bank.Deposit, "deposit inventory")
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total, nil
}

// WithdrawReserved withdraws the items under short-lived reservations so
// another character cannot claim the same stock between the decision and the
// withdraw. Quantities get clamped to what the bank can actually give.
func WithdrawReserved(ctx context.Context, c *CharacterContext, items []game.ItemQuantity) ([]game.ItemQuantity, error) {
	var wanted []game.ItemQuantity
	for _, item := range items {
		available := c.Mirror.AvailableBankCount(item.Code, c.Name)
		qty := min(item.Quantity, available)
		if qty > 0 {
			wanted = append(wanted, game.ItemQuantity{Code: item.Code, Quantity: qty})
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	ids, ok := c.Mirror.ReserveMany(wanted, c.Name, reservationTTL)
	if !ok {
		return nil, nil
	}
	defer func() {
		for _, id := range ids {
			c.Mirror.Release(id)
		}
	}()

	if err := MoveToBank(ctx, c); err != nil {
		return nil, err
	}
	_, err := c.Do(ctx, "bank_withdraw", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.WithdrawBank(ctx, c.Name, wanted)
	})
	if err != nil {
		return nil, err
	}
	c.Mirror.ApplyBankDelta(wanted, bank.Withdraw, "reserved withdraw")
	return wanted, nil
}
