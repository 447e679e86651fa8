package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// actionResponse is the common envelope of every /action endpoint: the
// refreshed character, the cooldown, and an action-specific block.
type actionResponse struct {
	Data struct {
		Cooldown  cooldownPayload  `json:"cooldown"`
		Character characterPayload `json:"character"`

		Fight *struct {
			Result string `json:"result"`
			Turns  int    `json:"turns"`
			XP     int    `json:"xp"`
			Gold   int    `json:"gold"`
			Drops  []struct {
				Code     string `json:"code"`
				Quantity int    `json:"quantity"`
			} `json:"drops"`
		} `json:"fight"`

		Details *struct {
			XP    int `json:"xp"`
			Items []struct {
				Code     string `json:"code"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
		} `json:"details"`

		Slot string `json:"slot"`
		Item *struct {
			Code string `json:"code"`
		} `json:"item"`

		Items []struct {
			Code     string `json:"code"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Gold *struct {
			Quantity int `json:"quantity"`
		} `json:"gold"`

		Task *struct {
			Code    string `json:"code"`
			Type    string `json:"type"`
			Total   int    `json:"total"`
			Rewards *struct {
				Items []struct {
					Code     string `json:"code"`
					Quantity int    `json:"quantity"`
				} `json:"items"`
				Gold int `json:"gold"`
			} `json:"rewards"`
		} `json:"task"`
	} `json:"data"`
}

func itemQuantities(raw []struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}) []game.ItemQuantity {
	out := make([]game.ItemQuantity, 0, len(raw))
	for _, r := range raw {
		out = append(out, game.ItemQuantity{Code: r.Code, Quantity: r.Quantity})
	}
	return out
}

func (r *actionResponse) toResult(action string) *character.ActionResult {
	result := &character.ActionResult{
		Character: r.Data.Character.toSnapshot(),
		Cooldown:  r.Data.Cooldown.toCooldown(),
	}
	// The character payload's own cooldown fields lag behind the action's
	// cooldown block, which is authoritative
	result.Character.Cooldown = result.Cooldown

	if f := r.Data.Fight; f != nil {
		result.Fight = &character.FightOutcome{
			Win:     f.Result == "win",
			Turns:   f.Turns,
			XP:      f.XP,
			Gold:    f.Gold,
			Drops:   itemQuantities(f.Drops),
			FinalHP: result.Character.HP,
		}
	}
	if d := r.Data.Details; d != nil {
		// The same details block serves gathering, crafting and recycling;
		// the endpoint decides which outcome it is
		switch action {
		case "gathering":
			result.Gather = &character.GatherOutcome{XP: d.XP, Items: itemQuantities(d.Items)}
		case "crafting":
			result.Craft = &character.CraftOutcome{XP: d.XP, Items: itemQuantities(d.Items)}
		case "recycling":
			result.Recycle = &character.RecycleOutcome{Items: itemQuantities(d.Items)}
		}
	}
	if r.Data.Slot != "" {
		code := ""
		if r.Data.Item != nil {
			code = r.Data.Item.Code
		}
		result.Equip = &character.EquipOutcome{Slot: r.Data.Slot, Code: code}
	}
	if len(r.Data.Items) > 0 || r.Data.Gold != nil {
		bank := &character.BankOutcome{Items: itemQuantities(r.Data.Items)}
		if r.Data.Gold != nil {
			bank.Gold = r.Data.Gold.Quantity
		}
		result.Bank = bank
	}
	if t := r.Data.Task; t != nil {
		task := &character.TaskOutcome{Code: t.Code, Type: t.Type, Total: t.Total}
		if t.Rewards != nil {
			task.Rewards = itemQuantities(t.Rewards.Items)
			task.Gold = t.Rewards.Gold
		}
		result.Task = task
	}
	return result
}

func (c *Client) action(ctx context.Context, name, action string, body interface{}) (*character.ActionResult, error) {
	path := fmt.Sprintf("/my/%s/action/%s", url.PathEscape(name), action)
	var response actionResponse
	if err := c.request(ctx, "POST", path, body, &response); err != nil {
		return nil, err
	}
	return response.toResult(action), nil
}

// Move walks the character to (x, y). Already being there counts as success
// with no cooldown; an unroutable destination is a NoPathError the caller
// resolves to map content.
func (c *Client) Move(ctx context.Context, name string, x, y int) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "move", map[string]int{"x": x, "y": y})
	if err != nil {
		if IsStatus(err, CodeAlreadyAtLocation) {
			snap, gerr := c.GetCharacter(ctx, name)
			if gerr != nil {
				return nil, gerr
			}
			return &character.ActionResult{Character: snap}, nil
		}
		if IsStatus(err, CodeContentNotFound) {
			return nil, shared.NewNoPathError("", fmt.Sprintf("%d,%d", x, y))
		}
		return nil, fmt.Errorf("move failed: %w", err)
	}
	return result, nil
}

// Fight attacks the monster on the current tile
func (c *Client) Fight(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "fight", nil)
	if err != nil {
		return nil, fmt.Errorf("fight failed: %w", err)
	}
	return result, nil
}

// Gather harvests the resource on the current tile
func (c *Client) Gather(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "gathering", nil)
	if err != nil {
		return nil, fmt.Errorf("gather failed: %w", err)
	}
	return result, nil
}

// Rest recovers HP without items
func (c *Client) Rest(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "rest", nil)
	if err != nil {
		return nil, fmt.Errorf("rest failed: %w", err)
	}
	return result, nil
}

// Equip puts an inventory item into the slot. Quantity matters only for the
// utility slots where potions stack.
func (c *Client) Equip(ctx context.Context, name, code, slot string, quantity int) (*character.ActionResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]interface{}{"code": code, "slot": slot, "quantity": quantity}
	result, err := c.action(ctx, name, "equip", body)
	if err != nil {
		return nil, fmt.Errorf("equip %s into %s failed: %w", code, slot, err)
	}
	return result, nil
}

// Unequip empties the slot back into inventory
func (c *Client) Unequip(ctx context.Context, name, slot string, quantity int) (*character.ActionResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]interface{}{"slot": slot, "quantity": quantity}
	result, err := c.action(ctx, name, "unequip", body)
	if err != nil {
		return nil, fmt.Errorf("unequip %s failed: %w", slot, err)
	}
	return result, nil
}

// UseItem consumes an inventory item. A non-consumable comes back as the
// typed NotConsumableError for the caller to catch.
func (c *Client) UseItem(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]interface{}{"code": code, "quantity": quantity}
	result, err := c.action(ctx, name, "use", body)
	if err != nil {
		if IsStatus(err, CodeNotConsumable) {
			return nil, shared.NewNotConsumableError(code)
		}
		return nil, fmt.Errorf("use %s failed: %w", code, err)
	}
	result.Use = &character.UseOutcome{Code: code, Quantity: quantity}
	return result, nil
}

// Craft runs the recipe at the current workshop
func (c *Client) Craft(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]interface{}{"code": code, "quantity": quantity}
	result, err := c.action(ctx, name, "crafting", body)
	if err != nil {
		if IsStatus(err, CodeInventoryFull) {
			return nil, shared.NewInventoryFullError()
		}
		return nil, fmt.Errorf("craft %s failed: %w", code, err)
	}
	return result, nil
}

// Recycle breaks equipment down at the crafting workshop
func (c *Client) Recycle(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]interface{}{"code": code, "quantity": quantity}
	result, err := c.action(ctx, name, "recycling", body)
	if err != nil {
		return nil, fmt.Errorf("recycle %s failed: %w", code, err)
	}
	return result, nil
}

// AcceptTask takes a new task from the tasks master on the current tile
func (c *Client) AcceptTask(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "task/new", nil)
	if err != nil {
		return nil, fmt.Errorf("accept task failed: %w", err)
	}
	return result, nil
}

// CompleteTask turns in a finished task for its rewards
func (c *Client) CompleteTask(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "task/complete", nil)
	if err != nil {
		return nil, fmt.Errorf("complete task failed: %w", err)
	}
	return result, nil
}

// CancelTask abandons the current task for one task coin
func (c *Client) CancelTask(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "task/cancel", nil)
	if err != nil {
		return nil, fmt.Errorf("cancel task failed: %w", err)
	}
	return result, nil
}

// TaskExchange trades six task coins for a random reward
func (c *Client) TaskExchange(ctx context.Context, name string) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "task/exchange", nil)
	if err != nil {
		if IsStatus(err, CodeInventoryFull) {
			return nil, shared.NewInventoryFullError()
		}
		return nil, fmt.Errorf("task exchange failed: %w", err)
	}
	return result, nil
}

// TaskTrade hands task items to the tasks master. Missing items surface as
// the typed MissingTradeItemsError.
func (c *Client) TaskTrade(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error) {
	body := map[string]interface{}{"code": code, "quantity": quantity}
	result, err := c.action(ctx, name, "task/trade", body)
	if err != nil {
		if IsStatus(err, CodeMissingTradeItems) {
			return nil, shared.NewMissingTradeItemsError(code, quantity)
		}
		return nil, fmt.Errorf("task trade %s failed: %w", code, err)
	}
	return result, nil
}

// DepositBank deposits inventory items at the bank on the current tile
func (c *Client) DepositBank(ctx context.Context, name string, items []game.ItemQuantity) (*character.ActionResult, error) {
	body := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		body = append(body, map[string]interface{}{"code": item.Code, "quantity": item.Quantity})
	}
	result, err := c.action(ctx, name, "bank/deposit/item", body)
	if err != nil {
		return nil, fmt.Errorf("bank deposit failed: %w", err)
	}
	return result, nil
}

// WithdrawBank withdraws items from the bank on the current tile
func (c *Client) WithdrawBank(ctx context.Context, name string, items []game.ItemQuantity) (*character.ActionResult, error) {
	body := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		body = append(body, map[string]interface{}{"code": item.Code, "quantity": item.Quantity})
	}
	result, err := c.action(ctx, name, "bank/withdraw/item", body)
	if err != nil {
		if IsStatus(err, CodeInventoryFull) {
			return nil, shared.NewInventoryFullError()
		}
		return nil, fmt.Errorf("bank withdraw failed: %w", err)
	}
	return result, nil
}

// DepositGold deposits gold at the bank
func (c *Client) DepositGold(ctx context.Context, name string, quantity int) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "bank/deposit/gold", map[string]int{"quantity": quantity})
	if err != nil {
		return nil, fmt.Errorf("gold deposit failed: %w", err)
	}
	return result, nil
}

// WithdrawGold withdraws gold from the bank
func (c *Client) WithdrawGold(ctx context.Context, name string, quantity int) (*character.ActionResult, error) {
	result, err := c.action(ctx, name, "bank/withdraw/gold", map[string]int{"quantity": quantity})
	if err != nil {
		return nil, fmt.Errorf("gold withdraw failed: %w", err)
	}
	return result, nil
}
