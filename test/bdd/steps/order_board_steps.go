package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

const (
	testLease        = 15 * time.Minute
	testBlockedRetry = 5 * time.Minute
)

type orderBoardContext struct {
	board     *orders.Board
	clock     *shared.MockClock
	lastClaim bool
}

func (oc *orderBoardContext) reset() {
	oc.clock = shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	oc.board = orders.NewBoard(stepCatalog(), oc.clock, zap.NewNop().Sugar())
	oc.lastClaim = false
}

// stepCatalog holds just enough items for claim-priority bucketing
func stepCatalog() *game.Catalog {
	items := []game.Item{
		{Code: "iron_pickaxe", Type: game.ItemTypeWeapon, Subtype: game.SubtypeTool, Level: 10,
			Effects: []game.Effect{{Code: "mining", Value: -10}}},
		{Code: "iron_ore", Type: game.ItemTypeResource, Subtype: "mining"},
		{Code: "iron_sword", Type: game.ItemTypeWeapon, Level: 10},
	}
	return game.NewCatalog(items, nil, nil, nil, nil)
}

func (oc *orderBoardContext) orderFor(itemCode string) (*orders.Order, error) {
	for _, o := range oc.board.Orders() {
		if o.ItemCode == itemCode {
			return o, nil
		}
	}
	return nil, fmt.Errorf("no order for %q on the board", itemCode)
}

// Setup steps

func (oc *orderBoardContext) anEmptyOrderBoard() error {
	oc.reset()
	return nil
}

func (oc *orderBoardContext) requestsGathered(requester string, quantity int, itemCode, sourceCode string) error {
	oc.board.CreateOrMergeOrder(orders.Payload{
		RequesterName: requester,
		RecipeCode:    itemCode,
		ItemCode:      itemCode,
		SourceType:    orders.SourceGather,
		SourceCode:    sourceCode,
		GatherSkill:   "mining",
		Quantity:      quantity,
	})
	return nil
}

func (oc *orderBoardContext) requestsFought(requester string, quantity int, itemCode, monsterCode string) error {
	oc.board.CreateOrMergeOrder(orders.Payload{
		RequesterName: requester,
		RecipeCode:    itemCode,
		ItemCode:      itemCode,
		SourceType:    orders.SourceFight,
		SourceCode:    monsterCode,
		Quantity:      quantity,
	})
	return nil
}

func (oc *orderBoardContext) requestsCrafted(requester string, quantity int, itemCode, craftSkill string) error {
	oc.board.CreateOrMergeOrder(orders.Payload{
		RequesterName: requester,
		RecipeCode:    itemCode,
		ItemCode:      itemCode,
		SourceType:    orders.SourceCraft,
		SourceCode:    itemCode,
		CraftSkill:    craftSkill,
		Quantity:      quantity,
	})
	return nil
}

// Action steps

func (oc *orderBoardContext) claimsTheOrderFor(character, itemCode string) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	oc.lastClaim = oc.board.ClaimOrder(o.ID, character, testLease)
	return nil
}

func (oc *orderBoardContext) deliversToward(character string, delta int, itemCode string) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	if _, applied := oc.board.ApplyProgress(o.ID, character, delta); !applied {
		return fmt.Errorf("delivery by %s toward %s was rejected", character, itemCode)
	}
	return nil
}

func (oc *orderBoardContext) blocksTheOrderFor(character, itemCode, reason string) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	oc.board.BlockClaim(o.ID, reason, testBlockedRetry)
	return nil
}

func (oc *orderBoardContext) minutesPass(minutes int) error {
	oc.clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

// Assertion steps

func (oc *orderBoardContext) theBoardShouldHaveOpenOrders(count int) error {
	open := oc.board.OpenOrders()
	if len(open) != count {
		return fmt.Errorf("expected %d open orders, got %d", count, len(open))
	}
	return nil
}

func (oc *orderBoardContext) theOrderShouldHaveRemaining(itemCode string, remaining int) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	if o.RemainingQty != remaining {
		return fmt.Errorf("expected %d remaining for %s, got %d", remaining, itemCode, o.RemainingQty)
	}
	return nil
}

func (oc *orderBoardContext) theOrderShouldRecordContribution(itemCode string, quantity int, requester string) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	for key, qty := range o.Contributions {
		if strings.HasPrefix(key, requester+"::") && qty == quantity {
			return nil
		}
	}
	return fmt.Errorf("no contribution of %d from %s on %s (have %v)", quantity, requester, itemCode, o.Contributions)
}

func (oc *orderBoardContext) theClaimShouldSucceed() error {
	if !oc.lastClaim {
		return fmt.Errorf("expected the claim to succeed")
	}
	return nil
}

func (oc *orderBoardContext) theClaimShouldFail() error {
	if oc.lastClaim {
		return fmt.Errorf("expected the claim to fail")
	}
	return nil
}

func (oc *orderBoardContext) theOrderShouldBeClaimedBy(itemCode, character string) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	if !o.ClaimedBy(character, oc.clock.Now()) {
		return fmt.Errorf("expected %s to hold the claim on %s, status %s claimer %q", character, itemCode, o.Status, o.Claimer)
	}
	return nil
}

func (oc *orderBoardContext) theOrderShouldHaveStatus(itemCode string, want orders.Status) error {
	o, err := oc.orderFor(itemCode)
	if err != nil {
		return err
	}
	// Re-read through the board so lazy lease expiry runs.
	if fresh, ok := oc.board.Get(o.ID); ok {
		o = fresh
	}
	if o.Status != want {
		return fmt.Errorf("expected %s to be %s, got %s", itemCode, want, o.Status)
	}
	return nil
}

func (oc *orderBoardContext) theOrderShouldBeOpen(itemCode string) error {
	return oc.theOrderShouldHaveStatus(itemCode, orders.StatusOpen)
}

func (oc *orderBoardContext) theOrderShouldBeFulfilled(itemCode string) error {
	return oc.theOrderShouldHaveStatus(itemCode, orders.StatusFulfilled)
}

func (oc *orderBoardContext) theOrderShouldBeBlocked(itemCode string) error {
	return oc.theOrderShouldHaveStatus(itemCode, orders.StatusBlocked)
}

func (oc *orderBoardContext) theClaimOrderShouldBe(first, second, third string) error {
	sorted := oc.board.SortForClaim(oc.board.OpenOrders())
	want := []string{first, second, third}
	if len(sorted) != len(want) {
		return fmt.Errorf("expected %d claimable orders, got %d", len(want), len(sorted))
	}
	for i, o := range sorted {
		if o.ItemCode != want[i] {
			return fmt.Errorf("expected %s at position %d, got %s", want[i], i, o.ItemCode)
		}
	}
	return nil
}

// RegisterOrderBoardSteps registers all order board step definitions
func RegisterOrderBoardSteps(sc *godog.ScenarioContext) {
	oc := &orderBoardContext{}
	oc.reset()

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		oc.reset()
		return ctx, nil
	})

	// Setup steps
	sc.Step(`^an empty order board$`, oc.anEmptyOrderBoard)
	sc.Step(`^"([^"]*)" requests (\d+) "([^"]*)" gathered from "([^"]*)"$`, oc.requestsGathered)
	sc.Step(`^"([^"]*)" requests (\d+) "([^"]*)" fought from "([^"]*)"$`, oc.requestsFought)
	sc.Step(`^"([^"]*)" requests (\d+) "([^"]*)" crafted with "([^"]*)"$`, oc.requestsCrafted)

	// Action steps
	sc.Step(`^"([^"]*)" claims the order for "([^"]*)"$`, oc.claimsTheOrderFor)
	sc.Step(`^"([^"]*)" delivers (\d+) toward the order for "([^"]*)"$`, oc.deliversToward)
	sc.Step(`^"([^"]*)" blocks the order for "([^"]*)" because "([^"]*)"$`, oc.blocksTheOrderFor)
	sc.Step(`^(\d+) minutes pass$`, oc.minutesPass)

	// Assertion steps
	sc.Step(`^the board should have (\d+) open orders?$`, oc.theBoardShouldHaveOpenOrders)
	sc.Step(`^the order for "([^"]*)" should have (\d+) remaining$`, oc.theOrderShouldHaveRemaining)
	sc.Step(`^the order for "([^"]*)" should record a contribution of (\d+) from "([^"]*)"$`, oc.theOrderShouldRecordContribution)
	sc.Step(`^the claim should succeed$`, oc.theClaimShouldSucceed)
	sc.Step(`^the claim should fail$`, oc.theClaimShouldFail)
	sc.Step(`^the order for "([^"]*)" should be claimed by "([^"]*)"$`, oc.theOrderShouldBeClaimedBy)
	sc.Step(`^the order for "([^"]*)" should be open$`, oc.theOrderShouldBeOpen)
	sc.Step(`^the order for "([^"]*)" should be fulfilled$`, oc.theOrderShouldBeFulfilled)
	sc.Step(`^the order for "([^"]*)" should be blocked$`, oc.theOrderShouldBeBlocked)
	sc.Step(`^the claim order should be "([^"]*)", "([^"]*)", "([^"]*)"$`, oc.theClaimOrderShouldBe)
}
