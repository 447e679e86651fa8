package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

type stubItems map[string]*game.Item

func (s stubItems) Item(code string) (*game.Item, bool) {
	item, ok := s[code]
	return item, ok
}

func testItems() stubItems {
	return stubItems{
		"iron_pickaxe": {Code: "iron_pickaxe", Type: game.ItemTypeWeapon, Subtype: game.SubtypeTool},
		"iron_ore":     {Code: "iron_ore", Type: game.ItemTypeResource},
		"iron_sword":   {Code: "iron_sword", Type: game.ItemTypeWeapon},
		"iron_helmet":  {Code: "iron_helmet", Type: game.ItemTypeHelmet},
	}
}

func newTestBoard(clock shared.Clock) *Board {
	return NewBoard(testItems(), clock, zap.NewNop().Sugar())
}

func gatherPayload(requester, itemCode string, qty int) Payload {
	return Payload{
		RequesterName: requester,
		RecipeCode:    "iron_sword",
		ItemCode:      itemCode,
		SourceType:    SourceGather,
		SourceCode:    "iron_rocks",
		GatherSkill:   "mining",
		SourceLevel:   10,
		Quantity:      qty,
	}
}

func TestCreateOrMergeOrder(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.Nil(t, board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 0)))
	})

	t.Run("same merge key is additive", func(t *testing.T) {
		first := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
		require.NotNil(t, first)
		clock.Advance(time.Minute)

		second := board.CreateOrMergeOrder(Payload{
			RequesterName: "bob",
			RecipeCode:    "iron_helmet",
			ItemCode:      "iron_ore",
			SourceType:    SourceGather,
			SourceCode:    "iron_rocks",
			GatherSkill:   "mining",
			Quantity:      5,
		})

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 15, second.Quantity)
		assert.Equal(t, 15, second.RemainingQty)
		assert.Equal(t, 10, second.Contributions["alice::iron_sword"])
		assert.Equal(t, 5, second.Contributions["bob::iron_helmet"])
		// The merged order keeps its original creation time.
		assert.Equal(t, clock.Now().Add(-time.Minute), second.CreatedAt)
	})

	t.Run("different source does not merge", func(t *testing.T) {
		other := board.CreateOrMergeOrder(Payload{
			RequesterName: "alice",
			ItemCode:      "iron_ore",
			SourceType:    SourceFight,
			SourceCode:    "rock_golem",
			Quantity:      3,
		})
		assert.Equal(t, 3, other.Quantity)
		assert.Len(t, board.Orders(), 2)
	})

	t.Run("claimed order does not absorb new submissions", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		first := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
		require.True(t, board.ClaimOrder(first.ID, "carol", 15*time.Minute))

		second := board.CreateOrMergeOrder(gatherPayload("bob", "iron_ore", 4))
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestClaimOrder(t *testing.T) {
	lease := 15 * time.Minute

	t.Run("exclusive claim with lease", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))

		require.True(t, board.ClaimOrder(o.ID, "carol", lease))
		assert.False(t, board.ClaimOrder(o.ID, "dave", lease))
		assert.True(t, o.ClaimedBy("carol", clock.Now()))
	})

	t.Run("re-claim by the holder extends the lease", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))

		require.True(t, board.ClaimOrder(o.ID, "carol", lease))
		clock.Advance(10 * time.Minute)
		require.True(t, board.ClaimOrder(o.ID, "carol", lease))
		assert.Equal(t, clock.Now().Add(lease), o.ClaimExpires)
	})

	t.Run("expired lease reopens the order", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))

		require.True(t, board.ClaimOrder(o.ID, "carol", lease))
		clock.Advance(lease)

		got, ok := board.Get(o.ID)
		require.True(t, ok)
		assert.Equal(t, StatusOpen, got.Status)
		assert.Empty(t, got.Claimer)
		assert.True(t, board.ClaimOrder(o.ID, "dave", lease))
	})

	t.Run("unknown order cannot be claimed", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		assert.False(t, board.ClaimOrder("missing", "carol", lease))
	})
}

func TestApplyProgress(t *testing.T) {
	lease := 15 * time.Minute

	t.Run("progress fulfills at zero", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
		require.True(t, board.ClaimOrder(o.ID, "carol", lease))

		remaining, ok := board.ApplyProgress(o.ID, "carol", 4)
		require.True(t, ok)
		assert.Equal(t, 6, remaining)

		remaining, ok = board.ApplyProgress(o.ID, "carol", 6)
		require.True(t, ok)
		assert.Equal(t, 0, remaining)
		assert.Equal(t, StatusFulfilled, o.Status)
		assert.Empty(t, o.Claimer)
	})

	t.Run("over-delivery clamps to zero", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 3))

		remaining, ok := board.ApplyProgress(o.ID, "carol", 10)
		require.True(t, ok)
		assert.Equal(t, 0, remaining)
		assert.Equal(t, StatusFulfilled, o.Status)
	})

	t.Run("fulfilled orders ignore further progress", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 2))
		board.ApplyProgress(o.ID, "carol", 2)

		remaining, ok := board.ApplyProgress(o.ID, "dave", 5)
		require.True(t, ok)
		assert.Equal(t, 0, remaining)
	})

	t.Run("lost lease rejects the old holder's delivery", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
		require.True(t, board.ClaimOrder(o.ID, "carol", lease))
		clock.Advance(lease + time.Minute)
		require.True(t, board.ClaimOrder(o.ID, "dave", lease))

		// Carol delivers after losing the lease: rejected, nothing counted.
		remaining, applied := board.ApplyProgress(o.ID, "carol", 4)
		assert.False(t, applied)
		assert.Equal(t, 10, remaining)

		got, _ := board.Get(o.ID)
		assert.False(t, got.ClaimedBy("carol", clock.Now()))
		assert.True(t, got.ClaimedBy("dave", clock.Now()))

		remaining, applied = board.ApplyProgress(o.ID, "dave", 4)
		assert.True(t, applied)
		assert.Equal(t, 6, remaining)
	})

	t.Run("unclaimed orders accept progress from anyone", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		board := newTestBoard(clock)
		o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 5))

		remaining, applied := board.ApplyProgress(o.ID, "erin", 2)
		assert.True(t, applied)
		assert.Equal(t, 3, remaining)
	})
}

func TestBlockClaim(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)
	o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
	require.True(t, board.ClaimOrder(o.ID, "carol", 15*time.Minute))

	board.BlockClaim(o.ID, "no viable gear for rock_golem", 5*time.Minute)

	assert.Equal(t, StatusBlocked, o.Status)
	assert.Empty(t, o.Claimer)
	assert.Equal(t, []string{"no viable gear for rock_golem"}, o.BlockReasons)
	assert.Empty(t, board.OpenOrders())
	assert.False(t, board.ClaimOrder(o.ID, "dave", time.Minute))

	clock.Advance(5 * time.Minute)
	open := board.OpenOrders()
	require.Len(t, open, 1)
	assert.Equal(t, StatusOpen, open[0].Status)
	assert.True(t, board.ClaimOrder(o.ID, "dave", time.Minute))
}

func TestBlockClaimFulfilledIsTerminal(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)
	o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 2))
	require.True(t, board.ClaimOrder(o.ID, "carol", 15*time.Minute))

	_, applied := board.ApplyProgress(o.ID, "carol", 2)
	require.True(t, applied)
	require.Equal(t, StatusFulfilled, o.Status)

	// A racing blocker must not resurrect a fulfilled order.
	board.BlockClaim(o.ID, "no viable gear", 5*time.Minute)
	assert.Equal(t, StatusFulfilled, o.Status)
	assert.Empty(t, o.BlockReasons)

	clock.Advance(10 * time.Minute)
	got, ok := board.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, got.Status)
	assert.Empty(t, board.OpenOrders())
}

func TestPendingQuantity(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)

	assert.Equal(t, 0, board.PendingQuantity(SourceGather, "iron_rocks", "iron_ore"))

	o := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
	assert.Equal(t, 10, board.PendingQuantity(SourceGather, "iron_rocks", "iron_ore"))

	// Claimed and blocked orders still count toward the pending total.
	require.True(t, board.ClaimOrder(o.ID, "carol", 15*time.Minute))
	_, applied := board.ApplyProgress(o.ID, "carol", 4)
	require.True(t, applied)
	assert.Equal(t, 6, board.PendingQuantity(SourceGather, "iron_rocks", "iron_ore"))

	board.BlockClaim(o.ID, "resource unreachable", 5*time.Minute)
	assert.Equal(t, 6, board.PendingQuantity(SourceGather, "iron_rocks", "iron_ore"))

	// Other merge keys do not contribute.
	board.CreateOrMergeOrder(Payload{
		RequesterName: "bob", ItemCode: "iron_ore",
		SourceType: SourceFight, SourceCode: "rock_golem", Quantity: 3,
	})
	assert.Equal(t, 6, board.PendingQuantity(SourceGather, "iron_rocks", "iron_ore"))
}

func TestClaimPriority(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)

	// Submit out of priority order, with creation times one minute apart.
	helmet := board.CreateOrMergeOrder(Payload{
		RequesterName: "alice", ItemCode: "iron_helmet",
		SourceType: SourceCraft, SourceCode: "iron_helmet", CraftSkill: "gearcrafting", Quantity: 1,
	})
	clock.Advance(time.Minute)
	oreOld := board.CreateOrMergeOrder(gatherPayload("alice", "iron_ore", 10))
	clock.Advance(time.Minute)
	sword := board.CreateOrMergeOrder(Payload{
		RequesterName: "alice", ItemCode: "iron_sword",
		SourceType: SourceCraft, SourceCode: "iron_sword", CraftSkill: "weaponcrafting", Quantity: 1,
	})
	clock.Advance(time.Minute)
	pickaxe := board.CreateOrMergeOrder(Payload{
		RequesterName: "bob", ItemCode: "iron_pickaxe",
		SourceType: SourceCraft, SourceCode: "iron_pickaxe", CraftSkill: "weaponcrafting", Quantity: 1,
	})
	clock.Advance(time.Minute)
	oreNew := board.CreateOrMergeOrder(Payload{
		RequesterName: "bob", ItemCode: "iron_ore",
		SourceType: SourceFight, SourceCode: "rock_golem", Quantity: 2,
	})

	open := board.OpenOrders()
	require.Len(t, open, 5)

	var ids []string
	for _, o := range open {
		ids = append(ids, o.ID)
	}
	// Tools first, then resources FIFO, then weapons, then the rest.
	assert.Equal(t, []string{pickaxe.ID, oreOld.ID, oreNew.ID, sword.ID, helmet.ID}, ids)
}

func TestBucketFor(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	board := newTestBoard(clock)

	assert.Equal(t, BucketTool, board.BucketFor("iron_pickaxe"))
	assert.Equal(t, BucketResource, board.BucketFor("iron_ore"))
	assert.Equal(t, BucketWeapon, board.BucketFor("iron_sword"))
	assert.Equal(t, BucketGear, board.BucketFor("iron_helmet"))
	assert.Equal(t, BucketResource, board.BucketFor("unknown_code"))
}
