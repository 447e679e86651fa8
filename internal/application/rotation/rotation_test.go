package rotation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

func newTestRotation(t *testing.T, cfg Config) (*Rotation, *orders.Board) {
	t.Helper()
	catalog := planCatalog()
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	log := zap.NewNop().Sugar()
	board := orders.NewBoard(catalog, clock, log)
	return NewRotation("alice", cfg, Deps{
		Catalog:   catalog,
		Optimizer: gear.NewOptimizer(catalog),
		Mirror:    bank.NewMirror(nil, clock, log),
		Board:     board,
		Blacklist: NewBlacklist(),
		Clock:     clock,
		RNG:       rand.New(rand.NewSource(1)),
		Log:       log,
	}), board
}

func rotationSnapshot() *character.Snapshot {
	return &character.Snapshot{
		Name:              "alice",
		Level:             1,
		HP:                60,
		MaxHP:             60,
		SkillLevels:       map[string]int{"mining": 1},
		Equipment:         map[string]string{},
		InventoryMaxItems: 40,
	}
}

func TestAssessGatherStepOrderEmission(t *testing.T) {
	// Mining 1 against a level 10 resource: the character cannot serve the
	// step itself either way; only board submitters may post the deficit.
	step := Step{
		Type: StepGather, ItemCode: "iron_ore", Quantity: 24,
		ResourceCode: "iron_rocks", GatherSkill: "mining",
	}

	t.Run("submitters post the deficit", func(t *testing.T) {
		r, board := newTestRotation(t, Config{CreateOrders: true})
		assert.False(t, r.assessGatherStep(rotationSnapshot(), step, 24))

		open := board.OpenOrders()
		require.Len(t, open, 1)
		assert.Equal(t, orders.SourceGather, open[0].SourceType)
		assert.Equal(t, "iron_rocks", open[0].SourceCode)
		assert.Equal(t, 24, open[0].Quantity)
	})

	t.Run("non-submitters leave the board alone", func(t *testing.T) {
		r, board := newTestRotation(t, Config{})
		assert.False(t, r.assessGatherStep(rotationSnapshot(), step, 24))
		assert.Empty(t, board.OpenOrders())
	})

	t.Run("high enough skill needs no order", func(t *testing.T) {
		r, board := newTestRotation(t, Config{CreateOrders: true})
		snap := rotationSnapshot()
		snap.SkillLevels["mining"] = 10
		assert.True(t, r.assessGatherStep(snap, step, 24))
		assert.Empty(t, board.OpenOrders())
	})
}

func TestAssessFightStepOrderEmission(t *testing.T) {
	// No weapon, no attack: the chicken fight never wins, so the step is
	// unservable and the deficit belongs on the board for submitters only.
	step := Step{Type: StepFight, ItemCode: "feather", Quantity: 2, MonsterCode: "chicken"}

	t.Run("submitters post the deficit", func(t *testing.T) {
		r, board := newTestRotation(t, Config{CreateOrders: true})
		assert.False(t, r.assessFightStep(rotationSnapshot(), step, 2))

		open := board.OpenOrders()
		require.Len(t, open, 1)
		assert.Equal(t, orders.SourceFight, open[0].SourceType)
		assert.Equal(t, "chicken", open[0].SourceCode)
		assert.Equal(t, 2, open[0].Quantity)
	})

	t.Run("non-submitters leave the board alone", func(t *testing.T) {
		r, board := newTestRotation(t, Config{})
		assert.False(t, r.assessFightStep(rotationSnapshot(), step, 2))
		assert.Empty(t, board.OpenOrders())
	})
}
