package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/executors"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

func testContext(snap *character.Snapshot) *executors.CharacterContext {
	if snap == nil {
		snap = &character.Snapshot{Name: "alice", HP: 100, MaxHP: 100}
	}
	return executors.NewCharacterContext(snap.Name, snap)
}

func runScheduler(t *testing.T, s *Scheduler, ctx context.Context) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
		return nil
	}
}

func TestSchedulerPriorityOrder(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	highRuns, lowRuns := 0, 0
	routines := []*Routine{
		{
			Name:     "low",
			Priority: 5,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				lowRuns++
				return false, nil
			},
		},
		{
			Name:     "high",
			Priority: 50,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				highRuns++
				if highRuns == 3 {
					cancel()
				}
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, highRuns)
	assert.Zero(t, lowRuns, "a runnable higher priority must starve the lower one")
}

func TestSchedulerPreemption(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	urgent := false
	var order []string
	routines := []*Routine{
		{
			Name:     "work",
			Priority: 5,
			Loop:     true,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				order = append(order, "work")
				if len(order) == 2 {
					urgent = true
				}
				return true, nil
			},
		},
		{
			Name:     "rescue",
			Priority: 100,
			CanRun:   func(c *executors.CharacterContext) bool { return urgent },
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				order = append(order, "rescue")
				urgent = false
				cancel()
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"work", "work", "rescue"}, order)
}

func TestSchedulerNonPreemptibleLoop(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	urgent := false
	var order []string
	routines := []*Routine{
		{
			Name:           "critical_section",
			Priority:       5,
			Loop:           true,
			CanBePreempted: func(c *executors.CharacterContext) bool { return false },
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				order = append(order, "critical")
				urgent = true
				// Hold the slot for three iterations, then finish.
				return len(order) < 3, nil
			},
		},
		{
			Name:     "rescue",
			Priority: 100,
			CanRun:   func(c *executors.CharacterContext) bool { return urgent },
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				order = append(order, "rescue")
				cancel()
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	// The loop finishes its three iterations before the rescue runs.
	assert.Equal(t, []string{"critical", "critical", "critical", "rescue"}, order)
}

func TestSchedulerErrorBackoff(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	routines := []*Routine{
		{
			Name:     "flaky",
			Priority: 10,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				calls++
				if calls == 1 {
					return false, errors.New("boom")
				}
				cancel()
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	// The failure cost one backoff interval before the retry.
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 5*time.Second)
}

func TestSchedulerServesCooldownFirst(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	snap := &character.Snapshot{
		Name: "alice", HP: 100, MaxHP: 100,
		Cooldown: shared.Cooldown{Expiration: start.Add(12 * time.Second)},
	}
	char := testContext(snap)
	ctx, cancel := context.WithCancel(context.Background())

	var firstAction time.Time
	routines := []*Routine{
		{
			Name:     "act",
			Priority: 10,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				firstAction = clock.Now()
				cancel()
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, firstAction.Before(start.Add(12*time.Second)))
}

func TestSchedulerIdleSleep(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	checks := 0
	routines := []*Routine{
		{
			Name:     "never",
			Priority: 10,
			CanRun: func(c *executors.CharacterContext) bool {
				checks++
				if checks == 4 {
					cancel()
				}
				return false
			},
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				return false, nil
			},
		},
	}

	err := runScheduler(t, New(char, routines, clock, zap.NewNop().Sugar()), ctx)

	assert.ErrorIs(t, err, context.Canceled)
	// Three idle rounds, one second each.
	assert.Equal(t, 3*time.Second, clock.Now().Sub(start))
}

func TestSchedulerReport(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	char := testContext(nil)
	ctx, cancel := context.WithCancel(context.Background())

	routines := []*Routine{
		{
			Name:     "act",
			Priority: 10,
			Execute: func(ctx context.Context, c *executors.CharacterContext) (bool, error) {
				cancel()
				return false, nil
			},
		},
	}
	s := New(char, routines, clock, zap.NewNop().Sugar())

	fresh := s.Report()
	assert.Equal(t, "alice", fresh.Character)
	assert.Equal(t, StatusStarting, fresh.Status)
	assert.False(t, fresh.Stale, "a loop that never reported is not stale")

	require.ErrorIs(t, runScheduler(t, s, ctx), context.Canceled)

	report := s.Report()
	assert.Equal(t, StatusRunning, report.Status)
	assert.Equal(t, "act", report.Routine)
	assert.False(t, report.Stale)

	clock.Advance(StaleAfter + time.Second)
	assert.True(t, s.Report().Stale)
}
