package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/executors"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// Character lifecycle status as surfaced to operators
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusError    Status = "error"
)

// Phase of the currently selected routine
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseError   Phase = "error"
)

const (
	idleSleep    = time.Second
	errorBackoff = 5 * time.Second

	// StaleAfter is how long past its cooldown a character may go without
	// an update before operators should worry
	StaleAfter = 120 * time.Second
)

// Report is a point-in-time view of one character loop for the ops surface
type Report struct {
	Character string
	Status    Status
	Phase     Phase
	Routine   string
	LatestLog string
	UpdatedAt time.Time
	Stale     bool
}

// Scheduler runs one character: evaluate routines by priority, execute the
// winner, honor cooldowns between actions. One goroutine per scheduler.
type Scheduler struct {
	char     *executors.CharacterContext
	routines []*Routine
	clock    shared.Clock
	log      *zap.SugaredLogger

	mu        sync.Mutex
	status    Status
	phase     Phase
	routine   string
	latestLog string
	updatedAt time.Time
}

// New creates a scheduler over the given routines, sorted by priority
// descending.
func New(char *executors.CharacterContext, routines []*Routine, clock shared.Clock, log *zap.SugaredLogger) *Scheduler {
	sorted := make([]*Routine, len(routines))
	copy(sorted, routines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	return &Scheduler{
		char:     char,
		routines: sorted,
		clock:    clock,
		log:      log,
		status:   StatusStarting,
		phase:    PhaseIdle,
	}
}

func (s *Scheduler) report(status Status, phase Phase, routine, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status != "" {
		s.status = status
	}
	if phase != "" {
		s.phase = phase
	}
	if routine != "" {
		s.routine = routine
	}
	if line != "" {
		s.latestLog = line
	}
	s.updatedAt = s.clock.Now()
}

// Report returns the current operator view. Staleness is measured from the
// last update plus whatever cooldown the character is still serving.
func (s *Scheduler) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	deadline := s.updatedAt.Add(s.char.Snapshot().Cooldown.Remaining(s.updatedAt)).Add(StaleAfter)
	return Report{
		Character: s.char.Name,
		Status:    s.status,
		Phase:     s.phase,
		Routine:   s.routine,
		LatestLog: s.latestLog,
		UpdatedAt: s.updatedAt,
		Stale:     !s.updatedAt.IsZero() && now.After(deadline),
	}
}

// Run drives the character until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	s.report(StatusStarting, PhaseIdle, "", "control loop starting")

	var active *Routine
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Serve any outstanding cooldown before deciding anything
		if cd := s.char.Snapshot().Cooldown; cd.Active(s.clock.Now()) {
			if err := cd.Wait(ctx, s.clock); err != nil {
				return err
			}
		}

		chosen := s.pick(active)
		if chosen == nil {
			s.report(StatusRunning, PhaseIdle, "", "")
			if err := s.clock.SleepCtx(ctx, idleSleep); err != nil {
				return err
			}
			continue
		}

		s.report(StatusRunning, PhaseRunning, chosen.Name, "running "+chosen.Name)
		again, err := chosen.Execute(ctx, s.char)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Errorw("routine failed", "character", s.char.Name, "routine", chosen.Name, "error", err)
			s.report(StatusError, PhaseError, chosen.Name, err.Error())
			active = nil
			if err := s.clock.SleepCtx(ctx, errorBackoff); err != nil {
				return err
			}
			s.report(StatusRunning, PhaseIdle, "", "recovered after backoff")
			continue
		}

		if chosen.Loop && again {
			active = chosen
		} else {
			active = nil
		}
	}
}

// pick selects the highest-priority runnable routine, letting a
// non-preemptible active loop keep its slot.
func (s *Scheduler) pick(active *Routine) *Routine {
	var best *Routine
	for _, r := range s.routines {
		if r.canRun(s.char) {
			best = r
			break
		}
	}
	if active == nil {
		return best
	}
	if best != nil && best.Priority > active.Priority && active.preemptible(s.char) {
		return best
	}
	if active.canRun(s.char) {
		return active
	}
	return best
}
