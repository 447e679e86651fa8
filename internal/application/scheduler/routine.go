package scheduler

import (
	"context"

	"github.com/adelacruz/artifacts-go/internal/application/executors"
)

// Routine is one schedulable unit of character behavior. Higher priority
// preempts lower; a Loop routine that returns true keeps the slot until it
// is done or something more important becomes runnable.
type Routine struct {
	Name     string
	Priority int
	Loop     bool

	// CanRun gates selection; nil means always runnable
	CanRun func(c *executors.CharacterContext) bool
	// CanBePreempted guards a running loop; nil means always preemptible
	CanBePreempted func(c *executors.CharacterContext) bool
	// Execute performs at most one server-advancing action and reports
	// whether it wants to be called again
	Execute func(ctx context.Context, c *executors.CharacterContext) (bool, error)
}

func (r *Routine) canRun(c *executors.CharacterContext) bool {
	return r.CanRun == nil || r.CanRun(c)
}

func (r *Routine) preemptible(c *executors.CharacterContext) bool {
	return r.CanBePreempted == nil || r.CanBePreempted(c)
}
