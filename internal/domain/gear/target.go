package gear

import (
	"github.com/adelacruz/artifacts-go/internal/domain/combat"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// Target is a monster the character can beat, with the loadout that beats it
type Target struct {
	Monster *game.Monster
	Loadout Loadout
	Result  *combat.Result
}

// Viable reports whether the predicted fight is worth taking
func (t *Target) Viable() bool {
	return t != nil && t.Result != nil && t.Result.Win &&
		t.Result.HPLostPercent <= ViabilityHPLostPercent
}

// FindBestCombatTarget enumerates monsters at or below the character's level,
// optimizes against each, and returns the strongest one whose predicted fight
// is a viable win. Ties on level break by fewer turns, then higher remaining
// HP. Returns nil when nothing beatable exists.
func (o *Optimizer) FindBestCombatTarget(req Request) *Target {
	var best *Target
	for _, monster := range o.catalog.MonstersUpToLevel(req.Snapshot.Level) {
		loadout, result := o.OptimizeForMonster(req, monster)
		if result == nil || !result.Win || result.HPLostPercent > ViabilityHPLostPercent {
			continue
		}
		candidate := &Target{Monster: monster, Loadout: loadout, Result: result}
		if best == nil || betterTarget(candidate, best) {
			best = candidate
		}
	}
	return best
}

// CandidateTargets returns every viable monster with its loadout, for the
// gear requirements planner. Order follows MonstersUpToLevel (level
// descending, code ascending).
func (o *Optimizer) CandidateTargets(req Request) []*Target {
	var out []*Target
	for _, monster := range o.catalog.MonstersUpToLevel(req.Snapshot.Level) {
		loadout, result := o.OptimizeForMonster(req, monster)
		if result == nil || !result.Win || result.HPLostPercent > ViabilityHPLostPercent {
			continue
		}
		out = append(out, &Target{Monster: monster, Loadout: loadout, Result: result})
	}
	return out
}

func betterTarget(a, b *Target) bool {
	if a.Monster.Level != b.Monster.Level {
		return a.Monster.Level > b.Monster.Level
	}
	if a.Result.Turns != b.Result.Turns {
		return a.Result.Turns < b.Result.Turns
	}
	return a.Result.RemainingHP > b.Result.RemainingHP
}
