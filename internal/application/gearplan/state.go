package gearplan

import (
	"time"
)

// StateFileVersion is the current persisted schema version. Version 1 files
// carried a single "owned" map; version 2 splits it into available/assigned.
const StateFileVersion = 2

// CharacterState is one character's row in the gear plan.
//
//   - Required: everything the best simulated loadouts for this character's
//     reachable monsters need, carry-bounded, plus tools and potion targets.
//   - Assigned: the share of global stock actually allocated to this
//     character by the scarcity-respecting allocation pass.
//   - Available: assigned plus fallback claims; what the character must
//     hold on to. Legacy name: "owned".
//   - Desired: required minus assigned, the deficit still to produce.
type CharacterState struct {
	Required  map[string]int `json:"required"`
	Assigned  map[string]int `json:"assigned"`
	Available map[string]int `json:"available"`
	Desired   map[string]int `json:"desired"`

	SelectedMonsters []string `json:"selectedMonsters"`
	BestTarget       string   `json:"bestTarget"`

	LevelSnapshot        int    `json:"levelSnapshot"`
	BankRevisionSnapshot uint64 `json:"bankRevisionSnapshot"`
	UpdatedAtMs          int64  `json:"updatedAtMs"`
}

func (s *CharacterState) clone() *CharacterState {
	if s == nil {
		return nil
	}
	out := &CharacterState{
		Required:             copyCounts(s.Required),
		Assigned:             copyCounts(s.Assigned),
		Available:            copyCounts(s.Available),
		Desired:              copyCounts(s.Desired),
		SelectedMonsters:     append([]string{}, s.SelectedMonsters...),
		BestTarget:           s.BestTarget,
		LevelSnapshot:        s.LevelSnapshot,
		BankRevisionSnapshot: s.BankRevisionSnapshot,
		UpdatedAtMs:          s.UpdatedAtMs,
	}
	return out
}

// StateFile is the persisted gear plan for the whole account
type StateFile struct {
	Version              int                        `json:"version"`
	UpdatedAtMs          int64                      `json:"updatedAtMs"`
	BankRevisionSnapshot uint64                     `json:"bankRevisionSnapshot"`
	Levels               map[string]int             `json:"levels"`
	Characters           map[string]*CharacterState `json:"characters"`
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func countsTotal(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}
