package game

// AchievementType is the objective category of an account achievement
type AchievementType string

const (
	AchievementCombatKill AchievementType = "combat_kill"
	AchievementGathering  AchievementType = "gathering"
	AchievementCrafting   AchievementType = "crafting"
	AchievementCombatDrop AchievementType = "combat_drop"
	AchievementTask       AchievementType = "task"
)

// Achievement is one account-wide achievement and its progress
type Achievement struct {
	Code          string
	Name          string
	Type          AchievementType
	ObjectiveCode string
	Target        int
	Current       int
}

// Remaining returns how many objective units are still missing
func (a *Achievement) Remaining() int {
	remaining := a.Target - a.Current
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Complete reports whether the achievement is done
func (a *Achievement) Complete() bool {
	return a.Current >= a.Target
}
