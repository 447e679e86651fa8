package game

// Gathering skills recognized by the rotation and the tool planner
const (
	SkillMining      = "mining"
	SkillWoodcutting = "woodcutting"
	SkillFishing     = "fishing"
	SkillAlchemy     = "alchemy"

	SkillCooking         = "cooking"
	SkillWeaponcrafting  = "weaponcrafting"
	SkillGearcrafting    = "gearcrafting"
	SkillJewelrycrafting = "jewelrycrafting"
)

// GatheringSkills lists the skills that harvest world resources.
// Alchemy both gathers (herbs) and crafts (potions).
var GatheringSkills = []string{SkillMining, SkillWoodcutting, SkillFishing, SkillAlchemy}

// CraftingSkills lists the skills with craft recipes
var CraftingSkills = []string{SkillCooking, SkillAlchemy, SkillWeaponcrafting, SkillGearcrafting, SkillJewelrycrafting}

// Resource is an immutable catalog entry for a harvestable world node.
type Resource struct {
	Code  string
	Name  string
	Skill string
	Level int
	Drops []Drop
}

// DropsItem reports whether the resource can drop the given item code
func (r *Resource) DropsItem(code string) bool {
	for _, d := range r.Drops {
		if d.Code == code {
			return true
		}
	}
	return false
}
