package rotation

import (
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// StepType tags one production plan step
type StepType string

const (
	StepGather StepType = "gather"
	StepCraft  StepType = "craft"
	StepFight  StepType = "fight"
	StepBank   StepType = "bank"
)

// Step is one ordered unit of a production plan: obtain Quantity of ItemCode
// by gathering a resource, killing a monster, crafting an intermediate, or
// withdrawing from the bank.
type Step struct {
	Type     StepType
	ItemCode string
	Quantity int

	ResourceCode string
	GatherSkill  string
	MonsterCode  string

	// Craft steps: the recipe being executed and its skill
	RecipeCode string
	CraftSkill string
	CraftLevel int
}

// Plan is an ordered list of steps ending with the final craft
type Plan struct {
	Recipe *game.Item
	Steps  []Step
}

// FinalStep returns the last (top-level craft) step
func (p *Plan) FinalStep() Step {
	return p.Steps[len(p.Steps)-1]
}

// HasGather reports whether the plan contains any gather step
func (p *Plan) HasGather() bool {
	for _, s := range p.Steps {
		if s.Type == StepGather {
			return true
		}
	}
	return false
}

// ResolvePlan expands a recipe's full material chain into ordered steps via
// depth-first traversal. Materials that are themselves craftable recurse;
// materials that drop from resources become gather steps, from monsters
// fight steps, and everything else a bank-only step. An in-progress set
// rejects recipes whose chain refers back to themselves.
func ResolvePlan(catalog *game.Catalog, recipe *game.Item, quantity int) (*Plan, error) {
	if recipe == nil || !recipe.IsCraftable() {
		return nil, shared.NewDomainError("item has no craft recipe")
	}
	plan := &Plan{Recipe: recipe}
	inProgress := map[string]bool{}
	if err := resolveInto(catalog, recipe, quantity, inProgress, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func resolveInto(catalog *game.Catalog, recipe *game.Item, quantity int, inProgress map[string]bool, plan *Plan) error {
	if inProgress[recipe.Code] {
		return shared.NewRecipeCycleError(recipe.Code)
	}
	inProgress[recipe.Code] = true
	defer delete(inProgress, recipe.Code)

	// One craft yields Craft.Quantity units
	yield := recipe.Craft.Quantity
	if yield <= 0 {
		yield = 1
	}
	crafts := (quantity + yield - 1) / yield

	for _, material := range recipe.Craft.Items {
		needed := material.Quantity * crafts
		item, ok := catalog.Item(material.Code)
		if ok && item.IsCraftable() {
			if err := resolveInto(catalog, item, needed, inProgress, plan); err != nil {
				return err
			}
			continue
		}
		if resource, ok := catalog.ResourceForDrop(material.Code); ok {
			plan.Steps = append(plan.Steps, Step{
				Type:         StepGather,
				ItemCode:     material.Code,
				Quantity:     needed,
				ResourceCode: resource.Code,
				GatherSkill:  resource.Skill,
			})
			continue
		}
		if monster, ok := catalog.MonsterForDrop(material.Code); ok {
			plan.Steps = append(plan.Steps, Step{
				Type:        StepFight,
				ItemCode:    material.Code,
				Quantity:    needed,
				MonsterCode: monster.Code,
			})
			continue
		}
		// No known source: only the bank can supply it
		plan.Steps = append(plan.Steps, Step{
			Type:     StepBank,
			ItemCode: material.Code,
			Quantity: needed,
		})
	}

	plan.Steps = append(plan.Steps, Step{
		Type:       StepCraft,
		ItemCode:   recipe.Code,
		Quantity:   quantity,
		RecipeCode: recipe.Code,
		CraftSkill: recipe.Craft.Skill,
		CraftLevel: recipe.Craft.Level,
	})
	return nil
}
