package rotation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// Non-gathering, non-crafting rotation skills
const (
	SkillCombat      = "combat"
	SkillNpcTask     = "npc_task"
	SkillItemTask    = "item_task"
	SkillAchievement = "achievement"
)

// rotationGatherSkills are the pure gathering rotations. Alchemy gathers too,
// but rotates as a crafting skill whose plans carry alchemy gather steps.
var rotationGatherSkills = []string{game.SkillMining, game.SkillWoodcutting, game.SkillFishing}

// AllSkills is every skill the rotation can land on
var AllSkills = func() []string {
	out := append([]string{}, rotationGatherSkills...)
	out = append(out, game.CraftingSkills...)
	return append(out, SkillCombat, SkillNpcTask, SkillItemTask, SkillAchievement)
}()

const (
	defaultGatherGoal = 20
	defaultCraftGoal  = 5
	defaultCombatGoal = 10
	defaultRecipeTTL  = 15 * time.Minute

	// Flat effort multiplier for task-count achievements, which have no
	// level of their own
	taskAchievementEffort = 100
)

// AchievementSource supplies the account's incomplete achievements
type AchievementSource interface {
	IncompleteAchievements(ctx context.Context) ([]game.Achievement, error)
}

// TaskNeedRecorder receives item needs that only the task exchange can fill
type TaskNeedRecorder interface {
	RecordNeed(code string, quantity int)
}

// Config is the per-character rotation tuning
type Config struct {
	EnabledSkills      []string
	Weights            map[string]float64
	Goals              map[string]int
	BlacklistedRecipes []string
	AchievementTypes   []string
	RecipeBlockTTL     time.Duration

	// CreateOrders lets setup emit gather/fight orders for deficits it
	// cannot cover itself. Characters without board submission rights
	// simply skip the unservable step.
	CreateOrders bool
}

// Deps are the shared collaborators a rotation consults during setup
type Deps struct {
	Catalog      *game.Catalog
	Optimizer    *gear.Optimizer
	Mirror       *bank.Mirror
	Board        *orders.Board
	Blacklist    *Blacklist
	Achievements AchievementSource
	TaskNeeds    TaskNeedRecorder
	Clock        shared.Clock
	RNG          *rand.Rand
	Log          *zap.SugaredLogger
}

// Rotation is the per-character skill selector. PickNext draws skills in a
// weight-biased order and settles on the first whose setup succeeds; the
// selected skill's working state (resource, production plan, combat target,
// achievement) stays available to the executors until the next rotation.
type Rotation struct {
	name    string
	cfg     Config
	deps    Deps
	blocks  *recipeBlockMap
	blocked map[string]bool

	mu           sync.Mutex
	current      string
	goalProgress int
	goalTarget   int

	gatherResource *game.Resource
	gatherTile     game.MapTile
	craftPlan      *Plan
	combatTarget   *gear.Target
	achievement    *game.Achievement
}

// NewRotation creates a rotation for the named character
func NewRotation(name string, cfg Config, deps Deps) *Rotation {
	if cfg.RecipeBlockTTL <= 0 {
		cfg.RecipeBlockTTL = defaultRecipeTTL
	}
	blocked := make(map[string]bool, len(cfg.BlacklistedRecipes))
	for _, code := range cfg.BlacklistedRecipes {
		blocked[code] = true
	}
	return &Rotation{
		name:    name,
		cfg:     cfg,
		deps:    deps,
		blocks:  newRecipeBlockMap(deps.Clock),
		blocked: blocked,
	}
}

// Current returns the active skill, empty before the first pick
func (r *Rotation) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// GoalProgress returns progress toward the active goal
func (r *Rotation) GoalProgress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.goalProgress
}

// GoalTarget returns the active goal size
func (r *Rotation) GoalTarget() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.goalTarget
}

// GoalDone reports whether the active goal is satisfied
func (r *Rotation) GoalDone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != "" && r.goalProgress >= r.goalTarget
}

// RecordProgress advances the active goal by n units
func (r *Rotation) RecordProgress(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goalProgress += n
}

// GatherTarget returns the resource and tile selected by a gathering setup
func (r *Rotation) GatherTarget() (*game.Resource, game.MapTile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gatherResource, r.gatherTile
}

// CraftPlan returns the production plan selected by a crafting setup
func (r *Rotation) CraftPlan() *Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.craftPlan
}

// CombatTarget returns the monster and loadout selected by a combat setup
func (r *Rotation) CombatTarget() *gear.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.combatTarget
}

// SelectedAchievement returns the achievement selected by an achievement setup
func (r *Rotation) SelectedAchievement() *game.Achievement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.achievement
}

// BlockRecipe suppresses a recipe for the configured TTL. Executors call it
// when a plan step turns out unworkable mid-run.
func (r *Rotation) BlockRecipe(skill, recipe string) {
	r.blocks.Block(skill, recipe, r.cfg.RecipeBlockTTL)
}

// PickNext selects the next skill: a weight-biased shuffle over the enabled
// skills, settling on the first that passes viability setup.
func (r *Rotation) PickNext(ctx context.Context, snap *character.Snapshot) (string, error) {
	return r.pick(ctx, snap, "")
}

// ForceRotate selects a new skill, excluding the current one
func (r *Rotation) ForceRotate(ctx context.Context, snap *character.Snapshot) (string, error) {
	return r.pick(ctx, snap, r.Current())
}

func (r *Rotation) pick(ctx context.Context, snap *character.Snapshot, exclude string) (string, error) {
	enabled := r.cfg.EnabledSkills
	if len(enabled) == 0 {
		enabled = AllSkills
	}
	candidates := make([]string, 0, len(enabled))
	for _, skill := range enabled {
		if skill != exclude {
			candidates = append(candidates, skill)
		}
	}

	for _, skill := range raceShuffle(candidates, r.cfg.Weights, r.deps.RNG) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if r.setup(ctx, snap, skill) {
			r.deps.Log.Infow("rotation selected", "character", r.name, "skill", skill, "goal", r.GoalTarget())
			return skill, nil
		}
	}
	return "", shared.NewDomainError("no viable skill for rotation")
}

func (r *Rotation) setup(ctx context.Context, snap *character.Snapshot, skill string) bool {
	switch {
	case contains(rotationGatherSkills, skill):
		return r.setupGathering(snap, skill)
	case contains(game.CraftingSkills, skill):
		return r.setupCrafting(snap, skill)
	case skill == SkillCombat:
		return r.setupCombat(snap)
	case skill == SkillNpcTask, skill == SkillItemTask:
		r.commit(skill, 1)
		return true
	case skill == SkillAchievement:
		return r.setupAchievement(ctx, snap)
	default:
		r.deps.Log.Warnw("unknown rotation skill", "character", r.name, "skill", skill)
		return false
	}
}

// commit installs the chosen skill and resets goal bookkeeping
func (r *Rotation) commit(skill string, goal int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = skill
	r.goalProgress = 0
	r.goalTarget = goal
}

func (r *Rotation) goalFor(skill string, fallback int) int {
	if goal, ok := r.cfg.Goals[skill]; ok && goal > 0 {
		return goal
	}
	return fallback
}

func (r *Rotation) setupGathering(snap *character.Snapshot, skill string) bool {
	resource := r.deps.Catalog.HighestResourceForSkill(skill, snap.SkillLevel(skill))
	if resource == nil {
		return false
	}
	if r.deps.Blacklist.Unreachable(game.ContentTypeResource, resource.Code) {
		return false
	}
	tile, ok := r.deps.Catalog.Location(game.ContentTypeResource, resource.Code, snap.X, snap.Y)
	if !ok {
		return false
	}

	r.mu.Lock()
	r.gatherResource = resource
	r.gatherTile = tile
	r.mu.Unlock()
	r.commit(skill, r.goalFor(skill, defaultGatherGoal))
	return true
}

func (r *Rotation) setupCombat(snap *character.Snapshot) bool {
	req := gear.Request{
		Snapshot: snap,
		Bank:     r.deps.Mirror.AvailableBankView(r.name),
	}
	target := r.deps.Optimizer.FindBestCombatTarget(req)
	if target == nil {
		return false
	}
	if r.deps.Blacklist.Unreachable(game.ContentTypeMonster, target.Monster.Code) {
		return false
	}
	if _, ok := r.deps.Catalog.Location(game.ContentTypeMonster, target.Monster.Code, snap.X, snap.Y); !ok {
		return false
	}

	r.mu.Lock()
	r.combatTarget = target
	r.mu.Unlock()
	r.commit(SkillCombat, r.goalFor(SkillCombat, defaultCombatGoal))
	return true
}

// craftCandidate is one viable recipe under consideration
type craftCandidate struct {
	plan         *Plan
	availability float64
	bankOnly     bool
}

func (r *Rotation) setupCrafting(snap *character.Snapshot, skill string) bool {
	goal := r.goalFor(skill, defaultCraftGoal)
	var candidates []craftCandidate
	for _, recipe := range r.deps.Catalog.RecipesForSkill(skill, snap.SkillLevel(skill)) {
		if r.blocked[recipe.Code] || r.blocks.Blocked(skill, recipe.Code) {
			continue
		}
		plan, err := ResolvePlan(r.deps.Catalog, recipe, goal)
		if err != nil {
			r.deps.Log.Debugw("recipe plan rejected", "character", r.name, "recipe", recipe.Code, "error", err)
			continue
		}
		viable, availability := r.assessPlan(snap, skill, plan)
		if !viable {
			continue
		}
		candidates = append(candidates, craftCandidate{
			plan:         plan,
			availability: availability,
			bankOnly:     !plan.HasGather(),
		})
	}
	if len(candidates) == 0 {
		return false
	}

	// Bank-only plans finish without a field trip, so they win whenever
	// any exist
	best := pickCraftCandidate(candidates)

	r.mu.Lock()
	r.craftPlan = best.plan
	r.mu.Unlock()
	r.commit(skill, goal)
	return true
}

func pickCraftCandidate(candidates []craftCandidate) craftCandidate {
	anyBankOnly := false
	for _, c := range candidates {
		if c.bankOnly {
			anyBankOnly = true
			break
		}
	}
	best := craftCandidate{}
	found := false
	for _, c := range candidates {
		if anyBankOnly && !c.bankOnly {
			continue
		}
		if !found || betterCraftCandidate(c, best) {
			best = c
			found = true
		}
	}
	return best
}

func betterCraftCandidate(a, b craftCandidate) bool {
	if a.plan.Recipe.Craft.Level != b.plan.Recipe.Craft.Level {
		return a.plan.Recipe.Craft.Level > b.plan.Recipe.Craft.Level
	}
	if a.availability != b.availability {
		return a.availability > b.availability
	}
	return a.plan.Recipe.Code < b.plan.Recipe.Code
}

// assessPlan judges whether every pre-craft step of the plan can be executed
// or already covered by stock, emitting orders for deficits this character
// cannot fill itself. The returned availability is the fraction of needed
// materials already present in inventory plus bank.
func (r *Rotation) assessPlan(snap *character.Snapshot, skill string, plan *Plan) (bool, float64) {
	viable := true
	neededTotal := 0
	haveTotal := 0
	for _, step := range plan.Steps {
		if step.Type == StepCraft {
			continue
		}
		have := snap.ItemCount(step.ItemCode) + r.deps.Mirror.AvailableBankCount(step.ItemCode, r.name)
		neededTotal += step.Quantity
		haveTotal += min(have, step.Quantity)
		deficit := step.Quantity - have
		if deficit <= 0 {
			continue
		}

		switch step.Type {
		case StepGather:
			if !r.assessGatherStep(snap, step, deficit) {
				viable = false
			}
		case StepFight:
			if !r.assessFightStep(snap, step, deficit) {
				r.blocks.Block(skill, plan.Recipe.Code, r.cfg.RecipeBlockTTL)
				viable = false
			}
		case StepBank:
			// Only the bank (or a task exchange) can supply this
			if r.deps.TaskNeeds != nil && r.deps.Catalog.IsTaskReward(step.ItemCode) {
				r.deps.TaskNeeds.RecordNeed(step.ItemCode, deficit)
			}
			viable = false
		}
	}

	availability := 1.0
	if neededTotal > 0 {
		availability = float64(haveTotal) / float64(neededTotal)
	}
	return viable, availability
}

func (r *Rotation) assessGatherStep(snap *character.Snapshot, step Step, deficit int) bool {
	resource, ok := r.deps.Catalog.Resource(step.ResourceCode)
	if !ok || r.deps.Blacklist.Unreachable(game.ContentTypeResource, resource.Code) {
		return false
	}
	if snap.SkillLevel(step.GatherSkill) < resource.Level {
		if r.cfg.CreateOrders {
			r.deps.Board.CreateOrMergeOrder(orders.Payload{
				RequesterName: r.name,
				ItemCode:      step.ItemCode,
				SourceType:    orders.SourceGather,
				SourceCode:    resource.Code,
				GatherSkill:   resource.Skill,
				SourceLevel:   resource.Level,
				Quantity:      deficit,
			})
		}
		return false
	}
	return true
}

func (r *Rotation) assessFightStep(snap *character.Snapshot, step Step, deficit int) bool {
	monster, ok := r.deps.Catalog.Monster(step.MonsterCode)
	if !ok || r.deps.Blacklist.Unreachable(game.ContentTypeMonster, monster.Code) {
		return false
	}
	req := gear.Request{
		Snapshot: snap,
		Bank:     r.deps.Mirror.AvailableBankView(r.name),
	}
	_, result := r.deps.Optimizer.OptimizeForMonster(req, monster)
	if result != nil && result.Win && result.HPLostPercent <= gear.ViabilityHPLostPercent {
		return true
	}
	if r.cfg.CreateOrders {
		r.deps.Board.CreateOrMergeOrder(orders.Payload{
			RequesterName: r.name,
			ItemCode:      step.ItemCode,
			SourceType:    orders.SourceFight,
			SourceCode:    monster.Code,
			SourceLevel:   monster.Level,
			Quantity:      deficit,
		})
	}
	return false
}

func (r *Rotation) setupAchievement(ctx context.Context, snap *character.Snapshot) bool {
	if r.deps.Achievements == nil {
		return false
	}
	achievements, err := r.deps.Achievements.IncompleteAchievements(ctx)
	if err != nil {
		r.deps.Log.Warnw("achievement fetch failed", "character", r.name, "error", err)
		return false
	}

	allowed := make(map[string]bool, len(r.cfg.AchievementTypes))
	for _, t := range r.cfg.AchievementTypes {
		allowed[t] = true
	}

	var best *game.Achievement
	bestEffort := 0.0
	for i := range achievements {
		a := achievements[i]
		if len(allowed) > 0 && !allowed[string(a.Type)] {
			continue
		}
		effort, ok := r.achievementEffort(snap, &a)
		if !ok {
			continue
		}
		if best == nil || effort < bestEffort {
			best = &a
			bestEffort = effort
		}
	}
	if best == nil {
		return false
	}

	r.mu.Lock()
	r.achievement = best
	r.mu.Unlock()
	r.commit(SkillAchievement, best.Remaining())
	return true
}

// achievementEffort scores an achievement by expected work. Lower is easier.
// The boolean is false when the objective cannot be acted on by this
// character right now.
func (r *Rotation) achievementEffort(snap *character.Snapshot, a *game.Achievement) (float64, bool) {
	remaining := float64(a.Remaining())
	if remaining <= 0 {
		return 0, false
	}

	switch a.Type {
	case game.AchievementCombatKill:
		monster, ok := r.deps.Catalog.Monster(a.ObjectiveCode)
		if !ok || !r.monsterActionable(snap, monster) {
			return 0, false
		}
		return float64(monster.Level) * remaining, true

	case game.AchievementCombatDrop:
		monster, ok := r.deps.Catalog.MonsterForDrop(a.ObjectiveCode)
		if !ok || !r.monsterActionable(snap, monster) {
			return 0, false
		}
		rate := dropRate(monster.Drops, a.ObjectiveCode)
		return float64(monster.Level) * remaining * float64(rate), true

	case game.AchievementGathering:
		resource, ok := r.deps.Catalog.ResourceForDrop(a.ObjectiveCode)
		if !ok || r.deps.Blacklist.Unreachable(game.ContentTypeResource, resource.Code) {
			return 0, false
		}
		if snap.SkillLevel(resource.Skill) < resource.Level {
			return 0, false
		}
		rate := dropRate(resource.Drops, a.ObjectiveCode)
		return math.Sqrt(float64(resource.Level)) * remaining * float64(rate), true

	case game.AchievementCrafting:
		item, ok := r.deps.Catalog.Item(a.ObjectiveCode)
		if !ok || !item.IsCraftable() {
			return 0, false
		}
		if snap.SkillLevel(item.Craft.Skill) < item.Craft.Level {
			return 0, false
		}
		return float64(item.Craft.Level) * remaining, true

	case game.AchievementTask:
		return taskAchievementEffort * remaining, true

	default:
		return 0, false
	}
}

func (r *Rotation) monsterActionable(snap *character.Snapshot, monster *game.Monster) bool {
	if monster.Level > snap.Level {
		return false
	}
	if r.deps.Blacklist.Unreachable(game.ContentTypeMonster, monster.Code) {
		return false
	}
	req := gear.Request{
		Snapshot: snap,
		Bank:     r.deps.Mirror.AvailableBankView(r.name),
	}
	_, result := r.deps.Optimizer.OptimizeForMonster(req, monster)
	return result != nil && result.Win && result.HPLostPercent <= gear.ViabilityHPLostPercent
}

// dropRate returns the drop's "one in N" rate, defaulting to 1
func dropRate(drops []game.Drop, code string) int {
	for _, d := range drops {
		if d.Code == code && d.Rate > 0 {
			return d.Rate
		}
	}
	return 1
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
