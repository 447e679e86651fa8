package gearplan

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// ReservedInventorySlots is how many carry slots the plan always leaves free
// for loot and materials. Carry budget = capacity − ReservedInventorySlots.
const ReservedInventorySlots = 10

// SnapshotProvider exposes read-only character snapshots in config order.
// The first character in the returned order wins scarce allocations.
type SnapshotProvider interface {
	OrderedNames() []string
	Snapshot(name string) *character.Snapshot
}

// PotionPolicy is the per-character potion planning input
type PotionPolicy struct {
	Enabled        bool
	TargetQuantity int
}

// Store persists the gear plan. Implementations debounce and write atomically.
type Store interface {
	Load() (*StateFile, error)
	Enqueue(state *StateFile)
	Flush() error
}

// Planner owns the account-wide gear plan: which codes each character should
// own, which it has actually been allocated, and which it still needs.
// Recomputation triggers on bank revision or character level changes.
type Planner struct {
	mu sync.Mutex

	catalog   *game.Catalog
	optimizer *gear.Optimizer
	mirror    *bank.Mirror
	board     *orders.Board
	snapshots SnapshotProvider
	store     Store
	clock     shared.Clock
	log       *zap.SugaredLogger

	potions map[string]PotionPolicy

	states       map[string]*CharacterState
	levels       map[string]int
	bankRevision uint64
	loaded       bool
}

// NewPlanner builds the planner. The persisted state (if any) seeds the first
// in-memory plan so restarts do not forget fallback claims mid-upgrade.
func NewPlanner(
	catalog *game.Catalog,
	optimizer *gear.Optimizer,
	mirror *bank.Mirror,
	board *orders.Board,
	snapshots SnapshotProvider,
	store Store,
	potions map[string]PotionPolicy,
	clock shared.Clock,
	log *zap.SugaredLogger,
) *Planner {
	return &Planner{
		catalog:   catalog,
		optimizer: optimizer,
		mirror:    mirror,
		board:     board,
		snapshots: snapshots,
		store:     store,
		clock:     clock,
		log:       log,
		potions:   potions,
		states:    make(map[string]*CharacterState),
		levels:    make(map[string]int),
	}
}

// loadLocked seeds state from the store once
func (p *Planner) loadLocked() {
	if p.loaded {
		return
	}
	p.loaded = true
	file, err := p.store.Load()
	if err != nil {
		p.log.Warnw("gear state load failed, starting fresh", "error", err)
		return
	}
	if file == nil {
		return
	}
	p.bankRevision = file.BankRevisionSnapshot
	for name, level := range file.Levels {
		p.levels[name] = level
	}
	for name, st := range file.Characters {
		p.states[name] = st
	}
}

// Refresh recomputes the gear plan when the bank revision or any character
// level changed since the last run, or unconditionally when force is set.
// Serialized: concurrent callers see the same resulting plan.
func (p *Planner) Refresh(ctx context.Context, force bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()

	if err := ctx.Err(); err != nil {
		return err
	}

	revision := p.mirror.BankRevision()
	names := p.snapshots.OrderedNames()

	changed := force || revision != p.bankRevision
	for _, name := range names {
		snap := p.snapshots.Snapshot(name)
		if snap == nil {
			continue
		}
		if p.levels[name] != snap.Level {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	p.log.Infow("refreshing gear plan", "bankRevision", revision, "force", force)

	// Pass 1: per-character carry-bounded requirement sets
	type planRow struct {
		name     string
		snapshot *character.Snapshot
		state    *CharacterState
	}
	var rows []planRow
	for _, name := range names {
		snap := p.snapshots.Snapshot(name)
		if snap == nil {
			continue
		}
		state := p.computeRequirements(snap)
		state.LevelSnapshot = snap.Level
		state.BankRevisionSnapshot = revision
		state.UpdatedAtMs = toMillis(p.clock.Now())
		rows = append(rows, planRow{name: name, snapshot: snap, state: state})
	}

	// Pass 2: scarcity-respecting allocation in config order
	availability := p.mirror.GlobalView()
	for _, row := range rows {
		row.state.Assigned = make(map[string]int)
		row.state.Desired = make(map[string]int)
		for _, code := range sortedCodes(row.state.Required) {
			need := row.state.Required[code]
			got := min(need, availability[code])
			if got > 0 {
				row.state.Assigned[code] = got
				availability[code] -= got
			}
			if deficit := need - got; deficit > 0 {
				row.state.Desired[code] = deficit
			}
		}
	}

	// Pass 3: fallback claims on inferior gear awaiting its upgrade.
	// fallbackAvail bounds claims so assigned + claims never exceed the
	// global count for a code; first character in config order wins.
	fallbackAvail := p.mirror.GlobalView()
	for code := range fallbackAvail {
		for _, row := range rows {
			fallbackAvail[code] -= row.state.Assigned[code]
		}
	}
	for _, row := range rows {
		row.state.Available = copyCounts(row.state.Assigned)
		p.claimFallbacks(row.snapshot, row.state, fallbackAvail)
	}

	// Commit and persist
	p.bankRevision = revision
	for _, row := range rows {
		p.states[row.name] = row.state
		p.levels[row.name] = row.snapshot.Level
	}
	p.store.Enqueue(p.fileLocked())
	return nil
}

// computeRequirements derives one character's gear needs: candidate
// monsters in planning mode, the elementwise-max required set, and the
// carry-bounded selection.
func (p *Planner) computeRequirements(snap *character.Snapshot) *CharacterState {
	req := gear.Request{
		Snapshot: snap,
		Bank:     p.mirror.AvailableBankView(snap.Name),
		Planning: true,
	}
	candidates := p.optimizer.CandidateTargets(req)

	state := &CharacterState{
		Required:  make(map[string]int),
		Assigned:  make(map[string]int),
		Available: make(map[string]int),
		Desired:   make(map[string]int),
	}
	if len(candidates) == 0 {
		p.mergeTools(snap, state.Required)
		return state
	}

	// Best target: level desc, turns asc, remaining HP desc
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Monster.Level != b.Monster.Level {
			return a.Monster.Level > b.Monster.Level
		}
		if a.Result.Turns != b.Result.Turns {
			return a.Result.Turns < b.Result.Turns
		}
		return a.Result.RemainingHP > b.Result.RemainingHP
	})
	best := candidates[0]
	state.BestTarget = best.Monster.Code

	budget := snap.InventoryMaxItems - ReservedInventorySlots
	if budget < 0 {
		budget = 0
	}

	selected := trimToBudget(best.Loadout, budget)
	covered := map[string]bool{best.Monster.Code: true}
	state.SelectedMonsters = []string{best.Monster.Code}

	// Greedy coverage of further monsters within the budget
	for {
		var pick *gear.Target
		pickNewly := 0
		pickExtra := 0
		for _, cand := range candidates {
			if covered[cand.Monster.Code] {
				continue
			}
			merged := mergeMax(selected, cand.Loadout.Counts())
			if countsTotal(merged) > budget {
				continue
			}
			newly := 0
			for _, other := range candidates {
				if covered[other.Monster.Code] {
					continue
				}
				if coveredBy(other.Loadout.Counts(), merged) {
					newly++
				}
			}
			extra := countsTotal(merged) - countsTotal(selected)
			if pick == nil ||
				newly > pickNewly ||
				(newly == pickNewly && cand.Monster.Level > pick.Monster.Level) ||
				(newly == pickNewly && cand.Monster.Level == pick.Monster.Level && extra < pickExtra) {
				pick = cand
				pickNewly = newly
				pickExtra = extra
			}
		}
		if pick == nil || pickNewly == 0 {
			break
		}
		selected = mergeMax(selected, pick.Loadout.Counts())
		for _, other := range candidates {
			if !covered[other.Monster.Code] && coveredBy(other.Loadout.Counts(), selected) {
				covered[other.Monster.Code] = true
				state.SelectedMonsters = append(state.SelectedMonsters, other.Monster.Code)
			}
		}
	}

	// Potion targets take whatever budget remains, highest target first
	p.mergePotions(snap, selected, budget)

	// Tools always merge in last; over budget logs a warning but keeps them
	p.mergeTools(snap, selected)
	if countsTotal(selected) > budget {
		p.log.Warnw("gear plan exceeds carry budget after tools",
			"character", snap.Name, "total", countsTotal(selected), "budget", budget)
	}

	state.Required = selected
	return state
}

// trimToBudget drops loadout slots in reverse carry priority until the
// remaining codes fit the budget.
func trimToBudget(loadout gear.Loadout, budget int) map[string]int {
	kept := make(map[string]int)
	total := 0
	for _, slot := range character.CarryTrimPriority {
		code := loadout.Get(slot)
		if code == "" {
			continue
		}
		if total+1 > budget {
			continue
		}
		kept[code]++
		total++
	}
	return kept
}

func (p *Planner) mergePotions(snap *character.Snapshot, selected map[string]int, budget int) {
	policy, ok := p.potions[snap.Name]
	if !ok || !policy.Enabled || policy.TargetQuantity <= 0 {
		return
	}
	type slotTarget struct {
		code   string
		target int
	}
	var targets []slotTarget
	for _, slot := range []string{character.SlotUtility1, character.SlotUtility2} {
		code := snap.EquipmentCode(slot)
		if code == "" {
			continue
		}
		targets = append(targets, slotTarget{code: code, target: policy.TargetQuantity})
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].target > targets[j].target })
	for _, t := range targets {
		remaining := budget - countsTotal(selected)
		if remaining <= 0 {
			return
		}
		selected[t.code] += min(t.target, remaining)
	}
}

func (p *Planner) mergeTools(snap *character.Snapshot, selected map[string]int) {
	for _, skill := range game.GatheringSkills {
		tool := p.catalog.BestToolForSkill(skill, snap.Level)
		if tool == nil {
			continue
		}
		if selected[tool.Code] < 1 {
			selected[tool.Code] = 1
		}
	}
}

// claimFallbacks marks currently carried inferior gear of a desired category
// so deposit routines keep it on the character until the upgrade exists.
func (p *Planner) claimFallbacks(snap *character.Snapshot, state *CharacterState, fallbackAvail map[string]int) {
	for _, desiredCode := range sortedCodes(state.Desired) {
		desiredItem, ok := p.catalog.Item(desiredCode)
		if !ok {
			continue
		}
		slot := character.SlotForItemType(desiredItem.Type)
		if slot == "" || desiredItem.IsTool() {
			continue
		}

		fallback := p.findCarriedOfCategory(snap, desiredItem.Type, state)
		if fallback == "" {
			continue
		}
		if fallbackAvail[fallback] <= 0 {
			continue
		}
		fallbackAvail[fallback]--
		state.Available[fallback]++
	}
}

// findCarriedOfCategory returns a non-ideal, non-tool item of the given type
// the character currently wears or carries and has not already claimed.
func (p *Planner) findCarriedOfCategory(snap *character.Snapshot, itemType string, state *CharacterState) string {
	consider := func(code string) string {
		if code == "" {
			return ""
		}
		item, ok := p.catalog.Item(code)
		if !ok || item.Type != itemType || item.IsTool() {
			return ""
		}
		if state.Required[code] > 0 {
			return "" // the carried item is itself part of the plan
		}
		held := snap.EquippedCount(code) + snap.ItemCount(code)
		if state.Available[code] >= held {
			return ""
		}
		return code
	}
	for _, slot := range character.OptimizedSlots {
		if code := consider(snap.EquipmentCode(slot)); code != "" {
			return code
		}
	}
	for _, it := range snap.InventoryItems() {
		if code := consider(it.Code); code != "" {
			return code
		}
	}
	return ""
}

func (p *Planner) fileLocked() *StateFile {
	file := &StateFile{
		Version:              StateFileVersion,
		UpdatedAtMs:          toMillis(p.clock.Now()),
		BankRevisionSnapshot: p.bankRevision,
		Levels:               make(map[string]int, len(p.levels)),
		Characters:           make(map[string]*CharacterState, len(p.states)),
	}
	for name, level := range p.levels {
		file.Levels[name] = level
	}
	for name, st := range p.states {
		file.Characters[name] = st.clone()
	}
	return file
}

// Flush forces a synchronous persist, used at shutdown
func (p *Planner) Flush() error {
	p.mu.Lock()
	p.store.Enqueue(p.fileLocked())
	p.mu.Unlock()
	return p.store.Flush()
}

func sortedCodes(m map[string]int) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func mergeMax(a, b map[string]int) map[string]int {
	out := copyCounts(a)
	for code, qty := range b {
		if qty > out[code] {
			out[code] = qty
		}
	}
	return out
}

func coveredBy(needs, have map[string]int) bool {
	for code, qty := range needs {
		if have[code] < qty {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
