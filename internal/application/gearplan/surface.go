package gearplan

import (
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// CharacterGearState returns a copy of the character's full plan row,
// or nil when the character is unknown.
func (p *Planner) CharacterGearState(name string) *CharacterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()
	return p.states[name].clone()
}

// AvailableMap returns what the character must hold on to: assigned items
// plus fallback claims. Legacy synonym: the "owned" map.
func (p *Planner) AvailableMap(name string) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()
	if st, ok := p.states[name]; ok {
		return copyCounts(st.Available)
	}
	return map[string]int{}
}

// OwnedMap is the legacy name for AvailableMap
func (p *Planner) OwnedMap(name string) map[string]int {
	return p.AvailableMap(name)
}

// AssignedMap returns the character's allocated share of global stock
func (p *Planner) AssignedMap(name string) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()
	if st, ok := p.states[name]; ok {
		return copyCounts(st.Assigned)
	}
	return map[string]int{}
}

// DesiredMap returns the character's remaining deficit
func (p *Planner) DesiredMap(name string) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()
	if st, ok := p.states[name]; ok {
		return copyCounts(st.Desired)
	}
	return map[string]int{}
}

// KeepByCodeForInventory says how many units of each code to keep on person
// during a deposit. Equipped copies already satisfy part of the plan, so they
// subtract from the kept inventory count.
func (p *Planner) KeepByCodeForInventory(snap *character.Snapshot) map[string]int {
	available := p.AvailableMap(snap.Name)
	keep := make(map[string]int)
	for code, qty := range available {
		remaining := qty - snap.EquippedCount(code)
		if remaining > 0 {
			keep[code] = remaining
		}
	}
	return keep
}

// DeficitRequests returns withdrawal requests for codes where the character
// holds fewer copies (carried + equipped) than the plan says it must.
func (p *Planner) DeficitRequests(snap *character.Snapshot) []game.ItemQuantity {
	available := p.AvailableMap(snap.Name)
	var out []game.ItemQuantity
	for _, code := range sortedCodes(available) {
		held := snap.ItemCount(code) + snap.EquippedCount(code)
		if deficit := available[code] - held; deficit > 0 {
			out = append(out, game.ItemQuantity{Code: code, Quantity: deficit})
		}
	}
	return out
}

// ClaimedTotal returns the account-wide claim on a code (assigned plus
// fallback claims across every character). Recyclers and traders consult it
// before touching scarce items.
func (p *Planner) ClaimedTotal(code string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked()
	total := 0
	for _, st := range p.states {
		total += st.Available[code]
	}
	return total
}

// PublishDesiredOrders tops the board up to this character's current deficit:
// for every desired item with a craft recipe that is not a gathering tool, it
// submits the deficit minus what unfulfilled orders already promise, so
// calling it every sweep never inflates standing orders. Tools go through the
// separate tool reserve path, never the order board.
func (p *Planner) PublishDesiredOrders(name string) int {
	desired := p.DesiredMap(name)
	published := 0
	for _, code := range sortedCodes(desired) {
		item, ok := p.catalog.Item(code)
		if !ok || !item.IsCraftable() || item.IsTool() {
			continue
		}
		quantity := desired[code] - p.board.PendingQuantity(orders.SourceCraft, code, code)
		if quantity <= 0 {
			continue
		}
		p.board.CreateOrMergeOrder(orders.Payload{
			RequesterName: name,
			RecipeCode:    code,
			ItemCode:      code,
			SourceType:    orders.SourceCraft,
			SourceCode:    code,
			CraftSkill:    item.Craft.Skill,
			SourceLevel:   item.Craft.Level,
			Quantity:      quantity,
		})
		published++
	}
	return published
}
