package game

import (
	"sort"
)

// Catalog is the process-wide, immutable view of the game's static data:
// items, monsters, resources and the world map, plus the reverse indices the
// decision engine needs ("who drops this item?"). Built once at startup,
// read-only afterwards, safe for concurrent use.
type Catalog struct {
	items     map[string]*Item
	monsters  map[string]*Monster
	resources map[string]*Resource
	tiles     []MapTile

	// Reverse indices, materialized once
	dropResource map[string]*Resource
	dropMonster  map[string]*Monster

	taskRewards map[string]bool
}

// NewCatalog builds the catalog and its reverse indices.
// Where several resources or monsters drop the same item, the lowest-level
// source wins the index entry (cheapest to farm).
func NewCatalog(items []Item, monsters []Monster, resources []Resource, tiles []MapTile, taskRewards []string) *Catalog {
	c := &Catalog{
		items:        make(map[string]*Item, len(items)),
		monsters:     make(map[string]*Monster, len(monsters)),
		resources:    make(map[string]*Resource, len(resources)),
		tiles:        tiles,
		dropResource: make(map[string]*Resource),
		dropMonster:  make(map[string]*Monster),
		taskRewards:  make(map[string]bool, len(taskRewards)),
	}

	for i := range items {
		item := items[i]
		c.items[item.Code] = &item
	}
	for i := range monsters {
		monster := monsters[i]
		c.monsters[monster.Code] = &monster
		for _, d := range monster.Drops {
			existing, ok := c.dropMonster[d.Code]
			if !ok || monster.Level < existing.Level {
				c.dropMonster[d.Code] = c.monsters[monster.Code]
			}
		}
	}
	for i := range resources {
		resource := resources[i]
		c.resources[resource.Code] = &resource
		for _, d := range resource.Drops {
			existing, ok := c.dropResource[d.Code]
			if !ok || resource.Level < existing.Level {
				c.dropResource[d.Code] = c.resources[resource.Code]
			}
		}
	}
	for _, code := range taskRewards {
		c.taskRewards[code] = true
	}

	return c
}

// Item looks up an item by code
func (c *Catalog) Item(code string) (*Item, bool) {
	item, ok := c.items[code]
	return item, ok
}

// Monster looks up a monster by code
func (c *Catalog) Monster(code string) (*Monster, bool) {
	monster, ok := c.monsters[code]
	return monster, ok
}

// Resource looks up a resource by code
func (c *Catalog) Resource(code string) (*Resource, bool) {
	resource, ok := c.resources[code]
	return resource, ok
}

// ResourceForDrop returns the cheapest resource that drops the given item
func (c *Catalog) ResourceForDrop(code string) (*Resource, bool) {
	r, ok := c.dropResource[code]
	return r, ok
}

// MonsterForDrop returns the cheapest monster that drops the given item
func (c *Catalog) MonsterForDrop(code string) (*Monster, bool) {
	m, ok := c.dropMonster[code]
	return m, ok
}

// IsTaskReward reports whether the item can come out of a task exchange
func (c *Catalog) IsTaskReward(code string) bool {
	return c.taskRewards[code]
}

// Items returns all items, sorted by code for deterministic iteration
func (c *Catalog) Items() []*Item {
	out := make([]*Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// MonstersUpToLevel returns monsters at or below the given level,
// sorted by level descending then code ascending.
func (c *Catalog) MonstersUpToLevel(level int) []*Monster {
	out := make([]*Monster, 0, len(c.monsters))
	for _, m := range c.monsters {
		if m.Level <= level {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// HighestResourceForSkill returns the highest-level resource for the skill
// that the given skill level can harvest, or nil if none is reachable.
func (c *Catalog) HighestResourceForSkill(skill string, maxLevel int) *Resource {
	var best *Resource
	for _, r := range c.resources {
		if r.Skill != skill || r.Level > maxLevel {
			continue
		}
		if best == nil || r.Level > best.Level || (r.Level == best.Level && r.Code < best.Code) {
			best = r
		}
	}
	return best
}

// RecipesForSkill returns craftable items for the skill up to the given craft
// level, sorted by craft level descending then code ascending.
func (c *Catalog) RecipesForSkill(skill string, maxLevel int) []*Item {
	var out []*Item
	for _, item := range c.items {
		if item.Craft == nil || item.Craft.Skill != skill || item.Craft.Level > maxLevel {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Craft.Level != out[j].Craft.Level {
			return out[i].Craft.Level > out[j].Craft.Level
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// BestToolForSkill returns the highest-level gathering tool whose effect
// matches the skill, up to the given character level. Nil when none exists.
func (c *Catalog) BestToolForSkill(skill string, maxLevel int) *Item {
	var best *Item
	for _, item := range c.items {
		if !item.IsTool() || item.Level > maxLevel {
			continue
		}
		if item.EffectValue(skill) == 0 {
			continue
		}
		if best == nil || item.Level > best.Level || (item.Level == best.Level && item.Code < best.Code) {
			best = item
		}
	}
	return best
}

// Location returns the map tile closest to (fromX, fromY) hosting the given
// content. The second return is false when the content exists nowhere.
func (c *Catalog) Location(contentType, contentCode string, fromX, fromY int) (MapTile, bool) {
	var best MapTile
	bestDist := -1
	for _, t := range c.tiles {
		if t.ContentType != contentType || t.ContentCode != contentCode {
			continue
		}
		dist := abs(t.X-fromX) + abs(t.Y-fromY)
		if bestDist < 0 || dist < bestDist {
			best = t
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
