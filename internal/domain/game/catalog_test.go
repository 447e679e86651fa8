package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDropIndices(t *testing.T) {
	resources := []Resource{
		{Code: "iron_rocks", Skill: "mining", Level: 10, Drops: []Drop{{Code: "iron_ore"}}},
		{Code: "deep_iron_rocks", Skill: "mining", Level: 25, Drops: []Drop{{Code: "iron_ore"}, {Code: "diamond"}}},
	}
	monsters := []Monster{
		{Code: "imp", Level: 12, Drops: []Drop{{Code: "demon_horn"}}},
		{Code: "demon", Level: 30, Drops: []Drop{{Code: "demon_horn"}}},
	}
	c := NewCatalog(nil, monsters, resources, nil, nil)

	t.Run("lowest-level source wins", func(t *testing.T) {
		r, ok := c.ResourceForDrop("iron_ore")
		require.True(t, ok)
		assert.Equal(t, "iron_rocks", r.Code)

		m, ok := c.MonsterForDrop("demon_horn")
		require.True(t, ok)
		assert.Equal(t, "imp", m.Code)
	})

	t.Run("single source", func(t *testing.T) {
		r, ok := c.ResourceForDrop("diamond")
		require.True(t, ok)
		assert.Equal(t, "deep_iron_rocks", r.Code)
	})

	t.Run("unknown drop", func(t *testing.T) {
		_, ok := c.ResourceForDrop("moon_dust")
		assert.False(t, ok)
		_, ok = c.MonsterForDrop("moon_dust")
		assert.False(t, ok)
	})
}

func TestMonstersUpToLevel(t *testing.T) {
	monsters := []Monster{
		{Code: "chicken", Level: 1},
		{Code: "wolf", Level: 8},
		{Code: "bear", Level: 8},
		{Code: "demon", Level: 30},
	}
	c := NewCatalog(nil, monsters, nil, nil, nil)

	got := c.MonstersUpToLevel(10)
	var codes []string
	for _, m := range got {
		codes = append(codes, m.Code)
	}
	// Level descending, code ascending within a level.
	assert.Equal(t, []string{"bear", "wolf", "chicken"}, codes)
}

func TestHighestResourceForSkill(t *testing.T) {
	resources := []Resource{
		{Code: "copper_rocks", Skill: "mining", Level: 1},
		{Code: "iron_rocks", Skill: "mining", Level: 10},
		{Code: "gold_rocks", Skill: "mining", Level: 30},
		{Code: "ash_tree", Skill: "woodcutting", Level: 1},
	}
	c := NewCatalog(nil, nil, resources, nil, nil)

	best := c.HighestResourceForSkill("mining", 15)
	require.NotNil(t, best)
	assert.Equal(t, "iron_rocks", best.Code)

	assert.Nil(t, c.HighestResourceForSkill("fishing", 15))
}

func TestRecipesForSkill(t *testing.T) {
	items := []Item{
		{Code: "copper_dagger", Craft: &Craft{Skill: "weaponcrafting", Level: 1}},
		{Code: "iron_sword", Craft: &Craft{Skill: "weaponcrafting", Level: 10}},
		{Code: "iron_dagger", Craft: &Craft{Skill: "weaponcrafting", Level: 10}},
		{Code: "gold_sword", Craft: &Craft{Skill: "weaponcrafting", Level: 30}},
		{Code: "iron_helmet", Craft: &Craft{Skill: "gearcrafting", Level: 10}},
		{Code: "iron_ore"},
	}
	c := NewCatalog(items, nil, nil, nil, nil)

	got := c.RecipesForSkill("weaponcrafting", 15)
	var codes []string
	for _, item := range got {
		codes = append(codes, item.Code)
	}
	assert.Equal(t, []string{"iron_dagger", "iron_sword", "copper_dagger"}, codes)
}

func TestBestToolForSkill(t *testing.T) {
	items := []Item{
		{Code: "copper_pickaxe", Type: ItemTypeWeapon, Subtype: SubtypeTool, Level: 1,
			Effects: []Effect{{Code: "mining", Value: -5}}},
		{Code: "iron_pickaxe", Type: ItemTypeWeapon, Subtype: SubtypeTool, Level: 10,
			Effects: []Effect{{Code: "mining", Value: -10}}},
		{Code: "iron_axe", Type: ItemTypeWeapon, Subtype: SubtypeTool, Level: 10,
			Effects: []Effect{{Code: "woodcutting", Value: -10}}},
		{Code: "iron_sword", Type: ItemTypeWeapon, Level: 10,
			Effects: []Effect{{Code: "attack_fire", Value: 40}}},
	}
	c := NewCatalog(items, nil, nil, nil, nil)

	tool := c.BestToolForSkill("mining", 20)
	require.NotNil(t, tool)
	assert.Equal(t, "iron_pickaxe", tool.Code)

	// Level cap falls back to the lesser tool.
	tool = c.BestToolForSkill("mining", 5)
	require.NotNil(t, tool)
	assert.Equal(t, "copper_pickaxe", tool.Code)

	assert.Nil(t, c.BestToolForSkill("fishing", 20))
}

func TestLocation(t *testing.T) {
	tiles := []MapTile{
		{X: 0, Y: 0, ContentType: ContentTypeBank, ContentCode: "bank"},
		{X: 10, Y: 10, ContentType: ContentTypeBank, ContentCode: "bank"},
		{X: 3, Y: 2, ContentType: ContentTypeResource, ContentCode: "iron_rocks"},
	}
	c := NewCatalog(nil, nil, nil, tiles, nil)

	t.Run("closest tile by manhattan distance", func(t *testing.T) {
		tile, ok := c.Location(ContentTypeBank, "bank", 8, 8)
		require.True(t, ok)
		assert.Equal(t, 10, tile.X)
		assert.Equal(t, 10, tile.Y)

		tile, ok = c.Location(ContentTypeBank, "bank", 1, 1)
		require.True(t, ok)
		assert.Equal(t, 0, tile.X)
	})

	t.Run("missing content", func(t *testing.T) {
		_, ok := c.Location(ContentTypeWorkshop, "weaponcrafting", 0, 0)
		assert.False(t, ok)
	})
}

func TestIsTaskReward(t *testing.T) {
	c := NewCatalog(nil, nil, nil, nil, []string{"lich_crown", "bag_of_gold"})
	assert.True(t, c.IsTaskReward("lich_crown"))
	assert.False(t, c.IsTaskReward("iron_ore"))
}
