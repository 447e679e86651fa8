package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// CatalogSnapshot is the full static content of the game in domain form
type CatalogSnapshot struct {
	Items       []game.Item
	Monsters    []game.Monster
	Resources   []game.Resource
	Tiles       []game.MapTile
	TaskRewards []string
}

// GormCatalogRepository caches the game's static content in SQLite so a
// restart does not refetch several hundred pages from the API
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// SyncedAt returns when the cached catalog was written. Returns the zero
// time when the cache is empty.
func (r *GormCatalogRepository) SyncedAt(ctx context.Context) (time.Time, error) {
	var model CatalogSyncModel
	result := r.db.WithContext(ctx).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read catalog sync marker: %w", result.Error)
	}
	return model.SyncedAt, nil
}

// Save replaces the cached catalog in one transaction
func (r *GormCatalogRepository) Save(ctx context.Context, snapshot *CatalogSnapshot, syncedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&ItemModel{}, &MonsterModel{}, &ResourceModel{}, &MapTileModel{}, &TaskRewardModel{}, &CatalogSyncModel{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear catalog table: %w", err)
			}
		}

		for _, item := range snapshot.Items {
			model, err := itemToModel(&item)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to store item %s: %w", item.Code, err)
			}
		}
		for _, monster := range snapshot.Monsters {
			model, err := monsterToModel(&monster)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to store monster %s: %w", monster.Code, err)
			}
		}
		for _, resource := range snapshot.Resources {
			model, err := resourceToModel(&resource)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to store resource %s: %w", resource.Code, err)
			}
		}
		for _, tile := range snapshot.Tiles {
			model := &MapTileModel{X: tile.X, Y: tile.Y, Name: tile.Name, ContentType: tile.ContentType, ContentCode: tile.ContentCode}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to store map tile (%d,%d): %w", tile.X, tile.Y, err)
			}
		}
		for _, code := range snapshot.TaskRewards {
			if err := tx.Create(&TaskRewardModel{Code: code}).Error; err != nil {
				return fmt.Errorf("failed to store task reward %s: %w", code, err)
			}
		}

		return tx.Create(&CatalogSyncModel{ID: 1, SyncedAt: syncedAt}).Error
	})
}

// Load reads the full cached catalog. Returns an error when the cache is
// empty; callers should check SyncedAt first.
func (r *GormCatalogRepository) Load(ctx context.Context) (*CatalogSnapshot, error) {
	snapshot := &CatalogSnapshot{}

	var itemModels []ItemModel
	if err := r.db.WithContext(ctx).Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	for _, model := range itemModels {
		item, err := modelToItem(&model)
		if err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", model.Code, err)
		}
		snapshot.Items = append(snapshot.Items, *item)
	}

	var monsterModels []MonsterModel
	if err := r.db.WithContext(ctx).Find(&monsterModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load monsters: %w", err)
	}
	for _, model := range monsterModels {
		monster, err := modelToMonster(&model)
		if err != nil {
			return nil, fmt.Errorf("failed to decode monster %s: %w", model.Code, err)
		}
		snapshot.Monsters = append(snapshot.Monsters, *monster)
	}

	var resourceModels []ResourceModel
	if err := r.db.WithContext(ctx).Find(&resourceModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	for _, model := range resourceModels {
		resource, err := modelToResource(&model)
		if err != nil {
			return nil, fmt.Errorf("failed to decode resource %s: %w", model.Code, err)
		}
		snapshot.Resources = append(snapshot.Resources, *resource)
	}

	var tileModels []MapTileModel
	if err := r.db.WithContext(ctx).Find(&tileModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load map tiles: %w", err)
	}
	for _, model := range tileModels {
		snapshot.Tiles = append(snapshot.Tiles, game.MapTile{
			X: model.X, Y: model.Y, Name: model.Name,
			ContentType: model.ContentType, ContentCode: model.ContentCode,
		})
	}

	var rewardModels []TaskRewardModel
	if err := r.db.WithContext(ctx).Find(&rewardModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load task rewards: %w", err)
	}
	for _, model := range rewardModels {
		snapshot.TaskRewards = append(snapshot.TaskRewards, model.Code)
	}

	return snapshot, nil
}

func itemToModel(item *game.Item) (*ItemModel, error) {
	effects, err := json.Marshal(item.Effects)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal effects for %s: %w", item.Code, err)
	}
	craft := ""
	if item.Craft != nil {
		data, err := json.Marshal(item.Craft)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal craft for %s: %w", item.Code, err)
		}
		craft = string(data)
	}
	return &ItemModel{
		Code:    item.Code,
		Name:    item.Name,
		Type:    item.Type,
		Subtype: item.Subtype,
		Level:   item.Level,
		Effects: string(effects),
		Craft:   craft,
	}, nil
}

func modelToItem(model *ItemModel) (*game.Item, error) {
	item := &game.Item{
		Code:    model.Code,
		Name:    model.Name,
		Type:    model.Type,
		Subtype: model.Subtype,
		Level:   model.Level,
	}
	if model.Effects != "" {
		if err := json.Unmarshal([]byte(model.Effects), &item.Effects); err != nil {
			return nil, err
		}
	}
	if model.Craft != "" {
		item.Craft = &game.Craft{}
		if err := json.Unmarshal([]byte(model.Craft), item.Craft); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// monsterElements is the JSON shape for the per-element attack and
// resistance columns
type monsterElements struct {
	Fire  int `json:"fire"`
	Earth int `json:"earth"`
	Water int `json:"water"`
	Air   int `json:"air"`
}

func monsterToModel(monster *game.Monster) (*MonsterModel, error) {
	attacks, err := json.Marshal(monsterElements{
		Fire: monster.AttackFire, Earth: monster.AttackEarth,
		Water: monster.AttackWater, Air: monster.AttackAir,
	})
	if err != nil {
		return nil, err
	}
	resists, err := json.Marshal(monsterElements{
		Fire: monster.ResFire, Earth: monster.ResEarth,
		Water: monster.ResWater, Air: monster.ResAir,
	})
	if err != nil {
		return nil, err
	}
	effects, err := json.Marshal(monster.Effects)
	if err != nil {
		return nil, err
	}
	drops, err := json.Marshal(monster.Drops)
	if err != nil {
		return nil, err
	}
	return &MonsterModel{
		Code:       monster.Code,
		Name:       monster.Name,
		Type:       monster.Type,
		Level:      monster.Level,
		HP:         monster.HP,
		Initiative: monster.Initiative,
		CritChance: monster.CritChance,
		Attacks:    string(attacks),
		Resists:    string(resists),
		Effects:    string(effects),
		Drops:      string(drops),
	}, nil
}

func modelToMonster(model *MonsterModel) (*game.Monster, error) {
	monster := &game.Monster{
		Code:       model.Code,
		Name:       model.Name,
		Type:       model.Type,
		Level:      model.Level,
		HP:         model.HP,
		Initiative: model.Initiative,
		CritChance: model.CritChance,
	}
	if model.Attacks != "" {
		var attacks monsterElements
		if err := json.Unmarshal([]byte(model.Attacks), &attacks); err != nil {
			return nil, err
		}
		monster.AttackFire, monster.AttackEarth = attacks.Fire, attacks.Earth
		monster.AttackWater, monster.AttackAir = attacks.Water, attacks.Air
	}
	if model.Resists != "" {
		var resists monsterElements
		if err := json.Unmarshal([]byte(model.Resists), &resists); err != nil {
			return nil, err
		}
		monster.ResFire, monster.ResEarth = resists.Fire, resists.Earth
		monster.ResWater, monster.ResAir = resists.Water, resists.Air
	}
	if model.Effects != "" {
		if err := json.Unmarshal([]byte(model.Effects), &monster.Effects); err != nil {
			return nil, err
		}
	}
	if model.Drops != "" {
		if err := json.Unmarshal([]byte(model.Drops), &monster.Drops); err != nil {
			return nil, err
		}
	}
	return monster, nil
}

func resourceToModel(resource *game.Resource) (*ResourceModel, error) {
	drops, err := json.Marshal(resource.Drops)
	if err != nil {
		return nil, err
	}
	return &ResourceModel{
		Code:  resource.Code,
		Name:  resource.Name,
		Skill: resource.Skill,
		Level: resource.Level,
		Drops: string(drops),
	}, nil
}

func modelToResource(model *ResourceModel) (*game.Resource, error) {
	resource := &game.Resource{
		Code:  model.Code,
		Name:  model.Name,
		Skill: model.Skill,
		Level: model.Level,
	}
	if model.Drops != "" {
		if err := json.Unmarshal([]byte(model.Drops), &resource.Drops); err != nil {
			return nil, err
		}
	}
	return resource, nil
}
