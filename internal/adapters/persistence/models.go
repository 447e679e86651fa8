package persistence

import (
	"time"
)

// ItemModel represents the items table. Effects and the optional craft
// recipe are stored as JSON text; the catalog is read back wholesale, never
// queried field by field.
type ItemModel struct {
	Code    string `gorm:"column:code;primaryKey"`
	Name    string `gorm:"column:name;not null"`
	Type    string `gorm:"column:type;not null"`
	Subtype string `gorm:"column:subtype"`
	Level   int    `gorm:"column:level;not null;default:0"`
	Effects string `gorm:"column:effects;type:text"` // JSON array as text
	Craft   string `gorm:"column:craft;type:text"`   // JSON object as text, empty when not craftable
}

func (ItemModel) TableName() string {
	return "items"
}

// MonsterModel represents the monsters table
type MonsterModel struct {
	Code       string `gorm:"column:code;primaryKey"`
	Name       string `gorm:"column:name;not null"`
	Type       string `gorm:"column:type;not null"`
	Level      int    `gorm:"column:level;not null;default:0"`
	HP         int    `gorm:"column:hp;not null;default:0"`
	Initiative int    `gorm:"column:initiative;not null;default:0"`
	CritChance int    `gorm:"column:crit_chance;not null;default:0"`
	Attacks    string `gorm:"column:attacks;type:text"` // JSON object as text
	Resists    string `gorm:"column:resists;type:text"` // JSON object as text
	Effects    string `gorm:"column:effects;type:text"` // JSON array as text
	Drops      string `gorm:"column:drops;type:text"`   // JSON array as text
}

func (MonsterModel) TableName() string {
	return "monsters"
}

// ResourceModel represents the resources table
type ResourceModel struct {
	Code  string `gorm:"column:code;primaryKey"`
	Name  string `gorm:"column:name;not null"`
	Skill string `gorm:"column:skill;not null"`
	Level int    `gorm:"column:level;not null;default:0"`
	Drops string `gorm:"column:drops;type:text"` // JSON array as text
}

func (ResourceModel) TableName() string {
	return "resources"
}

// MapTileModel represents the map_tiles table
type MapTileModel struct {
	X           int    `gorm:"column:x;primaryKey;autoIncrement:false"`
	Y           int    `gorm:"column:y;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name"`
	ContentType string `gorm:"column:content_type"`
	ContentCode string `gorm:"column:content_code"`
}

func (MapTileModel) TableName() string {
	return "map_tiles"
}

// TaskRewardModel represents the task_rewards table: the item codes the
// tasks master can hand out on exchange
type TaskRewardModel struct {
	Code string `gorm:"column:code;primaryKey"`
}

func (TaskRewardModel) TableName() string {
	return "task_rewards"
}

// CatalogSyncModel represents the catalog_sync table, a single row recording
// when the catalog was last fetched from the API
type CatalogSyncModel struct {
	ID       int       `gorm:"column:id;primaryKey"`
	SyncedAt time.Time `gorm:"column:synced_at;not null"`
}

func (CatalogSyncModel) TableName() string {
	return "catalog_sync"
}
