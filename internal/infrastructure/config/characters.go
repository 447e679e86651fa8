package config

import "time"

// CharacterConfig holds one character's automation tuning. Everything here
// has a sensible default; a bare entry with just a name runs the full
// rotation with board participation off.
type CharacterConfig struct {
	// Character name as registered with the game
	Name string `mapstructure:"name" validate:"required"`

	// Skills this character rotates through; empty means all
	Skills []string `mapstructure:"skills"`

	// Relative selection weight per skill (default 1.0 each)
	Weights map[string]float64 `mapstructure:"weights"`

	// Goal size per skill kind: gather units, craft batches, fight wins
	Goals map[string]int `mapstructure:"goals"`

	// Recipes this character never crafts
	BlacklistedRecipes []string `mapstructure:"blacklisted_recipes"`

	// Achievement types the rotation may chase; empty means all
	AchievementTypes []string `mapstructure:"achievement_types"`

	// How long a failed recipe stays off the rotation
	RecipeBlock time.Duration `mapstructure:"recipe_block"`

	// Consecutive losses against one monster before rotating away
	MaxLosses int `mapstructure:"max_losses" validate:"min=0"`

	// Whether the character accepts NPC tasks on its own
	AcceptTasks bool `mapstructure:"accept_tasks"`

	// Item task trade batch size
	TaskBatchSize int `mapstructure:"task_batch_size" validate:"min=0"`

	// Order board participation
	OrderBoard OrderBoardConfig `mapstructure:"order_board"`

	// Potion policy per monster type ("normal", "elite", "boss")
	Potions map[string]PotionPolicyConfig `mapstructure:"potions"`
}

// OrderBoardConfig holds one character's order board participation
type OrderBoardConfig struct {
	// Enabled turns board awareness on at all
	Enabled bool `mapstructure:"enabled"`

	// CreateOrders lets the rotation publish orders for missing inputs
	CreateOrders bool `mapstructure:"create_orders"`

	// FulfillOrders lets the character claim and serve other orders
	FulfillOrders bool `mapstructure:"fulfill_orders"`

	// Lease is how long a claim holds before the board expires it
	Lease time.Duration `mapstructure:"lease"`

	// BlockedRetry is how long a blocked order stays unclaimable
	BlockedRetry time.Duration `mapstructure:"blocked_retry"`
}

// PotionPolicyConfig holds potion stocking for one monster type
type PotionPolicyConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Stack size to keep in each utility slot
	TargetQuantity int `mapstructure:"target_quantity" validate:"min=0"`
}

// ExchangeConfig holds the account-wide task coin exchange targets
type ExchangeConfig struct {
	// Bank stock targets per task reward item code; the exchange keeps
	// rolling coins while any target is unmet
	Targets map[string]int `mapstructure:"targets"`
}
