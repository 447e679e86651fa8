package executors

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/application/gearplan"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// GameAPI is the slice of the HTTP client the executors drive
type GameAPI interface {
	GetCharacter(ctx context.Context, name string) (*character.Snapshot, error)

	Move(ctx context.Context, name string, x, y int) (*character.ActionResult, error)
	Fight(ctx context.Context, name string) (*character.ActionResult, error)
	Gather(ctx context.Context, name string) (*character.ActionResult, error)
	Rest(ctx context.Context, name string) (*character.ActionResult, error)
	Equip(ctx context.Context, name, code, slot string, quantity int) (*character.ActionResult, error)
	Unequip(ctx context.Context, name, slot string, quantity int) (*character.ActionResult, error)
	UseItem(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error)
	Craft(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error)
	Recycle(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error)

	AcceptTask(ctx context.Context, name string) (*character.ActionResult, error)
	CompleteTask(ctx context.Context, name string) (*character.ActionResult, error)
	CancelTask(ctx context.Context, name string) (*character.ActionResult, error)
	TaskExchange(ctx context.Context, name string) (*character.ActionResult, error)
	TaskTrade(ctx context.Context, name, code string, quantity int) (*character.ActionResult, error)

	DepositBank(ctx context.Context, name string, items []game.ItemQuantity) (*character.ActionResult, error)
	WithdrawBank(ctx context.Context, name string, items []game.ItemQuantity) (*character.ActionResult, error)
	DepositGold(ctx context.Context, name string, quantity int) (*character.ActionResult, error)
	WithdrawGold(ctx context.Context, name string, quantity int) (*character.ActionResult, error)
}

// ActionObserver receives one record per server action, for metrics
type ActionObserver interface {
	ObserveAction(characterName, action, result string, cooldownSeconds float64)
}

// OrderBoardConfig is the character's order board participation
type OrderBoardConfig struct {
	Enabled       bool
	CreateOrders  bool
	FulfillOrders bool
	Lease         time.Duration
	BlockedRetry  time.Duration
}

// Config is the per-character executor tuning
type Config struct {
	MaxLosses     int
	AcceptTasks   bool
	OrderBoard    OrderBoardConfig
	Potions       map[string]gearplan.PotionPolicy
	TaskBatchSize int
}

const equipCacheSize = 64

// CharacterContext is everything one character's executors share: the API,
// the collaborators, its mutable snapshot, and the small amounts of local
// state (loss streaks, caches, the current order claim).
type CharacterContext struct {
	Name      string
	API       GameAPI
	Catalog   *game.Catalog
	Optimizer *gear.Optimizer
	Mirror    *bank.Mirror
	Board     *orders.Board
	Gear      *gearplan.Planner
	Rotation  *rotation.Rotation
	Blacklist *rotation.Blacklist
	Exchange  *ExchangeService
	Clock     shared.Clock
	Log       *zap.SugaredLogger
	Observer  ActionObserver
	Cfg       Config

	snap *character.Snapshot

	consecutiveLosses map[string]int
	equipCache        *lru.Cache[string, gear.Loadout]
	claimedOrderID    string
	toolRecheckAt     time.Time
}

// NewCharacterContext wires the context. The snapshot must be seeded with an
// initial GetCharacter before the loop starts.
func NewCharacterContext(name string, snap *character.Snapshot) *CharacterContext {
	cache, _ := lru.New[string, gear.Loadout](equipCacheSize)
	return &CharacterContext{
		Name:              name,
		snap:              snap,
		consecutiveLosses: make(map[string]int),
		equipCache:        cache,
	}
}

// Snapshot returns the character's current state. Owned by the control loop;
// other goroutines read copies through the bank mirror.
func (c *CharacterContext) Snapshot() *character.Snapshot {
	return c.snap
}

// SetSnapshot replaces the snapshot and republishes it to the mirror
func (c *CharacterContext) SetSnapshot(snap *character.Snapshot) {
	if snap == nil {
		return
	}
	c.snap = snap
	c.Mirror.UpdateCharacter(snap)
}

// Refresh refetches the snapshot from the server
func (c *CharacterContext) Refresh(ctx context.Context) error {
	snap, err := c.API.GetCharacter(ctx, c.Name)
	if err != nil {
		return err
	}
	c.SetSnapshot(snap)
	return nil
}

// Do runs one server action: invoke it, adopt the returned snapshot, then
// wait out the cooldown. Executors never sleep on their own.
func (c *CharacterContext) Do(ctx context.Context, action string, fn func(ctx context.Context) (*character.ActionResult, error)) (*character.ActionResult, error) {
	result, err := fn(ctx)
	outcome := "ok"
	var cooldownSeconds float64
	if err != nil {
		outcome = "error"
	} else {
		c.SetSnapshot(result.Character)
		cooldownSeconds = result.Cooldown.RemainingSeconds
	}
	if c.Observer != nil {
		c.Observer.ObserveAction(c.Name, action, outcome, cooldownSeconds)
	}
	if err != nil {
		return nil, err
	}
	if waitErr := result.Cooldown.Wait(ctx, c.Clock); waitErr != nil {
		return result, waitErr
	}
	return result, nil
}

// RecordFightResult tracks the per-monster loss streak. Returns true when the
// streak exceeded the configured maximum and the rotation should be forced.
func (c *CharacterContext) RecordFightResult(monsterCode string, win bool) bool {
	if win {
		c.consecutiveLosses[monsterCode] = 0
		return false
	}
	c.consecutiveLosses[monsterCode]++
	maxLosses := c.Cfg.MaxLosses
	if maxLosses <= 0 {
		maxLosses = 3
	}
	return c.consecutiveLosses[monsterCode] > maxLosses
}

// ClaimedOrderID returns the id of the currently held claim, empty when none
func (c *CharacterContext) ClaimedOrderID() string {
	return c.claimedOrderID
}
