package executors

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

const (
	taskCoinCode     = "tasks_coin"
	coinsPerExchange = 6

	// proactiveExchangeBackoff keeps a proactive run that made no progress
	// from retrying immediately
	proactiveExchangeBackoff = 60 * time.Second
)

// ExchangeService turns task coins into reward items. Targets come from
// config plus needs recorded by crafting plans whose bank-only materials are
// task rewards. Only one character may exchange at a time.
type ExchangeService struct {
	clock shared.Clock
	log   *zap.SugaredLogger

	// Account-wide: held for the whole run of one character's exchanges
	runMu sync.Mutex

	mu           sync.Mutex
	targets      map[string]int
	backoffUntil map[string]time.Time
}

// NewExchangeService creates the service seeded with the configured targets
func NewExchangeService(targets map[string]int, clock shared.Clock, log *zap.SugaredLogger) *ExchangeService {
	seeded := make(map[string]int, len(targets))
	for code, qty := range targets {
		seeded[code] = qty
	}
	return &ExchangeService{
		clock:        clock,
		log:          log,
		targets:      seeded,
		backoffUntil: make(map[string]time.Time),
	}
}

// RecordNeed registers a dynamic exchange target. Needs merge by maximum;
// the exchange stops once the bank holds the target quantity.
func (s *ExchangeService) RecordNeed(code string, quantity int) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity > s.targets[code] {
		s.targets[code] = quantity
	}
}

// unmetTargets returns targets the bank does not yet cover
func (s *ExchangeService) unmetTargets(c *CharacterContext) map[string]int {
	s.mu.Lock()
	targets := make(map[string]int, len(s.targets))
	for code, qty := range s.targets {
		targets[code] = qty
	}
	s.mu.Unlock()

	unmet := make(map[string]int)
	for code, qty := range targets {
		if have := c.Mirror.BankCount(code); have < qty {
			unmet[code] = qty - have
		}
	}
	return unmet
}

// Run performs exchanges until the targets are met or progress stalls.
// A proactive run that cannot move backs the character off for a minute.
func (s *ExchangeService) Run(ctx context.Context, c *CharacterContext, proactive bool) (bool, error) {
	now := s.clock.Now()
	s.mu.Lock()
	blocked := proactive && now.Before(s.backoffUntil[c.Name])
	s.mu.Unlock()
	if blocked {
		return false, nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	progressed := false
	for {
		if err := ctx.Err(); err != nil {
			return progressed, err
		}
		if len(s.unmetTargets(c)) == 0 {
			break
		}

		snap := c.Snapshot()
		coins := snap.ItemCount(taskCoinCode)
		if coins < coinsPerExchange {
			got, err := WithdrawReserved(ctx, c, []game.ItemQuantity{
				{Code: taskCoinCode, Quantity: coinsPerExchange - coins},
			})
			if err != nil {
				return progressed, err
			}
			if len(got) == 0 {
				s.log.Debugw("not enough task coins", "character", c.Name, "held", coins)
				break
			}
			continue
		}
		if snap.InventoryFree() < 2 {
			s.log.Debugw("no room for exchange rewards", "character", c.Name)
			break
		}

		if err := moveToTasksMaster(ctx, c); err != nil {
			return progressed, err
		}
		result, err := c.Do(ctx, "task_exchange", func(ctx context.Context) (*character.ActionResult, error) {
			return c.API.TaskExchange(ctx, c.Name)
		})
		if err != nil {
			return progressed, err
		}
		progressed = true
		if result.Task != nil {
			s.log.Infow("task exchange", "character", c.Name, "rewards", result.Task.Rewards)
		}

		// Bank the winnings so unmetTargets sees them
		if _, err := DepositInventory(ctx, c); err != nil {
			return progressed, err
		}
		if err := c.Mirror.Refresh(ctx, true); err != nil {
			return progressed, err
		}
	}

	if proactive && !progressed {
		s.mu.Lock()
		s.backoffUntil[c.Name] = s.clock.Now().Add(proactiveExchangeBackoff)
		s.mu.Unlock()
	}
	return progressed, nil
}

// moveToTasksMaster walks to the nearest tasks master of either flavor
func moveToTasksMaster(ctx context.Context, c *CharacterContext) error {
	snap := c.Snapshot()
	code := snap.TaskType
	if code == "" {
		code = character.TaskTypeMonsters
	}
	if _, ok := c.Catalog.Location(game.ContentTypeTasksMaster, code, snap.X, snap.Y); !ok {
		if code == character.TaskTypeMonsters {
			code = character.TaskTypeItems
		} else {
			code = character.TaskTypeMonsters
		}
	}
	return MoveToContent(ctx, c, game.ContentTypeTasksMaster, code)
}
