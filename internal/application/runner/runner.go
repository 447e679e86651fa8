package runner

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adelacruz/artifacts-go/internal/adapters/api"
	"github.com/adelacruz/artifacts-go/internal/adapters/metrics"
	"github.com/adelacruz/artifacts-go/internal/adapters/persistence"
	"github.com/adelacruz/artifacts-go/internal/application/bank"
	"github.com/adelacruz/artifacts-go/internal/application/executors"
	"github.com/adelacruz/artifacts-go/internal/application/gearplan"
	"github.com/adelacruz/artifacts-go/internal/application/orders"
	"github.com/adelacruz/artifacts-go/internal/application/rotation"
	"github.com/adelacruz/artifacts-go/internal/application/scheduler"
	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/gear"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
	"github.com/adelacruz/artifacts-go/internal/infrastructure/config"
	"github.com/adelacruz/artifacts-go/internal/infrastructure/database"
)

// maintenanceInterval paces the background planner/reservation sweep
const maintenanceInterval = 5 * time.Second

// Runner owns the whole account: the shared services, one scheduler per
// character, and the background maintenance loop.
type Runner struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	clock shared.Clock

	client  *api.Client
	db      *gorm.DB
	catalog *game.Catalog
	mirror  *bank.Mirror
	board   *orders.Board
	planner *gearplan.Planner

	mu         sync.Mutex
	contexts   map[string]*executors.CharacterContext
	order      []string
	publishers []string
	schedulers []*scheduler.Scheduler
}

// New wires everything up: API client, catalog (cache or fetch), bank
// mirror, order board, gear planner, and one character context per
// configured character.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Runner, error) {
	clock := shared.NewRealClock()

	client := api.NewClient(cfg.API.Token, api.Options{
		BaseURL:           cfg.API.BaseURL,
		MaxRetries:        cfg.API.Retry.MaxAttempts,
		BackoffBase:       cfg.API.Retry.BackoffBase,
		RequestsPerSecond: float64(cfg.API.RateLimit.Requests),
		Clock:             clock,
	})

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}

	catalog, err := loadCatalog(ctx, client, db, cfg.Database.RefreshAfter, clock, log)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		log:      log,
		clock:    clock,
		client:   client,
		db:       db,
		catalog:  catalog,
		contexts: make(map[string]*executors.CharacterContext),
		order:    cfg.CharacterNames(),
	}

	r.mirror = bank.NewMirror(client, clock, log)
	if err := r.mirror.Refresh(ctx, true); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to load bank: %w", err)
	}

	r.board = orders.NewBoard(catalog, clock, log)
	optimizer := gear.NewOptimizer(catalog)

	gearStore := persistence.NewGearStateStore(cfg.Daemon.GearStatePath, log)
	r.planner = gearplan.NewPlanner(
		catalog, optimizer, r.mirror, r.board, r, gearStore,
		plannerPotions(cfg), clock, log,
	)

	exchange := executors.NewExchangeService(cfg.Exchange.Targets, clock, log)

	var achievements rotation.AchievementSource
	if cfg.API.Account != "" {
		achievements = api.NewAchievementCache(client, cfg.API.Account, clock)
	}

	// One unreachable-content blacklist for the whole process: a 598 seen by
	// one character spares every other character the same dead trip.
	blacklist := rotation.NewBlacklist()

	var observer executors.ActionObserver
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		collector := metrics.NewActionCollector()
		if err := collector.Register(); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		observer = collector
	}

	for _, charCfg := range cfg.Characters {
		snap, err := client.GetCharacter(ctx, charCfg.Name)
		if err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to fetch character %s: %w", charCfg.Name, err)
		}

		c := executors.NewCharacterContext(charCfg.Name, snap)
		c.API = client
		c.Catalog = catalog
		c.Optimizer = optimizer
		c.Mirror = r.mirror
		c.Board = r.board
		c.Gear = r.planner
		c.Blacklist = blacklist
		c.Exchange = exchange
		c.Clock = clock
		c.Log = log.With("character", charCfg.Name)
		c.Observer = observer
		c.Cfg = executorConfig(charCfg)

		c.Rotation = rotation.NewRotation(charCfg.Name, rotationConfig(charCfg), rotation.Deps{
			Catalog:      catalog,
			Optimizer:    optimizer,
			Mirror:       r.mirror,
			Board:        r.board,
			Blacklist:    c.Blacklist,
			Achievements: achievements,
			TaskNeeds:    exchange,
			Clock:        clock,
			RNG:          rand.New(rand.NewSource(clock.Now().UnixNano())),
			Log:          c.Log,
		})

		r.mirror.UpdateCharacter(snap)
		r.contexts[charCfg.Name] = c
		if charCfg.OrderBoard.Enabled && charCfg.OrderBoard.CreateOrders {
			r.publishers = append(r.publishers, charCfg.Name)
		}
		r.schedulers = append(r.schedulers, scheduler.New(c, scheduler.StandardRoutines(), clock, c.Log))
	}

	return r, nil
}

// Run drives all character loops plus the maintenance sweep until ctx is
// cancelled, then flushes the gear plan and closes the cache.
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, s := range r.schedulers {
		wg.Add(1)
		go func(s *scheduler.Scheduler) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil && ctx.Err() == nil {
				r.log.Errorw("character loop exited", "error", err)
			}
		}(s)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.maintenanceLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	if err := r.planner.Flush(); err != nil {
		r.log.Errorw("failed to flush gear state", "error", err)
	}
	return database.Close(r.db)
}

// Reports returns the operator view of every character loop, in config order
func (r *Runner) Reports() []scheduler.Report {
	out := make([]scheduler.Report, 0, len(r.schedulers))
	for _, s := range r.schedulers {
		out = append(out, s.Report())
	}
	return out
}

// OrderedNames implements the gear planner's snapshot provider: config order
// decides who wins scarce allocations.
func (r *Runner) OrderedNames() []string {
	return r.order
}

// Snapshot implements the gear planner's snapshot provider
func (r *Runner) Snapshot(name string) *character.Snapshot {
	c, ok := r.contexts[name]
	if !ok {
		return nil
	}
	return c.Snapshot()
}

// maintenanceLoop runs the background sweep on a fixed cadence
func (r *Runner) maintenanceLoop(ctx context.Context) {
	for {
		if err := r.clock.SleepCtx(ctx, maintenanceInterval); err != nil {
			return
		}
		r.maintenanceSweep(ctx)
	}
}

// maintenanceSweep expires stale reservations, recomputes the gear plan when
// the bank or a character level moved, and tops the order board up to each
// publishing character's gear deficit.
func (r *Runner) maintenanceSweep(ctx context.Context) {
	r.mirror.CleanupExpiredReservations()
	if err := r.planner.Refresh(ctx, false); err != nil {
		r.log.Warnw("gear plan refresh failed", "error", err)
		return
	}
	for _, name := range r.publishers {
		if published := r.planner.PublishDesiredOrders(name); published > 0 {
			r.log.Debugw("published gear deficit orders", "character", name, "orders", published)
		}
	}
}

// loadCatalog serves the catalog from the SQLite cache when fresh enough,
// refetching from the API otherwise
func loadCatalog(ctx context.Context, client *api.Client, db *gorm.DB, refreshAfter time.Duration, clock shared.Clock, log *zap.SugaredLogger) (*game.Catalog, error) {
	repo := persistence.NewGormCatalogRepository(db)

	syncedAt, err := repo.SyncedAt(ctx)
	if err != nil {
		return nil, err
	}
	if !syncedAt.IsZero() && clock.Now().Sub(syncedAt) < refreshAfter {
		snapshot, err := repo.Load(ctx)
		if err == nil {
			log.Infow("catalog loaded from cache", "syncedAt", syncedAt)
			return game.NewCatalog(snapshot.Items, snapshot.Monsters, snapshot.Resources, snapshot.Tiles, snapshot.TaskRewards), nil
		}
		log.Warnw("catalog cache unreadable, refetching", "error", err)
	}

	log.Info("fetching catalog from API")
	snapshot := &persistence.CatalogSnapshot{}
	if snapshot.Items, err = client.FetchItems(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	if snapshot.Monsters, err = client.FetchMonsters(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch monsters: %w", err)
	}
	if snapshot.Resources, err = client.FetchResources(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch resources: %w", err)
	}
	if snapshot.Tiles, err = client.FetchMaps(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch maps: %w", err)
	}
	if snapshot.TaskRewards, err = client.FetchTaskRewards(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch task rewards: %w", err)
	}

	if err := repo.Save(ctx, snapshot, clock.Now()); err != nil {
		log.Warnw("failed to cache catalog", "error", err)
	}
	return game.NewCatalog(snapshot.Items, snapshot.Monsters, snapshot.Resources, snapshot.Tiles, snapshot.TaskRewards), nil
}

// rotationConfig maps the file config onto the rotation's tuning
func rotationConfig(charCfg config.CharacterConfig) rotation.Config {
	return rotation.Config{
		EnabledSkills:      charCfg.Skills,
		Weights:            charCfg.Weights,
		Goals:              charCfg.Goals,
		BlacklistedRecipes: charCfg.BlacklistedRecipes,
		AchievementTypes:   charCfg.AchievementTypes,
		RecipeBlockTTL:     charCfg.RecipeBlock,
		CreateOrders:       charCfg.OrderBoard.Enabled && charCfg.OrderBoard.CreateOrders,
	}
}

// executorConfig maps the file config onto the executors' tuning
func executorConfig(charCfg config.CharacterConfig) executors.Config {
	potions := make(map[string]gearplan.PotionPolicy, len(charCfg.Potions))
	for monsterType, policy := range charCfg.Potions {
		potions[monsterType] = gearplan.PotionPolicy{Enabled: policy.Enabled, TargetQuantity: policy.TargetQuantity}
	}
	return executors.Config{
		MaxLosses:     charCfg.MaxLosses,
		AcceptTasks:   charCfg.AcceptTasks,
		TaskBatchSize: charCfg.TaskBatchSize,
		Potions:       potions,
		OrderBoard: executors.OrderBoardConfig{
			Enabled:       charCfg.OrderBoard.Enabled,
			CreateOrders:  charCfg.OrderBoard.CreateOrders,
			FulfillOrders: charCfg.OrderBoard.FulfillOrders,
			Lease:         charCfg.OrderBoard.Lease,
			BlockedRetry:  charCfg.OrderBoard.BlockedRetry,
		},
	}
}

// plannerPotions collapses each character's per-tier potion policies into
// the single stocking policy the gear planner carries per character: enabled
// when any tier is, with the largest target
func plannerPotions(cfg *config.Config) map[string]gearplan.PotionPolicy {
	out := make(map[string]gearplan.PotionPolicy, len(cfg.Characters))
	for _, charCfg := range cfg.Characters {
		merged := gearplan.PotionPolicy{}
		for _, policy := range charCfg.Potions {
			if !policy.Enabled {
				continue
			}
			merged.Enabled = true
			if policy.TargetQuantity > merged.TargetQuantity {
				merged.TargetQuantity = policy.TargetQuantity
			}
		}
		out[charCfg.Name] = merged
	}
	return out
}
