package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/gearplan"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// persistDebounce coalesces bursts of gear-plan updates into one write
const persistDebounce = 250 * time.Millisecond

// GearStateStore persists the gear plan to a JSON file. Writes are debounced
// and atomic (unique temp file + rename); reads migrate legacy version-1
// files that carried a single "owned" map.
type GearStateStore struct {
	path string
	log  *zap.SugaredLogger

	mu      sync.Mutex
	pending *gearplan.StateFile
	timer   *time.Timer
	writing sync.Mutex // serializes the actual file writes
}

// NewGearStateStore creates a store writing to the given path
func NewGearStateStore(path string, log *zap.SugaredLogger) *GearStateStore {
	return &GearStateStore{path: path, log: log}
}

// v1CharacterState is the legacy row shape: a single owned map
type v1CharacterState struct {
	Owned            map[string]int `json:"owned"`
	Desired          map[string]int `json:"desired"`
	Required         map[string]int `json:"required"`
	SelectedMonsters []string       `json:"selectedMonsters"`
	BestTarget       string         `json:"bestTarget"`
	LevelSnapshot    int            `json:"levelSnapshot"`
	UpdatedAtMs      int64          `json:"updatedAtMs"`
}

type v1StateFile struct {
	Version              int                          `json:"version"`
	UpdatedAtMs          int64                        `json:"updatedAtMs"`
	BankRevisionSnapshot uint64                       `json:"bankRevisionSnapshot"`
	Levels               map[string]int               `json:"levels"`
	Characters           map[string]*v1CharacterState `json:"characters"`
}

// Load reads the persisted state. Returns (nil, nil) when no file exists.
// Version 1 files are migrated: owned becomes available, assigned starts
// empty. Unknown versions are a hard failure.
func (s *GearStateStore) Load() (*gearplan.StateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read gear state file: %w", err)
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse gear state file: %w", err)
	}

	switch probe.Version {
	case gearplan.StateFileVersion:
		var file gearplan.StateFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse gear state file: %w", err)
		}
		return &file, nil
	case 0, 1:
		var legacy v1StateFile
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("failed to parse legacy gear state file: %w", err)
		}
		s.log.Infow("migrating gear state file", "from", legacy.Version, "to", gearplan.StateFileVersion)
		return migrateV1(&legacy), nil
	default:
		return nil, shared.NewStateVersionError(probe.Version)
	}
}

func migrateV1(legacy *v1StateFile) *gearplan.StateFile {
	file := &gearplan.StateFile{
		Version:              gearplan.StateFileVersion,
		UpdatedAtMs:          legacy.UpdatedAtMs,
		BankRevisionSnapshot: legacy.BankRevisionSnapshot,
		Levels:               legacy.Levels,
		Characters:           make(map[string]*gearplan.CharacterState, len(legacy.Characters)),
	}
	for name, row := range legacy.Characters {
		migrated := &gearplan.CharacterState{
			Available:        row.Owned,
			Assigned:         map[string]int{},
			Desired:          row.Desired,
			Required:         row.Required,
			SelectedMonsters: row.SelectedMonsters,
			BestTarget:       row.BestTarget,
			LevelSnapshot:    row.LevelSnapshot,
			UpdatedAtMs:      row.UpdatedAtMs,
		}
		if migrated.Available == nil {
			migrated.Available = map[string]int{}
		}
		if migrated.Desired == nil {
			migrated.Desired = map[string]int{}
		}
		if migrated.Required == nil {
			migrated.Required = map[string]int{}
		}
		file.Characters[name] = migrated
	}
	return file
}

// Enqueue schedules a debounced write of the given state. Later enqueues
// within the debounce window replace the pending payload.
func (s *GearStateStore) Enqueue(state *gearplan.StateFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = state
	if s.timer == nil {
		s.timer = time.AfterFunc(persistDebounce, s.writePending)
	}
}

func (s *GearStateStore) writePending() {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if state == nil {
		return
	}
	if err := s.write(state); err != nil {
		s.log.Errorw("gear state persist failed", "error", err)
	}
}

// Flush forces any pending state to disk synchronously
func (s *GearStateStore) Flush() error {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if state == nil {
		return nil
	}
	return s.write(state)
}

// write performs one atomic write: unique temp file in the target directory,
// then rename over the destination.
func (s *GearStateStore) write(state *gearplan.StateFile) error {
	s.writing.Lock()
	defer s.writing.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal gear state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create gear state directory: %w", err)
	}

	tmp := fmt.Sprintf("%s.tmp-%d-%d-%s", s.path, os.Getpid(), time.Now().UnixMilli(), uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write gear state temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace gear state file: %w", err)
	}
	return nil
}
