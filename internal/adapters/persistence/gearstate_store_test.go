package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/gearplan"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

func testStore(t *testing.T) (*GearStateStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gear-state.json")
	return NewGearStateStore(path, zap.NewNop().Sugar()), path
}

func sampleState() *gearplan.StateFile {
	return &gearplan.StateFile{
		Version:              gearplan.StateFileVersion,
		UpdatedAtMs:          1750000000000,
		BankRevisionSnapshot: 7,
		Levels:               map[string]int{"alice": 12},
		Characters: map[string]*gearplan.CharacterState{
			"alice": {
				Required:  map[string]int{"iron_sword": 1},
				Assigned:  map[string]int{"iron_sword": 1},
				Available: map[string]int{"iron_sword": 1},
				Desired:   map[string]int{},
			},
		},
	}
}

func TestGearStateStoreRoundTrip(t *testing.T) {
	store, path := testStore(t)

	t.Run("missing file loads as nil", func(t *testing.T) {
		file, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, file)
	})

	t.Run("flush writes and load reads back", func(t *testing.T) {
		store.Enqueue(sampleState())
		require.NoError(t, store.Flush())

		loaded, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, gearplan.StateFileVersion, loaded.Version)
		assert.Equal(t, uint64(7), loaded.BankRevisionSnapshot)
		assert.Equal(t, 12, loaded.Levels["alice"])
		assert.Equal(t, map[string]int{"iron_sword": 1}, loaded.Characters["alice"].Assigned)

		// The temp file must not linger next to the target.
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("later enqueue replaces the pending payload", func(t *testing.T) {
		first := sampleState()
		second := sampleState()
		second.BankRevisionSnapshot = 99

		store.Enqueue(first)
		store.Enqueue(second)
		require.NoError(t, store.Flush())

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, uint64(99), loaded.BankRevisionSnapshot)
	})

	t.Run("flush with nothing pending is a no-op", func(t *testing.T) {
		require.NoError(t, store.Flush())
	})
}

func TestGearStateStoreMigratesV1(t *testing.T) {
	store, path := testStore(t)
	legacy := `{
		"version": 1,
		"updatedAtMs": 1700000000000,
		"bankRevisionSnapshot": 4,
		"levels": {"alice": 9},
		"characters": {
			"alice": {
				"owned": {"copper_sword": 1},
				"bestTarget": "wolf",
				"levelSnapshot": 9
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, gearplan.StateFileVersion, loaded.Version)
	row := loaded.Characters["alice"]
	require.NotNil(t, row)
	// The legacy owned map becomes available; assigned starts empty.
	assert.Equal(t, map[string]int{"copper_sword": 1}, row.Available)
	assert.Empty(t, row.Assigned)
	assert.NotNil(t, row.Desired)
	assert.Equal(t, "wolf", row.BestTarget)
}

func TestGearStateStoreRejectsUnknownVersion(t *testing.T) {
	store, path := testStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 42}`), 0o644))

	_, err := store.Load()
	require.Error(t, err)
	var versionErr *shared.StateVersionError
	assert.ErrorAs(t, err, &versionErr)
}

func TestGearStateStoreCorruptFile(t *testing.T) {
	store, path := testStore(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := store.Load()
	assert.Error(t, err)
}
