package rotation

import (
	"sync"
	"time"

	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// recipeBlockMap suppresses a (skill, recipe) pair for a TTL after it was
// deemed not viable (combat gear not ready, unwinnable fight step, missing
// materials with no source). The map prunes itself on every access.
type recipeBlockMap struct {
	mu      sync.Mutex
	clock   shared.Clock
	entries map[string]time.Time
}

func newRecipeBlockMap(clock shared.Clock) *recipeBlockMap {
	return &recipeBlockMap{clock: clock, entries: make(map[string]time.Time)}
}

func recipeBlockKey(skill, recipe string) string {
	return skill + ":" + recipe
}

// Block suppresses the pair until now+ttl
func (m *recipeBlockMap) Block(skill, recipe string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[recipeBlockKey(skill, recipe)] = m.clock.Now().Add(ttl)
}

// Blocked reports whether the pair is currently suppressed, pruning expired
// entries as a side effect.
func (m *recipeBlockMap) Blocked(skill, recipe string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for key, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, key)
		}
	}
	until, ok := m.entries[recipeBlockKey(skill, recipe)]
	return ok && now.Before(until)
}
