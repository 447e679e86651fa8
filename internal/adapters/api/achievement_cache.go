package api

import (
	"context"
	"sync"
	"time"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

const achievementCacheTTL = 5 * time.Minute

// AchievementCache serves the account's incomplete achievements from a short
// TTL cache. Achievements move slowly; every rotation setup does not need a
// fresh fetch.
type AchievementCache struct {
	client  *Client
	account string
	clock   shared.Clock

	mu        sync.Mutex
	cached    []game.Achievement
	fetchedAt time.Time
}

// NewAchievementCache creates a cache over the given account
func NewAchievementCache(client *Client, account string, clock shared.Clock) *AchievementCache {
	return &AchievementCache{client: client, account: account, clock: clock}
}

// IncompleteAchievements returns achievements with progress left, refetching
// when the cache has expired.
func (c *AchievementCache) IncompleteAchievements(ctx context.Context) ([]game.Achievement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.cached == nil || now.Sub(c.fetchedAt) >= achievementCacheTTL {
		all, err := c.client.FetchAchievements(ctx, c.account)
		if err != nil {
			return nil, err
		}
		c.cached = all
		c.fetchedAt = now
	}

	var out []game.Achievement
	for _, a := range c.cached {
		if !a.Complete() {
			out = append(out, a)
		}
	}
	return out, nil
}
