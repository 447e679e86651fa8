package orders

import (
	"fmt"
	"time"
)

// Status lifecycle: open → claimed → open (lease expiry or release) →
// blocked (retry deadline) → open → fulfilled (terminal).
type Status string

const (
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusBlocked   Status = "blocked"
	StatusFulfilled Status = "fulfilled"
)

// SourceType says how the ordered item is produced
type SourceType string

const (
	SourceGather SourceType = "gather"
	SourceCraft  SourceType = "craft"
	SourceFight  SourceType = "fight"
)

// Order is one unit of cross-character work: someone needs N of an item from
// a source. Orders with the same merge key are additive.
type Order struct {
	ID        string
	CreatedAt time.Time

	RequesterName string
	RecipeCode    string
	ItemCode      string

	SourceType  SourceType
	SourceCode  string
	GatherSkill string
	CraftSkill  string
	SourceLevel int

	Quantity     int
	RemainingQty int

	// requester::recipe → contributed quantity
	Contributions map[string]int

	Status       Status
	Claimer      string
	ClaimExpires time.Time

	BlockedUntil time.Time
	BlockReasons []string
}

// MergeKey identifies additive orders: same source producing the same item
func (o *Order) MergeKey() string {
	return mergeKey(o.SourceType, o.SourceCode, o.ItemCode)
}

func mergeKey(sourceType SourceType, sourceCode, itemCode string) string {
	return fmt.Sprintf("%s:%s:%s", sourceType, sourceCode, itemCode)
}

func contributionKey(requester, recipe string) string {
	return requester + "::" + recipe
}

// ClaimedBy reports whether the order is currently claimed by the holder
// with a live lease.
func (o *Order) ClaimedBy(holder string, now time.Time) bool {
	return o.Status == StatusClaimed && o.Claimer == holder && now.Before(o.ClaimExpires)
}
