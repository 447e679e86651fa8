package orders

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// ItemLookup resolves item codes for claim-priority bucketing.
// The game catalog satisfies it.
type ItemLookup interface {
	Item(code string) (*game.Item, bool)
}

// Payload is a new order submission
type Payload struct {
	RequesterName string
	RecipeCode    string
	ItemCode      string
	SourceType    SourceType
	SourceCode    string
	GatherSkill   string
	CraftSkill    string
	SourceLevel   int
	Quantity      int
}

// Board is the process-wide order collection: append-mostly, merge-on-submit,
// with exclusive leased claims. All transitions are serialized by an internal
// mutex; lease expiry is processed lazily on every access.
type Board struct {
	mu     sync.Mutex
	orders map[string]*Order

	items ItemLookup
	clock shared.Clock
	log   *zap.SugaredLogger
}

// NewBoard creates an empty order board
func NewBoard(items ItemLookup, clock shared.Clock, log *zap.SugaredLogger) *Board {
	return &Board{
		orders: make(map[string]*Order),
		items:  items,
		clock:  clock,
		log:    log,
	}
}

// CreateOrMergeOrder submits an order. When an open order with the same merge
// key exists, its remaining quantity and the submitter's contribution grow
// instead of creating a duplicate; the existing order keeps its id and
// creation time. Returns the order the submission landed on.
func (b *Board) CreateOrMergeOrder(p Payload) *Order {
	if p.Quantity <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := mergeKey(p.SourceType, p.SourceCode, p.ItemCode)
	for _, o := range b.orders {
		b.expireLeaseLocked(o)
		if o.Status != StatusOpen || o.MergeKey() != key {
			continue
		}
		o.Quantity += p.Quantity
		o.RemainingQty += p.Quantity
		o.Contributions[contributionKey(p.RequesterName, p.RecipeCode)] += p.Quantity
		b.log.Debugw("order merged",
			"order", o.ID, "item", o.ItemCode, "added", p.Quantity, "remaining", o.RemainingQty)
		return o
	}

	o := &Order{
		ID:            uuid.NewString(),
		CreatedAt:     b.clock.Now(),
		RequesterName: p.RequesterName,
		RecipeCode:    p.RecipeCode,
		ItemCode:      p.ItemCode,
		SourceType:    p.SourceType,
		SourceCode:    p.SourceCode,
		GatherSkill:   p.GatherSkill,
		CraftSkill:    p.CraftSkill,
		SourceLevel:   p.SourceLevel,
		Quantity:      p.Quantity,
		RemainingQty:  p.Quantity,
		Contributions: map[string]int{contributionKey(p.RequesterName, p.RecipeCode): p.Quantity},
		Status:        StatusOpen,
	}
	b.orders[o.ID] = o
	b.log.Infow("order created",
		"order", o.ID, "item", o.ItemCode, "source", o.SourceType, "qty", o.Quantity, "requester", o.RequesterName)
	return o
}

// expireLeaseLocked lazily reverts claimed orders whose lease elapsed and
// unblocks blocked orders whose retry deadline passed.
func (b *Board) expireLeaseLocked(o *Order) {
	now := b.clock.Now()
	if o.Status == StatusClaimed && !now.Before(o.ClaimExpires) {
		b.log.Infow("order claim lease expired", "order", o.ID, "claimer", o.Claimer)
		o.Status = StatusOpen
		o.Claimer = ""
		o.ClaimExpires = time.Time{}
	}
	if o.Status == StatusBlocked && !now.Before(o.BlockedUntil) {
		o.Status = StatusOpen
		o.BlockedUntil = time.Time{}
	}
}

// Get returns the order by id, with lazy expiry applied
func (b *Board) Get(id string) (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if ok {
		b.expireLeaseLocked(o)
	}
	return o, ok
}

// ClaimOrder gives the character a leased exclusive claim. Succeeds only when
// the order is open with work remaining. Idempotent for the current holder:
// re-claiming extends the lease.
func (b *Board) ClaimOrder(orderID, characterName string, lease time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orders[orderID]
	if !ok {
		return false
	}
	b.expireLeaseLocked(o)

	now := b.clock.Now()
	if o.Status == StatusClaimed && o.Claimer == characterName {
		o.ClaimExpires = now.Add(lease)
		return true
	}
	if o.Status != StatusOpen || o.RemainingQty <= 0 {
		return false
	}
	o.Status = StatusClaimed
	o.Claimer = characterName
	o.ClaimExpires = now.Add(lease)
	b.log.Infow("order claimed", "order", o.ID, "item", o.ItemCode, "claimer", characterName)
	return true
}

// ReleaseClaim clears the claim without progress
func (b *Board) ReleaseClaim(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return
	}
	if o.Status == StatusClaimed {
		o.Status = StatusOpen
		o.Claimer = ""
		o.ClaimExpires = time.Time{}
	}
}

// ApplyProgress subtracts delta from the remaining quantity on behalf of
// characterName; the order fulfills at zero. Returns the remaining quantity
// and whether the delivery counted. Progress against an order claimed by
// someone else is rejected, which is how a holder discovers its lease was
// lost and reclaimed. Unclaimed open orders accept progress from anyone.
func (b *Board) ApplyProgress(orderID, characterName string, delta int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return 0, false
	}
	b.expireLeaseLocked(o)
	if o.Status == StatusFulfilled {
		return o.RemainingQty, true
	}
	if o.Status == StatusClaimed && o.Claimer != characterName {
		return o.RemainingQty, false
	}
	if delta <= 0 {
		return o.RemainingQty, true
	}
	o.RemainingQty -= delta
	if o.RemainingQty <= 0 {
		o.RemainingQty = 0
		o.Status = StatusFulfilled
		o.Claimer = ""
		o.ClaimExpires = time.Time{}
		b.log.Infow("order fulfilled", "order", o.ID, "item", o.ItemCode)
	}
	return o.RemainingQty, true
}

// BlockClaim releases the claim, blocks the order until now+retry, and
// records the reason.
func (b *Board) BlockClaim(orderID, reason string, retry time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return
	}
	b.expireLeaseLocked(o)
	if o.Status == StatusFulfilled {
		return
	}
	o.Status = StatusBlocked
	o.Claimer = ""
	o.ClaimExpires = time.Time{}
	o.BlockedUntil = b.clock.Now().Add(retry)
	o.BlockReasons = append(o.BlockReasons, reason)
	b.log.Infow("order blocked", "order", o.ID, "item", o.ItemCode, "reason", reason)
}

// PendingQuantity sums the remaining quantity across unfulfilled orders for
// the given merge key. Submitters use it to size top-ups so re-publishing a
// standing need never inflates what is already on the board.
func (b *Board) PendingQuantity(sourceType SourceType, sourceCode, itemCode string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := mergeKey(sourceType, sourceCode, itemCode)
	total := 0
	for _, o := range b.orders {
		b.expireLeaseLocked(o)
		if o.Status == StatusFulfilled || o.MergeKey() != key {
			continue
		}
		total += o.RemainingQty
	}
	return total
}

// OpenOrders returns the currently claimable orders sorted by claim priority
func (b *Board) OpenOrders() []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*Order
	for _, o := range b.orders {
		b.expireLeaseLocked(o)
		if o.Status == StatusOpen && o.RemainingQty > 0 {
			out = append(out, o)
		}
	}
	b.sortForClaimLocked(out)
	return out
}

// Orders returns every order, for the status surface
func (b *Board) Orders() []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Order, 0, len(b.orders))
	for _, o := range b.orders {
		b.expireLeaseLocked(o)
		out = append(out, o)
	}
	b.sortForClaimLocked(out)
	return out
}
