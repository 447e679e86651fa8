package orders

import (
	"sort"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

// Bucket is the claim-priority category of an order. Tools unblock gathering
// for everyone, so they come first; raw resources feed every craft; weapons
// before the rest of the gear.
type Bucket int

const (
	BucketTool Bucket = iota
	BucketResource
	BucketWeapon
	BucketGear
)

func (b Bucket) String() string {
	switch b {
	case BucketTool:
		return "tool"
	case BucketResource:
		return "resource"
	case BucketWeapon:
		return "weapon"
	case BucketGear:
		return "gear"
	}
	return "unknown"
}

// BucketFor derives the claim bucket from the ordered item's type/subtype.
// Unknown codes sort with resources.
func (b *Board) BucketFor(itemCode string) Bucket {
	item, ok := b.items.Item(itemCode)
	if !ok {
		return BucketResource
	}
	if item.IsTool() {
		return BucketTool
	}
	if !item.IsEquipment() {
		return BucketResource
	}
	if item.Type == game.ItemTypeWeapon {
		return BucketWeapon
	}
	return BucketGear
}

// sortForClaimLocked orders by bucket, then creation time (FIFO), then id
func (b *Board) sortForClaimLocked(list []*Order) {
	sort.SliceStable(list, func(i, j int) bool {
		bi, bj := b.BucketFor(list[i].ItemCode), b.BucketFor(list[j].ItemCode)
		if bi != bj {
			return bi < bj
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// SortForClaim sorts a copy of the given orders by claim priority, exposed
// for tests and external selection logic.
func (b *Board) SortForClaim(list []*Order) []*Order {
	out := make([]*Order, len(list))
	copy(out, list)
	b.sortForClaimLocked(out)
	return out
}
