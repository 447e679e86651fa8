package executors

import (
	"context"
	"errors"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// MoveTo walks the character to (x, y), a no-op when already there
func MoveTo(ctx context.Context, c *CharacterContext, x, y int) error {
	if c.Snapshot().At(x, y) {
		return nil
	}
	_, err := c.Do(ctx, "move", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Move(ctx, c.Name, x, y)
	})
	return err
}

// MoveToContent resolves the nearest tile hosting the content and walks
// there. A NoPathError marks the content unreachable process-wide.
func MoveToContent(ctx context.Context, c *CharacterContext, contentType, contentCode string) error {
	snap := c.Snapshot()
	tile, ok := c.Catalog.Location(contentType, contentCode, snap.X, snap.Y)
	if !ok {
		c.Blacklist.Mark(contentType, contentCode)
		return shared.NewNoPathError(contentType, contentCode)
	}
	if snap.At(tile.X, tile.Y) {
		return nil
	}
	_, err := c.Do(ctx, "move", func(ctx context.Context) (*character.ActionResult, error) {
		return c.API.Move(ctx, c.Name, tile.X, tile.Y)
	})
	if err != nil {
		var noPath *shared.NoPathError
		if errors.As(err, &noPath) {
			c.Blacklist.Mark(contentType, contentCode)
			return shared.NewNoPathError(contentType, contentCode)
		}
		return err
	}
	return nil
}
