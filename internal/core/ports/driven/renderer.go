package driven

import "github.com/custodia-labs/quire/internal/core/domain"

// Renderer turns one item's content into the block written to an artifact.
// Implementations must be deterministic so re-runs produce identical artifacts.
type Renderer interface {
	// Render returns the block for ref. An error skips the item.
	Render(ref domain.ItemRef, content *domain.Content) ([]byte, error)

	// Separator is written between consecutive items, never before the
	// first or after the last. An empty separator writes nothing.
	Separator() []byte
}
