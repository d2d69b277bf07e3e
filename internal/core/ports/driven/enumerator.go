package driven

import (
	"context"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// Enumerator lists the items a job aggregates.
// Each connector type (github, drive, filesystem) implements this interface.
type Enumerator interface {
	// ListItems returns every item in a stable, deterministic order.
	// The pipeline preserves this order in its artifacts.
	ListItems(ctx context.Context) ([]domain.ItemRef, error)
}

// ContentSource reads the body of one enumerated item.
type ContentSource interface {
	// Read fetches the content of ref.
	// Recoverable failures (rate limiting, 5xx) must be wrapped with
	// domain.MarkTransient; anything else is treated as permanent.
	Read(ctx context.Context, ref domain.ItemRef) (*domain.Content, error)
}
