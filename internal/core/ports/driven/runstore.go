package driven

import (
	"context"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// RunStore persists run summaries.
type RunStore interface {
	// Save stores or replaces a summary.
	Save(ctx context.Context, summary *domain.RunSummary) error

	// Get retrieves a summary by run ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunSummary, error)

	// List returns up to limit summaries, most recent first.
	// A limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
