package driving

import (
	"context"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// HistoryService exposes past run summaries.
type HistoryService interface {
	// List returns up to limit runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Get returns one run by ID or unique ID prefix.
	Get(ctx context.Context, id string) (*domain.RunSummary, error)
}
