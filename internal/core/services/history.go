package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads past runs from a run store.
type HistoryService struct {
	store driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.RunStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns up to limit runs, most recent first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	return s.store.List(ctx, limit)
}

// Get returns the run with the given ID, or the only run whose ID starts
// with it.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidArgument)
	}

	run, err := s.store.Get(ctx, id)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	runs, err := s.store.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	var match *domain.RunSummary
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidArgument, id)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, fmt.Errorf("run %q: %w", id, domain.ErrNotFound)
	}
	return match, nil
}
