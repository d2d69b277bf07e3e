package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
// Summaries are deep-copied on the way in and out.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunSummary
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunSummary),
	}
}

// Save stores or replaces a run summary.
func (s *RunStore) Save(_ context.Context, summary *domain.RunSummary) error {
	if summary == nil || summary.ID == "" {
		return fmt.Errorf("%w: run summary has no id", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[summary.ID] = clone(*summary)
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(run)
	return &out, nil
}

// List returns up to limit runs, most recent first. A limit <= 0 returns all.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, clone(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func clone(run domain.RunSummary) domain.RunSummary {
	if run.Buckets == nil {
		return run
	}
	buckets := make([]domain.BucketResult, len(run.Buckets))
	for i, b := range run.Buckets {
		b.Items = append([]domain.ItemOutcome(nil), b.Items...)
		buckets[i] = b
	}
	run.Buckets = buckets
	return run
}
