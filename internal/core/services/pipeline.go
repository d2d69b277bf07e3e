package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Bundler = (*Pipeline)(nil)

// Pipeline drives a run: enumerate, partition, then fetch and write every
// bucket in order.
type Pipeline struct {
	cfg         domain.PipelineConfig
	store       driven.RunStore
	fetcherOpts []FetcherOption
	now         func() time.Time
	newID       func() string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRunStore persists every summary. A nil store disables persistence.
func WithRunStore(store driven.RunStore) PipelineOption {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithFetcherOptions passes options to the fetcher created for each run.
func WithFetcherOptions(opts ...FetcherOption) PipelineOption {
	return func(p *Pipeline) {
		p.fetcherOpts = append(p.fetcherOpts, opts...)
	}
}

// WithClock replaces time.Now for summary timestamps.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline with an explicit configuration.
func NewPipeline(cfg domain.PipelineConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() domain.PipelineConfig {
	return p.cfg
}

// Run executes job. Configuration errors return a nil summary; every other
// outcome returns a summary, which is also persisted when a store is set.
func (p *Pipeline) Run(ctx context.Context, job driving.Job) (*domain.RunSummary, error) {
	if err := p.validate(job); err != nil {
		return nil, &domain.PhaseError{Phase: domain.PhaseConfiguring, Err: err}
	}

	summary := &domain.RunSummary{
		ID:        p.newID(),
		Kind:      job.Kind,
		StartedAt: p.now(),
	}

	err := p.run(ctx, job, summary)

	summary.FinishedAt = p.now()
	if err != nil {
		summary.Error = err.Error()
		if summary.State == "" {
			summary.State = domain.RunFailed
		}
	}
	p.persist(ctx, summary)

	logger.Info("Run %s %s: %d items, %d written, %d skipped",
		summary.ID, summary.State, summary.TotalItems, summary.Written(), len(summary.Skipped()))
	return summary, err
}

func (p *Pipeline) validate(job driving.Job) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	var missing []string
	if job.Enumerator == nil {
		missing = append(missing, "enumerator")
	}
	if job.Source == nil {
		missing = append(missing, "content source")
	}
	if job.Renderer == nil {
		missing = append(missing, "renderer")
	}
	if job.Sink == nil {
		missing = append(missing, "artifact sink")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: job has no %s", domain.ErrInvalidArgument, strings.Join(missing, ", "))
	}

	if job.Plan == driving.PlanByGroup && job.GroupPattern != "" {
		if strings.Count(job.GroupPattern, "%s") != 1 || strings.ContainsAny(job.GroupPattern, `/\`) {
			return fmt.Errorf("%w: group pattern %q must contain one %%s and no path separator",
				domain.ErrInvalidArgument, job.GroupPattern)
		}
	}
	return nil
}

//nolint:gocognit // Orchestration function with necessary sequential steps
func (p *Pipeline) run(ctx context.Context, job driving.Job, summary *domain.RunSummary) error {
	// 1. Enumerate
	logger.Section("Enumerating")
	items, err := job.Enumerator.ListItems(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return p.cancelled(ctx, summary)
		}
		return &domain.PhaseError{
			Phase: domain.PhaseEnumerating,
			Err:   fmt.Errorf("%w: %w", domain.ErrEnumeration, err),
		}
	}

	summary.TotalItems = len(items)
	if len(items) == 0 {
		logger.Info("Nothing to do: enumeration returned no items")
		summary.State = domain.RunEmpty
		return nil
	}
	logger.Info("Enumerated %d items", len(items))

	// 2. Partition
	logger.Section("Partitioning")
	buckets, err := PlanBuckets(items, p.cfg, job)
	if err != nil {
		return &domain.PhaseError{Phase: domain.PhasePartitioning, Err: err}
	}

	summary.Buckets = make([]domain.BucketResult, len(buckets))
	for i, b := range buckets {
		summary.Buckets[i] = newBucketResult(b)
	}

	// 3. Process buckets strictly in order
	fetcher := NewFetcher(job.Source, RetryPolicyFrom(p.cfg), p.fetcherOpts...)
	for i, b := range buckets {
		if ctx.Err() != nil {
			return p.cancelled(ctx, summary)
		}

		logger.Section(fmt.Sprintf("Bucket %d/%d: %s (%d items)", b.Index, len(buckets), b.Name, b.Len()))
		res := &summary.Buckets[i]

		err := p.processBucket(ctx, fetcher, job, b, res)
		switch {
		case err == nil:
			logger.Info("Wrote %d/%d items to %s", res.Count(domain.ItemWritten), b.Len(), res.Location)
		case ctx.Err() != nil:
			return p.cancelled(ctx, summary)
		case errors.Is(err, domain.ErrDestinationUnusable):
			res.Error = bucketError(err)
			var phaseErr *domain.PhaseError
			if errors.As(err, &phaseErr) {
				return phaseErr
			}
			return &domain.PhaseError{Phase: domain.PhaseProcessing, Bucket: b.Index, Err: err}
		default:
			res.Error = bucketError(err)
			logger.Warn("Bucket %s aborted: %v", b.Name, err)
		}
	}

	summary.State = domain.RunCompleted
	return nil
}

// bucketError is the message recorded on a bucket result; the bucket and
// item are already implied by where it is recorded.
func bucketError(err error) string {
	var phaseErr *domain.PhaseError
	if errors.As(err, &phaseErr) {
		return phaseErr.Err.Error()
	}
	return err.Error()
}

func (p *Pipeline) cancelled(ctx context.Context, summary *domain.RunSummary) error {
	summary.State = domain.RunCancelled
	return fmt.Errorf("%w: %w", domain.ErrCancelled, context.Cause(ctx))
}

// processBucket writes one artifact. The artifact is committed only when the
// bucket completes; any other exit aborts it.
func (p *Pipeline) processBucket(
	ctx context.Context,
	fetcher *Fetcher,
	job driving.Job,
	b domain.Bucket,
	res *domain.BucketResult,
) error {
	w, err := job.Sink.Create(ctx, b.Name)
	if err != nil {
		return writeError(err)
	}

	agg := NewAggregationWriter(w, job.Renderer)
	defer agg.Abort() //nolint:errcheck // no-op after Commit

	next, stop := p.startFetches(ctx, fetcher, b.Items)
	defer stop()

	for i, ref := range b.Items {
		out := next(i)
		if out.Cancelled() {
			return out.Err
		}

		item := &res.Items[i]
		item.Attempts = out.Attempts

		if !out.OK() {
			item.Status = domain.ItemSkipped
			item.Reason = out.Err.Error()
			logger.Warn("Skipped %s (%s): %v", ref.Title, ref.ID, out.Err)
			continue
		}

		if err := agg.WriteItem(ref, out.Content); err != nil {
			item.Status = domain.ItemSkipped
			item.Reason = err.Error()

			var renderErr *RenderError
			if errors.As(err, &renderErr) {
				logger.Warn("Skipped %s (%s): %v", ref.Title, ref.ID, err)
				continue
			}
			return &domain.PhaseError{Phase: domain.PhaseProcessing, Bucket: b.Index, Item: ref.ID, Err: err}
		}

		item.Status = domain.ItemWritten
		logger.Debug("Wrote %s (%d bytes)", ref.ID, out.Content.Size())
	}

	if err := agg.Commit(); err != nil {
		return err
	}
	res.Location = agg.Location()
	res.Committed = true
	return nil
}

// startFetches returns an accessor yielding each item's outcome in order.
//
// With concurrency 1 each item is fetched when it is requested, so only one
// item is held at a time. Otherwise up to Concurrency fetches run ahead of the
// writer, bounded by a window of 2*Concurrency unconsumed results.
func (p *Pipeline) startFetches(
	ctx context.Context,
	fetcher *Fetcher,
	items []domain.ItemRef,
) (next func(int) FetchOutcome, stop func()) {
	if p.cfg.Concurrency <= 1 || len(items) <= 1 {
		return func(i int) FetchOutcome {
			return fetcher.Fetch(ctx, items[i])
		}, func() {}
	}

	gctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(gctx)
	g.SetLimit(p.cfg.Concurrency)

	slots := make([]chan FetchOutcome, len(items))
	for i := range slots {
		slots[i] = make(chan FetchOutcome, 1)
	}
	window := make(chan struct{}, 2*p.cfg.Concurrency)
	fed := make(chan struct{})

	go func() {
		defer close(fed)
		for i, ref := range items {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				for j := i; j < len(items); j++ {
					slots[j] <- FetchOutcome{Err: gctx.Err(), cancelled: true}
				}
				return
			}
			g.Go(func() error {
				slots[i] <- fetcher.Fetch(gctx, ref)
				return nil
			})
		}
	}()

	next = func(i int) FetchOutcome {
		out := <-slots[i]
		select {
		case <-window:
		default:
		}
		return out
	}
	stop = func() {
		cancel()
		<-fed
		_ = g.Wait()
	}
	return next, stop
}

func (p *Pipeline) persist(ctx context.Context, summary *domain.RunSummary) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(context.WithoutCancel(ctx), summary); err != nil {
		logger.Warn("Failed to record run %s: %v", summary.ID, err)
	}
}

func newBucketResult(b domain.Bucket) domain.BucketResult {
	items := make([]domain.ItemOutcome, len(b.Items))
	for i, ref := range b.Items {
		items[i] = domain.ItemOutcome{
			ID:     ref.ID,
			Title:  ref.Title,
			Status: domain.ItemNotAttempted,
		}
	}
	return domain.BucketResult{
		Index: b.Index,
		Name:  b.Name,
		Items: items,
	}
}
