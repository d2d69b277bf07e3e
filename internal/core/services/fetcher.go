package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/logger"
)

// RetryPolicy bounds how often and how patiently an item is re-fetched.
type RetryPolicy struct {
	// MaxAttempts includes the first attempt.
	MaxAttempts int
	// Base is raised to the attempt number.
	Base float64
	// Unit is the length of one delay unit.
	Unit time.Duration
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
}

// RetryPolicyFrom extracts the retry settings from a pipeline config.
func RetryPolicyFrom(cfg domain.PipelineConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Base:        cfg.BackOffBase,
		Unit:        cfg.BackOffUnit,
		MaxDelay:    cfg.MaxBackOff,
	}
}

// Delay returns the wait after the given failed attempt: Unit * Base^attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.Unit) * math.Pow(p.Base, float64(attempt))
	if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
		return p.MaxDelay
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not convert back.
	if d >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// RetryEvent is emitted before every wait between attempts.
type RetryEvent struct {
	Ref     domain.ItemRef
	Attempt int
	Wait    time.Duration
	Err     error
}

// FetchOutcome is either content or a permanent failure.
type FetchOutcome struct {
	Content  *domain.Content
	Err      error
	Attempts int

	cancelled bool
}

// OK reports whether content was fetched.
func (o FetchOutcome) OK() bool {
	return o.Err == nil
}

// Cancelled reports whether the fetch stopped because its context ended.
// A cancelled fetch is not an item failure.
func (o FetchOutcome) Cancelled() bool {
	return o.cancelled
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithSleep replaces the wait between attempts. Tests use it to avoid real delays.
func WithSleep(sleep SleepFunc) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// WithRetryObserver registers a callback for retry events.
// With concurrency > 1 the callback is invoked from several goroutines.
func WithRetryObserver(fn func(RetryEvent)) FetcherOption {
	return func(f *Fetcher) {
		f.onRetry = fn
	}
}

// Fetcher reads item content, retrying transient failures.
type Fetcher struct {
	source  driven.ContentSource
	policy  RetryPolicy
	sleep   SleepFunc
	onRetry func(RetryEvent)
}

// NewFetcher creates a fetcher over source.
func NewFetcher(source driven.ContentSource, policy RetryPolicy, opts ...FetcherOption) *Fetcher {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	f := &Fetcher{
		source: source,
		policy: policy,
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the content of ref or a definitive failure.
//
// Transient errors are retried up to MaxAttempts in total with exponential
// back-off. Any other error fails immediately. Fetch never panics past the
// caller and never reports exhausted retries as success.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.ItemRef) FetchOutcome {
	var lastErr error

	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return FetchOutcome{Err: err, Attempts: attempt - 1, cancelled: true}
		}

		content, err := f.source.Read(ctx, ref)
		if err == nil {
			if content == nil {
				content = &domain.Content{}
			}
			return FetchOutcome{Content: content, Attempts: attempt}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return FetchOutcome{Err: ctxErr, Attempts: attempt, cancelled: true}
		}

		if !domain.IsTransient(err) {
			return FetchOutcome{
				Err:      fmt.Errorf("%w: %w", domain.ErrPermanent, err),
				Attempts: attempt,
			}
		}

		lastErr = err
		if attempt == f.policy.MaxAttempts {
			break
		}

		wait := f.policy.Delay(attempt)
		logger.Debug("transient failure on %s, retry %d/%d in %s: %v",
			ref.ID, attempt, f.policy.MaxAttempts, wait, err)
		if f.onRetry != nil {
			f.onRetry(RetryEvent{Ref: ref, Attempt: attempt, Wait: wait, Err: err})
		}

		if err := f.sleep(ctx, wait); err != nil {
			return FetchOutcome{Err: err, Attempts: attempt, cancelled: true}
		}
	}

	return FetchOutcome{
		Err:      fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, f.policy.MaxAttempts, lastErr),
		Attempts: f.policy.MaxAttempts,
	}
}
