package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
)

func testPolicy(max int) RetryPolicy {
	return RetryPolicy{MaxAttempts: max, Base: 2, Unit: time.Second}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Base: 2, Unit: time.Second}

	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
}

func TestRetryPolicy_Delay_Capped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Base: 2, Unit: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 5*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(200))
}

func TestRetryPolicy_Delay_Overflow(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Base: 10, Unit: time.Hour}

	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(100))
}

func TestRetryPolicy_Delay_LargeAttemptHonoursCap(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Base: 2, Unit: time.Second, MaxDelay: time.Minute}

	for _, attempt := range []int{40, 63, 64, 70, 1000} {
		assert.Equal(t, time.Minute, p.Delay(attempt), "attempt %d", attempt)
	}
}

func TestRetryPolicyFrom(t *testing.T) {
	cfg := domain.DefaultPipelineConfig()
	cfg.MaxBackOff = time.Minute

	p := RetryPolicyFrom(cfg)

	assert.Equal(t, cfg.MaxAttempts, p.MaxAttempts)
	assert.InDelta(t, cfg.BackOffBase, p.Base, 1e-9)
	assert.Equal(t, cfg.BackOffUnit, p.Unit)
	assert.Equal(t, time.Minute, p.MaxDelay)
}

func TestFetcher_SuccessFirstAttempt(t *testing.T) {
	source := newFakeSource()
	sleeper := &recordingSleep{}
	f := NewFetcher(source, testPolicy(3), WithSleep(sleeper.sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.True(t, out.OK())
	assert.Equal(t, "body-1", string(out.Content.Data))
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, sleeper.recorded())
}

func TestFetcher_RetriesTransientThenSucceeds(t *testing.T) {
	source := newFakeSource().failWith("1", transient("503"), transient("503"))
	sleeper := &recordingSleep{}
	f := NewFetcher(source, testPolicy(3), WithSleep(sleeper.sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.True(t, out.OK())
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, source.callCount("1"))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.recorded())
}

func TestFetcher_ExhaustsRetries(t *testing.T) {
	source := newFakeSource().failWith("1", transient("a"), transient("b"), transient("c"), transient("d"))
	sleeper := &recordingSleep{}
	f := NewFetcher(source, testPolicy(3), WithSleep(sleeper.sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.False(t, out.OK())
	assert.False(t, out.Cancelled())
	assert.ErrorIs(t, out.Err, domain.ErrRetriesExhausted)
	assert.Equal(t, "retries exhausted after 3 attempts: transient: c", out.Err.Error())
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, source.callCount("1"), "never more than MaxAttempts reads")
	assert.Len(t, sleeper.recorded(), 2, "no wait after the final attempt")
}

func TestFetcher_PermanentErrorNotRetried(t *testing.T) {
	notFound := errors.New("404 not found")
	source := newFakeSource().failWith("1", notFound)
	sleeper := &recordingSleep{}
	f := NewFetcher(source, testPolicy(5), WithSleep(sleeper.sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.False(t, out.OK())
	assert.ErrorIs(t, out.Err, domain.ErrPermanent)
	assert.ErrorIs(t, out.Err, notFound)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, source.callCount("1"))
	assert.Empty(t, sleeper.recorded())
}

func TestFetcher_RateLimitIsTransient(t *testing.T) {
	source := newFakeSource().failWith("1", domain.ErrRateLimited)
	f := NewFetcher(source, testPolicy(2), WithSleep((&recordingSleep{}).sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.True(t, out.OK())
	assert.Equal(t, 2, out.Attempts)
}

func TestFetcher_MaxAttemptsFloorIsOne(t *testing.T) {
	source := newFakeSource().failWith("1", transient("x"))
	f := NewFetcher(source, testPolicy(0), WithSleep((&recordingSleep{}).sleep))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	assert.ErrorIs(t, out.Err, domain.ErrRetriesExhausted)
	assert.Equal(t, 1, source.callCount("1"))
}

func TestFetcher_NilContentBecomesEmpty(t *testing.T) {
	f := NewFetcher(nilSource{}, testPolicy(1))

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.True(t, out.OK())
	require.NotNil(t, out.Content)
	assert.Zero(t, out.Content.Size())
}

func TestFetcher_RetryObserver(t *testing.T) {
	source := newFakeSource().failWith("1", transient("first"))
	var events []RetryEvent
	f := NewFetcher(source, testPolicy(3),
		WithSleep((&recordingSleep{}).sleep),
		WithRetryObserver(func(ev RetryEvent) { events = append(events, ev) }),
	)

	out := f.Fetch(context.Background(), domain.ItemRef{ID: "1"})

	require.True(t, out.OK())
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].Ref.ID)
	assert.Equal(t, 1, events[0].Attempt)
	assert.Equal(t, 2*time.Second, events[0].Wait)
	assert.True(t, domain.IsTransient(events[0].Err))
	assert.ErrorContains(t, events[0].Err, "first")
}

func TestFetcher_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := newFakeSource()
	f := NewFetcher(source, testPolicy(3))

	out := f.Fetch(ctx, domain.ItemRef{ID: "1"})

	assert.True(t, out.Cancelled())
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Zero(t, out.Attempts)
	assert.Zero(t, source.callCount("1"))
}

func TestFetcher_CancelledDuringBackOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := newFakeSource().failWith("1", transient("a"), transient("b"))
	f := NewFetcher(source, testPolicy(3), WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	out := f.Fetch(ctx, domain.ItemRef{ID: "1"})

	assert.True(t, out.Cancelled())
	assert.False(t, out.OK())
	assert.Equal(t, 1, source.callCount("1"))
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

type nilSource struct{}

func (nilSource) Read(context.Context, domain.ItemRef) (*domain.Content, error) {
	return nil, nil
}
