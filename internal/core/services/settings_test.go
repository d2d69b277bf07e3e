package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quire/internal/core/domain"
)

func TestSettingsService_Pipeline_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	cfg, err := service.Pipeline()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPipelineConfig(), cfg)
}

func TestSettingsService_Pipeline_OverlaysStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyMaxAttempts, int64(5))
	_ = store.Set(KeyBackOffBase, int64(3))
	_ = store.Set(KeyBackOffUnit, "250ms")
	_ = store.Set(KeyMaxBackOff, "10s")
	_ = store.Set(KeyConcurrency, 4)
	_ = store.Set(KeyBuckets, 6)

	cfg, err := NewSettingsService(store).Pipeline()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.InDelta(t, 3.0, cfg.BackOffBase, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.BackOffUnit)
	assert.Equal(t, 10*time.Second, cfg.MaxBackOff)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 6, cfg.BucketCount)
	assert.Equal(t, domain.DefaultOutputPattern, cfg.OutputPattern)
}

func TestSettingsService_Pipeline_BadDuration(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyBackOffUnit, "soon")

	_, err := NewSettingsService(store).Pipeline()

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSettingsService_SetAndGet(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set(KeyMaxAttempts, "7"))
	require.NoError(t, service.Set(KeyBackOffBase, "1.5"))
	require.NoError(t, service.Set(KeyBackOffUnit, "2s"))
	require.NoError(t, service.Set(KeyGitHubRepo, "acme/widgets"))

	val, ok, err := service.Get(KeyMaxAttempts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", val)

	val, _, _ = service.Get(KeyBackOffBase)
	assert.Equal(t, "1.5", val)

	val, _, _ = service.Get(KeyBackOffUnit)
	assert.Equal(t, "2s", val)
	assert.Equal(t, "2s", store.GetString(KeyBackOffUnit), "durations are stored as strings")

	assert.Equal(t, "acme/widgets", service.String(KeyGitHubRepo))
}

func TestSettingsService_Get_Unset(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	val, ok, err := service.Get(KeyGitHubLabel)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestSettingsService_UnknownKey(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	_, _, err := service.Get("search.mode")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = service.Set("search.mode", "hybrid")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSettingsService_Set_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{KeyMaxAttempts, "three"},
		{KeyMaxAttempts, "0"},
		{KeyConcurrency, "-1"},
		{KeyBackOffBase, "0.5"},
		{KeyBackOffUnit, "-1s"},
		{KeyMaxBackOff, "forever"},
		{KeyBuckets, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			_, stored := store.Get(tt.key)
			assert.False(t, stored)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()

	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, KeyMaxAttempts)
	assert.Contains(t, keys, KeyDriveRootFolder)
}

func TestSettingsService_Unset(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	require.NoError(t, svc.Set(KeyMaxAttempts, "5"))

	require.NoError(t, svc.Unset(KeyMaxAttempts))

	_, ok, err := svc.Get(KeyMaxAttempts)
	require.NoError(t, err)
	assert.False(t, ok)

	cfg, err := svc.Pipeline()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxAttempts, cfg.MaxAttempts)

	assert.ErrorIs(t, svc.Unset("no.such.key"), domain.ErrInvalidArgument)
}
