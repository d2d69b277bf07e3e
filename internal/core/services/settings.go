package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBuckets          = "pipeline.buckets"
	KeyMaxAttempts      = "pipeline.max_attempts"
	KeyBackOffBase      = "pipeline.back_off_base"
	KeyBackOffUnit      = "pipeline.back_off_unit"
	KeyMaxBackOff       = "pipeline.max_back_off"
	KeyConcurrency      = "pipeline.concurrency"
	KeyOutputDir        = "output.dir"
	KeyGitHubRepo       = "github.repo"
	KeyGitHubLabel      = "github.label"
	KeyGitHubState      = "github.state"
	KeyGitHubToken      = "github.token"
	KeyDriveRootFolder  = "drive.root_folder_id"
	KeyDriveSecrets     = "drive.client_secrets"
	KeyDriveTokenFile   = "drive.token_file"
	KeyDriveRequestRate = "drive.requests_per_second"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindDuration
)

// setting describes how a key is parsed and, for pipeline keys, where it lands
// in the pipeline config.
type setting struct {
	kind  settingKind
	apply func(cfg *domain.PipelineConfig, v any)
}

var settingDefs = map[string]setting{
	KeyBuckets: {kind: kindInt, apply: func(c *domain.PipelineConfig, v any) {
		c.BucketCount = v.(int)
	}},
	KeyMaxAttempts: {kind: kindInt, apply: func(c *domain.PipelineConfig, v any) {
		c.MaxAttempts = v.(int)
	}},
	KeyBackOffBase: {kind: kindFloat, apply: func(c *domain.PipelineConfig, v any) {
		c.BackOffBase = v.(float64)
	}},
	KeyBackOffUnit: {kind: kindDuration, apply: func(c *domain.PipelineConfig, v any) {
		c.BackOffUnit = v.(time.Duration)
	}},
	KeyMaxBackOff: {kind: kindDuration, apply: func(c *domain.PipelineConfig, v any) {
		c.MaxBackOff = v.(time.Duration)
	}},
	KeyConcurrency: {kind: kindInt, apply: func(c *domain.PipelineConfig, v any) {
		c.Concurrency = v.(int)
	}},
	KeyOutputDir:        {kind: kindString},
	KeyGitHubRepo:       {kind: kindString},
	KeyGitHubLabel:      {kind: kindString},
	KeyGitHubState:      {kind: kindString},
	KeyGitHubToken:      {kind: kindString},
	KeyDriveRootFolder:  {kind: kindString},
	KeyDriveSecrets:     {kind: kindString},
	KeyDriveTokenFile:   {kind: kindString},
	KeyDriveRequestRate: {kind: kindFloat},
}

// SettingsService manages persisted settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Pipeline returns the defaults overlaid with every stored pipeline key.
func (s *SettingsService) Pipeline() (domain.PipelineConfig, error) {
	cfg := domain.DefaultPipelineConfig()
	for key, def := range settingDefs {
		if def.apply == nil {
			continue
		}
		v, ok, err := s.typed(key, def.kind)
		if err != nil {
			return cfg, err
		}
		if ok {
			def.apply(&cfg, v)
		}
	}
	return cfg, nil
}

// Get returns the stored value of a known key.
func (s *SettingsService) Get(key string) (string, bool, error) {
	def, ok := settingDefs[key]
	if !ok {
		return "", false, unknownKey(key)
	}
	v, ok, err := s.typed(key, def.kind)
	if err != nil || !ok {
		return "", ok, err
	}
	return format(v), true, nil
}

// Set parses value for key and persists it. Pipeline keys are rejected when
// they would make the pipeline config invalid.
func (s *SettingsService) Set(key, value string) error {
	def, ok := settingDefs[key]
	if !ok {
		return unknownKey(key)
	}

	v, err := parse(def.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, key, err)
	}

	if def.apply != nil {
		cfg, err := s.Pipeline()
		if err != nil {
			return err
		}
		def.apply(&cfg, v)
		// The bucket count and pattern are per-run; check everything else.
		cfg.OutputPattern = domain.DefaultOutputPattern
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Durations are stored as strings so the TOML file stays readable.
	if d, isDur := v.(time.Duration); isDur {
		v = d.String()
	}
	return s.configStore.Set(key, v)
}

// Unset removes a stored value so the built-in default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingDefs[key]; !ok {
		return unknownKey(key)
	}
	return s.configStore.Delete(key)
}

// Keys returns every recognised key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingDefs))
	for k := range settingDefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a stored string key, or the empty string.
func (s *SettingsService) String(key string) string {
	return s.configStore.GetString(key)
}

// Float returns a stored float key, or zero.
func (s *SettingsService) Float(key string) float64 {
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) typed(key string, kind settingKind) (any, bool, error) {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return nil, false, nil
	}

	switch kind {
	case kindInt:
		return s.configStore.GetInt(key), true, nil
	case kindFloat:
		return s.configStore.GetFloat(key), true, nil
	case kindDuration:
		str, isStr := raw.(string)
		if !isStr {
			return nil, false, fmt.Errorf("%w: %s: expected a duration string", domain.ErrInvalidArgument, key)
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: %w", domain.ErrInvalidArgument, key, err)
		}
		return d, true, nil
	default:
		return s.configStore.GetString(key), true, nil
	}
}

func parse(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		return time.ParseDuration(value)
	default:
		return value, nil
	}
}

func format(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func unknownKey(key string) error {
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidArgument, key)
}
