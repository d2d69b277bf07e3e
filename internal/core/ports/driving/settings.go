package driving

import "github.com/custodia-labs/quire/internal/core/domain"

// SettingsService manages persisted settings.
type SettingsService interface {
	// Pipeline returns the built-in defaults overlaid with stored values.
	Pipeline() (domain.PipelineConfig, error)

	// Get returns the stored value of a known key, formatted as a string.
	Get(key string) (string, bool, error)

	// Set parses and stores a value for a known key.
	Set(key, value string) error

	// Unset removes a stored value for a known key.
	Unset(key string) error

	// Keys returns every recognised key in sorted order.
	Keys() []string
}
