package driven

// ConfigStore holds flat dotted keys such as "pipeline.buckets".
// Typed getters return the zero value for a missing key or a value of the
// wrong type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string

	// GetInt accepts any integer representation the backend produces.
	GetInt(key string) int

	// GetFloat widens integers, so "2" and "2.0" read the same.
	GetFloat(key string) float64

	// Set changes a value. File-backed stores write it through.
	Set(key string, value any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	Save() error
	Load() error

	// Path describes where values are kept, e.g. the TOML file.
	Path() string
}
