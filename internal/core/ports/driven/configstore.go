package driven

// ConfigStore provides persistent key-value configuration.
// Backed by a TOML file in the Lectern config directory.
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 when unset.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false when unset.
	GetBool(key string) bool

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Delete removes a key and persists the change.
	Delete(key string) error

	// Keys returns all configured keys, sorted.
	Keys() []string
}
