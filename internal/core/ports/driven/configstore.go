package driven

// ConfigStore holds raw configuration values under dotted keys such as
// "chunking.size". Values keep the type the backing format decoded them
// as (TOML integers arrive as int64); interpretation is left to callers.
type ConfigStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (any, bool)

	// Set stores value under key. File-backed stores write through.
	Set(key string, value any) error

	// Delete removes key. Missing keys are ignored.
	Delete(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Save writes the current values to the backing store.
	Save() error

	// Load replaces the current values with those in the backing store.
	Load() error

	// Path describes where values are kept.
	Path() string
}
