package driven

// ConfigStore is a flat key/value view of the configuration file. Keys are
// dotted ("embedding.model"). Typed getters return the zero value for
// missing keys and for values of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integers.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set and Delete persist before returning. Deleting a missing key is
	// not an error.
	Set(key string, value any) error
	Delete(key string) error

	// Keys returns the stored keys, sorted.
	Keys() []string

	Save() error
	Load() error

	// Path locates the backing file for diagnostics.
	Path() string
}
