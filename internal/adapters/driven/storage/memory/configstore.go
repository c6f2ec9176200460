package memory

import (
	"github.com/custodia-labs/lectern/internal/adapters/driven/config/flat"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory only.
type ConfigStore struct {
	*flat.Values
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{Values: flat.New()}
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(func(m map[string]any) error {
		m[key] = value
		return nil
	})
}

// Delete removes key. Missing keys are ignored.
func (s *ConfigStore) Delete(key string) error {
	return s.Update(func(m map[string]any) error {
		delete(m, key)
		return nil
	})
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path identifies the store in diagnostics.
func (s *ConfigStore) Path() string { return ":memory:" }
