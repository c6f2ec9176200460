package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lectern/internal/adapters/driven/config/flat"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the configuration file name inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore persists settings as TOML. Keys are flat in memory
// ("llm.model") and written back as nested tables ([llm] model = ...).
// Every Set and Delete rewrites the file; a failed write leaves the
// in-memory values unchanged.
type ConfigStore struct {
	*flat.Values
	filePath string
}

// NewConfigStore opens configDir/config.toml, creating the directory.
// An empty configDir means ~/.lectern.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lectern")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		Values:   flat.New(),
		filePath: filepath.Join(configDir, ConfigFile),
	}
	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.filePath, err)
	}
	return s, nil
}

// Set stores value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("config key must not be empty")
	}
	return s.Update(func(m map[string]any) error {
		m[key] = value
		return s.write(m)
	})
}

// Delete removes key and rewrites the file. Missing keys are ignored.
func (s *ConfigStore) Delete(key string) error {
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.Update(func(m map[string]any) error {
		delete(m, key)
		return s.write(m)
	})
}

// Save rewrites the file from the current values.
func (s *ConfigStore) Save() error {
	return s.Update(s.write)
}

// Load replaces the values with the file's contents. A missing file is an
// empty configuration.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.Replace(flattenMap(loaded, ""))
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func (s *ConfigStore) write(values map[string]any) error {
	nested, err := nestMap(values)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(nested)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nestMap is the inverse of flattenMap. It fails when a key is both a value
// and a table ("llm" and "llm.model").
func nestMap(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
			node = next
		}

		leaf := parts[len(parts)-1]
		if _, isTable := node[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q conflicts with table of the same name", key)
		}
		node[leaf] = flat[key]
	}

	return root, nil
}
