// Package flat keeps configuration as a map of dotted keys ("llm.model")
// with typed, conversion-tolerant getters. Both config stores build on it.
package flat

import (
	"maps"
	"math"
	"slices"
	"sync"
)

// Values is a concurrency-safe map of dotted keys.
type Values struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty set of values.
func New() *Values {
	return &Values{data: make(map[string]any)}
}

// Get returns the raw value for key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.data[key]
	return val, ok
}

// GetString returns "" for missing or non-string values.
func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt accepts any integer type and integral floats.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

// GetFloat widens integers, so "temperature = 0" reads as 0.0.
func (v *Values) GetFloat(key string) float64 {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// GetBool returns false for missing or non-bool values.
func (v *Values) GetBool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// Keys returns the stored keys, sorted.
func (v *Values) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Sorted(maps.Keys(v.data))
}

// Update runs fn on a copy of the values and keeps the copy only when fn
// succeeds. Updates are serialised, so fn may persist the copy.
func (v *Values) Update(fn func(map[string]any) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := maps.Clone(v.data)
	if err := fn(next); err != nil {
		return err
	}
	v.data = next
	return nil
}

// Replace swaps in data wholesale. A nil map clears the values.
func (v *Values) Replace(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	v.mu.Lock()
	v.data = data
	v.mu.Unlock()
}
