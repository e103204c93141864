package utils

import (
	"fmt"
	"sort"
	"sync"
)

// RegistryValidator checks a key-value pair before it is registered.
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// Registry is a thread-safe keyed registry with optional validation.
type Registry[K comparable, V any] struct {
	mu        sync.RWMutex
	items     map[K]V
	name      string
	validator RegistryValidator[K, V]
}

// NewRegistry creates an empty registry. name prefixes validation errors.
func NewRegistry[K comparable, V any](name string, validators ...RegistryValidator[K, V]) *Registry[K, V] {
	return &Registry[K, V]{
		items:     make(map[K]V),
		name:      name,
		validator: ChainValidators(validators...),
	}
}

// Register adds an item to the registry
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validator(key, value, r.items); err != nil {
		return fmt.Errorf("%s registry: %w", r.name, err)
	}
	r.items[key] = value
	return nil
}

func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

func (r *Registry[K, V]) Has(key K) bool {
	_, exists := r.Get(key)
	return exists
}

// List returns all keys, sorted by their string form.
func (r *Registry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

func (r *Registry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Delete removes an item and reports whether it existed.
func (r *Registry[K, V]) Delete(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; !exists {
		return false
	}
	delete(r.items, key)
	return true
}

// NotEmptyKeyValidator rejects empty string keys.
func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// NoDuplicateValidator rejects keys that are already registered.
func NoDuplicateValidator[K comparable, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, exists := existing[key]; exists {
			return fmt.Errorf("%s '%v' is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first error.
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if validator == nil {
				continue
			}
			if err := validator(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
