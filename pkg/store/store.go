// Package store persists the live form state between sessions. The contract
// is deliberately loose: a single serialized mapping under one fixed key,
// loaded best-effort (failures degrade to an empty mapping) and written at
// most once per field-change event.
package store

import (
	"context"
	"sync"
)

// FormValuesKey is the fixed identifier the form state is stored under.
const FormValuesKey = "dft_form_values_v1"

// Store loads and saves the form-state mapping.
type Store interface {
	// Load returns the persisted mapping, or an empty mapping when nothing
	// usable is stored.
	Load(ctx context.Context) (map[string]any, error)
	// Save replaces the persisted mapping.
	Save(ctx context.Context, values map[string]any) error
}

// Memory is an in-process Store for tests and embedded use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]any, len(m.values))
	for key, value := range m.values {
		out[key] = value
	}
	return out, nil
}

func (m *Memory) Save(_ context.Context, values map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]any, len(values))
	for key, value := range values {
		next[key] = value
	}
	m.values = next
	return nil
}
