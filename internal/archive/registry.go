package archive

import (
	"fmt"
	"sync"
)

// Registry is the host's live plugin registry. Records are generic JSON
// objects so plugins of any shape can be described, including the stub
// descriptors declared in configuration.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	records map[string]map[string]any
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]map[string]any)}
}

// List returns the names of all loaded plugins in load order.
func (r *Registry) List() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names, nil
}

// Info returns a copy of a plugin's registry record.
func (r *Registry) Info(name string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[name]
	if !ok {
		return nil, fmt.Errorf("unknown plugin: %s", name)
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, nil
}

// Add inserts a record; the descriptor must carry an "ID" key.
func (r *Registry) Add(record map[string]any) error {
	name, ok := record["ID"].(string)
	if !ok || name == "" {
		return fmt.Errorf("plugin record without an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[name]; exists {
		return fmt.Errorf("plugin already registered: %s", name)
	}
	r.order = append(r.order, name)
	r.records[name] = record
	return nil
}

// Remove drops a record, e.g. after a failed plugin initialization.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[name]; !exists {
		return
	}
	delete(r.records, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) set(name, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[name]; ok {
		record[key] = value
	}
}
