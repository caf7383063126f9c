package relation

import (
	"fmt"
	"sync"
)

// Mapper transforms a materialized tuple sequence into another. Mappers
// are the right-hand side of composite pipelines.
type Mapper interface {
	Map(tuples []Tuple) ([]Tuple, error)
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(tuples []Tuple) ([]Tuple, error)

// Map implements the Mapper interface.
func (f MapperFunc) Map(tuples []Tuple) ([]Tuple, error) {
	return f(tuples)
}

// MapperRegistry is an injectable registry of named output transforms.
// Relations consult it but never mutate it. The zero default is empty.
type MapperRegistry struct {
	mu      sync.RWMutex
	mappers map[string]Mapper
}

// NewMapperRegistry creates an empty mapper registry.
func NewMapperRegistry() *MapperRegistry {
	return &MapperRegistry{mappers: make(map[string]Mapper)}
}

// Register registers a mapper under a name.
func (r *MapperRegistry) Register(name string, m Mapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMapper, name)
	}
	r.mappers[name] = m
	return nil
}

// Get looks up a mapper by name.
func (r *MapperRegistry) Get(name string) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.mappers[name]
	return m, exists
}

// Len returns the number of registered mappers.
func (r *MapperRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.mappers)
}
