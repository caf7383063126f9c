package memory

import "sync"

// Storage is a thread-safe registry of named datasets. It is safe for
// concurrent creation and lookup from multiple goroutines.
type Storage struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{datasets: make(map[string]*Dataset)}
}

// CreateDataset always installs a fresh empty dataset under the name,
// overwriting any prior dataset and its tuples. Only the registry shape is
// idempotent, not the data.
func (s *Storage) CreateDataset(name string) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := NewDataset()
	s.datasets[name] = ds
	return ds
}

// Has returns true if a dataset with the name exists.
func (s *Storage) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.datasets[name]
	return exists
}

// Get returns the named dataset, or nil if it does not exist.
func (s *Storage) Get(name string) *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.datasets[name]
}

// Size returns the number of registered datasets.
func (s *Storage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.datasets)
}

// getOrCreate returns the named dataset, installing a fresh one under a
// single lock acquisition when it does not exist yet. created reports
// which path was taken.
func (s *Storage) getOrCreate(name string, created *bool) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, exists := s.datasets[name]; exists {
		return ds
	}
	ds := NewDataset()
	s.datasets[name] = ds
	*created = true
	return ds
}

// Names returns the registered dataset names in unspecified order.
func (s *Storage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	return names
}
