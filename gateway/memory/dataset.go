// Package memory provides the reference in-memory gateway: a thread-safe
// registry of ordered tuple datasets. It has no schema awareness; coercion
// happens entirely in the relation layer above it.
package memory

import (
	"sync"

	"github.com/conduit-lang/relata/relation"
)

// Dataset is an ordered, mutex-guarded tuple sequence. Iteration reflects
// insertion order; Insert appends with no deduplication.
type Dataset struct {
	mu     sync.RWMutex
	tuples []relation.Tuple
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Each iterates a snapshot of the dataset in insertion order. Appends that
// happen mid-iteration are not observed.
func (d *Dataset) Each(fn func(relation.Tuple) error) error {
	d.mu.RLock()
	snapshot := d.tuples
	d.mu.RUnlock()

	for _, t := range snapshot {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

// Insert appends a tuple.
func (d *Dataset) Insert(t relation.Tuple) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tuples = append(d.tuples, t)
	return nil
}

// Len returns the number of tuples.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.tuples)
}

// Restrict returns a derived dataset holding the tuples whose field value
// is in the given set. The derived dataset is detached: it does not
// observe later inserts on the original.
func (d *Dataset) Restrict(field string, values []any) relation.Dataset {
	matched := NewDataset()
	_ = d.Each(func(t relation.Tuple) error {
		v, ok := t[field]
		if !ok {
			return nil
		}
		for _, want := range values {
			if v == want {
				matched.tuples = append(matched.tuples, t)
				return nil
			}
		}
		return nil
	})
	return matched
}

// Project returns a derived dataset limited to the given fields.
func (d *Dataset) Project(fields ...string) relation.Dataset {
	projected := NewDataset()
	_ = d.Each(func(t relation.Tuple) error {
		out := make(relation.Tuple, len(fields))
		for _, field := range fields {
			if v, ok := t[field]; ok {
				out[field] = v
			}
		}
		projected.tuples = append(projected.tuples, out)
		return nil
	})
	return projected
}
