package relation

// Tuple is a raw or decoded row: a mapping from field name to value.
type Tuple map[string]any

// Dataset is the minimal interface a relation requires from its backing
// store: iteration and append. A relation holds a reference to its dataset
// but never owns its lifecycle. Adapter-specific operations belong on the
// adapter's concrete type, not here.
type Dataset interface {
	// Each yields every tuple in the dataset in its defined order. The
	// reference implementations preserve insertion order.
	Each(fn func(Tuple) error) error

	// Insert appends a tuple. No deduplication is applied.
	Insert(t Tuple) error
}

// Restrictable is an optional dataset capability: producing a derived
// dataset restricted to tuples whose field value is in the given set. How
// the restriction is executed is up to the dataset.
type Restrictable interface {
	Restrict(field string, values []any) Dataset
}

// Projectable is an optional dataset capability: producing a derived
// dataset limited to the given fields.
type Projectable interface {
	Project(fields ...string) Dataset
}

// restrictedDataset filters a base dataset client-side. It is the fallback
// used when the base does not implement Restrictable.
type restrictedDataset struct {
	base   Dataset
	field  string
	values []any
}

func (d *restrictedDataset) Each(fn func(Tuple) error) error {
	return d.base.Each(func(t Tuple) error {
		v, ok := t[d.field]
		if !ok {
			return nil
		}
		for _, want := range d.values {
			if v == want {
				return fn(t)
			}
		}
		return nil
	})
}

func (d *restrictedDataset) Insert(t Tuple) error {
	return d.base.Insert(t)
}

// projectedDataset limits tuples to a field subset client-side. It is the
// fallback used when the base does not implement Projectable.
type projectedDataset struct {
	base   Dataset
	fields []string
}

func (d *projectedDataset) Each(fn func(Tuple) error) error {
	return d.base.Each(func(t Tuple) error {
		out := make(Tuple, len(d.fields))
		for _, field := range d.fields {
			if v, ok := t[field]; ok {
				out[field] = v
			}
		}
		return fn(out)
	})
}

func (d *projectedDataset) Insert(t Tuple) error {
	return d.base.Insert(t)
}
