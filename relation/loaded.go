package relation

// Loaded is the terminal, materialized snapshot of a relation: an
// immutable ordered sequence of decoded tuples plus the relation it was
// produced from. It never touches the backing dataset; repeated calls
// return the same cached sequence.
type Loaded struct {
	collection []Tuple
	source     *Relation
}

// NewLoaded wraps an already-decoded tuple sequence. The source is
// informational provenance only and may be nil.
func NewLoaded(tuples []Tuple, source *Relation) *Loaded {
	return &Loaded{collection: tuples, source: source}
}

// Name returns the source relation's name, or "loaded" without one.
func (l *Loaded) Name() string {
	if l.source == nil {
		return "loaded"
	}
	return l.source.Name()
}

// Source returns the relation this snapshot was produced from. It is never
// used to re-trigger access.
func (l *Loaded) Source() *Relation {
	return l.source
}

// Collect returns the cached decoded sequence. Callers must treat it as
// read-only.
func (l *Loaded) Collect() []Tuple {
	return l.collection
}

// Each drives fn over the cached sequence in order.
func (l *Loaded) Each(fn func(Tuple) error) error {
	for _, t := range l.collection {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

// Call returns the snapshot itself; materialization is idempotent here.
func (l *Loaded) Call() (*Loaded, error) {
	return l, nil
}

// Len returns the number of tuples.
func (l *Loaded) Len() int {
	return len(l.collection)
}

// Empty returns true if the snapshot holds no tuples.
func (l *Loaded) Empty() bool {
	return len(l.collection) == 0
}

// Pluck extracts one field from every tuple, in order. Tuples missing the
// field are skipped.
func (l *Loaded) Pluck(field string) []any {
	values := make([]any, 0, len(l.collection))
	for _, t := range l.collection {
		if v, ok := t[field]; ok {
			values = append(values, v)
		}
	}
	return values
}
