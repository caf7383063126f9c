package relation

// Composite pairs a left node with a right mapper such that materializing
// the composite pipes the left's output through the mapper. Composites
// chain with Then without evaluating either side; evaluation happens only
// on Call.
type Composite struct {
	left  Node
	right Mapper
}

// Name returns the left node's name.
func (c *Composite) Name() string {
	return c.left.Name()
}

// Curried returns false.
func (c *Composite) Curried() bool {
	return false
}

// Graphed returns false.
func (c *Composite) Graphed() bool {
	return false
}

// Then extends the pipeline with a further mapper.
func (c *Composite) Then(m Mapper) *Composite {
	return &Composite{left: c, right: m}
}

// Call materializes the left side, applies the mapper and wraps the result
// in a loaded snapshot carrying the left side's provenance.
func (c *Composite) Call() (*Loaded, error) {
	loaded, err := c.left.Call()
	if err != nil {
		return nil, err
	}
	mapped, err := c.right.Map(loaded.Collect())
	if err != nil {
		return nil, err
	}
	return NewLoaded(mapped, loaded.Source()), nil
}

// Collect materializes the pipeline and returns the mapped tuples.
func (c *Composite) Collect() ([]Tuple, error) {
	loaded, err := c.Call()
	if err != nil {
		return nil, err
	}
	return loaded.Collect(), nil
}
