package relation

import "fmt"

// Curried is a view awaiting the remainder of its positional arguments.
// It can be passed around as a value, notably as a graph child, and
// resolves to a fresh node once saturated.
type Curried struct {
	relation *Relation
	view     View
	args     []any
}

func newCurried(r *Relation, view View, args []any) *Curried {
	held := make([]any, len(args))
	copy(held, args)
	return &Curried{relation: r, view: view, args: held}
}

// Name returns the view's name.
func (c *Curried) Name() string {
	return c.view.Name
}

// Curried returns true.
func (c *Curried) Curried() bool {
	return true
}

// Graphed returns false.
func (c *Curried) Graphed() bool {
	return false
}

// Relation returns the underlying relation.
func (c *Curried) Relation() *Relation {
	return c.relation
}

// Remaining returns how many arguments the view still needs.
func (c *Curried) Remaining() int {
	return c.view.Arity - len(c.args)
}

// Apply supplies further arguments. Below the view's arity the result is
// another curried node; at arity the view function is invoked and its node
// returned. The receiver is never mutated.
func (c *Curried) Apply(args ...any) (Node, error) {
	all := make([]any, 0, len(c.args)+len(args))
	all = append(all, c.args...)
	all = append(all, args...)

	if len(all) > c.view.Arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, c.view.Name, c.view.Arity, len(all))
	}
	if len(all) < c.view.Arity {
		return newCurried(c.relation, c.view, all), nil
	}
	return c.view.Fn(c.relation, all...)
}

// Call fails: a curried node is by definition unsaturated. Apply the
// remaining arguments first.
func (c *Curried) Call() (*Loaded, error) {
	return nil, fmt.Errorf("%w: %s needs %d more", ErrUnsatisfiedView, c.view.Name, c.Remaining())
}
