package relation

import (
	"fmt"

	"github.com/conduit-lang/relata/schema"
)

// ViewFunc is the body of a named view: given the relation and the view's
// full argument list it produces a derived node.
type ViewFunc func(r *Relation, args ...any) (Node, error)

// View is a named, possibly parametrized derived relation. Attributes, when
// set, name the projection the view's schema variant exposes. A view with
// non-zero arity resolves to a curried node until all arguments are
// supplied.
type View struct {
	Name       string
	Arity      int
	Attributes []string
	Fn         ViewFunc
}

// Definition is the data-driven description of a relation: its name,
// schema, named views and mapper registry. Definitions are plain values;
// relation instances are produced from them with Build.
type Definition struct {
	Name    string
	Schema  *schema.Schema
	Views   map[string]View
	Mappers *MapperRegistry
}

// Build constructs a relation over the given dataset. The definition's
// schema is finalized on first build; a nil mapper registry defaults to an
// empty one.
func (d Definition) Build(ds Dataset) (*Relation, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, d.Name)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("relation definition requires a name")
	}
	if d.Mappers == nil {
		d.Mappers = NewMapperRegistry()
	}
	if d.Schema != nil && !d.Schema.Finalized() {
		d.Schema.Finalize()
	}
	return build(d, ds, map[string]any{}), nil
}
