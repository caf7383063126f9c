// Package relation provides the core relation abstraction: a schema-aware,
// composable view over an arbitrary dataset. Relations decode raw tuples
// through their schema on read, normalize tuples on write, and compose into
// curried views, mapper pipelines, and multi-relation graphs that
// materialize without per-tuple access patterns.
package relation

import (
	"fmt"
	"sync"

	"github.com/conduit-lang/relata/schema"
)

// Materializable is the capability of producing a loaded, immutable
// snapshot.
type Materializable interface {
	Call() (*Loaded, error)
}

// Node is a relation-shaped value: anything that can be materialized and
// named. Relation, Curried, Composite, Graph and Loaded all qualify.
type Node interface {
	Materializable
	Name() string
}

// Composable is the capability of extending a pipeline with a mapper
// without evaluating anything.
type Composable interface {
	Then(m Mapper) *Composite
}

// Relation wraps a dataset, a schema and a mapper registry. It decodes
// every tuple read from the dataset through the schema's read coercion and
// normalizes tuples on insert through the write coercion. Both coercion
// functions are derived once at construction and are unaffected by later
// dataset mutation.
//
// Relations are immutable: New and With return fresh instances and never
// touch the receiver.
type Relation struct {
	def     Definition
	dataset Dataset
	opts    map[string]any

	writeHash func(Tuple) (Tuple, error)
	readHash  func(Tuple) (Tuple, error) // nil means identity decoding

	schemasOnce sync.Once
	schemas     map[string]*schema.Schema
	assocsOnce  sync.Once
	assocs      schema.AssociationSet
}

func build(def Definition, ds Dataset, opts map[string]any) *Relation {
	r := &Relation{
		def:     def,
		dataset: ds,
		opts:    opts,
	}

	if def.Schema != nil && !def.Schema.Empty() {
		r.writeHash = func(t Tuple) (Tuple, error) {
			out, err := def.Schema.WriteHash(t)
			return Tuple(out), err
		}
		if def.Schema.AnyRead() {
			r.readHash = func(t Tuple) (Tuple, error) {
				out, err := def.Schema.ReadHash(t)
				return Tuple(out), err
			}
		}
	} else {
		r.writeHash = passthroughHash
	}

	return r
}

// passthroughHash accepts any tuple and applies no coercion. It still
// copies, so dataset-owned maps are never aliased by callers.
func passthroughHash(t Tuple) (Tuple, error) {
	out := make(Tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out, nil
}

// Name returns the relation's name.
func (r *Relation) Name() string {
	return r.def.Name
}

// Dataset returns the backing dataset.
func (r *Relation) Dataset() Dataset {
	return r.dataset
}

// Schema returns the relation's schema, which may be nil.
func (r *Relation) Schema() *schema.Schema {
	return r.def.Schema
}

// Mappers returns the relation's mapper registry.
func (r *Relation) Mappers() *MapperRegistry {
	return r.def.Mappers
}

// Options returns the relation's option set. Callers must treat it as
// read-only; With is the way to derive a relation with different options.
func (r *Relation) Options() map[string]any {
	return r.opts
}

// Option looks up a single option by key.
func (r *Relation) Option(key string) (any, bool) {
	v, ok := r.opts[key]
	return v, ok
}

// HasSchema returns true if the schema has at least one attribute.
func (r *Relation) HasSchema() bool {
	return r.def.Schema != nil && !r.def.Schema.Empty()
}

// Curried returns false; only the curried variant reports true.
func (r *Relation) Curried() bool {
	return false
}

// Graphed returns false; only the graph variant reports true.
func (r *Relation) Graphed() bool {
	return false
}

// Attribute looks up a schema attribute by name.
func (r *Relation) Attribute(name string) (schema.Attribute, error) {
	if r.def.Schema == nil {
		return schema.Attribute{}, fmt.Errorf("%w: %s.%s", schema.ErrAttributeNotFound, r.def.Name, name)
	}
	return r.def.Schema.Attribute(name)
}

// Type returns the declared type of a schema attribute. This is a type
// lookup, not a tuple lookup.
func (r *Relation) Type(name string) (schema.Type, error) {
	attr, err := r.Attribute(name)
	if err != nil {
		return schema.Type{}, err
	}
	return attr.Type, nil
}

func (r *Relation) decode(raw Tuple) (Tuple, error) {
	if r.readHash == nil {
		return raw, nil
	}
	return r.readHash(raw)
}

// Each eagerly drives fn over every decoded tuple in dataset order.
func (r *Relation) Each(fn func(Tuple) error) error {
	return r.dataset.Each(func(raw Tuple) error {
		tuple, err := r.decode(raw)
		if err != nil {
			return err
		}
		return fn(tuple)
	})
}

// Iter returns a lazy, restartable iterator over decoded tuples. Every
// call re-reads the dataset from the start.
func (r *Relation) Iter() *Iterator {
	return newIterator(r.dataset, r.decode)
}

// Collect fully drains the relation into a decoded tuple slice.
func (r *Relation) Collect() ([]Tuple, error) {
	var tuples []Tuple
	err := r.Each(func(t Tuple) error {
		tuples = append(tuples, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tuples, nil
}

// Call forces full materialization into an immutable Loaded snapshot
// tagged with this relation.
func (r *Relation) Call() (*Loaded, error) {
	tuples, err := r.Collect()
	if err != nil {
		return nil, err
	}
	return NewLoaded(tuples, r), nil
}

// Insert normalizes a tuple through the write coercion and appends it to
// the dataset.
func (r *Relation) Insert(t Tuple) error {
	canonical, err := r.writeHash(t)
	if err != nil {
		return err
	}
	return r.dataset.Insert(canonical)
}

// New returns a same-definition relation over the given dataset. With no
// extra options the new relation shares this relation's option set;
// otherwise the extras are merged over it. The receiver is never mutated.
func (r *Relation) New(ds Dataset, extra map[string]any) *Relation {
	opts := r.opts
	if len(extra) > 0 {
		opts = make(map[string]any, len(r.opts)+len(extra))
		for k, v := range r.opts {
			opts[k] = v
		}
		for k, v := range extra {
			opts[k] = v
		}
	}
	return build(r.def, ds, opts)
}

// With is shorthand for New with the current dataset and merged options.
func (r *Relation) With(extra map[string]any) *Relation {
	return r.New(r.dataset, extra)
}

// Restrict derives a relation limited to tuples whose field value is in
// the given set, pushing the restriction down to the dataset when it is
// capable of one.
func (r *Relation) Restrict(field string, values ...any) *Relation {
	var ds Dataset
	if restrictable, ok := r.dataset.(Restrictable); ok {
		ds = restrictable.Restrict(field, values)
	} else {
		ds = &restrictedDataset{base: r.dataset, field: field, values: values}
	}
	return r.New(ds, nil)
}

// Project derives a relation limited to the named fields, pushing the
// projection down to the dataset when it is capable of one.
func (r *Relation) Project(fields ...string) *Relation {
	var ds Dataset
	if projectable, ok := r.dataset.(Projectable); ok {
		ds = projectable.Project(fields...)
	} else {
		ds = &projectedDataset{base: r.dataset, fields: fields}
	}
	return r.New(ds, nil)
}

// View resolves a named view. With fewer arguments than the view's arity
// the result is a curried node awaiting the rest; with the full argument
// list the view function is invoked directly.
func (r *Relation) View(name string, args ...any) (Node, error) {
	view, exists := r.def.Views[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrViewNotFound, r.def.Name, name)
	}
	if len(args) > view.Arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, name, view.Arity, len(args))
	}
	if len(args) < view.Arity {
		return newCurried(r, view, args), nil
	}
	return view.Fn(r, args...)
}

// Combine builds a graph with this relation as root and the given nodes as
// children. Nothing is executed until the graph is materialized.
func (r *Relation) Combine(nodes ...Node) *Graph {
	return NewGraph(r, nodes...)
}

// Then extends a pipeline with a mapper. Evaluation is deferred until the
// composite is materialized.
func (r *Relation) Then(m Mapper) *Composite {
	return &Composite{left: r, right: m}
}

// MapWith builds a pipeline through the named registered mappers, in
// order.
func (r *Relation) MapWith(names ...string) (*Composite, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no mapper names given", ErrMapperNotFound)
	}
	var node *Composite
	left := Node(r)
	for _, name := range names {
		m, ok := r.def.Mappers.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMapperNotFound, name)
		}
		node = &Composite{left: left, right: m}
		left = node
	}
	return node, nil
}

// Schemas returns all named schema variants on the relation: the canonical
// schema plus one projected schema per view that declares attributes.
// Memoized per instance.
func (r *Relation) Schemas() map[string]*schema.Schema {
	r.schemasOnce.Do(func() {
		r.schemas = make(map[string]*schema.Schema)
		if r.def.Schema == nil {
			return
		}
		r.schemas[r.def.Name] = r.def.Schema
		for name, view := range r.def.Views {
			if len(view.Attributes) == 0 {
				continue
			}
			projected, err := r.def.Schema.Project(view.Attributes...)
			if err != nil {
				// A view naming unknown attributes is a definition bug;
				// surface it on attribute lookup, not here.
				continue
			}
			r.schemas[name] = projected
		}
	})
	return r.schemas
}

// Associations returns the association set of the relation's schema, or an
// empty set when the relation has no schema. Memoized per instance.
func (r *Relation) Associations() schema.AssociationSet {
	r.assocsOnce.Do(func() {
		if r.def.Schema == nil {
			r.assocs = schema.NewAssociationSet()
			return
		}
		r.assocs = r.def.Schema.Associations()
	})
	return r.assocs
}
