package schema

import (
	"errors"
	"fmt"
)

// Common schema error types
var (
	// ErrAttributeNotFound is returned when an attribute lookup by name fails
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrDuplicateAttribute is returned when an attribute name is registered twice
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrFinalized is returned when a finalized schema is modified
	ErrFinalized = errors.New("schema is finalized")

	// ErrCoerce is returned when a value cannot be coerced to its declared kind
	ErrCoerce = errors.New("coercion failed")
)

// IsAttributeNotFound returns true if the error is ErrAttributeNotFound
func IsAttributeNotFound(err error) bool {
	return errors.Is(err, ErrAttributeNotFound)
}

// Attribute is a uniquely-named, typed member of a schema. Source tags
// attributes of derived schemas with the name of the schema they were
// projected from.
type Attribute struct {
	Name   string
	Type   Type
	Source string
}

// Read returns true if the attribute declares a distinct read kind.
func (a Attribute) Read() bool {
	return a.Type.HasRead()
}

// Schema is an ordered set of uniquely-named attributes attached to an
// association set. Attribute order is declaration order. After Finalize
// the schema is immutable.
type Schema struct {
	name      string
	attrs     []Attribute
	index     map[string]int
	assocs    AssociationSet
	finalized bool
}

// New creates a schema with the given attributes. Attribute names must be
// unique.
func New(name string, attrs ...Attribute) (*Schema, error) {
	s := &Schema{
		name:   name,
		index:  make(map[string]int, len(attrs)),
		assocs: NewAssociationSet(),
	}
	for _, attr := range attrs {
		if err := s.Add(attr); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the schema's name.
func (s *Schema) Name() string {
	return s.name
}

// Add appends an attribute to the schema.
func (s *Schema) Add(attr Attribute) error {
	if s.finalized {
		return fmt.Errorf("%w: %s", ErrFinalized, s.name)
	}
	if _, exists := s.index[attr.Name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateAttribute, s.name, attr.Name)
	}
	s.index[attr.Name] = len(s.attrs)
	s.attrs = append(s.attrs, attr)
	return nil
}

// Associate attaches association descriptors to the schema.
func (s *Schema) Associate(assocs ...Association) error {
	if s.finalized {
		return fmt.Errorf("%w: %s", ErrFinalized, s.name)
	}
	for _, a := range assocs {
		s.assocs.Add(a)
	}
	return nil
}

// Finalize completes the schema's inference and makes it immutable.
// It returns the schema for chaining.
func (s *Schema) Finalize() *Schema {
	s.finalized = true
	return s
}

// Finalized returns true if the schema has been finalized.
func (s *Schema) Finalized() bool {
	return s.finalized
}

// Empty returns true if the schema has no attributes.
func (s *Schema) Empty() bool {
	return len(s.attrs) == 0
}

// Len returns the number of attributes.
func (s *Schema) Len() int {
	return len(s.attrs)
}

// Attributes returns the attributes in declaration order. The returned
// slice is a copy.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Attribute looks up an attribute by name.
func (s *Schema) Attribute(name string) (Attribute, error) {
	i, exists := s.index[name]
	if !exists {
		return Attribute{}, fmt.Errorf("%w: %s.%s", ErrAttributeNotFound, s.name, name)
	}
	return s.attrs[i], nil
}

// Has returns true if the schema has an attribute with the given name.
func (s *Schema) Has(name string) bool {
	_, exists := s.index[name]
	return exists
}

// AnyRead returns true if at least one attribute declares a distinct
// read kind.
func (s *Schema) AnyRead() bool {
	for _, attr := range s.attrs {
		if attr.Read() {
			return true
		}
	}
	return false
}

// Associations returns the schema's association set.
func (s *Schema) Associations() AssociationSet {
	return s.assocs
}

// WriteHash normalizes a raw tuple into its canonical form: every field
// declared by the schema is coerced to its canonical kind, fields the
// schema does not know pass through untouched. The input tuple is never
// mutated.
func (s *Schema) WriteHash(tuple map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(tuple))
	for field, value := range tuple {
		i, exists := s.index[field]
		if !exists {
			out[field] = value
			continue
		}
		coerced, err := Coerce(s.attrs[i].Type.Kind, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s as %s: %v", ErrCoerce, s.name, field, s.attrs[i].Type.Kind, err)
		}
		out[field] = coerced
	}
	return out, nil
}

// ReadHash decodes a tuple for reading: fields whose attribute declares a
// read kind are coerced to that kind, all other fields pass through. The
// input tuple is never mutated.
func (s *Schema) ReadHash(tuple map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(tuple))
	for field, value := range tuple {
		i, exists := s.index[field]
		if !exists || !s.attrs[i].Read() {
			out[field] = value
			continue
		}
		decoded, err := Coerce(s.attrs[i].Type.Read, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s as %s: %v", ErrCoerce, s.name, field, s.attrs[i].Type.Read, err)
		}
		out[field] = decoded
	}
	return out, nil
}

// Project derives a sub-schema with the named attributes, each tagged with
// this schema as its source. The derived schema shares the association set
// and is already finalized.
func (s *Schema) Project(names ...string) (*Schema, error) {
	derived := &Schema{
		name:   s.name,
		index:  make(map[string]int, len(names)),
		assocs: s.assocs,
	}
	for _, name := range names {
		attr, err := s.Attribute(name)
		if err != nil {
			return nil, err
		}
		attr.Source = s.name
		derived.index[attr.Name] = len(derived.attrs)
		derived.attrs = append(derived.attrs, attr)
	}
	derived.finalized = true
	return derived, nil
}
