package schema

// AssociationKind represents the type of association between schemas
type AssociationKind int

const (
	BelongsTo AssociationKind = iota
	HasMany
	HasOne
)

// String returns the string representation of the association kind
func (k AssociationKind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasMany:
		return "has_many"
	case HasOne:
		return "has_one"
	default:
		return "unknown"
	}
}

// Association describes a named relationship between two schemas. How the
// association is resolved is up to the consumer; the schema layer only
// carries the descriptor.
type Association struct {
	Name       string
	Target     string
	Kind       AssociationKind
	// ForeignKey names the referencing field and ParentKey the referenced
	// key. For HasMany and HasOne the child holds the foreign key; for
	// BelongsTo the owner does. ParentKey defaults to "id".
	ForeignKey string
	ParentKey  string
}

// AssociationSet maps association names to their descriptors. Every schema
// has exactly one, defaulting to empty.
type AssociationSet struct {
	assocs map[string]Association
}

// NewAssociationSet creates an empty association set.
func NewAssociationSet() AssociationSet {
	return AssociationSet{assocs: make(map[string]Association)}
}

// Add registers an association, overwriting any prior descriptor with the
// same name.
func (as AssociationSet) Add(a Association) {
	if a.ParentKey == "" {
		a.ParentKey = "id"
	}
	as.assocs[a.Name] = a
}

// Get looks up an association by name.
func (as AssociationSet) Get(name string) (Association, bool) {
	a, exists := as.assocs[name]
	return a, exists
}

// Len returns the number of associations.
func (as AssociationSet) Len() int {
	return len(as.assocs)
}

// Names returns the association names in unspecified order.
func (as AssociationSet) Names() []string {
	names := make([]string, 0, len(as.assocs))
	for name := range as.assocs {
		names = append(names, name)
	}
	return names
}
