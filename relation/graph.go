package relation

import (
	"github.com/conduit-lang/relata/schema"
)

// Combiner associates each root tuple with its matching child tuples. The
// key-equality rule is the combiner's business; the graph only sequences
// root-then-children evaluation.
type Combiner interface {
	Combine(root *Relation, rootTuples []Tuple, children map[string][]Tuple) ([]Tuple, error)
}

// Graph is a root relation combined with an ordered list of child nodes,
// materialized together. Children are evaluated against the root's loaded
// tuple set as a whole: exactly one evaluation per child regardless of how
// many root tuples there are.
type Graph struct {
	root     *Relation
	nodes    []Node
	combiner Combiner
}

// NewGraph builds a graph with the given root and children. The default
// combiner nests child tuples under the root's association names.
func NewGraph(root *Relation, nodes ...Node) *Graph {
	return &Graph{root: root, nodes: nodes, combiner: NestCombiner{}}
}

// Name returns the root relation's name.
func (g *Graph) Name() string {
	return g.root.Name()
}

// Root returns the root relation.
func (g *Graph) Root() *Relation {
	return g.root
}

// Nodes returns the child nodes in combination order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Curried returns false.
func (g *Graph) Curried() bool {
	return false
}

// Graphed returns true.
func (g *Graph) Graphed() bool {
	return true
}

// Combine returns a graph with further children appended. The receiver is
// never mutated.
func (g *Graph) Combine(nodes ...Node) *Graph {
	all := make([]Node, 0, len(g.nodes)+len(nodes))
	all = append(all, g.nodes...)
	all = append(all, nodes...)
	return &Graph{root: g.root, nodes: all, combiner: g.combiner}
}

// WithCombiner returns a graph using the given combiner.
func (g *Graph) WithCombiner(c Combiner) *Graph {
	return &Graph{root: g.root, nodes: g.nodes, combiner: c}
}

// Then extends the graph into a mapper pipeline.
func (g *Graph) Then(m Mapper) *Composite {
	return &Composite{left: g, right: m}
}

// Call loads the root first, then evaluates every child node exactly once
// against the whole root tuple set. A curried child receives the root
// tuples as its final argument; any other node is called as-is. The
// combiner then nests each child's tuples under the root tuples.
func (g *Graph) Call() (*Loaded, error) {
	rootLoaded, err := g.root.Call()
	if err != nil {
		return nil, err
	}
	rootTuples := rootLoaded.Collect()

	children := make(map[string][]Tuple, len(g.nodes))
	for _, node := range g.nodes {
		resolved := node
		if curried, ok := node.(*Curried); ok {
			resolved, err = curried.Apply(rootTuples)
			if err != nil {
				return nil, err
			}
		}
		loaded, err := resolved.Call()
		if err != nil {
			return nil, err
		}
		children[resolved.Name()] = loaded.Collect()
	}

	combined, err := g.combiner.Combine(g.root, rootTuples, children)
	if err != nil {
		return nil, err
	}
	return NewLoaded(combined, g.root), nil
}

// NestCombiner is the default combiner: it nests child tuples under each
// root tuple keyed by the root schema's association descriptors. Children
// without a matching association are attached whole under their node name.
type NestCombiner struct{}

// Combine implements the Combiner interface.
func (NestCombiner) Combine(root *Relation, rootTuples []Tuple, children map[string][]Tuple) ([]Tuple, error) {
	if len(children) == 0 {
		return rootTuples, nil
	}

	assocs := root.Associations()
	out := make([]Tuple, len(rootTuples))
	for i, rt := range rootTuples {
		nt := make(Tuple, len(rt)+len(children))
		for k, v := range rt {
			nt[k] = v
		}
		out[i] = nt
	}

	for name, childTuples := range children {
		assoc, ok := assocs.Get(name)
		if !ok {
			for _, nt := range out {
				nt[name] = childTuples
			}
			continue
		}
		nestByKey(out, childTuples, name, assoc)
	}

	return out, nil
}

func nestByKey(roots []Tuple, children []Tuple, name string, assoc schema.Association) {
	switch assoc.Kind {
	case schema.HasMany:
		index := make(map[any][]Tuple, len(children))
		for _, child := range children {
			key := child[assoc.ForeignKey]
			index[key] = append(index[key], child)
		}
		for _, rt := range roots {
			matched := index[rt[assoc.ParentKey]]
			if matched == nil {
				matched = []Tuple{}
			}
			rt[name] = matched
		}
	case schema.HasOne:
		index := make(map[any]Tuple, len(children))
		for _, child := range children {
			key := child[assoc.ForeignKey]
			if _, seen := index[key]; !seen {
				index[key] = child
			}
		}
		for _, rt := range roots {
			if child, ok := index[rt[assoc.ParentKey]]; ok {
				rt[name] = child
			} else {
				rt[name] = nil
			}
		}
	case schema.BelongsTo:
		index := make(map[any]Tuple, len(children))
		for _, child := range children {
			index[child[assoc.ParentKey]] = child
		}
		for _, rt := range roots {
			if child, ok := index[rt[assoc.ForeignKey]]; ok {
				rt[name] = child
			} else {
				rt[name] = nil
			}
		}
	}
}
