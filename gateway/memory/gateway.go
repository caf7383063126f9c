package memory

import (
	"sort"

	"go.uber.org/zap"

	"github.com/conduit-lang/relata/gateway"
	"github.com/conduit-lang/relata/relation"
)

// Adapter is the identifier this package registers under.
const Adapter = "memory"

func init() {
	// The builder takes no configuration; surplus setup args are ignored.
	gateway.Register(Adapter, func(args ...any) (gateway.Gateway, error) {
		return New(), nil
	})
}

// Gateway is the reference in-memory gateway. Datasets are created on
// first use and live for the life of the process.
type Gateway struct {
	gateway.Base
	storage *Storage
}

// New creates an in-memory gateway with empty storage.
func New() *Gateway {
	return &Gateway{
		Base:    gateway.NewBase(Adapter),
		storage: NewStorage(),
	}
}

// Storage returns the gateway's backing storage.
func (g *Gateway) Storage() *Storage {
	return g.storage
}

// Dataset returns the named dataset, creating it on first use.
func (g *Gateway) Dataset(name string) (relation.Dataset, error) {
	created := false
	ds := g.storage.getOrCreate(name, &created)
	if created {
		g.Logger().Debug("created dataset", zap.String("dataset", name))
	}
	return ds, nil
}

// HasDataset returns true if the named dataset exists.
func (g *Gateway) HasDataset(name string) bool {
	return g.storage.Has(name)
}

// Schema lists the existing dataset names, sorted.
func (g *Gateway) Schema() []string {
	names := g.storage.Names()
	sort.Strings(names)
	return names
}
