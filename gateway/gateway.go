// Package gateway defines the adapter-facing side of the relation layer: a
// gateway owns a backend connection, hands out datasets by name, and
// exposes the transaction-execution contract. Concrete adapters register
// themselves against an adapter identifier and are resolved through Setup.
package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/relata/relation"
)

// Gateway is a configured adapter instance.
type Gateway interface {
	// Adapter returns the declared adapter identifier. A gateway that never
	// declared one fails with ErrNoAdapter; this is a configuration error,
	// never silently defaulted.
	Adapter() (string, error)

	// Dataset resolves a dataset by name, creating it when the backend
	// supports that.
	Dataset(name string) (relation.Dataset, error)

	// HasDataset returns true if the named dataset exists.
	HasDataset(name string) bool

	// Schema introspects the backend's dataset names. The base
	// implementation returns nothing.
	Schema() []string

	// Transaction executes fn through the gateway's transaction runner. The
	// base runner is a no-op that yields exactly once; adapters with real
	// transactional backends override their runner.
	Transaction(ctx context.Context, opts TxOptions, fn TxFunc) (any, error)

	// Disconnect releases the backend connection. The base implementation
	// is a no-op.
	Disconnect() error
}

// Base carries the state and default behavior every gateway shares: the
// adapter identifier, a logger, the no-op transaction runner, and safe
// no-op extension points. Concrete adapters embed it and override what
// their backend supports.
type Base struct {
	adapter string
	logger  *zap.Logger
}

// NewBase creates a base gateway declaring the given adapter identifier.
func NewBase(adapter string) Base {
	return Base{adapter: adapter, logger: zap.NewNop()}
}

// Adapter returns the declared adapter identifier, or ErrNoAdapter when
// none was declared.
func (b *Base) Adapter() (string, error) {
	if b.adapter == "" {
		return "", ErrNoAdapter
	}
	return b.adapter, nil
}

// UseLogger installs a logger. The default is a no-op logger.
func (b *Base) UseLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
}

// Logger returns the gateway's logger.
func (b *Base) Logger() *zap.Logger {
	if b.logger == nil {
		return zap.NewNop()
	}
	return b.logger
}

// Schema returns no dataset names; adapters with introspectable backends
// override this.
func (b *Base) Schema() []string {
	return nil
}

// Disconnect is a no-op; adapters holding real connections override this.
func (b *Base) Disconnect() error {
	return nil
}

// TransactionRunner returns the runner Transaction delegates to. The base
// runner is the inert NoopRunner.
func (b *Base) TransactionRunner() Runner {
	return NoopRunner{}
}

// Transaction executes fn through the base no-op runner. Adapters with
// real transactional semantics override Transaction to route through their
// own runner.
func (b *Base) Transaction(ctx context.Context, opts TxOptions, fn TxFunc) (any, error) {
	return RunTransaction(b.TransactionRunner(), ctx, opts, fn)
}

// Dataset fails; concrete adapters must provide dataset resolution.
func (b *Base) Dataset(name string) (relation.Dataset, error) {
	return nil, fmt.Errorf("%w: %s", ErrNoDataset, name)
}

// HasDataset returns false; concrete adapters must provide dataset
// resolution.
func (b *Base) HasDataset(name string) bool {
	return false
}
