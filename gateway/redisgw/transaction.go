package redisgw

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/relata/gateway"
)

type contextKey int

const contextKeyGateway contextKey = iota

// TxGateway returns the transaction-scoped gateway the runner placed in
// the block's context, or the fallback outside a transaction. Datasets
// obtained from the scoped gateway queue their writes into the
// transaction's pipeline.
func TxGateway(ctx context.Context, fallback *Gateway) *Gateway {
	if scoped, ok := ctx.Value(contextKeyGateway).(*Gateway); ok {
		return scoped
	}
	return fallback
}

// Runner executes transaction blocks through a MULTI/EXEC pipeline. The
// queued commands are sent atomically on success and discarded entirely
// when the block errors or requests a rollback. Isolation and retry
// options are ignored; Redis offers neither at this level.
type Runner struct {
	gw *Gateway
}

// Run implements the gateway.Runner interface.
func (r *Runner) Run(ctx context.Context, opts gateway.TxOptions, fn gateway.TxFunc) (any, error) {
	if r.gw.root == nil {
		return nil, fmt.Errorf("%w: nested redis transactions are not supported", gateway.ErrInvalidSetup)
	}

	var result any
	_, err := r.gw.root.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		scoped := r.gw.withCmdable(pipe)
		var ferr error
		result, ferr = fn(context.WithValue(ctx, contextKeyGateway, scoped))
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
