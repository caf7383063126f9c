package gateway

import (
	"context"
	"errors"
	"time"
)

// ErrRollback is the sentinel a transaction block returns to request a
// rollback. Transaction swallows it and reports a nil result, so callers
// can tell "block ran, returned nil" from "block was rolled back" only
// through their own result value.
var ErrRollback = errors.New("rollback")

// IsolationLevel represents the requested transaction isolation level.
// Whether it is honored is entirely adapter-defined.
type IsolationLevel int

const (
	// ReadCommitted prevents dirty reads
	ReadCommitted IsolationLevel = iota
	// RepeatableRead prevents non-repeatable reads
	RepeatableRead
	// Serializable provides full isolation
	Serializable
)

// String returns the string representation of the isolation level
func (l IsolationLevel) String() string {
	switch l {
	case ReadCommitted:
		return "READ COMMITTED"
	case RepeatableRead:
		return "REPEATABLE READ"
	case Serializable:
		return "SERIALIZABLE"
	default:
		return "READ COMMITTED"
	}
}

// TxOptions configures a transaction run. The retry knobs apply only to
// runners that implement retry; the no-op runner ignores all of it.
type TxOptions struct {
	Isolation   IsolationLevel
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultTxOptions returns the default transaction options.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		Isolation:   ReadCommitted,
		MaxRetries:  3,
		BaseBackoff: 100 * time.Millisecond,
	}
}

// TxFunc is the body of a transaction. Returning ErrRollback requests a
// rollback; any other error aborts and propagates.
type TxFunc func(ctx context.Context) (any, error)

// Runner executes a transaction block. Adapters override the gateway's
// runner to provide real begin/commit/rollback semantics.
type Runner interface {
	Run(ctx context.Context, opts TxOptions, fn TxFunc) (any, error)
}

// NoopRunner yields the block exactly once and returns its value. It is
// intentionally inert: no atomicity, no isolation, and it never rolls
// anything back. Real transactional guarantees require an adapter-specific
// runner.
type NoopRunner struct{}

// Run implements the Runner interface.
func (NoopRunner) Run(ctx context.Context, opts TxOptions, fn TxFunc) (any, error) {
	return fn(ctx)
}

// RunTransaction executes fn through the given runner and maps the
// rollback sentinel to a nil result. Gateways delegate their Transaction
// method here so the sentinel contract is uniform across adapters.
func RunTransaction(r Runner, ctx context.Context, opts TxOptions, fn TxFunc) (any, error) {
	v, err := r.Run(ctx, opts, fn)
	if errors.Is(err, ErrRollback) {
		return nil, nil
	}
	return v, err
}
