package sqlgw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/relata/gateway"
)

type contextKey int

const contextKeyTx contextKey = iota

// ContextWithTx embeds a transaction handle in a context.
func ContextWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, contextKeyTx, tx)
}

// TxFrom extracts the transaction handle a Runner placed in the block's
// context.
func TxFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(contextKeyTx).(*sql.Tx)
	return tx, ok
}

// Runner executes transaction blocks inside real database transactions:
// commit on success, rollback on error or on the rollback sentinel, and
// automatic retry with exponential backoff when the backend reports a
// deadlock.
type Runner struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunner creates a runner over the given handle.
func NewRunner(db *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{db: db, logger: logger}
}

// Run implements the gateway.Runner interface.
func (r *Runner) Run(ctx context.Context, opts gateway.TxOptions, fn gateway.TxFunc) (any, error) {
	attempts := opts.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("transaction cancelled before attempt %d: %w", attempt, err)
		}

		v, err := r.runOnce(ctx, opts, fn)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, gateway.ErrRollback) || !isDeadlock(err) {
			return nil, err
		}

		lastErr = err
		backoff := opts.BaseBackoff * time.Duration(1<<uint(attempt))
		r.logger.Debug("deadlock detected, retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction cancelled during retry backoff: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("transaction retries exhausted: %w", lastErr)
}

func (r *Runner) runOnce(ctx context.Context, opts gateway.TxOptions, fn gateway.TxFunc) (result any, err error) {
	tx, err := r.db.BeginTx(ctx, sqlTxOptions(opts.Isolation))
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // re-throw after rollback
		}
	}()

	result, err = fn(ContextWithTx(ctx, tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(err, gateway.ErrRollback) {
			return nil, fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func sqlTxOptions(level gateway.IsolationLevel) *sql.TxOptions {
	var iso sql.IsolationLevel
	switch level {
	case gateway.RepeatableRead:
		iso = sql.LevelRepeatableRead
	case gateway.Serializable:
		iso = sql.LevelSerializable
	default:
		iso = sql.LevelReadCommitted
	}
	return &sql.TxOptions{Isolation: iso}
}

func isDeadlock(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "database is locked")
}
