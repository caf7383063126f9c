// Package redisgw provides a Redis gateway. Datasets are Redis lists of
// JSON-encoded tuples, keyed "relata:<name>", so insertion order is
// preserved by the list itself. Restriction happens client-side; the
// dataset is free to implement it however it likes.
package redisgw

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/relata/gateway"
	"github.com/conduit-lang/relata/relation"
)

// Adapter is the identifier this package registers under.
const Adapter = "redis"

const keyPrefix = "relata:"

func init() {
	gateway.Register(Adapter, func(args ...any) (gateway.Gateway, error) {
		if len(args) == 0 {
			return Open("redis://localhost:6379/0")
		}
		switch first := args[0].(type) {
		case *redis.Client:
			return New(first), nil
		case string:
			return Open(first)
		default:
			return nil, fmt.Errorf("%w: unsupported redis setup argument %T", gateway.ErrInvalidSetup, args[0])
		}
	})
}

// Gateway is a Redis-backed gateway.
type Gateway struct {
	gateway.Base
	client redis.Cmdable
	root   *redis.Client // nil for transaction-scoped views
}

// New wraps an existing Redis client.
func New(client *redis.Client) *Gateway {
	return &Gateway{
		Base:   gateway.NewBase(Adapter),
		client: client,
		root:   client,
	}
}

// Open connects using a Redis URL and verifies the connection.
func Open(rawURL string) (*Gateway, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrAdapterLoad, err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrAdapterLoad, err)
	}

	return New(client), nil
}

// Dataset returns a list-backed dataset for the name.
func (g *Gateway) Dataset(name string) (relation.Dataset, error) {
	return &List{client: g.client, key: keyPrefix + name}, nil
}

// HasDataset reports whether the named list exists.
func (g *Gateway) HasDataset(name string) bool {
	n, err := g.client.Exists(context.Background(), keyPrefix+name).Result()
	return err == nil && n > 0
}

// Schema lists the existing dataset names, sorted.
func (g *Gateway) Schema() []string {
	keys, err := g.client.Keys(context.Background(), keyPrefix+"*").Result()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, keyPrefix))
	}
	sort.Strings(names)
	return names
}

// TransactionRunner returns the MULTI/EXEC pipelining runner.
func (g *Gateway) TransactionRunner() gateway.Runner {
	return &Runner{gw: g}
}

// Transaction executes fn with write batching: datasets obtained from the
// transaction-scoped gateway (see TxGateway) queue their writes into a
// MULTI/EXEC pipeline that is discarded when the block errors or returns
// the rollback sentinel. Reads inside the block go through the pipeline
// too and therefore resolve only at EXEC; transaction scope is for writes.
func (g *Gateway) Transaction(ctx context.Context, opts gateway.TxOptions, fn gateway.TxFunc) (any, error) {
	return gateway.RunTransaction(g.TransactionRunner(), ctx, opts, fn)
}

// Disconnect closes the underlying client. Transaction-scoped views hold
// no connection of their own.
func (g *Gateway) Disconnect() error {
	if g.root == nil {
		return nil
	}
	return g.root.Close()
}

func (g *Gateway) withCmdable(c redis.Cmdable) *Gateway {
	return &Gateway{Base: g.Base, client: c}
}
