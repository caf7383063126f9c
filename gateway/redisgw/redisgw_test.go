package redisgw

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relata/gateway"
	"github.com/conduit-lang/relata/relation"
	"github.com/conduit-lang/relata/schema"
)

func setupTestRedis(t *testing.T) *Gateway {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	gw := New(client)
	t.Cleanup(func() { gw.Disconnect() })
	return gw
}

func TestListRoundTrip(t *testing.T) {
	gw := setupTestRedis(t)

	ds, err := gw.Dataset("users")
	require.NoError(t, err)

	require.NoError(t, ds.Insert(relation.Tuple{"id": 1, "name": "Jane"}))
	require.NoError(t, ds.Insert(relation.Tuple{"id": 2, "name": "John"}))

	var names []string
	require.NoError(t, ds.Each(func(tuple relation.Tuple) error {
		names = append(names, tuple["name"].(string))
		return nil
	}))
	assert.Equal(t, []string{"Jane", "John"}, names, "list order is insertion order")
	assert.Equal(t, 2, ds.(*List).Len())
}

func TestListKeyPrefix(t *testing.T) {
	gw := setupTestRedis(t)

	ds, err := gw.Dataset("users")
	require.NoError(t, err)
	assert.Equal(t, "relata:users", ds.(*List).Key())
}

func TestHasDatasetAndSchema(t *testing.T) {
	gw := setupTestRedis(t)

	assert.False(t, gw.HasDataset("users"))
	assert.Empty(t, gw.Schema())

	for _, name := range []string{"users", "tasks"} {
		ds, err := gw.Dataset(name)
		require.NoError(t, err)
		require.NoError(t, ds.Insert(relation.Tuple{"id": 1}))
	}

	assert.True(t, gw.HasDataset("users"))
	assert.Equal(t, []string{"tasks", "users"}, gw.Schema())
}

func TestEachIsRestartable(t *testing.T) {
	gw := setupTestRedis(t)

	ds, err := gw.Dataset("users")
	require.NoError(t, err)
	require.NoError(t, ds.Insert(relation.Tuple{"id": 1}))

	for i := 0; i < 2; i++ {
		count := 0
		require.NoError(t, ds.Each(func(relation.Tuple) error {
			count++
			return nil
		}))
		assert.Equal(t, 1, count)
	}
}

func TestReadKindsRestoreJSONNumbers(t *testing.T) {
	gw := setupTestRedis(t)

	ds, err := gw.Dataset("users")
	require.NoError(t, err)

	userSchema, err := schema.New("users",
		schema.Attribute{Name: "id", Type: schema.Type{Kind: schema.KindInt, Read: schema.KindInt}},
		schema.Attribute{Name: "name", Type: schema.Type{Kind: schema.KindString}},
	)
	require.NoError(t, err)

	users, err := relation.Definition{Name: "users", Schema: userSchema}.Build(ds)
	require.NoError(t, err)
	require.NoError(t, users.Insert(relation.Tuple{"id": 1, "name": "Jane"}))

	tuples, err := users.Collect()
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, int64(1), tuples[0]["id"], "float64 from JSON decodes back to an int")
}

func TestTransactionAppliesOnSuccess(t *testing.T) {
	gw := setupTestRedis(t)

	v, err := gw.Transaction(context.Background(), gateway.DefaultTxOptions(), func(ctx context.Context) (any, error) {
		scoped := TxGateway(ctx, gw)
		ds, err := scoped.Dataset("users")
		if err != nil {
			return nil, err
		}
		if err := ds.Insert(relation.Tuple{"id": 1}); err != nil {
			return nil, err
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	ds, err := gw.Dataset("users")
	require.NoError(t, err)
	assert.Equal(t, 1, ds.(*List).Len(), "queued writes land at EXEC")
}

func TestTransactionDiscardsOnError(t *testing.T) {
	gw := setupTestRedis(t)

	_, err := gw.Transaction(context.Background(), gateway.DefaultTxOptions(), func(ctx context.Context) (any, error) {
		scoped := TxGateway(ctx, gw)
		ds, err := scoped.Dataset("users")
		if err != nil {
			return nil, err
		}
		if err := ds.Insert(relation.Tuple{"id": 1}); err != nil {
			return nil, err
		}
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, gw.HasDataset("users"), "queued writes are discarded")
}

func TestTransactionDiscardsOnRollbackSentinel(t *testing.T) {
	gw := setupTestRedis(t)

	v, err := gw.Transaction(context.Background(), gateway.DefaultTxOptions(), func(ctx context.Context) (any, error) {
		scoped := TxGateway(ctx, gw)
		ds, err := scoped.Dataset("users")
		if err != nil {
			return nil, err
		}
		if err := ds.Insert(relation.Tuple{"id": 1}); err != nil {
			return nil, err
		}
		return "ignored", gateway.ErrRollback
	})
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, gw.HasDataset("users"))
}

func TestTxGatewayFallsBackOutsideTransaction(t *testing.T) {
	gw := setupTestRedis(t)
	assert.Same(t, gw, TxGateway(context.Background(), gw))
}

func TestNestedTransactionsAreRejected(t *testing.T) {
	gw := setupTestRedis(t)

	_, err := gw.Transaction(context.Background(), gateway.DefaultTxOptions(), func(ctx context.Context) (any, error) {
		scoped := TxGateway(ctx, gw)
		return scoped.Transaction(ctx, gateway.DefaultTxOptions(), func(ctx context.Context) (any, error) {
			return nil, nil
		})
	})
	assert.ErrorIs(t, err, gateway.ErrInvalidSetup)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open("not a url")
	assert.True(t, gateway.IsAdapterLoad(err))
}

func TestSetupResolvesRedisURL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	gw, err := gateway.Setup("redis://" + mr.Addr())
	require.NoError(t, err)
	defer gw.Disconnect()

	adapter, err := gw.Adapter()
	require.NoError(t, err)
	assert.Equal(t, Adapter, adapter)
}
