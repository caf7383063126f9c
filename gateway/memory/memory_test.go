package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relata/gateway"
	"github.com/conduit-lang/relata/relation"
	"github.com/conduit-lang/relata/schema"
)

func TestStorageCreateDataset(t *testing.T) {
	s := NewStorage()

	ds := s.CreateDataset("users")
	require.NotNil(t, ds)
	assert.True(t, s.Has("users"))
	assert.Equal(t, 1, s.Size())
	assert.Same(t, ds, s.Get("users"))
}

func TestStorageCreateDatasetOverwrites(t *testing.T) {
	s := NewStorage()

	first := s.CreateDataset("users")
	require.NoError(t, first.Insert(relation.Tuple{"id": 1}))
	require.Equal(t, 1, first.Len())

	second := s.CreateDataset("users")
	assert.Equal(t, 1, s.Size(), "registry shape is restored")
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.Len(), "prior tuples are gone")
}

func TestStorageGetMissing(t *testing.T) {
	s := NewStorage()
	assert.Nil(t, s.Get("missing"))
	assert.False(t, s.Has("missing"))
}

func TestStorageConcurrentAccess(t *testing.T) {
	s := NewStorage()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("ds_%d", i%5)
			s.CreateDataset(name)
			s.Get(name)
			s.Has(name)
			s.Size()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Size())
}

func TestDatasetPreservesInsertionOrder(t *testing.T) {
	ds := NewDataset()
	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Insert(relation.Tuple{"n": i}))
	}

	var seen []int
	require.NoError(t, ds.Each(func(t relation.Tuple) error {
		seen = append(seen, t["n"].(int))
		return nil
	}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.Equal(t, 5, ds.Len())
}

func TestDatasetNoDeduplication(t *testing.T) {
	ds := NewDataset()
	tuple := relation.Tuple{"id": 1}
	require.NoError(t, ds.Insert(tuple))
	require.NoError(t, ds.Insert(tuple))
	assert.Equal(t, 2, ds.Len())
}

func TestDatasetRestrict(t *testing.T) {
	ds := NewDataset()
	require.NoError(t, ds.Insert(relation.Tuple{"id": 1, "name": "a"}))
	require.NoError(t, ds.Insert(relation.Tuple{"id": 2, "name": "b"}))
	require.NoError(t, ds.Insert(relation.Tuple{"id": 3, "name": "c"}))

	restricted := ds.Restrict("id", []any{1, 3}).(*Dataset)
	assert.Equal(t, 2, restricted.Len())

	// The derived dataset is detached from later inserts.
	require.NoError(t, ds.Insert(relation.Tuple{"id": 1, "name": "dup"}))
	assert.Equal(t, 2, restricted.Len())
}

func TestDatasetProject(t *testing.T) {
	ds := NewDataset()
	require.NoError(t, ds.Insert(relation.Tuple{"id": 1, "name": "a", "secret": "x"}))

	projected := ds.Project("id", "name").(*Dataset)
	require.NoError(t, projected.Each(func(tup relation.Tuple) error {
		assert.Equal(t, relation.Tuple{"id": 1, "name": "a"}, tup)
		return nil
	}))
}

func TestGatewayRegistersItself(t *testing.T) {
	gw, err := gateway.Setup("memory")
	require.NoError(t, err)

	adapter, err := gw.Adapter()
	require.NoError(t, err)
	assert.Equal(t, Adapter, adapter)
}

func TestGatewayBuilderIgnoresSurplusArgs(t *testing.T) {
	gw, err := gateway.Setup("memory", "ignored", 42)
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestGatewayDatasetCreatesOnFirstUse(t *testing.T) {
	gw := New()
	assert.False(t, gw.HasDataset("users"))

	ds, err := gw.Dataset("users")
	require.NoError(t, err)
	assert.True(t, gw.HasDataset("users"))

	again, err := gw.Dataset("users")
	require.NoError(t, err)
	assert.Same(t, ds, again, "repeat lookups return the same dataset")
}

func TestGatewaySchemaListsDatasets(t *testing.T) {
	gw := New()
	_, err := gw.Dataset("users")
	require.NoError(t, err)
	_, err = gw.Dataset("tasks")
	require.NoError(t, err)

	assert.Equal(t, []string{"tasks", "users"}, gw.Schema())
}

func TestRelationOverMemoryGateway(t *testing.T) {
	gw := New()
	ds, err := gw.Dataset("users")
	require.NoError(t, err)

	userSchema, err := schema.New("users",
		schema.Attribute{Name: "id", Type: schema.Type{Kind: schema.KindString, Read: schema.KindInt}},
		schema.Attribute{Name: "name", Type: schema.Type{Kind: schema.KindString}},
	)
	require.NoError(t, err)

	users, err := relation.Definition{Name: "users", Schema: userSchema}.Build(ds)
	require.NoError(t, err)

	require.NoError(t, users.Insert(relation.Tuple{"id": 1, "name": "Jane"}))
	require.NoError(t, users.Insert(relation.Tuple{"id": 2, "name": "John"}))

	loaded, err := users.Call()
	require.NoError(t, err)
	assert.Equal(t, []relation.Tuple{
		{"id": int64(1), "name": "Jane"},
		{"id": int64(2), "name": "John"},
	}, loaded.Collect())
}
