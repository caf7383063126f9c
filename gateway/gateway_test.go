package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway is the minimal concrete gateway used across the tests.
type stubGateway struct {
	Base
}

func newStub(adapter string) *stubGateway {
	return &stubGateway{Base: NewBase(adapter)}
}

func TestAdapterIdentifier(t *testing.T) {
	gw := newStub("stub")

	first, err := gw.Adapter()
	require.NoError(t, err)
	second, err := gw.Adapter()
	require.NoError(t, err)
	assert.Equal(t, "stub", first)
	assert.Equal(t, first, second, "identifier is stable across calls")
}

func TestMissingAdapterIdentifier(t *testing.T) {
	gw := &stubGateway{}

	_, err := gw.Adapter()
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestBaseDefaults(t *testing.T) {
	gw := newStub("stub")

	assert.Empty(t, gw.Schema())
	assert.NoError(t, gw.Disconnect())
	assert.NotNil(t, gw.Logger())

	_, err := gw.Dataset("users")
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.False(t, gw.HasDataset("users"))
}

func TestNoopRunnerYieldsExactlyOnce(t *testing.T) {
	gw := newStub("stub")

	calls := 0
	v, err := gw.Transaction(context.Background(), DefaultTxOptions(), func(ctx context.Context) (any, error) {
		calls++
		return "result", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "result", v, "returns exactly the block's value")
	assert.Equal(t, 1, calls, "executes the block exactly once")
}

func TestTransactionMapsRollbackSentinel(t *testing.T) {
	gw := newStub("stub")

	v, err := gw.Transaction(context.Background(), DefaultTxOptions(), func(ctx context.Context) (any, error) {
		return "ignored", ErrRollback
	})
	assert.NoError(t, err)
	assert.Nil(t, v, "a rolled-back block reports a nil result")
}

func TestTransactionPropagatesErrors(t *testing.T) {
	gw := newStub("stub")

	_, err := gw.Transaction(context.Background(), DefaultTxOptions(), func(ctx context.Context) (any, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRegistrySetupWithInstance(t *testing.T) {
	reg := NewRegistry()
	gw := newStub("stub")

	resolved, err := reg.Setup(gw)
	require.NoError(t, err)
	assert.Same(t, gw, resolved, "an instance passes through unchanged")

	_, err = reg.Setup(gw, "extra")
	assert.ErrorIs(t, err, ErrInvalidSetup, "instance plus constructor args is ambiguous")
}

func TestRegistrySetupByIdentifier(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("stub", func(args ...any) (Gateway, error) {
		return newStub("stub"), nil
	}))

	gw, err := reg.Setup("stub")
	require.NoError(t, err)
	adapter, err := gw.Adapter()
	require.NoError(t, err)
	assert.Equal(t, "stub", adapter)
}

func TestRegistrySetupUnknownAdapter(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Setup("missing_adapter")
	assert.True(t, IsAdapterLoad(err))
}

func TestRegistrySetupByURLScheme(t *testing.T) {
	reg := NewRegistry()
	var gotArgs []any
	require.NoError(t, reg.Register("stub", func(args ...any) (Gateway, error) {
		gotArgs = args
		return newStub("stub"), nil
	}))

	_, err := reg.Setup("stub://localhost/data", "opt")
	require.NoError(t, err)
	require.Len(t, gotArgs, 2)
	assert.Equal(t, "stub://localhost/data", gotArgs[0], "the full URL leads the builder args")
	assert.Equal(t, "opt", gotArgs[1])
}

func TestRegistrySetupRejectsSchemelessURL(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Setup("://localhost/data")
	assert.ErrorIs(t, err, ErrRawURL)
	assert.True(t, IsInvalidSetup(err))
}

func TestRegistrySetupRejectsUnsupportedTarget(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Setup(42)
	assert.ErrorIs(t, err, ErrInvalidSetup)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	builder := func(args ...any) (Gateway, error) { return newStub("stub"), nil }

	require.NoError(t, reg.Register("stub", builder))
	err := reg.Register("stub", builder)
	assert.ErrorIs(t, err, ErrDuplicateAdapter)

	err = reg.Register("", builder)
	assert.ErrorIs(t, err, ErrInvalidSetup)

	assert.Equal(t, []string{"stub"}, reg.Adapters())
}

func TestIsolationLevelString(t *testing.T) {
	assert.Equal(t, "READ COMMITTED", ReadCommitted.String())
	assert.Equal(t, "REPEATABLE READ", RepeatableRead.String())
	assert.Equal(t, "SERIALIZABLE", Serializable.String())
	assert.Equal(t, "READ COMMITTED", IsolationLevel(99).String())
}
