package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairRelation(t *testing.T) *Relation {
	t.Helper()
	ds := &sliceDataset{tuples: []Tuple{
		{"id": "1", "name": "Jane"},
		{"id": "2", "name": "John"},
		{"id": "3", "name": "Jill"},
	}}
	def := Definition{
		Name:   "users",
		Schema: usersSchema(t),
		Views: map[string]View{
			"pair": {
				Name:  "pair",
				Arity: 2,
				Fn: func(r *Relation, args ...any) (Node, error) {
					return r.Restrict("id", args...), nil
				},
			},
		},
	}
	r, err := def.Build(ds)
	require.NoError(t, err)
	return r
}

func TestCurriedAccumulatesArguments(t *testing.T) {
	r := pairRelation(t)

	node, err := r.View("pair")
	require.NoError(t, err)

	curried, ok := node.(*Curried)
	require.True(t, ok)
	assert.True(t, curried.Curried())
	assert.False(t, curried.Graphed())
	assert.Equal(t, "pair", curried.Name())
	assert.Equal(t, 2, curried.Remaining())

	partial, err := curried.Apply("1")
	require.NoError(t, err)
	stillCurried, ok := partial.(*Curried)
	require.True(t, ok)
	assert.Equal(t, 1, stillCurried.Remaining())
	assert.Equal(t, 2, curried.Remaining(), "apply never mutates the receiver")

	saturated, err := stillCurried.Apply("3")
	require.NoError(t, err)
	loaded, err := saturated.Call()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestCurriedOverApplication(t *testing.T) {
	r := pairRelation(t)

	node, err := r.View("pair", "1")
	require.NoError(t, err)
	curried := node.(*Curried)

	_, err = curried.Apply("2", "3")
	assert.ErrorIs(t, err, ErrArity)
}

func TestCurriedCallIsUnsatisfied(t *testing.T) {
	r := pairRelation(t)

	node, err := r.View("pair", "1")
	require.NoError(t, err)

	_, err = node.Call()
	assert.ErrorIs(t, err, ErrUnsatisfiedView)
}
