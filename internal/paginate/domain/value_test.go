package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestValue_Kinds(t *testing.T) {
	var unset LimitValue
	assert.False(t, unset.IsSet())

	lit := Limit(5)
	n, ok := lit.Literal()
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	enc := SortJSON("[]")
	raw, ok := enc.Encoded()
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
	_, ok = enc.Literal()
	assert.False(t, ok)

	assert.False(t, LimitFunc(nil).IsSet())
	assert.False(t, SelectFunc(nil).IsSet())
	assert.True(t, PageFunc(func(context.Context, int) (int, error) { return 1, nil }).IsSet())
}

func TestValue_ResolveOrder(t *testing.T) {
	ctx := context.Background()
	decodeCalled := false
	decode := func(ctx context.Context, v Value[None, bson.M]) (bson.M, error) {
		decodeCalled = true
		return bson.M{"decoded": true}, nil
	}

	// Un productor no pasa por el traductor.
	out, err := CriteriaFunc(func(context.Context) (bson.M, error) { return bson.M{"produced": true}, nil }).Resolve(ctx, None{}, decode)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"produced": true}, out)
	assert.False(t, decodeCalled)

	// Literal y codificado sí.
	out, err = CriteriaJSON("[]").Resolve(ctx, None{}, decode)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"decoded": true}, out)

	// Sin traductor, el literal se devuelve tal cual y el codificado falla.
	out, err = Criteria(bson.M{"a": 1}).Resolve(ctx, None{}, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"a": 1}, out)

	_, err = CriteriaJSON("[]").Resolve(ctx, None{}, nil)
	assert.True(t, errors.Is(err, errNoDecoder))
}

func TestValue_ProducerReceivesInput(t *testing.T) {
	got := 0
	v := LimitFunc(func(_ context.Context, maxLimit int) (int, error) {
		got = maxLimit
		return maxLimit / 2, nil
	})

	n, err := v.Resolve(context.Background(), 40, nil)

	require.NoError(t, err)
	assert.Equal(t, 40, got)
	assert.Equal(t, 20, n)
}
