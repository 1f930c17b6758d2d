package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	shared "github.com/davicafu/hexapaginate/internal/shared/domain"
)

var testSchema = Fields("name", "age", "address")

func TestBuildFilter_Operators(t *testing.T) {
	// Arrange
	conds := []shared.Criterion{
		{Field: "name", Op: shared.OpLike, Value: "ann"},
		{Field: "_id", Op: shared.OpIn, Value: []any{1, 2}},
		{Field: "address.city", Value: "Madrid"},
	}

	// Act
	filter, err := BuildFilter(conds, testSchema, false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"name":         primitive.Regex{Pattern: "ann", Options: "i"},
		"_id":          bson.M{"$in": []any{1, 2}},
		"address.city": "Madrid",
	}, filter)
}

// La cota complementaria se combina en un rango; la misma dirección sobrescribe.
func TestBuildFilter_RangeMerge(t *testing.T) {
	cases := []struct {
		name  string
		conds []shared.Criterion
		want  bson.M
	}{
		{
			"gt seguido de lt",
			[]shared.Criterion{{Field: "age", Op: shared.OpGt, Value: 18}, {Field: "age", Op: shared.OpLt, Value: 65}},
			bson.M{"age": bson.M{"$gt": 18, "$lt": 65}},
		},
		{
			"lte seguido de gte",
			[]shared.Criterion{{Field: "age", Op: shared.OpLte, Value: 65}, {Field: "age", Op: shared.OpGte, Value: 18}},
			bson.M{"age": bson.M{"$gte": 18, "$lte": 65}},
		},
		{
			"gt seguido de gt sobrescribe",
			[]shared.Criterion{{Field: "age", Op: shared.OpGt, Value: 18}, {Field: "age", Op: shared.OpGt, Value: 30}},
			bson.M{"age": bson.M{"$gt": 30}},
		},
		{
			"gt seguido de lte no combina",
			[]shared.Criterion{{Field: "age", Op: shared.OpGt, Value: 18}, {Field: "age", Op: shared.OpLte, Value: 65}},
			bson.M{"age": bson.M{"$lte": 65}},
		},
		{
			"cota cero también combina",
			[]shared.Criterion{{Field: "age", Op: shared.OpGt, Value: 0}, {Field: "age", Op: shared.OpLt, Value: 10}},
			bson.M{"age": bson.M{"$gt": 0, "$lt": 10}},
		},
		{
			"igualdad posterior sobrescribe el rango",
			[]shared.Criterion{{Field: "age", Op: shared.OpGt, Value: 18}, {Field: "age", Value: 40}},
			bson.M{"age": 40},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter, err := BuildFilter(tc.conds, testSchema, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, filter)
		})
	}
}

func TestBuildFilter_UnknownProperty(t *testing.T) {
	conds := []shared.Criterion{{Field: "ghost", Value: 1}, {Field: "name", Value: "Ana"}}

	filter, err := BuildFilter(conds, testSchema, false)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"name": "Ana"}, filter)

	_, err = BuildFilter(conds, testSchema, true)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestDefaultCriteriaConverter_NativeIsIdentity(t *testing.T) {
	native := bson.M{"ghost": bson.M{"$exists": true}, "age": bson.M{"$gt": 1}}

	out, err := DefaultCriteriaConverter(context.Background(), Criteria(native), testSchema)

	require.NoError(t, err)
	assert.Equal(t, native, out)
}

func TestDefaultCriteriaConverter_Encoded(t *testing.T) {
	ctx := context.Background()

	out, err := DefaultCriteriaConverter(ctx, CriteriaJSON(`[{"property":"age","operator":"gte","value":18}]`), testSchema)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"age": bson.M{"$gte": float64(18)}}, out)

	out, err = DefaultCriteriaConverter(ctx, CriteriaJSON(""), testSchema)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = DefaultCriteriaConverter(ctx, CriteriaJSON(`[{"value":1}]`), testSchema)
	assert.ErrorIs(t, err, ErrTranslation)

	_, err = StrictCriteriaConverter(ctx, CriteriaJSON(`[{"property":"ghost","value":1}]`), testSchema)
	assert.ErrorIs(t, err, ErrTranslation)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}
