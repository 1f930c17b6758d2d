package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAndParse(t *testing.T) {
	crit := And(
		Conditions{{Field: "age", Op: OpGte, Value: 18}},
		Conditions{{Field: "name", Op: OpLike, Value: "an"}},
	)

	raw, err := Encode(crit)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"property":"age","operator":"gte","value":18},{"property":"name","operator":"like","value":"an"}]`, raw)

	conds, err := ParseConditions(raw)
	require.NoError(t, err)
	require.Len(t, conds, 2)
	assert.Equal(t, OpLike, conds[1].Op)
}

func TestParseConditions_Errors(t *testing.T) {
	conds, err := ParseConditions("  ")
	assert.NoError(t, err)
	assert.Nil(t, conds)

	_, err = ParseConditions(`{"property":"a"}`)
	assert.Error(t, err)

	_, err = ParseConditions(`[{"operator":"eq","value":1}]`)
	assert.Error(t, err)
}

func TestEncode_Nil(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}
