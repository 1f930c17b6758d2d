package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/application"
	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

func requireEnv(t *testing.T, key string) string {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s no definido, se omite la prueba de integración", key)
	}
	return v
}

func customers(n int) []bson.M {
	docs := make([]bson.M, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, bson.M{
			"_id":  i,
			"name": fmt.Sprintf("Customer %d", i),
			"age":  17 + i,
			"vip":  i%3 == 0,
		})
	}
	return docs
}

// assertPaging recorre el mismo escenario contra cualquier almacén sembrado
// con customers(12).
func assertPaging(t *testing.T, source domain.DataSource) {
	t.Helper()
	ctx := context.Background()
	c := application.Attach("customers", source, domain.Fields("name", "age", "vip"), domain.Defaults{MaxLimit: 10})

	// Página 2 de un filtro codificado
	res, err := c.Paginate(ctx,
		domain.CriteriaJSON(`[{"property":"age","operator":"gt","value":19},{"property":"age","operator":"lt","value":28}]`),
		domain.Options{
			Limit: domain.Limit(3),
			Page:  domain.Page(2),
			Sort:  domain.SortJSON(`[{"property":"age","direction":"DESC"}]`),
		})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Total)
	assert.Equal(t, int64(3), res.Limit)
	require.Len(t, res.Data, 3)
	assert.EqualValues(t, 24, res.Data[0]["age"])

	// Sin límite pedido se aplica el tope
	res, err = c.Paginate(ctx, domain.Criteria(bson.M{}), domain.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Total)
	assert.Equal(t, int64(10), res.Limit)
	assert.Len(t, res.Data, 10)

	// like insensible más booleano
	res, err = c.Paginate(ctx,
		domain.CriteriaJSON(`[{"property":"name","operator":"like","value":"customer 1"},{"property":"vip","value":true}]`),
		domain.Options{Select: domain.SelectFields("name -_id")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total) // Customer 12
	require.Len(t, res.Data, 1)
	assert.Equal(t, bson.M{"name": "Customer 12"}, res.Data[0])

	// Sin coincidencias
	res, err = c.Paginate(ctx, domain.Criteria(bson.M{"age": bson.M{"$gt": 1000}}), domain.Options{Limit: domain.Limit(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Total)
	assert.Empty(t, res.Data)
}
