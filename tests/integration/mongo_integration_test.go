package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/mongodb"
	sharedQuery "github.com/davicafu/hexapaginate/internal/shared/infra/platform/query"
)

func setupMongo(t *testing.T) *mongodb.Store {
	t.Helper()
	uri := requireEnv(t, "MONGO_URI")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "hexapaginate_test_" + uuid.NewString()[:8]
	store, err := mongodb.NewStore(ctx, client, dbName)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Database(dbName).Drop(context.Background())
		client.Disconnect(context.Background())
	})
	return store
}

func TestPaginateMongoIntegration(t *testing.T) {
	store := setupMongo(t)
	require.NoError(t, store.Insert(context.Background(), "customers", customers(12)...))

	assertPaging(t, store.Collection("customers"))
}

func TestMongoPopulateIntegration(t *testing.T) {
	store := setupMongo(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, "users", bson.M{"_id": "u1", "name": "Ana", "email": "ana@example.com"}))
	require.NoError(t, store.Insert(ctx, "orders",
		bson.M{"_id": 1, "owner": "u1", "amount": 10},
		bson.M{"_id": 2, "owner": "u1", "amount": 20},
	))

	docs, err := store.Collection("orders").Find(ctx, domain.FindQuery{
		Filter:     bson.M{},
		Sort:       bson.D{{Key: "amount", Value: -1}},
		Pagination: sharedQuery.OffsetPagination{Limit: 1},
		Populate:   []domain.Populate{{Path: "owner", From: "users", Select: bson.M{"name": 1}}},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 20, docs[0]["amount"])
	owner, ok := docs[0]["owner"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Ana", owner["name"])
	assert.NotContains(t, owner, "email")
}
