package integration

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	countCache "github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/cache"
	sharedCache "github.com/davicafu/hexapaginate/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexapaginate/tests/mocks"
)

func TestCountCacheRedisIntegration(t *testing.T) {
	addr := requireEnv(t, "REDIS_ADDR")

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	prefix := "hexapaginate-test:" + uuid.NewString() + ":"
	spy := &mocks.SpyDataSource{Total: 42}
	source := countCache.NewCachedDataSource(spy, sharedCache.NewRedisCache(rdb, prefix), "customers", 30, zap.NewNop())

	filter := bson.M{"age": bson.M{"$gte": 18}}
	first, err := source.Count(ctx, filter)
	require.NoError(t, err)
	second, err := source.Count(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, int64(42), first)
	assert.Equal(t, int64(42), second)
	assert.Len(t, spy.CountCalls(), 1)

	key, err := countCache.CountKey("customers", filter)
	require.NoError(t, err)
	rdb.Del(ctx, prefix+key)
}
