package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/analytics/clickhouse"
)

func TestStatsClickHouseIntegration(t *testing.T) {
	addr := requireEnv(t, "CLICKHOUSE_ADDR")

	repo, err := clickhouse.NewStatsRepo(addr, "default")
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.InitSchema(ctx))

	collection := "customers_" + uuid.NewString()[:8]
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Record(ctx, domain.PageStats{
			QueryID:    uuid.New(),
			Collection: collection,
			Total:      12,
			Limit:      5,
			Page:       i + 1,
			Returned:   5,
			Duration:   time.Duration(i+1) * time.Millisecond,
			At:         now,
		}))
	}

	usage, err := repo.UsageSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)

	var found *domain.CollectionUsage
	for i := range usage {
		if usage[i].Collection == collection {
			found = &usage[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, uint64(3), found.Pages)
	assert.InDelta(t, 2.0, found.AvgDurationMs, 0.001)
}
