package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "KAFKA_BROKERS", "COUNT_CACHE_TTL", "PAGINATE_MAX_LIMIT", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CountCacheTTL)
	assert.Equal(t, 25, cfg.Paginate.MaxLimit)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("COUNT_CACHE_TTL", "2m")
	t.Setenv("PAGINATE_MAX_LIMIT", "-1")
	t.Setenv("PAGINATE_CRITERIA_CONVERTER", "strict")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CountCacheTTL)
	assert.Equal(t, -1, cfg.Paginate.MaxLimit)
	assert.Equal(t, "strict", cfg.Paginate.CriteriaConverter)
}
