package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort string
	LogLevel string

	// mongodb | sqlite | postgres | memory
	StoreDriver string
	MongoURI    string
	MongoDB     string
	SQLitePath  string
	DatabaseURL string

	RedisAddr     string // vacío: caché de conteos en memoria
	CountCacheTTL time.Duration

	ClickHouseAddr  string // vacío: sin estadísticas en ClickHouse
	ClickHouseDB    string
	KafkaBrokers    []string // vacío: sin eventos de página
	KafkaTopicStats string

	Paginate PaginateConfig
}

// PaginateConfig son los defaults que se adjuntan a cada colección.
type PaginateConfig struct {
	MaxLimit          int
	CriteriaConverter string
	SortConverter     string
	CriteriaWrapper   string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return n
		}
		return fallback
	}

	var kafkaBrokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		kafkaBrokers = strings.Split(raw, ",")
	}

	ttl, err := time.ParseDuration(getEnv("COUNT_CACHE_TTL", "30s"))
	if err != nil {
		ttl = 30 * time.Second
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "hexapaginate"),
		SQLitePath:      getEnv("SQLITE_PATH", "./hexapaginate.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CountCacheTTL:   ttl,
		ClickHouseAddr:  getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:    getEnv("CLICKHOUSE_DB", "default"),
		KafkaBrokers:    kafkaBrokers,
		KafkaTopicStats: getEnv("KAFKA_TOPIC_STATS", "paginate-stats"),
		Paginate: PaginateConfig{
			MaxLimit:          getInt("PAGINATE_MAX_LIMIT", 25),
			CriteriaConverter: getEnv("PAGINATE_CRITERIA_CONVERTER", ""),
			SortConverter:     getEnv("PAGINATE_SORT_CONVERTER", ""),
			CriteriaWrapper:   getEnv("PAGINATE_CRITERIA_WRAPPER", ""),
		},
	}
}
