package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/hexapaginate/internal/config"
	"github.com/davicafu/hexapaginate/internal/paginate/application"
	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	statsEvents "github.com/davicafu/hexapaginate/internal/paginate/infra/inbound/events"
	paginateHttp "github.com/davicafu/hexapaginate/internal/paginate/infra/inbound/http"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/analytics/clickhouse"
	countCache "github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/cache"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/metrics"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/memory"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/mongodb"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/sqldoc"
	paginateEvents "github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/events"
	infraEvents "github.com/davicafu/hexapaginate/internal/shared/infra/events"
	sharedCache "github.com/davicafu/hexapaginate/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexapaginate/internal/shared/infra/utils"
	"github.com/davicafu/hexapaginate/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Customer define los campos filtrables de la colección de ejemplo.
type Customer struct {
	ID      int       `bson:"_id"`
	Name    string    `bson:"name"`
	Email   string    `bson:"email"`
	Age     int       `bson:"age"`
	VIP     bool      `bson:"vip"`
	Owner   string    `bson:"owner"`
	Since   time.Time `bson:"since"`
	Address struct {
		City    string `bson:"city"`
		Country string `bson:"country"`
	} `bson:"address"`
}

// sources abre una colección del almacén elegido.
type sources struct {
	collection func(name string) domain.DataSource
	insert     func(ctx context.Context, collection string, docs ...bson.M) error
	close      func()
}

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel)
	log := logger.Logger()
	defer log.Sync()

	ctx := context.Background()

	// ---------------- Store ----------------
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.close()

	if err := seed(ctx, store); err != nil {
		log.Warn("seed skipped", zap.Error(err))
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		err := utils.Retry(ctx, 3, 500*time.Millisecond, func() error { return rdb.Ping(ctx).Err() })
		if err != nil {
			log.Warn("⚠️ Redis no disponible, caché de conteos en memoria", zap.Error(err))
			cacheInstance = sharedCache.NewMemoryCache(cfg.CountCacheTTL)
		} else {
			cacheInstance = sharedCache.NewRedisCache(rdb, "hexapaginate:")
			log.Info("✅ Redis conectado, caché de conteos habilitada")
		}
	} else {
		cacheInstance = sharedCache.NewMemoryCache(cfg.CountCacheTTL)
	}
	ttlSecs := int(cfg.CountCacheTTL / time.Second)

	// ---------------- Stats ----------------
	// Con Kafka las páginas se publican y un consumidor las vuelca en
	// ClickHouse; sin Kafka se escriben directamente.
	var recorders application.MultiRecorder
	var usage domain.UsageReader
	var statsRepo *clickhouse.StatsRepo

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promRecorder, err := metrics.NewPromRecorder(promRegistry)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}
	recorders = append(recorders, promRecorder)

	if cfg.ClickHouseAddr != "" {
		repo, err := clickhouse.NewStatsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("ClickHouse no disponible, sin estadísticas de uso", zap.Error(err))
		} else {
			defer repo.Close()
			if err := repo.InitSchema(ctx); err != nil {
				log.Fatal("failed to init ClickHouse schema", zap.Error(err))
			}
			statsRepo = repo
			usage = repo
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		log.Info("🚀 Publicando páginas servidas en Kafka", zap.String("topic", cfg.KafkaTopicStats))
		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopicStats,
			Balancer: &kafka.Hash{},
		}
		defer writer.Close()
		recorders = append(recorders, paginateEvents.NewStatsPublisher(infraEvents.NewKafkaPublisher(writer, log)))

		if statsRepo != nil {
			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:  cfg.KafkaBrokers,
				Topic:    cfg.KafkaTopicStats,
				GroupID:  "hexapaginate-stats",
				MinBytes: 1,
				MaxBytes: 10e6, // 10MB
			})
			defer reader.Close()

			consumerCtx, stop := context.WithCancel(ctx)
			defer stop()
			sink := statsEvents.NewStatsConsumer(statsRepo, log)
			infraEvents.NewConsumerAdapter(reader, cfg.KafkaTopicStats, sink, log).Start(consumerCtx)
		}
	} else if statsRepo != nil {
		recorders = append(recorders, statsRepo)
	}

	// ---------------- Collections ----------------
	hooks := domain.NewHookRegistry()
	defaults := defaultsFrom(cfg.Paginate)

	attachOpts := []application.AttachOption{application.WithHooks(hooks), application.WithLogger(log)}
	attachOpts = append(attachOpts, application.WithStats(recorders))

	registry := application.NewRegistry()
	collections := []struct {
		name   string
		schema domain.Schema
	}{
		{"customers", domain.SchemaOf(Customer{})},
		{"users", domain.Fields("name", "email")},
	}
	for _, c := range collections {
		source := countCache.NewCachedDataSource(store.collection(c.name), cacheInstance, c.name, ttlSecs, log)
		if err := registry.Register(application.Attach(c.name, source, c.schema, defaults, attachOpts...)); err != nil {
			log.Fatal("failed to register collection", zap.String("collection", c.name), zap.Error(err))
		}
	}

	// ---------------- HTTP ----------------
	router := gin.Default()
	paginateHttp.RegisterPaginateRoutes(router, paginateHttp.NewPaginateHandler(registry, usage, log))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sources, error) {
	switch cfg.StoreDriver {
	case "mongodb", "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		var s *mongodb.Store
		err = utils.Retry(ctx, 5, time.Second, func() error {
			s, err = mongodb.NewStore(ctx, client, cfg.MongoDB)
			return err
		})
		if err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		log.Info("✅ MongoDB conectado", zap.String("db", cfg.MongoDB))
		return &sources{
			collection: func(name string) domain.DataSource { return s.Collection(name) },
			insert:     s.Insert,
			close:      func() { client.Disconnect(context.Background()) },
		}, nil

	case "sqlite":
		return openSQL(ctx, "sqlite", cfg.SQLitePath, sqldoc.SQLite{}, log)

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return openSQL(ctx, "pgx", cfg.DatabaseURL, sqldoc.Postgres{}, log)

	case "memory", "":
		s := memory.NewStore()
		return &sources{
			collection: func(name string) domain.DataSource { return s.Collection(name) },
			insert: func(_ context.Context, collection string, docs ...bson.M) error {
				s.Insert(collection, docs...)
				return nil
			},
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openSQL(ctx context.Context, driver, dsn string, dialect sqldoc.Dialect, log *zap.Logger) (*sources, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if err := utils.Retry(ctx, 5, time.Second, func() error { return db.PingContext(ctx) }); err != nil {
		db.Close()
		return nil, err
	}

	s := sqldoc.NewStore(db, dialect)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("✅ Base SQL lista", zap.String("dialect", dialect.Name()))
	return &sources{
		collection: func(name string) domain.DataSource { return s.Collection(name) },
		insert:     s.Insert,
		close:      func() { db.Close() },
	}, nil
}

// defaultsFrom traduce la configuración a los defaults de cada colección.
func defaultsFrom(cfg config.PaginateConfig) domain.Defaults {
	d := domain.Defaults{MaxLimit: cfg.MaxLimit}
	if cfg.CriteriaConverter != "" {
		d.ConvertCriteria = domain.NamedCriteriaConverter(cfg.CriteriaConverter)
	}
	if cfg.SortConverter != "" {
		d.ConvertSort = domain.NamedSortConverter(cfg.SortConverter)
	}
	if cfg.CriteriaWrapper != "" {
		d.WrapCriteria = domain.NamedCriteriaWrapper(cfg.CriteriaWrapper)
	}
	return d
}

// seed carga datos de ejemplo si la colección de clientes está vacía.
func seed(ctx context.Context, s *sources) error {
	total, err := s.collection("customers").Count(ctx, bson.M{})
	if err != nil || total > 0 {
		return err
	}

	users := []bson.M{
		{"_id": "u1", "name": "Ana", "email": "ana@example.com"},
		{"_id": "u2", "name": "Luis", "email": "luis@example.com"},
	}
	if err := s.insert(ctx, "users", users...); err != nil {
		return err
	}

	cities := []string{"Madrid", "Sevilla", "Bilbao"}
	customers := make([]bson.M, 0, 30)
	for i := 1; i <= 30; i++ {
		customers = append(customers, bson.M{
			"_id":     i,
			"name":    fmt.Sprintf("Customer %d", i),
			"email":   fmt.Sprintf("customer%d@example.com", i),
			"age":     18 + (i*7)%50,
			"vip":     i%4 == 0,
			"owner":   users[i%2]["_id"],
			"address": bson.M{"city": cities[i%3], "country": "ES"},
		})
	}
	return s.insert(ctx, "customers", customers...)
}
