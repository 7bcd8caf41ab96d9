// Package storage opens the key-value backend selected in the config.
package storage

import (
	"context"
	"fmt"

	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/kvstore"
	"github.com/2beens/gymlog/internal/kvstore/diskstore"
	"github.com/2beens/gymlog/internal/kvstore/memstore"
	"github.com/2beens/gymlog/internal/kvstore/pgstore"
	"github.com/2beens/gymlog/internal/kvstore/redisstore"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type OpenParams struct {
	Config         *config.Config
	RedisPassword  string
	DBUser         string
	DBPassword     string
	TracingEnabled bool
	// SharedBackend is set by processes that run next to the service on the same
	// backend. The read cache is never invalidated by writes from another process,
	// so it stays off for them.
	SharedBackend bool
}

// Backend is the opened store plus the clients behind it.
// RedisClient is set whenever redis is configured, also when it only backs the rate limiter.
type Backend struct {
	Store       kvstore.Store
	Cache       *kvstore.CachedStore
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
	dbName      string
}

func Open(ctx context.Context, params OpenParams) (*Backend, error) {
	cfg := params.Config
	b := &Backend{}

	if cfg.UsesRedis() {
		b.RedisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: params.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if params.TracingEnabled {
			b.RedisClient.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := b.RedisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	var store kvstore.Store
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warnln("memory storage backend: workouts will not survive a restart")
		store = memstore.New()
	case config.BackendDisk:
		diskStore, err := diskstore.New(cfg.DiskRootPath)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open disk store: %w", err)
		}
		store = diskStore
	case config.BackendRedis:
		store = redisstore.New(b.RedisClient, redisstore.DefaultNamespace)
	case config.BackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         params.DBUser,
			DBPassword:     params.DBPassword,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		b.DBPool = dbPool
		b.dbName = cfg.PostgresDBName

		pgStore := pgstore.New(dbPool)
		if err := pgStore.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate kv table: %w", err)
		}
		store = pgStore
	default:
		b.Close()
		return nil, fmt.Errorf("%w: unknown storage backend [%s]", config.ErrInvalidConfig, cfg.StorageBackend)
	}

	// the memory backend gains nothing from a cache in front of it
	cacheSizeMB := cfg.CacheSizeMB
	if params.SharedBackend || cfg.StorageBackend == config.BackendMemory {
		cacheSizeMB = 0
	}
	if cacheSizeMB > 0 {
		b.Cache = kvstore.NewCachedStore(store, cacheSizeMB)
		store = b.Cache
	}
	b.Store = store

	log.Infof("storage backend: %s (cache %d MB)", cfg.StorageBackend, cacheSizeMB)
	return b, nil
}

// Collectors returns the prometheus collectors of the opened clients.
func (b *Backend) Collectors() []prometheus.Collector {
	var collectors []prometheus.Collector
	if b.DBPool != nil {
		collectors = append(collectors, db.PoolCollector(b.DBPool, b.dbName))
	}
	return collectors
}

func (b *Backend) Close() {
	if b.RedisClient != nil {
		if err := b.RedisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}
	if b.DBPool != nil {
		log.Debugln("closing db pool ...")
		b.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
}
