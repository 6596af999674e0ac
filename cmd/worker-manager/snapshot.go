package main

import (
	"context"
	"fmt"

	"storefront-workers/internal/common/camunda"
	"storefront-workers/internal/common/config"
	"storefront-workers/internal/common/database"
	"storefront-workers/internal/common/logger"
	"storefront-workers/internal/common/observability"
	"storefront-workers/internal/snapshot"
)

// backing is the composed snapshot source plus the stores behind it.
type backing struct {
	source  snapshot.Source
	stores  []database.Pinger
	closers []func() error
}

func (b *backing) close(log logger.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("close failed", map[string]interface{}{"error": err})
		}
	}
}

var storeRetry = camunda.RetryConfig{
	MaxAttempts: 10,
	BaseDelay:   camunda.DefaultRetryConfig.BaseDelay,
	MaxDelay:    camunda.DefaultRetryConfig.MaxDelay,
}

// openSnapshotSource connects the configured store and wraps it with the cache and
// instrumentation layers.
func openSnapshotSource(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*backing, error) {
	b := &backing{}
	cc := cfg.Catalog

	switch cc.SnapshotSource {
	case config.SourceStatic:
		static, err := snapshot.NewStaticFromFile(cc.SnapshotFile)
		if err != nil {
			return nil, err
		}
		b.source = static

	case config.SourcePostgres:
		var pg *database.PostgresClient
		err := camunda.RetryWithBackoff(ctx, storeRetry, log, "PostgreSQL connection", func(ctx context.Context) error {
			client, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				_ = client.Close()
				return err
			}
			pg = client
			return nil
		})
		if err != nil {
			return nil, err
		}
		b.stores = append(b.stores, pg)
		b.closers = append(b.closers, pg.Close)
		b.source = snapshot.NewPostgresSource(pg.DB, cc.ProductsTable, cc.SnapshotMaxSize)

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := camunda.RetryWithBackoff(ctx, storeRetry, log, "Elasticsearch connection", es.Ping); err != nil {
			return nil, err
		}
		if ok, err := es.IndexExists(ctx, cc.IndexName); err == nil && !ok {
			log.Warn("product index does not exist yet", map[string]interface{}{"index": cc.IndexName})
		}
		b.stores = append(b.stores, es)
		b.source = snapshot.NewElasticsearchSource(es.Client, cc.IndexName, cc.SnapshotMaxSize)

	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cc.SnapshotSource)
	}

	if cc.Cache.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("snapshot cache unreachable, loads will bypass it until it recovers", map[string]interface{}{"error": err})
		}
		b.stores = append(b.stores, rdb)
		b.closers = append(b.closers, rdb.Close)
		b.source = snapshot.NewCachedSource(b.source, rdb.Client, cc.Cache.Key, config.GetDuration(cc.Cache.TTL), log)
	}

	b.source = snapshot.NewInstrumented(b.source, config.GetDuration(cc.LoadTimeout), obs)

	log.Info("snapshot source ready", map[string]interface{}{
		"source": b.source.Name(),
		"cached": cc.Cache.Enabled,
	})
	return b, nil
}
