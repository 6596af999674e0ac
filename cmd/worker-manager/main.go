// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront-workers/internal/api"
	"storefront-workers/internal/catalog"
	"storefront-workers/internal/common/camunda"
	"storefront-workers/internal/common/config"
	"storefront-workers/internal/common/logger"
	"storefront-workers/internal/common/observability"
	"storefront-workers/internal/snapshot"

	el "storefront-workers/internal/workers/catalog/evaluate-listing"
	rc "storefront-workers/internal/workers/catalog/reconcile-criteria"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, sync := logger.FromConfig(cfg.Logging)
	log = log.WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	if err := run(cfg, log); err != nil {
		log.Error("worker manager stopped with error", map[string]interface{}{"error": err})
		sync()
		os.Exit(1)
	}
	sync()
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting worker manager", map[string]interface{}{
		"snapshotSource": cfg.Catalog.SnapshotSource,
		"cacheEnabled":   cfg.Catalog.Cache.Enabled,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("observability setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obs.Shutdown(sctx)
	}()

	backing, err := openSnapshotSource(ctx, cfg, obs, log)
	if err != nil {
		return err
	}
	defer backing.close(log)

	reconciler := catalog.NewReconciler(cfg.Catalog.Vocabulary)

	zeebe, err := camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda), log)
	if err != nil {
		return fmt.Errorf("zeebe: %w", err)
	}
	workers := camunda.NewWorkers(zeebe, log)
	defer func() {
		if err := workers.Close(); err != nil {
			log.Warn("zeebe client close failed", map[string]interface{}{"error": err})
		}
	}()

	if err := registerWorkers(cfg, workers, reconciler, backing.source, obs, log); err != nil {
		return err
	}
	log.Info("workers registered", map[string]interface{}{"count": workers.Count()})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Enabled {
		server := &http.Server{
			Addr: cfg.HTTP.Address,
			Handler: api.NewServer(cfg.HTTP, api.Dependencies{
				Source:     backing.source,
				Reconciler: reconciler,
				Stores:     backing.stores,
				Obs:        obs,
				Logger:     log,
			}).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Info("http server listening", map[string]interface{}{"address": cfg.HTTP.Address})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(sctx)
		})
	} else {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	err = g.Wait()
	log.Info("shutdown signal received, stopping workers", nil)
	return err
}

func registerWorkers(
	cfg *config.Config,
	workers *camunda.Workers,
	reconciler *catalog.Reconciler,
	source snapshot.Source,
	obs *observability.Observability,
	log logger.Logger,
) error {
	rcConfig := rc.LoadConfig(cfg)
	if err := rcConfig.Validate(); err != nil {
		return fmt.Errorf("%s config: %w", rc.TaskType, err)
	}
	workers.Start(rc.TaskType, config.GetWorkerConfig(cfg, rc.TaskType),
		rc.NewHandler(rcConfig, reconciler, log).Handle)

	elConfig := el.LoadConfig(cfg)
	if err := elConfig.Validate(); err != nil {
		return fmt.Errorf("%s config: %w", el.TaskType, err)
	}
	elHandler, err := el.NewHandler(elConfig, source, obs, log)
	if err != nil {
		return fmt.Errorf("%s: %w", el.TaskType, err)
	}
	workers.Start(el.TaskType, config.GetWorkerConfig(cfg, el.TaskType), elHandler.Handle)

	return nil
}
