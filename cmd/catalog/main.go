package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

const migrateTimeout = 10 * time.Second

func main() {
	service := "catalog"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8082")

	store, closeStore := openStore(log, kit.Getenv("DATABASE_URL", ""))
	defer closeStore()

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   kit.Getenv("METRICS_TOKEN", ""),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(log *zap.Logger, dsn string) (catalog.Store, func()) {
	if dsn == "" {
		log.Info("DATABASE_URL not set, serving the built-in catalog")
		return catalog.NewMemStore(), func() {}
	}

	db, err := catalog.OpenPostgres(dsn)
	if err != nil {
		log.Fatal("open postgres failed", zap.Error(err))
	}

	store := catalog.NewPostgresStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	return store, func() { _ = db.Close() }
}
