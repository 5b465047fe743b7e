package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8084")

	secret := kit.Getenv("SESSION_SECRET", "")
	if len(secret) < 32 {
		log.Fatal("SESSION_SECRET is required and must be at least 32 chars")
	}
	ttl := kit.GetenvDuration("SESSION_TTL", 24*time.Hour)

	store, closeStore := openStore(log, ttl)
	defer closeStore()

	s := &storefront.Server{
		Store:   store,
		Catalog: storefront.NewCatalogClient(kit.Getenv("CATALOG_URL", "http://catalog:8082"), log),
		Tokens:  storefront.NewTokenMaker(secret, ttl),
		Log:     log,
	}

	reg := prometheus.NewRegistry()
	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   kit.Getenv("METRICS_TOKEN", ""),
		TrustProxy:     kit.GetenvBool("TRUST_PROXY", false),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(log *zap.Logger, ttl time.Duration) (storefront.Store, func()) {
	addr := kit.Getenv("REDIS_ADDR", "")
	if addr == "" {
		log.Info("REDIS_ADDR not set, keeping carts in memory")
		return storefront.NewMemStore(ttl), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   kit.GetenvInt("REDIS_DB", 0),
	})
	log.Info("keeping carts in redis", zap.String("addr", addr))

	return storefront.NewRedisStore(rdb, ttl), func() { _ = rdb.Close() }
}
