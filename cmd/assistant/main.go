// cmd/assistant/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storeassist/internal/analytics"
	"storeassist/internal/common/config"
	"storeassist/internal/common/database"
	"storeassist/internal/common/logger"
	"storeassist/internal/common/observability"
	"storeassist/internal/connectors/geocoder"
	"storeassist/internal/connectors/notifier"
	"storeassist/internal/crm"
	"storeassist/internal/orchestrator"
	"storeassist/internal/retrieval/geo"
	"storeassist/internal/retrieval/storage"
	"storeassist/internal/server"
	"storeassist/internal/session"
	"storeassist/internal/strategy"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("defaultMode", cfg.Assistant.DefaultMode),
	)

	obs := observability.New("assistant")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis (session backend and geocode cache) ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Session backend ---
	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		if redisClient == nil {
			zapLog.Fatal("session backend is redis but no redis address configured")
		}
		sessions = session.NewRedisStore(redisClient.Client)
	default:
		sessions = session.NewMemoryStore()
	}
	zapLog.Info("Session store ready", zap.String("backend", cfg.Session.Backend))

	// --- Geocoder (optional, degrades to outward-prefix matching) ---
	var geocode geo.Geocoder
	if cfg.Geocoder.Enabled {
		var cache *redis.Client
		if redisClient != nil {
			cache = redisClient.Client
		}
		geocode = geocoder.New(cfg.Geocoder, cache, log)
		zapLog.Info("Geocoder enabled", zap.String("baseURL", cfg.Geocoder.BaseURL))
	}

	// --- Load tenants ---
	tenantNames, err := storage.ListTenants(cfg.Data.Root)
	if err != nil {
		zapLog.Fatal("tenant discovery failed", zap.Error(err))
	}
	if len(tenantNames) == 0 {
		zapLog.Fatal("no tenant directories found", zap.String("root", cfg.Data.Root))
	}

	tenants := make(map[string]*orchestrator.Tenant, len(tenantNames))
	for _, name := range tenantNames {
		t, err := orchestrator.NewTenant(storage.New(cfg.Data.Root, name), geocode, log)
		if err != nil {
			zapLog.Fatal("tenant load failed", zap.String("tenant", name), zap.Error(err))
		}
		tenants[name] = t
		zapLog.Info("Tenant loaded",
			zap.String("tenant", name),
			zap.Int("catalogItems", t.Catalog.CountItems()),
		)
	}

	if cfg.Data.WatchReloads {
		for _, t := range tenants {
			t := t
			go func() {
				if err := t.Watch(ctx); err != nil && ctx.Err() == nil {
					zapLog.Error("document watcher stopped", zap.String("tenant", t.Name), zap.Error(err))
				}
			}()
		}
		zapLog.Info("Document watchers started", zap.Int("tenants", len(tenants)))
	}

	// --- Optional collaborators ---
	var orchOpts []orchestrator.Option

	if cfg.Database.Postgres.Host != "" {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		orchOpts = append(orchOpts, orchestrator.WithRecorder(crm.NewService(pg.DB, log)))
		zapLog.Info("PostgreSQL connected successfully")
	}

	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		orchOpts = append(orchOpts,
			orchestrator.WithTurnLogger(analytics.NewService(esClient.Client, cfg.Database.Elasticsearch.Index, log)))
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Notifications.Enabled {
		n, err := notifier.New(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		orchOpts = append(orchOpts, orchestrator.WithNotifier(n))
		zapLog.Info("Handoff notifier enabled", zap.String("region", cfg.Notifications.Region))
	}

	// --- Orchestrator ---
	orc := orchestrator.New(
		orchestrator.Config{
			DefaultMode:  cfg.Assistant.DefaultMode,
			ModeByTenant: cfg.Assistant.ModeByTenant,
			SessionTTL:   time.Duration(cfg.Session.TTLSeconds) * time.Second,
		},
		tenants,
		sessions,
		strategy.Options{
			CTA:        cfg.Assistant.CTA,
			Guardrails: cfg.Assistant.Guardrails,
			Clarifiers: cfg.Assistant.Clarifiers,
		},
		log,
		orchOpts...,
	)

	// --- Metrics server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- API server ---
	api := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.New(orc, obs, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("addr", api.Addr))
		if err := api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Assistant stopped gracefully")
}
