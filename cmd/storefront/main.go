package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/config"
	"github.com/fjod/go_comics/internal/gateway"
	h "github.com/fjod/go_comics/internal/http"
	"github.com/fjod/go_comics/internal/logger"
	"github.com/fjod/go_comics/internal/service"
	"github.com/fjod/go_comics/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx := context.Background()

	comics, err := loadCatalog(ctx, cfg.CatalogDBPath)
	if err != nil {
		log.Error("failed to load catalog", "path", cfg.CatalogDBPath, "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "items", comics.Len())

	var cache session.SnapshotCache = session.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		cache = session.NewRedisCache(redisClient, cfg.SessionTTL)
	} else {
		log.Warn("REDIS_ADDR not set, carts are kept in memory only")
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.UpstreamTimeout,
	}
	users, err := gateway.NewHTTPGateway(cfg.UsersAPIURL, httpClient, gateway.WithLogger(log))
	if err != nil {
		log.Error("invalid users api url", "url", cfg.UsersAPIURL, "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(comics, cache, log, session.WithIdleTimeout(cfg.SessionTTL))
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sessions.Run(janitorCtx, time.Minute)

	router := h.NewRouter(h.RouterConfig{
		Catalog:         comics,
		Sessions:        sessions,
		UserActions:     service.NewUserActions(users, log, service.WithFetchTimeout(cfg.UpstreamTimeout)),
		RequestTimeout:  cfg.RequestTimeout,
		UpstreamTimeout: cfg.UpstreamTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "users_api", cfg.UsersAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stopJanitor()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// loadCatalog reads the catalog from SQLite when a path is given, migrating
// and seeding the file first.
func loadCatalog(ctx context.Context, dbPath string) (*catalog.Catalog, error) {
	if dbPath == "" {
		return catalog.Default(), nil
	}

	repo, err := catalog.NewRepository(dbPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return nil, err
	}
	return repo.Load(ctx)
}
