package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daladala/internal/cache"
	intconfig "daladala/internal/config"
	intdb "daladala/internal/db"
	router "daladala/internal/http"
	h "daladala/internal/http/handlers"
	"daladala/internal/repositories"
	"daladala/internal/utils"

	"github.com/redis/go-redis/v9"
)

func main() {
	env := intconfig.LoadEnv()
	utils.ConfigureLogger(env.LogLevel, env.LogFormat)
	log := utils.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, conn, err := openStore(ctx, env)
	if err != nil {
		cancel()
		log.WithError(err).Fatal("failed to open store")
	}
	if conn != nil {
		defer conn.Close()
	}

	availability, rdb := openCache(ctx, env)
	if rdb != nil {
		defer rdb.Close()
	}
	cancel()

	r := router.NewRouter(env, h.Handler{Store: store, Cache: availability})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
		return
	}

	log.Info("server stopped")
}

// openStore returns the seat store named by STORE_DRIVER. The memory
// driver is seeded with a demo trip departing today.
func openStore(ctx context.Context, env intconfig.Env) (repositories.Store, *sql.DB, error) {
	if env.StoreDriver == "memory" {
		mem := repositories.NewMemoryStore()
		trip := mem.SeedDemo(utils.FormatDate(time.Now()))
		utils.Logger().WithField("trip_id", trip.ID).Info("memory store seeded")
		return mem, nil, nil
	}

	conn, err := intconfig.ConnectDB(ctx, env.DB)
	if err != nil {
		return nil, nil, err
	}
	if env.DBAutoMigrate {
		if err := intdb.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}
	return repositories.SQLStore{DB: conn, TxTimeout: env.TxTimeout}, conn, nil
}

// openCache never fails: an unreachable redis degrades to no caching.
func openCache(ctx context.Context, env intconfig.Env) (cache.AvailabilityCache, *redis.Client) {
	if env.CacheDriver != "redis" {
		return cache.New(env.CacheDriver, nil, env.CacheTTL), nil
	}
	rdb, err := intconfig.ConnectRedis(ctx, env.Redis)
	if err != nil {
		utils.LogFailure("", "main", "connect_redis", err)
		return cache.Noop{}, nil
	}
	return cache.New("redis", cache.NewRedisAvailabilityCache(rdb, "daladala:", env.CacheTTL), env.CacheTTL), rdb
}
