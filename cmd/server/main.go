package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	authapp "github.com/mrobles-dev/tienda/internal/auth/app"
	authpg "github.com/mrobles-dev/tienda/internal/auth/infra/postgres"
	"github.com/mrobles-dev/tienda/internal/auth/token"
	cartapp "github.com/mrobles-dev/tienda/internal/cart/app"
	cartpg "github.com/mrobles-dev/tienda/internal/cart/infra/postgres"
	catalogapp "github.com/mrobles-dev/tienda/internal/catalog/app"
	"github.com/mrobles-dev/tienda/internal/catalog/cache"
	"github.com/mrobles-dev/tienda/internal/catalog/upstream"
	"github.com/mrobles-dev/tienda/internal/httpapi"
	orderapp "github.com/mrobles-dev/tienda/internal/order/app"
	orderpg "github.com/mrobles-dev/tienda/internal/order/infra/postgres"
	"github.com/mrobles-dev/tienda/pkg/config"
	"github.com/mrobles-dev/tienda/pkg/logger"
	"github.com/mrobles-dev/tienda/pkg/postgres"
	"github.com/mrobles-dev/tienda/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := postgres.Open(postgres.Config{
		Host: cfg.PostgresHost,
		Port: cfg.PostgresPort,
		User: cfg.PostgresUser,
		Pass: cfg.PostgresPassword,
		DB:   cfg.PostgresDB,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Error("migrations failed", slog.Any("err", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	tokens := token.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	authSvc := authapp.NewService(authpg.NewUserRepo(db), tokens)
	cartSvc := cartapp.NewService(cartpg.NewCartRepo(db))
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db))
	catalogSvc := catalogapp.NewService(
		upstream.NewClient(cfg.CatalogBaseURL),
		cache.NewRedisCache(redisClient),
	)

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:    httpapi.NewAuthHandler(authSvc),
		Cart:    httpapi.NewCartHandler(cartSvc),
		Order:   httpapi.NewOrderHandler(orderSvc, cartSvc),
		Catalog: httpapi.NewCatalogHandler(catalogSvc),
	}, tokens, log)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
