package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stacksave/internal/handlers"
	"stacksave/internal/middleware"
	"stacksave/internal/repository"
	"stacksave/internal/repository/memory"
	"stacksave/internal/routes"
	"stacksave/internal/seed"
	"stacksave/internal/services"
	"stacksave/pkg/config"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}

	var queryOpts []services.QueryOption
	if cfg.QueryCacheTTL > 0 {
		cache, err := services.NewQueryCache()
		if err != nil {
			logrus.Fatalf("Failed to create query cache: %v", err)
		}
		defer cache.Close()
		queryOpts = append(queryOpts, services.WithCache(cache, cfg.QueryCacheTTL))
	}
	query := services.NewQueryService(repos, queryOpts...)

	var faucetOpts []services.FaucetOption
	if cfg.RabbitMQ.Enabled() {
		conn, err := config.DialRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			logrus.Fatalf("Failed to initialize RabbitMQ: %v", err)
		}
		defer conn.Close()

		publisher, err := config.NewPublisher(conn)
		if err != nil {
			logrus.Fatalf("Failed to create publisher: %v", err)
		}
		defer publisher.Close()

		faucetOpts = append(faucetOpts, services.WithGrantNotifier(config.NewGrantPublisher(publisher, cfg.FaucetQueue)))
		logrus.Info("RabbitMQ initialized successfully")
	} else {
		logrus.Info("RabbitMQ not configured, faucet grants will not be published")
	}
	faucet := services.NewFaucetService(repos.Faucet, faucetOpts...)

	r := routes.SetupRouter(routes.RouterConfig{
		Production:     cfg.IsProduction(),
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.AllowedOrigins,
		FaucetLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.FaucetIPRPS,
			Burst:             cfg.FaucetIPBurst,
		},
	}, handlers.New(query, faucet))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running on http://localhost:%s%s", cfg.Port, cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}
}

// openRepositories connects the configured store. The memory store is
// loaded with the demo dataset so the API is usable without postgres.
func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		repos := memory.New().Repositories()
		if _, err := seed.Run(ctx, repos.Seeder, seed.Demo(), seed.Options{}); err != nil {
			return nil, err
		}
		logrus.Warn("Using in-memory store, data is lost on restart")
		return repos, nil
	}

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := config.ExecuteMigrations(db, cfg.Database.MigrationsDir); err != nil {
			return nil, err
		}
	}
	return repository.NewGorm(db), nil
}
