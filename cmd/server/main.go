package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/shopintel/internal/api"
	"github.com/maltedev/shopintel/internal/browser"
	"github.com/maltedev/shopintel/internal/config"
	"github.com/maltedev/shopintel/internal/criteria"
	"github.com/maltedev/shopintel/internal/database"
	"github.com/maltedev/shopintel/internal/events"
	"github.com/maltedev/shopintel/internal/ratelimit"
	"github.com/maltedev/shopintel/internal/reconcile"
	"github.com/maltedev/shopintel/internal/scraper"
	"github.com/maltedev/shopintel/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logg.Info("starting shopintel server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logg.Info("shutdown signal received")
		cancel()
	}()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logg.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logg.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var sink scraper.EventSink
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		sink = events.NewPublisher(redisClient, cfg.Redis.Stream, logg)
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logg.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	store := database.NewStrategyStore(db, logg)
	limiter := ratelimit.NewJitteredRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	svc := scraper.NewService(b, store, limiter, sink, logg, scraper.Options{
		MaxProducts:       cfg.Scraper.MaxProducts,
		ProbeContainers:   cfg.Scraper.ProbeContainers,
		NavigationTimeout: cfg.Scraper.NavigationTimeout,
		IdleTimeout:       cfg.Scraper.IdleTimeout,
	})

	handlers := api.NewHandlers(svc, reconcile.New(reconcile.DefaultOptions()), criteria.NewCatalog(), logg)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logg.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
}
