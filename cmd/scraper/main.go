package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maltedev/shopintel/internal/browser"
	"github.com/maltedev/shopintel/internal/config"
	"github.com/maltedev/shopintel/internal/criteria"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/queue"
	"github.com/maltedev/shopintel/internal/ratelimit"
	"github.com/maltedev/shopintel/internal/reconcile"
	"github.com/maltedev/shopintel/internal/scraper"
	"github.com/maltedev/shopintel/internal/strategy"
	"github.com/maltedev/shopintel/pkg/logger"
)

func main() {
	var (
		urls       = flag.String("urls", "", "Comma-separated list of listing URLs to scrape")
		inputFile  = flag.String("file", "", "File containing URLs (one per line)")
		query      = flag.String("query", "", "Product query the pages were searched for")
		category   = flag.String("category", "", "Product category (selects criteria set)")
		locale     = flag.String("locale", "", "Browser locale for the scrape")
		formatType = flag.String("format", reconcile.FormatPriceComparison, "Output format: single_product, multi_product, price_comparison")
		headless   = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logg.Info("starting shopintel scraper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logg.Info("shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
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

	// The CLI runs without Postgres; learned strategies live for the run.
	store := strategy.NewMemoryStore()
	limiter := ratelimit.NewJitteredRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	svc := scraper.NewService(b, store, limiter, nil, logg, scraper.Options{
		MaxProducts:       cfg.Scraper.MaxProducts,
		ProbeContainers:   cfg.Scraper.ProbeContainers,
		NavigationTimeout: cfg.Scraper.NavigationTimeout,
		IdleTimeout:       cfg.Scraper.IdleTimeout,
	})

	taskQueue := queue.NewInMemoryQueue()
	if err := loadTasks(taskQueue, *urls, *inputFile, *query, *category, *locale); err != nil {
		logg.Error("failed to load tasks", "error", err)
		os.Exit(1)
	}
	if taskQueue.Size() == 0 {
		logg.Error("no URLs to scrape")
		os.Exit(1)
	}
	taskQueue.Close()

	var crit map[string]models.CriterionSpec
	if *category != "" {
		crit = criteria.NewCatalog().Criteria(*category)
	}

	var collected []models.ProductRecord
	for {
		task, err := taskQueue.Pop(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrQueueClosed) {
				logg.Error("queue pop failed", "error", err)
			}
			break
		}

		records, err := svc.Scrape(ctx, task.URL, task.Query, task.Locale, crit)
		if err != nil {
			logg.Error("scrape failed", "url", task.URL, "error", err)
			continue
		}
		collected = append(collected, records...)
	}

	engine := reconcile.New(reconcile.DefaultOptions())
	merged := engine.Aggregate(collected)
	formatted := engine.Format(merged, *formatType)

	out, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		logg.Error("failed to encode results", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func loadTasks(q *queue.InMemoryQueue, urls, inputFile, query, category, locale string) error {
	push := func(url string) error {
		url = strings.TrimSpace(url)
		if url == "" {
			return nil
		}
		return q.Push(&queue.Task{
			URL:      url,
			Query:    query,
			Category: category,
			Locale:   locale,
		})
	}

	for _, url := range strings.Split(urls, ",") {
		if err := push(url); err != nil {
			return err
		}
	}

	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if err := push(scanner.Text()); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	return nil
}
