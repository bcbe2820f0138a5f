package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/maltedev/shopintel/internal/browser"
	"github.com/maltedev/shopintel/internal/dom"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/parser"
	"github.com/maltedev/shopintel/internal/ratelimit"
	"github.com/maltedev/shopintel/internal/strategy"
)

// EventSink receives scrape lifecycle notifications. Publishing is advisory;
// implementations must not fail the scrape.
type EventSink interface {
	StrategyDiscovered(ctx context.Context, domain, method string)
	ProductsScraped(ctx context.Context, domain string, count int)
}

// Options carries per-service tunables.
type Options struct {
	MaxProducts       int
	ProbeContainers   int
	NavigationTimeout time.Duration
	IdleTimeout       time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxProducts:       DefaultMaxProducts,
		ProbeContainers:   strategy.DefaultProbeContainers,
		NavigationTimeout: 20 * time.Second,
		IdleTimeout:       10 * time.Second,
	}
}

// Service ties navigation, the strategy cache, discovery, and extraction
// into the single scrape entry point. The strategy store is the only state
// shared across concurrent scrapes.
type Service struct {
	browser    *browser.Browser
	store      strategy.Store
	discoverer *strategy.Discoverer
	extractor  *Extractor
	limiter    ratelimit.RateLimiter
	events     EventSink
	logger     *slog.Logger
	opts       Options
}

func NewService(b *browser.Browser, store strategy.Store, limiter ratelimit.RateLimiter, events EventSink, logger *slog.Logger, opts Options) *Service {
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = 20 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 10 * time.Second
	}
	return &Service{
		browser:    b,
		store:      store,
		discoverer: strategy.NewDiscoverer(opts.ProbeContainers, logger),
		extractor:  NewExtractor(opts.MaxProducts, logger),
		limiter:    limiter,
		events:     events,
		logger:     logger.With("component", "scraper"),
		opts:       opts,
	}
}

// Scrape navigates to a listing page and extracts product records using the
// cached strategy for its domain, discovering a new one on miss or on
// failure of the cached one. A navigation timeout yields an empty result,
// not an error; retry policy belongs to the orchestrator.
func (s *Service) Scrape(ctx context.Context, url, query, locale string, criteria map[string]models.CriterionSpec) ([]models.ProductRecord, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	page, cleanup, err := s.browser.NewLocalePage(locale)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := s.browser.Navigate(page, url, s.opts.NavigationTimeout, s.opts.IdleTimeout); err != nil {
		s.logger.Warn("navigation failed", "url", url, "error", err)
		return nil, nil
	}

	return s.ScrapePage(ctx, browser.NewLivePage(page), url, query, criteria), nil
}

// ScrapePage runs the cache/discover/extract cycle against an already
// loaded page. Factored out of Scrape so the cycle is exercisable without a
// live browser.
func (s *Service) ScrapePage(ctx context.Context, page dom.Page, url, query string, criteria map[string]models.CriterionSpec) []models.ProductRecord {
	domain := parser.ExtractDomain(url)

	cached, err := s.store.Load(ctx, domain)
	if err != nil {
		s.logger.Warn("strategy load failed", "domain", domain, "error", err)
	}
	if cached != nil {
		s.logger.Info("using cached strategy", "domain", domain)
		records := s.extractor.Extract(page, cached, url, criteria)
		if len(records) > 0 {
			s.recordOutcome(ctx, domain, true)
			s.publishScraped(ctx, domain, len(records))
			return records
		}
		// The page structure moved out from under the cached strategy.
		// Demote it and try one re-discovery on this same page.
		s.logger.Info("cached strategy yielded nothing, re-discovering", "domain", domain)
		s.recordOutcome(ctx, domain, false)
	}

	strat := s.discoverer.Discover(page, query, criteria)
	if strat == nil {
		s.logger.Warn("domain unscrapable this attempt", "domain", domain)
		return nil
	}

	if err := s.store.Save(ctx, domain, strat); err != nil {
		s.logger.Warn("strategy save failed", "domain", domain, "error", err)
	}
	if s.events != nil {
		s.events.StrategyDiscovered(ctx, domain, strat.DiscoveryMethod)
	}

	records := s.extractor.Extract(page, strat, url, criteria)
	if len(records) == 0 {
		s.logger.Warn("strategy discovered but no products extracted", "url", url)
		return nil
	}

	s.publishScraped(ctx, domain, len(records))
	return records
}

func (s *Service) recordOutcome(ctx context.Context, domain string, success bool) {
	if err := s.store.RecordOutcome(ctx, domain, success); err != nil {
		s.logger.Warn("outcome update failed", "domain", domain, "error", err)
	}
}

func (s *Service) publishScraped(ctx context.Context, domain string, count int) {
	if s.events != nil {
		s.events.ProductsScraped(ctx, domain, count)
	}
}
