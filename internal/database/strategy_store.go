package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/shopintel/internal/strategy"
)

// StrategyStore persists learned scraping strategies per domain. Eviction
// (TTL, low success rate) is logical: stale rows stay in the table for
// inspection and manual recovery, Load just reports them absent.
//
// Concurrent scrapes of the same domain may race on success_rate updates.
// Last writer wins; the moving average self-corrects, so row-level
// atomicity is all that is required here.
type StrategyStore struct {
	db     *DB
	logger *slog.Logger
}

func NewStrategyStore(db *DB, logger *slog.Logger) *StrategyStore {
	return &StrategyStore{
		db:     db,
		logger: logger.With("component", "strategy_store"),
	}
}

func (s *StrategyStore) Load(ctx context.Context, domain string) (*strategy.Strategy, error) {
	var (
		data        []byte
		successRate float64
		createdAt   time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT strategy, success_rate, created_at FROM scraping_strategies WHERE domain = $1`,
		domain,
	).Scan(&data, &successRate, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load strategy for %s: %w", domain, err)
	}

	if strategy.Evicted(successRate, createdAt, time.Now()) {
		s.logger.Info("cached strategy treated as absent",
			"domain", domain, "success_rate", successRate, "created_at", createdAt)
		return nil, nil
	}

	strat, err := strategy.Unmarshal(data)
	if err != nil {
		// Corrupt rows must never crash a scrape; they are just a miss.
		s.logger.Warn("corrupt persisted strategy", "domain", domain, "error", err)
		return nil, nil
	}
	return strat, nil
}

func (s *StrategyStore) Save(ctx context.Context, domain string, strat *strategy.Strategy) error {
	data, err := strat.Marshal()
	if err != nil {
		return err
	}

	// A fresh discovery is trusted until proven otherwise, so the rate
	// resets to 1.0 and the TTL clock restarts.
	_, err = s.db.Exec(ctx, `
		INSERT INTO scraping_strategies (domain, strategy, success_rate, created_at, updated_at)
		VALUES ($1, $2, 1.0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (domain) DO UPDATE SET
			strategy = EXCLUDED.strategy,
			success_rate = 1.0,
			created_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP`,
		domain, data)
	if err != nil {
		return fmt.Errorf("failed to save strategy for %s: %w", domain, err)
	}

	s.logger.Info("saved strategy", "domain", domain, "method", strat.DiscoveryMethod)
	return nil
}

func (s *StrategyStore) RecordOutcome(ctx context.Context, domain string, success bool) error {
	outcome := 0.0
	if success {
		outcome = 1.0
	}

	// No-op when the domain has no record; recording an outcome must not
	// create one as a side effect.
	tag, err := s.db.Exec(ctx, `
		UPDATE scraping_strategies SET
			success_rate = $2 * $3 + (1 - $2) * success_rate,
			updated_at = CURRENT_TIMESTAMP
		WHERE domain = $1`,
		domain, strategy.EMAAlpha, outcome)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", domain, err)
	}

	if tag.RowsAffected() > 0 {
		s.logger.Debug("recorded outcome", "domain", domain, "success", success)
	}
	return nil
}
