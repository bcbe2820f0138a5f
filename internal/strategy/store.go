package strategy

import (
	"context"
	"sync"
	"time"
)

const (
	// CacheTTL is the maximum age of a cached strategy before it is
	// treated as absent.
	CacheTTL = 30 * 24 * time.Hour
	// MinSuccessRate is the rate below which a cached strategy is treated
	// as absent.
	MinSuccessRate = 0.5
	// EMAAlpha weights the latest outcome in the success-rate moving
	// average.
	EMAAlpha = 0.3
)

// Store persists learned strategies per domain.
//
// Load applies the TTL and success-rate rules and returns (nil, nil) on a
// logical miss; the underlying record is kept for inspection, never deleted
// by these rules. Save upserts with the rate reset to 1.0 and a fresh
// created_at. RecordOutcome folds one use into the success rate and is a
// no-op when the domain has no record.
type Store interface {
	Load(ctx context.Context, domain string) (*Strategy, error)
	Save(ctx context.Context, domain string, strat *Strategy) error
	RecordOutcome(ctx context.Context, domain string, success bool) error
}

// ApplyOutcome folds one outcome into a success rate using an exponential
// moving average.
func ApplyOutcome(rate float64, success bool) float64 {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	return EMAAlpha*outcome + (1-EMAAlpha)*rate
}

// Evicted reports whether a record should be treated as a cache miss.
func Evicted(successRate float64, createdAt, now time.Time) bool {
	return successRate < MinSuccessRate || now.Sub(createdAt) > CacheTTL
}

type memoryRecord struct {
	strategy    *Strategy
	successRate float64
	createdAt   time.Time
	updatedAt   time.Time
}

// MemoryStore is a mutex-guarded in-process Store. It backs the CLI when no
// database is configured and keeps the engine testable without Postgres.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, domain string) (*Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[domain]
	if !ok {
		return nil, nil
	}
	if Evicted(rec.successRate, rec.createdAt, m.now()) {
		return nil, nil
	}
	return rec.strategy, nil
}

func (m *MemoryStore) Save(_ context.Context, domain string, strat *Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.records[domain] = &memoryRecord{
		strategy:    strat,
		successRate: 1.0,
		createdAt:   now,
		updatedAt:   now,
	}
	return nil
}

func (m *MemoryStore) RecordOutcome(_ context.Context, domain string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[domain]
	if !ok {
		return nil
	}
	rec.successRate = ApplyOutcome(rec.successRate, success)
	rec.updatedAt = m.now()
	return nil
}

// SuccessRate exposes the stored rate for a domain, for inspection.
func (m *MemoryStore) SuccessRate(domain string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[domain]
	if !ok {
		return 0, false
	}
	return rec.successRate, true
}
