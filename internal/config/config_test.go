package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Scraper.MaxProducts)
	assert.Equal(t, 3, cfg.Scraper.ProbeContainers)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RateLimitMin)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "stream:scrape_events", cfg.Redis.Stream)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_MAX_PRODUCTS", "10")
	t.Setenv("SCRAPER_NAVIGATION_TIMEOUT", "5s")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("DB_PORT", "5433")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scraper.MaxProducts)
	assert.Equal(t, 5*time.Second, cfg.Scraper.NavigationTimeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 5433, cfg.Database.Port)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCRAPER_MAX_PRODUCTS", "lots")
	t.Setenv("SCRAPER_IDLE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Scraper.MaxProducts)
	assert.Equal(t, 10*time.Second, cfg.Scraper.IdleTimeout)
}

func TestValidateRejectsInvertedRateLimits(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.RateLimitMin = 10 * time.Second
	cfg.Scraper.RateLimitMax = 2 * time.Second
	assert.Error(t, cfg.Validate())
}
