package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sydscene/sydscene/internal/browser"
	"github.com/sydscene/sydscene/internal/config"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/internal/reconcile"
	"github.com/sydscene/sydscene/internal/scraper"
	"github.com/sydscene/sydscene/pkg/models"
)

type emptyRenderer struct{}

func (emptyRenderer) Render(context.Context, string, browser.RenderOptions) (string, error) {
	return "<html><body></body></html>", nil
}

type nopStore struct{}

func (nopStore) GetBySourceURL(context.Context, string) (*models.Event, error) {
	return nil, database.ErrNotFound
}
func (nopStore) Create(context.Context, *models.Event) error { return nil }
func (nopStore) Save(context.Context, *models.Event) error   { return nil }
func (nopStore) MarkInactive(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scrape.Enable = true
	cfg.Scrape.EventbriteInterval = time.Hour
	cfg.Scrape.EventfindaInterval = time.Hour
	cfg.Scrape.TimeoutInterval = time.Hour
	cfg.Sweep.Enable = true
	cfg.Sweep.Interval = time.Hour
	cfg.Sweep.StaleAfter = 30 * 24 * time.Hour
	return cfg
}

func newTestScheduler(cfg *config.Config) *Scheduler {
	scr := scraper.New(emptyRenderer{}, scraper.Options{PageTimeout: time.Second})
	return New(cfg, scr, reconcile.NewEngine(nopStore{}))
}

func TestStartRegistersAllJobs(t *testing.T) {
	s := newTestScheduler(testConfig())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Three crawls plus the sweep.
	assert.Equal(t, 4, s.scheduler.Len())
}

func TestStartHonorsEnableFlags(t *testing.T) {
	cfg := testConfig()
	cfg.Scrape.Enable = false

	s := newTestScheduler(cfg)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, s.scheduler.Len())

	cfg = testConfig()
	cfg.Sweep.Enable = false

	s = newTestScheduler(cfg)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 3, s.scheduler.Len())
}

func TestRecoverJobSwallowsPanic(t *testing.T) {
	s := newTestScheduler(testConfig())

	assert.NotPanics(t, func() {
		defer s.recoverJob("crawl", "Eventbrite")
		panic("selector heuristics gone wrong")
	})
}
