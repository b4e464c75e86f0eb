// Package scheduler runs the recurring crawl and sweep jobs. Each job is
// serialized against itself: a crawl that is still rendering when its next
// tick arrives skips that tick instead of stacking a second browser tab.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sydscene/sydscene/internal/config"
	"github.com/sydscene/sydscene/internal/logging"
	"github.com/sydscene/sydscene/internal/reconcile"
	"github.com/sydscene/sydscene/internal/scraper"
	"go.uber.org/zap"
)

// Crawl jobs start a few minutes apart so three Chrome tabs never open in
// the same instant on a fresh boot.
const startStagger = 2 * time.Minute

type Scheduler struct {
	scheduler *gocron.Scheduler
	scraper   *scraper.Scraper
	engine    *reconcile.Engine
	cnf       *config.Config
	logger    *zap.SugaredLogger
}

func New(cnf *config.Config, scr *scraper.Scraper, engine *reconcile.Engine) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		scraper:   scr,
		engine:    engine,
		cnf:       cnf,
		logger:    logging.DefaultLogger().Sugar(),
	}
}

// Start registers the enabled jobs and kicks off the scheduler. The given
// context flows into every job run; cancelling it aborts in-flight crawls,
// after which Stop drains the scheduler itself.
func (s *Scheduler) Start(ctx context.Context) error {
	now := time.Now().UTC()

	if s.cnf.Scrape.Enable {
		crawls := []struct {
			src      scraper.Source
			interval time.Duration
		}{
			{scraper.Eventbrite(), s.cnf.Scrape.EventbriteInterval},
			{scraper.Eventfinda(), s.cnf.Scrape.EventfindaInterval},
			{scraper.TimeoutSydney(), s.cnf.Scrape.TimeoutInterval},
		}

		for i, crawl := range crawls {
			src := crawl.src
			_, err := s.scheduler.Every(crawl.interval).
				SingletonMode().
				StartAt(now.Add(time.Duration(i) * startStagger)).
				Do(func() { s.runCrawl(ctx, src) })
			if err != nil {
				return fmt.Errorf("schedule %s crawl: %w", src.Name, err)
			}
			s.logger.Infow("scheduled crawl", "source", src.Name, "interval", crawl.interval)
		}
	}

	if s.cnf.Sweep.Enable {
		_, err := s.scheduler.Every(s.cnf.Sweep.Interval).
			SingletonMode().
			StartAt(now.Add(time.Duration(len(scraper.Sources())) * startStagger)).
			Do(func() { s.runSweep(ctx) })
		if err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}
		s.logger.Infow("scheduled sweep", "interval", s.cnf.Sweep.Interval,
			"stale-after", s.cnf.Sweep.StaleAfter)
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runCrawl(ctx context.Context, src scraper.Source) {
	defer s.recoverJob("crawl", src.Name)

	candidates, err := s.scraper.Crawl(ctx, src)
	if err != nil {
		s.logger.Errorw("crawl failed", "source", src.Name, "err", err)
		return
	}
	s.engine.ReconcileBatch(ctx, src.Name, candidates)
}

func (s *Scheduler) runSweep(ctx context.Context) {
	defer s.recoverJob("sweep", "")

	if _, err := s.engine.Sweep(ctx, s.cnf.Sweep.StaleAfter); err != nil {
		s.logger.Errorw("sweep failed", "err", err)
	}
}

// recoverJob keeps a panicking job from taking the scheduler goroutine
// down; the job simply runs again at its next tick.
func (s *Scheduler) recoverJob(job, source string) {
	if r := recover(); r != nil {
		s.logger.Errorw("job panicked", "job", job, "source", source,
			"panic", r, "stack", string(debug.Stack()))
	}
}
