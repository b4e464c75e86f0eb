package cmd

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sydscene/sydscene/internal/browser"
	"github.com/sydscene/sydscene/internal/config"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/internal/logging"
	"github.com/sydscene/sydscene/internal/reconcile"
	"github.com/sydscene/sydscene/internal/scraper"
	"go.uber.org/zap/zapcore"
)

func NewScrape() *cobra.Command {
	var cfg config.Config
	var sourceName string
	loader := config.NewConfigLoader()

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run a one-off crawl and exit",
		Run: func(cmd *cobra.Command, args []string) {
			runScrape(&cfg, sourceName)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.InitializeConfig(cmd); err != nil {
				return err
			}
			if err := loader.Load(&cfg); err != nil {
				return err
			}
			return config.Validate(&cfg)
		},
	}
	config.AddCommonFlags(cmd.Flags(), &cfg)
	cmd.Flags().StringVar(&sourceName, "source", "",
		"Crawl a single source by name (default all sources)")
	return cmd
}

func runScrape(conf *config.Config, sourceName string) {
	lvl, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	logging.SetConfig(&logging.Config{
		Level:       lvl,
		FilePath:    conf.Log.File,
		Development: conf.Log.Development,
	})

	logger := logging.DefaultLogger()
	lg := logger.Sugar()
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	sources := scraper.Sources()
	if sourceName != "" {
		var matched []scraper.Source
		for _, src := range sources {
			if strings.EqualFold(src.Name, sourceName) {
				matched = append(matched, src)
			}
		}
		if len(matched) == 0 {
			lg.Fatalw("unknown source", "source", sourceName)
		}
		sources = matched
	}

	db, err := database.NewDatabase(&conf.DB, lg)
	if err != nil {
		lg.Fatalw("failed to create database", "err", err)
	}

	if err := database.MigrateDB(db); err != nil {
		lg.Fatalw("failed to migrate database", "err", err)
	}

	chrome := browser.New(&browser.Config{ChromePath: conf.Scrape.ChromePath})
	defer chrome.Close()

	scr := scraper.New(chrome, scraper.Options{
		PageTimeout:     conf.Scrape.PageTimeout,
		NavigateRetries: conf.Scrape.NavigateRetries,
	})
	engine := reconcile.NewEngine(reconcile.NewStore(db))

	for _, src := range sources {
		candidates, err := scr.Crawl(ctx, src)
		if err != nil {
			lg.Errorw("crawl failed", "source", src.Name, "err", err)
			continue
		}
		engine.ReconcileBatch(ctx, src.Name, candidates)
	}
}
