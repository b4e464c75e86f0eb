package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/sydscene/sydscene/api"
	"github.com/sydscene/sydscene/internal/browser"
	"github.com/sydscene/sydscene/internal/config"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/internal/logging"
	"github.com/sydscene/sydscene/internal/reconcile"
	"github.com/sydscene/sydscene/internal/scheduler"
	"github.com/sydscene/sydscene/internal/scraper"
	"go.uber.org/zap/zapcore"
)

func NewRun() *cobra.Command {
	var cfg config.Config
	loader := config.NewConfigLoader()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the sydscene server and crawl scheduler",
		Run: func(cmd *cobra.Command, args []string) {
			runApplication(&cfg)
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
	return cmd
}

func runApplication(conf *config.Config) {
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

	db, err := database.NewDatabase(&conf.DB, lg)
	if err != nil {
		lg.Fatalw("failed to create database", "err", err)
	}

	if err := database.MigrateDB(db); err != nil {
		lg.Fatalw("failed to migrate database", "err", err)
	}

	var sched *scheduler.Scheduler
	if conf.Scrape.Enable || conf.Sweep.Enable {
		chrome := browser.New(&browser.Config{ChromePath: conf.Scrape.ChromePath})
		defer chrome.Close()

		scr := scraper.New(chrome, scraper.Options{
			PageTimeout:     conf.Scrape.PageTimeout,
			NavigateRetries: conf.Scrape.NavigateRetries,
		})
		engine := reconcile.NewEngine(reconcile.NewStore(db))

		sched = scheduler.New(conf, scr, engine)
		if err := sched.Start(logging.WithLogger(ctx, logger)); err != nil {
			lg.Fatalw("failed to start scheduler", "err", err)
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Server.Port),
		Handler:           api.NewRouter(conf, db, logger),
		ReadTimeout:       conf.Server.ReadTimeout,
		WriteTimeout:      conf.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		lg.Infof("Server started at http://localhost:%d", conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Errorw("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.Server.GracefulShutdown)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorw("server shutdown failed", "err", err)
	}

	lg.Info("Server stopped")
}
