package database

import (
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sydscene/sydscene/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// NewDatabase opens the Postgres connection with given config.
func NewDatabase(cfg *config.DBConfig, lg *zap.SugaredLogger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	lvl, lerr := zapcore.ParseLevel(cfg.LogLevel)
	if lerr != nil {
		lvl = zapcore.WarnLevel
	}
	logger := NewLogger(time.Second, true, lvl)

	for i := 0; i <= 5; i++ {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DataSource,
			PreferSimpleProtocol: !cfg.PrepareStmt,
		}), &gorm.Config{
			Logger: logger,
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "sydscene.",
				SingularTable: false,
			},
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			break
		}
		lg.Warnf("failed to open database: %v", err)
		time.Sleep(500 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Pool.Enable {
		rawDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		rawDB.SetMaxOpenConns(cfg.Pool.MaxOpenConnections)
		rawDB.SetMaxIdleConns(cfg.Pool.MaxIdleConnections)
		rawDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}

	return db, nil
}

// MigrateDB applies pending goose migrations.
func MigrateDB(db *gorm.DB) error {
	rawDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	goose.SetLogger(goose.NopLogger())

	if err := goose.Up(rawDB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
