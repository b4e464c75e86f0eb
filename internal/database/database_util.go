package database

import (
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// NewTestDatabase connects to the database named by SYDSCENE_TEST_DB and
// skips the test when the variable is unset.
func NewTestDatabase(tb testing.TB, migration bool) *gorm.DB {
	url := os.Getenv("SYDSCENE_TEST_DB")
	if url == "" {
		tb.Skip("SYDSCENE_TEST_DB not set")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "sydscene.",
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to init db %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to init db %v", err)
	}
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if migration {
		if err := MigrateDB(db); err != nil {
			tb.Fatalf("failed to migrate db %v", err)
		}
	}

	return db
}
