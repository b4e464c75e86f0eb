package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/models"
	"gorm.io/gorm"
)

// Store is the persistence surface the engine reconciles against. The
// backing collection must enforce source-URL uniqueness; Create returns a
// key-conflict error when a concurrent writer got there first.
type Store interface {
	GetBySourceURL(ctx context.Context, sourceURL string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	// MarkInactive demotes, in one pass, every non-inactive record whose
	// event time is before now, or which has no event time and was last
	// observed before staleBefore. It returns the number demoted.
	MarkInactive(ctx context.Context, now, staleBefore time.Time) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the Postgres-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *gormStore) Create(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *gormStore) Save(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Save(event).Error
}

func (s *gormStore) MarkInactive(ctx context.Context, now, staleBefore time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("status <> ?", models.StatusInactive).
		Where(s.db.
			Where("date_time IS NOT NULL AND date_time < ?", now).
			Or("date_time IS NULL AND last_scraped < ?", staleBefore)).
		Update("status", models.StatusInactive)
	return res.RowsAffected, res.Error
}
