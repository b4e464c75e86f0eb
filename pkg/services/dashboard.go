package services

import (
	"context"
	"errors"
	"time"

	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/mapper"
	"github.com/sydscene/sydscene/pkg/models"
	"github.com/sydscene/sydscene/pkg/schemas"
	"gorm.io/gorm"
)

// DashboardService serves the moderation view. Unlike the public listing
// it shows every status, newest observations first, and owns the one
// write a curator can make: promoting a record to imported.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

func (s *DashboardService) ListEvents(ctx context.Context, q *schemas.EventQuery) (*schemas.EventResponse, error) {
	normalizeQuery(q)

	query := s.db.WithContext(ctx).Model(&models.Event{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	query = applyFilters(query, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var events []models.Event
	err := query.
		Order("last_scraped DESC").
		Order("date_time ASC NULLS LAST").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return &schemas.EventResponse{
		Events:      mapper.ToEventsOut(events),
		TotalPages:  totalPages(total, q.PerPage),
		CurrentPage: q.Page,
		TotalEvents: total,
	}, nil
}

// MarkImported pins an event at imported and stamps the curation
// metadata. Re-importing refreshes the stamp rather than failing.
func (s *DashboardService) MarkImported(ctx context.Context, id string, in *schemas.ImportEvent) (*schemas.EventOut, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	event.Status = models.StatusImported
	event.ImportedAt = &now
	event.ImportedBy = &in.ImportedBy
	if in.Notes != "" {
		event.ImportNotes = &in.Notes
	}

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, err
	}

	out := mapper.ToEventOut(event)
	return &out, nil
}
