package services

import (
	"context"
	"errors"

	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/mapper"
	"github.com/sydscene/sydscene/pkg/models"
	"github.com/sydscene/sydscene/pkg/schemas"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// EventService serves the public listing: upcoming events only, inactive
// records hidden unless a status filter asks for them.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func normalizeQuery(q *schemas.EventQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
}

func totalPages(total int64, perPage int) int {
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}

func applyFilters(query *gorm.DB, q *schemas.EventQuery) *gorm.DB {
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("title ILIKE ? OR venue_name ILIKE ? OR description ILIKE ?",
			pattern, pattern, pattern)
	}
	if q.City != "" {
		query = query.Where("city ILIKE ?", q.City)
	}
	if q.From != nil {
		query = query.Where("date_time >= ?", q.From)
	}
	if q.To != nil {
		query = query.Where("date_time <= ?", q.To)
	}
	return query
}

func (s *EventService) ListEvents(ctx context.Context, q *schemas.EventQuery) (*schemas.EventResponse, error) {
	normalizeQuery(q)

	query := s.db.WithContext(ctx).Model(&models.Event{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	} else {
		query = query.Where("status <> ?", models.StatusInactive)
	}
	query = applyFilters(query, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var events []models.Event
	err := query.
		Order("date_time ASC NULLS LAST").
		Order("last_scraped DESC").
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

func (s *EventService) GetEvent(ctx context.Context, id string) (*schemas.EventOut, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := mapper.ToEventOut(event)
	return &out, nil
}
