package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event lifecycle statuses. An event enters as StatusNew, moves to
// StatusUpdated when a later crawl changes one of its fields, drops to
// StatusInactive once past or stale, and is pinned at StatusImported by a
// curator. Import is sticky: no crawl reverts it.
const (
	StatusNew      = "new"
	StatusUpdated  = "updated"
	StatusInactive = "inactive"
	StatusImported = "imported"
)

type Categories []string

func (c Categories) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Categories) Scan(value interface{}) error {
	return json.Unmarshal(value.([]byte), c)
}

// Event is one listing observed on an external event-discovery site,
// deduplicated by SourceURL.
type Event struct {
	ID           string     `gorm:"type:text;primaryKey"`
	Title        string     `gorm:"type:text;not null"`
	DateTime     *time.Time `gorm:"type:timestamptz"`
	DateText     string     `gorm:"type:text;not null;default:''"`
	VenueName    string     `gorm:"type:text;not null;default:''"`
	VenueAddress string     `gorm:"type:text;not null;default:''"`
	City         string     `gorm:"type:text;not null;default:'Sydney'"`
	Description  string     `gorm:"type:text;not null;default:''"`
	Category     Categories `gorm:"type:jsonb;not null;default:'[]'"`
	ImageURL     string     `gorm:"type:text;not null;default:''"`
	SourceName   string     `gorm:"type:text;not null"`
	SourceURL    string     `gorm:"type:text;not null;uniqueIndex:events_source_url_key"`
	LastScraped  time.Time  `gorm:"type:timestamptz;not null;default:timezone('utc'::text, now())"`
	Status       string     `gorm:"type:text;not null;default:'new'"`
	ImportedAt   *time.Time `gorm:"type:timestamptz"`
	ImportedBy   *string    `gorm:"type:text"`
	ImportNotes  *string    `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"default:timezone('utc'::text, now())"`
	UpdatedAt    time.Time  `gorm:"default:timezone('utc'::text, now())"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
