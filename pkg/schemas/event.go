package schemas

import (
	"time"
)

// EventQuery carries the list filters shared by the public and moderation
// listings. Zero values mean "no filter".
type EventQuery struct {
	Search  string
	Status  string
	City    string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

type EventOut struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	DateTime     *time.Time `json:"dateTime,omitempty"`
	DateText     string     `json:"dateText,omitempty"`
	VenueName    string     `json:"venueName"`
	VenueAddress string     `json:"venueAddress,omitempty"`
	City         string     `json:"city"`
	Description  string     `json:"description,omitempty"`
	Category     []string   `json:"category"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	SourceName   string     `json:"sourceName"`
	SourceURL    string     `json:"sourceUrl"`
	LastScraped  time.Time  `json:"lastScraped"`
	Status       string     `json:"status"`
	ImportedAt   *time.Time `json:"importedAt,omitempty"`
	ImportedBy   string     `json:"importedBy,omitempty"`
	ImportNotes  string     `json:"importNotes,omitempty"`
}

type EventResponse struct {
	Events      []EventOut `json:"events"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	TotalEvents int64      `json:"totalEvents"`
}

type ImportEvent struct {
	ImportedBy string `json:"importedBy" validate:"required"`
	Notes      string `json:"notes"`
}

type EmailCaptureIn struct {
	Email   string `json:"email" validate:"required,email"`
	Consent bool   `json:"consent"`
	EventID string `json:"eventId" validate:"required"`
}

type EmailCaptureOut struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	CapturedAt time.Time `json:"capturedAt"`
}
