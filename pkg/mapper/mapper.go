package mapper

import (
	"github.com/sydscene/sydscene/pkg/models"
	"github.com/sydscene/sydscene/pkg/schemas"
)

func ToEventOut(event models.Event) schemas.EventOut {
	out := schemas.EventOut{
		ID:           event.ID,
		Title:        event.Title,
		DateTime:     event.DateTime,
		DateText:     event.DateText,
		VenueName:    event.VenueName,
		VenueAddress: event.VenueAddress,
		City:         event.City,
		Description:  event.Description,
		Category:     event.Category,
		ImageURL:     event.ImageURL,
		SourceName:   event.SourceName,
		SourceURL:    event.SourceURL,
		LastScraped:  event.LastScraped,
		Status:       event.Status,
		ImportedAt:   event.ImportedAt,
	}
	if out.Category == nil {
		out.Category = []string{}
	}
	if event.ImportedBy != nil {
		out.ImportedBy = *event.ImportedBy
	}
	if event.ImportNotes != nil {
		out.ImportNotes = *event.ImportNotes
	}
	return out
}

func ToEventsOut(events []models.Event) []schemas.EventOut {
	out := make([]schemas.EventOut, 0, len(events))
	for _, event := range events {
		out = append(out, ToEventOut(event))
	}
	return out
}

func ToEmailCaptureOut(capture models.EmailCapture) schemas.EmailCaptureOut {
	return schemas.EmailCaptureOut{
		ID:         capture.ID,
		Email:      capture.Email,
		CapturedAt: capture.CapturedAt,
	}
}
