package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/models"
	"github.com/sydscene/sydscene/pkg/schemas"
	"gorm.io/gorm"
)

type EventServiceSuite struct {
	suite.Suite
	db        *gorm.DB
	events    *EventService
	dashboard *DashboardService
	captures  *EmailCaptureService
}

func (s *EventServiceSuite) SetupSuite() {
	s.db = database.NewTestDatabase(s.T(), true)
	s.events = NewEventService(s.db)
	s.dashboard = NewDashboardService(s.db)
	s.captures = NewEmailCaptureService(s.db)
}

func (s *EventServiceSuite) SetupTest() {
	s.db.Where("id is not NULL").Delete(&models.EmailCapture{})
	s.db.Where("id is not NULL").Delete(&models.Event{})
}

func (s *EventServiceSuite) seed(title, sourceURL, status string, dateTime *time.Time) *models.Event {
	event := &models.Event{
		Title:       title,
		DateTime:    dateTime,
		VenueName:   "Test Venue",
		City:        "Sydney",
		Category:    models.Categories{},
		SourceName:  "Eventbrite",
		SourceURL:   sourceURL,
		LastScraped: time.Now().UTC(),
		Status:      status,
	}
	s.Require().NoError(s.db.Create(event).Error)
	return event
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEventServiceSuite(t *testing.T) {
	suite.Run(t, new(EventServiceSuite))
}

func (s *EventServiceSuite) TestListExcludesInactiveByDefault() {
	s.seed("Live Gig", "https://x/e/1", models.StatusNew, nil)
	s.seed("Dead Gig", "https://x/e/2", models.StatusInactive, nil)

	res, err := s.events.ListEvents(context.Background(), &schemas.EventQuery{})
	s.NoError(err)
	s.EqualValues(1, res.TotalEvents)
	s.Equal("Live Gig", res.Events[0].Title)
}

func (s *EventServiceSuite) TestListStatusFilter() {
	s.seed("Live Gig", "https://x/e/1", models.StatusNew, nil)
	s.seed("Dead Gig", "https://x/e/2", models.StatusInactive, nil)

	res, err := s.events.ListEvents(context.Background(), &schemas.EventQuery{Status: models.StatusInactive})
	s.NoError(err)
	s.EqualValues(1, res.TotalEvents)
	s.Equal("Dead Gig", res.Events[0].Title)
}

func (s *EventServiceSuite) TestListSearchMatchesTitleAndVenue() {
	s.seed("Jazz Night", "https://x/e/1", models.StatusNew, nil)
	s.seed("Rock Show", "https://x/e/2", models.StatusNew, nil)

	res, err := s.events.ListEvents(context.Background(), &schemas.EventQuery{Search: "jazz"})
	s.NoError(err)
	s.EqualValues(1, res.TotalEvents)

	res, err = s.events.ListEvents(context.Background(), &schemas.EventQuery{Search: "test venue"})
	s.NoError(err)
	s.EqualValues(2, res.TotalEvents)
}

func (s *EventServiceSuite) TestListOrdersByDateTime() {
	later := time.Now().UTC().Add(72 * time.Hour)
	sooner := time.Now().UTC().Add(24 * time.Hour)
	s.seed("Later", "https://x/e/1", models.StatusNew, timePtr(later))
	s.seed("Sooner", "https://x/e/2", models.StatusNew, timePtr(sooner))
	s.seed("Dateless", "https://x/e/3", models.StatusNew, nil)

	res, err := s.events.ListEvents(context.Background(), &schemas.EventQuery{})
	s.NoError(err)
	s.Require().Len(res.Events, 3)
	s.Equal("Sooner", res.Events[0].Title)
	s.Equal("Later", res.Events[1].Title)
	s.Equal("Dateless", res.Events[2].Title, "records without a parsed time sort last")
}

func (s *EventServiceSuite) TestListPagination() {
	for i, url := range []string{"https://x/e/1", "https://x/e/2", "https://x/e/3"} {
		dt := time.Now().UTC().Add(time.Duration(i+1) * time.Hour)
		s.seed("Gig", url, models.StatusNew, timePtr(dt))
	}

	res, err := s.events.ListEvents(context.Background(), &schemas.EventQuery{Page: 2, PerPage: 2})
	s.NoError(err)
	s.EqualValues(3, res.TotalEvents)
	s.Equal(2, res.TotalPages)
	s.Equal(2, res.CurrentPage)
	s.Len(res.Events, 1)
}

func (s *EventServiceSuite) TestGetEvent() {
	seeded := s.seed("Jazz Night", "https://x/e/1", models.StatusNew, nil)

	res, err := s.events.GetEvent(context.Background(), seeded.ID)
	s.NoError(err)
	s.Equal("Jazz Night", res.Title)

	_, err = s.events.GetEvent(context.Background(), "missing")
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *EventServiceSuite) TestMarkImported() {
	seeded := s.seed("Jazz Night", "https://x/e/1", models.StatusNew, nil)

	res, err := s.dashboard.MarkImported(context.Background(), seeded.ID,
		&schemas.ImportEvent{ImportedBy: "curator@sydscene.local", Notes: "headline act"})
	s.NoError(err)
	s.Equal(models.StatusImported, res.Status)
	s.Equal("curator@sydscene.local", res.ImportedBy)
	s.Equal("headline act", res.ImportNotes)
	s.NotNil(res.ImportedAt)

	_, err = s.dashboard.MarkImported(context.Background(), "missing",
		&schemas.ImportEvent{ImportedBy: "curator@sydscene.local"})
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *EventServiceSuite) TestDashboardListShowsAllStatuses() {
	s.seed("Live Gig", "https://x/e/1", models.StatusNew, nil)
	s.seed("Dead Gig", "https://x/e/2", models.StatusInactive, nil)

	res, err := s.dashboard.ListEvents(context.Background(), &schemas.EventQuery{})
	s.NoError(err)
	s.EqualValues(2, res.TotalEvents)
}

func (s *EventServiceSuite) TestCaptureEmail() {
	seeded := s.seed("Jazz Night", "https://x/e/1", models.StatusNew, nil)

	res, err := s.captures.Capture(context.Background(), &schemas.EmailCaptureIn{
		Email:   "fan@example.com",
		Consent: true,
		EventID: seeded.ID,
	})
	s.NoError(err)
	s.Equal("fan@example.com", res.Email)
	s.NotEmpty(res.ID)

	_, err = s.captures.Capture(context.Background(), &schemas.EmailCaptureIn{
		Email:   "not-an-email",
		EventID: seeded.ID,
	})
	s.ErrorIs(err, ErrInvalidCapture)

	_, err = s.captures.Capture(context.Background(), &schemas.EmailCaptureIn{
		Email:   "fan@example.com",
		EventID: "missing",
	})
	s.ErrorIs(err, database.ErrNotFound)
}
