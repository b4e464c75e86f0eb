package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/internal/scraper"
	"github.com/sydscene/sydscene/pkg/models"
)

// 15 Jan 2026 is a Thursday.
var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory Store with the same source-URL uniqueness
// guarantee the Postgres schema enforces.
type memStore struct {
	mu     sync.Mutex
	events map[string]*models.Event
	// failURLs makes writes against these source URLs fail, for batch
	// isolation tests.
	failURLs map[string]bool
}

func newMemStore() *memStore {
	return &memStore{events: make(map[string]*models.Event), failURLs: make(map[string]bool)}
}

func (s *memStore) GetBySourceURL(_ context.Context, sourceURL string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[sourceURL]
	if !ok {
		return nil, database.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (s *memStore) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failURLs[event.SourceURL] {
		return fmt.Errorf("write refused")
	}
	if _, ok := s.events[event.SourceURL]; ok {
		return database.ErrKeyConflict
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	clone := *event
	s.events[event.SourceURL] = &clone
	return nil
}

func (s *memStore) Save(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failURLs[event.SourceURL] {
		return fmt.Errorf("write refused")
	}
	clone := *event
	s.events[event.SourceURL] = &clone
	return nil
}

func (s *memStore) MarkInactive(_ context.Context, now, staleBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var demoted int64
	for _, event := range s.events {
		if event.Status == models.StatusInactive {
			continue
		}
		past := event.DateTime != nil && event.DateTime.Before(now)
		stale := event.DateTime == nil && event.LastScraped.Before(staleBefore)
		if past || stale {
			event.Status = models.StatusInactive
			demoted++
		}
	}
	return demoted, nil
}

func newTestEngine(store Store) *Engine {
	engine := NewEngine(store)
	engine.now = func() time.Time { return testNow }
	return engine
}

func candidateFixture() scraper.Candidate {
	return scraper.Candidate{
		Title:       "Jazz Night",
		DateText:    "Sat, 14 Feb, 9:00 pm",
		VenueName:   "The Basement",
		ImageURL:    "https://img.evbuc.com/jazz.jpg",
		SourceURL:   "https://www.eventbrite.com.au/e/jazz-night-123",
		Description: "Late night jazz session with a rotating lineup.",
	}
}

func TestReconcileCreatesNewRecord(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{candidateFixture()})
	assert.Equal(t, Stats{Created: 1}, stats)

	event, err := store.GetBySourceURL(context.Background(), candidateFixture().SourceURL)
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", event.Title)
	assert.Equal(t, models.StatusNew, event.Status)
	assert.Equal(t, "Eventbrite", event.SourceName)
	assert.Equal(t, "Sydney", event.City)
	assert.Equal(t, testNow, event.LastScraped)
	require.NotNil(t, event.DateTime)
	assert.Equal(t, time.Date(2026, time.February, 14, 21, 0, 0, 0, time.UTC), *event.DateTime)
	assert.Equal(t, "Sat, 14 Feb, 9:00 pm", event.DateText, "raw text is kept alongside the parsed instant")
}

func TestReconcileDefaultsEmptyVenue(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	cand := candidateFixture()
	cand.VenueName = ""
	engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})

	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, "TBD", event.VenueName)
}

func TestReconcileIdempotent(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	cand := candidateFixture()

	first := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Equal(t, Stats{Created: 1}, first)

	later := testNow.Add(6 * time.Hour)
	engine.now = func() time.Time { return later }

	second := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Equal(t, Stats{Unchanged: 1}, second)

	require.Len(t, store.events, 1)
	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, event.Status, "identical re-observation is not an update")
	assert.Equal(t, later, event.LastScraped, "lastScraped advances on every observation")
}

func TestReconcileUpdatesChangedFields(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	cand := candidateFixture()

	engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})

	cand.Title = "Jazz Night (Rescheduled)"
	cand.DateText = "Sat, 21 Feb, 9:00 pm"
	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Equal(t, Stats{Updated: 1}, stats)

	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpdated, event.Status)
	assert.Equal(t, "Jazz Night (Rescheduled)", event.Title)
	assert.Equal(t, "Sat, 21 Feb, 9:00 pm", event.DateText)
	require.NotNil(t, event.DateTime)
	assert.Equal(t, time.Date(2026, time.February, 21, 21, 0, 0, 0, time.UTC), *event.DateTime)
}

func TestReconcileEmptyFieldsDoNotOverwrite(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	cand := candidateFixture()

	engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})

	sparse := scraper.Candidate{Title: cand.Title, SourceURL: cand.SourceURL}
	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{sparse})
	assert.Equal(t, Stats{Unchanged: 1}, stats)

	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, "The Basement", event.VenueName)
	assert.Equal(t, "https://img.evbuc.com/jazz.jpg", event.ImageURL)
}

func TestReconcileImportedKeepsCuration(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	cand := candidateFixture()

	engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})

	// Curator promotes the record between crawls.
	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	importedAt := testNow.Add(-time.Hour)
	importedBy := "curator@sydscene.local"
	notes := "headline act"
	event.Status = models.StatusImported
	event.ImportedAt = &importedAt
	event.ImportedBy = &importedBy
	event.ImportNotes = &notes
	require.NoError(t, store.Save(context.Background(), event))

	cand.Title = "Jazz Night - New Lineup"
	cand.VenueName = "The Attic"
	cand.Description = "Completely rewritten description for the new lineup."
	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Equal(t, Stats{Updated: 1}, stats)

	event, err = store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusImported, event.Status, "import is sticky")
	assert.Equal(t, "Jazz Night - New Lineup", event.Title, "descriptive fields still refresh")
	require.NotNil(t, event.ImportedAt)
	assert.Equal(t, importedAt, *event.ImportedAt)
	require.NotNil(t, event.ImportedBy)
	assert.Equal(t, importedBy, *event.ImportedBy)
	require.NotNil(t, event.ImportNotes)
	assert.Equal(t, notes, *event.ImportNotes)
}

func TestReconcileUnparseableDateKeepsText(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	cand := candidateFixture()
	cand.DateText = "Every weekend this summer"
	engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})

	event, err := store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Nil(t, event.DateTime)
	assert.Equal(t, "Every weekend this summer", event.DateText)

	cand.DateText = "Every weekend until April"
	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Equal(t, Stats{Updated: 1}, stats)

	event, err = store.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Nil(t, event.DateTime)
	assert.Equal(t, "Every weekend until April", event.DateText)
}

// lookupRaceStore simulates two batches racing on a brand-new URL: the
// first lookup misses even though a concurrent writer has already
// inserted, so Create hits the uniqueness backstop.
type lookupRaceStore struct {
	*memStore
	missed bool
}

func (s *lookupRaceStore) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Event, error) {
	if !s.missed {
		s.missed = true
		return nil, database.ErrNotFound
	}
	return s.memStore.GetBySourceURL(ctx, sourceURL)
}

func TestReconcileDuplicateCreateRace(t *testing.T) {
	base := newMemStore()
	engine := newTestEngine(&lookupRaceStore{memStore: base})
	cand := candidateFixture()

	// The concurrent winner's record is already in the store.
	winner := &models.Event{
		Title:       "Jazz Night",
		SourceName:  "Eventbrite",
		SourceURL:   cand.SourceURL,
		City:        "Sydney",
		Status:      models.StatusNew,
		LastScraped: testNow.Add(-time.Minute),
	}
	require.NoError(t, base.Create(context.Background(), winner))

	stats := engine.ReconcileBatch(context.Background(), "Eventbrite", []scraper.Candidate{cand})
	assert.Zero(t, stats.Errored)
	assert.Zero(t, stats.Created, "the losing writer must not create a second record")
	require.Len(t, base.events, 1)

	event, err := base.GetBySourceURL(context.Background(), cand.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, testNow, event.LastScraped)
}

func TestReconcileBatchIsolatesFailures(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)

	bad := candidateFixture()
	bad.SourceURL = "https://www.eventbrite.com.au/e/broken-999"
	store.failURLs[bad.SourceURL] = true

	other := candidateFixture()
	other.SourceURL = "https://www.eventbrite.com.au/e/other-222"
	other.Title = "Harbour Markets"

	stats := engine.ReconcileBatch(context.Background(), "Eventbrite",
		[]scraper.Candidate{candidateFixture(), bad, other})
	assert.Equal(t, Stats{Created: 2, Errored: 1}, stats)
	assert.Len(t, store.events, 2)
}
