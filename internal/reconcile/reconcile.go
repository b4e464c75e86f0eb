// Package reconcile merges extracted candidate records into the event
// store. For every candidate it decides create, update, or no-op, keyed on
// the candidate's source URL, and computes the resulting lifecycle status.
// Curator-set import metadata is never written by this path.
package reconcile

import (
	"context"
	"time"

	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/internal/datetext"
	"github.com/sydscene/sydscene/internal/logging"
	"github.com/sydscene/sydscene/internal/scraper"
	"github.com/sydscene/sydscene/pkg/models"
)

const defaultVenue = "TBD"

// Stats summarizes one reconciled batch.
type Stats struct {
	Created   int
	Updated   int
	Unchanged int
	Errored   int
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// ReconcileBatch persists one crawl's candidates. A failure on one
// candidate is logged and counted without aborting the rest of the batch.
func (e *Engine) ReconcileBatch(ctx context.Context, sourceName string, candidates []scraper.Candidate) Stats {
	lg := logging.FromContext(ctx).Sugar().With("source", sourceName)

	var stats Stats
	for _, cand := range candidates {
		created, changed, err := e.reconcileOne(ctx, sourceName, cand)
		switch {
		case err != nil:
			lg.Errorw("failed to persist candidate", "title", cand.Title, "url", cand.SourceURL, "err", err)
			stats.Errored++
		case created:
			stats.Created++
		case changed:
			stats.Updated++
		default:
			stats.Unchanged++
		}
	}

	lg.Infow("reconciled batch",
		"candidates", len(candidates),
		"created", stats.Created,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"errored", stats.Errored)
	return stats
}

func (e *Engine) reconcileOne(ctx context.Context, sourceName string, cand scraper.Candidate) (created, changed bool, err error) {
	existing, err := e.store.GetBySourceURL(ctx, cand.SourceURL)
	switch {
	case database.IsRecordNotFoundErr(err):
		err = e.create(ctx, sourceName, cand)
		if database.IsKeyConflictErr(err) {
			// A concurrent batch created this URL between our lookup and
			// insert; the unique index caught it. Reconcile as an update.
			existing, err = e.store.GetBySourceURL(ctx, cand.SourceURL)
			if err != nil {
				return false, false, err
			}
			changed, err = e.update(ctx, existing, cand)
			return false, changed, err
		}
		return err == nil, false, err
	case err != nil:
		return false, false, err
	}

	changed, err = e.update(ctx, existing, cand)
	return false, changed, err
}

func (e *Engine) create(ctx context.Context, sourceName string, cand scraper.Candidate) error {
	now := e.now()

	event := &models.Event{
		Title:       cand.Title,
		DateText:    cand.DateText,
		VenueName:   cand.VenueName,
		City:        "Sydney",
		Description: cand.Description,
		Category:    models.Categories{},
		ImageURL:    cand.ImageURL,
		SourceName:  sourceName,
		SourceURL:   cand.SourceURL,
		LastScraped: now,
		Status:      models.StatusNew,
	}
	if event.VenueName == "" {
		event.VenueName = defaultVenue
	}
	if parsed, ok := datetext.ParseAt(cand.DateText, now); ok {
		event.DateTime = &parsed
	}

	return e.store.Create(ctx, event)
}

// update refreshes an existing record from a re-observed candidate. A
// field moves only when the candidate carries a non-empty value that
// differs from what is stored; lastScraped always advances.
func (e *Engine) update(ctx context.Context, event *models.Event, cand scraper.Candidate) (bool, error) {
	now := e.now()
	changed := false

	if cand.Title != "" && cand.Title != event.Title {
		event.Title = cand.Title
		changed = true
	}
	if cand.VenueName != "" && cand.VenueName != event.VenueName {
		event.VenueName = cand.VenueName
		changed = true
	}
	if cand.DateText != "" {
		if parsed, ok := datetext.ParseAt(cand.DateText, now); ok {
			if event.DateTime == nil || !event.DateTime.Equal(parsed) {
				event.DateTime = &parsed
				event.DateText = cand.DateText
				changed = true
			}
		} else if event.DateTime == nil && cand.DateText != event.DateText {
			// No parseable instant, but fresher raw text is still worth
			// keeping as the only temporal signal.
			event.DateText = cand.DateText
			changed = true
		}
	}
	if cand.Description != "" && cand.Description != event.Description {
		event.Description = cand.Description
		changed = true
	}
	if cand.ImageURL != "" && cand.ImageURL != event.ImageURL {
		event.ImageURL = cand.ImageURL
		changed = true
	}

	event.LastScraped = now

	// Import is sticky: a crawl refreshes descriptive fields but never
	// pulls an imported record back into the automated lifecycle.
	if changed && event.Status != models.StatusImported {
		event.Status = models.StatusUpdated
	}

	return changed, e.store.Save(ctx, event)
}
