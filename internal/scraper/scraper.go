// Package scraper crawls external event-listing sites and extracts raw
// candidate records from their rendered markup. The three site adapters
// share this skeleton and differ only in their Source tables; extraction
// is best-effort heuristics over markup the sites change without notice.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/sydscene/sydscene/internal/browser"
	"github.com/sydscene/sydscene/internal/logging"
)

const (
	titleMaxLen       = 200
	descriptionMaxLen = 500

	defaultScrollPause = 1500 * time.Millisecond
	defaultSettlePause = 3 * time.Second
)

// Candidate is one raw, unvalidated event pulled from a listing page,
// before date normalization and reconciliation.
type Candidate struct {
	Title       string
	DateText    string
	VenueName   string
	ImageURL    string
	SourceURL   string
	Description string
}

// Renderer is the rendering-engine dependency: load a URL in a real
// browser and hand back the settled DOM as HTML.
type Renderer interface {
	Render(ctx context.Context, url string, opts browser.RenderOptions) (string, error)
}

type Options struct {
	PageTimeout     time.Duration
	NavigateRetries uint64
	ScrollPause     time.Duration
	SettlePause     time.Duration
}

type Scraper struct {
	renderer Renderer
	opts     Options
}

func New(renderer Renderer, opts Options) *Scraper {
	if opts.ScrollPause == 0 {
		opts.ScrollPause = defaultScrollPause
	}
	if opts.SettlePause == 0 {
		opts.SettlePause = defaultSettlePause
	}
	return &Scraper{renderer: renderer, opts: opts}
}

// Crawl renders one source's listing page and extracts candidates from it.
// It returns an error only when the page cannot be rendered at all;
// extraction trouble degrades to fewer (or zero) candidates.
func (s *Scraper) Crawl(ctx context.Context, src Source) ([]Candidate, error) {
	lg := logging.FromContext(ctx).Sugar().With("source", src.Name)

	renderOpts := browser.RenderOptions{
		Timeout:     s.opts.PageTimeout,
		Scrolls:     src.Scrolls,
		ScrollPause: s.opts.ScrollPause,
		SettlePause: s.opts.SettlePause,
	}

	var html string
	operation := func() error {
		rendered, err := s.renderer.Render(ctx, src.ListingURL, renderOpts)
		if err != nil {
			lg.Warnw("page render failed, retrying", "err", err)
			return err
		}
		html = rendered
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.opts.NavigateRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("crawl %s: %w", src.Name, err)
	}

	candidates, err := Extract(html, src)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", src.Name, err)
	}

	if len(candidates) == 0 {
		// Sites legitimately go quiet, but this is also the first symptom
		// of markup drift, so it gets an operator-visible warning.
		lg.Warnw("no candidates extracted, possible markup drift")
	} else {
		lg.Infow("extracted candidates", "count", len(candidates))
	}

	return candidates, nil
}

// Extract pulls candidate records out of rendered listing HTML. One
// malformed card never aborts the run; it is skipped and extraction
// continues with the next.
func Extract(html string, src Source) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(src.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	var candidates []Candidate
	findCards(doc, src).Each(func(_ int, card *goquery.Selection) {
		cand, ok := extractCandidate(card, src, base)
		if ok {
			candidates = append(candidates, cand)
		}
	})
	return candidates, nil
}

func extractCandidate(card *goquery.Selection, src Source, base *url.URL) (cand Candidate, ok bool) {
	// Selector heuristics run against arbitrary markup; one bad node must
	// not take the whole batch down.
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	cand = Candidate{
		Title:     extractTitle(card, src),
		SourceURL: extractLink(card, src, base),
		ImageURL:  extractImage(card, src, base),
		DateText:  extractDateText(card, src),
		VenueName: extractVenue(card, src),
	}
	cand.Description = extractDescription(card, src, cand.Title)

	// Minimum viability: a title and a link on the expected domain.
	if cand.Title == "" || !hostMatches(cand.SourceURL, src) {
		return Candidate{}, false
	}

	cand.Title = truncate(cand.Title, titleMaxLen)
	cand.Description = truncate(cand.Description, descriptionMaxLen)
	return cand, true
}
