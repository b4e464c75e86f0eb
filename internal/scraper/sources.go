package scraper

import "regexp"

// FieldSelectors is the ordered fallback chain tried for each candidate
// field. Chains are independent: a field whose chain comes up empty leaves
// that field blank without blocking the others.
type FieldSelectors struct {
	Title       []string
	Link        []string
	Image       []string
	Date        []string
	Venue       []string
	Description []string
}

// Source describes one external listing site: where to crawl, how to
// recognize its event cards, and how to pull fields out of them. The three
// sources share the crawl/extract skeleton and differ only in this table.
type Source struct {
	Name       string
	ListingURL string
	// Host must appear in a candidate link's hostname for the candidate
	// to be viable. Keeps ads and cross-site promos out of the pipeline.
	Host string
	// EventPathRe recognizes event detail URLs, both for the all-links
	// fallback and for picking the right anchor inside a card.
	EventPathRe *regexp.Regexp
	// ExcludePathRe filters out non-event URLs that would otherwise
	// satisfy EventPathRe, such as search and organizer pages.
	ExcludePathRe *regexp.Regexp
	// LinkFallback selects the anchors scanned when no card selector
	// matches anything.
	LinkFallback string
	// Scrolls is the hand-tuned number of scroll increments for this
	// site's lazy loading.
	Scrolls int
	Cards   []string
	Fields  FieldSelectors
}

func Eventbrite() Source {
	return Source{
		Name:          "Eventbrite",
		ListingURL:    "https://www.eventbrite.com.au/d/australia--sydney/events/",
		Host:          "eventbrite",
		EventPathRe:   regexp.MustCompile(`/e/`),
		ExcludePathRe: regexp.MustCompile(`/d/|/o/`),
		LinkFallback:  `a[href*="eventbrite"]`,
		Scrolls:       5,
		Cards: []string{
			`div[class*="discover-search-desktop-card"]`,
			`div[class*="event-card"]`,
			`article`,
			`div[data-testid*="event"]`,
			`a[href*="/e/"]`,
		},
		Fields: FieldSelectors{
			Title: []string{
				`h3`, `h2`,
				`div[class*="title"]`,
				`span[class*="title"]`,
				`[data-testid*="title"]`,
			},
			Link:  []string{`a[href*="/e/"]`},
			Image: []string{`img`},
			Date: []string{
				`time[datetime]`,
				`time`,
				`[class*="date"]:not([class*="status"]):not([class*="ticket"])`,
				`[class*="time"]:not([class*="status"]):not([class*="ticket"])`,
				`[data-testid*="date"]`,
				`[data-testid*="time"]`,
			},
			Venue: []string{
				`[data-testid="venue"]`,
				`[class*="venue"]`,
				`[class*="location"]`,
				`p:nth-of-type(2)`,
			},
			Description: []string{`p`},
		},
	}
}

func Eventfinda() Source {
	return Source{
		Name:         "Eventfinda",
		ListingURL:   "https://www.eventfinda.com.au/whatson/sydney",
		Host:         "eventfinda",
		EventPathRe:  regexp.MustCompile(`/events?/`),
		LinkFallback: `a[href*="eventfinda"]`,
		Scrolls:      3,
		Cards: []string{
			`article[class*="event"]`,
			`div[class*="event"]`,
			`li[class*="event"]`,
			`.event-item`,
			`.event-listing`,
			`.event-card`,
			`[data-event-id]`,
			`a[href*="/event/"]`,
			`a[href*="/events/"]`,
		},
		Fields: FieldSelectors{
			Title: []string{
				`h1 a`, `h2 a`, `h3 a`, `h4 a`,
				`.event-title a`,
				`h1`, `h2`, `h3`, `h4`,
				`[class*="title"]`,
			},
			Link:  []string{`a[href*="/event/"]`, `a[href*="/events/"]`},
			Image: []string{`img`},
			Date: []string{
				`time[datetime]`,
				`time`,
				`.date`, `[class*="date"]`,
				`[class*="time"]`,
				`[data-date]`,
			},
			Venue: []string{
				`.venue`, `[class*="venue"]`,
				`.location`, `[class*="location"]`,
			},
			Description: []string{
				`.description`, `[class*="description"]`,
				`.summary`, `[class*="summary"]`,
				`p`,
			},
		},
	}
}

func TimeoutSydney() Source {
	return Source{
		Name:         "TimeOut Sydney",
		ListingURL:   "https://www.timeout.com/sydney/things-to-do/events-in-sydney",
		Host:         "timeout.com",
		EventPathRe:  regexp.MustCompile(`/(events|things-to-do)/`),
		LinkFallback: `a[href*="timeout.com"]`,
		Scrolls:      4,
		Cards: []string{
			`article`,
			`[data-module="ArticleCard"]`,
			`.card`,
			`.listing-card`,
		},
		Fields: FieldSelectors{
			Title: []string{
				`h3 a`, `h2 a`, `h1 a`,
				`.card-title a`,
				`[class*="title"] a`,
				`a[href*="/events/"]`,
				`a[href*="/things-to-do/"]`,
			},
			Link:  []string{`a[href*="/events/"]`, `a[href*="/things-to-do/"]`},
			Image: []string{`img`},
			Date: []string{
				`time[datetime]`,
				`time`,
				`.date`, `[class*="date"]`,
				`[class*="time"]`,
				`[data-date]`,
			},
			Venue: []string{
				`.venue`, `[class*="venue"]`,
				`.location`, `[class*="location"]`,
			},
			Description: []string{
				`.description`, `[class*="description"]`,
				`.summary`, `[class*="summary"]`,
				`p`,
			},
		},
	}
}

// Sources returns every configured site adapter definition.
func Sources() []Source {
	return []Source{Eventbrite(), Eventfinda(), TimeoutSydney()}
}
