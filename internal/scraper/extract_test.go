package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventbriteListing = `<html><body>
<div class="event-card">
  <h3>Jazz Night</h3>
  <a href="https://www.eventbrite.com.au/e/jazz-night-123">details</a>
  <img src="https://img.evbuc.com/jazz.jpg"/>
  <time datetime="2026-02-14T21:00:00">Sat, 14 Feb, 9:00 pm</time>
  <p>Late night jazz session with a rotating lineup of local players.</p>
  <p>The Basement</p>
</div>
<div class="event-card">
  <h3>Winery Tour</h3>
  <a href="https://www.eventbrite.com.au/e/winery-tour-456">details</a>
  <div class="date-status">Sold Out</div>
</div>
<div class="event-card">
  <h3>Sponsored Getaway</h3>
  <a href="https://ads.example.com/click?id=99">book now</a>
</div>
<div class="event-card">
  <a href="https://www.eventbrite.com.au/e/untitled-789">details</a>
</div>
</body></html>`

func TestExtractEventbriteCards(t *testing.T) {
	candidates, err := Extract(eventbriteListing, Eventbrite())
	require.NoError(t, err)

	// The ad card fails the host gate; the title-less card fails the
	// viability gate.
	require.Len(t, candidates, 2)

	jazz := candidates[0]
	assert.Equal(t, "Jazz Night", jazz.Title)
	assert.Equal(t, "https://www.eventbrite.com.au/e/jazz-night-123", jazz.SourceURL)
	assert.Equal(t, "https://img.evbuc.com/jazz.jpg", jazz.ImageURL)
	assert.Equal(t, "2026-02-14T21:00:00", jazz.DateText)
	assert.Equal(t, "The Basement", jazz.VenueName)
	assert.Contains(t, jazz.Description, "Late night jazz")

	winery := candidates[1]
	assert.Equal(t, "Winery Tour", winery.Title)
	assert.Empty(t, winery.DateText, "ticket-status banners are not dates")
}

func TestExtractBareAnchorCard(t *testing.T) {
	html := `<html><body>
<div>
  <a href="https://www.timeout.com/sydney/events/harbour-festival">Harbour Festival</a>
  <a href="https://www.timeout.com/sydney/news/some-article">News item</a>
</div>
</body></html>`

	candidates, err := Extract(html, TimeoutSydney())
	require.NoError(t, err)

	// No card selector matches, so the link fallback kicks in and only
	// event-path anchors survive.
	require.Len(t, candidates, 1)
	assert.Equal(t, "Harbour Festival", candidates[0].Title)
	assert.Equal(t, "https://www.timeout.com/sydney/events/harbour-festival", candidates[0].SourceURL)
}

func TestExtractLinkFallbackExcludesSearchPages(t *testing.T) {
	html := `<html><body>
<a href="https://www.eventbrite.com.au/d/australia--sydney/music/">Browse music</a>
<a href="https://www.eventbrite.com.au/o/some-organizer">Organizer</a>
</body></html>`

	candidates, err := Extract(html, Eventbrite())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestExtractRelativeURLsResolved(t *testing.T) {
	html := `<html><body>
<article>
  <h3 ><a href="/sydney/things-to-do/open-air-cinema">Open Air Cinema</a></h3>
  <img data-src="/images/cinema.jpg"/>
  <time>Sat, 14 Feb, 8:00 pm</time>
</article>
</body></html>`

	candidates, err := Extract(html, TimeoutSydney())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://www.timeout.com/sydney/things-to-do/open-air-cinema", candidates[0].SourceURL)
	assert.Equal(t, "https://www.timeout.com/images/cinema.jpg", candidates[0].ImageURL)
	assert.Equal(t, "Sat, 14 Feb, 8:00 pm", candidates[0].DateText)
}

func TestExtractTruncatesLongFields(t *testing.T) {
	longTitle := strings.Repeat("A Very Long Title ", 20)
	html := `<html><body>
<div class="event-card">
  <h3>` + longTitle + `</h3>
  <a href="https://www.eventbrite.com.au/e/long-1">details</a>
</div>
</body></html>`

	candidates, err := Extract(html, Eventbrite())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Len(t, candidates[0].Title, titleMaxLen)
}

func TestExtractDateScanFallback(t *testing.T) {
	html := `<html><body>
<li class="event-item">
  <h2><a href="https://www.eventfinda.com.au/event/food-truck-friday">Food Truck Friday</a></h2>
  <span>Tickets from $15</span>
  <span>Fri 20 Feb from 5pm</span>
</li>
</body></html>`

	candidates, err := Extract(html, Eventfinda())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Fri 20 Feb from 5pm", candidates[0].DateText)
}

func TestExtractEmptyPage(t *testing.T) {
	candidates, err := Extract(`<html><body><p>Nothing on today.</p></body></html>`, Eventfinda())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
