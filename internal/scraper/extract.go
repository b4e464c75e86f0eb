package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sydscene/sydscene/internal/datetext"
)

var (
	digitRe       = regexp.MustCompile(`\d`)
	dateWordRe    = regexp.MustCompile(`(?i)(mon|tue|wed|thu|fri|sat|sun|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	dayMonthRe    = regexp.MustCompile(`(?i)\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	weekdayNumRe  = regexp.MustCompile(`(?i)(mon|tue|wed|thu|fri|sat|sun).*\d`)
	numericDateRe = regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}`)
)

// findCards locates candidate containers: the first card selector that
// yields any matches wins. When none match, every anchor from the link
// fallback whose target looks like an event detail URL is treated as a
// card of its own.
func findCards(doc *goquery.Document, src Source) *goquery.Selection {
	for _, sel := range src.Cards {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find(src.LinkFallback).FilterFunction(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return false
		}
		if src.ExcludePathRe != nil && src.ExcludePathRe.MatchString(href) {
			return false
		}
		return src.EventPathRe.MatchString(href)
	})
}

func firstText(card *goquery.Selection, chain []string) string {
	for _, sel := range chain {
		if text := strings.TrimSpace(card.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractTitle(card *goquery.Selection, src Source) string {
	if title := firstText(card, src.Fields.Title); title != "" {
		return title
	}
	// A bare link card carries its title as the anchor text.
	if goquery.NodeName(card) == "a" {
		return strings.TrimSpace(card.Text())
	}
	return ""
}

func extractLink(card *goquery.Selection, src Source, base *url.URL) string {
	if goquery.NodeName(card) == "a" {
		if href, ok := card.Attr("href"); ok {
			return resolveURL(base, href)
		}
	}
	for _, sel := range src.Fields.Link {
		if href, ok := card.Find(sel).First().Attr("href"); ok && href != "" {
			return resolveURL(base, href)
		}
	}
	return ""
}

func extractImage(card *goquery.Selection, src Source, base *url.URL) string {
	for _, sel := range src.Fields.Image {
		img := card.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
			if v, ok := img.Attr(attr); ok && v != "" {
				return resolveURL(base, v)
			}
		}
		if srcset, ok := img.Attr("srcset"); ok && srcset != "" {
			return resolveURL(base, strings.Fields(srcset)[0])
		}
	}
	return ""
}

// extractDateText walks the date chain preferring machine-readable
// datetime attributes over display text, and refuses ticket-urgency
// banners that sites render in the same DOM slots.
func extractDateText(card *goquery.Selection, src Source) string {
	for _, sel := range src.Fields.Date {
		elem := card.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}

		for _, attr := range []string{"datetime", "data-date"} {
			if v, ok := elem.Attr(attr); ok && v != "" {
				return v
			}
		}

		text := strings.TrimSpace(elem.Text())
		if text == "" || datetext.IsStatusMessage(text) {
			continue
		}
		if len(text) < 100 && (digitRe.MatchString(text) || dateWordRe.MatchString(text)) {
			return text
		}
	}

	// Last resort: scan all text nodes for something date-shaped.
	var found string
	card.Find("p, span, div").EachWithBreak(func(_ int, elem *goquery.Selection) bool {
		text := strings.TrimSpace(elem.Text())
		if text == "" || len(text) >= 100 || datetext.IsStatusMessage(text) {
			return true
		}
		if dayMonthRe.MatchString(text) || weekdayNumRe.MatchString(text) || numericDateRe.MatchString(text) {
			found = text
			return false
		}
		return true
	})
	return found
}

func extractVenue(card *goquery.Selection, src Source) string {
	for _, sel := range src.Fields.Venue {
		if text := strings.TrimSpace(card.Find(sel).First().Text()); len(text) > 2 {
			return text
		}
	}
	return ""
}

func extractDescription(card *goquery.Selection, src Source, title string) string {
	for _, sel := range src.Fields.Description {
		text := strings.TrimSpace(card.Find(sel).First().Text())
		if len(text) >= 20 && text != title {
			return text
		}
	}
	return ""
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// hostMatches reports whether raw is an absolute URL on the source's
// expected domain. Part of the viability gate keeping third-party content
// out of the pipeline.
func hostMatches(raw string, src Source) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host), strings.ToLower(src.Host))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
