// Package datetext turns the free-text date strings scraped from event
// listing pages into absolute timestamps. Listing markup mixes real dates
// with ticket-urgency banners and venue noise, so parsing is a chain of
// increasingly loose strategies that either yields a timestamp or reports
// the text as unparseable.
package datetext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ticket-urgency banners that sites render in the same DOM slots as dates.
var statusMessages = []string{
	"almost full",
	"selling quickly",
	"sales end soon",
	"sold out",
	"limited availability",
	"few tickets left",
}

// IsStatusMessage reports whether text is a ticket-availability banner
// rather than a date.
func IsStatusMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, status := range statusMessages {
		if strings.Contains(lower, status) {
			return true
		}
	}
	return false
}

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Canonical weekday ordering, Sunday first, matching time.Weekday.
var weekdayIndex = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

var (
	embeddedDateRe = regexp.MustCompile(`(?i)(Mon|Tue|Wed|Thu|Fri|Sat|Sun),?\s+\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec),?\s+\d{1,2}:?\d{0,2}\s*(am|pm)`)
	isoPrefixRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	tzOffsetRe     = regexp.MustCompile(`(?i)\s+GMT[+-]\d{1,2}:?\d{0,2}`)
	atConnectorRe  = regexp.MustCompile(`(?i)\s+at\s+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	dayMonthTimeRe = regexp.MustCompile(`(?i)(Mon|Tue|Wed|Thu|Fri|Sat|Sun),?\s+(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec),?\s+(\d{1,2}):?(\d{2})?\s*(am|pm)`)
	weekdayTimeRe  = regexp.MustCompile(`(?i)^(Mon|Tues|Tue|Wednes|Wed|Thurs|Thu|Fri|Satur|Sat|Sun)day\s+(\d{1,2}):?(\d{2})?\s*(am|pm)`)
	weekdayPrefRe  = regexp.MustCompile(`(?i)^(Mon|Tue|Wed|Thu|Fri|Sat|Sun),?\s*`)
	meridiemRe     = regexp.MustCompile(`(?i)\b(am|pm)\b`)
)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Explicit month/day/time templates, tried with an appended current year
// first and then without one.
var explicitLayouts = []string{
	"2 Jan, 3:04 PM 2006",
	"2 Jan 3:04 PM 2006",
	"2 January, 3:04 PM 2006",
	"2 January 3:04 PM 2006",
	"Jan 2, 3:04 PM 2006",
	"January 2, 3:04 PM 2006",
	"2 Jan 2006 3:04 PM",
	"2 January 2006 3:04 PM",
}

var nativeLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006/01/02",
	"02/01/2006",
}

// Parse converts free-text date text into an absolute timestamp. The second
// return value is false when no strategy produced a usable date; callers
// must then fall back to keeping the raw text.
func Parse(text string) (time.Time, bool) {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an injectable clock.
func ParseAt(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if IsStatusMessage(text) {
		return time.Time{}, false
	}

	// Cards often concatenate title, date and venue into one text blob.
	// When a recognizable date fragment is embedded, parse just that.
	if match := embeddedDateRe.FindString(text); match != "" {
		text = match
	}

	if isoPrefixRe.MatchString(text) {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
				return t, true
			}
		}
	}

	cleaned := tzOffsetRe.ReplaceAllString(text, "")
	cleaned = atConnectorRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))

	// "Sat, 14 Feb, 9:00 pm" with the current year assumed. A resolved
	// instant that is not in the future means the year guess is wrong for
	// recurring text, so the match is discarded. The explicit templates
	// below are skipped in that case: they would only re-derive the same
	// past instant from the same fragment.
	recurringMiss := false
	if m := dayMonthTimeRe.FindStringSubmatch(cleaned); m != nil {
		day, _ := strconv.Atoi(m[2])
		month, okMonth := monthIndex[strings.ToLower(m[3])]
		if okMonth {
			hour := to24Hour(m[4], m[6])
			minute := 0
			if m[5] != "" {
				minute, _ = strconv.Atoi(m[5])
			}
			t := time.Date(now.Year(), month, day, hour, minute, 0, 0, now.Location())
			if t.After(now) {
				return t, true
			}
			recurringMiss = true
		}
	}

	// "Saturday at 2:00 pm" means the next occurrence of that weekday,
	// never today.
	if m := weekdayTimeRe.FindStringSubmatch(cleaned); m != nil {
		if target, ok := weekdayIndex[strings.ToLower(m[1][:3])]; ok {
			daysUntil := (int(target) - int(now.Weekday()) + 7) % 7
			if daysUntil == 0 {
				daysUntil = 7
			}
			hour := to24Hour(m[2], m[4])
			minute := 0
			if m[3] != "" {
				minute, _ = strconv.Atoi(m[3])
			}
			day := now.AddDate(0, 0, daysUntil)
			return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
		}
	}

	cleaned = weekdayPrefRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	normalized := meridiemRe.ReplaceAllStringFunc(cleaned, strings.ToUpper)

	if !recurringMiss {
		year := strconv.Itoa(now.Year())
		for _, layout := range explicitLayouts {
			if t, err := time.ParseInLocation(layout, normalized+" "+year, now.Location()); err == nil {
				return t, true
			}
		}
		for _, layout := range explicitLayouts {
			stripped := strings.TrimSuffix(layout, " 2006")
			if stripped == layout {
				continue
			}
			if t, err := time.ParseInLocation(stripped, normalized, now.Location()); err == nil {
				return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), true
			}
		}
	}

	for _, layout := range nativeLayouts {
		if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// to24Hour converts a 12-hour clock reading: 12am maps to 0, pm adds 12
// except for 12pm.
func to24Hour(hourText, meridiem string) int {
	hour, _ := strconv.Atoi(hourText)
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}
