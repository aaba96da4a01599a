package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

func parseISODate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ParseDateText attempts to derive a concrete timestamp from a normalized
// date value. Returns nil for "Rolling" and for free text that carries no
// parseable date; that is not an error, the text alone remains the value.
func ParseDateText(text string) *time.Time {
	text = cleanDateString(text)
	if text == "" || strings.EqualFold(text, "Rolling") {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return &t
	}
	if t, err := parseISODate(text); err == nil {
		eod := toEndOfDay(t)
		return &eod
	}

	formats := []string{
		"2 January 2006",
		"02 January 2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"01/02/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, text); err == nil {
			eod := toEndOfDay(t)
			return &eod
		}
	}

	if t := parseDateWithRegex(text); !t.IsZero() {
		eod := toEndOfDay(t)
		return &eod
	}

	return nil
}

// toEndOfDay sets the time to 23:59:59 UTC; date-only deadlines are valid
// through the whole day.
func toEndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

var (
	isoDateRegex   = regexp.MustCompile(`\b(20\d{2})-(\d{2})-(\d{2})\b`)
	usDateRegex    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(20\d{2})\b`)
	monthNameRegex = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2}),?\s+(20\d{2})\b`)
)

// parseDateWithRegex extracts a date embedded in surrounding text.
func parseDateWithRegex(text string) time.Time {
	if matches := isoDateRegex.FindStringSubmatch(text); len(matches) == 4 {
		if t, err := time.Parse("2006-01-02", matches[0]); err == nil {
			return t
		}
	}

	if matches := usDateRegex.FindStringSubmatch(text); len(matches) == 4 {
		dateStr := fmt.Sprintf("%s/%s/%s", matches[1], matches[2], matches[3])
		if t, err := time.Parse("1/2/2006", dateStr); err == nil {
			return t
		}
	}

	if matches := monthNameRegex.FindStringSubmatch(text); len(matches) == 4 {
		dateStr := fmt.Sprintf("%s %s %s", matches[1], matches[2], matches[3])
		if t, err := time.Parse("January 2, 2006", dateStr); err == nil {
			return t
		}
		if t, err := time.Parse("Jan 2, 2006", dateStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

// cleanDateString removes common label prefixes before parsing.
func cleanDateString(s string) string {
	prefixes := []string{
		"Closing date:", "Deadline:", "Due date:", "Decision by:",
		"Decisions announced:", "Expires:", "Ends:",
	}
	sLower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(sLower, strings.ToLower(p)); idx != -1 {
			s = s[idx+len(p):]
			sLower = sLower[idx+len(p):]
		}
	}
	return strings.TrimSpace(s)
}
