package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
}

// months maps folded French and English month names and abbreviations to their number
var months = map[string]time.Month{
	"janvier": time.January, "janv": time.January, "jan": time.January, "january": time.January,
	"fevrier": time.February, "fevr": time.February, "fev": time.February, "feb": time.February, "february": time.February,
	"mars": time.March, "mar": time.March, "march": time.March,
	"avril": time.April, "avr": time.April, "apr": time.April, "april": time.April,
	"mai": time.May, "may": time.May,
	"juin": time.June, "june": time.June, "jun": time.June,
	"juillet": time.July, "juil": time.July, "july": time.July, "jul": time.July,
	"aout": time.August, "august": time.August, "aug": time.August,
	"septembre": time.September, "sept": time.September, "sep": time.September, "september": time.September,
	"octobre": time.October, "oct": time.October, "october": time.October,
	"novembre": time.November, "nov": time.November, "november": time.November,
	"decembre": time.December, "dec": time.December, "december": time.December,
}

var (
	dayMonthYear = regexp.MustCompile(`^(\d{1,2})(?:er)?\s+([a-z]+)\.?\s+(\d{4})$`)
	monthDayYear = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
)

// ParseDate parses the date formats found in CVs and tender notices.
// It accepts numeric day-first forms, ISO dates and long forms such as "1er janvier 2025",
// "15 January 2025" or "January 15, 2025". It returns nil when s is not a valid calendar date.
func ParseDate(s string) *time.Time {
	s = CollapseSpaces(s)
	if s == "" {
		return nil
	}

	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	folded := Fold(s)
	if m := dayMonthYear.FindStringSubmatch(folded); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := monthDayYear.FindStringSubmatch(folded); m != nil {
		return buildDate(m[3], m[1], m[2])
	}
	return nil
}

func buildDate(yearStr, monthStr, dayStr string) *time.Time {
	month, ok := months[strings.TrimSuffix(monthStr, ".")]
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so 31 février becomes a March date
	if t.Day() != day || t.Month() != month {
		return nil
	}
	return &t
}
