package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// "Aug 7, 2025", "August 7 2025"
	monthDayYearPattern = regexp.MustCompile(`(\w{3,9})\s+(\d{1,2}),?\s*(\d{4})`)
	// "Aug 7"; the character after the day is checked by hand
	monthDayPattern = regexp.MustCompile(`(\w{3,9})\s+(\d{1,2})`)
	// "08/07/2025", month first
	numericPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Day truncates t to a calendar date expressed as midnight UTC
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ParseLine returns every date found in one line, in pattern order, without duplicates.
// Yearless "Month Day" dates are only recognised when yearless is set and take defaultYear.
func ParseLine(line string, yearless bool, defaultYear int) []time.Time {
	var found []time.Time
	add := func(d time.Time) {
		for _, existing := range found {
			if existing.Equal(d) {
				return
			}
		}
		found = append(found, d)
	}

	for _, m := range monthDayYearPattern.FindAllStringSubmatch(line, -1) {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			add(d)
		}
	}

	if yearless {
		for _, idx := range monthDayPattern.FindAllStringSubmatchIndex(line, -1) {
			// reject "Aug 123" and times like "Aug 7:30"
			if idx[1] < len(line) {
				next := line[idx[1]]
				if next == ':' || (next >= '0' && next <= '9') {
					continue
				}
			}
			if d, ok := buildDate(line[idx[2]:idx[3]], line[idx[4]:idx[5]], strconv.Itoa(defaultYear)); ok {
				add(d)
			}
		}
	}

	for _, m := range numericPattern.FindAllStringSubmatch(line, -1) {
		month, _ := strconv.Atoi(m[1])
		if month < 1 || month > 12 {
			continue
		}
		if d, ok := validDate(m[3], time.Month(month), m[2]); ok {
			add(d)
		}
	}

	return found
}

func buildDate(monthStr, dayStr, yearStr string) (time.Time, bool) {
	month, ok := monthNames[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, false
	}
	return validDate(yearStr, month, dayStr)
}

// validDate rejects days that do not exist in the month, e.g. Feb 30
func validDate(yearStr string, month time.Month, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// Normalize removes duplicate dates, keeping the first occurrence, and sorts the rest ascending
func Normalize(all []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(all))
	unique := make([]time.Time, 0, len(all))
	for _, d := range all {
		d = Day(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return unique
}
