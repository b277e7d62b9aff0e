package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parseDateMatch turns the capture groups of one date pattern into an ISO
// date string. Month-name groups are resolved through the locale table;
// two-digit years pivot at 50 (<=50 means 20xx).
func parseDateMatch(groups []string, months map[string]int) (string, bool) {
	if len(groups) != 3 {
		return "", false
	}

	// month-name form: one group is a name from the locale table
	for i, g := range groups {
		key := strings.ToLower(strings.ReplaceAll(g, ".", ""))
		month, ok := months[key]
		if !ok {
			continue
		}
		var dayStr, yearStr string
		if i == 0 {
			// Month DD, YYYY
			dayStr, yearStr = groups[1], groups[2]
		} else {
			// DD Month YYYY
			dayStr, yearStr = groups[i-1], groups[len(groups)-1]
		}
		return buildDate(yearStr, month, dayStr)
	}

	// numeric form
	if len(groups[0]) == 4 {
		// YYYY-MM-DD
		month, err := strconv.Atoi(groups[1])
		if err != nil {
			return "", false
		}
		return buildDate(groups[0], month, groups[2])
	}
	// DD/MM/YYYY
	month, err := strconv.Atoi(groups[1])
	if err != nil {
		return "", false
	}
	return buildDate(groups[2], month, groups[0])
}

func buildDate(yearStr string, month int, dayStr string) (string, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}
	if year < 100 {
		if year <= 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflowed dates like 31/02 that time.Date silently normalizes
	if dt.Year() != year || dt.Month() != time.Month(month) || dt.Day() != day {
		return "", false
	}
	return dt.Format("2006-01-02"), true
}

func findDate(text string, dateRes []*regexp.Regexp, months map[string]int) (string, bool) {
	for _, re := range dateRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if date, ok := parseDateMatch(m[1:], months); ok {
				return date, true
			}
		}
	}
	return "", false
}
