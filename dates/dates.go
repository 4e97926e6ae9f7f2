// This package normalizes the collection-date conventions found in field
// sample spreadsheets into ISO 8601 forms.
package dates

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// Normalize parses a raw date string in one of the supported upload
// conventions and returns its ISO 8601 form ("YYYY-MM-DD") and its compact
// form ("YYYYMMDD"). Two conventions are recognized:
//
//  1. "DD/MM/YY" or "DD/MM/YYYY" (two-digit years are taken to be in the
//     2000s)
//  2. a three-letter month name followed by a two- or four-digit year
//     (e.g. "Mar16", "March 2016"), in which case the day is taken to be
//     the 1st
//
// Anything else is an error, which aborts the record being normalized.
func Normalize(raw string) (string, string, error) {
	if iso, ok := normalizeSlashed(raw); ok {
		return iso, compactForm(iso), nil
	}
	if iso, ok := normalizeMonthName(raw); ok {
		return iso, compactForm(iso), nil
	}
	return "", "", &UnparseableDateError{Value: raw}
}

// handles "DD/MM/YY" and "DD/MM/YYYY"
func normalizeSlashed(raw string) (string, bool) {
	if len(raw) != 8 && len(raw) != 10 {
		return "", false
	}
	if raw[2] != '/' || raw[5] != '/' {
		return "", false
	}
	year := raw[6:]
	if len(year) == 2 {
		year = "20" + year
	}
	t, err := time.Parse("02/01/2006", raw[:6]+year)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// handles a month name plus a year, with the day forced to the 1st
func normalizeMonthName(raw string) (string, bool) {
	lowered := strings.ToLower(raw)
	month := 0
	for m, name := range monthNames {
		if strings.Contains(lowered, name) {
			month = m + 1
			break
		}
	}
	if month == 0 {
		return "", false
	}

	// the year is the first run of digits in the string
	start := strings.IndexFunc(raw, isDigit)
	if start == -1 {
		return "", false
	}
	end := start
	for end < len(raw) && isDigit(rune(raw[end])) {
		end++
	}
	year := raw[start:end]
	switch len(year) {
	case 2:
		year = "20" + year
	case 4:
	default:
		return "", false
	}
	return fmt.Sprintf("%s-%02d-01", year, month), true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func compactForm(iso string) string {
	return strings.ReplaceAll(iso, "-", "")
}
