package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateFormat is a canonical target format for date normalization.
type DateFormat string

// Supported canonical date formats, in decreasing precision.
const (
	DateFormatFull  DateFormat = "YYYY-MM-DD"
	DateFormatMonth DateFormat = "YYYY-MM"
	DateFormatYear  DateFormat = "YYYY"
)

// ValidDateFormat reports whether f names a supported target format.
func ValidDateFormat(f DateFormat) bool {
	switch f {
	case DateFormatFull, DateFormatMonth, DateFormatYear:
		return true
	}
	return false
}

var (
	yearPattern         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	numericMonthPattern = regexp.MustCompile(`\b(\d{1,2})[/-]`)
	dayPattern          = regexp.MustCompile(`\b(\d{1,2})[,\s]`)
	isoFullPattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	isoMonthPattern     = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

	// recognizedDatePatterns are the input shapes the auditor accepts as
	// well-formed without normalization.
	recognizedDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}$`),                // YYYY
		regexp.MustCompile(`^\d{4}-\d{2}$`),          // YYYY-MM
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),    // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),    // MM/DD/YYYY
		regexp.MustCompile(`^\w+ \d{1,2}, \d{4}$`),   // Month DD, YYYY
		regexp.MustCompile(`^\w+ \d{4}$`),            // Month YYYY
	}

	monthNames = map[string]int{
		"january": 1, "february": 2, "march": 3, "april": 4,
		"may": 5, "june": 6, "july": 7, "august": 8,
		"september": 9, "october": 10, "november": 11, "december": 12,
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
)

// RecognizedDate reports whether date matches one of the accepted input
// shapes. Used by the auditor to flag malformed dates.
func RecognizedDate(date string) bool {
	for _, p := range recognizedDatePatterns {
		if p.MatchString(date) {
			return true
		}
	}
	return false
}

// Date normalizes a free-form date string to the target format.
// Returns "" when no year can be extracted. Normalizing an already
// canonical value is a no-op, so Date is idempotent for a fixed target.
func Date(date string, target DateFormat) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}

	year, month, day := parseDateParts(date)
	if year == 0 {
		return ""
	}

	switch target {
	case DateFormatYear:
		return strconv.Itoa(year)
	case DateFormatMonth:
		if month == 0 {
			return strconv.Itoa(year)
		}
		return fmt.Sprintf("%04d-%02d", year, month)
	default:
		if month == 0 {
			return strconv.Itoa(year)
		}
		if day == 0 {
			return fmt.Sprintf("%04d-%02d", year, month)
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
}

// parseDateParts extracts (year, month, day) from a free-form date string.
// Missing parts are returned as zero.
func parseDateParts(date string) (year, month, day int) {
	// Already-canonical forms parse exactly.
	if m := isoFullPattern.FindStringSubmatch(date); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
		return year, month, day
	}
	if m := isoMonthPattern.FindStringSubmatch(date); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		return year, month, 0
	}

	yearMatch := yearPattern.FindString(date)
	if yearMatch == "" {
		return 0, 0, 0
	}
	year, _ = strconv.Atoi(yearMatch)

	if m := numericMonthPattern.FindStringSubmatch(date); m != nil {
		month, _ = strconv.Atoi(m[1])
	} else {
		lower := strings.ToLower(date)
		// Longest names first so "march" is not found inside "marchand"
		// via the "mar" abbreviation; map iteration order is random, so
		// check whole names before abbreviations.
		for _, probe := range []int{0, 1} {
			for name, num := range monthNames {
				if probe == 0 && len(name) <= 3 {
					continue
				}
				if probe == 1 && len(name) > 3 {
					continue
				}
				if strings.Contains(lower, name) {
					month = num
					break
				}
			}
			if month != 0 {
				break
			}
		}
	}
	if month < 1 || month > 12 {
		return year, 0, 0
	}

	if m := dayPattern.FindStringSubmatch(date); m != nil {
		day, _ = strconv.Atoi(m[1])
		if day < 1 || day > 31 {
			day = 0
		}
	}

	return year, month, day
}
