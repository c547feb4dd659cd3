package comics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
	barcodeRe    = regexp.MustCompile(`[^0-9Xx]`)
	issueSplitRe = regexp.MustCompile(`^(\d+)(.*)$`)
)

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// NormalizeIssueNumber strips a leading '#' and trims whitespace, so that
// "1", "#1 " and " 1" compare equal everywhere issue numbers are compared
// or stored. Empty or absent input yields "".
func NormalizeIssueNumber(v any) string {
	s := AsString(v)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

// ParseReleaseDate coerces heterogeneous date input into canonical ISO
// YYYY-MM-DD. It accepts ISO dates unchanged, "Mon YYYY" / "Month YYYY"
// (converted to the first of that month), and a handful of common layouts.
// It never fails: anything unparseable is nil, not an error.
func ParseReleaseDate(v any) *string {
	if t, ok := v.(time.Time); ok {
		s := t.Format("2006-01-02")
		return &s
	}

	text := strings.TrimSpace(AsString(v))
	if text == "" {
		return nil
	}

	if isoDateRe.MatchString(text) {
		return &text
	}

	// "Apr 1984" / "April 1984": first of that month.
	parts := strings.Fields(text)
	if len(parts) >= 2 {
		monthKey := strings.ToLower(parts[0])
		if len(monthKey) >= 3 {
			monthKey = monthKey[:3]
		}
		year := nonDigitRe.ReplaceAllString(parts[1], "")
		if m, ok := monthNumbers[monthKey]; ok && len(year) == 4 {
			s := year + "-" + m + "-01"
			return &s
		}
	}

	layouts := []string{
		"Jan 02, 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2006/01/02",
		"01/02/2006",
		"1/2/2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			s := t.Format("2006-01-02")
			return &s
		}
	}
	return nil
}

// ParseNumber returns a finite number or nil. Non-numeric or empty input is
// nil, never zero. It accepts JSON numbers as well as numeric strings.
func ParseNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseInt is ParseNumber truncated to an integer column value.
func ParseInt(v any) *int64 {
	f := ParseNumber(v)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// CleanBarcode keeps only digits and X (ISBN check character).
func CleanBarcode(s string) string {
	return barcodeRe.ReplaceAllString(s, "")
}

// SplitIssueNumber splits a combined issue number into its leading numeric
// run and the remaining suffix, e.g. "12b" -> ("12", "b"). Input without a
// leading digit run is returned whole as the numeric part.
func SplitIssueNumber(issueNumber string) (issuenr, issueext string) {
	text := strings.TrimSpace(issueNumber)
	if text == "" {
		return "", ""
	}
	m := issueSplitRe.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return m[1], m[2]
}

// AsString renders scalar JSON values as text; nil becomes "".
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; render integral values plainly.
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
