package scoring

import (
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput marks a missing required field or an out-of-domain value.
var ErrInvalidInput = eris.New("invalid input")

// InvalidField wraps ErrInvalidInput with the offending field name.
func InvalidField(field, format string, args ...any) error {
	return eris.Wrapf(ErrInvalidInput, field+" "+format, args...)
}

// IsInvalidInput reports whether err belongs to the InvalidInput class.
func IsInvalidInput(err error) bool {
	return eris.Is(err, ErrInvalidInput)
}

func requireNonNegative(field string, v float64) error {
	if v < 0 {
		return InvalidField(field, "must be non-negative, got %v", v)
	}
	return nil
}

func requirePositive(field string, v float64) error {
	if v <= 0 {
		return InvalidField(field, "must be positive, got %v", v)
	}
	return nil
}

func requirePercent(field string, v *float64) error {
	if v != nil && (*v < 0 || *v > 100) {
		return InvalidField(field, "must be between 0 and 100, got %v", *v)
	}
	return nil
}

func requireMonth(field string, m int) error {
	if m < 1 || m > 12 {
		return InvalidField(field, "must be between 1 and 12, got %d", m)
	}
	return nil
}

var forecastMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(field, s string) (year, month int, err error) {
	m := forecastMonthRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, InvalidField(field, "must be formatted YYYY-MM, got %q", s)
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if err := requireMonth(field, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// addMonths returns the year and month n months after year/month.
func addMonths(year, month, n int) (int, int) {
	idx := year*12 + (month - 1) + n
	return idx / 12, idx%12 + 1
}

func formatMonth(year, month int) string {
	return strconv.Itoa(year) + "-" + twoDigits(month)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// indexed prefixes err with the position of the offending array element.
func indexed(field string, i int, err error) error {
	return eris.Wrapf(err, "%s[%d]", field, i)
}
