package searches

import (
	"regexp"
	"strconv"
	"time"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
)

const dateHint = "expected YYYY-MM-DD or <N>d|w|m|y, e.g. 2025-01-31 or 7d"

var (
	absoluteDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	relativeDatePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

	monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// ParseDate turns an absolute or relative date into the D-Mon-YYYY form
// SEARCH expects. Relative dates count back from now in UTC.
func ParseDate(s string, now time.Time) (string, error) {
	invalid := &base.ValidationError{Field: "date", Value: s, Hint: dateHint}

	if m := absoluteDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return "", invalid
		}
		return formatSearchDate(int64(year), int64(month), int64(day)), nil
	}

	m := relativeDatePattern.FindStringSubmatch(s)
	if m == nil {
		return "", invalid
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > 3_650_000 {
		return "", invalid
	}

	days := floorDiv(now.Unix(), 86400)
	y, mo, d := civilFromDays(days)

	switch m[2] {
	case "d":
		y, mo, d = civilFromDays(days - n)
	case "w":
		y, mo, d = civilFromDays(days - 7*n)
	case "m":
		total := y*12 + (mo - 1) - n
		y = floorDiv(total, 12)
		mo = total - y*12 + 1
		d = min(d, daysInMonth(y, mo))
	case "y":
		y -= n
		d = min(d, daysInMonth(y, mo))
	}

	if y < 1 || y > 9999 {
		return "", invalid
	}
	return formatSearchDate(y, mo, d), nil
}

func formatSearchDate(year, month, day int64) string {
	return strconv.FormatInt(day, 10) + "-" + monthAbbrev[month-1] + "-" + strconv.FormatInt(year, 10)
}

// civilFromDays converts days since 1970-01-01 into a proleptic Gregorian
// date (Howard Hinnant's algorithm).
func civilFromDays(z int64) (year, month, day int64) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	year = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		month = mp + 3
	} else {
		month = mp - 9
	}
	if month <= 2 {
		year++
	}
	return year, month, day
}

// daysFromCivil is the inverse of civilFromDays.
func daysFromCivil(year, month, day int64) int64 {
	if month <= 2 {
		year--
	}
	era := floorDiv(year, 400)
	yoe := year - era*400
	var mp int64
	if month > 2 {
		mp = month - 3
	} else {
		mp = month + 9
	}
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func isLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year, month int64) int64 {
	switch month {
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
