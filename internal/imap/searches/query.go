package searches

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
)

// Criteria holds the user filters. Empty strings mean the filter is absent.
type Criteria struct {
	Mailbox      string
	AllMailboxes bool

	Subject string
	From    string
	To      string
	Cc      string
	Since   string
	Before  string
	Larger  string

	// Limit caps the number of rows; zero or less means no cap.
	Limit int
}

// BuildQuery compiles criteria into IMAP SEARCH key text. Clauses appear in a
// fixed order and an empty criteria set yields ALL.
func BuildQuery(c Criteria, now time.Time) (string, error) {
	var parts []string

	if c.Subject != "" {
		parts = append(parts, "SUBJECT "+Quote(c.Subject))
	}
	if c.From != "" {
		parts = append(parts, "FROM "+Quote(c.From))
	}
	if c.To != "" {
		parts = append(parts, "TO "+Quote(c.To))
	}
	if c.Cc != "" {
		parts = append(parts, "CC "+Quote(c.Cc))
	}
	if c.Since != "" {
		date, err := ParseDate(c.Since, now)
		if err != nil {
			return "", err
		}
		parts = append(parts, "SINCE "+date)
	}
	if c.Before != "" {
		date, err := ParseDate(c.Before, now)
		if err != nil {
			return "", err
		}
		parts = append(parts, "BEFORE "+date)
	}
	if c.Larger != "" {
		size, err := ParseSize(c.Larger)
		if err != nil {
			return "", err
		}
		parts = append(parts, "LARGER "+strconv.FormatUint(size, 10))
	}

	if len(parts) == 0 {
		return "ALL", nil
	}
	return strings.Join(parts, " "), nil
}

// Quote produces an IMAP quoted string from user text.
func Quote(s string) string {
	return imaptext.Quote(s)
}

// ParseSize accepts a byte count with an optional K or M suffix.
func ParseSize(s string) (uint64, error) {
	raw := s
	s = strings.TrimSpace(s)
	invalid := &base.ValidationError{Field: "size", Value: raw, Hint: "expected a number with optional K or M suffix, e.g. 500K or 2M"}
	if s == "" {
		return 0, invalid
	}

	multiplier := uint64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, invalid
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, invalid
		}
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, invalid
	}
	if n > math.MaxUint64/multiplier {
		return 0, &base.ValidationError{Field: "size", Value: raw, Hint: "value too large"}
	}
	return n * multiplier, nil
}
