package selectors

import (
	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/mattn/go-runewidth"
)

const (
	FromWidth    = 40
	SubjectWidth = 60
	ellipsis     = "..."
)

// Truncate shortens s to at most width display cells, ending in "...".
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, ellipsis)
}

func buildRow(mailbox string, rec base.DetailRecord) base.MessageRow {
	summary := parseHeaderSummary(rec.Header)

	row := base.MessageRow{
		UID:     rec.UID,
		Mailbox: mailbox,
		From:    Truncate(summary.From, FromWidth),
		Subject: Truncate(summary.Subject, SubjectWidth),
		Date:    displayDate(summary.Date),
		Size:    rec.Size,
		Flags:   rec.Flags,
	}
	if !summary.Timestamp.IsZero() {
		row.Timestamp = summary.Timestamp.Unix()
	}
	return row
}
