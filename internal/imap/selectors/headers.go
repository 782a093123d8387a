package selectors

import (
	"bufio"
	"bytes"
	netmail "net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// HeaderFields are the header fields fetched for result rows.
var HeaderFields = []string{"SUBJECT", "FROM", "DATE"}

var dateOffsetPattern = regexp.MustCompile(`\s+[+-]\d{4}(\s.*)?$`)

type headerSummary struct {
	Subject   string
	From      string
	Date      string
	Timestamp time.Time
}

// parseHeaderSummary decodes Subject, From and Date. Headers the MIME parser
// rejects are scanned line by line instead.
func parseHeaderSummary(raw []byte) headerSummary {
	if len(bytes.TrimSpace(raw)) == 0 {
		return headerSummary{}
	}

	header, err := readHeader(raw)
	if err != nil {
		return scanHeaderLines(raw)
	}

	summary := headerSummary{
		Subject: headerText(header, "Subject"),
		From:    headerText(header, "From"),
		Date:    strings.TrimSpace(header.Get("Date")),
	}
	if ts, err := header.Date(); err == nil {
		summary.Timestamp = ts
	}
	return summary
}

func readHeader(raw []byte) (*mail.Header, error) {
	tpHeader, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(terminateHeader(raw))))
	if err != nil {
		return nil, err
	}
	header := mail.Header{Header: message.Header{Header: tpHeader}}
	return &header, nil
}

// terminateHeader makes sure the block ends with the blank line the parser
// expects. Some servers drop it from HEADER.FIELDS responses.
func terminateHeader(raw []byte) []byte {
	if bytes.HasSuffix(raw, []byte("\r\n\r\n")) || bytes.HasSuffix(raw, []byte("\n\n")) {
		return raw
	}
	out := make([]byte, 0, len(raw)+4)
	out = append(out, raw...)
	if bytes.HasSuffix(raw, []byte("\n")) {
		return append(out, "\r\n"...)
	}
	return append(out, "\r\n\r\n"...)
}

func headerText(header *mail.Header, key string) string {
	if header == nil {
		return ""
	}
	value, err := header.Text(key)
	if err != nil {
		return strings.TrimSpace(header.Get(key))
	}
	return strings.TrimSpace(value)
}

func scanHeaderLines(raw []byte) headerSummary {
	var summary headerSummary
	var current *string

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			current = nil
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && current != nil {
			*current += " " + strings.TrimSpace(line)
			continue
		}

		current = nil
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "subject":
			summary.Subject = value
			current = &summary.Subject
		case "from":
			summary.From = value
			current = &summary.From
		case "date":
			summary.Date = value
			current = &summary.Date
		}
	}

	if ts, err := netmail.ParseDate(summary.Date); err == nil {
		summary.Timestamp = ts
	}
	return summary
}

// displayDate strips a trailing numeric zone such as " +0000" or
// " -0500 (EST)".
func displayDate(date string) string {
	return strings.TrimSpace(dateOffsetPattern.ReplaceAllString(date, ""))
}
