package selectors

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
	"github.com/emersion/go-imap/utf7"
	"github.com/pkg/errors"
)

var (
	statusPattern     = regexp.MustCompile(`(?i)\*\s+STATUS\s+.*?\(([^)]*)\)`)
	quotaPattern      = regexp.MustCompile(`(?i)\*\s+QUOTA\s+.*?\(([^)]+)\)`)
	quotaEntryPattern = regexp.MustCompile(`(\w+)\s+(\d+)\s+(\d+)`)
)

// StatusRow holds STATUS counters for one mailbox. Err is set when the
// mailbox could not be queried; the counters are then meaningless.
type StatusRow struct {
	Mailbox  string
	Messages uint32
	Unseen   uint32
	Recent   uint32
	Err      error
}

// QuotaResource is one resource line of a QUOTA response. STORAGE values are
// in KiB as sent by the server.
type QuotaResource struct {
	Name  string
	Usage uint64
	Limit uint64
}

// Percent returns usage as a share of the limit, or 0 without a limit.
func (q QuotaResource) Percent() float64 {
	if q.Limit == 0 {
		return 0
	}
	return float64(q.Usage) / float64(q.Limit) * 100
}

// MailboxStatus queries STATUS for each mailbox. Failures are recorded on the
// row and do not stop the loop.
func (c *IMAPSelectorManager) MailboxStatus(ctx context.Context, mailboxes []string) ([]StatusRow, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	rows := make([]StatusRow, 0, len(mailboxes))
	for _, name := range mailboxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := StatusRow{Mailbox: name}
		raw, err := s.RawCommand(statusCommand(name))
		if err == nil {
			err = parseStatus(raw, &row)
		}
		if err != nil {
			c.logger.Warn("status failed", "mailbox", name, "error", err)
			row.Err = err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func statusCommand(mailbox string) string {
	encoded, err := utf7.Encoding.NewEncoder().String(imaptext.Sanitize(mailbox))
	if err != nil {
		encoded = mailbox
	}
	return "STATUS " + imaptext.Quote(encoded) + " (MESSAGES UNSEEN RECENT)"
}

func parseStatus(raw []byte, row *StatusRow) error {
	m := statusPattern.FindSubmatch(raw)
	if m == nil {
		return errors.New("no STATUS data in response")
	}
	fields := strings.Fields(string(m[1]))
	for i := 0; i+1 < len(fields); i += 2 {
		n, err := strconv.ParseUint(fields[i+1], 10, 32)
		if err != nil {
			return errors.Wrapf(err, "STATUS item %s", fields[i])
		}
		switch strings.ToUpper(fields[i]) {
		case "MESSAGES":
			row.Messages = uint32(n)
		case "UNSEEN":
			row.Unseen = uint32(n)
		case "RECENT":
			row.Recent = uint32(n)
		}
	}
	return nil
}

// Quota returns the resources of the INBOX quota root.
func (c *IMAPSelectorManager) Quota(ctx context.Context) ([]QuotaResource, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.HasCapability(base.CapQuota) {
		return nil, errors.Wrap(base.ErrUnsupported, base.CapQuota)
	}

	raw, err := s.RawCommand("GETQUOTAROOT INBOX")
	if err != nil {
		return nil, &base.ProtocolError{Op: "getquotaroot", Mailbox: "INBOX", Err: err}
	}
	return parseQuota(raw), nil
}

func parseQuota(raw []byte) []QuotaResource {
	var out []QuotaResource
	for _, m := range quotaPattern.FindAllSubmatch(raw, -1) {
		for _, entry := range quotaEntryPattern.FindAllSubmatch(m[1], -1) {
			usage, err := strconv.ParseUint(string(entry[2]), 10, 64)
			if err != nil {
				continue
			}
			limit, err := strconv.ParseUint(string(entry[3]), 10, 64)
			if err != nil {
				continue
			}
			out = append(out, QuotaResource{
				Name:  strings.ToUpper(string(entry[1])),
				Usage: usage,
				Limit: limit,
			})
		}
	}
	return out
}
