package selectors

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
	"github.com/aaronromeo/mailsweep/internal/imap/uidset"
	"github.com/pkg/errors"
)

type ClientSelectors interface {
	SelectMailbox(ctx context.Context, mailbox string) (*base.MailboxStatus, error)
	ListMailboxes(ctx context.Context) ([]string, error)
	FetchRows(ctx context.Context, mailbox string, uids []uint32) (map[base.MessageKey]base.MessageRow, error)
	FetchRaw(ctx context.Context, uids []uint32) ([]base.RawMessage, error)
	MailboxStatus(ctx context.Context, mailboxes []string) ([]StatusRow, error)
	Quota(ctx context.Context) ([]QuotaResource, error)
}

type IMAPSelectorManager struct {
	provider func() base.Session
	logger   *slog.Logger
}

func New(provider base.SessionProvider, logger *slog.Logger) *IMAPSelectorManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &IMAPSelectorManager{provider: provider.IMAPSession, logger: logger}
}

func (c *IMAPSelectorManager) session() (base.Session, error) {
	if c.provider == nil {
		return nil, base.ErrNotConnected
	}
	s := c.provider()
	if s == nil {
		return nil, base.ErrNotConnected
	}
	return s, nil
}

// SelectMailbox selects a mailbox and returns its metadata.
func (c *IMAPSelectorManager) SelectMailbox(ctx context.Context, mailbox string) (*base.MailboxStatus, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mailbox = imaptext.Mailbox(mailbox)
	if mailbox == "" {
		return nil, errors.New("mailbox is required")
	}

	status, err := s.Select(mailbox)
	if err != nil {
		return nil, &base.ProtocolError{Op: "select", Mailbox: mailbox, Err: err}
	}
	return status, nil
}

// ListMailboxes returns every selectable mailbox name.
func (c *IMAPSelectorManager) ListMailboxes(ctx context.Context) ([]string, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.ListMailboxes("", "*")
	if err != nil {
		return nil, &base.ProtocolError{Op: "list", Err: err}
	}
	return names, nil
}

// MailboxExists reports whether LIST knows name.
func (c *IMAPSelectorManager) MailboxExists(ctx context.Context, name string) (bool, error) {
	names, err := c.ListMailboxes(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name || (strings.EqualFold(n, "INBOX") && strings.EqualFold(name, "INBOX")) {
			return true, nil
		}
	}
	return false, nil
}

// FetchRows fetches header summaries for uids in the selected mailbox. The
// mailbox argument labels the rows and keys; pass "" to leave rows unlabeled.
func (c *IMAPSelectorManager) FetchRows(ctx context.Context, mailbox string, uids []uint32) (map[base.MessageKey]base.MessageRow, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	rows := make(map[base.MessageKey]base.MessageRow, len(uids))
	if len(uids) == 0 {
		return rows, nil
	}

	missingUID := 0
	for _, chunk := range uidset.Encode(uids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := s.FetchDetails(chunk, HeaderFields)
		if err != nil {
			return nil, &base.ProtocolError{Op: "fetch", Mailbox: mailbox, Err: err}
		}
		for _, rec := range records {
			if rec.UID == 0 {
				missingUID++
				continue
			}
			row := buildRow(mailbox, rec)
			rows[row.Key()] = row
		}
	}

	if missingUID > 0 {
		c.logger.Warn("skipped FETCH responses without a UID", "mailbox", mailbox, "count", missingUID)
	}
	return rows, nil
}

// FetchRaw returns full message bodies for uids in the selected mailbox.
func (c *IMAPSelectorManager) FetchRaw(ctx context.Context, uids []uint32) ([]base.RawMessage, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	var out []base.RawMessage
	for _, chunk := range uidset.Encode(uids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgs, err := s.FetchRaw(chunk)
		if err != nil {
			return nil, &base.ProtocolError{Op: "fetch body", Err: err}
		}
		for _, msg := range msgs {
			if msg.UID == 0 {
				continue
			}
			out = append(out, msg)
		}
	}
	return out, nil
}
