package sessionmanager

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/responses"
	"github.com/pkg/errors"
)

var _ base.Session = (*IMAPConnector)(nil)

func (c *IMAPConnector) conn() (IMAPClient, error) {
	if c.client == nil {
		return nil, base.ErrNotConnected
	}
	return c.client, nil
}

func (c *IMAPConnector) HasCapability(name string) bool {
	return c.caps[strings.ToUpper(name)]
}

func (c *IMAPConnector) Select(mailbox string) (*base.MailboxStatus, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}
	status, err := cl.Select(mailbox, false)
	if err != nil {
		return nil, err
	}
	return &base.MailboxStatus{
		Name:        status.Name,
		Messages:    status.Messages,
		Recent:      status.Recent,
		Unseen:      status.Unseen,
		UIDNext:     status.UidNext,
		UIDValidity: status.UidValidity,
	}, nil
}

// UIDSearch sends the query text verbatim. CHARSET is only declared when the
// query carries non-ASCII text.
func (c *IMAPConnector) UIDSearch(query string) ([]uint32, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}
	args := "SEARCH " + query
	if !isASCII(query) {
		args = "SEARCH CHARSET UTF-8 " + query
	}
	cmd := &imap.Command{Name: "UID", Arguments: []interface{}{imap.RawString(args)}}

	res := &responses.Search{}
	status, err := cl.Execute(cmd, res)
	if err != nil {
		return nil, err
	}
	if err := rejected(status); err != nil {
		return nil, err
	}
	return res.Ids, nil
}

// RawCommand sends a free-form command and returns the untagged responses it
// produced, one line each, followed by the tagged status line.
func (c *IMAPConnector) RawCommand(command string) ([]byte, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}
	name, rest, _ := strings.Cut(strings.TrimSpace(command), " ")
	cmd := &imap.Command{Name: name}
	if rest != "" {
		cmd.Arguments = []interface{}{imap.RawString(rest)}
	}

	collector := &rawCollector{}
	status, err := cl.Execute(cmd, collector)
	if err != nil {
		return nil, err
	}
	collector.tagged(status)
	return collector.Bytes(), rejected(status)
}

func (c *IMAPConnector) FetchDetails(uidSet string, headerFields []string) ([]base.DetailRecord, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}
	seqSet, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return nil, errors.Wrapf(err, "parse uid set %q", uidSet)
	}

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier, Fields: headerFields},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchFlags, imap.FetchRFC822Size, section.FetchItem()}

	var records []base.DetailRecord
	err = drainFetch(func(ch chan *imap.Message) error {
		return cl.UidFetch(seqSet, items, ch)
	}, func(msg *imap.Message) {
		rec := base.DetailRecord{UID: msg.Uid, Flags: msg.Flags, Size: msg.Size}
		if body := msg.GetBody(section); body != nil {
			rec.Header, _ = io.ReadAll(body)
		}
		records = append(records, rec)
	})
	return records, err
}

func (c *IMAPConnector) FetchRaw(uidSet string) ([]base.RawMessage, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}
	seqSet, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return nil, errors.Wrapf(err, "parse uid set %q", uidSet)
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	var out []base.RawMessage
	var readErr error
	err = drainFetch(func(ch chan *imap.Message) error {
		return cl.UidFetch(seqSet, items, ch)
	}, func(msg *imap.Message) {
		body := msg.GetBody(section)
		if body == nil {
			return
		}
		raw, err := io.ReadAll(body)
		if err != nil && readErr == nil {
			readErr = errors.Wrapf(err, "read message %d", msg.Uid)
		}
		out = append(out, base.RawMessage{UID: msg.Uid, Body: raw})
	})
	if err != nil {
		return out, err
	}
	return out, readErr
}

func (c *IMAPConnector) UIDMove(uidSet, destination string) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	seqSet, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return errors.Wrapf(err, "parse uid set %q", uidSet)
	}
	return cl.UidMove(seqSet, destination)
}

func (c *IMAPConnector) UIDCopy(uidSet, destination string) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	seqSet, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return errors.Wrapf(err, "parse uid set %q", uidSet)
	}
	return cl.UidCopy(seqSet, destination)
}

// UIDStore accepts expressions like `+FLAGS (\Seen)`.
func (c *IMAPConnector) UIDStore(uidSet, flagExpr string) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	seqSet, err := imap.ParseSeqSet(uidSet)
	if err != nil {
		return errors.Wrapf(err, "parse uid set %q", uidSet)
	}
	item, flags, err := parseFlagExpr(flagExpr)
	if err != nil {
		return err
	}
	return cl.UidStore(seqSet, item, flags, nil)
}

func (c *IMAPConnector) Expunge() error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	return cl.Expunge(nil)
}

// ListMailboxes returns selectable mailbox names.
func (c *IMAPConnector) ListMailboxes(reference, pattern string) ([]string, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}

	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- cl.List(reference, pattern, mailboxes)
	}()

	var names []string
	for m := range mailboxes {
		if hasAttr(m.Attributes, imap.NoSelectAttr) {
			continue
		}
		names = append(names, m.Name)
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return names, nil
}

// drainFetch runs fetch in the background and hands each message to fn.
func drainFetch(fetch func(chan *imap.Message) error, fn func(*imap.Message)) error {
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- fetch(messages)
	}()
	for msg := range messages {
		fn(msg)
	}
	return <-done
}

func parseFlagExpr(expr string) (imap.StoreItem, []interface{}, error) {
	item, list, ok := strings.Cut(strings.TrimSpace(expr), " ")
	if !ok {
		return "", nil, errors.Errorf("malformed flag expression %q", expr)
	}

	var op imap.FlagsOp
	switch strings.ToUpper(item) {
	case "+FLAGS":
		op = imap.AddFlags
	case "-FLAGS":
		op = imap.RemoveFlags
	case "FLAGS":
		op = imap.SetFlags
	default:
		return "", nil, errors.Errorf("unsupported store item %q", item)
	}

	list = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(list), "("), ")")
	var flags []interface{}
	for _, f := range strings.Fields(list) {
		flags = append(flags, f)
	}
	if len(flags) == 0 {
		return "", nil, errors.Errorf("no flags in %q", expr)
	}
	return imap.FormatFlagsOp(op, true), flags, nil
}

func rejected(status *imap.StatusResp) error {
	if status == nil || status.Type == imap.StatusRespOk {
		return nil
	}
	return &base.RejectedError{Status: string(status.Type), Info: status.Info}
}

func hasAttr(attrs []string, want string) bool {
	for _, a := range attrs {
		if strings.EqualFold(a, want) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
