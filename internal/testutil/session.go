// Package testutil provides in-memory stand-ins for the IMAP session.
package testutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/uidset"
)

// FakeMessage is a stored message in a FakeSession mailbox.
type FakeMessage struct {
	UID    uint32
	Header string
	Size   uint32
	Flags  []string
	Body   []byte
}

// FakeSession implements base.Session against in-memory mailboxes. It records
// every command and lets tests inject failures and custom responses.
type FakeSession struct {
	Caps      map[string]bool
	Mailboxes map[string][]FakeMessage
	Selected  string

	// Commands logs operations such as "SELECT INBOX" or "UID MOVE 1:3 Trash".
	Commands []string

	// Fail maps an operation ("UID COPY") or an operation plus mailbox
	// ("SELECT Spam") to the error it returns.
	Fail map[string]error

	// SearchFunc overrides UID SEARCH. The default returns every UID in the
	// selected mailbox.
	SearchFunc func(mailbox, query string) ([]uint32, error)
	// RawFunc answers RawCommand. The default rejects the command.
	RawFunc func(mailbox, command string) ([]byte, error)
	// DropUID lists UIDs whose FETCH responses come back without a UID.
	DropUID map[uint32]bool
}

func NewFakeSession(caps ...string) *FakeSession {
	f := &FakeSession{
		Caps:      map[string]bool{},
		Mailboxes: map[string][]FakeMessage{},
		Fail:      map[string]error{},
		DropUID:   map[uint32]bool{},
	}
	for _, c := range caps {
		f.Caps[strings.ToUpper(c)] = true
	}
	return f
}

// IMAPSession lets the fake act as its own provider.
func (f *FakeSession) IMAPSession() base.Session {
	return f
}

// AddMailbox creates an empty mailbox.
func (f *FakeSession) AddMailbox(name string) {
	if _, ok := f.Mailboxes[name]; !ok {
		f.Mailboxes[name] = nil
	}
}

// AddMessage appends msg to mailbox, assigning the next UID when msg.UID is 0.
func (f *FakeSession) AddMessage(mailbox string, msg FakeMessage) uint32 {
	if msg.UID == 0 {
		msg.UID = f.nextUID(mailbox)
	}
	f.Mailboxes[mailbox] = append(f.Mailboxes[mailbox], msg)
	sort.Slice(f.Mailboxes[mailbox], func(i, j int) bool {
		return f.Mailboxes[mailbox][i].UID < f.Mailboxes[mailbox][j].UID
	})
	return msg.UID
}

// Header renders a minimal header block.
func Header(from, subject, date string) string {
	return fmt.Sprintf("From: %s\r\nSubject: %s\r\nDate: %s\r\n\r\n", from, subject, date)
}

// UIDs returns the UIDs currently stored in mailbox.
func (f *FakeSession) UIDs(mailbox string) []uint32 {
	var out []uint32
	for _, m := range f.Mailboxes[mailbox] {
		out = append(out, m.UID)
	}
	return out
}

// Message returns the stored message or false.
func (f *FakeSession) Message(mailbox string, uid uint32) (FakeMessage, bool) {
	for _, m := range f.Mailboxes[mailbox] {
		if m.UID == uid {
			return m, true
		}
	}
	return FakeMessage{}, false
}

func (f *FakeSession) HasCapability(name string) bool {
	return f.Caps[strings.ToUpper(name)]
}

func (f *FakeSession) Select(mailbox string) (*base.MailboxStatus, error) {
	f.log("SELECT " + mailbox)
	if err := f.fail("SELECT", mailbox); err != nil {
		return nil, err
	}
	msgs, ok := f.Mailboxes[mailbox]
	if !ok {
		return nil, &base.RejectedError{Status: "NO", Info: "mailbox does not exist"}
	}
	f.Selected = mailbox
	return &base.MailboxStatus{
		Name:     mailbox,
		Messages: uint32(len(msgs)),
		UIDNext:  f.nextUID(mailbox),
	}, nil
}

func (f *FakeSession) UIDSearch(query string) ([]uint32, error) {
	f.log("UID SEARCH " + query)
	if err := f.fail("UID SEARCH", f.Selected); err != nil {
		return nil, err
	}
	if f.SearchFunc != nil {
		return f.SearchFunc(f.Selected, query)
	}
	return f.UIDs(f.Selected), nil
}

func (f *FakeSession) RawCommand(command string) ([]byte, error) {
	f.log(command)
	op := strings.SplitN(command, " ", 3)
	name := op[0]
	if name == "UID" && len(op) > 1 {
		name += " " + op[1]
	}
	if err := f.fail(name, f.Selected); err != nil {
		return nil, err
	}
	if f.RawFunc != nil {
		return f.RawFunc(f.Selected, command)
	}
	return nil, &base.RejectedError{Status: "BAD", Info: "unknown command"}
}

func (f *FakeSession) FetchDetails(uidSet string, headerFields []string) ([]base.DetailRecord, error) {
	f.log("UID FETCH " + uidSet)
	if err := f.fail("UID FETCH", f.Selected); err != nil {
		return nil, err
	}
	uids, err := uidset.Decode(uidSet)
	if err != nil {
		return nil, err
	}

	var out []base.DetailRecord
	for _, uid := range uids {
		msg, ok := f.Message(f.Selected, uid)
		if !ok {
			continue
		}
		rec := base.DetailRecord{UID: msg.UID, Flags: msg.Flags, Size: msg.Size, Header: []byte(msg.Header)}
		if f.DropUID[uid] {
			rec.UID = 0
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *FakeSession) FetchRaw(uidSet string) ([]base.RawMessage, error) {
	f.log("UID FETCH BODY " + uidSet)
	if err := f.fail("UID FETCH BODY", f.Selected); err != nil {
		return nil, err
	}
	uids, err := uidset.Decode(uidSet)
	if err != nil {
		return nil, err
	}

	var out []base.RawMessage
	for _, uid := range uids {
		msg, ok := f.Message(f.Selected, uid)
		if !ok {
			continue
		}
		body := msg.Body
		if body == nil {
			body = []byte(msg.Header)
		}
		out = append(out, base.RawMessage{UID: uid, Body: body})
	}
	return out, nil
}

func (f *FakeSession) UIDMove(uidSet, destination string) error {
	f.log("UID MOVE " + uidSet + " " + destination)
	if err := f.fail("UID MOVE", f.Selected); err != nil {
		return err
	}
	uids, err := uidset.Decode(uidSet)
	if err != nil {
		return err
	}
	if err := f.copy(uids, destination); err != nil {
		return err
	}
	f.remove(f.Selected, func(m FakeMessage) bool { return contains(uids, m.UID) })
	return nil
}

func (f *FakeSession) UIDCopy(uidSet, destination string) error {
	f.log("UID COPY " + uidSet + " " + destination)
	if err := f.fail("UID COPY", f.Selected); err != nil {
		return err
	}
	uids, err := uidset.Decode(uidSet)
	if err != nil {
		return err
	}
	return f.copy(uids, destination)
}

func (f *FakeSession) UIDStore(uidSet, flagExpr string) error {
	f.log("UID STORE " + uidSet + " " + flagExpr)
	if err := f.fail("UID STORE", f.Selected); err != nil {
		return err
	}
	uids, err := uidset.Decode(uidSet)
	if err != nil {
		return err
	}

	op, list, ok := strings.Cut(flagExpr, " ")
	if !ok {
		return fmt.Errorf("bad flag expression %q", flagExpr)
	}
	flags := strings.Fields(strings.Trim(list, "()"))

	msgs := f.Mailboxes[f.Selected]
	for i := range msgs {
		if !contains(uids, msgs[i].UID) {
			continue
		}
		switch {
		case strings.HasPrefix(op, "+"):
			for _, flag := range flags {
				if !hasFlag(msgs[i].Flags, flag) {
					msgs[i].Flags = append(msgs[i].Flags, flag)
				}
			}
		case strings.HasPrefix(op, "-"):
			var kept []string
			for _, existing := range msgs[i].Flags {
				if !hasFlag(flags, existing) {
					kept = append(kept, existing)
				}
			}
			msgs[i].Flags = kept
		default:
			msgs[i].Flags = append([]string(nil), flags...)
		}
	}
	return nil
}

func (f *FakeSession) Expunge() error {
	f.log("EXPUNGE")
	if err := f.fail("EXPUNGE", f.Selected); err != nil {
		return err
	}
	f.remove(f.Selected, func(m FakeMessage) bool { return hasFlag(m.Flags, `\Deleted`) })
	return nil
}

func (f *FakeSession) ListMailboxes(reference, pattern string) ([]string, error) {
	f.log("LIST")
	if err := f.fail("LIST", ""); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Mailboxes))
	for name := range f.Mailboxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeSession) log(cmd string) {
	f.Commands = append(f.Commands, cmd)
}

func (f *FakeSession) fail(op, mailbox string) error {
	if err, ok := f.Fail[op+" "+mailbox]; ok {
		return err
	}
	return f.Fail[op]
}

func (f *FakeSession) nextUID(mailbox string) uint32 {
	var highest uint32
	for _, m := range f.Mailboxes[mailbox] {
		if m.UID > highest {
			highest = m.UID
		}
	}
	return highest + 1
}

func (f *FakeSession) copy(uids []uint32, destination string) error {
	if _, ok := f.Mailboxes[destination]; !ok {
		return &base.RejectedError{Status: "NO", Info: "[TRYCREATE] no such mailbox"}
	}
	for _, uid := range uids {
		msg, ok := f.Message(f.Selected, uid)
		if !ok {
			continue
		}
		msg.UID = 0
		msg.Flags = append([]string(nil), msg.Flags...)
		f.AddMessage(destination, msg)
	}
	return nil
}

func (f *FakeSession) remove(mailbox string, drop func(FakeMessage) bool) {
	var kept []FakeMessage
	for _, m := range f.Mailboxes[mailbox] {
		if !drop(m) {
			kept = append(kept, m)
		}
	}
	f.Mailboxes[mailbox] = kept
}

func contains(uids []uint32, uid uint32) bool {
	for _, u := range uids {
		if u == uid {
			return true
		}
	}
	return false
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
