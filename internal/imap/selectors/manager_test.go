package selectors

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, fake *testutil.FakeSession) (*IMAPSelectorManager, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return New(fake, logger), &logs
}

func TestFetchRowsBuildsTruncatedRows(t *testing.T) {
	fake := testutil.NewFakeSession()
	longFrom := strings.Repeat("f", 45) + "@example.com"
	longSubject := strings.Repeat("s", 70)
	fake.AddMessage("INBOX", testutil.FakeMessage{
		UID:    7,
		Size:   2048,
		Flags:  []string{`\Seen`},
		Header: testutil.Header(longFrom, longSubject, "Mon, 03 Feb 2025 10:00:00 +0000"),
	})
	fake.AddMessage("INBOX", testutil.FakeMessage{
		UID:    8,
		Header: testutil.Header("Ann <ann@example.com>", "short", "Tue, 04 Feb 2025 09:30:00 -0500 (EST)"),
	})

	m, _ := newManager(t, fake)
	_, err := m.SelectMailbox(context.Background(), "INBOX")
	require.NoError(t, err)

	rows, err := m.FetchRows(context.Background(), "INBOX", []uint32{7, 8})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[base.MessageKey{Mailbox: "INBOX", UID: 7}]
	assert.Equal(t, 40, len(first.From))
	assert.True(t, strings.HasSuffix(first.From, "..."))
	assert.Equal(t, 60, len(first.Subject))
	assert.True(t, strings.HasSuffix(first.Subject, "..."))
	assert.Equal(t, "Mon, 03 Feb 2025 10:00:00", first.Date)
	assert.Equal(t, time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC).Unix(), first.Timestamp)
	assert.Equal(t, uint32(2048), first.Size)
	assert.Equal(t, "INBOX", first.Mailbox)

	second := rows[base.MessageKey{Mailbox: "INBOX", UID: 8}]
	assert.Equal(t, "Ann <ann@example.com>", second.From)
	assert.Equal(t, "short", second.Subject)
	assert.Equal(t, "Tue, 04 Feb 2025 09:30:00", second.Date)
	assert.Equal(t, time.Date(2025, 2, 4, 14, 30, 0, 0, time.UTC).Unix(), second.Timestamp)
}

func TestFetchRowsSkipsMissingUIDOnceWarned(t *testing.T) {
	fake := testutil.NewFakeSession()
	for i := 0; i < 3; i++ {
		fake.AddMessage("INBOX", testutil.FakeMessage{Header: testutil.Header("a@b", "s", "")})
	}
	fake.DropUID[2] = true
	fake.DropUID[3] = true

	m, logs := newManager(t, fake)
	_, err := m.SelectMailbox(context.Background(), "INBOX")
	require.NoError(t, err)

	rows, err := m.FetchRows(context.Background(), "", []uint32{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Contains(t, rows, base.MessageKey{UID: 1})
	assert.Equal(t, 1, strings.Count(logs.String(), "without a UID"))
}

func TestFetchRowsWrapsProtocolErrors(t *testing.T) {
	fake := testutil.NewFakeSession()
	fake.AddMessage("INBOX", testutil.FakeMessage{})
	fake.Fail["UID FETCH"] = errors.New("connection reset")

	m, _ := newManager(t, fake)
	_, err := m.FetchRows(context.Background(), "INBOX", []uint32{1})
	var perr *base.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "fetch", perr.Op)
}

func TestSelectMailboxSanitizesName(t *testing.T) {
	fake := testutil.NewFakeSession()
	fake.AddMailbox("INBOX")

	m, _ := newManager(t, fake)
	status, err := m.SelectMailbox(context.Background(), "IN\r\nBOX")
	require.NoError(t, err)
	assert.Equal(t, "INBOX", status.Name)
	assert.Equal(t, "SELECT INBOX", fake.Commands[0])

	_, err = m.SelectMailbox(context.Background(), "Nope")
	var perr *base.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Nope", perr.Mailbox)
}

func TestManagerRequiresSession(t *testing.T) {
	m := &IMAPSelectorManager{logger: slog.Default()}
	_, err := m.ListMailboxes(context.Background())
	assert.ErrorIs(t, err, base.ErrNotConnected)
}

func TestMailboxExists(t *testing.T) {
	fake := testutil.NewFakeSession()
	fake.AddMailbox("INBOX")
	fake.AddMailbox("Trash")

	m, _ := newManager(t, fake)
	ok, err := m.MailboxExists(context.Background(), "Trash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.MailboxExists(context.Background(), "inbox")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.MailboxExists(context.Background(), "Archive")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchRaw(t *testing.T) {
	fake := testutil.NewFakeSession()
	fake.AddMessage("INBOX", testutil.FakeMessage{Body: []byte("raw one")})
	fake.AddMessage("INBOX", testutil.FakeMessage{Body: []byte("raw two")})

	m, _ := newManager(t, fake)
	_, err := m.SelectMailbox(context.Background(), "INBOX")
	require.NoError(t, err)

	msgs, err := m.FetchRaw(context.Background(), []uint32{2, 1})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, uint32(1), msgs[0].UID)
	assert.Equal(t, "raw two", string(msgs[1].Body))
	assert.Contains(t, fake.Commands, "UID FETCH BODY 1:2")
}
