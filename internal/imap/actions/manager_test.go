package actions

import (
	"context"
	"testing"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(caps ...string) *testutil.FakeSession {
	fake := testutil.NewFakeSession(caps...)
	for i := 0; i < 5; i++ {
		fake.AddMessage("INBOX", testutil.FakeMessage{Header: testutil.Header("a@b", "s", "")})
	}
	fake.AddMailbox("Trash")
	fake.AddMailbox("Archive")
	return fake
}

func TestMoveUIDsUsesMoveWhenAdvertised(t *testing.T) {
	fake := seeded(base.CapMove)
	fake.Selected = "INBOX"

	m := New(fake, nil)
	require.NoError(t, m.MoveUIDs(context.Background(), "1:2,4", "Archive"))

	assert.Equal(t, []string{"UID MOVE 1:2,4 Archive"}, fake.Commands)
	assert.Equal(t, []uint32{3, 5}, fake.UIDs("INBOX"))
	assert.Len(t, fake.UIDs("Archive"), 3)
}

func TestMoveUIDsFallsBackToCopyStoreExpunge(t *testing.T) {
	fake := seeded()
	fake.Selected = "INBOX"

	m := New(fake, nil)
	require.NoError(t, m.MoveUIDs(context.Background(), "1:3", "Trash"))

	assert.Equal(t, []string{
		"UID COPY 1:3 Trash",
		`UID STORE 1:3 +FLAGS (\Deleted)`,
		"EXPUNGE",
	}, fake.Commands)
	assert.Equal(t, []uint32{4, 5}, fake.UIDs("INBOX"))
	assert.Len(t, fake.UIDs("Trash"), 3)
}

func TestMoveUIDsFallbackAbortsOnFirstFailure(t *testing.T) {
	cases := []struct {
		name        string
		failOn      string
		wantStep    string
		wantChanged bool
		wantCmds    int
		// wantTrash is the number of copies left in Trash.
		wantTrash int
	}{
		{name: "copy fails", failOn: "UID COPY", wantStep: "copy", wantChanged: false, wantCmds: 1, wantTrash: 0},
		{name: "store fails", failOn: "UID STORE", wantStep: "store", wantChanged: true, wantCmds: 2, wantTrash: 1},
		{name: "expunge fails", failOn: "EXPUNGE", wantStep: "expunge", wantChanged: true, wantCmds: 3, wantTrash: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := seeded()
			fake.Selected = "INBOX"
			fake.Fail[tc.failOn] = errors.New("NO server said no")

			err := New(fake, nil).MoveUIDs(context.Background(), "1", "Trash")
			var merr *MutationError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, tc.wantStep, merr.Step)
			assert.Equal(t, tc.wantChanged, merr.Changed)
			assert.Len(t, fake.Commands, tc.wantCmds)

			// The fallback is not atomic: a later failure leaves the copy
			// in the destination and the source message in place.
			assert.Len(t, fake.UIDs("Trash"), tc.wantTrash)
			assert.Contains(t, fake.UIDs("INBOX"), uint32(1))
		})
	}
}

func TestMutationErrorWithoutMailbox(t *testing.T) {
	fake := seeded()
	fake.Selected = "INBOX"
	fake.Fail["UID STORE"] = errors.New("NO server said no")

	err := New(fake, nil).MoveUIDs(context.Background(), "1", "Trash")
	require.Error(t, err)
	assert.Equal(t, "store failed (some messages were already modified): NO server said no", err.Error())
	assert.NotContains(t, err.Error(), `in ""`)
}

func TestMoveUIDsRequiresSession(t *testing.T) {
	m := &IMAPActionManager{}
	assert.ErrorIs(t, m.MoveUIDs(context.Background(), "1", "Trash"), base.ErrNotConnected)
}

func TestMoveByMailboxSelectsEachMailboxInOrder(t *testing.T) {
	fake := seeded(base.CapMove)
	fake.AddMessage("Archive", testutil.FakeMessage{UID: 9})

	m := New(fake, nil)
	n, err := m.MoveByMailbox(context.Background(), map[string][]uint32{
		"INBOX":   {5, 1, 2},
		"Archive": {9},
	}, "Trash")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{
		"SELECT Archive",
		"UID MOVE 9 Trash",
		"SELECT INBOX",
		"UID MOVE 1:2,5 Trash",
	}, fake.Commands)
}

func TestMoveByMailboxReportsPartialProgress(t *testing.T) {
	fake := seeded(base.CapMove)
	fake.AddMessage("Archive", testutil.FakeMessage{UID: 9})
	fake.Fail["UID MOVE INBOX"] = errors.New("mailbox locked")

	n, err := New(fake, nil).MoveByMailbox(context.Background(), map[string][]uint32{
		"INBOX":   {1},
		"Archive": {9},
	}, "Trash")
	assert.Equal(t, 1, n)

	var merr *MutationError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "INBOX", merr.Mailbox)
	assert.Equal(t, 1, merr.Done)
	assert.True(t, merr.Changed)
	assert.Contains(t, merr.Error(), "already modified")
}

func TestMoveByMailboxNothingChangedOnFirstFailure(t *testing.T) {
	fake := seeded()
	fake.Fail["SELECT INBOX"] = errors.New("gone")

	_, err := New(fake, nil).MoveByMailbox(context.Background(), map[string][]uint32{"INBOX": {1}}, "Trash")
	var merr *MutationError
	require.True(t, errors.As(err, &merr))
	assert.False(t, merr.Changed)
	assert.Equal(t, "select", merr.Step)
	assert.Contains(t, merr.Error(), "no changes were made")
}

func TestMoveByMailboxSkipsDestinationMailbox(t *testing.T) {
	fake := seeded(base.CapMove)
	archived := fake.AddMessage("Archive", testutil.FakeMessage{UID: 7})

	n, err := New(fake, nil).MoveByMailbox(context.Background(), map[string][]uint32{
		"INBOX":   {1},
		"Archive": {archived},
	}, "Archive")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{"SELECT INBOX", "UID MOVE 1 Archive"}, fake.Commands)
	assert.Equal(t, []uint32{2, 3, 4, 5}, fake.UIDs("INBOX"))
	assert.Len(t, fake.UIDs("Archive"), 2)
	assert.Contains(t, fake.UIDs("Archive"), archived)
}

func TestMoveByMailboxOnlyDestinationHitsIsNoop(t *testing.T) {
	fake := seeded()
	n, err := New(fake, nil).MoveByMailbox(context.Background(), map[string][]uint32{"Trash": {1}}, "Trash")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, fake.Commands)
}

func TestMoveByMailboxChunksLargeSets(t *testing.T) {
	fake := testutil.NewFakeSession(base.CapMove)
	fake.AddMailbox("Trash")
	var uids []uint32
	for i := uint32(1); i <= 3000; i++ {
		uid := i * 2
		fake.AddMessage("INBOX", testutil.FakeMessage{UID: uid})
		uids = append(uids, uid)
	}

	n, err := New(fake, nil).MoveByMailbox(context.Background(), map[string][]uint32{"INBOX": uids}, "Trash")
	require.NoError(t, err)
	assert.Equal(t, 3000, n)

	moves := 0
	for _, cmd := range fake.Commands {
		if len(cmd) > 8 && cmd[:8] == "UID MOVE" {
			moves++
			assert.LessOrEqual(t, len(cmd), len("UID MOVE  Trash")+4000)
		}
	}
	assert.Greater(t, moves, 1)
	assert.Empty(t, fake.UIDs("INBOX"))
}

func TestDeleteByMailboxMovesToTrash(t *testing.T) {
	fake := seeded()
	n, err := New(fake, nil).DeleteByMailbox(context.Background(), map[string][]uint32{"INBOX": {2}}, "Trash")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, fake.Commands, "UID COPY 2 Trash")
	assert.Len(t, fake.UIDs("Trash"), 1)
}

func TestStoreFlagsByMailbox(t *testing.T) {
	fake := seeded()
	ops, err := FlagOps(true, false, true, false)
	require.NoError(t, err)

	n, err := New(fake, nil).StoreFlagsByMailbox(context.Background(), map[string][]uint32{"INBOX": {1, 2}}, ops)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"SELECT INBOX",
		`UID STORE 1:2 +FLAGS (\Seen)`,
		`UID STORE 1:2 +FLAGS (\Flagged)`,
	}, fake.Commands)

	msg, _ := fake.Message("INBOX", 1)
	assert.ElementsMatch(t, []string{`\Seen`, `\Flagged`}, msg.Flags)
}

func TestStoreFlagsSecondOpFailureIsPartial(t *testing.T) {
	fake := seeded()
	calls := 0
	ops := []string{seenAdd, flaggedAdd}

	m := New(&failingStore{FakeSession: fake, failAt: 2, calls: &calls}, nil)
	_, err := m.StoreFlagsByMailbox(context.Background(), map[string][]uint32{"INBOX": {1}}, ops)
	var merr *MutationError
	require.True(t, errors.As(err, &merr))
	assert.True(t, merr.Changed)
	assert.Equal(t, 0, merr.Done)
}

type failingStore struct {
	*testutil.FakeSession
	failAt int
	calls  *int
}

func (f *failingStore) IMAPSession() base.Session { return f }

func (f *failingStore) UIDStore(uidSet, flagExpr string) error {
	*f.calls++
	if *f.calls == f.failAt {
		return errors.New("store refused")
	}
	return f.FakeSession.UIDStore(uidSet, flagExpr)
}

func TestEnsureMailbox(t *testing.T) {
	fake := seeded()
	m := New(fake, nil)

	require.NoError(t, m.EnsureMailbox(context.Background(), "Trash"))
	require.NoError(t, m.EnsureMailbox(context.Background(), "inbox"))

	err := m.EnsureMailbox(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	fake.Fail["LIST"] = errors.New("down")
	var perr *base.ProtocolError
	require.True(t, errors.As(m.EnsureMailbox(context.Background(), "Trash"), &perr))
}
