package actions

import (
	"testing"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagOps(t *testing.T) {
	ops, err := FlagOps(false, true, false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{`-FLAGS (\Seen)`, `-FLAGS (\Flagged)`}, ops)
	assert.Equal(t, "mark as unread + unflag", DescribeFlagOps(ops))

	ops, err = FlagOps(true, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{`+FLAGS (\Seen)`}, ops)
}

func TestFlagOpsValidation(t *testing.T) {
	cases := [][4]bool{
		{false, false, false, false},
		{true, true, false, false},
		{false, false, true, true},
	}
	for _, c := range cases {
		_, err := FlagOps(c[0], c[1], c[2], c[3])
		require.Error(t, err)
		assert.True(t, base.IsValidation(err))
	}
}

func TestGroupByMailbox(t *testing.T) {
	rows := []base.MessageRow{
		{UID: 3},
		{UID: 1, Mailbox: "Archive"},
		{UID: 3, Mailbox: "Archive"},
		{UID: 3, Mailbox: "INBOX"},
		{UID: 7},
	}
	got := GroupByMailbox(rows, "INBOX")
	assert.Equal(t, map[string][]uint32{
		"INBOX":   {3, 7},
		"Archive": {1, 3},
	}, got)
}
