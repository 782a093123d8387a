package actions

import (
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
)

const (
	seenAdd       = `+FLAGS (\Seen)`
	seenRemove    = `-FLAGS (\Seen)`
	flaggedAdd    = `+FLAGS (\Flagged)`
	flaggedRemove = `-FLAGS (\Flagged)`
)

// FlagOps validates a mark request and returns the STORE expressions for it.
func FlagOps(read, unread, flagged, unflagged bool) ([]string, error) {
	if !read && !unread && !flagged && !unflagged {
		return nil, &base.ValidationError{Field: "flags", Value: "", Hint: "specify at least one of --read, --unread, --flagged, --unflagged"}
	}
	if read && unread {
		return nil, &base.ValidationError{Field: "flags", Value: "--read --unread", Hint: "cannot use both"}
	}
	if flagged && unflagged {
		return nil, &base.ValidationError{Field: "flags", Value: "--flagged --unflagged", Hint: "cannot use both"}
	}

	var ops []string
	if read {
		ops = append(ops, seenAdd)
	}
	if unread {
		ops = append(ops, seenRemove)
	}
	if flagged {
		ops = append(ops, flaggedAdd)
	}
	if unflagged {
		ops = append(ops, flaggedRemove)
	}
	return ops, nil
}

// DescribeFlagOps renders ops for confirmation prompts, e.g.
// "mark as read + flag".
func DescribeFlagOps(ops []string) string {
	var parts []string
	for _, op := range ops {
		switch op {
		case seenAdd:
			parts = append(parts, "mark as read")
		case seenRemove:
			parts = append(parts, "mark as unread")
		case flaggedAdd:
			parts = append(parts, "flag")
		case flaggedRemove:
			parts = append(parts, "unflag")
		default:
			parts = append(parts, op)
		}
	}
	return strings.Join(parts, " + ")
}

// GroupByMailbox buckets row UIDs by owning mailbox. Rows without a mailbox
// label belong to fallback.
func GroupByMailbox(rows []base.MessageRow, fallback string) map[string][]uint32 {
	out := make(map[string][]uint32)
	seen := make(map[base.MessageKey]struct{}, len(rows))
	for _, row := range rows {
		mailbox := row.Mailbox
		if mailbox == "" {
			mailbox = fallback
		}
		key := base.MessageKey{Mailbox: mailbox, UID: row.UID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out[mailbox] = append(out[mailbox], row.UID)
	}
	return out
}
