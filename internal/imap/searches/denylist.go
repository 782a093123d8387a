package searches

import "strings"

var skippedMailboxes = map[string]struct{}{
	"trash":            {},
	"spam":             {},
	"junk":             {},
	"deleted items":    {},
	"deleted messages": {},
	"[gmail]/spam":     {},
	"[gmail]/trash":    {},
}

// SkipMailbox reports whether an all-mailbox search ignores name. Trash and
// spam folders hold nothing worth acting on, and "All Mail" style folders
// would duplicate every hit.
func SkipMailbox(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if _, ok := skippedMailboxes[lower]; ok {
		return true
	}
	return strings.Contains(lower, "all mail")
}
