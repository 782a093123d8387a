// Package imaptext builds protocol-safe strings from user input.
package imaptext

import (
	"strings"
	"unicode"
)

// Sanitize drops control characters so user text cannot break the command
// line or smuggle a second command.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Quote produces an IMAP quoted string from user text.
func Quote(s string) string {
	s = Sanitize(s)
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Mailbox cleans a mailbox name taken from flags or config.
func Mailbox(name string) string {
	return strings.TrimSpace(Sanitize(name))
}
