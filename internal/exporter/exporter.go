// Package exporter writes fetched messages to disk as .eml files.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/pkg/utils"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Source selects mailboxes and fetches full message bodies.
type Source interface {
	SelectMailbox(ctx context.Context, mailbox string) (*base.MailboxStatus, error)
	FetchRaw(ctx context.Context, uids []uint32) ([]base.RawMessage, error)
}

type Summary struct {
	Exported int
	Skipped  int
}

type Exporter struct {
	files  utils.FileManager
	logger *slog.Logger
}

func New(files utils.FileManager, logger *slog.Logger) *Exporter {
	if files == nil {
		files = utils.OSFileManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{files: files, logger: logger}
}

// Export writes every message in uidsByMailbox under dir. With prefixMailbox
// the file names carry the mailbox so UIDs from different mailboxes cannot
// overwrite each other. Existing files are kept unless force is set.
func (e *Exporter) Export(ctx context.Context, src Source, dir string, uidsByMailbox map[string][]uint32, prefixMailbox, force bool) (Summary, error) {
	var sum Summary
	if err := e.files.MkdirAll(dir, 0o755); err != nil {
		return sum, errors.Wrapf(err, "create directory %q", dir)
	}

	mailboxes := make([]string, 0, len(uidsByMailbox))
	for mailbox := range uidsByMailbox {
		mailboxes = append(mailboxes, mailbox)
	}
	sort.Strings(mailboxes)

	for _, mailbox := range mailboxes {
		uids := uidsByMailbox[mailbox]
		if len(uids) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := src.SelectMailbox(ctx, mailbox); err != nil {
			return sum, err
		}
		msgs, err := src.FetchRaw(ctx, uids)
		if err != nil {
			return sum, err
		}

		for _, msg := range msgs {
			path := filepath.Join(dir, FileName(mailbox, msg.UID, prefixMailbox))
			exists, err := e.files.Exists(path)
			if err != nil {
				return sum, errors.Wrapf(err, "stat %q", path)
			}
			if exists && !force {
				sum.Skipped++
				continue
			}
			if err := e.files.WriteFile(path, msg.Body, 0o600); err != nil {
				return sum, errors.Wrapf(err, "write %q", path)
			}
			sum.Exported++
		}
		e.logger.Debug("mailbox exported", "mailbox", mailbox, "messages", len(msgs))
	}
	return sum, nil
}

// FileName returns "<uid>.eml", or "<mailbox>_<uid>.eml" with unsafe
// characters in the mailbox replaced by underscores. A replaced name also
// carries a short hash of the raw name, so "A/B" and "A_B" get different
// files.
func FileName(mailbox string, uid uint32, prefixMailbox bool) string {
	if !prefixMailbox {
		return fmt.Sprintf("%d.eml", uid)
	}
	safe := unsafeName.ReplaceAllString(mailbox, "_")
	if safe != mailbox {
		safe = fmt.Sprintf("%s-%08x", safe, uint32(xxhash.Sum64String(mailbox)))
	}
	return fmt.Sprintf("%s_%d.eml", safe, uid)
}
