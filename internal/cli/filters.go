package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aaronromeo/mailsweep/internal/imap/searches"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	folder  string
	all     bool
	subject string
	from    string
	to      string
	cc      string
	since   string
	before  string
	larger  string
	limit   int
}

func (f *filterFlags) register(cmd *cobra.Command, withLimit bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.folder, "folder", "f", "", "Mailbox to search (default from config, INBOX)")
	fs.BoolVarP(&f.all, "all-folders", "a", false, "Search every mailbox except trash, spam and all-mail")
	fs.StringVarP(&f.subject, "subject", "s", "", "Subject contains")
	fs.StringVar(&f.from, "from", "", "From contains")
	fs.StringVar(&f.to, "to", "", "To contains")
	fs.StringVar(&f.cc, "cc", "", "Cc contains")
	fs.StringVar(&f.since, "since", "", "On or after date (YYYY-MM-DD or 7d, 2w, 3m, 1y)")
	fs.StringVar(&f.before, "before", "", "Before date (YYYY-MM-DD or 7d, 2w, 3m, 1y)")
	fs.StringVar(&f.larger, "larger", "", "Larger than size (e.g. 500K, 2M)")
	if withLimit {
		fs.IntVarP(&f.limit, "limit", "n", 0, "Maximum number of messages")
	}
	cmd.MarkFlagsMutuallyExclusive("folder", "all-folders")
}

// criteria builds and validates the search criteria before any connection
// is made.
func (f *filterFlags) criteria(defaultFolder string) (searches.Criteria, error) {
	c := searches.Criteria{
		Mailbox:      strings.TrimSpace(f.folder),
		AllMailboxes: f.all,
		Subject:      f.subject,
		From:         f.from,
		To:           f.to,
		Cc:           f.cc,
		Since:        f.since,
		Before:       f.before,
		Larger:       f.larger,
		Limit:        f.limit,
	}
	if c.Mailbox == "" {
		c.Mailbox = defaultFolder
	}
	if _, err := searches.BuildQuery(c, time.Now()); err != nil {
		return searches.Criteria{}, err
	}
	return c, nil
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes declines.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Wrap(err, "read confirmation")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
