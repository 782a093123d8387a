// Package display renders search results and mailbox statistics as tables.
package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/searches"
	"github.com/aaronromeo/mailsweep/internal/imap/selectors"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	totalColor   = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	dangerColor  = color.New(color.FgRed)
	unknownValue = "?"
)

// FormatSize renders a byte count as B, whole K, or M with one decimal.
func FormatSize(bytes uint64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.0fK", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// Messages prints one row per message. A Mailbox column is added when any
// row carries a mailbox label.
func Messages(w io.Writer, rows []base.MessageRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No messages found.")
		return err
	}

	labeled := false
	for _, r := range rows {
		if r.Mailbox != "" {
			labeled = true
			break
		}
	}

	header := []any{"UID"}
	if labeled {
		header = append(header, "Mailbox")
	}
	header = append(header, "From", "Subject", "Date", "Size")

	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, r := range rows {
		line := []string{strconv.FormatUint(uint64(r.UID), 10)}
		if labeled {
			line = append(line, r.Mailbox)
		}
		line = append(line, r.From, r.Subject, r.Date, FormatSize(uint64(r.Size)))
		if err := table.Append(line); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d message(s)\n", len(rows))
	return err
}

// Status prints per-mailbox counters with a total row. Mailboxes that
// failed are shown with "?".
func Status(w io.Writer, rows []selectors.StatusRow) error {
	table := tablewriter.NewWriter(w)
	table.Header("Mailbox", "Messages", "Unseen", "Recent")

	var messages, unseen, recent uint64
	for _, r := range rows {
		line := []string{r.Mailbox, unknownValue, unknownValue, unknownValue}
		if r.Err == nil {
			line = []string{r.Mailbox, count(r.Messages), count(r.Unseen), count(r.Recent)}
			messages += uint64(r.Messages)
			unseen += uint64(r.Unseen)
			recent += uint64(r.Recent)
		}
		if err := table.Append(line); err != nil {
			return err
		}
	}
	if err := table.Append([]string{
		totalColor.Sprint("Total"),
		totalColor.Sprint(humanize.Comma(int64(messages))),
		totalColor.Sprint(humanize.Comma(int64(unseen))),
		totalColor.Sprint(humanize.Comma(int64(recent))),
	}); err != nil {
		return err
	}
	return table.Render()
}

// Quota prints usage per resource. STORAGE is converted from KiB.
func Quota(w io.Writer, resources []selectors.QuotaResource) error {
	if len(resources) == 0 {
		_, err := fmt.Fprintln(w, "No quota information available.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Resource", "Used", "Limit", "Usage")
	for _, q := range resources {
		used, limit := humanize.Comma(int64(q.Usage)), humanize.Comma(int64(q.Limit))
		if q.Name == "STORAGE" {
			used, limit = humanize.IBytes(q.Usage*1024), humanize.IBytes(q.Limit*1024)
		}
		if err := table.Append([]string{q.Name, used, limit, usage(q.Percent())}); err != nil {
			return err
		}
	}
	return table.Render()
}

// Counts prints per-mailbox match counts and a total when more than one
// mailbox matched.
func Counts(w io.Writer, res *searches.CountResult) error {
	nonZero := 0
	for _, c := range res.Counts {
		if c.Count == 0 && len(res.Counts) > 1 {
			continue
		}
		nonZero++
		if _, err := fmt.Fprintf(w, "%s message(s) in %s\n", humanize.Comma(int64(c.Count)), c.Mailbox); err != nil {
			return err
		}
	}
	if nonZero == 0 {
		_, err := fmt.Fprintln(w, "0 message(s) match.")
		return err
	}
	if nonZero > 1 {
		_, err := fmt.Fprintf(w, "%s message(s) total\n", humanize.Comma(int64(res.Total())))
		return err
	}
	return nil
}

func usage(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= 90:
		return dangerColor.Sprint(s)
	case pct >= 75:
		return warnColor.Sprint(s)
	default:
		return s
	}
}

func count(n uint32) string {
	return humanize.Comma(int64(n))
}
