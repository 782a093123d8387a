package searches

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aaronromeo/mailsweep/internal/imap/searches"

type ServerSearcher interface {
	Search(ctx context.Context, criteria Criteria) (*Result, error)
	SearchMailbox(ctx context.Context, mailbox, query string, labelRows bool, limit int) ([]base.MessageRow, error)
	Count(ctx context.Context, criteria Criteria) (*CountResult, error)
}

// RowFetcher selects mailboxes and turns UIDs into rows.
type RowFetcher interface {
	SelectMailbox(ctx context.Context, mailbox string) (*base.MailboxStatus, error)
	ListMailboxes(ctx context.Context) ([]string, error)
	FetchRows(ctx context.Context, mailbox string, uids []uint32) (map[base.MessageKey]base.MessageRow, error)
}

// Result holds merged rows plus the mailboxes that were skipped on error.
type Result struct {
	Query    string
	Rows     []base.MessageRow
	Failures []*base.PartialFailure
}

type MailboxCount struct {
	Mailbox string
	Count   int
}

type CountResult struct {
	Query    string
	Counts   []MailboxCount
	Failures []*base.PartialFailure
}

func (r *CountResult) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c.Count
	}
	return total
}

type Option func(*IMAPSearchManager)

// WithClock replaces time.Now for relative date filters.
func WithClock(now func() time.Time) Option {
	return func(m *IMAPSearchManager) {
		m.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *IMAPSearchManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type IMAPSearchManager struct {
	provider func() base.Session
	rows     RowFetcher
	logger   *slog.Logger
	now      func() time.Time

	tracer  trace.Tracer
	matched metric.Int64Counter
}

func New(provider base.SessionProvider, rows RowFetcher, opts ...Option) *IMAPSearchManager {
	m := &IMAPSearchManager{
		provider: provider.IMAPSession,
		rows:     rows,
		logger:   slog.Default(),
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(m)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"mailsweep.search.matches",
		metric.WithDescription("Messages matched by searches"),
	)
	if err != nil {
		m.logger.Debug("search metrics disabled", "error", err)
	}
	m.matched = counter
	return m
}

func (m *IMAPSearchManager) session() (base.Session, error) {
	if m.provider == nil {
		return nil, base.ErrNotConnected
	}
	s := m.provider()
	if s == nil {
		return nil, base.ErrNotConnected
	}
	return s, nil
}

// Search compiles the criteria and runs them against one mailbox or, with
// AllMailboxes, against every mailbox that is not denylisted.
func (m *IMAPSearchManager) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	query, err := BuildQuery(criteria, m.now())
	if err != nil {
		return nil, err
	}

	if !criteria.AllMailboxes {
		rows, err := m.SearchMailbox(ctx, criteria.Mailbox, query, false, criteria.Limit)
		if err != nil {
			return nil, err
		}
		return &Result{Query: query, Rows: rows}, nil
	}

	return m.searchAll(ctx, query, criteria.Limit)
}

func (m *IMAPSearchManager) searchAll(ctx context.Context, query string, limit int) (*Result, error) {
	mailboxes, err := m.targets(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Query: query}
	for _, mailbox := range mailboxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := m.SearchMailbox(ctx, mailbox, query, true, 0)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			m.logger.Warn("skipping mailbox", "mailbox", mailbox, "error", err)
			result.Failures = append(result.Failures, &base.PartialFailure{Mailbox: mailbox, Err: err})
			continue
		}
		result.Rows = append(result.Rows, rows...)
	}

	sortNewestFirst(result.Rows)
	result.Rows = truncate(result.Rows, limit)
	return result, nil
}

// SearchMailbox selects mailbox, finds UIDs matching query, orders them
// newest first and returns at most limit rows.
func (m *IMAPSearchManager) SearchMailbox(ctx context.Context, mailbox, query string, labelRows bool, limit int) ([]base.MessageRow, error) {
	s, err := m.session()
	if err != nil {
		return nil, err
	}
	mailbox = imaptext.Mailbox(mailbox)

	ctx, span := m.tracer.Start(ctx, "searches.SearchMailbox", trace.WithAttributes(
		attribute.String("imap.mailbox", mailbox),
	))
	defer span.End()

	if _, err := m.rows.SelectMailbox(ctx, mailbox); err != nil {
		return nil, err
	}

	uids, outcome, err := sortUIDs(s, query)
	if err != nil {
		return nil, &base.ProtocolError{Op: "sort", Mailbox: mailbox, Err: err}
	}
	if outcome == SortUnsupported {
		if s.HasCapability(base.CapSort) {
			m.logger.Warn("server-side sort rejected, sorting locally", "mailbox", mailbox)
		}
		uids, err = s.UIDSearch(query)
		if err != nil {
			return nil, &base.ProtocolError{Op: "search", Mailbox: mailbox, Err: err}
		}
	}
	span.SetAttributes(
		attribute.String("imap.sort", outcome.String()),
		attribute.Int("imap.matches", len(uids)),
	)
	m.countMatches(ctx, mailbox, len(uids))

	if len(uids) == 0 {
		return []base.MessageRow{}, nil
	}
	if outcome == SortApplied && limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	label := ""
	if labelRows {
		label = mailbox
	}
	details, err := m.rows.FetchRows(ctx, label, uids)
	if err != nil {
		return nil, err
	}

	if outcome == SortApplied {
		rows := make([]base.MessageRow, 0, len(uids))
		for _, uid := range uids {
			if row, ok := details[base.MessageKey{Mailbox: label, UID: uid}]; ok {
				rows = append(rows, row)
			}
		}
		return rows, nil
	}

	rows := make([]base.MessageRow, 0, len(details))
	for _, row := range details {
		rows = append(rows, row)
	}
	sortNewestFirst(rows)
	return truncate(rows, limit), nil
}

// Count reports the number of matches per mailbox without fetching headers.
func (m *IMAPSearchManager) Count(ctx context.Context, criteria Criteria) (*CountResult, error) {
	s, err := m.session()
	if err != nil {
		return nil, err
	}
	query, err := BuildQuery(criteria, m.now())
	if err != nil {
		return nil, err
	}

	mailboxes := []string{imaptext.Mailbox(criteria.Mailbox)}
	if criteria.AllMailboxes {
		if mailboxes, err = m.targets(ctx); err != nil {
			return nil, err
		}
	}

	result := &CountResult{Query: query}
	for _, mailbox := range mailboxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := m.countMailbox(ctx, s, mailbox, query)
		if err != nil {
			if !criteria.AllMailboxes {
				return nil, err
			}
			m.logger.Warn("skipping mailbox", "mailbox", mailbox, "error", err)
			result.Failures = append(result.Failures, &base.PartialFailure{Mailbox: mailbox, Err: err})
			continue
		}
		result.Counts = append(result.Counts, MailboxCount{Mailbox: mailbox, Count: n})
	}
	return result, nil
}

func (m *IMAPSearchManager) countMailbox(ctx context.Context, s base.Session, mailbox, query string) (int, error) {
	if _, err := m.rows.SelectMailbox(ctx, mailbox); err != nil {
		return 0, err
	}
	uids, err := s.UIDSearch(query)
	if err != nil {
		return 0, &base.ProtocolError{Op: "search", Mailbox: mailbox, Err: err}
	}
	return len(uids), nil
}

// targets lists mailboxes eligible for an all-mailbox operation.
func (m *IMAPSearchManager) targets(ctx context.Context) ([]string, error) {
	names, err := m.rows.ListMailboxes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list mailboxes")
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if SkipMailbox(name) {
			m.logger.Debug("mailbox denylisted", "mailbox", name)
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func (m *IMAPSearchManager) countMatches(ctx context.Context, mailbox string, n int) {
	if m.matched == nil || n == 0 {
		return
	}
	m.matched.Add(ctx, int64(n), metric.WithAttributes(attribute.String("imap.mailbox", mailbox)))
}

// sortNewestFirst orders rows by timestamp descending. Ties keep a stable,
// deterministic order by mailbox then UID descending.
func sortNewestFirst(rows []base.MessageRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Timestamp != rows[j].Timestamp {
			return rows[i].Timestamp > rows[j].Timestamp
		}
		if rows[i].Mailbox != rows[j].Mailbox {
			return rows[i].Mailbox < rows[j].Mailbox
		}
		return rows[i].UID > rows[j].UID
	})
}

func truncate(rows []base.MessageRow, limit int) []base.MessageRow {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
