package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/imaptext"
	"github.com/aaronromeo/mailsweep/internal/imap/uidset"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/aaronromeo/mailsweep/internal/imap/actions"

	deletedFlagExpr = `+FLAGS (\Deleted)`
)

type Actions interface {
	MoveUIDs(ctx context.Context, uidSet, destination string) error
	MoveByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, destination string) (int, error)
	DeleteByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, trash string) (int, error)
	StoreFlagsByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, ops []string) (int, error)
	EnsureMailbox(ctx context.Context, name string) error
}

// MutationError reports where a batch mutation stopped. Changed is true when
// the server may already hold effects of the batch, so a retry is not a
// clean replay.
type MutationError struct {
	Mailbox string
	Step    string
	// Done counts messages fully processed before the failure.
	Done    int
	Changed bool
	Err     error
}

func (e *MutationError) Error() string {
	state := "no changes were made"
	if e.Changed {
		state = "some messages were already modified"
	}
	if e.Mailbox == "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Step, state, e.Err)
	}
	return fmt.Sprintf("%s failed in %q after %d messages (%s): %v", e.Step, e.Mailbox, e.Done, state, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

type IMAPActionManager struct {
	provider func() base.Session
	logger   *slog.Logger
	mutated  metric.Int64Counter
}

func New(provider base.SessionProvider, logger *slog.Logger) *IMAPActionManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &IMAPActionManager{provider: provider.IMAPSession, logger: logger}
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"mailsweep.messages.mutated",
		metric.WithDescription("Messages moved, deleted or flagged"),
	)
	if err != nil {
		logger.Debug("action metrics disabled", "error", err)
	}
	m.mutated = counter
	return m
}

func (c *IMAPActionManager) session() (base.Session, error) {
	if c.provider == nil {
		return nil, base.ErrNotConnected
	}
	s := c.provider()
	if s == nil {
		return nil, base.ErrNotConnected
	}
	return s, nil
}

// MoveUIDs moves one range expression out of the selected mailbox. Servers
// without MOVE get COPY, STORE \Deleted and EXPUNGE instead; the first
// failing step aborts the rest.
func (c *IMAPActionManager) MoveUIDs(ctx context.Context, uidSet, destination string) error {
	s, err := c.session()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(uidSet) == "" {
		return nil
	}
	destination = imaptext.Mailbox(destination)
	if destination == "" {
		return errors.New("destination mailbox is required")
	}

	if s.HasCapability(base.CapMove) {
		if err := s.UIDMove(uidSet, destination); err != nil {
			return &MutationError{Step: "move", Err: err}
		}
		return nil
	}

	if err := s.UIDCopy(uidSet, destination); err != nil {
		return &MutationError{Step: "copy", Err: err}
	}
	if err := s.UIDStore(uidSet, deletedFlagExpr); err != nil {
		return &MutationError{Step: "store", Changed: true, Err: err}
	}
	if err := s.Expunge(); err != nil {
		return &MutationError{Step: "expunge", Changed: true, Err: err}
	}
	return nil
}

// MoveByMailbox moves the given UIDs of each mailbox to destination and
// returns how many messages were moved.
func (c *IMAPActionManager) MoveByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, destination string) (int, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(destination) == "" {
		return 0, errors.New("destination mailbox is required")
	}

	// Hits already in the destination stay where they are.
	sources := make(map[string][]uint32, len(uidsByMailbox))
	for mailbox, uids := range uidsByMailbox {
		if len(uids) > 0 && imaptext.Mailbox(mailbox) == imaptext.Mailbox(destination) {
			c.logger.Warn("skipping mailbox that is already the destination", "mailbox", mailbox, "messages", len(uids))
			continue
		}
		sources[mailbox] = uids
	}

	done := 0
	err = c.eachChunk(ctx, s, sources, func(mailbox, chunk string, n int) error {
		if err := c.MoveUIDs(ctx, chunk, destination); err != nil {
			return err
		}
		done += n
		return nil
	}, func(mailbox, step string, err error) error {
		return mutationFailure(mailbox, step, done, err)
	})
	c.record(ctx, "move", done)
	return done, err
}

// EnsureMailbox fails unless name is a selectable mailbox on the server.
func (c *IMAPActionManager) EnsureMailbox(ctx context.Context, name string) error {
	s, err := c.session()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	want := imaptext.Mailbox(name)
	if want == "" {
		return errors.New("mailbox name is required")
	}

	names, err := s.ListMailboxes("", "*")
	if err != nil {
		return &base.ProtocolError{Op: "list", Err: err}
	}
	for _, n := range names {
		if n == want || (strings.EqualFold(n, "INBOX") && strings.EqualFold(want, "INBOX")) {
			return nil
		}
	}
	return errors.Errorf("mailbox %q does not exist", want)
}

// DeleteByMailbox moves messages to the trash mailbox.
func (c *IMAPActionManager) DeleteByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, trash string) (int, error) {
	return c.MoveByMailbox(ctx, uidsByMailbox, trash)
}

// StoreFlagsByMailbox applies each flag expression to the UIDs of every
// mailbox, one STORE per expression and chunk.
func (c *IMAPActionManager) StoreFlagsByMailbox(ctx context.Context, uidsByMailbox map[string][]uint32, ops []string) (int, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	if len(ops) == 0 {
		return 0, errors.New("no flag changes requested")
	}

	done := 0
	err = c.eachChunk(ctx, s, uidsByMailbox, func(mailbox, chunk string, n int) error {
		for i, op := range ops {
			if err := s.UIDStore(chunk, op); err != nil {
				return &MutationError{Step: "store " + op, Changed: i > 0, Err: err}
			}
		}
		done += n
		return nil
	}, func(mailbox, step string, err error) error {
		return mutationFailure(mailbox, step, done, err)
	})
	c.record(ctx, "mark", done)
	return done, err
}

// eachChunk selects every mailbox in name order and calls apply once per
// encoded chunk of its UIDs.
func (c *IMAPActionManager) eachChunk(
	ctx context.Context,
	s base.Session,
	uidsByMailbox map[string][]uint32,
	apply func(mailbox, chunk string, n int) error,
	wrap func(mailbox, step string, err error) error,
) error {
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
			return wrap(mailbox, "cancel", err)
		}
		name := imaptext.Mailbox(mailbox)
		if name == "" {
			return wrap(mailbox, "select", errors.New("mailbox is required"))
		}
		if _, err := s.Select(name); err != nil {
			return wrap(name, "select", &base.ProtocolError{Op: "select", Mailbox: name, Err: err})
		}

		for _, chunk := range uidset.Encode(uids) {
			if err := ctx.Err(); err != nil {
				return wrap(name, "cancel", err)
			}
			decoded, err := uidset.Decode(chunk)
			if err != nil {
				return wrap(name, "encode", err)
			}
			if err := apply(name, chunk, len(decoded)); err != nil {
				return wrap(name, "apply", err)
			}
		}
		c.logger.Debug("mailbox processed", "mailbox", name, "messages", len(uids))
	}
	return nil
}

// mutationFailure folds batch progress into the error. Any earlier success
// means the server state already changed.
func mutationFailure(mailbox, step string, done int, err error) error {
	var merr *MutationError
	if errors.As(err, &merr) {
		merr.Mailbox = mailbox
		merr.Done = done
		merr.Changed = merr.Changed || done > 0
		return merr
	}
	return &MutationError{Mailbox: mailbox, Step: step, Done: done, Changed: done > 0, Err: err}
}

func (c *IMAPActionManager) record(ctx context.Context, action string, n int) {
	if c.mutated == nil || n == 0 {
		return
	}
	c.mutated.Add(ctx, int64(n), metric.WithAttributes(attribute.String("mailsweep.action", action)))
}
