package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/announcer"
	"github.com/aaronromeo/mailsweep/internal/config"
	"github.com/aaronromeo/mailsweep/internal/imap"
	"github.com/aaronromeo/mailsweep/internal/imap/sessionmanager"
	"github.com/aaronromeo/mailsweep/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// openRunner connects to the server described by s. Tests replace it.
var openRunner = func(ctx context.Context, s config.Settings, logger *slog.Logger) (imap.Runner, error) {
	opts := []sessionmanager.Option{
		sessionmanager.WithAddr(s.Addr()),
		sessionmanager.WithTLS(s.TLS),
	}
	if s.Auth == config.AuthXOAuth2 {
		opts = append(opts, sessionmanager.WithXOAuth2(s.User, s.Token))
	} else {
		password := s.Password
		if password == "" {
			var err error
			if password, err = promptPassword(s.User); err != nil {
				return nil, err
			}
		}
		opts = append(opts, sessionmanager.WithCreds(s.User, password))
	}

	client := imap.New(logger, opts...)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// promptPassword reads a password from the terminal without echo.
var promptPassword = func(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password: set MAILSWEEP_IMAP_PASSWORD or run from a terminal")
	}
	fmt.Fprintf(os.Stderr, "IMAP password for %s: ", user)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(b), nil
}

// run is the per-invocation state shared by the subcommands.
type run struct {
	settings config.Settings
	logger   *slog.Logger
	client   imap.Runner
	announce announcer.Service
	shutdown func(context.Context) error
}

func (o *rootOptions) settings(cmd *cobra.Command) (config.Settings, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Settings{}, err
	}
	cfg, path, err := config.LoadDefault(o.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	overrides := config.Overrides{Host: o.host, Port: o.port, User: o.user}
	if cmd.Flags().Changed("tls") {
		tls := o.tls
		overrides.TLS = &tls
	}
	s, err := config.Resolve(cfg, overrides)
	if err != nil {
		return config.Settings{}, err
	}
	if o.verbose && path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "using config %s\n", path)
	}
	return s, nil
}

func (o *rootOptions) open(cmd *cobra.Command, s config.Settings) (*run, error) {
	ctx := cmd.Context()

	r := &run{settings: s, shutdown: func(context.Context) error { return nil }}
	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, Version)
		if err != nil {
			return nil, errors.Wrap(err, "set up telemetry")
		}
		r.shutdown = shutdown
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	r.logger = telemetry.NewLogger(cmd.ErrOrStderr(), level)
	r.logger.Debug(strings.ReplaceAll(config.Summary(s), "\n", "; "))
	r.announce = announcer.New(announcer.WithWebhookURL(s.WebhookURL))

	client, err := openRunner(ctx, s, r.logger)
	if err != nil {
		_ = r.shutdown(ctx)
		return nil, err
	}
	r.client = client
	return r, nil
}

func (r *run) close(ctx context.Context) {
	if err := r.client.Close(); err != nil {
		r.logger.Debug("logout failed", "error", err)
	}
	if err := r.shutdown(ctx); err != nil {
		r.logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// announceAll reports a finished mutation per mailbox. Failures are logged
// and never fail the command.
func (r *run) announceAll(ctx context.Context, action string, uidsByMailbox map[string][]uint32) {
	mailboxes := make([]string, 0, len(uidsByMailbox))
	for mailbox := range uidsByMailbox {
		mailboxes = append(mailboxes, mailbox)
	}
	sort.Strings(mailboxes)
	for _, mailbox := range mailboxes {
		if err := r.announce.Do(ctx, action, mailbox, len(uidsByMailbox[mailbox])); err != nil {
			r.logger.Warn("announcement failed", "action", action, "mailbox", mailbox, "error", err)
		}
	}
}
