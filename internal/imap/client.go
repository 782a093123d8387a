package imap

import (
	"log/slog"

	"github.com/aaronromeo/mailsweep/internal/imap/actions"
	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/aaronromeo/mailsweep/internal/imap/searches"
	"github.com/aaronromeo/mailsweep/internal/imap/selectors"
	"github.com/aaronromeo/mailsweep/internal/imap/sessionmanager"
)

// Client bundles one IMAP session with the search, mutation and inspection
// managers that share it.
type Client struct {
	conn sessionmanager.ServerConnector

	*searches.IMAPSearchManager
	*actions.IMAPActionManager
	*selectors.IMAPSelectorManager
}

func New(logger *slog.Logger, opts ...sessionmanager.Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]sessionmanager.Option{sessionmanager.WithLogger(logger)}, opts...)
	conn := sessionmanager.NewServerConnector(opts...)
	client := NewWithSession(conn, logger)
	client.conn = conn
	return client
}

// NewWithSession wires the managers to an existing session. Connect and
// Close are no-ops on the result.
func NewWithSession(provider base.SessionProvider, logger *slog.Logger, opts ...searches.Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	sel := selectors.New(provider, logger)
	opts = append([]searches.Option{searches.WithLogger(logger)}, opts...)
	return &Client{
		IMAPSearchManager:   searches.New(provider, sel, opts...),
		IMAPActionManager:   actions.New(provider, logger),
		IMAPSelectorManager: sel,
	}
}

func (c *Client) Connect() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Connect()
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
