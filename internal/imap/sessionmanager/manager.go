package sessionmanager

import (
	"crypto/tls"
	"log/slog"
	"net"
	"strings"
	"time"

	retry "github.com/StirlingMarketingGroup/go-retry"
	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/responses"
	"github.com/emersion/go-sasl"
	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/aaronromeo/mailsweep/internal/imap/sessionmanager IMAPClient

// IMAPClient is the part of *client.Client the connector drives.
type IMAPClient interface {
	Login(username, password string) error
	Authenticate(auth sasl.Client) error
	Capability() (map[string]bool, error)
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	List(ref, name string, ch chan *imap.MailboxInfo) error
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	UidCopy(seqset *imap.SeqSet, dest string) error
	UidMove(seqset *imap.SeqSet, dest string) error
	Expunge(ch chan uint32) error
	Execute(cmdr imap.Commander, h responses.Handler) (*imap.StatusResp, error)
	Logout() error
}

// DialFunc opens a connection. tlsConfig is nil for plaintext.
type DialFunc func(addr string, tlsConfig *tls.Config, timeout time.Duration) (IMAPClient, error)

type Option func(*IMAPConnector)

type ServerConnector interface {
	Connect() error
	Close() error

	IMAPSession() base.Session
}

type IMAPConnector struct {
	Addr        string
	Username    string
	Password    string
	OAuthToken  string
	UseTLS      bool
	TLSConfig   *tls.Config
	DialTimeout time.Duration
	Retries     int

	logger *slog.Logger
	dial   DialFunc
	client IMAPClient
	caps   map[string]bool
}

func WithAddr(a string) Option {
	return func(c *IMAPConnector) {
		c.Addr = a
	}
}

func WithCreds(username string, password string) Option {
	return func(c *IMAPConnector) {
		c.Username = username
		c.Password = password
	}
}

// WithXOAuth2 authenticates with SASL XOAUTH2 instead of LOGIN.
func WithXOAuth2(username, token string) Option {
	return func(c *IMAPConnector) {
		c.Username = username
		c.OAuthToken = token
	}
}

// WithTLS toggles implicit TLS.
func WithTLS(enabled bool) Option {
	return func(c *IMAPConnector) {
		c.UseTLS = enabled
	}
}

func WithTLSConfig(config *tls.Config) Option {
	return func(c *IMAPConnector) {
		c.TLSConfig = config
		c.UseTLS = config != nil
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(c *IMAPConnector) {
		c.DialTimeout = d
	}
}

func WithRetries(n int) Option {
	return func(c *IMAPConnector) {
		c.Retries = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *IMAPConnector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDialer replaces the network dial, mostly for tests.
func WithDialer(dial DialFunc) Option {
	return func(c *IMAPConnector) {
		c.dial = dial
	}
}

func NewServerConnector(opts ...Option) *IMAPConnector {
	c := &IMAPConnector{
		DialTimeout: 30 * time.Second,
		Retries:     3,
		logger:      slog.Default(),
		dial:        dialIMAP,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IMAPSession returns the connector once connected, nil before.
func (c *IMAPConnector) IMAPSession() base.Session {
	if c.client == nil {
		return nil
	}
	return c
}

// Connect dials with retries, authenticates and caches the capability list.
// Only the dial is retried; a rejected login fails immediately.
func (c *IMAPConnector) Connect() error {
	if err := validateDeps(c); err != nil {
		return err
	}

	if !c.UseTLS && c.OAuthToken == "" && !isLoopback(c.Addr) {
		c.logger.Warn("sending credentials over a plaintext connection", "addr", c.Addr)
	}

	var conn IMAPClient
	err := retry.Retry(func() error {
		var err error
		conn, err = c.dial(c.Addr, c.tlsConfig(), c.DialTimeout)
		return err
	}, c.Retries, func(err error) error {
		c.logger.Warn("connection failed, retrying", "addr", c.Addr, "error", err)
		return nil
	}, func() error {
		c.logger.Debug("retrying connection", "addr", c.Addr)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "connect to %s", c.Addr)
	}

	if c.OAuthToken != "" {
		err = conn.Authenticate(newXOAuth2Client(c.Username, c.OAuthToken))
	} else {
		err = conn.Login(c.Username, c.Password)
	}
	if err != nil {
		_ = conn.Logout()
		return errors.Wrap(err, "authenticate")
	}

	caps, err := conn.Capability()
	if err != nil {
		_ = conn.Logout()
		return errors.Wrap(err, "capability")
	}

	c.caps = make(map[string]bool, len(caps))
	for name, ok := range caps {
		if ok {
			c.caps[strings.ToUpper(name)] = true
		}
	}
	c.client = conn
	c.logger.Debug("connected", "addr", c.Addr, "tls", c.UseTLS, "capabilities", len(c.caps))
	return nil
}

// Close logs out and clears the connection.
func (c *IMAPConnector) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Logout()
	c.client = nil
	c.caps = nil
	return err
}

func (c *IMAPConnector) tlsConfig() *tls.Config {
	if !c.UseTLS {
		return nil
	}
	if c.TLSConfig != nil {
		return c.TLSConfig
	}
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		host = c.Addr
	}
	return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
}

func dialIMAP(addr string, tlsConfig *tls.Config, timeout time.Duration) (IMAPClient, error) {
	dialer := &net.Dialer{Timeout: timeout}
	if tlsConfig != nil {
		return client.DialWithDialerTLS(dialer, addr, tlsConfig)
	}
	return client.DialWithDialer(dialer, addr)
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func validateDeps(state *IMAPConnector) error {
	if strings.TrimSpace(state.Addr) == "" {
		return errors.New("IMAP address is required")
	}
	if strings.TrimSpace(state.Username) == "" {
		return errors.New("IMAP username is required")
	}
	if strings.TrimSpace(state.Password) == "" && strings.TrimSpace(state.OAuthToken) == "" {
		return errors.New("IMAP password or OAuth token is required")
	}
	if state.dial == nil {
		return errors.New("IMAP dialer is required")
	}

	return nil
}
