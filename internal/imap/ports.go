package imap

import (
	"github.com/aaronromeo/mailsweep/internal/imap/actions"
	"github.com/aaronromeo/mailsweep/internal/imap/searches"
	"github.com/aaronromeo/mailsweep/internal/imap/selectors"
)

type Runner interface {
	Connect() error
	Close() error

	searches.ServerSearcher
	actions.Actions
	selectors.ClientSelectors
}

var _ Runner = (*Client)(nil)
