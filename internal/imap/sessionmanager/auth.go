package sessionmanager

import (
	"github.com/emersion/go-sasl"
	xoauth2 "github.com/sqs/go-xoauth2"
)

const xoauth2Mechanism = "XOAUTH2"

// xoauth2Client speaks SASL XOAUTH2 for providers that refuse LOGIN.
type xoauth2Client struct {
	username string
	token    string
}

var _ sasl.Client = (*xoauth2Client)(nil)

func newXOAuth2Client(username, token string) sasl.Client {
	return &xoauth2Client{username: username, token: token}
}

func (a *xoauth2Client) Start() (string, []byte, error) {
	// The client base64-encodes the initial response itself.
	return xoauth2Mechanism, []byte(xoauth2.OAuth2String(a.username, a.token)), nil
}

// Next answers the JSON error challenge with an empty response so the
// server finishes with a tagged NO.
func (a *xoauth2Client) Next(challenge []byte) ([]byte, error) {
	return []byte{}, nil
}
